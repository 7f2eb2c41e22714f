// Package render implements the pixel-value transformation pipeline that
// converts raw stored sample values of a radiological image frame into
// display-ready 8-bit intensities.
//
// The pipeline follows DICOM Part 3 grayscale rendering semantics:
//
//	raw samples -> overlay bit masking -> Modality LUT -> VOI window/level -> Presentation LUT
//
// Lookup tables are built once per distinct parameter tuple and shared
// through a bounded cache owned by a Session. All stages are synchronous
// and CPU-bound; a Session may be used concurrently across independent
// frames.
//
// Basic usage:
//
//	sess := render.NewSession()
//	out, err := sess.DefaultRender(frame, desc, nil, 0)
//	if err != nil {
//		log.Fatal(err)
//	}
//	// out is an 8-bit frame ready for display
package render
