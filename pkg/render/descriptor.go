package render

import (
	"strings"
	"sync"
)

// VOI LUT function names per DICOM C.11.2.1.3
const (
	FunctionLinear      = "LINEAR"
	FunctionLinearExact = "LINEAR_EXACT"
	FunctionSigmoid     = "SIGMOID"
	FunctionExplicit    = "EXPLICIT" // synthesized for table-based entries
)

// WindowLevel represents a single window/level preset.
type WindowLevel struct {
	Center      float64
	Width       float64
	Function    string // LINEAR (default), LINEAR_EXACT, SIGMOID, EXPLICIT
	Explanation string // optional description (e.g., "BONE", "SOFT TISSUE")

	// Explicit carries the table for EXPLICIT entries; nil otherwise.
	Explicit *ExplicitLUT
}

// Shape returns the effective VOI function, defaulting to LINEAR.
func (w WindowLevel) Shape() string {
	if w.Explicit != nil {
		return FunctionExplicit
	}
	if w.Function == "" {
		return FunctionLinear
	}
	return strings.ToUpper(strings.TrimSpace(w.Function))
}

// ExplicitLUT represents a LUT sequence item as carried by the dataset.
type ExplicitLUT struct {
	// Descriptor: [number of entries, first input value, bits per entry].
	// An entry count of 0 means 65536, per the standard.
	Descriptor [3]int
	Data       []uint16
	// DataBytes holds byte-packed data when bits per entry is 8.
	DataBytes   []uint8
	Explanation string
}

// Entries returns the declared entry count, resolving the 0 -> 65536 case.
func (l *ExplicitLUT) Entries() int {
	if l.Descriptor[0] == 0 {
		return 65536
	}
	return l.Descriptor[0]
}

// FirstMapped returns the first input value covered by the table.
func (l *ExplicitLUT) FirstMapped() int { return l.Descriptor[1] }

// BitsPerEntry returns the declared output bit depth.
func (l *ExplicitLUT) BitsPerEntry() int { return l.Descriptor[2] }

// SampleRange is the observed raw min/max of a frame. Bits is the
// effective stored bit width, widened to bits allocated when samples
// exceed what bits stored can represent.
type SampleRange struct {
	Min  float64
	Max  float64
	Bits int
}

// FrameDescriptor supplies the per-image metadata the pipeline consumes.
// It is owned by the caller and outlives any single render; the per-frame
// min/max slots are the only mutable state and are safe for concurrent
// first-computation per distinct frame index.
type FrameDescriptor struct {
	Rows           int
	Columns        int
	NumberOfFrames int

	BitsAllocated       int
	BitsStored          int
	HighBit             int
	PixelRepresentation int // 0=unsigned, 1=signed

	PhotometricInterpretation string
	SamplesPerPixel           int

	PixelPaddingValue      *int
	PixelPaddingRangeLimit *int

	RescaleSlope     float64 // 0 treated as 1
	RescaleIntercept float64

	// ModalityLUT is the explicit Modality LUT sequence item, if any.
	ModalityLUT *ExplicitLUT

	// Windows and VOILUTs mirror the VOI LUT module: linear presets and
	// table-based alternatives.
	Windows        []WindowLevel
	VOILUTs        []ExplicitLUT
	VOILUTFunction string

	// EmbeddedOverlays reports that overlay planes are packed into the
	// unused high bits of the pixel samples.
	EmbeddedOverlays bool

	mu         sync.Mutex
	minMax     map[int]SampleRange
	autoWindow map[int]WindowLevel
}

// Slope returns the rescale slope, defaulting to 1.
func (d *FrameDescriptor) Slope() float64 {
	if d.RescaleSlope == 0 {
		return 1
	}
	return d.RescaleSlope
}

// Signed reports whether samples are two's-complement.
func (d *FrameDescriptor) Signed() bool { return d.PixelRepresentation != 0 }

// IsMonochrome reports a grayscale photometric interpretation.
func (d *FrameDescriptor) IsMonochrome() bool {
	pi := strings.TrimSpace(d.PhotometricInterpretation)
	return pi == "" || strings.HasPrefix(pi, "MONOCHROME")
}

// Inverted reports MONOCHROME1 (minimum sample displays white).
func (d *FrameDescriptor) Inverted() bool {
	return strings.TrimSpace(d.PhotometricInterpretation) == "MONOCHROME1"
}

// StoredBits returns bits stored, defaulting to bits allocated.
func (d *FrameDescriptor) StoredBits() int {
	if d.BitsStored == 0 {
		return d.AllocatedBits()
	}
	return d.BitsStored
}

// AllocatedBits returns bits allocated, defaulting to 16.
func (d *FrameDescriptor) AllocatedBits() int {
	if d.BitsAllocated == 0 {
		return 16
	}
	return d.BitsAllocated
}

// PaddingRange returns the inclusive padding exclusion range and whether
// padding is defined at all. The limit defaults to the padding value.
func (d *FrameDescriptor) PaddingRange() (lo, hi int, ok bool) {
	if d.PixelPaddingValue == nil {
		return 0, 0, false
	}
	lo, hi = *d.PixelPaddingValue, *d.PixelPaddingValue
	if d.PixelPaddingRangeLimit != nil {
		if *d.PixelPaddingRangeLimit < lo {
			lo = *d.PixelPaddingRangeLimit
		} else {
			hi = *d.PixelPaddingRangeLimit
		}
	}
	return lo, hi, true
}

// CachedMinMax returns the memoized sample range for a frame index.
func (d *FrameDescriptor) CachedMinMax(frameIndex int) (SampleRange, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, ok := d.minMax[frameIndex]
	return r, ok
}

// SetMinMax memoizes the sample range for a frame index. First writer
// wins; concurrent recomputation yields the same value.
func (d *FrameDescriptor) SetMinMax(frameIndex int, r SampleRange) SampleRange {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.minMax == nil {
		d.minMax = make(map[int]SampleRange)
	}
	if prev, ok := d.minMax[frameIndex]; ok {
		return prev
	}
	d.minMax[frameIndex] = r
	return r
}

// CachedAutoWindow returns the memoized auto window for a frame index.
func (d *FrameDescriptor) CachedAutoWindow(frameIndex int) (WindowLevel, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	w, ok := d.autoWindow[frameIndex]
	return w, ok
}

// SetAutoWindow memoizes the computed auto window for a frame index.
func (d *FrameDescriptor) SetAutoWindow(frameIndex int, w WindowLevel) WindowLevel {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.autoWindow == nil {
		d.autoWindow = make(map[int]WindowLevel)
	}
	if prev, ok := d.autoWindow[frameIndex]; ok {
		return prev
	}
	d.autoWindow[frameIndex] = w
	return w
}

// WindowParams carries per-render overrides, typically sourced from a
// presentation state. A nil *WindowParams means all defaults.
type WindowParams struct {
	// Window selects the window/level to apply; nil selects the
	// descriptor's first preset, or the auto-computed window.
	Window *WindowLevel

	// ModalityOverride replaces the descriptor's Modality LUT sequence.
	ModalityOverride *ExplicitLUT

	// PresentationLUT is an optional final 8-bit remap applied after
	// windowing; it takes precedence over Inverse.
	PresentationLUT *ExplicitLUT

	// Inverse requests output inversion on top of the photometric
	// interpretation's own polarity.
	Inverse bool

	// FillOutsideLutRange extends the VOI input domain to the full
	// allocated bit range instead of the window's clamp range.
	FillOutsideLutRange bool
}

func (p *WindowParams) orDefault() WindowParams {
	if p == nil {
		return WindowParams{}
	}
	return *p
}
