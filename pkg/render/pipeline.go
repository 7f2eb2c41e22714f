package render

import (
	"fmt"
	"log/slog"
)

// renderState tracks progress through the pipeline stages.
type renderState int

const (
	stateRaw renderState = iota
	stateOverlayMasked
	stateModalityApplied
	stateVOIApplied
	statePresentationApplied
)

func (s renderState) String() string {
	switch s {
	case stateRaw:
		return "RAW"
	case stateOverlayMasked:
		return "OVERLAY_MASKED"
	case stateModalityApplied:
		return "MODALITY_APPLIED"
	case stateVOIApplied:
		return "VOI_APPLIED"
	case statePresentationApplied:
		return "PRESENTATION_APPLIED"
	}
	return fmt.Sprintf("renderState(%d)", int(s))
}

// Session owns the LUT cache shared across renders. A single Session may
// be used concurrently across independent frames; duplicate table builds
// for the same key are tolerated and deduplicated on insert.
type Session struct {
	cache *lutCache
}

// Option configures a Session.
type Option func(*Session)

// WithCacheSize bounds the number of lookup tables the session retains.
func WithCacheSize(n int) Option {
	return func(s *Session) { s.cache = newLutCache(n) }
}

// NewSession creates a rendering session with a bounded LRU table cache.
func NewSession(opts ...Option) *Session {
	s := &Session{cache: newLutCache(DefaultCacheSize)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CachedTables returns the number of tables currently cached.
func (s *Session) CachedTables() int { return s.cache.len() }

func validate(frame *Frame, desc *FrameDescriptor) error {
	if frame == nil || desc == nil {
		return fmt.Errorf("frame and descriptor are required")
	}
	if want := desc.Rows * desc.Columns; want > 0 && frame.Len() < want {
		return fmt.Errorf("frame has %d samples, descriptor declares %dx%d", frame.Len(), desc.Rows, desc.Columns)
	}
	return nil
}

// wideSamples reports that the frame takes the direct linear-rescale path
// instead of discrete tables.
func wideSamples(frame *Frame) bool {
	return frame.Format.IsFloat() || frame.Format.Bits() > 16
}

// autoWindow derives the default window for a frame: from the explicit
// Modality LUT's output range when one is applied, otherwise from the
// observed min/max through the rescale line. The min/max form is written
// back to the descriptor for reuse.
func (s *Session) autoWindow(desc *FrameDescriptor, m ModalityResult, r SampleRange, frameIndex int) WindowLevel {
	if m.Explicit {
		lo, hi := m.RealMin, m.RealMax
		return WindowLevel{Center: (lo + hi + 1) / 2, Width: hi + 1 - lo, Explanation: "AUTO"}
	}
	if w, ok := desc.CachedAutoWindow(frameIndex); ok {
		return w
	}
	return desc.SetAutoWindow(frameIndex, AutoWindow(r, desc.Slope(), desc.RescaleIntercept))
}

// effectiveWindow resolves which window/level governs the render.
func (s *Session) effectiveWindow(desc *FrameDescriptor, p WindowParams, m ModalityResult, r SampleRange, frameIndex int) WindowLevel {
	if p.Window != nil {
		w := *p.Window
		if w.Function == "" {
			w.Function = desc.VOILUTFunction
		}
		return w
	}
	if len(desc.Windows) > 0 && desc.Windows[0].Width > 0 {
		w := desc.Windows[0]
		if w.Function == "" {
			w.Function = desc.VOILUTFunction
		}
		return w
	}
	for i := range desc.VOILUTs {
		if usableExplicit(&desc.VOILUTs[i]) {
			return WindowLevel{Function: FunctionExplicit, Explicit: &desc.VOILUTs[i], Explanation: desc.VOILUTs[i].Explanation}
		}
	}
	if !desc.IsMonochrome() {
		// window/level has no defined meaning for color images
		return WindowLevel{Center: 127.5, Width: 255}
	}
	return s.autoWindow(desc, m, r, frameIndex)
}

// colorIdentity reports the VOI skip condition for color images at the
// identity default window.
func colorIdentity(desc *FrameDescriptor, win WindowLevel) bool {
	return !desc.IsMonochrome() && win.Width == 255 && win.Center == 127.5
}

// applyLUT runs every sample through the table, producing a byte or word
// frame depending on the table's output width.
func applyLUT(frame *Frame, t LookupTable) *Frame {
	n := frame.Len()
	if t.OutputBits() <= 8 {
		out := NewFrame(frame.Rows, frame.Columns, FormatUint8)
		for i := 0; i < n; i++ {
			out.Bytes[i] = uint8(t.Lookup(frame.Sample(i)))
		}
		return out
	}
	out := NewFrame(frame.Rows, frame.Columns, FormatUint16)
	for i := 0; i < n; i++ {
		out.Words[i] = uint16(t.Lookup(frame.Sample(i)))
	}
	return out
}

// RawRender applies overlay masking and the Modality LUT only, returning
// real-world values without windowing.
func (s *Session) RawRender(frame *Frame, desc *FrameDescriptor, params *WindowParams, frameIndex int) (*Frame, error) {
	if err := validate(frame, desc); err != nil {
		return nil, err
	}
	p := params.orDefault()

	masked, gap := ClearOverlayBits(frame, desc, frameIndex)
	if wideSamples(frame) {
		// no discrete table for wide samples; raw values pass through
		return masked, nil
	}
	r := MinMax(masked, desc, frameIndex)
	m := s.modality(desc, p, r, gap)
	if m.Table == nil {
		return masked, nil
	}
	return applyLUT(masked, m.Table), nil
}

// DefaultRender runs the full pipeline: overlay masking, Modality LUT,
// VOI window/level and the optional presentation remap, producing an
// 8-bit display frame.
func (s *Session) DefaultRender(frame *Frame, desc *FrameDescriptor, params *WindowParams, frameIndex int) (*Frame, error) {
	if err := validate(frame, desc); err != nil {
		return nil, err
	}
	p := params.orDefault()

	masked, gap := ClearOverlayBits(frame, desc, frameIndex)
	state := stateOverlayMasked

	r := MinMax(masked, desc, frameIndex)

	if wideSamples(frame) {
		// modality and VOI collapse into a single linear rescale
		m := ModalityResult{OutputBits: r.Bits, OutputSigned: desc.Signed()}
		win := s.effectiveWindow(desc, p, m, r, frameIndex)
		out := linearRescale8(masked, desc, win, s.voiInverted(desc, p))
		state = stateVOIApplied
		if pres := s.presentation(p); pres != nil {
			out = applyLUT(out, pres)
			state = statePresentationApplied
		}
		slog.Debug("render complete", "path", "linear", "state", state.String())
		return out, nil
	}

	m := s.modality(desc, p, r, gap)
	if m.Table != nil {
		state = stateModalityApplied
	}

	win := s.effectiveWindow(desc, p, m, r, frameIndex)

	var combined LookupTable
	if colorIdentity(desc, win) {
		// VOI skipped: identity window over color samples
		combined = m.Table
	} else {
		voi := s.voi(desc, p, m, r, win)
		state = stateVOIApplied
		if m.Table != nil {
			combined = m.Table.Compose(voi)
		} else {
			combined = voi
		}
	}

	if pres := s.presentation(p); pres != nil {
		if combined != nil {
			combined = combined.Compose(pres)
		} else {
			combined = pres
		}
		state = statePresentationApplied
	}

	slog.Debug("render complete", "path", "lut", "state", state.String(), "window", win.Explanation)

	if combined == nil {
		// color pass-through at identity window
		return masked, nil
	}
	return applyLUT(masked, combined), nil
}

// ModalityLookup builds (or fetches) the Modality LUT for a frame index.
// Returns nil when the transform is the identity. When min/max statistics
// have not been computed yet the full stored-bit domain is assumed.
func (s *Session) ModalityLookup(desc *FrameDescriptor, params *WindowParams, frameIndex int) LookupTable {
	p := params.orDefault()
	r, ok := desc.CachedMinMax(frameIndex)
	if !ok {
		in := BitDescriptor{Bits: desc.StoredBits(), Signed: desc.Signed()}
		r = SampleRange{Min: float64(in.MinSample()), Max: float64(in.MaxSample()), Bits: desc.StoredBits()}
	}
	return s.modality(desc, p, r, 0).Table
}

// VOILookup builds the standalone 8-bit VOI table for the requested
// window, over an unsigned 16-bit input domain. Returns nil when no
// window is requested.
func (s *Session) VOILookup(params *WindowParams) LookupTable {
	p := params.orDefault()
	if p.Window == nil {
		return nil
	}
	desc := &FrameDescriptor{BitsAllocated: 16, BitsStored: 16}
	r := SampleRange{Min: 0, Max: 65535, Bits: 16}
	m := ModalityResult{OutputBits: 16}
	return s.voi(desc, p, m, r, *p.Window)
}
