package render

import (
	"log/slog"
	"math"

	"github.com/jpfielding/dcmrender.go/pkg/util"
)

const voiOutputBits = 8

// voiKey is the cache-key tuple for a synthesized VOI table.
type voiKey struct {
	Center   float64
	Width    float64
	Function string
	Offset   int
	Length   int
	InBits   int
	InSigned bool
	Inverted bool
}

// voiShape returns the 0..255 display value for input x under the given
// VOI function. Entries below the low clamp map to 0, above the high
// clamp to 255.
func voiShape(function string, x, center, width float64) int {
	switch function {
	case FunctionSigmoid:
		return int(math.Round(255 / (1 + math.Exp(-4*(x-center)/width))))
	case FunctionLinearExact:
		y := (x-center)/width*255 + 127.5
		return clamp8(int(math.Round(y)))
	default: // LINEAR, per DICOM C.11.2.1.2 half-pixel widened window
		c := center - 0.5
		w := width - 1
		if w < 1 {
			if x <= c {
				return 0
			}
			return 255
		}
		if x <= c-w/2 {
			return 0
		}
		if x > c+w/2 {
			return 255
		}
		return clamp8(int(math.Round(((x-c)/w + 0.5) * 255)))
	}
}

func clamp8(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// voi builds (or fetches) the 8-bit VOI table for a window over the
// modality output domain, or over the stored-value domain when the
// modality transform is the identity.
func (s *Session) voi(desc *FrameDescriptor, p WindowParams, m ModalityResult, r SampleRange, win WindowLevel) LookupTable {
	if win.Explicit != nil {
		if t := s.explicitVOI(win.Explicit, m, r, desc); t != nil {
			return t
		}
		// unusable table; fall back to the linear window
	}

	var in BitDescriptor
	var center, width float64
	if m.Table != nil {
		in = BitDescriptor{Bits: m.OutputBits, Signed: false}
		center = win.Center - m.RealOffset
		width = win.Width
	} else {
		in = BitDescriptor{Bits: r.Bits, Signed: desc.Signed()}
		slope := desc.Slope()
		center = (win.Center - desc.RescaleIntercept) / slope
		width = win.Width / math.Abs(slope)
	}
	if width < 1 {
		width = 1
	}

	_, _, hasPad := desc.PaddingRange()
	fullDomain := p.FillOutsideLutRange || (hasPad && desc.IsMonochrome())

	var offset, length int
	if fullDomain {
		// extend to the full allocated bit range so padded background
		// keeps its mapped value outside the clamp range
		full := BitDescriptor{Bits: desc.AllocatedBits(), Signed: in.Signed}
		if m.Table != nil {
			full = in
		}
		offset = full.MinSample()
		length = full.MaxSample() - offset + 1
	} else {
		half := width / 2
		if win.Shape() == FunctionSigmoid {
			// the sigmoid only saturates well past the window edges
			half = width * 2
		}
		offset = int(math.Floor(center - half))
		length = int(math.Ceil(center+half)) - offset + 1
	}
	if length < 2 {
		length = 2
	}

	inverted := s.voiInverted(desc, p)
	key := "voi." + util.HashUUID(voiKey{
		Center: center, Width: width, Function: win.Shape(),
		Offset: offset, Length: length,
		InBits: in.Bits, InSigned: in.Signed, Inverted: inverted,
	})
	if t, ok := s.cache.get(key); ok {
		return t
	}

	data := make([]uint8, length)
	for i := range data {
		data[i] = uint8(voiShape(win.Shape(), float64(offset+i), center, width))
	}
	table := NewByteLUT(in, voiOutputBits, offset, data)
	if inverted {
		table = table.Invert()
	}
	return s.cache.put(key, table)
}

// voiInverted resolves the output polarity: MONOCHROME1 and a requested
// inversion toggle each other; an explicit presentation LUT overrides
// both.
func (s *Session) voiInverted(desc *FrameDescriptor, p WindowParams) bool {
	if p.PresentationLUT != nil {
		return false
	}
	return desc.Inverted() != p.Inverse
}

// explicitVOI wraps a VOI LUT sequence item, reduced to 8 output bits.
func (s *Session) explicitVOI(l *ExplicitLUT, m ModalityResult, r SampleRange, desc *FrameDescriptor) LookupTable {
	if !usableExplicit(l) {
		slog.Warn("malformed VOI LUT sequence, falling back to window",
			"descriptor", l.Descriptor, "dataLen", len(l.Data)+len(l.DataBytes))
		return nil
	}
	key := explicitKey("voi", l)
	if t, ok := s.cache.get(key); ok {
		return t
	}
	in := BitDescriptor{Bits: r.Bits, Signed: desc.Signed()}
	if m.Table != nil {
		in = BitDescriptor{Bits: m.OutputBits, Signed: false}
	}
	table := explicitTable(l, in)
	if table.OutputBits() != voiOutputBits {
		table = table.AdjustOutputBits(voiOutputBits)
	}
	return s.cache.put(key, table)
}

// linearRescale8 is the wide-sample path: no discrete table is built for
// samples wider than 16 bits or floats; the modality and VOI stages
// collapse into a single sample-wise linear rescale into 0..255.
func linearRescale8(frame *Frame, desc *FrameDescriptor, win WindowLevel, inverted bool) *Frame {
	slope := desc.Slope()
	center := (win.Center - desc.RescaleIntercept) / slope
	width := win.Width / math.Abs(slope)

	low := center - width/2
	high := center + width/2
	rng := high - low
	if rng < 1 && !frame.Format.IsFloat() {
		rng = 1
		high = low + rng
	}
	a := 255 / rng
	b := 255 - a*high

	out := NewFrame(frame.Rows, frame.Columns, FormatUint8)
	n := frame.Len()
	for i := 0; i < n; i++ {
		v := clamp8(int(math.Round(frame.FloatSample(i)*a + b)))
		if inverted {
			v = 255 - v
		}
		out.Bytes[i] = uint8(v)
	}
	return out
}
