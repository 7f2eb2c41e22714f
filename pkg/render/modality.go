package render

import (
	"log/slog"
	"math"
)

// ModalityResult carries the built Modality LUT plus the real-world
// domain the table outputs span. A nil Table means the transform is the
// identity and stored values pass through unchanged.
type ModalityResult struct {
	Table   LookupTable
	RealMin float64
	RealMax float64
	// RealOffset is the real-world value a table output of 0 stands for;
	// window centers are shifted by it before indexing the VOI table.
	RealOffset   float64
	OutputBits   int
	OutputSigned bool
	// Explicit reports that a LUT sequence item was applied rather than a
	// synthesized linear ramp.
	Explicit bool
}

// usableExplicit validates a LUT sequence item per the malformed-LUT
// rules: entry-count/data-length mismatch, output depth over 16 bits, or
// byte-sized data claiming 16-bit entries all make the table unusable.
func usableExplicit(l *ExplicitLUT) bool {
	if l == nil {
		return false
	}
	entries := l.Entries()
	bits := l.BitsPerEntry()
	if entries <= 0 || bits <= 0 || bits > 16 {
		return false
	}
	if len(l.Data) > 0 {
		return len(l.Data) == entries
	}
	if len(l.DataBytes) > 0 {
		if bits > 8 {
			return false
		}
		return len(l.DataBytes) == entries
	}
	return false
}

// explicitTable builds a LookupTable from a validated LUT sequence item.
// The entry data is copied: AdjustOutputBits and Invert rewrite the
// backing in place, and the sequence item stays owned by the caller.
func explicitTable(l *ExplicitLUT, in BitDescriptor) LookupTable {
	if len(l.DataBytes) > 0 {
		return NewByteLUT(in, l.BitsPerEntry(), l.FirstMapped(), append([]uint8(nil), l.DataBytes...))
	}
	return NewWordLUT(in, l.BitsPerEntry(), l.FirstMapped(), append([]uint16(nil), l.Data...))
}

// explicitRealRange returns the min and max entry values of the table,
// which define the real-world domain its output spans.
func explicitRealRange(t LookupTable) (lo, hi float64) {
	min, max := math.Inf(1), math.Inf(-1)
	for i := 0; i < t.Len(); i++ {
		v := float64(t.Lookup(t.Offset() + i))
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// modality builds (or fetches from cache) the Modality LUT for the
// descriptor: stored value -> real-world value. overlayGap is the number
// of gap bits cleared by overlay masking; a non-zero gap pins the input
// width to bits stored since anything above it is overlay, not data.
func (s *Session) modality(desc *FrameDescriptor, p WindowParams, r SampleRange, overlayGap int) ModalityResult {
	slope, intercept := desc.Slope(), desc.RescaleIntercept

	explicit := desc.ModalityLUT
	if p.ModalityOverride != nil {
		explicit = p.ModalityOverride
	}
	if explicit != nil {
		if res, ok := s.explicitModality(desc, explicit, r); ok {
			return res
		}
		// out of domain or malformed: fall through to the linear path
	}

	_, _, hasPad := desc.PaddingRange()
	if slope == 1 && intercept == 0 && !hasPad && desc.StoredBits() <= 16 {
		lo := r.Min*slope + intercept
		hi := r.Max*slope + intercept
		return ModalityResult{Table: nil, RealMin: lo, RealMax: hi, OutputBits: r.Bits, OutputSigned: desc.Signed()}
	}

	bits := r.Bits
	if overlayGap > 0 && bits > desc.StoredBits() {
		bits = desc.StoredBits()
	}

	lo := r.Min*slope + intercept
	hi := r.Max*slope + intercept
	if hi < lo {
		lo, hi = hi, lo
	}
	outSigned := lo < 0 || desc.Signed()
	outBits := bitLength(int(math.Round(hi - lo)))
	if outBits == 0 {
		outBits = 1
	}
	if outSigned && outBits <= 8 {
		outBits = 9 // preserve a sign bit
	}
	if outBits > 16 {
		outBits = 16
	}

	padVal, padLimit := 0, 0
	hasLimit := false
	if hasPad {
		padVal = *desc.PixelPaddingValue
		if desc.PixelPaddingRangeLimit != nil {
			padLimit = *desc.PixelPaddingRangeLimit
			hasLimit = true
		}
	}

	params := LutParameters{
		Intercept:        intercept,
		Slope:            slope,
		PaddingValue:     padVal,
		PaddingLimit:     padLimit,
		HasPadding:       hasPad && desc.IsMonochrome(),
		HasPaddingLimit:  hasLimit,
		BitsStored:       bits,
		InputSigned:      desc.Signed(),
		OutputSigned:     outSigned,
		OutputBits:       outBits,
		InverseOnPadding: desc.Inverted(),
		MinSample:        int(r.Min),
		MaxSample:        int(r.Max),
	}

	key := paramsKey(params)
	table, ok := s.cache.get(key)
	if !ok {
		table = s.cache.put(key, newLinearRamp(params))
	}
	return ModalityResult{Table: table, RealMin: lo, RealMax: hi, RealOffset: lo, OutputBits: outBits, OutputSigned: outSigned}
}

// explicitModality wraps a Modality LUT sequence item when the frame's
// sample range falls within its declared domain. Out-of-domain tables are
// logged and skipped rather than applied.
func (s *Session) explicitModality(desc *FrameDescriptor, l *ExplicitLUT, r SampleRange) (ModalityResult, bool) {
	if !usableExplicit(l) {
		slog.Warn("malformed modality LUT sequence, falling back to linear rescale",
			"descriptor", l.Descriptor, "dataLen", len(l.Data)+len(l.DataBytes))
		return ModalityResult{}, false
	}
	first := l.FirstMapped()
	last := first + l.Entries() - 1
	if int(r.Min) < first || int(r.Max) > last {
		slog.Warn("modality LUT sequence does not cover sample domain, not applied",
			"firstMapped", first, "lastMapped", last, "min", r.Min, "max", r.Max)
		return ModalityResult{}, false
	}
	if _, _, hasPad := desc.PaddingRange(); hasPad {
		// padding is not applied when an explicit sequence is in effect
		slog.Warn("pixel padding ignored: explicit modality LUT sequence governs output")
	}

	key := explicitKey("mlut", l)
	table, ok := s.cache.get(key)
	if !ok {
		in := BitDescriptor{Bits: r.Bits, Signed: desc.Signed()}
		table = s.cache.put(key, explicitTable(l, in))
	}
	lo, hi := explicitRealRange(table)
	return ModalityResult{
		Table:        table,
		RealMin:      lo,
		RealMax:      hi,
		RealOffset:   0,
		OutputBits:   l.BitsPerEntry(),
		OutputSigned: false,
		Explicit:     true,
	}, true
}
