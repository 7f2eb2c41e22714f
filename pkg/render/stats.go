package render

import (
	"log/slog"

	"gonum.org/v1/gonum/floats"
)

// MinMax computes and memoizes the raw min/max sample value of a frame,
// honoring the descriptor's padding-value exclusion range. The computed
// range is written back to the descriptor's per-frame cache slot; once
// written it is read-only.
func MinMax(frame *Frame, desc *FrameDescriptor, frameIndex int) SampleRange {
	if r, ok := desc.CachedMinMax(frameIndex); ok {
		return r
	}
	r := scanMinMax(frame, desc)
	return desc.SetMinMax(frameIndex, r)
}

func scanMinMax(frame *Frame, desc *FrameDescriptor) SampleRange {
	if frame.Format.IsFloat() {
		return scanFloatMinMax(frame, desc)
	}

	in := BitDescriptor{Bits: desc.AllocatedBits(), Signed: desc.Signed()}
	padLo, padHi, hasPad := desc.PaddingRange()
	excludePadding := hasPad && desc.IsMonochrome()

	found := false
	min, max := 0, 0
	n := frame.Len()
	for i := 0; i < n; i++ {
		v := in.Normalize(frame.Sample(i))
		if excludePadding && v >= padLo && v <= padHi {
			continue
		}
		if !found {
			min, max = v, v
			found = true
			continue
		}
		if v < min {
			min = v
		} else if v > max {
			max = v
		}
	}
	if !found {
		// every sample was padding; fall back to the padding range so the
		// table domain stays non-empty
		min, max = padLo, padHi
		slog.Warn("all samples excluded by pixel padding", "paddingLow", padLo, "paddingHigh", padHi)
	}
	if min == max {
		max = min + 1
	}

	bits := desc.StoredBits()
	stored := BitDescriptor{Bits: bits, Signed: desc.Signed()}
	if min < stored.MinSample() || max > stored.MaxSample() {
		// samples exceed what bits stored can represent; widen so later
		// LUTs are not truncated
		slog.Warn("observed range exceeds bits stored, widening",
			"min", min, "max", max, "bitsStored", bits, "bitsAllocated", desc.AllocatedBits())
		bits = desc.AllocatedBits()
	}
	return SampleRange{Min: float64(min), Max: float64(max), Bits: bits}
}

func scanFloatMinMax(frame *Frame, desc *FrameDescriptor) SampleRange {
	if len(frame.Floats) == 0 {
		// gonum floats.Min/Max panic on empty input
		return SampleRange{Min: 0, Max: 1, Bits: desc.AllocatedBits()}
	}
	data := make([]float64, len(frame.Floats))
	for i, v := range frame.Floats {
		data[i] = float64(v)
	}
	min := floats.Min(data)
	max := floats.Max(data)
	if min == max {
		max = min + 1
	}
	return SampleRange{Min: min, Max: max, Bits: desc.AllocatedBits()}
}
