package render

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// AutoWindow computes a default window center/width from the observed
// sample range: level = (min+max+1)/2*slope + intercept and
// width = |(max+1-min)*slope|. It is used when neither an explicit
// window nor a VOI LUT is configured.
func AutoWindow(r SampleRange, slope, intercept float64) WindowLevel {
	level := (r.Min+r.Max+1)/2*slope + intercept
	width := math.Abs((r.Max + 1 - r.Min) * slope)
	if width < 1 {
		width = 1
	}
	return WindowLevel{Center: level, Width: width, Explanation: "AUTO"}
}

// AutoWindowPercentile computes a window spanning the [lowQ, highQ]
// quantiles of the frame's samples, which resists outlier-dominated
// min/max ranges. Padding samples are excluded for monochrome images.
// Quantiles are fractions in [0,1], e.g. 0.01 and 0.99.
func AutoWindowPercentile(frame *Frame, desc *FrameDescriptor, lowQ, highQ float64) WindowLevel {
	in := BitDescriptor{Bits: desc.AllocatedBits(), Signed: desc.Signed()}
	padLo, padHi, hasPad := desc.PaddingRange()
	excludePadding := hasPad && desc.IsMonochrome() && !frame.Format.IsFloat()

	n := frame.Len()
	data := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		var v float64
		if frame.Format.IsFloat() {
			v = frame.FloatSample(i)
		} else {
			s := in.Normalize(frame.Sample(i))
			if excludePadding && s >= padLo && s <= padHi {
				continue
			}
			v = float64(s)
		}
		data = append(data, v)
	}
	if len(data) == 0 {
		return WindowLevel{Center: 127.5, Width: 255, Explanation: "AUTO"}
	}
	sort.Float64s(data)

	lo := stat.Quantile(lowQ, stat.Empirical, data, nil)
	hi := stat.Quantile(highQ, stat.Empirical, data, nil)
	if hi <= lo {
		hi = lo + 1
	}

	slope := desc.Slope()
	level := (lo+hi)/2*slope + desc.RescaleIntercept
	width := math.Abs((hi - lo) * slope)
	if width < 1 {
		width = 1
	}
	return WindowLevel{Center: level, Width: width, Explanation: "AUTO_PERCENTILE"}
}
