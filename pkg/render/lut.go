package render

import "math"

// BitDescriptor describes how raw input samples are reinterpreted before
// indexing a table: the meaningful bit width and two's-complement flag.
type BitDescriptor struct {
	Bits   int
	Signed bool
}

// Normalize masks a raw sample to Bits and sign-extends when Signed.
func (b BitDescriptor) Normalize(raw int) int {
	mask := (1 << b.Bits) - 1
	v := raw & mask
	if b.Signed && v >= 1<<(b.Bits-1) {
		v -= 1 << b.Bits
	}
	return v
}

// MinSample returns the smallest representable sample value.
func (b BitDescriptor) MinSample() int {
	if b.Signed {
		return -(1 << (b.Bits - 1))
	}
	return 0
}

// MaxSample returns the largest representable sample value.
func (b BitDescriptor) MaxSample() int {
	if b.Signed {
		return 1<<(b.Bits-1) - 1
	}
	return 1<<b.Bits - 1
}

// LutParameters is the immutable value key describing a linear transform.
// It is comparable and used directly as a cache key: two frames with
// identical parameters resolve to the same cached table instance. The
// observed sample domain is part of the key because the synthesized ramp
// spans exactly that domain.
type LutParameters struct {
	Intercept        float64
	Slope            float64
	PaddingValue     int
	PaddingLimit     int
	HasPadding       bool
	HasPaddingLimit  bool
	BitsStored       int
	InputSigned      bool
	OutputSigned     bool
	OutputBits       int
	InverseOnPadding bool
	MinSample        int
	MaxSample        int
}

// LookupTable is an immutable function table mapping normalized input
// samples to output samples. The mutating methods (AdjustOutputBits,
// Invert) and Compose are construction-phase only: they must not be
// called once the table has been published to a cache or another
// goroutine.
type LookupTable interface {
	// Len returns the number of entries.
	Len() int
	// Offset returns the input value mapped by entry 0.
	Offset() int
	// InBits returns the input bit descriptor.
	InBits() BitDescriptor
	// OutputBits returns the output bit depth.
	OutputBits() int
	// Lookup normalizes sample through the input bit descriptor,
	// subtracts the offset and clamps to the table domain. Out-of-domain
	// samples are clamped, never an error.
	Lookup(sample int) int
	// AdjustOutputBits right-shifts every entry when reducing (integer
	// truncation, lossy) or left-shifts when increasing. Returns the
	// receiver, or a width-promoted copy when the backing is too narrow.
	AdjustOutputBits(bits int) LookupTable
	// Invert replaces every entry e with maxOutputValue-e, in place.
	Invert() LookupTable
	// Compose returns a table t with t.Lookup(x) == other.Lookup(self.Lookup(x))
	// for all x in the receiver's domain.
	Compose(other LookupTable) LookupTable
}

// byteLUT is the 8-bit-backed variant, used when output fits a byte.
type byteLUT struct {
	in     BitDescriptor
	out    int
	offset int
	data   []uint8
}

// wordLUT is the 16-bit-backed variant for wider outputs.
type wordLUT struct {
	in     BitDescriptor
	out    int
	offset int
	data   []uint16
}

// NewByteLUT wraps byte-backed table data.
func NewByteLUT(in BitDescriptor, outBits, offset int, data []uint8) LookupTable {
	return &byteLUT{in: in, out: outBits, offset: offset, data: data}
}

// NewWordLUT wraps word-backed table data.
func NewWordLUT(in BitDescriptor, outBits, offset int, data []uint16) LookupTable {
	return &wordLUT{in: in, out: outBits, offset: offset, data: data}
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func (t *byteLUT) Len() int              { return len(t.data) }
func (t *byteLUT) Offset() int           { return t.offset }
func (t *byteLUT) InBits() BitDescriptor { return t.in }
func (t *byteLUT) OutputBits() int       { return t.out }

func (t *byteLUT) Lookup(sample int) int {
	return int(t.data[clampIndex(t.in.Normalize(sample)-t.offset, len(t.data))])
}

func (t *byteLUT) AdjustOutputBits(bits int) LookupTable {
	switch {
	case bits < t.out:
		shift := t.out - bits
		for i, v := range t.data {
			t.data[i] = v >> shift
		}
	case bits > t.out:
		if bits > 8 {
			// promote to word backing
			shift := bits - t.out
			data := make([]uint16, len(t.data))
			for i, v := range t.data {
				data[i] = uint16(v) << shift
			}
			return &wordLUT{in: t.in, out: bits, offset: t.offset, data: data}
		}
		shift := bits - t.out
		for i, v := range t.data {
			t.data[i] = v << shift
		}
	}
	t.out = bits
	return t
}

func (t *byteLUT) Invert() LookupTable {
	max := uint8(1<<t.out - 1)
	for i, v := range t.data {
		t.data[i] = max - v
	}
	return t
}

func (t *byteLUT) Compose(other LookupTable) LookupTable {
	return composeLUT(t.in, t.offset, len(t.data), func(i int) int { return int(t.data[i]) }, other)
}

func (t *wordLUT) Len() int              { return len(t.data) }
func (t *wordLUT) Offset() int           { return t.offset }
func (t *wordLUT) InBits() BitDescriptor { return t.in }
func (t *wordLUT) OutputBits() int       { return t.out }

func (t *wordLUT) Lookup(sample int) int {
	return int(t.data[clampIndex(t.in.Normalize(sample)-t.offset, len(t.data))])
}

func (t *wordLUT) AdjustOutputBits(bits int) LookupTable {
	switch {
	case bits < t.out:
		shift := t.out - bits
		for i, v := range t.data {
			t.data[i] = v >> shift
		}
	case bits > t.out:
		shift := bits - t.out
		for i, v := range t.data {
			t.data[i] = v << shift
		}
	}
	t.out = bits
	return t
}

func (t *wordLUT) Invert() LookupTable {
	max := uint16(1<<t.out - 1)
	for i, v := range t.data {
		t.data[i] = max - v
	}
	return t
}

func (t *wordLUT) Compose(other LookupTable) LookupTable {
	return composeLUT(t.in, t.offset, len(t.data), func(i int) int { return int(t.data[i]) }, other)
}

// composeLUT runs a table's backing through other's lookup, keeping the
// first table's shape with other's output bit width.
func composeLUT(in BitDescriptor, offset, n int, entry func(int) int, other LookupTable) LookupTable {
	if other.OutputBits() <= 8 {
		data := make([]uint8, n)
		for i := 0; i < n; i++ {
			data[i] = uint8(other.Lookup(entry(i)))
		}
		return &byteLUT{in: in, out: other.OutputBits(), offset: offset, data: data}
	}
	data := make([]uint16, n)
	for i := 0; i < n; i++ {
		data[i] = uint16(other.Lookup(entry(i)))
	}
	return &wordLUT{in: in, out: other.OutputBits(), offset: offset, data: data}
}

// bitLength returns the number of bits needed to represent v.
func bitLength(v int) int {
	if v < 0 {
		v = -v
	}
	n := 0
	for v > 0 {
		n++
		v >>= 1
	}
	return n
}

// newLinearRamp synthesizes the Modality LUT ramp for p: entry(x) maps a
// stored value x in [MinSample,MaxSample] to round(x*slope+intercept)
// shifted into [0, 2^OutputBits-1]. Padding entries are forced to the
// background value when padding is enabled.
func newLinearRamp(p LutParameters) LookupTable {
	n := p.MaxSample - p.MinSample + 1
	lo := float64(p.MinSample)*p.Slope + p.Intercept
	hi := float64(p.MaxSample)*p.Slope + p.Intercept
	if hi < lo {
		lo, hi = hi, lo
	}
	maxOut := 1<<p.OutputBits - 1

	in := BitDescriptor{Bits: p.BitsStored, Signed: p.InputSigned}
	value := func(i int) int {
		x := float64(p.MinSample + i)
		v := int(math.Round(x*p.Slope + p.Intercept - lo))
		if v < 0 {
			v = 0
		} else if v > maxOut {
			v = maxOut
		}
		return v
	}

	var table LookupTable
	if p.OutputBits <= 8 {
		data := make([]uint8, n)
		for i := range data {
			data[i] = uint8(value(i))
		}
		table = &byteLUT{in: in, out: p.OutputBits, offset: p.MinSample, data: data}
	} else {
		data := make([]uint16, n)
		for i := range data {
			data[i] = uint16(value(i))
		}
		table = &wordLUT{in: in, out: p.OutputBits, offset: p.MinSample, data: data}
	}

	if p.HasPadding {
		padLo, padHi := p.PaddingValue, p.PaddingValue
		if p.HasPaddingLimit {
			if p.PaddingLimit < padLo {
				padLo = p.PaddingLimit
			} else {
				padHi = p.PaddingLimit
			}
		}
		background := 0
		if p.InverseOnPadding {
			background = maxOut
		}
		setPadding(table, padLo, padHi, background)
	}
	return table
}

// setPadding forces the mapped output of the padding range to background.
// Only entries inside the table domain are touched.
func setPadding(t LookupTable, padLo, padHi, background int) {
	switch lut := t.(type) {
	case *byteLUT:
		for v := padLo; v <= padHi; v++ {
			if i := v - lut.offset; i >= 0 && i < len(lut.data) {
				lut.data[i] = uint8(background)
			}
		}
	case *wordLUT:
		for v := padLo; v <= padHi; v++ {
			if i := v - lut.offset; i >= 0 && i < len(lut.data) {
				lut.data[i] = uint16(background)
			}
		}
	}
}
