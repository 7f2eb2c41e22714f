package render

import "fmt"

// SampleFormat identifies the element type of a frame's backing store.
type SampleFormat int

const (
	FormatUint8 SampleFormat = iota
	FormatUint16
	FormatInt32
	FormatFloat32
)

// Bits returns the storage width of the format in bits.
func (f SampleFormat) Bits() int {
	switch f {
	case FormatUint8:
		return 8
	case FormatUint16:
		return 16
	default:
		return 32
	}
}

// IsFloat reports whether the format holds floating point samples.
func (f SampleFormat) IsFloat() bool { return f == FormatFloat32 }

func (f SampleFormat) String() string {
	switch f {
	case FormatUint8:
		return "uint8"
	case FormatUint16:
		return "uint16"
	case FormatInt32:
		return "int32"
	case FormatFloat32:
		return "float32"
	}
	return fmt.Sprintf("SampleFormat(%d)", int(f))
}

// Frame is a single rasterized frame of samples. Exactly one backing slice
// is non-nil, selected by Format. Integer backings hold raw stored bits;
// signed reinterpretation is driven by the frame descriptor, not the
// storage type.
type Frame struct {
	Rows    int
	Columns int
	Format  SampleFormat

	Bytes  []uint8
	Words  []uint16
	Ints   []int32
	Floats []float32
}

// NewFrame allocates a frame of the given geometry and format.
func NewFrame(rows, cols int, format SampleFormat) *Frame {
	f := &Frame{Rows: rows, Columns: cols, Format: format}
	n := rows * cols
	switch format {
	case FormatUint8:
		f.Bytes = make([]uint8, n)
	case FormatUint16:
		f.Words = make([]uint16, n)
	case FormatInt32:
		f.Ints = make([]int32, n)
	case FormatFloat32:
		f.Floats = make([]float32, n)
	}
	return f
}

// Len returns the number of samples in the frame.
func (f *Frame) Len() int {
	switch f.Format {
	case FormatUint8:
		return len(f.Bytes)
	case FormatUint16:
		return len(f.Words)
	case FormatInt32:
		return len(f.Ints)
	case FormatFloat32:
		return len(f.Floats)
	}
	return 0
}

// Sample returns the raw integer sample at i. For float frames the value
// is truncated; use FloatSample on the float path.
func (f *Frame) Sample(i int) int {
	switch f.Format {
	case FormatUint8:
		return int(f.Bytes[i])
	case FormatUint16:
		return int(f.Words[i])
	case FormatInt32:
		return int(f.Ints[i])
	case FormatFloat32:
		return int(f.Floats[i])
	}
	return 0
}

// FloatSample returns the sample at i as float64 regardless of format.
func (f *Frame) FloatSample(i int) float64 {
	if f.Format == FormatFloat32 {
		return float64(f.Floats[i])
	}
	return float64(f.Sample(i))
}

// Clone returns a deep copy of the frame. Stages that mutate samples
// (overlay masking) operate on a clone so callers keep the original.
func (f *Frame) Clone() *Frame {
	c := &Frame{Rows: f.Rows, Columns: f.Columns, Format: f.Format}
	switch f.Format {
	case FormatUint8:
		c.Bytes = append([]uint8(nil), f.Bytes...)
	case FormatUint16:
		c.Words = append([]uint16(nil), f.Words...)
	case FormatInt32:
		c.Ints = append([]int32(nil), f.Ints...)
	case FormatFloat32:
		c.Floats = append([]float32(nil), f.Floats...)
	}
	return c
}
