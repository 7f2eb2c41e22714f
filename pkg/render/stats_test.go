package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wordFrame(samples ...uint16) *Frame {
	f := NewFrame(1, len(samples), FormatUint16)
	copy(f.Words, samples)
	return f
}

func TestMinMax_FlatFrameWidened(t *testing.T) {
	desc := &FrameDescriptor{Rows: 1, Columns: 4, BitsAllocated: 16, BitsStored: 12}
	frame := wordFrame(500, 500, 500, 500)

	r := MinMax(frame, desc, 0)
	assert.Equal(t, 500.0, r.Min)
	assert.Equal(t, 501.0, r.Max, "flat frames widen max by 1")
}

func TestMinMax_Memoized(t *testing.T) {
	desc := &FrameDescriptor{Rows: 1, Columns: 3, BitsAllocated: 16, BitsStored: 12}
	frame := wordFrame(10, 20, 30)

	r1 := MinMax(frame, desc, 0)
	// a different frame at the same index returns the memoized range
	r2 := MinMax(wordFrame(0, 0, 0), desc, 0)
	assert.Equal(t, r1, r2)

	// distinct frame indexes do not interfere
	r3 := MinMax(wordFrame(7, 7, 7), desc, 1)
	assert.Equal(t, 7.0, r3.Min)
}

func TestMinMax_ExcludesPaddingRange(t *testing.T) {
	pad, limit := 0, 63
	desc := &FrameDescriptor{
		Rows: 1, Columns: 5,
		BitsAllocated: 16, BitsStored: 12,
		PhotometricInterpretation: "MONOCHROME2",
		PixelPaddingValue:         &pad,
		PixelPaddingRangeLimit:    &limit,
	}
	frame := wordFrame(0, 63, 100, 200, 20)

	r := MinMax(frame, desc, 0)
	assert.Equal(t, 100.0, r.Min)
	assert.Equal(t, 200.0, r.Max)
}

func TestMinMax_PaddingIgnoredForColor(t *testing.T) {
	pad := 0
	desc := &FrameDescriptor{
		Rows: 1, Columns: 3,
		BitsAllocated: 8, BitsStored: 8,
		PhotometricInterpretation: "RGB",
		PixelPaddingValue:         &pad,
	}
	f := NewFrame(1, 3, FormatUint8)
	copy(f.Bytes, []uint8{0, 10, 20})

	r := MinMax(f, desc, 0)
	assert.Equal(t, 0.0, r.Min)
}

func TestMinMax_WidensBitsStored(t *testing.T) {
	desc := &FrameDescriptor{Rows: 1, Columns: 3, BitsAllocated: 16, BitsStored: 8}
	frame := wordFrame(10, 300, 100)

	r := MinMax(frame, desc, 0)
	require.Equal(t, 300.0, r.Max)
	assert.Equal(t, 16, r.Bits, "range beyond bits stored widens to bits allocated")
}

func TestMinMax_SignedSamples(t *testing.T) {
	desc := &FrameDescriptor{Rows: 1, Columns: 3, BitsAllocated: 16, BitsStored: 16, PixelRepresentation: 1}
	frame := wordFrame(0xFFFF, 0x0000, 0x0400) // -1, 0, 1024

	r := MinMax(frame, desc, 0)
	assert.Equal(t, -1.0, r.Min)
	assert.Equal(t, 1024.0, r.Max)
}

func TestMinMax_FloatFrames(t *testing.T) {
	desc := &FrameDescriptor{Rows: 1, Columns: 4, BitsAllocated: 32}
	f := NewFrame(1, 4, FormatFloat32)
	copy(f.Floats, []float32{-2.5, 0, 1.5, 7.25})

	r := MinMax(f, desc, 0)
	assert.Equal(t, -2.5, r.Min)
	assert.Equal(t, 7.25, r.Max)
}

func TestMinMax_EmptyFloatFrame(t *testing.T) {
	desc := &FrameDescriptor{BitsAllocated: 32}
	frame := NewFrame(0, 0, FormatFloat32)

	r := MinMax(frame, desc, 0)
	assert.Less(t, r.Min, r.Max, "zero-sample frames keep a non-empty domain")

	out, err := NewSession().DefaultRender(frame, desc, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Len())
}

func TestMinMax_AllPaddingFrame(t *testing.T) {
	pad := 100
	desc := &FrameDescriptor{
		Rows: 1, Columns: 2,
		BitsAllocated: 16, BitsStored: 12,
		PhotometricInterpretation: "MONOCHROME2",
		PixelPaddingValue:         &pad,
	}
	frame := wordFrame(100, 100)

	r := MinMax(frame, desc, 0)
	assert.Less(t, r.Min, r.Max, "domain stays non-empty when every sample is padding")
}
