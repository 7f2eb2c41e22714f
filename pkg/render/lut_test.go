package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitDescriptor_Normalize(t *testing.T) {
	unsigned := BitDescriptor{Bits: 12, Signed: false}
	assert.Equal(t, 0, unsigned.Normalize(0))
	assert.Equal(t, 4095, unsigned.Normalize(0xFFF))
	// bits above the width are masked off
	assert.Equal(t, 0x123, unsigned.Normalize(0xF123))

	signed := BitDescriptor{Bits: 16, Signed: true}
	assert.Equal(t, -1, signed.Normalize(0xFFFF))
	assert.Equal(t, -32768, signed.Normalize(0x8000))
	assert.Equal(t, 32767, signed.Normalize(0x7FFF))
}

func TestLookupTable_ClampsOutOfDomain(t *testing.T) {
	data := []uint8{10, 20, 30, 40}
	lut := NewByteLUT(BitDescriptor{Bits: 8}, 8, 100, data)

	// below and above the domain clamp to the boundary entries
	assert.Equal(t, 10, lut.Lookup(0))
	assert.Equal(t, 10, lut.Lookup(100))
	assert.Equal(t, 40, lut.Lookup(103))
	assert.Equal(t, 40, lut.Lookup(250))
}

func TestLookupTable_InvertRoundTrip(t *testing.T) {
	data := make([]uint16, 64)
	for i := range data {
		data[i] = uint16(i * 17 % 4096)
	}
	original := append([]uint16(nil), data...)

	lut := NewWordLUT(BitDescriptor{Bits: 12}, 12, 0, data)
	lut.Invert().Invert()

	for i := range original {
		assert.Equal(t, int(original[i]), lut.Lookup(i), "entry %d", i)
	}
}

func TestLookupTable_ComposeProperty(t *testing.T) {
	// A: 8-bit input -> 12-bit output
	aData := make([]uint16, 256)
	for i := range aData {
		aData[i] = uint16(i << 4)
	}
	a := NewWordLUT(BitDescriptor{Bits: 8}, 12, 0, aData)

	// B: 12-bit input -> 8-bit output
	bData := make([]uint8, 4096)
	for i := range bData {
		bData[i] = uint8(i >> 4)
	}
	b := NewByteLUT(BitDescriptor{Bits: 12}, 8, 0, bData)

	ab := a.Compose(b)
	require.Equal(t, a.Len(), ab.Len())
	require.Equal(t, b.OutputBits(), ab.OutputBits())

	for x := 0; x < 256; x++ {
		assert.Equal(t, b.Lookup(a.Lookup(x)), ab.Lookup(x), "x=%d", x)
	}
}

func TestLookupTable_AdjustOutputBitsTruncates(t *testing.T) {
	data := []uint16{0xABCD, 0x1234, 0x00FF}
	lut := NewWordLUT(BitDescriptor{Bits: 8}, 16, 0, data)

	lut.AdjustOutputBits(8)
	assert.Equal(t, 0xAB, lut.Lookup(0))
	assert.Equal(t, 0x12, lut.Lookup(1))
	assert.Equal(t, 0x00, lut.Lookup(2))

	// restoring the width is lossy: the low byte stays zeroed
	lut.AdjustOutputBits(16)
	assert.Equal(t, 0xAB00, lut.Lookup(0))
	assert.Equal(t, 0x1200, lut.Lookup(1))
	assert.NotEqual(t, 0xABCD, lut.Lookup(0))
}

func TestLookupTable_BytePromotesOnWiden(t *testing.T) {
	data := []uint8{1, 2, 3}
	lut := NewByteLUT(BitDescriptor{Bits: 8}, 8, 0, data)

	wide := lut.AdjustOutputBits(12)
	assert.Equal(t, 12, wide.OutputBits())
	assert.Equal(t, 1<<4, wide.Lookup(0))
	assert.Equal(t, 3<<4, wide.Lookup(2))
}

func TestLinearRamp_PaddingZeroed(t *testing.T) {
	pad := 10
	params := LutParameters{
		Slope:        1,
		Intercept:    0,
		BitsStored:   12,
		OutputBits:   12,
		HasPadding:   true,
		PaddingValue: pad,
		MinSample:    0,
		MaxSample:    4095,
	}
	ramp := newLinearRamp(params)
	assert.Equal(t, 0, ramp.Lookup(pad))
	assert.Equal(t, 100, ramp.Lookup(100))

	// inverted images map padding to the maximum output instead
	params.InverseOnPadding = true
	inv := newLinearRamp(params)
	assert.Equal(t, 4095, inv.Lookup(pad))
}
