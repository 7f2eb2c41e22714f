package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClearOverlayBits_MasksHighBits(t *testing.T) {
	desc := &FrameDescriptor{
		Rows: 1, Columns: 2,
		BitsAllocated:    16,
		BitsStored:       12,
		HighBit:          15,
		EmbeddedOverlays: true,
	}
	frame := wordFrame(0xF123, 0x0FFF)

	out, gap := ClearOverlayBits(frame, desc, 0)
	require.NotSame(t, frame, out, "masking operates on a copy")
	assert.Equal(t, 4, gap)
	assert.Equal(t, uint16(0x0123), out.Words[0])
	assert.Equal(t, uint16(0x0FFF), out.Words[1])
	// original untouched
	assert.Equal(t, uint16(0xF123), frame.Words[0])
}

func TestClearOverlayBits_NoOverlaysDeclared(t *testing.T) {
	desc := &FrameDescriptor{Rows: 1, Columns: 1, BitsAllocated: 16, BitsStored: 12, HighBit: 11}
	frame := wordFrame(0xF123)

	out, gap := ClearOverlayBits(frame, desc, 0)
	assert.Same(t, frame, out)
	assert.Equal(t, 0, gap)
}

func TestClearOverlayBits_FullAllocationNoOp(t *testing.T) {
	desc := &FrameDescriptor{
		Rows: 1, Columns: 1,
		BitsAllocated: 16, BitsStored: 16, HighBit: 15,
		EmbeddedOverlays: true,
	}
	frame := wordFrame(0xF123)

	out, _ := ClearOverlayBits(frame, desc, 0)
	assert.Same(t, frame, out, "bitsStored == bitsAllocated leaves nothing to clear")
}

func TestClearOverlayBits_WideAllocationNoOp(t *testing.T) {
	desc := &FrameDescriptor{
		Rows: 1, Columns: 1,
		BitsAllocated: 32, BitsStored: 24, HighBit: 23,
		EmbeddedOverlays: true,
	}
	frame := NewFrame(1, 1, FormatInt32)
	frame.Ints[0] = 0x00FFFFFF

	out, _ := ClearOverlayBits(frame, desc, 0)
	assert.Same(t, frame, out, "overlays only pack into 8..16 bit allocations")
}
