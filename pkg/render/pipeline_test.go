package render

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRender_ValidatesGeometry(t *testing.T) {
	sess := NewSession()
	desc := &FrameDescriptor{Rows: 2, Columns: 2, BitsAllocated: 16, BitsStored: 16}

	_, err := sess.DefaultRender(wordFrame(1, 2), desc, nil, 0)
	assert.Error(t, err)

	_, err = sess.DefaultRender(nil, desc, nil, 0)
	assert.Error(t, err)
}

func TestDefaultRender_AutoWindowWhenUnconfigured(t *testing.T) {
	sess := NewSession()
	desc := &FrameDescriptor{Rows: 1, Columns: 3, BitsAllocated: 16, BitsStored: 12}
	frame := wordFrame(0, 2048, 4095)

	out, err := sess.DefaultRender(frame, desc, nil, 0)
	require.NoError(t, err)

	assert.Equal(t, uint8(0), out.Bytes[0])
	assert.InDelta(t, 127.5, float64(out.Bytes[1]), 1)
	assert.Equal(t, uint8(255), out.Bytes[2])

	// the computed window was written back for reuse
	w, ok := desc.CachedAutoWindow(0)
	require.True(t, ok)
	assert.Equal(t, 2048.0, w.Center)
	assert.Equal(t, 4096.0, w.Width)
}

func TestDefaultRender_ColorIdentitySkipsVOI(t *testing.T) {
	sess := NewSession()
	desc := &FrameDescriptor{
		Rows: 1, Columns: 3,
		BitsAllocated: 8, BitsStored: 8,
		PhotometricInterpretation: "RGB",
		SamplesPerPixel:           3,
	}
	frame := NewFrame(1, 3, FormatUint8)
	copy(frame.Bytes, []uint8{7, 128, 250})

	out, err := sess.DefaultRender(frame, desc, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, frame.Bytes, out.Bytes, "color samples pass through at the identity window")
}

func TestRawRender_AppliesModalityOnly(t *testing.T) {
	sess := NewSession()
	desc := &FrameDescriptor{
		Rows: 1, Columns: 3,
		BitsAllocated: 16, BitsStored: 12,
		RescaleSlope: 2, RescaleIntercept: 0,
	}
	frame := wordFrame(0, 100, 2000)

	out, err := sess.RawRender(frame, desc, nil, 0)
	require.NoError(t, err)
	require.Equal(t, FormatUint16, out.Format)
	assert.Equal(t, uint16(0), out.Words[0])
	assert.Equal(t, uint16(200), out.Words[1])
	assert.Equal(t, uint16(4000), out.Words[2])
}

func TestRawRender_IdentityPassesThrough(t *testing.T) {
	sess := NewSession()
	desc := &FrameDescriptor{Rows: 1, Columns: 2, BitsAllocated: 16, BitsStored: 16}
	frame := wordFrame(5, 10)

	out, err := sess.RawRender(frame, desc, nil, 0)
	require.NoError(t, err)
	assert.Same(t, frame, out)
}

func TestRawRender_MasksOverlays(t *testing.T) {
	sess := NewSession()
	desc := &FrameDescriptor{
		Rows: 1, Columns: 1,
		BitsAllocated: 16, BitsStored: 12, HighBit: 15,
		EmbeddedOverlays: true,
	}
	frame := wordFrame(0xF123)

	out, err := sess.RawRender(frame, desc, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0123), out.Words[0])
}

func TestDefaultRender_PresentationLUTComposed(t *testing.T) {
	sess := NewSession()
	desc := &FrameDescriptor{Rows: 1, Columns: 3, BitsAllocated: 8, BitsStored: 8}
	frame := NewFrame(1, 3, FormatUint8)
	copy(frame.Bytes, []uint8{0, 128, 255})
	win := &WindowLevel{Center: 127.5, Width: 256}

	plain, err := sess.DefaultRender(frame, desc, &WindowParams{Window: win}, 0)
	require.NoError(t, err)

	inverse := make([]uint8, 256)
	for i := range inverse {
		inverse[i] = uint8(255 - i)
	}
	p := &WindowParams{
		Window:          win,
		PresentationLUT: &ExplicitLUT{Descriptor: [3]int{256, 0, 8}, DataBytes: inverse},
	}
	remapped, err := sess.DefaultRender(frame, desc, p, 0)
	require.NoError(t, err)

	for i := range plain.Bytes {
		assert.Equal(t, plain.Bytes[i], 255-remapped.Bytes[i], "sample %d", i)
	}
}

func TestDefaultRender_PaddedBackgroundStaysBlack(t *testing.T) {
	sess := NewSession()
	pad := 0
	desc := &FrameDescriptor{
		Rows: 1, Columns: 4,
		BitsAllocated: 16, BitsStored: 12,
		PhotometricInterpretation: "MONOCHROME2",
		RescaleSlope:              1,
		RescaleIntercept:          -1024,
		PixelPaddingValue:         &pad,
	}
	frame := wordFrame(0, 1000, 2000, 3000)

	out, err := sess.DefaultRender(frame, desc, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), out.Bytes[0], "padding maps to background")
	assert.Greater(t, out.Bytes[3], out.Bytes[1], "windowed values stay ordered")
}

func TestSession_ConcurrentRenders(t *testing.T) {
	sess := NewSession()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			desc := &FrameDescriptor{
				Rows: 1, Columns: 3,
				BitsAllocated: 16, BitsStored: 12,
				RescaleSlope: 1, RescaleIntercept: -1024,
			}
			frame := wordFrame(0, 2048, 4095)
			for i := 0; i < 10; i++ {
				_, err := sess.DefaultRender(frame, desc, nil, 0)
				assert.NoError(t, err)
			}
		}(g)
	}
	wg.Wait()
}

func TestSession_CacheEviction(t *testing.T) {
	sess := NewSession(WithCacheSize(2))
	for i := 1; i <= 4; i++ {
		desc := &FrameDescriptor{
			Rows: 1, Columns: 2,
			BitsAllocated: 16, BitsStored: 12,
			RescaleSlope: float64(i), RescaleIntercept: -1,
		}
		require.NotNil(t, sess.ModalityLookup(desc, nil, 0))
	}
	assert.Equal(t, 2, sess.CachedTables(), "cache stays bounded")
}
