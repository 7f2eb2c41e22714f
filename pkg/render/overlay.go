package render

// overlayMask computes the AND mask that clears embedded-overlay bits for
// the descriptor, and the number of gap bits cleared between the stored
// area and the high bit. A zero mask means masking is a no-op: no
// embedded overlays declared, bits stored fills the allocation, or the
// allocation is outside the 8..16 bit range overlays can be packed into.
func overlayMask(desc *FrameDescriptor) (mask int, gapBits int) {
	if !desc.EmbeddedOverlays {
		return 0, 0
	}
	stored, alloc := desc.StoredBits(), desc.AllocatedBits()
	if stored == alloc || alloc < 8 || alloc > 16 {
		return 0, 0
	}
	high := desc.HighBit + 1
	mask = 1<<high - 1
	if high > stored {
		// clear the gap bits between the top of the stored data and the
		// high bit as well; e.g. bitsStored=12, highBit=15 keeps 0x0FFF
		gapBits = high - stored
		mask &^= (1<<gapBits - 1) << stored
	}
	return mask, gapBits
}

// ClearOverlayBits clears high-order bits carrying embedded overlay
// bitmaps, returning a masked copy of the frame. It must run strictly
// before any LUT evaluation. The returned gap-bit count extends the
// Modality LUT's overlay-bit mask parameter.
func ClearOverlayBits(frame *Frame, desc *FrameDescriptor, frameIndex int) (*Frame, int) {
	mask, gapBits := overlayMask(desc)
	if mask == 0 {
		return frame, 0
	}
	out := frame.Clone()
	switch out.Format {
	case FormatUint8:
		m := uint8(mask)
		for i, v := range out.Bytes {
			out.Bytes[i] = v & m
		}
	case FormatUint16:
		m := uint16(mask)
		for i, v := range out.Words {
			out.Words[i] = v & m
		}
	default:
		// overlays are only packed into 8..16 bit allocations
		return frame, 0
	}
	return out, gapBits
}
