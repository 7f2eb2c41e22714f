package render

import "fmt"

// DefaultCTPresets returns the common CT viewing windows.
func DefaultCTPresets() []WindowLevel {
	return []WindowLevel{
		{Center: 40, Width: 400, Explanation: "SOFT_TISSUE"},
		{Center: 400, Width: 2000, Explanation: "BONE"},
		{Center: -600, Width: 1500, Explanation: "LUNG"},
		{Center: 50, Width: 350, Explanation: "BRAIN"},
	}
}

// DefaultDXPresets returns the default X-ray viewing window.
func DefaultDXPresets() []WindowLevel {
	return []WindowLevel{
		{Center: 32768, Width: 65535, Explanation: "DEFAULT"},
	}
}

// PresetList returns the ordered window/level presets for a frame: a
// synthesized "auto" entry at position 0, then the descriptor's linear
// windows, then its VOI LUT sequence items as EXPLICIT entries.
func (s *Session) PresetList(frame *Frame, desc *FrameDescriptor, params *WindowParams, frameIndex int) []WindowLevel {
	p := params.orDefault()

	masked, gap := ClearOverlayBits(frame, desc, frameIndex)
	r := MinMax(masked, desc, frameIndex)
	m := s.modality(desc, p, r, gap)
	auto := s.autoWindow(desc, m, r, frameIndex)

	presets := make([]WindowLevel, 0, 1+len(desc.Windows)+len(desc.VOILUTs))
	presets = append(presets, auto)
	for _, w := range desc.Windows {
		if w.Function == "" {
			w.Function = desc.VOILUTFunction
		}
		if w.Explanation == "" {
			w.Explanation = fmt.Sprintf("W%v/L%v", w.Width, w.Center)
		}
		presets = append(presets, w)
	}
	for i := range desc.VOILUTs {
		l := &desc.VOILUTs[i]
		if !usableExplicit(l) {
			continue
		}
		name := l.Explanation
		if name == "" {
			name = fmt.Sprintf("LUT %d", i+1)
		}
		presets = append(presets, WindowLevel{
			Function:    FunctionExplicit,
			Explanation: name,
			Explicit:    l,
		})
	}
	return presets
}

// FindPreset returns the preset whose explanation matches name.
func FindPreset(presets []WindowLevel, name string) (WindowLevel, bool) {
	for _, w := range presets {
		if w.Explanation == name {
			return w, true
		}
	}
	return WindowLevel{}, false
}
