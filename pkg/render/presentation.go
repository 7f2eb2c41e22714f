package render

import "log/slog"

// presentation builds the optional final 8-bit remap supplied by a
// presentation override. It composes after the VOI table and takes
// precedence over the simple photometric-inversion flag. Returns nil
// when no presentation LUT is configured or the table is unusable.
func (s *Session) presentation(p WindowParams) LookupTable {
	l := p.PresentationLUT
	if l == nil {
		return nil
	}
	if !usableExplicit(l) {
		slog.Warn("malformed presentation LUT, stage skipped",
			"descriptor", l.Descriptor, "dataLen", len(l.Data)+len(l.DataBytes))
		return nil
	}
	key := explicitKey("plut", l)
	if t, ok := s.cache.get(key); ok {
		return t
	}
	in := BitDescriptor{Bits: voiOutputBits, Signed: false}
	table := explicitTable(l, in)
	if table.OutputBits() != voiOutputBits {
		table = table.AdjustOutputBits(voiOutputBits)
	}
	return s.cache.put(key, table)
}
