package script

// Extract runs the full per-file pipeline over one script binary: scan,
// decode, classify, group by line, post-process. It is a pure function of
// its input; files can safely be processed in parallel.
func Extract(name string, data []byte) *FileRecord {
	sc := newScanner(data)
	candidates := sc.scan()

	rec := &FileRecord{Lines: make(map[int][]*Entry)}
	for _, c := range candidates {
		text, err := DecodeSJIS(c.raw)
		if err != nil {
			// parameter bytes masquerading as text
			continue
		}
		if c.mode == modeSJIS && !containsCJK(text) {
			continue
		}
		rec.Lines[c.line] = append(rec.Lines[c.line], &Entry{
			Type:     classify(text, c.hint),
			Original: text,
			Offset:   c.offset,
			ByteLen:  len(c.raw),
		})
	}

	postProcess(rec)

	rec.Metadata = Metadata{
		File:         name,
		TotalLines:   sc.line,
		Translatable: rec.TranslatableCount(),
	}
	return rec
}
