package script

// The scanner walks a compiled script as an opaque byte sequence. It has no
// grammar for the bytecode; it only decides, byte by byte, whether a string
// candidate starts at the cursor and hands candidates to the extractor.
// State is just the cursor and a 1-based line counter.

type extractMode int

const (
	modeSJIS extractMode = iota
	modeASCII
)

// candidate is an undecoded extraction: the byte range as it will be keyed
// for the recompiler, plus the line it was discovered on. hint carries the
// type when the pattern recognizer already knows it.
type candidate struct {
	offset int
	raw    []byte
	line   int
	mode   extractMode
	hint   EntryType
}

type scanner struct {
	data []byte
	pos  int
	line int
}

func newScanner(data []byte) *scanner {
	return &scanner{data: data, line: 1}
}

// scan walks the whole file and returns every candidate in byte order.
func (s *scanner) scan() []candidate {
	var out []candidate
	for s.pos < len(s.data) {
		b := s.data[s.pos]
		switch {
		case b == 0x0A || b == 0x0D:
			s.newline()
		case s.tryPattern(&out):
		case isSJISLead(b):
			if s.pos+1 >= len(s.data) {
				// lead byte with no successor
				s.pos++
				continue
			}
			s.extract(s.pos, modeSJIS, "", &out)
		default:
			s.pos++
		}
	}
	return out
}

// newline advances the line counter once for a whole run of newline bytes,
// then skips any control sequence riding directly behind it. Control
// payloads carry incidental bytes in the SJIS lead range that would
// otherwise decode into garbage entries.
func (s *scanner) newline() {
	s.line++
	for s.pos < len(s.data) && (s.data[s.pos] == 0x0A || s.data[s.pos] == 0x0D) {
		s.pos++
	}
	if s.pos+1 >= len(s.data) || s.data[s.pos] != 0x01 || s.data[s.pos+1] != 0x01 {
		return
	}
	// Skip to the 0x1A closer. Null bytes are payload padding, not
	// terminators: stopping at the first 0x00 would resume scanning in
	// the middle of the sequence and emit entries overlapping it. A bare
	// newline ends the sequence early; EOF drops the tail.
	for i := s.pos + 2; i < len(s.data); i++ {
		switch s.data[i] {
		case 0x1A:
			s.pos = i + 1
			return
		case 0x0A, 0x0D:
			s.pos = i
			return
		}
	}
	s.pos = len(s.data)
}

// extract extends a candidate start into a terminated byte range and
// records it. The forward walk consumes SJIS characters two bytes at a
// time so a trail byte that happens to equal a terminator never splits a
// character, and embedded ASCII inside a mostly-SJIS body is traversed
// byte by byte.
func (s *scanner) extract(start int, m extractMode, hint EntryType, out *[]candidate) {
	if m == modeSJIS {
		start = s.backScanASCII(start)
	}
	end := start
	for end < len(s.data) {
		b := s.data[end]
		if b == 0x00 || b == 0x09 || b == 0x0A || b == 0x0D {
			break
		}
		if isSJISLead(b) && end+1 < len(s.data) {
			end += 2
		} else {
			end++
		}
	}
	// Resume after a null terminator; tabs and newlines stay visible to
	// the main loop so the line counter keeps working.
	if end < len(s.data) && s.data[end] == 0x00 {
		s.pos = end + 1
	} else {
		s.pos = end
	}
	if end == start {
		return
	}
	*out = append(*out, candidate{
		offset: start,
		raw:    s.data[start:end],
		line:   s.line,
		mode:   m,
		hint:   hint,
	})
}

// backScanASCII recovers a printable-ASCII prefix in front of an SJIS
// candidate, up to 10 bytes. A leading quote or path fragment belongs to
// the string even though the SJIS-only candidacy check skipped over it.
func (s *scanner) backScanASCII(start int) int {
	lo := start
	for start-lo < 10 && lo > 0 {
		b := s.data[lo-1]
		if b < 0x20 || b > 0x7E {
			break
		}
		lo--
	}
	return lo
}
