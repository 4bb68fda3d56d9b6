package script

import "bytes"

// Known ASCII prefixes for engine asset references. These are literal byte
// patterns; the recognizer fires before SJIS candidacy is considered.
var (
	prefixSpriteN    = []byte(`ST_N\`)
	prefixSpriteL    = []byte(`ST_L\`)
	prefixEffect     = []byte(`EFF\`)
	prefixBackground = []byte(`BG\`)
	wavSuffix        = []byte(`.wav`)
)

// tryPattern checks for a known ASCII pattern at the cursor. On a match it
// runs the extractor in ASCII mode with the implied type and reports true.
func (s *scanner) tryPattern(out *[]candidate) bool {
	rest := s.data[s.pos:]
	switch {
	case bytes.HasPrefix(rest, prefixSpriteN), bytes.HasPrefix(rest, prefixSpriteL):
		s.extract(s.pos, modeASCII, SpriteReference, out)
	case bytes.HasPrefix(rest, prefixEffect):
		s.extract(s.pos, modeASCII, EffectReference, out)
	case bytes.HasPrefix(rest, prefixBackground):
		s.extract(s.pos, modeASCII, BackgroundReference, out)
	case rest[0] == '#':
		s.extract(s.pos, modeASCII, HashtagLabel, out)
	case isSoundStart(rest):
		s.extract(s.pos, modeASCII, SoundEffect, out)
	case isFusionMarker(rest):
		// A sprite name fused with a position code: back up over the
		// ASCII stem so the whole reference comes out in one piece
		// (kanade_D_2_・079, never the fragment after the marker).
		s.extract(s.stemStart(s.pos), modeASCII, SpriteReference, out)
	default:
		return false
	}
	return true
}

// isSoundStart matches a path-like ASCII run with ".wav" beginning within
// the next 4 bytes. The short window is a heuristic: sound cues are short
// stems like se01.wav, and a longer window would swallow parameter bytes.
func isSoundStart(rest []byte) bool {
	if !isPathByte(rest[0]) {
		return false
	}
	win := rest
	if len(win) > 8 {
		win = win[:8]
	}
	idx := bytes.Index(win, wavSuffix)
	return idx >= 0 && idx <= 4
}

func isPathByte(b byte) bool {
	return b == '\\' || b == '_' || b == '.' ||
		(b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}

// isFusionMarker matches `_` immediately followed by the SJIS middle dot
// (0x81 0x45), the join between a sprite stem and its position code.
func isFusionMarker(rest []byte) bool {
	return len(rest) >= 3 && rest[0] == '_' && rest[1] == 0x81 && rest[2] == 0x45
}

// stemStart walks backward from the fusion marker over printable ASCII to
// the start of the sprite name.
func (s *scanner) stemStart(pos int) int {
	lo := pos
	for lo > 0 {
		b := s.data[lo-1]
		if b < 0x20 || b > 0x7E {
			break
		}
		lo--
	}
	return lo
}
