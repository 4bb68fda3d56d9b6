package script

import (
	"errors"
	"fmt"
	"sort"
)

// RecompileMode selects how translations longer than their original byte
// range are handled.
type RecompileMode int

const (
	// Strict refuses the whole file on any length overflow.
	Strict RecompileMode = iota
	// Expand splices longer translations in, shifting the rest of the
	// file. Engine-side offset tables may desynchronize; the risk is
	// surfaced to the caller, never repaired.
	Expand
)

// ErrLengthOverflow is returned in Strict mode when at least one
// translation does not fit its original byte range.
var ErrLengthOverflow = errors.New("translation exceeds original byte length")

// Replacement is one translated string keyed by its extraction range.
type Replacement struct {
	Offset      int
	ByteLen     int
	Translation string
}

// IssueKind names a per-entry recompile anomaly.
type IssueKind string

const (
	IssueOverflow        IssueKind = "length-overflow"
	IssueUnrepresentable IssueKind = "unrepresentable-codepoint"
)

// Issue reports one entry the recompiler could not (fully) apply.
type Issue struct {
	Kind   IssueKind
	Offset int
	Detail string
}

func (i Issue) String() string {
	return fmt.Sprintf("offset %d: %s: %s", i.Offset, i.Kind, i.Detail)
}

// Recompile writes translations back into a copy of data. Replacements are
// applied in ascending offset order. A translation that re-encodes shorter
// than its original range is null-padded; an unrepresentable code point
// leaves that entry's original bytes in place and is reported. In Strict
// mode any overflow rejects the file; in Expand mode longer translations
// are spliced in and later offsets shift by the accumulated delta.
func Recompile(data []byte, reps []Replacement, mode RecompileMode) ([]byte, []Issue, error) {
	sorted := make([]Replacement, len(reps))
	copy(sorted, reps)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })

	var issues []Issue
	encoded := make([][]byte, len(sorted))
	for i, rep := range sorted {
		if rep.Offset < 0 || rep.Offset+rep.ByteLen > len(data) {
			return nil, issues, fmt.Errorf("replacement at offset %d (len %d) outside file of %d bytes",
				rep.Offset, rep.ByteLen, len(data))
		}
		enc, err := EncodeSJIS(rep.Translation)
		if err != nil {
			issues = append(issues, Issue{
				Kind:   IssueUnrepresentable,
				Offset: rep.Offset,
				Detail: fmt.Sprintf("%q: %v", rep.Translation, err),
			})
			continue
		}
		encoded[i] = enc
	}

	if mode == Strict {
		overflowed := false
		for i, rep := range sorted {
			if encoded[i] != nil && len(encoded[i]) > rep.ByteLen {
				overflowed = true
				issues = append(issues, Issue{
					Kind:   IssueOverflow,
					Offset: rep.Offset,
					Detail: fmt.Sprintf("%d bytes into a %d byte range", len(encoded[i]), rep.ByteLen),
				})
			}
		}
		if overflowed {
			return nil, issues, ErrLengthOverflow
		}
	}

	out := make([]byte, len(data))
	copy(out, data)
	delta := 0
	for i, rep := range sorted {
		enc := encoded[i]
		if enc == nil {
			continue // reported above, original bytes stay
		}
		pos := rep.Offset + delta
		if len(enc) <= rep.ByteLen {
			copy(out[pos:], enc)
			for j := pos + len(enc); j < pos+rep.ByteLen; j++ {
				out[j] = 0x00
			}
			continue
		}
		// Expand mode splice.
		grown := make([]byte, 0, len(out)+len(enc)-rep.ByteLen)
		grown = append(grown, out[:pos]...)
		grown = append(grown, enc...)
		grown = append(grown, out[pos+rep.ByteLen:]...)
		out = grown
		delta += len(enc) - rep.ByteLen
	}
	return out, issues, nil
}

// Replacements collects the recompiler work list for a translated record
// whose offsets were recovered by re-extracting the original binary.
// src supplies offsets and byte lengths; translated supplies the
// translations, aligned by line and position. Entries whose originals no
// longer match are skipped: the translated JSON belongs to a different
// binary revision and silently writing it would corrupt the file.
func Replacements(src, translated *FileRecord) []Replacement {
	var reps []Replacement
	for _, n := range src.LineNumbers() {
		tEntries := translated.Lines[n]
		for i, e := range src.Lines[n] {
			if i >= len(tEntries) {
				break
			}
			t := tEntries[i]
			if !e.Type.Translatable() || t.Translation == nil || *t.Translation == "" {
				continue
			}
			if t.Original != e.Original {
				continue
			}
			reps = append(reps, Replacement{
				Offset:      e.Offset,
				ByteLen:     e.ByteLen,
				Translation: *t.Translation,
			})
		}
	}
	return reps
}
