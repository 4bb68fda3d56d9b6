package script

import (
	"bytes"
	"errors"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
)

// ErrInvalidSJIS is returned when a byte range does not decode as Shift-JIS.
var ErrInvalidSJIS = errors.New("invalid Shift-JIS byte sequence")

// isSJISLead reports whether b can open a two-byte Shift-JIS character.
func isSJISLead(b byte) bool {
	return (b >= 0x81 && b <= 0x9F) || (b >= 0xE0 && b <= 0xEF)
}

// DecodeSJIS converts Shift-JIS bytes to a UTF-8 string, failing on any
// sequence that is not valid Shift-JIS.
func DecodeSJIS(b []byte) (string, error) {
	out, err := japanese.ShiftJIS.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	// The x/text decoder substitutes U+FFFD for malformed input instead of
	// returning an error. Shift-JIS has no encoding for U+FFFD, so its
	// presence in the output always means the input was bad.
	if bytes.ContainsRune(out, utf8.RuneError) {
		return "", ErrInvalidSJIS
	}
	return string(out), nil
}

// EncodeSJIS converts a UTF-8 string to Shift-JIS bytes. Code points with
// no Shift-JIS encoding make the whole conversion fail.
func EncodeSJIS(s string) ([]byte, error) {
	return japanese.ShiftJIS.NewEncoder().Bytes([]byte(s))
}

// containsCJK reports whether s has at least one ideograph or kana code
// point. CJK symbols and punctuation (U+3000..) count: position codes are
// a katakana middle dot followed by digits.
func containsCJK(s string) bool {
	for _, r := range s {
		if (r >= 0x3000 && r <= 0x30FF) || (r >= 0x4E00 && r <= 0x9FFF) {
			return true
		}
	}
	return false
}
