package script

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// EntryType identifies what kind of text an extracted string is.
type EntryType string

// Translatable types carry a translation slot in the output JSON;
// the rest are engine data the translator must not touch.
const (
	Dialogue     EntryType = "Dialogue"
	Narration    EntryType = "Narration"
	InnerThought EntryType = "InnerThought"
	EmailMessage EntryType = "EmailMessage"

	CharacterName       EntryType = "CharacterName"
	NamePlaceholder     EntryType = "NamePlaceholder"
	SpriteReference     EntryType = "SpriteReference"
	SoundEffect         EntryType = "SoundEffect"
	HashtagLabel        EntryType = "HashtagLabel"
	EffectReference     EntryType = "EffectReference"
	BackgroundReference EntryType = "BackgroundReference"
	PositionCode        EntryType = "PositionCode"
	UIMarker            EntryType = "UIMarker"
	SeasonDateMarker    EntryType = "SeasonDateMarker"
	SystemCode          EntryType = "SystemCode"
)

// Translatable reports whether entries of this type are meant for the translator.
func (t EntryType) Translatable() bool {
	switch t {
	case Dialogue, Narration, InnerThought, EmailMessage:
		return true
	}
	return false
}

// Valid reports whether t is a member of the taxonomy.
func (t EntryType) Valid() bool {
	switch t {
	case Dialogue, Narration, InnerThought, EmailMessage,
		CharacterName, NamePlaceholder, SpriteReference, SoundEffect,
		HashtagLabel, EffectReference, BackgroundReference, PositionCode,
		UIMarker, SeasonDateMarker, SystemCode:
		return true
	}
	return false
}

// Entry is one extracted, classified string.
//
// Offset and ByteLen locate the string's bytes in the source binary and are
// the recompiler's key; they are internal and never appear in the JSON the
// translator sees.
type Entry struct {
	Type        EntryType
	Original    string
	Offset      int
	ByteLen     int
	Translation *string
}

// entry wire shapes. The translation field must be present-and-null on
// translatable entries and absent on everything else, so two shapes exist.
type translatableJSON struct {
	Type        EntryType `json:"type"`
	Original    string    `json:"original"`
	Translation *string   `json:"translation"`
}

type opaqueJSON struct {
	Type     EntryType `json:"type"`
	Original string    `json:"original"`
}

func (e *Entry) MarshalJSON() ([]byte, error) {
	if e.Type.Translatable() {
		return json.Marshal(translatableJSON{e.Type, e.Original, e.Translation})
	}
	return json.Marshal(opaqueJSON{e.Type, e.Original})
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	var w translatableJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if !w.Type.Valid() {
		return fmt.Errorf("unknown entry type %q", w.Type)
	}
	e.Type = w.Type
	e.Original = w.Original
	e.Translation = w.Translation
	return nil
}

// Metadata summarizes one processed script file.
type Metadata struct {
	File         string `json:"file"`
	TotalLines   int    `json:"total_lines"`
	Translatable int    `json:"translatable"`
}

// FileRecord is the full extraction result for one script file: entries
// grouped by the 1-based line they were discovered on, in discovery order.
type FileRecord struct {
	Lines    map[int][]*Entry
	Metadata Metadata
}

// LineNumbers returns the populated line numbers in ascending order.
func (r *FileRecord) LineNumbers() []int {
	nums := make([]int, 0, len(r.Lines))
	for n := range r.Lines {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}

// TranslatableCount counts entries whose type is translatable.
func (r *FileRecord) TranslatableCount() int {
	n := 0
	for _, entries := range r.Lines {
		for _, e := range entries {
			if e.Type.Translatable() {
				n++
			}
		}
	}
	return n
}

// MarshalJSON emits the line map with numerically ascending string keys.
// encoding/json would order map keys lexicographically ("10" before "2"),
// so the object is assembled by hand.
func (r *FileRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"lines":{`)
	for i, n := range r.LineNumbers() {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(strconv.Itoa(n)))
		buf.WriteByte(':')
		entries, err := json.Marshal(r.Lines[n])
		if err != nil {
			return nil, err
		}
		buf.Write(entries)
	}
	buf.WriteString(`},"metadata":`)
	meta, err := json.Marshal(r.Metadata)
	if err != nil {
		return nil, err
	}
	buf.Write(meta)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r *FileRecord) UnmarshalJSON(data []byte) error {
	var w struct {
		Lines    map[string][]*Entry `json:"lines"`
		Metadata Metadata            `json:"metadata"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	r.Lines = make(map[int][]*Entry, len(w.Lines))
	for k, entries := range w.Lines {
		n, err := strconv.Atoi(k)
		if err != nil || n < 1 {
			return fmt.Errorf("line key %q is not a positive integer", k)
		}
		r.Lines[n] = entries
	}
	r.Metadata = w.Metadata
	return nil
}
