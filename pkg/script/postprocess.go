package script

import (
	"strings"
	"unicode/utf8"
)

// The post-processor repairs cross-entry artifacts the scanner cannot see:
// speaker labels split from their dialogue, placeholder tokens embedded in
// speech, and short garbage fragments next to real dialogue. The passes
// run per line, in a fixed order; reordering them changes observable
// output (merging placeholders before promoting speakers, for example,
// destroys speaker labels made of a bare placeholder).

const terminalPunct = "。．…！？、，"
const bracketRunes = "「」『』＜＞"

// postProcess applies the repair passes to every line of rec in place.
// Lines are independent; nothing ever merges across line boundaries.
func postProcess(rec *FileRecord) {
	for n, entries := range rec.Lines {
		entries = dropShortFragments(entries)
		promoteSpeakers(entries)
		promotePlaceholders(entries)
		entries = mergePlaceholders(entries)
		clearOpaqueTranslations(entries)
		if len(entries) == 0 {
			delete(rec.Lines, n)
			continue
		}
		rec.Lines[n] = entries
	}
}

// dropShortFragments removes Narration of two characters or fewer from any
// line that also carries Dialogue. Such fragments are parameter regions
// that happened to decode, not prose.
func dropShortFragments(entries []*Entry) []*Entry {
	hasDialogue := false
	for _, e := range entries {
		if e.Type == Dialogue {
			hasDialogue = true
			break
		}
	}
	if !hasDialogue {
		return entries
	}
	out := entries[:0]
	for _, e := range entries {
		if e.Type == Narration && utf8.RuneCountInString(e.Original) <= 2 {
			continue
		}
		out = append(out, e)
	}
	return out
}

// promoteSpeakers reclassifies Narration immediately preceding Dialogue as
// CharacterName when it reads like a label: no terminal punctuation, no
// brackets. There is no length bound — honorifics and titles must pass.
func promoteSpeakers(entries []*Entry) {
	for i := 0; i+1 < len(entries); i++ {
		e := entries[i]
		if e.Type != Narration || entries[i+1].Type != Dialogue {
			continue
		}
		if strings.ContainsAny(e.Original, terminalPunct) || strings.ContainsAny(e.Original, bracketRunes) {
			continue
		}
		e.Type = CharacterName
	}
}

// promotePlaceholders turns a placeholder that appears before any dialogue
// on a dialogue-bearing line into the speaker: the player's name is who is
// talking. Placeholders after the first dialogue are left for the merge
// pass.
func promotePlaceholders(entries []*Entry) {
	firstDialogue := -1
	for i, e := range entries {
		if e.Type == Dialogue {
			firstDialogue = i
			break
		}
	}
	if firstDialogue < 0 {
		return
	}
	for i := 0; i < firstDialogue; i++ {
		if entries[i].Type == NamePlaceholder {
			entries[i].Type = CharacterName
		}
	}
}

// mergePlaceholders folds remaining placeholders into adjacent dialogue:
// the engine substitutes the name mid-sentence, so the token belongs
// inside the speech. The preceding dialogue is preferred; the donor entry
// is removed. With no dialogue neighbor the placeholder stays as is.
//
// The receiving entry keeps its own byte range. The donor's bytes stay in
// the binary untouched at recompile time; the engine still resolves them.
func mergePlaceholders(entries []*Entry) []*Entry {
	for i := 0; i < len(entries); {
		if entries[i].Type != NamePlaceholder {
			i++
			continue
		}
		switch {
		case i > 0 && entries[i-1].Type == Dialogue:
			entries[i-1].Original += entries[i].Original
			entries = append(entries[:i], entries[i+1:]...)
		case i+1 < len(entries) && entries[i+1].Type == Dialogue:
			entries[i+1].Original = entries[i].Original + entries[i+1].Original
			entries = append(entries[:i], entries[i+1:]...)
		default:
			i++
		}
	}
	return entries
}

// clearOpaqueTranslations strips any translation slot from entries the
// reclassification passes moved out of the translatable set.
func clearOpaqueTranslations(entries []*Entry) {
	for _, e := range entries {
		if !e.Type.Translatable() {
			e.Translation = nil
		}
	}
}
