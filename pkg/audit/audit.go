package audit

import (
	"encoding/json"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/Sunnie-Evergale/kurokin-tool/pkg/script"
)

// The auditor re-checks extractor output against the invariants the
// pipeline promises, without touching the source binaries. It catches
// regressions in the extractor and hand-edits that broke a file.

// Finding is one invariant violation in one output file.
type Finding struct {
	File   string
	Line   int // 0 when the finding is file-level
	Detail string
}

func (f Finding) String() string {
	if f.Line > 0 {
		return fmt.Sprintf("%s: line %d: %s", f.File, f.Line, f.Detail)
	}
	return fmt.Sprintf("%s: %s", f.File, f.Detail)
}

// CheckFile lints one output JSON document. The raw bytes are inspected
// alongside the decoded record because the translation-slot rule is about
// key presence, which the typed model cannot represent.
func CheckFile(name string, data []byte) []Finding {
	var findings []Finding
	report := func(line int, format string, args ...interface{}) {
		findings = append(findings, Finding{File: name, Line: line, Detail: fmt.Sprintf(format, args...)})
	}

	var rec script.FileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		report(0, "not a valid file record: %v", err)
		return findings
	}

	checkSlots(data, report)

	if rec.Metadata.File == "" {
		report(0, "metadata.file is empty")
	}
	if got := rec.TranslatableCount(); rec.Metadata.Translatable != got {
		report(0, "metadata.translatable is %d, counted %d", rec.Metadata.Translatable, got)
	}

	for _, n := range rec.LineNumbers() {
		if n > rec.Metadata.TotalLines {
			report(n, "line number exceeds metadata.total_lines (%d)", rec.Metadata.TotalLines)
		}
		entries := rec.Lines[n]
		hasDialogue := false
		for _, e := range entries {
			if e.Type == script.Dialogue {
				hasDialogue = true
			}
			if e.Type == script.NamePlaceholder && e.Original != script.PlaceholderToken {
				report(n, "NamePlaceholder text %q is not the bare placeholder token", e.Original)
			}
		}
		if hasDialogue {
			for _, e := range entries {
				if e.Type == script.Narration && utf8.RuneCountInString(e.Original) <= 2 {
					report(n, "short Narration %q on a dialogue line", e.Original)
				}
			}
		}
	}
	return findings
}

// checkSlots verifies the translation key is present (possibly null) on
// every translatable entry and absent on every other.
func checkSlots(data []byte, report func(line int, format string, args ...interface{})) {
	var raw struct {
		Lines map[string][]map[string]json.RawMessage `json:"lines"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return // shape errors already reported by the typed pass
	}
	for key, entries := range raw.Lines {
		line, err := strconv.Atoi(key)
		if err != nil || line < 1 {
			report(0, "line key %q is not a positive integer", key)
			continue
		}
		for _, obj := range entries {
			var typ script.EntryType
			if err := json.Unmarshal(obj["type"], &typ); err != nil {
				continue
			}
			_, hasSlot := obj["translation"]
			if typ.Translatable() && !hasSlot {
				report(line, "%s entry is missing its translation slot", typ)
			}
			if !typ.Translatable() && hasSlot {
				report(line, "%s entry must not carry a translation slot", typ)
			}
		}
	}
}
