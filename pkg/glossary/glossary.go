package glossary

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"

	"github.com/Sunnie-Evergale/kurokin-tool/pkg/script"
)

// A glossary is a frequency-sorted list of the content words appearing in
// a game's translatable text. Translation teams use it to settle on
// renderings of recurring terms before line-by-line work starts.

// Term is one glossary row.
type Term struct {
	Lemma   string `json:"lemma"`
	Reading string `json:"reading,omitempty"`
	Count   int    `json:"count"`
}

// Report is the serialized glossary for a set of extracted files.
type Report struct {
	Files int    `json:"files"`
	Terms []Term `json:"terms"`
}

// Analyzer tokenizes Japanese text with the IPA dictionary.
type Analyzer struct {
	t *tokenizer.Tokenizer
}

// NewAnalyzer creates a tokenizer instance. The IPA dictionary is compiled
// into the binary; no files or network are needed.
func NewAnalyzer() (*Analyzer, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, err
	}
	return &Analyzer{t: t}, nil
}

var asciiOnly = regexp.MustCompile(`^[a-zA-Z0-9\s[:punct:]]+$`)

// Collect tokenizes every translatable original in records and counts
// content words, normalized to their dictionary form. Particles,
// auxiliaries, symbols, and numerals carry no glossary value and are
// dropped, as are pure-ASCII surfaces (asset stems that leaked into
// prose).
func (a *Analyzer) Collect(records []*script.FileRecord) *Report {
	counts := make(map[string]int)
	readings := make(map[string]string)
	var order []string

	for _, rec := range records {
		for _, entries := range rec.Lines {
			for _, e := range entries {
				if !e.Type.Translatable() {
					continue
				}
				a.collectText(e.Original, counts, readings, &order)
			}
		}
	}

	terms := make([]Term, 0, len(order))
	for _, lemma := range order {
		terms = append(terms, Term{
			Lemma:   lemma,
			Reading: readings[lemma],
			Count:   counts[lemma],
		})
	}
	sort.SliceStable(terms, func(i, j int) bool {
		if terms[i].Count != terms[j].Count {
			return terms[i].Count > terms[j].Count
		}
		return terms[i].Lemma < terms[j].Lemma
	})
	return &Report{Files: len(records), Terms: terms}
}

func (a *Analyzer) collectText(text string, counts map[string]int, readings map[string]string, order *[]string) {
	for _, token := range a.t.Tokenize(text) {
		if token.Class == tokenizer.DUMMY {
			continue
		}
		if strings.TrimSpace(token.Surface) == "" {
			continue
		}
		features := token.Features()
		if len(features) > 0 {
			switch features[0] {
			case "記号", "補助記号", "助詞", "助動詞":
				continue
			}
		}
		if len(features) > 1 && features[1] == "数" {
			continue
		}
		if asciiOnly.MatchString(token.Surface) {
			continue
		}

		// IPA features: 6 is the base form (lemma), 7 the katakana reading.
		lemma := token.Surface
		if len(features) > 6 && features[6] != "*" {
			lemma = features[6]
		}
		reading := ""
		if len(features) > 7 && features[7] != "*" {
			reading = toHiragana(features[7])
		}

		if _, seen := counts[lemma]; !seen {
			*order = append(*order, lemma)
			readings[lemma] = reading
		} else if readings[lemma] == "" && reading != "" {
			readings[lemma] = reading
		}
		counts[lemma]++
	}
}

// toHiragana folds a katakana reading to hiragana. Only ァ through ヶ are
// folded; prolonged sound marks and every other rune pass through unchanged.
func toHiragana(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= 'ァ' && r <= 'ヶ' {
			r -= 0x60
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Marshal renders the report as indented JSON.
func (r *Report) Marshal() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
