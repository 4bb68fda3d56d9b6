package script

import (
	"bytes"
	"reflect"
	"testing"
)

func TestRecompileSameLength(t *testing.T) {
	data := concat(sjis(t, "ああ"), []byte{0x00})
	out, issues, err := Recompile(data, []Replacement{{0, 4, "いい"}}, Strict)
	if err != nil {
		t.Fatal(err)
	}
	if len(issues) != 0 {
		t.Fatalf("unexpected issues: %v", issues)
	}
	want := concat(sjis(t, "いい"), []byte{0x00})
	if !bytes.Equal(out, want) {
		t.Errorf("got % X, want % X", out, want)
	}
}

func TestRecompileShorterIsPadded(t *testing.T) {
	data := concat(sjis(t, "ですよね"), []byte{0x00, 'Z'})
	out, _, err := Recompile(data, []Replacement{{0, 8, "Yes"}}, Strict)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{'Y', 'e', 's', 0, 0, 0, 0, 0, 0x00, 'Z'}
	if !bytes.Equal(out, want) {
		t.Errorf("got % X, want % X", out, want)
	}
}

func TestRecompileStrictOverflow(t *testing.T) {
	data := concat(sjis(t, "ああ"), []byte{0x00})
	out, issues, err := Recompile(data, []Replacement{{0, 4, "far too long"}}, Strict)
	if err != ErrLengthOverflow {
		t.Fatalf("expected ErrLengthOverflow, got %v", err)
	}
	if out != nil {
		t.Errorf("rejected file still produced output")
	}
	if len(issues) != 1 || issues[0].Kind != IssueOverflow {
		t.Errorf("expected one overflow issue, got %v", issues)
	}
}

func TestRecompileExpandShiftsLaterOffsets(t *testing.T) {
	data := concat(sjis(t, "ああ"), []byte{0x00}, sjis(t, "いい"), []byte{0x00})
	reps := []Replacement{
		{0, 4, "あああ"}, // grows by 2
		{5, 4, "X"},
	}
	out, issues, err := Recompile(data, reps, Expand)
	if err != nil {
		t.Fatal(err)
	}
	if len(issues) != 0 {
		t.Fatalf("unexpected issues: %v", issues)
	}
	want := concat(sjis(t, "あああ"), []byte{0x00}, []byte{'X', 0, 0, 0}, []byte{0x00})
	if !bytes.Equal(out, want) {
		t.Errorf("got % X, want % X", out, want)
	}
}

func TestRecompileUnrepresentableLeavesOriginal(t *testing.T) {
	data := concat(sjis(t, "ああ"), []byte{0x00})
	out, issues, err := Recompile(data, []Replacement{{0, 4, "\U0001F600"}}, Strict)
	if err != nil {
		t.Fatal(err)
	}
	if len(issues) != 1 || issues[0].Kind != IssueUnrepresentable {
		t.Fatalf("expected one unrepresentable issue, got %v", issues)
	}
	if !bytes.Equal(out, data) {
		t.Errorf("original bytes were not preserved: % X", out)
	}
}

func TestRecompileRejectsOutOfRange(t *testing.T) {
	if _, _, err := Recompile([]byte{0x00}, []Replacement{{0, 8, "x"}}, Strict); err == nil {
		t.Fatal("replacement past EOF accepted")
	}
}

func identityTranslations(rec *FileRecord) {
	for _, entries := range rec.Lines {
		for _, e := range entries {
			if e.Type.Translatable() {
				text := e.Original
				e.Translation = &text
			}
		}
	}
}

func TestRoundTripIdentity(t *testing.T) {
	data := concat(
		sjis(t, "ヒーローお兄さん"), []byte{0x09}, sjis(t, "「そう、ですよね……」"), []byte{0x00, 0x0A},
		[]byte("BG\\school\x00"),
		sjis(t, "静かな朝だった。"), []byte{0x00},
	)
	rec := Extract("s", data)
	if rec.Metadata.Translatable == 0 {
		t.Fatal("fixture produced no translatable entries")
	}
	identityTranslations(rec)

	out, issues, err := Recompile(data, Replacements(rec, rec), Strict)
	if err != nil {
		t.Fatal(err)
	}
	if len(issues) != 0 {
		t.Fatalf("unexpected issues: %v", issues)
	}
	if !bytes.Equal(out, data) {
		t.Errorf("identity recompile changed bytes:\n got % X\nwant % X", out, data)
	}
}

func TestIdempotentExtraction(t *testing.T) {
	data := concat(
		sjis(t, "奏お姉ちゃん"), []byte{0x09}, sjis(t, "「おはよう」"), []byte{0x00, 0x0A},
		[]byte("se01.wav\x00"),
		sjis(t, "そうして一日が始まる。"), []byte{0x00},
	)
	first := Extract("s", data)
	identityTranslations(first)

	out, _, err := Recompile(data, Replacements(first, first), Strict)
	if err != nil {
		t.Fatal(err)
	}
	second := Extract("s", out)

	if !reflect.DeepEqual(first.LineNumbers(), second.LineNumbers()) {
		t.Fatalf("line sets differ: %v vs %v", first.LineNumbers(), second.LineNumbers())
	}
	for _, n := range first.LineNumbers() {
		a, b := first.Lines[n], second.Lines[n]
		if len(a) != len(b) {
			t.Fatalf("line %d: %d vs %d entries", n, len(a), len(b))
		}
		for i := range a {
			if a[i].Type != b[i].Type || a[i].Original != b[i].Original ||
				a[i].Offset != b[i].Offset || a[i].ByteLen != b[i].ByteLen {
				t.Errorf("line %d entry %d differs: %+v vs %+v", n, i, a[i], b[i])
			}
		}
	}
}

func TestReplacementsSkipsMismatchedOriginals(t *testing.T) {
	data := concat(sjis(t, "「おはよう」"), []byte{0x00})
	src := Extract("s", data)

	stale := Extract("s", data)
	tr := "Good morning"
	for _, entries := range stale.Lines {
		for _, e := range entries {
			e.Original = "別のテキスト"
			e.Translation = &tr
		}
	}
	if reps := Replacements(src, stale); len(reps) != 0 {
		t.Fatalf("mismatched originals produced %d replacements", len(reps))
	}
}
