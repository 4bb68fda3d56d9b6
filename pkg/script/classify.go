package script

import "strings"

// PlaceholderToken is replaced by the engine at runtime with the player's
// name. Only the bare token classifies as NamePlaceholder; a sentence that
// merely contains it is ordinary prose.
const PlaceholderToken = "％名％"

// Season and date-card headings the engine prints as `名前：ASCII`.
var seasonDateNames = []string{"春", "夏", "秋", "冬", "日付"}

// systemCodePrefix opens engine state codes of the form 常：digits.
const systemCodePrefix = "常："

// uiMarkers are fixed interface strings that must survive untranslated.
var uiMarkers = map[string]bool{
	"選択パネル": true,
	"セーブ":   true,
	"ロード":   true,
	"オート":   true,
	"スキップ":  true,
}

// classify maps a decoded string to its taxonomy variant. First match
// wins; the order of the checks is part of the contract. hint is the type
// the pattern recognizer already decided, if any.
//
// Speaker names cannot be told apart from narration without seeing the
// neighboring entries, so bare names come out as Narration here and are
// promoted by the post-processor.
func classify(text string, hint EntryType) EntryType {
	if hint != "" {
		return hint
	}
	switch {
	case strings.Contains(text, "_・"):
		return SpriteReference
	case strings.HasPrefix(text, "・") && !strings.Contains(text, "_"):
		return PositionCode
	case text == PlaceholderToken:
		return NamePlaceholder
	case strings.Contains(text, "「") || strings.HasSuffix(text, "」"):
		return Dialogue
	case strings.Contains(text, "『") || strings.HasSuffix(text, "』"):
		return EmailMessage
	case strings.Contains(text, "＜") || strings.Contains(text, "＞"):
		return InnerThought
	case isSeasonDateMarker(text):
		return SeasonDateMarker
	case uiMarkers[text]:
		return UIMarker
	case isSystemCode(text):
		return SystemCode
	default:
		return Narration
	}
}

func isSeasonDateMarker(text string) bool {
	for _, name := range seasonDateNames {
		if rest, ok := strings.CutPrefix(text, name+"："); ok {
			return isASCIIToken(rest)
		}
	}
	return false
}

func isSystemCode(text string) bool {
	rest, ok := strings.CutPrefix(text, systemCodePrefix)
	if !ok || rest == "" {
		return false
	}
	for i := 0; i < len(rest); i++ {
		if rest[i] < '0' || rest[i] > '9' {
			return false
		}
	}
	return true
}

func isASCIIToken(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] <= 0x20 || s[i] > 0x7E {
			return false
		}
	}
	return true
}
