package feature

import (
	"strings"
	"unicode/utf8"
)

// emojiRanges are the code-point ranges counted as emoji. They mirror the
// ranges commonly used for chat-export analysis: emoticons, pictographs,
// transport symbols, flags, dingbats, and enclosed characters.
var emojiRanges = [][2]rune{
	{0x1F600, 0x1F64F},
	{0x1F300, 0x1F5FF},
	{0x1F680, 0x1F6FF},
	{0x1F1E0, 0x1F1FF},
	{0x2702, 0x27B0},
	{0x24C2, 0x1F251},
}

// CountEmojis counts the maximal runs of emoji runes in s. Adjacent emoji
// count as one, so a flag pair or a burst of the same face is one occurrence.
func CountEmojis(s string) int {
	n := 0
	inRun := false
	for _, r := range s {
		if isEmoji(r) {
			if !inRun {
				n++
				inRun = true
			}
		} else {
			inRun = false
		}
	}
	return n
}

func isEmoji(r rune) bool {
	for _, rng := range emojiRanges {
		if r >= rng[0] && r <= rng[1] {
			return true
		}
	}
	return false
}

// IsQuestion reports whether the body reads as a question: it either ends
// with a question mark or opens with one of the configured interrogatives.
func IsQuestion(body string, questionWords []string) bool {
	trimmed := strings.TrimSpace(body)
	if strings.HasSuffix(trimmed, "?") {
		return true
	}
	first, _, _ := strings.Cut(strings.ToLower(trimmed), " ")
	first = strings.TrimRight(first, ",.!?")
	for _, w := range questionWords {
		if first == strings.ToLower(w) {
			return true
		}
	}
	return false
}

// ContainsKeyword reports whether the body contains any of the keywords or
// phrases, case-insensitively.
func ContainsKeyword(body string, keywords []string) bool {
	lower := strings.ToLower(body)
	for _, k := range keywords {
		if k == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

// Length returns the body length in characters, not bytes.
func Length(body string) int {
	return utf8.RuneCountInString(body)
}

// WordCount returns the whitespace-separated token count.
func WordCount(body string) int {
	return len(strings.Fields(body))
}
