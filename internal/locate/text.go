package locate

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// fold case-folds s for case-insensitive comparison. Casers are stateful,
// so each call builds its own.
func fold(s string) string {
	return cases.Fold().String(s)
}

// containsFold reports whether substr appears in s ignoring case.
func containsFold(s, substr string) bool {
	return strings.Contains(fold(s), fold(substr))
}

// wordPadded lower-cases s, turns every non-alphanumeric rune into a space and
// pads both ends, so " word " lookups behave like whole-word matches.
func wordPadded(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, fold(s))
	return " " + strings.Join(strings.Fields(mapped), " ") + " "
}

// firstSegment returns the trimmed text before the first comma.
func firstSegment(s string) string {
	head, _, _ := strings.Cut(s, ",")
	return strings.TrimSpace(head)
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }
