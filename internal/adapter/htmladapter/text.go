package htmladapter

import (
	"golang.org/x/text/unicode/norm"
)

const (
	MaxDescriptionLength = 100
	Ellipsis             = "..."
)

// Truncate cuts text to MaxDescriptionLength characters and marks the cut
// with Ellipsis. Characters are runes of the NFC form, so a precomposed and
// a decomposed umlaut count the same. Text that fits is returned unchanged.
func Truncate(text string) string {
	runes := []rune(norm.NFC.String(text))
	if len(runes) <= MaxDescriptionLength {
		return text
	}

	return string(runes[:MaxDescriptionLength]) + Ellipsis
}
