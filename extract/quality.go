package extract

import (
	"strings"
	"unicode"
)

// qualityScore rates extracted text in [0, 1]. The score blends the
// printable-character ratio, the fraction of word-like tokens, and a length
// factor, so that OCR garbage and near-empty extractions score low while
// ordinary prose scores close to 1.
func qualityScore(content string) float64 {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return 0
	}

	var printable, total int
	for _, r := range trimmed {
		total++
		if unicode.IsPrint(r) || r == '\n' || r == '\t' {
			printable++
		}
	}
	printableRatio := float64(printable) / float64(total)

	words := strings.Fields(trimmed)
	wordlike := 0
	for _, w := range words {
		letters := 0
		for _, r := range w {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				letters++
			}
		}
		if letters*2 >= len([]rune(w)) {
			wordlike++
		}
	}
	wordRatio := 0.0
	if len(words) > 0 {
		wordRatio = float64(wordlike) / float64(len(words))
	}

	lengthFactor := 1.0
	if len(words) < 10 {
		lengthFactor = float64(len(words)) / 10
	}

	score := 0.4*printableRatio + 0.5*wordRatio + 0.1*lengthFactor
	if score > 1 {
		score = 1
	}
	return score
}
