package extract

import (
	"strings"

	kreuzberg "github.com/kreuzberg-dev/kreuzberg-go"
)

// reduceTokens rewrites content to spend fewer tokens downstream. Modes
// escalate: light collapses whitespace, moderate also drops filler words,
// aggressive additionally removes short low-information sentences.
func reduceTokens(content string, cfg *kreuzberg.TokenReductionConfig) string {
	mode := kreuzberg.TokenReductionOff
	preserve := true
	if cfg != nil {
		if cfg.Mode != "" {
			mode = cfg.Mode
		}
		if cfg.PreserveImportantWords != nil {
			preserve = *cfg.PreserveImportantWords
		}
	}

	switch mode {
	case kreuzberg.TokenReductionLight:
		return collapseWhitespace(content)
	case kreuzberg.TokenReductionModerate:
		return dropFillerWords(collapseWhitespace(content), preserve)
	case kreuzberg.TokenReductionAggressive:
		return dropShortSentences(dropFillerWords(collapseWhitespace(content), preserve))
	default:
		return content
	}
}

// collapseWhitespace squeezes runs of blank lines and intra-line spacing.
func collapseWhitespace(content string) string {
	lines := strings.Split(content, "\n")
	var out []string
	blank := false
	for _, line := range lines {
		trimmed := strings.Join(strings.Fields(line), " ")
		if trimmed == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, trimmed)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// fillerWords add little meaning and are dropped in moderate mode. Words
// carrying negation or quantity survive when preservation is on.
var fillerWords = map[string]bool{
	"very": true, "really": true, "quite": true, "rather": true,
	"just": true, "simply": true, "basically": true, "actually": true,
	"literally": true, "certainly": true, "probably": true, "perhaps": true,
	"maybe": true, "somewhat": true, "fairly": true, "pretty": true,
	"indeed": true, "truly": true, "honestly": true, "frankly": true,
}

var importantWords = map[string]bool{
	"not": true, "no": true, "never": true, "none": true,
	"all": true, "every": true, "must": true, "only": true,
}

func dropFillerWords(content string, preserve bool) string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		words := strings.Fields(line)
		kept := words[:0]
		for _, w := range words {
			lower := strings.ToLower(strings.Trim(w, ".,;:!?"))
			if fillerWords[lower] && !(preserve && importantWords[lower]) {
				continue
			}
			kept = append(kept, w)
		}
		out = append(out, strings.Join(kept, " "))
	}
	return strings.Join(out, "\n")
}

// dropShortSentences removes sentences under four words; headings and list
// items are kept since line structure often carries meaning on its own.
func dropShortSentences(content string) string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") || strings.HasPrefix(line, "*") {
			out = append(out, line)
			continue
		}
		sentences := strings.FieldsFunc(line, func(r rune) bool { return r == '.' || r == '!' || r == '?' })
		var kept []string
		for _, s := range sentences {
			if len(strings.Fields(s)) >= 4 {
				kept = append(kept, strings.TrimSpace(s))
			}
		}
		if len(kept) > 0 {
			out = append(out, strings.Join(kept, ". ")+".")
		} else if len(sentences) == 0 && strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
