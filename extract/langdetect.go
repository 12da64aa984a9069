package extract

import (
	"sort"
	"strings"
	"unicode"

	kreuzberg "github.com/kreuzberg-dev/kreuzberg-go"
)

// stopwordProfiles maps ISO 639-1 codes to high-frequency function words.
// Detection scores each language by the fraction of document tokens found
// in its profile; this is crude but dependency-free and stable.
var stopwordProfiles = map[string][]string{
	"en": {"the", "and", "of", "to", "in", "is", "that", "it", "was", "for", "with", "as", "on", "are", "this", "have", "not", "be", "at", "by"},
	"de": {"der", "die", "das", "und", "ist", "von", "mit", "den", "nicht", "ein", "eine", "auf", "sich", "auch", "dem", "werden", "im", "für", "als", "zu"},
	"fr": {"le", "la", "les", "de", "des", "et", "est", "un", "une", "dans", "que", "qui", "pour", "pas", "sur", "avec", "sont", "ce", "il", "au"},
	"es": {"el", "la", "los", "las", "de", "que", "y", "en", "un", "una", "es", "por", "con", "para", "no", "se", "del", "su", "al", "como"},
	"it": {"il", "la", "di", "che", "e", "un", "una", "per", "in", "del", "con", "non", "sono", "della", "le", "si", "da", "più", "al", "come"},
	"pt": {"o", "a", "os", "as", "de", "que", "e", "do", "da", "em", "um", "uma", "para", "com", "não", "por", "mais", "dos", "como", "se"},
	"nl": {"de", "het", "een", "van", "en", "in", "is", "dat", "op", "te", "zijn", "voor", "met", "die", "niet", "aan", "er", "om", "ook", "als"},
}

// detectLanguages scores the content against stopword profiles and unicode
// script ranges, returning ISO 639-1 codes ordered by confidence. When
// detect_multiple is unset or false only the top language is returned.
func detectLanguages(content string, cfg *kreuzberg.LanguageDetectionConfig) []string {
	if strings.TrimSpace(content) == "" {
		return nil
	}

	minConfidence := 0.1
	multiple := false
	if cfg != nil {
		if cfg.MinConfidence != nil {
			minConfidence = *cfg.MinConfidence
		}
		if cfg.DetectMultiple != nil {
			multiple = *cfg.DetectMultiple
		}
	}

	type scored struct {
		lang  string
		score float64
	}
	var candidates []scored

	if lang, score := detectScript(content); lang != "" {
		candidates = append(candidates, scored{lang, score})
	}

	words := strings.Fields(strings.ToLower(content))
	if len(words) > 0 {
		total := len(words)
		if total > 2000 {
			words = words[:2000]
			total = 2000
		}
		for lang, profile := range stopwordProfiles {
			set := make(map[string]bool, len(profile))
			for _, w := range profile {
				set[w] = true
			}
			hits := 0
			for _, w := range words {
				if set[strings.Trim(w, ".,;:!?\"'()")] {
					hits++
				}
			}
			// Roughly a third of running text is stopwords in a matching
			// language; normalize so a strong match scores near 1.
			score := 3 * float64(hits) / float64(total)
			if score > 1 {
				score = 1
			}
			if score > 0 {
				candidates = append(candidates, scored{lang, score})
			}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })

	var out []string
	for _, c := range candidates {
		if c.score < minConfidence {
			continue
		}
		out = append(out, c.lang)
		if !multiple {
			break
		}
	}
	return out
}

// detectScript recognizes languages whose script alone is diagnostic.
func detectScript(content string) (string, float64) {
	var han, hiragana, katakana, hangul, cyrillic, arabic, hebrew, greek, total int
	for _, r := range content {
		if !unicode.IsLetter(r) {
			continue
		}
		total++
		switch {
		case unicode.Is(unicode.Han, r):
			han++
		case unicode.Is(unicode.Hiragana, r):
			hiragana++
		case unicode.Is(unicode.Katakana, r):
			katakana++
		case unicode.Is(unicode.Hangul, r):
			hangul++
		case unicode.Is(unicode.Cyrillic, r):
			cyrillic++
		case unicode.Is(unicode.Arabic, r):
			arabic++
		case unicode.Is(unicode.Hebrew, r):
			hebrew++
		case unicode.Is(unicode.Greek, r):
			greek++
		}
		if total >= 4000 {
			break
		}
	}
	if total == 0 {
		return "", 0
	}
	ratio := func(n int) float64 { return float64(n) / float64(total) }
	switch {
	case ratio(hiragana+katakana) > 0.05:
		return "ja", ratio(hiragana + katakana + han)
	case ratio(hangul) > 0.3:
		return "ko", ratio(hangul)
	case ratio(han) > 0.3:
		return "zh", ratio(han)
	case ratio(cyrillic) > 0.3:
		return "ru", ratio(cyrillic)
	case ratio(arabic) > 0.3:
		return "ar", ratio(arabic)
	case ratio(hebrew) > 0.3:
		return "he", ratio(hebrew)
	case ratio(greek) > 0.3:
		return "el", ratio(greek)
	}
	return "", 0
}
