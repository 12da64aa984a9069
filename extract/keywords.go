package extract

import (
	"sort"
	"strings"
	"unicode"

	kreuzberg "github.com/kreuzberg-dev/kreuzberg-go"
)

// englishStopwords is the phrase-delimiter set shared by both keyword
// algorithms.
var englishStopwords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "but": true,
	"of": true, "to": true, "in": true, "on": true, "at": true, "by": true,
	"for": true, "with": true, "as": true, "is": true, "are": true, "was": true,
	"were": true, "be": true, "been": true, "being": true, "it": true,
	"its": true, "this": true, "that": true, "these": true, "those": true,
	"i": true, "you": true, "he": true, "she": true, "we": true, "they": true,
	"not": true, "no": true, "nor": true, "so": true, "too": true, "very": true,
	"can": true, "will": true, "just": true, "than": true, "then": true,
	"there": true, "their": true, "them": true, "from": true, "into": true,
	"have": true, "has": true, "had": true, "do": true, "does": true, "did": true,
	"about": true, "after": true, "before": true, "between": true, "during": true,
	"each": true, "few": true, "more": true, "most": true, "other": true,
	"some": true, "such": true, "only": true, "own": true, "same": true,
	"what": true, "which": true, "who": true, "whom": true, "when": true,
	"where": true, "why": true, "how": true, "all": true, "any": true,
	"both": true, "if": true, "because": true, "while": true, "against": true,
	"up": true, "down": true, "out": true, "over": true, "under": true,
	"again": true, "further": true, "once": true, "here": true, "also": true,
}

// extractKeywords picks the scored keyword set for the configured
// algorithm, RAKE by default.
func extractKeywords(content string, cfg *kreuzberg.KeywordConfig) []kreuzberg.Keyword {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	maxKeywords := 10
	minScore := 0.0
	algorithm := kreuzberg.KeywordAlgorithmRake
	if cfg != nil {
		if cfg.MaxKeywords != nil {
			maxKeywords = *cfg.MaxKeywords
		}
		if cfg.MinScore != nil {
			minScore = *cfg.MinScore
		}
		if cfg.Algorithm != "" {
			algorithm = cfg.Algorithm
		}
	}

	var keywords []kreuzberg.Keyword
	switch algorithm {
	case kreuzberg.KeywordAlgorithmYake:
		keywords = yakeKeywords(content, cfg)
	default:
		keywords = rakeKeywords(content, cfg)
	}

	sort.SliceStable(keywords, func(i, j int) bool { return keywords[i].Score > keywords[j].Score })
	var out []kreuzberg.Keyword
	for _, kw := range keywords {
		if kw.Score < minScore {
			continue
		}
		out = append(out, kw)
		if len(out) >= maxKeywords {
			break
		}
	}
	return out
}

// rakeKeywords implements Rapid Automatic Keyword Extraction: candidate
// phrases are maximal stopword-free word runs, scored by the sum of their
// words' degree/frequency ratios.
func rakeKeywords(content string, cfg *kreuzberg.KeywordConfig) []kreuzberg.Keyword {
	minWordLength := 3
	maxWordsPerPhrase := 4
	if cfg != nil && cfg.Rake != nil {
		if cfg.Rake.MinWordLength != nil {
			minWordLength = *cfg.Rake.MinWordLength
		}
		if cfg.Rake.MaxWordsPerPhrase != nil {
			maxWordsPerPhrase = *cfg.Rake.MaxWordsPerPhrase
		}
	}

	phrases := candidatePhrases(content, minWordLength, maxWordsPerPhrase)
	if len(phrases) == 0 {
		return nil
	}

	freq := map[string]float64{}
	degree := map[string]float64{}
	for _, phrase := range phrases {
		for _, word := range phrase {
			freq[word]++
			degree[word] += float64(len(phrase) - 1)
		}
	}

	phraseScores := map[string]float64{}
	for _, phrase := range phrases {
		var score float64
		for _, word := range phrase {
			score += (degree[word] + freq[word]) / freq[word]
		}
		text := strings.Join(phrase, " ")
		if score > phraseScores[text] {
			phraseScores[text] = score
		}
	}

	// Normalize against the top score so results sit in (0, 1].
	var max float64
	for _, s := range phraseScores {
		if s > max {
			max = s
		}
	}
	out := make([]kreuzberg.Keyword, 0, len(phraseScores))
	for text, score := range phraseScores {
		out = append(out, kreuzberg.Keyword{Text: text, Score: score / max})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Text < out[j].Text
	})
	return out
}

// yakeKeywords is a lightweight single-word variant of YAKE: words are
// scored by frequency weighted against their positional spread and casing,
// lower raw scores meaning better candidates. Scores are inverted so that
// higher is better, matching the result contract.
func yakeKeywords(content string, cfg *kreuzberg.KeywordConfig) []kreuzberg.Keyword {
	windowSize := 2
	if cfg != nil && cfg.Yake != nil && cfg.Yake.WindowSize != nil {
		windowSize = *cfg.Yake.WindowSize
	}
	_ = windowSize // reserved for co-occurrence weighting

	sentences := strings.FieldsFunc(content, func(r rune) bool { return r == '.' || r == '!' || r == '?' || r == '\n' })
	type stats struct {
		freq      float64
		sentences map[int]bool
		upper     float64
		firstPos  int
	}
	words := map[string]*stats{}
	pos := 0
	for si, sentence := range sentences {
		for _, raw := range strings.Fields(sentence) {
			token := strings.Trim(raw, ".,;:!?\"'()[]{}")
			lower := strings.ToLower(token)
			if len(lower) < 3 || englishStopwords[lower] || !isWordLike(lower) {
				pos++
				continue
			}
			st := words[lower]
			if st == nil {
				st = &stats{sentences: map[int]bool{}, firstPos: pos}
				words[lower] = st
			}
			st.freq++
			st.sentences[si] = true
			if token != lower && token == strings.ToUpper(token[:1])+token[1:] {
				st.upper++
			}
			pos++
		}
	}
	if len(words) == 0 {
		return nil
	}

	var maxFreq float64
	for _, st := range words {
		if st.freq > maxFreq {
			maxFreq = st.freq
		}
	}
	out := make([]kreuzberg.Keyword, 0, len(words))
	for word, st := range words {
		tf := st.freq / maxFreq
		spread := float64(len(st.sentences)) / float64(len(sentences))
		casing := 1 + st.upper/st.freq
		position := 1 / (1 + float64(st.firstPos)/float64(pos+1))
		out = append(out, kreuzberg.Keyword{Text: word, Score: tf * spread * casing * position})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Text < out[j].Text
	})
	// Normalize the top score to 1.
	if top := out[0].Score; top > 0 {
		for i := range out {
			out[i].Score /= top
		}
	}
	return out
}

// candidatePhrases splits content into stopword-free word runs.
func candidatePhrases(content string, minWordLength, maxWords int) [][]string {
	var phrases [][]string
	var current []string
	flush := func() {
		if len(current) > 0 && len(current) <= maxWords {
			phrase := make([]string, len(current))
			copy(phrase, current)
			phrases = append(phrases, phrase)
		}
		current = nil
	}
	for _, raw := range strings.FieldsFunc(content, func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == '.' || r == ';' || r == ':' || r == '!' || r == '?' ||
			r == '(' || r == ')' || r == '[' || r == ']' || r == '"' || r == '’'
	}) {
		word := strings.ToLower(strings.Trim(raw, "'\"`"))
		if word == "" || englishStopwords[word] || len(word) < minWordLength || !isWordLike(word) {
			flush()
			continue
		}
		current = append(current, word)
	}
	flush()
	return phrases
}

func isWordLike(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && r != '-' {
			return false
		}
	}
	return s != ""
}
