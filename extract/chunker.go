package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"

	kreuzberg "github.com/kreuzberg-dev/kreuzberg-go"
)

const (
	defaultMaxChars     = 2000
	defaultOverlapChars = 100
)

// chunkText splits content into overlapping chunks using recursive
// splitting: paragraph boundaries first, then sentences, then words.
// Sentence detection skips common abbreviations (Mr., Dr., e.g., i.e.),
// decimal numbers, and handles CJK sentence-ending punctuation.
func chunkText(content string, cfg *kreuzberg.ChunkingConfig) []kreuzberg.Chunk {
	maxChars := defaultMaxChars
	overlapChars := defaultOverlapChars
	if cfg != nil {
		if cfg.MaxChars != nil {
			maxChars = *cfg.MaxChars
		}
		if cfg.MaxOverlap != nil {
			overlapChars = *cfg.MaxOverlap
		}
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}

	var texts []string
	if len(content) <= maxChars {
		texts = []string{content}
	} else {
		texts = mergeWithOverlap(splitRecursive(content, maxChars), maxChars, overlapChars)
	}

	chunks := make([]kreuzberg.Chunk, 0, len(texts))
	searchFrom := 0
	for i, text := range texts {
		start := searchFrom
		firstLine := text
		if idx := strings.IndexByte(firstLine, '\n'); idx >= 0 {
			firstLine = firstLine[:idx]
		}
		if pos := strings.Index(content[searchFrom:], firstLine); pos >= 0 {
			start = searchFrom + pos
			searchFrom = start + 1
		}
		end := start + len(text)
		if end > len(content) {
			end = len(content)
		}
		tokens := estimateTokens(text)
		chunks = append(chunks, kreuzberg.Chunk{
			Content: text,
			Metadata: kreuzberg.ChunkMetadata{
				CharStart:   start,
				CharEnd:     end,
				TokenCount:  &tokens,
				ChunkIndex:  i,
				TotalChunks: len(texts),
			},
		})
	}
	return chunks
}

// estimateTokens approximates token count as one token per four characters.
func estimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	return (n + 3) / 4
}

func splitRecursive(text string, maxChars int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= maxChars {
		return []string{text}
	}

	// Level 1: paragraph boundaries
	paragraphs := strings.Split(text, "\n\n")
	if len(paragraphs) > 1 {
		var segments []string
		for _, p := range paragraphs {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			if len(p) <= maxChars {
				segments = append(segments, p)
			} else {
				segments = append(segments, splitOnSentences(p, maxChars)...)
			}
		}
		return segments
	}

	// Level 2: sentence boundaries
	sentenceSegments := splitOnSentences(text, maxChars)
	if len(sentenceSegments) > 1 {
		return sentenceSegments
	}

	// Level 3: word boundaries
	return splitOnWords(text, maxChars)
}

func splitOnSentences(text string, maxChars int) []string {
	boundaries := findSentenceBoundaries(text)
	if len(boundaries) == 0 {
		return splitOnWords(text, maxChars)
	}

	var segments []string
	start := 0
	lastGood := -1

	for _, boundary := range boundaries {
		candidate := text[start:boundary]
		if len(candidate) <= maxChars {
			lastGood = boundary
		} else {
			if lastGood > start {
				seg := strings.TrimSpace(text[start:lastGood])
				if seg != "" {
					if len(seg) <= maxChars {
						segments = append(segments, seg)
					} else {
						segments = append(segments, splitOnWords(seg, maxChars)...)
					}
				}
				start = lastGood
				candidate = text[start:boundary]
				if len(strings.TrimSpace(candidate)) <= maxChars {
					lastGood = boundary
				} else {
					lastGood = -1
				}
			} else {
				seg := strings.TrimSpace(text[start:boundary])
				if seg != "" {
					segments = append(segments, splitOnWords(seg, maxChars)...)
				}
				start = boundary
				lastGood = -1
			}
		}
	}

	if lastGood > start {
		seg := strings.TrimSpace(text[start:lastGood])
		if seg != "" {
			if len(seg) <= maxChars {
				segments = append(segments, seg)
			} else {
				segments = append(segments, splitOnWords(seg, maxChars)...)
			}
		}
		start = lastGood
	}

	remaining := strings.TrimSpace(text[start:])
	if remaining != "" {
		if len(remaining) <= maxChars {
			segments = append(segments, remaining)
		} else {
			segments = append(segments, splitOnWords(remaining, maxChars)...)
		}
	}

	return segments
}

// abbreviations that should NOT be treated as sentence boundaries.
var abbreviations = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "dr": true,
	"prof": true, "sr": true, "jr": true,
	"vs": true, "etc": true, "inc": true, "ltd": true,
	"e.g": true, "i.e": true, "viz": true, "al": true,
	"approx": true, "dept": true, "est": true,
	"fig": true, "no": true, "vol": true,
}

// isAbbreviation checks if the text ending at the '.' is a common
// abbreviation.
func isAbbreviation(text string, dotPos int) bool {
	start := dotPos
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(text[:start])
		if !unicode.IsLetter(r) && r != '.' {
			break
		}
		start -= size
	}
	word := strings.ToLower(text[start:dotPos])
	return abbreviations[word]
}

// isDecimalDot checks if the dot is part of a number (e.g. 3.14, $1.50).
func isDecimalDot(text string, dotPos int) bool {
	if dotPos == 0 || dotPos+1 >= len(text) {
		return false
	}
	prevByte := text[dotPos-1]
	nextByte := text[dotPos+1]
	return prevByte >= '0' && prevByte <= '9' && nextByte >= '0' && nextByte <= '9'
}

// findSentenceBoundaries returns byte positions suitable for splitting text
// at sentence boundaries. Handles ASCII punctuation (.!?) with abbreviation
// and decimal number awareness, plus CJK sentence-ending punctuation.
func findSentenceBoundaries(text string) []int {
	var boundaries []int
	runes := []rune(text)
	n := len(runes)

	byteOffsets := make([]int, n+1)
	off := 0
	for i, r := range runes {
		byteOffsets[i] = off
		off += utf8.RuneLen(r)
	}
	byteOffsets[n] = off

	for i := 0; i < n; i++ {
		r := runes[i]

		// CJK sentence-ending punctuation is always a boundary.
		if r == '。' || r == '！' || r == '？' {
			boundaries = append(boundaries, byteOffsets[i+1])
			continue
		}

		if r != '.' && r != '!' && r != '?' {
			continue
		}

		dotBytePos := byteOffsets[i]
		if r == '.' && isDecimalDot(text, dotBytePos) {
			continue
		}
		if r == '.' && isAbbreviation(text, dotBytePos) {
			continue
		}

		// Need whitespace or newline after punctuation.
		if i+1 < n && (runes[i+1] == ' ' || runes[i+1] == '\n') {
			if runes[i+1] == '\n' {
				boundaries = append(boundaries, byteOffsets[i+1])
			} else if i+2 < n && unicode.IsUpper(runes[i+2]) {
				boundaries = append(boundaries, byteOffsets[i+2])
			} else if i+2 >= n {
				boundaries = append(boundaries, byteOffsets[n])
			}
		}
	}
	return boundaries
}

func splitOnWords(text string, maxChars int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var segments []string
	var current strings.Builder

	for _, word := range words {
		if len(word) > maxChars {
			if current.Len() > 0 {
				segments = append(segments, strings.TrimSpace(current.String()))
				current.Reset()
			}
			for i := 0; i < len(word); i += maxChars {
				end := i + maxChars
				if end > len(word) {
					end = len(word)
				}
				segments = append(segments, word[i:end])
			}
			continue
		}

		needed := len(word)
		if current.Len() > 0 {
			needed = current.Len() + 1 + len(word)
		}

		if needed > maxChars {
			if current.Len() > 0 {
				segments = append(segments, strings.TrimSpace(current.String()))
				current.Reset()
			}
			current.WriteString(word)
		} else {
			if current.Len() > 0 {
				current.WriteByte(' ')
			}
			current.WriteString(word)
		}
	}

	if current.Len() > 0 {
		segments = append(segments, strings.TrimSpace(current.String()))
	}

	return segments
}

func mergeWithOverlap(segments []string, maxChars, overlapChars int) []string {
	if len(segments) == 0 {
		return nil
	}

	var chunks []string
	var current strings.Builder

	for _, seg := range segments {
		needed := len(seg)
		if current.Len() > 0 {
			needed = current.Len() + 1 + len(seg)
		}

		if needed <= maxChars {
			if current.Len() > 0 {
				current.WriteByte('\n')
			}
			current.WriteString(seg)
		} else {
			if current.Len() > 0 {
				chunk := current.String()
				chunks = append(chunks, chunk)

				overlap := getOverlapSuffix(chunk, overlapChars)
				current.Reset()
				if overlap != "" && len(overlap)+1+len(seg) <= maxChars {
					current.WriteString(overlap)
					current.WriteByte('\n')
				}
			}
			current.WriteString(seg)
		}
	}

	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}

	var result []string
	for _, c := range chunks {
		if strings.TrimSpace(c) != "" {
			result = append(result, c)
		}
	}
	return result
}

func getOverlapSuffix(text string, n int) string {
	if len(text) <= n {
		return text
	}
	suffix := text[len(text)-n:]
	if idx := strings.Index(suffix, " "); idx >= 0 {
		return strings.TrimSpace(suffix[idx+1:])
	}
	return strings.TrimSpace(suffix)
}
