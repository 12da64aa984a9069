package extract

import (
	"strings"
	"testing"

	kreuzberg "github.com/kreuzberg-dev/kreuzberg-go"
)

func chunkCfg(maxChars, maxOverlap int) *kreuzberg.ChunkingConfig {
	return &kreuzberg.ChunkingConfig{MaxChars: &maxChars, MaxOverlap: &maxOverlap}
}

func TestChunkTextShortContentIsSingleChunk(t *testing.T) {
	chunks := chunkText("short document", chunkCfg(100, 10))
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks", len(chunks))
	}
	c := chunks[0]
	if c.Content != "short document" {
		t.Errorf("content = %q", c.Content)
	}
	if c.Metadata.CharStart != 0 || c.Metadata.CharEnd != len("short document") {
		t.Errorf("offsets = [%d, %d]", c.Metadata.CharStart, c.Metadata.CharEnd)
	}
	if c.Metadata.ChunkIndex != 0 || c.Metadata.TotalChunks != 1 {
		t.Errorf("index = %d/%d", c.Metadata.ChunkIndex, c.Metadata.TotalChunks)
	}
	if c.Metadata.TokenCount == nil || *c.Metadata.TokenCount == 0 {
		t.Error("token count missing")
	}
}

func TestChunkTextEmptyContent(t *testing.T) {
	if chunks := chunkText("   \n\t ", nil); chunks != nil {
		t.Errorf("got %d chunks for blank content", len(chunks))
	}
}

func TestChunkTextRespectsMaxChars(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 40; i++ {
		sb.WriteString("This is sentence number one of the test corpus. ")
	}
	chunks := chunkText(sb.String(), chunkCfg(200, 20))
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c.Content) > 200 {
			t.Errorf("chunk %d has %d chars, limit 200", i, len(c.Content))
		}
		if c.Metadata.TotalChunks != len(chunks) {
			t.Errorf("chunk %d total = %d, want %d", i, c.Metadata.TotalChunks, len(chunks))
		}
		if c.Metadata.ChunkIndex != i {
			t.Errorf("chunk %d index = %d", i, c.Metadata.ChunkIndex)
		}
	}
}

func TestChunkTextOffsetsPointIntoContent(t *testing.T) {
	content := strings.TrimSpace(strings.Repeat("Alpha beta gamma delta epsilon zeta. ", 30))
	chunks := chunkText(content, chunkCfg(150, 30))
	for i, c := range chunks {
		start, end := c.Metadata.CharStart, c.Metadata.CharEnd
		if start < 0 || end > len(content) || start >= end {
			t.Fatalf("chunk %d offsets [%d, %d] out of range", i, start, end)
		}
		firstLine := c.Content
		if idx := strings.IndexByte(firstLine, '\n'); idx >= 0 {
			firstLine = firstLine[:idx]
		}
		if !strings.HasPrefix(content[start:], firstLine) {
			t.Errorf("chunk %d start offset does not line up", i)
		}
	}
}

func TestChunkTextParagraphBoundariesPreferred(t *testing.T) {
	para := strings.Repeat("word ", 30)
	content := strings.TrimSpace(para) + "\n\n" + strings.TrimSpace(para)
	chunks := chunkText(content, chunkCfg(len(para)+20, 0))
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want split on the paragraph break", len(chunks))
	}
	for i, c := range chunks {
		if strings.Contains(c.Content, "\n\n") {
			t.Errorf("chunk %d straddles the paragraph boundary", i)
		}
	}
}

func TestChunkTextAbbreviationsDoNotSplitSentences(t *testing.T) {
	sentence := "Dr. Smith met Mr. Jones, e.g. at the office, to discuss the plan in detail."
	content := strings.Repeat(sentence+" ", 6)
	chunks := chunkText(content, chunkCfg(len(sentence)+10, 0))
	for i, c := range chunks {
		trimmed := strings.TrimSpace(c.Content)
		if trimmed == "Dr." || trimmed == "Mr." || strings.HasSuffix(trimmed, " e.g.") {
			t.Errorf("chunk %d split on an abbreviation: %q", i, c.Content)
		}
	}
}

func TestChunkTextOverlapCarriesSuffix(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 60; i++ {
		sb.WriteString("Common words repeat across every chunk boundary here. ")
	}
	chunks := chunkText(sb.String(), chunkCfg(220, 60))
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	// Each successor starts inside its predecessor's span.
	for i := 1; i < len(chunks); i++ {
		if chunks[i].Metadata.CharStart >= chunks[i-1].Metadata.CharEnd {
			t.Errorf("chunk %d does not overlap its predecessor", i)
		}
	}
}

func TestEstimateTokens(t *testing.T) {
	if got := estimateTokens(""); got != 0 {
		t.Errorf("empty = %d", got)
	}
	if got := estimateTokens("abcd"); got != 1 {
		t.Errorf("four chars = %d", got)
	}
	if got := estimateTokens("abcde"); got != 2 {
		t.Errorf("five chars = %d", got)
	}
}
