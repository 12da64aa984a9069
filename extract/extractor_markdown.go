package extract

import (
	"context"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	kreuzberg "github.com/kreuzberg-dev/kreuzberg-go"
)

// extractMarkdown keeps the markdown source as content and walks the parsed
// AST for structural metadata: headers, links and fenced code blocks.
func extractMarkdown(_ context.Context, data []byte, mimeType string, _ *kreuzberg.ExtractionConfig) (*kreuzberg.ExtractionResult, error) {
	content := decodeText(data)
	source := []byte(content)

	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	doc := md.Parser().Parse(text.NewReader(source))

	meta := textMetadata(content)
	tm := meta.Format.Text

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			if title := nodeText(node, source); title != "" {
				tm.Headers = append(tm.Headers, title)
			}
		case *ast.Link:
			tm.Links = append(tm.Links, [2]string{nodeText(node, source), string(node.Destination)})
		case *ast.AutoLink:
			url := string(node.URL(source))
			tm.Links = append(tm.Links, [2]string{url, url})
		case *ast.FencedCodeBlock:
			lang := string(node.Language(source))
			tm.CodeBlocks = append(tm.CodeBlocks, [2]string{lang, blockLines(node, source)})
		}
		return ast.WalkContinue, nil
	})

	return &kreuzberg.ExtractionResult{
		Content:  content,
		MimeType: mimeType,
		Metadata: meta,
	}, nil
}

// nodeText concatenates the literal text under a node.
func nodeText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := child.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

// blockLines joins the raw source lines of a block node.
func blockLines(n ast.Node, source []byte) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(source))
	}
	return strings.TrimRight(b.String(), "\n")
}
