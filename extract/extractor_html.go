package extract

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"

	kreuzberg "github.com/kreuzberg-dev/kreuzberg-go"
)

// extractHTML converts an HTML document to markdown content and fills
// HTMLMetadata from the document head. Readability supplies the title and
// description fallbacks when the head carries none.
func extractHTML(_ context.Context, data []byte, mimeType string, cfg *kreuzberg.ExtractionConfig) (*kreuzberg.ExtractionResult, error) {
	source := decodeText(data)
	var opts *kreuzberg.HTMLConversionOptions
	if cfg != nil {
		opts = cfg.HTMLOptions
	}

	doc, err := html.Parse(strings.NewReader(source))
	if err != nil {
		return nil, kreuzberg.NewParsingError(fmt.Sprintf("malformed HTML: %v", err), err)
	}
	meta := htmlHeadMetadata(doc)

	if opts != nil && len(opts.StripTags) > 0 {
		stripTags(doc, opts.StripTags)
		var buf bytes.Buffer
		if err := html.Render(&buf, doc); err != nil {
			return nil, kreuzberg.NewParsingError(fmt.Sprintf("re-render HTML: %v", err), err)
		}
		source = buf.String()
	}

	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	content, err := conv.ConvertString(source)
	if err != nil {
		return nil, kreuzberg.NewParsingError(fmt.Sprintf("html to markdown: %v", err), err)
	}
	content = strings.TrimSpace(content)

	// Fill metadata gaps from the readability pass. Its text content also
	// backstops pathological documents the converter reduces to nothing.
	baseURL, _ := url.Parse("https://localhost/")
	if article, rerr := readability.FromReader(strings.NewReader(decodeText(data)), baseURL); rerr == nil {
		if meta.Title == nil && article.Title != "" {
			meta.Title = kreuzberg.String(article.Title)
		}
		if meta.Description == nil && article.Excerpt != "" {
			meta.Description = kreuzberg.String(article.Excerpt)
		}
		if meta.Author == nil && article.Byline != "" {
			meta.Author = kreuzberg.String(article.Byline)
		}
		if meta.SiteName == nil && article.SiteName != "" {
			meta.SiteName = kreuzberg.String(article.SiteName)
		}
		if content == "" {
			content = strings.TrimSpace(article.TextContent)
		}
	}

	return &kreuzberg.ExtractionResult{
		Content:  content,
		MimeType: mimeType,
		Metadata: kreuzberg.Metadata{Format: kreuzberg.FormatMetadata{Type: kreuzberg.FormatHTML, HTML: meta}},
	}, nil
}

// htmlHeadMetadata walks the parsed tree for title, meta and canonical link
// tags.
func htmlHeadMetadata(doc *html.Node) *kreuzberg.HTMLMetadata {
	meta := &kreuzberg.HTMLMetadata{}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					if t := strings.TrimSpace(n.FirstChild.Data); t != "" && meta.Title == nil {
						meta.Title = kreuzberg.String(t)
					}
				}
			case "meta":
				name := strings.ToLower(attrValue(n, "name"))
				if name == "" {
					name = strings.ToLower(attrValue(n, "property"))
				}
				content := strings.TrimSpace(attrValue(n, "content"))
				if content == "" {
					break
				}
				switch name {
				case "description", "og:description":
					if meta.Description == nil {
						meta.Description = kreuzberg.String(content)
					}
				case "author":
					if meta.Author == nil {
						meta.Author = kreuzberg.String(content)
					}
				case "og:site_name":
					if meta.SiteName == nil {
						meta.SiteName = kreuzberg.String(content)
					}
				}
			case "link":
				if strings.EqualFold(attrValue(n, "rel"), "canonical") && meta.Canonical == nil {
					if href := strings.TrimSpace(attrValue(n, "href")); href != "" {
						meta.Canonical = kreuzberg.String(href)
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return meta
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// stripTags removes every element whose tag name is listed.
func stripTags(doc *html.Node, tags []string) {
	drop := make(map[string]bool, len(tags))
	for _, t := range tags {
		drop[strings.ToLower(t)] = true
	}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; {
			next := c.NextSibling
			if c.Type == html.ElementNode && drop[strings.ToLower(c.Data)] {
				n.RemoveChild(c)
			} else {
				walk(c)
			}
			c = next
		}
	}
	walk(doc)
}
