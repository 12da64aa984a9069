package extract

import (
	"context"
	"strings"

	kreuzberg "github.com/kreuzberg-dev/kreuzberg-go"
)

// extractorFunc is the signature shared by the built-in format extractors.
type extractorFunc func(ctx context.Context, data []byte, mimeType string, cfg *kreuzberg.ExtractionConfig) (*kreuzberg.ExtractionResult, error)

// builtinExtractor maps a MIME type to its built-in extractor, or nil when
// the format is unsupported.
func builtinExtractor(mimeType string) extractorFunc {
	switch {
	case mimeType == kreuzberg.MimePDF:
		return extractPDF
	case mimeType == kreuzberg.MimeDOCX:
		return extractDOCX
	case mimeType == kreuzberg.MimeXLSX:
		return extractXLSX
	case mimeType == kreuzberg.MimePPTX:
		return extractPPTX
	case mimeType == kreuzberg.MimeHTML || mimeType == "application/xhtml+xml":
		return extractHTML
	case mimeType == kreuzberg.MimeMarkdown:
		return extractMarkdown
	case mimeType == kreuzberg.MimeCSV || mimeType == kreuzberg.MimeTSV:
		return extractCSV
	case mimeType == kreuzberg.MimeJSON:
		return extractJSON
	case mimeType == kreuzberg.MimeXML || mimeType == "text/xml":
		return extractXML
	case strings.HasPrefix(mimeType, "image/"):
		return extractImage
	case strings.HasPrefix(mimeType, "text/"):
		return extractPlainText
	default:
		return nil
	}
}
