package extract

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	kreuzberg "github.com/kreuzberg-dev/kreuzberg-go"
)

// extractPDF extracts text page by page, honoring page markers, per-page
// capture and password candidates from the config.
func extractPDF(_ context.Context, data []byte, mimeType string, cfg *kreuzberg.ExtractionConfig) (*kreuzberg.ExtractionResult, error) {
	if len(data) == 0 {
		return nil, kreuzberg.NewParsingError("empty PDF document", nil)
	}

	var pdfCfg *kreuzberg.PdfConfig
	var pagesCfg *kreuzberg.PagesConfig
	if cfg != nil {
		pdfCfg = cfg.PdfOptions
		pagesCfg = cfg.Pages
	}

	reader, encrypted, err := openPDF(data, pdfCfg)
	if err != nil {
		return nil, err
	}

	markerFormat := ""
	extractPages := false
	if pagesCfg != nil {
		if pagesCfg.InsertPageMarkers != nil && *pagesCfg.InsertPageMarkers {
			markerFormat = "--- Page {page} ---"
			if pagesCfg.PageMarkerFormat != "" {
				markerFormat = pagesCfg.PageMarkerFormat
			}
		}
		extractPages = pagesCfg.ExtractPages != nil && *pagesCfg.ExtractPages
	}

	var text strings.Builder
	var pages []kreuzberg.PageContent
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue // skip unreadable pages
		}
		pageText = strings.TrimSpace(pageText)
		if pageText == "" {
			continue
		}
		if text.Len() > 0 {
			text.WriteString("\n\n")
		}
		if markerFormat != "" {
			text.WriteString(strings.ReplaceAll(markerFormat, "{page}", strconv.Itoa(i)))
			text.WriteString("\n")
		}
		text.WriteString(pageText)
		if extractPages {
			pages = append(pages, kreuzberg.PageContent{PageNumber: i, Content: pageText})
		}
	}

	content := strings.TrimSpace(text.String())
	result := &kreuzberg.ExtractionResult{
		Content:  content,
		MimeType: mimeType,
		Pages:    pages,
	}

	pageCount := reader.NumPage()
	pm := &kreuzberg.PdfMetadata{PageCount: &pageCount, IsEncrypted: &encrypted}
	if pdfCfg == nil || pdfCfg.ExtractMetadata == nil || *pdfCfg.ExtractMetadata {
		fillPDFInfo(reader, pm)
	}
	result.Metadata = kreuzberg.Metadata{Format: kreuzberg.FormatMetadata{Type: kreuzberg.FormatPDF, Pdf: pm}}
	if pm.Subject != nil {
		result.Metadata.Subject = pm.Subject
	}

	// A page-bearing PDF with next to no text is usually scanned images;
	// surface that instead of silently returning an empty result.
	if pageCount > 0 && len(content) < 10*pageCount {
		result.Warnings = append(result.Warnings,
			"document appears to contain little extractable text; it may be scanned and require OCR")
	}
	return result, nil
}

// openPDF opens the document, trying each configured password in order when
// the plain open reports encryption.
func openPDF(data []byte, pdfCfg *kreuzberg.PdfConfig) (*pdf.Reader, bool, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err == nil {
		return reader, false, nil
	}

	var passwords []string
	if pdfCfg != nil {
		passwords = pdfCfg.Passwords
	}
	for _, pw := range passwords {
		attempts := 0
		reader, perr := pdf.NewReaderEncrypted(bytes.NewReader(data), int64(len(data)), func() string {
			if attempts > 0 {
				return "" // stop retrying with the same password
			}
			attempts++
			return pw
		})
		if perr == nil {
			return reader, true, nil
		}
	}
	if len(passwords) > 0 {
		return nil, true, kreuzberg.NewParsingError("encrypted PDF: no configured password matched", err)
	}
	return nil, false, kreuzberg.NewParsingError(fmt.Sprintf("open PDF: %v", err), err)
}

// fillPDFInfo copies the document information dictionary into metadata.
func fillPDFInfo(reader *pdf.Reader, pm *kreuzberg.PdfMetadata) {
	defer func() { recover() }() // malformed trailers panic inside the parser

	info := reader.Trailer().Key("Info")
	if info.IsNull() {
		return
	}
	get := func(key string) *string {
		v := info.Key(key)
		if v.Kind() != pdf.String {
			return nil
		}
		s := strings.TrimSpace(v.Text())
		if s == "" {
			return nil
		}
		return &s
	}
	pm.Title = get("Title")
	pm.Subject = get("Subject")
	pm.CreatedBy = get("Creator")
	pm.Producer = get("Producer")
	if author := get("Author"); author != nil {
		pm.Authors = splitAuthors(*author)
	}
}

func splitAuthors(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == ',' })
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
