package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	kreuzberg "github.com/kreuzberg-dev/kreuzberg-go"
)

// extractDOCX streams the OOXML tokens in word/document.xml to extract
// paragraphs, headings and tables without loading a DOM tree.
func extractDOCX(_ context.Context, data []byte, mimeType string, cfg *kreuzberg.ExtractionConfig) (*kreuzberg.ExtractionResult, error) {
	zr, err := openOOXML(data)
	if err != nil {
		return nil, err
	}
	docData, err := zipFileData(zr, "word/document.xml")
	if err != nil {
		return nil, err
	}

	s := &docxState{decoder: xml.NewDecoder(bytes.NewReader(docData))}
	for {
		tok, err := s.decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, kreuzberg.NewParsingError(fmt.Sprintf("parse document.xml: %v", err), err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			s.handleStart(t)
		case xml.EndElement:
			s.handleEnd(t)
		case xml.CharData:
			s.handleCharData(t)
		}
	}

	content := strings.TrimSpace(s.text.String())
	result := &kreuzberg.ExtractionResult{
		Content:  content,
		MimeType: mimeType,
		Tables:   s.tables,
		Metadata: textMetadata(content),
	}
	if tm := result.Metadata.Format.Text; tm != nil {
		tm.Headers = s.headings
	}
	if wantImages(cfg) {
		result.Images = collectZipImages(zr, "word/media/")
	}
	return result, nil
}

// extractXLSX resolves shared strings and renders each worksheet as a
// pipe-delimited table.
func extractXLSX(_ context.Context, data []byte, mimeType string, _ *kreuzberg.ExtractionConfig) (*kreuzberg.ExtractionResult, error) {
	zr, err := openOOXML(data)
	if err != nil {
		return nil, err
	}

	shared, err := sharedStrings(zr)
	if err != nil {
		return nil, err
	}

	var sheetNames []string
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "xl/worksheets/sheet") && strings.HasSuffix(f.Name, ".xml") {
			sheetNames = append(sheetNames, f.Name)
		}
	}
	sort.Strings(sheetNames)

	var b strings.Builder
	var tables []kreuzberg.Table
	for idx, name := range sheetNames {
		sheetData, err := zipFileData(zr, name)
		if err != nil {
			continue
		}
		rows, err := parseWorksheet(sheetData, shared)
		if err != nil || len(rows) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		for _, row := range rows {
			b.WriteString(strings.Join(row, " | "))
			b.WriteByte('\n')
		}
		tables = append(tables, kreuzberg.Table{Cells: rows, PageNumber: idx + 1})
	}

	content := strings.TrimSpace(b.String())
	return &kreuzberg.ExtractionResult{
		Content:  content,
		MimeType: mimeType,
		Tables:   tables,
		Metadata: textMetadata(content),
	}, nil
}

// extractPPTX concatenates the text runs of each slide in slide order.
func extractPPTX(_ context.Context, data []byte, mimeType string, cfg *kreuzberg.ExtractionConfig) (*kreuzberg.ExtractionResult, error) {
	zr, err := openOOXML(data)
	if err != nil {
		return nil, err
	}

	var slides []string
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "ppt/slides/slide") && strings.HasSuffix(f.Name, ".xml") {
			slides = append(slides, f.Name)
		}
	}
	sort.Slice(slides, func(i, j int) bool { return slideNumber(slides[i]) < slideNumber(slides[j]) })

	var b strings.Builder
	var pages []kreuzberg.PageContent
	for i, name := range slides {
		slideData, err := zipFileData(zr, name)
		if err != nil {
			continue
		}
		text := ooxmlTextRuns(slideData, "t")
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(text)
		pages = append(pages, kreuzberg.PageContent{PageNumber: i + 1, Content: text})
	}

	content := strings.TrimSpace(b.String())
	result := &kreuzberg.ExtractionResult{
		Content:  content,
		MimeType: mimeType,
		Pages:    pages,
		Metadata: textMetadata(content),
	}
	if wantImages(cfg) {
		result.Images = collectZipImages(zr, "ppt/media/")
	}
	return result, nil
}

func openOOXML(data []byte) (*zip.Reader, error) {
	if len(data) == 0 {
		return nil, kreuzberg.NewParsingError("empty document", nil)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, kreuzberg.NewParsingError(fmt.Sprintf("open OOXML container: %v", err), err)
	}
	return zr, nil
}

func zipFileData(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, kreuzberg.NewParsingError(fmt.Sprintf("open %s: %v", name, err), err)
			}
			defer rc.Close()
			data, err := io.ReadAll(rc)
			if err != nil {
				return nil, kreuzberg.NewIOError(fmt.Sprintf("read %s", name), err)
			}
			return data, nil
		}
	}
	return nil, kreuzberg.NewParsingError(fmt.Sprintf("missing %s", name), nil)
}

func wantImages(cfg *kreuzberg.ExtractionConfig) bool {
	return cfg != nil && cfg.Images != nil && cfg.Images.ExtractImages != nil && *cfg.Images.ExtractImages
}

// collectZipImages gathers embedded media files under the given prefix.
func collectZipImages(zr *zip.Reader, prefix string) []kreuzberg.ExtractedImage {
	var images []kreuzberg.ExtractedImage
	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, prefix) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil || len(data) == 0 {
			continue
		}
		mime := kreuzberg.DetectMimeType(data)
		if !strings.HasPrefix(mime, "image/") {
			continue
		}
		images = append(images, kreuzberg.ExtractedImage{
			Data:       data,
			Format:     strings.TrimPrefix(mime, "image/"),
			ImageIndex: len(images),
		})
	}
	return images
}

// docxState tracks the streaming XML decoder state for word/document.xml.
type docxState struct {
	text    strings.Builder
	decoder *xml.Decoder

	headings []string
	tables   []kreuzberg.Table

	inParagraph    bool
	inRun          bool
	currentStyle   string
	paragraphTexts []string

	inTable     bool
	inTableRow  bool
	tableRows   [][]string
	cellTexts   []string
	currentCell strings.Builder
}

func (s *docxState) handleStart(t xml.StartElement) {
	switch t.Name.Local {
	case "p":
		s.inParagraph = true
		s.currentStyle = ""
		s.paragraphTexts = nil
	case "pStyle":
		for _, attr := range t.Attr {
			if attr.Name.Local == "val" {
				s.currentStyle = attr.Value
			}
		}
	case "r":
		s.inRun = true
	case "tbl":
		s.inTable = true
		s.tableRows = nil
	case "tr":
		s.inTableRow = true
		s.cellTexts = nil
	case "tc":
		s.currentCell.Reset()
	}
}

func (s *docxState) handleEnd(t xml.EndElement) {
	switch t.Name.Local {
	case "r":
		s.inRun = false
	case "tc":
		s.cellTexts = append(s.cellTexts, strings.TrimSpace(s.currentCell.String()))
	case "tr":
		s.inTableRow = false
		if s.inTable {
			row := make([]string, len(s.cellTexts))
			copy(row, s.cellTexts)
			s.tableRows = append(s.tableRows, row)
		}
	case "tbl":
		s.inTable = false
		s.emitTable()
	case "p":
		s.endParagraph()
	}
}

func (s *docxState) handleCharData(data xml.CharData) {
	content := string(data)
	if s.inTable && s.inTableRow {
		s.currentCell.WriteString(content)
		return
	}
	if s.inParagraph && s.inRun {
		s.paragraphTexts = append(s.paragraphTexts, content)
	}
}

// emitTable renders the buffered rows into the running text and records the
// structured table.
func (s *docxState) emitTable() {
	if len(s.tableRows) == 0 {
		return
	}
	if s.text.Len() > 0 {
		s.text.WriteString("\n\n")
	}
	for _, row := range s.tableRows {
		s.text.WriteString(strings.Join(row, " | "))
		s.text.WriteByte('\n')
	}
	s.tables = append(s.tables, kreuzberg.Table{Cells: s.tableRows, PageNumber: len(s.tables) + 1})
	s.tableRows = nil
}

// endParagraph finalizes a paragraph, emitting its text and recording
// heading-styled paragraphs.
func (s *docxState) endParagraph() {
	s.inParagraph = false
	if s.inTable || len(s.paragraphTexts) == 0 {
		return
	}
	paraText := strings.TrimSpace(strings.Join(s.paragraphTexts, ""))
	if paraText == "" {
		return
	}
	if strings.HasPrefix(s.currentStyle, "Heading") {
		s.headings = append(s.headings, paraText)
	}
	if s.text.Len() > 0 {
		s.text.WriteString("\n\n")
	}
	s.text.WriteString(paraText)
}

// sharedStrings parses xl/sharedStrings.xml into an index-addressable slice.
func sharedStrings(zr *zip.Reader) ([]string, error) {
	data, err := zipFileData(zr, "xl/sharedStrings.xml")
	if err != nil {
		return nil, nil // workbooks without shared strings are valid
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	var strs []string
	var current strings.Builder
	var inSI, inT bool
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, kreuzberg.NewParsingError(fmt.Sprintf("parse sharedStrings.xml: %v", err), err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "si":
				inSI = true
				current.Reset()
			case "t":
				inT = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "si":
				inSI = false
				strs = append(strs, current.String())
			case "t":
				inT = false
			}
		case xml.CharData:
			if inSI && inT {
				current.WriteString(string(t))
			}
		}
	}
	return strs, nil
}

// parseWorksheet walks a sheet's cells, resolving shared-string references.
func parseWorksheet(data []byte, shared []string) ([][]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var rows [][]string
	var row []string
	var cellType string
	var cellValue strings.Builder
	var inValue bool
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, kreuzberg.NewParsingError(fmt.Sprintf("parse worksheet: %v", err), err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "row":
				row = nil
			case "c":
				cellType = ""
				for _, attr := range t.Attr {
					if attr.Name.Local == "t" {
						cellType = attr.Value
					}
				}
			case "v", "t":
				inValue = true
				cellValue.Reset()
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "row":
				if len(row) > 0 {
					rows = append(rows, row)
				}
			case "c":
				row = append(row, resolveCell(cellType, cellValue.String(), shared))
				cellValue.Reset()
			case "v", "t":
				inValue = false
			}
		case xml.CharData:
			if inValue {
				cellValue.WriteString(string(t))
			}
		}
	}
	return rows, nil
}

func resolveCell(cellType, raw string, shared []string) string {
	if cellType == "s" {
		idx, err := strconv.Atoi(strings.TrimSpace(raw))
		if err == nil && idx >= 0 && idx < len(shared) {
			return shared[idx]
		}
		return ""
	}
	return strings.TrimSpace(raw)
}

// ooxmlTextRuns collects the character data of every element with the given
// local name, joined by newlines.
func ooxmlTextRuns(data []byte, local string) string {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var b strings.Builder
	depth := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == local {
				depth++
			}
		case xml.EndElement:
			if t.Name.Local == local && depth > 0 {
				depth--
				b.WriteByte('\n')
			}
		case xml.CharData:
			if depth > 0 {
				b.Write(t)
			}
		}
	}
	return strings.TrimSpace(b.String())
}

func slideNumber(name string) int {
	base := strings.TrimSuffix(strings.TrimPrefix(name, "ppt/slides/slide"), ".xml")
	n, err := strconv.Atoi(base)
	if err != nil {
		return 0
	}
	return n
}
