package extract

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	kreuzberg "github.com/kreuzberg-dev/kreuzberg-go"
)

// extractPlainText handles text/* documents that have no richer extractor.
func extractPlainText(_ context.Context, data []byte, mimeType string, _ *kreuzberg.ExtractionConfig) (*kreuzberg.ExtractionResult, error) {
	content := decodeText(data)
	return &kreuzberg.ExtractionResult{
		Content:  content,
		MimeType: mimeType,
		Metadata: textMetadata(content),
	}, nil
}

// extractCSV renders comma or tab separated values as a pipe-delimited text
// table and records it as a structured table on the result.
func extractCSV(_ context.Context, data []byte, mimeType string, _ *kreuzberg.ExtractionConfig) (*kreuzberg.ExtractionResult, error) {
	r := csv.NewReader(bytes.NewReader(data))
	if mimeType == kreuzberg.MimeTSV {
		r.Comma = '\t'
	}
	r.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, kreuzberg.NewParsingError(fmt.Sprintf("malformed CSV: %v", err), err)
		}
		rows = append(rows, record)
	}

	var b strings.Builder
	for _, row := range rows {
		b.WriteString(strings.Join(row, " | "))
		b.WriteByte('\n')
	}
	content := b.String()

	result := &kreuzberg.ExtractionResult{
		Content:  content,
		MimeType: mimeType,
		Metadata: textMetadata(content),
	}
	if len(rows) > 0 {
		result.Tables = []kreuzberg.Table{{Cells: rows, PageNumber: 1}}
	}
	return result, nil
}

// extractJSON pretty-prints the document and collects its string values as
// plain text content, so nested payload text stays searchable.
func extractJSON(_ context.Context, data []byte, mimeType string, _ *kreuzberg.ExtractionConfig) (*kreuzberg.ExtractionResult, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, kreuzberg.NewParsingError(fmt.Sprintf("malformed JSON: %v", err), err)
	}
	var b strings.Builder
	collectJSONStrings(doc, &b)
	content := strings.TrimSpace(b.String())
	if content == "" {
		content = decodeText(data)
	}
	return &kreuzberg.ExtractionResult{
		Content:  content,
		MimeType: mimeType,
		Metadata: textMetadata(content),
	}, nil
}

func collectJSONStrings(v any, b *strings.Builder) {
	switch val := v.(type) {
	case string:
		b.WriteString(val)
		b.WriteByte('\n')
	case map[string]any:
		for _, k := range sortedKeys(val) {
			collectJSONStrings(val[k], b)
		}
	case []any:
		for _, item := range val {
			collectJSONStrings(item, b)
		}
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// extractXML strips markup and returns the character data.
func extractXML(_ context.Context, data []byte, mimeType string, _ *kreuzberg.ExtractionConfig) (*kreuzberg.ExtractionResult, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var b strings.Builder
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, kreuzberg.NewParsingError(fmt.Sprintf("malformed XML: %v", err), err)
		}
		if cd, ok := tok.(xml.CharData); ok {
			text := strings.TrimSpace(string(cd))
			if text != "" {
				b.WriteString(text)
				b.WriteByte('\n')
			}
		}
	}
	content := strings.TrimSpace(b.String())
	return &kreuzberg.ExtractionResult{
		Content:  content,
		MimeType: mimeType,
		Metadata: textMetadata(content),
	}, nil
}

// decodeText normalizes raw bytes to a UTF-8 string, replacing invalid
// sequences and stripping a BOM when present.
func decodeText(data []byte) string {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if utf8.Valid(data) {
		return string(data)
	}
	return strings.ToValidUTF8(string(data), "�")
}

// textMetadata computes line, word and character counts for text content.
func textMetadata(content string) kreuzberg.Metadata {
	tm := &kreuzberg.TextMetadata{
		WordCount:      len(strings.Fields(content)),
		CharacterCount: utf8.RuneCountInString(content),
	}
	if content != "" {
		tm.LineCount = strings.Count(content, "\n") + 1
	}
	return kreuzberg.Metadata{Format: kreuzberg.FormatMetadata{Type: kreuzberg.FormatText, Text: tm}}
}
