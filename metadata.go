package kreuzberg

import "encoding/json"

// Metadata aggregates document metadata plus a format-discriminated payload.
// On the wire the payload is flattened next to the core keys with a
// format_type discriminator, matching the canonical schema.
type Metadata struct {
	Language   *string                    `json:"-"`
	Date       *string                    `json:"-"`
	Subject    *string                    `json:"-"`
	Format     FormatMetadata             `json:"-"`
	Error      *ErrorMetadata             `json:"-"`
	Additional map[string]json.RawMessage `json:"-"`
}

// FormatType discriminates format-specific metadata payloads.
type FormatType string

const (
	FormatUnknown FormatType = ""
	FormatPDF     FormatType = "pdf"
	FormatText    FormatType = "text"
	FormatHTML    FormatType = "html"
	FormatImage   FormatType = "image"
	FormatOCR     FormatType = "ocr"
)

// FormatMetadata is the discriminated union of per-format metadata.
type FormatMetadata struct {
	Type  FormatType
	Pdf   *PdfMetadata
	Text  *TextMetadata
	HTML  *HTMLMetadata
	Image *ImageMetadata
	OCR   *OCRMetadata
}

// PdfMetadata contains metadata extracted from PDF documents.
type PdfMetadata struct {
	Title       *string  `json:"title,omitempty"`
	Subject     *string  `json:"subject,omitempty"`
	Authors     []string `json:"authors,omitempty"`
	CreatedBy   *string  `json:"created_by,omitempty"`
	Producer    *string  `json:"producer,omitempty"`
	PageCount   *int     `json:"page_count,omitempty"`
	PDFVersion  *string  `json:"pdf_version,omitempty"`
	IsEncrypted *bool    `json:"is_encrypted,omitempty"`
}

// TextMetadata contains counts for plain text and Markdown documents.
type TextMetadata struct {
	LineCount      int         `json:"line_count"`
	WordCount      int         `json:"word_count"`
	CharacterCount int         `json:"character_count"`
	Headers        []string    `json:"headers,omitempty"`
	Links          [][2]string `json:"links,omitempty"`
	CodeBlocks     [][2]string `json:"code_blocks,omitempty"`
}

// HTMLMetadata captures document head metadata from HTML sources.
type HTMLMetadata struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Author      *string `json:"author,omitempty"`
	SiteName    *string `json:"site_name,omitempty"`
	Canonical   *string `json:"canonical,omitempty"`
}

// ImageMetadata describes standalone image documents.
type ImageMetadata struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}

// OCRMetadata records the OCR settings used to produce a result.
type OCRMetadata struct {
	Backend  string `json:"backend"`
	Language string `json:"language"`
	PSM      *int   `json:"psm,omitempty"`
}

// ErrorMetadata describes the failure occupying a batch slot.
type ErrorMetadata struct {
	ErrorType string `json:"error_type"`
	Message   string `json:"message"`
}

var metadataCoreKeys = map[string]struct{}{
	"language":    {},
	"date":        {},
	"subject":     {},
	"format_type": {},
	"error":       {},
}

var formatFieldSets = map[FormatType][]string{
	FormatPDF:   {"title", "subject", "authors", "created_by", "producer", "page_count", "pdf_version", "is_encrypted"},
	FormatText:  {"line_count", "word_count", "character_count", "headers", "links", "code_blocks"},
	FormatHTML:  {"title", "description", "author", "site_name", "canonical"},
	FormatImage: {"width", "height", "format"},
	FormatOCR:   {"backend", "language", "psm"},
}

// MarshalJSON flattens the format payload next to the core keys with a
// format_type discriminator.
func (m Metadata) MarshalJSON() ([]byte, error) {
	out := map[string]json.RawMessage{}
	put := func(key string, v any) error {
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		out[key] = raw
		return nil
	}

	if m.Language != nil {
		if err := put("language", m.Language); err != nil {
			return nil, err
		}
	}
	if m.Date != nil {
		if err := put("date", m.Date); err != nil {
			return nil, err
		}
	}
	if m.Subject != nil {
		if err := put("subject", m.Subject); err != nil {
			return nil, err
		}
	}
	if m.Error != nil {
		if err := put("error", m.Error); err != nil {
			return nil, err
		}
	}

	var payload any
	switch m.Format.Type {
	case FormatPDF:
		payload = m.Format.Pdf
	case FormatText:
		payload = m.Format.Text
	case FormatHTML:
		payload = m.Format.HTML
	case FormatImage:
		payload = m.Format.Image
	case FormatOCR:
		payload = m.Format.OCR
	}
	if m.Format.Type != FormatUnknown {
		if err := put("format_type", string(m.Format.Type)); err != nil {
			return nil, err
		}
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		flat := map[string]json.RawMessage{}
		if err := json.Unmarshal(raw, &flat); err != nil {
			return nil, err
		}
		for k, v := range flat {
			if _, core := metadataCoreKeys[k]; !core {
				out[k] = v
			}
		}
	}
	for k, v := range m.Additional {
		if _, taken := out[k]; !taken {
			out[k] = v
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores the format union and collects unknown keys into
// Additional.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	decodeString := func(key string) *string {
		value, ok := raw[key]
		if !ok {
			return nil
		}
		var out string
		if err := json.Unmarshal(value, &out); err != nil {
			return nil
		}
		return &out
	}
	m.Language = decodeString("language")
	m.Date = decodeString("date")
	m.Subject = decodeString("subject")

	if value, ok := raw["error"]; ok {
		var em ErrorMetadata
		if err := json.Unmarshal(value, &em); err == nil {
			m.Error = &em
		}
	}
	if value, ok := raw["format_type"]; ok {
		var ft string
		if err := json.Unmarshal(value, &ft); err == nil {
			m.Format.Type = FormatType(ft)
		}
	}

	if m.Format.Type != FormatUnknown {
		if err := m.decodeFormatPayload(data); err != nil {
			return err
		}
	}

	consumed := map[string]struct{}{}
	for k := range metadataCoreKeys {
		consumed[k] = struct{}{}
	}
	for _, k := range formatFieldSets[m.Format.Type] {
		consumed[k] = struct{}{}
	}
	for k, v := range raw {
		if _, ok := consumed[k]; ok {
			continue
		}
		if m.Additional == nil {
			m.Additional = map[string]json.RawMessage{}
		}
		m.Additional[k] = v
	}
	return nil
}

func (m *Metadata) decodeFormatPayload(data []byte) error {
	switch m.Format.Type {
	case FormatPDF:
		var p PdfMetadata
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		m.Format.Pdf = &p
	case FormatText:
		var t TextMetadata
		if err := json.Unmarshal(data, &t); err != nil {
			return err
		}
		m.Format.Text = &t
	case FormatHTML:
		var h HTMLMetadata
		if err := json.Unmarshal(data, &h); err != nil {
			return err
		}
		m.Format.HTML = &h
	case FormatImage:
		var i ImageMetadata
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		m.Format.Image = &i
	case FormatOCR:
		var o OCRMetadata
		if err := json.Unmarshal(data, &o); err != nil {
			return err
		}
		m.Format.OCR = &o
	}
	return nil
}

// PdfMetadata returns the PDF payload if present.
func (m Metadata) PdfMetadata() (*PdfMetadata, bool) {
	return m.Format.Pdf, m.Format.Type == FormatPDF && m.Format.Pdf != nil
}

// TextMetadata returns the text payload if present.
func (m Metadata) TextMetadata() (*TextMetadata, bool) {
	return m.Format.Text, m.Format.Type == FormatText && m.Format.Text != nil
}

// HTMLMetadata returns the HTML payload if present.
func (m Metadata) HTMLMetadata() (*HTMLMetadata, bool) {
	return m.Format.HTML, m.Format.Type == FormatHTML && m.Format.HTML != nil
}

// ImageMetadata returns the image payload if present.
func (m Metadata) ImageMetadata() (*ImageMetadata, bool) {
	return m.Format.Image, m.Format.Type == FormatImage && m.Format.Image != nil
}

// OCRMetadata returns the OCR payload if present.
func (m Metadata) OCRMetadata() (*OCRMetadata, bool) {
	return m.Format.OCR, m.Format.Type == FormatOCR && m.Format.OCR != nil
}
