package kreuzberg

// ExtractionResult is the output of one extraction call. All fields are
// owned by the caller.
type ExtractionResult struct {
	Content           string           `json:"content"`
	MimeType          string           `json:"mime_type"`
	Metadata          Metadata         `json:"metadata"`
	Tables            []Table          `json:"tables,omitempty"`
	DetectedLanguages []string         `json:"detected_languages,omitempty"`
	Chunks            []Chunk          `json:"chunks,omitempty"`
	Images            []ExtractedImage `json:"images,omitempty"`
	Pages             []PageContent    `json:"pages,omitempty"`
	Keywords          []Keyword        `json:"keywords,omitempty"`
	QualityScore      *float64         `json:"quality_score,omitempty"`
	Warnings          []string         `json:"warnings,omitempty"`
	Success           bool             `json:"success"`
}

// Table represents a detected table in the source document.
type Table struct {
	Cells      [][]string `json:"cells"`
	Markdown   string     `json:"markdown"`
	PageNumber int        `json:"page_number"`
}

// Chunk is a slice of the extracted content plus positional metadata and an
// optional embedding vector.
type Chunk struct {
	Content   string        `json:"content"`
	Embedding []float32     `json:"embedding,omitempty"`
	Metadata  ChunkMetadata `json:"metadata"`
}

// ChunkMetadata provides positional information for a chunk. CharStart and
// CharEnd are byte offsets into ExtractionResult.Content.
type ChunkMetadata struct {
	CharStart   int  `json:"char_start"`
	CharEnd     int  `json:"char_end"`
	TokenCount  *int `json:"token_count,omitempty"`
	ChunkIndex  int  `json:"chunk_index"`
	TotalChunks int  `json:"total_chunks"`
	FirstPage   *int `json:"first_page,omitempty"`
	LastPage    *int `json:"last_page,omitempty"`
}

// ExtractedImage is an inline image pulled from a document, optionally with
// a nested OCR sub-result.
type ExtractedImage struct {
	Data       []byte            `json:"data"`
	Format     string            `json:"format"`
	ImageIndex int               `json:"image_index"`
	PageNumber *int              `json:"page_number,omitempty"`
	Width      *int              `json:"width,omitempty"`
	Height     *int              `json:"height,omitempty"`
	OCRResult  *ExtractionResult `json:"ocr_result,omitempty"`
}

// PageContent holds the text of a single page when per-page extraction is
// enabled.
type PageContent struct {
	PageNumber int    `json:"page_number"`
	Content    string `json:"content"`
}

// Keyword is a scored keyword or keyphrase.
type Keyword struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}
