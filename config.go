package kreuzberg

// ExtractionConfig is an immutable snapshot of all extraction options.
//
// Every field is optional; nil means "use the engine default", never
// "disabled" unless a sub-config carries its own enabled flag. Field names
// follow the canonical snake_case schema shared by every binding and by the
// TOML/YAML/JSON configuration files.
//
// Build instances with ConfigBuilder, FromJSON, or FromFile. A built config
// must not be mutated; it may be shared by any number of concurrent
// extraction calls.
type ExtractionConfig struct {
	UseCache                 *bool                    `json:"use_cache,omitempty" toml:"use_cache" yaml:"use_cache"`
	EnableQualityProcessing  *bool                    `json:"enable_quality_processing,omitempty" toml:"enable_quality_processing" yaml:"enable_quality_processing"`
	ForceOCR                 *bool                    `json:"force_ocr,omitempty" toml:"force_ocr" yaml:"force_ocr"`
	MaxConcurrentExtractions *int                     `json:"max_concurrent_extractions,omitempty" toml:"max_concurrent_extractions" yaml:"max_concurrent_extractions"`
	OCR                      *OCRConfig               `json:"ocr,omitempty" toml:"ocr" yaml:"ocr"`
	Chunking                 *ChunkingConfig          `json:"chunking,omitempty" toml:"chunking" yaml:"chunking"`
	Images                   *ImageExtractionConfig   `json:"images,omitempty" toml:"images" yaml:"images"`
	PdfOptions               *PdfConfig               `json:"pdf_options,omitempty" toml:"pdf_options" yaml:"pdf_options"`
	Pages                    *PagesConfig             `json:"pages,omitempty" toml:"pages" yaml:"pages"`
	TokenReduction           *TokenReductionConfig    `json:"token_reduction,omitempty" toml:"token_reduction" yaml:"token_reduction"`
	LanguageDetection        *LanguageDetectionConfig `json:"language_detection,omitempty" toml:"language_detection" yaml:"language_detection"`
	Postprocessor            *PostProcessorConfig     `json:"postprocessor,omitempty" toml:"postprocessor" yaml:"postprocessor"`
	Keywords                 *KeywordConfig           `json:"keywords,omitempty" toml:"keywords" yaml:"keywords"`
	HTMLOptions              *HTMLConversionOptions   `json:"html_options,omitempty" toml:"html_options" yaml:"html_options"`
}

// OCRConfig selects and configures an OCR backend.
type OCRConfig struct {
	Backend   string           `json:"backend,omitempty" toml:"backend" yaml:"backend"`
	Language  *string          `json:"language,omitempty" toml:"language" yaml:"language"`
	Tesseract *TesseractConfig `json:"tesseract_config,omitempty" toml:"tesseract_config" yaml:"tesseract_config"`
}

// TesseractConfig exposes fine-grained controls for the Tesseract backend.
type TesseractConfig struct {
	Language              string                    `json:"language,omitempty" toml:"language" yaml:"language"`
	PSM                   *int                      `json:"psm,omitempty" toml:"psm" yaml:"psm"`
	OEM                   *int                      `json:"oem,omitempty" toml:"oem" yaml:"oem"`
	OutputFormat          string                    `json:"output_format,omitempty" toml:"output_format" yaml:"output_format"`
	MinConfidence         *float64                  `json:"min_confidence,omitempty" toml:"min_confidence" yaml:"min_confidence"`
	Preprocessing         *ImagePreprocessingConfig `json:"preprocessing,omitempty" toml:"preprocessing" yaml:"preprocessing"`
	EnableTableDetection  *bool                     `json:"enable_table_detection,omitempty" toml:"enable_table_detection" yaml:"enable_table_detection"`
	TableMinConfidence    *float64                  `json:"table_min_confidence,omitempty" toml:"table_min_confidence" yaml:"table_min_confidence"`
	TableColumnThreshold  *int                      `json:"table_column_threshold,omitempty" toml:"table_column_threshold" yaml:"table_column_threshold"`
	UseCache              *bool                     `json:"use_cache,omitempty" toml:"use_cache" yaml:"use_cache"`
	TesseditCharWhitelist string                    `json:"tessedit_char_whitelist,omitempty" toml:"tessedit_char_whitelist" yaml:"tessedit_char_whitelist"`
	TesseditCharBlacklist string                    `json:"tessedit_char_blacklist,omitempty" toml:"tessedit_char_blacklist" yaml:"tessedit_char_blacklist"`
}

// ImagePreprocessingConfig tunes DPI normalization and related OCR steps.
type ImagePreprocessingConfig struct {
	TargetDPI          *int   `json:"target_dpi,omitempty" toml:"target_dpi" yaml:"target_dpi"`
	AutoRotate         *bool  `json:"auto_rotate,omitempty" toml:"auto_rotate" yaml:"auto_rotate"`
	Deskew             *bool  `json:"deskew,omitempty" toml:"deskew" yaml:"deskew"`
	Denoise            *bool  `json:"denoise,omitempty" toml:"denoise" yaml:"denoise"`
	ContrastEnhance    *bool  `json:"contrast_enhance,omitempty" toml:"contrast_enhance" yaml:"contrast_enhance"`
	BinarizationMethod string `json:"binarization_method,omitempty" toml:"binarization_method" yaml:"binarization_method"`
	InvertColors       *bool  `json:"invert_colors,omitempty" toml:"invert_colors" yaml:"invert_colors"`
}

// ChunkingConfig configures text chunking for downstream retrieval workloads.
type ChunkingConfig struct {
	Enabled    *bool            `json:"enabled,omitempty" toml:"enabled" yaml:"enabled"`
	MaxChars   *int             `json:"max_chars,omitempty" toml:"max_chars" yaml:"max_chars"`
	MaxOverlap *int             `json:"max_overlap,omitempty" toml:"max_overlap" yaml:"max_overlap"`
	Preset     *string          `json:"preset,omitempty" toml:"preset" yaml:"preset"`
	Embedding  *EmbeddingConfig `json:"embedding,omitempty" toml:"embedding" yaml:"embedding"`
}

// EmbeddingModelType identifies the embedding model an embedding-aware
// consumer should use for chunks. The engine validates but does not compute
// embeddings.
type EmbeddingModelType struct {
	Type       string `json:"type" toml:"type" yaml:"type"`
	Name       string `json:"name,omitempty" toml:"name" yaml:"name"`
	Model      string `json:"model,omitempty" toml:"model" yaml:"model"`
	Dimensions *int   `json:"dimensions,omitempty" toml:"dimensions" yaml:"dimensions"`
}

// EmbeddingConfig configures embedding generation for chunks.
type EmbeddingConfig struct {
	Model     *EmbeddingModelType `json:"model,omitempty" toml:"model" yaml:"model"`
	Normalize *bool               `json:"normalize,omitempty" toml:"normalize" yaml:"normalize"`
	BatchSize *int                `json:"batch_size,omitempty" toml:"batch_size" yaml:"batch_size"`
}

// ImageExtractionConfig controls inline image extraction.
type ImageExtractionConfig struct {
	ExtractImages     *bool `json:"extract_images,omitempty" toml:"extract_images" yaml:"extract_images"`
	TargetDPI         *int  `json:"target_dpi,omitempty" toml:"target_dpi" yaml:"target_dpi"`
	MaxImageDimension *int  `json:"max_image_dimension,omitempty" toml:"max_image_dimension" yaml:"max_image_dimension"`
	AutoAdjustDPI     *bool `json:"auto_adjust_dpi,omitempty" toml:"auto_adjust_dpi" yaml:"auto_adjust_dpi"`
	MinDPI            *int  `json:"min_dpi,omitempty" toml:"min_dpi" yaml:"min_dpi"`
	MaxDPI            *int  `json:"max_dpi,omitempty" toml:"max_dpi" yaml:"max_dpi"`
}

// PdfConfig exposes PDF-specific options.
type PdfConfig struct {
	ExtractImages   *bool    `json:"extract_images,omitempty" toml:"extract_images" yaml:"extract_images"`
	Passwords       []string `json:"passwords,omitempty" toml:"passwords" yaml:"passwords"`
	ExtractMetadata *bool    `json:"extract_metadata,omitempty" toml:"extract_metadata" yaml:"extract_metadata"`
}

// PagesConfig controls per-page content in results. PageMarkerFormat must
// contain the {page} placeholder when set.
type PagesConfig struct {
	ExtractPages      *bool  `json:"extract_pages,omitempty" toml:"extract_pages" yaml:"extract_pages"`
	InsertPageMarkers *bool  `json:"insert_page_markers,omitempty" toml:"insert_page_markers" yaml:"insert_page_markers"`
	PageMarkerFormat  string `json:"page_marker_format,omitempty" toml:"page_marker_format" yaml:"page_marker_format"`
}

// Token reduction modes, ordered from no-op to most aggressive.
const (
	TokenReductionOff        = "off"
	TokenReductionLight      = "light"
	TokenReductionModerate   = "moderate"
	TokenReductionAggressive = "aggressive"
)

// TokenReductionConfig governs token pruning of extracted content.
type TokenReductionConfig struct {
	Mode                   string `json:"mode,omitempty" toml:"mode" yaml:"mode"`
	PreserveImportantWords *bool  `json:"preserve_important_words,omitempty" toml:"preserve_important_words" yaml:"preserve_important_words"`
}

// LanguageDetectionConfig enables automatic language detection.
type LanguageDetectionConfig struct {
	Enabled        *bool    `json:"enabled,omitempty" toml:"enabled" yaml:"enabled"`
	MinConfidence  *float64 `json:"min_confidence,omitempty" toml:"min_confidence" yaml:"min_confidence"`
	DetectMultiple *bool    `json:"detect_multiple,omitempty" toml:"detect_multiple" yaml:"detect_multiple"`
}

// PostProcessorConfig determines which registered post-processors run.
// When EnabledProcessors is set it is authoritative; otherwise
// DisabledProcessors is subtracted from the full registry.
type PostProcessorConfig struct {
	Enabled            *bool    `json:"enabled,omitempty" toml:"enabled" yaml:"enabled"`
	EnabledProcessors  []string `json:"enabled_processors,omitempty" toml:"enabled_processors" yaml:"enabled_processors"`
	DisabledProcessors []string `json:"disabled_processors,omitempty" toml:"disabled_processors" yaml:"disabled_processors"`
}

// Keyword extraction algorithms.
const (
	KeywordAlgorithmYake = "yake"
	KeywordAlgorithmRake = "rake"
)

// KeywordConfig configures keyword extraction.
type KeywordConfig struct {
	Algorithm   string      `json:"algorithm,omitempty" toml:"algorithm" yaml:"algorithm"`
	MaxKeywords *int        `json:"max_keywords,omitempty" toml:"max_keywords" yaml:"max_keywords"`
	MinScore    *float64    `json:"min_score,omitempty" toml:"min_score" yaml:"min_score"`
	NgramRange  *[2]int     `json:"ngram_range,omitempty" toml:"ngram_range" yaml:"ngram_range"`
	Language    *string     `json:"language,omitempty" toml:"language" yaml:"language"`
	Yake        *YakeParams `json:"yake_params,omitempty" toml:"yake_params" yaml:"yake_params"`
	Rake        *RakeParams `json:"rake_params,omitempty" toml:"rake_params" yaml:"rake_params"`
}

// YakeParams holds YAKE-specific tuning.
type YakeParams struct {
	WindowSize *int `json:"window_size,omitempty" toml:"window_size" yaml:"window_size"`
}

// RakeParams holds RAKE-specific tuning.
type RakeParams struct {
	MinWordLength     *int `json:"min_word_length,omitempty" toml:"min_word_length" yaml:"min_word_length"`
	MaxWordsPerPhrase *int `json:"max_words_per_phrase,omitempty" toml:"max_words_per_phrase" yaml:"max_words_per_phrase"`
}

// HTMLConversionOptions tunes HTML to Markdown conversion.
type HTMLConversionOptions struct {
	HeadingStyle string   `json:"heading_style,omitempty" toml:"heading_style" yaml:"heading_style"`
	Bullets      string   `json:"bullets,omitempty" toml:"bullets" yaml:"bullets"`
	Wrap         *bool    `json:"wrap,omitempty" toml:"wrap" yaml:"wrap"`
	WrapWidth    *int     `json:"wrap_width,omitempty" toml:"wrap_width" yaml:"wrap_width"`
	StripTags    []string `json:"strip_tags,omitempty" toml:"strip_tags" yaml:"strip_tags"`
	PreserveTags []string `json:"preserve_tags,omitempty" toml:"preserve_tags" yaml:"preserve_tags"`
}

// Pointer helpers for populating optional config fields.

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Float64 returns a pointer to v.
func Float64(v float64) *float64 { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }
