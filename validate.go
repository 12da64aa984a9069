package kreuzberg

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Validate checks every present sub-config independently and fails on the
// first violated constraint. Values are never clamped; an out-of-range value
// is always an error.
func (c *ExtractionConfig) Validate() error {
	if c == nil {
		return nil
	}
	if c.MaxConcurrentExtractions != nil && *c.MaxConcurrentExtractions < 1 {
		return NewValidationError(fmt.Sprintf("max_concurrent_extractions must be positive, got %d", *c.MaxConcurrentExtractions), nil)
	}
	if err := c.OCR.validate(); err != nil {
		return err
	}
	if err := c.Chunking.validate(); err != nil {
		return err
	}
	if err := c.Images.validate(); err != nil {
		return err
	}
	if err := c.Pages.validate(); err != nil {
		return err
	}
	if err := c.TokenReduction.validate(); err != nil {
		return err
	}
	if err := c.LanguageDetection.validate(); err != nil {
		return err
	}
	if err := c.Keywords.validate(); err != nil {
		return err
	}
	if err := c.HTMLOptions.validate(); err != nil {
		return err
	}
	return nil
}

func (o *OCRConfig) validate() error {
	if o == nil {
		return nil
	}
	if o.Backend != "" {
		if err := ValidateOCRBackend(o.Backend); err != nil {
			return err
		}
	}
	if o.Language != nil {
		if err := ValidateLanguageCode(*o.Language); err != nil {
			return err
		}
	}
	return o.Tesseract.validate()
}

func (t *TesseractConfig) validate() error {
	if t == nil {
		return nil
	}
	if t.Language != "" {
		if err := ValidateLanguageCode(t.Language); err != nil {
			return err
		}
	}
	if t.PSM != nil && (*t.PSM < 0 || *t.PSM > 13) {
		return NewValidationError(fmt.Sprintf("tesseract_config.psm must be in [0, 13], got %d", *t.PSM), nil)
	}
	if t.OEM != nil && (*t.OEM < 0 || *t.OEM > 3) {
		return NewValidationError(fmt.Sprintf("tesseract_config.oem must be in [0, 3], got %d", *t.OEM), nil)
	}
	if t.OutputFormat != "" {
		switch t.OutputFormat {
		case "text", "markdown", "hocr", "tsv":
		default:
			return NewValidationError(fmt.Sprintf("tesseract_config.output_format must be one of text, markdown, hocr, tsv, got %q", t.OutputFormat), nil)
		}
	}
	if t.MinConfidence != nil {
		if err := validateConfidence("tesseract_config.min_confidence", *t.MinConfidence); err != nil {
			return err
		}
	}
	if t.TableMinConfidence != nil {
		if err := validateConfidence("tesseract_config.table_min_confidence", *t.TableMinConfidence); err != nil {
			return err
		}
	}
	if t.TableColumnThreshold != nil && *t.TableColumnThreshold < 1 {
		return NewValidationError(fmt.Sprintf("tesseract_config.table_column_threshold must be positive, got %d", *t.TableColumnThreshold), nil)
	}
	return t.Preprocessing.validate()
}

func (p *ImagePreprocessingConfig) validate() error {
	if p == nil {
		return nil
	}
	if p.TargetDPI != nil {
		if err := validateDPI("preprocessing.target_dpi", *p.TargetDPI); err != nil {
			return err
		}
	}
	if p.BinarizationMethod != "" {
		if err := ValidateBinarizationMethod(p.BinarizationMethod); err != nil {
			return err
		}
	}
	return nil
}

func (c *ChunkingConfig) validate() error {
	if c == nil {
		return nil
	}
	if c.MaxChars != nil && *c.MaxChars < 1 {
		return NewValidationError(fmt.Sprintf("chunking.max_chars must be positive, got %d", *c.MaxChars), nil)
	}
	if c.MaxOverlap != nil && *c.MaxOverlap < 0 {
		return NewValidationError(fmt.Sprintf("chunking.max_overlap must not be negative, got %d", *c.MaxOverlap), nil)
	}
	if c.MaxChars != nil && c.MaxOverlap != nil && *c.MaxOverlap >= *c.MaxChars {
		return NewValidationError(fmt.Sprintf("chunking.max_overlap (%d) must be smaller than chunking.max_chars (%d)", *c.MaxOverlap, *c.MaxChars), nil)
	}
	return c.Embedding.validate()
}

func (e *EmbeddingConfig) validate() error {
	if e == nil {
		return nil
	}
	if e.BatchSize != nil && *e.BatchSize < 1 {
		return NewValidationError(fmt.Sprintf("chunking.embedding.batch_size must be positive, got %d", *e.BatchSize), nil)
	}
	if e.Model != nil {
		switch e.Model.Type {
		case "preset", "fastembed", "custom":
		default:
			return NewValidationError(fmt.Sprintf("chunking.embedding.model.type must be one of preset, fastembed, custom, got %q", e.Model.Type), nil)
		}
		if e.Model.Dimensions != nil && *e.Model.Dimensions < 1 {
			return NewValidationError(fmt.Sprintf("chunking.embedding.model.dimensions must be positive, got %d", *e.Model.Dimensions), nil)
		}
	}
	return nil
}

func (i *ImageExtractionConfig) validate() error {
	if i == nil {
		return nil
	}
	for _, f := range []struct {
		name  string
		value *int
	}{
		{"images.target_dpi", i.TargetDPI},
		{"images.min_dpi", i.MinDPI},
		{"images.max_dpi", i.MaxDPI},
	} {
		if f.value != nil {
			if err := validateDPI(f.name, *f.value); err != nil {
				return err
			}
		}
	}
	if i.MinDPI != nil && i.MaxDPI != nil && *i.MinDPI > *i.MaxDPI {
		return NewValidationError(fmt.Sprintf("images.min_dpi (%d) must not exceed images.max_dpi (%d)", *i.MinDPI, *i.MaxDPI), nil)
	}
	if i.MaxImageDimension != nil && *i.MaxImageDimension < 1 {
		return NewValidationError(fmt.Sprintf("images.max_image_dimension must be positive, got %d", *i.MaxImageDimension), nil)
	}
	return nil
}

func (p *PagesConfig) validate() error {
	if p == nil {
		return nil
	}
	if p.PageMarkerFormat != "" && !strings.Contains(p.PageMarkerFormat, "{page}") {
		return NewValidationError(fmt.Sprintf("pages.page_marker_format must contain the {page} placeholder, got %q", p.PageMarkerFormat), nil)
	}
	return nil
}

func (t *TokenReductionConfig) validate() error {
	if t == nil {
		return nil
	}
	if t.Mode != "" {
		if err := ValidateTokenReductionMode(t.Mode); err != nil {
			return err
		}
	}
	return nil
}

func (l *LanguageDetectionConfig) validate() error {
	if l == nil {
		return nil
	}
	if l.MinConfidence != nil {
		return validateConfidence("language_detection.min_confidence", *l.MinConfidence)
	}
	return nil
}

func (k *KeywordConfig) validate() error {
	if k == nil {
		return nil
	}
	if k.Algorithm != "" {
		switch k.Algorithm {
		case KeywordAlgorithmYake, KeywordAlgorithmRake:
		default:
			return NewValidationError(fmt.Sprintf("keywords.algorithm must be yake or rake, got %q", k.Algorithm), nil)
		}
	}
	if k.MaxKeywords != nil && *k.MaxKeywords < 1 {
		return NewValidationError(fmt.Sprintf("keywords.max_keywords must be positive, got %d", *k.MaxKeywords), nil)
	}
	if k.MinScore != nil {
		if err := validateConfidence("keywords.min_score", *k.MinScore); err != nil {
			return err
		}
	}
	if k.NgramRange != nil {
		lo, hi := k.NgramRange[0], k.NgramRange[1]
		if lo < 1 || hi < lo {
			return NewValidationError(fmt.Sprintf("keywords.ngram_range must satisfy 1 <= low <= high, got [%d, %d]", lo, hi), nil)
		}
	}
	if k.Language != nil {
		if err := ValidateLanguageCode(*k.Language); err != nil {
			return err
		}
	}
	if k.Rake != nil {
		if k.Rake.MinWordLength != nil && *k.Rake.MinWordLength < 1 {
			return NewValidationError(fmt.Sprintf("keywords.rake_params.min_word_length must be positive, got %d", *k.Rake.MinWordLength), nil)
		}
		if k.Rake.MaxWordsPerPhrase != nil && *k.Rake.MaxWordsPerPhrase < 1 {
			return NewValidationError(fmt.Sprintf("keywords.rake_params.max_words_per_phrase must be positive, got %d", *k.Rake.MaxWordsPerPhrase), nil)
		}
	}
	if k.Yake != nil && k.Yake.WindowSize != nil && *k.Yake.WindowSize < 1 {
		return NewValidationError(fmt.Sprintf("keywords.yake_params.window_size must be positive, got %d", *k.Yake.WindowSize), nil)
	}
	return nil
}

func (h *HTMLConversionOptions) validate() error {
	if h == nil {
		return nil
	}
	if h.HeadingStyle != "" {
		switch h.HeadingStyle {
		case "atx", "setext", "underlined":
		default:
			return NewValidationError(fmt.Sprintf("html_options.heading_style must be atx, setext, or underlined, got %q", h.HeadingStyle), nil)
		}
	}
	if h.WrapWidth != nil && *h.WrapWidth < 1 {
		return NewValidationError(fmt.Sprintf("html_options.wrap_width must be positive, got %d", *h.WrapWidth), nil)
	}
	return nil
}

func validateConfidence(field string, v float64) error {
	if v < 0.0 || v > 1.0 {
		return NewValidationError(fmt.Sprintf("%s must be in [0.0, 1.0], got %g", field, v), nil)
	}
	return nil
}

func validateDPI(field string, v int) error {
	if v < 1 || v > 2400 {
		return NewValidationError(fmt.Sprintf("%s must be in [1, 2400], got %d", field, v), nil)
	}
	return nil
}

// ValidateBinarizationMethod reports whether method is a supported
// binarization method (otsu, adaptive, sauvola).
func ValidateBinarizationMethod(method string) error {
	switch method {
	case "otsu", "adaptive", "sauvola":
		return nil
	}
	return NewValidationError(fmt.Sprintf("binarization_method must be otsu, adaptive, or sauvola, got %q", method), nil)
}

// ValidateTokenReductionMode reports whether mode is a supported token
// reduction mode.
func ValidateTokenReductionMode(mode string) error {
	switch mode {
	case TokenReductionOff, TokenReductionLight, TokenReductionModerate, TokenReductionAggressive:
		return nil
	}
	return NewValidationError(fmt.Sprintf("token_reduction.mode must be off, light, moderate, or aggressive, got %q", mode), nil)
}

// ValidateOCRBackend accepts the built-in backend names plus any backend
// currently present in the OCR registry.
func ValidateOCRBackend(backend string) error {
	switch backend {
	case "tesseract", "easyocr", "paddleocr":
		return nil
	}
	for _, name := range ListOCRBackends() {
		if name == backend {
			return nil
		}
	}
	return NewValidationError(fmt.Sprintf("ocr.backend %q is not a built-in backend and is not registered", backend), nil)
}

// ValidateLanguageCode accepts ISO 639-1/639-3 codes and Tesseract-style
// multi-language specs joined with '+' (for example "eng+deu").
func ValidateLanguageCode(code string) error {
	if strings.TrimSpace(code) == "" {
		return NewValidationError("language code must not be empty", nil)
	}
	for _, part := range strings.Split(code, "+") {
		if !isLanguagePart(part) {
			return NewValidationError(fmt.Sprintf("invalid language code %q", code), nil)
		}
	}
	return nil
}

func isLanguagePart(part string) bool {
	if len(part) < 2 {
		return false
	}
	if _, err := language.Parse(part); err == nil {
		return true
	}
	// Tesseract traineddata names such as "osd" or script-specific packs
	// ("script/Latin") are not BCP-47 but are still valid selectors.
	for _, r := range part {
		if !(r >= 'a' && r <= 'z') && !(r >= 'A' && r <= 'Z') && r != '_' && r != '/' {
			return false
		}
	}
	return len(part) <= 32
}
