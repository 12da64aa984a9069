package kreuzberg

import "fmt"

// ConfigBuilder accumulates extraction options and produces an immutable
// ExtractionConfig. A builder is single-owner and single-use: Build consumes
// it and any later call on the same builder returns an error.
//
// Setters perform the range checks that are decidable at set time; cross
// field constraints (such as max_overlap < max_chars) are deferred to Build.
type ConfigBuilder struct {
	cfg      ExtractionConfig
	consumed bool
	err      error
}

// NewConfigBuilder returns a fresh builder with every field unset, so engine
// defaults apply at extraction time.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{}
}

// fail records the first setter error; later setters become no-ops so the
// original violation is what Build reports.
func (b *ConfigBuilder) fail(err error) *ConfigBuilder {
	if b.err == nil {
		b.err = err
	}
	return b
}

func (b *ConfigBuilder) ready() bool {
	return !b.consumed && b.err == nil
}

// SetUseCache enables or disables the extraction result cache.
func (b *ConfigBuilder) SetUseCache(v bool) *ConfigBuilder {
	if b.ready() {
		b.cfg.UseCache = &v
	}
	return b
}

// SetEnableQualityProcessing toggles quality scoring of extracted content.
func (b *ConfigBuilder) SetEnableQualityProcessing(v bool) *ConfigBuilder {
	if b.ready() {
		b.cfg.EnableQualityProcessing = &v
	}
	return b
}

// SetForceOCR forces OCR even for documents with an embedded text layer.
func (b *ConfigBuilder) SetForceOCR(v bool) *ConfigBuilder {
	if b.ready() {
		b.cfg.ForceOCR = &v
	}
	return b
}

// SetMaxConcurrentExtractions bounds batch parallelism. Values below one are
// rejected immediately.
func (b *ConfigBuilder) SetMaxConcurrentExtractions(n int) *ConfigBuilder {
	if !b.ready() {
		return b
	}
	if n < 1 {
		return b.fail(NewValidationError(fmt.Sprintf("max_concurrent_extractions must be positive, got %d", n), nil))
	}
	b.cfg.MaxConcurrentExtractions = &n
	return b
}

// SetOCR attaches an OCR sub-config.
func (b *ConfigBuilder) SetOCR(ocr *OCRConfig) *ConfigBuilder {
	if b.ready() {
		b.cfg.OCR = ocr
	}
	return b
}

// SetChunking attaches a chunking sub-config.
func (b *ConfigBuilder) SetChunking(c *ChunkingConfig) *ConfigBuilder {
	if b.ready() {
		b.cfg.Chunking = c
	}
	return b
}

// SetImages attaches an image extraction sub-config.
func (b *ConfigBuilder) SetImages(c *ImageExtractionConfig) *ConfigBuilder {
	if b.ready() {
		b.cfg.Images = c
	}
	return b
}

// SetPdfOptions attaches PDF-specific options.
func (b *ConfigBuilder) SetPdfOptions(c *PdfConfig) *ConfigBuilder {
	if b.ready() {
		b.cfg.PdfOptions = c
	}
	return b
}

// SetPages attaches per-page extraction options.
func (b *ConfigBuilder) SetPages(c *PagesConfig) *ConfigBuilder {
	if b.ready() {
		b.cfg.Pages = c
	}
	return b
}

// SetTokenReduction attaches a token reduction sub-config. Unknown modes are
// rejected immediately.
func (b *ConfigBuilder) SetTokenReduction(c *TokenReductionConfig) *ConfigBuilder {
	if !b.ready() {
		return b
	}
	if c != nil && c.Mode != "" {
		if err := ValidateTokenReductionMode(c.Mode); err != nil {
			return b.fail(err)
		}
	}
	b.cfg.TokenReduction = c
	return b
}

// SetLanguageDetection attaches a language detection sub-config.
func (b *ConfigBuilder) SetLanguageDetection(c *LanguageDetectionConfig) *ConfigBuilder {
	if b.ready() {
		b.cfg.LanguageDetection = c
	}
	return b
}

// SetPostprocessor attaches post-processor filtering options.
func (b *ConfigBuilder) SetPostprocessor(c *PostProcessorConfig) *ConfigBuilder {
	if b.ready() {
		b.cfg.Postprocessor = c
	}
	return b
}

// SetKeywords attaches a keyword extraction sub-config.
func (b *ConfigBuilder) SetKeywords(c *KeywordConfig) *ConfigBuilder {
	if b.ready() {
		b.cfg.Keywords = c
	}
	return b
}

// SetHTMLOptions attaches HTML conversion options.
func (b *ConfigBuilder) SetHTMLOptions(c *HTMLConversionOptions) *ConfigBuilder {
	if b.ready() {
		b.cfg.HTMLOptions = c
	}
	return b
}

// Build validates the accumulated options and returns the immutable config.
// The builder is consumed whether or not validation succeeds; reusing it
// returns an error.
func (b *ConfigBuilder) Build() (*ExtractionConfig, error) {
	if b.consumed {
		return nil, NewValidationError("config builder already consumed by Build", nil)
	}
	b.consumed = true
	if b.err != nil {
		return nil, b.err
	}
	cfg := b.cfg
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
