package extract

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	kreuzberg "github.com/kreuzberg-dev/kreuzberg-go"
	"github.com/kreuzberg-dev/kreuzberg-go/internal/cache"
	"github.com/kreuzberg-dev/kreuzberg-go/observer"
)

var (
	cacheOnce sync.Once
	cacheDB   *cache.Cache
)

// resultCache lazily opens the shared on-disk result cache. A cache that
// fails to open degrades to uncached extraction rather than failing the
// call.
func resultCache() *cache.Cache {
	cacheOnce.Do(func() {
		dir, err := os.UserCacheDir()
		if err != nil {
			return
		}
		c, err := cache.Open(dir + string(os.PathSeparator) + "kreuzberg" + string(os.PathSeparator) + "results.db")
		if err != nil {
			slog.Warn("result cache unavailable, continuing uncached", "error", err)
			return
		}
		cacheDB = c
	})
	return cacheDB
}

// extractWithCache runs parsing through the result cache when enabled, then
// always applies the plugin and enrichment stages. Only the parsing step is
// cached: post-processors and validators run on every call so that a newly
// registered plugin is never masked by a stale entry.
func extractWithCache(ctx context.Context, data []byte, mimeType string, cfg *kreuzberg.ExtractionConfig, path string, info os.FileInfo) (*kreuzberg.ExtractionResult, error) {
	useCache := cfg != nil && cfg.UseCache != nil && *cfg.UseCache
	var key string
	if useCache {
		key = cacheKey(data, mimeType, cfg, path, info)
	}

	var result *kreuzberg.ExtractionResult
	if useCache && path != "" {
		if c := resultCache(); c != nil {
			if payload, ok := c.Get(ctx, key); ok {
				var cached kreuzberg.ExtractionResult
				if err := json.Unmarshal(payload, &cached); err == nil {
					result = &cached
					observer.Default().RecordCacheHit(ctx, mimeType)
				}
			}
		}
	}

	if result == nil {
		parsed, err := parseDocument(ctx, data, mimeType, cfg)
		if err != nil {
			return nil, err
		}
		result = parsed
		if useCache && path != "" {
			if c := resultCache(); c != nil {
				if payload, err := json.Marshal(result); err == nil {
					c.Put(ctx, key, payload)
				}
			}
		}
	}

	if err := enrich(ctx, result, cfg); err != nil {
		return nil, err
	}
	result.Success = true
	return result, nil
}

// cacheKey fingerprints a document plus the parts of the config that affect
// parsing. File-backed documents key on path, size and mtime so the content
// hash is skipped for the common re-extraction case.
func cacheKey(data []byte, mimeType string, cfg *kreuzberg.ExtractionConfig, path string, info os.FileInfo) string {
	h := sha256.New()
	fmt.Fprintf(h, "v%s|%s|", kreuzberg.Version(), mimeType)
	if path != "" && info != nil {
		fmt.Fprintf(h, "%s|%d|%d|", path, info.Size(), info.ModTime().UnixNano())
	} else {
		h.Write(data)
	}
	if cfg != nil {
		if cfgJSON, err := json.Marshal(cfg); err == nil {
			h.Write(cfgJSON)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// parseDocument dispatches to a registered extractor, or a built-in one,
// honoring force_ocr for image inputs.
func parseDocument(ctx context.Context, data []byte, mimeType string, cfg *kreuzberg.ExtractionConfig) (*kreuzberg.ExtractionResult, error) {
	if cfg != nil && cfg.ForceOCR != nil && *cfg.ForceOCR && strings.HasPrefix(mimeType, "image/") {
		return ocrImage(ctx, data, mimeType, cfg)
	}

	// Registered extractors take precedence over built-ins, most recent
	// registration first.
	custom := kreuzberg.DocumentExtractorSnapshot()
	for i := len(custom) - 1; i >= 0; i-- {
		if custom[i].Supports(mimeType) {
			res, err := extractSafely(ctx, custom[i], data, mimeType, cfg)
			if err != nil {
				return nil, wrapExtractorError(custom[i].Name(), err)
			}
			if res.MimeType == "" {
				res.MimeType = mimeType
			}
			return res, nil
		}
	}

	ex := builtinExtractor(mimeType)
	if ex == nil {
		return nil, kreuzberg.NewUnsupportedFormatError(mimeType, nil)
	}
	return ex(ctx, data, mimeType, cfg)
}

// wrapExtractorError keeps typed kreuzberg errors intact and tags anything
// else as a plugin failure.
func wrapExtractorError(name string, err error) error {
	var ke kreuzberg.Error
	if errors.As(err, &ke) {
		return err
	}
	return kreuzberg.NewPluginError(name, err.Error(), err)
}

// recoverPlugin converts a panic escaping a plugin into a *PluginError
// naming it, so a misbehaving plugin never loses its identity on the way
// out.
func recoverPlugin(name string, err *error) {
	if r := recover(); r != nil {
		*err = kreuzberg.NewPluginError(name, fmt.Sprintf("panic: %v", r), nil)
	}
}

func processSafely(ctx context.Context, pp kreuzberg.PostProcessor, result *kreuzberg.ExtractionResult, cfg *kreuzberg.ExtractionConfig) (err error) {
	defer recoverPlugin(pp.Name(), &err)
	return pp.Process(ctx, result, cfg)
}

func validateSafely(ctx context.Context, v kreuzberg.Validator, result *kreuzberg.ExtractionResult) (err error) {
	defer recoverPlugin(v.Name(), &err)
	return v.Validate(ctx, result)
}

func extractSafely(ctx context.Context, ex kreuzberg.DocumentExtractor, data []byte, mimeType string, cfg *kreuzberg.ExtractionConfig) (res *kreuzberg.ExtractionResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = kreuzberg.NewPluginError(ex.Name(), fmt.Sprintf("panic: %v", r), nil)
		}
	}()
	return ex.Extract(ctx, data, mimeType, cfg)
}

func ocrSafely(ctx context.Context, backend kreuzberg.OCRBackend, data []byte, ocrCfg *kreuzberg.OCRConfig) (text string, err error) {
	defer recoverPlugin(backend.Name(), &err)
	return backend.ProcessImage(ctx, data, ocrCfg)
}

// enrich applies post-processors, validators and the enrichment stages
// (chunking, language detection, keywords, token reduction, quality) in
// pipeline order.
func enrich(ctx context.Context, result *kreuzberg.ExtractionResult, cfg *kreuzberg.ExtractionConfig) error {
	if err := runPostProcessors(ctx, result, cfg); err != nil {
		return err
	}
	if err := runValidators(ctx, result); err != nil {
		return err
	}

	if cfg == nil {
		return nil
	}
	if cfg.Chunking != nil && cfg.Chunking.Enabled != nil && *cfg.Chunking.Enabled {
		result.Chunks = chunkText(result.Content, cfg.Chunking)
	}
	if cfg.LanguageDetection != nil && cfg.LanguageDetection.Enabled != nil && *cfg.LanguageDetection.Enabled {
		result.DetectedLanguages = detectLanguages(result.Content, cfg.LanguageDetection)
	}
	if cfg.Keywords != nil {
		result.Keywords = extractKeywords(result.Content, cfg.Keywords)
	}
	if cfg.TokenReduction != nil && cfg.TokenReduction.Mode != "" && cfg.TokenReduction.Mode != kreuzberg.TokenReductionOff {
		result.Content = reduceTokens(result.Content, cfg.TokenReduction)
	}
	if cfg.EnableQualityProcessing != nil && *cfg.EnableQualityProcessing {
		score := qualityScore(result.Content)
		result.QualityScore = &score
	}
	return nil
}

// runPostProcessors executes registered post-processors by stage
// (early, middle, late), in registration order within a stage. An
// enabled_processors list is authoritative: when present, only named
// processors run; otherwise disabled_processors is subtractive.
func runPostProcessors(ctx context.Context, result *kreuzberg.ExtractionResult, cfg *kreuzberg.ExtractionConfig) error {
	var ppCfg *kreuzberg.PostProcessorConfig
	if cfg != nil {
		ppCfg = cfg.Postprocessor
	}
	if ppCfg != nil && ppCfg.Enabled != nil && !*ppCfg.Enabled {
		return nil
	}
	for _, stage := range []kreuzberg.ProcessingStage{kreuzberg.StageEarly, kreuzberg.StageMiddle, kreuzberg.StageLate} {
		for _, pp := range kreuzberg.PostProcessorsByStage(stage) {
			if !processorEnabled(pp.Name(), ppCfg) {
				continue
			}
			if err := processSafely(ctx, pp, result, cfg); err != nil {
				result.Warnings = append(result.Warnings, fmt.Sprintf("post-processor %s: %v", pp.Name(), err))
			}
		}
	}
	return nil
}

func processorEnabled(name string, ppCfg *kreuzberg.PostProcessorConfig) bool {
	if ppCfg == nil {
		return true
	}
	if len(ppCfg.EnabledProcessors) > 0 {
		for _, n := range ppCfg.EnabledProcessors {
			if n == name {
				return true
			}
		}
		return false
	}
	for _, n := range ppCfg.DisabledProcessors {
		if n == name {
			return false
		}
	}
	return true
}

// runValidators runs registered validators in ascending priority order. The
// first failure aborts extraction with that validator's error.
func runValidators(ctx context.Context, result *kreuzberg.ExtractionResult) error {
	for _, v := range kreuzberg.ValidatorsByPriority() {
		if err := validateSafely(ctx, v, result); err != nil {
			var ke kreuzberg.Error
			if errors.As(err, &ke) {
				return err
			}
			return kreuzberg.NewValidationError(fmt.Sprintf("validator %s rejected result: %v", v.Name(), err), err)
		}
	}
	return nil
}

// ocrImage routes an image through the configured OCR backend.
func ocrImage(ctx context.Context, data []byte, mimeType string, cfg *kreuzberg.ExtractionConfig) (*kreuzberg.ExtractionResult, error) {
	backendName := "tesseract"
	var ocrCfg *kreuzberg.OCRConfig
	if cfg != nil && cfg.OCR != nil {
		ocrCfg = cfg.OCR
		if ocrCfg.Backend != "" {
			backendName = ocrCfg.Backend
		}
	}
	backend, ok := kreuzberg.LookupOCRBackend(backendName)
	if !ok {
		return nil, kreuzberg.NewMissingDependencyError(backendName,
			fmt.Sprintf("OCR backend %q is not registered", backendName), nil)
	}
	observer.Default().RecordOCRRequest(ctx, backendName)
	text, err := ocrSafely(ctx, backend, data, ocrCfg)
	if err != nil {
		var ke kreuzberg.Error
		if errors.As(err, &ke) {
			return nil, err
		}
		return nil, kreuzberg.NewOCRError(fmt.Sprintf("backend %s: %v", backendName, err), err)
	}
	om := &kreuzberg.OCRMetadata{Backend: backendName}
	meta := kreuzberg.Metadata{Format: kreuzberg.FormatMetadata{Type: kreuzberg.FormatOCR, OCR: om}}
	if ocrCfg != nil {
		if ocrCfg.Language != nil {
			meta.Language = ocrCfg.Language
			om.Language = *ocrCfg.Language
		}
		if ocrCfg.Tesseract != nil && ocrCfg.Tesseract.PSM != nil {
			om.PSM = ocrCfg.Tesseract.PSM
		}
	}
	return &kreuzberg.ExtractionResult{
		Content:  text,
		MimeType: mimeType,
		Metadata: meta,
	}, nil
}
