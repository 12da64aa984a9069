// Package kreuzberg provides the configuration, plugin, and result model for
// the Kreuzberg document extraction engine.
//
// It defines the canonical extraction configuration tree, a single-use
// ConfigBuilder with cross-field validation, a format-discriminated result
// model, kind-classified errors with stable numeric codes, MIME detection,
// and four process-wide plugin registries (OCR backends, post-processors,
// validators, document extractors).
//
// # Quick Start
//
// Build a configuration and extract a document:
//
//	cfg, err := kreuzberg.NewConfigBuilder().
//		SetUseCache(true).
//		SetChunking(&kreuzberg.ChunkingConfig{MaxChars: kreuzberg.Int(1200), MaxOverlap: kreuzberg.Int(200)}).
//		Build()
//	if err != nil {
//		log.Fatal(err)
//	}
//	result, err := extract.File(ctx, "report.pdf", cfg)
//
// Configurations can also be loaded from kreuzberg.{toml,yaml,yml,json}
// files, discovered by walking from the working directory to the filesystem
// root, or round-tripped through the canonical snake_case JSON schema with
// [FromJSON] and [ToJSON].
//
// # Plugins
//
// Callers extend the engine by registering named implementations:
//
//   - [OCRBackend] — recognizes text in images
//   - [PostProcessor] — transforms results in staged order (early, middle, late)
//   - [Validator] — rejects results, ordered by ascending priority
//   - [DocumentExtractor] — handles additional MIME types
//
// Registries are safe for concurrent use; an extraction in flight operates
// on the registry snapshot taken when it was dispatched. Registering a name
// that already exists replaces the previous entry.
//
// # Errors
//
// Every failure is a typed error implementing [Error] with an [ErrorKind]
// and a stable numeric code shared with the C ABI. Use errors.As to branch
// on categories:
//
//	var verr *kreuzberg.ValidationError
//	if errors.As(err, &verr) { ... }
//
// The extraction entry points live in the extract subpackage, the built-in
// Tesseract OCR backend in ocr/tesseract, and the C ABI shim in ffi.
package kreuzberg
