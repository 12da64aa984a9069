package kreuzberg

import (
	"context"
	"sort"
	"sync"
)

// ProcessingStage orders post-processor execution. All processors within a
// stage run in registration order.
type ProcessingStage string

const (
	StageEarly  ProcessingStage = "early"
	StageMiddle ProcessingStage = "middle"
	StageLate   ProcessingStage = "late"
)

// OCRBackend recognizes text in an encoded image. ProcessImage receives the
// image bytes by borrowed reference for the duration of the call; the
// returned text is copied into the result before the pipeline continues.
type OCRBackend interface {
	Name() string
	ProcessImage(ctx context.Context, image []byte, cfg *OCRConfig) (string, error)
}

// PostProcessor transforms an extraction result in place during its stage.
type PostProcessor interface {
	Name() string
	Stage() ProcessingStage
	Process(ctx context.Context, result *ExtractionResult, cfg *ExtractionConfig) error
}

// Validator inspects a finished result and rejects it by returning an
// error. Validators run in ascending Priority order: a lower priority
// number runs first.
type Validator interface {
	Name() string
	Priority() int
	Validate(ctx context.Context, result *ExtractionResult) error
}

// DocumentExtractor handles extraction for additional MIME types. Registered
// extractors take precedence over the built-in ones, in registration order.
type DocumentExtractor interface {
	Name() string
	Supports(mimeType string) bool
	Extract(ctx context.Context, data []byte, mimeType string, cfg *ExtractionConfig) (*ExtractionResult, error)
}

// registry is a named-slot table preserving registration order. Registering
// an existing name replaces the entry in place (last write wins) without
// changing its position.
type registry[T any] struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]T
}

func newRegistry[T any]() *registry[T] {
	return &registry[T]{entries: map[string]T{}}
}

func (r *registry[T]) register(name string, entry T) error {
	if name == "" {
		return NewValidationError("plugin name must not be empty", nil)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[name]; !exists {
		r.order = append(r.order, name)
	}
	r.entries[name] = entry
	return nil
}

// unregister removes name; missing names are a no-op.
func (r *registry[T]) unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[name]; !exists {
		return
	}
	delete(r.entries, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

func (r *registry[T]) list() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

func (r *registry[T]) get(name string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[name]
	return entry, ok
}

// snapshot returns the entries in registration order. In-flight extractions
// hold a snapshot, so concurrent registry mutation never affects them.
func (r *registry[T]) snapshot() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]T, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entries[name])
	}
	return out
}

func (r *registry[T]) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = nil
	r.entries = map[string]T{}
}

// The four process-wide registries. Every binding and the ffi shim operate
// on these same instances.
var (
	ocrBackends    = newRegistry[OCRBackend]()
	postProcessors = newRegistry[PostProcessor]()
	validators     = newRegistry[Validator]()
	docExtractors  = newRegistry[DocumentExtractor]()
)

// RegisterOCRBackend adds backend under its name, replacing any previous
// registration with the same name.
func RegisterOCRBackend(backend OCRBackend) error {
	if backend == nil {
		return NewValidationError("ocr backend must not be nil", nil)
	}
	return ocrBackends.register(backend.Name(), backend)
}

// UnregisterOCRBackend removes a backend; unknown names are a no-op.
func UnregisterOCRBackend(name string) { ocrBackends.unregister(name) }

// ListOCRBackends returns registered backend names in registration order.
func ListOCRBackends() []string { return ocrBackends.list() }

// ClearOCRBackends removes all registered OCR backends.
func ClearOCRBackends() { ocrBackends.clear() }

// LookupOCRBackend returns the backend registered under name.
func LookupOCRBackend(name string) (OCRBackend, bool) { return ocrBackends.get(name) }

// RegisterPostProcessor adds p under its name (last write wins).
func RegisterPostProcessor(p PostProcessor) error {
	if p == nil {
		return NewValidationError("post processor must not be nil", nil)
	}
	return postProcessors.register(p.Name(), p)
}

// UnregisterPostProcessor removes a post-processor; unknown names are a no-op.
func UnregisterPostProcessor(name string) { postProcessors.unregister(name) }

// ListPostProcessors returns registered post-processor names in registration
// order.
func ListPostProcessors() []string { return postProcessors.list() }

// ClearPostProcessors removes all registered post-processors.
func ClearPostProcessors() { postProcessors.clear() }

// PostProcessorsByStage returns a snapshot of post-processors for one stage,
// in registration order.
func PostProcessorsByStage(stage ProcessingStage) []PostProcessor {
	all := postProcessors.snapshot()
	out := make([]PostProcessor, 0, len(all))
	for _, p := range all {
		if p.Stage() == stage {
			out = append(out, p)
		}
	}
	return out
}

// RegisterValidator adds v under its name (last write wins).
func RegisterValidator(v Validator) error {
	if v == nil {
		return NewValidationError("validator must not be nil", nil)
	}
	return validators.register(v.Name(), v)
}

// UnregisterValidator removes a validator; unknown names are a no-op.
func UnregisterValidator(name string) { validators.unregister(name) }

// ListValidators returns registered validator names in registration order.
func ListValidators() []string { return validators.list() }

// ClearValidators removes all registered validators.
func ClearValidators() { validators.clear() }

// ValidatorsByPriority returns a snapshot of validators sorted by ascending
// priority; ties keep registration order.
func ValidatorsByPriority() []Validator {
	out := validators.snapshot()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority() < out[j].Priority() })
	return out
}

// RegisterDocumentExtractor adds e under its name (last write wins).
func RegisterDocumentExtractor(e DocumentExtractor) error {
	if e == nil {
		return NewValidationError("document extractor must not be nil", nil)
	}
	return docExtractors.register(e.Name(), e)
}

// UnregisterDocumentExtractor removes an extractor; unknown names are a
// no-op.
func UnregisterDocumentExtractor(name string) { docExtractors.unregister(name) }

// ListDocumentExtractors returns registered extractor names in registration
// order.
func ListDocumentExtractors() []string { return docExtractors.list() }

// ClearDocumentExtractors removes all registered document extractors.
func ClearDocumentExtractors() { docExtractors.clear() }

// DocumentExtractorSnapshot returns registered extractors in registration
// order.
func DocumentExtractorSnapshot() []DocumentExtractor { return docExtractors.snapshot() }
