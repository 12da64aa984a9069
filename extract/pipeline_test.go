package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	kreuzberg "github.com/kreuzberg-dev/kreuzberg-go"
)

type recordingProcessor struct {
	name  string
	stage kreuzberg.ProcessingStage
	log   *[]string
	fail  error
}

func (p *recordingProcessor) Name() string                     { return p.name }
func (p *recordingProcessor) Stage() kreuzberg.ProcessingStage { return p.stage }
func (p *recordingProcessor) Process(_ context.Context, result *kreuzberg.ExtractionResult, _ *kreuzberg.ExtractionConfig) error {
	*p.log = append(*p.log, p.name)
	if p.fail != nil {
		return p.fail
	}
	result.Content += " [" + p.name + "]"
	return nil
}

type rejectingValidator struct {
	name     string
	priority int
	err      error
}

func (v *rejectingValidator) Name() string  { return v.name }
func (v *rejectingValidator) Priority() int { return v.priority }
func (v *rejectingValidator) Validate(context.Context, *kreuzberg.ExtractionResult) error {
	return v.err
}

type stubExtractor struct {
	name    string
	mime    string
	content string
	err     error
}

func (e *stubExtractor) Name() string              { return e.name }
func (e *stubExtractor) Supports(mime string) bool { return mime == e.mime }
func (e *stubExtractor) Extract(context.Context, []byte, string, *kreuzberg.ExtractionConfig) (*kreuzberg.ExtractionResult, error) {
	if e.err != nil {
		return nil, e.err
	}
	return &kreuzberg.ExtractionResult{Content: e.content}, nil
}

func extractText(t *testing.T, cfg *kreuzberg.ExtractionConfig) *kreuzberg.ExtractionResult {
	t.Helper()
	result, err := Bytes(context.Background(), []byte("body"), kreuzberg.MimePlainText, cfg)
	if err != nil {
		t.Fatal(err)
	}
	return result
}

func TestPostProcessorsRunByStageThenRegistrationOrder(t *testing.T) {
	t.Cleanup(kreuzberg.ClearPostProcessors)
	kreuzberg.ClearPostProcessors()

	var log []string
	for _, p := range []*recordingProcessor{
		{name: "late", stage: kreuzberg.StageLate, log: &log},
		{name: "early-b", stage: kreuzberg.StageEarly, log: &log},
		{name: "middle", stage: kreuzberg.StageMiddle, log: &log},
		{name: "early-a", stage: kreuzberg.StageEarly, log: &log},
	} {
		if err := kreuzberg.RegisterPostProcessor(p); err != nil {
			t.Fatal(err)
		}
	}

	extractText(t, nil)
	want := "early-b early-a middle late"
	if got := strings.Join(log, " "); got != want {
		t.Errorf("run order = %q, want %q", got, want)
	}
}

func TestPostProcessorErrorBecomesWarning(t *testing.T) {
	t.Cleanup(kreuzberg.ClearPostProcessors)
	kreuzberg.ClearPostProcessors()

	var log []string
	if err := kreuzberg.RegisterPostProcessor(&recordingProcessor{
		name: "flaky", stage: kreuzberg.StageEarly, log: &log, fail: errors.New("boom"),
	}); err != nil {
		t.Fatal(err)
	}

	result := extractText(t, nil)
	if !result.Success {
		t.Error("processor failure must not fail extraction")
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "flaky") {
		t.Errorf("warnings = %v", result.Warnings)
	}
}

func TestEnabledProcessorsListIsAuthoritative(t *testing.T) {
	t.Cleanup(kreuzberg.ClearPostProcessors)
	kreuzberg.ClearPostProcessors()

	var log []string
	for _, name := range []string{"keep", "skip"} {
		if err := kreuzberg.RegisterPostProcessor(&recordingProcessor{
			name: name, stage: kreuzberg.StageEarly, log: &log,
		}); err != nil {
			t.Fatal(err)
		}
	}

	cfg := &kreuzberg.ExtractionConfig{Postprocessor: &kreuzberg.PostProcessorConfig{
		EnabledProcessors:  []string{"keep"},
		DisabledProcessors: []string{"keep"}, // ignored while the enabled list is set
	}}
	extractText(t, cfg)
	if len(log) != 1 || log[0] != "keep" {
		t.Errorf("ran %v, want [keep]", log)
	}
}

func TestDisabledProcessorsAreSubtractive(t *testing.T) {
	t.Cleanup(kreuzberg.ClearPostProcessors)
	kreuzberg.ClearPostProcessors()

	var log []string
	for _, name := range []string{"one", "two"} {
		if err := kreuzberg.RegisterPostProcessor(&recordingProcessor{
			name: name, stage: kreuzberg.StageEarly, log: &log,
		}); err != nil {
			t.Fatal(err)
		}
	}

	cfg := &kreuzberg.ExtractionConfig{Postprocessor: &kreuzberg.PostProcessorConfig{
		DisabledProcessors: []string{"one"},
	}}
	extractText(t, cfg)
	if len(log) != 1 || log[0] != "two" {
		t.Errorf("ran %v, want [two]", log)
	}
}

func TestPostProcessingCanBeDisabledWholesale(t *testing.T) {
	t.Cleanup(kreuzberg.ClearPostProcessors)
	kreuzberg.ClearPostProcessors()

	var log []string
	if err := kreuzberg.RegisterPostProcessor(&recordingProcessor{
		name: "any", stage: kreuzberg.StageEarly, log: &log,
	}); err != nil {
		t.Fatal(err)
	}

	off := false
	extractText(t, &kreuzberg.ExtractionConfig{Postprocessor: &kreuzberg.PostProcessorConfig{Enabled: &off}})
	if len(log) != 0 {
		t.Errorf("processors ran while disabled: %v", log)
	}
}

func TestValidatorFailureAbortsExtraction(t *testing.T) {
	t.Cleanup(kreuzberg.ClearValidators)
	kreuzberg.ClearValidators()

	if err := kreuzberg.RegisterValidator(&rejectingValidator{
		name: "strict", err: errors.New("content too short"),
	}); err != nil {
		t.Fatal(err)
	}

	_, err := Bytes(context.Background(), []byte("body"), kreuzberg.MimePlainText, nil)
	if err == nil {
		t.Fatal("expected validator error")
	}
	if kreuzberg.CodeOf(err) != kreuzberg.CodeValidation {
		t.Errorf("code = %d", kreuzberg.CodeOf(err))
	}
	if !strings.Contains(err.Error(), "strict") {
		t.Errorf("error %q does not name the validator", err)
	}
}

func TestValidatorTypedErrorPassesThrough(t *testing.T) {
	t.Cleanup(kreuzberg.ClearValidators)
	kreuzberg.ClearValidators()

	typed := kreuzberg.NewOCRError("confidence below threshold", nil)
	if err := kreuzberg.RegisterValidator(&rejectingValidator{name: "ocr-gate", err: typed}); err != nil {
		t.Fatal(err)
	}

	_, err := Bytes(context.Background(), []byte("body"), kreuzberg.MimePlainText, nil)
	if kreuzberg.KindOf(err) != kreuzberg.ErrorKindOCR {
		t.Errorf("kind = %q, want ocr error preserved", kreuzberg.KindOf(err))
	}
}

func TestCustomExtractorOverridesBuiltin(t *testing.T) {
	t.Cleanup(kreuzberg.ClearDocumentExtractors)
	kreuzberg.ClearDocumentExtractors()

	if err := kreuzberg.RegisterDocumentExtractor(&stubExtractor{
		name: "custom-text", mime: kreuzberg.MimePlainText, content: "from plugin",
	}); err != nil {
		t.Fatal(err)
	}

	result := extractText(t, nil)
	if result.Content != "from plugin" {
		t.Errorf("content = %q", result.Content)
	}
	if result.MimeType != kreuzberg.MimePlainText {
		t.Errorf("mime not backfilled: %q", result.MimeType)
	}
}

func TestMostRecentExtractorWins(t *testing.T) {
	t.Cleanup(kreuzberg.ClearDocumentExtractors)
	kreuzberg.ClearDocumentExtractors()

	for _, e := range []*stubExtractor{
		{name: "older", mime: "application/x-ledger", content: "old"},
		{name: "newer", mime: "application/x-ledger", content: "new"},
	} {
		if err := kreuzberg.RegisterDocumentExtractor(e); err != nil {
			t.Fatal(err)
		}
	}

	result, err := Bytes(context.Background(), []byte("irrelevant"), "application/x-ledger", nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.Content != "new" {
		t.Errorf("content = %q, want the most recent registration", result.Content)
	}
}

func TestExtractorErrorIsTaggedAsPluginFailure(t *testing.T) {
	t.Cleanup(kreuzberg.ClearDocumentExtractors)
	kreuzberg.ClearDocumentExtractors()

	if err := kreuzberg.RegisterDocumentExtractor(&stubExtractor{
		name: "broken", mime: "application/x-ledger", err: errors.New("parse failed"),
	}); err != nil {
		t.Fatal(err)
	}

	_, err := Bytes(context.Background(), []byte("x"), "application/x-ledger", nil)
	if kreuzberg.KindOf(err) != kreuzberg.ErrorKindPlugin {
		t.Errorf("kind = %q, want plugin", kreuzberg.KindOf(err))
	}
}

func TestOCRBackendMissingDependency(t *testing.T) {
	t.Cleanup(kreuzberg.ClearOCRBackends)
	kreuzberg.ClearOCRBackends()

	force := true
	cfg := &kreuzberg.ExtractionConfig{ForceOCR: &force}
	// 1x1 transparent PNG header is enough to reach backend lookup.
	png := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
	_, err := Bytes(context.Background(), png, kreuzberg.MimePNG, cfg)
	if err == nil {
		t.Fatal("expected missing dependency error")
	}
	if kreuzberg.KindOf(err) != kreuzberg.ErrorKindMissingDependency {
		t.Errorf("kind = %q", kreuzberg.KindOf(err))
	}
}

func TestEnrichmentStages(t *testing.T) {
	on := true
	cfg := &kreuzberg.ExtractionConfig{
		EnableQualityProcessing: &on,
		LanguageDetection:       &kreuzberg.LanguageDetectionConfig{Enabled: &on},
		Keywords:                &kreuzberg.KeywordConfig{Algorithm: kreuzberg.KeywordAlgorithmRake},
	}
	content := "The quick brown fox jumps over the lazy dog. " +
		"The dog was not amused by the quick brown fox at all."
	result, err := Bytes(context.Background(), []byte(content), kreuzberg.MimePlainText, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.DetectedLanguages) == 0 || result.DetectedLanguages[0] != "en" {
		t.Errorf("languages = %v", result.DetectedLanguages)
	}
	if len(result.Keywords) == 0 {
		t.Error("no keywords extracted")
	}
	if result.QualityScore == nil || *result.QualityScore <= 0 || *result.QualityScore > 1 {
		t.Errorf("quality score = %v", result.QualityScore)
	}
}

type panickyProcessor struct{ name string }

func (p *panickyProcessor) Name() string                     { return p.name }
func (p *panickyProcessor) Stage() kreuzberg.ProcessingStage { return kreuzberg.StageEarly }
func (p *panickyProcessor) Process(context.Context, *kreuzberg.ExtractionResult, *kreuzberg.ExtractionConfig) error {
	panic("processor blew up")
}

type panickyValidator struct{ name string }

func (v *panickyValidator) Name() string  { return v.name }
func (v *panickyValidator) Priority() int { return 0 }
func (v *panickyValidator) Validate(context.Context, *kreuzberg.ExtractionResult) error {
	panic("validator blew up")
}

type panickyExtractor struct{ name, mime string }

func (e *panickyExtractor) Name() string              { return e.name }
func (e *panickyExtractor) Supports(mime string) bool { return mime == e.mime }
func (e *panickyExtractor) Extract(context.Context, []byte, string, *kreuzberg.ExtractionConfig) (*kreuzberg.ExtractionResult, error) {
	panic("extractor blew up")
}

type panickyOCRBackend struct{ name string }

func (b *panickyOCRBackend) Name() string { return b.name }
func (b *panickyOCRBackend) ProcessImage(context.Context, []byte, *kreuzberg.OCRConfig) (string, error) {
	panic("backend blew up")
}

func TestPostProcessorPanicBecomesNamedWarning(t *testing.T) {
	t.Cleanup(kreuzberg.ClearPostProcessors)
	kreuzberg.ClearPostProcessors()

	if err := kreuzberg.RegisterPostProcessor(&panickyProcessor{name: "explosive"}); err != nil {
		t.Fatal(err)
	}

	result := extractText(t, nil)
	if !result.Success {
		t.Error("processor panic must not fail extraction")
	}
	if len(result.Warnings) != 1 ||
		!strings.Contains(result.Warnings[0], "explosive") ||
		!strings.Contains(result.Warnings[0], "panic") {
		t.Errorf("warnings = %v", result.Warnings)
	}
}

func TestValidatorPanicSurfacesAsPluginError(t *testing.T) {
	t.Cleanup(kreuzberg.ClearValidators)
	kreuzberg.ClearValidators()

	if err := kreuzberg.RegisterValidator(&panickyValidator{name: "fragile"}); err != nil {
		t.Fatal(err)
	}

	_, err := Bytes(context.Background(), []byte("body"), kreuzberg.MimePlainText, nil)
	var pe *kreuzberg.PluginError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *PluginError", err)
	}
	if pe.PluginName != "fragile" {
		t.Errorf("plugin name = %q, want %q", pe.PluginName, "fragile")
	}
}

func TestExtractorPanicSurfacesAsPluginError(t *testing.T) {
	t.Cleanup(kreuzberg.ClearDocumentExtractors)
	kreuzberg.ClearDocumentExtractors()

	if err := kreuzberg.RegisterDocumentExtractor(&panickyExtractor{name: "crasher", mime: kreuzberg.MimePlainText}); err != nil {
		t.Fatal(err)
	}

	_, err := Bytes(context.Background(), []byte("body"), kreuzberg.MimePlainText, nil)
	var pe *kreuzberg.PluginError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *PluginError", err)
	}
	if pe.PluginName != "crasher" {
		t.Errorf("plugin name = %q, want %q", pe.PluginName, "crasher")
	}
}

func TestOCRBackendPanicSurfacesAsPluginError(t *testing.T) {
	t.Cleanup(kreuzberg.ClearOCRBackends)
	kreuzberg.ClearOCRBackends()

	if err := kreuzberg.RegisterOCRBackend(&panickyOCRBackend{name: "shaky"}); err != nil {
		t.Fatal(err)
	}

	force := true
	cfg := &kreuzberg.ExtractionConfig{
		ForceOCR: &force,
		OCR:      &kreuzberg.OCRConfig{Backend: "shaky"},
	}
	png := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
	_, err := Bytes(context.Background(), png, kreuzberg.MimePNG, cfg)
	var pe *kreuzberg.PluginError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *PluginError", err)
	}
	if pe.PluginName != "shaky" {
		t.Errorf("plugin name = %q, want %q", pe.PluginName, "shaky")
	}
}
