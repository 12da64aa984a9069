package main

import (
	"runtime"
	"testing"

	kreuzberg "github.com/kreuzberg-dev/kreuzberg-go"
)

func TestLastErrorIsThreadLocal(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	setLastError(kreuzberg.NewValidationError("bad input", nil))

	done := make(chan struct{})
	go func() {
		defer close(done)
		// A locked goroutine cannot share the main test thread, so it
		// must see a clean slot.
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		if le, ok := getLastError(); ok {
			t.Errorf("other thread sees error %q", le.message)
		}
		setLastError(kreuzberg.NewIOError("other thread failure", nil))
	}()
	<-done

	le, ok := getLastError()
	if !ok {
		t.Fatal("own error slot lost")
	}
	if le.message != "bad input" || le.code != kreuzberg.CodeValidation {
		t.Errorf("slot = (%q, %d), want (%q, %d)", le.message, le.code, "bad input", kreuzberg.CodeValidation)
	}
	if got := int32(kreuzberg_last_error_code()); got != kreuzberg.CodeValidation {
		t.Errorf("last_error_code = %d, want %d", got, kreuzberg.CodeValidation)
	}
}

func TestLastErrorClearedOnSuccess(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	setLastError(kreuzberg.NewIOError("transient", nil))
	setLastError(nil)
	if le, ok := getLastError(); ok {
		t.Errorf("slot not cleared, still holds %q", le.message)
	}
	if got := int32(kreuzberg_last_error_code()); got != kreuzberg.CodeSuccess {
		t.Errorf("last_error_code = %d, want %d", got, kreuzberg.CodeSuccess)
	}
}

func TestCJSONCollapsesEmptyValuesToNull(t *testing.T) {
	var nilScore *float64
	for name, v := range map[string]any{
		"nil":          nil,
		"nil pointer":  nilScore,
		"nil slice":    []string(nil),
		"empty slice":  []string{},
		"empty object": map[string]string{},
	} {
		if got := cJSON(v); got != nil {
			kreuzberg_free_string(got)
			t.Errorf("cJSON(%s) != NULL", name)
		}
	}

	got := cJSON([]string{"en"})
	if got == nil {
		t.Fatal("cJSON on a populated slice returned NULL")
	}
	kreuzberg_free_string(got)
}

func TestBuildResultOptionalFieldsNullWhenEmpty(t *testing.T) {
	res := buildResult(&kreuzberg.ExtractionResult{
		Content:  "hello",
		MimeType: "text/plain",
		Success:  true,
	})
	defer kreuzberg_free_result(res)

	if res.content == nil || res.mime_type == nil || res.metadata_json == nil {
		t.Fatal("mandatory fields must never be NULL")
	}
	if res.success != 1 {
		t.Errorf("success = %d, want 1", res.success)
	}
	for name, field := range map[string]bool{
		"tables_json":             res.tables_json == nil,
		"chunks_json":             res.chunks_json == nil,
		"images_json":             res.images_json == nil,
		"keywords_json":           res.keywords_json == nil,
		"detected_languages_json": res.detected_languages_json == nil,
		"pages_json":              res.pages_json == nil,
		"quality_score_json":      res.quality_score_json == nil,
		"warnings_json":           res.warnings_json == nil,
		"error_json":              res.error_json == nil,
	} {
		if !field {
			t.Errorf("%s != NULL on an empty result", name)
		}
	}
}

func TestBuildResultPopulatedFieldsPresent(t *testing.T) {
	score := 0.9
	res := buildResult(&kreuzberg.ExtractionResult{
		Content:           "a,b",
		MimeType:          "text/csv",
		Tables:            []kreuzberg.Table{{Cells: [][]string{{"a", "b"}}}},
		DetectedLanguages: []string{"en"},
		Warnings:          []string{"ragged row"},
		QualityScore:      &score,
		Success:           true,
	})
	defer kreuzberg_free_result(res)

	if res.tables_json == nil || res.detected_languages_json == nil ||
		res.warnings_json == nil || res.quality_score_json == nil {
		t.Error("populated fields must not be NULL")
	}
	if res.chunks_json != nil || res.error_json != nil {
		t.Error("unpopulated fields must stay NULL")
	}
}

func TestFreeFunctionsAcceptNull(t *testing.T) {
	kreuzberg_free_string(nil)
	kreuzberg_free_result(nil)
	kreuzberg_free_batch_result(nil)
}
