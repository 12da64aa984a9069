package kreuzberg

import (
	"strings"
	"testing"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }

func TestValidateNilConfig(t *testing.T) {
	var cfg *ExtractionConfig
	if err := cfg.Validate(); err != nil {
		t.Fatalf("nil config must validate: %v", err)
	}
}

func TestValidateRejectsWithoutClamping(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ExtractionConfig
		wantMsg string
	}{
		{
			name:    "psm out of range",
			cfg:     ExtractionConfig{OCR: &OCRConfig{Tesseract: &TesseractConfig{PSM: intPtr(14)}}},
			wantMsg: "psm must be in [0, 13]",
		},
		{
			name:    "psm negative",
			cfg:     ExtractionConfig{OCR: &OCRConfig{Tesseract: &TesseractConfig{PSM: intPtr(-1)}}},
			wantMsg: "psm must be in [0, 13]",
		},
		{
			name:    "oem out of range",
			cfg:     ExtractionConfig{OCR: &OCRConfig{Tesseract: &TesseractConfig{OEM: intPtr(4)}}},
			wantMsg: "oem must be in [0, 3]",
		},
		{
			name:    "confidence above one",
			cfg:     ExtractionConfig{OCR: &OCRConfig{Tesseract: &TesseractConfig{MinConfidence: floatPtr(1.5)}}},
			wantMsg: "must be in [0.0, 1.0]",
		},
		{
			name: "dpi out of range",
			cfg: ExtractionConfig{OCR: &OCRConfig{Tesseract: &TesseractConfig{
				Preprocessing: &ImagePreprocessingConfig{TargetDPI: intPtr(5000)},
			}}},
			wantMsg: "must be in [1, 2400]",
		},
		{
			name: "unknown binarization method",
			cfg: ExtractionConfig{OCR: &OCRConfig{Tesseract: &TesseractConfig{
				Preprocessing: &ImagePreprocessingConfig{BinarizationMethod: "threshold"},
			}}},
			wantMsg: "binarization_method must be",
		},
		{
			name:    "unknown ocr backend",
			cfg:     ExtractionConfig{OCR: &OCRConfig{Backend: "mystery"}},
			wantMsg: `"mystery" is not a built-in backend`,
		},
		{
			name:    "bad language code",
			cfg:     ExtractionConfig{OCR: &OCRConfig{Language: strPtr("e")}},
			wantMsg: "invalid language code",
		},
		{
			name:    "zero max chars",
			cfg:     ExtractionConfig{Chunking: &ChunkingConfig{MaxChars: intPtr(0)}},
			wantMsg: "max_chars must be positive",
		},
		{
			name:    "overlap not below max chars",
			cfg:     ExtractionConfig{Chunking: &ChunkingConfig{MaxChars: intPtr(100), MaxOverlap: intPtr(100)}},
			wantMsg: "must be smaller than chunking.max_chars",
		},
		{
			name:    "bad token reduction mode",
			cfg:     ExtractionConfig{TokenReduction: &TokenReductionConfig{Mode: "extreme"}},
			wantMsg: "token_reduction.mode must be",
		},
		{
			name:    "keyword algorithm typo",
			cfg:     ExtractionConfig{Keywords: &KeywordConfig{Algorithm: "yaek"}},
			wantMsg: "keywords.algorithm must be yake or rake",
		},
		{
			name:    "inverted ngram range",
			cfg:     ExtractionConfig{Keywords: &KeywordConfig{NgramRange: &[2]int{3, 1}}},
			wantMsg: "ngram_range must satisfy",
		},
		{
			name:    "min dpi above max dpi",
			cfg:     ExtractionConfig{Images: &ImageExtractionConfig{MinDPI: intPtr(600), MaxDPI: intPtr(300)}},
			wantMsg: "must not exceed images.max_dpi",
		},
		{
			name:    "page marker missing placeholder",
			cfg:     ExtractionConfig{Pages: &PagesConfig{PageMarkerFormat: "Page %d"}},
			wantMsg: "{page} placeholder",
		},
		{
			name:    "negative concurrency",
			cfg:     ExtractionConfig{MaxConcurrentExtractions: intPtr(-2)},
			wantMsg: "max_concurrent_extractions must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if CodeOf(err) != CodeValidation {
				t.Errorf("code = %d, want %d", CodeOf(err), CodeValidation)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("message %q does not mention %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestValidateAcceptsBoundaryValues(t *testing.T) {
	cfg := ExtractionConfig{
		OCR: &OCRConfig{
			Backend:  "tesseract",
			Language: strPtr("eng+deu"),
			Tesseract: &TesseractConfig{
				PSM:           intPtr(0),
				OEM:           intPtr(3),
				MinConfidence: floatPtr(1.0),
				Preprocessing: &ImagePreprocessingConfig{
					TargetDPI:          intPtr(2400),
					BinarizationMethod: "sauvola",
				},
			},
		},
		Chunking:       &ChunkingConfig{MaxChars: intPtr(100), MaxOverlap: intPtr(99)},
		TokenReduction: &TokenReductionConfig{Mode: TokenReductionAggressive},
		Keywords:       &KeywordConfig{Algorithm: KeywordAlgorithmYake, NgramRange: &[2]int{1, 1}},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("boundary values rejected: %v", err)
	}
}

func TestValidateOCRBackendSeesRegisteredPlugins(t *testing.T) {
	t.Cleanup(ClearOCRBackends)
	ClearOCRBackends()

	if err := ValidateOCRBackend("homegrown"); err == nil {
		t.Fatal("unregistered backend accepted")
	}
	if err := RegisterOCRBackend(&fakeOCR{name: "homegrown"}); err != nil {
		t.Fatal(err)
	}
	if err := ValidateOCRBackend("homegrown"); err != nil {
		t.Fatalf("registered backend rejected: %v", err)
	}
}

func TestValidateLanguageCode(t *testing.T) {
	for _, code := range []string{"en", "eng", "de-DE", "eng+deu", "osd", "script/Latin"} {
		if err := ValidateLanguageCode(code); err != nil {
			t.Errorf("%q rejected: %v", code, err)
		}
	}
	for _, code := range []string{"", "  ", "e", "12", "en+", "e!"} {
		if err := ValidateLanguageCode(code); err == nil {
			t.Errorf("%q accepted", code)
		}
	}
}
