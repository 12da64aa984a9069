package extract

import (
	"testing"

	kreuzberg "github.com/kreuzberg-dev/kreuzberg-go"
)

const (
	englishSample = "The report was written for the board and it is based on the data that the team collected in the field."
	germanSample  = "Der Bericht wurde für die Abteilung geschrieben und ist mit den Daten erstellt, die das Team nicht ohne Aufwand gesammelt hat."
)

func TestDetectLanguagesEnglish(t *testing.T) {
	got := detectLanguages(englishSample, nil)
	if len(got) != 1 || got[0] != "en" {
		t.Errorf("got %v, want [en]", got)
	}
}

func TestDetectLanguagesGerman(t *testing.T) {
	got := detectLanguages(germanSample, nil)
	if len(got) != 1 || got[0] != "de" {
		t.Errorf("got %v, want [de]", got)
	}
}

func TestDetectLanguagesMultiple(t *testing.T) {
	multi := true
	low := 0.05
	cfg := &kreuzberg.LanguageDetectionConfig{DetectMultiple: &multi, MinConfidence: &low}
	got := detectLanguages(englishSample+" "+germanSample, cfg)
	seen := map[string]bool{}
	for _, lang := range got {
		seen[lang] = true
	}
	if !seen["en"] || !seen["de"] {
		t.Errorf("got %v, want both en and de", got)
	}
}

func TestDetectLanguagesByScript(t *testing.T) {
	tests := []struct {
		lang    string
		content string
	}{
		{"ja", "これは日本語のテキストです。ひらがなとカタカナが含まれています。"},
		{"ru", "Это текст на русском языке для проверки определения."},
		{"zh", "这是一段用于测试语言检测的中文文本内容。"},
		{"ko", "이것은 언어 감지를 테스트하기 위한 한국어 텍스트입니다."},
	}
	for _, tt := range tests {
		got := detectLanguages(tt.content, nil)
		if len(got) == 0 || got[0] != tt.lang {
			t.Errorf("%s: got %v", tt.lang, got)
		}
	}
}

func TestDetectLanguagesEmptyAndUnknown(t *testing.T) {
	if got := detectLanguages("", nil); got != nil {
		t.Errorf("empty content: %v", got)
	}
	if got := detectLanguages("zzz qqq xxx www", nil); len(got) != 0 {
		t.Errorf("gibberish detected as %v", got)
	}
}

func TestDetectLanguagesMinConfidenceFilters(t *testing.T) {
	high := 0.99
	cfg := &kreuzberg.LanguageDetectionConfig{MinConfidence: &high}
	// A faint stopword signal cannot clear an almost-certain threshold.
	if got := detectLanguages("the protocol buffers compiler emits descriptors", cfg); len(got) != 0 {
		t.Errorf("got %v above 0.99 confidence", got)
	}
}
