// Package tesseract provides a Tesseract-backed OCR backend.
//
// It uses otiai10/gosseract, which binds the native Tesseract library via
// CGO. This is a separate subpackage so that the native dependency is only
// pulled in by users who need OCR support. Importing it registers nothing;
// call Register (or kreuzberg.RegisterOCRBackend with New()) explicitly.
package tesseract

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/otiai10/gosseract/v2"

	kreuzberg "github.com/kreuzberg-dev/kreuzberg-go"
)

// Backend implements kreuzberg.OCRBackend using the native Tesseract
// engine.
type Backend struct{}

var _ kreuzberg.OCRBackend = (*Backend)(nil)

// New creates a Tesseract backend, verifying that the native library and at
// least one language pack are usable.
func New() (*Backend, error) {
	langs, err := gosseract.GetAvailableLanguages()
	if err != nil {
		return nil, kreuzberg.NewMissingDependencyError("tesseract",
			fmt.Sprintf("tesseract language data unavailable: %v", err), err)
	}
	if len(langs) == 0 {
		return nil, kreuzberg.NewMissingDependencyError("tesseract",
			"tesseract is installed but no language packs were found", nil)
	}
	return &Backend{}, nil
}

// Register creates a backend and registers it under the name "tesseract".
func Register() error {
	b, err := New()
	if err != nil {
		return err
	}
	return kreuzberg.RegisterOCRBackend(b)
}

// Name returns the registry name of this backend.
func (b *Backend) Name() string { return "tesseract" }

// ProcessImage recognizes text in the given image bytes. Each call uses a
// fresh client so concurrent extractions do not share native state.
func (b *Backend) ProcessImage(ctx context.Context, image []byte, cfg *kreuzberg.OCRConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", kreuzberg.NewOCRError("canceled before OCR started", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetImageFromBytes(image); err != nil {
		return "", kreuzberg.NewOCRError(fmt.Sprintf("load image: %v", err), err)
	}
	if err := applyConfig(client, cfg); err != nil {
		return "", err
	}

	text, err := client.Text()
	if err != nil {
		return "", kreuzberg.NewOCRError(fmt.Sprintf("recognize: %v", err), err)
	}
	return strings.TrimSpace(text), nil
}

// applyConfig maps OCR settings onto the gosseract client.
func applyConfig(client *gosseract.Client, cfg *kreuzberg.OCRConfig) error {
	if cfg == nil {
		return nil
	}
	lang := ""
	if cfg.Language != nil {
		lang = *cfg.Language
	}
	tc := cfg.Tesseract
	if tc != nil && tc.Language != "" {
		lang = tc.Language
	}
	if lang != "" {
		// Tesseract takes multi-language specs as "eng+deu".
		if err := client.SetLanguage(strings.Split(lang, "+")...); err != nil {
			return kreuzberg.NewOCRError(fmt.Sprintf("set language %q: %v", lang, err), err)
		}
	}
	if tc == nil {
		return nil
	}
	if tc.PSM != nil {
		if err := client.SetPageSegMode(gosseract.PageSegMode(*tc.PSM)); err != nil {
			return kreuzberg.NewOCRError(fmt.Sprintf("set psm %d: %v", *tc.PSM, err), err)
		}
	}
	if tc.TesseditCharWhitelist != "" {
		if err := client.SetWhitelist(tc.TesseditCharWhitelist); err != nil {
			return kreuzberg.NewOCRError(fmt.Sprintf("set whitelist: %v", err), err)
		}
	}
	if tc.TesseditCharBlacklist != "" {
		if err := client.SetBlacklist(tc.TesseditCharBlacklist); err != nil {
			return kreuzberg.NewOCRError(fmt.Sprintf("set blacklist: %v", err), err)
		}
	}
	if tc.Preprocessing != nil && tc.Preprocessing.TargetDPI != nil {
		dpi := strconv.Itoa(*tc.Preprocessing.TargetDPI)
		if err := client.SetVariable(gosseract.SettableVariable("user_defined_dpi"), dpi); err != nil {
			return kreuzberg.NewOCRError(fmt.Sprintf("set dpi %s: %v", dpi, err), err)
		}
	}
	return nil
}
