package extract

import (
	"bytes"
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	kreuzberg "github.com/kreuzberg-dev/kreuzberg-go"
)

// extractImage routes standalone images through the configured OCR backend
// and records image dimensions when the format is decodable.
func extractImage(ctx context.Context, data []byte, mimeType string, cfg *kreuzberg.ExtractionConfig) (*kreuzberg.ExtractionResult, error) {
	result, err := ocrImage(ctx, data, mimeType, cfg)
	if err != nil {
		return nil, err
	}

	// OCR already claimed the metadata format slot; attach the image itself
	// as the extracted artifact, with dimensions when decodable.
	extracted := kreuzberg.ExtractedImage{
		Data:       data,
		Format:     strings.TrimPrefix(mimeType, "image/"),
		ImageIndex: 0,
	}
	if config, _, derr := image.DecodeConfig(bytes.NewReader(data)); derr == nil {
		extracted.Width = &config.Width
		extracted.Height = &config.Height
	}
	result.Images = []kreuzberg.ExtractedImage{extracted}
	return result, nil
}
