package kreuzberg

import (
	"archive/zip"
	"bytes"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Well-known MIME types used across the engine.
const (
	MimePlainText   = "text/plain"
	MimeMarkdown    = "text/markdown"
	MimeHTML        = "text/html"
	MimeCSV         = "text/csv"
	MimeTSV         = "text/tab-separated-values"
	MimeJSON        = "application/json"
	MimeYAML        = "application/x-yaml"
	MimeTOML        = "application/toml"
	MimeXML         = "application/xml"
	MimePDF         = "application/pdf"
	MimeDOCX        = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeXLSX        = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MimePPTX        = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	MimeZip         = "application/zip"
	MimePNG         = "image/png"
	MimeJPEG        = "image/jpeg"
	MimeGIF         = "image/gif"
	MimeTIFF        = "image/tiff"
	MimeBMP         = "image/bmp"
	MimeWebP        = "image/webp"
	MimeOctetStream = "application/octet-stream"
)

var extToMime = map[string]string{
	"txt":      MimePlainText,
	"text":     MimePlainText,
	"md":       MimeMarkdown,
	"markdown": MimeMarkdown,
	"html":     MimeHTML,
	"htm":      MimeHTML,
	"csv":      MimeCSV,
	"tsv":      MimeTSV,
	"json":     MimeJSON,
	"yaml":     MimeYAML,
	"yml":      MimeYAML,
	"toml":     MimeTOML,
	"xml":      MimeXML,
	"pdf":      MimePDF,
	"docx":     MimeDOCX,
	"xlsx":     MimeXLSX,
	"pptx":     MimePPTX,
	"zip":      MimeZip,
	"png":      MimePNG,
	"jpg":      MimeJPEG,
	"jpeg":     MimeJPEG,
	"gif":      MimeGIF,
	"tiff":     MimeTIFF,
	"tif":      MimeTIFF,
	"bmp":      MimeBMP,
	"webp":     MimeWebP,
}

// MimeTypeFromExtension maps a file extension (with or without the leading
// dot) to a MIME type. Returns "" for unknown extensions.
func MimeTypeFromExtension(ext string) string {
	return extToMime[strings.ToLower(strings.TrimPrefix(ext, "."))]
}

// DetectMimeType sniffs the MIME type of data from content signatures.
// It is pure and never fails: inconclusive input yields
// application/octet-stream.
func DetectMimeType(data []byte) string {
	if len(data) == 0 {
		return MimeOctetStream
	}
	if bytes.HasPrefix(data, []byte("%PDF-")) {
		return MimePDF
	}
	if bytes.HasPrefix(data, []byte("PK\x03\x04")) {
		return sniffZip(data)
	}
	if mt := sniffImage(data); mt != "" {
		return mt
	}
	if mt := sniffText(data); mt != "" {
		return mt
	}
	detected := http.DetectContentType(data)
	if i := strings.IndexByte(detected, ';'); i >= 0 {
		detected = strings.TrimSpace(detected[:i])
	}
	if detected == "" {
		return MimeOctetStream
	}
	return detected
}

// DetectMimeTypeFromPath detects the MIME type of the file at path,
// preferring content signatures over the extension when they disagree.
func DetectMimeTypeFromPath(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", NewIOError("read "+path, err)
	}
	detected := DetectMimeType(data)
	if detected != MimeOctetStream && detected != MimePlainText {
		return detected, nil
	}
	if byExt := MimeTypeFromExtension(filepath.Ext(path)); byExt != "" {
		return byExt, nil
	}
	return detected, nil
}

// sniffZip distinguishes OOXML containers from plain zip archives by their
// well-known internal paths.
func sniffZip(data []byte) string {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return MimeZip
	}
	for _, f := range zr.File {
		switch {
		case f.Name == "word/document.xml" || strings.HasPrefix(f.Name, "word/"):
			return MimeDOCX
		case strings.HasPrefix(f.Name, "xl/"):
			return MimeXLSX
		case strings.HasPrefix(f.Name, "ppt/"):
			return MimePPTX
		}
	}
	return MimeZip
}

func sniffImage(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return MimePNG
	case bytes.HasPrefix(data, []byte("\xff\xd8\xff")):
		return MimeJPEG
	case bytes.HasPrefix(data, []byte("GIF87a")) || bytes.HasPrefix(data, []byte("GIF89a")):
		return MimeGIF
	case bytes.HasPrefix(data, []byte("II*\x00")) || bytes.HasPrefix(data, []byte("MM\x00*")):
		return MimeTIFF
	case bytes.HasPrefix(data, []byte("BM")):
		return MimeBMP
	case len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return MimeWebP
	}
	return ""
}

func sniffText(data []byte) string {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	trimmed := bytes.TrimLeft(head, " \t\r\n\xef\xbb\xbf")
	lower := bytes.ToLower(trimmed)
	switch {
	case bytes.HasPrefix(lower, []byte("<!doctype html")), bytes.HasPrefix(lower, []byte("<html")):
		return MimeHTML
	case bytes.HasPrefix(trimmed, []byte("<?xml")):
		return MimeXML
	case bytes.HasPrefix(trimmed, []byte("{")), bytes.HasPrefix(trimmed, []byte("[")):
		if isLikelyJSON(data) {
			return MimeJSON
		}
	}
	return ""
}

func isLikelyJSON(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) < 2 {
		return false
	}
	first, last := trimmed[0], trimmed[len(trimmed)-1]
	return (first == '{' && last == '}') || (first == '[' && last == ']')
}
