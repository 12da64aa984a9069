package kreuzberg

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind identifies the category of a Kreuzberg error.
type ErrorKind string

const (
	ErrorKindValidation        ErrorKind = "validation"
	ErrorKindParsing           ErrorKind = "parsing"
	ErrorKindOCR               ErrorKind = "ocr"
	ErrorKindMissingDependency ErrorKind = "missing_dependency"
	ErrorKindIO                ErrorKind = "io"
	ErrorKindPlugin            ErrorKind = "plugin"
	ErrorKindUnsupportedFormat ErrorKind = "unsupported_format"
	ErrorKindInternal          ErrorKind = "internal"
)

// Numeric error codes shared with the C ABI. The values are stable and must
// not be renumbered.
const (
	CodeValidation        int32 = 0
	CodeParsing           int32 = 1
	CodeOCR               int32 = 2
	CodeMissingDependency int32 = 3
	CodeIO                int32 = 4
	CodePlugin            int32 = 5
	CodeUnsupportedFormat int32 = 6
	CodeInternal          int32 = 7

	// CodeSuccess is reported when no error has occurred.
	CodeSuccess int32 = -1
)

// ErrorCodeCount is the number of defined error codes.
const ErrorCodeCount = 8

// Error is implemented by all error types returned by this module.
type Error interface {
	error
	Kind() ErrorKind
	Code() int32
}

var kindCodes = map[ErrorKind]int32{
	ErrorKindValidation:        CodeValidation,
	ErrorKindParsing:           CodeParsing,
	ErrorKindOCR:               CodeOCR,
	ErrorKindMissingDependency: CodeMissingDependency,
	ErrorKindIO:                CodeIO,
	ErrorKindPlugin:            CodePlugin,
	ErrorKindUnsupportedFormat: CodeUnsupportedFormat,
	ErrorKindInternal:          CodeInternal,
}

// CodeName returns the canonical kind string for a numeric code, or
// "unknown" for codes outside the defined range.
func CodeName(code int32) string {
	switch code {
	case CodeValidation:
		return "validation"
	case CodeParsing:
		return "parsing"
	case CodeOCR:
		return "ocr"
	case CodeMissingDependency:
		return "missing_dependency"
	case CodeIO:
		return "io"
	case CodePlugin:
		return "plugin"
	case CodeUnsupportedFormat:
		return "unsupported_format"
	case CodeInternal:
		return "internal"
	}
	return "unknown"
}

// CodeDescription returns a human-readable description for a numeric code.
func CodeDescription(code int32) string {
	switch code {
	case CodeValidation:
		return "Input validation error"
	case CodeParsing:
		return "Document parsing error"
	case CodeOCR:
		return "OCR engine error"
	case CodeMissingDependency:
		return "Required external dependency is missing"
	case CodeIO:
		return "Filesystem or I/O error"
	case CodePlugin:
		return "Plugin callback error"
	case CodeUnsupportedFormat:
		return "Unsupported document format"
	case CodeInternal:
		return "Internal library error"
	}
	return "Unknown error code"
}

type baseError struct {
	kind    ErrorKind
	message string
	cause   error
}

func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *baseError) Kind() ErrorKind { return e.kind }
func (e *baseError) Code() int32     { return kindCodes[e.kind] }
func (e *baseError) Unwrap() error   { return e.cause }

// ValidationError reports malformed input or a configuration constraint
// violation. The message names the offending field and constraint.
type ValidationError struct{ baseError }

// ParsingError reports document content that could not be parsed for its
// detected or hinted format.
type ParsingError struct{ baseError }

// OCRError reports a failure inside an OCR backend.
type OCRError struct{ baseError }

// MissingDependencyError reports an absent external tool or model.
type MissingDependencyError struct {
	baseError
	Dependency string
}

// IOError reports a filesystem or read failure.
type IOError struct{ baseError }

// PluginError reports a failure (including a recovered panic) inside a
// registered plugin callback.
type PluginError struct {
	baseError
	PluginName string
}

// UnsupportedFormatError reports a MIME type no extractor handles.
type UnsupportedFormatError struct {
	baseError
	Format string
}

// InternalError reports an internal fault recovered at an entry point.
type InternalError struct{ baseError }

func NewValidationError(message string, cause error) *ValidationError {
	return &ValidationError{baseError{ErrorKindValidation, message, cause}}
}

func NewParsingError(message string, cause error) *ParsingError {
	return &ParsingError{baseError{ErrorKindParsing, message, cause}}
}

func NewOCRError(message string, cause error) *OCRError {
	return &OCRError{baseError{ErrorKindOCR, message, cause}}
}

func NewMissingDependencyError(dependency, message string, cause error) *MissingDependencyError {
	if strings.TrimSpace(message) == "" {
		message = fmt.Sprintf("missing dependency: %s", dependency)
	}
	return &MissingDependencyError{baseError{ErrorKindMissingDependency, message, cause}, dependency}
}

func NewIOError(message string, cause error) *IOError {
	return &IOError{baseError{ErrorKindIO, message, cause}}
}

func NewPluginError(plugin, message string, cause error) *PluginError {
	if strings.TrimSpace(message) == "" {
		message = fmt.Sprintf("plugin %q failed", plugin)
	}
	return &PluginError{baseError{ErrorKindPlugin, message, cause}, plugin}
}

func NewUnsupportedFormatError(format string, cause error) *UnsupportedFormatError {
	return &UnsupportedFormatError{
		baseError{ErrorKindUnsupportedFormat, fmt.Sprintf("unsupported format: %s", format), cause},
		format,
	}
}

func NewInternalError(message string, cause error) *InternalError {
	return &InternalError{baseError{ErrorKindInternal, message, cause}}
}

// KindOf returns the kind of err, or ErrorKindInternal when err is not a
// kreuzberg error. A nil err has no kind; callers must check first.
func KindOf(err error) ErrorKind {
	var ke Error
	if errors.As(err, &ke) {
		return ke.Kind()
	}
	return ErrorKindInternal
}

// CodeOf returns the numeric code of err, or CodeInternal when err is not a
// kreuzberg error. Returns CodeSuccess for nil.
func CodeOf(err error) int32 {
	if err == nil {
		return CodeSuccess
	}
	var ke Error
	if errors.As(err, &ke) {
		return ke.Code()
	}
	return CodeInternal
}
