// Package main exposes the extraction engine over a C ABI. Build with
//
//	go build -buildmode=c-shared -o libkreuzberg.so ./ffi
//
// Every exported function is synchronous. Errors are reported through a
// per-thread last-error slot queried with kreuzberg_last_error and
// kreuzberg_last_error_code; a successful call clears the slot for the
// calling thread. All returned pointers are owned by the caller and must be
// released with the matching kreuzberg_free_* function. Passing NULL to any
// free function is a no-op.
package main

/*
#include <stdlib.h>

typedef struct {
	char* content;
	char* mime_type;
	char* metadata_json;
	char* tables_json;
	char* chunks_json;
	char* images_json;
	char* keywords_json;
	char* detected_languages_json;
	char* pages_json;
	char* quality_score_json;
	char* warnings_json;
	char* error_json;
	int   success;
} kreuzberg_result_t;

typedef struct {
	kreuzberg_result_t** results;
	size_t               count;
} kreuzberg_batch_result_t;
*/
import "C"

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"syscall"
	"unsafe"

	kreuzberg "github.com/kreuzberg-dev/kreuzberg-go"
	"github.com/kreuzberg-dev/kreuzberg-go/extract"
)

// lastErrors holds the most recent error per OS thread. C callers enter Go
// on their own thread, so keying by thread id gives each caller an
// independent slot.
var (
	lastErrorsMu sync.RWMutex
	lastErrors   = map[int]lastError{}
)

type lastError struct {
	message string
	code    int32
}

func setLastError(err error) {
	tid := syscall.Gettid()
	lastErrorsMu.Lock()
	defer lastErrorsMu.Unlock()
	if err == nil {
		delete(lastErrors, tid)
		return
	}
	lastErrors[tid] = lastError{message: err.Error(), code: kreuzberg.CodeOf(err)}
}

func getLastError() (lastError, bool) {
	lastErrorsMu.RLock()
	defer lastErrorsMu.RUnlock()
	le, ok := lastErrors[syscall.Gettid()]
	return le, ok
}

// cJSON marshals v to a C string, or returns nil when v is empty. Optional
// result fields stay NULL on the C side instead of encoding "null" or "[]".
func cJSON(v any) *C.char {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	switch string(data) {
	case "null", "[]", "{}":
		return nil
	}
	return C.CString(string(data))
}

// buildResult converts a Go result into a C struct. All strings are
// C.CString allocations owned by the caller; optional fields are NULL when
// the result has nothing for them.
func buildResult(res *kreuzberg.ExtractionResult) *C.kreuzberg_result_t {
	out := (*C.kreuzberg_result_t)(C.malloc(C.size_t(unsafe.Sizeof(C.kreuzberg_result_t{}))))
	out.content = C.CString(res.Content)
	out.mime_type = C.CString(res.MimeType)
	metadataJSON, err := json.Marshal(res.Metadata)
	if err != nil {
		metadataJSON = []byte("{}")
	}
	out.metadata_json = C.CString(string(metadataJSON))
	out.tables_json = cJSON(res.Tables)
	out.chunks_json = cJSON(res.Chunks)
	out.images_json = cJSON(res.Images)
	out.keywords_json = cJSON(res.Keywords)
	out.detected_languages_json = cJSON(res.DetectedLanguages)
	out.pages_json = cJSON(res.Pages)
	out.quality_score_json = cJSON(res.QualityScore)
	out.warnings_json = cJSON(res.Warnings)
	out.error_json = cJSON(res.Metadata.Error)
	if res.Success {
		out.success = 1
	} else {
		out.success = 0
	}
	return out
}

// recoverToError traps a panic raised below the boundary and records it in
// the calling thread's error slot. Exported functions must never let a
// panic unwind into C.
func recoverToError() {
	if r := recover(); r != nil {
		setLastError(kreuzberg.NewInternalError(fmt.Sprintf("panic: %v", r), nil))
	}
}

func parseConfig(configJSON *C.char) (*kreuzberg.ExtractionConfig, error) {
	if configJSON == nil {
		return nil, nil
	}
	raw := C.GoString(configJSON)
	if raw == "" {
		return nil, nil
	}
	return kreuzberg.FromJSON([]byte(raw))
}

//export kreuzberg_extract_file_sync
func kreuzberg_extract_file_sync(path *C.char) *C.kreuzberg_result_t {
	return kreuzberg_extract_file_with_config_sync(path, nil)
}

//export kreuzberg_extract_file_with_config_sync
func kreuzberg_extract_file_with_config_sync(path, configJSON *C.char) *C.kreuzberg_result_t {
	defer recoverToError()
	if path == nil {
		setLastError(kreuzberg.NewValidationError("path must not be null", nil))
		return nil
	}
	cfg, err := parseConfig(configJSON)
	if err != nil {
		setLastError(err)
		return nil
	}
	res, err := extract.File(context.Background(), C.GoString(path), cfg)
	if err != nil {
		setLastError(err)
		return nil
	}
	setLastError(nil)
	return buildResult(res)
}

//export kreuzberg_extract_bytes_sync
func kreuzberg_extract_bytes_sync(data *C.char, length C.size_t, mimeType, configJSON *C.char) *C.kreuzberg_result_t {
	defer recoverToError()
	if data == nil && length > 0 {
		setLastError(kreuzberg.NewValidationError("data must not be null", nil))
		return nil
	}
	if mimeType == nil {
		setLastError(kreuzberg.NewValidationError("mime_type must not be null", nil))
		return nil
	}
	cfg, err := parseConfig(configJSON)
	if err != nil {
		setLastError(err)
		return nil
	}
	buf := C.GoBytes(unsafe.Pointer(data), C.int(length))
	res, err := extract.Bytes(context.Background(), buf, C.GoString(mimeType), cfg)
	if err != nil {
		setLastError(err)
		return nil
	}
	setLastError(nil)
	return buildResult(res)
}

//export kreuzberg_batch_extract_files_sync
func kreuzberg_batch_extract_files_sync(paths **C.char, count C.size_t, configJSON *C.char) *C.kreuzberg_batch_result_t {
	defer recoverToError()
	if paths == nil && count > 0 {
		setLastError(kreuzberg.NewValidationError("paths must not be null", nil))
		return nil
	}
	cfg, err := parseConfig(configJSON)
	if err != nil {
		setLastError(err)
		return nil
	}

	goPaths := make([]string, int(count))
	cPaths := unsafe.Slice(paths, int(count))
	for i, p := range cPaths {
		goPaths[i] = C.GoString(p)
	}

	results, err := extract.BatchFiles(context.Background(), goPaths, cfg)
	if err != nil {
		setLastError(err)
		return nil
	}

	out := (*C.kreuzberg_batch_result_t)(C.malloc(C.size_t(unsafe.Sizeof(C.kreuzberg_batch_result_t{}))))
	out.count = C.size_t(len(results))
	if len(results) == 0 {
		out.results = nil
		setLastError(nil)
		return out
	}
	ptrSize := unsafe.Sizeof((*C.kreuzberg_result_t)(nil))
	out.results = (**C.kreuzberg_result_t)(C.malloc(C.size_t(uintptr(len(results)) * ptrSize)))
	slots := unsafe.Slice(out.results, len(results))
	for i, res := range results {
		slots[i] = buildResult(res)
	}
	setLastError(nil)
	return out
}

//export kreuzberg_detect_mime_type
func kreuzberg_detect_mime_type(data *C.char, length C.size_t) *C.char {
	if data == nil || length == 0 {
		return C.CString(kreuzberg.MimeOctetStream)
	}
	buf := C.GoBytes(unsafe.Pointer(data), C.int(length))
	return C.CString(kreuzberg.DetectMimeType(buf))
}

//export kreuzberg_config_from_json
func kreuzberg_config_from_json(configJSON *C.char) *C.char {
	defer recoverToError()
	cfg, err := parseConfig(configJSON)
	if err != nil {
		setLastError(err)
		return nil
	}
	canonical, err := kreuzberg.ToJSON(cfg)
	if err != nil {
		setLastError(err)
		return nil
	}
	setLastError(nil)
	return C.CString(string(canonical))
}

// listJSON renders a registry name list as a JSON array. Empty registries
// encode as [] rather than null.
func listJSON(names []string) *C.char {
	if names == nil {
		names = []string{}
	}
	data, err := json.Marshal(names)
	if err != nil {
		return C.CString("[]")
	}
	return C.CString(string(data))
}

//export kreuzberg_list_post_processors
func kreuzberg_list_post_processors() *C.char {
	return listJSON(kreuzberg.ListPostProcessors())
}

//export kreuzberg_unregister_post_processor
func kreuzberg_unregister_post_processor(name *C.char) {
	if name == nil {
		return
	}
	kreuzberg.UnregisterPostProcessor(C.GoString(name))
}

//export kreuzberg_clear_post_processors
func kreuzberg_clear_post_processors() {
	kreuzberg.ClearPostProcessors()
}

//export kreuzberg_list_validators
func kreuzberg_list_validators() *C.char {
	return listJSON(kreuzberg.ListValidators())
}

//export kreuzberg_unregister_validator
func kreuzberg_unregister_validator(name *C.char) {
	if name == nil {
		return
	}
	kreuzberg.UnregisterValidator(C.GoString(name))
}

//export kreuzberg_clear_validators
func kreuzberg_clear_validators() {
	kreuzberg.ClearValidators()
}

//export kreuzberg_list_ocr_backends
func kreuzberg_list_ocr_backends() *C.char {
	return listJSON(kreuzberg.ListOCRBackends())
}

//export kreuzberg_unregister_ocr_backend
func kreuzberg_unregister_ocr_backend(name *C.char) {
	if name == nil {
		return
	}
	kreuzberg.UnregisterOCRBackend(C.GoString(name))
}

//export kreuzberg_clear_ocr_backends
func kreuzberg_clear_ocr_backends() {
	kreuzberg.ClearOCRBackends()
}

//export kreuzberg_list_document_extractors
func kreuzberg_list_document_extractors() *C.char {
	return listJSON(kreuzberg.ListDocumentExtractors())
}

//export kreuzberg_unregister_document_extractor
func kreuzberg_unregister_document_extractor(name *C.char) {
	if name == nil {
		return
	}
	kreuzberg.UnregisterDocumentExtractor(C.GoString(name))
}

//export kreuzberg_clear_document_extractors
func kreuzberg_clear_document_extractors() {
	kreuzberg.ClearDocumentExtractors()
}

//export kreuzberg_last_error
func kreuzberg_last_error() *C.char {
	le, ok := getLastError()
	if !ok {
		return nil
	}
	return C.CString(le.message)
}

//export kreuzberg_last_error_code
func kreuzberg_last_error_code() C.int {
	le, ok := getLastError()
	if !ok {
		return C.int(kreuzberg.CodeSuccess)
	}
	return C.int(le.code)
}

//export kreuzberg_error_code_name
func kreuzberg_error_code_name(code C.int) *C.char {
	return C.CString(kreuzberg.CodeName(int32(code)))
}

//export kreuzberg_error_code_description
func kreuzberg_error_code_description(code C.int) *C.char {
	return C.CString(kreuzberg.CodeDescription(int32(code)))
}

//export kreuzberg_error_code_count
func kreuzberg_error_code_count() C.int {
	return C.int(kreuzberg.ErrorCodeCount)
}

//export kreuzberg_version
func kreuzberg_version() *C.char {
	return C.CString(kreuzberg.Version())
}

//export kreuzberg_version_major
func kreuzberg_version_major() C.int { return C.int(kreuzberg.VersionMajor) }

//export kreuzberg_version_minor
func kreuzberg_version_minor() C.int { return C.int(kreuzberg.VersionMinor) }

//export kreuzberg_version_patch
func kreuzberg_version_patch() C.int { return C.int(kreuzberg.VersionPatch) }

//export kreuzberg_free_string
func kreuzberg_free_string(s *C.char) {
	if s != nil {
		C.free(unsafe.Pointer(s))
	}
}

//export kreuzberg_free_result
func kreuzberg_free_result(res *C.kreuzberg_result_t) {
	if res == nil {
		return
	}
	for _, s := range []*C.char{
		res.content, res.mime_type, res.metadata_json,
		res.tables_json, res.chunks_json, res.images_json,
		res.keywords_json, res.detected_languages_json, res.pages_json,
		res.quality_score_json, res.warnings_json, res.error_json,
	} {
		if s != nil {
			C.free(unsafe.Pointer(s))
		}
	}
	C.free(unsafe.Pointer(res))
}

//export kreuzberg_free_batch_result
func kreuzberg_free_batch_result(batch *C.kreuzberg_batch_result_t) {
	if batch == nil {
		return
	}
	if batch.results != nil {
		slots := unsafe.Slice(batch.results, int(batch.count))
		for _, res := range slots {
			kreuzberg_free_result(res)
		}
		C.free(unsafe.Pointer(batch.results))
	}
	C.free(unsafe.Pointer(batch))
}

func main() {}
