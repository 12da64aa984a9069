// Package extract implements the Kreuzberg extraction entry points.
//
// Every entry point is synchronous and blocking, safe for concurrent use
// from multiple goroutines, and returns either a fully populated
// *kreuzberg.ExtractionResult or a typed kreuzberg error. Batch extraction
// runs a bounded worker pool and preserves input order in its output.
package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	kreuzberg "github.com/kreuzberg-dev/kreuzberg-go"
	"github.com/kreuzberg-dev/kreuzberg-go/observer"
)

// File extracts the document at path. The MIME type is detected from
// content signatures, falling back to the file extension. cfg may be nil to
// use engine defaults.
func File(ctx context.Context, path string, cfg *kreuzberg.ExtractionConfig) (*kreuzberg.ExtractionResult, error) {
	return FileWithMimeType(ctx, path, "", cfg)
}

// FileWithMimeType extracts the document at path, using mimeTypeHint as the
// declared MIME type when content sniffing comes back ambiguous. An empty
// hint falls back to the file extension instead. A recognized content
// signature still overrides the hint when the two disagree, the same way
// Bytes treats its declared type.
func FileWithMimeType(ctx context.Context, path, mimeTypeHint string, cfg *kreuzberg.ExtractionConfig) (result *kreuzberg.ExtractionResult, err error) {
	defer recoverToError(&err)
	obs := observer.Default()
	ctx, span := obs.Tracer.Start(ctx, "extract.File", trace.WithAttributes(observer.AttrPath.String(path)))
	defer span.End()

	start := time.Now()
	var (
		data     []byte
		mimeType string
	)
	defer func() {
		obs.RecordExtraction(ctx, time.Since(start), int64(len(data)), mimeType, errKind(err))
	}()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, kreuzberg.NewIOError(fmt.Sprintf("resolve %s", path), err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, kreuzberg.NewIOError(fmt.Sprintf("stat %s", abs), err)
	}
	if info.IsDir() {
		return nil, kreuzberg.NewIOError(fmt.Sprintf("%s is a directory, not a file", abs), nil)
	}
	data, err = os.ReadFile(abs)
	if err != nil {
		return nil, kreuzberg.NewIOError(fmt.Sprintf("read %s", abs), err)
	}

	mimeType = kreuzberg.DetectMimeType(data)
	if mimeType == kreuzberg.MimeOctetStream || mimeType == kreuzberg.MimePlainText {
		if mimeTypeHint != "" {
			mimeType = mimeTypeHint
		} else if byExt := kreuzberg.MimeTypeFromExtension(filepath.Ext(abs)); byExt != "" {
			mimeType = byExt
		}
	}
	span.SetAttributes(observer.AttrMimeType.String(mimeType))

	return extractWithCache(ctx, data, mimeType, cfg, abs, info)
}

// Bytes extracts a document from an in-memory buffer. mimeType is mandatory
// because there is no filename to fall back on; content sniffing overrides
// it only when the two disagree on a recognized signature.
func Bytes(ctx context.Context, data []byte, mimeType string, cfg *kreuzberg.ExtractionConfig) (result *kreuzberg.ExtractionResult, err error) {
	defer recoverToError(&err)
	obs := observer.Default()
	ctx, span := obs.Tracer.Start(ctx, "extract.Bytes", trace.WithAttributes(observer.AttrMimeType.String(mimeType)))
	defer span.End()

	start := time.Now()
	defer func() {
		obs.RecordExtraction(ctx, time.Since(start), int64(len(data)), mimeType, errKind(err))
	}()

	if mimeType == "" {
		return nil, kreuzberg.NewValidationError("mime_type is required for byte extraction", nil)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sniffed := kreuzberg.DetectMimeType(data); sniffed != kreuzberg.MimeOctetStream && sniffed != kreuzberg.MimePlainText && sniffed != mimeType {
		mimeType = sniffed
	}
	return extractWithCache(ctx, data, mimeType, cfg, "", nil)
}

// BatchFiles extracts each path independently, in parallel up to
// max_concurrent_extractions (default 2x GOMAXPROCS). The returned slice
// always has len(paths) entries in input order; a failed slot carries
// Success=false and error metadata instead of aborting the batch.
func BatchFiles(ctx context.Context, paths []string, cfg *kreuzberg.ExtractionConfig) ([]*kreuzberg.ExtractionResult, error) {
	ctx, span := observer.Default().Tracer.Start(ctx, "extract.BatchFiles", trace.WithAttributes(
		observer.AttrBatchSize.Int(len(paths)),
		observer.AttrBatchID.String(uuid.NewString()),
	))
	defer span.End()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	workers := 2 * runtime.GOMAXPROCS(0)
	if cfg != nil && cfg.MaxConcurrentExtractions != nil {
		workers = *cfg.MaxConcurrentExtractions
	}
	if workers > len(paths) {
		workers = len(paths)
	}
	if workers < 1 {
		workers = 1
	}

	results := make([]*kreuzberg.ExtractionResult, len(paths))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res, err := File(ctx, paths[i], cfg)
				if err != nil {
					res = failedResult(err)
				}
				results[i] = res
			}
		}()
	}
	for i := range paths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return results, nil
}

// failedResult wraps an error into the result slot shape used by batch
// extraction.
func failedResult(err error) *kreuzberg.ExtractionResult {
	return &kreuzberg.ExtractionResult{
		Success: false,
		Metadata: kreuzberg.Metadata{
			Error: &kreuzberg.ErrorMetadata{
				ErrorType: string(kreuzberg.KindOf(err)),
				Message:   err.Error(),
			},
		},
	}
}

// recoverToError converts a panic escaping an entry point into an
// InternalError instead of crashing the caller.
func recoverToError(err *error) {
	if r := recover(); r != nil {
		*err = kreuzberg.NewInternalError(fmt.Sprintf("recovered panic: %v", r), nil)
	}
}

func errKind(err error) string {
	if err == nil {
		return ""
	}
	return string(kreuzberg.KindOf(err))
}
