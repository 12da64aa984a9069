package observer

import "go.opentelemetry.io/otel/attribute"

// Shared attribute keys for extraction telemetry.
var (
	AttrMimeType   = attribute.Key("document.mime_type")
	AttrPath       = attribute.Key("document.path")
	AttrSizeBytes  = attribute.Key("document.size_bytes")
	AttrPageCount  = attribute.Key("document.page_count")
	AttrCacheHit   = attribute.Key("extraction.cache_hit")
	AttrErrorKind  = attribute.Key("extraction.error_kind")
	AttrOCRBackend = attribute.Key("ocr.backend")
	AttrBatchSize  = attribute.Key("batch.size")
	AttrBatchID    = attribute.Key("batch.id")
)
