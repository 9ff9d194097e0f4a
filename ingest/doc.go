// Package ingest implements the bounded fetch-extract engine.
//
// A file list is processed in fixed-size batches; batches run strictly in
// sequence while the items inside a batch are dispatched concurrently to a
// bounded worker pool. This caps peak concurrency at the pool width and keeps
// the number of simultaneously in-flight downloads predictable for large
// listings.
//
// Failures stay per-item: a fetch or extraction error contributes empty text
// to the combined result, is counted and logged, and never aborts the batch
// or cancels sibling items.
package ingest
