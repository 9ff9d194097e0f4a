// Package extract converts raw document bytes into plain text.
//
// Dispatch is by filename suffix, case-insensitive. Known document formats
// (PDF, DOCX, XLSX, XLS) get a format-specific decoder; ZIP archives are
// expanded and each entry extracted recursively; everything else falls back
// to permissive UTF-8 decoding where undecodable bytes are dropped.
//
// Extraction is deliberately best-effort: a decode failure never raises, it
// produces a human-readable placeholder and a false success flag so that a
// single bad file cannot abort a whole ingestion batch.
package extract
