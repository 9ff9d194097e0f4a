// Package store owns the durable per-hub layout on disk.
//
// Each hub lives under {root}/{hubName}/ with:
//
//	manifest.json  record of the files represented in the current index
//	metadata.json  hub settings (source link, sync preferences)
//	index/         opaque index directory owned by the index package
//
// The manifest and the index directory are the last-good state: every write
// path here goes through a temp-location-then-rename swap, so a crash mid-
// write leaves the previous state intact.
package store
