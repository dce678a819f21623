// Package model defines the data structures shared by the inspection
// pipeline, the report writers and the history database.
//
// The main types are:
//   - PageMetadata: the named metadata fields of an inspected page
//   - AssetReference: an icon or image whose pixel dimensions were resolved
//   - Report: the root aggregate produced by one inspection
//
// The types are plain values and serialize to JSON for report output and
// database storage.
package model
