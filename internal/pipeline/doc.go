// Package pipeline assembles inspection reports.
//
// An inspection runs a fixed sequence of steps over a per-target
// Inspection: load the document, extract everything that can be read from
// it, resolve the referenced assets concurrently, summarize the content and
// optionally download images. Each step is an implementation of Step, so
// the CLI can leave out optional stages and tests can substitute fakes.
//
// Only the load step is fatal. Every other failure is recorded in the
// report and the remaining steps still run, so a report is always produced
// once a document exists. BatchProcessor inspects many targets at once with
// errgroup-bounded concurrency.
package pipeline
