// Package pipeline scans saved feed pages offline.
//
// Each file is a Job that passes through a sequence of Steps: load the HTML,
// classify and annotate it against a goal, and optionally write the
// annotated document. BatchProcessor runs one pipeline per file with a
// concurrency limit.
package pipeline
