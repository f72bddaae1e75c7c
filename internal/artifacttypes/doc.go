// Package artifacttypes classifies VFX project filenames.
//
// It maps extensions to artifact file types, extracts version tokens from
// filenames, evaluates include/exclude glob patterns, and derives the
// grouping key (folder, shot group, base name) that the index store and the
// version resolver operate on. Both the scanner and the watcher funnel
// through this package so their outputs stay consistent.
package artifacttypes
