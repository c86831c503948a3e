// Package report writes crawl reports.
//
// This package contains writers for different output formats:
//   - SimpleWriter: a table of the tree in level order for terminal display
//   - JSONWriter: the serialized sequences for the presentation layer
//   - MarkdownWriter: a shareable document with an image outcome chart
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
