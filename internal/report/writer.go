package report

import (
	"io"
	"slices"
	"strings"

	"github.com/nao1215/wikitree/internal/model"
)

// Writer defines the interface for report output.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.CrawlReport) (int, error)
}

// MultiWriter writes to multiple Writers in order.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(report *model.CrawlReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// sequences returns the report's sequences, serializing the tree if the
// serialize step has not run.
func sequences(report *model.CrawlReport) model.Sequences {
	if report.Sequences.NodeCount() > 0 || report.Root == nil {
		return report.Sequences
	}
	return model.Serialize(report.Root)
}

// imageStatus describes the portrait of the node at nodeURL.
func imageStatus(report *model.CrawlReport, nodeURL string) string {
	if len(report.Images) == 0 {
		return "-"
	}
	if report.ImageAvailable(nodeURL) {
		return "ok"
	}
	return "missing"
}

// introText returns the caption of the node at level-order index i.
func introText(seq model.Sequences, i int) string {
	if i == 0 {
		return "(root)"
	}
	if i-1 >= len(seq.IntroSentences) || seq.IntroSentences[i-1] == "" {
		return "(not mentioned)"
	}
	return seq.IntroSentences[i-1]
}

// imageBytes returns the total size of the images that were written.
func imageBytes(report *model.CrawlReport) uint64 {
	var total uint64
	for _, img := range report.Images {
		if img.OK() && img.Bytes > 0 {
			total += uint64(img.Bytes)
		}
	}
	return total
}

// formatAttribution renders image credits as "key=value" pairs sorted by key.
func formatAttribution(attr map[string]string) string {
	keys := make([]string, 0, len(attr))
	for k := range attr {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+attr[k])
	}
	return strings.Join(parts, ", ")
}

// truncateString truncates a string to maxLen runes with ellipsis.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
