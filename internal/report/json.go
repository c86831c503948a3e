package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/wikitree/internal/model"
)

// JSONWriter outputs reports in JSON format for the presentation layer and
// other tools.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string

	// includeTree adds the full node tree to the output.
	includeTree bool

	// version is written to the version field when set.
	version string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithTree includes the nested node tree in the output.
func WithTree(include bool) JSONWriterOption {
	return func(w *JSONWriter) {
		w.includeTree = include
	}
}

// WithVersion sets the version string recorded in the output.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// JSONReport is the JSON form of a crawl report. Paths, IntroSentences and
// Names are the level-order sequences; IntroSentences[i-1] belongs to node i.
type JSONReport struct {
	// Version is the wikitree version that generated this report.
	Version string `json:"version,omitempty"`

	JobID   string `json:"jobId"`
	RootURL string `json:"rootUrl"`
	Height  int    `json:"height"`

	NodeCount      int      `json:"nodeCount"`
	Paths          []string `json:"paths"`
	IntroSentences []string `json:"introSentences"`
	Names          []string `json:"names"`

	// FailedImages are the local paths whose download failed.
	FailedImages []string `json:"failedImages"`

	Rejected int    `json:"rejected"`
	Duration string `json:"duration"`
	Error    string `json:"error,omitempty"`

	// Tree is the nested node structure, present with WithTree.
	Tree *model.PersonNode `json:"tree,omitempty"`
}

// NewJSONReport builds the JSON form of report.
func NewJSONReport(report *model.CrawlReport, version string) *JSONReport {
	seq := sequences(report)

	failed := make([]string, 0)
	for _, img := range report.FailedImages() {
		failed = append(failed, img.Path)
	}

	return &JSONReport{
		Version:        version,
		JobID:          report.Job.ID,
		RootURL:        report.Job.RootURL,
		Height:         report.Job.Height,
		NodeCount:      seq.NodeCount(),
		Paths:          nonNil(seq.Paths),
		IntroSentences: nonNil(seq.IntroSentences),
		Names:          nonNil(seq.Names),
		FailedImages:   failed,
		Rejected:       report.Rejected,
		Duration:       report.Duration.String(),
		Error:          report.ErrorMessage,
	}
}

// Write outputs the report in JSON format.
func (w *JSONWriter) Write(report *model.CrawlReport) (int, error) {
	out := NewJSONReport(report, w.version)
	if w.includeTree {
		out.Tree = report.Root
	}
	return w.writeJSON(out)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	data = append(data, '\n')

	return w.output.Write(data)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
