package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/nao1215/wikitree/internal/model"
)

// defaultIntroWidth is the number of characters of an intro sentence shown
// in the terminal table.
const defaultIntroWidth = 60

// SimpleWriter outputs a human-readable summary and a table of the tree.
type SimpleWriter struct {
	baseWriter

	// introWidth truncates intro sentences. 0 disables truncation.
	introWidth int

	// showPaths adds the local image path column.
	showPaths bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithIntroWidth sets how many characters of each intro sentence are shown.
// 0 shows full sentences.
func WithIntroWidth(width int) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.introWidth = width
	}
}

// WithImagePaths adds a column with each node's local image path.
func WithImagePaths(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showPaths = show
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		introWidth: defaultIntroWidth,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.CrawlReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	if report.Root != nil {
		sb.WriteString(w.renderTree(report))
		sb.WriteString("\n")
		w.writeCredits(&sb, report)
		w.writeFailedImages(&sb, report)
	}

	return io.WriteString(w.output, sb.String())
}

// writeHeader writes the job summary.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.CrawlReport) {
	sb.WriteString("WIKITREE REPORT\n")
	sb.WriteString(strings.Repeat("=", 60) + "\n")
	fmt.Fprintf(sb, "Root:      %s\n", report.Job.RootURL)
	fmt.Fprintf(sb, "Job:       %s\n", report.Job.ID)
	fmt.Fprintf(sb, "Height:    %d\n", report.Job.Height)

	if report.Failed() {
		fmt.Fprintf(sb, "Status:    FAILED - %s\n\n", report.ErrorMessage)
		return
	}

	fmt.Fprintf(sb, "Nodes:     %d (depth %d)\n", report.NodeCount(), model.Depth(report.Root))
	fmt.Fprintf(sb, "Rejected:  %d candidate links\n", report.Rejected)
	if len(report.Images) > 0 {
		failed := len(report.FailedImages())
		fmt.Fprintf(sb, "Images:    %d ok, %d failed (%s)\n",
			len(report.Images)-failed, failed, humanize.Bytes(imageBytes(report)))
	}
	if report.Duration > 0 {
		fmt.Fprintf(sb, "Duration:  %s\n", report.Duration.Round(time.Millisecond))
	}
	sb.WriteString("\n")
}

// renderTree renders the nodes in level order as a table.
func (w *SimpleWriter) renderTree(report *model.CrawlReport) string {
	seq := sequences(report)

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := table.Row{"#", "Level", "Name", "Image"}
	if w.showPaths {
		header = append(header, "Path")
	}
	header = append(header, "Intro")
	tw.AppendHeader(header)

	i := 0
	for level, nodes := range model.Levels(report.Root) {
		for _, node := range nodes {
			intro := introText(seq, i)
			if w.introWidth > 0 {
				intro = truncateString(intro, w.introWidth)
			}

			row := table.Row{strconv.Itoa(i), strconv.Itoa(level), node.Name, imageStatus(report, node.URL)}
			if w.showPaths {
				row = append(row, node.ImagePath)
			}
			row = append(row, intro)
			tw.AppendRow(row)
			i++
		}
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, Align: text.AlignRight},
	})

	return tw.Render()
}

// writeCredits lists the EXIF attribution of the saved portraits.
func (w *SimpleWriter) writeCredits(sb *strings.Builder, report *model.CrawlReport) {
	header := false
	for _, img := range report.Images {
		if !img.OK() || len(img.Attribution) == 0 {
			continue
		}
		if !header {
			sb.WriteString("\nImage credits:\n")
			header = true
		}
		fmt.Fprintf(sb, "  - %s: %s\n", img.Path, formatAttribution(img.Attribution))
	}
}

// writeFailedImages lists the images that could not be saved.
func (w *SimpleWriter) writeFailedImages(sb *strings.Builder, report *model.CrawlReport) {
	failed := report.FailedImages()
	if len(failed) == 0 {
		return
	}

	sb.WriteString("\nFailed images:\n")
	for _, img := range failed {
		fmt.Fprintf(sb, "  - %s: %s\n", img.Path, img.ErrorMessage)
	}
}
