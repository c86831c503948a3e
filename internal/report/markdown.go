package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/wikitree/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.CrawlReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	if report.Root != nil {
		w.writeImages(md, report)
		w.writeTree(md, report)
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the title and the job table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.CrawlReport) {
	title := "wikitree Report"
	if report.Root != nil {
		title += ": " + report.Root.Name
	}
	md.H1(title)
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Root", report.Job.RootURL},
			{"Job", "`" + report.Job.ID + "`"},
			{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Height", strconv.Itoa(report.Job.Height)},
			{"Nodes", strconv.Itoa(report.NodeCount())},
			{"Rejected links", strconv.Itoa(report.Rejected)},
			{"Status", w.getStatusText(report)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on report state.
func (w *MarkdownWriter) getStatusText(report *model.CrawlReport) string {
	if report.Failed() {
		return "❌ Error - " + report.ErrorMessage
	}
	if len(report.FailedImages()) > 0 {
		return "⚠️ Complete (some images missing)"
	}
	return "✅ Complete"
}

// writeImages writes the image outcome chart and any failures.
func (w *MarkdownWriter) writeImages(md *markdown.Markdown, report *model.CrawlReport) {
	if len(report.Images) == 0 {
		return
	}

	md.H2("Images")
	md.PlainText("")

	failed := report.FailedImages()
	saved := len(report.Images) - len(failed)

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Portrait Downloads"),
		piechart.WithShowData(true),
	)
	if saved > 0 {
		chart.LabelAndIntValue("Saved", uint64(saved))
	}
	if len(failed) > 0 {
		chart.LabelAndIntValue("Failed", uint64(len(failed)))
	}
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")

	if len(failed) == 0 {
		md.Tip("Every portrait was downloaded.")
		md.PlainText("")
		return
	}

	md.Warningf("%d of %d portraits could not be downloaded.", len(failed), len(report.Images))
	md.PlainText("")

	items := make([]string, 0, len(failed))
	for _, img := range failed {
		items = append(items, "`"+img.Path+"`: "+img.ErrorMessage)
	}
	md.BulletList(items...)
	md.PlainText("")
}

// writeTree writes one table per tree level.
func (w *MarkdownWriter) writeTree(md *markdown.Markdown, report *model.CrawlReport) {
	seq := sequences(report)

	md.H2("Tree")
	md.PlainText("")

	i := 0
	for level, nodes := range model.Levels(report.Root) {
		md.PlainText("### Level " + strconv.Itoa(level))
		md.PlainText("")

		rows := make([][]string, 0, len(nodes))
		for _, node := range nodes {
			rows = append(rows, []string{
				strconv.Itoa(i),
				"[" + node.Name + "](" + node.URL + ")",
				"`" + node.ImagePath + "`",
				truncateString(introText(seq, i), 120),
			})
			i++
		}

		md.Table(markdown.TableSet{
			Header: []string{"#", "Name", "Image", "Intro"},
			Rows:   rows,
		})
		md.PlainText("")
	}
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [wikitree](https://github.com/nao1215/wikitree)*")
}
