package wikipage

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Table is a table element of a Document, typically the infobox.
type Table struct {
	doc *Document
	sel *goquery.Selection
}

// Row is a table row split into its header cell and data cells.
type Row struct {
	// Header is the text of the row's first <th>, or empty.
	Header string

	// Cells are the texts of the row's <td> elements.
	Cells []string
}

// Rows returns the table's rows in document order.
func (t *Table) Rows() []Row {
	rows := make([]Row, 0)
	t.sel.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		row := Row{
			Header: strings.TrimSpace(tr.Find("th").First().Text()),
			Cells:  make([]string, 0),
		}
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			row.Cells = append(row.Cells, strings.TrimSpace(td.Text()))
		})
		rows = append(rows, row)
	})
	return rows
}

// HeaderTexts returns the non-empty header texts of all rows.
func (t *Table) HeaderTexts() []string {
	headers := make([]string, 0)
	for _, row := range t.Rows() {
		if row.Header != "" {
			headers = append(headers, row.Header)
		}
	}
	return headers
}

// HasHeader reports whether any row header contains one of the labels.
func (t *Table) HasHeader(labels ...string) bool {
	for _, header := range t.HeaderTexts() {
		for _, label := range labels {
			if label != "" && strings.Contains(header, label) {
				return true
			}
		}
	}
	return false
}

// ImageURL returns the absolute source of the first image in the table.
// Protocol-relative sources ("//upload...") take the page's scheme.
func (t *Table) ImageURL() (string, bool) {
	img := t.sel.Find("img[src]").First()
	if img.Length() == 0 {
		return "", false
	}
	src, _ := img.Attr("src")
	src = strings.TrimSpace(src)
	if src == "" {
		return "", false
	}
	resolved := t.doc.resolve(src)
	return resolved, resolved != ""
}
