package wikipage

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

const personPage = `<html><head><title>Ada Lovelace - Wikipedia</title></head>
<body>
<div id="mw-navigation"><a href="/wiki/Main_Page">Main page</a></div>
<div id="bodyContent">
<table class="infobox biography vcard">
  <tr><th colspan="2">Ada Lovelace</th></tr>
  <tr><td colspan="2"><img src="//upload.example.org/ada.jpg" alt="portrait"></td></tr>
  <tr><th>Born</th><td>Augusta Ada Byron<br>10 December 1815</td></tr>
  <tr><th>Died</th><td>27 November 1852</td></tr>
</table>
<p>Ada Lovelace was an English mathematician. She worked with Charles Babbage on the Analytical Engine.</p>
<p>   </p>
<p>Her father was Lord Byron.</p>
<a href="/wiki/Charles_Babbage#Life">Charles Babbage</a>
<a href="#cite-1">[1]</a>
<a href="javascript:void(0)">js</a>
<a href="mailto:ada@example.org">mail</a>
<a href="https://other.example.org/page">external</a>
</div>
</body></html>`

func mustParse(t *testing.T, content string) *Document {
	t.Helper()

	doc, err := ParseBytes("https://en.example.org/wiki/Ada_Lovelace", []byte(content))
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	return doc
}

// TestDocument tests document queries.
func TestDocument(t *testing.T) {
	t.Parallel()

	t.Run("extracts title and subject", func(t *testing.T) {
		t.Parallel()

		doc := mustParse(t, personPage)
		if doc.Title() != "Ada Lovelace - Wikipedia" {
			t.Errorf("unexpected title %q", doc.Title())
		}
		if doc.TitleSubject() != "Ada Lovelace" {
			t.Errorf("unexpected subject %q", doc.TitleSubject())
		}
	})

	t.Run("subject keeps hyphenated names", func(t *testing.T) {
		t.Parallel()

		doc := mustParse(t, `<html><head><title>Jean-Paul Sartre - Wikipedia</title></head></html>`)
		if doc.TitleSubject() != "Jean-Paul Sartre" {
			t.Errorf("unexpected subject %q", doc.TitleSubject())
		}
	})

	t.Run("subject without site name", func(t *testing.T) {
		t.Parallel()

		doc := mustParse(t, `<html><head><title>  Grace Hopper </title></head></html>`)
		if doc.TitleSubject() != "Grace Hopper" {
			t.Errorf("unexpected subject %q", doc.TitleSubject())
		}
	})

	t.Run("body links skip navigation and special links", func(t *testing.T) {
		t.Parallel()

		links := mustParse(t, personPage).BodyLinks()
		if len(links) != 2 {
			t.Fatalf("expected 2 links, got %d: %+v", len(links), links)
		}
		if links[0].Href != "/wiki/Charles_Babbage#Life" {
			t.Errorf("unexpected href %q", links[0].Href)
		}
		if links[0].URL != "https://en.example.org/wiki/Charles_Babbage" {
			t.Errorf("unexpected resolved URL %q", links[0].URL)
		}
		if links[0].Text != "Charles Babbage" {
			t.Errorf("unexpected text %q", links[0].Text)
		}
	})

	t.Run("body links fall back to body", func(t *testing.T) {
		t.Parallel()

		doc := mustParse(t, `<html><body><a href="/wiki/Grace_Hopper">Grace</a></body></html>`)
		if got := len(doc.BodyLinks()); got != 1 {
			t.Errorf("expected 1 link, got %d", got)
		}
	})

	t.Run("paragraphs skip blank ones", func(t *testing.T) {
		t.Parallel()

		paragraphs := mustParse(t, personPage).Paragraphs()
		if len(paragraphs) != 2 {
			t.Fatalf("expected 2 paragraphs, got %d", len(paragraphs))
		}
		if !strings.HasPrefix(paragraphs[0], "Ada Lovelace was") {
			t.Errorf("unexpected first paragraph %q", paragraphs[0])
		}
	})
}

// TestInfobox tests infobox lookup and table queries.
func TestInfobox(t *testing.T) {
	t.Parallel()

	t.Run("finds biography infobox", func(t *testing.T) {
		t.Parallel()

		box, ok := mustParse(t, personPage).Infobox(nil)
		if !ok {
			t.Fatal("expected infobox")
		}

		want := []string{"Ada Lovelace", "Born", "Died"}
		if got := box.HeaderTexts(); !reflect.DeepEqual(got, want) {
			t.Errorf("headers = %v, want %v", got, want)
		}
		if !box.HasHeader("Born") {
			t.Error("expected Born header")
		}
		if box.HasHeader("Spouse") {
			t.Error("did not expect Spouse header")
		}

		img, ok := box.ImageURL()
		if !ok {
			t.Fatal("expected image")
		}
		if img != "https://upload.example.org/ada.jpg" {
			t.Errorf("unexpected image URL %q", img)
		}
	})

	t.Run("rows split header and cells", func(t *testing.T) {
		t.Parallel()

		box, _ := mustParse(t, personPage).Infobox(nil)
		rows := box.Rows()
		if len(rows) != 4 {
			t.Fatalf("expected 4 rows, got %d", len(rows))
		}
		if rows[2].Header != "Born" || len(rows[2].Cells) != 1 {
			t.Errorf("unexpected born row %+v", rows[2])
		}
	})

	t.Run("falls back to vcard and plain infobox classes", func(t *testing.T) {
		t.Parallel()

		for _, class := range []string{"infobox vcard", "infobox"} {
			doc := mustParse(t, `<html><body><table class="`+class+`"><tr><th>Born</th></tr></table></body></html>`)
			if _, ok := doc.Infobox(nil); !ok {
				t.Errorf("expected infobox for class %q", class)
			}
		}
	})

	t.Run("custom classes", func(t *testing.T) {
		t.Parallel()

		doc := mustParse(t, `<html><body><table class="summary person"><tr><th>Born</th></tr></table></body></html>`)
		if _, ok := doc.Infobox(nil); ok {
			t.Error("did not expect default classes to match")
		}
		if _, ok := doc.Infobox([]string{"summary person"}); !ok {
			t.Error("expected custom classes to match")
		}
	})

	t.Run("no table", func(t *testing.T) {
		t.Parallel()

		doc := mustParse(t, `<html><body><p>Nothing here.</p></body></html>`)
		if _, ok := doc.Infobox(nil); ok {
			t.Error("expected no infobox")
		}
	})

	t.Run("table without image", func(t *testing.T) {
		t.Parallel()

		doc := mustParse(t, `<html><body><table class="infobox"><tr><th>Born</th></tr></table></body></html>`)
		box, _ := doc.Infobox(nil)
		if _, ok := box.ImageURL(); ok {
			t.Error("expected no image")
		}
	})
}

// TestStructuralMismatchError tests the error type.
func TestStructuralMismatchError(t *testing.T) {
	t.Parallel()

	var err error = &StructuralMismatchError{URL: "https://en.example.org/wiki/X", Element: "infobox"}
	if !errors.Is(err, ErrStructuralMismatch) {
		t.Error("expected errors.Is to match ErrStructuralMismatch")
	}
	if !strings.Contains(err.Error(), "missing infobox") {
		t.Errorf("unexpected message %q", err.Error())
	}
}
