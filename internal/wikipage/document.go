package wikipage

import (
	"bytes"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// DefaultInfoboxClasses are the class lists that identify a biography
// infobox, most specific first. Any table with the "infobox" class is used
// as a last resort.
var DefaultInfoboxClasses = []string{
	"infobox biography vcard",
	"infobox vcard",
}

// titleSeparators split a page title into its subject and the site name.
var titleSeparators = []string{" - ", " – ", " — ", " | "}

// Document is a parsed article page.
type Document struct {
	// base is the page URL, used to resolve relative links and image sources.
	base *url.URL

	// doc is the queryable document.
	doc *goquery.Document
}

// Link is an anchor found in the body content.
type Link struct {
	// Href is the raw href attribute, e.g. "/wiki/John_Smith".
	Href string

	// URL is Href resolved against the page URL, without fragment.
	URL string

	// Text is the anchor text.
	Text string
}

// Parse parses HTML content read from r. pageURL is the address the content
// was fetched from.
func Parse(pageURL string, r io.Reader) (*Document, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}

	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	return &Document{
		base: base,
		doc:  goquery.NewDocumentFromNode(root),
	}, nil
}

// ParseBytes parses HTML content held in memory.
func ParseBytes(pageURL string, content []byte) (*Document, error) {
	return Parse(pageURL, bytes.NewReader(content))
}

// URL returns the page URL.
func (d *Document) URL() string {
	return d.base.String()
}

// Title returns the trimmed text of the <title> element.
func (d *Document) Title() string {
	return strings.TrimSpace(d.doc.Find("title").First().Text())
}

// TitleSubject returns the subject portion of the title, i.e. the title
// without the trailing site name ("Ada Lovelace - Wikipedia" -> "Ada Lovelace").
func (d *Document) TitleSubject() string {
	title := d.Title()
	cut := -1
	for _, sep := range titleSeparators {
		if i := strings.LastIndex(title, sep); i > cut {
			cut = i
		}
	}
	if cut > 0 {
		title = title[:cut]
	}
	return strings.TrimSpace(title)
}

// Infobox returns the first table matching one of the given class lists,
// falling back to any table with the "infobox" class.
// A nil or empty classes slice uses DefaultInfoboxClasses.
func (d *Document) Infobox(classes []string) (*Table, bool) {
	if len(classes) == 0 {
		classes = DefaultInfoboxClasses
	}

	for _, class := range classes {
		if sel := d.doc.Find(classSelector(class)).First(); sel.Length() > 0 {
			return &Table{doc: d, sel: sel}, true
		}
	}

	if sel := d.doc.Find("table.infobox").First(); sel.Length() > 0 {
		return &Table{doc: d, sel: sel}, true
	}

	return nil, false
}

// BodyLinks returns the anchors inside the main body content in document
// order. If the page has no #bodyContent region the whole body is used.
// Fragment-only, javascript: and mailto: links are skipped.
func (d *Document) BodyLinks() []Link {
	region := d.doc.Find("#bodyContent").First()
	if region.Length() == 0 {
		region = d.doc.Find("body").First()
	}

	links := make([]Link, 0)
	region.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if skipHref(href) {
			return
		}
		resolved := d.resolve(href)
		if resolved == "" {
			return
		}
		links = append(links, Link{
			Href: href,
			URL:  resolved,
			Text: strings.TrimSpace(a.Text()),
		})
	})

	return links
}

// Paragraphs returns the text of every <p> element in document order.
func (d *Document) Paragraphs() []string {
	paragraphs := make([]string, 0)
	d.doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		if text := strings.TrimSpace(p.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	return paragraphs
}

// resolve resolves href against the page URL and drops the fragment.
// It returns an empty string if href cannot be parsed.
func (d *Document) resolve(href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	u := d.base.ResolveReference(ref)
	u.Fragment = ""
	return u.String()
}

// skipHref reports whether an href can never point to an article.
func skipHref(href string) bool {
	if href == "" || strings.HasPrefix(href, "#") {
		return true
	}
	lower := strings.ToLower(href)
	for _, prefix := range []string{"javascript:", "mailto:", "tel:", "data:"} {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// classSelector turns "infobox biography vcard" into "table.infobox.biography.vcard".
func classSelector(classes string) string {
	return "table." + strings.Join(strings.Fields(classes), ".")
}
