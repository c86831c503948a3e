package crawler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/nao1215/wikitree/internal/fetch"
)

// fakeWiki serves article pages from memory and counts requests per path.
type fakeWiki struct {
	server *httptest.Server

	mutex sync.Mutex
	pages map[string]string
	hits  map[string]int
}

func newFakeWiki(t *testing.T) *fakeWiki {
	t.Helper()

	w := &fakeWiki{
		pages: make(map[string]string),
		hits:  make(map[string]int),
	}
	w.server = httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		w.mutex.Lock()
		w.hits[r.URL.Path]++
		page, ok := w.pages[r.URL.Path]
		w.mutex.Unlock()

		if !ok {
			http.NotFound(rw, r)
			return
		}
		rw.Header().Set("Content-Type", "text/html")
		_, _ = rw.Write([]byte(page)) //nolint:errcheck
	}))
	t.Cleanup(w.server.Close)

	return w
}

func (w *fakeWiki) add(path, content string) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	w.pages[path] = content
}

// person adds a biography page at /wiki/<First_Last> linking to the given
// article slugs, with one paragraph per entry of prose.
func (w *fakeWiki) person(slug string, links []string, prose ...string) {
	w.add("/wiki/"+slug, personHTML(strings.ReplaceAll(slug, "_", " "), links, prose...))
}

func (w *fakeWiki) url(slug string) string {
	return w.server.URL + "/wiki/" + slug
}

func (w *fakeWiki) hitCount(slug string) int {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.hits["/wiki/"+slug]
}

func (w *fakeWiki) fetcher() fetch.Fetcher {
	return fetch.NewHTTPFetcher(w.server.Client())
}

func personHTML(name string, links []string, prose ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<html><head><title>%s - Wikipedia</title></head><body>`, name)
	b.WriteString(`<div id="bodyContent">`)
	fmt.Fprintf(&b, `<table class="infobox biography vcard"><tr><th>%s</th></tr>`, name)
	fmt.Fprintf(&b, `<tr><td><img src="/images/%s.jpg"></td></tr>`, strings.ReplaceAll(name, " ", "_"))
	b.WriteString(`<tr><th>Born</th><td>1 January 1900</td></tr></table>`)
	for _, p := range prose {
		fmt.Fprintf(&b, `<p>%s</p>`, p)
	}
	for _, link := range links {
		fmt.Fprintf(&b, `<a href="/wiki/%s">%s</a> `, link, strings.ReplaceAll(link, "_", " "))
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

const noBirthRowHTML = `<html><head><title>Grand Hotel - Wikipedia</title></head><body>
<table class="infobox vcard"><tr><th>Opened</th><td>1900</td></tr>
<tr><td><img src="/images/hotel.jpg"></td></tr></table></body></html>`

const noTableHTML = `<html><head><title>Green Park - Wikipedia</title></head><body>
<p>Green Park is a park.</p></body></html>`
