package crawler

import (
	"context"
	"errors"
	"testing"

	"github.com/nao1215/wikitree/internal/fetch"
	"github.com/nao1215/wikitree/internal/model"
	"github.com/nao1215/wikitree/internal/wikipage"
)

// TestIsNameLink tests the syntactic name-link test.
func TestIsNameLink(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"first and last name", "Article/John_Smith", true},
		{"single token", "Article/Prince", false},
		{"lowercase", "Article/john_smith", false},
		{"lowercase last name", "Article/John_smith", false},
		{"three tokens", "Article/Mary_Jane_Watson", false},
		{"article prefix", "/wiki/Ada_Lovelace", true},
		{"non-ASCII capital", "/wiki/Émile_Zola", true},
		{"percent-encoded", "/wiki/%C3%89mile_Zola", true},
		{"trailing underscore", "/wiki/John_", false},
		{"empty", "", false},
		{"digit start", "/wiki/2001_Odyssey", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := IsNameLink(tt.path); got != tt.want {
				t.Errorf("IsNameLink(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

// TestNameFromPath tests name derivation from article paths.
func TestNameFromPath(t *testing.T) {
	t.Parallel()

	if got := NameFromPath("https://x.org/wiki/Ada_Lovelace"); got != "Ada Lovelace" {
		t.Errorf("unexpected name %q", got)
	}
	if got := NameFromPath("/wiki/%C3%89mile_Zola"); got != "Émile Zola" {
		t.Errorf("unexpected name %q", got)
	}
}

// TestRejectReasonString tests reason descriptions.
func TestRejectReasonString(t *testing.T) {
	t.Parallel()

	if RejectNotPerson.String() != "not a person" {
		t.Errorf("unexpected string %q", RejectNotPerson.String())
	}
	if RejectReason(99).String() != "unknown" {
		t.Errorf("unexpected string %q", RejectReason(99).String())
	}
}

// TestClassifier tests candidate classification.
func TestClassifier(t *testing.T) {
	t.Parallel()

	t.Run("accepts a person page and admits it", func(t *testing.T) {
		t.Parallel()

		wiki := newFakeWiki(t)
		wiki.person("Ada_Lovelace", nil)
		cctx := NewCrawlContext(model.NewCrawlJob(wiki.url("Ada_Lovelace"), 1))
		c := NewClassifier(wiki.fetcher(), "", nil, nil)

		v := c.Classify(context.Background(), cctx, wiki.url("Ada_Lovelace"))
		if !v.Accepted() {
			t.Fatalf("expected acceptance, got %s (%v)", v.Reason, v.Err)
		}
		if v.Document == nil {
			t.Fatal("expected parsed document")
		}
		if !cctx.Registry().Contains(wiki.url("Ada_Lovelace")) {
			t.Error("expected URL in registry")
		}
	})

	t.Run("rejects infobox without birth row", func(t *testing.T) {
		t.Parallel()

		wiki := newFakeWiki(t)
		wiki.add("/wiki/Grand_Hotel", noBirthRowHTML)
		cctx := NewCrawlContext(model.NewCrawlJob(wiki.url("Root_Page"), 1))
		c := NewClassifier(wiki.fetcher(), "", nil, nil)

		v := c.Classify(context.Background(), cctx, wiki.url("Grand_Hotel"))
		if v.Reason != RejectNotPerson {
			t.Fatalf("expected %s, got %s", RejectNotPerson, v.Reason)
		}
		var mismatch *wikipage.StructuralMismatchError
		if !errors.As(v.Err, &mismatch) || mismatch.Element != "birth row" {
			t.Errorf("unexpected error %v", v.Err)
		}
		if cctx.Registry().Contains(wiki.url("Grand_Hotel")) {
			t.Error("rejected URL must not be admitted")
		}
	})

	t.Run("rejects page without table", func(t *testing.T) {
		t.Parallel()

		wiki := newFakeWiki(t)
		wiki.add("/wiki/Green_Park", noTableHTML)
		cctx := NewCrawlContext(model.NewCrawlJob(wiki.url("Root_Page"), 1))
		c := NewClassifier(wiki.fetcher(), "", nil, nil)

		v := c.Classify(context.Background(), cctx, wiki.url("Green_Park"))
		if v.Reason != RejectNotPerson {
			t.Fatalf("expected %s, got %s", RejectNotPerson, v.Reason)
		}
		if !errors.Is(v.Err, wikipage.ErrStructuralMismatch) {
			t.Errorf("expected structural mismatch, got %v", v.Err)
		}
	})

	t.Run("known non-person is not fetched again", func(t *testing.T) {
		t.Parallel()

		wiki := newFakeWiki(t)
		wiki.add("/wiki/Green_Park", noTableHTML)
		cctx := NewCrawlContext(model.NewCrawlJob(wiki.url("Root_Page"), 1))
		c := NewClassifier(wiki.fetcher(), "", nil, nil)

		c.Classify(context.Background(), cctx, wiki.url("Green_Park"))
		v := c.Classify(context.Background(), cctx, wiki.url("Green_Park"))
		if v.Reason != RejectKnownNonPerson {
			t.Errorf("expected %s, got %s", RejectKnownNonPerson, v.Reason)
		}
		if hits := wiki.hitCount("Green_Park"); hits != 1 {
			t.Errorf("expected 1 fetch, got %d", hits)
		}
	})

	t.Run("name-link rejection does not fetch", func(t *testing.T) {
		t.Parallel()

		wiki := newFakeWiki(t)
		wiki.add("/wiki/Prince", personHTML("Prince", nil))
		cctx := NewCrawlContext(model.NewCrawlJob(wiki.url("Root_Page"), 1))
		c := NewClassifier(wiki.fetcher(), "", nil, nil)

		v := c.Classify(context.Background(), cctx, wiki.url("Prince"))
		if v.Reason != RejectNotNameLink {
			t.Errorf("expected %s, got %s", RejectNotNameLink, v.Reason)
		}
		if hits := wiki.hitCount("Prince"); hits != 0 {
			t.Errorf("expected no fetch, got %d", hits)
		}
	})

	t.Run("link outside articles", func(t *testing.T) {
		t.Parallel()

		cctx := NewCrawlContext(model.NewCrawlJob("https://x.org/wiki/Root_Page", 1))
		c := NewClassifier(fetch.FetcherFunc(func(context.Context, string) ([]byte, error) {
			t.Error("unexpected fetch")
			return nil, nil
		}), "", nil, nil)

		v := c.Classify(context.Background(), cctx, "https://x.org/talk/John_Smith")
		if v.Reason != RejectNotArticle {
			t.Errorf("expected %s, got %s", RejectNotArticle, v.Reason)
		}
	})

	t.Run("fetch failure is a rejection", func(t *testing.T) {
		t.Parallel()

		wiki := newFakeWiki(t)
		cctx := NewCrawlContext(model.NewCrawlJob(wiki.url("Root_Page"), 1))
		c := NewClassifier(wiki.fetcher(), "", nil, nil)

		v := c.Classify(context.Background(), cctx, wiki.url("Missing_Person"))
		if v.Reason != RejectFetchFailed {
			t.Fatalf("expected %s, got %s", RejectFetchFailed, v.Reason)
		}
		if !errors.Is(v.Err, fetch.ErrFetch) {
			t.Errorf("expected fetch error, got %v", v.Err)
		}
		if cctx.Rejected() != 1 {
			t.Errorf("expected 1 rejection, got %d", cctx.Rejected())
		}
	})

	t.Run("already visited", func(t *testing.T) {
		t.Parallel()

		wiki := newFakeWiki(t)
		wiki.person("Ada_Lovelace", nil)
		cctx := NewCrawlContext(model.NewCrawlJob(wiki.url("Ada_Lovelace"), 1))
		cctx.Registry().Reserve(wiki.url("Ada_Lovelace"))
		c := NewClassifier(wiki.fetcher(), "", nil, nil)

		v := c.Classify(context.Background(), cctx, wiki.url("Ada_Lovelace"))
		if v.Reason != RejectAlreadyVisited {
			t.Errorf("expected %s, got %s", RejectAlreadyVisited, v.Reason)
		}
		if hits := wiki.hitCount("Ada_Lovelace"); hits != 0 {
			t.Errorf("expected no fetch, got %d", hits)
		}
	})

	t.Run("custom birth labels", func(t *testing.T) {
		t.Parallel()

		wiki := newFakeWiki(t)
		wiki.person("Ada_Lovelace", nil)
		cctx := NewCrawlContext(model.NewCrawlJob(wiki.url("Root_Page"), 1))
		c := NewClassifier(wiki.fetcher(), "", nil, []string{"Geboren"})

		v := c.Classify(context.Background(), cctx, wiki.url("Ada_Lovelace"))
		if v.Reason != RejectNotPerson {
			t.Errorf("expected %s, got %s", RejectNotPerson, v.Reason)
		}
	})
}
