package crawler

import (
	"context"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/nao1215/wikitree/internal/fetch"
	"github.com/nao1215/wikitree/internal/wikipage"
)

// DefaultArticlePrefix is the path prefix of article links.
const DefaultArticlePrefix = "/wiki/"

// DefaultBirthLabels are the infobox header texts that denote a birth fact.
var DefaultBirthLabels = []string{"Born"}

// RejectReason explains why a candidate link was not accepted.
// A rejection is ordinary filtering, not an error.
type RejectReason int

const (
	// RejectNone means the candidate was accepted.
	RejectNone RejectReason = iota

	// RejectNotArticle means the link does not point to an article.
	RejectNotArticle

	// RejectNotNameLink means the link target is not a two-token person name.
	RejectNotNameLink

	// RejectAlreadyVisited means the URL is already part of the tree.
	RejectAlreadyVisited

	// RejectKnownNonPerson means the page already failed the person test.
	RejectKnownNonPerson

	// RejectFetchFailed means the candidate page could not be retrieved.
	RejectFetchFailed

	// RejectNotPerson means the page has no biography infobox.
	RejectNotPerson
)

// String returns a short description of the reason.
func (r RejectReason) String() string {
	switch r {
	case RejectNone:
		return "accepted"
	case RejectNotArticle:
		return "not an article"
	case RejectNotNameLink:
		return "not a name link"
	case RejectAlreadyVisited:
		return "already visited"
	case RejectKnownNonPerson:
		return "known non-person"
	case RejectFetchFailed:
		return "fetch failed"
	case RejectNotPerson:
		return "not a person"
	default:
		return "unknown"
	}
}

// Verdict is the outcome of classifying one candidate link.
type Verdict struct {
	// URL is the candidate's article URL.
	URL string

	// Reason is RejectNone for an accepted candidate.
	Reason RejectReason

	// Document is the parsed candidate page. It is set for accepted
	// candidates so the page does not need to be fetched again.
	Document *wikipage.Document

	// Err is the fetch or structural error behind RejectFetchFailed and
	// RejectNotPerson.
	Err error
}

// Accepted reports whether the candidate passed every test.
func (v Verdict) Accepted() bool {
	return v.Reason == RejectNone
}

// Classifier decides whether a link is an eligible biography article.
type Classifier struct {
	fetcher        fetch.Fetcher
	articlePrefix  string
	infoboxClasses []string
	birthLabels    []string
}

// NewClassifier creates a Classifier. Empty arguments select the defaults.
func NewClassifier(fetcher fetch.Fetcher, articlePrefix string, infoboxClasses, birthLabels []string) *Classifier {
	if articlePrefix == "" {
		articlePrefix = DefaultArticlePrefix
	}
	if len(infoboxClasses) == 0 {
		infoboxClasses = wikipage.DefaultInfoboxClasses
	}
	if len(birthLabels) == 0 {
		birthLabels = DefaultBirthLabels
	}
	return &Classifier{
		fetcher:        fetcher,
		articlePrefix:  articlePrefix,
		infoboxClasses: infoboxClasses,
		birthLabels:    birthLabels,
	}
}

// Classify runs both tests on the candidate at pageURL and, if it passes,
// admits it into the crawl's registry.
//
// The order is: article prefix, name-link test, registry and non-person
// lookups (no network), fetch, person test, then Reserve. Only Reserve takes
// the registry lock, so two branches may fetch the same page at once but only
// one of them can admit it.
func (c *Classifier) Classify(ctx context.Context, cctx *CrawlContext, pageURL string) Verdict {
	verdict := Verdict{URL: pageURL}

	u, err := url.Parse(pageURL)
	if err != nil || !strings.HasPrefix(u.Path, c.articlePrefix) {
		return c.rejectWith(cctx, verdict, RejectNotArticle, err)
	}
	if !IsNameLink(u.Path) {
		return c.rejectWith(cctx, verdict, RejectNotNameLink, nil)
	}
	if cctx.Registry().Contains(pageURL) {
		return c.rejectWith(cctx, verdict, RejectAlreadyVisited, nil)
	}
	if cctx.isNonPerson(pageURL) {
		return c.rejectWith(cctx, verdict, RejectKnownNonPerson, nil)
	}

	doc, err := cctx.document(ctx, c.fetcher, pageURL)
	if err != nil {
		return c.rejectWith(cctx, verdict, RejectFetchFailed, err)
	}

	if err := c.CheckPerson(doc); err != nil {
		cctx.markNonPerson(pageURL)
		return c.rejectWith(cctx, verdict, RejectNotPerson, err)
	}

	if !cctx.Registry().Reserve(pageURL) {
		return c.rejectWith(cctx, verdict, RejectAlreadyVisited, nil)
	}

	verdict.Document = doc
	return verdict
}

// CheckPerson runs the person test on doc: an infobox must exist, contain a
// row whose header denotes a birth fact, and contain an image.
// It returns a *wikipage.StructuralMismatchError naming the missing element.
func (c *Classifier) CheckPerson(doc *wikipage.Document) error {
	box, ok := doc.Infobox(c.infoboxClasses)
	if !ok {
		return &wikipage.StructuralMismatchError{URL: doc.URL(), Element: "infobox"}
	}
	if !box.HasHeader(c.birthLabels...) {
		return &wikipage.StructuralMismatchError{URL: doc.URL(), Element: "birth row"}
	}
	if _, ok := box.ImageURL(); !ok {
		return &wikipage.StructuralMismatchError{URL: doc.URL(), Element: "portrait"}
	}
	return nil
}

// IsPerson reports whether doc passes the person test.
func (c *Classifier) IsPerson(doc *wikipage.Document) bool {
	return c.CheckPerson(doc) == nil
}

// portrait returns the display name and infobox image of a page that is
// treated as a person page. Only title, infobox and image are required.
func (c *Classifier) portrait(doc *wikipage.Document) (string, string, error) {
	name := doc.TitleSubject()
	if name == "" {
		return "", "", &wikipage.StructuralMismatchError{URL: doc.URL(), Element: "title"}
	}
	box, ok := doc.Infobox(c.infoboxClasses)
	if !ok {
		return "", "", &wikipage.StructuralMismatchError{URL: doc.URL(), Element: "infobox"}
	}
	imageURL, ok := box.ImageURL()
	if !ok {
		return "", "", &wikipage.StructuralMismatchError{URL: doc.URL(), Element: "portrait"}
	}
	return name, imageURL, nil
}

func (c *Classifier) rejectWith(cctx *CrawlContext, v Verdict, reason RejectReason, err error) Verdict {
	cctx.reject(reason)
	v.Reason = reason
	v.Err = err
	return v
}

// IsNameLink reports whether the last segment of an article path looks like
// a person's name: exactly two underscore-separated tokens, each starting
// with an upper-case letter. "/wiki/John_Smith" passes; "/wiki/Prince",
// "/wiki/john_smith" and "/wiki/Mary_Jane_Watson" do not.
func IsNameLink(path string) bool {
	tokens := nameTokens(path)
	if len(tokens) != 2 {
		return false
	}
	for _, token := range tokens {
		r, _ := utf8.DecodeRuneInString(token)
		if r == utf8.RuneError || !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

// NameFromPath returns the person name encoded in an article path,
// e.g. "/wiki/Ada_Lovelace" -> "Ada Lovelace".
func NameFromPath(path string) string {
	return strings.Join(nameTokens(path), " ")
}

func nameTokens(path string) []string {
	segment := path
	if i := strings.LastIndex(segment, "/"); i >= 0 {
		segment = segment[i+1:]
	}
	if unescaped, err := url.PathUnescape(segment); err == nil {
		segment = unescaped
	}
	if segment == "" {
		return nil
	}
	return strings.Split(segment, "_")
}
