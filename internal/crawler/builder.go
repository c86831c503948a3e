package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/wikitree/internal/fetch"
	"github.com/nao1215/wikitree/internal/images"
	"github.com/nao1215/wikitree/internal/model"
	"github.com/nao1215/wikitree/internal/wikipage"
)

// ErrInvalidHeight is returned by Build for a negative height.
var ErrInvalidHeight = errors.New("height must not be negative")

// Builder builds relationship trees.
// A Builder holds no per-crawl state and can run several Builds at once.
type Builder struct {
	fetcher fetch.Fetcher

	// articlePrefix is the path prefix of article links.
	articlePrefix string

	// infoboxClasses identify the biography infobox.
	infoboxClasses []string

	// birthLabels are infobox headers that denote a birth fact.
	birthLabels []string

	// imageDir is where portraits will be written.
	imageDir string

	logger *slog.Logger

	classifier *Classifier
}

// Option configures a Builder.
type Option func(*Builder)

// WithArticlePrefix sets the path prefix of article links. Default "/wiki/".
func WithArticlePrefix(prefix string) Option {
	return func(b *Builder) {
		b.articlePrefix = prefix
	}
}

// WithInfoboxClasses sets the class lists that identify a biography infobox.
func WithInfoboxClasses(classes []string) Option {
	return func(b *Builder) {
		b.infoboxClasses = classes
	}
}

// WithBirthLabels sets the infobox header texts that denote a birth fact.
func WithBirthLabels(labels []string) Option {
	return func(b *Builder) {
		b.birthLabels = labels
	}
}

// WithImageDir sets the directory image paths are computed for.
func WithImageDir(dir string) Option {
	return func(b *Builder) {
		b.imageDir = dir
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// NewBuilder creates a Builder that retrieves pages with fetcher.
func NewBuilder(fetcher fetch.Fetcher, opts ...Option) *Builder {
	b := &Builder{
		fetcher:       fetcher,
		articlePrefix: DefaultArticlePrefix,
		imageDir:      "images",
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		opt(b)
	}

	b.classifier = NewClassifier(fetcher, b.articlePrefix, b.infoboxClasses, b.birthLabels)
	return b
}

// Classifier returns the classifier the builder uses for candidate links.
func (b *Builder) Classifier() *Classifier {
	return b.classifier
}

// Build crawls the tree for job.
//
// The root page must be fetchable and must have a title, an infobox and an
// infobox image; otherwise Build fails and no tree is returned. Failures on
// candidate pages only reject that candidate. Cancelling ctx aborts the build.
//
// The returned CrawlContext holds the registry and the image tasks of every
// node. No image is downloaded here.
func (b *Builder) Build(ctx context.Context, job model.CrawlJob) (*model.PersonNode, *CrawlContext, error) {
	if job.Height < 0 {
		return nil, nil, fmt.Errorf("%w: %d", ErrInvalidHeight, job.Height)
	}

	cctx := NewCrawlContext(job)
	rootURL := NormalizeURL(job.RootURL)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	doc, err := cctx.document(ctx, b.fetcher, rootURL)
	if err != nil {
		return nil, cctx, fmt.Errorf("failed to fetch root article: %w", err)
	}
	if _, _, err := b.classifier.portrait(doc); err != nil {
		return nil, cctx, fmt.Errorf("root article is not a person page: %w", err)
	}
	cctx.Registry().Reserve(rootURL)

	root, err := b.buildNode(ctx, cctx, doc, job.Height, "", false)
	if err != nil {
		return nil, cctx, err
	}

	b.logger.Debug("tree built",
		"job", job.ID,
		"root", rootURL,
		"nodes", model.CountNodes(root),
		"rejected", cctx.Rejected(),
	)

	return root, cctx, nil
}

// child is an accepted candidate waiting to be built.
type child struct {
	doc      *wikipage.Document
	intro    string
	hasIntro bool
}

// buildNode builds the subtree of the person on doc. The node is assembled
// once, after all of its children exist.
func (b *Builder) buildNode(ctx context.Context, cctx *CrawlContext, doc *wikipage.Document, remaining int, intro string, hasIntro bool) (*model.PersonNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name, imageURL, err := b.classifier.portrait(doc)
	if err != nil {
		// Accepted candidates passed the person test, so only the title can
		// be missing here. Fall back to the link's name.
		name = NameFromPath(doc.URL())
	}

	imagePath := ""
	if imageURL != "" {
		imagePath = images.Path(b.imageDir, name, imageURL)
		cctx.addImageTask(model.ImageTask{
			NodeURL: doc.URL(),
			URL:     imageURL,
			Path:    imagePath,
		})
	}

	var children []*model.PersonNode
	if remaining > 0 {
		children, err = b.buildChildren(ctx, cctx, doc, remaining)
		if err != nil {
			return nil, err
		}
	}

	return &model.PersonNode{
		URL:           doc.URL(),
		Name:          name,
		ImageURL:      imageURL,
		ImagePath:     imagePath,
		IntroSentence: intro,
		HasIntro:      hasIntro,
		Children:      children,
	}, nil
}

// buildChildren selects up to two children from doc and builds their
// subtrees in parallel. The result keeps acceptance order.
func (b *Builder) buildChildren(ctx context.Context, cctx *CrawlContext, doc *wikipage.Document, remaining int) ([]*model.PersonNode, error) {
	accepted, err := b.selectChildren(ctx, cctx, doc)
	if err != nil {
		return nil, err
	}
	if len(accepted) == 0 {
		return nil, nil
	}

	children := make([]*model.PersonNode, len(accepted))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range accepted {
		g.Go(func() error {
			node, err := b.buildNode(gctx, cctx, c.doc, remaining-1, c.intro, c.hasIntro)
			if err != nil {
				return err
			}
			children[i] = node
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return children, nil
}

// selectChildren classifies doc's body links in document order until
// MaxChildren candidates are accepted. The intro sentence of every accepted
// candidate is taken from doc's paragraphs.
func (b *Builder) selectChildren(ctx context.Context, cctx *CrawlContext, doc *wikipage.Document) ([]child, error) {
	host := hostOf(doc.URL())
	var paragraphs []string
	accepted := make([]child, 0, model.MaxChildren)

	for _, link := range doc.BodyLinks() {
		if len(accepted) == model.MaxChildren {
			break
		}
		if !strings.EqualFold(hostOf(link.URL), host) {
			continue
		}

		verdict := b.classifier.Classify(ctx, cctx, link.URL)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !verdict.Accepted() {
			b.logger.Debug("candidate rejected",
				"url", link.URL,
				"reason", verdict.Reason.String(),
				"error", verdict.Err,
			)
			continue
		}

		if paragraphs == nil {
			paragraphs = doc.Paragraphs()
		}
		name := verdict.Document.TitleSubject()
		if name == "" {
			name = NameFromPath(link.URL)
		}
		intro, ok := ExtractSentence(paragraphs, name)
		if !ok {
			intro, ok = ExtractSentence(paragraphs, NameFromPath(link.URL))
		}

		accepted = append(accepted, child{doc: verdict.Document, intro: intro, hasIntro: ok})
	}

	return accepted, nil
}

func hostOf(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	return u.Host
}
