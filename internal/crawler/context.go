package crawler

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/nao1215/wikitree/internal/fetch"
	"github.com/nao1215/wikitree/internal/model"
	"github.com/nao1215/wikitree/internal/wikipage"
)

// CrawlContext is the state of one crawl, shared by all of its branches.
// Every job gets its own CrawlContext, so independent crawls never see each
// other's registry or image tasks.
type CrawlContext struct {
	// Job is the crawl's parameters.
	Job model.CrawlJob

	registry *Registry

	// group coalesces concurrent fetches of the same page.
	group singleflight.Group

	// mutex guards the fields below.
	mutex sync.Mutex

	// pending are the image tasks of every node created so far.
	pending []model.ImageTask

	// nonPerson holds URLs that were fetched and failed the person test.
	nonPerson map[string]struct{}

	// rejected counts classification rejections by reason.
	rejected map[RejectReason]int
}

// NewCrawlContext creates the context for job.
func NewCrawlContext(job model.CrawlJob) *CrawlContext {
	return &CrawlContext{
		Job:       job,
		registry:  NewRegistry(),
		pending:   make([]model.ImageTask, 0),
		nonPerson: make(map[string]struct{}),
		rejected:  make(map[RejectReason]int),
	}
}

// Registry returns the crawl's dedup registry.
func (c *CrawlContext) Registry() *Registry {
	return c.registry
}

// ImageTasks returns a copy of the image tasks collected during the build,
// in the order the nodes were created.
func (c *CrawlContext) ImageTasks() []model.ImageTask {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	tasks := make([]model.ImageTask, len(c.pending))
	copy(tasks, c.pending)
	return tasks
}

// Rejected returns the total number of rejected candidates.
func (c *CrawlContext) Rejected() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	total := 0
	for _, n := range c.rejected {
		total += n
	}
	return total
}

// Rejections returns the number of rejected candidates per reason.
func (c *CrawlContext) Rejections() map[RejectReason]int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	counts := make(map[RejectReason]int, len(c.rejected))
	for reason, n := range c.rejected {
		counts[reason] = n
	}
	return counts
}

func (c *CrawlContext) addImageTask(task model.ImageTask) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.pending = append(c.pending, task)
}

func (c *CrawlContext) reject(reason RejectReason) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.rejected[reason]++
}

func (c *CrawlContext) markNonPerson(pageURL string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.nonPerson[NormalizeURL(pageURL)] = struct{}{}
}

func (c *CrawlContext) isNonPerson(pageURL string) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	_, ok := c.nonPerson[NormalizeURL(pageURL)]
	return ok
}

// document fetches and parses pageURL. Callers asking for the same URL at the
// same time share one request and one parsed document.
func (c *CrawlContext) document(ctx context.Context, fetcher fetch.Fetcher, pageURL string) (*wikipage.Document, error) {
	v, err, _ := c.group.Do(NormalizeURL(pageURL), func() (any, error) {
		body, err := fetcher.Fetch(ctx, pageURL)
		if err != nil {
			return nil, err
		}
		return wikipage.ParseBytes(pageURL, body)
	})
	if err != nil {
		return nil, err
	}
	return v.(*wikipage.Document), nil //nolint:forcetypeassert // only documents are stored
}
