// Package crawler builds the relationship tree of biography articles.
//
// # Architecture
//
// A crawl starts from a root article and expands it level by level. Every
// person's page is scanned for links that look like person names; each
// candidate is fetched and checked for a biography infobox, and the first two
// that pass become the person's children. Sibling subtrees are built in
// parallel.
//
// # Components
//
//   - Builder: recursive tree construction (Build)
//   - Classifier: the two-stage name-link and person test
//   - Registry: URLs admitted into the current crawl
//   - CrawlContext: per-job state shared by all branches
//   - ExtractSentence: the intro sentence of a child in its parent's prose
//
// # Deduplication
//
// Every admitted URL goes through Registry.Reserve, an atomic check-and-insert.
// The lock covers only that decision; fetching and parsing happen outside it.
// Concurrent fetches of the same candidate are coalesced so a page is
// requested once even when two branches reach it at the same time.
//
// # Usage
//
//	builder := crawler.NewBuilder(fetcher, crawler.WithImageDir("images"))
//	root, cctx, err := builder.Build(ctx, model.NewCrawlJob(url, 2))
//
// The builder never downloads images. The tasks it collects are available
// from CrawlContext.ImageTasks once Build returns.
package crawler
