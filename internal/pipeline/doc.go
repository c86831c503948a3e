// Package pipeline runs a crawl job as a sequence of steps.
//
// A job goes through two phases. BuildTreeStep builds the immutable tree and
// collects the image tasks; FetchImagesStep then downloads the portraits.
// SerializeStep flattens the tree for the presentation layer and ExportStep
// optionally stores the finished report. Each step receives the job's
// CrawlReport and adds its results to it.
//
// A failed tree build stops the pipeline, since there is nothing to download
// or serialize without a tree. Failed images are recorded in the report and
// do not stop it.
//
// BatchProcessor runs several jobs concurrently with errgroup, each with its
// own pipeline and crawl state.
package pipeline
