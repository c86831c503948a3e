package model

import (
	"time"

	"github.com/google/uuid"
)

// CrawlJob holds the immutable parameters of one crawl.
// A job owns exactly one dedup registry and produces exactly one tree;
// neither is shared with other jobs.
type CrawlJob struct {
	// ID identifies the job in logs and in the export store.
	ID string `json:"id"`

	// RootURL is the biography article the tree is rooted at.
	RootURL string `json:"root_url"`

	// Height is the maximum depth of the tree. 0 means the root only.
	Height int `json:"height"`
}

// NewCrawlJob creates a CrawlJob with a fresh random ID.
func NewCrawlJob(rootURL string, height int) CrawlJob {
	return CrawlJob{
		ID:      uuid.NewString(),
		RootURL: rootURL,
		Height:  height,
	}
}

// ImageTask is a single portrait download.
type ImageTask struct {
	// NodeURL is the article URL of the node the image belongs to.
	NodeURL string `json:"node_url"`

	// URL is the remote image location.
	URL string `json:"url"`

	// Path is the local destination.
	Path string `json:"path"`
}

// ImageResult is the outcome of one ImageTask.
type ImageResult struct {
	ImageTask

	// Bytes is the number of bytes written.
	Bytes int64 `json:"bytes"`

	// Attribution holds credit fields read from the image's EXIF data,
	// such as "artist" and "copyright".
	Attribution map[string]string `json:"attribution,omitempty"`

	// Err is the failure, if any. A failed image does not fail the job.
	Err error `json:"-"`

	// ErrorMessage is Err's text, kept for JSON and database output.
	ErrorMessage string `json:"error,omitempty"`
}

// OK returns true if the image was written successfully.
func (r ImageResult) OK() bool {
	return r.Err == nil && r.ErrorMessage == ""
}

// CrawlReport collects everything a job produced.
type CrawlReport struct {
	// Job is the crawl's parameters.
	Job CrawlJob `json:"job"`

	// Root is the finished tree. Nil when the root could not be crawled.
	Root *PersonNode `json:"root,omitempty"`

	// Sequences is the serialized tree.
	Sequences Sequences `json:"sequences"`

	// ImageTasks are the downloads collected while the tree was built.
	// They are kept so the image phase can run, or be repeated, on its own.
	ImageTasks []ImageTask `json:"-"`

	// Images contains one result per downloaded image.
	Images []ImageResult `json:"images,omitempty"`

	// Rejected counts candidate links that failed classification.
	Rejected int `json:"rejected"`

	// StartedAt is when the job began.
	StartedAt time.Time `json:"started_at"`

	// Duration is how long the job took.
	Duration time.Duration `json:"duration"`

	// Steps lists the pipeline steps that ran.
	Steps []string `json:"steps,omitempty"`

	// Error is the fatal error that stopped the job, if any.
	Error error `json:"-"`

	// ErrorMessage is Error's text.
	ErrorMessage string `json:"error,omitempty"`
}

// NewCrawlReport creates an empty report for the given job.
func NewCrawlReport(job CrawlJob) *CrawlReport {
	return &CrawlReport{
		Job:       job,
		Images:    make([]ImageResult, 0),
		Steps:     make([]string, 0),
		StartedAt: time.Now(),
	}
}

// NodeCount returns the number of nodes in the tree.
func (r *CrawlReport) NodeCount() int {
	return CountNodes(r.Root)
}

// Failed returns true if the job stopped with a fatal error.
func (r *CrawlReport) Failed() bool {
	return r.Error != nil || r.ErrorMessage != ""
}

// ImageAvailable reports whether the portrait of the node with the given
// article URL was written to disk.
func (r *CrawlReport) ImageAvailable(nodeURL string) bool {
	for _, img := range r.Images {
		if img.NodeURL == nodeURL {
			return img.OK()
		}
	}
	return false
}

// FailedImages returns the image results that did not succeed.
func (r *CrawlReport) FailedImages() []ImageResult {
	failed := make([]ImageResult, 0)
	for _, img := range r.Images {
		if !img.OK() {
			failed = append(failed, img)
		}
	}
	return failed
}
