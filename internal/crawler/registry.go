package crawler

import (
	"net/url"
	"sort"
	"strings"
	"sync"
)

// Registry is the set of article URLs admitted into one crawl.
// It is safe for concurrent use.
type Registry struct {
	// mutex guards urls. It is held for a single check-and-insert only.
	mutex sync.Mutex

	urls map[string]struct{}
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		urls: make(map[string]struct{}),
	}
}

// Reserve admits pageURL if it has not been admitted before.
// It returns false if the URL is already present. Check and insert happen
// under one lock, so of several concurrent callers exactly one wins.
func (r *Registry) Reserve(pageURL string) bool {
	key := NormalizeURL(pageURL)

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.urls[key]; ok {
		return false
	}
	r.urls[key] = struct{}{}
	return true
}

// Contains reports whether pageURL has been admitted.
func (r *Registry) Contains(pageURL string) bool {
	key := NormalizeURL(pageURL)

	r.mutex.Lock()
	defer r.mutex.Unlock()

	_, ok := r.urls[key]
	return ok
}

// Len returns the number of admitted URLs.
func (r *Registry) Len() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.urls)
}

// URLs returns the admitted URLs in sorted order.
func (r *Registry) URLs() []string {
	r.mutex.Lock()
	urls := make([]string, 0, len(r.urls))
	for u := range r.urls {
		urls = append(urls, u)
	}
	r.mutex.Unlock()

	sort.Strings(urls)
	return urls
}

// NormalizeURL returns the form of pageURL used for deduplication:
// fragment removed, scheme and host lower-cased, empty path replaced by "/".
// Unparsable input is returned unchanged.
func NormalizeURL(pageURL string) string {
	u, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil {
		return pageURL
	}

	u.Fragment = ""
	u.RawFragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}

	return u.String()
}
