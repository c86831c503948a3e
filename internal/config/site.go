package config

import "github.com/nao1215/wikitree/internal/fetch"

// SiteConfig holds request settings for one encyclopedia host.
type SiteConfig struct {
	// Cookie is an HTTP cookie sent with every request to the host.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty" toml:"cookie,omitempty"`

	// Headers are custom HTTP headers sent with every request to the host.
	Headers map[string]string `yaml:"headers,omitempty" toml:"headers,omitempty"`
}

// ArticleConfig describes how articles are recognised on a mirror whose
// layout differs from the default.
type ArticleConfig struct {
	// Prefix is the path prefix of article links. Defaults to "/wiki/".
	Prefix string `yaml:"prefix,omitempty" toml:"prefix,omitempty"`

	// InfoboxClasses are tried in order when locating the infobox.
	InfoboxClasses []string `yaml:"infoboxClasses,omitempty" toml:"infoboxClasses,omitempty"`

	// BirthLabels are infobox row headers that mark a biography.
	BirthLabels []string `yaml:"birthLabels,omitempty" toml:"birthLabels,omitempty"`
}

// File represents the structure of the .wikitree configuration file.
type File struct {
	// Article overrides the article layout heuristics.
	Article ArticleConfig `yaml:"article,omitempty" toml:"article,omitempty"`

	// Defaults apply to every host unless overridden in Sites.
	Defaults SiteConfig `yaml:"defaults,omitempty" toml:"defaults,omitempty"`

	// Sites maps host names (e.g., "en.wikipedia.org") to their settings.
	Sites map[string]SiteConfig `yaml:"sites,omitempty" toml:"sites,omitempty"`
}

// NewFile returns an empty configuration file.
func NewFile() *File {
	return &File{Sites: make(map[string]SiteConfig)}
}

// GetSiteConfig returns the configuration for a host, merged over the defaults.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := SiteConfig{Cookie: cf.Defaults.Cookie}
	if len(cf.Defaults.Headers) > 0 {
		result.Headers = make(map[string]string, len(cf.Defaults.Headers))
		for k, v := range cf.Defaults.Headers {
			result.Headers[k] = v
		}
	}

	site, ok := cf.Sites[host]
	if !ok {
		return result
	}
	if site.Cookie != "" {
		result.Cookie = site.Cookie
	}
	if len(site.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string, len(site.Headers))
		}
		for k, v := range site.Headers {
			result.Headers[k] = v
		}
	}
	return result
}

// HostHeaders converts the file into the header sets used by the HTTP client.
func (cf *File) HostHeaders() (fetch.HostHeaders, map[string]fetch.HostHeaders) {
	defaults := fetch.HostHeaders{
		Cookie:  cf.Defaults.Cookie,
		Headers: cf.Defaults.Headers,
	}
	if len(cf.Sites) == 0 {
		return defaults, nil
	}
	hosts := make(map[string]fetch.HostHeaders, len(cf.Sites))
	for host, site := range cf.Sites {
		hosts[host] = fetch.HostHeaders{
			Cookie:  site.Cookie,
			Headers: site.Headers,
		}
	}
	return defaults, hosts
}
