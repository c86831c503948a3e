// Package config provides configuration structures and utilities for wikitree.
// It defines crawl settings (height, workers, timeouts), the optional
// .wikitree configuration file with per-host headers and article layout
// overrides, and report output preferences.
package config
