// Package model defines the core data structures used throughout wikitree.
//
// This package contains the following main types:
//   - PersonNode: One biography article in the relationship tree
//   - CrawlJob: The immutable parameters of a single crawl
//   - Sequences: The level-order output consumed by the rendering layer
//   - ImageTask / ImageResult: Portrait downloads and their outcomes
//   - CrawlReport: Everything a finished job produced
//
// Models live in their own package because the crawler, images, pipeline,
// report and database packages all share them.
package model
