// Package main provides the entry point for the wikitree CLI.
//
// wikitree starts at a biography article, follows links to other people's
// articles and builds a bounded tree of them. Each person's portrait is
// downloaded and the sentence introducing them is kept.
//
// Usage:
//
//	wikitree crawl <article-url>
//	wikitree crawl --height 3 <article-url> <article-url>
//
// See --help for all available options.
package main

func main() {
	Execute()
}
