// Package database exports finished crawl reports to SQLite.
//
// The export is an output sink only: a crawl never reads it back, so every
// run starts from an empty registry. The stored runs are listed and shown
// by the history command.
//
// Each report is stored as one row in the crawls table, holding the job
// parameters, summary counts and the report as JSON, plus one row per tree
// node in the nodes table (level-order position, level, name, image path,
// intro sentence and whether the image was saved).
//
// SQLite is provided by modernc.org/sqlite, a CGO-free driver.
package database
