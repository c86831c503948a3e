// Package images downloads the portraits of a finished tree.
//
// Downloading is the second phase of a crawl: it starts only after the tree
// has been built and works from the list of (image URL, local path) tasks the
// builder collected. Downloads run on a bounded worker pool; a failed image is
// recorded in its result and never stops the other downloads.
//
// Files are written to a temporary file in the destination directory and
// renamed into place, so a reader never sees a half-written image. Lock
// takes an advisory lock on the directory to keep two processes from writing
// to it at the same time.
//
// After a portrait is saved its EXIF data, if any, is read for credit
// fields (artist, copyright and the like) that the reports can show.
package images
