package images

import (
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
)

// attributionTags are the EXIF tags copied into an image's attribution.
var attributionTags = map[string]string{
	"Artist":           "artist",
	"XPAuthor":         "artist",
	"Copyright":        "copyright",
	"ImageDescription": "description",
	"DateTimeOriginal": "taken",
	"Make":             "make",
	"Model":            "model",
}

// ReadAttribution returns the credit-related EXIF fields embedded in an
// image, keyed by "artist", "copyright", "description", "taken", "make" and
// "model". Images without EXIF data (most PNG and SVG portraits) yield nil.
func ReadAttribution(data []byte) map[string]string {
	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil {
		return nil
	}

	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return nil
	}

	return attributionFromTags(entries)
}

// attributionFromTags keeps the first non-empty value of every attribution
// tag.
func attributionFromTags(entries []exif.ExifTag) map[string]string {
	var attr map[string]string
	for _, entry := range entries {
		key, ok := attributionTags[entry.TagName]
		if !ok {
			continue
		}
		value := strings.TrimSpace(strings.Trim(entry.Formatted, "[]\x00"))
		if value == "" {
			continue
		}
		if attr == nil {
			attr = make(map[string]string)
		}
		if _, seen := attr[key]; !seen {
			attr[key] = value
		}
	}
	return attr
}
