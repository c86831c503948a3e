package images

import (
	"testing"

	exif "github.com/dsoprea/go-exif/v3"
)

func TestReadAttribution(t *testing.T) {
	t.Parallel()

	t.Run("no exif data", func(t *testing.T) {
		t.Parallel()

		png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
		if got := ReadAttribution(png); got != nil {
			t.Errorf("expected nil attribution, got %v", got)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()

		if got := ReadAttribution(nil); got != nil {
			t.Errorf("expected nil attribution, got %v", got)
		}
	})
}

func TestAttributionFromTags(t *testing.T) {
	t.Parallel()

	entries := []exif.ExifTag{
		{TagName: "Artist", Formatted: "Antoine Claudet"},
		{TagName: "XPAuthor", Formatted: "someone else"},
		{TagName: "Copyright", Formatted: "  Public domain  "},
		{TagName: "DateTimeOriginal", Formatted: "1843:01:01 00:00:00"},
		{TagName: "Make", Formatted: ""},
		{TagName: "GPSLatitude", Formatted: "[51/1 30/1 0/1]"},
		{TagName: "Software", Formatted: "GIMP"},
	}

	got := attributionFromTags(entries)

	want := map[string]string{
		"artist":    "Antoine Claudet",
		"copyright": "Public domain",
		"taken":     "1843:01:01 00:00:00",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d fields, got %d: %v", len(want), len(got), got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s: expected %q, got %q", k, v, got[k])
		}
	}

	if got := attributionFromTags(nil); got != nil {
		t.Errorf("expected nil for no tags, got %v", got)
	}
}
