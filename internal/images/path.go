package images

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultExtension is used when the image URL has no recognized extension.
const DefaultExtension = ".gif"

// knownExtensions are the image extensions kept from the source URL.
var knownExtensions = map[string]string{
	".gif":  ".gif",
	".jpg":  ".jpg",
	".jpeg": ".jpeg",
	".png":  ".png",
	".svg":  ".svg",
	".webp": ".webp",
	".tif":  ".tif",
	".tiff": ".tiff",
}

// Path returns the local path of a person's portrait: the sanitized name
// plus the image's extension, inside dir. The result depends only on its
// arguments.
func Path(dir, name, imageURL string) string {
	base := SanitizeName(name)
	if base == "" {
		base = "unnamed"
	}
	return filepath.Join(dir, base+Extension(imageURL))
}

// SanitizeName turns a display name into a file name: diacritics are
// removed, spaces become underscores and characters outside letters, digits,
// '-', '_' and '.' are dropped. "José Martí" -> "Jose_Marti".
func SanitizeName(name string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}

	mapped := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return '_'
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_', r == '.':
			return r
		default:
			return -1
		}
	}, strings.TrimSpace(folded))

	return strings.TrimLeft(mapped, ".")
}

// Extension returns the lower-cased extension of the image URL's path if it
// is a known image type, otherwise DefaultExtension.
func Extension(imageURL string) string {
	u, err := url.Parse(imageURL)
	if err != nil {
		return DefaultExtension
	}
	if ext, ok := knownExtensions[strings.ToLower(path.Ext(u.Path))]; ok {
		return ext
	}
	return DefaultExtension
}
