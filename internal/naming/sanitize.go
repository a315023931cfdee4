// Package naming derives object-store keys for uploaded assets.
//
// Keys are built from the post title, the upload time in milliseconds and the
// original file name. Two uploads collide only when all three match; that case
// is accepted and not guarded against. Titles are cut to MaxTitleBytes and file
// names to MaxFileNameBytes so a key always fits in one file name on disk, which
// means titles sharing their first MaxTitleBytes sanitized bytes also collide
// within the same millisecond.
package naming

import (
	"path"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// FilePlaceholder replaces a file name that sanitizes to nothing.
	FilePlaceholder = "file"
	// TitlePlaceholder replaces a title that sanitizes to nothing.
	TitlePlaceholder = "untitled"

	// MaxTitleBytes caps the title segment of a key.
	MaxTitleBytes = 100
	// MaxFileNameBytes caps the file name segment of a key, extension included.
	MaxFileNameBytes = 120

	separator = "-"
	// maxExtBytes is the longest extension kept whole when a file name is cut.
	maxExtBytes = 16
)

// Sanitize strips diacritics, turns whitespace runs into a single underscore and
// drops every character outside [A-Za-z0-9_-.]. The result may be empty.
func Sanitize(raw string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, raw)
	if err != nil {
		stripped = raw
	}

	var b strings.Builder
	b.Grow(len(stripped))
	inSpace := false
	for _, r := range stripped {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte('_')
				inSpace = true
			}
			continue
		}
		inSpace = false
		if allowed(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// AssetKey builds the store key for one upload: title, millisecond timestamp and
// file name, each sanitized and joined with "-". Inside the title and file name
// segments "-" becomes "_", so the separator only ever appears twice. The key is
// never empty, contains only [A-Za-z0-9_-.] and is at most 242 bytes long.
func AssetKey(rawFileName, titleHint string, ts time.Time) string {
	title := segment(Sanitize(titleHint))
	if title == "" {
		title = TitlePlaceholder
	}
	if len(title) > MaxTitleBytes {
		title = title[:MaxTitleBytes]
	}

	name := segment(Sanitize(rawFileName))
	if strings.Trim(name, ".") == "" {
		name = FilePlaceholder
	}
	name = truncateFileName(name)

	return title + separator + strconv.FormatInt(ts.UnixMilli(), 10) + separator + name
}

func segment(s string) string {
	return strings.ReplaceAll(s, separator, "_")
}

// truncateFileName cuts name to MaxFileNameBytes, keeping a short extension.
// name is ASCII after sanitizing.
func truncateFileName(name string) string {
	if len(name) <= MaxFileNameBytes {
		return name
	}
	ext := path.Ext(name)
	if len(ext) > maxExtBytes || len(ext) == len(name) {
		ext = ""
	}
	return name[:MaxFileNameBytes-len(ext)] + ext
}

func allowed(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_' || r == '-' || r == '.':
		return true
	}
	return false
}
