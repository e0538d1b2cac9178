package naming

import (
	"fmt"
	"regexp"
	"strings"

	"shoebox/internal/config"
	"shoebox/internal/media"
	"shoebox/internal/services"
)

// FallbackAlbum receives files whose album name cannot be derived.
const FallbackAlbum = "Uncategorized"

// Parser converts one archive-relative file path into a canonical record.
// Implementations are pure: no filesystem access, no mutation.
type Parser interface {
	// Parse produces a record for the file at rel (slash-separated path
	// relative to the archive source root). Files the archive cannot
	// place return an error tagged ErrParse or ErrUnknownAlbum.
	Parse(rel string, size int64) (media.Record, error)
}

// ParserFor builds the parser declared by an archive definition. Slides
// archives load their lookup table here, once per run.
func ParserFor(archive config.Archive) (Parser, error) {
	switch archive.Parser {
	case config.ParserSlides:
		table, err := LoadLookupTable(archive.LookupTable)
		if err != nil {
			return nil, err
		}
		return NewSlidesParser(archive, table), nil
	case config.ParserPortableDrive:
		return NewPortableDriveParser(archive), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "naming", "select parser",
			fmt.Sprintf("archive %q declares unknown parser %q", archive.Name, archive.Parser), nil)
	}
}

// applyPrefix prepends the configured album prefix, if any.
func applyPrefix(prefix, title string) string {
	if prefix == "" {
		return title
	}
	return prefix + " - " + title
}

var datePattern = regexp.MustCompile(`(\d{4})[_-](\d{2})[_-](\d{2})`)

// DateStampFromPath extracts the first YYYY_MM_DD stamp found in any
// path component, normalized to underscore separators.
func DateStampFromPath(rel string) string {
	for _, part := range strings.Split(rel, "/") {
		if m := datePattern.FindStringSubmatch(part); m != nil {
			return m[1] + "_" + m[2] + "_" + m[3]
		}
	}
	return ""
}
