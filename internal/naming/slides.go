package naming

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"

	"shoebox/internal/config"
	"shoebox/internal/media"
	"shoebox/internal/services"
)

// slidesPattern matches the scanned-slides token grammar:
// {album_number}_{sequence}_{tag}_{counter}.{ext}
var slidesPattern = regexp.MustCompile(`(?i)^(\d+)_(\d+)_[a-z]+_\d+\.([a-z0-9]+)$`)

// SlidesParser handles the flat scanned-slides archive. Every filename
// encodes its album number and in-album sequence; the album number is
// resolved to a human name through the lookup table.
type SlidesParser struct {
	archive config.Archive
	table   *LookupTable
}

func NewSlidesParser(archive config.Archive, table *LookupTable) *SlidesParser {
	return &SlidesParser{archive: archive, table: table}
}

func (p *SlidesParser) Parse(rel string, size int64) (media.Record, error) {
	base := path.Base(rel)
	m := slidesPattern.FindStringSubmatch(base)
	if m == nil {
		return media.Record{}, services.Wrap(services.ErrParse, "naming", "parse slides filename",
			fmt.Sprintf("%s does not match the slides grammar", base), nil)
	}

	group, err := strconv.Atoi(m[1])
	if err != nil {
		return media.Record{}, services.Wrap(services.ErrParse, "naming", "parse slides filename",
			fmt.Sprintf("album number in %s", base), err)
	}
	sequence, err := strconv.Atoi(m[2])
	if err != nil {
		return media.Record{}, services.Wrap(services.ErrParse, "naming", "parse slides filename",
			fmt.Sprintf("sequence in %s", base), err)
	}

	entry, ok := p.table.Resolve(group)
	if !ok {
		return media.Record{}, services.Wrap(services.ErrUnknownAlbum, "naming", "resolve album number",
			fmt.Sprintf("album %d from %s is not in the lookup table", group, base), nil)
	}

	ext := strings.ToLower(m[3])
	return media.Record{
		ArchiveName:    p.archive.Name,
		AlbumName:      applyPrefix(p.archive.AlbumPrefix, entry.Title),
		OutputFilename: fmt.Sprintf("%s_%02d.%s", entry.Name, sequence, ext),
		Kind:           media.KindForPath(base),
		SizeBytes:      size,
	}, nil
}
