package naming

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"shoebox/internal/config"
	"shoebox/internal/media"
	"shoebox/internal/services"
)

var (
	yearPrefixPattern = regexp.MustCompile(`^\d{4}[\s_-]+`)
	imgTokenPattern   = regexp.MustCompile(`(?i)[\s_-]*\bIMG[\s_-]*`)
	bareNumberPattern = regexp.MustCompile(`(?i)^\d+[a-z]?$`)
)

// PortableDriveParser handles loosely structured folder archives. The
// album name comes from the top-level folder, the filename is simplified
// with an ordered rule list, and videos keep their original names.
type PortableDriveParser struct {
	archive      config.Archive
	rootName     string
	folderPrefix *regexp.Regexp
}

func NewPortableDriveParser(archive config.Archive) *PortableDriveParser {
	label := archive.FolderPrefixLabel
	prefix := regexp.MustCompile(`^` + regexp.QuoteMeta(label) + `\s+\d+\s*-\s*`)
	return &PortableDriveParser{
		archive:      archive,
		rootName:     filepath.Base(archive.SourcePath),
		folderPrefix: prefix,
	}
}

func (p *PortableDriveParser) Parse(rel string, size int64) (media.Record, error) {
	base := path.Base(rel)
	kind := media.KindForPath(base)
	if kind == media.KindOther {
		return media.Record{}, services.Wrap(services.ErrParse, "naming", "classify file",
			fmt.Sprintf("%s is neither a photo nor a video", base), nil)
	}

	album := p.albumFromPath(rel)

	output := base
	if kind == media.KindPhoto {
		ext := strings.ToLower(path.Ext(base))
		stem := strings.TrimSuffix(base, path.Ext(base))
		output = CleanFilename(stem, ext)
	}

	return media.Record{
		ArchiveName:    p.archive.Name,
		AlbumName:      applyPrefix(p.archive.AlbumPrefix, album),
		OutputFilename: output,
		Kind:           kind,
		SizeBytes:      size,
		DateStamp:      DateStampFromPath(rel),
	}, nil
}

// albumFromPath derives the album from the file's top-level folder, or
// the archive root's own name for files sitting at the root.
func (p *PortableDriveParser) albumFromPath(rel string) string {
	parts := strings.Split(rel, "/")
	folder := p.rootName
	if len(parts) > 1 {
		folder = parts[0]
	}
	cleaned := p.CleanFolderName(folder)
	if cleaned == "" {
		return FallbackAlbum
	}
	return cleaned
}

// CleanFolderName strips the configured ordinal prefix ("<Label> <N> - ")
// and normalizes the remainder to NFC so visually identical folder names
// from different filesystems map to one album.
func (p *PortableDriveParser) CleanFolderName(folder string) string {
	cleaned := p.folderPrefix.ReplaceAllString(folder, "")
	return norm.NFC.String(strings.TrimSpace(cleaned))
}

// CleanFilename simplifies a photo stem with the ordered rule list:
//
//  1. drop a leading 4-digit year token and its trailing separators
//  2. drop case-insensitive IMG tokens, collapsing the separators
//     around them to a single underscore
//  3. trim separator characters left at either end
//  4. prefix a purely numeric remainder (optionally with one trailing
//     letter) with "photo_" so bare numbers sort sanely
//
// Already-clean stems pass through unchanged, which makes the function
// idempotent on its own output. A stem that cleans down to nothing gets
// a digest of the original name instead, so no two files collapse onto
// an empty filename.
func CleanFilename(stem, ext string) string {
	name := yearPrefixPattern.ReplaceAllString(stem, "")
	name = imgTokenPattern.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_- ")

	if name == "" {
		digest := sha256.Sum256([]byte(stem + ext))
		name = "photo_" + hex.EncodeToString(digest[:])[:8]
	} else if bareNumberPattern.MatchString(name) {
		name = "photo_" + name
	}

	return name + strings.ToLower(ext)
}
