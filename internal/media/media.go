// Package media defines the shared item model produced by the archive
// parsers and consumed by the organizer and uploader stages.
package media

import (
	"path/filepath"
	"strconv"
	"strings"
)

// Kind classifies a source file by how the pipeline handles it.
type Kind string

const (
	// KindPhoto routes through the organized tree and the upload stage.
	KindPhoto Kind = "photo"
	// KindVideo is organized into the parallel videos tree and never uploaded.
	KindVideo Kind = "video"
	// KindOther is counted during scanning and otherwise ignored.
	KindOther Kind = "other"
)

var photoExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".bmp":  {},
	".tiff": {},
}

var videoExtensions = map[string]struct{}{
	".mp4": {},
	".mov": {},
	".avi": {},
	".mkv": {},
	".wmv": {},
	".flv": {},
	".m4v": {},
}

// KindForPath classifies a file by extension, case-insensitively.
func KindForPath(path string) Kind {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := photoExtensions[ext]; ok {
		return KindPhoto
	}
	if _, ok := videoExtensions[ext]; ok {
		return KindVideo
	}
	return KindOther
}

// Record describes one source file after parsing: where it came from,
// which album it belongs to, and the normalized filename it will carry
// in the organized tree.
type Record struct {
	SourcePath     string
	ArchiveName    string
	AlbumName      string
	OutputFilename string
	Kind           Kind
	SizeBytes      int64
	DateStamp      string
}

// Identity returns the ledger key for a record placed in the organized
// tree: the archive/album/filename triple joined with forward slashes
// plus the file size. Stable across machines and re-runs.
func (r Record) Identity() string {
	rel := strings.Join([]string{r.ArchiveName, r.AlbumName, r.OutputFilename}, "/")
	return rel + "|" + strconv.FormatInt(r.SizeBytes, 10)
}
