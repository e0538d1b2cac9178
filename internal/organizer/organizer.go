// Package organizer materializes canonical media records into the
// organized output tree, the handoff point between scanning and upload.
package organizer

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"shoebox/internal/config"
	"shoebox/internal/fileutil"
	"shoebox/internal/logging"
	"shoebox/internal/media"
	"shoebox/internal/services"
)

// Action classifies what organizing one record did (or would do, in
// dry-run mode).
type Action string

const (
	ActionCopied   Action = "copied"
	ActionSkipped  Action = "skipped"
	ActionConflict Action = "conflict"
)

// Result reports the outcome for one record.
type Result struct {
	DestPath string
	Action   Action
}

// Totals accumulates per-run organize counters.
type Totals struct {
	Copied    int
	Skipped   int
	Conflicts int
	Bytes     int64
}

// Add folds one result into the totals.
func (t *Totals) Add(rec media.Record, res Result) {
	switch res.Action {
	case ActionCopied:
		t.Copied++
		t.Bytes += rec.SizeBytes
	case ActionSkipped:
		t.Skipped++
	case ActionConflict:
		t.Conflicts++
	}
}

// Organizer copies records into deterministic destination paths. Photos
// land under the organized root, videos under the parallel videos root,
// both as root/archive/album/filename.
type Organizer struct {
	organizedRoot string
	videosRoot    string
	dryRun        bool
	logger        *slog.Logger
}

func New(cfg *config.Config, dryRun bool, logger *slog.Logger) *Organizer {
	return &Organizer{
		organizedRoot: cfg.Paths.OrganizedDir,
		videosRoot:    cfg.Paths.VideosDir,
		dryRun:        dryRun,
		logger:        logging.NewComponentLogger(logger, "organizer"),
	}
}

// DestinationPath computes where a record belongs. Deterministic: the
// upload stage reconstructs the same layout when walking the tree.
func (o *Organizer) DestinationPath(rec media.Record) string {
	root := o.organizedRoot
	if rec.Kind == media.KindVideo {
		root = o.videosRoot
	}
	return filepath.Join(root, rec.ArchiveName, rec.AlbumName, rec.OutputFilename)
}

// Organize places one record. An existing destination with matching
// size is a no-op; a size mismatch is a conflict and the existing file
// is never touched. Dry-run applies the same classification without
// writing anything.
func (o *Organizer) Organize(rec media.Record) (Result, error) {
	dest := o.DestinationPath(rec)

	info, err := os.Stat(dest)
	switch {
	case err == nil && info.Size() == rec.SizeBytes:
		return Result{DestPath: dest, Action: ActionSkipped}, nil
	case err == nil:
		return Result{DestPath: dest, Action: ActionConflict}, services.Wrap(
			services.ErrConflict, "organizer", "place file",
			fmt.Sprintf("%s already exists with %d bytes, source has %d", dest, info.Size(), rec.SizeBytes), nil)
	case !os.IsNotExist(err):
		return Result{DestPath: dest, Action: ActionConflict}, services.Wrap(
			services.ErrConflict, "organizer", "place file", "stat destination "+dest, err)
	}

	if o.dryRun {
		return Result{DestPath: dest, Action: ActionCopied}, nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return Result{DestPath: dest, Action: ActionConflict}, services.Wrap(
			services.ErrConfiguration, "organizer", "place file", "create album folder for "+dest, err)
	}
	if err := fileutil.CopyFileVerified(rec.SourcePath, dest); err != nil {
		return Result{DestPath: dest, Action: ActionConflict}, services.Wrap(
			services.ErrConflict, "organizer", "place file", "copy "+rec.SourcePath, err)
	}

	o.logger.Debug("copied", logging.String("source", rec.SourcePath), logging.String("dest", dest))
	return Result{DestPath: dest, Action: ActionCopied}, nil
}
