// Package uploader drives the resumable, rate-limited upload of the
// organized photo tree to the remote photo-library service.
package uploader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"shoebox/internal/albums"
	"shoebox/internal/config"
	"shoebox/internal/ledger"
	"shoebox/internal/logging"
	"shoebox/internal/photoslib"
	"shoebox/internal/services"
)

// Summary reports what one invocation accomplished, per outcome
// category. A single success boolean would hide exactly the cases an
// operator needs to act on.
type Summary struct {
	Scanned         int
	Uploaded        int
	LinkRepaired    int
	Skipped         int
	FailedTransient int
	FailedLink      int
	Rejected        int
	Bytes           int64
	Retries         int
	RemoteCalls     int
}

// candidate is one file found under the organized tree.
type candidate struct {
	path     string
	archive  string
	album    string
	filename string
	size     int64
}

func (c candidate) identity() string {
	return c.archive + "/" + c.album + "/" + c.filename + "|" + strconv.FormatInt(c.size, 10)
}

// Uploader walks the organized tree and pushes every photo not yet
// marked done in the ledger.
type Uploader struct {
	cfg      *config.Config
	store    *ledger.Store
	remote   photoslib.Service
	resolver *albums.Resolver
	logger   *slog.Logger
	dryRun   bool

	retryDelay time.Duration
	maxRetries int
	batchSize  int
	sleep      func(ctx context.Context, d time.Duration) error
}

// New wires an uploader. The remote service should already be wrapped
// with Throttle; the uploader itself only adds retry pacing.
func New(cfg *config.Config, store *ledger.Store, remote photoslib.Service, resolver *albums.Resolver, dryRun bool, logger *slog.Logger) *Uploader {
	return &Uploader{
		cfg:        cfg,
		store:      store,
		remote:     remote,
		resolver:   resolver,
		logger:     logging.NewComponentLogger(logger, "uploader"),
		dryRun:     dryRun,
		retryDelay: time.Duration(cfg.Upload.RetryDelayMS) * time.Millisecond,
		maxRetries: cfg.Upload.MaxRetries,
		batchSize:  cfg.Upload.BatchSize,
		sleep:      sleepContext,
	}
}

// UploadAll processes the organized tree sequentially. Per-file errors
// are recorded and never halt the batch; only configuration-class
// errors abort the run. The batch size, when set, caps how many
// not-yet-done files one invocation touches.
func (u *Uploader) UploadAll(ctx context.Context) (Summary, error) {
	var summary Summary

	candidates, err := u.collect()
	if err != nil {
		return summary, err
	}
	summary.Scanned = len(candidates)

	processed := 0
	for _, cand := range candidates {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if u.batchSize > 0 && processed >= u.batchSize {
			u.logger.Info("batch size reached, stopping",
				logging.Int("batch_size", u.batchSize))
			break
		}

		outcome, err := u.uploadOne(ctx, cand, &summary)
		if err != nil {
			if services.IsFatal(err) || errors.Is(err, context.Canceled) {
				return summary, err
			}
			u.logger.Warn("file failed", logging.String("file", cand.identity()), logging.Error(err))
		}
		if outcome != outcomeSkipped {
			processed++
		}
	}

	return summary, nil
}

type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeProcessed
)

func (u *Uploader) uploadOne(ctx context.Context, cand candidate, summary *Summary) (outcome, error) {
	identity := cand.identity()

	previous, err := u.store.GetUpload(ctx, identity)
	if err != nil {
		return outcomeSkipped, services.Wrap(services.ErrConfiguration, "uploader", "read ledger", identity, err)
	}
	if previous != nil && previous.State == ledger.StateDone {
		summary.Skipped++
		return outcomeSkipped, nil
	}

	// Media already stored remotely: only the album link needs repair.
	if previous != nil && previous.State == ledger.StateFailedLink && previous.RemoteMediaID != "" {
		return outcomeProcessed, u.repairLink(ctx, cand, *previous, summary)
	}

	albumID, err := u.resolver.Resolve(ctx, cand.album)
	if err != nil {
		if services.IsFatal(err) {
			return outcomeProcessed, err
		}
		summary.FailedTransient++
		u.recordFailure(ctx, cand, "", ledger.StateFailedTransient, err, summary)
		return outcomeProcessed, err
	}

	if u.dryRun {
		u.logger.Info("would upload",
			logging.String("file", cand.filename),
			logging.String("album", cand.album),
			logging.Int64("bytes", cand.size))
		summary.Uploaded++
		summary.Bytes += cand.size
		return outcomeProcessed, nil
	}

	mediaID, err := u.uploadWithRetry(ctx, cand, summary)
	if err != nil {
		if services.IsFatal(err) {
			return outcomeProcessed, err
		}
		if errors.Is(err, services.ErrRejected) {
			summary.Rejected++
		} else {
			summary.FailedTransient++
		}
		u.recordFailure(ctx, cand, "", ledger.StateFailedTransient, err, summary)
		return outcomeProcessed, err
	}

	if err := u.linkWithRetry(ctx, albumID, mediaID, summary); err != nil {
		if services.IsFatal(err) {
			return outcomeProcessed, err
		}
		summary.FailedLink++
		u.recordFailure(ctx, cand, mediaID, ledger.StateFailedLink, err, summary)
		return outcomeProcessed, services.Wrap(services.ErrLinkOnly, "uploader", "link media",
			fmt.Sprintf("%s uploaded but not linked to %s", cand.filename, cand.album), err)
	}

	entry := ledger.Upload{
		Identity:      identity,
		SourcePath:    cand.path,
		SizeBytes:     cand.size,
		AlbumName:     cand.album,
		RemoteMediaID: mediaID,
		State:         ledger.StateDone,
	}
	if err := u.store.PutUpload(ctx, entry); err != nil {
		return outcomeProcessed, services.Wrap(services.ErrConfiguration, "uploader", "write ledger", identity, err)
	}

	summary.Uploaded++
	summary.Bytes += cand.size
	u.logger.Info("uploaded",
		logging.String("file", cand.filename),
		logging.String("album", cand.album),
		logging.Int64("bytes", cand.size))
	return outcomeProcessed, nil
}

// repairLink retries only the album association for media whose bytes
// already made it to the remote service in an earlier run.
func (u *Uploader) repairLink(ctx context.Context, cand candidate, previous ledger.Upload, summary *Summary) error {
	albumID, err := u.resolver.Resolve(ctx, cand.album)
	if err != nil {
		if !services.IsFatal(err) {
			summary.FailedLink++
		}
		return err
	}

	if u.dryRun {
		u.logger.Info("would repair album link",
			logging.String("file", cand.filename),
			logging.String("album", cand.album))
		summary.LinkRepaired++
		return nil
	}

	if err := u.linkWithRetry(ctx, albumID, previous.RemoteMediaID, summary); err != nil {
		if services.IsFatal(err) {
			return err
		}
		summary.FailedLink++
		u.recordFailure(ctx, cand, previous.RemoteMediaID, ledger.StateFailedLink, err, summary)
		return err
	}

	previous.State = ledger.StateDone
	previous.ErrorMessage = ""
	if err := u.store.PutUpload(ctx, previous); err != nil {
		return services.Wrap(services.ErrConfiguration, "uploader", "write ledger", previous.Identity, err)
	}
	summary.LinkRepaired++
	u.logger.Info("repaired album link",
		logging.String("file", cand.filename),
		logging.String("album", cand.album))
	return nil
}

func (u *Uploader) uploadWithRetry(ctx context.Context, cand candidate, summary *Summary) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= u.maxRetries; attempt++ {
		if attempt > 0 {
			summary.Retries++
			if err := u.sleep(ctx, u.retryDelay); err != nil {
				return "", err
			}
		}

		summary.RemoteCalls++
		mediaID, err := u.uploadOnce(ctx, cand)
		if err == nil {
			return mediaID, nil
		}
		lastErr = err
		if !errors.Is(err, services.ErrTransient) {
			return "", err
		}
		u.logger.Warn("upload attempt failed",
			logging.String("file", cand.filename),
			logging.Int("attempt", attempt+1),
			logging.Error(err))
	}
	return "", lastErr
}

func (u *Uploader) uploadOnce(ctx context.Context, cand candidate) (string, error) {
	// Reopened per attempt: the reader must restart from the beginning.
	file, err := os.Open(cand.path)
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, "uploader", "open file", cand.path, err)
	}
	defer file.Close()
	return u.remote.UploadBytes(ctx, cand.filename, file, cand.size)
}

func (u *Uploader) linkWithRetry(ctx context.Context, albumID, mediaID string, summary *Summary) error {
	var lastErr error
	for attempt := 0; attempt <= u.maxRetries; attempt++ {
		if attempt > 0 {
			summary.Retries++
			if err := u.sleep(ctx, u.retryDelay); err != nil {
				return err
			}
		}

		summary.RemoteCalls++
		err := u.remote.AddToAlbum(ctx, albumID, mediaID)
		if err == nil {
			return nil
		}
		lastErr = err
		if !errors.Is(err, services.ErrTransient) {
			return err
		}
	}
	return lastErr
}

func (u *Uploader) recordFailure(ctx context.Context, cand candidate, mediaID string, state ledger.State, cause error, summary *Summary) {
	if u.dryRun {
		return
	}
	entry := ledger.Upload{
		Identity:      cand.identity(),
		SourcePath:    cand.path,
		SizeBytes:     cand.size,
		AlbumName:     cand.album,
		RemoteMediaID: mediaID,
		State:         state,
		ErrorMessage:  cause.Error(),
	}
	if err := u.store.PutUpload(ctx, entry); err != nil {
		u.logger.Error("cannot record failure", logging.String("file", cand.identity()), logging.Error(err))
	}
}

// collect walks the organized tree and gathers upload candidates. The
// tree layout is root/archive/album/filename; anything at another depth
// is reported and skipped. Ignored folder names are excluded at any
// depth, mirroring scan-time semantics.
func (u *Uploader) collect() ([]candidate, error) {
	root := u.cfg.Paths.OrganizedDir
	ignored := u.cfg.IgnoredFolderSet()

	var candidates []candidate
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				if os.IsNotExist(err) {
					return nil
				}
				return services.Wrap(services.ErrConfiguration, "uploader", "walk organized tree", root, err)
			}
			u.logger.Warn("skipping unreadable path", logging.String("path", path), logging.Error(err))
			return nil
		}

		name := entry.Name()
		if entry.IsDir() {
			if path != root && isIgnored(ignored, name) {
				return filepath.SkipDir
			}
			return nil
		}
		if isIgnored(ignored, name) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		if len(parts) != 3 {
			u.logger.Warn("unexpected file depth in organized tree", logging.String("path", rel))
			return nil
		}

		info, err := entry.Info()
		if err != nil {
			u.logger.Warn("cannot stat file", logging.String("path", path), logging.Error(err))
			return nil
		}

		candidates = append(candidates, candidate{
			path:     path,
			archive:  parts[0],
			album:    parts[1],
			filename: parts[2],
			size:     info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return candidates, nil
}

func isIgnored(ignored map[string]struct{}, name string) bool {
	if len(ignored) == 0 {
		return false
	}
	_, ok := ignored[strings.TrimSpace(name)]
	return ok
}
