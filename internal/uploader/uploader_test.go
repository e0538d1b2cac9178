package uploader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"shoebox/internal/albums"
	"shoebox/internal/config"
	"shoebox/internal/ledger"
	"shoebox/internal/logging"
	"shoebox/internal/services"
	"shoebox/internal/testsupport"
)

type fakeService struct {
	createCalls int
	uploadCalls int
	linkCalls   int

	uploadErrs []error
	linkErrs   []error
	linked     map[string][]string
}

func (f *fakeService) CreateAlbum(_ context.Context, title string) (string, error) {
	f.createCalls++
	return "alb-" + title, nil
}

func (f *fakeService) UploadBytes(_ context.Context, filename string, content io.Reader, _ int64) (string, error) {
	f.uploadCalls++
	if len(f.uploadErrs) > 0 {
		err := f.uploadErrs[0]
		f.uploadErrs = f.uploadErrs[1:]
		if err != nil {
			return "", err
		}
	}
	if _, err := io.ReadAll(content); err != nil {
		return "", err
	}
	return "media-" + filename, nil
}

func (f *fakeService) AddToAlbum(_ context.Context, albumID, mediaID string) error {
	f.linkCalls++
	if len(f.linkErrs) > 0 {
		err := f.linkErrs[0]
		f.linkErrs = f.linkErrs[1:]
		if err != nil {
			return err
		}
	}
	if f.linked == nil {
		f.linked = map[string][]string{}
	}
	f.linked[albumID] = append(f.linked[albumID], mediaID)
	return nil
}

type fixture struct {
	cfg    *config.Config
	store  *ledger.Store
	remote *fakeService
	u      *Uploader
}

func newFixture(t *testing.T, dryRun bool) *fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cfg.Upload.MaxRetries = 2

	store := testsupport.MustOpenLedger(t, cfg)
	remote := &fakeService{}
	resolver := albums.NewResolver(store, remote, dryRun, logging.NewNop())
	u := New(cfg, store, remote, resolver, dryRun, logging.NewNop())
	u.sleep = func(context.Context, time.Duration) error { return nil }

	return &fixture{cfg: cfg, store: store, remote: remote, u: u}
}

func (f *fixture) addFile(t *testing.T, archive, album, name string, payload []byte) string {
	t.Helper()
	path := filepath.Join(f.cfg.Paths.OrganizedDir, archive, album, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return fmt.Sprintf("%s/%s/%s|%d", archive, album, name, len(payload))
}

func TestUploadAllHappyPath(t *testing.T) {
	f := newFixture(t, false)
	identity := f.addFile(t, "slides", "Trips", "Rotorua_01.jpg", []byte("abc"))

	summary, err := f.u.UploadAll(context.Background())
	if err != nil {
		t.Fatalf("UploadAll failed: %v", err)
	}
	if summary.Uploaded != 1 || summary.Bytes != 3 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if f.remote.createCalls != 1 || f.remote.uploadCalls != 1 || f.remote.linkCalls != 1 {
		t.Fatalf("unexpected remote calls: %+v", f.remote)
	}

	row, err := f.store.GetUpload(context.Background(), identity)
	if err != nil || row == nil {
		t.Fatalf("expected ledger row: %v %v", row, err)
	}
	if row.State != ledger.StateDone || row.RemoteMediaID != "media-Rotorua_01.jpg" {
		t.Fatalf("unexpected row: %+v", row)
	}
}

func TestUploadAllSkipsDoneWithZeroRemoteCalls(t *testing.T) {
	f := newFixture(t, false)
	identity := f.addFile(t, "slides", "Trips", "Rotorua_01.jpg", []byte("abc"))

	err := f.store.PutUpload(context.Background(), ledger.Upload{
		Identity:  identity,
		SizeBytes: 3,
		AlbumName: "Trips",
		State:     ledger.StateDone,
	})
	if err != nil {
		t.Fatalf("seed ledger: %v", err)
	}

	summary, err := f.u.UploadAll(context.Background())
	if err != nil {
		t.Fatalf("UploadAll failed: %v", err)
	}
	if summary.Skipped != 1 || summary.Uploaded != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if f.remote.createCalls+f.remote.uploadCalls+f.remote.linkCalls != 0 {
		t.Fatalf("done file must cause zero remote calls: %+v", f.remote)
	}
}

func TestUploadRetriesTransientThenSucceeds(t *testing.T) {
	f := newFixture(t, false)
	f.addFile(t, "slides", "Trips", "a.jpg", []byte("abc"))
	f.remote.uploadErrs = []error{
		services.Wrap(services.ErrTransient, "photoslib", "upload bytes", "503", nil),
		services.Wrap(services.ErrTransient, "photoslib", "upload bytes", "503", nil),
	}

	summary, err := f.u.UploadAll(context.Background())
	if err != nil {
		t.Fatalf("UploadAll failed: %v", err)
	}
	if summary.Uploaded != 1 {
		t.Fatalf("expected success after retries: %+v", summary)
	}
	if summary.Retries != 2 {
		t.Fatalf("expected 2 retries, got %d", summary.Retries)
	}
	if f.remote.uploadCalls != 3 {
		t.Fatalf("expected 3 upload attempts, got %d", f.remote.uploadCalls)
	}
}

func TestUploadExhaustedRetriesRecordsFailureAndContinues(t *testing.T) {
	f := newFixture(t, false)
	badIdentity := f.addFile(t, "slides", "Trips", "bad.jpg", []byte("xx"))
	f.addFile(t, "slides", "Trips", "good.jpg", []byte("yyy"))

	transient := services.Wrap(services.ErrTransient, "photoslib", "upload bytes", "503", nil)
	// bad.jpg walks first (lexicographic) and fails all 3 attempts.
	f.remote.uploadErrs = []error{transient, transient, transient}

	summary, err := f.u.UploadAll(context.Background())
	if err != nil {
		t.Fatalf("UploadAll must not abort the batch: %v", err)
	}
	if summary.FailedTransient != 1 || summary.Uploaded != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	row, err := f.store.GetUpload(context.Background(), badIdentity)
	if err != nil || row == nil {
		t.Fatalf("expected failure row: %v %v", row, err)
	}
	if row.State != ledger.StateFailedTransient || row.ErrorMessage == "" {
		t.Fatalf("unexpected row: %+v", row)
	}
}

func TestUploadRejectedIsNotRetried(t *testing.T) {
	f := newFixture(t, false)
	f.addFile(t, "slides", "Trips", "bad.jpg", []byte("xx"))
	f.remote.uploadErrs = []error{
		services.Wrap(services.ErrRejected, "photoslib", "upload bytes", "400", nil),
	}

	summary, err := f.u.UploadAll(context.Background())
	if err != nil {
		t.Fatalf("UploadAll failed: %v", err)
	}
	if summary.Rejected != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if f.remote.uploadCalls != 1 {
		t.Fatalf("permanent rejection must not retry, got %d attempts", f.remote.uploadCalls)
	}
}

func TestLinkFailureRecordsLinkOnlyState(t *testing.T) {
	f := newFixture(t, false)
	identity := f.addFile(t, "slides", "Trips", "a.jpg", []byte("abc"))

	linkErr := services.Wrap(services.ErrTransient, "photoslib", "link", "503", nil)
	f.remote.linkErrs = []error{linkErr, linkErr, linkErr}

	summary, err := f.u.UploadAll(context.Background())
	if err != nil {
		t.Fatalf("UploadAll failed: %v", err)
	}
	if summary.FailedLink != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	row, err := f.store.GetUpload(context.Background(), identity)
	if err != nil || row == nil {
		t.Fatalf("expected ledger row: %v %v", row, err)
	}
	if row.State != ledger.StateFailedLink {
		t.Fatalf("expected failed_link, got %q", row.State)
	}
	if row.RemoteMediaID == "" {
		t.Fatal("link failure must keep the uploaded media id")
	}
}

func TestLinkRepairDoesNotReupload(t *testing.T) {
	f := newFixture(t, false)
	identity := f.addFile(t, "slides", "Trips", "a.jpg", []byte("abc"))

	err := f.store.PutUpload(context.Background(), ledger.Upload{
		Identity:      identity,
		SizeBytes:     3,
		AlbumName:     "Trips",
		RemoteMediaID: "media-old",
		State:         ledger.StateFailedLink,
	})
	if err != nil {
		t.Fatalf("seed ledger: %v", err)
	}

	summary, err := f.u.UploadAll(context.Background())
	if err != nil {
		t.Fatalf("UploadAll failed: %v", err)
	}
	if summary.LinkRepaired != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if f.remote.uploadCalls != 0 {
		t.Fatalf("repair must not re-upload bytes, got %d uploads", f.remote.uploadCalls)
	}
	if f.remote.linkCalls != 1 {
		t.Fatalf("expected one link call, got %d", f.remote.linkCalls)
	}

	row, err := f.store.GetUpload(context.Background(), identity)
	if err != nil || row == nil || row.State != ledger.StateDone {
		t.Fatalf("expected done after repair: %v %v", row, err)
	}
	if row.RemoteMediaID != "media-old" {
		t.Fatalf("repair must keep original media id, got %q", row.RemoteMediaID)
	}
}

func TestDryRunIssuesNoRemoteCallsAndNoLedgerWrites(t *testing.T) {
	f := newFixture(t, true)
	identity := f.addFile(t, "slides", "Trips", "a.jpg", []byte("abc"))

	summary, err := f.u.UploadAll(context.Background())
	if err != nil {
		t.Fatalf("UploadAll failed: %v", err)
	}
	if summary.Uploaded != 1 {
		t.Fatalf("dry run must report planned uploads: %+v", summary)
	}
	if f.remote.createCalls+f.remote.uploadCalls+f.remote.linkCalls != 0 {
		t.Fatalf("dry run must not touch the remote: %+v", f.remote)
	}
	row, err := f.store.GetUpload(context.Background(), identity)
	if err != nil {
		t.Fatalf("GetUpload failed: %v", err)
	}
	if row != nil {
		t.Fatalf("dry run must not write the ledger: %+v", row)
	}
}

func TestBatchSizeCapsProcessedFiles(t *testing.T) {
	f := newFixture(t, false)
	f.cfg.Upload.BatchSize = 2
	f.u.batchSize = 2
	for i := 0; i < 5; i++ {
		f.addFile(t, "slides", "Trips", fmt.Sprintf("p%d.jpg", i), []byte("abc"))
	}

	summary, err := f.u.UploadAll(context.Background())
	if err != nil {
		t.Fatalf("UploadAll failed: %v", err)
	}
	if summary.Uploaded != 2 {
		t.Fatalf("expected 2 uploads in batch, got %+v", summary)
	}
	if summary.Scanned != 5 {
		t.Fatalf("expected 5 scanned, got %d", summary.Scanned)
	}
}

func TestIgnoredFoldersExcludedFromUpload(t *testing.T) {
	f := newFixture(t, false)
	f.cfg.Upload.IgnoredFolders = []string{"Private"}
	f.addFile(t, "slides", "Private", "secret.jpg", []byte("abc"))
	f.addFile(t, "slides", "Trips", "a.jpg", []byte("abc"))

	summary, err := f.u.UploadAll(context.Background())
	if err != nil {
		t.Fatalf("UploadAll failed: %v", err)
	}
	if summary.Scanned != 1 || summary.Uploaded != 1 {
		t.Fatalf("ignored folder leaked into upload: %+v", summary)
	}
}

func TestAuthFailureAbortsRun(t *testing.T) {
	f := newFixture(t, false)
	f.addFile(t, "slides", "Trips", "a.jpg", []byte("abc"))
	f.addFile(t, "slides", "Trips", "b.jpg", []byte("abc"))
	authErr := services.Wrap(services.ErrConfiguration, "photoslib", "upload bytes", "401", nil)
	f.remote.uploadErrs = []error{authErr}

	_, err := f.u.UploadAll(context.Background())
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected fatal configuration error, got %v", err)
	}
	if f.remote.uploadCalls != 1 {
		t.Fatalf("fatal error must abort immediately, got %d attempts", f.remote.uploadCalls)
	}
}

func TestThrottleUploadsOnlyBypassesAlbumCalls(t *testing.T) {
	var waits int
	limiter := NewRateLimiter(time.Second)
	limiter.now = func() time.Time { return time.Unix(0, 0) }
	limiter.sleep = func(context.Context, time.Duration) error {
		waits++
		return nil
	}

	remote := &fakeService{}
	throttled := Throttle(remote, limiter, true)
	ctx := context.Background()

	if _, err := throttled.CreateAlbum(ctx, "X"); err != nil {
		t.Fatalf("CreateAlbum failed: %v", err)
	}
	if err := throttled.AddToAlbum(ctx, "a", "m"); err != nil {
		t.Fatalf("AddToAlbum failed: %v", err)
	}
	if waits != 0 {
		t.Fatalf("uploads-only throttle must bypass album calls, slept %d times", waits)
	}
}
