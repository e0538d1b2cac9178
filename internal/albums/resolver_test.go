package albums_test

import (
	"context"
	"io"
	"testing"

	"shoebox/internal/albums"
	"shoebox/internal/ledger"
	"shoebox/internal/logging"
	"shoebox/internal/testsupport"
)

type fakeRemote struct {
	creates []string
	nextID  int
}

func (f *fakeRemote) CreateAlbum(_ context.Context, title string) (string, error) {
	f.creates = append(f.creates, title)
	f.nextID++
	return "alb-" + string(rune('0'+f.nextID)), nil
}

func (f *fakeRemote) UploadBytes(context.Context, string, io.Reader, int64) (string, error) {
	panic("resolver must not upload")
}

func (f *fakeRemote) AddToAlbum(context.Context, string, string) error {
	panic("resolver must not link")
}

func openStore(t *testing.T) *ledger.Store {
	t.Helper()
	return testsupport.MustOpenLedger(t, testsupport.NewConfig(t))
}

func TestResolveCreatesOncePerName(t *testing.T) {
	store := openStore(t)
	remote := &fakeRemote{}
	resolver := albums.NewResolver(store, remote, false, logging.NewNop())
	ctx := context.Background()

	first, err := resolver.Resolve(ctx, "Trips")
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	second, err := resolver.Resolve(ctx, "Trips")
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}

	if first != second {
		t.Fatalf("resolve must be stable: %q vs %q", first, second)
	}
	if len(remote.creates) != 1 {
		t.Fatalf("expected exactly one remote create, got %d", len(remote.creates))
	}
}

func TestResolvePrefersCache(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	if err := store.PutAlbum(ctx, "Seeded", "alb-manual"); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	remote := &fakeRemote{}
	resolver := albums.NewResolver(store, remote, false, logging.NewNop())

	id, err := resolver.Resolve(ctx, "Seeded")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if id != "alb-manual" {
		t.Fatalf("expected seeded id, got %q", id)
	}
	if len(remote.creates) != 0 {
		t.Fatalf("cache hit must not call remote, got %v", remote.creates)
	}
}

func TestResolveWritesThroughBeforeReturning(t *testing.T) {
	store := openStore(t)
	remote := &fakeRemote{}
	resolver := albums.NewResolver(store, remote, false, logging.NewNop())
	ctx := context.Background()

	id, err := resolver.Resolve(ctx, "New Album")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	cached, ok, err := store.AlbumID(ctx, "New Album")
	if err != nil || !ok {
		t.Fatalf("expected durable cache entry: ok=%v err=%v", ok, err)
	}
	if cached != id {
		t.Fatalf("cache %q does not match returned id %q", cached, id)
	}
}

func TestResolveDryRunCreatesNothing(t *testing.T) {
	store := openStore(t)
	remote := &fakeRemote{}
	resolver := albums.NewResolver(store, remote, true, logging.NewNop())
	ctx := context.Background()

	id, err := resolver.Resolve(ctx, "Preview")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if id == "" {
		t.Fatal("dry run must hand out a placeholder id")
	}
	again, err := resolver.Resolve(ctx, "Preview")
	if err != nil || again != id {
		t.Fatalf("placeholder must be stable within the run: %q vs %q (%v)", id, again, err)
	}

	if len(remote.creates) != 0 {
		t.Fatalf("dry run must not create albums, got %v", remote.creates)
	}
	if _, ok, err := store.AlbumID(ctx, "Preview"); err != nil || ok {
		t.Fatalf("dry run must not persist cache entries: ok=%v err=%v", ok, err)
	}
}
