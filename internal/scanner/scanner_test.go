package scanner_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"shoebox/internal/config"
	"shoebox/internal/logging"
	"shoebox/internal/media"
	"shoebox/internal/naming"
	"shoebox/internal/scanner"
)

func writeFile(t *testing.T, root string, rel string, size int) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func driveArchive(root string) config.Archive {
	return config.Archive{
		Name:              "portable_drive",
		Parser:            config.ParserPortableDrive,
		SourcePath:        root,
		FolderPrefixLabel: "Photo album",
	}
}

func TestScanCollectsRecords(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Photo album 8 - Trips/2006 49 IMG_1081.JPG", 100)
	writeFile(t, root, "Photo album 8 - Trips/clip.mov", 50)
	writeFile(t, root, "Photo album 8 - Trips/Thumbs.db", 5)

	archive := driveArchive(root)
	parser, err := naming.ParserFor(archive)
	if err != nil {
		t.Fatalf("parser: %v", err)
	}

	var records []media.Record
	s := scanner.New(archive, parser, nil, logging.NewNop())
	stats, err := s.Scan(context.Background(), func(rec media.Record) error {
		records = append(records, rec)
		return nil
	})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if stats.TotalFiles != 3 {
		t.Fatalf("expected 3 files, got %d", stats.TotalFiles)
	}
	if stats.Photos != 1 || stats.Videos != 1 || stats.SkippedKind != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.Bytes != 150 {
		t.Fatalf("expected 150 bytes counted, got %d", stats.Bytes)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	for _, rec := range records {
		if rec.AlbumName != "Trips" {
			t.Fatalf("unexpected album: %q", rec.AlbumName)
		}
		if rec.SourcePath == "" {
			t.Fatal("record must carry its source path")
		}
	}
}

func TestScanSkipsIgnoredFoldersAtAnyDepth(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Trips/keep.jpg", 1)
	writeFile(t, root, "Private/secret.jpg", 1)
	writeFile(t, root, "Trips/nested/Private/deep.jpg", 1)

	archive := driveArchive(root)
	parser, err := naming.ParserFor(archive)
	if err != nil {
		t.Fatalf("parser: %v", err)
	}
	ignored := map[string]struct{}{"Private": {}}

	var seen []string
	s := scanner.New(archive, parser, ignored, logging.NewNop())
	if _, err := s.Scan(context.Background(), func(rec media.Record) error {
		seen = append(seen, rec.OutputFilename)
		return nil
	}); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(seen) != 1 || seen[0] != "keep.jpg" {
		t.Fatalf("ignored folders leaked into scan: %v", seen)
	}
}

func TestScanCountsSlidesFailuresWithoutHalting(t *testing.T) {
	root := t.TempDir()
	lookup := filepath.Join(t.TempDir(), "albums.csv")
	if err := os.WriteFile(lookup, []byte("group,name,title\n12,Rotorua,Rotorua Trip\n"), 0o644); err != nil {
		t.Fatalf("write lookup: %v", err)
	}
	writeFile(t, root, "12_01_img_0001.JPG", 10)
	writeFile(t, root, "99_01_img_0002.JPG", 10)
	writeFile(t, root, "holiday.jpg", 10)

	archive := config.Archive{
		Name:        "slides",
		Parser:      config.ParserSlides,
		SourcePath:  root,
		LookupTable: lookup,
	}
	parser, err := naming.ParserFor(archive)
	if err != nil {
		t.Fatalf("parser: %v", err)
	}

	var records []media.Record
	s := scanner.New(archive, parser, nil, logging.NewNop())
	stats, err := s.Scan(context.Background(), func(rec media.Record) error {
		records = append(records, rec)
		return nil
	})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(records) != 1 || records[0].OutputFilename != "Rotorua_01.jpg" {
		t.Fatalf("unexpected records: %v", records)
	}
	if stats.UnknownAlbums != 1 {
		t.Fatalf("expected 1 unknown album, got %d", stats.UnknownAlbums)
	}
	if stats.ParseFailures != 1 {
		t.Fatalf("expected 1 parse failure, got %d", stats.ParseFailures)
	}
}

func TestScanMissingRootIsFatal(t *testing.T) {
	archive := driveArchive(filepath.Join(t.TempDir(), "absent"))
	parser, err := naming.ParserFor(archive)
	if err != nil {
		t.Fatalf("parser: %v", err)
	}
	s := scanner.New(archive, parser, nil, logging.NewNop())
	if _, err := s.Scan(context.Background(), func(media.Record) error { return nil }); err == nil {
		t.Fatal("expected error for missing source root")
	}
}

func TestScanRescanIsDeterministic(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Trips/IMG_0001.JPG", 7)
	writeFile(t, root, "Trips/IMG_0002.JPG", 7)

	archive := driveArchive(root)
	parser, err := naming.ParserFor(archive)
	if err != nil {
		t.Fatalf("parser: %v", err)
	}
	s := scanner.New(archive, parser, nil, logging.NewNop())

	collect := func() map[string]struct{} {
		out := map[string]struct{}{}
		if _, err := s.Scan(context.Background(), func(rec media.Record) error {
			out[rec.Identity()] = struct{}{}
			return nil
		}); err != nil {
			t.Fatalf("Scan failed: %v", err)
		}
		return out
	}

	first := collect()
	second := collect()
	if len(first) != 2 || len(first) != len(second) {
		t.Fatalf("rescan mismatch: %v vs %v", first, second)
	}
	for id := range first {
		if _, ok := second[id]; !ok {
			t.Fatalf("identity %q missing on rescan", id)
		}
	}
}
