// Package scanner walks archive source trees and feeds each file
// through the archive's parser, producing canonical media records.
package scanner

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"shoebox/internal/config"
	"shoebox/internal/logging"
	"shoebox/internal/media"
	"shoebox/internal/naming"
	"shoebox/internal/services"
)

// Stats summarizes one archive scan.
type Stats struct {
	TotalFiles    int
	Photos        int
	Videos        int
	ParseFailures int
	UnknownAlbums int
	SkippedKind   int
	Ignored       int
	Bytes         int64
}

// Visitor receives each successfully parsed record. Returning an error
// aborts the scan.
type Visitor func(rec media.Record) error

// Scanner traverses one archive and applies its parser to every file.
type Scanner struct {
	archive config.Archive
	parser  naming.Parser
	ignored map[string]struct{}
	logger  *slog.Logger
}

// New builds a scanner for one archive definition. The ignored set is
// matched against individual path segments at any depth.
func New(archive config.Archive, parser naming.Parser, ignored map[string]struct{}, logger *slog.Logger) *Scanner {
	return &Scanner{
		archive: archive,
		parser:  parser,
		ignored: ignored,
		logger:  logging.NewComponentLogger(logger, "scanner"),
	}
}

// Scan walks the archive source tree. Parse failures and unknown album
// numbers are counted and logged, never fatal. Traversal order is not
// part of the contract.
func (s *Scanner) Scan(ctx context.Context, visit Visitor) (Stats, error) {
	var stats Stats

	root := s.archive.SourcePath
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return services.Wrap(services.ErrConfiguration, "scanner", "walk archive",
					"source path is not readable: "+root, err)
			}
			s.logger.Warn("skipping unreadable path", logging.String("path", path), logging.Error(err))
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if entry.IsDir() {
			if path != root && s.isIgnored(entry.Name()) {
				stats.Ignored++
				return filepath.SkipDir
			}
			return nil
		}
		if s.isIgnored(entry.Name()) {
			stats.Ignored++
			return nil
		}

		stats.TotalFiles++

		rel, err := filepath.Rel(root, path)
		if err != nil {
			s.logger.Warn("cannot relativize path", logging.String("path", path), logging.Error(err))
			stats.ParseFailures++
			return nil
		}
		rel = filepath.ToSlash(rel)

		if media.KindForPath(path) == media.KindOther {
			stats.SkippedKind++
			return nil
		}

		info, err := entry.Info()
		if err != nil {
			s.logger.Warn("cannot stat file", logging.String("path", path), logging.Error(err))
			stats.ParseFailures++
			return nil
		}

		rec, err := s.parser.Parse(rel, info.Size())
		switch {
		case errors.Is(err, services.ErrUnknownAlbum):
			stats.UnknownAlbums++
			s.logger.Warn("unknown album number", logging.String("file", rel), logging.Error(err))
			return nil
		case errors.Is(err, services.ErrParse):
			stats.ParseFailures++
			s.logger.Warn("could not parse filename", logging.String("file", rel), logging.Error(err))
			return nil
		case err != nil:
			return err
		}

		rec.SourcePath = path
		switch rec.Kind {
		case media.KindPhoto:
			stats.Photos++
		case media.KindVideo:
			stats.Videos++
		}
		stats.Bytes += rec.SizeBytes

		return visit(rec)
	})
	if err != nil {
		return stats, err
	}
	return stats, nil
}

func (s *Scanner) isIgnored(name string) bool {
	if len(s.ignored) == 0 {
		return false
	}
	_, ok := s.ignored[strings.TrimSpace(name)]
	return ok
}
