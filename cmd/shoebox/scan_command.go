package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"shoebox/internal/logging"
	"shoebox/internal/media"
	"shoebox/internal/naming"
	"shoebox/internal/scanner"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var archiveFlag string

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Walk archive sources and report what would be organized",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			archives, err := selectArchives(cfg, archiveFlag)
			if err != nil {
				return err
			}

			headers := []string{"Archive", "Files", "Photos", "Videos", "Unparsed", "Unknown albums", "Skipped", "Size"}
			rows := make([][]string, 0, len(archives))
			var totalBytes int64

			for _, archive := range archives {
				parser, err := naming.ParserFor(archive)
				if err != nil {
					return err
				}
				s := scanner.New(archive, parser, cfg.IgnoredFolderSet(), logger)
				albums := map[string]struct{}{}
				stats, err := s.Scan(cmd.Context(), func(rec media.Record) error {
					albums[rec.AlbumName] = struct{}{}
					return nil
				})
				if err != nil {
					return err
				}
				totalBytes += stats.Bytes

				rows = append(rows, []string{
					archive.Name,
					strconv.Itoa(stats.TotalFiles),
					strconv.Itoa(stats.Photos),
					strconv.Itoa(stats.Videos),
					strconv.Itoa(stats.ParseFailures),
					strconv.Itoa(stats.UnknownAlbums),
					strconv.Itoa(stats.SkippedKind),
					formatBytes(stats.Bytes),
				})
				logger.Info("archive scanned",
					logging.String("archive", archive.Name),
					logging.Int("albums", len(albums)),
					logging.Int("photos", stats.Photos),
					logging.Int("videos", stats.Videos))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(headers, rows, 1, 2, 3, 4, 5, 6, 7))
			fmt.Fprintf(out, "Total media size: %s\n", formatBytes(totalBytes))
			return nil
		},
	}

	cmd.Flags().StringVarP(&archiveFlag, "archive", "a", "", "Limit to one configured archive")
	return cmd
}
