package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"shoebox/internal/logging"
	"shoebox/internal/media"
	"shoebox/internal/naming"
	"shoebox/internal/organizer"
	"shoebox/internal/runlock"
	"shoebox/internal/scanner"
	"shoebox/internal/services"
)

func newOrganizeCommand(ctx *commandContext) *cobra.Command {
	var archiveFlag string
	var execute bool

	cmd := &cobra.Command{
		Use:   "organize",
		Short: "Copy archive media into the organized tree",
		Long: "Copy archive media into the organized tree. Runs as a preview by\n" +
			"default; pass --execute to actually copy files.",
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

			dryRun := !execute
			if !dryRun {
				lock, err := runlock.Acquire(cfg.LockPath())
				if err != nil {
					return err
				}
				defer lock.Release()
			}
			org := organizer.New(cfg, dryRun, logger)

			headers := []string{"Archive", "Albums", "Copied", "Skipped", "Conflicts", "Size"}
			rows := make([][]string, 0, len(archives))

			for _, archive := range archives {
				parser, err := naming.ParserFor(archive)
				if err != nil {
					return err
				}

				var totals organizer.Totals
				albums := map[string]struct{}{}
				s := scanner.New(archive, parser, cfg.IgnoredFolderSet(), logger)
				_, err = s.Scan(cmd.Context(), func(rec media.Record) error {
					albums[rec.AlbumName] = struct{}{}
					res, err := org.Organize(rec)
					if err != nil {
						if errors.Is(err, services.ErrConflict) {
							totals.Add(rec, res)
							logger.Warn("destination conflict",
								logging.String("source", rec.SourcePath),
								logging.String("dest", res.DestPath))
							return nil
						}
						return err
					}
					totals.Add(rec, res)
					return nil
				})
				if err != nil {
					return err
				}

				rows = append(rows, []string{
					archive.Name,
					strconv.Itoa(len(albums)),
					strconv.Itoa(totals.Copied),
					strconv.Itoa(totals.Skipped),
					strconv.Itoa(totals.Conflicts),
					formatBytes(totals.Bytes),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(headers, rows, 1, 2, 3, 4, 5))
			if dryRun {
				fmt.Fprintln(out, "Preview only: re-run with --execute to copy files.")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&archiveFlag, "archive", "a", "", "Limit to one configured archive")
	cmd.Flags().BoolVar(&execute, "execute", false, "Copy files instead of previewing")
	return cmd
}
