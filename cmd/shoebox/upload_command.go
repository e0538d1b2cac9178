package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"shoebox/internal/albums"
	"shoebox/internal/ledger"
	"shoebox/internal/photoslib"
	"shoebox/internal/runlock"
	"shoebox/internal/uploader"
)

func newUploadCommand(ctx *commandContext) *cobra.Command {
	var execute bool
	var batch int

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload organized media to the photo library",
		Long: "Upload organized media to the photo library, resuming from the\n" +
			"ledger. Runs as a preview by default; pass --execute to upload.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			lock, err := runlock.Acquire(cfg.LockPath())
			if err != nil {
				return err
			}
			defer lock.Release()

			store, err := ledger.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			dryRun := !execute
			if cmd.Flags().Changed("batch") {
				cfg.Upload.BatchSize = batch
			}

			var remote photoslib.Service
			if !dryRun {
				client, err := photoslib.New(cfg)
				if err != nil {
					return err
				}
				limiter := uploader.NewRateLimiter(time.Duration(cfg.Upload.CallDelayMS) * time.Millisecond)
				remote = uploader.Throttle(client, limiter, cfg.Upload.RateLimitUploadsOnly)
			}

			resolver := albums.NewResolver(store, remote, dryRun, logger)
			up := uploader.New(cfg, store, remote, resolver, dryRun, logger)

			summary, runErr := up.UploadAll(cmd.Context())

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Scanned", "Uploaded", "Repaired", "Skipped", "Transient", "Link failed", "Rejected", "Retries", "Calls", "Size"},
				[][]string{{
					strconv.Itoa(summary.Scanned),
					strconv.Itoa(summary.Uploaded),
					strconv.Itoa(summary.LinkRepaired),
					strconv.Itoa(summary.Skipped),
					strconv.Itoa(summary.FailedTransient),
					strconv.Itoa(summary.FailedLink),
					strconv.Itoa(summary.Rejected),
					strconv.Itoa(summary.Retries),
					strconv.Itoa(summary.RemoteCalls),
					formatBytes(summary.Bytes),
				}},
				0, 1, 2, 3, 4, 5, 6, 7, 8, 9,
			))

			if stats, err := store.Stats(cmd.Context()); err == nil {
				fmt.Fprintf(out, "Ledger: %d done (%s), %d transient failures, %d link failures, %d albums\n",
					stats.Done, formatBytes(stats.DoneBytes), stats.FailedTransient, stats.FailedLink, stats.Albums)
			}
			if dryRun {
				fmt.Fprintln(out, "Preview only: re-run with --execute to upload.")
			}
			return runErr
		},
	}

	cmd.Flags().BoolVar(&execute, "execute", false, "Upload files instead of previewing")
	cmd.Flags().IntVar(&batch, "batch", 0, "Cap files processed this run (overrides config batch_size)")
	return cmd
}
