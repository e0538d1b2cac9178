package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"shoebox/internal/ledger"
)

func newLedgerCommand(ctx *commandContext) *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect the upload ledger",
	}

	ledgerCmd.AddCommand(newLedgerStatsCommand(ctx))
	ledgerCmd.AddCommand(newLedgerFailedCommand(ctx))

	return ledgerCmd
}

func newLedgerStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize ledger state counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ledger.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Done", "Transient failures", "Link failures", "Albums", "Uploaded size"},
				[][]string{{
					strconv.Itoa(stats.Done),
					strconv.Itoa(stats.FailedTransient),
					strconv.Itoa(stats.FailedLink),
					strconv.Itoa(stats.Albums),
					formatBytes(stats.DoneBytes),
				}},
				0, 1, 2, 3, 4,
			))
			return nil
		},
	}
}

func newLedgerFailedCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "failed",
		Short: "List uploads the next run will retry",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ledger.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			failed, err := store.ListFailed(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(failed) == 0 {
				fmt.Fprintln(out, "No failed uploads.")
				return nil
			}
			rows := make([][]string, 0, len(failed))
			for _, upload := range failed {
				rows = append(rows, []string{
					upload.AlbumName,
					upload.Identity,
					string(upload.State),
					formatBytes(upload.SizeBytes),
					upload.ErrorMessage,
				})
			}
			fmt.Fprintln(out, renderTable([]string{"Album", "Identity", "State", "Size", "Error"}, rows, 3))
			return nil
		},
	}
}
