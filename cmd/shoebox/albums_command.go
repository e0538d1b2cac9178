package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"shoebox/internal/ledger"
)

func newAlbumsCommand(ctx *commandContext) *cobra.Command {
	albumsCmd := &cobra.Command{
		Use:   "albums",
		Short: "Inspect and manage the cached album mappings",
	}

	albumsCmd.AddCommand(newAlbumsListCommand(ctx))
	albumsCmd.AddCommand(newAlbumsSeedCommand(ctx))
	albumsCmd.AddCommand(newAlbumsExportCommand(ctx))

	return albumsCmd
}

func newAlbumsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached album name to remote ID mappings",
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

			albums, err := store.ListAlbums(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(albums) == 0 {
				fmt.Fprintln(out, "No cached albums.")
				return nil
			}
			rows := make([][]string, 0, len(albums))
			for _, album := range albums {
				rows = append(rows, []string{album.Name, album.RemoteID, album.CreatedAt.Format("2006-01-02 15:04")})
			}
			fmt.Fprintln(out, renderTable([]string{"Album", "Remote ID", "Cached"}, rows))
			return nil
		},
	}
}

func newAlbumsSeedCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <album-name> <remote-id>",
		Short: "Record an existing remote album so uploads reuse it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			remoteID := strings.TrimSpace(args[1])
			if name == "" || remoteID == "" {
				return fmt.Errorf("album name and remote ID must be non-empty")
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ledger.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.PutAlbum(cmd.Context(), name, remoteID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cached album %q as %s\n", name, remoteID)
			return nil
		},
	}
}

func newAlbumsExportCommand(ctx *commandContext) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export cached album mappings as JSON",
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

			albums, err := store.ListAlbums(cmd.Context())
			if err != nil {
				return err
			}

			payload, err := json.MarshalIndent(albums, "", "  ")
			if err != nil {
				return fmt.Errorf("encode albums: %w", err)
			}
			payload = append(payload, '\n')

			if outputPath == "" {
				_, err := cmd.OutOrStdout().Write(payload)
				return err
			}
			if err := os.WriteFile(outputPath, payload, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", outputPath, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d albums to %s\n", len(albums), outputPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write JSON to a file instead of stdout")
	return cmd
}
