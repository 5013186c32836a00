package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"apod/internal/imagecache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the local image cache",
		Long: `Inspect the local image cache.

Every downloaded image is stored once, keyed by the SHA-256 digest of its
bytes, next to an SQLite index in the configured cache directory.

Commands:
  list     - Table of cached images
  titles   - One cached title per line, oldest first
  show     - Full details for one entry (see 'list' for ids)
  stats    - Entry count, disk usage, and free space`,
	}

	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheTitlesCommand(ctx))
	cacheCmd.AddCommand(newCacheShowCommand(ctx))
	cacheCmd.AddCommand(newCacheStatsCommand(ctx))

	return cacheCmd
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached images",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCache(cmd, func(cache *imagecache.Cache) error {
				entries, err := cache.List(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					if entries == nil {
						entries = []*imagecache.Entry{}
					}
					return writeJSON(cmd, entries)
				}

				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "Image cache: empty")
					return nil
				}

				rows := make([][]string, 0, len(entries))
				for _, entry := range entries {
					rows = append(rows, []string{
						strconv.FormatInt(entry.ID, 10),
						entry.Title,
						fileSize(entry.FilePath),
						filepath.Base(entry.FilePath),
					})
				}
				fmt.Fprintf(out, "Image cache: %d entries\n", len(entries))
				fmt.Fprintln(out, renderTable(out,
					[]string{"ID", "Title", "Size", "File"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft}))
				return nil
			})
		},
	}
}

func newCacheTitlesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "titles",
		Short: "Print every cached title, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCache(cmd, func(cache *imagecache.Cache) error {
				titles, err := cache.ListTitles(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, titles)
				}
				out := cmd.OutOrStdout()
				for _, title := range titles {
					fmt.Fprintln(out, title)
				}
				return nil
			})
		},
	}
}

func newCacheShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a cached entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid id %q: expected a positive integer", args[0])
			}
			return ctx.withCache(cmd, func(cache *imagecache.Cache) error {
				entry, err := cache.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				if entry == nil {
					return fmt.Errorf("no cache entry with id %d", id)
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, entry)
				}

				_, statErr := os.Stat(entry.FilePath)
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "ID:          %d\n", entry.ID)
				fmt.Fprintf(out, "Title:       %s\n", entry.Title)
				fmt.Fprintf(out, "File:        %s\n", entry.FilePath)
				fmt.Fprintf(out, "On disk:     %s\n", yesNo(statErr == nil))
				fmt.Fprintf(out, "Size:        %s\n", fileSize(entry.FilePath))
				fmt.Fprintf(out, "SHA-256:     %s\n", entry.SHA256)
				if explanation := strings.TrimSpace(entry.Explanation); explanation != "" {
					fmt.Fprintf(out, "\n%s\n", explanation)
				}
				return nil
			})
		},
	}
}

type statsOutput struct {
	Dir          string `json:"dir"`
	Entries      int    `json:"entries"`
	TotalBytes   int64  `json:"total_bytes"`
	MissingFiles int    `json:"missing_files"`
	FreeBytes    uint64 `json:"free_bytes,omitempty"`
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache size and free space",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCache(cmd, func(cache *imagecache.Cache) error {
				stats, err := cache.Stats(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, statsOutput{
						Dir:          cache.Dir(),
						Entries:      stats.Entries,
						TotalBytes:   stats.TotalBytes,
						MissingFiles: stats.MissingFiles,
						FreeBytes:    stats.FreeBytes,
					})
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Directory:     %s\n", cache.Dir())
				fmt.Fprintf(out, "Entries:       %s\n", humanize.Comma(int64(stats.Entries)))
				fmt.Fprintf(out, "Total size:    %s\n", humanize.Bytes(uint64(stats.TotalBytes)))
				if stats.MissingFiles > 0 {
					fmt.Fprintf(out, "Missing files: %d\n", stats.MissingFiles)
				}
				if stats.FreeKnown {
					fmt.Fprintf(out, "Free space:    %s\n", humanize.Bytes(stats.FreeBytes))
				}
				return nil
			})
		},
	}
}

func fileSize(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return "missing"
	}
	return humanize.Bytes(uint64(info.Size()))
}
