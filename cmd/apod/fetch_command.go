package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"apod/internal/apod"
	"apod/internal/desktop"
	"apod/internal/imagecache"
	"apod/internal/workflow"
)

type fetchOutput struct {
	Date          string `json:"date"`
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	MediaType     string `json:"media_type"`
	ImageURL      string `json:"image_url"`
	FilePath      string `json:"file_path"`
	SHA256        string `json:"sha256"`
	Cached        bool   `json:"cached"`
	BackgroundSet bool   `json:"background_set"`
	RequestID     string `json:"request_id"`
}

func runFetch(cmd *cobra.Command, ctx *commandContext, dateArg string, noBackground bool) error {
	date, err := workflow.ParseDate(dateArg, time.Now())
	if err != nil {
		return err
	}

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}

	client, err := apod.New(cfg.APOD.APIKey, cfg.APOD.BaseURL, apod.WithTimeout(cfg.RequestTimeout()))
	if err != nil {
		return err
	}

	var setter desktop.Setter
	if cfg.BackgroundEnabled() && !noBackground {
		commandSetter, err := desktop.NewCommandSetter(cfg.Background.Command, logger)
		if err != nil {
			return err
		}
		setter = commandSetter
	}

	return ctx.withCache(cmd, func(cache *imagecache.Cache) error {
		runner := &workflow.Runner{
			Client: client,
			Cache:  cache,
			Setter: setter,
			Logger: logger,
		}
		result, err := runner.Run(cmd.Context(), date)
		if err != nil {
			return err
		}
		return printFetchResult(cmd, ctx, result, setter != nil)
	})
}

func printFetchResult(cmd *cobra.Command, ctx *commandContext, result *workflow.Result, backgroundConfigured bool) error {
	entry := result.Entry
	if ctx.JSONMode() {
		return writeJSON(cmd, fetchOutput{
			Date:          result.Date.Format(apod.DateLayout),
			ID:            entry.ID,
			Title:         entry.Title,
			MediaType:     result.Info.MediaType,
			ImageURL:      result.ImageURL,
			FilePath:      entry.FilePath,
			SHA256:        entry.SHA256,
			Cached:        result.Cached,
			BackgroundSet: result.BackgroundSet,
			RequestID:     result.RequestID,
		})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s  %s\n", result.Date.Format(apod.DateLayout), entry.Title)
	if result.Info.Copyright != "" {
		fmt.Fprintf(out, "Copyright:  %s\n", result.Info.Copyright)
	}
	fmt.Fprintf(out, "Image:      %s\n", entry.FilePath)
	fmt.Fprintf(out, "Status:     %s\n", statusLabel(result))
	switch {
	case result.BackgroundSet:
		fmt.Fprintln(out, "Background: set")
	case backgroundConfigured:
		fmt.Fprintln(out, "Background: not set")
	default:
		fmt.Fprintln(out, "Background: skipped")
	}
	return nil
}

func statusLabel(result *workflow.Result) string {
	if result.Cached {
		return "already cached"
	}
	info, err := os.Stat(result.Entry.FilePath)
	if err != nil {
		return "downloaded"
	}
	return "downloaded " + humanize.Bytes(uint64(info.Size()))
}
