package main

import (
	"time"

	"github.com/spf13/cobra"

	"apod/internal/workflow"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var logLevelFlag string
	var jsonFlag bool
	var noBackground bool

	ctx := newCommandContext(&configFlag, &logLevelFlag, &jsonFlag)

	rootCmd := &cobra.Command{
		Use:   "apod [YYYY-MM-DD]",
		Short: "Fetch and cache NASA's Astronomy Picture of the Day",
		Long: `Fetch NASA's Astronomy Picture of the Day for a date (today when omitted),
store the image in the local cache, and apply it as the desktop background
when [background].command is configured.`,
		Args:          dateArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			dateArg := ""
			if len(args) == 1 {
				dateArg = args[0]
			}
			return runFetch(cmd, ctx, dateArg, noBackground)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Override logging.level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "Write machine-readable JSON to stdout")
	rootCmd.Flags().BoolVar(&noBackground, "no-background", false, "Cache the image without setting the desktop background")

	rootCmd.AddCommand(newCacheCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newDoctorCommand(ctx))

	return rootCmd
}

// dateArgs accepts at most one date and rejects a malformed or out-of-range
// one before any configuration is loaded or directory created.
func dateArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.MaximumNArgs(1)(cmd, args); err != nil {
		return err
	}
	if len(args) == 1 {
		if _, err := workflow.ParseDate(args[0], time.Now()); err != nil {
			return err
		}
	}
	return nil
}
