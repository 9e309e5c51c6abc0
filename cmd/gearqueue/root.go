package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"gearqueue/internal/queue"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var logLevelFlag string
	moduleFlags := make(map[string]*string)

	ctx := newCommandContext(&configFlag, &logLevelFlag, moduleFlags)

	rootCmd := &cobra.Command{
		Use:           "gearqueue",
		Short:         "Inspect and maintain a gearman libsqlite3 persistent queue",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			ctx.markChangedFlags(cmd)
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Override the configured log level (debug, info, warn, error)")
	for _, spec := range queue.OptionSpecs() {
		value := new(string)
		moduleFlags[spec.Name] = value
		rootCmd.PersistentFlags().StringVar(value, moduleFlagName(spec.Name), "", optionUsage(spec))
	}

	rootCmd.AddCommand(newInitCommand(ctx))
	rootCmd.AddCommand(newAddCommand(ctx))
	rootCmd.AddCommand(newDoneCommand(ctx))
	rootCmd.AddCommand(newListCommand(ctx))
	rootCmd.AddCommand(newStatsCommand(ctx))
	rootCmd.AddCommand(newCheckCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}

func moduleFlagName(option string) string {
	return queue.ModuleName + "-" + option
}

func optionUsage(spec queue.OptionSpec) string {
	usage := spec.Help
	if spec.Required {
		usage += " Required unless set in the config file."
	}
	return strings.TrimSpace(fmt.Sprintf("%s (%s)", usage, spec.ValueTag))
}
