package cli

import (
	"github.com/BartekS5/salesflow/pkg/logger"
	"github.com/spf13/cobra"
)

// RootOptions are the flags shared by every sub-command.
type RootOptions struct {
	PipelineFile string
	EnvFile      string
	LogFile      string
	LogLevel     string

	// logLevelSet is true when --log-level was given explicitly; it then
	// wins over LOG_LEVEL.
	logLevelSet bool
}

func NewRootCmd() *cobra.Command {
	opts := &RootOptions{}

	rootCmd := &cobra.Command{
		Use:   "salesflow",
		Short: "salesflow - load synthetic sales data from object storage into SQL",
		Long: `salesflow generates a synthetic sales dataset, uploads it to an S3-compatible
bucket as parquet and loads it into a relational table on a daily schedule,
optionally reporting lineage for every stage.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.logLevelSet = cmd.Flags().Changed("log-level")
			return logger.InitLogger(opts.LogFile, opts.LogLevel)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Close()
		},
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.PipelineFile, "pipeline-file", "p", "", "Path to a YAML pipeline definition")
	rootCmd.PersistentFlags().StringVarP(&opts.EnvFile, "env-file", "e", "", "Path to an .env file (defaults to ./.env when present)")
	rootCmd.PersistentFlags().StringVar(&opts.LogFile, "log-file", "", "Also append logs to this file")
	rootCmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newGenerateCmd(opts),
		newInitSchemaCmd(opts),
		newRunCmd(opts),
		newScheduleCmd(opts),
	)

	return rootCmd
}
