// Package cli handles the command-line interface logic
// using the Cobra library.
package cli

import (
	"github.com/spf13/cobra"
)

type GenerateOptions struct {
	Seed uint64
	Rows int
}

func newGenerateCmd(root *RootOptions) *cobra.Command {
	opts := &GenerateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the synthetic sales dataset and upload it as parquet",
		RunE: func(c *cobra.Command, args []string) error {
			return runGenerate(c, root, opts)
		},
	}

	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "Random seed (overrides GENERATOR_SEED)")
	cmd.Flags().IntVarP(&opts.Rows, "rows", "n", 0, "Number of records (overrides GENERATOR_ROWS)")
	return cmd
}

func newInitSchemaCmd(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init-schema",
		Short: "Create the destination table if it does not exist",
		RunE: func(c *cobra.Command, args []string) error {
			return runInitSchema(c, root)
		},
	}
}

func newRunCmd(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline once: create_table, extract_from_minio, load_to_mysql",
		RunE: func(c *cobra.Command, args []string) error {
			return runPipeline(c, root)
		},
	}
}

func newScheduleCmd(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run the pipeline now and then on every schedule interval until interrupted",
		RunE: func(c *cobra.Command, args []string) error {
			return runSchedule(c, root)
		},
	}
}
