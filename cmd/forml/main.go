// Command forml is the command-line entry point for building, training and
// applying forml pipelines.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/deeplearning2012/forml/cmd/forml/commands"
	"github.com/deeplearning2012/forml/pkg/version"
)

func main() {
	rootCmd := newRootCommand()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "forml",
		Short:         "forml - datascience project lifecycle management",
		Long:          "forml manages the build, train, tune, apply and evaluate lifecycle of datascience pipelines.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(
		commands.NewInitCommand(),
		commands.NewListCommand(),
		commands.NewTrainCommand(),
		commands.NewTuneCommand(),
		commands.NewApplyCommand(),
		commands.NewEvalCommand(),
		newVersionCommand(),
	)

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the forml build version",
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cobraCmd.OutOrStdout(), "forml %s (commit %s, built %s)\n",
				version.Version, version.Commit, version.Date)

			return err
		},
	}
}
