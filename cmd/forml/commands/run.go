package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deeplearning2012/forml/internal/asset"
	"github.com/deeplearning2012/forml/internal/runner"
)

// runFlags holds the flags shared by train/tune/apply/eval, mirroring the
// source CLI's `-R/-P/-I/-O/--lower/--upper` parameter set.
type runFlags struct {
	runnerRef string
	registry  string
	feeds     []string
	sink      string
	lower     string
	upper     string
}

func (f *runFlags) bind(cobraCmd *cobra.Command) {
	cobraCmd.Flags().StringVarP(&f.runnerRef, "runner", "R", "", "runtime runner reference")
	cobraCmd.Flags().StringVarP(&f.registry, "registry", "P", "", "persistent registry config reference")
	cobraCmd.Flags().StringSliceVarP(&f.feeds, "feed", "I", nil, "input feed references")
	cobraCmd.Flags().StringVarP(&f.sink, "sink", "O", "", "output sink reference")
	cobraCmd.Flags().StringVar(&f.lower, "lower", "", "lower dataset ordinal")
	cobraCmd.Flags().StringVar(&f.upper, "upper", "", "upper dataset ordinal")
}

// RunCommand implements the train/apply/eval subcommands, which share
// identical flag parsing and platform assembly and differ only in which
// runner.Runner method they invoke.
type RunCommand struct {
	runFlags

	invoke func(r *runner.Runner, ctx context.Context, lower, upper any) error //nolint:revive // ctx after receiver mirrors call site order, not a new API
	loader ProjectLoader
}

// NewTrainCommand creates and configures the train command.
func NewTrainCommand() *cobra.Command {
	return newRunCommand("train", "train new generation of given (or default) project lineage",
		func(r *runner.Runner, ctx context.Context, lower, upper any) error { return r.Train(ctx, lower, upper) })
}

// NewApplyCommand creates and configures the apply command.
func NewApplyCommand() *cobra.Command {
	return newRunCommand("apply", "apply given (or default) generation",
		func(r *runner.Runner, ctx context.Context, lower, upper any) error { return r.Apply(ctx, lower, upper) })
}

// NewEvalCommand creates and configures the eval command. Per the
// source's `cvscore` rename-pending TODO, eval invokes CVScore.
func NewEvalCommand() *cobra.Command {
	return newRunCommand("eval", "evaluate predictions of given (or default) generation",
		func(r *runner.Runner, ctx context.Context, lower, upper any) error { return r.CVScore(ctx, lower, upper) })
}

// NewTuneCommand creates and configures the tune command. Tuning a
// generation (writing Tag.Tuning) has no Runner entry point in the core
// spec's three exposed operations (train/apply/cvscore), matching the
// source CLI which also leaves `tune` unimplemented.
func NewTuneCommand() *cobra.Command {
	tc := &RunCommand{}

	cobraCmd := &cobra.Command{
		Use:   "tune <project> [lineage] [generation]",
		Short: "tune new generation of given (or default) project lineage",
		Long:  "Tune mode execution",
		Args:  cobra.RangeArgs(1, 3),
		RunE: func(_ *cobra.Command, args []string) error {
			return fmt.Errorf("%w: tuning project %q", ErrNotImplemented, args[0])
		},
	}

	tc.bind(cobraCmd)

	return cobraCmd
}

func newRunCommand(
	use, short string, invoke func(r *runner.Runner, ctx context.Context, lower, upper any) error,
) *cobra.Command {
	rc := &RunCommand{invoke: invoke, loader: defaultProjectLoader}

	cobraCmd := &cobra.Command{
		Use:   fmt.Sprintf("%s <project> [lineage] [generation]", use),
		Short: short,
		Args:  cobra.RangeArgs(1, 3),
		RunE:  rc.Run,
	}

	rc.bind(cobraCmd)

	return cobraCmd
}

// WithProjectLoader overrides the command's project loader, letting an
// embedding application supply a real packaged-project resolver.
func (rc *RunCommand) WithProjectLoader(loader ProjectLoader) *RunCommand {
	rc.loader = loader

	return rc
}

// Run executes a train/apply/eval subcommand.
func (rc *RunCommand) Run(cobraCmd *cobra.Command, args []string) error {
	project, lineageArg := args[0], ""
	if len(args) > 1 {
		lineageArg = args[1]
	}

	platform, err := buildPlatform(rc.registry)
	if err != nil {
		return err
	}

	lineageKey, err := parseLineage(lineageArg)
	if err != nil {
		return err
	}

	loader := rc.loader
	if loader == nil {
		loader = defaultProjectLoader
	}

	projectInputs, err := loader(project, lineageArg)
	if err != nil {
		return err
	}

	lineage := platform.Registry().Lineage(asset.ProjectKey(project), lineageKey)

	r, err := platform.Runner(projectInputs, lineage, firstFeed(rc.feeds), rc.sink, nil)
	if err != nil {
		return err
	}

	return rc.invoke(r, cobraCmd.Context(), rc.lower, rc.upper)
}
