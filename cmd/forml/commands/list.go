package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/deeplearning2012/forml/internal/asset"
	"github.com/deeplearning2012/forml/internal/provider"
)

// ListCommand holds the flags for the list command.
type ListCommand struct {
	registry string
	writer   io.Writer
}

// NewListCommand creates and configures the list command. Unlike the
// source CLI (whose `list()` takes an optional project), this reference
// registry exposes no top-level project enumeration, so project is
// required here; lineage remains optional.
func NewListCommand() *cobra.Command {
	lc := &ListCommand{writer: os.Stdout}

	cobraCmd := &cobra.Command{
		Use:   "list <project> [lineage]",
		Short: "show the content of the selected registry",
		Long:  "Persistent registry listing",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  lc.Run,
	}

	cobraCmd.Flags().StringVarP(&lc.registry, "registry", "P", "", "persistent registry config reference")

	return cobraCmd
}

// Run executes the list command.
func (lc *ListCommand) Run(_ *cobra.Command, args []string) error {
	platform, err := buildPlatform(lc.registry)
	if err != nil {
		return err
	}

	project := asset.ProjectKey(args[0])

	if len(args) == 1 {
		return lc.listLineages(platform.Registry(), project)
	}

	lineage, err := parseLineage(args[1])
	if err != nil {
		return err
	}

	return lc.listGenerations(platform.Registry(), project, lineage)
}

func (lc *ListCommand) listLineages(reg *provider.Registry, project asset.ProjectKey) error {
	lineages, err := reg.Lineages(project)
	if err != nil {
		return fmt.Errorf("forml: list lineages: %w", err)
	}

	tbl := table.NewWriter()
	tbl.SetOutputMirror(lc.writer)
	tbl.AppendHeader(table.Row{"lineage"})

	for _, l := range lineages {
		tbl.AppendRow(table.Row{l.String()})
	}

	tbl.Render()

	return nil
}

func (lc *ListCommand) listGenerations(reg *provider.Registry, project asset.ProjectKey, lineage asset.LineageKey) error {
	generations, err := reg.List(project, lineage)
	if err != nil {
		return fmt.Errorf("forml: list generations: %w", err)
	}

	tbl := table.NewWriter()
	tbl.SetOutputMirror(lc.writer)
	tbl.AppendHeader(table.Row{"generation", "trained", "size"})

	for _, g := range generations {
		handle := reg.Assets(project, lineage, g)

		row, err := lc.generationRow(handle, g)
		if err != nil {
			return err
		}

		tbl.AppendRow(row)
	}

	tbl.Render()

	return nil
}

func (lc *ListCommand) generationRow(handle asset.Generation, key asset.GenerationKey) (table.Row, error) {
	tag, err := handle.Tag()
	if err != nil {
		return nil, fmt.Errorf("forml: read generation %s tag: %w", key, err)
	}

	trained := color.RedString("no")
	if tag.Training.Timestamp != nil {
		trained = color.GreenString("yes")
	}

	var size uint64

	for i, id := range tag.States {
		blob, err := handle.State(i)
		if err != nil {
			return nil, fmt.Errorf("forml: read generation %s state %s: %w", key, id, err)
		}

		size += uint64(len(blob))
	}

	return table.Row{key.String(), trained, humanize.Bytes(size)}, nil
}
