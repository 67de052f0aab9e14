package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// InitCommand holds the flags for the init command.
type InitCommand struct{}

// NewInitCommand creates and configures the init command.
func NewInitCommand() *cobra.Command {
	ic := &InitCommand{}

	return &cobra.Command{
		Use:   "init <name>",
		Short: "create skeleton for a new project",
		Long:  "New project setup",
		Args:  cobra.ExactArgs(1),
		RunE:  ic.Run,
	}
}

// Run executes the init command.
func (ic *InitCommand) Run(_ *cobra.Command, args []string) error {
	return fmt.Errorf("%w: creating project %q", ErrNotImplemented, args[0])
}
