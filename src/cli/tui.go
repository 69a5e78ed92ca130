package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Protocol-Lattice/promptly/src"
)

func newTUICommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), a)
		},
	}
}

func runTUI(ctx context.Context, a *app) error {
	if ctx == nil {
		ctx = context.Background()
	}
	p := tea.NewProgram(src.NewModel(ctx, a.controller()), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
