package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Protocol-Lattice/promptly/src"
)

type generateFlags struct {
	out   string
	zip   bool
	local bool
}

func newGenerateCommand(a *app) *cobra.Command {
	var f generateFlags
	cmd := &cobra.Command{
		Use:   "generate <prompt>",
		Short: "Optimize a prompt and generate a project without the TUI",
		Example: `  promptly generate "Build a todo app" --out ./todo
  promptly generate "Create a weather dashboard" --zip`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctrl := a.controller()
			res, err := src.RunHeadless(ctx, ctrl, strings.Join(args, " "), f.out)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Session: %s\n\nOptimized prompt:\n%s\n\n%s\n\n", res.SessionID, res.OptimizedPrompt, res.Tree)
			for _, act := range res.Actions {
				switch act.Action {
				case "saved":
					fmt.Fprintf(w, "saved     %s (%d lines)\n", act.Path, act.Lines)
				case "skipped":
					fmt.Fprintf(w, "skipped   %s: %s\n", act.Path, act.Message)
				case "error":
					fmt.Fprintf(w, "error     %s: %v\n", act.Path, act.Err)
				default:
					fmt.Fprintf(w, "generated %s (%d lines)\n", act.Path, act.Lines)
				}
			}

			if !f.zip {
				return nil
			}
			var saved string
			if f.local {
				saved, err = ctrl.SaveLocalArchive()
			} else {
				saved, err = ctrl.DownloadArchive(ctx)
			}
			if err != nil {
				return fmt.Errorf("%s: %w", ctrl.Status().Message, err)
			}
			fmt.Fprintf(w, "\n%s\n%s\n", ctrl.Status().Message, saved)
			return nil
		},
	}
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "write the generated files below this directory")
	cmd.Flags().BoolVar(&f.zip, "zip", false, "save the project as generated_code.zip in the download directory")
	cmd.Flags().BoolVar(&f.local, "local", false, "with --zip, build the archive locally instead of asking the service")
	return cmd
}
