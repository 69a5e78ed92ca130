// Package cli wires configuration, logging and the workflow into the
// promptly commands.
package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Protocol-Lattice/promptly/src/config"
	"github.com/Protocol-Lattice/promptly/src/editor"
	"github.com/Protocol-Lattice/promptly/src/logging"
	"github.com/Protocol-Lattice/promptly/src/session"
	"github.com/Protocol-Lattice/promptly/src/terminal"
	"github.com/Protocol-Lattice/promptly/src/workflow"
	"github.com/Protocol-Lattice/promptly/src/workspace"
)

// Version is stamped at build time.
var Version = "dev"

type globalFlags struct {
	configPath  string
	backendURL  string
	downloadDir string
	logLevel    string
	timeout     time.Duration
}

// app is the state shared by every command once flags are parsed.
type app struct {
	flags  globalFlags
	cfg    *config.Config
	logger *zap.Logger
	closer io.Closer
}

func (a *app) load() error {
	var (
		cfg *config.Config
		err error
	)
	if a.flags.configPath != "" {
		cfg, err = config.LoadFile(a.flags.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if a.flags.backendURL != "" {
		cfg.BackendURL = a.flags.backendURL
	}
	if a.flags.downloadDir != "" {
		cfg.DownloadDir = a.flags.downloadDir
	}
	if a.flags.logLevel != "" {
		cfg.Logging.Level = a.flags.logLevel
	}
	if a.flags.timeout > 0 {
		cfg.RequestTimeout = a.flags.timeout
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, closer, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	a.cfg, a.logger, a.closer = cfg, logger, closer
	a.logger.Debug("config loaded", zap.String("backend_url", cfg.BackendURL))
	return nil
}

func (a *app) close() {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if a.closer != nil {
		_ = a.closer.Close()
	}
}

// controller builds a workflow bound to the configured backend.
func (a *app) controller() *workflow.Controller {
	opts := []session.Option{session.WithLogger(a.logger)}
	if a.cfg.RequestTimeout > 0 {
		opts = append(opts, session.WithTimeout(a.cfg.RequestTimeout))
	}
	store := workspace.NewStore(a.logger)
	return workflow.New(workflow.Options{
		Service:   session.NewClient(a.cfg.BackendURL, opts...),
		Store:     store,
		Editor:    editor.NewCoordinator(store, editor.SystemClipboard{}),
		Shell:     terminal.NewShell(terminal.Simulator{Files: store}),
		Saver:     session.Saver{Dir: a.cfg.ResolveDownloadDir()},
		Previewer: terminal.StaticPreview(a.cfg.PreviewURL),
		Logger:    a.logger,
	})
}

// NewRootCommand returns the promptly command tree. Without a subcommand it
// starts the TUI.
func NewRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "promptly",
		Short: "Describe an app, get a project you can edit and download",
		Long: `Promptly turns a short description into an optimized prompt, asks the
generation service for a complete project, and opens the files in a
terminal workspace where they can be edited, diffed, copied and downloaded.

Configuration is read from ` + config.Path() + `.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), a)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configPath, "config", "", fmt.Sprintf("config file (default %s)", config.Path()))
	pf.StringVar(&a.flags.backendURL, "backend", "", "generation service base URL")
	pf.StringVar(&a.flags.downloadDir, "download-dir", "", "directory for downloaded files")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.DurationVar(&a.flags.timeout, "timeout", 0, "per request timeout, 0 for none")

	root.AddCommand(
		newTUICommand(a),
		newGenerateCommand(a),
		newServeCommand(a),
		newMCPCommand(a),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}
