package cli

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/Protocol-Lattice/promptly/src/config"
	"github.com/Protocol-Lattice/promptly/src/genserver"
)

func newServeCommand(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the generation service backed by an LLM agent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			svc := fx.New(serveOptions(a.cfg, a.logger, newAgentGenerator))
			if err := svc.Err(); err != nil {
				return err
			}
			svc.Run()
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8001)")
	return cmd
}

// serveOptions assembles the service around gen. Tests pass a scripted
// generator.
func serveOptions(cfg *config.Config, logger *zap.Logger, gen any) fx.Option {
	return fx.Options(
		fx.Supply(cfg, logger),
		fx.WithLogger(func() fxevent.Logger { return &fxevent.ZapLogger{Logger: logger} }),
		fx.Provide(gen),
		genserver.Module,
	)
}

func newAgentGenerator(cfg *config.Config, logger *zap.Logger) (genserver.Generator, error) {
	ag, err := genserver.BuildAgent(context.Background(), cfg.Server.Model, cfg.Server.UTCPProviders, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("agent ready", zap.String("model", cfg.Server.Model))
	return ag, nil
}
