package genserver

import (
	"context"
	"time"

	"github.com/uber-go/tally"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Protocol-Lattice/promptly/src/config"
)

// Module wires the service into an fx application. The application must
// supply *config.Config, *zap.Logger and a Generator.
var Module = fx.Options(
	fx.Provide(newScope),
	fx.Provide(newSessions),
	fx.Provide(newServer),
	fx.Invoke(func(*Server) {}),
)

func newScope(lc fx.Lifecycle) tally.Scope {
	rs, closer := tally.NewRootScope(tally.ScopeOptions{
		Prefix: "promptly",
		Tags: map[string]string{
			"service": "genserver",
		},
	}, 1*time.Second)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return closer.Close()
		},
	})
	return rs
}

func newSessions(lc fx.Lifecycle, cfg *config.Config, stats tally.Scope, logger *zap.Logger) *Sessions {
	s := NewSessions(cfg.Server.SessionTTL, stats, logger)
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			s.Start(cfg.Server.SweepInterval)
			return nil
		},
		OnStop: func(context.Context) error {
			return s.Close()
		},
	})
	return s
}

func newServer(lc fx.Lifecycle, cfg *config.Config, gen Generator, sessions *Sessions, stats tally.Scope, logger *zap.Logger) *Server {
	srv := NewServer(cfg.Server.Addr, gen, sessions, stats, logger)
	lc.Append(fx.Hook{
		OnStart: srv.Start,
		OnStop:  srv.Stop,
	})
	return srv
}
