package genserver

import (
	"context"
	"fmt"
	"os"

	agent "github.com/Protocol-Lattice/go-agent"
	adk "github.com/Protocol-Lattice/go-agent/src/adk"
	adkmodules "github.com/Protocol-Lattice/go-agent/src/adk/modules"
	"github.com/Protocol-Lattice/go-agent/src/memory"
	"github.com/Protocol-Lattice/go-agent/src/models"
	"github.com/Protocol-Lattice/go-agent/src/tools"
	utcp "github.com/universal-tool-calling-protocol/go-utcp"
	"go.uber.org/zap"
)

// Generator produces model text for a prompt within a session.
type Generator interface {
	Generate(ctx context.Context, sessionID, prompt string) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, sessionID, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, sessionID, prompt string) (string, error) {
	return f(ctx, sessionID, prompt)
}

// BuildAgent assembles the Gemini backed agent. A UTCP client is attached
// when providersPath names an existing providers file.
func BuildAgent(ctx context.Context, model, providersPath string, logger *zap.Logger) (*agent.Agent, error) {
	var client utcp.UtcpClientInterface
	if providersPath != "" {
		c, err := BuildUTCP(ctx, providersPath)
		if err != nil {
			logger.Warn("UTCP unavailable", zap.Error(err))
		} else {
			client = c
		}
	}

	memOpts := memory.DefaultOptions()
	builder, err := adk.New(
		ctx,
		adk.WithDefaultSystemPrompt(AgentSystemPrompt),
		adk.WithModules(
			adkmodules.InMemoryMemoryModule(10000, memory.AutoEmbedder(), &memOpts),
			adkmodules.NewModelModule("gemini", func(_ context.Context) (models.Agent, error) {
				return models.NewGeminiLLM(ctx, model, "Project code generator")
			}),
			adkmodules.NewToolModule("essentials",
				adkmodules.StaticToolProvider([]agent.Tool{&tools.EchoTool{}}, nil),
			),
		),
		adk.WithUTCP(client),
	)
	if err != nil {
		return nil, fmt.Errorf("build agent: %w", err)
	}
	return builder.BuildAgent(ctx)
}

// BuildUTCP opens a UTCP client over the providers file at path.
func BuildUTCP(ctx context.Context, path string) (utcp.UtcpClientInterface, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("providers file: %w", err)
	}
	client, err := utcp.NewUTCPClient(ctx, &utcp.UtcpClientConfig{ProvidersFilePath: path}, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("utcp client: %w", err)
	}
	return client, nil
}
