package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/jeopardy/internal/oracle"
	"github.com/sells-group/jeopardy/internal/resilience"
	"github.com/sells-group/jeopardy/internal/service"
	"github.com/sells-group/jeopardy/internal/store"
	"github.com/sells-group/jeopardy/internal/tracing"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		st, err := store.NewSQLite(cfg.DatabaseURL())
		if err != nil {
			return nil, err
		}
		return st, nil
	case "postgres":
		st, err := store.NewPostgres(ctx, cfg.DatabaseURL(), &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func initOracle() oracle.Oracle {
	client := oracle.NewClient(cfg.Anthropic.Key)
	return oracle.NewAnthropic(client, oracle.Config{
		Model:            cfg.Anthropic.Model,
		MaxTokens:        cfg.Anthropic.MaxTokens,
		WebSearchMaxUses: cfg.Anthropic.WebSearchMaxUses,
		Retry: resilience.FromConfig(
			cfg.Oracle.MaxAttempts,
			cfg.Oracle.InitialBackoffMs,
			cfg.Oracle.MaxBackoffMs,
		),
	})
}

func initTracing(ctx context.Context) tracing.ShutdownFunc {
	return tracing.Init(ctx, tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		Exporter:    cfg.Tracing.Exporter,
		ServiceName: cfg.Tracing.ServiceName,
		Version:     version,
	})
}

// triviaEnv holds the long-lived dependencies shared by the commands that
// answer trivia requests.
type triviaEnv struct {
	Store   store.Store
	Service *service.Service
}

func (e *triviaEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

func initTrivia(ctx context.Context) (*triviaEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "init store")
	}
	return &triviaEnv{
		Store:   st,
		Service: service.New(st, initOracle()),
	}, nil
}
