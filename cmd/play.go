package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/jeopardy/internal/model"
	"github.com/sells-group/jeopardy/internal/service"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Let the AI agent play one round and print the outcome",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("play"); err != nil {
			return err
		}
		ctx := cmd.Context()

		shutdownTracing := initTracing(ctx)
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracing(flushCtx); err != nil {
				zap.L().Warn("tracing shutdown failed", zap.Error(err))
			}
		}()

		env, err := initTrivia(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		return playRound(ctx, env.Service, cmd)
	},
}

func playRound(ctx context.Context, svc *service.Service, cmd *cobra.Command) error {
	play, err := svc.AgentPlay(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(model.NewAgentPlayView(play))
}

func init() {
	rootCmd.AddCommand(playCmd)
}
