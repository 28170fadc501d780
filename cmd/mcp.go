package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/jeopardy/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the trivia tools over MCP on stdin/stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("mcp"); err != nil {
			return err
		}

		env, err := initTrivia(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		// Logs go to stderr; stdout carries the protocol.
		zap.L().Info("starting mcp server", zap.String("version", version))
		return mcpserver.Serve(mcpserver.New(env.Service, version))
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
