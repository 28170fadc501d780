package main

import (
	"encoding/json"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/jeopardy/internal/ingest"
)

var (
	ingestCSV       string
	ingestBatchSize int
	ingestMaxValue  int64
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load the clue dataset CSV into the question store",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("batch-size") {
			cfg.Ingest.BatchSize = ingestBatchSize
		}
		if cmd.Flags().Changed("max-value") {
			cfg.Ingest.MaxValue = ingestMaxValue
		}
		path := ingestCSV
		if path == "" {
			path = cfg.Ingest.DatasetPath
		}
		if err := cfg.Validate("ingest"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return eris.Wrap(err, "init store")
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate")
		}

		res, err := ingest.New(st, ingest.Options{
			BatchSize: cfg.Ingest.BatchSize,
			MaxValue:  cfg.Ingest.MaxValue,
		}).RunFile(ctx, path)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestCSV, "csv", "", "dataset CSV path or http(s) URL (default from config)")
	ingestCmd.Flags().IntVar(&ingestBatchSize, "batch-size", ingest.DefaultBatchSize, "rows per transaction")
	ingestCmd.Flags().Int64Var(&ingestMaxValue, "max-value", 0, "drop clues worth more than this many dollars (0 keeps all)")
	rootCmd.AddCommand(ingestCmd)
}
