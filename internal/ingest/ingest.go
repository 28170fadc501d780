// Package ingest loads the Jeopardy! clue dataset from CSV into the
// question store.
package ingest

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/jeopardy/internal/model"
	"github.com/sells-group/jeopardy/internal/store"
)

// DefaultBatchSize is the number of rows written per transaction.
const DefaultBatchSize = 1000

// Writer is the store write path used by ingestion.
type Writer interface {
	InsertQuestions(ctx context.Context, questions []model.Question) (int64, error)
}

var _ Writer = (store.Store)(nil)

// Options controls an ingestion run.
type Options struct {
	// BatchSize is the number of rows per transaction. Default: 1000.
	BatchSize int

	// MaxValue drops rows whose dollar value exceeds it. 0 keeps every row.
	MaxValue int64

	// Source opens RunFile locations. Default: DefaultSource().
	Source *Source
}

// Result summarizes an ingestion run.
type Result struct {
	RunID    string `json:"run_id"`
	Inserted int64  `json:"inserted"`
	Skipped  int64  `json:"skipped"`
	Filtered int64  `json:"filtered"`
	Batches  int    `json:"batches"`
}

// Ingester writes parsed rows to a store in batches.
type Ingester struct {
	w    Writer
	opts Options
}

// New creates an Ingester.
func New(w Writer, opts Options) *Ingester {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.MaxValue < 0 {
		opts.MaxValue = 0
	}
	if opts.Source == nil {
		opts.Source = DefaultSource()
	}
	return &Ingester{w: w, opts: opts}
}

// RunFile ingests the CSV at location, a local path or an http(s) URL.
func (in *Ingester) RunFile(ctx context.Context, location string) (*Result, error) {
	rc, err := in.opts.Source.Open(ctx, location)
	if err != nil {
		return nil, err
	}
	defer rc.Close() //nolint:errcheck
	return in.Run(ctx, rc)
}

// Run ingests CSV rows from r. Malformed rows are skipped with a warning.
// Each batch is written atomically; on a failed batch the run stops and
// returns the error, leaving earlier batches committed.
func (in *Ingester) Run(ctx context.Context, r io.Reader) (*Result, error) {
	res := &Result{RunID: uuid.New().String()}
	log := zap.L().With(zap.String("run_id", res.RunID))
	log.Info("ingest: starting",
		zap.Int("batch_size", in.opts.BatchSize),
		zap.Int64("max_value", in.opts.MaxValue),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rows, errs := streamCSV(ctx, r)
	batch := make([]model.Question, 0, in.opts.BatchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		res.Batches++
		n, err := in.w.InsertQuestions(ctx, batch)
		if err != nil {
			return eris.Wrapf(err, "ingest: batch %d", res.Batches)
		}
		res.Inserted += n
		log.Info("ingest: batch committed",
			zap.Int("batch", res.Batches),
			zap.Int64("inserted", res.Inserted),
		)
		batch = batch[:0]
		return nil
	}

	for rec := range rows {
		q, err := parseRow(rec.fields)
		if err != nil {
			res.Skipped++
			log.Warn("ingest: skipping row", zap.Int("line", rec.line), zap.Error(err))
			continue
		}
		if in.opts.MaxValue > 0 && q.Value.Valid && q.Value.Amount > in.opts.MaxValue {
			res.Filtered++
			continue
		}

		batch = append(batch, q)
		if len(batch) >= in.opts.BatchSize {
			if err := flush(); err != nil {
				return res, err
			}
		}
	}
	if err := <-errs; err != nil {
		return res, eris.Wrap(err, "ingest: read dataset")
	}
	if err := flush(); err != nil {
		return res, err
	}

	log.Info("ingest: complete",
		zap.Int64("inserted", res.Inserted),
		zap.Int64("skipped", res.Skipped),
		zap.Int64("filtered", res.Filtered),
		zap.Int("batches", res.Batches),
	)
	return res, nil
}
