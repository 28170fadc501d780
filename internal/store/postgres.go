package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/jeopardy/internal/db"
	"github.com/sells-group/jeopardy/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

const questionColumns = `id, show_number, air_date, round, category, value_in_dollars, question, answer`

const (
	pgFindRandomValue = `SELECT ` + questionColumns + ` FROM jeopardy_questions
WHERE round = $1 AND value_in_dollars = $2::bigint ORDER BY random() LIMIT 1`
	pgFindRandomNull = `SELECT ` + questionColumns + ` FROM jeopardy_questions
WHERE round = $1 AND value_in_dollars IS NULL ORDER BY random() LIMIT 1`
	pgFindByID   = `SELECT ` + questionColumns + ` FROM jeopardy_questions WHERE id = $1`
	pgListBoards = `SELECT round, value_in_dollars, count(*) FROM jeopardy_questions GROUP BY round, value_in_dollars ORDER BY round, value_in_dollars NULLS LAST`
)

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS jeopardy_questions (
	id               BIGSERIAL PRIMARY KEY,
	show_number      INTEGER NOT NULL,
	air_date         DATE NOT NULL,
	round            VARCHAR(50) NOT NULL,
	category         VARCHAR(255) NOT NULL,
	value_in_dollars BIGINT,
	question         TEXT NOT NULL,
	answer           TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_jeopardy_questions_show_number ON jeopardy_questions(show_number);
CREATE INDEX IF NOT EXISTS idx_jeopardy_questions_air_date ON jeopardy_questions(air_date);
CREATE INDEX IF NOT EXISTS idx_jeopardy_questions_round_value ON jeopardy_questions(round, value_in_dollars);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) FindRandom(ctx context.Context, round string, value model.DollarValue) (*model.Question, error) {
	query, args := pgFindRandomNull, []any{round}
	if value.Valid {
		query, args = pgFindRandomValue, []any{round, value.Amount}
	}

	var q *model.Question
	err := db.ReadTx(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		q, err = scanQuestion(tx.QueryRow(ctx, query, args...))
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "round %q value %s", round, value)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: find random")
	}
	return q, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (*model.Question, error) {
	var q *model.Question
	err := db.ReadTx(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		q, err = scanQuestion(tx.QueryRow(ctx, pgFindByID, id))
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "id %d", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: find question %d", id)
	}
	return q, nil
}

func (s *PostgresStore) ListBoards(ctx context.Context) ([]model.Board, error) {
	var boards []model.Board
	err := db.ReadTx(ctx, s.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, pgListBoards)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var b model.Board
			var value pgtype.Int8
			if err := rows.Scan(&b.Round, &value, &b.Count); err != nil {
				return err
			}
			b.Value = fromInt8(value)
			boards = append(boards, b)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list boards")
	}
	return boards, nil
}

func (s *PostgresStore) InsertQuestions(ctx context.Context, questions []model.Question) (int64, error) {
	if len(questions) == 0 {
		return 0, nil
	}

	rows := make([][]any, len(questions))
	for i, q := range questions {
		rows[i] = []any{q.ShowNumber, q.AirDate, q.Round, q.Category, nullableValue(q.Value), q.Text, q.Answer}
	}

	var n int64
	err := db.WriteTx(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		n, err = db.CopyFrom(ctx, tx, Table, insertColumns, rows)
		return err
	})
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: insert %d questions", len(questions))
	}
	return n, nil
}

func scanQuestion(row pgx.Row) (*model.Question, error) {
	var q model.Question
	var value pgtype.Int8
	if err := row.Scan(&q.ID, &q.ShowNumber, &q.AirDate, &q.Round, &q.Category, &value, &q.Text, &q.Answer); err != nil {
		return nil, err
	}
	q.Value = fromInt8(value)
	return &q, nil
}

func fromInt8(v pgtype.Int8) model.DollarValue {
	if !v.Valid {
		return model.NoValue()
	}
	return model.Dollars(v.Int64)
}
