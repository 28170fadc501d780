package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/jeopardy/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. It backs local
// development and tests.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS jeopardy_questions (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	show_number      INTEGER NOT NULL,
	air_date         TEXT NOT NULL,
	round            TEXT NOT NULL,
	category         TEXT NOT NULL,
	value_in_dollars INTEGER,
	question         TEXT NOT NULL,
	answer           TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_jeopardy_questions_show_number ON jeopardy_questions(show_number);
CREATE INDEX IF NOT EXISTS idx_jeopardy_questions_air_date ON jeopardy_questions(air_date);
CREATE INDEX IF NOT EXISTS idx_jeopardy_questions_round_value ON jeopardy_questions(round, value_in_dollars);
`

const (
	sqliteFindRandom = `SELECT ` + questionColumns + ` FROM jeopardy_questions
WHERE round = ? AND value_in_dollars IS ? ORDER BY RANDOM() LIMIT 1`
	sqliteFindByID   = `SELECT ` + questionColumns + ` FROM jeopardy_questions WHERE id = ?`
	sqliteListBoards = `SELECT round, value_in_dollars, count(*) FROM jeopardy_questions
GROUP BY round, value_in_dollars ORDER BY round, value_in_dollars IS NULL, value_in_dollars`
	sqliteInsert = `INSERT INTO jeopardy_questions (show_number, air_date, round, category, value_in_dollars, question, answer)
VALUES (?, ?, ?, ?, ?, ?, ?)`
)

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) FindRandom(ctx context.Context, round string, value model.DollarValue) (*model.Question, error) {
	q, err := s.queryOne(ctx, sqliteFindRandom, round, nullableValue(value))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "round %q value %s", round, value)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: find random")
	}
	return q, nil
}

func (s *SQLiteStore) FindByID(ctx context.Context, id int64) (*model.Question, error) {
	q, err := s.queryOne(ctx, sqliteFindByID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "id %d", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: find question %d", id)
	}
	return q, nil
}

func (s *SQLiteStore) ListBoards(ctx context.Context) ([]model.Board, error) {
	rows, err := s.db.QueryContext(ctx, sqliteListBoards)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list boards")
	}
	defer rows.Close()

	var boards []model.Board
	for rows.Next() {
		var b model.Board
		var value sql.NullInt64
		if err := rows.Scan(&b.Round, &value, &b.Count); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan board")
		}
		b.Value = fromNullInt64(value)
		boards = append(boards, b)
	}
	return boards, eris.Wrap(rows.Err(), "sqlite: iterate boards")
}

func (s *SQLiteStore) InsertQuestions(ctx context.Context, questions []model.Question) (int64, error) {
	if len(questions) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin insert")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, sqliteInsert)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare insert")
	}
	defer stmt.Close()

	for _, q := range questions {
		if _, err := stmt.ExecContext(ctx,
			q.ShowNumber, q.AirDate.Format(model.AirDateLayout), q.Round, q.Category,
			nullableValue(q.Value), q.Text, q.Answer,
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert question show %d", q.ShowNumber)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit insert")
	}
	return int64(len(questions)), nil
}

// queryOne runs a single-row lookup inside a read-only transaction so the
// connection is held only for the duration of the call.
func (s *SQLiteStore) queryOne(ctx context.Context, query string, args ...any) (*model.Question, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback() //nolint:errcheck

	var q model.Question
	var airDate string
	var value sql.NullInt64
	err = tx.QueryRowContext(ctx, query, args...).Scan(
		&q.ID, &q.ShowNumber, &airDate, &q.Round, &q.Category, &value, &q.Text, &q.Answer,
	)
	if err != nil {
		return nil, err
	}
	q.AirDate, err = time.Parse(model.AirDateLayout, airDate)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: parse air date %q", airDate)
	}
	q.Value = fromNullInt64(value)
	return &q, nil
}

func fromNullInt64(v sql.NullInt64) model.DollarValue {
	if !v.Valid {
		return model.NoValue()
	}
	return model.Dollars(v.Int64)
}
