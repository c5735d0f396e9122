// Package store persists generated question batches in a local SQLite file.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/henzelabs/chattrivia/internal/question"
)

// ErrNotFound is returned for lookups of ids that do not exist.
var ErrNotFound = errors.New("not found")

type Store struct {
	db *sql.DB
}

// Batch groups the questions produced by one generator run.
type Batch struct {
	ID        uuid.UUID `json:"id"`
	Mode      string    `json:"mode"` // e.g. "who-said-it", "stats", "enriched"
	CreatedAt time.Time `json:"created_at"`
	Questions int       `json:"questions"`
}

// Open opens (creating if needed) the question database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open question db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping question db: %w", err)
	}

	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) init() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS batches (
			id TEXT PRIMARY KEY,
			mode TEXT NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS questions (
			id TEXT PRIMARY KEY,
			batch_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			prompt TEXT NOT NULL,
			option_a TEXT NOT NULL,
			option_b TEXT NOT NULL,
			option_c TEXT NOT NULL,
			option_d TEXT NOT NULL,
			correct_label TEXT NOT NULL,
			explanation TEXT NOT NULL,
			category TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (batch_id) REFERENCES batches(id)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// SaveBatch writes a batch and its questions in one transaction and returns
// the batch id.
func (s *Store) SaveBatch(ctx context.Context, mode string, qs []question.Question) (uuid.UUID, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	batchID := uuid.New()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO batches (id, mode, created_at) VALUES (?, ?, ?)`,
		batchID.String(), mode, time.Now().UTC(),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert batch: %w", err)
	}

	for i, q := range qs {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO questions
			 (id, batch_id, seq, prompt, option_a, option_b, option_c, option_d,
			  correct_label, explanation, category, difficulty, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			q.ID.String(), batchID.String(), i, q.Prompt,
			q.Options[0].Text, q.Options[1].Text, q.Options[2].Text, q.Options[3].Text,
			q.CorrectLabel, q.Explanation, q.Category, q.Difficulty, q.CreatedAt,
		)
		if err != nil {
			return uuid.Nil, fmt.Errorf("insert question %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("commit: %w", err)
	}
	return batchID, nil
}

// ListBatches returns all batches newest-first with their question counts.
func (s *Store) ListBatches(ctx context.Context) ([]Batch, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.id, b.mode, b.created_at, COUNT(q.id)
		FROM batches b
		LEFT JOIN questions q ON q.batch_id = b.id
		GROUP BY b.id
		ORDER BY b.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query batches: %w", err)
	}
	defer rows.Close()

	var batches []Batch
	for rows.Next() {
		var (
			b     Batch
			rawID string
		)
		if err := rows.Scan(&rawID, &b.Mode, &b.CreatedAt, &b.Questions); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		if b.ID, err = uuid.Parse(rawID); err != nil {
			return nil, fmt.Errorf("parse batch id: %w", err)
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

// GetBatch looks up a single batch by id.
func (s *Store) GetBatch(ctx context.Context, id uuid.UUID) (Batch, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT b.id, b.mode, b.created_at, COUNT(q.id)
		FROM batches b
		LEFT JOIN questions q ON q.batch_id = b.id
		WHERE b.id = ?
		GROUP BY b.id`, id.String())

	var (
		b     Batch
		rawID string
	)
	err := row.Scan(&rawID, &b.Mode, &b.CreatedAt, &b.Questions)
	if errors.Is(err, sql.ErrNoRows) {
		return Batch{}, fmt.Errorf("batch %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Batch{}, fmt.Errorf("scan batch: %w", err)
	}
	if b.ID, err = uuid.Parse(rawID); err != nil {
		return Batch{}, fmt.Errorf("parse batch id: %w", err)
	}
	return b, nil
}

// CountQuestions returns the total number of stored questions.
func (s *Store) CountQuestions(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return n, nil
}

const questionColumns = `id, prompt, option_a, option_b, option_c, option_d,
	correct_label, explanation, category, difficulty, created_at`

// Questions returns the questions of one batch in insertion order.
func (s *Store) Questions(ctx context.Context, batchID uuid.UUID) ([]question.Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE batch_id = ? ORDER BY seq`,
		batchID.String())
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()
	return scanQuestions(rows)
}

// AllQuestions returns every stored question, newest first.
func (s *Store) AllQuestions(ctx context.Context) ([]question.Question, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+questionColumns+`
		FROM questions
		ORDER BY created_at DESC, seq`)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()
	return scanQuestions(rows)
}

// GetQuestion looks up a single question by id.
func (s *Store) GetQuestion(ctx context.Context, id uuid.UUID) (question.Question, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = ?`, id.String())

	q, err := scanQuestion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return question.Question{}, fmt.Errorf("question %s: %w", id, ErrNotFound)
	}
	return q, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanQuestion(row scanner) (question.Question, error) {
	var (
		q     question.Question
		rawID string
		texts [4]string
	)
	err := row.Scan(&rawID, &q.Prompt, &texts[0], &texts[1], &texts[2], &texts[3],
		&q.CorrectLabel, &q.Explanation, &q.Category, &q.Difficulty, &q.CreatedAt)
	if err != nil {
		return question.Question{}, err
	}
	if q.ID, err = uuid.Parse(rawID); err != nil {
		return question.Question{}, fmt.Errorf("parse question id: %w", err)
	}
	for i, label := range question.Labels {
		q.Options[i] = question.Option{Label: label, Text: texts[i]}
	}
	return q, nil
}

func scanQuestions(rows *sql.Rows) ([]question.Question, error) {
	var qs []question.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		qs = append(qs, q)
	}
	return qs, rows.Err()
}
