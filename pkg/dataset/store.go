package dataset

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "modernc.org/sqlite"
)

// Run records one generation run in the manifest.
type Run struct {
	ID            string
	CardPath      string
	Conversations int
	Turns         int
	Format        string
	OutputFiles   []string
	CreatedAt     time.Time
}

// RunStore keeps the manifest of past generation runs in sqlite.
type RunStore struct {
	db *sql.DB
}

func OpenRunStore(dbPath string) (*RunStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	s := &RunStore{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *RunStore) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		card_path TEXT,
		conversations INTEGER,
		turns INTEGER,
		format TEXT,
		output_files JSON,
		created_at DATETIME
	)`)
	return err
}

func (s *RunStore) RecordRun(ctx context.Context, run Run) error {
	files, err := json.Marshal(run.OutputFiles)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO runs VALUES (?, ?, ?, ?, ?, ?, ?)",
		run.ID, run.CardPath, run.Conversations, run.Turns, run.Format, files, run.CreatedAt.UTC())
	return err
}

// ListRuns returns the most recent runs, newest first.
func (s *RunStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, card_path, conversations, turns, format, output_files, created_at FROM runs ORDER BY created_at DESC LIMIT ?",
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var files []byte
		if err := rows.Scan(&run.ID, &run.CardPath, &run.Conversations, &run.Turns, &run.Format, &files, &run.CreatedAt); err != nil {
			return nil, err
		}
		json.Unmarshal(files, &run.OutputFiles)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *RunStore) Close() error {
	return s.db.Close()
}
