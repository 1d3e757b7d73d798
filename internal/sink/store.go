package sink

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"go-zhipin-crawler/internal/crawl"
)

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	title           TEXT NOT NULL DEFAULT '',
	company         TEXT NOT NULL DEFAULT '',
	industry        TEXT NOT NULL DEFAULT '',
	financing_stage TEXT NOT NULL DEFAULT '',
	company_size    TEXT NOT NULL DEFAULT '',
	location        TEXT NOT NULL DEFAULT '',
	salary          TEXT NOT NULL DEFAULT '',
	experience      TEXT NOT NULL DEFAULT '',
	degree          TEXT NOT NULL DEFAULT '',
	contact         TEXT NOT NULL DEFAULT '',
	url             TEXT NOT NULL DEFAULT '',
	scraped_at      TEXT NOT NULL,
	UNIQUE(url, title, company)
);`

// Store persists jobs to SQLite, skipping rows already present.
type Store struct {
	db *sql.DB
}

// NewStore opens (and if needed creates) the database at path. The path
// ":memory:" works for tests.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Emit(ctx context.Context, jobs []crawl.Job) error {
	const insert = `INSERT OR IGNORE INTO jobs
		(title, company, industry, financing_stage, company_size,
		 location, salary, experience, degree, contact, url, scraped_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))`
	for _, job := range jobs {
		_, err := s.db.ExecContext(ctx, insert,
			job.Title, job.Company, job.Industry, job.FinancingStage,
			job.CompanySize, job.Location, job.Salary, job.Experience,
			job.Degree, job.Contact, job.URL)
		if err != nil {
			return fmt.Errorf("insert job: %w", err)
		}
	}
	return nil
}

// Count returns the number of stored jobs.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&n)
	return n, err
}

func (s *Store) Close(ctx context.Context) error { return s.db.Close() }
