package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/pathfinder-app/pathfinder/internal/match"
)

// Store wraps the Postgres connection used for the job catalogue and for
// persisted career reports.
type Store struct {
	DB *sql.DB
}

// NewWithDSN constructs the Store using an explicit Postgres DSN.
func NewWithDSN(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{DB: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	if s == nil || s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

// Catalogue queries. The jobs table keeps the column names the catalogue
// data ships with ("Job Title", "Company", ...); the serial id column pins
// storage order so ranking ties stay reproducible.

// AllTitles returns every posting title in insertion order, duplicates
// preserved.
func (s *Store) AllTitles(ctx context.Context) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT "Job Title" FROM jobs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", match.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("%w: %v", match.ErrStoreUnavailable, err)
		}
		titles = append(titles, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", match.ErrStoreUnavailable, err)
	}
	return titles, nil
}

// PostingsForTitles returns all postings whose title is in titles, in
// insertion order.
func (s *Store) PostingsForTitles(ctx context.Context, titles []string) ([]match.JobPosting, error) {
	if len(titles) == 0 {
		return nil, nil
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT "Job Title", "Company", "Salary Range", "Job Description" FROM jobs WHERE "Job Title" = ANY($1) ORDER BY id`,
		pq.Array(titles))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", match.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var postings []match.JobPosting
	for rows.Next() {
		var p match.JobPosting
		if err := rows.Scan(&p.Title, &p.Company, &p.SalaryRange, &p.Description); err != nil {
			return nil, fmt.Errorf("%w: %v", match.ErrStoreUnavailable, err)
		}
		postings = append(postings, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", match.ErrStoreUnavailable, err)
	}
	return postings, nil
}

// AllPostings returns the full catalogue in insertion order. Used to build
// the in-memory description search index at startup.
func (s *Store) AllPostings(ctx context.Context) ([]match.JobPosting, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT "Job Title", "Company", "Salary Range", "Job Description" FROM jobs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", match.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var postings []match.JobPosting
	for rows.Next() {
		var p match.JobPosting
		if err := rows.Scan(&p.Title, &p.Company, &p.SalaryRange, &p.Description); err != nil {
			return nil, fmt.Errorf("%w: %v", match.ErrStoreUnavailable, err)
		}
		postings = append(postings, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", match.ErrStoreUnavailable, err)
	}
	return postings, nil
}

// InsertPostings bulk-loads catalogue rows inside a single transaction.
func (s *Store) InsertPostings(ctx context.Context, postings []match.JobPosting) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO jobs ("Job Title", "Company", "Salary Range", "Job Description") VALUES ($1,$2,$3,$4)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, p := range postings {
		if _, err := stmt.ExecContext(ctx, p.Title, p.Company, p.SalaryRange, p.Description); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert posting %q: %w", p.Title, err)
		}
	}
	return tx.Commit()
}

// CountPostings reports the catalogue size.
func (s *Store) CountPostings(ctx context.Context) (int, error) {
	var n int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: %v", match.ErrStoreUnavailable, err)
	}
	return n, nil
}

// ReportRecord is a persisted career plan, stored as the JSON payload the
// API returned for it.
type ReportRecord struct {
	ID        string
	Query     string
	Payload   json.RawMessage
	CreatedAt time.Time
}

// SaveReport upserts a compiled career plan.
func (s *Store) SaveReport(ctx context.Context, rec ReportRecord) error {
	_, err := s.DB.ExecContext(ctx, `
INSERT INTO reports (id, query, payload, created_at)
VALUES ($1,$2,$3,NOW())
ON CONFLICT (id) DO UPDATE SET
  query = EXCLUDED.query,
  payload = EXCLUDED.payload;
`, rec.ID, rec.Query, []byte(rec.Payload))
	return err
}

// GetReport fetches a persisted career plan by id. sql.ErrNoRows passes
// through when the id is unknown.
func (s *Store) GetReport(ctx context.Context, id string) (ReportRecord, error) {
	var rec ReportRecord
	var payload []byte
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, query, payload, created_at FROM reports WHERE id = $1`, id).
		Scan(&rec.ID, &rec.Query, &payload, &rec.CreatedAt)
	if err != nil {
		return ReportRecord{}, err
	}
	rec.Payload = payload
	return rec, nil
}

// RecentReports lists the latest persisted plans, newest first.
func (s *Store) RecentReports(ctx context.Context, limit int) ([]ReportRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, query, payload, created_at FROM reports ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ReportRecord
	for rows.Next() {
		var rec ReportRecord
		var payload []byte
		if err := rows.Scan(&rec.ID, &rec.Query, &payload, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Payload = payload
		out = append(out, rec)
	}
	return out, rows.Err()
}
