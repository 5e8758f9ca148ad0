package store_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"testing"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pathfinder-app/pathfinder/internal/match"
	"github.com/pathfinder-app/pathfinder/internal/store"
)

func TestStoreAgainstPostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	pgUser := "pathfinder"
	pgPassword := "pathfinder"
	pgDB := "pathfinder"

	pgC, err := tcPostgres.RunContainer(ctx,
		tcPostgres.WithDatabase(pgDB),
		tcPostgres.WithUsername(pgUser),
		tcPostgres.WithPassword(pgPassword),
		testcontainers.WithWaitStrategy(wait.ForListeningPort("5432/tcp")),
	)
	if err != nil {
		t.Fatalf("postgres container: %v", err)
	}
	defer func() {
		_ = pgC.Terminate(ctx)
	}()

	pgHost, err := pgC.Host(ctx)
	if err != nil {
		t.Fatalf("postgres host: %v", err)
	}
	pgPort, err := pgC.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("postgres port: %v", err)
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", pgUser, pgPassword, pgHost, pgPort.Port(), pgDB)
	if err := applySchema(ctx, dsn); err != nil {
		t.Fatalf("apply schema: %v", err)
	}

	st, err := store.NewWithDSN(ctx, dsn)
	if err != nil {
		t.Fatalf("store init: %v", err)
	}
	defer st.Close()

	postings := []match.JobPosting{
		{Title: "Software Engineer", Company: "Acme", SalaryRange: "$90k - $140k", Description: "Build backend services in Go."},
		{Title: "Software Engineer", Company: "Globex", SalaryRange: "$100,000 - $150,000", Description: "Distributed systems work."},
		{Title: "Data Scientist", Company: "Initech", SalaryRange: "$95k - $160k", Description: "Machine learning pipelines."},
	}
	if err := st.InsertPostings(ctx, postings); err != nil {
		t.Fatalf("insert postings: %v", err)
	}

	n, err := st.CountPostings(ctx)
	if err != nil {
		t.Fatalf("count postings: %v", err)
	}
	if n != len(postings) {
		t.Fatalf("count = %d, want %d", n, len(postings))
	}

	titles, err := st.AllTitles(ctx)
	if err != nil {
		t.Fatalf("all titles: %v", err)
	}
	want := []string{"Software Engineer", "Software Engineer", "Data Scientist"}
	if len(titles) != len(want) {
		t.Fatalf("titles = %v, want %v", titles, want)
	}
	for i := range want {
		if titles[i] != want[i] {
			t.Fatalf("titles[%d] = %q, want %q", i, titles[i], want[i])
		}
	}

	matched, err := st.PostingsForTitles(ctx, []string{"Software Engineer"})
	if err != nil {
		t.Fatalf("postings for titles: %v", err)
	}
	if len(matched) != 2 {
		t.Fatalf("matched = %d postings, want 2", len(matched))
	}
	if matched[0].Company != "Acme" || matched[1].Company != "Globex" {
		t.Fatalf("matched postings out of storage order: %+v", matched)
	}

	payload, _ := json.Marshal(map[string]string{"query": "software"})
	rec := store.ReportRecord{ID: "report-1", Query: "software", Payload: payload}
	if err := st.SaveReport(ctx, rec); err != nil {
		t.Fatalf("save report: %v", err)
	}
	if err := st.SaveReport(ctx, rec); err != nil {
		t.Fatalf("save report upsert: %v", err)
	}

	got, err := st.GetReport(ctx, "report-1")
	if err != nil {
		t.Fatalf("get report: %v", err)
	}
	if got.Query != "software" {
		t.Fatalf("report query = %q", got.Query)
	}

	recent, err := st.RecentReports(ctx, 10)
	if err != nil {
		t.Fatalf("recent reports: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("recent = %d reports, want 1", len(recent))
	}
}

func applySchema(ctx context.Context, dsn string) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	schemaSQL := `
CREATE TABLE IF NOT EXISTS jobs (
  id SERIAL PRIMARY KEY,
  "Job Title" TEXT NOT NULL,
  "Company" TEXT NOT NULL DEFAULT '',
  "Salary Range" TEXT NOT NULL DEFAULT '',
  "Job Description" TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS reports (
  id TEXT PRIMARY KEY,
  query TEXT NOT NULL,
  payload JSONB NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
