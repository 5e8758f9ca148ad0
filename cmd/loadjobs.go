package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pathfinder-app/pathfinder/config"
	"github.com/pathfinder-app/pathfinder/internal/match"
	"github.com/pathfinder-app/pathfinder/internal/store"
)

func loadJobsCMD() *cobra.Command {
	var file string
	var cfgPath string

	var load = &cobra.Command{
		Use:   "load-jobs",
		Short: "Load job postings from a JSON or CSV file into the catalogue",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(file) == "" {
				return fmt.Errorf("--file is required")
			}
			cfg := config.LoadConfig(cfgPath)
			if err := cfg.Storage.Postgres.Validate(); err != nil {
				return fmt.Errorf("postgres not configured: %w", err)
			}

			postings, err := readPostings(file)
			if err != nil {
				return err
			}
			if len(postings) == 0 {
				return fmt.Errorf("no postings found in %s", file)
			}

			ctx := cmd.Context()
			st, err := store.NewWithDSN(ctx, cfg.Storage.Postgres.DSN())
			if err != nil {
				return fmt.Errorf("opening store: %w", err)
			}
			defer st.Close()

			if err := st.InsertPostings(ctx, postings); err != nil {
				return fmt.Errorf("inserting postings: %w", err)
			}
			total, err := st.CountPostings(ctx)
			if err != nil {
				return fmt.Errorf("counting postings: %w", err)
			}
			fmt.Printf("loaded %d postings (%d total in catalogue)\n", len(postings), total)
			return nil
		},
	}
	load.Flags().StringVarP(&file, "file", "f", "", "postings file (.json or .csv)")
	load.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return load
}

func readPostings(path string) ([]match.JobPosting, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return readPostingsJSON(f)
	case ".csv":
		return readPostingsCSV(f)
	default:
		return nil, fmt.Errorf("unsupported file type %q, want .json or .csv", filepath.Ext(path))
	}
}

func readPostingsJSON(r io.Reader) ([]match.JobPosting, error) {
	var postings []match.JobPosting
	if err := json.NewDecoder(r).Decode(&postings); err != nil {
		return nil, fmt.Errorf("decoding postings: %w", err)
	}
	return postings, nil
}

// readPostingsCSV maps columns by header name so the column order in the
// source file does not matter. Recognized headers match the upstream job
// dataset: "Job Title", "Company", "Salary Range", "Job Description".
func readPostingsCSV(r io.Reader) ([]match.JobPosting, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}
	cols := map[string]int{}
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	titleIdx, ok := cols["job title"]
	if !ok {
		return nil, fmt.Errorf("csv is missing a 'Job Title' column")
	}
	field := func(record []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var postings []match.JobPosting
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv row: %w", err)
		}
		if titleIdx >= len(record) || strings.TrimSpace(record[titleIdx]) == "" {
			continue
		}
		postings = append(postings, match.JobPosting{
			Title:       strings.TrimSpace(record[titleIdx]),
			Company:     field(record, "company"),
			SalaryRange: field(record, "salary range"),
			Description: field(record, "job description"),
		})
	}
	return postings, nil
}
