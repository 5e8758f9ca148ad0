package config

import "testing"

func TestCatalogueNormalizeDefaults(t *testing.T) {
	t.Parallel()

	c := CatalogueConfig{}.Normalize()
	if c.MatchThreshold != 0.2 {
		t.Fatalf("MatchThreshold = %v, want 0.2", c.MatchThreshold)
	}
	if c.MaxCandidates != 10 {
		t.Fatalf("MaxCandidates = %d, want 10", c.MaxCandidates)
	}
	if c.ExampleLimit != 5 {
		t.Fatalf("ExampleLimit = %d, want 5", c.ExampleLimit)
	}
	if c.DescriptionLimit != 300 {
		t.Fatalf("DescriptionLimit = %d, want 300", c.DescriptionLimit)
	}
}

func TestCatalogueNormalizeKeepsOverrides(t *testing.T) {
	t.Parallel()

	c := CatalogueConfig{MatchThreshold: 0.5, MaxCandidates: 3, ExampleLimit: 2, DescriptionLimit: 120}.Normalize()
	if c.MatchThreshold != 0.5 || c.MaxCandidates != 3 || c.ExampleLimit != 2 || c.DescriptionLimit != 120 {
		t.Fatalf("overrides not preserved: %+v", c)
	}
}

func TestCatalogueValidate(t *testing.T) {
	t.Parallel()

	if err := (CatalogueConfig{MatchThreshold: 1.5}).Validate(); err == nil {
		t.Fatal("expected error for threshold > 1")
	}
	if err := (CatalogueConfig{MatchThreshold: 0.2}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPostgresValidate(t *testing.T) {
	t.Parallel()

	if err := (PostgresConfig{URL: "postgres://u:p@localhost:5432/db"}).Validate(); err != nil {
		t.Fatalf("url-only config should validate: %v", err)
	}
	if err := (PostgresConfig{Host: "localhost"}).Validate(); err == nil {
		t.Fatal("expected error for missing port/dbname")
	}
}

func TestPostgresDSN(t *testing.T) {
	t.Parallel()

	p := PostgresConfig{Host: "localhost", Port: "5432", User: "pf", Password: "pf", DBName: "pathfinder"}
	got := p.DSN()
	want := "postgres://pf:pf@localhost:5432/pathfinder?sslmode=disable"
	if got != want {
		t.Fatalf("DSN = %q, want %q", got, want)
	}

	p.URL = "postgres://override"
	if p.DSN() != "postgres://override" {
		t.Fatalf("url should override individual fields, got %q", p.DSN())
	}
}

func TestRedisValidateDisabled(t *testing.T) {
	t.Parallel()

	if err := (RedisConfig{}).Validate(); err != nil {
		t.Fatalf("disabled redis should validate: %v", err)
	}
	if err := (RedisConfig{Enabled: true}).Validate(); err == nil {
		t.Fatal("enabled redis without host should fail")
	}
}
