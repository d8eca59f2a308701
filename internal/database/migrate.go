package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sort"
	"strings"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies every embedded migration that is not yet recorded in
// schema_migrations, in file name order, and returns the names it ran.
// The driver runs one statement per Exec, so files are split on ";".
func Migrate(ctx context.Context, db *sql.DB) ([]string, error) {
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	if _, err := db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS schema_migrations (version VARCHAR(255) NOT NULL PRIMARY KEY)`); err != nil {
		return nil, err
	}

	var ran []string
	for _, f := range files {
		var applied bool
		if err := db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = ?)`, f).Scan(&applied); err != nil {
			return ran, err
		}
		if applied {
			continue
		}
		b, err := migrations.ReadFile("migrations/" + f)
		if err != nil {
			return ran, err
		}
		for _, stmt := range SplitStatements(string(b)) {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return ran, fmt.Errorf("apply %s: %w", f, err)
			}
		}
		if _, err := db.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, f); err != nil {
			return ran, err
		}
		ran = append(ran, f)
	}
	return ran, nil
}

// SplitStatements breaks a migration file into individual statements,
// dropping blank ones and "--" comment lines.
func SplitStatements(script string) []string {
	var b strings.Builder
	for _, line := range strings.Split(script, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	var out []string
	for _, stmt := range strings.Split(b.String(), ";") {
		if s := strings.TrimSpace(stmt); s != "" {
			out = append(out, s)
		}
	}
	return out
}
