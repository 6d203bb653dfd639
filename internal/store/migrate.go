package store

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationFS embed.FS

type migration struct {
	version string
	sql     string
}

// migrations returns the embedded schema files of a dialect in version order.
func migrations(dialect string) ([]migration, error) {
	files, err := fs.Glob(migrationFS, fmt.Sprintf("migrations/%s/*.sql", dialect))
	if err != nil {
		return nil, fmt.Errorf("glob migrations: %w", err)
	}
	sort.Strings(files)

	out := make([]migration, 0, len(files))
	for _, file := range files {
		data, err := migrationFS.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", file, err)
		}
		out = append(out, migration{version: path.Base(file), sql: string(data)})
	}
	return out, nil
}

const createSchemaMigrations = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version    TEXT PRIMARY KEY,
		applied_at TIMESTAMP NOT NULL
	)`
