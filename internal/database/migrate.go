package database

import (
	"database/sql"
	"fmt"
	"sort"

	schema "watchtower/internal/database/sql"

	"watchtower/internal/logging"
)

// Migrate applies the embedded schema files in lexical order. Statements are
// written to be idempotent, so running this on every startup is safe.
func Migrate(db *sql.DB, logger logging.Logger) error {
	entries, err := schema.Content.ReadDir("schema")
	if err != nil {
		return fmt.Errorf("failed to read embedded schema: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		contents, err := schema.Content.ReadFile("schema/" + name)
		if err != nil {
			return fmt.Errorf("failed to read schema file %s: %w", name, err)
		}
		if _, err := db.Exec(string(contents)); err != nil {
			return fmt.Errorf("failed to apply schema file %s: %w", name, err)
		}
		logger.WithField("file", name).Debug("Applied schema file")
	}

	return nil
}
