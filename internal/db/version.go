package db

import (
	"github.com/arborhq/arbor/internal/db/migrations"
)

// SchemaVersion reports the current schema version, which is the count of
// embedded migration files. The health endpoint exposes it so operators can
// confirm which schema a running instance carries.
func SchemaVersion() int {
	entries, err := migrations.FS.ReadDir(".")
	if err != nil {
		return 0
	}

	count := 0
	for _, e := range entries {
		if !e.IsDir() {
			count++
		}
	}

	return count
}
