package users

import (
	"embed"

	"github.com/kbukum/forohub/database"
)

//go:embed migrations
var migrationFS embed.FS

// Migrations returns the versioned schema of the account tables.
func Migrations() database.Migrations {
	return database.Migrations{FS: migrationFS, Root: "migrations"}
}
