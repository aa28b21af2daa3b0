package db

import "embed"

// EmbedMigrations contains the SQL files that bootstrap the racing schema
// for local development and tests.
//
//go:embed migrations/*.sql
var EmbedMigrations embed.FS
