// Package reconciler holds embedded assets that belong to the module root,
// currently the goose SQL migrations applied by the migrate command.
package reconciler

import "embed"

// Migrations contains the goose SQL migration files for the application's
// own tables. River queue tables are migrated separately via rivermigrate.
//
//go:embed migrations/*.sql
var Migrations embed.FS
