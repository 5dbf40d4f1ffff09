// Package appdb holds all the migrations for the backend database
package appdb

import (
	"github.com/uptrace/bun/migrate"
)

// Migrations is the collection of all migrations for the backend database
var Migrations = migrate.NewMigrations()
