package bootstrap

import (
	"context"

	"gorm.io/gorm"
)

// Seeder loads reference data once the schema is in place.
type Seeder interface {
	Seed(ctx context.Context, db *gorm.DB) error
}

// SeederFunc adapts a bare function to the Seeder interface.
type SeederFunc func(ctx context.Context, db *gorm.DB) error

// Seed executes the underlying function.
func (f SeederFunc) Seed(ctx context.Context, db *gorm.DB) error {
	return f(ctx, db)
}

// Modules groups optional hooks run after migrations.
type Modules struct {
	Seeders []Seeder
}
