package storage

import (
	"context"
	"fmt"

	"github.com/schalkje/DiagramDesigner/models"
)

// schemaModels lists every table in creation order. Parents precede children
// so SQLite can declare foreign keys inline.
func schemaModels() []any {
	return []any{
		&models.User{},
		&models.Superdomain{},
		&models.Domain{},
		&models.Entity{},
		&models.Attribute{},
		&models.Relationship{},
		&models.Diagram{},
		&models.DiagramObject{},
		&models.DiagramRelationship{},
	}
}

// postgresIndexes are created after AutoMigrate; GORM tags cannot express them.
var postgresIndexes = []string{
	`CREATE INDEX IF NOT EXISTS ix_diagrams_tags ON diagrams USING GIN (tags)`,
}

// Migrate creates or updates the schema: enum types on postgres, tables,
// foreign keys with their referential actions, and secondary indexes.
func (s *Storage) Migrate(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	postgres := s.Dialect() == "postgres"

	if postgres {
		for _, e := range models.PGEnums() {
			if err := db.Exec(e.CreateStatement()).Error; err != nil {
				return fmt.Errorf("create enum %s: %w", e.Name, err)
			}
		}
	}

	if err := db.AutoMigrate(schemaModels()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if postgres {
		for _, stmt := range postgresIndexes {
			if err := db.Exec(stmt).Error; err != nil {
				return fmt.Errorf("create index: %w", err)
			}
		}
	}

	s.log.Info().Str("dialect", s.Dialect()).Int("tables", len(schemaModels())).Msg("schema migrated")
	return nil
}
