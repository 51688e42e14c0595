package storage

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/schalkje/DiagramDesigner/models"
)

// EntityFilter narrows ListEntities.
type EntityFilter struct {
	DomainID *uint
	Search   string
}

// CreateEntity inserts ent.
func (s *Storage) CreateEntity(ctx context.Context, ent *models.Entity) error {
	if err := s.db.WithContext(ctx).Omit("Attributes").Create(ent).Error; err != nil {
		return fmt.Errorf("create entity: %w", translate(err))
	}
	return nil
}

// GetEntity loads an entity by id. With withAttributes set, its attributes
// are loaded too, ordered by id.
func (s *Storage) GetEntity(ctx context.Context, id uint, withAttributes bool) (*models.Entity, error) {
	db := s.db
	if withAttributes {
		db = db.Preload("Attributes", func(q *gorm.DB) *gorm.DB { return q.Order("id") })
	}
	ent, err := first[models.Entity](ctx, db, id, "entity")
	if err != nil {
		return nil, err
	}
	if withAttributes && ent.Attributes == nil {
		ent.Attributes = []models.Attribute{}
	}
	return ent, nil
}

// EntityExists reports whether id resolves to an entity.
func (s *Storage) EntityExists(ctx context.Context, id uint) (bool, error) {
	return exists[models.Entity](ctx, s.db, id)
}

// FindEntityByName looks an entity up by its scoped unique key.
func (s *Storage) FindEntityByName(ctx context.Context, domainID uint, name string) (*models.Entity, error) {
	var ent models.Entity
	err := s.db.WithContext(ctx).
		Where("domain_id = ? AND name = ?", domainID, name).
		First(&ent).Error
	if err != nil {
		return nil, translate(err)
	}
	return &ent, nil
}

// ListEntities returns one page of entities ordered by name.
func (s *Storage) ListEntities(ctx context.Context, f EntityFilter, opts ListOptions) ([]models.Entity, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Entity{})
	if f.DomainID != nil {
		q = q.Where("domain_id = ?", *f.DomainID)
	}
	if f.Search != "" {
		q = q.Where(s.likeClause("name"), likePattern(f.Search))
	}
	return list[models.Entity](q, opts, "name, id")
}

// UpdateEntity applies the given column values.
func (s *Storage) UpdateEntity(ctx context.Context, id uint, fields map[string]any) error {
	return update[models.Entity](ctx, s.db, id, fields, "entity")
}

// DeleteEntity removes an entity with its attributes, its relationships in
// either direction, and its diagram placements.
func (s *Storage) DeleteEntity(ctx context.Context, id uint) error {
	return s.Transaction(ctx, func(tx *Storage) error {
		if err := tx.deletePlacements(ctx, []models.ObjectRef{models.EntityRef(id)}); err != nil {
			return err
		}

		res := tx.db.WithContext(ctx).Delete(&models.Entity{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete entity %d: %w", id, translate(res.Error))
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("entity %d: %w", id, ErrNotFound)
		}
		return nil
	})
}
