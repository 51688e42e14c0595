package storage

import (
	"context"
	"fmt"

	"github.com/schalkje/DiagramDesigner/models"
)

// AttributeFilter narrows ListAttributes.
type AttributeFilter struct {
	EntityID *uint
}

// CreateAttribute inserts attr.
func (s *Storage) CreateAttribute(ctx context.Context, attr *models.Attribute) error {
	if err := s.db.WithContext(ctx).Create(attr).Error; err != nil {
		return fmt.Errorf("create attribute: %w", translate(err))
	}
	return nil
}

// GetAttribute loads an attribute by id.
func (s *Storage) GetAttribute(ctx context.Context, id uint) (*models.Attribute, error) {
	return first[models.Attribute](ctx, s.db, id, "attribute")
}

// FindAttributeByName looks an attribute up by its scoped unique key.
func (s *Storage) FindAttributeByName(ctx context.Context, entityID uint, name string) (*models.Attribute, error) {
	var attr models.Attribute
	err := s.db.WithContext(ctx).
		Where("entity_id = ? AND name = ?", entityID, name).
		First(&attr).Error
	if err != nil {
		return nil, translate(err)
	}
	return &attr, nil
}

// ListAttributes returns one page of attributes in creation order.
func (s *Storage) ListAttributes(ctx context.Context, f AttributeFilter, opts ListOptions) ([]models.Attribute, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Attribute{})
	if f.EntityID != nil {
		q = q.Where("entity_id = ?", *f.EntityID)
	}
	return list[models.Attribute](q, opts, "id")
}

// UpdateAttribute applies the given column values.
func (s *Storage) UpdateAttribute(ctx context.Context, id uint, fields map[string]any) error {
	return update[models.Attribute](ctx, s.db, id, fields, "attribute")
}

// DeleteAttribute removes an attribute. Relationships that pointed at it keep
// existing with the attribute reference cleared.
func (s *Storage) DeleteAttribute(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Attribute{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete attribute %d: %w", id, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("attribute %d: %w", id, ErrNotFound)
	}
	return nil
}
