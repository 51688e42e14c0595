package storage

import (
	"context"
	"fmt"

	"github.com/schalkje/DiagramDesigner/models"
)

// RelationshipFilter narrows ListRelationships.
type RelationshipFilter struct {
	// EntityID matches edges where the entity is either source or target
	EntityID *uint
}

// CreateRelationship inserts rel.
func (s *Storage) CreateRelationship(ctx context.Context, rel *models.Relationship) error {
	if err := s.db.WithContext(ctx).Create(rel).Error; err != nil {
		return fmt.Errorf("create relationship: %w", translate(err))
	}
	return nil
}

// GetRelationship loads a relationship by id.
func (s *Storage) GetRelationship(ctx context.Context, id uint) (*models.Relationship, error) {
	return first[models.Relationship](ctx, s.db, id, "relationship")
}

// RelationshipExists reports whether id resolves to a relationship.
func (s *Storage) RelationshipExists(ctx context.Context, id uint) (bool, error) {
	return exists[models.Relationship](ctx, s.db, id)
}

// RelationshipsBetween returns every edge from source to target, in that
// direction only, ordered by id.
func (s *Storage) RelationshipsBetween(ctx context.Context, sourceID, targetID uint) ([]models.Relationship, error) {
	var rels []models.Relationship
	err := s.db.WithContext(ctx).
		Where("source_entity_id = ? AND target_entity_id = ?", sourceID, targetID).
		Order("id").
		Find(&rels).Error
	if err != nil {
		return nil, fmt.Errorf("list relationships between %d and %d: %w", sourceID, targetID, translate(err))
	}
	return rels, nil
}

// ListRelationships returns one page of relationships in creation order.
func (s *Storage) ListRelationships(ctx context.Context, f RelationshipFilter, opts ListOptions) ([]models.Relationship, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Relationship{})
	if f.EntityID != nil {
		q = q.Where("source_entity_id = ? OR target_entity_id = ?", *f.EntityID, *f.EntityID)
	}
	return list[models.Relationship](q, opts, "id")
}

// UpdateRelationship applies the given column values.
func (s *Storage) UpdateRelationship(ctx context.Context, id uint, fields map[string]any) error {
	return update[models.Relationship](ctx, s.db, id, fields, "relationship")
}

// DeleteRelationship removes a relationship and, by cascade, its diagram lines.
func (s *Storage) DeleteRelationship(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Relationship{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete relationship %d: %w", id, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("relationship %d: %w", id, ErrNotFound)
	}
	return nil
}
