package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/schalkje/DiagramDesigner/models"
)

// DiagramFilter narrows ListDiagrams.
type DiagramFilter struct {
	// Tag keeps diagrams whose tag list contains this exact tag
	Tag       string
	CreatedBy *uint
}

// CreateDiagram inserts d.
func (s *Storage) CreateDiagram(ctx context.Context, d *models.Diagram) error {
	if err := s.db.WithContext(ctx).Create(d).Error; err != nil {
		return fmt.Errorf("create diagram: %w", translate(err))
	}
	return nil
}

// GetDiagram loads a diagram by id without its placements.
func (s *Storage) GetDiagram(ctx context.Context, id uint) (*models.Diagram, error) {
	return first[models.Diagram](ctx, s.db, id, "diagram")
}

// DiagramExists reports whether id resolves to a diagram.
func (s *Storage) DiagramExists(ctx context.Context, id uint) (bool, error) {
	return exists[models.Diagram](ctx, s.db, id)
}

// ListDiagrams returns one page of diagrams, most recently updated first.
func (s *Storage) ListDiagrams(ctx context.Context, f DiagramFilter, opts ListOptions) ([]models.Diagram, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Diagram{})
	if f.CreatedBy != nil {
		q = q.Where("created_by = ?", *f.CreatedBy)
	}
	if f.Tag != "" {
		var err error
		if q, err = s.whereTag(q, f.Tag); err != nil {
			return nil, 0, err
		}
	}
	return list[models.Diagram](q, opts, "updated_at DESC, id DESC")
}

// whereTag filters on JSON array containment: jsonb @> on postgres, json_each on sqlite.
func (s *Storage) whereTag(q *gorm.DB, tag string) (*gorm.DB, error) {
	if s.Dialect() == "postgres" {
		doc, err := json.Marshal([]string{tag})
		if err != nil {
			return nil, err
		}
		return q.Where("diagrams.tags @> ?::jsonb", string(doc)), nil
	}
	return q.Where("EXISTS (SELECT 1 FROM json_each(CAST(diagrams.tags AS TEXT)) WHERE json_each.value = ?)", tag), nil
}

// UpdateDiagram applies the given column values.
func (s *Storage) UpdateDiagram(ctx context.Context, id uint, fields map[string]any) error {
	return update[models.Diagram](ctx, s.db, id, fields, "diagram")
}

// DeleteDiagram removes a diagram with all of its placements. Repository
// objects shown on it are untouched.
func (s *Storage) DeleteDiagram(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Diagram{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete diagram %d: %w", id, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("diagram %d: %w", id, ErrNotFound)
	}
	return nil
}

// DiagramObjects returns a diagram's placed objects in stacking order.
func (s *Storage) DiagramObjects(ctx context.Context, diagramID uint) ([]models.DiagramObject, error) {
	objs := make([]models.DiagramObject, 0)
	err := s.db.WithContext(ctx).
		Where("diagram_id = ?", diagramID).
		Order("z_index, id").
		Find(&objs).Error
	if err != nil {
		return nil, fmt.Errorf("list diagram objects: %w", translate(err))
	}
	return objs, nil
}

// DiagramRelationships returns a diagram's relationship lines ordered by id.
func (s *Storage) DiagramRelationships(ctx context.Context, diagramID uint) ([]models.DiagramRelationship, error) {
	rels := make([]models.DiagramRelationship, 0)
	err := s.db.WithContext(ctx).
		Where("diagram_id = ?", diagramID).
		Order("id").
		Find(&rels).Error
	if err != nil {
		return nil, fmt.Errorf("list diagram relationships: %w", translate(err))
	}
	return rels, nil
}

// CreateDiagramObject inserts a placement.
func (s *Storage) CreateDiagramObject(ctx context.Context, obj *models.DiagramObject) error {
	if err := s.db.WithContext(ctx).Create(obj).Error; err != nil {
		return fmt.Errorf("create diagram object: %w", translate(err))
	}
	return nil
}

// GetDiagramObject loads a placement that belongs to diagramID.
func (s *Storage) GetDiagramObject(ctx context.Context, diagramID, objectID uint) (*models.DiagramObject, error) {
	var obj models.DiagramObject
	err := s.db.WithContext(ctx).
		Where("id = ? AND diagram_id = ?", objectID, diagramID).
		First(&obj).Error
	if err != nil {
		return nil, fmt.Errorf("diagram %d object %d: %w", diagramID, objectID, translate(err))
	}
	return &obj, nil
}

// FindDiagramObject looks a placement up by its unique (diagram, object) key.
func (s *Storage) FindDiagramObject(ctx context.Context, diagramID uint, ref models.ObjectRef) (*models.DiagramObject, error) {
	var obj models.DiagramObject
	err := s.db.WithContext(ctx).
		Where("diagram_id = ? AND object_type = ? AND object_id = ?", diagramID, string(ref.Type()), ref.ObjectID()).
		First(&obj).Error
	if err != nil {
		return nil, translate(err)
	}
	return &obj, nil
}

// UpdateDiagramObject changes a placement scoped to diagramID.
func (s *Storage) UpdateDiagramObject(ctx context.Context, diagramID, objectID uint, fields map[string]any) error {
	res := s.db.WithContext(ctx).Model(&models.DiagramObject{}).
		Where("id = ? AND diagram_id = ?", objectID, diagramID).
		Updates(withTimestamp(fields))
	if res.Error != nil {
		return fmt.Errorf("update diagram object %d: %w", objectID, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("diagram %d object %d: %w", diagramID, objectID, ErrNotFound)
	}
	return nil
}

// DeleteDiagramObject removes a placement scoped to diagramID.
func (s *Storage) DeleteDiagramObject(ctx context.Context, diagramID, objectID uint) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND diagram_id = ?", objectID, diagramID).
		Delete(&models.DiagramObject{})
	if res.Error != nil {
		return fmt.Errorf("delete diagram object %d: %w", objectID, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("diagram %d object %d: %w", diagramID, objectID, ErrNotFound)
	}
	return nil
}

// CreateDiagramRelationship inserts a relationship line.
func (s *Storage) CreateDiagramRelationship(ctx context.Context, dr *models.DiagramRelationship) error {
	if err := s.db.WithContext(ctx).Create(dr).Error; err != nil {
		return fmt.Errorf("create diagram relationship: %w", translate(err))
	}
	return nil
}

// GetDiagramRelationship loads a relationship line that belongs to diagramID.
func (s *Storage) GetDiagramRelationship(ctx context.Context, diagramID, id uint) (*models.DiagramRelationship, error) {
	var dr models.DiagramRelationship
	err := s.db.WithContext(ctx).
		Where("id = ? AND diagram_id = ?", id, diagramID).
		First(&dr).Error
	if err != nil {
		return nil, fmt.Errorf("diagram %d relationship %d: %w", diagramID, id, translate(err))
	}
	return &dr, nil
}

// DiagramShowsRelationship reports whether the relationship already has a line on the diagram.
func (s *Storage) DiagramShowsRelationship(ctx context.Context, diagramID, relationshipID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.DiagramRelationship{}).
		Where("diagram_id = ? AND relationship_id = ?", diagramID, relationshipID).
		Count(&count).Error
	if err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

// UpdateDiagramRelationship changes a relationship line scoped to diagramID.
func (s *Storage) UpdateDiagramRelationship(ctx context.Context, diagramID, id uint, fields map[string]any) error {
	res := s.db.WithContext(ctx).Model(&models.DiagramRelationship{}).
		Where("id = ? AND diagram_id = ?", id, diagramID).
		Updates(withTimestamp(fields))
	if res.Error != nil {
		return fmt.Errorf("update diagram relationship %d: %w", id, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("diagram %d relationship %d: %w", diagramID, id, ErrNotFound)
	}
	return nil
}

// DeleteDiagramRelationship removes a relationship line scoped to diagramID.
func (s *Storage) DeleteDiagramRelationship(ctx context.Context, diagramID, id uint) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND diagram_id = ?", id, diagramID).
		Delete(&models.DiagramRelationship{})
	if res.Error != nil {
		return fmt.Errorf("delete diagram relationship %d: %w", id, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("diagram %d relationship %d: %w", diagramID, id, ErrNotFound)
	}
	return nil
}

// ObjectExists resolves a polymorphic reference against its table.
func (s *Storage) ObjectExists(ctx context.Context, ref models.ObjectRef) (bool, error) {
	switch r := ref.(type) {
	case models.SuperdomainRef:
		return s.SuperdomainExists(ctx, uint(r))
	case models.DomainRef:
		return s.DomainExists(ctx, uint(r))
	case models.EntityRef:
		return s.EntityExists(ctx, uint(r))
	}
	return false, fmt.Errorf("unsupported object reference %T", ref)
}

// DiagramsContaining returns the diagrams on which any of refs is placed,
// ordered by id.
func (s *Storage) DiagramsContaining(ctx context.Context, refs ...models.ObjectRef) ([]models.Diagram, error) {
	diagrams := make([]models.Diagram, 0)
	cond := placementCondition(refs)
	if cond == nil {
		return diagrams, nil
	}

	db := s.db.WithContext(ctx)
	sub := db.Model(&models.DiagramObject{}).Select("diagram_id").Where(cond)
	if err := db.Where("id IN (?)", sub).Order("id").Find(&diagrams).Error; err != nil {
		return nil, fmt.Errorf("diagrams containing objects: %w", translate(err))
	}
	return diagrams, nil
}

// deletePlacements removes every diagram object pointing at one of refs.
func (s *Storage) deletePlacements(ctx context.Context, refs []models.ObjectRef) error {
	cond := placementCondition(refs)
	if cond == nil {
		return nil
	}
	res := s.db.WithContext(ctx).Where(cond).Delete(&models.DiagramObject{})
	if res.Error != nil {
		return fmt.Errorf("delete diagram placements: %w", translate(res.Error))
	}
	if res.RowsAffected > 0 {
		s.log.Debug().Int64("placements", res.RowsAffected).Msg("removed diagram placements of deleted objects")
	}
	return nil
}

// placementCondition builds (object_type = T AND object_id IN (...)) OR ...
// grouped by variant. It returns nil for an empty set.
func placementCondition(refs []models.ObjectRef) clause.Expression {
	byType := make(map[models.ObjectType][]any)
	for _, ref := range refs {
		byType[ref.Type()] = append(byType[ref.Type()], ref.ObjectID())
	}

	var exprs []clause.Expression
	for _, t := range models.ObjectTypes() {
		ids := byType[t]
		if len(ids) == 0 {
			continue
		}
		exprs = append(exprs, clause.And(
			clause.Eq{Column: clause.Column{Name: "object_type"}, Value: string(t)},
			clause.IN{Column: clause.Column{Name: "object_id"}, Values: ids},
		))
	}
	if len(exprs) == 0 {
		return nil
	}
	return clause.Or(exprs...)
}
