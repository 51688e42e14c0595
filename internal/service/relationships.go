package service

import (
	"context"
	"strings"

	"github.com/schalkje/DiagramDesigner/internal/storage"
	"github.com/schalkje/DiagramDesigner/models"
)

// RelationshipCreate is the payload for creating a relationship.
type RelationshipCreate struct {
	SourceEntityID    uint   `json:"sourceEntityId" validate:"required"`
	TargetEntityID    uint   `json:"targetEntityId" validate:"required"`
	SourceAttributeID *uint  `json:"sourceAttributeId"`
	TargetAttributeID *uint  `json:"targetAttributeId"`
	Name              string `json:"name" validate:"max=100"`
	SourceRole        string `json:"sourceRole" validate:"max=100"`
	TargetRole        string `json:"targetRole" validate:"max=100"`
	SourceCardinality string `json:"sourceCardinality" validate:"required,cardinality"`
	TargetCardinality string `json:"targetCardinality" validate:"required,cardinality"`
	Description       string `json:"description"`
}

// RelationshipUpdate is a partial update; nil fields are left unchanged.
// The connected entities cannot change.
type RelationshipUpdate struct {
	SourceAttributeID *uint   `json:"sourceAttributeId"`
	TargetAttributeID *uint   `json:"targetAttributeId"`
	Name              *string `json:"name" validate:"omitnil,max=100"`
	SourceRole        *string `json:"sourceRole" validate:"omitnil,max=100"`
	TargetRole        *string `json:"targetRole" validate:"omitnil,max=100"`
	SourceCardinality *string `json:"sourceCardinality" validate:"omitnil,cardinality"`
	TargetCardinality *string `json:"targetCardinality" validate:"omitnil,cardinality"`
	Description       *string `json:"description"`
}

// RelationshipService manages edges between entities.
type RelationshipService struct {
	*base
}

// Get returns the relationship or a NotFound error.
func (s *RelationshipService) Get(ctx context.Context, id uint) (*models.Relationship, error) {
	rel, err := s.store.GetRelationship(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Relationship with ID %d not found", id)
	}
	return rel, nil
}

// List returns relationships in creation order. With entityID set only edges
// starting or ending at that entity are returned.
func (s *RelationshipService) List(ctx context.Context, entityID *uint, page PageRequest) (*Page[models.Relationship], error) {
	items, total, err := s.store.ListRelationships(ctx, storage.RelationshipFilter{EntityID: entityID}, page.options())
	if err != nil {
		return nil, err
	}
	return newPage(items, total, page), nil
}

// Create stores a relationship. Both entities must exist and may be the
// same. A further edge between the same ordered pair is only accepted when
// both roles are given and the role pair is not already used on that pair.
func (s *RelationshipService) Create(ctx context.Context, in RelationshipCreate, userID *uint) (*models.Relationship, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.SourceRole = strings.TrimSpace(in.SourceRole)
	in.TargetRole = strings.TrimSpace(in.TargetRole)
	if err := s.validate(in); err != nil {
		return nil, err
	}

	if err := s.checkEntity(ctx, "Source", in.SourceEntityID); err != nil {
		return nil, err
	}
	if err := s.checkEntity(ctx, "Target", in.TargetEntityID); err != nil {
		return nil, err
	}
	if err := s.checkAttribute(ctx, "Source", in.SourceAttributeID, in.SourceEntityID); err != nil {
		return nil, err
	}
	if err := s.checkAttribute(ctx, "Target", in.TargetAttributeID, in.TargetEntityID); err != nil {
		return nil, err
	}

	rel := &models.Relationship{
		SourceEntityID:    in.SourceEntityID,
		TargetEntityID:    in.TargetEntityID,
		SourceAttributeID: in.SourceAttributeID,
		TargetAttributeID: in.TargetAttributeID,
		Name:              in.Name,
		SourceRole:        in.SourceRole,
		TargetRole:        in.TargetRole,
		SourceCardinality: models.Cardinality(in.SourceCardinality),
		TargetCardinality: models.Cardinality(in.TargetCardinality),
		Description:       in.Description,
		CreatedBy:         userID,
	}
	if err := s.checkPair(ctx, rel, 0); err != nil {
		return nil, err
	}

	if err := s.store.CreateRelationship(ctx, rel); err != nil {
		return nil, writeErr(err, "Relationship already exists")
	}
	return rel, nil
}

// Update applies the supplied fields. Changing roles re-applies the pair
// rule against the other edges between the same entities.
func (s *RelationshipService) Update(ctx context.Context, id uint, in RelationshipUpdate) (*models.Relationship, error) {
	rel, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	trimPtr(in.Name)
	trimPtr(in.SourceRole)
	trimPtr(in.TargetRole)
	if err := s.validate(in); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.SourceAttributeID != nil {
		if err := s.checkAttribute(ctx, "Source", in.SourceAttributeID, rel.SourceEntityID); err != nil {
			return nil, err
		}
		fields["source_attribute_id"] = *in.SourceAttributeID
	}
	if in.TargetAttributeID != nil {
		if err := s.checkAttribute(ctx, "Target", in.TargetAttributeID, rel.TargetEntityID); err != nil {
			return nil, err
		}
		fields["target_attribute_id"] = *in.TargetAttributeID
	}
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.SourceCardinality != nil {
		fields["source_cardinality"] = *in.SourceCardinality
	}
	if in.TargetCardinality != nil {
		fields["target_cardinality"] = *in.TargetCardinality
	}
	if in.SourceRole != nil || in.TargetRole != nil {
		if in.SourceRole != nil {
			rel.SourceRole = *in.SourceRole
			fields["source_role"] = *in.SourceRole
		}
		if in.TargetRole != nil {
			rel.TargetRole = *in.TargetRole
			fields["target_role"] = *in.TargetRole
		}
		if err := s.checkPair(ctx, rel, id); err != nil {
			return nil, err
		}
	}

	if err := s.store.UpdateRelationship(ctx, id, fields); err != nil {
		return nil, writeErr(err, "Relationship already exists")
	}
	return s.Get(ctx, id)
}

// Delete removes the relationship and its lines on diagrams.
func (s *RelationshipService) Delete(ctx context.Context, id uint) (*DeleteResult, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.store.DeleteRelationship(ctx, id); err != nil {
		return nil, notFoundOr(err, "Relationship with ID %d not found", id)
	}
	return &DeleteResult{Message: "Relationship deleted successfully"}, nil
}

func (s *RelationshipService) checkEntity(ctx context.Context, side string, id uint) error {
	ok, err := s.store.EntityExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return Validation("%s entity with ID %d not found", side, id)
	}
	return nil
}

// checkAttribute verifies an optional attribute reference belongs to the
// entity on the same side of the edge.
func (s *RelationshipService) checkAttribute(ctx context.Context, side string, id *uint, entityID uint) error {
	if id == nil {
		return nil
	}
	attr, err := s.store.GetAttribute(ctx, *id)
	if storage.IsNotFound(err) {
		return Validation("%s attribute with ID %d not found", side, *id)
	}
	if err != nil {
		return err
	}
	if attr.EntityID != entityID {
		return Validation("%s attribute %d does not belong to entity %d", side, *id, entityID)
	}
	return nil
}

// checkPair enforces the multiple-edge rule for rel's ordered entity pair,
// ignoring the edge with id self.
func (s *RelationshipService) checkPair(ctx context.Context, rel *models.Relationship, self uint) error {
	existing, err := s.store.RelationshipsBetween(ctx, rel.SourceEntityID, rel.TargetEntityID)
	if err != nil {
		return err
	}

	others := existing[:0:0]
	for _, e := range existing {
		if e.ID != self {
			others = append(others, e)
		}
	}
	if len(others) == 0 {
		return nil
	}

	if !rel.HasRoles() {
		return Validation("Multiple relationships between same entities require unique source and target roles")
	}
	for _, e := range others {
		if e.SourceRole == rel.SourceRole && e.TargetRole == rel.TargetRole {
			return Validation("Relationship with roles '%s'/'%s' already exists between these entities",
				rel.SourceRole, rel.TargetRole)
		}
	}
	return nil
}
