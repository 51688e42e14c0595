package service

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/datatypes"

	"github.com/schalkje/DiagramDesigner/internal/storage"
	"github.com/schalkje/DiagramDesigner/models"
)

// AttributeCreate is the payload for creating an attribute. EntityID may be
// omitted when the entity is named by the request path.
type AttributeCreate struct {
	EntityID         uint           `json:"entityId" validate:"required"`
	Name             string         `json:"name" validate:"notblank,max=100"`
	Description      string         `json:"description"`
	DataType         string         `json:"dataType" validate:"required,datatype"`
	IsNullable       *bool          `json:"isNullable"`
	DefaultValue     string         `json:"defaultValue" validate:"max=255"`
	Constraints      datatypes.JSON `json:"constraints" swaggertype:"object"`
	DataQualityRules datatypes.JSON `json:"dataQualityRules" swaggertype:"object"`
}

// AttributeUpdate is a partial update; nil fields are left unchanged.
type AttributeUpdate struct {
	Name             *string        `json:"name" validate:"omitnil,notblank,max=100"`
	Description      *string        `json:"description"`
	DataType         *string        `json:"dataType" validate:"omitnil,datatype"`
	IsNullable       *bool          `json:"isNullable"`
	DefaultValue     *string        `json:"defaultValue" validate:"omitnil,max=255"`
	Constraints      datatypes.JSON `json:"constraints" swaggertype:"object"`
	DataQualityRules datatypes.JSON `json:"dataQualityRules" swaggertype:"object"`
}

// AttributeService manages the fields of entities.
type AttributeService struct {
	*base
}

// Get returns the attribute or a NotFound error.
func (s *AttributeService) Get(ctx context.Context, id uint) (*models.Attribute, error) {
	attr, err := s.store.GetAttribute(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Attribute with ID %d not found", id)
	}
	return attr, nil
}

// List returns attributes in creation order, optionally for one entity.
func (s *AttributeService) List(ctx context.Context, entityID *uint, page PageRequest) (*Page[models.Attribute], error) {
	items, total, err := s.store.ListAttributes(ctx, storage.AttributeFilter{EntityID: entityID}, page.options())
	if err != nil {
		return nil, err
	}
	return newPage(items, total, page), nil
}

// ListForEntity lists the attributes of an entity that must exist.
func (s *AttributeService) ListForEntity(ctx context.Context, entityID uint, page PageRequest) (*Page[models.Attribute], error) {
	if _, err := s.entity(ctx, entityID); err != nil {
		return nil, notFoundOr(err, "Entity with ID %d not found", entityID)
	}
	return s.List(ctx, &entityID, page)
}

// Create stores an attribute; the entity named in the body must exist.
func (s *AttributeService) Create(ctx context.Context, in AttributeCreate, userID *uint) (*models.Attribute, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validate(in); err != nil {
		return nil, err
	}
	ent, err := s.entity(ctx, in.EntityID)
	if storage.IsNotFound(err) {
		return nil, Validation("Entity with ID %d not found", in.EntityID)
	}
	if err != nil {
		return nil, err
	}
	return s.create(ctx, ent, in, userID)
}

// CreateForEntity stores an attribute on the entity named by the path. A
// missing entity is a NotFound error rather than bad input.
func (s *AttributeService) CreateForEntity(ctx context.Context, entityID uint, in AttributeCreate, userID *uint) (*models.Attribute, error) {
	ent, err := s.entity(ctx, entityID)
	if err != nil {
		return nil, notFoundOr(err, "Entity with ID %d not found", entityID)
	}
	in.EntityID = entityID
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validate(in); err != nil {
		return nil, err
	}
	return s.create(ctx, ent, in, userID)
}

func (s *AttributeService) entity(ctx context.Context, id uint) (*models.Entity, error) {
	return s.store.GetEntity(ctx, id, false)
}

func (s *AttributeService) create(ctx context.Context, ent *models.Entity, in AttributeCreate, userID *uint) (*models.Attribute, error) {
	if err := s.checkName(ctx, ent.ID, in.Name, 0); err != nil {
		return nil, err
	}

	attr := &models.Attribute{
		EntityID:         ent.ID,
		Name:             in.Name,
		Description:      in.Description,
		DataType:         models.DataType(in.DataType),
		IsNullable:       true,
		DefaultValue:     in.DefaultValue,
		Constraints:      in.Constraints,
		DataQualityRules: in.DataQualityRules,
		CreatedBy:        userID,
	}
	if in.IsNullable != nil {
		attr.IsNullable = *in.IsNullable
	}

	if err := s.store.CreateAttribute(ctx, attr); err != nil {
		return nil, writeErr(err, duplicateAttribute(in.Name))
	}
	return attr, nil
}

// Update applies the supplied fields.
func (s *AttributeService) Update(ctx context.Context, id uint, in AttributeUpdate) (*models.Attribute, error) {
	attr, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	trimPtr(in.Name)
	if err := s.validate(in); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.Name != nil {
		if err := s.checkName(ctx, attr.EntityID, *in.Name, id); err != nil {
			return nil, err
		}
		fields["name"] = *in.Name
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.DataType != nil {
		fields["data_type"] = *in.DataType
	}
	if in.IsNullable != nil {
		fields["is_nullable"] = *in.IsNullable
	}
	if in.DefaultValue != nil {
		fields["default_value"] = *in.DefaultValue
	}
	if in.Constraints != nil {
		fields["constraints"] = in.Constraints
	}
	if in.DataQualityRules != nil {
		fields["data_quality_rules"] = in.DataQualityRules
	}

	if err := s.store.UpdateAttribute(ctx, id, fields); err != nil {
		return nil, writeErr(err, duplicateAttribute(deref(in.Name)))
	}
	return s.Get(ctx, id)
}

// Delete removes the attribute. Relationships referencing it keep existing
// without the attribute reference.
func (s *AttributeService) Delete(ctx context.Context, id uint) (*DeleteResult, error) {
	attr, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeleteAttribute(ctx, id); err != nil {
		return nil, notFoundOr(err, "Attribute with ID %d not found", id)
	}
	return &DeleteResult{Message: fmt.Sprintf("Attribute '%s' deleted successfully", attr.Name)}, nil
}

func (s *AttributeService) checkName(ctx context.Context, entityID uint, name string, self uint) error {
	existing, err := s.store.FindAttributeByName(ctx, entityID, name)
	switch {
	case storage.IsNotFound(err):
		return nil
	case err != nil:
		return err
	case existing.ID != self:
		return Validation("%s", duplicateAttribute(name))
	}
	return nil
}

func duplicateAttribute(name string) string {
	return fmt.Sprintf("Attribute with name '%s' already exists in this entity", name)
}
