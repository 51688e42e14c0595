package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/schalkje/DiagramDesigner/internal/storage"
	"github.com/schalkje/DiagramDesigner/models"
)

// EntityCreate is the payload for creating an entity.
type EntityCreate struct {
	DomainID    uint   `json:"domainId" validate:"required"`
	Name        string `json:"name" validate:"notblank,max=100"`
	Description string `json:"description"`
}

// EntityUpdate is a partial update; nil fields are left unchanged.
type EntityUpdate struct {
	Name        *string `json:"name" validate:"omitnil,notblank,max=100"`
	Description *string `json:"description"`
}

// EntityFilter narrows List.
type EntityFilter struct {
	DomainID *uint
	Search   string
}

// EntityService manages entities inside domains.
type EntityService struct {
	*base
}

// Get returns the entity. With withAttributes set its attributes are
// included, ordered by id.
func (s *EntityService) Get(ctx context.Context, id uint, withAttributes bool) (*models.Entity, error) {
	ent, err := s.store.GetEntity(ctx, id, withAttributes)
	if err != nil {
		return nil, notFoundOr(err, "Entity with ID %d not found", id)
	}
	return ent, nil
}

// List returns entities ordered by name.
func (s *EntityService) List(ctx context.Context, f EntityFilter, page PageRequest) (*Page[models.Entity], error) {
	items, total, err := s.store.ListEntities(ctx, storage.EntityFilter{
		DomainID: f.DomainID,
		Search:   strings.TrimSpace(f.Search),
	}, page.options())
	if err != nil {
		return nil, err
	}
	return newPage(items, total, page), nil
}

// Create stores an entity under an existing domain.
func (s *EntityService) Create(ctx context.Context, in EntityCreate, userID *uint) (*models.Entity, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validate(in); err != nil {
		return nil, err
	}

	ok, err := s.store.DomainExists(ctx, in.DomainID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, Validation("Domain with ID %d not found", in.DomainID)
	}
	if err := s.checkName(ctx, in.DomainID, in.Name, 0); err != nil {
		return nil, err
	}

	ent := &models.Entity{
		DomainID:    in.DomainID,
		Name:        in.Name,
		Description: in.Description,
		CreatedBy:   userID,
	}
	if err := s.store.CreateEntity(ctx, ent); err != nil {
		return nil, writeErr(err, duplicateEntity(in.Name))
	}
	return ent, nil
}

// Update applies the supplied fields.
func (s *EntityService) Update(ctx context.Context, id uint, in EntityUpdate) (*models.Entity, error) {
	ent, err := s.Get(ctx, id, false)
	if err != nil {
		return nil, err
	}
	trimPtr(in.Name)
	if err := s.validate(in); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.Name != nil {
		if err := s.checkName(ctx, ent.DomainID, *in.Name, id); err != nil {
			return nil, err
		}
		fields["name"] = *in.Name
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}

	if err := s.store.UpdateEntity(ctx, id, fields); err != nil {
		return nil, writeErr(err, duplicateEntity(deref(in.Name)))
	}
	return s.Get(ctx, id, false)
}

// Delete removes the entity with its attributes, relationships in either
// direction and diagram placements.
func (s *EntityService) Delete(ctx context.Context, id uint) (*DeleteResult, error) {
	ent, err := s.Get(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeleteEntity(ctx, id); err != nil {
		return nil, notFoundOr(err, "Entity with ID %d not found", id)
	}
	return &DeleteResult{
		Message: fmt.Sprintf("Entity '%s' deleted successfully", ent.Name),
		Cascade: true,
	}, nil
}

// Relationships lists the edges in which the entity is source or target.
func (s *EntityService) Relationships(ctx context.Context, id uint, page PageRequest) (*Page[models.Relationship], error) {
	if _, err := s.Get(ctx, id, false); err != nil {
		return nil, err
	}
	items, total, err := s.store.ListRelationships(ctx, storage.RelationshipFilter{EntityID: &id}, page.options())
	if err != nil {
		return nil, err
	}
	return newPage(items, total, page), nil
}

func (s *EntityService) checkName(ctx context.Context, domainID uint, name string, self uint) error {
	existing, err := s.store.FindEntityByName(ctx, domainID, name)
	switch {
	case storage.IsNotFound(err):
		return nil
	case err != nil:
		return err
	case existing.ID != self:
		return Validation("%s", duplicateEntity(name))
	}
	return nil
}

func duplicateEntity(name string) string {
	return fmt.Sprintf("Entity with name '%s' already exists in this domain", name)
}
