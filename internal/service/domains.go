package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/schalkje/DiagramDesigner/internal/storage"
	"github.com/schalkje/DiagramDesigner/models"
)

// DomainCreate is the payload for creating a domain.
type DomainCreate struct {
	SuperdomainID uint   `json:"superdomainId" validate:"required"`
	Name          string `json:"name" validate:"notblank,max=100"`
	Description   string `json:"description"`
}

// DomainUpdate is a partial update; nil fields are left unchanged.
type DomainUpdate struct {
	Name        *string `json:"name" validate:"omitnil,notblank,max=100"`
	Description *string `json:"description"`
}

// DomainFilter narrows List.
type DomainFilter struct {
	SuperdomainID *uint
	Search        string
}

// DomainService manages domains inside superdomains.
type DomainService struct {
	*base
}

// Get returns the domain or a NotFound error.
func (s *DomainService) Get(ctx context.Context, id uint) (*models.Domain, error) {
	dom, err := s.store.GetDomain(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Domain with ID %d not found", id)
	}
	return dom, nil
}

// List returns domains ordered by name.
func (s *DomainService) List(ctx context.Context, f DomainFilter, page PageRequest) (*Page[models.Domain], error) {
	items, total, err := s.store.ListDomains(ctx, storage.DomainFilter{
		SuperdomainID: f.SuperdomainID,
		Search:        strings.TrimSpace(f.Search),
	}, page.options())
	if err != nil {
		return nil, err
	}
	return newPage(items, total, page), nil
}

// Create stores a domain under an existing superdomain.
func (s *DomainService) Create(ctx context.Context, in DomainCreate, userID *uint) (*models.Domain, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validate(in); err != nil {
		return nil, err
	}

	ok, err := s.store.SuperdomainExists(ctx, in.SuperdomainID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, Validation("Superdomain with ID %d not found", in.SuperdomainID)
	}
	if err := s.checkName(ctx, in.SuperdomainID, in.Name, 0); err != nil {
		return nil, err
	}

	dom := &models.Domain{
		SuperdomainID: in.SuperdomainID,
		Name:          in.Name,
		Description:   in.Description,
		CreatedBy:     userID,
	}
	if err := s.store.CreateDomain(ctx, dom); err != nil {
		return nil, writeErr(err, duplicateDomain(in.Name))
	}
	return dom, nil
}

// Update applies the supplied fields. The name stays unique within the
// domain's superdomain.
func (s *DomainService) Update(ctx context.Context, id uint, in DomainUpdate) (*models.Domain, error) {
	dom, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	trimPtr(in.Name)
	if err := s.validate(in); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.Name != nil {
		if err := s.checkName(ctx, dom.SuperdomainID, *in.Name, id); err != nil {
			return nil, err
		}
		fields["name"] = *in.Name
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}

	if err := s.store.UpdateDomain(ctx, id, fields); err != nil {
		return nil, writeErr(err, duplicateDomain(deref(in.Name)))
	}
	return s.Get(ctx, id)
}

// Delete removes the domain with its entities, their attributes and
// relationships, and any diagram placements of them.
func (s *DomainService) Delete(ctx context.Context, id uint) (*DeleteResult, error) {
	dom, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeleteDomain(ctx, id); err != nil {
		return nil, notFoundOr(err, "Domain with ID %d not found", id)
	}
	return &DeleteResult{
		Message: fmt.Sprintf("Domain '%s' deleted successfully", dom.Name),
		Cascade: true,
	}, nil
}

func (s *DomainService) checkName(ctx context.Context, superdomainID uint, name string, self uint) error {
	existing, err := s.store.FindDomainByName(ctx, superdomainID, name)
	switch {
	case storage.IsNotFound(err):
		return nil
	case err != nil:
		return err
	case existing.ID != self:
		return Validation("%s", duplicateDomain(name))
	}
	return nil
}

func duplicateDomain(name string) string {
	return fmt.Sprintf("Domain with name '%s' already exists in this superdomain", name)
}
