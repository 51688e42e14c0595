package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/schalkje/DiagramDesigner/internal/storage"
	"github.com/schalkje/DiagramDesigner/models"
)

// SuperdomainCreate is the payload for creating a superdomain.
type SuperdomainCreate struct {
	Name        string `json:"name" validate:"notblank,max=100"`
	Description string `json:"description"`
}

// SuperdomainUpdate is a partial update; nil fields are left unchanged.
type SuperdomainUpdate struct {
	Name        *string `json:"name" validate:"omitnil,notblank,max=100"`
	Description *string `json:"description"`
}

// DeleteImpact describes what deleting a superdomain removes with it.
type DeleteImpact struct {
	Message string `json:"message"`
	// Cascade is true when at least one domain or entity would be removed.
	Cascade              bool     `json:"cascade"`
	AffectedDomains      []string `json:"affectedDomains"`
	AffectedEntities     []string `json:"affectedEntities"`
	TotalDomains         int      `json:"totalDomains"`
	TotalEntities        int      `json:"totalEntities"`
	AffectedDiagrams     []string `json:"affectedDiagrams"`
	RequiresConfirmation bool     `json:"requiresConfirmation,omitempty"`
}

// SuperdomainService manages top level containers.
type SuperdomainService struct {
	*base
}

// Get returns the superdomain or a NotFound error.
func (s *SuperdomainService) Get(ctx context.Context, id uint) (*models.Superdomain, error) {
	sd, err := s.store.GetSuperdomain(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Superdomain with ID %d not found", id)
	}
	return sd, nil
}

// List returns superdomains ordered by name, optionally filtered by a name
// substring.
func (s *SuperdomainService) List(ctx context.Context, search string, page PageRequest) (*Page[models.Superdomain], error) {
	items, total, err := s.store.ListSuperdomains(ctx, storage.SuperdomainFilter{Search: strings.TrimSpace(search)}, page.options())
	if err != nil {
		return nil, err
	}
	return newPage(items, total, page), nil
}

// Create validates and stores a new superdomain. Names are globally unique.
func (s *SuperdomainService) Create(ctx context.Context, in SuperdomainCreate, userID *uint) (*models.Superdomain, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validate(in); err != nil {
		return nil, err
	}
	if err := s.checkName(ctx, in.Name, 0); err != nil {
		return nil, err
	}

	sd := &models.Superdomain{
		Name:        in.Name,
		Description: in.Description,
		CreatedBy:   userID,
	}
	if err := s.store.CreateSuperdomain(ctx, sd); err != nil {
		return nil, writeErr(err, duplicateSuperdomain(in.Name))
	}
	s.log.Info().Uint("superdomain_id", sd.ID).Str("name", sd.Name).Msg("superdomain created")
	return sd, nil
}

// Update applies the supplied fields.
func (s *SuperdomainService) Update(ctx context.Context, id uint, in SuperdomainUpdate) (*models.Superdomain, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	trimPtr(in.Name)
	if err := s.validate(in); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.Name != nil {
		if err := s.checkName(ctx, *in.Name, id); err != nil {
			return nil, err
		}
		fields["name"] = *in.Name
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}

	if err := s.store.UpdateSuperdomain(ctx, id, fields); err != nil {
		return nil, writeErr(err, duplicateSuperdomain(deref(in.Name)))
	}
	return s.Get(ctx, id)
}

// checkName rejects a name already used by a superdomain other than self.
func (s *SuperdomainService) checkName(ctx context.Context, name string, self uint) error {
	existing, err := s.store.FindSuperdomainByName(ctx, name)
	switch {
	case storage.IsNotFound(err):
		return nil
	case err != nil:
		return err
	case existing.ID != self:
		return Validation("%s", duplicateSuperdomain(name))
	}
	return nil
}

func duplicateSuperdomain(name string) string {
	return fmt.Sprintf("Superdomain with name '%s' already exists", name)
}

// Impact computes what deleting the superdomain would remove, without
// changing anything. Repeated calls return the same report while the
// subtree is unchanged.
func (s *SuperdomainService) Impact(ctx context.Context, id uint) (*DeleteImpact, error) {
	sd, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.impact(ctx, sd)
}

func (s *SuperdomainService) impact(ctx context.Context, sd *models.Superdomain) (*DeleteImpact, error) {
	tree, err := s.store.SuperdomainDescendants(ctx, sd.ID)
	if err != nil {
		return nil, err
	}
	diagrams, err := s.store.DiagramsContaining(ctx, tree.Refs(sd.ID)...)
	if err != nil {
		return nil, err
	}

	impact := &DeleteImpact{
		AffectedDomains:  make([]string, 0, len(tree.Domains)),
		AffectedEntities: make([]string, 0, len(tree.Entities)),
		AffectedDiagrams: make([]string, 0, len(diagrams)),
		TotalDomains:     len(tree.Domains),
		TotalEntities:    len(tree.Entities),
	}
	for _, d := range tree.Domains {
		impact.AffectedDomains = append(impact.AffectedDomains, d.Name)
	}
	for _, e := range tree.Entities {
		impact.AffectedEntities = append(impact.AffectedEntities, e.Name)
	}
	for _, d := range diagrams {
		impact.AffectedDiagrams = append(impact.AffectedDiagrams, d.Name)
	}
	impact.Cascade = impact.TotalDomains > 0 || impact.TotalEntities > 0

	if impact.Cascade {
		impact.Message = fmt.Sprintf("Superdomain '%s' has dependencies", sd.Name)
	} else {
		impact.Message = fmt.Sprintf("Superdomain '%s' has no dependencies", sd.Name)
	}
	return impact, nil
}

// Delete removes the superdomain and its subtree. When the subtree is not
// empty and confirm is false nothing is deleted and a
// KindConfirmationRequired error carrying the impact is returned instead.
func (s *SuperdomainService) Delete(ctx context.Context, id uint, confirm bool) (*DeleteImpact, error) {
	sd, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	impact, err := s.impact(ctx, sd)
	if err != nil {
		return nil, err
	}

	if impact.Cascade && !confirm {
		impact.RequiresConfirmation = true
		return nil, ConfirmationRequired(impact)
	}

	if err := s.store.DeleteSuperdomain(ctx, id); err != nil {
		return nil, notFoundOr(err, "Superdomain with ID %d not found", id)
	}

	impact.Message = fmt.Sprintf("Superdomain '%s' deleted successfully", sd.Name)
	s.log.Info().
		Uint("superdomain_id", id).
		Int("domains", impact.TotalDomains).
		Int("entities", impact.TotalEntities).
		Int("diagrams", len(impact.AffectedDiagrams)).
		Msg("superdomain deleted")
	return impact, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
