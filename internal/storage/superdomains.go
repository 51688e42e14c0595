package storage

import (
	"context"
	"fmt"

	"github.com/schalkje/DiagramDesigner/models"
)

// SuperdomainFilter narrows ListSuperdomains.
type SuperdomainFilter struct {
	// Search matches names case-insensitively as a substring
	Search string
}

// Descendants are the rows that disappear together with a superdomain.
type Descendants struct {
	Domains  []models.Domain
	Entities []models.Entity
}

// Refs returns every placeable object in the subtree rooted at superdomainID.
func (d *Descendants) Refs(superdomainID uint) []models.ObjectRef {
	refs := make([]models.ObjectRef, 0, 1+len(d.Domains)+len(d.Entities))
	refs = append(refs, models.SuperdomainRef(superdomainID))
	for _, dom := range d.Domains {
		refs = append(refs, models.DomainRef(dom.ID))
	}
	for _, ent := range d.Entities {
		refs = append(refs, models.EntityRef(ent.ID))
	}
	return refs
}

// CreateSuperdomain inserts sd and fills its id and timestamps.
func (s *Storage) CreateSuperdomain(ctx context.Context, sd *models.Superdomain) error {
	if err := s.db.WithContext(ctx).Create(sd).Error; err != nil {
		return fmt.Errorf("create superdomain: %w", translate(err))
	}
	return nil
}

// GetSuperdomain loads a superdomain by id.
func (s *Storage) GetSuperdomain(ctx context.Context, id uint) (*models.Superdomain, error) {
	return first[models.Superdomain](ctx, s.db, id, "superdomain")
}

// SuperdomainExists reports whether id resolves to a superdomain.
func (s *Storage) SuperdomainExists(ctx context.Context, id uint) (bool, error) {
	return exists[models.Superdomain](ctx, s.db, id)
}

// FindSuperdomainByName returns the superdomain with exactly this name.
func (s *Storage) FindSuperdomainByName(ctx context.Context, name string) (*models.Superdomain, error) {
	var sd models.Superdomain
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&sd).Error; err != nil {
		return nil, translate(err)
	}
	return &sd, nil
}

// ListSuperdomains returns one page of superdomains ordered by name.
func (s *Storage) ListSuperdomains(ctx context.Context, f SuperdomainFilter, opts ListOptions) ([]models.Superdomain, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Superdomain{})
	if f.Search != "" {
		q = q.Where(s.likeClause("name"), likePattern(f.Search))
	}
	return list[models.Superdomain](q, opts, "name, id")
}

// UpdateSuperdomain applies the given column values.
func (s *Storage) UpdateSuperdomain(ctx context.Context, id uint, fields map[string]any) error {
	return update[models.Superdomain](ctx, s.db, id, fields, "superdomain")
}

// SuperdomainDescendants collects the child domains and the entities inside
// them, both ordered by id.
func (s *Storage) SuperdomainDescendants(ctx context.Context, id uint) (*Descendants, error) {
	db := s.db.WithContext(ctx)
	d := &Descendants{Domains: []models.Domain{}, Entities: []models.Entity{}}

	if err := db.Where("superdomain_id = ?", id).Order("id").Find(&d.Domains).Error; err != nil {
		return nil, fmt.Errorf("list child domains: %w", translate(err))
	}
	if len(d.Domains) == 0 {
		return d, nil
	}

	ids := make([]uint, len(d.Domains))
	for i, dom := range d.Domains {
		ids[i] = dom.ID
	}
	if err := db.Where("domain_id IN ?", ids).Order("id").Find(&d.Entities).Error; err != nil {
		return nil, fmt.Errorf("list child entities: %w", translate(err))
	}
	return d, nil
}

// DeleteSuperdomain removes a superdomain and, through cascading foreign keys,
// its domains, entities, attributes and relationships. Diagram placements of
// any object in the subtree are removed in the same transaction.
func (s *Storage) DeleteSuperdomain(ctx context.Context, id uint) error {
	return s.Transaction(ctx, func(tx *Storage) error {
		d, err := tx.SuperdomainDescendants(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.deletePlacements(ctx, d.Refs(id)); err != nil {
			return err
		}

		res := tx.db.WithContext(ctx).Delete(&models.Superdomain{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete superdomain %d: %w", id, translate(res.Error))
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("superdomain %d: %w", id, ErrNotFound)
		}
		return nil
	})
}
