package storage

import (
	"context"
	"fmt"

	"github.com/schalkje/DiagramDesigner/models"
)

// DomainFilter narrows ListDomains.
type DomainFilter struct {
	SuperdomainID *uint
	Search        string
}

// CreateDomain inserts dom.
func (s *Storage) CreateDomain(ctx context.Context, dom *models.Domain) error {
	if err := s.db.WithContext(ctx).Create(dom).Error; err != nil {
		return fmt.Errorf("create domain: %w", translate(err))
	}
	return nil
}

// GetDomain loads a domain by id.
func (s *Storage) GetDomain(ctx context.Context, id uint) (*models.Domain, error) {
	return first[models.Domain](ctx, s.db, id, "domain")
}

// DomainExists reports whether id resolves to a domain.
func (s *Storage) DomainExists(ctx context.Context, id uint) (bool, error) {
	return exists[models.Domain](ctx, s.db, id)
}

// FindDomainByName looks a domain up by its scoped unique key.
func (s *Storage) FindDomainByName(ctx context.Context, superdomainID uint, name string) (*models.Domain, error) {
	var dom models.Domain
	err := s.db.WithContext(ctx).
		Where("superdomain_id = ? AND name = ?", superdomainID, name).
		First(&dom).Error
	if err != nil {
		return nil, translate(err)
	}
	return &dom, nil
}

// ListDomains returns one page of domains ordered by name.
func (s *Storage) ListDomains(ctx context.Context, f DomainFilter, opts ListOptions) ([]models.Domain, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Domain{})
	if f.SuperdomainID != nil {
		q = q.Where("superdomain_id = ?", *f.SuperdomainID)
	}
	if f.Search != "" {
		q = q.Where(s.likeClause("name"), likePattern(f.Search))
	}
	return list[models.Domain](q, opts, "name, id")
}

// UpdateDomain applies the given column values.
func (s *Storage) UpdateDomain(ctx context.Context, id uint, fields map[string]any) error {
	return update[models.Domain](ctx, s.db, id, fields, "domain")
}

// DeleteDomain removes a domain with its entities, their attributes and
// relationships, and every diagram placement of the domain or its entities.
func (s *Storage) DeleteDomain(ctx context.Context, id uint) error {
	return s.Transaction(ctx, func(tx *Storage) error {
		var entityIDs []uint
		if err := tx.db.WithContext(ctx).Model(&models.Entity{}).
			Where("domain_id = ?", id).Pluck("id", &entityIDs).Error; err != nil {
			return fmt.Errorf("list domain entities: %w", translate(err))
		}

		refs := []models.ObjectRef{models.DomainRef(id)}
		for _, eid := range entityIDs {
			refs = append(refs, models.EntityRef(eid))
		}
		if err := tx.deletePlacements(ctx, refs); err != nil {
			return err
		}

		res := tx.db.WithContext(ctx).Delete(&models.Domain{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete domain %d: %w", id, translate(res.Error))
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("domain %d: %w", id, ErrNotFound)
		}
		return nil
	})
}
