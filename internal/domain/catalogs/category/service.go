package category

import (
	"context"
	"fmt"

	"weavebooks/internal/core/account"
	"weavebooks/internal/core/apperror"
	"weavebooks/internal/core/clock"
	"weavebooks/internal/core/id"
	"weavebooks/internal/core/tx"
	"weavebooks/internal/domain"
	"weavebooks/pkg/logger"
)

// Service provides business operations for categories.
type Service struct {
	repo      Repository
	items     ItemCounter
	txManager tx.Manager
	clock     clock.Clock
}

// NewService creates a new category service.
func NewService(repo Repository, items ItemCounter, txManager tx.Manager, clk clock.Clock) *Service {
	return &Service{repo: repo, items: items, txManager: txManager, clock: clk}
}

// Create adds a category. Names are unique per account, ignoring case.
func (s *Service) Create(ctx context.Context, scope account.Scope, c *Category) error {
	if c.Status == "" {
		c.Status = StatusActive
	}
	if err := c.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.ensureUniqueName(ctx, scope, c.Name, ""); err != nil {
			return err
		}
		now := s.clock.Now()
		c.ID = id.New()
		c.AccountID = scope.ID()
		c.CreatedAt = now
		c.UpdatedAt = now
		return s.repo.Create(ctx, scope, c)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "category created", "id", c.ID, "name", c.Name)
	return nil
}

func (s *Service) ensureUniqueName(ctx context.Context, scope account.Scope, name, excludeID string) error {
	exists, err := s.repo.ExistsByName(ctx, scope, name, excludeID)
	if err != nil {
		return fmt.Errorf("check category name: %w", err)
	}
	if exists {
		return apperror.NewConflict(fmt.Sprintf("category %q already exists", name)).WithDetail("category_name", name)
	}
	return nil
}

// Get returns a category.
func (s *Service) Get(ctx context.Context, scope account.Scope, categoryID string) (*Category, error) {
	return s.repo.Get(ctx, scope, categoryID)
}

// List returns categories sorted by name.
func (s *Service) List(ctx context.Context, scope account.Scope, filter ListFilter) (domain.ListResult[*Category], error) {
	filter.ListFilter = filter.ListFilter.Normalize()
	items, total, err := s.repo.List(ctx, scope, filter)
	if err != nil {
		return domain.ListResult[*Category]{}, err
	}
	return domain.NewListResult(items, total, filter.ListFilter), nil
}

// Update merges patch into the category.
func (s *Service) Update(ctx context.Context, scope account.Scope, categoryID string, patch Patch) (*Category, error) {
	var out *Category
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		c, err := s.repo.Get(ctx, scope, categoryID)
		if err != nil {
			return err
		}
		patch.apply(c)
		if err := c.Validate(ctx); err != nil {
			return err
		}
		if patch.Name != nil {
			if err := s.ensureUniqueName(ctx, scope, c.Name, c.ID); err != nil {
				return err
			}
		}
		c.UpdatedAt = s.clock.Now()
		if err := s.repo.Update(ctx, scope, c); err != nil {
			return fmt.Errorf("update category: %w", err)
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "category updated", "id", out.ID)
	return out, nil
}

// Delete removes a category no item refers to.
func (s *Service) Delete(ctx context.Context, scope account.Scope, categoryID string) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.Get(ctx, scope, categoryID); err != nil {
			return err
		}
		n, err := s.items(ctx, scope, categoryID)
		if err != nil {
			return fmt.Errorf("count category items: %w", err)
		}
		if n > 0 {
			return apperror.NewConflict(fmt.Sprintf("cannot delete category: %d item(s) are associated", n)).
				WithDetail("item_count", n)
		}
		return s.repo.Delete(ctx, scope, categoryID)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "category deleted", "id", categoryID)
	return nil
}
