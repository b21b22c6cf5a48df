package item

import (
	"context"
	"fmt"
	"strings"

	"weavebooks/internal/core/account"
	"weavebooks/internal/core/apperror"
	"weavebooks/internal/core/clock"
	"weavebooks/internal/core/id"
	"weavebooks/internal/core/tx"
	"weavebooks/internal/core/types"
	"weavebooks/internal/domain"
	"weavebooks/internal/domain/plan"
	"weavebooks/internal/domain/registers/stock"
	"weavebooks/pkg/logger"
)

// Service provides business operations for items.
type Service struct {
	repo      Repository
	ledger    *stock.Ledger
	guard     *plan.Guard
	txManager tx.Manager
	clock     clock.Clock
}

// NewService creates a new item service.
func NewService(repo Repository, ledger *stock.Ledger, guard *plan.Guard, txManager tx.Manager, clk clock.Clock) *Service {
	return &Service{repo: repo, ledger: ledger, guard: guard, txManager: txManager, clock: clk}
}

// Create adds an item with current_stock = opening_stock.
func (s *Service) Create(ctx context.Context, scope account.Scope, i *Item) error {
	if i.Status == "" {
		i.Status = StatusActive
	}
	if i.Unit == "" {
		i.Unit = "PCS"
	}
	if i.ItemType == "" {
		i.ItemType = "goods"
	}
	i.Name = strings.TrimSpace(i.Name)
	if err := i.Validate(ctx); err != nil {
		return err
	}

	if err := s.guard.CheckNext(ctx, scope, plan.ResourceItems); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.ensureUniqueName(ctx, scope, i.Name, ""); err != nil {
			return err
		}
		now := s.clock.Now()
		i.ID = id.New()
		i.AccountID = scope.ID()
		i.CurrentStock = i.OpeningStock
		i.CreatedAt = now
		i.UpdatedAt = now
		return s.repo.Create(ctx, scope, i)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "item created", "id", i.ID, "name", i.Name)
	return nil
}

func (s *Service) ensureUniqueName(ctx context.Context, scope account.Scope, name, excludeID string) error {
	exists, err := s.repo.ExistsByName(ctx, scope, name, excludeID)
	if err != nil {
		return fmt.Errorf("check item name: %w", err)
	}
	if exists {
		return apperror.NewConflict(fmt.Sprintf("item %q already exists", name)).WithDetail("item_name", name)
	}
	return nil
}

// Get returns an item.
func (s *Service) Get(ctx context.Context, scope account.Scope, itemID string) (*Item, error) {
	return s.repo.Get(ctx, scope, itemID)
}

// List returns items sorted by name.
func (s *Service) List(ctx context.Context, scope account.Scope, filter ListFilter) (domain.ListResult[*Item], error) {
	filter.ListFilter = filter.ListFilter.Normalize()
	items, total, err := s.repo.List(ctx, scope, filter)
	if err != nil {
		return domain.ListResult[*Item]{}, err
	}
	return domain.NewListResult(items, total, filter.ListFilter), nil
}

// Update merges patch into the item.
//
// An opening_stock edit carries into current_stock only while the item has
// no stock movements, or its stock still equals the old opening value.
func (s *Service) Update(ctx context.Context, scope account.Scope, itemID string, patch Patch) (*Item, error) {
	var out *Item
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		it, err := s.repo.Get(ctx, scope, itemID)
		if err != nil {
			return err
		}
		oldOpening := it.OpeningStock
		oldName := it.Name

		patch.apply(it)
		it.Name = strings.TrimSpace(it.Name)
		if err := it.Validate(ctx); err != nil {
			return err
		}
		if !strings.EqualFold(oldName, it.Name) {
			if err := s.ensureUniqueName(ctx, scope, it.Name, it.ID); err != nil {
				return err
			}
		}

		it.UpdatedAt = s.clock.Now()
		if err := s.repo.Update(ctx, scope, it); err != nil {
			return fmt.Errorf("update item: %w", err)
		}

		if delta := it.OpeningStock - oldOpening; delta != 0 {
			if err := s.syncOpeningStock(ctx, scope, it, oldOpening, delta); err != nil {
				return err
			}
		}

		out, err = s.repo.Get(ctx, scope, itemID)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "item updated", "id", out.ID)
	return out, nil
}

func (s *Service) syncOpeningStock(ctx context.Context, scope account.Scope, it *Item, oldOpening, delta types.Quantity) error {
	moved, err := s.ledger.HasMovements(ctx, scope, it.ID)
	if err != nil {
		return fmt.Errorf("check movements: %w", err)
	}
	if moved && it.CurrentStock != oldOpening {
		logger.Debug(ctx, "opening stock edit not carried into current stock", "item_id", it.ID)
		return nil
	}
	lvl, ok, err := s.repo.AdjustStock(ctx, scope, it.ID, delta)
	if err != nil {
		return fmt.Errorf("sync opening stock: %w", err)
	}
	if !ok {
		return apperror.NewInsufficientStock(it.ID, it.Name, delta.Abs().Float64(), lvl.Current.Float64())
	}
	return nil
}

// Deactivate soft-deletes the item.
func (s *Service) Deactivate(ctx context.Context, scope account.Scope, itemID string) error {
	status := StatusInactive
	_, err := s.Update(ctx, scope, itemID, Patch{Status: &status})
	return err
}

// StockHistory lists the item's stock movements newest first.
func (s *Service) StockHistory(ctx context.Context, scope account.Scope, itemID string, limit int) ([]*stock.Transaction, error) {
	if _, err := s.repo.Get(ctx, scope, itemID); err != nil {
		return nil, err
	}
	return s.ledger.History(ctx, scope, itemID, limit)
}
