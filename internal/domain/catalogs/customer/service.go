package customer

import (
	"context"
	"fmt"

	"weavebooks/internal/core/account"
	"weavebooks/internal/core/clock"
	"weavebooks/internal/core/id"
	"weavebooks/internal/core/tx"
	"weavebooks/internal/domain"
	"weavebooks/internal/domain/sequence"
	"weavebooks/pkg/logger"
)

// Service provides business operations for customers.
type Service struct {
	repo      Repository
	seq       *sequence.Generator
	txManager tx.Manager
	clock     clock.Clock
}

// NewService creates a new customer service.
func NewService(repo Repository, seq *sequence.Generator, txManager tx.Manager, clk clock.Clock) *Service {
	return &Service{repo: repo, seq: seq, txManager: txManager, clock: clk}
}

// Create assigns a code (C001...) and opens the running balance at opening_balance.
func (s *Service) Create(ctx context.Context, scope account.Scope, c *Customer) error {
	if c.Status == "" {
		c.Status = StatusActive
	}
	if err := c.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		code, err := s.seq.Next(ctx, scope, sequence.Customer, s.repo)
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}

		now := s.clock.Now()
		c.ID = id.New()
		c.AccountID = scope.ID()
		c.Code = code
		c.CurrentBalance = c.OpeningBalance
		c.CreatedAt = now
		c.UpdatedAt = now
		return s.repo.Create(ctx, scope, c)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "customer created", "id", c.ID, "code", c.Code)
	return nil
}

// Get returns a customer.
func (s *Service) Get(ctx context.Context, scope account.Scope, customerID string) (*Customer, error) {
	return s.repo.Get(ctx, scope, customerID)
}

// List returns active customers matching filter, sorted by name.
func (s *Service) List(ctx context.Context, scope account.Scope, filter ListFilter) (domain.ListResult[*Customer], error) {
	filter.ListFilter = filter.ListFilter.Normalize()
	items, total, err := s.repo.List(ctx, scope, filter)
	if err != nil {
		return domain.ListResult[*Customer]{}, err
	}
	return domain.NewListResult(items, total, filter.ListFilter), nil
}

// Update merges patch into the customer. Changing opening_balance shifts
// current_balance by the same delta.
func (s *Service) Update(ctx context.Context, scope account.Scope, customerID string, patch Patch) (*Customer, error) {
	var out *Customer
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		c, err := s.repo.Get(ctx, scope, customerID)
		if err != nil {
			return err
		}
		oldOpening := c.OpeningBalance

		patch.apply(c)
		if err := c.Validate(ctx); err != nil {
			return err
		}
		c.UpdatedAt = s.clock.Now()
		if err := s.repo.Update(ctx, scope, c); err != nil {
			return fmt.Errorf("update customer: %w", err)
		}

		if delta := c.OpeningBalance - oldOpening; delta != 0 {
			if err := s.repo.AdjustBalance(ctx, scope, c.ID, delta); err != nil {
				return fmt.Errorf("shift balance: %w", err)
			}
		}

		out, err = s.repo.Get(ctx, scope, customerID)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "customer updated", "id", out.ID)
	return out, nil
}

// Deactivate soft-deletes the customer.
func (s *Service) Deactivate(ctx context.Context, scope account.Scope, customerID string) error {
	status := StatusInactive
	if _, err := s.Update(ctx, scope, customerID, Patch{Status: &status}); err != nil {
		return err
	}
	logger.Info(ctx, "customer deactivated", "id", customerID)
	return nil
}
