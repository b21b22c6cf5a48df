package weaver

import (
	"context"
	"fmt"
	"strings"

	"weavebooks/internal/core/account"
	"weavebooks/internal/core/clock"
	"weavebooks/internal/core/id"
	"weavebooks/internal/core/tx"
	"weavebooks/internal/domain"
	"weavebooks/internal/domain/sequence"
	"weavebooks/pkg/logger"
)

// Service provides business operations for weavers.
type Service struct {
	repo      Repository
	seq       *sequence.Generator
	txManager tx.Manager
	clock     clock.Clock
}

// NewService creates a new weaver service.
func NewService(repo Repository, seq *sequence.Generator, txManager tx.Manager, clk clock.Clock) *Service {
	return &Service{repo: repo, seq: seq, txManager: txManager, clock: clk}
}

// Create assigns a code (W001...) and opens the payable balance at opening_balance.
func (s *Service) Create(ctx context.Context, scope account.Scope, w *Weaver) error {
	if w.Status == "" {
		w.Status = StatusActive
	}
	w.IFSC = strings.ToUpper(w.IFSC)
	if err := w.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		code, err := s.seq.Next(ctx, scope, sequence.Weaver, s.repo)
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		now := s.clock.Now()
		w.ID = id.New()
		w.AccountID = scope.ID()
		w.Code = code
		w.CurrentBalance = w.OpeningBalance
		w.CreatedAt = now
		w.UpdatedAt = now
		return s.repo.Create(ctx, scope, w)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "weaver created", "id", w.ID, "code", w.Code)
	return nil
}

// Get returns a weaver.
func (s *Service) Get(ctx context.Context, scope account.Scope, weaverID string) (*Weaver, error) {
	return s.repo.Get(ctx, scope, weaverID)
}

// List returns weavers matching filter, sorted by name unless Newest.
func (s *Service) List(ctx context.Context, scope account.Scope, filter ListFilter) (domain.ListResult[*Weaver], error) {
	filter.ListFilter = filter.ListFilter.Normalize()
	items, total, err := s.repo.List(ctx, scope, filter)
	if err != nil {
		return domain.ListResult[*Weaver]{}, err
	}
	return domain.NewListResult(items, total, filter.ListFilter), nil
}

// Update merges patch. An opening_balance edit shifts current_balance by the delta.
func (s *Service) Update(ctx context.Context, scope account.Scope, weaverID string, patch Patch) (*Weaver, error) {
	var out *Weaver
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		w, err := s.repo.Get(ctx, scope, weaverID)
		if err != nil {
			return err
		}
		oldOpening := w.OpeningBalance

		patch.apply(w)
		w.IFSC = strings.ToUpper(w.IFSC)
		if err := w.Validate(ctx); err != nil {
			return err
		}
		w.UpdatedAt = s.clock.Now()
		if err := s.repo.Update(ctx, scope, w); err != nil {
			return fmt.Errorf("update weaver: %w", err)
		}
		if delta := w.OpeningBalance - oldOpening; delta != 0 {
			if err := s.repo.AdjustBalance(ctx, scope, w.ID, delta); err != nil {
				return fmt.Errorf("shift balance: %w", err)
			}
		}
		out, err = s.repo.Get(ctx, scope, weaverID)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "weaver updated", "id", out.ID)
	return out, nil
}

// Deactivate soft-deletes the weaver.
func (s *Service) Deactivate(ctx context.Context, scope account.Scope, weaverID string) error {
	status := StatusInactive
	_, err := s.Update(ctx, scope, weaverID, Patch{Status: &status})
	return err
}
