package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"

	"weavebooks/internal/core/account"
	"weavebooks/internal/domain/reconcile"
	"weavebooks/internal/infrastructure/metrics"
	"weavebooks/pkg/logger"
)

// Accounts lists the accounts to audit.
type Accounts interface {
	ListIDs(ctx context.Context) ([]string, error)
}

// Auditor runs one audit.
type Auditor interface {
	Run(ctx context.Context, scope account.Scope, opts reconcile.Options) (*reconcile.Report, error)
}

// Reconciler handles the reconcile tasks.
type Reconciler struct {
	accounts Accounts
	auditor  Auditor
	queue    Enqueuer
	metrics  *metrics.Metrics
}

// NewReconciler creates the handlers. m may be nil.
func NewReconciler(accounts Accounts, auditor Auditor, queue Enqueuer, m *metrics.Metrics) *Reconciler {
	return &Reconciler{accounts: accounts, auditor: auditor, queue: queue, metrics: m}
}

// HandleAll enqueues one account task per account.
func (r *Reconciler) HandleAll(ctx context.Context, t *asynq.Task) error {
	var p ReconcileAllPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return fmt.Errorf("decode %s: %v: %w", TaskReconcileAll, err, asynq.SkipRetry)
		}
	}

	ids, err := r.accounts.ListIDs(ctx)
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}

	queued := 0
	for _, id := range ids {
		task, err := NewReconcileAccountTask(ReconcileAccountPayload{AccountID: id, Repair: p.Repair})
		if err != nil {
			return err
		}
		if _, err := r.queue.EnqueueContext(ctx, task); err != nil {
			if errors.Is(err, asynq.ErrDuplicateTask) {
				continue
			}
			return fmt.Errorf("enqueue %s for %s: %w", TaskReconcileAccount, id, err)
		}
		queued++
	}
	logger.Info(ctx, "reconciliation fanned out", "accounts", len(ids), "queued", queued, "repair", p.Repair)
	return nil
}

// HandleAccount audits one account and publishes the drift counts.
func (r *Reconciler) HandleAccount(ctx context.Context, t *asynq.Task) error {
	var p ReconcileAccountPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("decode %s: %v: %w", TaskReconcileAccount, err, asynq.SkipRetry)
	}
	scope, err := account.NewScope(p.AccountID)
	if err != nil {
		return fmt.Errorf("%s: %v: %w", TaskReconcileAccount, err, asynq.SkipRetry)
	}
	ctx = account.WithScope(ctx, scope)

	rep, err := r.auditor.Run(ctx, scope, reconcile.Options{Repair: p.Repair})
	if err != nil {
		r.metrics.ReconcileFailed()
		logger.Error(ctx, "reconciliation failed", "error", err)
		return err
	}
	r.metrics.ObserveReport(rep)
	return nil
}

// Register binds the handlers on mux.
func (r *Reconciler) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TaskReconcileAll, r.HandleAll)
	mux.HandleFunc(TaskReconcileAccount, r.HandleAccount)
}
