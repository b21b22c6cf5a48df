// Package jobs defines the background tasks run by the worker.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the queue every task is enqueued on.
	QueueDefault = "default"

	// TaskReconcileAll fans out one TaskReconcileAccount per account.
	TaskReconcileAll = "reconcile:all"
	// TaskReconcileAccount audits the cached balances of one account.
	TaskReconcileAccount = "reconcile:account"
)

// ReconcileAllPayload is the payload of TaskReconcileAll.
type ReconcileAllPayload struct {
	Repair bool `json:"repair"`
}

// ReconcileAccountPayload is the payload of TaskReconcileAccount.
type ReconcileAccountPayload struct {
	AccountID string `json:"account_id"`
	Repair    bool   `json:"repair"`
}

// NewReconcileAllTask builds the fan-out task.
func NewReconcileAllTask(repair bool) (*asynq.Task, error) {
	data, err := json.Marshal(ReconcileAllPayload{Repair: repair})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReconcileAll, data, asynq.Queue(QueueDefault), asynq.MaxRetry(1)), nil
}

// NewReconcileAccountTask builds the audit task of one account. Duplicates
// within the hour are dropped by the queue.
func NewReconcileAccountTask(p ReconcileAccountPayload) (*asynq.Task, error) {
	if p.AccountID == "" {
		return nil, fmt.Errorf("reconcile task: empty account id")
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReconcileAccount, data,
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(3),
		asynq.Timeout(10*time.Minute),
		asynq.Unique(time.Hour),
	), nil
}

// Enqueuer submits tasks. *asynq.Client implements it.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}
