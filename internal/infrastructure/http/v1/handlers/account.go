package handlers

import (
	"github.com/gin-gonic/gin"

	"weavebooks/internal/domain/plan"
	"weavebooks/internal/domain/reconcile"
	"weavebooks/internal/infrastructure/http/v1/dto"
)

// AccountHandler serves account-level endpoints: plan usage, plan changes and the balance audit.
type AccountHandler struct {
	*BaseHandler
	guard   *plan.Guard
	auditor *reconcile.Auditor
}

// NewAccountHandler creates an account handler.
func NewAccountHandler(base *BaseHandler, guard *plan.Guard, auditor *reconcile.Auditor) *AccountHandler {
	return &AccountHandler{BaseHandler: base, guard: guard, auditor: auditor}
}

// Usage handles GET /account/usage.
func (h *AccountHandler) Usage(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	usage, err := h.guard.Usage(c.Request.Context(), scope)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, usage)
}

// Reconciliation handles GET /account/reconciliation. It only reports drift;
// repairs run in the background worker.
func (h *AccountHandler) Reconciliation(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	rep, err := h.auditor.Run(c.Request.Context(), scope, reconcile.Options{})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, rep)
}

// Plans handles GET /account/plans.
func (h *AccountHandler) Plans(c *gin.Context) {
	out := make([]dto.PlanResponse, 0, len(plan.Keys()))
	for _, k := range plan.Keys() {
		out = append(out, dto.NewPlanResponse(plan.Lookup(k)))
	}
	h.OK(c, out)
}

// ChangePlan handles PUT /account/plan.
func (h *AccountHandler) ChangePlan(c *gin.Context) {
	scope, ok := h.Scope(c)
	if !ok {
		return
	}
	var req dto.ChangePlanRequest
	if !h.BindJSON(c, &req) {
		return
	}
	acc, err := h.guard.ChangePlan(c.Request.Context(), scope, req.Plan)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, acc)
}
