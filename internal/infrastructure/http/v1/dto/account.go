package dto

import (
	"weavebooks/internal/domain/plan"
)

// ChangePlanRequest is the body of PUT /account/plan.
type ChangePlanRequest struct {
	Plan string `json:"plan" binding:"required,oneof=free pro enterprise"`
}

// PlanResponse describes one subscription tier.
type PlanResponse struct {
	Key      string                  `json:"key"`
	Name     string                  `json:"name"`
	Limits   map[plan.Resource]int64 `json:"limits"`
	Features map[plan.Feature]bool   `json:"features"`
}

// NewPlanResponse maps a plan to its response.
func NewPlanResponse(p plan.Plan) PlanResponse {
	return PlanResponse{Key: p.Key, Name: p.Name, Limits: p.Limits, Features: p.Features}
}
