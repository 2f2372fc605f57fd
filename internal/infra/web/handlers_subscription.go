package web

import (
	"net/http"
	"time"
)

type planView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Amount   int64  `json:"amount"`
	Interval string `json:"interval"`
}

func (s *Server) handlePlanList(w http.ResponseWriter, r *http.Request) {
	plans, err := s.subUC.ListPlans(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]planView, 0, len(plans))
	for _, p := range plans {
		out = append(out, planView{ID: p.ID, Name: p.Name, Amount: p.Amount, Interval: p.Interval})
	}
	writeJSON(w, http.StatusOK, out)
}

type subscribeRequest struct {
	PlanID string `json:"planId"`
}

type subscriptionView struct {
	ID          string    `json:"id"`
	PlanID      string    `json:"plan_id"`
	Status      string    `json:"status"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	sub, err := s.subUC.Subscribe(r.Context(), userIDFrom(r.Context()), req.PlanID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, subscriptionView{
		ID:          sub.ID,
		PlanID:      sub.PlanID,
		Status:      string(sub.Status),
		PeriodStart: sub.PeriodStart,
		PeriodEnd:   sub.PeriodEnd,
	})
}

func (s *Server) handleSubscriptionCancel(w http.ResponseWriter, r *http.Request) {
	if err := s.subUC.Cancel(r.Context(), userIDFrom(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
