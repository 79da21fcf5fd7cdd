package http

import (
	"net/http"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.deps.Household.Dashboard(r.Context(), s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(d).Write(w)
}

// handleBudget answers null when no income has been entered yet.
func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	plan, err := s.deps.Household.Budget(r.Context(), s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(plan).Write(w)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	report, err := s.deps.Household.Analytics(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(report).Write(w)
}

func (s *Server) handleKitchen(w http.ResponseWriter, r *http.Request) {
	index, err := ParseRotationDay(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := s.deps.Household.Kitchen(r.Context(), s.now(), index)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(view).Write(w)
}
