package api

import (
	"net/http"
	"strconv"

	"stacktrack/service"
)

func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	stats, err := s.analyticsService.DashboardStats(r.Context(), uid)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

func (s *Server) handlePerformanceMetrics(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	timeframe := service.Timeframe(r.URL.Query().Get("timeframe"))
	if timeframe == "" {
		timeframe = service.TimeframeMonth
	}

	metrics, err := s.analyticsService.PerformanceMetrics(r.Context(), uid, timeframe)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, metrics)
}

func (s *Server) handleBankrollGrowth(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	points, err := s.analyticsService.BankrollGrowth(r.Context(), uid)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, points)
}

func (s *Server) handleSessionPerformance(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, service.NewValidationError("days", "must be an integer"))
			return
		}
		days = parsed
	}

	performance, err := s.analyticsService.SessionPerformance(r.Context(), uid, days)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, performance)
}

func (s *Server) handleSessionStats(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	stats, err := s.analyticsService.SessionStats(r.Context(), uid)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, stats)
}
