package api

import (
	"net/http"
	"strconv"
	"time"

	"stacktrack/models"
	"stacktrack/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type startSessionRequest struct {
	Stakes     string          `json:"stakes"`
	BuyIn      decimal.Decimal `json:"buyIn"`
	SiteID     *string         `json:"siteId"`
	GameTypeID *string         `json:"gameTypeId"`
	Notes      string          `json:"notes"`
}

type addRebuyRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type addNoteRequest struct {
	Content string `json:"content"`
}

type endSessionRequest struct {
	CashOut decimal.Decimal `json:"cashOut"`
	Notes   string          `json:"notes"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req startSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	session, err := s.sessionService.Start(r.Context(), uid, service.StartSessionInput{
		Stakes:     req.Stakes,
		BuyIn:      req.BuyIn,
		SiteID:     req.SiteID,
		GameTypeID: req.GameTypeID,
		Notes:      req.Notes,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, session)
}

func (s *Server) handleGetActiveSession(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	detail, err := s.sessionService.GetActive(r.Context(), uid)
	if err != nil {
		respondError(w, err)
		return
	}
	if detail == nil {
		respondError(w, service.NewNotFoundError("active session"))
		return
	}

	respondJSON(w, http.StatusOK, detail)
}

func (s *Server) handleAddRebuy(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req addRebuyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	rebuy, err := s.sessionService.AddRebuy(r.Context(), uid, chi.URLParam(r, "id"), req.Amount)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, rebuy)
}

func (s *Server) handleAddNote(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req addNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	note, err := s.sessionService.AddNote(r.Context(), uid, chi.URLParam(r, "id"), req.Content)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, note)
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req endSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	session, err := s.sessionService.End(r.Context(), uid, chi.URLParam(r, "id"), req.CashOut, req.Notes)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (s *Server) handleGetRecentSessions(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, service.NewValidationError("limit", "must be an integer"))
			return
		}
		limit = parsed
	}

	details, err := s.sessionService.GetRecent(r.Context(), uid, limit)
	if err != nil {
		respondError(w, err)
		return
	}
	if details == nil {
		details = []*models.SessionDetail{}
	}

	respondJSON(w, http.StatusOK, details)
}

func (s *Server) handleSearchSessions(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	filters, err := parseSessionFilters(r)
	if err != nil {
		respondError(w, err)
		return
	}

	details, err := s.sessionService.Search(r.Context(), uid, filters)
	if err != nil {
		respondError(w, err)
		return
	}
	if details == nil {
		details = []*models.SessionDetail{}
	}

	respondJSON(w, http.StatusOK, details)
}

// parseSessionFilters reads the search query string. Dates are RFC 3339.
func parseSessionFilters(r *http.Request) (models.SessionFilters, error) {
	query := r.URL.Query()
	filters := models.SessionFilters{
		SiteID:     query.Get("siteId"),
		GameTypeID: query.Get("gameTypeId"),
		Stakes:     query.Get("stakes"),
		ProfitOnly: query.Get("profitOnly") == "true",
	}

	if raw := query.Get("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filters, service.NewValidationError("from", "must be an RFC 3339 timestamp")
		}
		filters.DateFrom = &from
	}
	if raw := query.Get("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filters, service.NewValidationError("to", "must be an RFC 3339 timestamp")
		}
		filters.DateTo = &to
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return filters, service.NewValidationError("limit", "must be an integer")
		}
		filters.Limit = limit
	}
	if raw := query.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			return filters, service.NewValidationError("offset", "must be an integer")
		}
		filters.Offset = offset
	}

	return filters, nil
}
