package api

import (
	"net/http"
)

func (s *Server) handlePokerSites(w http.ResponseWriter, r *http.Request) {
	sites, err := s.referenceService.PokerSites(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, sites)
}

func (s *Server) handleGameTypes(w http.ResponseWriter, r *http.Request) {
	gameTypes, err := s.referenceService.GameTypes(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, gameTypes)
}
