package server

import (
	"net/http"

	"github.com/pixgrid/pix-grabber/internal/model"
)

// searchResponse is the success envelope for /search
type searchResponse struct {
	Total   int                `json:"total"`
	Results []model.ResultItem `json:"results"`
}

// handleSearch translates one /search request into a Commons total-hits
// lookup plus a generator=search page and returns the combined envelope
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	params, ok := parsePageParams(r.URL.Query())
	if !ok {
		respondError(w, http.StatusBadRequest, "query parameter is required")
		return
	}

	total, err := s.provider.TotalHits(r.Context(), params.query)
	if err != nil {
		respondJSON(w, http.StatusOK, classifyUpstreamError(err))
		return
	}

	results, err := s.provider.SearchPage(r.Context(), params.query, params.page, params.perPage)
	if err != nil {
		respondJSON(w, http.StatusOK, classifyUpstreamError(err))
		return
	}

	respondJSON(w, http.StatusOK, searchResponse{Total: total, Results: results})
}
