package httpserver

import (
	"net/http"

	"github.com/Clark-Hu/cinema-pulse/internal/domain"
)

type analyticsResponse struct {
	domain.Analytics
	Movies []movieResponse `json:"movies"`
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	stats := s.facade.GetAnalytics(r.Context())
	if !stats.OK() {
		s.respondFailure(w, stats.Code, "Failed to compute analytics")
		return
	}
	movies := s.facade.GetAllMovies(r.Context())
	if !movies.OK() {
		s.respondFailure(w, movies.Code, "Failed to list movies")
		return
	}
	s.respondJSON(w, http.StatusOK, analyticsResponse{
		Analytics: stats.Value,
		Movies:    toMovieResponses(movies.Value),
	})
}
