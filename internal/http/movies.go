package httpserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Clark-Hu/cinema-pulse/internal/domain"
)

type movieCreateRequest struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	PosterURL   string `json:"poster_url"`
	Genre       string `json:"genre"`
}

type movieResponse struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	PosterURL    string    `json:"poster_url"`
	Genre        string    `json:"genre"`
	AvgRating    float64   `json:"avg_rating"`
	TotalReviews int64     `json:"total_reviews"`
	CreatedAt    time.Time `json:"created_at"`
}

type movieListResponse struct {
	Items []movieResponse `json:"items"`
}

type movieDeleteResponse struct {
	ID             int64 `json:"id"`
	ReviewsRemoved int64 `json:"reviews_removed"`
}

func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	res := s.facade.GetAllMovies(r.Context())
	if !res.OK() {
		s.respondFailure(w, res.Code, "Failed to list movies")
		return
	}
	s.respondJSON(w, http.StatusOK, movieListResponse{Items: toMovieResponses(res.Value)})
}

func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	res := s.facade.GetMovieByID(r.Context(), chi.URLParam(r, "id"))
	if !res.OK() {
		s.respondFailure(w, res.Code, "Invalid movie id")
		return
	}
	s.respondJSON(w, http.StatusOK, toMovieResponse(res.Value))
}

func (s *Server) handleCreateMovie(w http.ResponseWriter, r *http.Request) {
	var req movieCreateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Description) == "" {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "title and description are required")
		return
	}

	res := s.facade.CreateMovie(r.Context(), domain.NewMovie{
		ID:          req.ID,
		Title:       req.Title,
		Description: req.Description,
		PosterURL:   req.PosterURL,
		Genre:       req.Genre,
	})
	if !res.OK() {
		s.respondFailure(w, res.Code, "Movie could not be created")
		return
	}
	s.respondJSON(w, http.StatusCreated, toMovieResponse(res.Value))
}

func (s *Server) handleDeleteMovie(w http.ResponseWriter, r *http.Request) {
	res := s.facade.DeleteMovie(r.Context(), chi.URLParam(r, "id"))
	if !res.OK() {
		s.respondFailure(w, res.Code, "Invalid movie id")
		return
	}
	id, _ := s.movieID(r)
	s.respondJSON(w, http.StatusOK, movieDeleteResponse{ID: id, ReviewsRemoved: res.Value})
}

func toMovieResponse(movie domain.Movie) movieResponse {
	return movieResponse{
		ID:           movie.ID,
		Title:        movie.Title,
		Description:  movie.Description,
		PosterURL:    movie.PosterURL,
		Genre:        movie.Genre,
		AvgRating:    movie.AvgRating,
		TotalReviews: movie.TotalReviews,
		CreatedAt:    movie.CreatedAt,
	}
}

func toMovieResponses(movies []domain.Movie) []movieResponse {
	items := make([]movieResponse, 0, len(movies))
	for _, movie := range movies {
		items = append(items, toMovieResponse(movie))
	}
	return items
}
