package httpserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Clark-Hu/cinema-pulse/internal/domain"
	"github.com/Clark-Hu/cinema-pulse/internal/persistence"
	"github.com/Clark-Hu/cinema-pulse/internal/sentiment"
)

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type reviewResponse struct {
	MovieID   int64     `json:"movie_id"`
	UserEmail string    `json:"user_email"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	Sentiment string    `json:"sentiment"`
	Timestamp time.Time `json:"timestamp"`
}

type reviewListResponse struct {
	Items []reviewResponse `json:"items"`
}

func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	res := s.facade.GetReviewsForMovie(r.Context(), chi.URLParam(r, "id"))
	if !res.OK() {
		s.respondFailure(w, res.Code, "Invalid movie id")
		return
	}

	items := make([]reviewResponse, 0, len(res.Value))
	for _, review := range res.Value {
		items = append(items, toReviewResponse(review))
	}
	s.respondJSON(w, http.StatusOK, reviewListResponse{Items: items})
}

func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	movieID, err := s.movieID(r)
	if err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid movie id")
		return
	}

	user, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	var req reviewRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if req.Rating < domain.MinRating || req.Rating > domain.MaxRating {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "rating must be between 1 and 5")
		return
	}
	if strings.TrimSpace(req.Comment) == "" {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "comment is required")
		return
	}

	label := sentiment.Classify(req.Comment, req.Rating).Sentiment
	res := s.facade.CreateReview(r.Context(), movieID, user.Email, req.Rating, req.Comment, label)
	if !res.OK() {
		s.respondFailure(w, res.Code, "Review could not be stored")
		return
	}

	s.respondJSON(w, http.StatusCreated, reviewResponse{
		MovieID:   movieID,
		UserEmail: user.Email,
		Rating:    req.Rating,
		Comment:   req.Comment,
		Sentiment: string(label),
		Timestamp: res.Value,
	})
}

func (s *Server) movieID(r *http.Request) (int64, error) {
	return persistence.CoerceMovieID(chi.URLParam(r, "id"))
}

func toReviewResponse(review domain.Review) reviewResponse {
	return reviewResponse{
		MovieID:   review.MovieID,
		UserEmail: review.UserEmail,
		Rating:    review.Rating,
		Comment:   review.Comment,
		Sentiment: string(review.Sentiment),
		Timestamp: review.Timestamp,
	}
}
