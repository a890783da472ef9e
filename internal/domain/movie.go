package domain

import (
	"fmt"
	"strings"
	"time"
)

// DefaultGenre is applied when a movie is created without a genre.
const DefaultGenre = "General"

// DefaultPosterURL is used when an admin creates a movie without a poster.
const DefaultPosterURL = "https://via.placeholder.com/400x600"

// Movie represents the canonical movie entity. AvgRating and TotalReviews are
// derived from the movie's reviews and only written by rating recomputation.
type Movie struct {
	ID           int64
	Title        string
	Description  string
	PosterURL    string
	Genre        string
	AvgRating    float64
	TotalReviews int64
	CreatedAt    time.Time
}

// NewMovie bundles the fields required to create a movie. ID is a requested
// identifier for backends that expect callers to supply one; backends that
// generate identifiers ignore it.
type NewMovie struct {
	ID          int64
	Title       string
	Description string
	PosterURL   string
	Genre       string
}

// Normalize trims the payload and applies defaults.
func (m NewMovie) Normalize() NewMovie {
	m.Title = strings.TrimSpace(m.Title)
	m.Description = strings.TrimSpace(m.Description)
	m.PosterURL = strings.TrimSpace(m.PosterURL)
	m.Genre = strings.TrimSpace(m.Genre)
	if m.PosterURL == "" {
		m.PosterURL = DefaultPosterURL
	}
	if m.Genre == "" {
		m.Genre = DefaultGenre
	}
	return m
}

// Validate reports whether the payload can be stored.
func (m NewMovie) Validate() error {
	if strings.TrimSpace(m.Title) == "" || strings.TrimSpace(m.Description) == "" {
		return fmt.Errorf("%w: title and description are required", ErrInvalidInput)
	}
	if m.ID < 0 {
		return fmt.Errorf("%w: movie id must be positive", ErrInvalidInput)
	}
	return nil
}
