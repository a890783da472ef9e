package domain

import (
	"errors"
	"testing"
)

func TestNewMovieNormalize(t *testing.T) {
	got := NewMovie{Title: "  Heat ", Description: " Crime \n"}.Normalize()
	if got.Title != "Heat" || got.Description != "Crime" {
		t.Fatalf("trimmed = %+v", got)
	}
	if got.Genre != DefaultGenre || got.PosterURL != DefaultPosterURL {
		t.Fatalf("defaults not applied: %+v", got)
	}

	kept := NewMovie{Title: "A", Description: "B", Genre: "Drama", PosterURL: "http://p"}.Normalize()
	if kept.Genre != "Drama" || kept.PosterURL != "http://p" {
		t.Fatalf("explicit values overwritten: %+v", kept)
	}
}

func TestNewMovieValidate(t *testing.T) {
	tests := []struct {
		name  string
		movie NewMovie
		ok    bool
	}{
		{"valid", NewMovie{Title: "A", Description: "B"}, true},
		{"explicit id", NewMovie{ID: 3, Title: "A", Description: "B"}, true},
		{"blank title", NewMovie{Title: "  ", Description: "B"}, false},
		{"missing description", NewMovie{Title: "A"}, false},
		{"negative id", NewMovie{ID: -1, Title: "A", Description: "B"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.movie.Validate()
			if tt.ok && err != nil {
				t.Fatalf("Validate() = %v, want nil", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("Validate() = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestNewReviewValidate(t *testing.T) {
	base := NewReview{MovieID: 1, UserEmail: "a@b.c", Rating: 3, Comment: "ok", Sentiment: SentimentNeutral}
	if err := base.Validate(); err != nil {
		t.Fatalf("valid review rejected: %v", err)
	}

	mutations := map[string]func(*NewReview){
		"zero movie":    func(r *NewReview) { r.MovieID = 0 },
		"rating low":    func(r *NewReview) { r.Rating = MinRating - 1 },
		"rating high":   func(r *NewReview) { r.Rating = MaxRating + 1 },
		"no author":     func(r *NewReview) { r.UserEmail = " " },
		"no comment":    func(r *NewReview) { r.Comment = "" },
		"bad sentiment": func(r *NewReview) { r.Sentiment = "ecstatic" },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			r := base
			mutate(&r)
			if err := r.Validate(); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("Validate() = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestNewUserValidate(t *testing.T) {
	if err := (NewUser{Email: "a@b.c", Role: RoleAdmin}).Validate(); err != nil {
		t.Fatalf("valid user rejected: %v", err)
	}
	if err := (NewUser{Role: RoleViewer}).Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("missing email: %v", err)
	}
	if err := (NewUser{Email: "a@b.c", Role: "root"}).Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("unknown role: %v", err)
	}
}
