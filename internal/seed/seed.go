// Package seed loads a demonstration catalog into an empty store.
package seed

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Clark-Hu/cinema-pulse/internal/auth"
	"github.com/Clark-Hu/cinema-pulse/internal/domain"
	"github.com/Clark-Hu/cinema-pulse/internal/persistence"
	"github.com/Clark-Hu/cinema-pulse/internal/sentiment"
)

// Default accounts.
const (
	AdminEmail  = "admin@cinemapulse.com"
	ViewerEmail = "viewer@cinemapulse.com"
)

type account struct {
	email, password, name string
	role                  domain.Role
}

var accounts = []account{
	{AdminEmail, "admin123", "Admin User", domain.RoleAdmin},
	{ViewerEmail, "viewer123", "Viewer User", domain.RoleViewer},
}

type review struct {
	author  string
	rating  int
	comment string
}

type movie struct {
	domain.NewMovie
	reviews []review
}

var catalog = []movie{
	{
		NewMovie: domain.NewMovie{
			Title:       "The Shawshank Redemption",
			Description: "Two imprisoned men bond over a number of years, finding solace and eventual redemption through acts of common decency.",
			PosterURL:   "https://images.unsplash.com/photo-1536440136628-849c177e76a1?w=400",
			Genre:       "Drama",
		},
		reviews: []review{
			{AdminEmail, 5, "Absolutely masterful storytelling!"},
			{ViewerEmail, 5, "A timeless classic that never gets old."},
		},
	},
	{
		NewMovie: domain.NewMovie{
			Title:       "Inception",
			Description: "A thief who steals corporate secrets through dream-sharing technology is given the inverse task of planting an idea.",
			PosterURL:   "https://images.unsplash.com/photo-1478720568477-152d9b164e26?w=400",
			Genre:       "Sci-Fi",
		},
		reviews: []review{
			{AdminEmail, 5, "Mind-bending and brilliant!"},
			{ViewerEmail, 4, "Complex but rewarding watch."},
		},
	},
	{
		NewMovie: domain.NewMovie{
			Title:       "The Dark Knight",
			Description: "When the menace known as the Joker wreaks havoc on Gotham, Batman must accept one of the greatest tests.",
			PosterURL:   "https://images.unsplash.com/photo-1509347528160-9a9e33742cdb?w=400",
			Genre:       "Action",
		},
		reviews: []review{
			{AdminEmail, 5, "Heath Ledger's performance is legendary."},
			{ViewerEmail, 5, "The best superhero movie ever made."},
		},
	},
	{
		NewMovie: domain.NewMovie{
			Title:       "Interstellar",
			Description: "A team of explorers travel through a wormhole in space in an attempt to ensure humanity's survival.",
			PosterURL:   "https://images.unsplash.com/photo-1446776811953-b23d57bd21aa?w=400",
			Genre:       "Sci-Fi",
		},
		reviews: []review{
			{AdminEmail, 5, "Scientifically stunning and emotionally powerful."},
			{ViewerEmail, 4, "Beautiful visuals and touching story."},
		},
	},
}

// Defaults populates the store when it has no users. It reports whether
// anything was written. Movie statistics come from the seeded reviews.
func Defaults(ctx context.Context, f *persistence.Facade, logger zerolog.Logger) (bool, error) {
	users := f.ListUsers(ctx)
	if !users.OK() {
		return false, fmt.Errorf("list users: %w", users.Err)
	}
	if len(users.Value) > 0 {
		logger.Debug().Int("users", len(users.Value)).Msg("store already populated, skipping seed")
		return false, nil
	}

	for _, a := range accounts {
		params, err := auth.NewUser(a.email, a.password, a.name, a.role)
		if err != nil {
			return false, err
		}
		if res := f.CreateUser(ctx, params); !res.OK() {
			return false, fmt.Errorf("seed user %s: %s: %w", a.email, res.Code, res.Err)
		}
	}

	for _, m := range catalog {
		created := f.CreateMovie(ctx, m.NewMovie)
		if !created.OK() {
			return false, fmt.Errorf("seed movie %q: %s: %w", m.Title, created.Code, created.Err)
		}
		for _, r := range m.reviews {
			label := sentiment.Classify(r.comment, r.rating).Sentiment
			res := f.CreateReview(ctx, created.Value.ID, r.author, r.rating, r.comment, label)
			if !res.OK() {
				return false, fmt.Errorf("seed review for %q: %s: %w", m.Title, res.Code, res.Err)
			}
		}
	}

	logger.Info().Int("users", len(accounts)).Int("movies", len(catalog)).Msg("seeded default catalog")
	return true, nil
}
