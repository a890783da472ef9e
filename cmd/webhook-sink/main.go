// Command webhook-sink is a local receiver for change notifications. It logs
// every event POSTed to /events and can be told to fail so the server's
// circuit breaker can be observed.
package main

import (
	"flag"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"

	"github.com/Clark-Hu/cinema-pulse/internal/logging"
	"github.com/Clark-Hu/cinema-pulse/internal/notify"
)

func main() {
	var (
		port     = flag.String("port", "9099", "port to listen on")
		apiKey   = flag.String("api-key", "", "expected X-API-Key header (empty disables the check)")
		status   = flag.Int("status", http.StatusAccepted, "status code returned for every event")
		logLevel = flag.String("log-level", "info", "log level")
	)
	flag.Parse()

	logger := logging.New(logging.Config{Level: *logLevel, Format: "console"})

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Post("/events", func(w http.ResponseWriter, r *http.Request) {
		if *apiKey != "" && r.Header.Get("X-API-Key") != *apiKey {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		var event notify.Event
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
			logger.Warn().Err(err).Msg("malformed event")
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		logger.Info().
			Str("id", event.ID).
			Str("type", string(event.Type)).
			Int64("movie_id", event.MovieID).
			Str("user_email", event.UserEmail).
			Int("rating", event.Rating).
			Time("occurred_at", event.OccurredAt).
			Int("status", *status).
			Msg("event received")
		w.WriteHeader(*status)
	})

	addr := ":" + *port
	logger.Info().Str("addr", addr).Msg("webhook sink listening")
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Error().Err(err).Msg("server error")
		os.Exit(1)
	}
}
