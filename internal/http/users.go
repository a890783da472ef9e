package httpserver

import (
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/Clark-Hu/cinema-pulse/internal/auth"
	"github.com/Clark-Hu/cinema-pulse/internal/domain"
	"github.com/Clark-Hu/cinema-pulse/internal/persistence"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type userListResponse struct {
	Items []userResponse `json:"items"`
}

// handleRegisterUser creates a viewer account. Admin accounts are only
// created by seeding.
func (s *Server) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	email := strings.TrimSpace(req.Email)
	if _, err := mail.ParseAddress(email); err != nil || req.Password == "" || strings.TrimSpace(req.Name) == "" {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "email, password and name are required")
		return
	}

	params, err := auth.NewUser(email, req.Password, strings.TrimSpace(req.Name), domain.RoleViewer)
	if err != nil {
		s.logger.Error().Err(err).Msg("hash credentials")
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to register user")
		return
	}

	res := s.facade.CreateUser(r.Context(), params)
	if !res.OK() {
		s.respondFailure(w, res.Code, "Email already registered")
		return
	}
	s.respondJSON(w, http.StatusCreated, toUserResponse(res.Value))
}

// handleLogin checks credentials and returns the account they belong to.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	user, ok := s.verifyCredentials(w, r, strings.TrimSpace(req.Email), req.Password)
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, toUserResponse(user))
}

// authenticate resolves the caller from HTTP Basic credentials. On failure
// the response has already been written.
func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) (domain.User, bool) {
	email, password, ok := r.BasicAuth()
	if !ok {
		w.Header().Set("WWW-Authenticate", `Basic realm="cinema-pulse"`)
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return domain.User{}, false
	}
	return s.verifyCredentials(w, r, strings.TrimSpace(email), password)
}

func (s *Server) verifyCredentials(w http.ResponseWriter, r *http.Request, email, password string) (domain.User, bool) {
	if email == "" || password == "" {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid email or password")
		return domain.User{}, false
	}
	res := s.facade.GetUser(r.Context(), email)
	switch {
	case res.Code == persistence.CodeNotFound:
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid email or password")
		return domain.User{}, false
	case !res.OK():
		s.respondFailure(w, res.Code, "Failed to identify user")
		return domain.User{}, false
	}
	if !auth.Verify(password, res.Value) {
		s.logger.Debug().Str("email", email).Msg("credential check failed")
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid email or password")
		return domain.User{}, false
	}
	return res.Value, true
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	res := s.facade.ListUsers(r.Context())
	if !res.OK() {
		s.respondFailure(w, res.Code, "Failed to list users")
		return
	}
	items := make([]userResponse, 0, len(res.Value))
	for _, u := range res.Value {
		items = append(items, toUserResponse(u))
	}
	s.respondJSON(w, http.StatusOK, userListResponse{Items: items})
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}
