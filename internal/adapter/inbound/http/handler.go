package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/wellman-connect/wellauth/internal/domain/auth"
	"github.com/wellman-connect/wellauth/internal/domain/ratelimit"
	"github.com/wellman-connect/wellauth/internal/domain/route"
	"github.com/wellman-connect/wellauth/internal/domain/security"
	"github.com/wellman-connect/wellauth/internal/domain/session"
	"github.com/wellman-connect/wellauth/internal/domain/validation"
)

// csrfHeader carries the anti-forgery token on mutating requests.
const csrfHeader = "X-CSRF-Token"

// Handler serves the navigation and account endpoints. Navigation requests
// run through the route guard; account mutations run through the
// validation pipeline, the rate limiter, and the CSRF check.
type Handler struct {
	sessions *session.Store
	guard    *route.Guard
	accounts *auth.Accounts
	limiter  *ratelimit.Limiter
	csrf     *security.CSRFManager
	metrics  *Metrics
	logger   *slog.Logger

	maxAttempts int
	window      time.Duration
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithRateLimitPolicy overrides the login/signup attempt limit.
func WithRateLimitPolicy(maxAttempts int, window time.Duration) HandlerOption {
	return func(h *Handler) {
		h.maxAttempts = maxAttempts
		h.window = window
	}
}

// NewHandler wires the HTTP surface over the domain components.
func NewHandler(
	sessions *session.Store,
	guard *route.Guard,
	accounts *auth.Accounts,
	limiter *ratelimit.Limiter,
	csrf *security.CSRFManager,
	metrics *Metrics,
	logger *slog.Logger,
	opts ...HandlerOption,
) *Handler {
	h := &Handler{
		sessions:    sessions,
		guard:       guard,
		accounts:    accounts,
		limiter:     limiter,
		csrf:        csrf,
		metrics:     metrics,
		logger:      logger,
		maxAttempts: ratelimit.DefaultMaxAttempts,
		window:      ratelimit.DefaultWindow,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes builds the request mux for the service.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/session", h.handleSession)
	mux.HandleFunc("GET /api/csrf", h.handleCSRF)
	mux.HandleFunc("POST /api/signup", h.handleSignup)
	mux.HandleFunc("POST /api/login", h.handleLogin)
	mux.HandleFunc("POST /api/logout", h.handleLogout)
	mux.HandleFunc("GET /", h.handleNavigate)

	return mux
}

// handleNavigate resolves the path against the route table and asks the
// guard for a verdict. Denials answer with a 303 to the redirect target,
// carrying the guard's query parameters.
func (h *Handler) handleNavigate(w http.ResponseWriter, r *http.Request) {
	rt, ok := matchRoute(r.URL.Path)
	if !ok {
		// Unknown paths land on home, same as the catch-all route.
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	decision := h.guard.Evaluate(route.Target{
		Name:     rt.Name,
		FullPath: r.URL.RequestURI(),
		Meta:     rt.Meta,
	})

	if !decision.Allowed {
		h.metrics.GuardDecisions.WithLabelValues("redirect").Inc()
		http.Redirect(w, r, redirectLocation(decision), http.StatusSeeOther)
		return
	}

	h.metrics.GuardDecisions.WithLabelValues("allow").Inc()
	writeJSON(w, http.StatusOK, map[string]any{
		"route":         rt.Name,
		"path":          r.URL.Path,
		"authenticated": h.sessions.IsAuthenticated(),
	})
}

// redirectLocation renders a guard decision's target as a Location value.
func redirectLocation(d route.Decision) string {
	loc := pathForRoute(d.RedirectTo)
	if len(d.Query) == 0 {
		return loc
	}
	q := url.Values{}
	for k, v := range d.Query {
		q.Set(k, v)
	}
	return loc + "?" + q.Encode()
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	h.sessions.EnsureInitialized()

	resp := map[string]any{
		"authenticated": h.sessions.IsAuthenticated(),
		"role":          h.sessions.Role(),
	}
	if user := h.sessions.CurrentUser(); user != nil {
		resp["user"] = user
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleCSRF(w http.ResponseWriter, r *http.Request) {
	token, err := h.csrf.Generate()
	if err != nil {
		h.logger.Error("csrf generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"csrfToken": token})
}

type credentialsRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	if !h.allowAttempt(w, r, "signup") {
		return
	}

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result := validation.ValidateForm(map[string]string{
		"email":     req.Email,
		"password":  req.Password,
		"firstName": req.FirstName,
		"lastName":  req.LastName,
	}, signupRules())
	if !result.Valid {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": result.Errors})
		return
	}

	user, err := h.accounts.Register(
		result.Sanitized["email"],
		req.Password,
		result.Sanitized["firstName"],
		result.Sanitized["lastName"],
	)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
		h.logger.Error("signup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := h.sessions.Login(user); err != nil {
		h.logger.Error("post-signup login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.metrics.ActiveSessions.Set(1)

	writeJSON(w, http.StatusCreated, map[string]any{"user": user})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !h.allowAttempt(w, r, "login") {
		return
	}

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result := validation.ValidateForm(map[string]string{
		"email":    req.Email,
		"password": req.Password,
	}, loginRules())
	if !result.Valid {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": result.Errors})
		return
	}

	user, err := h.accounts.Authenticate(result.Sanitized["email"], req.Password)
	if err != nil {
		h.metrics.LoginsTotal.WithLabelValues("failure").Inc()
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := h.sessions.Login(user); err != nil {
		h.logger.Error("login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.metrics.LoginsTotal.WithLabelValues("success").Inc()
	h.metrics.ActiveSessions.Set(1)
	h.limiter.Reset("login:" + clientIP(r))

	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if !h.csrf.Validate(r.Header.Get(csrfHeader)) {
		writeError(w, http.StatusForbidden, "invalid csrf token")
		return
	}

	h.sessions.Logout()
	h.metrics.ActiveSessions.Set(0)
	w.WriteHeader(http.StatusNoContent)
}

// allowAttempt runs the rate limit and CSRF checks shared by the mutating
// account endpoints. It writes the rejection response itself and reports
// whether the request may proceed.
func (h *Handler) allowAttempt(w http.ResponseWriter, r *http.Request, action string) bool {
	key := action + ":" + clientIP(r)
	if h.limiter.Limited(key, h.maxAttempts, h.window) {
		h.metrics.RateLimitedTotal.Inc()
		h.metrics.RateLimitKeys.Set(float64(h.limiter.Size()))
		writeError(w, http.StatusTooManyRequests, "too many attempts, try again later")
		return false
	}
	h.metrics.RateLimitKeys.Set(float64(h.limiter.Size()))

	if !h.csrf.Validate(r.Header.Get(csrfHeader)) {
		writeError(w, http.StatusForbidden, "invalid csrf token")
		return false
	}
	return true
}

// signupRules maps the standard field rules onto the signup form's field
// names.
func signupRules() map[string]validation.Rule {
	base := validation.Rules()
	return map[string]validation.Rule{
		"email":     base["email"],
		"password":  base["password"],
		"firstName": base["name"],
		"lastName":  base["name"],
	}
}

// loginRules checks only presence and email shape; password strength is a
// signup concern and must not lock out accounts created under older rules.
func loginRules() map[string]validation.Rule {
	base := validation.Rules()
	return map[string]validation.Rule{
		"email":    base["email"],
		"password": {Required: true},
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
