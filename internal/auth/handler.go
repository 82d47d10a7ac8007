package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/redmonkez12/go-blog-auth/internal/httputil"
	"github.com/redmonkez12/go-blog-auth/internal/logging"
	"github.com/redmonkez12/go-blog-auth/internal/token"
	"github.com/redmonkez12/go-blog-auth/internal/user"
)

// Rate limit purposes, each with its own per-IP budget
const (
	purposeLogin         = "login"
	purposeSignUp        = "sign_up"
	purposeSignUpVerify  = "sign_up_verify"
	purposePasswordReset = "password_reset"
)

// RateLimiter is implemented by ratelimit.Limiter
type RateLimiter interface {
	CheckIPRateLimitWithPurpose(ctx context.Context, ip, purpose string) (bool, error)
	RecordIPRequestWithPurpose(ctx context.Context, ip, purpose string) error
	CheckEmailCooldown(ctx context.Context, email string) (bool, error)
	SetEmailCooldown(ctx context.Context, email string) error
}

// Handler contains HTTP handlers for authentication and user endpoints
type Handler struct {
	service     *Service
	sessions    SessionManager
	rateLimiter RateLimiter
}

func NewHandler(service *Service, sessions SessionManager, rateLimiter RateLimiter) *Handler {
	return &Handler{
		service:     service,
		sessions:    sessions,
		rateLimiter: rateLimiter,
	}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse wraps the current session
type SessionResponse struct {
	Data UserSession `json:"data"`
}

// BoolResponse wraps the outcome of an operation
type BoolResponse struct {
	Data bool `json:"data"`
}

// Session returns the session of the caller
// @Summary      Current session
// @Description  Return the user bound to the session cookie
// @Tags         auth
// @Produce      json
// @Success      200 {object} SessionResponse
// @Failure      401 {object} httputil.ErrorResponse "No valid session"
// @Router       /auth [get]
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessions.Get(r)
	if !ok {
		respondError(w, "missing or invalid session", httputil.CodeMissingSession, http.StatusUnauthorized)
		return
	}

	respondData(w, session, http.StatusOK)
}

// Login handles password login
// @Summary      Login
// @Description  Check email and password and start a session cookie
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} SessionResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid request body"
// @Failure      401 {object} httputil.ErrorResponse "Wrong password"
// @Failure      404 {object} httputil.ErrorResponse "Unknown email"
// @Failure      429 {object} httputil.ErrorResponse "Too many requests"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if h.limitIP(w, r, logger, purposeLogin) {
		return
	}

	var req LoginRequest
	if !decodeBody(w, r, logger, &req) {
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	session, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(w, logger, "login", err)
		return
	}

	if err := h.sessions.Set(w, *session); err != nil {
		logger.Error("failed to set session cookie", "error", err.Error())
		respondError(w, "failed to start session", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("user logged in", "user_id", session.UserID)
	respondData(w, session, http.StatusOK)
}

// Logout clears the session cookie
// @Summary      Logout
// @Description  Clear the session cookie. Data is false when there was no session.
// @Tags         auth
// @Produce      json
// @Success      200 {object} BoolResponse
// @Router       /auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	session, hadSession := h.sessions.Get(r)
	h.sessions.Unset(w)

	if hadSession {
		logger.Info("user logged out", "user_id", session.UserID)
	}
	respondData(w, hadSession, http.StatusOK)
}

// limitIP applies the per-IP budget for purpose. It returns true when the
// request was rejected. Limiter failures never block a request.
func (h *Handler) limitIP(w http.ResponseWriter, r *http.Request, logger *logging.Logger, purpose string) bool {
	ip := getClientIP(r)

	exceeded, err := h.rateLimiter.CheckIPRateLimitWithPurpose(r.Context(), ip, purpose)
	if err != nil {
		logger.Error("failed to check IP rate limit", "error", err.Error())
	} else if exceeded {
		logger.Warn("IP rate limit exceeded", "ip", ip, "purpose", purpose)
		respondError(w, "too many requests, please try again later", httputil.CodeTooManyRequests, http.StatusTooManyRequests)
		return true
	}

	if err := h.rateLimiter.RecordIPRequestWithPurpose(r.Context(), ip, purpose); err != nil {
		logger.Error("failed to record IP request", "error", err.Error())
	}

	return false
}

// emailOnCooldown rejects the request while email is still cooling down from a
// previous mail. Blank addresses are left to the service to reject.
func (h *Handler) emailOnCooldown(w http.ResponseWriter, r *http.Request, logger *logging.Logger, email string) bool {
	if strings.TrimSpace(email) == "" {
		return false
	}

	onCooldown, err := h.rateLimiter.CheckEmailCooldown(r.Context(), email)
	if err != nil {
		logger.Error("failed to check email cooldown", "error", err.Error())
		return false
	}
	if onCooldown {
		logger.Warn("email on cooldown", "email", email)
		respondError(w, "please wait before requesting another email", httputil.CodeCooldownActive, http.StatusTooManyRequests)
		return true
	}

	return false
}

// startEmailCooldown is called once a mail has been handed to the service
func (h *Handler) startEmailCooldown(r *http.Request, logger *logging.Logger, email string) {
	if strings.TrimSpace(email) == "" {
		return
	}

	if err := h.rateLimiter.SetEmailCooldown(r.Context(), email); err != nil {
		logger.Error("failed to set email cooldown", "error", err.Error())
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, logger *logging.Logger, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.Warn("invalid request body", "error", err.Error())
		respondError(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return false
	}
	return true
}

// respondServiceError maps service error kinds to HTTP statuses.
// The reset path reports a wrong token id or temporary password as an unknown user.
func respondServiceError(w http.ResponseWriter, logger *logging.Logger, action string, err error) {
	logger = logger.WithError(err)

	switch {
	case errors.Is(err, ErrUserNotFound), errors.Is(err, user.ErrNotFound):
		logger.Warn(action+" failed: user not found")
		respondError(w, "user not found", httputil.CodeUserNotFound, http.StatusNotFound)
	case errors.Is(err, token.ErrNotFound):
		logger.Warn(action+" failed: token not found")
		respondError(w, "token not found or expired", httputil.CodeTokenNotFound, http.StatusNotFound)
	case errors.Is(err, ErrUnauthorized):
		logger.Warn(action+" failed: unauthorized")
		respondError(w, "unauthorized", httputil.CodeUnauthorized, http.StatusUnauthorized)
	case errors.Is(err, ErrInvalidArgument):
		logger.Warn(action+" failed: invalid argument")
		respondError(w, err.Error(), httputil.CodeInvalidArgument, http.StatusBadRequest)
	case errors.Is(err, user.ErrDuplicateEmail):
		logger.Warn(action+" failed: email already exists")
		respondError(w, "email already exists", httputil.CodeEmailAlreadyExists, http.StatusConflict)
	default:
		logger.Error(action+" failed: internal error")
		respondError(w, "internal server error", httputil.CodeInternalError, http.StatusInternalServerError)
	}
}

func respondData(w http.ResponseWriter, data any, statusCode int) {
	httputil.RespondData(w, data, statusCode)
}

// respondError sends an error response with a machine-readable code
func respondError(w http.ResponseWriter, message string, code string, statusCode int) {
	httputil.RespondErrorWithCode(w, message, code, statusCode)
}

// getClientIP extracts the client IP address from the request
func getClientIP(r *http.Request) string {
	// X-Forwarded-For can contain multiple IPs, take the first one
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// RemoteAddr format is "IP:port", extract just the IP
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
