package auth

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/redmonkez12/go-blog-auth/internal/httputil"
	"github.com/redmonkez12/go-blog-auth/internal/logging"
	"github.com/redmonkez12/go-blog-auth/internal/user"
)

// SignUpRequest starts a sign-up; the pin is mailed to Email
type SignUpRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	AvatarURL string `json:"avatar_url"`
}

// SignUpTokenKey identifies a pending sign-up
type SignUpTokenKey struct {
	TokenKey string `json:"token_key"`
}

// SignUpResponse wraps the pending sign-up key
type SignUpResponse struct {
	Data SignUpTokenKey `json:"data"`
}

// CreateUserRequest completes a sign-up with the mailed pin
type CreateUserRequest struct {
	UserPublicKey string `json:"user_public_key"`
	TokenKey      string `json:"token_key"`
	TokenPin      string `json:"token_pin"`
}

// PasswordResetRequest asks for a temporary password
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest replaces a password using the mailed token id and temporary password
type ResetPasswordRequest struct {
	Email             string `json:"email"`
	TokenID           string `json:"token_id"`
	TemporaryPassword string `json:"temporary_password"`
	NewPassword       string `json:"new_password"`
}

// UpdateUserRequest is a partial update; omitted fields stay unchanged
type UpdateUserRequest struct {
	Name      *string `json:"name,omitempty"`
	Password  *string `json:"password,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// UserResponse wraps one user
type UserResponse struct {
	Data user.UserDTO `json:"data"`
}

// UserListResponse wraps a list of users
type UserListResponse struct {
	Data []user.UserDTO `json:"data"`
}

// RequestSignUp handles the first sign-up step
// @Summary      Request sign-up
// @Description  Park the registration and mail a pin to the address. Returns the token key needed to complete it.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body SignUpRequest true "Registration details"
// @Success      201 {object} SignUpResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid request or validation error"
// @Failure      409 {object} httputil.ErrorResponse "Email already exists"
// @Failure      429 {object} httputil.ErrorResponse "Too many requests"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /users/sign-up [post]
func (h *Handler) RequestSignUp(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if h.limitIP(w, r, logger, purposeSignUp) {
		return
	}

	var req SignUpRequest
	if !decodeBody(w, r, logger, &req) {
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	if h.emailOnCooldown(w, r, logger, req.Email) {
		return
	}

	tokenKey, err := h.service.RequestSignUp(r.Context(), req.Name, req.Email, req.Password, req.AvatarURL)
	if err != nil {
		respondServiceError(w, logger, "sign-up request", err)
		return
	}
	h.startEmailCooldown(r, logger, req.Email)

	logger.Info("sign-up pin issued")
	respondData(w, SignUpTokenKey{TokenKey: tokenKey}, http.StatusCreated)
}

// CreateUser completes a sign-up
// @Summary      Complete sign-up
// @Description  Consume the pending sign-up when the pin matches and bind the public key to the new user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body CreateUserRequest true "Token key, pin and public key"
// @Success      201 {object} BoolResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid request"
// @Failure      401 {object} httputil.ErrorResponse "Wrong pin"
// @Failure      404 {object} httputil.ErrorResponse "Token not found or expired"
// @Failure      409 {object} httputil.ErrorResponse "Email already exists"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /users [post]
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if h.limitIP(w, r, logger, purposeSignUpVerify) {
		return
	}

	var req CreateUserRequest
	if !decodeBody(w, r, logger, &req) {
		return
	}

	logger = logger.WithFields(map[string]any{"token_key": req.TokenKey})

	created, err := h.service.Create(r.Context(), req.UserPublicKey, req.TokenKey, req.TokenPin)
	if err != nil {
		respondServiceError(w, logger, "sign-up", err)
		return
	}

	logger.Info("user created")
	respondData(w, created, http.StatusCreated)
}

// RequestPasswordReset mails a temporary password
// @Summary      Request password reset
// @Description  Mail a token id and temporary password to the address. Always succeeds to prevent email enumeration.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body PasswordResetRequest true "Email address"
// @Success      200 {object} BoolResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid request body"
// @Failure      429 {object} httputil.ErrorResponse "Too many requests"
// @Router       /users/password-reset [post]
func (h *Handler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if h.limitIP(w, r, logger, purposePasswordReset) {
		return
	}

	var req PasswordResetRequest
	if !decodeBody(w, r, logger, &req) {
		return
	}

	if h.emailOnCooldown(w, r, logger, req.Email) {
		return
	}

	// always nil
	_ = h.service.RequestPasswordReset(r.Context(), req.Email)
	h.startEmailCooldown(r, logger, req.Email)

	respondData(w, true, http.StatusOK)
}

// ResetPassword replaces a password with the mailed credentials
// @Summary      Reset password
// @Description  Replace the password when both the token id and the temporary password match
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body ResetPasswordRequest true "Reset credentials and new password"
// @Success      200 {object} BoolResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid request"
// @Failure      404 {object} httputil.ErrorResponse "Unknown user or wrong reset credentials"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /users/password [put]
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if h.limitIP(w, r, logger, purposePasswordReset) {
		return
	}

	var req ResetPasswordRequest
	if !decodeBody(w, r, logger, &req) {
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	reset, err := h.service.ResetPassword(r.Context(), req.Email, req.TokenID, req.TemporaryPassword, req.NewPassword)
	if err != nil {
		respondServiceError(w, logger, "password reset", err)
		return
	}

	logger.Info("password reset")
	respondData(w, reset, http.StatusOK)
}

// ListUsers returns every user
// @Summary      List users
// @Tags         users
// @Produce      json
// @Success      200 {object} UserListResponse
// @Failure      401 {object} httputil.ErrorResponse "No valid session"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /users [get]
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	users, err := h.service.GetList(r.Context())
	if err != nil {
		respondServiceError(w, logger, "list users", err)
		return
	}

	respondData(w, users, http.StatusOK)
}

// GetUser returns one user
// @Summary      Get user
// @Tags         users
// @Produce      json
// @Param        id path int true "User ID"
// @Success      200 {object} UserResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid user id"
// @Failure      401 {object} httputil.ErrorResponse "No valid session"
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Router       /users/{id} [get]
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, ok := parseUserID(w, r)
	if !ok {
		return
	}

	found, err := h.service.GetOne(r.Context(), id)
	if err != nil {
		respondServiceError(w, logger, "get user", err)
		return
	}

	respondData(w, found, http.StatusOK)
}

// UpdateUser applies a partial update to the caller's own account
// @Summary      Update user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id path int true "User ID"
// @Param        request body UpdateUserRequest true "Fields to change"
// @Success      200 {object} BoolResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid request"
// @Failure      401 {object} httputil.ErrorResponse "No valid session or not the account owner"
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Router       /users/{id} [patch]
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, ok := h.ownAccount(w, r)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if !decodeBody(w, r, logger, &req) {
		return
	}

	updated, err := h.service.Update(r.Context(), id, req.Name, req.Password, req.AvatarURL)
	if err != nil {
		respondServiceError(w, logger, "update user", err)
		return
	}

	logger.Info("user updated", "user_id", id)
	respondData(w, updated, http.StatusOK)
}

// DeleteUser removes the caller's own account and ends the session
// @Summary      Delete user
// @Tags         users
// @Produce      json
// @Param        id path int true "User ID"
// @Success      200 {object} BoolResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid user id"
// @Failure      401 {object} httputil.ErrorResponse "No valid session or not the account owner"
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Router       /users/{id} [delete]
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, ok := h.ownAccount(w, r)
	if !ok {
		return
	}

	deleted, err := h.service.Delete(r.Context(), id)
	if err != nil {
		respondServiceError(w, logger, "delete user", err)
		return
	}

	h.sessions.Unset(w)
	logger.Info("user deleted", "user_id", id)
	respondData(w, deleted, http.StatusOK)
}

// ownAccount resolves the {id} path parameter and requires it to be the session user
func (h *Handler) ownAccount(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := parseUserID(w, r)
	if !ok {
		return 0, false
	}

	session, ok := GetSessionFromContext(r.Context())
	if !ok {
		respondError(w, "missing or invalid session", httputil.CodeMissingSession, http.StatusUnauthorized)
		return 0, false
	}
	if session.UserID != id {
		respondError(w, "only the account owner can do this", httputil.CodeForbiddenUser, http.StatusUnauthorized)
		return 0, false
	}

	return id, true
}

func parseUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, "invalid user id", httputil.CodeInvalidUserID, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
