package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/oops"

	"github.com/redmonkez12/go-blog-auth/internal/logging"
	"github.com/redmonkez12/go-blog-auth/internal/token"
	"github.com/redmonkez12/go-blog-auth/internal/user"
)

const maxEmailLen = 254

// Service handles sign-up, login, password reset and user management
type Service struct {
	users          UserRepository
	keys           UserKeyRepository
	signUpTokens   SignUpTokenRepository
	passwordTokens PasswordTokenRepository
	hasher         PasswordHasher
	mailer         Mailer
	metrics        *Metrics
	logger         *logging.Logger
}

func NewService(
	users UserRepository,
	keys UserKeyRepository,
	signUpTokens SignUpTokenRepository,
	passwordTokens PasswordTokenRepository,
	hasher PasswordHasher,
	mailer Mailer,
	metrics *Metrics,
	logger *logging.Logger,
) *Service {
	return &Service{
		users:          users,
		keys:           keys,
		signUpTokens:   signUpTokens,
		passwordTokens: passwordTokens,
		hasher:         hasher,
		mailer:         mailer,
		metrics:        metrics,
		logger:         logger,
	}
}

// RequestSignUp parks a pending registration in the token store and mails its pin.
// The returned token key identifies the pending registration; the pin is only
// ever sent to the email address.
func (s *Service) RequestSignUp(ctx context.Context, name, email, password, avatarURL string) (string, error) {
	if strings.TrimSpace(name) == "" || password == "" {
		return "", oops.Code("SIGNUP_INVALID").Wrapf(ErrInvalidArgument, "name and password are required")
	}
	email, err := normalizeEmail(email)
	if err != nil {
		return "", err
	}

	_, err = s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return "", oops.Code("SIGNUP_EMAIL_TAKEN").With("email", email).Wrap(user.ErrDuplicateEmail)
	case !errors.Is(err, user.ErrNotFound):
		return "", oops.Code("SIGNUP_REQUEST_FAILED").With("email", email).Wrap(err)
	}

	pin, err := generatePin()
	if err != nil {
		return "", oops.Code("SIGNUP_REQUEST_FAILED").Wrap(err)
	}

	blob, err := json.Marshal(SignUpToken{
		Name:      name,
		Email:     email,
		Password:  password,
		AvatarURL: avatarURL,
		Pin:       pin,
	})
	if err != nil {
		return "", oops.Code("SIGNUP_REQUEST_FAILED").Wrap(err)
	}

	tokenKey := uuid.NewString()
	if err := s.signUpTokens.Save(ctx, tokenKey, blob); err != nil {
		return "", oops.Code("SIGNUP_REQUEST_FAILED").With("email", email).Wrap(err)
	}
	s.metrics.tokenIssued(kindSignUp)

	if err := s.mailer.SendSignUpPin(ctx, email, name, pin); err != nil {
		return "", oops.Code("SIGNUP_PIN_DELIVERY_FAILED").With("email", email).Wrap(err)
	}

	return tokenKey, nil
}

// Create completes a sign-up. The token is consumed before the user row is
// written, so of two concurrent attempts with the correct pin at most one
// gets past the delete.
func (s *Service) Create(ctx context.Context, publicKey, tokenKey, pin string) (bool, error) {
	if strings.TrimSpace(publicKey) == "" || tokenKey == "" || pin == "" {
		return false, oops.Code("SIGNUP_INVALID").Wrapf(ErrInvalidArgument, "public key, token key and pin are required")
	}

	blob, err := s.signUpTokens.Find(ctx, tokenKey)
	if err != nil {
		s.metrics.tokenVerified(kindSignUp, lookupOutcome(err))
		return false, oops.Code("SIGNUP_TOKEN_LOOKUP_FAILED").With("token_key", tokenKey).Wrap(err)
	}

	var pending SignUpToken
	if err := json.Unmarshal(blob, &pending); err != nil || !pending.valid() {
		s.metrics.tokenVerified(kindSignUp, outcomeError)
		return false, oops.Code("SIGNUP_TOKEN_MALFORMED").With("token_key", tokenKey).Wrap(ErrInvalidFormat)
	}

	// a wrong pin leaves the token in place for another attempt
	if !secretEqual(pending.Pin, pin) {
		s.metrics.tokenVerified(kindSignUp, outcomeMismatch)
		return false, oops.Code("SIGNUP_PIN_MISMATCH").With("token_key", tokenKey).Wrap(ErrUnauthorized)
	}

	if err := s.signUpTokens.Delete(ctx, tokenKey); err != nil {
		s.metrics.tokenVerified(kindSignUp, lookupOutcome(err))
		return false, oops.Code("SIGNUP_TOKEN_CONSUME_FAILED").With("token_key", tokenKey).Wrap(err)
	}
	s.metrics.tokenVerified(kindSignUp, outcomeSuccess)

	passwordHash, err := s.hasher.Hash(pending.Password)
	if err != nil {
		return false, oops.Code("SIGNUP_FAILED").With("email", pending.Email).Wrap(err)
	}

	if err := s.users.Create(ctx, pending.Name, pending.Email, passwordHash, pending.AvatarURL); err != nil {
		s.logger.Warn("sign-up token consumed but user was not created",
			append([]any{"email", pending.Email}, logging.ErrorAttrs(err)...)...)
		return false, oops.Code("SIGNUP_FAILED").With("email", pending.Email).Wrap(err)
	}

	created, err := s.users.GetByEmail(ctx, pending.Email)
	if err != nil {
		return false, oops.Code("SIGNUP_FAILED").With("email", pending.Email).Wrap(err)
	}

	if err := s.keys.Create(ctx, created.ID, publicKey); err != nil {
		s.logger.Error("user created without public key",
			append([]any{"user_id", created.ID}, logging.ErrorAttrs(err)...)...)
		return false, oops.Code("SIGNUP_KEY_FAILED").With("user_id", created.ID).Wrap(err)
	}

	return true, nil
}

// Login checks the password against the stored hash and returns the session payload
func (s *Service) Login(ctx context.Context, email, password string) (*UserSession, error) {
	email = canonicalEmail(email)
	if email == "" {
		return nil, oops.Code("LOGIN_INVALID").Wrapf(ErrInvalidArgument, "email is required")
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			s.metrics.login(outcomeNotFound)
			return nil, oops.Code("USER_NOT_FOUND").With("email", email).Wrap(ErrUserNotFound)
		}
		s.metrics.login(outcomeError)
		return nil, oops.Code("LOGIN_FAILED").With("email", email).Wrap(err)
	}

	ok, err := s.hasher.Verify(password, existing.PasswordHash)
	if err != nil {
		s.metrics.login(outcomeError)
		if errors.Is(err, ErrInvalidHash) {
			// stored data is broken; the caller only sees an internal error
			return nil, oops.Code("LOGIN_HASH_CORRUPT").With("user_id", existing.ID).Wrap(err)
		}
		return nil, oops.Code("LOGIN_FAILED").With("user_id", existing.ID).Wrap(err)
	}
	if !ok {
		s.metrics.login(outcomeMismatch)
		return nil, oops.Code("LOGIN_PASSWORD_MISMATCH").With("email", email).Wrap(ErrUnauthorized)
	}

	s.metrics.login(outcomeSuccess)
	return &UserSession{
		UserID:    existing.ID,
		UserEmail: existing.Email,
		UserName:  existing.Name,
	}, nil
}

// RequestPasswordReset issues a temporary password for the account behind email.
// Always returns nil to prevent email enumeration attacks.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	email = canonicalEmail(email)
	if email == "" {
		return nil
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			s.logger.Warn("failed to get user for password reset", logging.ErrorAttrs(err)...)
		}
		return nil
	}

	temporaryPassword, err := generateTemporaryPassword()
	if err != nil {
		s.logger.Warn("failed to generate temporary password", logging.ErrorAttrs(err)...)
		return nil
	}

	issued := PasswordToken{ID: uuid.NewString(), Password: temporaryPassword}
	blob, err := json.Marshal(issued)
	if err != nil {
		s.logger.Warn("failed to encode password token", logging.ErrorAttrs(err)...)
		return nil
	}

	// replaces any outstanding token for this user
	if err := s.passwordTokens.Save(ctx, existing.ID, blob); err != nil {
		s.logger.Warn("failed to store password token",
			append([]any{"user_id", existing.ID}, logging.ErrorAttrs(err)...)...)
		return nil
	}
	s.metrics.tokenIssued(kindPassword)

	if err := s.mailer.SendTemporaryPassword(ctx, existing.Email, issued.ID, issued.Password); err != nil {
		s.logger.Warn("failed to send temporary password",
			append([]any{"user_id", existing.ID}, logging.ErrorAttrs(err)...)...)
	}

	return nil
}

// ResetPassword replaces the password of the account behind email when both the
// token id and the temporary password match the outstanding reset token.
// The new password is committed before the token is removed; a failed removal
// is logged and the token simply expires.
func (s *Service) ResetPassword(ctx context.Context, email, tokenID, temporaryPassword, newPassword string) (bool, error) {
	if newPassword == "" {
		return false, oops.Code("RESET_PASSWORD_EMPTY").Wrapf(ErrInvalidArgument, "new password cannot be empty")
	}
	email = canonicalEmail(email)

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return false, oops.Code("USER_NOT_FOUND").With("email", email).Wrap(ErrUserNotFound)
		}
		return false, oops.Code("RESET_FAILED").With("email", email).Wrap(err)
	}

	blob, err := s.passwordTokens.Find(ctx, existing.ID)
	if err != nil {
		s.metrics.tokenVerified(kindPassword, lookupOutcome(err))
		if errors.Is(err, token.ErrNotFound) {
			// a consumed or expired token reads the same as a wrong one
			return false, oops.Code("USER_NOT_FOUND").With("email", email).Wrap(errors.Join(ErrUserNotFound, err))
		}
		return false, oops.Code("RESET_TOKEN_LOOKUP_FAILED").With("user_id", existing.ID).Wrap(err)
	}

	var outstanding PasswordToken
	if err := json.Unmarshal(blob, &outstanding); err != nil || !outstanding.valid() {
		s.metrics.tokenVerified(kindPassword, outcomeError)
		return false, oops.Code("RESET_TOKEN_MALFORMED").With("user_id", existing.ID).Wrap(ErrInvalidFormat)
	}

	if !outstanding.matches(tokenID, temporaryPassword) {
		s.metrics.tokenVerified(kindPassword, outcomeMismatch)
		return false, oops.Code("USER_NOT_FOUND").With("email", email).Wrap(ErrUserNotFound)
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return false, oops.Code("RESET_FAILED").With("user_id", existing.ID).Wrap(err)
	}

	if err := s.users.UpdatePassword(ctx, existing.ID, passwordHash); err != nil {
		return false, oops.Code("RESET_FAILED").With("user_id", existing.ID).Wrap(err)
	}
	s.metrics.tokenVerified(kindPassword, outcomeSuccess)

	if err := s.passwordTokens.Delete(ctx, existing.ID); err != nil {
		s.logger.Warn("failed to delete password token after reset",
			append([]any{"user_id", existing.ID}, logging.ErrorAttrs(err)...)...)
	}

	return true, nil
}

// GetOne returns the public view of one user
func (s *Service) GetOne(ctx context.Context, id int64) (*user.UserDTO, error) {
	found, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, oops.Code("USER_GET_FAILED").With("user_id", id).Wrap(err)
	}

	dto := found.DTO()
	return &dto, nil
}

// GetList returns the public view of every user
func (s *Service) GetList(ctx context.Context) ([]user.UserDTO, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, oops.Code("USER_LIST_FAILED").Wrap(err)
	}

	dtos := make([]user.UserDTO, 0, len(users))
	for _, u := range users {
		dtos = append(dtos, u.DTO())
	}
	return dtos, nil
}

// Update applies a partial update. Nil fields are left alone; a supplied field
// must not be blank. A new password is hashed before it is stored.
func (s *Service) Update(ctx context.Context, id int64, name, password, avatarURL *string) (bool, error) {
	if name == nil && password == nil && avatarURL == nil {
		return false, oops.Code("USER_UPDATE_INVALID").Wrapf(ErrInvalidArgument, "nothing to update")
	}
	for _, field := range []*string{name, password, avatarURL} {
		if field != nil && strings.TrimSpace(*field) == "" {
			return false, oops.Code("USER_UPDATE_INVALID").Wrapf(ErrInvalidArgument, "fields cannot be blank")
		}
	}

	fields := user.UpdateFields{Name: name, AvatarURL: avatarURL}
	if password != nil {
		passwordHash, err := s.hasher.Hash(*password)
		if err != nil {
			return false, oops.Code("USER_UPDATE_FAILED").With("user_id", id).Wrap(err)
		}
		fields.PasswordHash = &passwordHash
	}

	if err := s.users.Update(ctx, id, fields); err != nil {
		return false, oops.Code("USER_UPDATE_FAILED").With("user_id", id).Wrap(err)
	}

	return true, nil
}

// Delete removes a user together with its public key
func (s *Service) Delete(ctx context.Context, id int64) (bool, error) {
	if err := s.users.Delete(ctx, id); err != nil {
		return false, oops.Code("USER_DELETE_FAILED").With("user_id", id).Wrap(err)
	}

	return true, nil
}

// normalizeEmail returns the bare, lower-cased form of email.
// Display-name forms such as "Name <a@b.io>" are rejected so that one mailbox
// maps to exactly one stored address.
func normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || len(email) > maxEmailLen {
		return "", oops.Code("EMAIL_INVALID").Wrapf(ErrInvalidArgument, "email is required")
	}

	addr, err := mail.ParseAddress(email)
	if err != nil {
		return "", oops.Code("EMAIL_INVALID").With("email", email).Wrapf(ErrInvalidArgument, "invalid email format")
	}
	if addr.Address != email {
		return "", oops.Code("EMAIL_INVALID").With("email", email).Wrapf(ErrInvalidArgument, "email must be a plain address")
	}

	return strings.ToLower(addr.Address), nil
}

// canonicalEmail is the lookup form of an address stored by normalizeEmail
func canonicalEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func lookupOutcome(err error) string {
	if errors.Is(err, token.ErrNotFound) {
		return outcomeNotFound
	}
	return outcomeError
}
