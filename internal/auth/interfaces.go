package auth

import (
	"context"
	"time"

	"github.com/redmonkez12/go-blog-auth/internal/user"
)

// TokenService seals and opens session payloads.
// Implementations include PasetoService (PASETO v4.local) and JWTService (HS256).
type TokenService interface {
	CreateToken(session UserSession, duration time.Duration) (string, error)
	VerifyToken(tokenStr string) (*UserSession, error)
}

// UserRepository is the relational store of user records
type UserRepository interface {
	Create(ctx context.Context, name, email, passwordHash, avatarURL string) error
	GetByID(ctx context.Context, id int64) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	List(ctx context.Context) ([]*user.User, error)
	Update(ctx context.Context, id int64, fields user.UpdateFields) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	Delete(ctx context.Context, id int64) error
}

// UserKeyRepository binds public keys to users
type UserKeyRepository interface {
	Create(ctx context.Context, userID int64, publicKey string) error
}

// SignUpTokenRepository holds pending sign-ups keyed by the token key handed to the caller
type SignUpTokenRepository interface {
	Find(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, blob []byte) error
	Delete(ctx context.Context, key string) error
}

// PasswordTokenRepository holds at most one outstanding reset token per user
type PasswordTokenRepository interface {
	Find(ctx context.Context, userID int64) ([]byte, error)
	Save(ctx context.Context, userID int64, blob []byte) error
	Delete(ctx context.Context, userID int64) error
}

// Mailer delivers issued secrets out of band
type Mailer interface {
	SendSignUpPin(ctx context.Context, toEmail, name, pin string) error
	SendTemporaryPassword(ctx context.Context, toEmail, tokenID, temporaryPassword string) error
}
