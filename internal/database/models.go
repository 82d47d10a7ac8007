package database

import (
	"time"

	"github.com/uptrace/bun"
)

// User is the users table row
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int64     `bun:"id,pk,autoincrement"`
	Name         string    `bun:"name,notnull"`
	Email        string    `bun:"email,notnull,unique"`
	PasswordHash string    `bun:"password_hash,notnull"`
	AvatarURL    string    `bun:"avatar_url,notnull"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// UserKey binds a client public key to a user, one per user
type UserKey struct {
	bun.BaseModel `bun:"table:user_keys,alias:uk"`

	UserID    int64     `bun:"user_id,pk"`
	PublicKey string    `bun:"public_key,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
