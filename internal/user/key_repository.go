package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/redmonkez12/go-blog-auth/internal/database"
)

var ErrKeyNotFound = errors.New("user key not found")

// KeyRepository stores the public key bound to each user
type KeyRepository struct {
	db bun.IDB
}

func NewKeyRepository(db bun.IDB) *KeyRepository {
	return &KeyRepository{db: db}
}

// Create binds publicKey to userID
func (r *KeyRepository) Create(ctx context.Context, userID int64, publicKey string) error {
	dbKey := &database.UserKey{
		UserID:    userID,
		PublicKey: publicKey,
	}

	result, err := r.db.NewInsert().
		Model(dbKey).
		Returning("NULL").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create user key: %w", err)
	}

	return expectOneRow(result, ErrQueryExecution)
}

// GetByUserID returns the key bound to userID
func (r *KeyRepository) GetByUserID(ctx context.Context, userID int64) (*UserKey, error) {
	dbKey := new(database.UserKey)
	err := r.db.NewSelect().
		Model(dbKey).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to get user key: %w", err)
	}

	return &UserKey{
		UserID:    dbKey.UserID,
		PublicKey: dbKey.PublicKey,
		CreatedAt: dbKey.CreatedAt,
	}, nil
}
