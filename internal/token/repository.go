package token

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

const (
	signUpTokenPrefix   = "signup_token"
	passwordTokenPrefix = "password_token"
)

// BlobRepository finds, saves and deletes opaque blobs in one keyspace of a Store
type BlobRepository struct {
	store  Store
	prefix string
	ttl    time.Duration
}

func NewBlobRepository(store Store, prefix string, ttl time.Duration) *BlobRepository {
	return &BlobRepository{store: store, prefix: prefix, ttl: ttl}
}

// Key returns the store key for id
func (r *BlobRepository) Key(id string) string {
	return fmt.Sprintf("%s:%s", r.prefix, id)
}

// Find returns the blob stored for id or ErrNotFound
func (r *BlobRepository) Find(ctx context.Context, id string) ([]byte, error) {
	return r.store.Get(ctx, r.Key(id))
}

// Save writes blob for id with the repository TTL, overwriting any previous entry
func (r *BlobRepository) Save(ctx context.Context, id string, blob []byte) error {
	return r.store.Put(ctx, r.Key(id), blob, r.ttl)
}

// Delete removes the blob for id.
// Deleting an entry that is already gone returns ErrNotFound, exactly like
// deleting one that never existed.
func (r *BlobRepository) Delete(ctx context.Context, id string) error {
	count, err := r.store.Delete(ctx, r.Key(id))
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}

	return nil
}

// SignUpTokenRepository addresses pending sign-ups by a caller-chosen key
type SignUpTokenRepository struct {
	blobs *BlobRepository
}

func NewSignUpTokenRepository(store Store, ttl time.Duration) *SignUpTokenRepository {
	return &SignUpTokenRepository{blobs: NewBlobRepository(store, signUpTokenPrefix, ttl)}
}

func (r *SignUpTokenRepository) Find(ctx context.Context, key string) ([]byte, error) {
	return r.blobs.Find(ctx, key)
}

func (r *SignUpTokenRepository) Save(ctx context.Context, key string, blob []byte) error {
	return r.blobs.Save(ctx, key, blob)
}

func (r *SignUpTokenRepository) Delete(ctx context.Context, key string) error {
	return r.blobs.Delete(ctx, key)
}

// PasswordTokenRepository keeps one password-reset slot per user id.
// Saving a new token for a user replaces the outstanding one.
type PasswordTokenRepository struct {
	blobs *BlobRepository
}

func NewPasswordTokenRepository(store Store, ttl time.Duration) *PasswordTokenRepository {
	return &PasswordTokenRepository{blobs: NewBlobRepository(store, passwordTokenPrefix, ttl)}
}

func (r *PasswordTokenRepository) Find(ctx context.Context, userID int64) ([]byte, error) {
	return r.blobs.Find(ctx, userKey(userID))
}

func (r *PasswordTokenRepository) Save(ctx context.Context, userID int64, blob []byte) error {
	return r.blobs.Save(ctx, userKey(userID), blob)
}

func (r *PasswordTokenRepository) Delete(ctx context.Context, userID int64) error {
	return r.blobs.Delete(ctx, userKey(userID))
}

func userKey(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
