package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/go-blog-auth/internal/database"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrQueryExecution is returned when a mutation expected to touch one row touched none
	ErrQueryExecution = errors.New("query execution failure")
	ErrNoFields       = errors.New("no fields to update")
)

const uniqueViolation = "23505"

// Repository handles user data persistence
type Repository struct {
	db bun.IDB
}

func NewRepository(db bun.IDB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user. The generated id is looked up by email afterwards.
func (r *Repository) Create(ctx context.Context, name, email, passwordHash, avatarURL string) error {
	dbUser := &database.User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		AvatarURL:    avatarURL,
	}

	result, err := r.db.NewInsert().
		Model(dbUser).
		Returning("id").
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		// RETURNING produced no row
		if errors.Is(err, sql.ErrNoRows) {
			return ErrQueryExecution
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return expectOneRow(result, ErrQueryExecution)
}

// GetByEmail retrieves a user by email
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("email = ?", email).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByID retrieves a user by ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// List returns all users, newest first
func (r *Repository) List(ctx context.Context) ([]*User, error) {
	var dbUsers []database.User
	err := r.db.NewSelect().
		Model(&dbUsers).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]*User, 0, len(dbUsers))
	for i := range dbUsers {
		users = append(users, mapDBUserToModel(&dbUsers[i]))
	}

	return users, nil
}

// Update applies the non-nil fields to the user row
func (r *Repository) Update(ctx context.Context, id int64, fields UpdateFields) error {
	if fields.IsEmpty() {
		return ErrNoFields
	}

	q := r.db.NewUpdate().Model((*database.User)(nil))
	if fields.Name != nil {
		q = q.Set("name = ?", *fields.Name)
	}
	if fields.PasswordHash != nil {
		q = q.Set("password_hash = ?", *fields.PasswordHash)
	}
	if fields.AvatarURL != nil {
		q = q.Set("avatar_url = ?", *fields.AvatarURL)
	}

	result, err := q.
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	return expectOneRow(result, ErrNotFound)
}

// UpdatePassword updates a user's password hash
func (r *Repository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return r.Update(ctx, id, UpdateFields{PasswordHash: &passwordHash})
}

// Delete removes the user row; the user key goes with it
func (r *Repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.NewDelete().
		Model((*database.User)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return expectOneRow(result, ErrNotFound)
}

func expectOneRow(result sql.Result, zeroErr error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return zeroErr
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// mapDBUserToModel converts database model to domain model
func mapDBUserToModel(dbu *database.User) *User {
	return &User{
		ID:           dbu.ID,
		Name:         dbu.Name,
		Email:        dbu.Email,
		PasswordHash: dbu.PasswordHash,
		AvatarURL:    dbu.AvatarURL,
		CreatedAt:    dbu.CreatedAt,
		UpdatedAt:    dbu.UpdatedAt,
	}
}
