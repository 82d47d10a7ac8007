package user

import "time"

type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose password hash in JSON
	AvatarURL    string    `json:"avatar_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserDTO is the read-only projection of a user returned to callers
type UserDTO struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DTO projects u without its password hash
func (u *User) DTO() UserDTO {
	return UserDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// UserKey binds a client-supplied public key to a user
type UserKey struct {
	UserID    int64     `json:"user_id"`
	PublicKey string    `json:"public_key"`
	CreatedAt time.Time `json:"created_at"`
}

// UpdateFields is a partial update; nil fields are left untouched
type UpdateFields struct {
	Name         *string
	PasswordHash *string
	AvatarURL    *string
}

// IsEmpty reports whether no field is set
func (f UpdateFields) IsEmpty() bool {
	return f.Name == nil && f.PasswordHash == nil && f.AvatarURL == nil
}
