package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
)

const (
	pinDigits             = 6
	temporaryPasswordLen  = 12
	temporaryPasswordPool = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnpqrstuvwxyz23456789"
)

// SignUpToken is a pending registration waiting for its pin
type SignUpToken struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	AvatarURL string `json:"avatar_url"`
	Pin       string `json:"pin"`
}

func (t *SignUpToken) valid() bool {
	return t.Email != "" && t.Pin != ""
}

// PasswordToken is an outstanding reset, stored under the owning user's id
type PasswordToken struct {
	ID       string `json:"id"`
	Password string `json:"password"`
}

func (t *PasswordToken) valid() bool {
	return t.ID != "" && t.Password != ""
}

// matches requires both the token id and the temporary password.
// Both comparisons always run.
func (t *PasswordToken) matches(id, password string) bool {
	idOK := secretEqual(t.ID, id)
	passwordOK := secretEqual(t.Password, password)
	return idOK && passwordOK
}

func secretEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// generatePin returns a zero-padded decimal pin
func generatePin() (string, error) {
	limit := big.NewInt(1)
	for range pinDigits {
		limit.Mul(limit, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", fmt.Errorf("failed to generate pin: %w", err)
	}

	return fmt.Sprintf("%0*d", pinDigits, n.Int64()), nil
}

// generateTemporaryPassword avoids look-alike characters since it is typed by hand
func generateTemporaryPassword() (string, error) {
	pool := big.NewInt(int64(len(temporaryPasswordPool)))
	out := make([]byte, temporaryPasswordLen)
	for i := range out {
		n, err := rand.Int(rand.Reader, pool)
		if err != nil {
			return "", fmt.Errorf("failed to generate temporary password: %w", err)
		}
		out[i] = temporaryPasswordPool[n.Int64()]
	}

	return string(out), nil
}
