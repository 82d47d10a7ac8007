package ui

import (
	"fmt"
	"net/mail"
	"strings"
)

// Invite is a sign-up started on behalf of a user from the terminal
type Invite struct {
	Name      string
	Email     string
	Password  string
	AvatarURL string
}

// Normalize trims surrounding whitespace from every field except the password
func (in *Invite) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.AvatarURL = strings.TrimSpace(in.AvatarURL)
}

// Complete reports whether the invite can run without prompting
func (in *Invite) Complete() bool {
	return in.Name != "" && in.Email != "" && in.Password != ""
}

// ValidateInvite checks the fields the sign-up flow will reject anyway,
// so the operator sees the problem before anything is mailed.
func ValidateInvite(in *Invite) error {
	if in.Name == "" {
		return fmt.Errorf("name is required")
	}
	if err := validateEmail(in.Email); err != nil {
		return err
	}
	if strings.TrimSpace(in.Password) == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

func validateEmail(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("email is required")
	}
	if _, err := mail.ParseAddress(s); err != nil {
		return fmt.Errorf("invalid email address: %s", s)
	}
	return nil
}
