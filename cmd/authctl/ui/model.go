package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
)

// RunInviteForm prompts for the fields of in that are still empty
func RunInviteForm(in *Invite) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Description("Display name of the new user").
				Value(&in.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),

			huh.NewInput().
				Title("Email").
				Description("The sign-up pin is mailed here").
				Placeholder("user@example.com").
				Value(&in.Email).
				Validate(validateEmail),

			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&in.Password).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("password is required")
					}
					return nil
				}),

			huh.NewInput().
				Title("Avatar URL").
				Description("Optional").
				Value(&in.AvatarURL),
		),
	).WithTheme(huh.ThemeCatppuccin())

	if err := form.Run(); err != nil {
		return err
	}

	in.Normalize()
	return nil
}

// ConfirmReset asks before mailing a temporary password to email
func ConfirmReset(email string) (bool, error) {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Mail a temporary password to %s?", email)).
				Affirmative("Send").
				Negative("Cancel").
				Value(&ok),
		),
	).WithTheme(huh.ThemeCatppuccin())

	err := form.Run()
	return ok, err
}

// PrintInviteSummary prints the invite about to be sent
func PrintInviteSummary(in *Invite) {
	fmt.Println(titleStyle.Render("Sign-up"))
	fmt.Printf("  Name:   %s\n", in.Name)
	fmt.Printf("  Email:  %s\n", in.Email)
	if in.AvatarURL != "" {
		fmt.Printf("  Avatar: %s\n", in.AvatarURL)
	}
	fmt.Println()
}

// PrintInviteSuccess prints the token key the user completes sign-up with
func PrintInviteSuccess(email, tokenKey string) {
	fmt.Println(successStyle.Render("Sign-up pin sent to " + email))
	fmt.Println()
	fmt.Printf("  Token key: %s\n", tokenKey)
	fmt.Println(subtleStyle.Render("  The user completes sign-up with this key and the mailed pin."))
	fmt.Println()
}

// PrintSuccess prints a one-line success message
func PrintSuccess(msg string) {
	fmt.Println(successStyle.Render(msg))
}

// PrintError prints an error message.
func PrintError(msg string) {
	fmt.Println(errorStyle.Render("Error: " + msg))
}
