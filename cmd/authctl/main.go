package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/redmonkez12/go-blog-auth/cmd/authctl/ui"
	"github.com/redmonkez12/go-blog-auth/internal/config"
	"github.com/redmonkez12/go-blog-auth/internal/database"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "authctl",
		Short:        "Operate the blog auth service",
		Long:         "Run migrations and start sign-ups or password resets on behalf of users.",
		SilenceUsage: true,
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE:  runMigrate,
	}

	inviteCmd := &cobra.Command{
		Use:   "invite",
		Short: "Start a sign-up and mail the pin to the user",
		RunE:  runInvite,
	}

	// Flags for non-interactive mode (CI/scripting)
	inviteCmd.Flags().String("name", "", "Display name")
	inviteCmd.Flags().String("email", "", "Email address the pin is mailed to")
	inviteCmd.Flags().String("avatar", "", "Avatar URL")

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Mail a temporary password to a user",
		RunE:  runReset,
	}
	resetCmd.Flags().String("email", "", "Email address of the account")
	resetCmd.Flags().BoolP("yes", "y", false, "Skip confirmation prompt")
	_ = resetCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(migrateCmd, inviteCmd, resetCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		ui.PrintError(err.Error())
		return err
	}

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		ui.PrintError(err.Error())
		return err
	}
	defer db.Close()

	if err := database.Migrate(ctx, db.DB); err != nil {
		ui.PrintError(err.Error())
		return err
	}

	ui.PrintSuccess("Migrations applied")
	return nil
}

func runInvite(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")
	email, _ := cmd.Flags().GetString("email")
	avatar, _ := cmd.Flags().GetString("avatar")

	in := &ui.Invite{Name: name, Email: email, AvatarURL: avatar}
	in.Normalize()

	// The password is never taken from a flag
	if !in.Complete() {
		if err := ui.RunInviteForm(in); err != nil {
			return fmt.Errorf("form cancelled: %w", err)
		}
	}

	if err := ui.ValidateInvite(in); err != nil {
		ui.PrintError(err.Error())
		return err
	}

	ui.PrintInviteSummary(in)

	a, err := newApp(cmd.Context())
	if err != nil {
		ui.PrintError(err.Error())
		return err
	}
	defer a.Close()

	tokenKey, err := a.service.RequestSignUp(cmd.Context(), in.Name, in.Email, in.Password, in.AvatarURL)
	if err != nil {
		ui.PrintError(err.Error())
		return err
	}

	ui.PrintInviteSuccess(in.Email, tokenKey)
	return nil
}

func runReset(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	yes, _ := cmd.Flags().GetBool("yes")

	if !yes {
		ok, err := ui.ConfirmReset(email)
		if err != nil {
			return fmt.Errorf("prompt cancelled: %w", err)
		}
		if !ok {
			fmt.Println("Aborted.")
			return nil
		}
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		ui.PrintError(err.Error())
		return err
	}
	defer a.Close()

	// Unknown addresses are not reported, same as the HTTP endpoint
	if err := a.service.RequestPasswordReset(cmd.Context(), email); err != nil {
		ui.PrintError(err.Error())
		return err
	}

	ui.PrintSuccess("Password reset requested for " + email)
	return nil
}
