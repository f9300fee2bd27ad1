package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPlayerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Player account commands",
	}

	cmd.AddCommand(newPlayerSignupCmd())
	cmd.AddCommand(newPlayerLoginCmd())
	cmd.AddCommand(newPlayerLogoutCmd())
	cmd.AddCommand(newPlayerMeCmd())

	return cmd
}

func newPlayerSignupCmd() *cobra.Command {
	var email, pass, invitation string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Register a new player account",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"email":           email,
				"password":        pass,
				"invitation_code": invitation,
			}
			var result AuthResult

			if err := client.Post("/api/v1/players/signup", req, &result); err != nil {
				return err
			}

			// Save token
			if err := cfg.SaveToken(result.SessionToken); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")
	cmd.Flags().StringVar(&invitation, "invitation", "", "Invitation code (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("pass")
	_ = cmd.MarkFlagRequired("invitation")

	return cmd
}

func newPlayerLoginCmd() *cobra.Command {
	var email, pass string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login with existing account",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"email":    email,
				"password": pass,
			}
			var result AuthResult

			if err := client.Post("/api/v1/players/login", req, &result); err != nil {
				return err
			}

			// Save token
			if err := cfg.SaveToken(result.SessionToken); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newPlayerLogoutCmd() *cobra.Command {
	var everywhere bool

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Logout and discard the saved token",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/players/logout"
			if everywhere {
				path = "/api/v1/players/logout-all"
			}

			if err := client.Post(path, nil, nil); err != nil {
				return err
			}
			if err := cfg.ClearToken(); err != nil {
				return fmt.Errorf("failed to clear token: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Logged out")
			return nil
		},
	}

	cmd.Flags().BoolVar(&everywhere, "everywhere", false, "Invalidate every session for this account")

	return cmd
}

func newPlayerMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show current player info",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Player

			if err := client.Get("/api/v1/players/me", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
