package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/redmonkez12/favorite-movies-api/cmd/moviesctl/ui"
)

func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and print a session token",
		RunE:  runLogin,
	}
	cmd.Flags().String("email", "", "Account email")
	cmd.Flags().String("password", "", "Account password")
	return cmd
}

func runLogin(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")

	creds := ui.Credentials{Email: email, Password: password}
	if creds.Email == "" || creds.Password == "" {
		if err := ui.RunLoginForm(&creds); err != nil {
			return fmt.Errorf("form cancelled: %w", err)
		}
	}

	resp, err := apiClient(cmd).Login(cmd.Context(), creds.Email, creds.Password)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	ui.PrintSuccess(out, fmt.Sprintf("Signed in as %s", resp.User.Name))
	ui.PrintHint(out, "Use the token for later commands:")
	fmt.Fprintf(out, "export %s=%s\n", envToken, resp.AccessToken)
	return nil
}
