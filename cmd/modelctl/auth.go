package main

import (
	"fmt"
	"time"

	"github.com/lk2023060901/model-catalog/internal/auth"
	"github.com/lk2023060901/model-catalog/internal/auth/store"
	apperrors "github.com/lk2023060901/model-catalog/internal/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

func (a *app) loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with email and password",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			email, err := a.prompt(out, "Email", email)
			if err != nil {
				return err
			}
			password, err := a.prompt(out, "Password", password)
			if err != nil {
				return err
			}

			session, err := a.authUC.Login(cmd.Context(), sessionID, email, password)
			if err != nil {
				return cliError(err)
			}
			fmt.Fprintf(out, "Login successful. Logged in as %s\n", sessionEmail(session))
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted when omitted)")
	return cmd
}

func (a *app) registerCmd() *cobra.Command {
	var email, password, confirm string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			email, err := a.prompt(out, "Email", email)
			if err != nil {
				return err
			}
			password, err := a.prompt(out, "Password", password)
			if err != nil {
				return err
			}
			confirm, err := a.prompt(out, "Confirm password", confirm)
			if err != nil {
				return err
			}

			result, err := a.authUC.Register(cmd.Context(), sessionID, email, password, confirm)
			if err != nil {
				return cliError(err)
			}
			if result.ConfirmationRequired {
				fmt.Fprintln(out, "Registration successful. Check your email to confirm the account, then run 'modelctl login'.")
				return nil
			}
			fmt.Fprintf(out, "Registration successful. Logged in as %s\n", sessionEmail(result.Session))
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password, at least 6 characters")
	cmd.Flags().StringVar(&confirm, "confirm", "", "password confirmation")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and remove the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.authUC.Logout(cmd.Context(), sessionID); err != nil {
				return cliError(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logout successful")
			return nil
		},
	}
}

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the logged in account and token expiry",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			session, err := a.authUC.Current(cmd.Context(), sessionID)
			if err != nil {
				if apperrors.Is(err, apperrors.ErrAuthSessionExpired) {
					fmt.Fprintln(out, "Not logged in")
					return nil
				}
				return cliError(err)
			}

			fmt.Fprintf(out, "Logged in as %s\n", sessionEmail(session))
			if claims, err := auth.DecodeClaims(session.AccessToken()); err == nil {
				fmt.Fprintf(out, "User ID: %s\n", claims.UserID())
				if claims.ExpiresAt != nil {
					fmt.Fprintf(out, "Token expires %s\n", claims.ExpiresAt.Time.Local().Format(time.RFC1123))
				}
			}
			return nil
		},
	}
}

// sessionEmail 优先取登录返回的用户对象，其次取令牌中的 email
func sessionEmail(session *store.Session) string {
	if session == nil {
		return ""
	}
	if email := gjson.GetBytes(session.User, "email").String(); email != "" {
		return email
	}
	if claims, err := auth.DecodeClaims(session.AccessToken()); err == nil {
		return claims.Email
	}
	return ""
}
