package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/marshallshelly/bistro/cmd/bistro/output"
	"github.com/marshallshelly/bistro/pkg/schema"
)

var (
	// Auth flags
	email    string
	password string
	userName string
	asAdmin  bool
)

// loginCmd signs in and stores the session
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the API",
	Long: `Sign in with email and password. The access token is stored in the
session file and sent with every later request.

Examples:
  bistro login --email admin@example.com --password secret`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLogin(cmd)
	},
}

// registerCmd creates an account
var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	Long: `Create a new account. Registration does not sign you in.

Examples:
  bistro register --email ann@example.com --password secret --name Ann`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRegister(cmd)
	},
}

// logoutCmd forgets the stored session
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLogout()
	},
}

// whoamiCmd shows the stored session
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWhoami()
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)

	loginCmd.Flags().StringVar(&email, "email", "", "Account email")
	loginCmd.Flags().StringVar(&password, "password", "", "Account password")

	registerCmd.Flags().StringVar(&email, "email", "", "Account email")
	registerCmd.Flags().StringVar(&password, "password", "", "Account password")
	registerCmd.Flags().StringVar(&userName, "name", "", "Display name")
	registerCmd.Flags().BoolVar(&asAdmin, "admin", false, "Request administrator rights")
}

func runLogin(cmd *cobra.Command) error {
	req := schema.LoginRequest{Email: email, Password: password}
	if err := schema.Validate(req); err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}

	resp, err := a.api.Auth.Login(commandContext(cmd), req)
	if err != nil {
		return failure(err, "sign in")
	}
	if err := a.store.Save(a.session); err != nil {
		return err
	}

	if jsonOutput {
		return output.JSON(map[string]any{"email": email, "is_admin": resp.IsAdmin})
	}
	role := "user"
	if resp.IsAdmin {
		role = "admin"
	}
	output.Success("Signed in as %s (%s)", email, role)
	return nil
}

func runRegister(cmd *cobra.Command) error {
	req := schema.RegisterRequest{Email: email, Password: password, Name: userName, IsAdmin: asAdmin}
	if err := schema.Validate(req); err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}

	result, err := a.api.Auth.Register(commandContext(cmd), req)
	if err != nil {
		return failure(err, "register")
	}

	if jsonOutput {
		return output.JSON(result)
	}
	output.Success("Registered %s", email)
	output.Info("Sign in with: bistro login --email %s", email)
	return nil
}

func runLogout() error {
	a, err := newApp()
	if err != nil {
		return err
	}
	a.api.Auth.Logout()
	if err := a.store.Clear(); err != nil {
		return err
	}
	output.Success("Signed out")
	return nil
}

func runWhoami() error {
	a, err := newApp()
	if err != nil {
		return err
	}

	if !a.session.Authenticated() {
		if jsonOutput {
			return output.JSON(map[string]any{"authenticated": false})
		}
		output.Warning("Not signed in")
		return nil
	}

	claims, claimsErr := a.session.Claims()
	if jsonOutput {
		return output.JSON(map[string]any{
			"authenticated": true,
			"is_admin":      a.session.IsAdmin(),
			"subject":       claims.Subject,
			"expires_at":    claims.ExpiresAt,
		})
	}

	role := "user"
	if a.session.IsAdmin() {
		role = "admin"
	}
	pairs := [][2]string{
		{"API", a.config.BaseURL},
		{"Role", output.StatusIcon(role) + " " + role},
	}
	if claimsErr == nil {
		if claims.Subject != "" {
			pairs = append(pairs, [2]string{"Subject", claims.Subject})
		}
		if !claims.ExpiresAt.IsZero() {
			status := "ok"
			if claims.Expired(time.Now()) {
				status = "expired"
			}
			pairs = append(pairs, [2]string{"Expires", output.StatusIcon(status) + " " + claims.ExpiresAt.Format(time.RFC3339)})
		}
	}
	output.Section("Session")
	output.KeyValue(pairs)
	return nil
}
