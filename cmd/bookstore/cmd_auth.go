package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var loginEmail, loginPassword string

// bookstore login
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with email and password",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := client.Auth.Login(cmd.Context(), loginEmail, loginPassword)
		if err != nil {
			return userError(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s\n", user.DisplayName())
		return nil
	},
}

var googleCredential string

// bookstore login-google
var loginGoogleCmd = &cobra.Command{
	Use:   "login-google",
	Short: "Sign in with a Google ID token",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := client.Auth.GoogleLogin(cmd.Context(), googleCredential)
		if err != nil {
			return userError(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s\n", user.DisplayName())
		return nil
	},
}

var registerName, registerEmail, registerPassword string

// bookstore register
var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := client.Auth.Register(cmd.Context(), registerName, registerEmail, registerPassword); err != nil {
			return userError(err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Registration successful. Please login.")
		return nil
	},
}

// bookstore logout
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and empty the cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		client.Auth.Logout(cmd.Context())
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
		return nil
	},
}

// bookstore whoami
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, ok := client.Auth.Me()
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> (%s)\n", user.DisplayName(), user.Email, user.Role)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password")

	loginGoogleCmd.Flags().StringVar(&googleCredential, "credential", "", "Google ID token from the sign-in button")
	_ = loginGoogleCmd.MarkFlagRequired("credential")

	registerCmd.Flags().StringVar(&registerName, "name", "", "full name")
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "account email")
	registerCmd.Flags().StringVar(&registerPassword, "password", "", "account password")
}
