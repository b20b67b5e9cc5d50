package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var errNotLoggedIn = errors.New("not logged in")

var registerCmd = &cobra.Command{
	Use:   "register <username> <email> <password>",
	Short: "Create an account",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := client.Register(cmd.Context(), args[0], args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "registered %s (id %s)\n", u.Username, u.ID)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login <username> <password>",
	Short: "Log in and remember the token",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, profile, err := client.Login(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		if err := session.Login(token, profile); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s\n", profile.Username)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := session.Logout(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		u := session.CurrentUser()
		if u == nil {
			return errNotLoggedIn
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> (id %s)\n", u.Username, u.Email, u.ID)
		return nil
	},
}
