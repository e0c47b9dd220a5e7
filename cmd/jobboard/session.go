package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	loginName   string
	loginHandle string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with a display name and Telegram handle",
	Long:  "Creates the user on first use of the handle and remembers it as the current identity.",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the current identity",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current identity",
	RunE:  runWhoami,
}

func init() {
	loginCmd.Flags().StringVar(&loginName, "name", "", "display name")
	loginCmd.Flags().StringVar(&loginHandle, "handle", "", "telegram handle, e.g. @jane")
	_ = loginCmd.MarkFlagRequired("name")
	_ = loginCmd.MarkFlagRequired("handle")
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	u, err := a.session.Login(loginName, loginHandle)
	if err != nil {
		return explain(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s), id %s\n", u.Name, u.Handle, u.ID)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.session.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	u, err := a.session.Current()
	if err != nil {
		return err
	}
	if u == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
		return nil
	}
	role := "user"
	if a.policy.IsAdmin(u.ID) {
		role = "admin"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\nid:     %s\nrole:   %s\navatar: %s\n", u.Name, u.Handle, u.ID, role, u.AvatarURL)
	return nil
}
