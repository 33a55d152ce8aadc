package cmd

import (
	"context"
	"fmt"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ganttline/ganttline/client"
	"github.com/ganttline/ganttline/internal/ui"
)

// readPassword prompts for a password without echoing it.
func readPassword(label string) (string, error) {
	fmt.Printf("%s: ", label)
	data, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(data), nil
}

// remoteContext returns a context bounded by the configured request timeout.
func remoteContext() (context.Context, context.CancelFunc) {
	timeout := time.Duration(GetConfig().Remote.RequestTimeoutSeconds) * time.Second
	return context.WithTimeout(context.Background(), timeout)
}

// registerCmd creates an account on the remote server.
var registerCmd = &cobra.Command{
	Use:   "register <username>",
	Short: "Register an account on the remote server",
	Long: `Register an account on the remote server.

Usernames are 4 to 32 alphanumeric characters. Passwords are 8 to 32
characters and must mix upper case, lower case, digits, and a special
character.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username := args[0]
		password, err := readPassword("Password")
		if err != nil {
			return err
		}
		confirm, err := readPassword("Confirm password")
		if err != nil {
			return err
		}
		if password != confirm {
			return fmt.Errorf("passwords do not match")
		}

		c, err := GetClient()
		if err != nil {
			return err
		}
		ctx, cancel := remoteContext()
		defer cancel()

		if err := c.Register(ctx, username, password); err != nil {
			return fmt.Errorf("registration failed: %w", err)
		}
		if err := saveSession(c, username); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		fmt.Printf("%s Registered and logged in as %q\n", ui.StyleSuccess.Render("✓"), username)
		return nil
	},
}

// loginCmd authenticates against the remote server and stores the session.
var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Log in to the remote server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username := args[0]
		password, err := readPassword("Password")
		if err != nil {
			return err
		}

		c, err := GetClient()
		if err != nil {
			return err
		}
		ctx, cancel := remoteContext()
		defer cancel()

		if err := c.Login(ctx, username, password); err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
		if err := saveSession(c, username); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		fmt.Printf("%s Logged in as %q\n", ui.StyleSuccess.Render("✓"), username)
		return nil
	},
}

// logoutCmd discards the stored session.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the stored remote session",
	RunE: func(cmd *cobra.Command, args []string) error {
		session := client.Session{}
		if err := session.Clear(GetSessionFilePath()); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}
		fmt.Println(ui.StyleSuccess.Render("✓") + " Logged out")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}
