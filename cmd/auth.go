package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rananjaysingh20/work-tracker-cli/internal/model"
	"github.com/rananjaysingh20/work-tracker-cli/internal/session"
)

var (
	loginEmail    string
	loginPassword string

	registerEmail    string
	registerPassword string
	registerFullName string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the Work Tracker API",
	Args:  cobra.NoArgs,
	RunE:  runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account",
	Args:  cobra.NoArgs,
	RunE:  runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and discard the stored session token",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the currently logged-in user",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password (prompted when omitted)")
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "Account email")
	registerCmd.Flags().StringVar(&registerPassword, "password", "", "Account password (prompted when omitted)")
	registerCmd.Flags().StringVar(&registerFullName, "name", "", "Full name")
}

// promptLine reads one line from stdin after printing the given prompt.
func promptLine(prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	email := loginEmail
	if email == "" {
		if email, err = promptLine("Email: "); err != nil {
			return err
		}
	}
	password := loginPassword
	if password == "" {
		if password, err = promptLine("Password: "); err != nil {
			return err
		}
	}

	ctx := context.Background()
	if err := a.session.Login(ctx, email, password); err != nil {
		fail(err)
	}

	user := a.session.User()
	fmt.Printf("Logged in as %s <%s>\n", user.FullName, user.Email)
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	email := registerEmail
	if email == "" {
		if email, err = promptLine("Email: "); err != nil {
			return err
		}
	}
	password := registerPassword
	if password == "" {
		if password, err = promptLine("Password: "); err != nil {
			return err
		}
	}
	name := registerFullName
	if name == "" {
		if name, err = promptLine("Full name: "); err != nil {
			return err
		}
	}

	ctx := context.Background()
	req := model.RegisterRequest{Email: email, Password: password, FullName: name}
	if err := a.session.Register(ctx, req); err != nil {
		fail(err)
	}

	user := a.session.User()
	fmt.Printf("Account created; logged in as %s <%s>\n", user.FullName, user.Email)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	a.session.Logout(context.Background())
	fmt.Println("Logged out.")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	a.session.Check(context.Background())
	if a.session.State() != session.StateLoggedIn {
		fmt.Println("Not logged in.")
		return nil
	}
	u := a.session.User()
	fmt.Printf("%s <%s> (%s)\n", u.FullName, u.Email, u.Role)
	return nil
}
