package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "worktracker",
	Short: "Work Tracker – track clients, projects, tasks and time from the terminal",
	Long: `worktracker is a command-line client for the Work Tracker API.
All data lives server-side; the only state kept locally is the session token
in ~/.worktracker/.`,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(clientsCmd)
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(timeCmd)
	rootCmd.AddCommand(teamCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(reportsCmd)
	rootCmd.AddCommand(notificationsCmd)
}
