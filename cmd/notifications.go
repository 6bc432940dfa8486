package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rananjaysingh20/work-tracker-cli/internal/model"
	"github.com/rananjaysingh20/work-tracker-cli/internal/query"
	"github.com/rananjaysingh20/work-tracker-cli/internal/ui"
)

var (
	prefsEmail  bool
	prefsTasks  bool
	prefsWeekly bool
)

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"notify"},
	Short:   "Read and manage notifications",
}

var notificationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notifications",
	Args:  cobra.NoArgs,
	RunE:  runNotificationsList,
}

var notificationsReadCmd = &cobra.Command{
	Use:   "mark-read [id...]",
	Short: "Mark notifications read (no ids = all)",
	RunE:  runNotificationsRead,
}

var notificationsArchiveCmd = &cobra.Command{
	Use:   "archive [id...]",
	Short: "Archive notifications (no ids = all)",
	RunE:  runNotificationsArchive,
}

var notificationsPrefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show notification preferences",
	Args:  cobra.NoArgs,
	RunE:  runNotificationsPrefs,
}

var notificationsPrefsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change notification preferences",
	Args:  cobra.NoArgs,
	RunE:  runNotificationsPrefsSet,
}

func init() {
	notificationsPrefsSetCmd.Flags().BoolVar(&prefsEmail, "email", false, "Enable email notifications")
	notificationsPrefsSetCmd.Flags().BoolVar(&prefsTasks, "task-reminders", false, "Enable task reminders")
	notificationsPrefsSetCmd.Flags().BoolVar(&prefsWeekly, "weekly-summary", false, "Enable the weekly summary")

	notificationsPrefsCmd.AddCommand(notificationsPrefsSetCmd)

	notificationsCmd.AddCommand(notificationsListCmd)
	notificationsCmd.AddCommand(notificationsReadCmd)
	notificationsCmd.AddCommand(notificationsArchiveCmd)
	notificationsCmd.AddCommand(notificationsPrefsCmd)
}

func runNotificationsList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	notes, err := query.Fetch(ctx, a.cache, query.Key{Resource: "notifications"}, a.client.Notifications.List)
	if err != nil {
		fail(err)
	}
	if len(notes) == 0 {
		fmt.Println(ui.Muted("No notifications."))
		return nil
	}

	rows := make([][]string, 0, len(notes))
	for _, n := range notes {
		marker := " "
		if !n.Read {
			marker = "*"
		}
		rows = append(rows, []string{marker, n.ID, n.Title, n.CreatedAt.Format("2006-01-02 15:04")})
	}
	fmt.Print(ui.Table([]string{"", "ID", "TITLE", "WHEN"}, rows))
	return nil
}

func runNotificationsRead(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	m := query.NewMutation[struct{}](a.cache, query.Invalidates("notifications"))
	_, err = m.Run(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.client.Notifications.MarkRead(ctx, args)
	})
	if err != nil {
		fail(err)
	}
	if len(args) == 0 {
		fmt.Println("All notifications marked read.")
	} else {
		fmt.Printf("%d notification(s) marked read.\n", len(args))
	}
	return nil
}

func runNotificationsArchive(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	m := query.NewMutation[struct{}](a.cache, query.Invalidates("notifications"))
	_, err = m.Run(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.client.Notifications.Archive(ctx, args)
	})
	if err != nil {
		fail(err)
	}
	if len(args) == 0 {
		fmt.Println("All notifications archived.")
	} else {
		fmt.Printf("%d notification(s) archived.\n", len(args))
	}
	return nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func runNotificationsPrefs(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	p, err := a.client.Notifications.Preferences(ctx)
	if err != nil {
		fail(err)
	}
	fmt.Printf("email:          %s\n", onOff(p.EmailEnabled))
	fmt.Printf("task reminders: %s\n", onOff(p.TaskReminders))
	fmt.Printf("weekly summary: %s\n", onOff(p.WeeklySummary))
	return nil
}

func runNotificationsPrefsSet(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	req := model.UpdatePreferencesRequest{}
	if cmd.Flags().Changed("email") {
		req.EmailEnabled = &prefsEmail
	}
	if cmd.Flags().Changed("task-reminders") {
		req.TaskReminders = &prefsTasks
	}
	if cmd.Flags().Changed("weekly-summary") {
		req.WeeklySummary = &prefsWeekly
	}

	p, err := a.client.Notifications.UpdatePreferences(ctx, req)
	if err != nil {
		fail(err)
	}
	fmt.Printf("email:          %s\n", onOff(p.EmailEnabled))
	fmt.Printf("task reminders: %s\n", onOff(p.TaskReminders))
	fmt.Printf("weekly summary: %s\n", onOff(p.WeeklySummary))
	return nil
}
