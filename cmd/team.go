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
	teamAddUser string
	teamAddRole string

	teamUpdateRole     string
	teamUpdateInactive bool
)

var teamCmd = &cobra.Command{
	Use:   "team",
	Short: "Manage project team members",
}

var teamListCmd = &cobra.Command{
	Use:   "list <projectID>",
	Short: "List a project's team",
	Args:  cobra.ExactArgs(1),
	RunE:  runTeamList,
}

var teamAddCmd = &cobra.Command{
	Use:   "add <projectID>",
	Short: "Add a member to a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runTeamAdd,
}

var teamUpdateCmd = &cobra.Command{
	Use:   "update <projectID> <memberID>",
	Short: "Change a member's role or active flag",
	Args:  cobra.ExactArgs(2),
	RunE:  runTeamUpdate,
}

var teamRemoveCmd = &cobra.Command{
	Use:   "remove <projectID> <memberID>",
	Short: "Remove a member from a project",
	Args:  cobra.ExactArgs(2),
	RunE:  runTeamRemove,
}

func init() {
	teamAddCmd.Flags().StringVar(&teamAddUser, "user", "", "User ID to add")
	teamAddCmd.Flags().StringVar(&teamAddRole, "role", model.RoleMember, "Role: admin|manager|member|viewer")

	teamUpdateCmd.Flags().StringVar(&teamUpdateRole, "role", "", "New role: admin|manager|member|viewer")
	teamUpdateCmd.Flags().BoolVar(&teamUpdateInactive, "inactive", false, "Mark the membership inactive")

	teamCmd.AddCommand(teamListCmd)
	teamCmd.AddCommand(teamAddCmd)
	teamCmd.AddCommand(teamUpdateCmd)
	teamCmd.AddCommand(teamRemoveCmd)
}

func runTeamList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	projectID := args[0]
	members, ok, err := query.FetchDependent(ctx, a.cache, "team", projectID,
		func(ctx context.Context) ([]model.TeamMember, error) {
			return a.client.Team.ListByProject(ctx, projectID)
		})
	if err != nil {
		fail(err)
	}
	if !ok || len(members) == 0 {
		fmt.Println(ui.Muted("No team members on this project."))
		return nil
	}

	rows := make([][]string, 0, len(members))
	for _, m := range members {
		active := "yes"
		if !m.IsActive {
			active = "no"
		}
		rows = append(rows, []string{m.ID, m.UserID, m.Role, active})
	}
	fmt.Print(ui.Table([]string{"ID", "USER", "ROLE", "ACTIVE"}, rows))
	return nil
}

func runTeamAdd(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	projectID := args[0]
	req := model.AddTeamMemberRequest{UserID: teamAddUser, Role: teamAddRole}

	m := query.NewMutation[*model.TeamMember](a.cache, query.Invalidates("team", projectID))
	member, err := m.Run(ctx, func(ctx context.Context) (*model.TeamMember, error) {
		return a.client.Team.Add(ctx, projectID, req)
	})
	if err != nil {
		fail(err)
	}
	fmt.Printf("Added %s as %s (%s)\n", member.UserID, member.Role, member.ID)
	return nil
}

func runTeamUpdate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	projectID, memberID := args[0], args[1]
	req := model.UpdateTeamMemberRequest{}
	if cmd.Flags().Changed("role") {
		req.Role = &teamUpdateRole
	}
	if cmd.Flags().Changed("inactive") {
		active := !teamUpdateInactive
		req.IsActive = &active
	}

	m := query.NewMutation[*model.TeamMember](a.cache, query.Invalidates("team", projectID))
	member, err := m.Run(ctx, func(ctx context.Context) (*model.TeamMember, error) {
		return a.client.Team.Update(ctx, memberID, req)
	})
	if err != nil {
		fail(err)
	}
	fmt.Printf("Updated member %s\n", member.ID)
	return nil
}

func runTeamRemove(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	projectID, memberID := args[0], args[1]
	m := query.NewMutation[struct{}](a.cache, query.Invalidates("team", projectID))
	_, err = m.Run(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.client.Team.Remove(ctx, memberID)
	})
	if err != nil {
		fail(err)
	}
	fmt.Println("Member removed.")
	return nil
}
