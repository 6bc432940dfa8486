package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rananjaysingh20/work-tracker-cli/internal/api"
	"github.com/rananjaysingh20/work-tracker-cli/internal/model"
	"github.com/rananjaysingh20/work-tracker-cli/internal/query"
	"github.com/rananjaysingh20/work-tracker-cli/internal/ui"
)

var (
	projectCreateName   string
	projectCreateDesc   string
	projectCreateClient string
	projectCreateStatus string
	projectCreateStart  string
	projectCreateEnd    string

	projectUpdateName   string
	projectUpdateDesc   string
	projectUpdateStatus string
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Manage projects",
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	Args:  cobra.NoArgs,
	RunE:  runProjectsList,
}

var projectsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectsShow,
}

var projectsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a project",
	Args:  cobra.NoArgs,
	RunE:  runProjectsCreate,
}

var projectsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a project (only supplied fields change)",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectsUpdate,
}

var projectsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectsDelete,
}

func init() {
	projectsCreateCmd.Flags().StringVar(&projectCreateName, "name", "", "Project name")
	projectsCreateCmd.Flags().StringVar(&projectCreateDesc, "description", "", "Project description")
	projectsCreateCmd.Flags().StringVar(&projectCreateClient, "client", "", "Owning client ID")
	projectsCreateCmd.Flags().StringVar(&projectCreateStatus, "status", model.ProjectActive, "Status: active|paused|completed")
	projectsCreateCmd.Flags().StringVar(&projectCreateStart, "start", "", "Start date (YYYY-MM-DD)")
	projectsCreateCmd.Flags().StringVar(&projectCreateEnd, "end", "", "End date (YYYY-MM-DD)")

	projectsUpdateCmd.Flags().StringVar(&projectUpdateName, "name", "", "New name")
	projectsUpdateCmd.Flags().StringVar(&projectUpdateDesc, "description", "", "New description")
	projectsUpdateCmd.Flags().StringVar(&projectUpdateStatus, "status", "", "New status: active|paused|completed")

	projectsCmd.AddCommand(projectsListCmd)
	projectsCmd.AddCommand(projectsShowCmd)
	projectsCmd.AddCommand(projectsCreateCmd)
	projectsCmd.AddCommand(projectsUpdateCmd)
	projectsCmd.AddCommand(projectsDeleteCmd)
}

func parseDateFlag(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", value)
	}
	return &t, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

func runProjectsList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	projects, err := query.Fetch(ctx, a.cache, query.Key{Resource: "projects"}, a.client.Projects.List)
	if err != nil {
		fail(err)
	}
	if len(projects) == 0 {
		fmt.Println(ui.Muted("No projects yet."))
		return nil
	}

	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{p.ID, p.Name, p.Status, p.ClientID, formatDate(p.StartDate), formatDate(p.EndDate)})
	}
	fmt.Print(ui.Table([]string{"ID", "NAME", "STATUS", "CLIENT", "START", "END"}, rows))
	return nil
}

func runProjectsShow(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	p, err := a.client.Projects.Get(ctx, args[0])
	if err != nil {
		if api.IsNotFound(err) {
			fmt.Println(ui.Muted("Project not found."))
			return nil
		}
		fail(err)
	}
	fmt.Printf("%s\n", ui.Accent(p.Name))
	fmt.Printf("  status:  %s\n", p.Status)
	fmt.Printf("  client:  %s\n", p.ClientID)
	fmt.Printf("  period:  %s – %s\n", formatDate(p.StartDate), formatDate(p.EndDate))
	if p.Description != "" {
		fmt.Printf("  %s\n", p.Description)
	}
	return nil
}

func runProjectsCreate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	start, err := parseDateFlag(projectCreateStart)
	if err != nil {
		return err
	}
	end, err := parseDateFlag(projectCreateEnd)
	if err != nil {
		return err
	}

	req := model.CreateProjectRequest{
		Name:        projectCreateName,
		Description: projectCreateDesc,
		Status:      projectCreateStatus,
		ClientID:    projectCreateClient,
		StartDate:   start,
		EndDate:     end,
	}

	m := query.NewMutation[*model.Project](a.cache, query.Invalidates("projects"))
	p, err := m.Run(ctx, func(ctx context.Context) (*model.Project, error) {
		return a.client.Projects.Create(ctx, req)
	})
	if err != nil {
		fail(err)
	}
	fmt.Printf("Created project %s (%s)\n", p.Name, p.ID)
	return nil
}

func runProjectsUpdate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	req := model.UpdateProjectRequest{}
	if cmd.Flags().Changed("name") {
		req.Name = &projectUpdateName
	}
	if cmd.Flags().Changed("description") {
		req.Description = &projectUpdateDesc
	}
	if cmd.Flags().Changed("status") {
		req.Status = &projectUpdateStatus
	}

	m := query.NewMutation[*model.Project](a.cache, query.Invalidates("projects"))
	p, err := m.Run(ctx, func(ctx context.Context) (*model.Project, error) {
		return a.client.Projects.Update(ctx, args[0], req)
	})
	if err != nil {
		fail(err)
	}
	fmt.Printf("Updated project %s\n", p.ID)
	return nil
}

func runProjectsDelete(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	m := query.NewMutation[struct{}](a.cache, query.Invalidates("projects"))
	_, err = m.Run(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.client.Projects.Delete(ctx, args[0])
	})
	if err != nil {
		if api.IsConflict(err) {
			// The server's detail is shown verbatim; the cached project list
			// stays as it was.
			fmt.Println(ui.Alert(api.Detail(err, "Delete blocked by existing data")))
			return fmt.Errorf("project not deleted")
		}
		fail(err)
	}
	fmt.Println("Project deleted.")
	return nil
}
