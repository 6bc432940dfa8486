package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rananjaysingh20/work-tracker-cli/internal/api"
	"github.com/rananjaysingh20/work-tracker-cli/internal/model"
	"github.com/rananjaysingh20/work-tracker-cli/internal/query"
	"github.com/rananjaysingh20/work-tracker-cli/internal/ui"
)

var (
	tasksListProject string

	taskCreateTitle    string
	taskCreateDesc     string
	taskCreateStatus   string
	taskCreatePriority string
	taskCreateAssignee string
	taskCreateDue      string

	taskUpdateTitle    string
	taskUpdateDesc     string
	taskUpdateStatus   string
	taskUpdatePriority string
	taskUpdateAssignee string
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Manage tasks within a project",
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks of a project",
	Args:  cobra.NoArgs,
	RunE:  runTasksList,
}

var tasksActiveCmd = &cobra.Command{
	Use:   "active",
	Short: "List your in-progress tasks across all projects",
	Args:  cobra.NoArgs,
	RunE:  runTasksActive,
}

var tasksShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksShow,
}

var tasksCreateCmd = &cobra.Command{
	Use:   "create <projectID>",
	Short: "Create a task in a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksCreate,
}

var tasksUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a task (only supplied fields change)",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksUpdate,
}

var tasksDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksDelete,
}

func init() {
	tasksListCmd.Flags().StringVar(&tasksListProject, "project", "", "Project ID to list tasks for")

	tasksCreateCmd.Flags().StringVar(&taskCreateTitle, "title", "", "Task title")
	tasksCreateCmd.Flags().StringVar(&taskCreateDesc, "description", "", "Task description")
	tasksCreateCmd.Flags().StringVar(&taskCreateStatus, "status", model.TaskTodo, "Status: todo|in_progress|completed")
	tasksCreateCmd.Flags().StringVar(&taskCreatePriority, "priority", model.PriorityMedium, "Priority: low|medium|high")
	tasksCreateCmd.Flags().StringVar(&taskCreateAssignee, "assignee", "", "Assigned user ID")
	tasksCreateCmd.Flags().StringVar(&taskCreateDue, "due", "", "Due date (YYYY-MM-DD)")

	tasksUpdateCmd.Flags().StringVar(&taskUpdateTitle, "title", "", "New title")
	tasksUpdateCmd.Flags().StringVar(&taskUpdateDesc, "description", "", "New description")
	tasksUpdateCmd.Flags().StringVar(&taskUpdateStatus, "status", "", "New status: todo|in_progress|completed")
	tasksUpdateCmd.Flags().StringVar(&taskUpdatePriority, "priority", "", "New priority: low|medium|high")
	tasksUpdateCmd.Flags().StringVar(&taskUpdateAssignee, "assignee", "", "New assigned user ID")

	tasksCmd.AddCommand(tasksListCmd)
	tasksCmd.AddCommand(tasksActiveCmd)
	tasksCmd.AddCommand(tasksShowCmd)
	tasksCmd.AddCommand(tasksCreateCmd)
	tasksCmd.AddCommand(tasksUpdateCmd)
	tasksCmd.AddCommand(tasksDeleteCmd)
}

func printTaskTable(tasks []model.Task) {
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		assignee := "-"
		if t.AssignedTo != nil {
			assignee = *t.AssignedTo
		}
		rows = append(rows, []string{t.ID, t.Title, t.Status, t.Priority, assignee, formatDate(t.DueDate)})
	}
	fmt.Print(ui.Table([]string{"ID", "TITLE", "STATUS", "PRIORITY", "ASSIGNEE", "DUE"}, rows))
}

func runTasksList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	// Task lists depend on a project selection. With no project given the
	// query stays idle and nothing is fetched.
	projectID := tasksListProject
	tasks, ok, err := query.FetchDependent(ctx, a.cache, "tasks", projectID,
		func(ctx context.Context) ([]model.Task, error) {
			return a.client.Tasks.ListByProject(ctx, projectID)
		})
	if err != nil {
		fail(err)
	}
	if !ok {
		fmt.Println(ui.Muted("Pick a project first (--project <id>)."))
		return nil
	}
	if len(tasks) == 0 {
		fmt.Println(ui.Muted("No tasks in this project."))
		return nil
	}
	printTaskTable(tasks)
	return nil
}

func runTasksActive(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	tasks, err := query.Fetch(ctx, a.cache, query.Key{Resource: "activeTasks"}, a.client.Tasks.Active)
	if err != nil {
		fail(err)
	}
	if len(tasks) == 0 {
		fmt.Println(ui.Muted("No active tasks."))
		return nil
	}
	printTaskTable(tasks)
	return nil
}

func runTasksShow(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	t, err := a.client.Tasks.Get(ctx, args[0])
	if err != nil {
		if api.IsNotFound(err) {
			fmt.Println(ui.Muted("Task not found."))
			return nil
		}
		fail(err)
	}
	fmt.Printf("%s\n", ui.Accent(t.Title))
	fmt.Printf("  status:   %s\n", t.Status)
	fmt.Printf("  priority: %s\n", t.Priority)
	fmt.Printf("  project:  %s\n", t.ProjectID)
	if t.AssignedTo != nil {
		fmt.Printf("  assignee: %s\n", *t.AssignedTo)
	}
	if t.DueDate != nil {
		fmt.Printf("  due:      %s\n", formatDate(t.DueDate))
	}
	if t.Description != "" {
		fmt.Printf("  %s\n", t.Description)
	}
	return nil
}

func runTasksCreate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	projectID := args[0]
	due, err := parseDateFlag(taskCreateDue)
	if err != nil {
		return err
	}

	req := model.CreateTaskRequest{
		Title:       taskCreateTitle,
		Description: taskCreateDesc,
		Status:      taskCreateStatus,
		Priority:    taskCreatePriority,
		DueDate:     due,
	}
	if taskCreateAssignee != "" {
		req.AssignedTo = &taskCreateAssignee
	}

	m := query.NewMutation[*model.Task](a.cache, query.Invalidates("tasks", projectID))
	t, err := m.Run(ctx, func(ctx context.Context) (*model.Task, error) {
		return a.client.Tasks.Create(ctx, projectID, req)
	})
	if err != nil {
		fail(err)
	}
	fmt.Printf("Created task %s (%s)\n", t.Title, t.ID)
	return nil
}

func runTasksUpdate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	req := model.UpdateTaskRequest{}
	if cmd.Flags().Changed("title") {
		req.Title = &taskUpdateTitle
	}
	if cmd.Flags().Changed("description") {
		req.Description = &taskUpdateDesc
	}
	if cmd.Flags().Changed("status") {
		req.Status = &taskUpdateStatus
	}
	if cmd.Flags().Changed("priority") {
		req.Priority = &taskUpdatePriority
	}
	if cmd.Flags().Changed("assignee") {
		req.AssignedTo = &taskUpdateAssignee
	}

	// Fetch first so the invalidation can target the owning project's list.
	existing, err := a.client.Tasks.Get(ctx, args[0])
	if err != nil {
		fail(err)
	}

	m := query.NewMutation[*model.Task](a.cache,
		query.Invalidates("tasks", existing.ProjectID),
		query.Invalidates("activeTasks"))
	t, err := m.Run(ctx, func(ctx context.Context) (*model.Task, error) {
		return a.client.Tasks.Update(ctx, args[0], req)
	})
	if err != nil {
		fail(err)
	}
	fmt.Printf("Updated task %s\n", t.ID)
	return nil
}

func runTasksDelete(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	existing, err := a.client.Tasks.Get(ctx, args[0])
	if err != nil {
		fail(err)
	}

	m := query.NewMutation[struct{}](a.cache, query.Invalidates("tasks", existing.ProjectID))
	_, err = m.Run(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.client.Tasks.Delete(ctx, args[0])
	})
	if err != nil {
		if api.IsConflict(err) {
			fmt.Println(ui.Alert(api.Detail(err, "Delete blocked by existing data")))
			return fmt.Errorf("task not deleted")
		}
		fail(err)
	}
	fmt.Println("Task deleted.")
	return nil
}
