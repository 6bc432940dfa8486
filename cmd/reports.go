package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rananjaysingh20/work-tracker-cli/internal/api"
	"github.com/rananjaysingh20/work-tracker-cli/internal/model"
	"github.com/rananjaysingh20/work-tracker-cli/internal/query"
	"github.com/rananjaysingh20/work-tracker-cli/internal/ui"
)

var (
	reportFrom    string
	reportTo      string
	reportProject string
	reportClient  string

	reportTitle string

	reportCreateTitle string
	reportCreateType  string
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Generate and browse saved reports",
}

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved reports",
	Args:  cobra.NoArgs,
	RunE:  runReportsList,
}

var reportsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a report's data as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportsShow,
}

var reportsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Save an empty report shell (use 'generate' for server-computed data)",
	Args:  cobra.NoArgs,
	RunE:  runReportsCreate,
}

var reportsRenameCmd = &cobra.Command{
	Use:   "rename <id>",
	Short: "Rename a saved report",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportsRename,
}

var reportsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved report",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportsDelete,
}

var reportsGenerateCmd = &cobra.Command{
	Use:   "generate <type>",
	Short: "Generate a new report",
	Long: `Generate a new report of the given type:

  time-tracking      hours logged per project and task
  project-stats      task counts and completion rates
  team-productivity  per-member output
  client-billing     billable totals per client

Each call creates a new saved report; generating twice with the same
criteria creates two reports.`,
	Args: cobra.ExactArgs(1),
	RunE: runReportsGenerate,
}

var reportsClientsFullCmd = &cobra.Command{
	Use:   "clients-full",
	Short: "Fetch the combined per-client report",
	Args:  cobra.NoArgs,
	RunE:  runReportsClientsFull,
}

func init() {
	reportsGenerateCmd.Flags().StringVar(&reportFrom, "from", "", "Criteria start date (YYYY-MM-DD)")
	reportsGenerateCmd.Flags().StringVar(&reportTo, "to", "", "Criteria end date (YYYY-MM-DD)")
	reportsGenerateCmd.Flags().StringVar(&reportProject, "project", "", "Restrict to one project")
	reportsGenerateCmd.Flags().StringVar(&reportClient, "client", "", "Restrict to one client")

	reportsRenameCmd.Flags().StringVar(&reportTitle, "title", "", "New report title")

	reportsCreateCmd.Flags().StringVar(&reportCreateTitle, "title", "", "Report title")
	reportsCreateCmd.Flags().StringVar(&reportCreateType, "type", model.ReportTimeTracking, "Report type: time-tracking|project-stats|team-productivity|client-billing")

	reportsCmd.AddCommand(reportsListCmd)
	reportsCmd.AddCommand(reportsShowCmd)
	reportsCmd.AddCommand(reportsCreateCmd)
	reportsCmd.AddCommand(reportsRenameCmd)
	reportsCmd.AddCommand(reportsDeleteCmd)
	reportsCmd.AddCommand(reportsGenerateCmd)
	reportsCmd.AddCommand(reportsClientsFullCmd)
}

func runReportsList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	reports, err := query.Fetch(ctx, a.cache, query.Key{Resource: "reports"}, a.client.Reports.List)
	if err != nil {
		fail(err)
	}
	if len(reports) == 0 {
		fmt.Println(ui.Muted("No saved reports."))
		return nil
	}

	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		rows = append(rows, []string{r.ID, r.Title, r.Type, r.CreatedAt.Format("2006-01-02 15:04")})
	}
	fmt.Print(ui.Table([]string{"ID", "TITLE", "TYPE", "CREATED"}, rows))
	return nil
}

func runReportsShow(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	r, err := a.client.Reports.Get(ctx, args[0])
	if err != nil {
		if api.IsNotFound(err) {
			fmt.Println(ui.Muted("Report not found."))
			return nil
		}
		fail(err)
	}
	fmt.Printf("%s (%s)\n", ui.Accent(r.Title), r.Type)
	out, err := json.MarshalIndent(r.Data, "", "  ")
	if err != nil {
		return fmt.Errorf("rendering report data: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func runReportsCreate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	req := model.CreateReportRequest{Title: reportCreateTitle, Type: reportCreateType}
	m := query.NewMutation[*model.Report](a.cache, query.Invalidates("reports"))
	r, err := m.Run(ctx, func(ctx context.Context) (*model.Report, error) {
		return a.client.Reports.Create(ctx, req)
	})
	if err != nil {
		fail(err)
	}
	fmt.Printf("Created report %s (%s)\n", r.Title, r.ID)
	return nil
}

func runReportsRename(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	req := model.UpdateReportRequest{}
	if cmd.Flags().Changed("title") {
		req.Title = &reportTitle
	}

	m := query.NewMutation[*model.Report](a.cache, query.Invalidates("reports"))
	r, err := m.Run(ctx, func(ctx context.Context) (*model.Report, error) {
		return a.client.Reports.Update(ctx, args[0], req)
	})
	if err != nil {
		fail(err)
	}
	fmt.Printf("Renamed report %s\n", r.ID)
	return nil
}

func runReportsDelete(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	m := query.NewMutation[struct{}](a.cache, query.Invalidates("reports"))
	_, err = m.Run(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.client.Reports.Delete(ctx, args[0])
	})
	if err != nil {
		fail(err)
	}
	fmt.Println("Report deleted.")
	return nil
}

func runReportsGenerate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	from, err := parseDateFlag(reportFrom)
	if err != nil {
		return err
	}
	to, err := parseDateFlag(reportTo)
	if err != nil {
		return err
	}
	criteria := model.ReportCriteria{
		StartDate: from,
		EndDate:   to,
		ProjectID: reportProject,
		ClientID:  reportClient,
	}

	m := query.NewMutation[*model.Report](a.cache, query.Invalidates("reports"))
	r, err := m.Run(ctx, func(ctx context.Context) (*model.Report, error) {
		return a.client.Reports.Generate(ctx, args[0], criteria)
	})
	if err != nil {
		fail(err)
	}
	fmt.Printf("Generated report %s (%s)\n", r.Title, r.ID)
	return nil
}

func runReportsClientsFull(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	doc, err := a.client.Reports.ClientsFullReport(ctx)
	if err != nil {
		fail(err)
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
