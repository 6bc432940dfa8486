package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/rananjaysingh20/work-tracker-cli/internal/model"
	"github.com/rananjaysingh20/work-tracker-cli/internal/query"
	"github.com/rananjaysingh20/work-tracker-cli/internal/timecalc"
	"github.com/rananjaysingh20/work-tracker-cli/internal/ui"
)

var (
	timeListTask string

	timeAddDate     string
	timeAddStart    string
	timeAddEnd      string
	timeAddDuration float64
	timeAddDesc     string

	timeSummaryTask string
	timeSummaryDate string

	timeUpdateDate     string
	timeUpdateStart    string
	timeUpdateEnd      string
	timeUpdateDuration float64
	timeUpdateDesc     string
)

var timeCmd = &cobra.Command{
	Use:   "time",
	Short: "Track time against tasks",
}

var timeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List time entries of a task",
	Args:  cobra.NoArgs,
	RunE:  runTimeList,
}

var timeAddCmd = &cobra.Command{
	Use:   "add <taskID>",
	Short: "Record a time entry",
	Long: `Record a time entry against a task.

When both --start and --end are given the duration is derived from them
(end minus start, in hours; zero when end is not after start) and sent as
the entry's duration. Otherwise --duration is used as given.`,
	Args: cobra.ExactArgs(1),
	RunE: runTimeAdd,
}

var timeSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Total hours for a task in one week",
	Long: `Total the time logged against a task over the week (Monday through
Sunday) containing the given date, defaulting to the current week.`,
	Args: cobra.NoArgs,
	RunE: runTimeSummary,
}

var timeUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a time entry (only supplied fields change)",
	Args:  cobra.ExactArgs(1),
	RunE:  runTimeUpdate,
}

var timeDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a time entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runTimeDelete,
}

var timeFilesCmd = &cobra.Command{
	Use:   "files",
	Short: "Manage a time entry's file attachments",
}

var timeFilesListCmd = &cobra.Command{
	Use:   "list <entryID>",
	Short: "List attached files",
	Args:  cobra.ExactArgs(1),
	RunE:  runTimeFilesList,
}

var timeFilesUploadCmd = &cobra.Command{
	Use:   "upload <entryID> <path>",
	Short: "Upload a file attachment",
	Args:  cobra.ExactArgs(2),
	RunE:  runTimeFilesUpload,
}

var timeFilesDeleteCmd = &cobra.Command{
	Use:   "delete <entryID> <fileID>",
	Short: "Delete a file attachment",
	Args:  cobra.ExactArgs(2),
	RunE:  runTimeFilesDelete,
}

func init() {
	timeListCmd.Flags().StringVar(&timeListTask, "task", "", "Task ID to list entries for")

	timeAddCmd.Flags().StringVar(&timeAddDate, "date", "", "Entry date (YYYY-MM-DD, default today)")
	timeAddCmd.Flags().StringVar(&timeAddStart, "start", "", "Start time (HH:MM)")
	timeAddCmd.Flags().StringVar(&timeAddEnd, "end", "", "End time (HH:MM)")
	timeAddCmd.Flags().Float64Var(&timeAddDuration, "duration", 0, "Duration in hours (ignored when --start and --end are both set)")
	timeAddCmd.Flags().StringVar(&timeAddDesc, "description", "", "What the time was spent on")

	timeSummaryCmd.Flags().StringVar(&timeSummaryTask, "task", "", "Task ID to summarise")
	timeSummaryCmd.Flags().StringVar(&timeSummaryDate, "date", "", "A date inside the week (YYYY-MM-DD, default today)")

	timeUpdateCmd.Flags().StringVar(&timeUpdateDate, "date", "", "New date (YYYY-MM-DD)")
	timeUpdateCmd.Flags().StringVar(&timeUpdateStart, "start", "", "New start time (HH:MM)")
	timeUpdateCmd.Flags().StringVar(&timeUpdateEnd, "end", "", "New end time (HH:MM)")
	timeUpdateCmd.Flags().Float64Var(&timeUpdateDuration, "duration", 0, "New duration in hours")
	timeUpdateCmd.Flags().StringVar(&timeUpdateDesc, "description", "", "New description")

	timeFilesCmd.AddCommand(timeFilesListCmd)
	timeFilesCmd.AddCommand(timeFilesUploadCmd)
	timeFilesCmd.AddCommand(timeFilesDeleteCmd)

	timeCmd.AddCommand(timeListCmd)
	timeCmd.AddCommand(timeAddCmd)
	timeCmd.AddCommand(timeSummaryCmd)
	timeCmd.AddCommand(timeUpdateCmd)
	timeCmd.AddCommand(timeDeleteCmd)
	timeCmd.AddCommand(timeFilesCmd)
}

func runTimeList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	taskID := timeListTask
	entries, ok, err := query.FetchDependent(ctx, a.cache, "timeEntries", taskID,
		func(ctx context.Context) ([]model.TimeEntry, error) {
			return a.client.TimeEntries.ListByTask(ctx, taskID)
		})
	if err != nil {
		fail(err)
	}
	if !ok {
		fmt.Println(ui.Muted("Pick a task first (--task <id>)."))
		return nil
	}
	if len(entries) == 0 {
		fmt.Println(ui.Muted("No time entries for this task."))
		return nil
	}

	var total float64
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		total += e.Duration
		rows = append(rows, []string{e.ID, e.Date, timecalc.FormatHours(e.Duration), e.Description})
	}
	fmt.Print(ui.Table([]string{"ID", "DATE", "DURATION", "DESCRIPTION"}, rows))
	fmt.Printf("Total: %s\n", ui.Accent(timecalc.FormatHours(total)))
	return nil
}

// weekTotal sums the duration of entries dated inside the week (Monday
// through Sunday) containing ref. Entries with unparseable dates are skipped.
func weekTotal(entries []model.TimeEntry, ref time.Time) float64 {
	monday, sunday := timecalc.WeekRange(ref)
	var total float64
	for _, e := range entries {
		d, err := time.ParseInLocation("2006-01-02", e.Date, ref.Location())
		if err != nil {
			continue
		}
		if d.Before(monday) || d.After(sunday) {
			continue
		}
		total += e.Duration
	}
	return total
}

func runTimeSummary(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	if timeSummaryTask == "" {
		fmt.Println(ui.Muted("Pick a task first (--task <id>)."))
		return nil
	}
	ref := time.Now()
	if timeSummaryDate != "" {
		ref, err = time.Parse("2006-01-02", timeSummaryDate)
		if err != nil {
			return fmt.Errorf("invalid date %q (want YYYY-MM-DD)", timeSummaryDate)
		}
	}

	taskID := timeSummaryTask
	entries, _, err := query.FetchDependent(ctx, a.cache, "timeEntries", taskID,
		func(ctx context.Context) ([]model.TimeEntry, error) {
			return a.client.TimeEntries.ListByTask(ctx, taskID)
		})
	if err != nil {
		fail(err)
	}

	monday, sunday := timecalc.WeekRange(ref)
	total := weekTotal(entries, ref)
	fmt.Printf("Week %s to %s: %s\n",
		monday.Format("2006-01-02"), sunday.Format("2006-01-02"),
		ui.Accent(timecalc.FormatHours(total)))
	return nil
}

func runTimeAdd(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	taskID := args[0]
	date := timeAddDate
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return fmt.Errorf("invalid date %q (want YYYY-MM-DD)", date)
	}

	req := model.CreateTimeEntryRequest{
		Description: timeAddDesc,
		Date:        date,
		Duration:    timeAddDuration,
	}
	if timeAddStart != "" {
		start, err := timecalc.ParseClock(day, timeAddStart)
		if err != nil {
			return err
		}
		req.StartTime = &start
	}
	if timeAddEnd != "" {
		end, err := timecalc.ParseClock(day, timeAddEnd)
		if err != nil {
			return err
		}
		req.EndTime = &end
	}
	if req.StartTime != nil && req.EndTime != nil {
		req.Duration = timecalc.DurationHours(*req.StartTime, *req.EndTime)
	}

	m := query.NewMutation[*model.TimeEntry](a.cache, query.Invalidates("timeEntries", taskID))
	e, err := m.Run(ctx, func(ctx context.Context) (*model.TimeEntry, error) {
		return a.client.TimeEntries.Create(ctx, taskID, req)
	})
	if err != nil {
		fail(err)
	}
	fmt.Printf("Logged %s on %s (%s)\n", timecalc.FormatHours(e.Duration), e.Date, e.ID)
	return nil
}

func runTimeUpdate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	existing, err := a.client.TimeEntries.Get(ctx, args[0])
	if err != nil {
		fail(err)
	}

	req := model.UpdateTimeEntryRequest{}
	if cmd.Flags().Changed("description") {
		req.Description = &timeUpdateDesc
	}
	date := existing.Date
	if cmd.Flags().Changed("date") {
		date = timeUpdateDate
		req.Date = &timeUpdateDate
	}
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return fmt.Errorf("invalid date %q (want YYYY-MM-DD)", date)
	}
	if cmd.Flags().Changed("start") {
		start, err := timecalc.ParseClock(day, timeUpdateStart)
		if err != nil {
			return err
		}
		req.StartTime = &start
	}
	if cmd.Flags().Changed("end") {
		end, err := timecalc.ParseClock(day, timeUpdateEnd)
		if err != nil {
			return err
		}
		req.EndTime = &end
	}
	if cmd.Flags().Changed("duration") {
		req.Duration = &timeUpdateDuration
	}
	// Rederive the duration when the window changed, falling back to the
	// stored endpoint for the side that was not supplied.
	if req.StartTime != nil || req.EndTime != nil {
		start, end := existing.StartTime, existing.EndTime
		if req.StartTime != nil {
			start = req.StartTime
		}
		if req.EndTime != nil {
			end = req.EndTime
		}
		if start != nil && end != nil {
			d := timecalc.DurationHours(*start, *end)
			req.Duration = &d
		}
	}

	m := query.NewMutation[*model.TimeEntry](a.cache, query.Invalidates("timeEntries", existing.TaskID))
	e, err := m.Run(ctx, func(ctx context.Context) (*model.TimeEntry, error) {
		return a.client.TimeEntries.Update(ctx, args[0], req)
	})
	if err != nil {
		fail(err)
	}
	fmt.Printf("Updated entry %s (%s)\n", e.ID, timecalc.FormatHours(e.Duration))
	return nil
}

func runTimeDelete(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	existing, err := a.client.TimeEntries.Get(ctx, args[0])
	if err != nil {
		fail(err)
	}

	m := query.NewMutation[struct{}](a.cache, query.Invalidates("timeEntries", existing.TaskID))
	_, err = m.Run(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.client.TimeEntries.Delete(ctx, args[0])
	})
	if err != nil {
		fail(err)
	}
	fmt.Println("Time entry deleted.")
	return nil
}

func runTimeFilesList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	entryID := args[0]
	files, ok, err := query.FetchDependent(ctx, a.cache, "timeEntryFiles", entryID,
		func(ctx context.Context) ([]model.FileAttachment, error) {
			return a.client.TimeEntries.Files(ctx, entryID)
		})
	if err != nil {
		fail(err)
	}
	if !ok || len(files) == 0 {
		fmt.Println(ui.Muted("No files attached."))
		return nil
	}

	rows := make([][]string, 0, len(files))
	for _, f := range files {
		rows = append(rows, []string{f.ID, f.FileName, f.FileURL})
	}
	fmt.Print(ui.Table([]string{"ID", "NAME", "URL"}, rows))
	return nil
}

func runTimeFilesUpload(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	entryID, path := args[0], args[1]
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	m := query.NewMutation[*model.FileAttachment](a.cache, query.Invalidates("timeEntryFiles", entryID))
	att, err := m.Run(ctx, func(ctx context.Context) (*model.FileAttachment, error) {
		return a.client.TimeEntries.UploadFile(ctx, entryID, filepath.Base(path), f)
	})
	if err != nil {
		fail(err)
	}
	fmt.Printf("Uploaded %s (%s)\n", att.FileName, att.ID)
	return nil
}

func runTimeFilesDelete(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	entryID, fileID := args[0], args[1]
	m := query.NewMutation[struct{}](a.cache, query.Invalidates("timeEntryFiles", entryID))
	_, err = m.Run(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.client.TimeEntries.DeleteFile(ctx, entryID, fileID)
	})
	if err != nil {
		fail(err)
	}
	fmt.Println("File deleted.")
	return nil
}
