package api

import (
	"context"
	"fmt"

	"github.com/rananjaysingh20/work-tracker-cli/internal/model"
)

// ReportsService wraps the /reports endpoints. Generation calls are
// write-triggering reads: each POST creates a new report resource from the
// given criteria, and repeated submission may create duplicates. That is the
// server's contract, inherited as-is.
type ReportsService struct {
	c *Client
}

func (s *ReportsService) List(ctx context.Context) ([]model.Report, error) {
	var out []model.Report
	if err := s.c.get(ctx, "/reports", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ReportsService) Get(ctx context.Context, id string) (*model.Report, error) {
	var out model.Report
	if err := s.c.get(ctx, "/reports/"+id, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create stores a report document directly, without server-side generation.
func (s *ReportsService) Create(ctx context.Context, req model.CreateReportRequest) (*model.Report, error) {
	if err := req.Validate(); err != nil {
		return nil, &ValidationError{Detail: err.Error()}
	}
	var out model.Report
	if err := s.c.post(ctx, "/reports", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ReportsService) Update(ctx context.Context, id string, req model.UpdateReportRequest) (*model.Report, error) {
	if err := req.Validate(); err != nil {
		return nil, &ValidationError{Detail: err.Error()}
	}
	var out model.Report
	if err := s.c.put(ctx, "/reports/"+id, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ReportsService) Delete(ctx context.Context, id string) error {
	return s.c.delete(ctx, "/reports/"+id)
}

// Generate creates a new report of the given type (time-tracking,
// project-stats, team-productivity, client-billing) from criteria.
func (s *ReportsService) Generate(ctx context.Context, reportType string, criteria model.ReportCriteria) (*model.Report, error) {
	switch reportType {
	case model.ReportTimeTracking, model.ReportProjectStats,
		model.ReportTeamProductivity, model.ReportClientBilling:
	default:
		return nil, &ValidationError{Detail: fmt.Sprintf("unknown report type %q", reportType)}
	}
	var out model.Report
	if err := s.c.post(ctx, "/reports/generate/"+reportType, criteria, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ClientsFullReport fetches the combined per-client report document.
func (s *ReportsService) ClientsFullReport(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := s.c.get(ctx, "/reports/clients-full-report", &out); err != nil {
		return nil, err
	}
	return out, nil
}
