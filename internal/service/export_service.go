package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aptora/aptora-api/internal/dto"
	"github.com/aptora/aptora-api/internal/models"
	appErrors "github.com/aptora/aptora-api/pkg/errors"
	"github.com/aptora/aptora-api/pkg/export"
)

// ExportFormat selects the rendered file type.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportResult carries the rendered file and its HTTP metadata.
type ExportResult struct {
	Payload     []byte
	ContentType string
	Filename    string
}

// ExportService renders a user's study sessions as downloadable files.
type ExportService struct {
	schedule *ScheduleService
	csv      csvRenderer
	pdf      pdfRenderer
	title    string
	logger   *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(schedule *ScheduleService, title string, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if title == "" {
		title = "Study Plan"
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{schedule: schedule, csv: csv, pdf: pdf, title: title, logger: logger}
}

// Export renders the sessions in the window in the requested format.
func (s *ExportService) Export(ctx context.Context, userID string, format ExportFormat, query dto.SessionQuery) (*ExportResult, error) {
	sessions, err := s.schedule.ListSessions(ctx, userID, query)
	if err != nil {
		return nil, err
	}
	dataset := sessionDataset(sessions)

	switch format {
	case ExportFormatCSV:
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{Payload: payload, ContentType: "text/csv", Filename: exportFilename("csv")}, nil
	case ExportFormatPDF:
		payload, err := s.pdf.Render(dataset, s.title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{Payload: payload, ContentType: "application/pdf", Filename: exportFilename("pdf")}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

func sessionDataset(sessions []models.StudySession) export.Dataset {
	headers := []string{"Assignment", "Start", "End", "Hours", "Completed", "Notes"}
	rows := make([]map[string]string, 0, len(sessions))
	for _, session := range sessions {
		rows = append(rows, map[string]string{
			"Assignment": session.AssignmentID,
			"Start":      session.StartTime.Format(time.RFC3339),
			"End":        session.EndTime.Format(time.RFC3339),
			"Hours":      fmt.Sprintf("%.1f", session.DurationHours()),
			"Completed":  fmt.Sprintf("%t", session.IsCompleted),
			"Notes":      session.Notes,
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func exportFilename(ext string) string {
	stamp := time.Now().UTC().Format("20060102-150405")
	return strings.ToLower(fmt.Sprintf("study-plan-%s.%s", stamp, ext))
}
