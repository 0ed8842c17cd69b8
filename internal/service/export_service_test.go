package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aptora/aptora-api/internal/dto"
	"github.com/aptora/aptora-api/internal/models"
)

func newExportFixture(sessions []models.StudySession) *ExportService {
	schedule, store := newScheduleServiceFixture(nil, nil)
	store.sessions = sessions
	return NewExportService(schedule, "Aptora Study Plan", nil, nil, nil)
}

func exportSessions() []models.StudySession {
	start := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	return []models.StudySession{{
		ID:           "ses-1",
		UserID:       "user-1",
		AssignmentID: "asg-1",
		StartTime:    start,
		EndTime:      start.Add(90 * time.Minute),
		Notes:        "Study session for Essay draft (1.5h)",
	}}
}

func TestExportServiceCSV(t *testing.T) {
	svc := newExportFixture(exportSessions())

	result, err := svc.Export(context.Background(), "user-1", ExportFormatCSV, dto.SessionQuery{})
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Contains(t, result.Filename, ".csv")
	assert.Contains(t, string(result.Payload), "asg-1")
	assert.Contains(t, string(result.Payload), "1.5")
}

func TestExportServicePDF(t *testing.T) {
	svc := newExportFixture(exportSessions())

	result, err := svc.Export(context.Background(), "user-1", ExportFormatPDF, dto.SessionQuery{})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, bytes.HasPrefix(result.Payload, []byte("%PDF")))
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	svc := newExportFixture(nil)

	_, err := svc.Export(context.Background(), "user-1", ExportFormat("xlsx"), dto.SessionQuery{})
	require.Error(t, err)
}
