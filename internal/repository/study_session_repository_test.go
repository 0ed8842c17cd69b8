package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/aptora/aptora-api/internal/models"
)

func TestStudySessionRepositoryListWindow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudySessionRepository(db)

	start := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	from := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)
	rows := sqlmock.NewRows([]string{"id", "user_id", "assignment_id", "start_time", "end_time", "is_completed", "notes", "created_at", "updated_at"}).
		AddRow("ses-1", "user-1", "asg-1", start, start.Add(2*time.Hour), false, "Study session for Essay draft (2.0h)", time.Now(), nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM study_sessions WHERE user_id = $1 AND start_time >= $2 AND start_time < $3 ORDER BY start_time ASC")).
		WithArgs("user-1", from, to).
		WillReturnRows(rows)

	sessions, err := repo.List(context.Background(), "user-1", &from, &to)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.InDelta(t, 2.0, sessions[0].DurationHours(), 1e-9)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudySessionRepositoryReplaceWindow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudySessionRepository(db)

	from := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM study_sessions WHERE user_id = $1 AND is_completed = false AND start_time >= $2 AND start_time < $3")).
		WithArgs("user-1", from, to).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO study_sessions")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	sessions := []models.StudySession{{
		AssignmentID: "asg-1",
		StartTime:    from.Add(9 * time.Hour),
		EndTime:      from.Add(11 * time.Hour),
	}}
	require.NoError(t, repo.ReplaceWindow(context.Background(), "user-1", from, to, sessions))
	require.NotEmpty(t, sessions[0].ID)
	require.Equal(t, "user-1", sessions[0].UserID)
	require.NoError(t, mock.ExpectationsWereMet())
}
