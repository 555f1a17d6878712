package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"hospital-queue/internal/domain/queue"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []string{
	"id", "patient_id",
	"department", "lane", "priority_class",
	"queue_number", "state",
	"enqueued_at", "started_at", "finished_at", "cancelled_at",
	"estimated_wait_ms", "actual_wait_ms", "cancel_reason",
}

func TestVisitsRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewVisitsRepo(db)
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO queue_visits").
		WithArgs("v-1", "P1", "OPD", "priority", "senior", 1, "waiting", now, nil, nil, nil, int64(900000), nil, "").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Create(context.Background(), queue.VisitRecord{
		ID:            "v-1",
		PatientID:     "P1",
		Department:    queue.DepartmentOPD,
		Lane:          queue.LanePriority,
		PriorityClass: queue.PrioritySenior,
		QueueNumber:   1,
		State:         queue.StateWaiting,
		EnqueuedAt:    now,
		EstimatedWait: 15 * time.Minute,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVisitsRepo_UpdateCompleted(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewVisitsRepo(db)
	enq := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	started := enq.Add(4 * time.Minute)
	finished := started.Add(10 * time.Minute)
	wait := started.Sub(enq)

	mock.ExpectExec("UPDATE queue_visits").
		WithArgs("v-1", "completed", started, finished, nil, int64(0), int64(240000), "").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Update(context.Background(), queue.VisitRecord{
		ID:         "v-1",
		State:      queue.StateCompleted,
		EnqueuedAt: enq,
		StartedAt:  &started,
		FinishedAt: &finished,
		ActualWait: &wait,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVisitsRepo_UpdateMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE queue_visits").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewVisitsRepo(db).Update(context.Background(), queue.VisitRecord{ID: "missing"})
	assert.True(t, errors.Is(err, queue.ErrNotFound))
}

func TestVisitsRepo_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	enq := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	cancelled := enq.Add(time.Minute)

	mock.ExpectQuery(regexp.QuoteMeta("FROM queue_visits WHERE id = $1")).
		WithArgs("v-2").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("v-2", "P2", "Billing", "normal", "", 3, "cancelled", enq, nil, nil, cancelled, int64(0), nil, "left"))

	v, err := NewVisitsRepo(db).GetByID(context.Background(), "v-2")
	require.NoError(t, err)
	assert.Equal(t, queue.DepartmentBilling, v.Department)
	assert.Equal(t, queue.StateCancelled, v.State)
	assert.Equal(t, 3, v.QueueNumber)
	require.NotNil(t, v.CancelledAt)
	assert.True(t, v.CancelledAt.Equal(cancelled))
	assert.Nil(t, v.StartedAt)
	assert.Nil(t, v.ActualWait)
	assert.Equal(t, "left", v.CancelReason)
}

func TestVisitsRepo_GetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM queue_visits").
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(columns))

	_, err = NewVisitsRepo(db).GetByID(context.Background(), "nope")
	assert.True(t, errors.Is(err, queue.ErrNotFound))
}

func TestVisitsRepo_ListByDepartment(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	enq := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	started := enq.Add(2 * time.Minute)
	finished := started.Add(5 * time.Minute)

	mock.ExpectQuery("SELECT .* FROM queue_visits WHERE department = \\$1 ORDER BY enqueued_at").
		WithArgs("OPD").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("v-1", "P1", "OPD", "normal", "", 1, "completed", enq, started, finished, nil, int64(0), int64(120000), "").
			AddRow("v-2", "P2", "OPD", "priority", "pwd", 1, "waiting", enq.Add(time.Minute), nil, nil, nil, int64(300000), nil, ""))

	got, err := NewVisitsRepo(db).ListByDepartment(context.Background(), queue.DepartmentOPD)
	require.NoError(t, err)
	require.Len(t, got, 2)

	require.NotNil(t, got[0].ActualWait)
	assert.Equal(t, 2*time.Minute, *got[0].ActualWait)
	assert.Equal(t, queue.PriorityPWD, got[1].PriorityClass)
	assert.Equal(t, 5*time.Minute, got[1].EstimatedWait)
	assert.NoError(t, mock.ExpectationsWereMet())
}
