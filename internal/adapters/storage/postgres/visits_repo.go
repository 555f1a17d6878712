package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"hospital-queue/internal/domain/queue"

	"github.com/pkg/errors"
)

const visitColumns = `
	id, patient_id,
	department, lane, priority_class,
	queue_number, state,
	enqueued_at, started_at, finished_at, cancelled_at,
	estimated_wait_ms, actual_wait_ms, cancel_reason`

type VisitsRepo struct {
	db *sql.DB
}

func NewVisitsRepo(db *sql.DB) *VisitsRepo {
	return &VisitsRepo{db: db}
}

func (r *VisitsRepo) Create(ctx context.Context, v queue.VisitRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO queue_visits (`+visitColumns+`
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`,
		v.ID,
		v.PatientID,
		string(v.Department),
		string(v.Lane),
		string(v.PriorityClass),
		v.QueueNumber,
		string(v.State),
		v.EnqueuedAt,
		toNullTime(v.StartedAt),
		toNullTime(v.FinishedAt),
		toNullTime(v.CancelledAt),
		v.EstimatedWait.Milliseconds(),
		toNullMillis(v.ActualWait),
		v.CancelReason,
	)
	return errors.Wrapf(err, "insert visit %s", v.ID)
}

// Update persiste la transición; los campos de identidad (número, lane) no cambian.
func (r *VisitsRepo) Update(ctx context.Context, v queue.VisitRecord) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE queue_visits
		SET
			state = $2,
			started_at = $3,
			finished_at = $4,
			cancelled_at = $5,
			estimated_wait_ms = $6,
			actual_wait_ms = $7,
			cancel_reason = $8,
			updated_at = now()
		WHERE id = $1
	`,
		v.ID,
		string(v.State),
		toNullTime(v.StartedAt),
		toNullTime(v.FinishedAt),
		toNullTime(v.CancelledAt),
		v.EstimatedWait.Milliseconds(),
		toNullMillis(v.ActualWait),
		v.CancelReason,
	)
	if err != nil {
		return errors.Wrapf(err, "update visit %s", v.ID)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return errors.Wrapf(queue.ErrNotFound, "visit %s", v.ID)
	}
	return nil
}

func (r *VisitsRepo) GetByID(ctx context.Context, id string) (queue.VisitRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return queue.VisitRecord{}, queue.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+visitColumns+` FROM queue_visits WHERE id = $1`, id)
	v, err := scanVisit(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return queue.VisitRecord{}, errors.Wrapf(queue.ErrNotFound, "visit %s", id)
		}
		return queue.VisitRecord{}, errors.Wrapf(err, "get visit %s", id)
	}
	return v, nil
}

func (r *VisitsRepo) ListByDepartment(ctx context.Context, dept queue.Department) ([]queue.VisitRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+visitColumns+`
		FROM queue_visits
		WHERE department = $1
		ORDER BY enqueued_at ASC, id ASC
	`, string(dept))
	if err != nil {
		return nil, errors.Wrapf(err, "list visits %s", dept)
	}
	defer rows.Close()

	out := make([]queue.VisitRecord, 0)
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, errors.Wrapf(err, "scan visit %s", dept)
		}
		out = append(out, v)
	}
	return out, errors.Wrap(rows.Err(), "iterate visits")
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVisit(s scanner) (queue.VisitRecord, error) {
	var (
		v                            queue.VisitRecord
		dept, lane, class, state     string
		started, finished, cancelled sql.NullTime
		estimatedMillis              int64
		actualMillis                 sql.NullInt64
	)
	if err := s.Scan(
		&v.ID,
		&v.PatientID,
		&dept,
		&lane,
		&class,
		&v.QueueNumber,
		&state,
		&v.EnqueuedAt,
		&started,
		&finished,
		&cancelled,
		&estimatedMillis,
		&actualMillis,
		&v.CancelReason,
	); err != nil {
		return queue.VisitRecord{}, err
	}

	v.Department = queue.Department(dept)
	v.Lane = queue.Lane(lane)
	v.PriorityClass = queue.PriorityClass(class)
	v.State = queue.State(state)
	v.StartedAt = fromNullTime(started)
	v.FinishedAt = fromNullTime(finished)
	v.CancelledAt = fromNullTime(cancelled)
	v.EstimatedWait = time.Duration(estimatedMillis) * time.Millisecond
	if actualMillis.Valid {
		d := time.Duration(actualMillis.Int64) * time.Millisecond
		v.ActualWait = &d
	}
	return v, nil
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func fromNullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	out := t.Time
	return &out
}

func toNullMillis(d *time.Duration) sql.NullInt64 {
	if d == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: d.Milliseconds(), Valid: true}
}
