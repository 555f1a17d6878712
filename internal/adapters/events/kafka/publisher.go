package kafka

import (
	"context"
	"encoding/json"
	"time"

	"hospital-queue/internal/domain/queue"

	"github.com/pkg/errors"
	kafkago "github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher manda eventos de cola al topic de analítica. La key es el
// departamento: el balancer Hash mantiene el orden por departamento.
type Publisher struct {
	w messageWriter
}

func NewWriter(brokers []string, topic string) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireOne,
		Async:        false, // el pool de dispatch ya desacopla del request
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
	}
}

func NewPublisher(w messageWriter) *Publisher {
	return &Publisher{w: w}
}

type eventMessage struct {
	Event         string     `json:"event"`
	VisitID       string     `json:"visit_id"`
	PatientID     string     `json:"patient_id"`
	Department    string     `json:"department"`
	Lane          string     `json:"lane"`
	PriorityClass string     `json:"priority_class,omitempty"`
	QueueNumber   int        `json:"queue_number"`
	Position      int        `json:"position,omitempty"`
	State         string     `json:"state"`
	EnqueuedAt    time.Time  `json:"enqueued_at"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
	CancelReason  string     `json:"cancel_reason,omitempty"`

	EstimatedWaitSeconds int64  `json:"estimated_wait_seconds"`
	ActualWaitSeconds    *int64 `json:"actual_wait_seconds,omitempty"`

	WaitingNormal   int       `json:"waiting_normal"`
	WaitingPriority int       `json:"waiting_priority"`
	OccurredAt      time.Time `json:"occurred_at"`
}

func (p *Publisher) HandleEvent(ctx context.Context, ev queue.Event) error {
	body, err := json.Marshal(toMessage(ev))
	if err != nil {
		return errors.Wrap(err, "marshal queue event")
	}

	err = p.w.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(ev.Visit.Department),
		Value: body,
		Time:  ev.OccurredAt,
		Headers: []kafkago.Header{
			{Key: "event", Value: []byte(ev.Type)},
		},
	})
	return errors.Wrapf(err, "kafka write %s", ev.Type)
}

func (p *Publisher) Close() error {
	return p.w.Close()
}

func toMessage(ev queue.Event) eventMessage {
	v := ev.Visit
	m := eventMessage{
		Event:                string(ev.Type),
		VisitID:              v.ID,
		PatientID:            v.PatientID,
		Department:           string(v.Department),
		Lane:                 string(v.Lane),
		PriorityClass:        string(v.PriorityClass),
		QueueNumber:          v.QueueNumber,
		Position:             v.Position,
		State:                string(v.State),
		EnqueuedAt:           v.EnqueuedAt,
		StartedAt:            v.StartedAt,
		FinishedAt:           v.FinishedAt,
		CancelledAt:          v.CancelledAt,
		CancelReason:         v.CancelReason,
		EstimatedWaitSeconds: int64(v.EstimatedWait / time.Second),
		WaitingNormal:        ev.Waiting.Normal,
		WaitingPriority:      ev.Waiting.Priority,
		OccurredAt:           ev.OccurredAt,
	}
	if v.ActualWait != nil {
		s := int64(*v.ActualWait / time.Second)
		m.ActualWaitSeconds = &s
	}
	return m
}
