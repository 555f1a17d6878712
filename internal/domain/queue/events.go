package queue

import (
	"context"
	"fmt"
	"time"

	"hospital-queue/internal/ports/notify"

	"github.com/pkg/errors"
)

type EventType string

const (
	EventCheckedIn EventType = "visit.checked_in"
	EventCalled    EventType = "visit.called"
	EventCompleted EventType = "visit.completed"
	EventCancelled EventType = "visit.cancelled"
)

// Event se emite por cada mutación exitosa. Seq es creciente por departamento y
// los sinks reciben los eventos de un departamento en ese orden.
type Event struct {
	Seq        uint64
	Type       EventType
	Visit      VisitRecord
	Message    string // texto para el paciente
	Waiting    WaitingCounts
	OccurredAt time.Time
}

type EventSink interface {
	HandleEvent(ctx context.Context, ev Event) error
}

type EventSinkFunc func(ctx context.Context, ev Event) error

func (f EventSinkFunc) HandleEvent(ctx context.Context, ev Event) error { return f(ctx, ev) }

// FanOut entrega el evento a todos los sinks aunque alguno falle.
func FanOut(sinks ...EventSink) EventSink {
	return EventSinkFunc(func(ctx context.Context, ev Event) error {
		var (
			first  error
			failed int
		)
		for _, s := range sinks {
			if s == nil {
				continue
			}
			if err := s.HandleEvent(ctx, ev); err != nil {
				failed++
				if first == nil {
					first = err
				}
			}
		}
		if first != nil {
			return errors.Wrapf(first, "%d of %d sinks failed", failed, len(sinks))
		}
		return nil
	})
}

// NotifySink traduce eventos a mensajes para el paciente.
func NotifySink(n notify.Notifier) EventSink {
	return EventSinkFunc(func(ctx context.Context, ev Event) error {
		if ev.Message == "" {
			return nil
		}
		return n.Notify(ctx, ev.Visit.PatientID, ev.Message)
	})
}

// PersistSink: create en check-in, update en cualquier otra transición.
func PersistSink(repo Repository) EventSink {
	return EventSinkFunc(func(ctx context.Context, ev Event) error {
		if ev.Type == EventCheckedIn {
			return repo.Create(ctx, ev.Visit)
		}
		return repo.Update(ctx, ev.Visit)
	})
}

func messageFor(t EventType, v VisitRecord) string {
	switch t {
	case EventCheckedIn:
		return fmt.Sprintf("You are number %d in the %s %s line (position %d). Estimated wait: %s.",
			v.QueueNumber, v.Department, v.Lane, v.Position, formatWait(v.EstimatedWait))
	case EventCalled:
		return fmt.Sprintf("Queue number %d, please proceed to %s.", v.QueueNumber, v.Department)
	case EventCompleted:
		return fmt.Sprintf("Your %s visit (queue number %d) is complete.", v.Department, v.QueueNumber)
	case EventCancelled:
		if v.CancelReason != "" {
			return fmt.Sprintf("Your %s queue number %d was cancelled: %s", v.Department, v.QueueNumber, v.CancelReason)
		}
		return fmt.Sprintf("Your %s queue number %d was cancelled.", v.Department, v.QueueNumber)
	default:
		return ""
	}
}

func formatWait(d time.Duration) string {
	if d <= 0 {
		return "none"
	}
	return d.Round(time.Minute).String()
}
