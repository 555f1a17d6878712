package metricsink

import (
	"context"

	"hospital-queue/internal/domain/queue"
	"hospital-queue/internal/platform/metrics"
)

// Sink traduce eventos de cola a métricas prometheus. Nunca falla.
type Sink struct {
	c *metrics.Collector
}

func New(c *metrics.Collector) *Sink {
	return &Sink{c: c}
}

func (s *Sink) HandleEvent(_ context.Context, ev queue.Event) error {
	v := ev.Visit
	dept := string(v.Department)

	s.c.RecordVisitEvent(dept, string(v.Lane), string(ev.Type))
	s.c.SetWaiting(dept, string(queue.LaneNormal), ev.Waiting.Normal)
	s.c.SetWaiting(dept, string(queue.LanePriority), ev.Waiting.Priority)

	if ev.Type == queue.EventCompleted {
		if v.ActualWait != nil {
			s.c.ObserveActualWait(dept, string(v.Lane), *v.ActualWait)
		}
		if v.StartedAt != nil && v.FinishedAt != nil {
			s.c.ObserveServiceTime(dept, v.FinishedAt.Sub(*v.StartedAt))
		}
	}
	return nil
}

// Track envuelve otro sink y cuenta sus errores bajo name.
func Track(c *metrics.Collector, name string, next queue.EventSink) queue.EventSink {
	return queue.EventSinkFunc(func(ctx context.Context, ev queue.Event) error {
		err := next.HandleEvent(ctx, ev)
		if err != nil {
			c.RecordSinkError(name)
		}
		return err
	})
}
