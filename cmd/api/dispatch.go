package main

import (
	"context"

	"hospital-queue/internal/domain/queue"
	"hospital-queue/internal/platform/logger"
	"hospital-queue/internal/platform/metrics"
	"hospital-queue/internal/platform/worker"
)

// dispatcher separa dos caminos por departamento:
//   - store: persistencia y publishers. Ordenado, nunca descarta (Submit bloquea si se llena).
//   - notify: mensajes al paciente. Best effort: si el shard está lleno el mensaje se descarta,
//     así un webhook caído no frena los requests ni la persistencia.
type dispatcher struct {
	store  *worker.Pool[queue.Event]
	notify *worker.Pool[queue.Event]

	// se cancela en Stop para cortar reintentos de notificaciones pendientes
	notifyCtx    context.Context
	cancelNotify context.CancelFunc

	col *metrics.Collector
	log logger.Logger
}

func newDispatcher(workers, buffer int, store, notify queue.EventSink, col *metrics.Collector, log logger.Logger) *dispatcher {
	if log == nil {
		log = logger.Nop()
	}
	d := &dispatcher{col: col, log: log}
	d.notifyCtx, d.cancelNotify = context.WithCancel(context.Background())

	d.store = worker.NewPool[queue.Event](workers, buffer, store.HandleEvent, log.With(map[string]any{"pool": "store"}))
	if notify != nil {
		d.notify = worker.NewPool[queue.Event](workers, buffer, func(_ context.Context, ev queue.Event) error {
			return notify.HandleEvent(d.notifyCtx, ev)
		}, log.With(map[string]any{"pool": "notify"}))
	}
	return d
}

func (d *dispatcher) Start() {
	d.store.Start()
	if d.notify != nil {
		d.notify.Start()
	}
}

// Stop drena la persistencia completa; las notificaciones pendientes se cortan.
func (d *dispatcher) Stop() {
	d.store.Stop()
	if d.notify != nil {
		d.cancelNotify()
		d.notify.Stop()
	}
}

func (d *dispatcher) HandleEvent(ctx context.Context, ev queue.Event) error {
	key := string(ev.Visit.Department)

	if d.notify != nil && !d.notify.TrySubmit(ctx, key, ev) {
		if d.col != nil {
			d.col.RecordDroppedEvent("notify")
		}
		d.log.Warn("notification dropped", map[string]any{
			"department": key,
			"visit_id":   ev.Visit.ID,
			"event":      string(ev.Type),
			"seq":        ev.Seq,
		})
	}

	return d.store.Submit(ctx, key, ev)
}
