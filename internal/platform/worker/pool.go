package worker

import (
	"context"
	"hash/fnv"
	"sync"

	"hospital-queue/internal/platform/logger"
)

// Handler procesa un trabajo. Los errores se loguean; el pool no reintenta.
type Handler[T any] func(ctx context.Context, job T) error

type task[T any] struct {
	ctx context.Context
	job T
}

// Pool reparte trabajos en shards por clave. Cada shard tiene una sola goroutine,
// así los trabajos con la misma clave se procesan en el orden en que se enviaron.
type Pool[T any] struct {
	handle Handler[T]
	log    logger.Logger

	shards []chan task[T]

	mu      sync.RWMutex
	started bool
	closed  bool
	wg      sync.WaitGroup
}

func NewPool[T any](workers, buffer int, h Handler[T], log logger.Logger) *Pool[T] {
	if workers <= 0 {
		workers = 1
	}
	if buffer <= 0 {
		buffer = 1
	}
	if log == nil {
		log = logger.Nop()
	}

	shards := make([]chan task[T], workers)
	for i := range shards {
		shards[i] = make(chan task[T], buffer)
	}
	return &Pool[T]{handle: h, log: log, shards: shards}
}

func (p *Pool[T]) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.closed {
		return
	}
	p.started = true

	for i, ch := range p.shards {
		p.wg.Add(1)
		go p.worker(i, ch)
	}
	p.log.Info("worker pool started", map[string]any{"workers": len(p.shards)})
}

// Stop deja de aceptar trabajos, drena lo encolado y espera a los workers.
func (p *Pool[T]) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	for _, ch := range p.shards {
		close(ch)
	}
	p.mu.Unlock()

	p.wg.Wait()
	p.log.Info("worker pool stopped", nil)
}

// Submit encola el trabajo en el shard de key. Si el pool no está corriendo o ctx
// se cancela mientras el buffer está lleno, el trabajo se procesa en el llamador:
// nunca se descarta.
func (p *Pool[T]) Submit(ctx context.Context, key string, job T) error {
	p.mu.RLock()
	if !p.started || p.closed {
		p.mu.RUnlock()
		return p.handle(context.WithoutCancel(ctx), job)
	}

	t := task[T]{ctx: context.WithoutCancel(ctx), job: job}
	select {
	case p.shards[p.shard(key)] <- t:
		p.mu.RUnlock()
		return nil
	case <-ctx.Done():
		p.mu.RUnlock()
		p.log.Warn("worker pool saturated, handling inline", map[string]any{"key": key})
		return p.handle(t.ctx, job)
	}
}

// TrySubmit encola sin bloquear. Devuelve false si el shard está lleno o el pool
// no está corriendo; el trabajo se descarta y decide el llamador.
func (p *Pool[T]) TrySubmit(ctx context.Context, key string, job T) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.started || p.closed {
		return false
	}

	select {
	case p.shards[p.shard(key)] <- task[T]{ctx: context.WithoutCancel(ctx), job: job}:
		return true
	default:
		return false
	}
}

func (p *Pool[T]) shard(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(p.shards)))
}

func (p *Pool[T]) worker(id int, ch <-chan task[T]) {
	defer p.wg.Done()

	for t := range ch {
		if err := p.handle(t.ctx, t.job); err != nil {
			p.log.Error("worker job failed", map[string]any{
				"worker": id,
				"error":  err.Error(),
			})
		}
	}
}
