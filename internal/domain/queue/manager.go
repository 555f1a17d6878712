package queue

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"hospital-queue/internal/platform/logger"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// departmentQueue es el estado de un departamento. Todo lo que muta pasa por mu.
type departmentQueue struct {
	mu sync.RWMutex

	dept     Department
	normal   *QueueLane
	priority *QueueLane

	visits     map[string]*VisitRecord
	active     map[string]string // patientID -> visitID (waiting o in_progress)
	lastNumber map[Lane]int

	// history es append-only con un solo escritor (bajo mu). Los lectores cargan
	// el slice header y solo leen [0:len), así el estimador no necesita lock.
	history atomic.Pointer[[]VisitRecord]

	// seq y outbox se escriben bajo mu: el orden del outbox es el orden de las mutaciones.
	// outboxMu solo protege la cola pendiente; nunca se toma mu teniendo outboxMu.
	seq        uint64
	outboxMu   sync.Mutex
	outbox     []Event
	delivering bool
}

func newDepartmentQueue(d Department) *departmentQueue {
	q := &departmentQueue{
		dept:       d,
		normal:     NewQueueLane(LaneNormal),
		priority:   NewQueueLane(LanePriority),
		visits:     make(map[string]*VisitRecord),
		active:     make(map[string]string),
		lastNumber: map[Lane]int{LaneNormal: 0, LanePriority: 0},
	}
	empty := make([]VisitRecord, 0)
	q.history.Store(&empty)
	return q
}

func (q *departmentQueue) lane(l Lane) *QueueLane {
	if l == LanePriority {
		return q.priority
	}
	return q.normal
}

func (q *departmentQueue) waiting() WaitingCounts {
	return WaitingCounts{Normal: q.normal.Len(), Priority: q.priority.Len()}
}

func (q *departmentQueue) appendHistory(v VisitRecord) {
	cur := *q.history.Load()
	next := append(cur, v)
	q.history.Store(&next)
}

func (q *departmentQueue) completed() []VisitRecord {
	return *q.history.Load()
}

// Manager orquesta check-in / call-next / complete / cancel por departamento.
// Cada departamento tiene su propio lock; departamentos distintos no se coordinan.
type Manager struct {
	departments map[Department]*departmentQueue // fijo desde NewManager, solo lectura
	index       sync.Map                        // visitID -> Department

	resolver  PriorityResolver
	estimator ServiceTimeEstimator
	sinks     []EventSink
	log       logger.Logger

	now   func() time.Time
	newID func() string
}

type Option func(*Manager)

func WithLogger(l logger.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

func WithDefaultServiceTime(d time.Duration) Option {
	return func(m *Manager) { m.estimator = NewServiceTimeEstimator(d) }
}

// WithSinks registra los colaboradores que reciben eventos (persistencia, notificaciones, métricas).
func WithSinks(sinks ...EventSink) Option {
	return func(m *Manager) { m.sinks = append(m.sinks, sinks...) }
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		departments: make(map[Department]*departmentQueue, len(Departments)),
		resolver:    NewPriorityResolver(),
		estimator:   NewServiceTimeEstimator(DefaultServiceTime),
		log:         logger.Nop(),
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, d := range Departments {
		m.departments[d] = newDepartmentQueue(d)
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) department(d Department) (*departmentQueue, error) {
	q, ok := m.departments[d]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "unknown department %q", d)
	}
	return q, nil
}

// lookup resuelve visitID -> departamento sin tomar locks de departamento.
func (m *Manager) lookup(visitID string) (*departmentQueue, string, error) {
	visitID = strings.TrimSpace(visitID)
	if visitID == "" {
		return nil, "", ErrInvalidInput
	}
	v, ok := m.index.Load(visitID)
	if !ok {
		return nil, "", errors.Wrapf(ErrNotFound, "visit %s", visitID)
	}
	q, err := m.department(v.(Department))
	return q, visitID, err
}

// CheckIn es el único lugar donde se asignan queueNumber y position.
func (m *Manager) CheckIn(ctx context.Context, dept Department, patientID string, attrs PriorityAttributes) (VisitRecord, error) {
	q, err := m.department(dept)
	if err != nil {
		return VisitRecord{}, err
	}
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return VisitRecord{}, ErrInvalidInput
	}

	q.mu.Lock()
	if id, ok := q.active[patientID]; ok {
		existing := q.visits[id]
		q.mu.Unlock()

		dup := &DuplicateVisitError{
			Department:  dept,
			VisitID:     existing.ID,
			QueueNumber: existing.QueueNumber,
			Lane:        existing.Lane,
			State:       existing.State,
		}
		m.log.Warn("duplicate check-in rejected", map[string]any{
			"department":   string(dept),
			"patient_id":   patientID,
			"visit_id":     existing.ID,
			"queue_number": existing.QueueNumber,
		})
		return VisitRecord{}, dup
	}

	lane, class := m.resolver.Classify(attrs)
	q.lastNumber[lane]++

	v := &VisitRecord{
		ID:            m.newID(),
		PatientID:     patientID,
		Department:    dept,
		Lane:          lane,
		PriorityClass: class,
		QueueNumber:   q.lastNumber[lane],
		State:         StateWaiting,
		EnqueuedAt:    m.now(),
	}

	l := q.lane(lane)
	pos := l.Insert(v)
	v.EstimatedWait = m.estimator.Estimate(m.estimator.Average(q.completed()), l.CountAhead(pos))

	q.visits[v.ID] = v
	q.active[patientID] = v.ID
	m.index.Store(v.ID, dept)

	out := v.clone()
	m.enqueueEvent(q, EventCheckedIn, out)
	q.mu.Unlock()

	m.log.Info("patient checked in", visitFields(out))
	m.flushEvents(ctx, q)
	return out, nil
}

// CallNext atiende primero la lane priority; si ambas están vacías devuelve ok=false (no es error).
func (m *Manager) CallNext(ctx context.Context, dept Department) (VisitRecord, bool, error) {
	q, err := m.department(dept)
	if err != nil {
		return VisitRecord{}, false, err
	}

	q.mu.Lock()
	l := q.normal
	if m.resolver.ShouldServeBeforeNormal(q.priority.Len() > 0) {
		l = q.priority
	}

	head, ok := l.PeekHead()
	if !ok {
		q.mu.Unlock()
		return VisitRecord{}, false, nil
	}
	if !canTransition(head.State, StateInProgress) {
		// no debería pasar: las lanes solo guardan waiting
		q.mu.Unlock()
		return VisitRecord{}, false, transitionErr(head, StateInProgress)
	}

	now := m.now()
	l.Remove(head.ID)
	head.State = StateInProgress
	head.StartedAt = &now
	head.EstimatedWait = 0

	out := head.clone()
	m.enqueueEvent(q, EventCalled, out)
	q.mu.Unlock()

	m.log.Info("patient called", visitFields(out))
	m.flushEvents(ctx, q)
	return out, true, nil
}

func (m *Manager) CompleteService(ctx context.Context, visitID string) (VisitRecord, error) {
	q, visitID, err := m.lookup(visitID)
	if err != nil {
		return VisitRecord{}, err
	}

	q.mu.Lock()
	v, ok := q.visits[visitID]
	if !ok {
		q.mu.Unlock()
		return VisitRecord{}, errors.Wrapf(ErrNotFound, "visit %s", visitID)
	}
	if !canTransition(v.State, StateCompleted) {
		err := transitionErr(v, StateCompleted)
		q.mu.Unlock()
		return VisitRecord{}, err
	}

	now := m.now()
	v.State = StateCompleted
	v.FinishedAt = &now
	if v.StartedAt != nil {
		wait := v.StartedAt.Sub(v.EnqueuedAt)
		v.ActualWait = &wait
	}
	delete(q.active, v.PatientID)
	q.lane(v.Lane).Renumber()

	out := v.clone()
	q.appendHistory(out.clone())
	m.enqueueEvent(q, EventCompleted, out)
	q.mu.Unlock()

	m.log.Info("service completed", visitFields(out))
	m.flushEvents(ctx, q)
	return out, nil
}

func (m *Manager) CancelEntry(ctx context.Context, visitID, reason string) (VisitRecord, error) {
	q, visitID, err := m.lookup(visitID)
	if err != nil {
		return VisitRecord{}, err
	}

	q.mu.Lock()
	v, ok := q.visits[visitID]
	if !ok {
		q.mu.Unlock()
		return VisitRecord{}, errors.Wrapf(ErrNotFound, "visit %s", visitID)
	}
	if !canTransition(v.State, StateCancelled) {
		err := transitionErr(v, StateCancelled)
		state := v.State
		q.mu.Unlock()
		m.log.Warn("cancel rejected", map[string]any{
			"visit_id": visitID,
			"state":    string(state),
		})
		return VisitRecord{}, err
	}

	now := m.now()
	q.lane(v.Lane).Remove(v.ID)
	v.State = StateCancelled
	v.CancelledAt = &now
	v.CancelReason = strings.TrimSpace(reason)
	v.EstimatedWait = 0
	delete(q.active, v.PatientID)

	out := v.clone()
	m.enqueueEvent(q, EventCancelled, out)
	q.mu.Unlock()

	m.log.Info("visit cancelled", visitFields(out))
	m.flushEvents(ctx, q)
	return out, nil
}

// GetEstimatedWait recalcula sin mutar. ok=false si la visita no está en waiting.
func (m *Manager) GetEstimatedWait(visitID string) (time.Duration, bool, error) {
	q, visitID, err := m.lookup(visitID)
	if err != nil {
		return 0, false, err
	}

	q.mu.RLock()
	defer q.mu.RUnlock()

	v, ok := q.visits[visitID]
	if !ok {
		return 0, false, errors.Wrapf(ErrNotFound, "visit %s", visitID)
	}
	if v.State != StateWaiting {
		return 0, false, nil
	}
	return m.estimateLocked(q, v), true, nil
}

func (m *Manager) estimateLocked(q *departmentQueue, v *VisitRecord) time.Duration {
	ahead := q.lane(v.Lane).CountAhead(v.Position)
	return m.estimator.Estimate(m.estimator.Average(q.completed()), ahead)
}

// GetVisit devuelve la visita con la espera estimada actualizada si sigue en waiting.
func (m *Manager) GetVisit(visitID string) (VisitRecord, error) {
	q, visitID, err := m.lookup(visitID)
	if err != nil {
		return VisitRecord{}, err
	}

	q.mu.RLock()
	defer q.mu.RUnlock()

	v, ok := q.visits[visitID]
	if !ok {
		return VisitRecord{}, errors.Wrapf(ErrNotFound, "visit %s", visitID)
	}
	out := v.clone()
	if out.State == StateWaiting {
		out.EstimatedWait = m.estimateLocked(q, v)
	}
	return out, nil
}

// QueueSnapshot: lane priority (en orden) seguida de la FIFO = orden real de atención.
func (m *Manager) QueueSnapshot(dept Department) ([]BoardEntry, error) {
	q, err := m.department(dept)
	if err != nil {
		return nil, err
	}

	q.mu.RLock()
	defer q.mu.RUnlock()

	out := make([]BoardEntry, 0, q.priority.Len()+q.normal.Len())
	for _, l := range []*QueueLane{q.priority, q.normal} {
		for _, e := range l.entries {
			out = append(out, BoardEntry{
				VisitID:     e.ID,
				PatientID:   e.PatientID,
				QueueNumber: e.QueueNumber,
				Lane:        e.Lane,
				Position:    e.Position,
			})
		}
	}
	return out, nil
}

// LaneEntries devuelve una sola lane con la espera estimada de cada entrada.
func (m *Manager) LaneEntries(dept Department, lane Lane) ([]VisitRecord, error) {
	q, err := m.department(dept)
	if err != nil {
		return nil, err
	}
	if lane != LaneNormal && lane != LanePriority {
		return nil, errors.Wrapf(ErrInvalidInput, "unknown lane %q", lane)
	}

	q.mu.RLock()
	defer q.mu.RUnlock()

	l := q.lane(lane)
	avg := m.estimator.Average(q.completed())
	out := l.Entries()
	for i := range out {
		out[i].EstimatedWait = m.estimator.Estimate(avg, l.CountAhead(out[i].Position))
	}
	return out, nil
}

// AverageServiceTime lee el historial sin lock (append-only).
func (m *Manager) AverageServiceTime(dept Department) (time.Duration, error) {
	q, err := m.department(dept)
	if err != nil {
		return 0, err
	}
	return m.estimator.Average(q.completed()), nil
}

func (m *Manager) Stats(dept Department) (DepartmentStats, error) {
	q, err := m.department(dept)
	if err != nil {
		return DepartmentStats{}, err
	}

	q.mu.RLock()
	defer q.mu.RUnlock()

	st := DepartmentStats{
		Department: dept,
		Waiting:    q.waiting(),
	}

	var (
		waitTotal time.Duration
		waitCount int64
	)
	for _, v := range q.visits {
		switch v.State {
		case StateInProgress:
			st.InProgress++
		case StateCompleted:
			st.Completed++
			if v.ActualWait != nil {
				waitTotal += *v.ActualWait
				waitCount++
			}
		case StateCancelled:
			st.Cancelled++
		}
	}

	st.AverageServiceTime = m.estimator.Average(q.completed())
	if waitCount > 0 {
		st.AverageActualWait = waitTotal / time.Duration(waitCount)
	}
	return st, nil
}

// Restore reconstruye lanes, contadores e historial desde el repositorio.
// Se llama una vez al arrancar, antes de aceptar tráfico.
func (m *Manager) Restore(ctx context.Context, repo Repository) error {
	for _, d := range Departments {
		records, err := repo.ListByDepartment(ctx, d)
		if err != nil {
			return errors.Wrapf(err, "restore %s", d)
		}
		if err := m.restoreDepartment(m.departments[d], records); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) restoreDepartment(q *departmentQueue, records []VisitRecord) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].EnqueuedAt.Before(records[j].EnqueuedAt)
	})

	completed := make([]VisitRecord, 0)
	for _, r := range records {
		if r.Department != q.dept {
			return errors.Wrapf(ErrInvalidInput, "visit %s belongs to %s, not %s", r.ID, r.Department, q.dept)
		}
		if _, exists := q.visits[r.ID]; exists {
			continue
		}

		v := r.clone()
		v.Position = 0
		if v.State.IsActive() {
			if other, dup := q.active[v.PatientID]; dup {
				return errors.Wrapf(ErrDuplicateActiveVisit, "patient %s has visits %s and %s", v.PatientID, other, v.ID)
			}
			q.active[v.PatientID] = v.ID
		}
		if v.QueueNumber > q.lastNumber[v.Lane] {
			q.lastNumber[v.Lane] = v.QueueNumber
		}

		rec := &v
		q.visits[rec.ID] = rec
		m.index.Store(rec.ID, q.dept)

		switch rec.State {
		case StateWaiting:
			q.lane(rec.Lane).Insert(rec)
		case StateCompleted:
			completed = append(completed, rec.clone())
		}
	}

	sort.SliceStable(completed, func(i, j int) bool {
		return completed[i].FinishedAt != nil && completed[j].FinishedAt != nil &&
			completed[i].FinishedAt.Before(*completed[j].FinishedAt)
	})
	for _, c := range completed {
		q.appendHistory(c)
	}

	m.log.Info("department restored", map[string]any{
		"department":       string(q.dept),
		"visits":           len(q.visits),
		"waiting_normal":   q.normal.Len(),
		"waiting_priority": q.priority.Len(),
	})
	return nil
}

// enqueueEvent se llama con q.mu tomado: numera el evento y lo deja en el outbox
// del departamento. No hace I/O.
func (m *Manager) enqueueEvent(q *departmentQueue, t EventType, v VisitRecord) {
	if len(m.sinks) == 0 {
		return
	}
	q.seq++
	ev := Event{
		Seq:        q.seq,
		Type:       t,
		Visit:      v,
		Message:    messageFor(t, v),
		Waiting:    q.waiting(),
		OccurredAt: m.now(),
	}

	q.outboxMu.Lock()
	q.outbox = append(q.outbox, ev)
	q.outboxMu.Unlock()
}

// flushEvents entrega el outbox a los sinks sin mu tomado. Un solo llamador entrega
// a la vez por departamento; los demás dejan su evento y vuelven, así los sinks
// ven los eventos en orden de Seq.
func (m *Manager) flushEvents(ctx context.Context, q *departmentQueue) {
	q.outboxMu.Lock()
	if q.delivering {
		q.outboxMu.Unlock()
		return
	}
	q.delivering = true

	for len(q.outbox) > 0 {
		batch := q.outbox
		q.outbox = nil
		q.outboxMu.Unlock()

		for _, ev := range batch {
			m.deliver(ctx, ev)
		}

		q.outboxMu.Lock()
	}

	q.delivering = false
	q.outboxMu.Unlock()
}

func (m *Manager) deliver(ctx context.Context, ev Event) {
	for _, s := range m.sinks {
		if err := s.HandleEvent(ctx, ev); err != nil {
			m.log.Error("event sink failed", map[string]any{
				"event":      string(ev.Type),
				"seq":        ev.Seq,
				"department": string(ev.Visit.Department),
				"visit_id":   ev.Visit.ID,
				"error":      err.Error(),
			})
		}
	}
}

func visitFields(v VisitRecord) map[string]any {
	f := map[string]any{
		"department":   string(v.Department),
		"visit_id":     v.ID,
		"queue_number": v.QueueNumber,
		"lane":         string(v.Lane),
		"state":        string(v.State),
	}
	if v.Position > 0 {
		f["position"] = v.Position
	}
	return f
}
