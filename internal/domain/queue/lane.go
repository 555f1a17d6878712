package queue

import "sort"

// QueueLane es una línea ordenada (FIFO o priority) de un departamento.
// Solo contiene entradas en waiting; el estado lo cambia el Manager y la lane
// re-deriva el orden. No es thread-safe: la protege el lock del departamento.
type QueueLane struct {
	kind     Lane
	resolver PriorityResolver
	entries  []*VisitRecord
}

func NewQueueLane(kind Lane) *QueueLane {
	return &QueueLane{
		kind:     kind,
		resolver: NewPriorityResolver(),
		entries:  make([]*VisitRecord, 0),
	}
}

func (l *QueueLane) Kind() Lane { return l.kind }

func (l *QueueLane) Len() int { return len(l.entries) }

// Insert ubica el registro según la clave de orden de la lane y renumera 1..N.
// Devuelve la posición asignada.
func (l *QueueLane) Insert(v *VisitRecord) int {
	// primer índice cuyo elemento debe ir después de v => v queda detrás de sus iguales
	idx := sort.Search(len(l.entries), func(i int) bool {
		return l.less(v, l.entries[i])
	})

	l.entries = append(l.entries, nil)
	copy(l.entries[idx+1:], l.entries[idx:])
	l.entries[idx] = v

	l.renumber()
	return v.Position
}

// PeekHead devuelve la entrada con position = 1.
func (l *QueueLane) PeekHead() (*VisitRecord, bool) {
	if len(l.entries) == 0 {
		return nil, false
	}
	return l.entries[0], true
}

// Remove saca la visita del conteo de posiciones y renumera las restantes.
func (l *QueueLane) Remove(visitID string) bool {
	for i, e := range l.entries {
		if e.ID != visitID {
			continue
		}
		l.entries = append(l.entries[:i], l.entries[i+1:]...)
		e.Position = 0
		l.renumber()
		return true
	}
	return false
}

// CountAhead: cuántas entradas en waiting tienen position estrictamente menor.
func (l *QueueLane) CountAhead(position int) int {
	n := 0
	for _, e := range l.entries {
		if e.Position < position {
			n++
		}
	}
	return n
}

// Entries devuelve copias en orden de atención.
func (l *QueueLane) Entries() []VisitRecord {
	out := make([]VisitRecord, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e.clone())
	}
	return out
}

// Renumber re-ordena por la clave de la lane y asigna 1..N. O(n log n), n chico.
func (l *QueueLane) Renumber() {
	sort.SliceStable(l.entries, func(i, j int) bool {
		return l.less(l.entries[i], l.entries[j])
	})
	l.renumber()
}

func (l *QueueLane) renumber() {
	for i, e := range l.entries {
		e.Position = i + 1
	}
}

// less es la clave de orden:
// - normal: enqueuedAt asc, desempate por queueNumber
// - priority: rank de clase, luego enqueuedAt, luego queueNumber
func (l *QueueLane) less(a, b *VisitRecord) bool {
	if l.kind == LanePriority {
		ra, rb := l.resolver.Rank(a.PriorityClass), l.resolver.Rank(b.PriorityClass)
		if ra != rb {
			return ra < rb
		}
	}
	if !a.EnqueuedAt.Equal(b.EnqueuedAt) {
		return a.EnqueuedAt.Before(b.EnqueuedAt)
	}
	return a.QueueNumber < b.QueueNumber
}
