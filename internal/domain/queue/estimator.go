package queue

import "time"

// DefaultServiceTime se usa cuando todavía no hay visitas completadas.
const DefaultServiceTime = 15 * time.Minute

// ServiceTimeEstimator calcula el tiempo promedio de atención desde el historial.
// No cachea: los volúmenes son chicos y preferimos frescura.
type ServiceTimeEstimator struct {
	fallback time.Duration
}

func NewServiceTimeEstimator(fallback time.Duration) ServiceTimeEstimator {
	if fallback <= 0 {
		fallback = DefaultServiceTime
	}
	return ServiceTimeEstimator{fallback: fallback}
}

func (e ServiceTimeEstimator) Fallback() time.Duration { return e.fallback }

// Average es el promedio de finishedAt - startedAt sobre registros completed.
// Registros sin timestamps (o con reloj invertido) se ignoran.
func (e ServiceTimeEstimator) Average(history []VisitRecord) time.Duration {
	var (
		total time.Duration
		count int64
	)
	for _, v := range history {
		if v.State != StateCompleted || v.StartedAt == nil || v.FinishedAt == nil {
			continue
		}
		d := v.FinishedAt.Sub(*v.StartedAt)
		if d < 0 {
			continue
		}
		total += d
		count++
	}
	if count == 0 {
		return e.fallback
	}
	return total / time.Duration(count)
}

// Estimate = promedio × personas adelante.
func (e ServiceTimeEstimator) Estimate(average time.Duration, ahead int) time.Duration {
	if ahead <= 0 {
		return 0
	}
	return average * time.Duration(ahead)
}
