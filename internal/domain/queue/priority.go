package queue

// PriorityResolver clasifica al paciente y define la política de preemption.
// Es puro: no toca estado de colas.
type PriorityResolver struct{}

func NewPriorityResolver() PriorityResolver {
	return PriorityResolver{}
}

// Classify devuelve (priority, senior), (priority, pwd) o (normal, none).
// Si el paciente declara ambas condiciones se registra como senior; no cambia
// su orden porque ambas clases tienen el mismo rango.
func (PriorityResolver) Classify(attrs PriorityAttributes) (Lane, PriorityClass) {
	switch {
	case attrs.IsSenior:
		return LanePriority, PrioritySenior
	case attrs.IsPWD:
		return LanePriority, PriorityPWD
	default:
		return LaneNormal, PriorityNone
	}
}

// ShouldServeBeforeNormal: si la lane priority tiene alguien esperando, se atiende primero.
// Las entradas priority siempre hacen preemption; nunca se mezclan dentro de la FIFO.
func (PriorityResolver) ShouldServeBeforeNormal(priorityLaneHasWaiting bool) bool {
	return priorityLaneHasWaiting
}

// Rank ordena clases dentro de la lane priority (menor = antes).
// Senior y PWD comparten rango: entre ellos decide solo enqueuedAt.
func (PriorityResolver) Rank(class PriorityClass) int {
	switch class {
	case PrioritySenior, PriorityPWD:
		return 0
	default:
		return 1
	}
}
