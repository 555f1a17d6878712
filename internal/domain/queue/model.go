package queue

import (
	"strings"
	"time"
)

// Department identifica un área de servicio con su propia cola.
// @Enum OPD, Billing, Pharmacy, Appointment
type Department string

const (
	DepartmentOPD         Department = "OPD"
	DepartmentBilling     Department = "Billing"
	DepartmentPharmacy    Department = "Pharmacy"
	DepartmentAppointment Department = "Appointment"
)

// Departments en orden estable (útil para Restore y dashboards).
var Departments = []Department{
	DepartmentOPD,
	DepartmentBilling,
	DepartmentPharmacy,
	DepartmentAppointment,
}

// ParseDepartment acepta el nombre sin importar mayúsculas ("opd", "OPD").
func ParseDepartment(raw string) (Department, bool) {
	raw = strings.TrimSpace(raw)
	for _, d := range Departments {
		if strings.EqualFold(string(d), raw) {
			return d, true
		}
	}
	return "", false
}

// Lane es una de las dos líneas paralelas por departamento.
// @Enum normal, priority
type Lane string

const (
	LaneNormal   Lane = "normal"
	LanePriority Lane = "priority"
)

func ParseLane(raw string) (Lane, bool) {
	switch Lane(strings.ToLower(strings.TrimSpace(raw))) {
	case LaneNormal:
		return LaneNormal, true
	case LanePriority:
		return LanePriority, true
	default:
		return "", false
	}
}

// PriorityClass solo existe cuando Lane = priority.
// @Enum senior, pwd
type PriorityClass string

const (
	PriorityNone   PriorityClass = ""
	PrioritySenior PriorityClass = "senior"
	PriorityPWD    PriorityClass = "pwd"
)

// State del ciclo de vida de una visita.
// @Enum waiting, in_progress, completed, cancelled
type State string

const (
	StateWaiting    State = "waiting"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
	StateCancelled  State = "cancelled"
)

// IsActive: waiting o in_progress (cuenta para la regla de una visita activa por paciente).
func (s State) IsActive() bool {
	return s == StateWaiting || s == StateInProgress
}

func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateCancelled
}

// PriorityAttributes las declara el llamador externo (check-in).
type PriorityAttributes struct {
	IsSenior bool
	IsPWD    bool
}

// VisitRecord es la presencia de un paciente en la cola de un departamento.
// Nunca se borra: los registros terminales quedan como historial.
type VisitRecord struct {
	ID        string
	PatientID string

	Department    Department
	Lane          Lane
	PriorityClass PriorityClass

	QueueNumber int
	Position    int // 1..N mientras está waiting; 0 en otro caso

	State State

	EnqueuedAt  time.Time
	StartedAt   *time.Time
	FinishedAt  *time.Time
	CancelledAt *time.Time

	EstimatedWait time.Duration
	ActualWait    *time.Duration

	CancelReason string
}

// clone copia los punteros para que el llamador no comparta memoria con el estado interno.
func (v VisitRecord) clone() VisitRecord {
	out := v
	out.StartedAt = copyTime(v.StartedAt)
	out.FinishedAt = copyTime(v.FinishedAt)
	out.CancelledAt = copyTime(v.CancelledAt)
	if v.ActualWait != nil {
		d := *v.ActualWait
		out.ActualWait = &d
	}
	return out
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// BoardEntry es lo único que se expone en pantallas públicas: hechos de posición, nada clínico.
type BoardEntry struct {
	VisitID     string
	PatientID   string
	QueueNumber int
	Lane        Lane
	Position    int
}

// WaitingCounts por lane después de una mutación.
type WaitingCounts struct {
	Normal   int
	Priority int
}

func (w WaitingCounts) Total() int { return w.Normal + w.Priority }

// DepartmentStats alimenta el dashboard operativo.
type DepartmentStats struct {
	Department Department

	Waiting    WaitingCounts
	InProgress int
	Completed  int
	Cancelled  int

	AverageServiceTime time.Duration
	AverageActualWait  time.Duration
}
