package queue

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
)

func RegisterRoutes(r chi.Router, m *Manager) {
	r.Route("/departments/{department}", func(dr chi.Router) {
		dr.Post("/checkins", checkInHandler(m))
		dr.Post("/call-next", callNextHandler(m))

		// Pantallas y dashboard
		dr.Get("/queue", queueBoardHandler(m))
		dr.Get("/snapshot", snapshotHandler(m))
		dr.Get("/lanes/{lane}", laneEntriesHandler(m))
		dr.Get("/stats", statsHandler(m))
		dr.Get("/service-time", serviceTimeHandler(m))
	})

	r.Route("/visits/{visitID}", func(vr chi.Router) {
		vr.Get("/", getVisitHandler(m))
		vr.Get("/estimated-wait", estimatedWaitHandler(m))
		vr.Post("/complete", completeHandler(m))
		vr.Post("/cancel", cancelHandler(m))
	})
}

type checkInRequest struct {
	PatientID string `json:"patient_id"`
	IsSenior  bool   `json:"is_senior"`
	IsPWD     bool   `json:"is_pwd"`
}

type checkInResponse struct {
	VisitID              string        `json:"visit_id"`
	Department           Department    `json:"department"`
	QueueNumber          int           `json:"queue_number"`
	Lane                 Lane          `json:"lane"`
	PriorityClass        PriorityClass `json:"priority_class,omitempty"`
	Position             int           `json:"position"`
	EstimatedWaitSeconds int64         `json:"estimated_wait_seconds"`
}

type callNextResponse struct {
	Empty       bool   `json:"empty,omitempty"`
	VisitID     string `json:"visit_id,omitempty"`
	PatientID   string `json:"patient_id,omitempty"`
	QueueNumber int    `json:"queue_number,omitempty"`
	Lane        Lane   `json:"lane,omitempty"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

type visitResponse struct {
	ID                   string        `json:"id"`
	PatientID            string        `json:"patient_id"`
	Department           Department    `json:"department"`
	Lane                 Lane          `json:"lane"`
	PriorityClass        PriorityClass `json:"priority_class,omitempty"`
	QueueNumber          int           `json:"queue_number"`
	Position             int           `json:"position,omitempty"`
	State                State         `json:"state"`
	EnqueuedAt           time.Time     `json:"enqueued_at"`
	StartedAt            *time.Time    `json:"started_at,omitempty"`
	FinishedAt           *time.Time    `json:"finished_at,omitempty"`
	CancelledAt          *time.Time    `json:"cancelled_at,omitempty"`
	CancelReason         string        `json:"cancel_reason,omitempty"`
	EstimatedWaitSeconds int64         `json:"estimated_wait_seconds"`
	ActualWaitSeconds    *int64        `json:"actual_wait_seconds,omitempty"`
}

type estimatedWaitResponse struct {
	VisitID              string `json:"visit_id"`
	Applicable           bool   `json:"applicable"`
	EstimatedWaitSeconds int64  `json:"estimated_wait_seconds"`
}

type boardEntryResponse struct {
	QueueNumber int  `json:"queue_number"`
	Lane        Lane `json:"lane"`
	Position    int  `json:"position"`
}

type snapshotEntryResponse struct {
	VisitID     string `json:"visit_id"`
	PatientID   string `json:"patient_id"`
	QueueNumber int    `json:"queue_number"`
	Lane        Lane   `json:"lane"`
	Position    int    `json:"position"`
}

type snapshotResponse struct {
	Department Department              `json:"department"`
	Entries    []snapshotEntryResponse `json:"entries"`
}

type boardResponse struct {
	Department Department           `json:"department"`
	Entries    []boardEntryResponse `json:"entries"`
}

type statsResponse struct {
	Department                Department `json:"department"`
	WaitingNormal             int        `json:"waiting_normal"`
	WaitingPriority           int        `json:"waiting_priority"`
	InProgress                int        `json:"in_progress"`
	Completed                 int        `json:"completed"`
	Cancelled                 int        `json:"cancelled"`
	AverageServiceTimeSeconds int64      `json:"average_service_time_seconds"`
	AverageActualWaitSeconds  int64      `json:"average_actual_wait_seconds"`
}

type serviceTimeResponse struct {
	Department                Department `json:"department"`
	AverageServiceTimeSeconds int64      `json:"average_service_time_seconds"`
}

type errorResponse struct {
	Error               string `json:"error"`
	ExistingVisitID     string `json:"existing_visit_id,omitempty"`
	ExistingQueueNumber int    `json:"existing_queue_number,omitempty"`
}

// checkInHandler godoc
// @Summary Registrar paciente en la cola
// @Description Asigna número de cola y posición en la lane normal o priority (senior / PWD). Un paciente no puede tener dos visitas activas en el mismo departamento.
// @Tags queue
// @Accept json
// @Produce json
// @Param department path string true "Departamento" Enums(OPD, Billing, Pharmacy, Appointment)
// @Param payload body checkInRequest true "Paciente y atributos de prioridad"
// @Success 201 {object} checkInResponse
// @Failure 400 {object} errorResponse "invalid json / patient_id vacío"
// @Failure 404 {object} errorResponse "department not found"
// @Failure 409 {object} errorResponse "visita activa existente"
// @Router /departments/{department}/checkins [post]
func checkInHandler(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dept, ok := departmentParam(w, r)
		if !ok {
			return
		}

		var req checkInRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		v, err := m.CheckIn(r.Context(), dept, req.PatientID, PriorityAttributes{
			IsSenior: req.IsSenior,
			IsPWD:    req.IsPWD,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, checkInResponse{
			VisitID:              v.ID,
			Department:           v.Department,
			QueueNumber:          v.QueueNumber,
			Lane:                 v.Lane,
			PriorityClass:        v.PriorityClass,
			Position:             v.Position,
			EstimatedWaitSeconds: seconds(v.EstimatedWait),
		})
	}
}

// callNextHandler godoc
// @Summary Llamar al siguiente paciente
// @Description Atiende primero la lane priority. Si no hay nadie esperando responde {"empty": true}.
// @Tags queue
// @Produce json
// @Param department path string true "Departamento" Enums(OPD, Billing, Pharmacy, Appointment)
// @Success 200 {object} callNextResponse
// @Failure 404 {object} errorResponse "department not found"
// @Router /departments/{department}/call-next [post]
func callNextHandler(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dept, ok := departmentParam(w, r)
		if !ok {
			return
		}

		v, ok, err := m.CallNext(r.Context(), dept)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if !ok {
			writeJSON(w, http.StatusOK, callNextResponse{Empty: true})
			return
		}

		writeJSON(w, http.StatusOK, callNextResponse{
			VisitID:     v.ID,
			PatientID:   v.PatientID,
			QueueNumber: v.QueueNumber,
			Lane:        v.Lane,
		})
	}
}

// completeHandler godoc
// @Summary Finalizar atención
// @Tags visits
// @Produce json
// @Param visitID path string true "ID de la visita"
// @Success 200 {object} visitResponse
// @Failure 404 {object} errorResponse "visit not found"
// @Failure 409 {object} errorResponse "la visita no está en atención"
// @Router /visits/{visitID}/complete [post]
func completeHandler(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := m.CompleteService(r.Context(), chi.URLParam(r, "visitID"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toVisitResponse(v))
	}
}

// cancelHandler godoc
// @Summary Cancelar visita en espera
// @Description Solo visitas en waiting. Una visita en atención debe finalizarse, no cancelarse.
// @Tags visits
// @Accept json
// @Produce json
// @Param visitID path string true "ID de la visita"
// @Param payload body cancelRequest false "Motivo opcional"
// @Success 200 {object} visitResponse
// @Failure 400 {object} errorResponse "invalid json"
// @Failure 404 {object} errorResponse "visit not found"
// @Failure 409 {object} errorResponse "la visita no está en espera"
// @Router /visits/{visitID}/cancel [post]
func cancelHandler(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// body opcional
		var req cancelRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		v, err := m.CancelEntry(r.Context(), chi.URLParam(r, "visitID"), req.Reason)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toVisitResponse(v))
	}
}

// getVisitHandler godoc
// @Summary Obtener visita
// @Tags visits
// @Produce json
// @Param visitID path string true "ID de la visita"
// @Success 200 {object} visitResponse
// @Failure 404 {object} errorResponse "visit not found"
// @Router /visits/{visitID} [get]
func getVisitHandler(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := m.GetVisit(chi.URLParam(r, "visitID"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toVisitResponse(v))
	}
}

// estimatedWaitHandler godoc
// @Summary Espera estimada
// @Description Recalcula la espera con el promedio actual. applicable=false si la visita ya no está esperando.
// @Tags visits
// @Produce json
// @Param visitID path string true "ID de la visita"
// @Success 200 {object} estimatedWaitResponse
// @Failure 404 {object} errorResponse "visit not found"
// @Router /visits/{visitID}/estimated-wait [get]
func estimatedWaitHandler(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		visitID := chi.URLParam(r, "visitID")
		d, ok, err := m.GetEstimatedWait(visitID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, estimatedWaitResponse{
			VisitID:              visitID,
			Applicable:           ok,
			EstimatedWaitSeconds: seconds(d),
		})
	}
}

// queueBoardHandler godoc
// @Summary Pantalla pública de la cola
// @Description Solo número de cola, lane y posición, en orden real de atención. Omite visit_id y patient_id a propósito; la vista completa es /departments/{department}/snapshot.
// @Tags queue
// @Produce json
// @Param department path string true "Departamento" Enums(OPD, Billing, Pharmacy, Appointment)
// @Success 200 {object} boardResponse
// @Failure 404 {object} errorResponse "department not found"
// @Router /departments/{department}/queue [get]
func queueBoardHandler(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dept, ok := departmentParam(w, r)
		if !ok {
			return
		}

		entries, err := m.QueueSnapshot(dept)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		out := boardResponse{Department: dept, Entries: make([]boardEntryResponse, 0, len(entries))}
		for _, e := range entries {
			out.Entries = append(out.Entries, boardEntryResponse{
				QueueNumber: e.QueueNumber,
				Lane:        e.Lane,
				Position:    e.Position,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// snapshotHandler godoc
// @Summary Cola completa para el personal
// @Description Mismo orden que la pantalla pública, con visit_id y patient_id.
// @Tags queue
// @Produce json
// @Param department path string true "Departamento" Enums(OPD, Billing, Pharmacy, Appointment)
// @Success 200 {object} snapshotResponse
// @Failure 404 {object} errorResponse "department not found"
// @Router /departments/{department}/snapshot [get]
func snapshotHandler(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dept, ok := departmentParam(w, r)
		if !ok {
			return
		}

		entries, err := m.QueueSnapshot(dept)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		out := snapshotResponse{Department: dept, Entries: make([]snapshotEntryResponse, 0, len(entries))}
		for _, e := range entries {
			out.Entries = append(out.Entries, snapshotEntryResponse{
				VisitID:     e.VisitID,
				PatientID:   e.PatientID,
				QueueNumber: e.QueueNumber,
				Lane:        e.Lane,
				Position:    e.Position,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// laneEntriesHandler godoc
// @Summary Entradas de una lane
// @Tags queue
// @Produce json
// @Param department path string true "Departamento" Enums(OPD, Billing, Pharmacy, Appointment)
// @Param lane path string true "Lane" Enums(normal, priority)
// @Success 200 {array} visitResponse
// @Failure 400 {object} errorResponse "lane inválida"
// @Failure 404 {object} errorResponse "department not found"
// @Router /departments/{department}/lanes/{lane} [get]
func laneEntriesHandler(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dept, ok := departmentParam(w, r)
		if !ok {
			return
		}
		lane, ok := ParseLane(chi.URLParam(r, "lane"))
		if !ok {
			writeError(w, http.StatusBadRequest, "lane must be normal or priority")
			return
		}

		items, err := m.LaneEntries(dept, lane)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		out := make([]visitResponse, 0, len(items))
		for _, v := range items {
			out = append(out, toVisitResponse(v))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// statsHandler godoc
// @Summary Estadísticas del departamento
// @Tags queue
// @Produce json
// @Param department path string true "Departamento" Enums(OPD, Billing, Pharmacy, Appointment)
// @Success 200 {object} statsResponse
// @Failure 404 {object} errorResponse "department not found"
// @Router /departments/{department}/stats [get]
func statsHandler(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dept, ok := departmentParam(w, r)
		if !ok {
			return
		}

		st, err := m.Stats(dept)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, statsResponse{
			Department:                st.Department,
			WaitingNormal:             st.Waiting.Normal,
			WaitingPriority:           st.Waiting.Priority,
			InProgress:                st.InProgress,
			Completed:                 st.Completed,
			Cancelled:                 st.Cancelled,
			AverageServiceTimeSeconds: seconds(st.AverageServiceTime),
			AverageActualWaitSeconds:  seconds(st.AverageActualWait),
		})
	}
}

// serviceTimeHandler godoc
// @Summary Tiempo promedio de atención
// @Tags queue
// @Produce json
// @Param department path string true "Departamento" Enums(OPD, Billing, Pharmacy, Appointment)
// @Success 200 {object} serviceTimeResponse
// @Failure 404 {object} errorResponse "department not found"
// @Router /departments/{department}/service-time [get]
func serviceTimeHandler(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dept, ok := departmentParam(w, r)
		if !ok {
			return
		}

		avg, err := m.AverageServiceTime(dept)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, serviceTimeResponse{
			Department:                dept,
			AverageServiceTimeSeconds: seconds(avg),
		})
	}
}

func departmentParam(w http.ResponseWriter, r *http.Request) (Department, bool) {
	d, ok := ParseDepartment(chi.URLParam(r, "department"))
	if !ok {
		writeError(w, http.StatusNotFound, "department not found")
		return "", false
	}
	return d, true
}

func toVisitResponse(v VisitRecord) visitResponse {
	out := visitResponse{
		ID:                   v.ID,
		PatientID:            v.PatientID,
		Department:           v.Department,
		Lane:                 v.Lane,
		PriorityClass:        v.PriorityClass,
		QueueNumber:          v.QueueNumber,
		Position:             v.Position,
		State:                v.State,
		EnqueuedAt:           v.EnqueuedAt,
		StartedAt:            v.StartedAt,
		FinishedAt:           v.FinishedAt,
		CancelledAt:          v.CancelledAt,
		CancelReason:         v.CancelReason,
		EstimatedWaitSeconds: seconds(v.EstimatedWait),
	}
	if v.ActualWait != nil {
		s := seconds(*v.ActualWait)
		out.ActualWaitSeconds = &s
	}
	return out
}

func seconds(d time.Duration) int64 {
	return int64(d / time.Second)
}

// writeDomainError traduce la taxonomía de errores del paquete a status HTTP.
func writeDomainError(w http.ResponseWriter, err error) {
	var dup *DuplicateVisitError
	switch {
	case errors.As(err, &dup):
		writeJSON(w, http.StatusConflict, errorResponse{
			Error:               dup.Error(),
			ExistingVisitID:     dup.VisitID,
			ExistingQueueNumber: dup.QueueNumber,
		})
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrInvalidStateTransition):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
