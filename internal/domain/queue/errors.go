package queue

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrNotFound               = errors.New("not found")
	ErrDuplicateActiveVisit   = errors.New("duplicate active visit")
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// Subtipos de ErrInvalidStateTransition (errors.Is los reconoce a ambos).
	ErrNotInProgress = &transitionError{msg: "visit is not in progress"}
	ErrNotWaiting    = &transitionError{msg: "visit is not waiting (in-progress visits must be completed, not cancelled)"}
)

type transitionError struct {
	msg string
}

func (e *transitionError) Error() string { return e.msg }
func (e *transitionError) Unwrap() error { return ErrInvalidStateTransition }

// DuplicateVisitError lleva el número de cola que el paciente ya tiene.
type DuplicateVisitError struct {
	Department  Department
	VisitID     string
	QueueNumber int
	Lane        Lane
	State       State
}

func (e *DuplicateVisitError) Error() string {
	return fmt.Sprintf("patient already holds active visit %s in %s (%s lane, queue number %d)",
		e.VisitID, e.Department, e.Lane, e.QueueNumber)
}

func (e *DuplicateVisitError) Unwrap() error { return ErrDuplicateActiveVisit }

// transitions: estado destino -> estados de origen permitidos.
var transitions = map[State][]State{
	StateInProgress: {StateWaiting},
	StateCompleted:  {StateInProgress},
	StateCancelled:  {StateWaiting},
}

func canTransition(from, to State) bool {
	for _, s := range transitions[to] {
		if s == from {
			return true
		}
	}
	return false
}

// transitionErr elige el subtipo según la operación intentada.
func transitionErr(v *VisitRecord, to State) error {
	var base error = ErrInvalidStateTransition
	switch to {
	case StateCompleted:
		base = ErrNotInProgress
	case StateCancelled:
		base = ErrNotWaiting
	}
	return errors.Wrapf(base, "visit %s is %s", v.ID, v.State)
}
