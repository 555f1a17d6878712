package queue

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeNotifier struct {
	patientID string
	message   string
	err       error
}

func (n *fakeNotifier) Notify(_ context.Context, patientID, message string) error {
	n.patientID = patientID
	n.message = message
	return n.err
}

func TestFanOut_DeliversToAllSinksAndReportsFailures(t *testing.T) {
	var calls int
	ok := EventSinkFunc(func(context.Context, Event) error { calls++; return nil })
	bad := EventSinkFunc(func(context.Context, Event) error { calls++; return errors.New("boom") })

	err := FanOut(ok, bad, nil, ok).HandleEvent(context.Background(), Event{Type: EventCalled})
	if err == nil || !strings.Contains(err.Error(), "1 of 4 sinks failed") {
		t.Fatalf("expected aggregated error, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected every sink called, got %d", calls)
	}
}

func TestNotifySink_SendsPatientMessage(t *testing.T) {
	n := &fakeNotifier{}
	v := VisitRecord{PatientID: "P1", Department: DepartmentOPD, QueueNumber: 7}

	err := NotifySink(n).HandleEvent(context.Background(), Event{
		Type:    EventCalled,
		Visit:   v,
		Message: messageFor(EventCalled, v),
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if n.patientID != "P1" || !strings.Contains(n.message, "Queue number 7") {
		t.Fatalf("unexpected notification: %q to %q", n.message, n.patientID)
	}
}

func TestNotifySink_SkipsEmptyMessage(t *testing.T) {
	n := &fakeNotifier{err: errors.New("should not be called")}
	if err := NotifySink(n).HandleEvent(context.Background(), Event{}); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
}

func TestMessageFor(t *testing.T) {
	v := VisitRecord{Department: DepartmentPharmacy, Lane: LaneNormal, QueueNumber: 4, Position: 2, EstimatedWait: DefaultServiceTime}

	if msg := messageFor(EventCheckedIn, v); !strings.Contains(msg, "number 4") || !strings.Contains(msg, "15m") {
		t.Fatalf("unexpected check-in message: %q", msg)
	}

	v.CancelReason = "left the hospital"
	if msg := messageFor(EventCancelled, v); !strings.Contains(msg, "left the hospital") {
		t.Fatalf("cancel message must carry the reason: %q", msg)
	}
}
