package notify

import "context"

// Notifier entrega un mensaje a un paciente. El canal (SMS, push, inbox) lo decide el adapter.
type Notifier interface {
	Notify(ctx context.Context, patientID, message string) error
}
