package logsink

import (
	"context"

	"hospital-queue/internal/platform/logger"
)

// Notifier solo deja el mensaje en el log. Default en dev y cuando no hay webhook.
type Notifier struct {
	log logger.Logger
}

func New(log logger.Logger) *Notifier {
	if log == nil {
		log = logger.Nop()
	}
	return &Notifier{log: log.With(map[string]any{"component": "notify"})}
}

func (n *Notifier) Notify(_ context.Context, patientID, message string) error {
	n.log.Info("patient notification", map[string]any{
		"patient_id": patientID,
		"message":    message,
	})
	return nil
}
