package webhook

import (
	"context"
	"strings"
	"time"

	"hospital-queue/internal/platform/httpclient"

	"github.com/pkg/errors"
)

var ErrNotConfigured = errors.New("notify webhook not configured")

type Config struct {
	URL    string
	APIKey string

	APIKeyHeader string
	Timeout      time.Duration
	Retries      int
}

// Notifier hace POST {patient_id, message} al gateway de mensajería (SMS / push).
type Notifier struct {
	client       *httpclient.Client
	url          string
	apiKey       string
	apiKeyHeader string
}

func New(cfg Config) (*Notifier, error) {
	url := strings.TrimSpace(cfg.URL)
	if url == "" {
		return nil, ErrNotConfigured
	}

	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = "X-Api-Key"
	}

	c := httpclient.New(cfg.Timeout)
	c.Retries = cfg.Retries

	return &Notifier{
		client:       c,
		url:          url,
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiKeyHeader: h,
	}, nil
}

type notifyRequest struct {
	PatientID string `json:"patient_id"`
	Message   string `json:"message"`
}

func (n *Notifier) Notify(ctx context.Context, patientID, message string) error {
	headers := map[string]string{}
	if n.apiKey != "" {
		headers[n.apiKeyHeader] = n.apiKey
	}

	err := n.client.PostJSON(ctx, n.url, headers, notifyRequest{
		PatientID: patientID,
		Message:   message,
	}, nil)
	return errors.Wrapf(err, "notify patient %s", patientID)
}
