package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	DefaultTimeout = 5 * time.Second
	DefaultBackoff = 200 * time.Millisecond

	maxBody = 1 << 20
)

// Client envuelve *http.Client para los adapters salientes (webhooks de notificación).
type Client struct {
	HTTP    *http.Client
	BaseURL string // opcional; si se define, PostJSON acepta paths relativos

	// Reintentos solo para errores de transporte y 5xx.
	Retries int
	Backoff time.Duration
}

// New crea un Client con timeout por intento.
func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		HTTP:    &http.Client{Timeout: timeout},
		Backoff: DefaultBackoff,
	}
}

// NewWithBaseURL crea un Client con BaseURL + timeout.
func NewWithBaseURL(baseURL string, timeout time.Duration) (*Client, error) {
	c := New(timeout)
	if strings.TrimSpace(baseURL) == "" {
		return c, nil
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, errors.Wrap(err, "invalid base url")
	}
	c.BaseURL = strings.TrimRight(baseURL, "/")
	return c, nil
}

// HTTPError representa una respuesta no-2xx.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("http error: status=%d", e.StatusCode)
	}
	return fmt.Sprintf("http error: status=%d body=%s", e.StatusCode, e.Body)
}

// Temporary: vale la pena reintentar.
func (e *HTTPError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// PostJSON envía in como JSON y decodifica la respuesta en out (opcional).
// Retorna *HTTPError si el último intento no fue 2xx.
func (c *Client) PostJSON(ctx context.Context, pathOrURL string, headers map[string]string, in, out any) error {
	if c == nil || c.HTTP == nil {
		return errors.New("httpclient: nil client")
	}

	fullURL, err := c.resolveURL(pathOrURL)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(in)
	if err != nil {
		return errors.Wrap(err, "httpclient: marshal json")
	}

	var lastErr error
	for attempt := 0; attempt <= c.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return errors.Wrap(ctx.Err(), "httpclient: retry aborted")
			case <-time.After(c.Backoff * time.Duration(attempt)):
			}
		}

		lastErr = c.do(ctx, fullURL, headers, payload, out)
		if lastErr == nil {
			return nil
		}
		var httpErr *HTTPError
		if errors.As(lastErr, &httpErr) && !httpErr.Temporary() {
			return lastErr
		}
	}
	return lastErr
}

func (c *Client) do(ctx context.Context, fullURL string, headers map[string]string, payload []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "httpclient: new request")
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		if strings.TrimSpace(k) == "" {
			continue
		}
		req.Header.Set(k, v)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return errors.Wrap(err, "httpclient: do request")
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxBody))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	return errors.Wrap(json.Unmarshal(raw, out), "httpclient: unmarshal json")
}

func (c *Client) resolveURL(pathOrURL string) (string, error) {
	pathOrURL = strings.TrimSpace(pathOrURL)
	if pathOrURL == "" {
		return "", errors.New("httpclient: empty url")
	}

	if strings.HasPrefix(pathOrURL, "http://") || strings.HasPrefix(pathOrURL, "https://") {
		return pathOrURL, nil
	}

	if strings.TrimSpace(c.BaseURL) == "" {
		return "", errors.New("httpclient: relative path requires BaseURL")
	}

	if !strings.HasPrefix(pathOrURL, "/") {
		pathOrURL = "/" + pathOrURL
	}
	return c.BaseURL + pathOrURL, nil
}
