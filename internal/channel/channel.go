// Package channel provides the outbound agent-command channel sinks.
// Delivery is best-effort and fire-and-forget; the hub never awaits an
// acknowledgment from the upstream side.
package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Sink accepts one formatted command string for a target device.
type Sink interface {
	Send(ctx context.Context, deviceID, command string) error
	Close() error
}

// httpSink forwards commands to the upstream agent server as JSON.
type httpSink struct {
	url    string
	client *http.Client
}

// NewHTTPSink creates a Sink that POSTs commands to url.
func NewHTTPSink(url string, timeout time.Duration) Sink {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &httpSink{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (s *httpSink) Send(ctx context.Context, deviceID, command string) error {
	body, err := json.Marshal(map[string]string{
		"device_id": deviceID,
		"command":   command,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal command: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to forward command: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("upstream rejected command: %s", resp.Status)
	}
	return nil
}

func (s *httpSink) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

// dropSink logs and discards commands. Used when no upstream channel is
// configured.
type dropSink struct {
	log *logrus.Logger
}

// NewDropSink creates a Sink that logs each command and drops it.
func NewDropSink(log *logrus.Logger) Sink {
	return &dropSink{log: log}
}

func (s *dropSink) Send(_ context.Context, deviceID, command string) error {
	s.log.WithFields(logrus.Fields{
		"device_id": deviceID,
		"command":   command,
	}).Info("No upstream channel configured, dropping command")
	return nil
}

func (s *dropSink) Close() error {
	return nil
}
