// Package alert reports call-flow failures to an operator channel.
package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Notifier delivers an error report. Callers treat delivery as best-effort.
type Notifier interface {
	Notify(ctx context.Context, err error) error
}

// subjectLimit caps the summary line of a report.
const subjectLimit = 80

// Subject is the one-line summary of err.
func Subject(err error) string {
	s := err.Error()
	if len(s) > subjectLimit {
		s = s[:subjectLimit]
	}
	return s
}

// SlackWebhook posts reports to a Slack incoming-webhook URL.
type SlackWebhook struct {
	URL  string
	HTTP *http.Client
	// Source names the deployment in the message, e.g. a hostname.
	Source string
}

func (s *SlackWebhook) Notify(ctx context.Context, err error) error {
	if s.URL == "" {
		return fmt.Errorf("missing slack webhook url")
	}
	if err == nil {
		return nil
	}
	client := s.HTTP
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	text := fmt.Sprintf("*%s*\n```%s```", Subject(err), err.Error())
	if s.Source != "" {
		text = fmt.Sprintf("[%s] %s", s.Source, text)
	}
	body, merr := json.Marshal(map[string]string{"text": text})
	if merr != nil {
		return merr
	}

	req, rerr := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if rerr != nil {
		return rerr
	}
	req.Header.Set("Content-Type", "application/json")

	res, derr := client.Do(req)
	if derr != nil {
		return derr
	}
	defer res.Body.Close()
	if res.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("slack webhook: %s: %s", res.Status, bytes.TrimSpace(msg))
	}
	return nil
}

// LogNotifier writes reports to a logger.
type LogNotifier struct {
	Logger *slog.Logger
}

func (l LogNotifier) Notify(ctx context.Context, err error) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.ErrorContext(ctx, "call flow failure", "subject", Subject(err), "error", err)
	return nil
}

// Multi fans a report out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, err error) error {
	var errs []error
	for _, n := range m {
		if nerr := n.Notify(ctx, err); nerr != nil {
			errs = append(errs, nerr)
		}
	}
	return errors.Join(errs...)
}
