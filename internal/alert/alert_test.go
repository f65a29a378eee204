package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "boom", Subject(errors.New("boom")))
	assert.Len(t, Subject(errors.New(strings.Repeat("x", 200))), subjectLimit)
}

func TestSlackWebhook_Posts(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	n := &SlackWebhook{URL: srv.URL, HTTP: srv.Client(), Source: "prod"}
	require.NoError(t, n.Notify(context.Background(), errors.New("ask_question: interview is missing a topic")))

	assert.True(t, strings.HasPrefix(got["text"], "[prod] *ask_question"))
	assert.Contains(t, got["text"], "missing a topic")
}

func TestSlackWebhook_Errors(t *testing.T) {
	err := (&SlackWebhook{}).Notify(context.Background(), errors.New("x"))
	assert.ErrorContains(t, err, "missing slack webhook url")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid_token", http.StatusForbidden)
	}))
	defer srv.Close()

	err = (&SlackWebhook{URL: srv.URL, HTTP: srv.Client()}).Notify(context.Background(), errors.New("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "invalid_token")
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := LogNotifier{Logger: slog.New(slog.NewTextHandler(&buf, nil))}
	require.NoError(t, n.Notify(context.Background(), errors.New("boom")))
	assert.Contains(t, buf.String(), "call flow failure")
	assert.Contains(t, buf.String(), "boom")
}

type notifierFunc func(context.Context, error) error

func (f notifierFunc) Notify(ctx context.Context, err error) error { return f(ctx, err) }

func TestMulti(t *testing.T) {
	calls := 0
	ok := notifierFunc(func(context.Context, error) error { calls++; return nil })
	bad := notifierFunc(func(context.Context, error) error { calls++; return errors.New("down") })

	err := Multi{ok, bad, ok}.Notify(context.Background(), errors.New("boom"))
	assert.Equal(t, 3, calls)
	assert.ErrorContains(t, err, "down")

	assert.NoError(t, Multi{ok}.Notify(context.Background(), errors.New("boom")))
}
