package simulator

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roboyoz/hotline/internal/flow"
	"github.com/roboyoz/hotline/internal/interview"
	"github.com/roboyoz/hotline/internal/messages"
	"github.com/roboyoz/hotline/internal/webserver"
)

func startHotline(t *testing.T) (*httptest.Server, *interview.MemoryStore) {
	t.Helper()
	topics, err := flow.NewTopics(flow.DefaultTopics())
	require.NoError(t, err)
	store := interview.NewMemoryStore()
	srv, err := webserver.New(webserver.Config{
		Machine: flow.NewMachine(messages.Default(), topics, flow.DefaultRecordingPolicy()),
		Store:   store,
	})
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, store
}

func TestRun_FullInterview(t *testing.T) {
	ts, store := startHotline(t)
	var transcript bytes.Buffer

	script := &Script{Steps: []Step{
		{Text: "1"},
		{Text: "I'm Ada and I sat next to Besha in school", Key: "#"},
		{Text: "We met at band camp", Key: "#"},
		{Text: "", Key: "#"},
		{Text: "She once ate a whole cake on a dare"},
		{Text: "All the best to you both", Key: "*"},
		{Text: "Ada again, sorry", Key: "#"},
		{Text: "Be happy"},
		{Text: ""},
	}}
	sim := &Simulator{
		BaseURL:  ts.URL,
		Identity: "ada",
		Prompter: script,
		Out:      &transcript,
		HTTP:     ts.Client(),
	}

	res, err := sim.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, res.HungUp)
	assert.True(t, strings.HasPrefix(res.CallSid, "CA"))
	assert.Equal(t, 6, res.Recordings, "silent answers are not saved")

	iv, err := store.LoadInterview(context.Background(), "client:ada")
	require.NoError(t, err)
	assert.Equal(t, "ada", iv.CallerName)
	assert.Equal(t, "Besha", iv.SelectedTopic)
	assert.Len(t, iv.AnsweredQuestions, 5)
	assert.Len(t, iv.Recordings, 6)
	assert.Equal(t, []string{res.CallSid}, iv.Calls)
	for _, rec := range iv.Recordings {
		assert.True(t, strings.HasPrefix(rec.URI, DefaultRecordingBaseURL+"RE"), rec.URI)
		assert.Equal(t, "Besha", rec.Topic)
		assert.NotEmpty(t, rec.Question)
	}

	out := transcript.String()
	assert.Contains(t, out, "> Should we discuss your experiences with Besha or with Schuyler?")
	assert.Contains(t, out, "< 1\n")
	assert.Contains(t, out, "> Thanks for joining us for the podcast.")
}

func TestRun_SpeechPicksTopic(t *testing.T) {
	ts, store := startHotline(t)

	sim := &Simulator{
		BaseURL:  ts.URL,
		Identity: "sam",
		Prompter: &Script{Steps: []Step{{Text: "Schuyler please"}}},
	}
	res, err := sim.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, res.HungUp, "script ran out at the first question")

	iv, err := store.LoadInterview(context.Background(), "client:sam")
	require.NoError(t, err)
	assert.Equal(t, "Schuyler", iv.SelectedTopic)
	assert.Len(t, iv.AnsweredQuestions, 1)
	assert.Empty(t, iv.Recordings)
}

func TestRun_ServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	sim := &Simulator{BaseURL: ts.URL, Identity: "ada", Prompter: &Script{}}
	_, err := sim.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestRun_RequiresIdentityAndPrompter(t *testing.T) {
	_, err := (&Simulator{Prompter: &Script{}}).Run(context.Background())
	assert.Error(t, err)
	_, err = (&Simulator{Identity: "ada"}).Run(context.Background())
	assert.Error(t, err)
}

func TestRun_EndlessRedirects(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"say":[],"redirect":"answer"}`)) //nolint:errcheck
	}))
	defer ts.Close()

	sim := &Simulator{BaseURL: ts.URL, Identity: "ada", Prompter: &Script{}}
	res, err := sim.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, MaxSteps, res.Requests)
}

func TestSpeakingSeconds(t *testing.T) {
	tests := []struct {
		answer string
		want   int
	}{
		{"", 0},
		{"   ", 0},
		{"hi", 1},
		{"hi there", 1},
		{"one two three", 2},
		{"one two three four five six", 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, speakingSeconds(tt.answer), tt.answer)
	}
}

func TestScript_HangsUpWhenExhausted(t *testing.T) {
	s := &Script{Steps: []Step{{Text: "1"}}}
	got, err := s.Gather("", flow.GatherOptions{})
	require.NoError(t, err)
	assert.Equal(t, "1", got)

	_, _, err = s.Record("", flow.RecordOptions{})
	assert.ErrorIs(t, err, ErrHangUp)
}
