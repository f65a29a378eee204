// Package simulator places a pretend call against the web transport, standing
// in for the browser client and the provider's recording callbacks.
package simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/roboyoz/hotline/internal/flow"
	"github.com/roboyoz/hotline/internal/response"
)

// MaxSteps caps the requests one call may make.
const MaxSteps = 200

// DefaultRecordingBaseURL prefixes simulated recording URIs.
const DefaultRecordingBaseURL = "https://api.twilio.com/2010-04-01/Accounts/simulated/Recordings/"

var keypad = regexp.MustCompile(`^[0-9*#]+$`)

// Simulator drives one call through /web/<state>.
type Simulator struct {
	// BaseURL is the server origin, e.g. http://localhost:8080.
	BaseURL string
	// Identity is the browser caller; requests come from "client:<Identity>".
	Identity string
	Prompter Prompter
	// Out receives the call transcript.
	Out io.Writer

	HTTP             *http.Client
	RecordingBaseURL string
	Logger           *slog.Logger
}

// Result summarizes a finished call.
type Result struct {
	CallSid    string
	Requests   int
	Recordings int
	HungUp     bool
}

func (s *Simulator) client() *http.Client {
	if s.HTTP != nil {
		return s.HTTP
	}
	return &http.Client{Timeout: 10 * time.Second}
}

func (s *Simulator) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Run places the call and returns once the hotline stops asking for input or
// the caller hangs up.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	if s.Identity == "" {
		return nil, errors.New("identity is required")
	}
	if s.Prompter == nil {
		return nil, errors.New("prompter is required")
	}
	out := s.Out
	if out == nil {
		out = io.Discard
	}

	res := &Result{CallSid: "CA" + compactUUID()}
	from := "client:" + s.Identity
	state := flow.Answer
	params := map[string]any{}

	for res.Requests < MaxSteps {
		doc, err := s.post(ctx, state, from, res.CallSid, params)
		res.Requests++
		if err != nil {
			return res, err
		}
		prompt := speak(out, doc.Say)
		params = map[string]any{}

		switch {
		case doc.Gather != nil:
			answer, err := s.Prompter.Gather(prompt, doc.Gather.GatherOptions)
			if errors.Is(err, ErrHangUp) {
				res.HungUp = true
				return res, nil
			}
			if err != nil {
				return res, err
			}
			fmt.Fprintf(out, "< %s\n", answer)
			if keypad.MatchString(answer) {
				params["Digits"] = answer
			} else if answer != "" {
				params["SpeechResult"] = answer
			}
			state = doc.Gather.Action

		case doc.Record != nil:
			answer, key, err := s.Prompter.Record(prompt, doc.Record.RecordOptions)
			if errors.Is(err, ErrHangUp) {
				res.HungUp = true
				return res, nil
			}
			if err != nil {
				return res, err
			}
			fmt.Fprintf(out, "< %s\n", answer)
			duration := speakingSeconds(answer)
			if duration > 0 {
				if err := s.saveRecording(ctx, from, res.CallSid, duration); err != nil {
					return res, err
				}
				res.Requests++
				res.Recordings++
			}
			params["RecordingDuration"] = duration
			if key != "" {
				params["Digits"] = key
			}
			state = doc.Record.Action

		case doc.Redirect != "":
			state = doc.Redirect

		default:
			s.logger().Debug("call ended", "call_sid", res.CallSid, "requests", res.Requests)
			return res, nil
		}
	}
	return res, fmt.Errorf("call did not end after %d requests", MaxSteps)
}

// saveRecording plays the provider's recording-status callback.
func (s *Simulator) saveRecording(ctx context.Context, from, callSid string, duration int) error {
	sid := "RE" + compactUUID()
	base := s.RecordingBaseURL
	if base == "" {
		base = DefaultRecordingBaseURL
	}
	_, err := s.post(ctx, flow.SaveRecording, from, callSid, map[string]any{
		"RecordingStatus":   flow.RecordingCompleted,
		"RecordingSid":      sid,
		"RecordingUrl":      base + sid,
		"RecordingDuration": duration,
	})
	return err
}

func (s *Simulator) post(ctx context.Context, state flow.State, from, callSid string, params map[string]any) (*response.WebDocument, error) {
	body := map[string]any{"From": from, "CallSid": callSid}
	for k, v := range params {
		body[k] = v
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	url := strings.TrimSuffix(s.BaseURL, "/") + "/web/" + string(state)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("posting %s: %w", state, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("posting %s: status %d: %s", state, resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var doc response.WebDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding %s reply: %w", state, err)
	}
	return &doc, nil
}

// speak prints each line and returns the last one, which is what the caller
// is being asked.
func speak(out io.Writer, lines []response.WebSay) string {
	last := ""
	for _, l := range lines {
		fmt.Fprintf(out, "> %s\n", l.Text)
		last = l.Text
	}
	return last
}

// speakingSeconds estimates how long answer takes to say, at roughly two
// words a second.
func speakingSeconds(answer string) int {
	words := len(strings.Fields(answer))
	if words == 0 {
		return 0
	}
	return (words + 1) / 2
}

func compactUUID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
