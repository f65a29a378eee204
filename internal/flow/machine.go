// Package flow is the call flow: a closed table of states, each of which reads
// the caller's input and interview record, tells the transport what to do next,
// and updates the record.
package flow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roboyoz/hotline/internal/interview"
	"github.com/roboyoz/hotline/internal/messages"
)

var (
	// ErrMissingTopic means a state needed a selected topic and there was none.
	ErrMissingTopic = errors.New("interview is missing a topic")
	// ErrMissingRecordingSid means a completed-recording callback had no id.
	ErrMissingRecordingSid = errors.New("RecordingSid is required")
)

// RecordingPolicy holds the recording heuristics. Durations are seconds.
type RecordingPolicy struct {
	// Answers longer than LongSeconds are acknowledged.
	LongSeconds int
	// Answers longer than ShortSeconds (and not long) count as a skip.
	ShortSeconds int
	// Timeout is the silence, in seconds, that ends a recording.
	Timeout int
	// FinishOnKey lists keypad keys that end a recording.
	FinishOnKey string
}

// DefaultRecordingPolicy acknowledges answers over five seconds and treats
// shorter non-empty ones as skips.
func DefaultRecordingPolicy() RecordingPolicy {
	return RecordingPolicy{LongSeconds: 5, ShortSeconds: 0, Timeout: 5, FinishOnKey: "#*"}
}

type handler func(r Responder, in *Input, iv *interview.Interview) error

// Machine runs states against a message catalog and topic set.
type Machine struct {
	catalog   *messages.Catalog
	topics    *Topics
	recording RecordingPolicy
	handlers  map[State]handler
}

// NewMachine wires the state table.
func NewMachine(catalog *messages.Catalog, topics *Topics, recording RecordingPolicy) *Machine {
	m := &Machine{catalog: catalog, topics: topics, recording: recording}
	m.handlers = map[State]handler{
		Answer:         m.answer,
		WelcomeBack:    m.welcomeBack,
		RequestTopic:   m.requestTopic,
		ChooseTopic:    m.chooseTopic,
		TopicChosen:    m.topicChosen,
		AskQuestion:    m.askQuestion,
		AnswerQuestion: m.answerQuestion,
		Finished:       m.finished,
		StartOver:      m.startOver,
		Goodbye:        m.goodbye,
		SaveRecording:  m.saveRecording,
	}
	return m
}

// spoken lists every catalog slug a state can say.
var spoken = []string{
	"greeting", "introduction", "welcome_back", "request_subject", "no_idea_who",
	"subject_chosen", "going_back", "interstitial", "question_skipped",
	"no_more_questions", "goodbye",
}

// MissingMessages lists the slugs the flow can speak, topic question lists
// included, that the catalog does not have.
func (m *Machine) MissingMessages() []string {
	var missing []string
	for _, slug := range spoken {
		if !m.catalog.Has(slug) {
			missing = append(missing, slug)
		}
	}
	for _, name := range m.topics.Names() {
		t, _ := m.topics.Get(name)
		if !m.catalog.Has(t.Questions) {
			missing = append(missing, t.Questions)
		}
	}
	return missing
}

// Catalog returns the machine's message catalog.
func (m *Machine) Catalog() *messages.Catalog {
	return m.catalog
}

// Run executes one state.
func (m *Machine) Run(state State, r Responder, in *Input, iv *interview.Interview) error {
	h, ok := m.handlers[state]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownState, state)
	}
	if err := h(r, in, iv); err != nil {
		return fmt.Errorf("%s: %w", state, err)
	}
	return nil
}

func (m *Machine) answer(r Responder, _ *Input, iv *interview.Interview) error {
	r.Pause(1)
	if err := r.Say("greeting", nil); err != nil {
		return err
	}
	if len(iv.AnsweredQuestions) > 0 {
		iv.Introduced = false
		r.Redirect(WelcomeBack)
		return nil
	}
	if err := r.Say("introduction", nil); err != nil {
		return err
	}
	iv.Introduced = true
	r.Redirect(RequestTopic)
	return nil
}

func (m *Machine) welcomeBack(r Responder, _ *Input, iv *interview.Interview) error {
	// The last question may never have been answered; ask it again.
	iv.DropLast(1)
	next := RequestTopic
	if iv.SelectedTopic != "" {
		next = TopicChosen
	}
	return r.Gather(next, GatherOptions{
		Input:               []string{"dtmf"},
		NumDigits:           1,
		Timeout:             2,
		ActionOnEmptyResult: true,
	}, "welcome_back", nil)
}

func (m *Machine) requestTopic(r Responder, in *Input, iv *interview.Interview) error {
	if in.Pressed("*") {
		if err := m.introduce(r, iv); err != nil {
			return err
		}
	}
	return r.Gather(ChooseTopic, GatherOptions{
		Input:               []string{"dtmf", "speech"},
		SpeechModel:         "phone_call",
		Hints:               strings.Join(m.topics.Names(), ", "),
		NumDigits:           1,
		SpeechTimeout:       "2",
		ActionOnEmptyResult: true,
	}, "request_subject", nil)
}

func (m *Machine) chooseTopic(r Responder, in *Input, iv *interview.Interview) error {
	switch {
	case in.Pressed("*"):
		if err := m.introduce(r, iv); err != nil {
			return err
		}
		r.Redirect(RequestTopic)
		return nil
	case in.Pressed("0"):
		r.Redirect(RequestTopic)
		return nil
	}

	topic, ok := m.topics.Match(in.Digits, in.SpeechResult)
	if !ok {
		if err := r.Say("no_idea_who", nil); err != nil {
			return err
		}
		r.Redirect(RequestTopic)
		return nil
	}
	if topic.Name != iv.SelectedTopic {
		questions, err := m.catalog.Variants(topic.Questions)
		if err != nil {
			return err
		}
		// Only history that belongs to the new topic still counts.
		iv.KeepQuestions(questions)
		iv.SelectedTopic = topic.Name
	}
	r.Redirect(TopicChosen)
	return nil
}

func (m *Machine) topicChosen(r Responder, in *Input, iv *interview.Interview) error {
	if iv.SelectedTopic == "" {
		return ErrMissingTopic
	}
	if in.Pressed("*") {
		if err := m.introduce(r, iv); err != nil {
			return err
		}
	}
	if err := r.Say("subject_chosen", messages.Values{
		"name":  iv.SelectedTopic,
		"other": m.topics.Other(iv.SelectedTopic),
	}); err != nil {
		return err
	}
	r.Redirect(AskQuestion)
	return nil
}

func (m *Machine) askQuestion(r Responder, in *Input, iv *interview.Interview) error {
	if in.Pressed("0") {
		r.Redirect(RequestTopic)
		return nil
	}
	topic, err := m.currentTopic(iv)
	if err != nil {
		return err
	}
	if in.Pressed("*") {
		iv.DropLast(2)
		if err := m.introduce(r, iv); err != nil {
			return err
		}
	}

	question, err := m.catalog.Next(topic.Questions, nil, iv.AnsweredQuestions)
	if err != nil {
		return err
	}
	if question == "" {
		r.Redirect(Finished)
		return nil
	}
	r.SayLiteral(question)
	r.Record(AnswerQuestion, RecordOptions{
		Timeout:     m.recording.Timeout,
		FinishOnKey: m.recording.FinishOnKey,
	})
	// Asked counts as answered whether or not the recording succeeds.
	iv.Ask(question)
	return nil
}

func (m *Machine) answerQuestion(r Responder, in *Input, iv *interview.Interview) error {
	switch {
	case in.Pressed("0"):
		iv.DropLast(1)
		r.Redirect(RequestTopic)
		return nil
	case in.Pressed("*"):
		iv.DropLast(2)
		if err := r.Say("going_back", nil); err != nil {
			return err
		}
	case in.RecordingDuration > m.recording.LongSeconds:
		if err := r.Say("interstitial", nil); err != nil {
			return err
		}
	case in.RecordingDuration > m.recording.ShortSeconds:
		if err := r.Say("question_skipped", nil); err != nil {
			return err
		}
	}
	r.Redirect(AskQuestion)
	return nil
}

func (m *Machine) finished(r Responder, _ *Input, iv *interview.Interview) error {
	return r.Gather(Goodbye, GatherOptions{
		Input:               []string{"dtmf"},
		NumDigits:           1,
		Timeout:             3,
		ActionOnEmptyResult: true,
	}, "no_more_questions", messages.Values{"other": m.topics.Other(iv.SelectedTopic)})
}

func (m *Machine) startOver(r Responder, _ *Input, iv *interview.Interview) error {
	// Keep the first answer so the caller isn't asked to introduce themselves again.
	iv.Truncate(1)
	iv.SelectedTopic = ""
	iv.Introduced = true
	r.Redirect(RequestTopic)
	return nil
}

func (m *Machine) goodbye(r Responder, in *Input, _ *interview.Interview) error {
	if in.Pressed("*") {
		r.Redirect(StartOver)
		return nil
	}
	if err := r.Say("goodbye", nil); err != nil {
		return err
	}
	r.Pause(2)
	return nil
}

func (m *Machine) saveRecording(_ Responder, in *Input, iv *interview.Interview) error {
	if in.RecordingStatus != RecordingCompleted {
		return nil
	}
	if in.RecordingSid == "" {
		return ErrMissingRecordingSid
	}
	iv.AddRecording(interview.Recording{
		CallSid:      in.CallSid,
		RecordingSid: in.RecordingSid,
		URI:          in.RecordingURL,
		Duration:     in.RecordingDuration,
		Topic:        iv.SelectedTopic,
		Question:     iv.LastQuestion(),
	})
	return nil
}

func (m *Machine) introduce(r Responder, iv *interview.Interview) error {
	if err := r.Say("introduction", nil); err != nil {
		return err
	}
	iv.Introduced = true
	return nil
}

func (m *Machine) currentTopic(iv *interview.Interview) (Topic, error) {
	if iv.SelectedTopic == "" {
		return Topic{}, ErrMissingTopic
	}
	topic, ok := m.topics.Get(iv.SelectedTopic)
	if !ok {
		return Topic{}, fmt.Errorf("%w: unknown topic %q", ErrMissingTopic, iv.SelectedTopic)
	}
	return topic, nil
}
