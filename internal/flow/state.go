package flow

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrUnknownState is returned by ParseState for a name outside the call flow.
var ErrUnknownState = errors.New("unknown state")

// State names one step of the call flow. The set is closed: redirects, gathers
// and recordings can only target one of the constants below.
type State string

const (
	Answer         State = "answer"
	WelcomeBack    State = "welcome_back"
	RequestTopic   State = "request_topic"
	ChooseTopic    State = "choose_topic"
	TopicChosen    State = "topic_chosen"
	AskQuestion    State = "ask_question"
	AnswerQuestion State = "answer_question"
	Finished       State = "finished"
	StartOver      State = "start_over"
	Goodbye        State = "goodbye"
	SaveRecording  State = "save_recording"
)

var allStates = []State{
	Answer, WelcomeBack, RequestTopic, ChooseTopic, TopicChosen, AskQuestion,
	AnswerQuestion, Finished, StartOver, Goodbye, SaveRecording,
}

// States returns every state in flow order.
func States() []State {
	return slices.Clone(allStates)
}

// ParseState resolves the last segment of a request path. An empty path is
// the start of a call.
func ParseState(path string) (State, error) {
	name := strings.Trim(path, "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		return Answer, nil
	}
	s := State(name)
	if !slices.Contains(allStates, s) {
		return "", fmt.Errorf("%w: %q", ErrUnknownState, name)
	}
	return s, nil
}

func (s State) String() string {
	return string(s)
}
