package flow

import "github.com/roboyoz/hotline/internal/messages"

// Responder is the set of things a state can ask the caller's transport to do.
// Say and Gather resolve slugs through the message catalog.
type Responder interface {
	Say(slug string, values messages.Values) error
	// SayLiteral speaks text as-is, without a catalog lookup.
	SayLiteral(text string)
	// Gather collects digits or speech and posts them to target. The optional
	// slug is spoken while waiting.
	Gather(target State, opts GatherOptions, slug string, values messages.Values) error
	Pause(seconds int)
	Redirect(target State)
	// Record captures audio and posts the result to target.
	Record(target State, opts RecordOptions)
}

// GatherOptions configure input collection.
type GatherOptions struct {
	Input               []string `json:"input,omitempty"`
	NumDigits           int      `json:"numDigits,omitempty"`
	Timeout             int      `json:"timeout,omitempty"`
	SpeechTimeout       string   `json:"speechTimeout,omitempty"`
	SpeechModel         string   `json:"speechModel,omitempty"`
	Hints               string   `json:"hints,omitempty"`
	ActionOnEmptyResult bool     `json:"actionOnEmptyResult,omitempty"`
}

// RecordOptions configure audio capture. Zero values take transport defaults.
type RecordOptions struct {
	Timeout     int    `json:"timeout,omitempty"`
	FinishOnKey string `json:"finishOnKey,omitempty"`
	MaxLength   int    `json:"maxLength,omitempty"`
	PlayBeep    bool   `json:"playBeep"`
}
