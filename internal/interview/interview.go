// Package interview holds the per-caller conversation record and the store
// contract used to persist it between webhook requests.
package interview

import (
	"slices"
)

// Interview is the persisted state of one caller, keyed by phone number.
type Interview struct {
	PhoneNumber       string      `json:"phoneNumber" bson:"_id"`
	CallerName        string      `json:"callerName" bson:"callerName"`
	SelectedTopic     string      `json:"selectedTopic" bson:"selectedTopic"`
	AnsweredQuestions []string    `json:"answeredQuestions" bson:"answeredQuestions"`
	Introduced        bool        `json:"introduced" bson:"introduced"`
	Calls             []string    `json:"calls" bson:"calls"`
	Recordings        []Recording `json:"recordings" bson:"recordings"`
}

// Recording is metadata for one captured answer. The audio stays with the
// telephony provider or the asset store.
type Recording struct {
	CallSid      string `json:"callSid" bson:"callSid"`
	RecordingSid string `json:"recordingSid" bson:"recordingSid"`
	URI          string `json:"uri" bson:"uri"`
	Duration     int    `json:"duration" bson:"duration"`
	Topic        string `json:"topic" bson:"topic"`
	Question     string `json:"question" bson:"question"`
}

// Call links a call identifier to the caller that placed it.
type Call struct {
	CallSid     string `json:"callSid" bson:"_id"`
	PhoneNumber string `json:"phoneNumber" bson:"phoneNumber"`
}

// New returns the empty record for a first-time caller.
func New(phoneNumber string) *Interview {
	return &Interview{
		PhoneNumber:       phoneNumber,
		AnsweredQuestions: []string{},
		Calls:             []string{},
		Recordings:        []Recording{},
	}
}

// Normalize replaces nil slices left by a decoder with empty ones.
func (iv *Interview) Normalize() {
	if iv.AnsweredQuestions == nil {
		iv.AnsweredQuestions = []string{}
	}
	if iv.Calls == nil {
		iv.Calls = []string{}
	}
	if iv.Recordings == nil {
		iv.Recordings = []Recording{}
	}
}

// LastQuestion returns the most recently asked question, or "".
func (iv *Interview) LastQuestion() string {
	if len(iv.AnsweredQuestions) == 0 {
		return ""
	}
	return iv.AnsweredQuestions[len(iv.AnsweredQuestions)-1]
}

// Ask appends a question to the history.
func (iv *Interview) Ask(question string) {
	iv.AnsweredQuestions = append(iv.AnsweredQuestions, question)
}

// DropLast removes up to n questions from the end of the history.
func (iv *Interview) DropLast(n int) {
	keep := max(len(iv.AnsweredQuestions)-n, 0)
	iv.AnsweredQuestions = iv.AnsweredQuestions[:keep]
}

// Truncate shortens the history to at most n questions.
func (iv *Interview) Truncate(n int) {
	if n < len(iv.AnsweredQuestions) {
		iv.AnsweredQuestions = iv.AnsweredQuestions[:max(n, 0)]
	}
}

// KeepQuestions drops history entries that are not in questions, preserving
// order.
func (iv *Interview) KeepQuestions(questions []string) {
	iv.AnsweredQuestions = slices.DeleteFunc(iv.AnsweredQuestions, func(q string) bool {
		return !slices.Contains(questions, q)
	})
}

// AddCall records callSid and reports whether it was new.
func (iv *Interview) AddCall(callSid string) bool {
	if callSid == "" || slices.Contains(iv.Calls, callSid) {
		return false
	}
	iv.Calls = append(iv.Calls, callSid)
	return true
}

// AddRecording appends rec unless a recording with the same id is already
// present, and reports whether it was appended.
func (iv *Interview) AddRecording(rec Recording) bool {
	for _, existing := range iv.Recordings {
		if existing.RecordingSid == rec.RecordingSid {
			return false
		}
	}
	iv.Recordings = append(iv.Recordings, rec)
	return true
}

// Clone returns a deep copy.
func (iv *Interview) Clone() *Interview {
	out := *iv
	out.AnsweredQuestions = slices.Clone(iv.AnsweredQuestions)
	out.Calls = slices.Clone(iv.Calls)
	out.Recordings = slices.Clone(iv.Recordings)
	out.Normalize()
	return &out
}
