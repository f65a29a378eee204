package flow

import "strings"

// Input is the parsed request payload. Field tags are the provider's webhook
// parameter names; the web transport posts the same names as JSON.
type Input struct {
	From              string `mapstructure:"From"`
	CallSid           string `mapstructure:"CallSid"`
	Digits            string `mapstructure:"Digits"`
	SpeechResult      string `mapstructure:"SpeechResult"`
	RecordingStatus   string `mapstructure:"RecordingStatus"`
	RecordingSid      string `mapstructure:"RecordingSid"`
	RecordingURL      string `mapstructure:"RecordingUrl"`
	RecordingDuration int    `mapstructure:"RecordingDuration"`
}

// Pressed reports whether key appears in the captured digits.
func (in *Input) Pressed(key string) bool {
	return strings.Contains(in.Digits, key)
}

// RecordingCompleted is the provider's status for a finished recording.
const RecordingCompleted = "completed"
