package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTopics_Validation(t *testing.T) {
	_, err := NewTopics(nil)
	assert.Error(t, err)

	_, err = NewTopics([]Topic{{Name: "Besha"}})
	assert.ErrorContains(t, err, "questions slug")

	_, err = NewTopics([]Topic{
		{Name: "Besha", Questions: "a"},
		{Name: "Besha", Questions: "b"},
	})
	assert.ErrorContains(t, err, "duplicate")

	_, err = NewTopics([]Topic{{Name: "Besha", Questions: "a", Patterns: []string{"[b"}}})
	assert.ErrorContains(t, err, "pattern")
}

func TestTopics_OtherAndNames(t *testing.T) {
	ts, err := NewTopics(DefaultTopics())
	require.NoError(t, err)

	assert.Equal(t, []string{"Besha", "Schuyler"}, ts.Names())
	assert.Equal(t, "Schuyler", ts.Other("Besha"))
	assert.Equal(t, "Besha", ts.Other("Schuyler"))
	assert.Equal(t, "Besha", ts.Other(""))

	single, err := NewTopics([]Topic{{Name: "Solo", Questions: "q"}})
	require.NoError(t, err)
	assert.Empty(t, single.Other("Solo"))
}

func TestTopics_Match(t *testing.T) {
	ts, err := NewTopics([]Topic{
		{Name: "Besha", Digit: "1", Patterns: []string{"[bvptdf]*"}, Questions: "b"},
		{Name: "Schuyler", Digit: "2", Patterns: []string{"s*"}, Questions: "s"},
		{Name: "Dana", Digit: "3", Questions: "d"},
	})
	require.NoError(t, err)

	tests := []struct {
		digits, speech string
		want           string
	}{
		{digits: "1", want: "Besha"},
		{digits: " 3 ", want: "Dana"},
		{digits: "9", speech: "Besha"},
		{speech: "dana", want: "Dana"},
		{speech: "I want Dana", want: "Dana"},
		{speech: "Schuyler, then Besha", want: "Schuyler"},
		{speech: "not Besha, Schuyler", want: "Besha"},
		{speech: "Dayna", want: "Besha"},
		{speech: "Schuyler", want: "Schuyler"},
		{speech: "sky", want: "Schuyler"},
		{speech: "  ", want: ""},
		{speech: "¿Besha?", want: "Besha"},
		{speech: "Émile", want: ""},
	}
	for _, tt := range tests {
		got, ok := ts.Match(tt.digits, tt.speech)
		if tt.want == "" {
			assert.False(t, ok, "digits=%q speech=%q matched %s", tt.digits, tt.speech, got.Name)
			continue
		}
		require.True(t, ok, "digits=%q speech=%q", tt.digits, tt.speech)
		assert.Equal(t, tt.want, got.Name, "digits=%q speech=%q", tt.digits, tt.speech)
	}
}

func TestSpokenWords(t *testing.T) {
	assert.Equal(t, []string{"let's", "talk", "about", "besha"}, spokenWords("Let's talk about BÉSHA!"))
	assert.Empty(t, spokenWords("..."))
}
