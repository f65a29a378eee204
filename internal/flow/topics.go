package flow

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/gobwas/glob"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Topic is one subject a caller can be interviewed about.
type Topic struct {
	Name string
	// Digit selects the topic from the keypad.
	Digit string
	// Patterns are globs matched against the first spoken word, after case
	// and accent folding.
	Patterns []string
	// Questions is the catalog slug holding the topic's ordered questions.
	Questions string

	globs []glob.Glob
}

// Topics is the ordered set of selectable topics. Order breaks ties.
type Topics struct {
	list []Topic
}

// DefaultTopics are the two subjects the hotline launched with.
func DefaultTopics() []Topic {
	return []Topic{
		{Name: "Besha", Digit: "1", Patterns: []string{"[bvptdf]*"}, Questions: "besha_questions"},
		{Name: "Schuyler", Digit: "2", Patterns: []string{"s*"}, Questions: "schuyler_questions"},
	}
}

// NewTopics compiles the patterns of each topic.
func NewTopics(topics []Topic) (*Topics, error) {
	if len(topics) == 0 {
		return nil, fmt.Errorf("at least one topic is required")
	}
	out := &Topics{list: make([]Topic, 0, len(topics))}
	seen := make(map[string]bool)
	for _, t := range topics {
		if t.Name == "" || t.Questions == "" {
			return nil, fmt.Errorf("topic %q needs a name and a questions slug", t.Name)
		}
		if seen[t.Name] {
			return nil, fmt.Errorf("duplicate topic %q", t.Name)
		}
		seen[t.Name] = true
		t.globs = make([]glob.Glob, 0, len(t.Patterns))
		for _, p := range t.Patterns {
			g, err := glob.Compile(fold(p))
			if err != nil {
				return nil, fmt.Errorf("topic %q pattern %q: %w", t.Name, p, err)
			}
			t.globs = append(t.globs, g)
		}
		out.list = append(out.list, t)
	}
	return out, nil
}

// Get returns the topic with the given name.
func (ts *Topics) Get(name string) (Topic, bool) {
	for _, t := range ts.list {
		if t.Name == name {
			return t, true
		}
	}
	return Topic{}, false
}

// Other returns the first topic that is not name, or "" when there is none.
func (ts *Topics) Other(name string) string {
	for _, t := range ts.list {
		if t.Name != name {
			return t.Name
		}
	}
	return ""
}

// Names returns topic names in order.
func (ts *Topics) Names() []string {
	names := make([]string, len(ts.list))
	for i, t := range ts.list {
		names[i] = t.Name
	}
	return names
}

// Match resolves caller input to a topic. Keypad digits win over speech; an
// unmapped digit is not retried against speech. Speech first looks for the
// earliest topic name in the transcript, then tries each topic's patterns on
// the first word in configured order.
func (ts *Topics) Match(digits, speech string) (Topic, bool) {
	if d := strings.TrimSpace(digits); d != "" {
		for _, t := range ts.list {
			if t.Digit != "" && t.Digit == d {
				return t, true
			}
		}
		return Topic{}, false
	}

	words := spokenWords(speech)
	if len(words) == 0 {
		return Topic{}, false
	}
	for _, w := range words {
		for _, t := range ts.list {
			if w == fold(t.Name) {
				return t, true
			}
		}
	}
	for _, t := range ts.list {
		for _, g := range t.globs {
			if g.Match(words[0]) {
				return t, true
			}
		}
	}
	return Topic{}, false
}

// fold lowercases s and strips accents.
func fold(s string) string {
	tr := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(tr, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// spokenWords folds a transcript and splits it into words, dropping
// punctuation.
func spokenWords(s string) []string {
	return strings.FieldsFunc(fold(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}
