package simulator

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/roboyoz/hotline/internal/flow"
)

// ErrHangUp ends a simulated call from the caller's side.
var ErrHangUp = errors.New("caller hung up")

// Prompter stands in for the caller's phone.
type Prompter interface {
	// Gather returns keypad digits or spoken words for an open gather.
	Gather(prompt string, opts flow.GatherOptions) (string, error)
	// Record returns the spoken answer and the key that ended the
	// recording, or "" when it ended on silence.
	Record(prompt string, opts flow.RecordOptions) (answer, key string, err error)
}

// timeoutKey is the select option for letting a recording run out.
const timeoutKey = "(silence)"

// HuhPrompter asks through interactive huh forms.
type HuhPrompter struct {
	In  io.Reader
	Out io.Writer
}

var _ Prompter = (*HuhPrompter)(nil)

func (p *HuhPrompter) Gather(prompt string, opts flow.GatherOptions) (string, error) {
	var answer string
	desc := "Type digits to press keys"
	if len(opts.Input) == 0 || slices.Contains(opts.Input, "speech") {
		desc += ", or words to speak"
	}
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(prompt).
				Description(desc).
				Value(&answer),
		),
	)
	if err := p.run(form); err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

func (p *HuhPrompter) Record(prompt string, opts flow.RecordOptions) (string, string, error) {
	var answer, key string
	keys := []huh.Option[string]{huh.NewOption(timeoutKey, "")}
	for _, k := range opts.FinishOnKey {
		keys = append(keys, huh.NewOption("press "+string(k), string(k)))
	}
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title(prompt).
				Description("Your answer, as you would say it").
				Value(&answer),
			huh.NewSelect[string]().
				Title("Finish the recording").
				Options(keys...).
				Value(&key),
		),
	)
	if err := p.run(form); err != nil {
		return "", "", err
	}
	return strings.TrimSpace(answer), key, nil
}

func (p *HuhPrompter) run(form *huh.Form) error {
	form = form.WithInput(p.In).WithOutput(p.Out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := p.In.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrHangUp
		}
		return fmt.Errorf("prompt failed: %w", err)
	}
	return nil
}

// Step is one scripted caller action. Gathers read Text; recordings read
// Text and Key.
type Step struct {
	Text string `yaml:"text"`
	Key  string `yaml:"key,omitempty"`
}

// Script replays fixed steps and hangs up when they run out.
type Script struct {
	Steps []Step
	next  int
}

var _ Prompter = (*Script)(nil)

func (s *Script) Gather(string, flow.GatherOptions) (string, error) {
	step, err := s.pop()
	return step.Text, err
}

func (s *Script) Record(string, flow.RecordOptions) (string, string, error) {
	step, err := s.pop()
	return step.Text, step.Key, err
}

func (s *Script) pop() (Step, error) {
	if s.next >= len(s.Steps) {
		return Step{}, ErrHangUp
	}
	step := s.Steps[s.next]
	s.next++
	return step, nil
}
