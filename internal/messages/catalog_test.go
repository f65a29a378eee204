package messages

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	c := New(map[string]Entry{
		"greeting":  {Text: "Hello ${name}."},
		"questions": {Variants: []string{"Q1", "Q2", "Q3"}},
		"cheers":    {Variants: []string{"Great!", "Lovely.", "Cool."}},
	})
	return c
}

func TestDefaultCatalogHasFlowSlugs(t *testing.T) {
	c := Default()
	for _, slug := range []string{
		"greeting", "introduction", "welcome_back", "request_subject", "no_idea_who",
		"subject_chosen", "besha_questions", "schuyler_questions", "interstitial",
		"question_skipped", "going_back", "no_more_questions", "goodbye", "error",
	} {
		assert.True(t, c.Has(slug), "missing %s", slug)
	}
}

func TestGet_Substitution(t *testing.T) {
	msg, err := Default().Get("subject_chosen", Values{"name": "Besha"})
	require.NoError(t, err)
	assert.Contains(t, msg, "Besha")
	assert.NotContains(t, msg, "${name}")
	assert.NotContains(t, msg, "${other}")
}

func TestGet_MissingKeyBecomesEmpty(t *testing.T) {
	msg, err := testCatalog(t).Get("greeting", nil)
	require.NoError(t, err)
	assert.Equal(t, "Hello .", msg)
}

func TestGet_MissingSlug(t *testing.T) {
	_, err := testCatalog(t).Get("nope", nil)
	require.ErrorIs(t, err, ErrMissingMessage)
	assert.Contains(t, err.Error(), "nope")
}

func TestGet_RandomVariant(t *testing.T) {
	c := testCatalog(t)
	c.intn = func(n int) int {
		require.Equal(t, 3, n)
		return 2
	}
	msg, err := c.Get("cheers", nil)
	require.NoError(t, err)
	assert.Equal(t, "Cool.", msg)
}

func TestGet_VariantAlwaysFromSet(t *testing.T) {
	c := testCatalog(t)
	for range 50 {
		msg, err := c.Get("cheers", nil)
		require.NoError(t, err)
		assert.Contains(t, []string{"Great!", "Lovely.", "Cool."}, msg)
	}
}

func TestNext_FirstUnused(t *testing.T) {
	c := testCatalog(t)

	var asked []string
	for _, want := range []string{"Q1", "Q2", "Q3"} {
		msg, err := c.Next("questions", nil, asked)
		require.NoError(t, err)
		assert.Equal(t, want, msg)
		asked = append(asked, msg)
	}

	msg, err := c.Next("questions", nil, asked)
	require.NoError(t, err)
	assert.Empty(t, msg, "exhausted variants should return the empty string")
}

func TestNext_SkipsOutOfOrderExclusions(t *testing.T) {
	msg, err := testCatalog(t).Next("questions", nil, []string{"Q1", "Q3"})
	require.NoError(t, err)
	assert.Equal(t, "Q2", msg)
}

func TestNext_TextEntry(t *testing.T) {
	c := testCatalog(t)
	msg, err := c.Next("greeting", Values{"name": "Yoz"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Hello Yoz.", msg)

	msg, err = c.Next("greeting", Values{"name": "Yoz"}, []string{"Hello Yoz."})
	require.NoError(t, err)
	assert.Empty(t, msg)
}

func TestNext_MissingSlug(t *testing.T) {
	_, err := testCatalog(t).Next("nope", nil, nil)
	assert.ErrorIs(t, err, ErrMissingMessage)
}

func TestSubstitute(t *testing.T) {
	tests := []struct {
		name   string
		msg    string
		values Values
		want   string
	}{
		{name: "plain", msg: "no tokens", want: "no tokens"},
		{name: "one", msg: "Hi ${name}!", values: Values{"name": "Ann"}, want: "Hi Ann!"},
		{name: "two", msg: "${a} and ${b}", values: Values{"a": "x", "b": "y"}, want: "x and y"},
		{name: "missing", msg: "Hi ${who}.", values: Values{"name": "Ann"}, want: "Hi ."},
		{name: "padded key", msg: "Hi ${ name }", values: Values{"name": "Besha"}, want: "Hi Besha"},
		{name: "dollars kept", msg: "100% $$ sure", values: Values{"name": "Besha"}, want: "100% $$ sure"},
		{name: "lone dollar", msg: "costs $5 for ${name}", values: Values{"name": "Ann"}, want: "costs $5 for Ann"},
		{name: "default operator is a key", msg: "${name:-Besha}", values: Values{"name": "Ann"}, want: ""},
		{name: "case operator is a key", msg: "${name^^}", values: Values{"name": "Besha"}, want: ""},
		{name: "unterminated", msg: "Hi ${name", values: Values{"name": "Ann"}, want: "Hi ${name"},
		{name: "value not expanded", msg: "${a}", values: Values{"a": "${b}", "b": "x"}, want: "${b}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Substitute(tt.msg, tt.values))
		})
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("greeting: Hi.\nerror:\n  - Oops.\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"error", "greeting"}, c.Slugs())

	variants, err := c.Variants("error")
	require.NoError(t, err)
	assert.Equal(t, []string{"Oops."}, variants)
}

func TestLoad_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("greeting:\n  nested: true\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid catalog")
}

func TestLoad_EmptyPathUsesDefault(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.True(t, c.Has("greeting"))
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("greeting: Old.\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)

	w, err := NewWatcher(path, c, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()
	defer func() {
		cancel()
		<-done
	}()

	require.NoError(t, os.WriteFile(path, []byte("greeting: New.\n"), 0o644))

	require.Eventually(t, func() bool {
		msg, err := c.Get("greeting", nil)
		return err == nil && strings.HasPrefix(msg, "New")
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWatcher_KeepsPreviousOnInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("greeting: Old.\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)

	w, err := NewWatcher(path, c, nil)
	require.NoError(t, err)
	reloaded := make(chan error, 1)
	w.OnReload = func(err error) {
		select {
		case reloaded <- err:
		default:
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()
	defer func() {
		cancel()
		<-done
	}()

	require.NoError(t, os.WriteFile(path, []byte("greeting: []\n"), 0o644))

	select {
	case err := <-reloaded:
		require.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher never attempted a reload")
	}

	msg, err := c.Get("greeting", nil)
	require.NoError(t, err)
	assert.Equal(t, "Old.", msg)
}
