// Package messages holds the prompt catalog: symbolic slugs mapped to the text
// the hotline speaks, with ${name} substitution and variant rotation.
package messages

import (
	_ "embed"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/drone/envsubst"
	"gopkg.in/yaml.v3"

	"github.com/roboyoz/hotline/internal/validation"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// ErrMissingMessage is returned when a slug is not in the catalog.
var ErrMissingMessage = errors.New("missing message")

// Values are the ${name} substitutions applied to a message.
type Values map[string]string

// Entry is a single catalog value: either fixed text or an ordered set of
// variants.
type Entry struct {
	Text     string
	Variants []string
}

// UnmarshalYAML accepts either a scalar or a sequence of scalars.
func (e *Entry) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Decode(&e.Text)
	case yaml.SequenceNode:
		return node.Decode(&e.Variants)
	default:
		return fmt.Errorf("line %d: message must be a string or a list of strings", node.Line)
	}
}

// Catalog resolves slugs to prompt text. It is safe for concurrent use; Replace
// swaps the whole entry set atomically.
type Catalog struct {
	mu      sync.RWMutex
	entries map[string]Entry

	// intn picks a random variant index. Tests may replace it.
	intn func(n int) int
}

// New builds a catalog from already-parsed entries.
func New(entries map[string]Entry) *Catalog {
	return &Catalog{entries: entries, intn: rand.IntN}
}

// Default returns the catalog embedded in the binary.
func Default() *Catalog {
	entries, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return New(entries)
}

// Load reads and validates a catalog file. An empty path returns Default().
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	entries, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	return New(entries), nil
}

// ParseFile reads and parses a catalog file.
func ParseFile(path string) (map[string]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	entries, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// Parse validates raw YAML against the catalog schema and decodes it.
func Parse(data []byte) (map[string]Entry, error) {
	if errs := validation.ValidateCatalogBytes(data); len(errs) > 0 {
		return nil, fmt.Errorf("invalid catalog: %s", strings.Join(errs, "; "))
	}
	var entries map[string]Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	return entries, nil
}

// Replace swaps in a new entry set.
func (c *Catalog) Replace(entries map[string]Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = entries
}

// Has reports whether slug is present.
func (c *Catalog) Has(slug string) bool {
	_, ok := c.lookup(slug)
	return ok
}

// Slugs returns every slug in sorted order.
func (c *Catalog) Slugs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	slugs := make([]string, 0, len(c.entries))
	for slug := range c.entries {
		slugs = append(slugs, slug)
	}
	slices.Sort(slugs)
	return slugs
}

// Variants returns the ordered variants of slug, or its text as a single
// element.
func (c *Catalog) Variants(slug string) ([]string, error) {
	entry, ok := c.lookup(slug)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingMessage, slug)
	}
	if entry.Variants == nil {
		return []string{entry.Text}, nil
	}
	return slices.Clone(entry.Variants), nil
}

// Get returns the text for slug. A variant set yields a uniformly random
// variant.
func (c *Catalog) Get(slug string, values Values) (string, error) {
	entry, ok := c.lookup(slug)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingMessage, slug)
	}
	msg := entry.Text
	if entry.Variants != nil {
		msg = entry.Variants[c.intn(len(entry.Variants))]
	}
	return Substitute(msg, values), nil
}

// Next returns the first variant of slug that is not in exclude, or "" once
// every variant has been used.
func (c *Catalog) Next(slug string, values Values, exclude []string) (string, error) {
	variants, err := c.Variants(slug)
	if err != nil {
		return "", err
	}
	for _, v := range variants {
		msg := Substitute(v, values)
		if !slices.Contains(exclude, msg) {
			return msg, nil
		}
	}
	return "", nil
}

func (c *Catalog) lookup(slug string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[slug]
	return entry, ok
}

var token = regexp.MustCompile(`\$\{([^}]*)\}`)

// Substitute replaces ${name} tokens from values. Names are trimmed, unknown
// names become "" and every other "$" is kept as written.
func Substitute(msg string, values Values) string {
	if !strings.Contains(msg, "$") {
		return msg
	}
	// envsubst sees only numbered placeholders and escaped dollars, never
	// the key text itself.
	var (
		b    strings.Builder
		keys []string
		last int
	)
	for _, loc := range token.FindAllStringSubmatchIndex(msg, -1) {
		b.WriteString(strings.ReplaceAll(msg[last:loc[0]], "$", "$$"))
		fmt.Fprintf(&b, "${v%d}", len(keys))
		keys = append(keys, strings.TrimSpace(msg[loc[2]:loc[3]]))
		last = loc[1]
	}
	b.WriteString(strings.ReplaceAll(msg[last:], "$", "$$"))

	out, err := envsubst.Eval(b.String(), func(name string) string {
		i, err := strconv.Atoi(strings.TrimPrefix(name, "v"))
		if err != nil || i < 0 || i >= len(keys) {
			return ""
		}
		return values[keys[i]]
	})
	if err != nil {
		return msg
	}
	return out
}
