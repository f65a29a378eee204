package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validCatalogYAML = `greeting: Hello there.
interstitial:
  - Great!
  - Lovely.
`

const validConfigYAML = `server:
  addr: ":8080"
storage:
  driver: sqlite
  dsn: roboyoz.sqlite
topics:
  - name: Besha
    digit: "1"
    patterns: ["[bvptdf]*"]
    questions: besha_questions
recording:
  long_seconds: 5
  short_seconds: 0
`

func TestValidateCatalogBytes_Valid(t *testing.T) {
	errs := ValidateCatalogBytes([]byte(validCatalogYAML))
	assert.Empty(t, errs)
}

func TestValidateCatalogBytes_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{name: "empty list", yaml: "interstitial: []\n", want: "/interstitial"},
		{name: "nested map", yaml: "greeting:\n  text: hi\n", want: "/greeting"},
		{name: "empty catalog", yaml: "", want: "/"},
		{name: "bad slug", yaml: "Greeting: hi\n", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateCatalogBytes([]byte(tt.yaml))
			require.NotEmpty(t, errs)
			assert.True(t, strings.HasPrefix(errs[0], tt.want), "got %q", errs[0])
		})
	}
}

func TestValidateCatalogBytes_ParseError(t *testing.T) {
	errs := ValidateCatalogBytes([]byte("greeting: [unterminated"))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "YAML parse error")
}

func TestValidateConfigBytes_Valid(t *testing.T) {
	assert.Empty(t, ValidateConfigBytes([]byte(validConfigYAML)))
	assert.Empty(t, ValidateConfigBytes([]byte("")))
}

func TestValidateConfigBytes_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "unknown section", yaml: "dashboard:\n  port: 3000\n"},
		{name: "bad driver", yaml: "storage:\n  driver: dynamo\n"},
		{name: "numeric digit", yaml: "topics:\n  - name: Besha\n    digit: 1\n    questions: q\n"},
		{name: "topic without questions", yaml: "topics:\n  - name: Besha\n"},
		{name: "negative threshold", yaml: "recording:\n  long_seconds: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEmpty(t, ValidateConfigBytes([]byte(tt.yaml)))
		})
	}
}
