package spinner

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinner_DrawsAndClears(t *testing.T) {
	var out syncBuffer
	s := Start(&out, "Downloading recordings")

	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Downloading recordings")
	}, time.Second, 10*time.Millisecond)

	s.SetMessage("Downloaded 3/4")
	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Downloaded 3/4")
	}, time.Second, 10*time.Millisecond)

	s.Stop()
	s.Stop()
	assert.True(t, strings.HasSuffix(out.String(), "\r"), "final write clears the line")
}
