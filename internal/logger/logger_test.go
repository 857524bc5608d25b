package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetupWriterJSON(t *testing.T) {
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_LEVEL", "warn")
	var buf bytes.Buffer

	l := SetupWriter(&buf)
	l.Info("hidden_event")
	L().Warn("cache_serve_stale", "cell", "experts")

	out := buf.String()
	assert.NotContains(t, out, "hidden_event")
	assert.Contains(t, out, `"msg":"cache_serve_stale"`)
	assert.Contains(t, out, `"cell":"experts"`)
	assert.Same(t, l, L())
}
