package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// captureOutput collects everything printed while f runs.
func captureOutput(f func()) string {
	var buf bytes.Buffer
	restore := SetWriter(&buf)
	defer restore()
	f()
	return buf.String()
}

func TestMessages(t *testing.T) {
	tests := []struct {
		name   string
		print  func(string)
		marker string
	}{
		{"success", Success, "🪶"},
		{"error", Error, "❌"},
		{"warn", Warn, "⚠️"},
		{"info", Info, "ℹ️"},
		{"stage", Stage, "▸"},
		{"step", Step, "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := captureOutput(func() { tt.print("hello " + tt.name) })
			assert.Contains(t, out, tt.marker)
			assert.Contains(t, out, "hello "+tt.name)
		})
	}
}

func TestVerbose(t *testing.T) {
	defer SetVerbose(false)

	out := captureOutput(func() { Verbose("hidden") })
	assert.Empty(t, out)

	SetVerbose(true)
	out = captureOutput(func() { Verbose("shown") })
	assert.Contains(t, out, "shown")
}

func TestTable(t *testing.T) {
	out := captureOutput(func() {
		Table([][2]string{{"models", "3 files"}, {"viewmodels", "1 file"}})
	})

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, out, "models      3 files")
	assert.Contains(t, out, "viewmodels  1 file")
}
