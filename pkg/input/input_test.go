package input

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfirm(t *testing.T) {
	tests := []struct {
		name       string
		answer     string
		defaultYes bool
		want       bool
	}{
		{"yes", "y\n", false, true},
		{"YES", "YES\n", false, true},
		{"no", "n\n", true, false},
		{"empty uses default yes", "\n", true, true},
		{"empty uses default no", "\n", false, false},
		{"eof uses default", "", true, true},
		{"no trailing newline", "yes", false, true},
		{"garbage is no", "maybe\n", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := &Prompter{In: strings.NewReader(tt.answer), Out: &out}

			assert.Equal(t, tt.want, p.Confirm("Delete output?", tt.defaultYes))
			assert.Contains(t, out.String(), "Delete output?")
		})
	}
}

func TestPrompt(t *testing.T) {
	var out bytes.Buffer

	p := &Prompter{In: strings.NewReader("com.example.app\n"), Out: &out}
	assert.Equal(t, "com.example.app", p.Prompt("Package name", "com.company.amap"))
	assert.Contains(t, out.String(), "(com.company.amap)")

	p = &Prompter{In: strings.NewReader("\n"), Out: &out}
	assert.Equal(t, "com.company.amap", p.Prompt("Package name", "com.company.amap"))
}
