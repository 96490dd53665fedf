// Package output prints the styled, human-facing lines of the magpie CLI.
//
// Structured diagnostics go through pkg/logger; this package is for the
// messages a person running a conversion reads: stage headers, created files,
// warnings and the final report. Styling uses lipgloss and is hidden from
// callers.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("green")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("red")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan"))
	stageStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	mu          sync.Mutex
	writer      io.Writer = os.Stdout
	verboseMode bool
)

// SetVerbose enables or disables verbose output.
// The CLI calls this when --verbose is set.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verboseMode = v
}

// SetWriter redirects all output and returns a function restoring the
// previous writer.
func SetWriter(w io.Writer) (restore func()) {
	mu.Lock()
	defer mu.Unlock()
	prev := writer
	writer = w
	return func() {
		mu.Lock()
		defer mu.Unlock()
		writer = prev
	}
}

func printStyled(style lipgloss.Style, msg string) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintln(writer, style.Render(msg))
}

// Success prints a completed operation in green.
//
//	output.Success("Converted 12 Swift files")
func Success(msg string) {
	printStyled(successStyle, "🪶 "+msg)
}

// Error prints a failure that needs attention in red.
func Error(msg string) {
	printStyled(errorStyle, "❌ "+msg)
}

// Warn prints a non-fatal problem. A failed conversion stage is reported
// with Warn and the run carries on.
func Warn(msg string) {
	printStyled(warnStyle, "⚠️  "+msg)
}

// Info prints a status update in cyan.
func Info(msg string) {
	printStyled(infoStyle, "ℹ️  "+msg)
}

// Stage prints a pipeline stage header.
//
//	output.Stage("Converting models")
func Stage(msg string) {
	printStyled(stageStyle, "▸ "+msg)
}

// Step prints an indented sub-item in gray.
func Step(msg string) {
	printStyled(stepStyle, "   "+msg)
}

// Verbose prints a debug line only when verbose mode is enabled.
func Verbose(msg string) {
	mu.Lock()
	enabled := verboseMode
	mu.Unlock()
	if enabled {
		printStyled(stepStyle, "🔍 "+msg)
	}
}

// Table prints aligned two-column rows, used for the conversion report.
func Table(rows [][2]string) {
	width := 0
	for _, row := range rows {
		if len(row[0]) > width {
			width = len(row[0])
		}
	}
	for _, row := range rows {
		Step(row[0] + strings.Repeat(" ", width-len(row[0])) + "  " + row[1])
	}
}
