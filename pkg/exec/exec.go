// Package exec runs external build tools (Gradle, kotlinc) and captures
// their output so compiler diagnostics can be parsed.
package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	osexec "os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Executor runs external commands.
type Executor struct {
	stderr  io.Writer
	env     []string
	dir     string
	spinner bool

	// For mocking in tests
	commandFunc func(ctx context.Context, name string, args ...string) *osexec.Cmd
}

// Options configures command execution
type Options struct {
	Stderr  io.Writer // where the spinner renders (default os.Stderr)
	Env     []string  // Additional environment variables
	Dir     string    // Working directory
	Spinner bool      // Show a spinner while the command runs
}

// Result is the outcome of a finished command. A non-zero exit is not an
// error: a failing build is exactly what the caller wants to read.
type Result struct {
	Output   string // combined stdout and stderr
	ExitCode int
	Duration time.Duration
}

// Failed reports whether the command exited non-zero.
func (r Result) Failed() bool { return r.ExitCode != 0 }

// NewExecutor creates an executor.
func NewExecutor(opts Options) *Executor {
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	return &Executor{
		stderr:      opts.Stderr,
		env:         opts.Env,
		dir:         opts.Dir,
		spinner:     opts.Spinner,
		commandFunc: osexec.CommandContext,
	}
}

// Capture runs name with args and returns its combined output. The error is
// non-nil only when the command could not run at all or ctx was cancelled.
func (e *Executor) Capture(ctx context.Context, name string, args ...string) (Result, error) {
	if e.spinner {
		return e.captureWithSpinner(ctx, name, args...)
	}
	return e.capture(ctx, name, args...)
}

// CaptureLine splits a shell-like command line and runs it with Capture.
func (e *Executor) CaptureLine(ctx context.Context, line string) (Result, error) {
	fields, err := SplitCommand(line)
	if err != nil {
		return Result{}, err
	}
	return e.Capture(ctx, fields[0], fields[1:]...)
}

func (e *Executor) capture(ctx context.Context, name string, args ...string) (Result, error) {
	cmd := e.commandFunc(ctx, name, args...)
	if e.dir != "" {
		cmd.Dir = e.dir
	}
	if len(e.env) > 0 {
		cmd.Env = append(os.Environ(), e.env...)
	}

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	start := time.Now()
	err := cmd.Run()
	res := Result{Output: buf.String(), Duration: time.Since(start)}

	if ctx.Err() != nil {
		return res, fmt.Errorf("%s cancelled: %w", name, ctx.Err())
	}

	var exitErr *osexec.ExitError
	switch {
	case err == nil:
		return res, nil
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	case isCommandNotFound(err):
		return res, fmt.Errorf("%w\n💡 Command '%s' not found. Install it or set repair.build_command", err, name)
	default:
		return res, fmt.Errorf("failed to run %s: %w", name, err)
	}
}

func (e *Executor) captureWithSpinner(ctx context.Context, name string, args ...string) (Result, error) {
	message := "Running " + strings.Join(append([]string{name}, args...), " ")
	p := tea.NewProgram(newSpinnerModel(message), tea.WithOutput(e.stderr), tea.WithInput(nil))

	type outcome struct {
		res Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := e.capture(ctx, name, args...)
		p.Send(spinnerDoneMsg{failed: err != nil || res.Failed()})
		done <- outcome{res, err}
	}()

	if _, err := p.Run(); err != nil {
		// The spinner is cosmetic; the command keeps running without it.
		_ = err
	}
	o := <-done
	return o.res, o.err
}

// SplitCommand splits a command line on whitespace, honouring single and
// double quotes. It does not expand variables or globs.
func SplitCommand(line string) ([]string, error) {
	var (
		fields  []string
		current strings.Builder
		quote   rune
		inField bool
	)
	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inField = true
		case r == ' ' || r == '\t' || r == '\n':
			if inField {
				fields = append(fields, current.String())
				current.Reset()
				inField = false
			}
		default:
			current.WriteRune(r)
			inField = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated quote in command %q", line)
	}
	if inField {
		fields = append(fields, current.String())
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	return fields, nil
}

type spinnerModel struct {
	spinner spinner.Model
	message string
	done    bool
	failed  bool
}

type spinnerDoneMsg struct {
	failed bool
}

func newSpinnerModel(message string) *spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return &spinnerModel{spinner: s, message: message}
}

func (m *spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinnerDoneMsg:
		m.done = true
		m.failed = msg.failed
		return m, tea.Quit
	case spinner.TickMsg:
		if !m.done {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m *spinnerModel) View() string {
	if m.done {
		if m.failed {
			return fmt.Sprintf("❌ %s\n", m.message)
		}
		return fmt.Sprintf("✅ %s\n", m.message)
	}
	return fmt.Sprintf("%s %s...", m.spinner.View(), m.message)
}

func isCommandNotFound(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, osexec.ErrNotFound) ||
		strings.Contains(err.Error(), "executable file not found") ||
		strings.Contains(err.Error(), "no such file or directory")
}
