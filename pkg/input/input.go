// Package input asks the user questions on the terminal.
package input

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan")).Bold(true)
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Prompter reads answers from In and writes questions to Out.
type Prompter struct {
	In  io.Reader
	Out io.Writer
}

// Stdio returns a Prompter bound to the process's terminal.
func Stdio() *Prompter {
	return &Prompter{In: os.Stdin, Out: os.Stdout}
}

// Interactive reports whether stdin is a terminal. Destructive operations
// that need confirmation refuse to run non-interactively unless the caller
// passed --yes.
func Interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Confirm asks a yes/no question. Empty input, or a read error, returns
// defaultYes.
//
//	if input.Stdio().Confirm("Delete ../to before converting?", false) { ... }
//	// Displays: Delete ../to before converting? [y/N]: _
func (p *Prompter) Confirm(message string, defaultYes bool) bool {
	hint := "[y/N]"
	if defaultYes {
		hint = "[Y/n]"
	}
	fmt.Fprint(p.Out, promptStyle.Render(message)+" "+hintStyle.Render(hint)+": ")

	answer, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && answer == "" {
		return defaultYes
	}

	answer = strings.TrimSpace(strings.ToLower(answer))
	if answer == "" {
		return defaultYes
	}
	return answer == "y" || answer == "yes"
}

// Prompt asks for free text with an optional default.
func (p *Prompter) Prompt(message, defaultValue string) string {
	if defaultValue != "" {
		fmt.Fprint(p.Out, promptStyle.Render(message)+" "+hintStyle.Render("("+defaultValue+")")+": ")
	} else {
		fmt.Fprint(p.Out, promptStyle.Render(message)+": ")
	}

	answer, err := bufio.NewReader(p.In).ReadString('\n')
	answer = strings.TrimSpace(answer)
	if (err != nil && answer == "") || answer == "" {
		return defaultValue
	}
	return answer
}
