package generator

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// ConflictResolution is what happens to a file that already exists.
type ConflictResolution int

const (
	Skip ConflictResolution = iota
	Overwrite
	Cancel
)

// Strategy names accepted by NewResolver (and generation.conflict).
const (
	StrategyOverwrite = "overwrite"
	StrategySkip      = "skip"
	StrategyDiff      = "diff"
	StrategyAsk       = "ask"
)

// ConflictStrategy decides one conflict.
type ConflictStrategy interface {
	Resolve(path string, existing, newer []byte) (ConflictResolution, error)
}

// Resolver applies a strategy to every conflict of a run. Answers such as
// "overwrite all" stick for the rest of the run.
type Resolver struct {
	mu       sync.Mutex
	strategy ConflictStrategy
	sticky   *ConflictResolution
}

// NewResolver builds a resolver for one of the strategy names. Diff output
// and prompts go to out.
func NewResolver(strategy string, out io.Writer) (*Resolver, error) {
	if out == nil {
		out = os.Stdout
	}
	var s ConflictStrategy
	switch strategy {
	case StrategyOverwrite, "":
		s = fixedStrategy(Overwrite)
	case StrategySkip:
		s = fixedStrategy(Skip)
	case StrategyDiff:
		s = &DiffStrategy{diff: NewDiffGenerator(), out: out}
	case StrategyAsk:
		s = &InteractiveStrategy{diff: NewDiffGenerator(), out: out}
	default:
		return nil, fmt.Errorf("unknown conflict strategy %q (want overwrite, skip, diff or ask)", strategy)
	}
	return &Resolver{strategy: s}, nil
}

// NewResolverWith wraps a custom strategy, mostly for tests.
func NewResolverWith(s ConflictStrategy) *Resolver {
	return &Resolver{strategy: s}
}

// Resolve decides what to do with path.
func (r *Resolver) Resolve(path string, existing, newer []byte) (ConflictResolution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sticky != nil {
		return *r.sticky, nil
	}
	res, err := r.strategy.Resolve(path, existing, newer)
	if err != nil {
		return Cancel, err
	}
	if all, ok := r.strategy.(interface{ applyToAll() (ConflictResolution, bool) }); ok {
		if sticky, set := all.applyToAll(); set {
			r.sticky = &sticky
		}
	}
	return res, nil
}

type fixedStrategy ConflictResolution

func (f fixedStrategy) Resolve(string, []byte, []byte) (ConflictResolution, error) {
	return ConflictResolution(f), nil
}

// DiffStrategy prints what regeneration would change and keeps the
// existing file. It is the review mode for re-running a conversion over
// hand-edited output.
type DiffStrategy struct {
	diff *DiffGenerator
	out  io.Writer
}

func (s *DiffStrategy) Resolve(path string, existing, newer []byte) (ConflictResolution, error) {
	fmt.Fprintln(s.out, s.diff.Unified(path, path, existing, newer))
	return Skip, nil
}

// InteractiveStrategy asks through a small bubbletea menu. Without a
// terminal it behaves like skip.
type InteractiveStrategy struct {
	diff *DiffGenerator
	out  io.Writer
	all  *ConflictResolution
}

func (s *InteractiveStrategy) applyToAll() (ConflictResolution, bool) {
	if s.all == nil {
		return 0, false
	}
	return *s.all, true
}

func (s *InteractiveStrategy) Resolve(path string, existing, newer []byte) (ConflictResolution, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return Skip, nil
	}

	for {
		final, err := tea.NewProgram(newConflictMenu(path)).Run()
		if err != nil {
			return Cancel, fmt.Errorf("conflict prompt failed: %w", err)
		}
		choice := final.(conflictMenu).chosen
		switch choice {
		case choiceDiff:
			if err := s.showDiff(path, existing, newer); err != nil {
				return Cancel, err
			}
			continue
		case choiceSkip:
			return Skip, nil
		case choiceOverwrite:
			return Overwrite, nil
		case choiceOverwriteAll:
			all := Overwrite
			s.all = &all
			return Overwrite, nil
		case choiceSkipAll:
			all := Skip
			s.all = &all
			return Skip, nil
		default:
			return Cancel, nil
		}
	}
}

func (s *InteractiveStrategy) showDiff(path string, existing, newer []byte) error {
	diff := s.diff.Unified(path, path, existing, newer)
	if strings.Count(diff, "\n") <= 20 {
		fmt.Fprintln(s.out, diff)
		return nil
	}
	_, err := tea.NewProgram(newDiffViewer(path, diff), tea.WithAltScreen()).Run()
	if err != nil {
		return fmt.Errorf("failed to show diff: %w", err)
	}
	return nil
}

type menuChoice int

const (
	choiceNone menuChoice = iota
	choiceDiff
	choiceSkip
	choiceOverwrite
	choiceSkipAll
	choiceOverwriteAll
	choiceCancel
)

var menuItems = []struct {
	label  string
	choice menuChoice
}{
	{"Show diff", choiceDiff},
	{"Keep existing file", choiceSkip},
	{"Overwrite with converted file", choiceOverwrite},
	{"Keep all remaining files", choiceSkipAll},
	{"Overwrite all remaining files", choiceOverwriteAll},
	{"Cancel conversion", choiceCancel},
}

var (
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("yellow")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan")).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	frameStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
)

type conflictMenu struct {
	path   string
	cursor int
	chosen menuChoice
}

func newConflictMenu(path string) conflictMenu {
	return conflictMenu{path: path}
}

func (m conflictMenu) Init() tea.Cmd { return nil }

func (m conflictMenu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "ctrl+c", "q", "esc":
		m.chosen = choiceCancel
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(menuItems)-1 {
			m.cursor++
		}
	case "enter":
		m.chosen = menuItems[m.cursor].choice
		return m, tea.Quit
	}
	return m, nil
}

func (m conflictMenu) View() string {
	var b strings.Builder
	b.WriteString(warningStyle.Render("⚠️  Already exists: ") + m.path + "\n")
	b.WriteString(mutedStyle.Render("    [↑/↓] move  [enter] choose  [q] cancel") + "\n\n")
	for i, item := range menuItems {
		if i == m.cursor {
			b.WriteString("    " + selectedStyle.Render("> "+item.label) + "\n")
		} else {
			b.WriteString("      " + item.label + "\n")
		}
	}
	return b.String()
}

type diffViewer struct {
	path     string
	diff     string
	viewport viewport.Model
	ready    bool
}

func newDiffViewer(path, diff string) diffViewer {
	return diffViewer{path: path, diff: diff}
}

func (m diffViewer) Init() tea.Cmd { return nil }

func (m diffViewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		const chrome = 4
		if !m.ready {
			m.viewport = viewport.New(msg.Width-2, msg.Height-chrome)
			m.viewport.SetContent(m.diff)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 2
			m.viewport.Height = msg.Height - chrome
		}
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m diffViewer) View() string {
	if !m.ready {
		return "Loading diff..."
	}
	header := selectedStyle.Render(m.path)
	footer := mutedStyle.Render("[↑/↓/pgup/pgdn] scroll  [q] back to menu")
	return header + "\n" + frameStyle.Render(m.viewport.View()) + "\n" + footer
}
