package generator

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// DiffGenerator renders unified diffs between an existing file and the
// content magpie would write over it. The LCS table is kept between calls
// so repeated diffs in one run reuse its allocation.
type DiffGenerator struct {
	Context  int  // unchanged lines around each change (default 3)
	MaxLines int  // larger inputs are summarised instead of diffed (default 4000)
	Color    bool // style added/removed lines with lipgloss
	table    []int
}

// NewDiffGenerator returns a generator with default settings. Colors are
// enabled when stdout is a terminal.
func NewDiffGenerator() *DiffGenerator {
	return &DiffGenerator{
		Context:  3,
		MaxLines: 4000,
		Color:    term.IsTerminal(int(os.Stdout.Fd())),
	}
}

var (
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	hunkStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan")).Bold(true)
	addedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	removedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

type editKind byte

const (
	editEqual editKind = ' '
	editAdd   editKind = '+'
	editDel   editKind = '-'
)

type edit struct {
	kind    editKind
	oldLine int // 1-based; 0 when added
	newLine int // 1-based; 0 when removed
	text    string
}

// Unified returns a unified diff, or "" when the contents are equal.
func (g *DiffGenerator) Unified(oldPath, newPath string, old, newer []byte) string {
	if bytes.Equal(old, newer) {
		return ""
	}
	if bytes.IndexByte(old, 0) >= 0 || bytes.IndexByte(newer, 0) >= 0 {
		return fmt.Sprintf("Binary files %s and %s differ\n", oldPath, newPath)
	}

	a, b := lines(old), lines(newer)
	maxLines := g.MaxLines
	if maxLines <= 0 {
		maxLines = 4000
	}
	if len(a) > maxLines || len(b) > maxLines {
		return fmt.Sprintf("%s: too large to diff (%d → %d lines)\n", newPath, len(a), len(b))
	}

	edits := g.edits(a, b)
	var out strings.Builder
	out.WriteString(g.style(headerStyle, "--- "+oldPath) + "\n")
	out.WriteString(g.style(headerStyle, "+++ "+newPath) + "\n")

	width := terminalWidth()
	for _, h := range hunks(edits, g.contextLines()) {
		out.WriteString(g.style(hunkStyle, h.header()) + "\n")
		for _, e := range h.edits {
			line := string(e.kind) + truncate(e.text, width-2)
			switch e.kind {
			case editAdd:
				line = g.style(addedStyle, line)
			case editDel:
				line = g.style(removedStyle, line)
			}
			out.WriteString(line + "\n")
		}
	}
	return out.String()
}

func (g *DiffGenerator) contextLines() int {
	if g.Context <= 0 {
		return 3
	}
	return g.Context
}

func (g *DiffGenerator) style(s lipgloss.Style, text string) string {
	if !g.Color {
		return text
	}
	return s.Render(text)
}

// edits computes a line edit script from the longest common subsequence.
func (g *DiffGenerator) edits(a, b []string) []edit {
	n, m := len(a), len(b)
	cols := m + 1
	size := (n + 1) * cols
	if cap(g.table) < size {
		g.table = make([]int, size)
	}
	t := g.table[:size]
	clear(t)

	// t[i*cols+j] = LCS length of a[i:] and b[j:]
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if a[i] == b[j] {
				t[i*cols+j] = t[(i+1)*cols+j+1] + 1
			} else {
				t[i*cols+j] = max(t[(i+1)*cols+j], t[i*cols+j+1])
			}
		}
	}

	var out []edit
	i, j := 0, 0
	for i < n && j < m {
		switch {
		case a[i] == b[j]:
			out = append(out, edit{editEqual, i + 1, j + 1, a[i]})
			i++
			j++
		case t[(i+1)*cols+j] >= t[i*cols+j+1]:
			out = append(out, edit{editDel, i + 1, 0, a[i]})
			i++
		default:
			out = append(out, edit{editAdd, 0, j + 1, b[j]})
			j++
		}
	}
	for ; i < n; i++ {
		out = append(out, edit{editDel, i + 1, 0, a[i]})
	}
	for ; j < m; j++ {
		out = append(out, edit{editAdd, 0, j + 1, b[j]})
	}
	return out
}

type hunk struct {
	edits []edit
}

func (h hunk) header() string {
	oldStart, newStart, oldCount, newCount := 0, 0, 0, 0
	for _, e := range h.edits {
		if e.oldLine > 0 && oldStart == 0 {
			oldStart = e.oldLine
		}
		if e.newLine > 0 && newStart == 0 {
			newStart = e.newLine
		}
		if e.kind != editAdd {
			oldCount++
		}
		if e.kind != editDel {
			newCount++
		}
	}
	return fmt.Sprintf("@@ -%d,%d +%d,%d @@", oldStart, oldCount, newStart, newCount)
}

// hunks groups changes with up to ctx unchanged lines around them; changes
// closer than 2*ctx share a hunk.
func hunks(edits []edit, ctx int) []hunk {
	var out []hunk
	i := 0
	for i < len(edits) {
		for i < len(edits) && edits[i].kind == editEqual {
			i++
		}
		if i == len(edits) {
			break
		}
		start := max(0, i-ctx)
		end := i
		for end < len(edits) {
			if edits[end].kind != editEqual {
				end++
				continue
			}
			run := end
			for run < len(edits) && edits[run].kind == editEqual {
				run++
			}
			if run == len(edits) || run-end > 2*ctx {
				end = min(end+ctx, len(edits))
				break
			}
			end = run
		}
		out = append(out, hunk{edits: edits[start:end]})
		i = end
	}
	return out
}

func lines(b []byte) []string {
	if len(b) == 0 {
		return nil
	}
	s := strings.TrimSuffix(string(b), "\n")
	return strings.Split(s, "\n")
}

func truncate(s string, width int) string {
	if width < 20 {
		width = 80
	}
	s = strings.ReplaceAll(s, "\t", "    ")
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	r := []rune(s)
	return string(r[:width-3]) + "..."
}

func terminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 120
	}
	return w
}
