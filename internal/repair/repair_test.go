package repair

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/firebird-suite/magpie/internal/tables"
	"github.com/simonhull/firebird-suite/magpie/pkg/logger"
)

func newFixer() *Fixer { return NewFixer(tables.Tables{}) }

func TestFixContent(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		rules []string
	}{
		{
			name:  "trailing semicolon",
			input: "val x = 1;\n",
			want:  "val x = 1\n",
			rules: []string{RuleTrailingSemicolon},
		},
		{
			name:  "trailing comma before paren",
			input: "foo(a, b, )\n",
			want:  "foo(a, b)\n",
			rules: []string{RuleTrailingComma},
		},
		{
			name:  "dangling try",
			input: "try {\n    work()\n}\n",
			want:  "try {\n    work()\n} catch (e: Exception) {\n}\n",
			rules: []string{RuleDanglingTry},
		},
		{
			name:  "try with catch is left alone",
			input: "try {\n    work()\n} catch (e: Exception) {\n}\n",
			want:  "try {\n    work()\n} catch (e: Exception) {\n}\n",
		},
		{
			name:  "doubled comma",
			input: "f(a,, b)\n",
			want:  "f(a, b)\n",
			rules: []string{RuleDoubledComma},
		},
		{
			name:  "blank line runs",
			input: "a\n\n\n\nb\n",
			want:  "a\n\nb\n",
			rules: []string{RuleBlankLines},
		},
		{
			name:  "unbalanced brackets",
			input: "fun f() {\n    g(",
			want:  "fun f() {\n    g()\n}",
			rules: []string{RuleBalance},
		},
		{
			name:  "missing imports after package",
			input: "package com.x\n\n@Composable\nfun A() {\n    Text(\"hi\")\n}\n",
			want: "package com.x\n\n" +
				"import androidx.compose.material3.Text\n" +
				"import androidx.compose.runtime.Composable\n\n" +
				"@Composable\nfun A() {\n    Text(\"hi\")\n}\n",
			rules: []string{RuleMissingImports},
		},
		{
			name:  "several rules in order",
			input: "val x = listOf(1,, 2, );\n",
			want:  "val x = listOf(1, 2)\n",
			rules: []string{RuleTrailingSemicolon, RuleTrailingComma, RuleDoubledComma},
		},
	}

	f := newFixer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rules := f.FixContent(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.rules, rules)

			again, more := f.FixContent(got)
			assert.Equal(t, got, again, "second pass changes nothing")
			assert.Empty(t, more)
		})
	}
}

func TestInsertImports_AfterExisting(t *testing.T) {
	src := "package a\n\nimport androidx.compose.runtime.Composable\n\nfun x() {}\n"
	got := insertImports(src, []string{"androidx.compose.material3.Text", "androidx.compose.runtime.Composable"})
	assert.Equal(t, "package a\n\nimport androidx.compose.runtime.Composable\nimport androidx.compose.material3.Text\n\nfun x() {}\n", got)
}

const compilerOutput = `> Task :app:compileDebugKotlin FAILED
e: file:///tmp/app/Home.kt:12:5 Unresolved reference: Text
w: file:///tmp/app/Home.kt:3:1 Parameter 'x' is never used
e: /tmp/app/List.kt: (4, 10): Expecting ')'
e: file:///tmp/app/Home.kt:12:5 Unresolved reference: Text

FAILURE: Build failed with an exception.
`

func TestParseDiagnostics(t *testing.T) {
	diags := ParseDiagnostics(compilerOutput)

	require.Len(t, diags, 2)
	assert.Equal(t, []Diagnostic{{File: "/tmp/app/Home.kt", Line: 12, Column: 5, Message: "Unresolved reference: Text"}}, diags["/tmp/app/Home.kt"])
	assert.Equal(t, []Diagnostic{{File: "/tmp/app/List.kt", Line: 4, Column: 10, Message: "Expecting ')'"}}, diags["/tmp/app/List.kt"])
	assert.Equal(t, 2, count(diags))
	assert.Empty(t, ParseDiagnostics("BUILD SUCCESSFUL in 3s\n"))
}

func TestFingerprint_IgnoresOrder(t *testing.T) {
	a := ParseDiagnostics("e: /x/A.kt: (1, 1): one\ne: /x/B.kt: (2, 2): two\n")
	b := ParseDiagnostics("e: /x/B.kt: (2, 2): two\ne: /x/A.kt: (1, 1): one\n")
	assert.Equal(t, fingerprint(a), fingerprint(b))
}

func TestFixDiagnostics(t *testing.T) {
	tests := []struct {
		name    string
		content string
		diags   []Diagnostic
		want    string
		rules   []string
	}{
		{
			name:    "separate expressions",
			content: "    val a = 1 val b = 2",
			diags:   []Diagnostic{{Line: 1, Column: 15, Message: "Unexpected tokens (use ';' to separate expressions on the same line)"}},
			want:    "    val a = 1 ;val b = 2",
			rules:   []string{RuleSeparateExpressions},
		},
		{
			name:    "separate expressions replaces comma",
			content: "    foo(a),bar(b)",
			diags:   []Diagnostic{{Line: 1, Column: 12, Message: "Unexpected tokens (use ';' to separate expressions on the same line)"}},
			want:    "    foo(a);bar(b)",
			rules:   []string{RuleSeparateExpressions},
		},
		{
			name:    "unexpected tokens truncate the line",
			content: "    Text(\"a\") extra stuff",
			diags:   []Diagnostic{{Line: 1, Column: 15, Message: "Unexpected tokens"}},
			want:    "    Text(\"a\")",
			rules:   []string{RuleUnexpectedToken},
		},
		{
			name:    "expecting element drops trailing comma",
			content: "    listOf(1, 2,",
			diags:   []Diagnostic{{Line: 1, Column: 16, Message: "Expecting an element"}},
			want:    "    listOf(1, 2",
			rules:   []string{RuleExpectingElement},
		},
		{
			name:    "expecting element comments out",
			content: "    @@",
			diags:   []Diagnostic{{Line: 1, Column: 5, Message: "Expecting an element"}},
			want:    "    // @@ // TODO: expecting an element",
			rules:   []string{RuleExpectingElement},
		},
		{
			name:    "expecting paren",
			content: "    foo(bar",
			diags:   []Diagnostic{{Line: 1, Column: 12, Message: "Expecting ')'"}},
			want:    "    foo(bar)",
			rules:   []string{RuleExpectingParen},
		},
		{
			name:    "expecting brace",
			content: "fun a() {\n    b()",
			diags:   []Diagnostic{{Line: 2, Column: 8, Message: "Expecting '}'"}},
			want:    "fun a() {\n    b()\n}",
			rules:   []string{RuleExpectingBrace},
		},
		{
			name:    "top level declaration",
			content: "fun a() {\n}\n}",
			diags:   []Diagnostic{{Line: 3, Column: 1, Message: "Expecting a top level declaration"}},
			want:    "fun a() {\n}\n// } // TODO: invalid top level declaration",
			rules:   []string{RuleTopLevel},
		},
		{
			name:    "unresolved reference",
			content: "package com.x\n\nfun a() {\n    Text(\"hi\")\n}",
			diags:   []Diagnostic{{Line: 4, Column: 5, Message: "Unresolved reference: Text"}},
			want:    "package com.x\n\nimport androidx.compose.material3.Text\n\nfun a() {\n    Text(\"hi\")\n}",
			rules:   []string{RuleUnresolved},
		},
		{
			name:    "unresolved reference, K2 wording",
			content: "package com.x\n\nval m = Modifier",
			diags:   []Diagnostic{{Line: 3, Column: 9, Message: "Unresolved reference 'Modifier'."}},
			want:    "package com.x\n\nimport androidx.compose.ui.Modifier\n\nval m = Modifier",
			rules:   []string{RuleUnresolved},
		},
		{
			name:    "unknown symbol",
			content: "val f = Frobnicate()",
			diags:   []Diagnostic{{Line: 1, Column: 9, Message: "Unresolved reference: Frobnicate"}},
			want:    "val f = Frobnicate()",
		},
		{
			name:    "bottom up",
			content: "a {\nb(",
			diags: []Diagnostic{
				{Line: 1, Column: 4, Message: "Expecting '}'"},
				{Line: 2, Column: 3, Message: "Expecting ')'"},
			},
			want:  "a {\n}\nb()",
			rules: []string{RuleExpectingParen, RuleExpectingBrace},
		},
		{
			name:    "line out of range",
			content: "x",
			diags:   []Diagnostic{{Line: 9, Column: 1, Message: "Expecting ')'"}},
			want:    "x",
		},
	}

	f := newFixer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rules := f.FixDiagnostics(tt.content, tt.diags)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.rules, rules)
		})
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func newRepairer(opts Options) *Repairer {
	return New(newFixer(), opts).WithLogger(logger.NewSilentLogger())
}

func TestFixDir(t *testing.T) {
	dir := t.TempDir()
	dirty := filepath.Join(dir, "ui", "Home.kt")
	writeFile(t, dirty, "val x = 1;\n")
	writeFile(t, filepath.Join(dir, "Clean.kt"), "val y = 2\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "val z = 3;\n")

	res, err := newRepairer(Options{}).FixDir(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Files)
	assert.Equal(t, []string{dirty}, res.Fixed)
	assert.Equal(t, map[string]int{RuleTrailingSemicolon: 1}, res.Rules)
	assert.Equal(t, "val x = 1\n", readFile(t, dirty))
	assert.Equal(t, "val z = 3;\n", readFile(t, filepath.Join(dir, "notes.txt")))
}

func TestFixDir_DryRun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Home.kt")
	writeFile(t, path, "val x = 1;\n")

	var out bytes.Buffer
	res, err := newRepairer(Options{DryRun: true, Out: &out}).FixDir(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, []string{path}, res.Fixed)
	assert.Equal(t, "val x = 1;\n", readFile(t, path), "dry run writes nothing")
	assert.Contains(t, out.String(), "-val x = 1;")
	assert.Contains(t, out.String(), "+val x = 1")
}

func TestFixDir_Missing(t *testing.T) {
	_, err := newRepairer(Options{}).FixDir(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFixErrors_RelativePaths(t *testing.T) {
	base := t.TempDir()
	path := filepath.Join(base, "app", "Home.kt")
	writeFile(t, path, "fun a() {\n    foo(bar\n}\n")

	text := "e: app/Home.kt: (2, 12): Expecting ')'\n" +
		"e: file:///nonexistent/Gone.kt:1:1 Expecting ')'\n"
	res, err := newRepairer(Options{Base: base}).FixErrors(context.Background(), text)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Diags)
	assert.Equal(t, 1, res.Files, "missing files are skipped")
	assert.Equal(t, map[string]int{RuleExpectingParen: 1}, res.Rules)
	assert.Equal(t, "fun a() {\n    foo(bar)\n}\n", readFile(t, path))
}

func TestFixErrors_NoDiagnostics(t *testing.T) {
	res, err := newRepairer(Options{}).FixErrors(context.Background(), "BUILD SUCCESSFUL\n")
	require.NoError(t, err)
	assert.Zero(t, res.Diags)
	assert.Empty(t, res.Fixed)
}

func TestFixReader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "A.kt")
	writeFile(t, path, "fun a() {\n    b()")

	in := strings.NewReader(fmt.Sprintf("e: %s: (2, 8): Expecting '}'\n", path))
	res, err := newRepairer(Options{}).FixReader(context.Background(), in)
	require.NoError(t, err)
	assert.Len(t, res.Fixed, 1)
	assert.Equal(t, "fun a() {\n    b()\n}", readFile(t, path))
}

func TestFixErrorFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "A.kt")
	writeFile(t, path, "package a\n\nval m = Modifier\n")
	log := filepath.Join(dir, "build.txt")
	writeFile(t, log, fmt.Sprintf("e: file://%s:3:9 Unresolved reference: Modifier\n", path))

	res, err := newRepairer(Options{}).FixErrorFile(context.Background(), log)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Rules[RuleUnresolved])
	assert.Contains(t, readFile(t, path), "import androidx.compose.ui.Modifier\n")

	_, err = newRepairer(Options{}).FixErrorFile(context.Background(), filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

// fakeBuilder replays outputs; an empty output is a passing build.
type fakeBuilder struct {
	outputs []string
	err     error
	calls   int
}

func (b *fakeBuilder) Build(context.Context) (string, bool, error) {
	if b.err != nil {
		return "", true, b.err
	}
	out := b.outputs[min(b.calls, len(b.outputs)-1)]
	b.calls++
	return out, out != "", nil
}

func TestContinuous(t *testing.T) {
	unclosed := func(path string, col int) string {
		return fmt.Sprintf("e: %s: (1, %d): Expecting '}'\n", path, col)
	}

	tests := []struct {
		name     string
		outputs  func(path string) []string
		max      int
		wantErr  error
		calls    int
		attempts int
	}{
		{
			name:     "passes after one fix",
			outputs:  func(p string) []string { return []string{unclosed(p, 9), ""} },
			calls:    2,
			attempts: 1,
		},
		{
			name:     "same errors twice",
			outputs:  func(p string) []string { return []string{unclosed(p, 9)} },
			wantErr:  ErrNoProgress,
			calls:    2,
			attempts: 1,
		},
		{
			name: "nothing fixable",
			outputs: func(p string) []string {
				return []string{fmt.Sprintf("e: %s: (1, 1): Unresolved reference: Frobnicate\n", p)}
			},
			wantErr:  ErrNoProgress,
			calls:    1,
			attempts: 1,
		},
		{
			name: "iteration limit",
			outputs: func(p string) []string {
				return []string{unclosed(p, 1), unclosed(p, 2), unclosed(p, 3)}
			},
			max:      2,
			wantErr:  ErrMaxIterations,
			calls:    2,
			attempts: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "A.kt")
			writeFile(t, path, "fun a() {")
			b := &fakeBuilder{outputs: tt.outputs(path)}

			history, err := newRepairer(Options{}).Continuous(context.Background(), b, tt.max)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.calls, b.calls)
			assert.Len(t, history, tt.attempts)
			assert.Equal(t, 1, history[0].N)
			assert.Equal(t, 1, history[0].Errors)
		})
	}
}

func TestContinuous_BuildError(t *testing.T) {
	boom := errors.New("gradlew: not found")
	_, err := newRepairer(Options{}).Continuous(context.Background(), &fakeBuilder{err: boom}, 3)
	assert.ErrorIs(t, err, boom)
}

func TestContinuous_DryRun(t *testing.T) {
	_, err := newRepairer(Options{DryRun: true}).Continuous(context.Background(), &fakeBuilder{outputs: []string{""}}, 3)
	assert.Error(t, err)
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "A.kt")
	writeFile(t, path, "fun a() {\n    foo(bar\n}\n")
	logPath := filepath.Join(dir, "errors.log")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	passes := make(chan Result, 4)
	done := make(chan error, 1)
	go func() {
		done <- newRepairer(Options{}).Watch(ctx, logPath, 50*time.Millisecond, func(res Result, err error) {
			if err == nil {
				passes <- res
			}
		})
	}()

	// The watcher may or may not be registered yet; either the initial
	// check or the write event triggers a pass.
	time.Sleep(50 * time.Millisecond)
	writeFile(t, logPath, fmt.Sprintf("e: %s: (2, 12): Expecting ')'\n", path))

	select {
	case res := <-passes:
		assert.Equal(t, []string{path}, res.Fixed)
	case <-time.After(5 * time.Second):
		t.Fatal("no repair pass after the log was written")
	}
	assert.Equal(t, "fun a() {\n    foo(bar)\n}\n", readFile(t, path))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}
