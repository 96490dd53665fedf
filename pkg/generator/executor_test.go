package generator_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/firebird-suite/magpie/pkg/generator"
)

type recordingStrategy struct {
	answer generator.ConflictResolution
	paths  []string
}

func (s *recordingStrategy) Resolve(path string, existing, newer []byte) (generator.ConflictResolution, error) {
	s.paths = append(s.paths, path)
	return s.answer, nil
}

func TestExecute_DryRun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "models", "User.kt")

	var buf bytes.Buffer
	summary, err := generator.Execute(context.Background(), []generator.Operation{
		generator.NewWriteFile(path, []byte("data class User()")),
	}, generator.ExecuteOptions{DryRun: true, Writer: &buf})

	require.NoError(t, err)
	assert.NoFileExists(t, path)
	assert.Contains(t, buf.String(), "[DRY RUN]")
	assert.Equal(t, 1, summary.Created)
}

func TestExecute_WritesAndCopies(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "logo.png")
	require.NoError(t, os.WriteFile(src, []byte("png"), 0644))

	ops := []generator.Operation{
		&generator.MkdirOp{Path: filepath.Join(dir, "out", "res", "values")},
		generator.NewWriteFile(filepath.Join(dir, "out", "a.kt"), []byte("a")),
		&generator.CopyFileOp{Src: src, Dst: filepath.Join(dir, "out", "res", "drawable", "logo.png")},
	}

	var buf bytes.Buffer
	summary, err := generator.Execute(context.Background(), ops, generator.ExecuteOptions{Writer: &buf})
	require.NoError(t, err)

	assert.DirExists(t, filepath.Join(dir, "out", "res", "values"))
	assert.FileExists(t, filepath.Join(dir, "out", "res", "drawable", "logo.png"))
	assert.Equal(t, 2, summary.Created)
	assert.Equal(t, 1, summary.Other)
	assert.Equal(t, 2, summary.Files())
}

func TestExecute_ValidationFailsBeforeAnyWrite(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.kt")

	ops := []generator.Operation{
		generator.NewWriteFile(first, []byte("ok")),
		&generator.CopyFileOp{Src: filepath.Join(dir, "missing.png"), Dst: filepath.Join(dir, "x.png")},
	}

	_, err := generator.Execute(context.Background(), ops, generator.ExecuteOptions{Writer: &bytes.Buffer{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
	assert.NoFileExists(t, first)
}

func TestExecute_Conflicts(t *testing.T) {
	tests := []struct {
		name        string
		answer      generator.ConflictResolution
		wantContent string
		wantErr     error
		check       func(*testing.T, generator.Summary)
	}{
		{"overwrite", generator.Overwrite, "new", nil, func(t *testing.T, s generator.Summary) {
			assert.Equal(t, 1, s.Overwritten)
		}},
		{"skip", generator.Skip, "old", nil, func(t *testing.T, s generator.Summary) {
			assert.Equal(t, 1, s.Skipped)
		}},
		{"cancel", generator.Cancel, "old", generator.ErrCancelled, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "User.kt")
			require.NoError(t, os.WriteFile(path, []byte("old"), 0644))

			strategy := &recordingStrategy{answer: tt.answer}
			summary, err := generator.Execute(context.Background(),
				[]generator.Operation{generator.NewWriteFile(path, []byte("new"))},
				generator.ExecuteOptions{Resolver: generator.NewResolverWith(strategy), Writer: &bytes.Buffer{}})

			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
			} else {
				require.NoError(t, err)
				tt.check(t, summary)
			}
			got, _ := os.ReadFile(path)
			assert.Equal(t, tt.wantContent, string(got))
			assert.Equal(t, []string{path}, strategy.paths)
		})
	}
}

func TestExecute_UnchangedFilesSkipResolver(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Same.kt")
	require.NoError(t, os.WriteFile(path, []byte("same"), 0644))

	strategy := &recordingStrategy{answer: generator.Cancel}
	summary, err := generator.Execute(context.Background(),
		[]generator.Operation{generator.NewWriteFile(path, []byte("same"))},
		generator.ExecuteOptions{Resolver: generator.NewResolverWith(strategy), Writer: &bytes.Buffer{}})

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Unchanged)
	assert.Empty(t, strategy.paths)
}

func TestExecute_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := generator.Execute(ctx, []generator.Operation{
		generator.NewWriteFile(filepath.Join(t.TempDir(), "a.kt"), []byte("a")),
	}, generator.ExecuteOptions{Writer: &bytes.Buffer{}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRemoveAllOp_RefusesRoot(t *testing.T) {
	assert.Error(t, (&generator.RemoveAllOp{Path: "/"}).Validate(context.Background()))
	assert.Error(t, (&generator.RemoveAllOp{Path: "."}).Validate(context.Background()))

	dir := filepath.Join(t.TempDir(), "to")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "app"), 0755))
	op := &generator.RemoveAllOp{Path: dir}
	require.NoError(t, op.Validate(context.Background()))
	require.NoError(t, op.Execute(context.Background()))
	assert.NoDirExists(t, dir)
}

func TestNewResolver(t *testing.T) {
	for _, name := range []string{"overwrite", "skip", "diff", "ask", ""} {
		_, err := generator.NewResolver(name, &bytes.Buffer{})
		assert.NoError(t, err, name)
	}
	_, err := generator.NewResolver("merge", nil)
	assert.Error(t, err)
}

func TestResolver_DiffKeepsExistingAndPrints(t *testing.T) {
	var buf bytes.Buffer
	r, err := generator.NewResolver(generator.StrategyDiff, &buf)
	require.NoError(t, err)

	res, err := r.Resolve("User.kt", []byte("val a = 1\n"), []byte("val a = 2\n"))
	require.NoError(t, err)
	assert.Equal(t, generator.Skip, res)
	assert.Contains(t, buf.String(), "-val a = 1")
	assert.Contains(t, buf.String(), "+val a = 2")
}
