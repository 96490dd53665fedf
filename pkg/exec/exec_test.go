package exec

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapture_ExitCodeIsNotAnError(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	e := NewExecutor(Options{})
	res, err := e.Capture(context.Background(), "sh", "-c", "echo 'e: file:///a.kt:1:1 boom' 1>&2; exit 3")

	require.NoError(t, err)
	assert.True(t, res.Failed())
	assert.Equal(t, 3, res.ExitCode)
	assert.Contains(t, res.Output, "e: file:///a.kt:1:1 boom")
}

func TestCapture_Success(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	e := NewExecutor(Options{Dir: t.TempDir(), Env: []string{"MAGPIE_TEST=1"}})
	res, err := e.CaptureLine(context.Background(), `sh -c "echo $MAGPIE_TEST"`)

	require.NoError(t, err)
	assert.False(t, res.Failed())
	assert.Equal(t, "1\n", res.Output)
}

func TestCapture_CommandNotFound(t *testing.T) {
	e := NewExecutor(Options{})
	_, err := e.Capture(context.Background(), "magpie-definitely-not-installed")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestCapture_Cancelled(t *testing.T) {
	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep not available")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	e := NewExecutor(Options{})
	_, err := e.Capture(ctx, "sleep", "5")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCapture_MockedCommand(t *testing.T) {
	e := NewExecutor(Options{})
	var gotName string
	var gotArgs []string
	e.commandFunc = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		gotName, gotArgs = name, args
		return exec.CommandContext(ctx, "true")
	}
	if _, err := exec.LookPath("true"); err != nil {
		t.Skip("true not available")
	}

	_, err := e.CaptureLine(context.Background(), "./gradlew compileDebugKotlin --console=plain")
	require.NoError(t, err)
	assert.Equal(t, "./gradlew", gotName)
	assert.Equal(t, []string{"compileDebugKotlin", "--console=plain"}, gotArgs)
}

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		line    string
		want    []string
		wantErr bool
	}{
		{"./gradlew build", []string{"./gradlew", "build"}, false},
		{`kotlinc "My App/Main.kt" -d out`, []string{"kotlinc", "My App/Main.kt", "-d", "out"}, false},
		{`sh -c 'echo hi'`, []string{"sh", "-c", "echo hi"}, false},
		{`a ""`, []string{"a", ""}, false},
		{"   ", nil, true},
		{`broken "quote`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := SplitCommand(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
