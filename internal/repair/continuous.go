package repair

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/simonhull/firebird-suite/magpie/pkg/exec"
	"github.com/simonhull/firebird-suite/magpie/pkg/filesystem"
	"github.com/simonhull/firebird-suite/magpie/pkg/logger"
)

// DefaultMaxIterations bounds Continuous when no limit is given.
const DefaultMaxIterations = 10

// Builder compiles the project and returns the compiler output.
type Builder interface {
	Build(ctx context.Context) (output string, failed bool, err error)
}

// CommandBuilder runs a build command line, ./gradlew compileDebugKotlin by
// default.
type CommandBuilder struct {
	Executor *exec.Executor
	Command  string
}

func (b CommandBuilder) Build(ctx context.Context) (string, bool, error) {
	res, err := b.Executor.CaptureLine(ctx, b.Command)
	if err != nil {
		return res.Output, true, err
	}
	return res.Output, res.Failed(), nil
}

// Iteration records one build-and-fix round.
type Iteration struct {
	N      int
	Errors int
	Result Result
}

// Continuous builds, fixes the reported errors and builds again until the
// build passes. It gives up with ErrNoProgress when a build reports the
// same errors as the one before, or nothing could be fixed, and with
// ErrMaxIterations after maxIterations builds.
func (r *Repairer) Continuous(ctx context.Context, b Builder, maxIterations int) ([]Iteration, error) {
	if r.opts.DryRun {
		return nil, errors.New("continuous mode cannot run dry: fixes must be written before rebuilding")
	}
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}

	var history []Iteration
	previous := ""
	for i := 1; i <= maxIterations; i++ {
		output, failed, err := b.Build(ctx)
		if err != nil {
			return history, fmt.Errorf("build: %w", err)
		}
		if !failed {
			r.logger.Info("Build succeeded", logger.F("iteration", i))
			return history, nil
		}

		diags := ParseDiagnostics(output)
		if len(diags) == 0 {
			return history, errors.New("build failed without Kotlin compiler errors")
		}
		fp := fingerprint(diags)
		if fp == previous {
			return history, ErrNoProgress
		}
		previous = fp

		r.logger.Info("Build failed, fixing", logger.F("iteration", i), logger.F("errors", count(diags)))
		res, err := r.FixErrors(ctx, output)
		history = append(history, Iteration{N: i, Errors: count(diags), Result: res})
		if err != nil {
			return history, err
		}
		if len(res.Fixed) == 0 {
			return history, ErrNoProgress
		}
	}
	return history, ErrMaxIterations
}

// DefaultDebounce is how long Watch waits after the last write to the log
// before reading it.
const DefaultDebounce = 300 * time.Millisecond

// Watch fixes the errors in logPath every time it is written, until ctx is
// done. The file does not have to exist yet. onPass, if set, receives the
// outcome of every pass.
func (r *Repairer) Watch(ctx context.Context, logPath string, debounce time.Duration, onPass func(Result, error)) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	target, err := filepath.Abs(logPath)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()
	// Build tools replace the log instead of appending, so watch the
	// directory rather than the file.
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(target), err)
	}
	r.logger.Info("Watching error log", logger.F("file", target))

	pass := func() {
		res, err := r.FixErrorFile(ctx, target)
		if err != nil {
			r.logger.Warn("Repair pass failed", logger.F("error", err))
		}
		if onPass != nil {
			onPass(res, err)
		}
	}

	timer := time.NewTimer(debounce)
	if !filesystem.Exists(target) {
		timer.Stop()
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				timer.Reset(debounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("File watcher error", logger.F("error", err))
		case <-timer.C:
			pass()
		}
	}
}
