package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrCancelled is returned when the user cancels at a conflict prompt.
var ErrCancelled = errors.New("cancelled by user")

// ExecuteOptions configures execution behavior
type ExecuteOptions struct {
	DryRun   bool
	Resolver *Resolver // decides what happens to files that already exist; nil overwrites
	Writer   io.Writer // where operation lines go (defaults to os.Stdout)
}

// Summary counts what Execute did.
type Summary struct {
	Created     int
	Overwritten int
	Skipped     int
	Unchanged   int
	Other       int // directories, removals
}

// Add accumulates another summary into s.
func (s *Summary) Add(o Summary) {
	s.Created += o.Created
	s.Overwritten += o.Overwritten
	s.Skipped += o.Skipped
	s.Unchanged += o.Unchanged
	s.Other += o.Other
}

// Files is the number of files written or planned.
func (s Summary) Files() int { return s.Created + s.Overwritten }

// Execute validates every operation, resolves conflicts for files that
// already exist, then runs (or, with DryRun, only reports) the rest.
func Execute(ctx context.Context, ops []Operation, opts ExecuteOptions) (Summary, error) {
	var summary Summary
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}

	for _, op := range ops {
		if err := op.Validate(ctx); err != nil {
			return summary, fmt.Errorf("validation failed: %w", err)
		}
	}

	for _, op := range ops {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		verb := "✓"
		w, isWriter := op.(Writer)
		if isWriter {
			decision, err := decide(w, opts.Resolver)
			if err != nil {
				return summary, err
			}
			switch decision {
			case decisionUnchanged:
				summary.Unchanged++
				continue
			case decisionSkip:
				summary.Skipped++
				fmt.Fprintf(opts.Writer, "↷ Skip %s (exists)\n", w.Target())
				continue
			case decisionOverwrite:
				summary.Overwritten++
				verb = "✓ [overwrite]"
			default:
				summary.Created++
			}
		} else {
			summary.Other++
		}

		if opts.DryRun {
			fmt.Fprintf(opts.Writer, "✓ [DRY RUN] %s\n", op.Description())
			continue
		}
		if err := op.Execute(ctx); err != nil {
			return summary, fmt.Errorf("execution failed: %w", err)
		}
		fmt.Fprintf(opts.Writer, "%s %s\n", verb, op.Description())
	}

	return summary, nil
}

type decision int

const (
	decisionCreate decision = iota
	decisionOverwrite
	decisionSkip
	decisionUnchanged
)

func decide(w Writer, r *Resolver) (decision, error) {
	existing, err := os.ReadFile(w.Target())
	if errors.Is(err, os.ErrNotExist) {
		return decisionCreate, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", w.Target(), err)
	}

	proposed, err := w.Proposed()
	if err != nil {
		return 0, fmt.Errorf("preparing %s: %w", w.Target(), err)
	}
	if bytes.Equal(existing, proposed) {
		return decisionUnchanged, nil
	}
	if r == nil {
		return decisionOverwrite, nil
	}

	resolution, err := r.Resolve(w.Target(), existing, proposed)
	if err != nil {
		return 0, err
	}
	switch resolution {
	case Overwrite:
		return decisionOverwrite, nil
	case Skip:
		return decisionSkip, nil
	default:
		return 0, fmt.Errorf("%s: %w", w.Target(), ErrCancelled)
	}
}
