package generator

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Transaction stages file rewrites and commits them together. If any write
// fails, files already written are restored to their previous content (or
// removed if they did not exist).
type Transaction struct {
	staged    []stagedFile
	written   []backup
	committed bool
}

type stagedFile struct {
	path    string
	content []byte
	mode    os.FileMode
}

type backup struct {
	path    string
	content []byte // nil when the file did not exist
	mode    os.FileMode
}

// NewTransaction creates an empty transaction.
func NewTransaction() *Transaction {
	return &Transaction{}
}

// Stage queues a write; nothing touches disk until Commit.
func (t *Transaction) Stage(path string, content []byte, mode os.FileMode) {
	if mode == 0 {
		mode = 0644
	}
	t.staged = append(t.staged, stagedFile{path: path, content: content, mode: mode})
}

// Len returns the number of staged writes.
func (t *Transaction) Len() int { return len(t.staged) }

// Paths lists the staged paths in staging order.
func (t *Transaction) Paths() []string {
	paths := make([]string, len(t.staged))
	for i, s := range t.staged {
		paths[i] = s.path
	}
	return paths
}

// Commit writes every staged file.
func (t *Transaction) Commit() error {
	if t.committed {
		return fmt.Errorf("transaction already committed")
	}

	for _, s := range t.staged {
		b := backup{path: s.path, mode: s.mode}
		if old, err := os.ReadFile(s.path); err == nil {
			b.content = old
			if info, err := os.Stat(s.path); err == nil {
				b.mode = info.Mode().Perm()
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			t.restore()
			return fmt.Errorf("failed to read %s before writing: %w", s.path, err)
		}

		if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
			t.restore()
			return fmt.Errorf("failed to create directory for %s: %w", s.path, err)
		}
		if err := os.WriteFile(s.path, s.content, s.mode); err != nil {
			t.restore()
			return fmt.Errorf("failed to write file %s: %w", s.path, err)
		}
		t.written = append(t.written, b)
	}

	t.committed = true
	return nil
}

// Rollback undoes a commit that has not completed; it is safe to defer.
func (t *Transaction) Rollback() {
	if !t.committed {
		t.restore()
	}
}

func (t *Transaction) restore() {
	for i := len(t.written) - 1; i >= 0; i-- {
		b := t.written[i]
		if b.content == nil {
			os.Remove(b.path) // best effort
			continue
		}
		os.WriteFile(b.path, b.content, b.mode) // best effort
	}
	t.written = nil
}
