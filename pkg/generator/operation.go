package generator

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/simonhull/firebird-suite/magpie/pkg/filesystem"
)

// Operation is a file system change that can be checked before it runs.
//
// Validate reports problems without touching the file system. Execute
// performs the change and is only called after every operation in a batch
// validated. Description is the line printed for the operation, e.g.
// "Create app/src/main/java/com/x/models/User.kt (412 bytes)".
type Operation interface {
	Validate(ctx context.Context) error
	Execute(ctx context.Context) error
	Description() string
}

// Writer is an operation that produces a file whose previous content may
// need conflict resolution.
type Writer interface {
	Operation
	Target() string
	Proposed() ([]byte, error)
}

// WriteFileOp writes generated content to Path, creating parent directories.
type WriteFileOp struct {
	Path    string
	Content []byte
	Mode    fs.FileMode // defaults to 0644
}

// NewWriteFile is shorthand for a 0644 WriteFileOp.
func NewWriteFile(path string, content []byte) *WriteFileOp {
	return &WriteFileOp{Path: path, Content: content, Mode: 0644}
}

func (op *WriteFileOp) Validate(ctx context.Context) error {
	if op.Path == "" {
		return fmt.Errorf("write operation has no path")
	}
	if op.Content == nil {
		return fmt.Errorf("content is nil for file: %s", op.Path)
	}
	if info, err := os.Stat(op.Path); err == nil && info.IsDir() {
		return fmt.Errorf("cannot write %s: is a directory", op.Path)
	}
	return nil
}

func (op *WriteFileOp) Execute(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(op.Path), 0755); err != nil {
		return fmt.Errorf("cannot create directory for %s: %w", op.Path, err)
	}
	mode := op.Mode
	if mode == 0 {
		mode = 0644
	}
	return os.WriteFile(op.Path, op.Content, mode)
}

func (op *WriteFileOp) Description() string {
	return fmt.Sprintf("Create %s (%d bytes)", op.Path, len(op.Content))
}

func (op *WriteFileOp) Target() string            { return op.Path }
func (op *WriteFileOp) Proposed() ([]byte, error) { return op.Content, nil }

// CopyFileOp copies Src to Dst, e.g. an image asset into res/drawable.
type CopyFileOp struct {
	Src string
	Dst string
}

func (op *CopyFileOp) Validate(ctx context.Context) error {
	info, err := os.Stat(op.Src)
	if err != nil {
		return fmt.Errorf("cannot copy %s: %w", op.Src, err)
	}
	if info.IsDir() {
		return fmt.Errorf("cannot copy %s: is a directory", op.Src)
	}
	return nil
}

func (op *CopyFileOp) Execute(ctx context.Context) error {
	return filesystem.CopyFile(op.Src, op.Dst)
}

func (op *CopyFileOp) Description() string {
	return fmt.Sprintf("Copy %s → %s", op.Src, op.Dst)
}

func (op *CopyFileOp) Target() string            { return op.Dst }
func (op *CopyFileOp) Proposed() ([]byte, error) { return os.ReadFile(op.Src) }

// MkdirOp creates a directory tree.
type MkdirOp struct {
	Path string
}

func (op *MkdirOp) Validate(ctx context.Context) error {
	if info, err := os.Stat(op.Path); err == nil && !info.IsDir() {
		return fmt.Errorf("cannot create directory %s: a file exists there", op.Path)
	}
	return nil
}

func (op *MkdirOp) Execute(ctx context.Context) error {
	return os.MkdirAll(op.Path, 0755)
}

func (op *MkdirOp) Description() string {
	return fmt.Sprintf("Create directory %s", op.Path)
}

// RemoveAllOp deletes a directory tree (used by --clean).
type RemoveAllOp struct {
	Path string
}

func (op *RemoveAllOp) Validate(ctx context.Context) error {
	clean := filepath.Clean(op.Path)
	if clean == "." || clean == "/" || clean == filepath.VolumeName(clean)+string(filepath.Separator) {
		return fmt.Errorf("refusing to remove %q", op.Path)
	}
	if home, err := os.UserHomeDir(); err == nil && clean == filepath.Clean(home) {
		return fmt.Errorf("refusing to remove home directory %q", op.Path)
	}
	return nil
}

func (op *RemoveAllOp) Execute(ctx context.Context) error {
	return os.RemoveAll(op.Path)
}

func (op *RemoveAllOp) Description() string {
	return fmt.Sprintf("Remove %s", op.Path)
}
