package generator

import (
	"context"
	"fmt"
	"io/fs"
	"os"
)

// Operation is one planned change to the destination tree.
type Operation interface {
	// Validate reports whether the operation can run. It has no side effects.
	Validate(ctx context.Context) error
	// Stage adds the operation's writes to tx.
	Stage(tx *Transaction)
	Description() string
}

// WriteFileOp writes a generated or merged file. Update marks a write that
// replaces an existing file on purpose (a merge result or an accepted
// conflict); without it an existing file is an error.
type WriteFileOp struct {
	Path    string
	Content []byte
	Mode    fs.FileMode
	Update  bool
}

func (op *WriteFileOp) Validate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if op.Content == nil {
		return fmt.Errorf("content is nil for file: %s", op.Path)
	}
	info, err := os.Stat(op.Path)
	switch {
	case err == nil && info.IsDir():
		return fmt.Errorf("path is a directory: %s", op.Path)
	case err == nil && !op.Update:
		return fmt.Errorf("file already exists: %s", op.Path)
	case err != nil && !os.IsNotExist(err):
		return fmt.Errorf("cannot stat %s: %w", op.Path, err)
	}
	return nil
}

func (op *WriteFileOp) Stage(tx *Transaction) {
	mode := op.Mode
	if mode == 0 {
		mode = 0o644
	}
	tx.AddFile(op.Path, op.Content, mode)
}

func (op *WriteFileOp) Description() string {
	verb := "Create"
	if op.Update {
		verb = "Update"
	}
	return fmt.Sprintf("%s %s (%d bytes)", verb, op.Path, len(op.Content))
}
