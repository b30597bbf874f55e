package generator

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrCommitted is returned when a transaction is committed twice.
var ErrCommitted = errors.New("transaction already committed")

type stagedWrite struct {
	path    string
	content []byte
	mode    os.FileMode
}

// undo restores one path to its pre-commit state.
type undo struct {
	path    string
	existed bool
	content []byte
	mode    os.FileMode
	dirs    []string // directories created for path, deepest first
}

// Transaction stages file writes and commits them together. A failed commit
// restores overwritten files and removes created files and directories.
type Transaction struct {
	writes    []stagedWrite
	applied   []undo
	committed bool
}

// NewTransaction returns an empty transaction.
func NewTransaction() *Transaction {
	return &Transaction{}
}

// AddFile stages a write. Later writes to the same path replace earlier ones.
func (t *Transaction) AddFile(path string, content []byte, mode os.FileMode) {
	for i := range t.writes {
		if t.writes[i].path == path {
			t.writes[i].content = content
			t.writes[i].mode = mode
			return
		}
	}
	t.writes = append(t.writes, stagedWrite{path: path, content: content, mode: mode})
}

// Paths returns the staged paths in staging order.
func (t *Transaction) Paths() []string {
	out := make([]string, len(t.writes))
	for i, w := range t.writes {
		out[i] = w.path
	}
	return out
}

// Len returns the number of staged writes.
func (t *Transaction) Len() int {
	return len(t.writes)
}

// Commit writes every staged file.
func (t *Transaction) Commit() error {
	if t.committed {
		return ErrCommitted
	}
	for _, w := range t.writes {
		u, err := t.apply(w)
		if err != nil {
			t.restore()
			return err
		}
		t.applied = append(t.applied, u)
	}
	t.committed = true
	return nil
}

func (t *Transaction) apply(w stagedWrite) (undo, error) {
	u := undo{path: w.path}
	if info, err := os.Stat(w.path); err == nil {
		if info.IsDir() {
			return u, fmt.Errorf("cannot write %s: is a directory", w.path)
		}
		prev, err := os.ReadFile(w.path)
		if err != nil {
			return u, fmt.Errorf("failed to back up %s: %w", w.path, err)
		}
		u.existed, u.content, u.mode = true, prev, info.Mode().Perm()
	}

	dir := filepath.Dir(w.path)
	for d := dir; ; d = filepath.Dir(d) {
		if _, err := os.Stat(d); err == nil || d == filepath.Dir(d) {
			break
		}
		u.dirs = append(u.dirs, d)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return u, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	if err := os.WriteFile(w.path, w.content, w.mode); err != nil {
		t.applied = append(t.applied, u)
		return u, fmt.Errorf("failed to write file %s: %w", w.path, err)
	}
	return u, nil
}

// restore undoes applied writes in reverse order. Best effort.
func (t *Transaction) restore() {
	for i := len(t.applied) - 1; i >= 0; i-- {
		u := t.applied[i]
		if u.existed {
			_ = os.WriteFile(u.path, u.content, u.mode)
			continue
		}
		_ = os.Remove(u.path)
		for _, d := range u.dirs {
			_ = os.Remove(d) // only succeeds when empty
		}
	}
	t.applied = nil
}

// Rollback undoes a commit that has not finished. It is a no-op after a
// successful commit, so it is safe to defer.
func (t *Transaction) Rollback() {
	if !t.committed {
		t.restore()
	}
}
