package assembly

import (
	"encoding/hex"

	"github.com/simonhull/firebird-suite/weaver/internal/catalog"
	"github.com/simonhull/firebird-suite/weaver/internal/diagnostic"
	"github.com/simonhull/firebird-suite/weaver/internal/merge"
	"github.com/simonhull/firebird-suite/weaver/internal/resolve"
	"github.com/simonhull/firebird-suite/weaver/internal/selection"
	"github.com/zeebo/blake3"
)

// Result is the outcome of one generation request.
type Result struct {
	Criteria    selection.Criteria
	Plan        []catalog.TemplateRecord
	Files       []*merge.AssembledFile // sorted by path
	Failed      []merge.FileFailure    // sorted by path
	Conflicts   []merge.Conflict
	Dropped     []resolve.Drop
	Diagnostics diagnostic.Diagnostics
}

// Succeeded reports whether every planned file assembled.
func (r *Result) Succeeded() bool {
	return !r.HasFailures() && !r.Diagnostics.HasErrors()
}

// HasFailures reports whether any file failed to assemble.
func (r *Result) HasFailures() bool {
	return len(r.Failed) > 0
}

// PlanNames returns the planned template names in merge order.
func (r *Result) PlanNames() []string {
	out := make([]string, len(r.Plan))
	for i, rec := range r.Plan {
		out[i] = rec.Name
	}
	return out
}

// Paths returns the assembled file paths.
func (r *Result) Paths() []string {
	out := make([]string, len(r.Files))
	for i, f := range r.Files {
		out[i] = f.Path
	}
	return out
}

// File returns the assembled file at path.
func (r *Result) File(path string) (*merge.AssembledFile, bool) {
	for _, f := range r.Files {
		if f.Path == path {
			return f, true
		}
	}
	return nil, false
}

// Digest is a BLAKE3 hash over every assembled path and content. Two results
// with equal digests produced byte-identical trees.
func (r *Result) Digest() string {
	h := blake3.New()
	var size [8]byte
	for _, f := range r.Files {
		writeField(h, size[:], []byte(f.Path))
		writeField(h, size[:], f.Content)
	}
	for _, ff := range r.Failed {
		writeField(h, size[:], []byte("!"+ff.Path))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// writeField length-prefixes b so adjacent fields cannot alias.
func writeField(h *blake3.Hasher, scratch []byte, b []byte) {
	n := uint64(len(b))
	for i := 0; i < 8; i++ {
		scratch[i] = byte(n >> (8 * i))
	}
	h.Write(scratch)
	h.Write(b)
}
