// Package generator writes an assembled tree to disk.
//
// Writes are staged in a Transaction and committed together; a failed commit
// restores every file it touched. Existing files that a generation would
// replace wholesale go through a ConflictStrategy first:
//
//	resolver, err := generator.NewConflictResolver(force, skip, diff)
//	choice, err := resolver.Resolve(generator.Conflict{Path: p, Existing: old, Proposed: next})
//
// Text fragments ending in .tmpl are rendered with Renderer, which carries
// case helpers for names and namespaces.
package generator
