package merge

import (
	"errors"
	"fmt"
)

var (
	// ErrUnbalancedMarkerPair is returned when a fragment's region markers do
	// not pair up. The fragment is rejected before any file is touched.
	ErrUnbalancedMarkerPair = errors.New("unbalanced marker pair")

	// ErrDanglingAnchorReference is returned when a fragment targets an
	// anchor its destination file does not contain.
	ErrDanglingAnchorReference = errors.New("dangling anchor reference")
)

// MarkerError locates an unbalanced marker.
type MarkerError struct {
	Template string
	Path     string
	Line     int
	Reason   string
}

func (e *MarkerError) Error() string {
	return fmt.Sprintf("%s (%s) line %d: %s: %v", e.Path, e.Template, e.Line, e.Reason, ErrUnbalancedMarkerPair)
}

func (e *MarkerError) Unwrap() error {
	return ErrUnbalancedMarkerPair
}

// DanglingAnchorError names the anchor a fragment could not find.
type DanglingAnchorError struct {
	Template string
	Path     string
	Anchor   string
	Line     int // region start line in the fragment
}

func (e *DanglingAnchorError) Error() string {
	anchor := e.Anchor
	if anchor == "" {
		anchor = "<unnamed>"
	}
	return fmt.Sprintf("%s (%s) line %d: anchor %q not found: %v", e.Path, e.Template, e.Line, anchor, ErrDanglingAnchorReference)
}

func (e *DanglingAnchorError) Unwrap() error {
	return ErrDanglingAnchorReference
}
