package merge

import (
	"bytes"
	"fmt"
)

// Block is one typed piece of a parsed fragment.
type Block interface {
	block()
}

// TextBlock holds context lines. They are emitted when the fragment creates
// its file and ignored when it merges into an existing one.
type TextBlock struct {
	Lines [][]byte
}

// AnchorBlock is an anchor marker line carried by the fragment.
type AnchorBlock struct {
	Name string
	Line int
	Raw  []byte
}

// InsertBlock is region content destined for one anchor.
type InsertBlock struct {
	Anchor  string // empty when the region has no name and no preceding anchor
	Content []byte
	Line    int // fragment line of the region start
}

func (TextBlock) block()   {}
func (AnchorBlock) block() {}
func (InsertBlock) block() {}

// Fragment is a parsed template file targeting one destination path.
type Fragment struct {
	Template string
	Path     string
	Blocks   []Block
	BOM      bool
	markers  bool
}

// HasMarkers reports whether the fragment contains any region or anchor
// marker.
func (f *Fragment) HasMarkers() bool {
	return f.markers
}

// Inserts returns the insert blocks in fragment order.
func (f *Fragment) Inserts() []InsertBlock {
	var out []InsertBlock
	for _, b := range f.Blocks {
		if ins, ok := b.(InsertBlock); ok {
			out = append(out, ins)
		}
	}
	return out
}

// Render returns the content the fragment creates when its path does not
// exist yet: context, anchor lines and region bodies, without region markers.
func (f *Fragment) Render() []byte {
	var buf bytes.Buffer
	if f.BOM {
		buf.Write(utf8BOM)
	}
	for _, b := range f.Blocks {
		switch b := b.(type) {
		case TextBlock:
			for _, l := range b.Lines {
				buf.Write(l)
			}
		case AnchorBlock:
			buf.Write(b.Raw)
		case InsertBlock:
			buf.Write(b.Content)
		}
	}
	return buf.Bytes()
}

// Parse tokenizes content once into typed blocks. Region markers must pair
// up; any violation returns a *MarkerError and no fragment.
//
// Inside a region an anchor marker line retargets the lines that follow it.
// A region without a name targets the most recent anchor marker.
func Parse(template, path string, content []byte, syntax Syntax) (*Fragment, error) {
	f := &Fragment{Template: template, Path: path}
	if bytes.HasPrefix(content, utf8BOM) {
		f.BOM = true
		content = content[len(utf8BOM):]
	}

	fail := func(line int, format string, args ...any) (*Fragment, error) {
		return nil, &MarkerError{Template: template, Path: path, Line: line, Reason: fmt.Sprintf(format, args...)}
	}

	var (
		text          [][]byte
		current       string // most recent anchor
		inRegion      bool
		regionName    string
		regionLine    int
		segmentAnchor string
		segment       bytes.Buffer
	)

	flushText := func() {
		if len(text) > 0 {
			f.Blocks = append(f.Blocks, TextBlock{Lines: text})
			text = nil
		}
	}
	flushSegment := func() {
		if segment.Len() > 0 {
			content := make([]byte, segment.Len())
			copy(content, segment.Bytes())
			f.Blocks = append(f.Blocks, InsertBlock{Anchor: segmentAnchor, Content: content, Line: regionLine})
			segment.Reset()
		}
	}

	for i, line := range splitLines(content) {
		n := i + 1
		kind, name := syntax.Classify(line)
		if kind != TokenText {
			f.markers = true
		}

		if !inRegion {
			switch kind {
			case TokenText:
				text = append(text, line)
			case TokenAnchor:
				flushText()
				f.Blocks = append(f.Blocks, AnchorBlock{Name: name, Line: n, Raw: line})
				current = name
			case TokenRegionStart:
				flushText()
				inRegion = true
				regionName = name
				regionLine = n
				segmentAnchor = name
				if segmentAnchor == "" {
					segmentAnchor = current
				}
			case TokenRegionEnd:
				return fail(n, "region end without a start")
			}
			continue
		}

		switch kind {
		case TokenText:
			segment.Write(line)
		case TokenAnchor:
			flushSegment()
			f.Blocks = append(f.Blocks, AnchorBlock{Name: name, Line: n, Raw: line})
			current = name
			segmentAnchor = name
		case TokenRegionStart:
			return fail(n, "region start inside the region opened at line %d", regionLine)
		case TokenRegionEnd:
			if name != "" && regionName != "" && name != regionName {
				return fail(n, "region end %q closes region %q opened at line %d", name, regionName, regionLine)
			}
			flushSegment()
			inRegion = false
		}
	}

	if inRegion {
		return fail(regionLine, "region opened here is never closed")
	}
	flushText()
	return f, nil
}
