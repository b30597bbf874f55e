package merge

import (
	"bytes"
	"strings"
)

// TokenKind classifies a line of a fragment or destination file.
type TokenKind int

const (
	TokenText TokenKind = iota
	TokenAnchor
	TokenRegionStart
	TokenRegionEnd
)

func (k TokenKind) String() string {
	switch k {
	case TokenAnchor:
		return "anchor"
	case TokenRegionStart:
		return "region-start"
	case TokenRegionEnd:
		return "region-end"
	default:
		return "text"
	}
}

// Marker prefixes, written after a comment leader.
const (
	regionStartMarker = "{[{"
	regionEndMarker   = "}]}"
	anchorMarker      = "^^"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CommentLeader opens (and optionally closes) a line comment.
type CommentLeader struct {
	Open  string
	Close string
}

// Syntax lists the comment leaders markers may hide behind.
type Syntax struct {
	Leaders []CommentLeader
}

// DefaultSyntax covers C-family, script, VB, SQL, INI and XML comments.
var DefaultSyntax = Syntax{Leaders: []CommentLeader{
	{Open: "<!--", Close: "-->"},
	{Open: "/*", Close: "*/"},
	{Open: "//"},
	{Open: "#"},
	{Open: "--"},
	{Open: "'"},
	{Open: ";"},
}}

// SyntaxFromLeaders builds a Syntax from "open" or "open close" strings.
func SyntaxFromLeaders(specs []string) Syntax {
	if len(specs) == 0 {
		return DefaultSyntax
	}
	var s Syntax
	for _, spec := range specs {
		fields := strings.Fields(spec)
		switch len(fields) {
		case 0:
			continue
		case 1:
			s.Leaders = append(s.Leaders, CommentLeader{Open: fields[0]})
		default:
			s.Leaders = append(s.Leaders, CommentLeader{Open: fields[0], Close: fields[1]})
		}
	}
	return s
}

// Classify reports whether a line is a marker and returns its name. Lines
// that are not markers are TokenText.
func (s Syntax) Classify(line []byte) (TokenKind, string) {
	line = bytes.TrimPrefix(line, utf8BOM)
	text := strings.TrimSpace(string(line))
	if text == "" {
		return TokenText, ""
	}

	for _, l := range s.Leaders {
		if !strings.HasPrefix(text, l.Open) {
			continue
		}
		body := strings.TrimSpace(text[len(l.Open):])
		if l.Close != "" {
			body = strings.TrimSpace(strings.TrimSuffix(body, l.Close))
		}

		switch {
		case strings.HasPrefix(body, regionStartMarker):
			return TokenRegionStart, strings.TrimSpace(body[len(regionStartMarker):])
		case strings.HasPrefix(body, regionEndMarker):
			return TokenRegionEnd, strings.TrimSpace(body[len(regionEndMarker):])
		case strings.HasPrefix(body, anchorMarker):
			name := strings.TrimSpace(body[len(anchorMarker):])
			if name == "" {
				return TokenText, ""
			}
			return TokenAnchor, name
		}
		return TokenText, ""
	}
	return TokenText, ""
}

// splitLines splits content after every '\n', keeping terminators so the
// pieces concatenate back to the input byte for byte.
func splitLines(content []byte) [][]byte {
	if len(content) == 0 {
		return nil
	}
	lines := make([][]byte, 0, bytes.Count(content, []byte{'\n'})+1)
	for len(content) > 0 {
		i := bytes.IndexByte(content, '\n')
		if i < 0 {
			lines = append(lines, content)
			break
		}
		lines = append(lines, content[:i+1])
		content = content[i+1:]
	}
	return lines
}

// StripAnchors removes anchor marker lines from content.
func StripAnchors(content []byte, syntax Syntax) []byte {
	var buf bytes.Buffer
	buf.Grow(len(content))
	for i, line := range splitLines(content) {
		if kind, _ := syntax.Classify(line); kind == TokenAnchor {
			if i == 0 && bytes.HasPrefix(line, utf8BOM) {
				buf.Write(utf8BOM)
			}
			continue
		}
		buf.Write(line)
	}
	return buf.Bytes()
}
