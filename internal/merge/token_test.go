package merge

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSyntax_Classify(t *testing.T) {
	tests := []struct {
		line string
		kind TokenKind
		name string
	}{
		{"//^^ Pages\n", TokenAnchor, "Pages"},
		{"            //^^ OnLaunched\r\n", TokenAnchor, "OnLaunched"},
		{"//^^ ##hook", TokenAnchor, "##hook"},
		{"//^^", TokenText, ""},
		{"//{[{ Pages\n", TokenRegionStart, "Pages"},
		{"//{[{\n", TokenRegionStart, ""},
		{"//}]}\n", TokenRegionEnd, ""},
		{"# }]} imports", TokenRegionEnd, "imports"},
		{"' {[{ VbHook", TokenRegionStart, "VbHook"},
		{"<!--^^ MenuItems -->", TokenAnchor, "MenuItems"},
		{"    <!--{[{ MenuItems-->", TokenRegionStart, "MenuItems"},
		{"<!--}]}-->", TokenRegionEnd, ""},
		{"/* ^^ Styles */", TokenAnchor, "Styles"},
		{"-- ^^ Migrations", TokenAnchor, "Migrations"},
		{"\xEF\xBB\xBF//{[{ Usings", TokenRegionStart, "Usings"},
		{"// just a comment", TokenText, ""},
		{"#region Fields", TokenText, ""},
		{"var x = \"//^^ not a marker\";", TokenText, ""},
		{"", TokenText, ""},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			kind, name := DefaultSyntax.Classify([]byte(tt.line))
			assert.Equal(t, tt.kind, kind)
			assert.Equal(t, tt.name, name)
		})
	}
}

func TestSyntaxFromLeaders(t *testing.T) {
	s := SyntaxFromLeaders([]string{"%%", "{# #}"})
	kind, name := s.Classify([]byte("{# ^^ block #}"))
	assert.Equal(t, TokenAnchor, kind)
	assert.Equal(t, "block", name)

	kind, _ = s.Classify([]byte("//^^ Pages"))
	assert.Equal(t, TokenText, kind)

	assert.Equal(t, DefaultSyntax, SyntaxFromLeaders(nil))
}

func TestSplitLines_RoundTrip(t *testing.T) {
	for _, in := range []string{"", "a", "a\n", "a\r\nb\r\n", "a\n\nb", "\n\n"} {
		joined := bytes.Join(splitLines([]byte(in)), nil)
		assert.Equal(t, in, string(joined))
	}
}

func TestStripAnchors(t *testing.T) {
	in := "\xEF\xBB\xBF//^^ Usings\nclass A {\n    //^^ Members\n}\n"
	assert.Equal(t, "\xEF\xBB\xBFclass A {\n}\n", string(StripAnchors([]byte(in), DefaultSyntax)))
}

func TestTokenKind_String(t *testing.T) {
	assert.Equal(t, "anchor", TokenAnchor.String())
	assert.Equal(t, "region-start", TokenRegionStart.String())
	assert.Equal(t, "region-end", TokenRegionEnd.String())
	assert.Equal(t, "text", TokenText.String())
}
