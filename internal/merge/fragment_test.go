package merge

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Blocks(t *testing.T) {
	content := "namespace App\n" +
		"{\n" +
		"    //{[{ Usings\n" +
		"    using App.Services;\n" +
		"    //}]}\n" +
		"    //^^ Body\n" +
		"    //{[{\n" +
		"    Register();\n" +
		"    //}]}\n" +
		"}\n"

	f, err := Parse("Feat.X", "App.cs", []byte(content), DefaultSyntax)
	require.NoError(t, err)
	assert.True(t, f.HasMarkers())

	inserts := f.Inserts()
	require.Len(t, inserts, 2)
	assert.Equal(t, "Usings", inserts[0].Anchor)
	assert.Equal(t, "    using App.Services;\n", string(inserts[0].Content))
	assert.Equal(t, 3, inserts[0].Line)
	assert.Equal(t, "Body", inserts[1].Anchor, "unnamed region targets the preceding anchor")
	assert.Equal(t, "    Register();\n", string(inserts[1].Content))

	assert.Equal(t,
		"namespace App\n{\n    using App.Services;\n    //^^ Body\n    Register();\n}\n",
		string(f.Render()))
}

func TestParse_AnchorsInsideRegionRetarget(t *testing.T) {
	content := "//{[{ Usings\n" +
		"using A;\n" +
		"//^^ Members\n" +
		"int a;\n" +
		"//}]}\n"

	f, err := Parse("T", "X.cs", []byte(content), DefaultSyntax)
	require.NoError(t, err)

	inserts := f.Inserts()
	require.Len(t, inserts, 2)
	assert.Equal(t, "Usings", inserts[0].Anchor)
	assert.Equal(t, "using A;\n", string(inserts[0].Content))
	assert.Equal(t, "Members", inserts[1].Anchor)
	assert.Equal(t, "int a;\n", string(inserts[1].Content))
}

func TestParse_UnbalancedMarkers(t *testing.T) {
	tests := []struct {
		name    string
		content string
		line    int
	}{
		{"end without start", "a\n//}]}\n", 2},
		{"start without end", "//{[{ Hook\nx\n", 1},
		{"nested start", "//{[{ A\n//{[{ B\n//}]}\n//}]}\n", 2},
		{"mismatched names", "//{[{ A\nx\n//}]} B\n", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse("Bad", "Bad.cs", []byte(tt.content), DefaultSyntax)
			require.Error(t, err)
			assert.Nil(t, f)
			assert.True(t, errors.Is(err, ErrUnbalancedMarkerPair))

			var me *MarkerError
			require.True(t, errors.As(err, &me))
			assert.Equal(t, tt.line, me.Line)
			assert.Equal(t, "Bad.cs", me.Path)
		})
	}
}

func TestParse_PlainFileHasNoMarkers(t *testing.T) {
	content := "\xEF\xBB\xBFusing System;\r\nclass A {}\r\n"
	f, err := Parse("T", "A.cs", []byte(content), DefaultSyntax)
	require.NoError(t, err)
	assert.False(t, f.HasMarkers())
	assert.True(t, f.BOM)
	assert.Empty(t, f.Inserts())
	assert.Equal(t, content, string(f.Render()))
}

func TestParse_EmptyRegionContributesNothing(t *testing.T) {
	f, err := Parse("T", "A.cs", []byte("//{[{ Hook\n//}]}\n"), DefaultSyntax)
	require.NoError(t, err)
	assert.True(t, f.HasMarkers())
	assert.Empty(t, f.Inserts())
}
