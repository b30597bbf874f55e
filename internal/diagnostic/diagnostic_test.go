package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiagnostics_AddAndMerge(t *testing.T) {
	var d Diagnostics
	d.AddInfo(CodeGroupDrop, "dropped Identity.Optional", "Identity.Forced", "")
	d.AddWarning(CodeSyntaxError, "unexpected token", "", "main.go")

	var other Diagnostics
	other.AddError(CodeDanglingAnchor, "anchor missing", "Page.Map", "Shell.cs")

	d.Merge(other)

	assert.True(t, d.HasErrors())
	assert.Equal(t, 3, d.Len())
	assert.Len(t, d.WithCode(CodeDanglingAnchor), 1)
	assert.Empty(t, d.WithCode("nope"))
}

func TestDiagnostic_String(t *testing.T) {
	tests := []struct {
		name string
		diag Diagnostic
		want string
	}{
		{
			name: "full",
			diag: Diagnostic{Code: CodeDanglingAnchor, Message: "no anchor", Template: "Page.Map", Path: "Shell.cs"},
			want: "[Page.Map] Shell.cs: [dangling_anchor] no anchor",
		},
		{
			name: "message only",
			diag: Diagnostic{Message: "plain"},
			want: "plain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.diag.String())
		})
	}
}

func TestSeverity_String(t *testing.T) {
	assert.Equal(t, "info", SeverityInfo.String())
	assert.Equal(t, "warning", SeverityWarning.String())
	assert.Equal(t, "error", SeverityError.String())
	assert.Equal(t, "unknown", Severity(9).String())
}
