// Package mcptools exposes the template catalog and generator as MCP tools.
package mcptools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	weaver "github.com/simonhull/firebird-suite/weaver"
)

// NewServer returns an MCP server with the weaver tools registered.
func NewServer(svc *Service) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "weaver",
		Version: weaver.Version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_templates",
		Description: "List catalog templates applicable to the given criteria. Hidden templates are omitted unless includeHidden is set.",
	}, svc.ListTemplates)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "plan_project",
		Description: "Resolve and assemble a project in memory. Returns the ordered template plan, the files that would be written and any failures or diagnostics.",
	}, svc.PlanProject)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_project",
		Description: "Generate a project into destination/projectName. Nothing is written when any file fails to assemble.",
	}, svc.GenerateProject)

	return server
}

// Serve runs the tools over stdin and stdout until ctx is done or the client
// disconnects.
func Serve(ctx context.Context, svc *Service) error {
	return NewServer(svc).Run(ctx, &mcp.StdioTransport{})
}
