// Package weaver assembles projects from a catalog of template fragments.
package weaver

// Version is the weaver release reported by the CLI and the MCP server.
var Version = "0.1.0"
