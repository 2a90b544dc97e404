// Package mcp serves a catalog of schema-validated tools over the Model
// Context Protocol. Framing, the initialize handshake, ping and method
// routing come from the official Go SDK. This package validates arguments,
// recovers handler panics and traces and counts every tools/call.
package mcp

import (
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const methodCallTool = "tools/call"

// ServerInfo names the server in the initialize handshake
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// CallResult is the answer to tools/call. Failures are reported with
// IsError set, never as JSON-RPC errors.
type CallResult struct {
	*sdkmcp.CallToolResult
}

// Text returns the concatenated text of all text content blocks
func (r CallResult) Text() string {
	return ResultText(r.CallToolResult)
}

// ResultText returns the concatenated text of all text content blocks of res
func ResultText(res *sdkmcp.CallToolResult) string {
	if res == nil {
		return ""
	}
	parts := make([]string, 0, len(res.Content))
	for _, c := range res.Content {
		if text, ok := c.(*sdkmcp.TextContent); ok {
			parts = append(parts, text.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func textResult(text string) *sdkmcp.CallToolResult {
	return &sdkmcp.CallToolResult{Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: text}}}
}

func errorResult(text string) *sdkmcp.CallToolResult {
	res := textResult(text)
	res.IsError = true
	return res
}
