// Package mcpserver exposes the asset codec and workspace to AI agents over
// the Model Context Protocol.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/agentic-research/rbxforge/api"
	"github.com/agentic-research/rbxforge/internal/graph"
	"github.com/agentic-research/rbxforge/internal/ingest"
	"github.com/agentic-research/rbxforge/internal/linter"
	"github.com/agentic-research/rbxforge/internal/rbxml"
	"github.com/agentic-research/rbxforge/internal/writeback"
)

const (
	serverName    = "rbxforge"
	serverVersion = "0.1.0"
)

// Options configures a Server.
type Options struct {
	Logger  *slog.Logger
	Encoder *rbxml.Encoder
	// Initial is the workspace tree before any decode. Defaults to an empty
	// Folder named "Workspace".
	Initial *api.Node
}

// Server holds the workspace shared by all tool calls.
type Server struct {
	mcp       *server.MCPServer
	workspace *graph.HotSwapGraph
	builder   *ingest.Builder
	encoder   *rbxml.Encoder
	logger    *slog.Logger
}

// New creates a server with all tools registered.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	enc := opts.Encoder
	if enc == nil {
		enc = rbxml.NewEncoder()
	}
	initial := api.Node{Name: "Workspace", ClassName: "Folder", Children: []api.Node{}}
	if opts.Initial != nil {
		initial = *opts.Initial
	}

	s := &Server{
		mcp:       server.NewMCPServer(serverName, serverVersion, server.WithToolCapabilities(false)),
		workspace: graph.NewHotSwapGraph(initial),
		builder:   ingest.NewBuilder(logger),
		encoder:   enc,
		logger:    logger,
	}

	s.mcp.AddTool(mcp.NewTool("encode_asset_tree",
		mcp.WithDescription("Convert an asset tree (JSON with name, className, source, properties, children) into a Roblox .rbxmx XML document"),
		mcp.WithString("tree", mcp.Required(), mcp.Description("Asset tree as JSON")),
	), s.EncodeAssetTree)

	s.mcp.AddTool(mcp.NewTool("decode_asset_xml",
		mcp.WithDescription("Parse a Roblox .rbxmx XML document into an asset tree and make it the current workspace"),
		mcp.WithString("xml", mcp.Required(), mcp.Description("Complete .rbxmx document")),
	), s.DecodeAssetXML)

	s.mcp.AddTool(mcp.NewTool("list_assets",
		mcp.WithDescription("List workspace asset paths with their classes"),
		mcp.WithString("class", mcp.Description("Only list assets of this class")),
		mcp.WithString("path", mcp.Description("Only list the direct children of this asset path")),
	), s.ListAssets)

	s.mcp.AddTool(mcp.NewTool("read_script",
		mcp.WithDescription("Return the source of a script in the workspace"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Asset path as printed by list_assets")),
	), s.ReadScript)

	s.mcp.AddTool(mcp.NewTool("validate_scripts",
		mcp.WithDescription("Report syntax errors and lint warnings for every script"),
		mcp.WithString("tree", mcp.Description("Asset tree JSON; defaults to the workspace")),
	), s.ValidateScripts)

	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// Workspace returns the current workspace.
func (s *Server) Workspace() *graph.HotSwapGraph {
	return s.workspace
}

// ServeStdio serves requests on stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// EncodeAssetTree handles encode_asset_tree.
func (s *Server) EncodeAssetTree(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("tree")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	root, err := s.builder.ParsePayload(raw, ingest.DefaultSelector)
	if err != nil {
		return toolError("Invalid asset tree: %v", err), nil
	}
	return mcp.NewToolResultText(s.encoder.Encode(root)), nil
}

// DecodeAssetXML handles decode_asset_xml. The workspace only changes when
// the document decodes.
func (s *Server) DecodeAssetXML(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := req.RequireString("xml")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	root, err := rbxml.Decode(doc)
	if err != nil {
		return toolError("Failed to decode document: %v", err), nil
	}
	s.workspace.Swap(root)
	s.logger.Info("workspace replaced", "root", root.Name, "nodes", root.Count())
	return toolJSON(root)
}

// ListAssets handles list_assets.
func (s *Server) ListAssets(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	class := strings.TrimSpace(req.GetString("class", ""))
	path := strings.Trim(strings.TrimSpace(req.GetString("path", "")), "/")

	var nodes []*graph.Node
	switch {
	case path != "":
		ids, err := s.workspace.ListChildren(path)
		if err != nil {
			return toolError("No asset at %q", path), nil
		}
		for _, id := range ids {
			n, err := s.workspace.GetNode(id)
			if err != nil {
				return toolError("List failed: %v", err), nil
			}
			if class == "" || n.ClassName == class {
				nodes = append(nodes, n)
			}
		}
	case class != "":
		var err error
		if nodes, err = s.workspace.ByClass(class); err != nil {
			return toolError("List failed: %v", err), nil
		}
	default:
		s.workspace.Store().Walk(func(n *graph.Node, _ int) {
			nodes = append(nodes, n)
		})
	}

	if len(nodes) == 0 {
		return mcp.NewToolResultText("No assets found."), nil
	}
	var b strings.Builder
	for _, n := range nodes {
		fmt.Fprintf(&b, "%s\t%s\n", n.ID, n.ClassName)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// ReadScript handles read_script.
func (s *Server) ReadScript(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id := strings.Trim(path, "/")
	n, err := s.workspace.GetNode(id)
	if err != nil {
		return toolError("No asset at %q", path), nil
	}
	if !api.IsScriptClass(n.ClassName) {
		return toolError("%s is a %s, not a script", path, n.ClassName), nil
	}
	buf := make([]byte, n.ContentSize())
	read, err := s.workspace.ReadContent(id, buf, 0)
	if err != nil {
		return toolError("Read failed: %v", err), nil
	}
	return mcp.NewToolResultText(string(buf[:read])), nil
}

// ValidateScripts handles validate_scripts.
func (s *Server) ValidateScripts(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root := s.workspace.Tree()
	if raw := req.GetString("tree", ""); strings.TrimSpace(raw) != "" {
		parsed, err := s.builder.ParsePayload(raw, ingest.DefaultSelector)
		if err != nil {
			return toolError("Invalid asset tree: %v", err), nil
		}
		root = parsed
	}

	var lines []string
	for _, e := range writeback.ValidateTree(root) {
		lines = append(lines, "error: "+e.Error())
	}
	diags, err := linter.LintTree(root)
	if err != nil {
		return toolError("Lint failed: %v", err), nil
	}
	for _, d := range diags {
		lines = append(lines, "warning: "+d.String())
	}
	if len(lines) == 0 {
		return mcp.NewToolResultText("All scripts OK."), nil
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func toolError(format string, args ...any) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf(format, args...))
}

func toolJSON(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError("Failed to encode result: %v", err), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
