// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes annotation completion tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/annotator/internal/annotation"
	"github.com/starford/annotator/internal/completion"
)

// SchemaFormatURI is the resource URI of the schema format contract.
const SchemaFormatURI = "annotator://schema-format"

// Server wraps the MCP server with annotation tools.
type Server struct {
	mcp *server.MCPServer
	svc *completion.Service
}

// New creates a new MCP server with all annotation tools registered.
func New(svc *completion.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Annotator",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("suggest_annotations",
		mcp.WithDescription("Suggest inline annotations for a document. The query is the text typed "+
			"after the trigger phrase, e.g. \"task.buy milk\" with the default separator."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the document (e.g. folder/list.md)")),
		mcp.WithString("query", mcp.Description("Text typed after the trigger phrase")),
	), s.suggestAnnotations)

	s.mcp.AddTool(mcp.NewTool("complete_line",
		mcp.WithDescription("Detect the trigger phrase before the cursor on one line and return "+
			"the span to replace together with the rendered candidates."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the document")),
		mcp.WithString("line", mcp.Required(), mcp.Description("Full text of the cursor line")),
		mcp.WithNumber("ch", mcp.Required(), mcp.Description("Cursor column in characters")),
	), s.completeLine)

	s.mcp.AddTool(mcp.NewTool("get_annotation_schema",
		mcp.WithDescription("Return the annotation definitions, trigger phrase and separator in effect for a document."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the document")),
	), s.getAnnotationSchema)

	s.mcp.AddTool(mcp.NewTool("list_annotated_documents",
		mcp.WithDescription("List indexed documents that declare annotations."),
		mcp.WithBoolean("include_disabled", mcp.Description("Also list documents without annotations enabled")),
	), s.listAnnotatedDocuments)

	s.mcp.AddTool(mcp.NewTool("get_schema_contract",
		mcp.WithDescription("Returns the document header format that declares annotations. "+
			"Call this before adding annotation definitions to a document."),
	), s.getSchemaContract)

	// Resource: schema format contract.
	s.mcp.AddResource(
		mcp.NewResource(SchemaFormatURI, "Annotation Schema Format",
			mcp.WithResourceDescription("Document header format that enables and declares annotations."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readSchemaFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) suggestAnnotations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	cands, err := s.svc.SuggestQuery(ctx, path, req.GetString("query", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(cands) == 0 {
		return mcp.NewToolResultText("no suggestions"), nil
	}
	lines := make([]string, len(cands))
	for i, c := range cands {
		lines[i] = c.InsertionText
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) completeLine(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	line, err := req.RequireString("line")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ch, err := req.RequireInt("ch")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Complete(ctx, completion.CompleteRequest{
		Path:   path,
		Line:   line,
		Cursor: annotation.Position{Ch: ch},
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func (s *Server) getAnnotationSchema(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	schema, err := s.svc.Schema(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(schema)
}

func (s *Server) listAnnotatedDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docs, err := s.svc.ListDocuments(ctx, !req.GetBool("include_disabled", false))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(docs) == 0 {
		return mcp.NewToolResultText("no annotated documents"), nil
	}
	lines := make([]string, len(docs))
	for i, d := range docs {
		lines[i] = fmt.Sprintf("%s: %s", d.Path, strings.Join(d.Annotations, ", "))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) getSchemaContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(SchemaFormatContract), nil
}

func (s *Server) readSchemaFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      SchemaFormatURI,
			MIMEType: "text/markdown",
			Text:     SchemaFormatContract,
		},
	}, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}
