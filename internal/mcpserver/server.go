// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes Voice Canvas tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/voicecanvas/internal/notestore"
)

// Server wraps the MCP server with Voice Canvas tools.
type Server struct {
	mcp   *server.MCPServer
	store *notestore.Store
}

// New creates a new MCP server with all tools registered.
func New(store *notestore.Store) *Server {
	s := &Server{store: store}

	s.mcp = server.NewMCPServer(
		"Voice Canvas",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List all notes, or notes in a specific folder."),
		mcp.WithString("folder_id", mcp.Description("Optional folder id to filter by (empty for all)")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read a note's title, content, and recording metadata."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a new note, optionally filed into a folder, and fill in its title and content."),
		mcp.WithString("title", mcp.Description("Note title (defaults to Untitled Note)")),
		mcp.WithString("content", mcp.Description("Note content, plain text")),
		mcp.WithString("folder_id", mcp.Description("Optional folder id to file the note into")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Substring search through note titles and content."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("list_folders",
		mcp.WithDescription("List all folders."),
	), s.listFolders)

	s.mcp.AddTool(mcp.NewTool("import_recording",
		mcp.WithDescription("Attach an audio payload to a note as a recording. "+
			"The payload must be a base64 data URI with an audio media type."),
		mcp.WithString("note_id", mcp.Required(), mcp.Description("Note id to attach the recording to")),
		mcp.WithString("data_uri", mcp.Required(), mcp.Description("Audio payload as data:<mime>;base64,<data>")),
		mcp.WithString("name", mcp.Description("Optional display name for the recording")),
	), s.importRecording)

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

func (s *Server) listNotes(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folderID := ""
	if v, err := req.RequireString("folder_id"); err == nil {
		folderID = v
	}

	var lines []string
	for _, n := range s.store.Notes() {
		if folderID != "" && n.FolderID != folderID {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s\t%s\t(%d recordings)", n.ID, n.Title, len(n.Recordings)))
	}
	if len(lines) == 0 {
		return mcp.NewToolResultText("no notes"), nil
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) readNote(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, ok := s.store.Note(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	out, _ := json.MarshalIndent(note, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createNote(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folderID := ""
	if v, err := req.RequireString("folder_id"); err == nil {
		folderID = v
	}

	note, err := s.store.CreateNote(folderID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	title, _ := req.RequireString("title")
	content, _ := req.RequireString("content")
	if title != "" || content != "" {
		if title != "" {
			note.Title = title
		}
		note.Content = content
		if err := s.store.UpdateNote(note); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	return mcp.NewToolResultText(fmt.Sprintf("created: %s", note.ID)), nil
}

func (s *Server) searchNotes(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results := s.store.SearchNotes(query)
	if len(results) == 0 {
		return mcp.NewToolResultText("no matches"), nil
	}
	var lines []string
	for _, n := range results {
		lines = append(lines, fmt.Sprintf("%s\t%s", n.ID, n.Title))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) listFolders(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folders := s.store.Folders()
	if len(folders) == 0 {
		return mcp.NewToolResultText("no folders"), nil
	}
	var lines []string
	for _, f := range folders {
		lines = append(lines, fmt.Sprintf("%s\t%s", f.ID, f.Name))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}
