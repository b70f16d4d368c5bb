package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/voicecanvas/internal/apperr"
	"github.com/starford/voicecanvas/internal/audiostore"
)

const maxPayloadSize = 50 << 20 // 50 MB decoded

func (s *Server) importRecording(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	noteID, err := req.RequireString("note_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dataURI, err := req.RequireString("data_uri")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name := ""
	if v, nErr := req.RequireString("name"); nErr == nil {
		name = v
	}

	data, mimeType, err := audiostore.DecodePayload(dataURI)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(data) > maxPayloadSize {
		return mcp.NewToolResultError(fmt.Sprintf("payload too large: %d bytes (max %d)", len(data), maxPayloadSize)), nil
	}
	if !strings.HasPrefix(mimeType, "audio/") {
		return mcp.NewToolResultError(fmt.Sprintf("unsupported media type: %s", mimeType)), nil
	}

	if _, ok := s.store.Note(noteID); !ok {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", noteID)), nil
	}

	if err := s.store.ImportRecording(ctx, noteID, data, mimeType, name); err != nil {
		if errors.Is(err, apperr.ErrDecode) {
			return mcp.NewToolResultError("could not determine audio duration from payload"), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("recording attached to %s", noteID)), nil
}
