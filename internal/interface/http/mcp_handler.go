package http

import (
	"errors"
	"net/http"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"github.com/gin-gonic/gin"

	"github.com/yanqian/food-waste-predictor/internal/interface/mcp"
)

// MCPHandler exposes the MCP tool server over HTTP.
type MCPHandler struct {
	server *mcp.Server
}

// NewMCPHandler wraps an MCP tool server.
func NewMCPHandler(server *mcp.Server) *MCPHandler {
	return &MCPHandler{server: server}
}

// Describe returns server info and the available tools.
func (h *MCPHandler) Describe(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"server": h.server.Info(),
		"tools":  h.server.ToolNames(),
	})
}

type callToolPayload struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// CallTool decodes a tools/call request and runs it.
func (h *MCPHandler) CallTool(c *gin.Context) {
	var payload callToolPayload
	data, err := c.GetRawData()
	if err == nil {
		err = decodeJSON(data, &payload)
	}
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	req := protocol.CallToolRequest{Name: payload.Name, Arguments: payload.Arguments}
	result, err := h.server.Call(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, mcp.ErrUnknownTool) {
			abortWithError(c, NewHTTPError(http.StatusNotFound, "unknown_tool", errMessage(err), err))
			return
		}
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "tool_failed", errMessage(err), err))
		return
	}
	c.JSON(http.StatusOK, result)
}
