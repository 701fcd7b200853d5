package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"

	"github.com/yanqian/food-waste-predictor/internal/domain/prediction"
)

const (
	ToolPredictWaste   = "predict_waste"
	ToolReferenceTable = "reference_table"
)

// ErrUnknownTool is returned for tool names the server does not expose.
var ErrUnknownTool = errors.New("unknown tool")

type toolFunc func(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error)

// Server dispatches MCP tool calls to the prediction domain.
type Server struct {
	predictor prediction.Service
	logger    *slog.Logger
	info      protocol.Implementation
	tools     map[string]toolFunc
}

// NewServer registers the prediction tools.
func NewServer(predictor prediction.Service, version string, logger *slog.Logger) *Server {
	s := &Server{
		predictor: predictor,
		logger:    logger.With("component", "mcp.server"),
		info: protocol.Implementation{
			Name:    "food-waste-predictor",
			Version: version,
		},
	}
	s.tools = map[string]toolFunc{
		ToolPredictWaste:   s.predictWaste,
		ToolReferenceTable: s.referenceTable,
	}
	return s
}

// Info describes the server implementation.
func (s *Server) Info() protocol.Implementation {
	return s.info
}

// ToolNames lists the registered tools in name order.
func (s *Server) ToolNames() []string {
	names := make([]string, 0, len(s.tools))
	for name := range s.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Call runs the named tool.
func (s *Server) Call(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	tool, ok := s.tools[req.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, req.Name)
	}
	s.logger.Debug("mcp tool call", "tool", req.Name)
	return tool(ctx, req)
}

func (s *Server) predictWaste(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	args := req.Arguments
	raw := prediction.RawInput{
		Attendance:   args["attendance"],
		MenuType:     args["menu_type"],
		FoodQuantity: args["food_quantity"],
	}
	return textResult(s.predictor.Predict(ctx, raw))
}

func (s *Server) referenceTable(_ context.Context, _ *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	return textResult(s.predictor.ReferenceTable())
}

func textResult(data any) (*protocol.CallToolResult, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal tool result: %w", err)
	}
	return &protocol.CallToolResult{
		Content: []protocol.Content{
			protocol.TextContent{
				Type: "text",
				Text: string(payload),
			},
		},
	}, nil
}
