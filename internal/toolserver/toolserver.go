// Package toolserver exposes the dispatcher as an MCP tool over stdio so
// agent hosts can drive remote calculations as ordinary tool calls.
package toolserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/cosmosolder/sparkbridge/internal/domain/audit"
	"github.com/cosmosolder/sparkbridge/internal/domain/dispatch"
	"github.com/cosmosolder/sparkbridge/internal/infra/eventbus"
	"github.com/cosmosolder/sparkbridge/internal/version"
)

const (
	serverName  = "sparkbridge"
	toolCallAPI = "call_api"
)

// callArgs are the arguments of the call_api tool. Every field is optional;
// an empty call dispatches the configured endpoint with an empty body.
type callArgs struct {
	Endpoint string            `json:"endpoint,omitempty"`
	Method   string            `json:"method,omitempty"`
	Params   map[string]string `json:"params,omitempty"`
	Body     map[string]any    `json:"body,omitempty"`
	Headers  map[string]string `json:"headers,omitempty"`
}

// Server is the MCP facade over one Dispatcher.
type Server struct {
	dispatcher *dispatch.Dispatcher
	bus        eventbus.EventBus
}

// New returns a Server. bus may be nil when auditing is disabled.
func New(d *dispatch.Dispatcher, bus eventbus.EventBus) *Server {
	return &Server{dispatcher: d, bus: bus}
}

// Run serves MCP over stdio until ctx is cancelled or the host disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer().Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) mcpServer() *mcp.Server {
	srv := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: version.Version}, nil)
	srv.AddTool(&mcp.Tool{
		Name:        toolCallAPI,
		Description: "Invoke the remote calculation API with a JSON request body and return the tagged result",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"endpoint": map[string]any{
					"type":        "string",
					"description": "Target URL; defaults to the configured API URL",
				},
				"method": map[string]any{
					"type":        "string",
					"description": "HTTP method; defaults to POST",
				},
				"params": map[string]any{
					"type":        "object",
					"description": "Query parameters",
				},
				"body": map[string]any{
					"type":        "object",
					"description": "JSON request body forwarded to the API",
				},
				"headers": map[string]any{
					"type":        "object",
					"description": "Extra request headers; override the configured defaults",
				},
			},
		},
	}, s.handleCallAPI)
	return srv
}

// handleCallAPI runs one dispatch. Remote failures are not tool errors: the
// tagged result is returned either way and the caller switches on its status.
func (s *Server) handleCallAPI(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args callArgs
	if len(req.Params.Arguments) > 0 {
		if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
			return nil, fmt.Errorf("%s: decode arguments: %w", toolCallAPI, err)
		}
	}

	call := dispatch.CallRequest{
		Endpoint: args.Endpoint,
		Method:   args.Method,
		Params:   args.Params,
		Headers:  args.Headers,
	}
	if args.Body != nil {
		body, err := json.Marshal(args.Body)
		if err != nil {
			return nil, fmt.Errorf("%s: encode body: %w", toolCallAPI, err)
		}
		call.Body = body
	}

	start := time.Now()
	res := s.dispatcher.Dispatch(ctx, call)
	s.publishAudit(call, res, time.Since(start))

	pretty, err := res.Pretty()
	if err != nil {
		return nil, fmt.Errorf("%s: encode result: %w", toolCallAPI, err)
	}
	return &mcp.CallToolResult{
		Content:           []mcp.Content{&mcp.TextContent{Text: string(pretty)}},
		StructuredContent: res.AsMap(),
	}, nil
}

func (s *Server) publishAudit(call dispatch.CallRequest, res dispatch.Result, elapsed time.Duration) {
	if s.bus == nil {
		return
	}
	endpoint := call.Endpoint
	if endpoint == "" {
		endpoint = s.dispatcher.Config().BaseURL
	}
	s.bus.Publish(audit.TopicInvocationCompleted,
		audit.NewEntry(audit.ModeTool, endpoint, res, elapsed))
}
