package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/colthorp/garmin-mcp-go/internal/api"
	"github.com/colthorp/garmin-mcp-go/internal/auth"
	"github.com/colthorp/garmin-mcp-go/internal/capabilities"
	"github.com/colthorp/garmin-mcp-go/internal/core"
	"github.com/colthorp/garmin-mcp-go/internal/tokenstore"
)

// MCP Protocol types
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type MCPResponse struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      any       `json:"id"`
	Result  any       `json:"result,omitempty"`
	Error   *MCPError `json:"error,omitempty"`
}

type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type MCPToolInfo struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

type MCPServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type MCPInitializeResult struct {
	ProtocolVersion string        `json:"protocolVersion"`
	ServerInfo      MCPServerInfo `json:"serverInfo"`
	Capabilities    any           `json:"capabilities"`
}

// JSON-RPC error codes.
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
)

const maxMessageSize = 10 * 1024 * 1024

// Authenticator performs a username/password login.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*api.LoginResult, error)
}

// ServerOptions configures a Server. Resolver and Login are required. Store
// is only read and written by the command line, never by tools.
type ServerOptions struct {
	Resolver *auth.Resolver
	Login    Authenticator
	Store    tokenstore.Backend
	Location *time.Location
	Logger   *slog.Logger
	Tools    []*Tool
}

// Server dispatches MCP requests to the tool catalog.
type Server struct {
	tools    []*Tool
	index    map[string]*Tool
	resolver *auth.Resolver
	login    Authenticator
	store    tokenstore.Backend
	loc      *time.Location
	now      func() time.Time
	logger   *slog.Logger

	caps atomic.Pointer[capabilities.Result]
}

// NewServer builds a server over opts. Tools defaults to Catalog().
func NewServer(opts ServerOptions) *Server {
	if opts.Tools == nil {
		opts.Tools = Catalog()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		tools:    opts.Tools,
		index:    make(map[string]*Tool, len(opts.Tools)),
		resolver: opts.Resolver,
		login:    opts.Login,
		store:    opts.Store,
		loc:      opts.Location,
		now:      time.Now,
		logger:   opts.Logger.With(slog.String("component", "mcp")),
	}
	for _, t := range opts.Tools {
		s.index[t.Name] = t
	}
	return s
}

// Restore places material in the credential slot and refreshes the disabled
// tool list. Nothing is persisted.
func (s *Server) Restore(ctx context.Context, material string) (capabilities.Result, error) {
	if _, err := s.resolver.Store(material); err != nil {
		return capabilities.Result{}, fmt.Errorf("invalid session tokens: %w", err)
	}
	return s.refreshCapabilities(ctx), nil
}

// Logout empties the credential slot and re-enables every tool.
func (s *Server) Logout() {
	s.resolver.Clear()
	s.caps.Store(nil)
}

func (s *Server) refreshCapabilities(ctx context.Context) capabilities.Result {
	var res capabilities.Result
	if up, err := s.resolver.Resolve(auth.CallContext{}); err == nil {
		res = capabilities.Detect(ctx, up, s.logger)
	}
	s.caps.Store(&res)
	if len(res.DisabledTools) > 0 {
		s.logger.Info("tools disabled for this account", slog.Any("tools", res.DisabledTools))
	}
	return res
}

// ListTools returns the catalog minus tools the account's devices cannot serve.
func (s *Server) ListTools() []MCPToolInfo {
	caps := s.caps.Load()
	out := make([]MCPToolInfo, 0, len(s.tools))
	for _, t := range s.tools {
		if caps != nil && caps.Disabled(t.Name) {
			continue
		}
		out = append(out, t.Info())
	}
	return out
}

// CallTool runs one tool. Failures, including panics, come back as an
// {"error": ...} result with isError set.
func (s *Server) CallTool(ctx context.Context, name string, args Args, meta auth.CallContext) (result any, isError bool) {
	t, ok := s.index[name]
	if !ok {
		return map[string]any{"error": "Unknown tool: " + name}, true
	}
	call := &Call{Tool: name, ID: uuid.NewString(), Args: args, Meta: meta, srv: s}
	logger := s.logger.With(slog.String("tool", name), slog.String("call_id", call.ID))
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("tool panicked", slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
			result, isError = map[string]any{"error": fmt.Sprint(r)}, true
		}
	}()

	out, err := t.Handler(context.WithoutCancel(ctx), call)
	if err != nil {
		logger.Info("tool failed", slog.Duration("elapsed", time.Since(start)), slog.Any("error", err))
		return map[string]any{"error": err.Error()}, true
	}
	logger.Debug("tool completed", slog.Duration("elapsed", time.Since(start)))
	return out, false
}

// Handle answers one request. Notifications get a nil response.
func (s *Server) Handle(ctx context.Context, req *MCPRequest) *MCPResponse {
	switch req.Method {
	case "initialize":
		return response(req.ID, MCPInitializeResult{
			ProtocolVersion: core.ProtocolVersion,
			ServerInfo: MCPServerInfo{
				Name:    core.ServerName,
				Version: core.Version,
			},
			Capabilities: map[string]any{
				"tools": map[string]any{},
			},
		})
	case "initialized", "notifications/initialized":
		return nil
	case "ping":
		return response(req.ID, map[string]any{})
	case "tools/list":
		return response(req.ID, map[string]any{"tools": s.ListTools()})
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	default:
		if req.ID == nil {
			return nil
		}
		return errorResponse(req.ID, codeMethodNotFound, "Method not found", req.Method)
	}
}

func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
		Meta      map[string]any  `json:"_meta"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}
	if _, ok := s.index[params.Name]; !ok {
		return errorResponse(req.ID, codeInvalidParams, "Unknown tool", params.Name)
	}
	args, err := ParseArgs(params.Arguments)
	if err != nil {
		return toolResult(req.ID, map[string]any{"error": err.Error()}, true)
	}
	result, isError := s.CallTool(ctx, params.Name, args, auth.FromMeta(params.Meta))
	return toolResult(req.ID, result, isError)
}

// ServeStdio reads newline-delimited requests from in and writes responses
// to out until in is exhausted or ctx is done.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), maxMessageSize)

	write := func(resp *MCPResponse) {
		data, err := json.Marshal(resp)
		if err != nil {
			s.logger.Error("encoding response", slog.Any("error", err))
			return
		}
		out.Write(append(data, '\n'))
	}

	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			// Without an id there is nothing to answer.
			s.logger.Warn("parse error", slog.Any("error", err))
			continue
		}
		if resp := s.Handle(ctx, &req); resp != nil {
			write(resp)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}
	return nil
}

func response(id, result any) *MCPResponse {
	return &MCPResponse{JSONRPC: "2.0", ID: id, Result: result}
}

func errorResponse(id any, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

func toolResult(id, result any, isError bool) *MCPResponse {
	body := map[string]any{
		"content": []map[string]any{
			{
				"type": "text",
				"text": mustMarshal(result),
			},
		},
	}
	if isError {
		body["isError"] = true
	}
	return response(id, body)
}

func mustMarshal(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, err.Error())
	}
	return string(data)
}
