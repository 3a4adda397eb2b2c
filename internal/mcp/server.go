/*
Package mcp implements the MCP server that exposes the recommender.

The server uses stdio transport and exposes 3 tools:
  - gift_recommend: Build a gift bundle from a structured intent
  - gift_catalog: List catalog items, optionally filtered by tag or price
  - gift_search: Rank catalog items against free text

Requests are handled concurrently up to a configured limit; responses are
written one line at a time in completion order.
*/
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/khanglvm/gift-hub/internal/recommend"
	"github.com/khanglvm/gift-hub/internal/search"
	"go.uber.org/zap"
)

const (
	protocolVersion = "2024-11-05"

	// maxLineSize bounds a single JSON-RPC frame.
	maxLineSize = 1 << 20

	defaultMaxConcurrent = 8
)

// JSON-RPC error codes.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
)

// Options configures a Server.
type Options struct {
	// MaxConcurrent bounds in-flight requests (default 8).
	MaxConcurrent int

	// Keyword enables the keyword mode of gift_search.
	Keyword *search.KeywordIndex

	Version string
	Logger  *zap.Logger

	// In and Out default to os.Stdin and os.Stdout.
	In  io.Reader
	Out io.Writer
}

// Server represents the gift-hub MCP server.
type Server struct {
	service *recommend.Service
	keyword *search.KeywordIndex
	version string
	logger  *zap.Logger

	in    io.Reader
	out   io.Writer
	outMu sync.Mutex

	sem chan struct{}
	wg  sync.WaitGroup
}

// NewServer creates a new MCP server backed by svc.
func NewServer(svc *recommend.Service, opts Options) *Server {
	maxConcurrent := opts.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}
	s := &Server{
		service: svc,
		keyword: opts.Keyword,
		version: opts.Version,
		logger:  opts.Logger,
		in:      opts.In,
		out:     opts.Out,
		sem:     make(chan struct{}, maxConcurrent),
	}
	if s.version == "" {
		s.version = "dev"
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.in == nil {
		s.in = os.Stdin
	}
	if s.out == nil {
		s.out = os.Stdout
	}
	return s
}

// Run starts the MCP server using stdio transport.
// It blocks until input is exhausted or ctx is cancelled, then waits for
// in-flight requests to finish.
func (s *Server) Run(ctx context.Context) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go s.readLines(ctx, lines, scanErr)

	for {
		var line string
		select {
		case <-ctx.Done():
			s.wg.Wait()
			return ctx.Err()
		case l, ok := <-lines:
			if !ok {
				s.wg.Wait()
				return <-scanErr
			}
			line = l
		}

		select {
		case s.sem <- struct{}{}:
		case <-ctx.Done():
			s.wg.Wait()
			return ctx.Err()
		}

		s.wg.Add(1)
		go func(data []byte) {
			defer s.wg.Done()
			defer func() { <-s.sem }()

			resp := s.handleRequest(ctx, data)
			if resp != nil {
				s.sendResponse(resp)
			}
		}([]byte(line))
	}
}

// readLines feeds non-empty input lines to out until EOF or ctx is done.
// A blocked read is abandoned on cancellation; the process is exiting anyway.
func (s *Server) readLines(ctx context.Context, out chan<- string, errc chan<- error) {
	defer close(out)

	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		select {
		case out <- line:
		case <-ctx.Done():
			errc <- ctx.Err()
			return
		}
	}
	errc <- scanner.Err()
}

// MCPRequest represents an incoming MCP JSON-RPC request.
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// isNotification reports whether the request expects no response.
func (r *MCPRequest) isNotification() bool {
	return r.ID == nil
}

// MCPResponse represents an outgoing MCP JSON-RPC response.
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents an MCP error.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// handleRequest processes an incoming MCP request.
// A nil response means nothing should be written.
func (s *Server) handleRequest(ctx context.Context, data []byte) *MCPResponse {
	var req MCPRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return errorResponse(nil, codeParseError, fmt.Sprintf("invalid JSON-RPC request: %v", err))
	}
	if req.Method == "" {
		return errorResponse(req.ID, codeInvalidRequest, "missing method")
	}

	switch req.Method {
	case "initialize":
		return s.handleInitialize(&req)
	case "ping":
		return &MCPResponse{JSONRPC: "2.0", ID: req.ID, Result: map[string]interface{}{}}
	case "tools/list":
		return s.handleToolsList(&req)
	case "tools/call":
		return s.handleToolsCall(ctx, &req)
	default:
		if req.isNotification() {
			return nil
		}
		return errorResponse(req.ID, codeMethodNotFound, "Method not found")
	}
}

// handleInitialize handles the MCP initialize request.
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": protocolVersion,
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "gift-hub",
				"version": s.version,
			},
		},
	}
}

// sendResponse writes a JSON-RPC response as one line.
func (s *Server) sendResponse(resp *MCPResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("failed to marshal response", zap.Error(err))
		data, _ = json.Marshal(errorResponse(resp.ID, codeInvalidRequest, "unserializable result"))
	}

	s.outMu.Lock()
	defer s.outMu.Unlock()
	if _, err := fmt.Fprintln(s.out, string(data)); err != nil {
		s.logger.Warn("failed to write response", zap.Error(err))
	}
}

func errorResponse(id interface{}, code int, msg string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &MCPError{Code: code, Message: msg},
	}
}
