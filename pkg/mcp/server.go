package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"os"
	"time"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/macropower/folio/pkg/ui/reader"
	"github.com/macropower/folio/pkg/version"
)

const shutdownTimeout = 5 * time.Second

// Controller moves a running reader. Moves are asynchronous; a following
// Position call observes them.
type Controller interface {
	JumpTo(page int)
	JumpToFirst()
	JumpToLast()
	GotoSection(index int)
	Seek(position float64)
	Position(ctx context.Context) (reader.Position, error)
}

type (
	// NoParams is the input of tools that take no arguments.
	NoParams struct{}

	JumpToPageParams struct {
		Page int `json:"page"`
	}

	GotoSectionParams struct {
		Section int `json:"section"`
	}

	SeekParams struct {
		Position float64 `json:"position"`
	}
)

// Server implements the MCP server for folio.
type Server struct {
	ctrl    Controller
	server  *mcp.Server
	tracer  trace.Tracer
	address string
}

type ServerOpt func(*Server)

// WithTracer sets the tracer used for tool call spans. It defaults to the
// global tracer provider.
func WithTracer(tracer trace.Tracer) ServerOpt {
	return func(s *Server) {
		s.tracer = tracer
	}
}

// NewServer creates a new MCP server instance. An empty address serves
// over stdio.
func NewServer(address string, ctrl Controller, opts ...ServerOpt) *Server {
	impl := &mcp.Implementation{
		Name:    name,
		Version: version.GetVersion(),
	}

	s := &Server{
		address: address,
		ctrl:    ctrl,
		server:  mcp.NewServer(impl, &mcp.ServerOptions{Instructions: instructions}),
		tracer:  otel.Tracer("folio/mcp"),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.registerTools()

	return s
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:         "get_position",
		Description:  "Get the book, section and page the reader is showing.",
		InputSchema:  emptySchema(),
		OutputSchema: newOutputSchema(),
	}, WithTracing(s.tracer, s.handleGetPosition))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "jump_to_page",
		Description: "Jump to a page of the current section without animation. Pages past the end go to the last page.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"page": {
					Type:        "integer",
					Description: "Zero-based index of the page within the current section.",
				},
			},
			Required: []string{"page"},
		},
		OutputSchema: newOutputSchema(),
	}, WithTracing(s.tracer, s.handleJumpToPage))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:         "jump_to_first",
		Description:  "Jump to the first page of the current section.",
		InputSchema:  emptySchema(),
		OutputSchema: newOutputSchema(),
	}, WithTracing(s.tracer, s.handleJumpToFirst))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:         "jump_to_last",
		Description:  "Jump to the last page of the current section.",
		InputSchema:  emptySchema(),
		OutputSchema: newOutputSchema(),
	}, WithTracing(s.tracer, s.handleJumpToLast))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "goto_section",
		Description: "Open a section of the book at its first page. Use get_position to learn how many sections there are.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"section": {
					Type:        "integer",
					Description: "Zero-based index of the section.",
				},
			},
			Required: []string{"section"},
		},
		OutputSchema: newOutputSchema(),
	}, WithTracing(s.tracer, s.handleGotoSection))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "seek",
		Description: "Scroll the pages to a fractional position without changing the current page, e.g. to preview the next page.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"position": {
					Type:        "number",
					Description: "Position in pages, where 1.5 is halfway between the second and third page.",
				},
			},
			Required: []string{"position"},
		},
		OutputSchema: newOutputSchema(),
	}, WithTracing(s.tracer, s.handleSeek))
}

func newOutputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"position": newPositionSchema(),
			"message": {
				Type:        "string",
				Description: "Summary of the position, or why the input was rejected.",
			},
		},
		Required: []string{"message"},
	}
}

func (s *Server) handleGetPosition(
	ctx context.Context,
	_ *mcp.ServerSession,
	_ *mcp.CallToolParamsFor[NoParams],
) (*mcp.CallToolResultFor[PositionResult], error) {
	return s.positionResult(ctx)
}

func (s *Server) handleJumpToPage(
	ctx context.Context,
	_ *mcp.ServerSession,
	params *mcp.CallToolParamsFor[JumpToPageParams],
) (*mcp.CallToolResultFor[PositionResult], error) {
	page := params.Arguments.Page
	if page < 0 {
		return createInputErrorResult("Page %d is negative. Pages are counted from zero.", page), nil
	}

	s.ctrl.JumpTo(page)

	return s.positionResult(ctx)
}

func (s *Server) handleJumpToFirst(
	ctx context.Context,
	_ *mcp.ServerSession,
	_ *mcp.CallToolParamsFor[NoParams],
) (*mcp.CallToolResultFor[PositionResult], error) {
	s.ctrl.JumpToFirst()

	return s.positionResult(ctx)
}

func (s *Server) handleJumpToLast(
	ctx context.Context,
	_ *mcp.ServerSession,
	_ *mcp.CallToolParamsFor[NoParams],
) (*mcp.CallToolResultFor[PositionResult], error) {
	s.ctrl.JumpToLast()

	return s.positionResult(ctx)
}

func (s *Server) handleGotoSection(
	ctx context.Context,
	_ *mcp.ServerSession,
	params *mcp.CallToolParamsFor[GotoSectionParams],
) (*mcp.CallToolResultFor[PositionResult], error) {
	pos, err := s.ctrl.Position(ctx)
	if err != nil {
		return nil, err
	}

	section := params.Arguments.Section
	if section < 0 || section >= pos.Sections {
		return createInputErrorResult(
			"Section %d does not exist. The book has %d sections, counted from zero.",
			section, pos.Sections,
		), nil
	}

	s.ctrl.GotoSection(section)

	return s.positionResult(ctx)
}

func (s *Server) handleSeek(
	ctx context.Context,
	_ *mcp.ServerSession,
	params *mcp.CallToolParamsFor[SeekParams],
) (*mcp.CallToolResultFor[PositionResult], error) {
	position := params.Arguments.Position
	if position < 0 || math.IsNaN(position) || math.IsInf(position, 0) {
		return createInputErrorResult("Position %v is not a page position.", position), nil
	}

	s.ctrl.Seek(position)

	return s.positionResult(ctx)
}

func (s *Server) positionResult(ctx context.Context) (*mcp.CallToolResultFor[PositionResult], error) {
	pos, err := s.ctrl.Position(ctx)
	if err != nil {
		return nil, err
	}

	return createPositionResult(pos), nil
}

func (s *Server) Server() *mcp.Server {
	return s.server
}

// Serve runs the MCP server until ctx is canceled.
func (s *Server) Serve(ctx context.Context) error {
	slog.InfoContext(ctx, "starting MCP server", slog.String("address", s.address))

	if s.address == "" {
		err := s.serveStdio(ctx)
		if err != nil {
			return fmt.Errorf("serve stdio: %w", err)
		}

		return nil
	}

	err := s.serveHTTP(ctx)
	if err != nil {
		return fmt.Errorf("serve HTTP: %w", err)
	}

	return nil
}

func (s *Server) serveHTTP(ctx context.Context) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil)

	server := &http.Server{
		Addr:    s.address,
		Handler: handler,

		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		err := server.Shutdown(shutdownCtx)
		if err != nil {
			slog.Warn("shut down MCP server", slog.Any("error", err))
		}
	}()

	err := server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("MCP server failed: %w", err)
	}

	return nil
}

func (s *Server) serveStdio(ctx context.Context) error {
	t := mcp.NewLoggingTransport(mcp.NewStdioTransport(), os.Stderr)

	err := s.server.Run(ctx, t)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("MCP server failed: %w", err)
	}

	return nil
}
