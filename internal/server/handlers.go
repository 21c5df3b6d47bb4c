package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ironsheep/image2layout/internal/config"
	errs "github.com/ironsheep/image2layout/internal/errors"
	"github.com/ironsheep/image2layout/internal/imaging"
	"github.com/ironsheep/image2layout/internal/layout"
	"github.com/ironsheep/image2layout/internal/pipeline"
)

// paletteSize is the number of dominant colours returned by layout_trace.
const paletteSize = 5

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "layout_convert").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "err", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	case "layout_trace":
		return s.handleLayoutTrace(ctx, args)
	case "layout_convert":
		return s.handleLayoutConvert(ctx, args)
	case "layout_inspect":
		return s.handleLayoutInspect(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
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

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Layout Handlers ===

// tuningArgs overrides the server configuration for one call. Nil fields keep the
// configured value.
type tuningArgs struct {
	Threshold *int     `json:"threshold,omitempty"`
	MinArea   *float64 `json:"min_area,omitempty"`
	Tolerance *float64 `json:"tolerance,omitempty"`
	MaskText  *bool    `json:"mask_text,omitempty"`
	Layer     *int     `json:"layer,omitempty"`
	Datatype  *int     `json:"datatype,omitempty"`
	PixelSize *float64 `json:"pixel_size,omitempty"`
	Grid      *float64 `json:"grid,omitempty"`
}

// config returns a validated copy of base with the overrides applied.
func (a tuningArgs) config(base *config.Config) (*config.Config, error) {
	cfg := base.Clone()
	if a.Threshold != nil {
		cfg.Mask.Threshold = *a.Threshold
	}
	if a.MinArea != nil {
		cfg.Simplify.MinArea = *a.MinArea
	}
	if a.Tolerance != nil {
		cfg.Simplify.Tolerance = *a.Tolerance
	}
	if a.MaskText != nil {
		cfg.Mask.MaskText = *a.MaskText
	}
	if a.Layer != nil {
		cfg.Layout.Layer = *a.Layer
	}
	if a.Datatype != nil {
		cfg.Layout.Datatype = *a.Datatype
	}
	if a.PixelSize != nil {
		cfg.Layout.PixelSize = *a.PixelSize
	}
	if a.Grid != nil {
		cfg.Layout.Grid = *a.Grid
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type layoutTraceArgs struct {
	tuningArgs
	Path string `json:"path"`
}

// TraceResult is the output of layout_trace.
type TraceResult struct {
	Path string `json:"path"`
	*pipeline.Result
	Palette []imaging.ColorFrequency `json:"palette"`
}

func (s *Server) handleLayoutTrace(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a layoutTraceArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	cfg, err := a.config(s.cfg)
	if err != nil {
		return nil, err
	}
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	opts.Logger = s.logger

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, errs.Wrap(errs.CodeInput, err, "failed to read %s", a.Path)
	}
	result, err := pipeline.Run(ctx, img, opts)
	if err != nil {
		return nil, err
	}
	return &TraceResult{
		Path:    a.Path,
		Result:  result,
		Palette: imaging.DominantColors(img, paletteSize),
	}, nil
}

type layoutConvertArgs struct {
	tuningArgs
	Paths  []string `json:"paths"`
	Output string   `json:"output"`
	Format string   `json:"format"`
	Cell   string   `json:"cell"`
}

// ConvertResult is the output of layout_convert.
type ConvertResult struct {
	Output     string            `json:"output"`
	Format     layout.Format     `json:"format"`
	Cells      int               `json:"cells"`
	Polygons   int               `json:"polygons"`
	Degenerate int               `json:"degenerate"`
	Failed     map[string]string `json:"failed,omitempty"`
}

func (s *Server) handleLayoutConvert(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a layoutConvertArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if len(a.Paths) == 0 {
		return nil, errs.New(errs.CodeConfig, "paths must name at least one image")
	}
	if a.Output == "" {
		return nil, errs.New(errs.CodeConfig, "output is required")
	}

	base := s.cfg.Clone()
	if a.Format != "" {
		base.Layout.Format = a.Format
	}
	if a.Cell != "" {
		base.Layout.Cell = a.Cell
	}
	cfg, err := a.config(base)
	if err != nil {
		return nil, err
	}
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	opts.Logger = s.logger

	format := cfg.Format(a.Output)
	if format == layout.FormatGDS {
		opts.MaxVertices = layout.MaxGDSIIVertices
	}

	lib := cfg.NewLibrary()
	jobs := pipeline.Jobs(a.Paths, cfg.Layout.Cell)
	batch, err := pipeline.RunBatch(ctx, s.cache, lib, jobs, opts, 0)
	if err != nil {
		return nil, err
	}

	out := &ConvertResult{Output: a.Output, Format: format}
	for i, err := range batch.Errors {
		if err != nil {
			if out.Failed == nil {
				out.Failed = make(map[string]string)
			}
			out.Failed[jobs[i].Path] = err.Error()
			continue
		}
		out.Degenerate += batch.Results[i].Degenerate
	}
	if batch.Failed() == len(jobs) {
		return nil, batch.Errors[0]
	}

	if err := layout.WriteFile(a.Output, lib, format); err != nil {
		return nil, errs.Wrap(errs.CodeOutput, err, "failed to write %s", a.Output)
	}
	out.Cells = len(lib.Cells())
	out.Polygons = lib.PolygonCount()
	return out, nil
}

func (s *Server) handleLayoutInspect(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	lib, err := layout.ReadFile(a.Path)
	if err != nil {
		return nil, errs.Wrap(errs.CodeInput, err, "failed to inspect %s", a.Path)
	}
	return lib.Summarize(), nil
}
