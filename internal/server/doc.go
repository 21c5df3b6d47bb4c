// Package server implements the MCP (Model Context Protocol) server for the
// image-to-layout tools.
//
// This package provides a JSON-RPC 2.0 server that exposes conversion capabilities
// through the MCP protocol, so that an assistant can trace a drawing, check the
// result and write the layout without a shell.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//   - Logs: stderr, through the charmbracelet logger handed to New
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// Layout Operations:
//   - layout_trace: Run the pipeline and return the polygons as JSON
//   - layout_convert: Convert images into a .lyt or GDSII file
//   - layout_inspect: Summarize a .lyt file
//
// layout_trace and layout_convert accept optional overrides (threshold, min_area,
// tolerance, mask_text, layer, datatype, pixel_size, grid) on top of the
// configuration the server was started with.
//
// # Image Caching
//
// Images loaded by image_load and layout_trace are cached by path and reused across
// calls. layout_convert evicts each image once it has been converted.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string, prefixed with its code (e.g. INPUT_ERROR)
//
// # Usage
//
//	srv := server.New(cfg, logger)
//	if err := srv.Run(ctx, os.Stdin, os.Stdout); err != nil {
//	    logger.Fatal("server error", "err", err)
//	}
package server
