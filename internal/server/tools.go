package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// tuningProperties are the optional overrides accepted by layout_trace and
// layout_convert. Omitted values come from the server configuration.
func tuningProperties() map[string]interface{} {
	return map[string]interface{}{
		"threshold": map[string]interface{}{
			"type":        "integer",
			"description": "Luminance at or below which a pixel is foreground (0-255). Default 240",
		},
		"min_area": map[string]interface{}{
			"type":        "number",
			"description": "Minimum polygon area in square pixels. Default 100",
		},
		"tolerance": map[string]interface{}{
			"type":        "number",
			"description": "Simplification tolerance as a fraction of the contour perimeter. Default 0.01",
		},
		"mask_text": map[string]interface{}{
			"type":        "boolean",
			"description": "Clear text annotations from the image before tracing",
		},
		"layer": map[string]interface{}{
			"type":        "integer",
			"description": "Layer of traced polygons. Default 10",
		},
		"datatype": map[string]interface{}{
			"type":        "integer",
			"description": "Datatype of traced polygons. Default 250",
		},
		"pixel_size": map[string]interface{}{
			"type":        "number",
			"description": "User units per pixel. Default 1.0",
		},
		"grid": map[string]interface{}{
			"type":        "number",
			"description": "User units per database unit. Default 0.001",
		},
	}
}

func withProperties(base map[string]interface{}, extra map[string]interface{}) map[string]interface{} {
	for k, v := range extra {
		base[k] = v
	}
	return base
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format. The image stays cached for subsequent calls.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},

		// Layout Operations
		{
			Name:        "layout_trace",
			Description: "Trace an image into polygons without writing a file. Returns every accepted polygon with its pixel vertices, edge lengths, area and database-unit points, plus rejection counts and the dominant colours of the image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(tuningProperties(), map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "layout_convert",
			Description: "Convert one or more images into a layout file (.lyt or GDSII). Each image becomes one cell; a single image uses the given cell name.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(tuningProperties(), map[string]interface{}{
					"paths": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Absolute paths to the image files",
					},
					"output": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path of the layout file to write",
					},
					"format": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"lyt", "gds"},
						"description": "Output format. Default: chosen from the output extension",
					},
					"cell": map[string]interface{}{
						"type":        "string",
						"description": "Cell name when converting a single image. Default IMAGE2OAS",
					},
				}),
				"required": []string{"paths", "output"},
			},
		},
		{
			Name:        "layout_inspect",
			Description: "Summarize a .lyt layout file: cells, polygon and vertex counts per layer/datatype, and bounding boxes.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the .lyt file",
					},
				},
				"required": []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
