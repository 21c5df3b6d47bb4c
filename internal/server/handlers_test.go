package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/image2layout/internal/layout"
)

// createTestImageFile writes a white PNG with a black filled rectangle and returns its path
func createTestImageFile(t *testing.T, width, height int, shape image.Rectangle) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if (image.Point{x, y}).In(shape) {
				img.Set(x, y, color.Black)
			} else {
				img.Set(x, y, color.White)
			}
		}
	}

	path := filepath.Join(t.TempDir(), "drawing.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create image file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

// callTool sends a tools/call request and returns the response
func callTool(t *testing.T, s *Server, name string, args map[string]interface{}) *MCPResponse {
	t.Helper()

	params := map[string]interface{}{
		"name":      name,
		"arguments": args,
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("failed to marshal params: %v", err)
	}

	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	}
	resp := s.handleRequest(context.Background(), req)
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

// decodeContent unmarshals the text content of a successful tool response into v
func decodeContent(t *testing.T, resp *MCPResponse, v interface{}) {
	t.Helper()

	if resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 || content[0]["type"] != "text" {
		t.Fatalf("Unexpected content: %v", result["content"])
	}
	if err := json.Unmarshal([]byte(content[0]["text"].(string)), v); err != nil {
		t.Fatalf("Content is not JSON: %v", err)
	}
}

func TestHandleToolsCall_ImageLoad(t *testing.T) {
	s := New(nil, nil)
	imgPath := createTestImageFile(t, 100, 80, image.Rect(10, 10, 40, 40))

	var info map[string]interface{}
	decodeContent(t, callTool(t, s, "image_load", map[string]interface{}{"path": imgPath}), &info)

	if info["width"] != float64(100) || info["height"] != float64(80) {
		t.Errorf("Unexpected dimensions: %v", info)
	}
	if s.cache.Len() != 1 {
		t.Errorf("image_load should cache the image, cache holds %d", s.cache.Len())
	}
}

func TestRun_ReleasesCachedImages(t *testing.T) {
	s := New(nil, nil)
	imgPath := createTestImageFile(t, 50, 50, image.Rect(10, 10, 40, 40))

	args, err := json.Marshal(map[string]interface{}{
		"name":      "image_load",
		"arguments": map[string]interface{}{"path": imgPath},
	})
	if err != nil {
		t.Fatalf("failed to marshal params: %v", err)
	}
	in := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":` + string(args) + "}\n"

	var out bytes.Buffer
	if err := s.Run(context.Background(), strings.NewReader(in), &out); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(out.String(), "width") {
		t.Fatalf("Expected an image_load result, got %s", out.String())
	}
	if s.cache.Len() != 0 {
		t.Errorf("Run should release cached images, %d remain", s.cache.Len())
	}
}

func TestHandleToolsCall_ImageDimensions(t *testing.T) {
	s := New(nil, nil)
	imgPath := createTestImageFile(t, 200, 150, image.Rect(0, 0, 1, 1))

	var dims map[string]interface{}
	decodeContent(t, callTool(t, s, "image_dimensions", map[string]interface{}{"path": imgPath}), &dims)

	if dims["width"] != float64(200) || dims["height"] != float64(150) {
		t.Errorf("Unexpected dimensions: %v", dims)
	}
}

func TestHandleToolsCall_Errors(t *testing.T) {
	tests := []struct {
		name string
		tool string
		args map[string]interface{}
	}{
		{"missing image", "image_load", map[string]interface{}{"path": "/nonexistent/image.png"}},
		{"unknown tool", "nonexistent_tool", map[string]interface{}{}},
		{"trace missing image", "layout_trace", map[string]interface{}{"path": "/nonexistent/image.png"}},
		{"trace invalid threshold", "layout_trace", map[string]interface{}{"path": "/tmp/x.png", "threshold": 300}},
		{"convert without paths", "layout_convert", map[string]interface{}{"output": "/tmp/out.lyt"}},
		{"convert without output", "layout_convert", map[string]interface{}{"paths": []string{"/tmp/x.png"}}},
		{"convert bad format", "layout_convert", map[string]interface{}{"paths": []string{"/tmp/x.png"}, "output": "/tmp/out.lyt", "format": "oasis"}},
		{"inspect missing file", "layout_inspect", map[string]interface{}{"path": "/nonexistent/out.lyt"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := callTool(t, New(nil, nil), tt.tool, tt.args)
			if resp.Error == nil {
				t.Fatal("Expected an error response")
			}
			if resp.Error.Code != -32000 {
				t.Errorf("Error code: got %d, want -32000", resp.Error.Code)
			}
		})
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := New(nil, nil)
	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(`{invalid`),
	}

	resp := s.handleRequest(context.Background(), req)
	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Errorf("Expected -32602, got %+v", resp.Error)
	}
}

func TestHandleToolsCall_LayoutTrace(t *testing.T) {
	s := New(nil, nil)
	imgPath := createTestImageFile(t, 80, 60, image.Rect(10, 20, 50, 40))

	var result struct {
		Path     string `json:"path"`
		Width    int    `json:"width"`
		Polygons []struct {
			Layer    int         `json:"layer"`
			Datatype int         `json:"datatype"`
			Points   []layout.XY `json:"points"`
			Area     float64     `json:"area"`
		} `json:"polygons"`
		Palette []struct {
			Hex string `json:"hex"`
		} `json:"palette"`
	}
	decodeContent(t, callTool(t, s, "layout_trace", map[string]interface{}{"path": imgPath}), &result)

	if result.Path != imgPath || result.Width != 80 {
		t.Errorf("Unexpected header: %s %d", result.Path, result.Width)
	}
	if len(result.Polygons) != 1 {
		t.Fatalf("Expected 1 polygon, got %d", len(result.Polygons))
	}
	p := result.Polygons[0]
	if p.Layer != 10 || p.Datatype != 250 || len(p.Points) != 4 {
		t.Errorf("Unexpected polygon: %+v", p)
	}
	// Corners at pixel centres 10..49 and 20..39.
	if p.Area != 39*19 {
		t.Errorf("Expected area %d, got %v", 39*19, p.Area)
	}
	if len(result.Palette) == 0 || result.Palette[0].Hex != "#f0f0f0" {
		t.Errorf("Expected the white background to dominate, got %+v", result.Palette)
	}
}

func TestHandleToolsCall_LayoutTraceOverrides(t *testing.T) {
	s := New(nil, nil)
	imgPath := createTestImageFile(t, 80, 60, image.Rect(10, 20, 50, 40))

	var result struct {
		Polygons []struct {
			Layer int `json:"layer"`
		} `json:"polygons"`
		Stats struct {
			RejectedArea int `json:"rejected_area"`
		} `json:"stats"`
	}
	decodeContent(t, callTool(t, s, "layout_trace", map[string]interface{}{
		"path":     imgPath,
		"min_area": 1000,
	}), &result)

	if len(result.Polygons) != 0 || result.Stats.RejectedArea != 1 {
		t.Errorf("Expected the rectangle rejected on area, got %+v", result)
	}
	if s.cfg.Simplify.MinArea != 100 {
		t.Errorf("Overrides must not change the server configuration, min_area is %v", s.cfg.Simplify.MinArea)
	}
}

func TestHandleToolsCall_LayoutConvertAndInspect(t *testing.T) {
	s := New(nil, nil)
	first := createTestImageFile(t, 80, 60, image.Rect(10, 20, 50, 40))
	second := createTestImageFile(t, 80, 60, image.Rect(5, 5, 45, 45))
	output := filepath.Join(t.TempDir(), "out.lyt")

	var converted ConvertResult
	decodeContent(t, callTool(t, s, "layout_convert", map[string]interface{}{
		"paths":  []string{first, second, "/nonexistent/missing.png"},
		"output": output,
		"layer":  3,
	}), &converted)

	if converted.Polygons != 2 || converted.Format != layout.FormatLYT {
		t.Errorf("Unexpected result: %+v", converted)
	}
	if len(converted.Failed) != 1 || converted.Failed["/nonexistent/missing.png"] == "" {
		t.Errorf("Expected the missing image reported, got %v", converted.Failed)
	}

	var summary layout.Summary
	decodeContent(t, callTool(t, s, "layout_inspect", map[string]interface{}{"path": output}), &summary)

	// Both images are named drawing.png, so the second cell gets a suffix.
	if len(summary.Cells) != 3 || summary.Polygons != 2 {
		t.Fatalf("Unexpected summary: %+v", summary)
	}
	names := []string{summary.Cells[0].Name, summary.Cells[1].Name, summary.Cells[2].Name}
	if strings.Join(names, ",") != "drawing,drawing_2,missing" {
		t.Errorf("Unexpected cell names: %v", names)
	}
	if summary.Cells[0].Layers["3/250"] != 1 {
		t.Errorf("Expected the layer override, got %v", summary.Cells[0].Layers)
	}
}

func TestHandleToolsCall_LayoutConvertGDS(t *testing.T) {
	s := New(nil, nil)
	imgPath := createTestImageFile(t, 80, 60, image.Rect(10, 20, 50, 40))
	output := filepath.Join(t.TempDir(), "out.gds")

	var converted ConvertResult
	decodeContent(t, callTool(t, s, "layout_convert", map[string]interface{}{
		"paths":  []string{imgPath},
		"output": output,
		"cell":   "TOP",
	}), &converted)

	if converted.Format != layout.FormatGDS || converted.Cells != 1 {
		t.Errorf("Unexpected result: %+v", converted)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	// HEADER record: length 6, type 0x0002, version 600.
	if len(data) < 6 || data[2] != 0x00 || data[3] != 0x02 {
		t.Errorf("Output does not start with a GDSII HEADER record: % x", data[:min(6, len(data))])
	}
}

func TestHandleToolsCall_LayoutConvertAllFailed(t *testing.T) {
	s := New(nil, nil)
	output := filepath.Join(t.TempDir(), "out.lyt")

	resp := callTool(t, s, "layout_convert", map[string]interface{}{
		"paths":  []string{"/nonexistent/a.png"},
		"output": output,
	})
	if resp.Error == nil {
		t.Fatal("Expected an error when no image could be read")
	}
	if !strings.Contains(resp.Error.Data.(string), "INPUT_ERROR") {
		t.Errorf("Expected an input error, got %v", resp.Error.Data)
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Error("No output should be written when every image fails")
	}
}

func TestExecuteTool_AllTools(t *testing.T) {
	s := New(nil, nil)
	imgPath := createTestImageFile(t, 100, 100, image.Rect(20, 20, 60, 60))
	output := filepath.Join(t.TempDir(), "all.lyt")

	toolTests := []struct {
		name string
		args map[string]interface{}
	}{
		{"image_load", map[string]interface{}{"path": imgPath}},
		{"image_dimensions", map[string]interface{}{"path": imgPath}},
		{"layout_trace", map[string]interface{}{"path": imgPath}},
		{"layout_convert", map[string]interface{}{"paths": []string{imgPath}, "output": output}},
		{"layout_inspect", map[string]interface{}{"path": output}},
	}

	for _, tt := range toolTests {
		t.Run(tt.name, func(t *testing.T) {
			argsJSON, _ := json.Marshal(tt.args)
			result, err := s.executeTool(context.Background(), tt.name, argsJSON)
			if err != nil {
				t.Fatalf("executeTool(%s) failed: %v", tt.name, err)
			}
			if result == nil {
				t.Errorf("executeTool(%s) returned nil result", tt.name)
			}
		})
	}
}

func TestExecuteTool_InvalidJSON(t *testing.T) {
	s := New(nil, nil)

	for _, name := range []string{"image_load", "layout_trace", "layout_convert", "layout_inspect"} {
		if _, err := s.executeTool(context.Background(), name, json.RawMessage(`{invalid`)); err == nil {
			t.Errorf("executeTool(%s) should fail for invalid JSON", name)
		}
	}
}
