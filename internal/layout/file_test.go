package layout

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFile_Native(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.lyt")
	lib := createTestLibrary()

	if err := WriteFile(path, lib, ""); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if got.PolygonCount() != lib.PolygonCount() {
		t.Errorf("Expected %d polygons, got %d", lib.PolygonCount(), got.PolygonCount())
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected only the output file in the directory, got %d entries", len(entries))
	}
}

func TestWriteFile_FormatFromExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.gds")
	if err := WriteFile(path, createTestLibrary(), ""); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	// HEADER record: length 6, type 0x00, data type 0x02.
	if !bytes.HasPrefix(data, []byte{0x00, 0x06, 0x00, 0x02}) {
		t.Errorf("Expected a GDSII HEADER record, got % x", data[:4])
	}
}

func TestWriteFile_ReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.lyt")
	if err := os.WriteFile(path, []byte("old contents"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if err := WriteFile(path, createTestLibrary(), FormatLYT); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := ReadFile(path); err != nil {
		t.Errorf("Replaced file should decode: %v", err)
	}
}

func TestWriteFile_EncodeFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.gds")

	// Zero units cannot be written as GDSII.
	if err := WriteFile(path, NewLibrary("LIB", 0, 0), FormatGDS); err == nil {
		t.Fatal("Expected an error")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("Expected no files after a failed write, got %d", len(entries))
	}
}

func TestWriteFile_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.lyt")
	if err := WriteFile(path, createTestLibrary(), FormatLYT); err == nil {
		t.Error("Expected an error when the directory does not exist")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("No output file should exist")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"lyt", FormatLYT, false},
		{"GDS", FormatGDS, false},
		{"gdsii", FormatGDS, false},
		{"", "", false},
		{"oasis", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"out.lyt":      FormatLYT,
		"OUT.GDS":      FormatGDS,
		"a/b.gdsii":    FormatGDS,
		"no-extension": FormatLYT,
	}
	for path, want := range tests {
		if got := FormatFromPath(path); got != want {
			t.Errorf("FormatFromPath(%q) = %q, want %q", path, got, want)
		}
	}
}
