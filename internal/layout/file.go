package layout

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Format names an output encoding.
type Format string

const (
	FormatLYT  Format = "lyt"
	FormatGDS  Format = "gds"
	formatAuto Format = ""
)

// ParseFormat validates a format name. An empty name is returned unchanged and means
// "pick from the file extension".
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatLYT, FormatGDS, formatAuto:
		return f, nil
	case "gdsii", "gds2":
		return FormatGDS, nil
	default:
		return "", fmt.Errorf("unknown layout format %q (want lyt or gds)", s)
	}
}

// FormatFromPath picks the encoding from a file extension: .gds and .gdsii select
// GDSII, anything else the native format.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gds", ".gdsii", ".gds2":
		return FormatGDS
	default:
		return FormatLYT
	}
}

// Encode writes lib to w in this format.
func (f Format) Encode(w io.Writer, lib *Library) error {
	switch f {
	case FormatGDS:
		return EncodeGDSII(w, lib)
	case FormatLYT, formatAuto:
		return Encode(w, lib)
	default:
		return fmt.Errorf("unknown layout format %q", string(f))
	}
}

// WriteFile encodes lib and replaces path atomically.
//
// The stream is encoded in memory, written to a temporary file in the destination
// directory, synced and renamed over path. On any failure the temporary file is
// removed and path is left untouched. An empty format is chosen from the extension.
func WriteFile(path string, lib *Library, format Format) error {
	if format == formatAuto {
		format = FormatFromPath(path)
	}

	var buf bytes.Buffer
	if err := format.Encode(&buf, lib); err != nil {
		return fmt.Errorf("failed to encode layout: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", tmpName, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to rename %s to %s: %w", tmpName, path, err)
	}

	committed = true
	return nil
}

// ReadFile decodes a native layout file.
func ReadFile(path string) (*Library, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open layout: %w", err)
	}
	defer f.Close()

	lib, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return lib, nil
}
