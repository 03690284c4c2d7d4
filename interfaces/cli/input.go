package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// parseEmbedding reads a comma separated list of floats.
func parseEmbedding(s string) ([]float32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float32, 0, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("invalid embedding value at %d: %q", i, p)
		}
		out = append(out, float32(f))
	}
	return out, nil
}

// readJSON decodes the file at path into v. "-" reads stdin.
func (a *App) readJSON(path string, v any) error {
	var r io.Reader
	if path == "-" {
		r = a.stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open record file: %w", err)
		}
		defer f.Close()
		r = f
	}

	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("failed to decode record: %w", err)
	}
	return nil
}

// optionalBool returns nil unless the flag was set.
func optionalBool(set bool, value bool) *bool {
	if !set {
		return nil
	}
	return &value
}

// optionalInt64 returns nil unless the flag was set.
func optionalInt64(set bool, value int64) *int64 {
	if !set {
		return nil
	}
	return &value
}
