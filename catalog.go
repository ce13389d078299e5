package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

// PlanCatalog returns the new catalog contents with entry first and the number of entries.
// Existing entries are kept as raw JSON so fields this tool does not know about survive.
// A missing or unreadable catalog is treated as empty.
func PlanCatalog(path string, entry CatalogEntry) ([]byte, int, error) {
	existing, err := readCatalog(path)
	if err != nil {
		slog.Warn("catalog unreadable, starting from an empty list", "path", path, "error", err)
		existing = nil
	}

	first, err := marshalNoEscape(entry)
	if err != nil {
		return nil, 0, fmt.Errorf("encoding catalog entry: %w", err)
	}

	posts := make([]json.RawMessage, 0, len(existing)+1)
	posts = append(posts, first)
	posts = append(posts, existing...)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(posts); err != nil {
		return nil, 0, fmt.Errorf("encoding catalog: %w", err)
	}
	return buf.Bytes(), len(posts), nil
}

func readCatalog(path string) ([]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var posts []json.RawMessage
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func marshalNoEscape(v any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
