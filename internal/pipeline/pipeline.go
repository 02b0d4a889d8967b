// Package pipeline provides helpers for reading and writing entry streams
// via stdin/stdout in JSONL format, the canonical pipe format.
package pipeline

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/derickschaefer/dex/internal/model"
	"github.com/derickschaefer/dex/internal/util"
)

const maxLine = 1024 * 1024

// ReadEntries reads JSONL entry records from r. Blank lines and lines
// starting with "//" are skipped. Every record must pass Entry.Validate.
// A record whose id was already read replaces nothing: the first one wins.
func ReadEntries(r io.Reader) ([]model.Entry, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, maxLine), maxLine)

	var entries []model.Entry
	seen := make(map[int]bool)
	lineNum := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		lineNum++
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		var e model.Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			return nil, fmt.Errorf("line %d: invalid JSON: %w", lineNum, err)
		}
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		if seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no entries read from input (is stdin empty?)")
	}
	return entries, nil
}

// ReadIdentifiers reads whitespace-separated ids or names from r,
// normalised and de-duplicated in first-seen order. A JSONL entry line
// contributes its name.
func ReadIdentifiers(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, maxLine), maxLine)

	var ids []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if strings.HasPrefix(line, "{") {
			var rec struct {
				Name string `json:"name"`
			}
			if err := json.Unmarshal([]byte(line), &rec); err != nil {
				return nil, fmt.Errorf("invalid JSON line: %w", err)
			}
			ids = append(ids, rec.Name)
			continue
		}
		ids = append(ids, strings.Fields(line)...)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return util.NormalizeIdentifiers(ids), nil
}

// WriteJSONL writes one entry per line to w.
func WriteJSONL(w io.Writer, entries []model.Entry) error {
	enc := json.NewEncoder(w)
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			return err
		}
	}
	return nil
}

// IsTTY returns true if stdin is a terminal (not a pipe).
func IsTTY() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
