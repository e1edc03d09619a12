// Package fab decodes the legacy invoice document format: a sectioned
// key=value text file produced by the old invoicing tool, with
// spreadsheet-like grids flattened into synthetic "name{row}.{col}" keys.
package fab

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Container is one decoded legacy document. INTERNAL holds bookkeeping
// fields written by the legacy tool, DATAS the invoice content. The [CHECK]
// section is a checksum trailer with no data and is discarded.
type Container struct {
	Internal map[string]string
	Datas    map[string]string
}

// Decode converts raw file bytes to UTF-8 and parses them. Legacy documents
// are Windows-1252; decoding must happen before any string operation or
// accented free-text fields (addresses, remarks) come out mangled.
func Decode(raw []byte) (*Container, error) {
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, fmt.Errorf("decode windows-1252: %w", err)
	}
	return Parse(string(decoded)), nil
}

// Parse reads the sectioned key=value layout. A line exactly matching a
// bracketed section name switches the active section; other lines containing
// "=" are split on the first "=" and stored under the active section. Lines
// outside a recognized section are ignored.
func Parse(content string) *Container {
	c := &Container{
		Internal: make(map[string]string),
		Datas:    make(map[string]string),
	}

	var current map[string]string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimRight(line, "\r")
		trimmed = strings.TrimSpace(trimmed)

		switch trimmed {
		case "[INTERNAL]":
			current = c.Internal
			continue
		case "[DATAS]":
			current = c.Datas
			continue
		case "[CHECK]":
			current = nil
			continue
		}

		if current == nil {
			continue
		}
		if idx := strings.Index(trimmed, "="); idx >= 0 {
			current[trimmed[:idx]] = trimmed[idx+1:]
		}
	}

	return c
}
