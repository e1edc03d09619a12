package legacy

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// UnclassifiedType is the sentinel project type assigned to legacy labels
// with no mapping. It is always insertable even if never referenced.
const UnclassifiedType = "Non renseigné"

// TypeMapping is the loaded project type remap table: legacy label to one or
// more new labels, plus the full set of new labels to insert.
type TypeMapping struct {
	LegacyToNew map[string][]string
	allNew      map[string]struct{}
	newOrder    []string
}

// NewTypes returns every new type label in first-seen order, sentinel first.
func (m *TypeMapping) NewTypes() []string {
	return m.newOrder
}

func (m *TypeMapping) addNew(name string) {
	if _, ok := m.allNew[name]; ok {
		return
	}
	m.allNew[name] = struct{}{}
	m.newOrder = append(m.newOrder, name)
}

// Resolve returns the new labels for a legacy label, falling back to the
// unclassified sentinel so no project is ever dropped for lack of a mapping.
func (m *TypeMapping) Resolve(legacyLabel string) []string {
	if labels, ok := m.LegacyToNew[legacyLabel]; ok {
		return labels
	}
	return []string{UnclassifiedType}
}

// LoadProjectTypeMapping reads the tab-separated remap file: a header row,
// then one row per legacy label with up to three new labels in columns 1-3.
// Quotes around the legacy label are stripped; blank new-label cells are
// ignored; a row with no new labels maps to the unclassified sentinel.
// On read failure the returned mapping still contains the sentinel, so the
// caller can degrade to unclassified-only instead of aborting.
func LoadProjectTypeMapping(path string) (*TypeMapping, error) {
	m := &TypeMapping{
		LegacyToNew: make(map[string][]string),
		allNew:      make(map[string]struct{}),
	}
	m.addNew(UnclassifiedType)

	f, err := os.Open(path)
	if err != nil {
		return m, fmt.Errorf("open type mapping: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	header := true
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if header {
			header = false
			continue
		}

		columns := strings.Split(line, "\t")
		legacyLabel := strings.Trim(strings.TrimSpace(columns[0]), `"`)
		if legacyLabel == "" {
			continue
		}

		var newLabels []string
		for col := 1; col <= 3 && col < len(columns); col++ {
			label := strings.TrimSpace(columns[col])
			if label == "" {
				continue
			}
			newLabels = append(newLabels, label)
			m.addNew(label)
		}
		if len(newLabels) == 0 {
			newLabels = []string{UnclassifiedType}
		}

		m.LegacyToNew[legacyLabel] = newLabels
	}
	if err := scanner.Err(); err != nil {
		return m, fmt.Errorf("read type mapping: %w", err)
	}

	return m, nil
}
