package legacy

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// SnapshotReader loads per-entity JSONL exports from the legacy database.
// One file per entity type, one JSON object per line.
type SnapshotReader struct {
	dir string
	log *logrus.Entry
}

func NewSnapshotReader(dir string) *SnapshotReader {
	return &SnapshotReader{
		dir: dir,
		log: logrus.WithField("component", "snapshot"),
	}
}

// Read returns every parseable record from "{name}.json". When the file is
// missing under its verbatim name (export tools mangle accented filenames),
// the ASCII-normalized name is tried. Any failure is non-fatal: a warning is
// logged and the result is empty, turning the dependent stage into a no-op.
// Individually corrupt lines are skipped so a truncated file still yields
// its valid leading records.
func (r *SnapshotReader) Read(name string) []Record {
	path := filepath.Join(r.dir, name+".json")
	if _, err := os.Stat(path); err != nil {
		fallback := filepath.Join(r.dir, NormalizeFilenameASCII(name)+".json")
		if fallback != path {
			r.log.Infof("snapshot %s not found, trying %s", filepath.Base(path), filepath.Base(fallback))
		}
		path = fallback
	}

	f, err := os.Open(path)
	if err != nil {
		r.log.WithError(err).Warnf("cannot read snapshot %s", name)
		return nil
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			r.log.WithError(err).Warnf("skipping bad line in snapshot %s", name)
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		r.log.WithError(err).Warnf("stopped reading snapshot %s early", name)
	}

	return records
}
