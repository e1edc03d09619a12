package migrate

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/jszwec/csvutil"
	"golang.org/x/text/unicode/norm"
)

const coordinateCSVName = "Géoréférencement mandats_v2024.csv"

// coordinateRow is one line of the hand-maintained georeferencing CSV:
// a project number and its WGS84 position.
type coordinateRow struct {
	ProjectNumber string  `csv:"Mandat"`
	Latitude      float64 `csv:"Latitude"`
	Longitude     float64 `csv:"Longitude"`
}

// foldName lowercases and strips diacritics so "Géoréférencement" matches a
// file saved as "Georeferencement".
func foldName(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// findCoordinateCSV locates the georeferencing CSV in dir, tolerating
// accent-stripped filenames and version-suffix drift.
func findCoordinateCSV(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}

	wanted := foldName(coordinateCSVName)
	for _, e := range entries {
		if foldName(e.Name()) == wanted {
			return filepath.Join(dir, e.Name())
		}
	}
	for _, e := range entries {
		name := foldName(e.Name())
		if strings.HasPrefix(name, "georeferencement mandats") && strings.HasSuffix(name, ".csv") {
			return filepath.Join(dir, e.Name())
		}
	}
	return ""
}

// importProjectCoordinates backfills latitude/longitude onto already-loaded
// projects. The CSV is optional: a missing directory or file only logs a
// warning, and an unmatched project number is skipped.
func importProjectCoordinates(ctx context.Context, run *Run) error {
	dir := run.Cfg.InitialDataDir
	if _, err := os.Stat(dir); err != nil {
		run.Log.Warnf("coordinate data directory not found: %s", dir)
		return nil
	}

	csvPath := findCoordinateCSV(dir)
	if csvPath == "" {
		run.Log.Warnf("no coordinate CSV matching %q in %s", coordinateCSVName, dir)
		return nil
	}

	data, err := os.ReadFile(csvPath)
	if err != nil {
		run.Log.WithError(err).Warnf("cannot read coordinate CSV %s", csvPath)
		return nil
	}

	rows, err := decodeCoordinateCSV(data)
	if err != nil {
		run.Log.WithError(err).Warnf("cannot parse coordinate CSV %s", csvPath)
		return nil
	}

	d := run.Store.Dialect
	updated := 0
	for _, row := range rows {
		number := strings.TrimSpace(row.ProjectNumber)
		if number == "" || row.Latitude == 0 || row.Longitude == 0 {
			continue
		}

		pb := d.NewParamBuilder()
		stmt := fmt.Sprintf(`UPDATE projects SET "latitude" = %s, "longitude" = %s WHERE "projectNumber" = %s`,
			pb.Add(row.Latitude), pb.Add(row.Longitude), pb.Add(number))
		if _, err := run.Store.DB.ExecContext(ctx, stmt, pb.Params()...); err != nil {
			return fmt.Errorf("update coordinates for project %s: %w", number, err)
		}
		updated++
	}

	run.Log.Infof("applied coordinates from %s to %d projects", filepath.Base(csvPath), updated)
	return nil
}

// decodeCoordinateCSV unmarshals the CSV, accepting both comma and the
// semicolon delimiter Swiss spreadsheet exports produce.
func decodeCoordinateCSV(data []byte) ([]coordinateRow, error) {
	header, _, _ := bytes.Cut(data, []byte("\n"))
	comma := ','
	if bytes.Count(header, []byte(";")) > bytes.Count(header, []byte(",")) {
		comma = ';'
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = comma
	dec, err := csvutil.NewDecoder(r)
	if err != nil {
		return nil, err
	}

	var rows []coordinateRow
	for {
		var row coordinateRow
		if err := dec.Decode(&row); err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}
