package migrate

import (
	"context"
	"fmt"
	"time"
)

var rateClassColumns = []string{"id", "class", "year", "amount"}

// importRateClasses joins the class list against the yearly tariff table.
// The "class-year" rate map feeds the per-activity rate calculation later.
func importRateClasses(ctx context.Context, run *Run) error {
	classData := run.Snapshots.Read("Classes")
	if len(classData) == 0 {
		return nil
	}
	tariffData := run.Snapshots.Read("Tarifs")

	classes := make(map[string]struct{}, len(classData))
	for _, rec := range classData {
		classes[rec.Str("Classe")] = struct{}{}
	}

	currentYear := int64(time.Now().Year())
	rows := make([][]any, 0, len(tariffData))

	for _, rec := range tariffData {
		class := rec.Str("Classe")
		if _, ok := classes[class]; !ok {
			continue
		}
		id, ok := rec.Int("IDtarif")
		if !ok {
			continue
		}
		year, ok := rec.Int("Année")
		if !ok || year == 0 {
			year = currentYear
		}
		amount := rec.FloatOr("Tarif", 0)

		rows = append(rows, []any{id, class, year, amount})
		run.RateByClassYear[fmt.Sprintf("%s-%d", class, year)] = amount
	}

	if err := bulkInsertChunked(ctx, run, "rate_classes", rateClassColumns, rows, insertChunkSize); err != nil {
		return err
	}
	run.Log.Infof("imported %d rate classes", len(rows))
	return nil
}
