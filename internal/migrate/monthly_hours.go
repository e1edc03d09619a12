package migrate

import (
	"context"
	"time"
)

var monthlyHourColumns = []string{"year", "month", "amountOfHours", "createdAt", "updatedAt"}

// importMonthlyHours loads the expected working hours per calendar month.
func importMonthlyHours(ctx context.Context, run *Run) error {
	data := run.Snapshots.Read("Heures mensuelles")
	if len(data) == 0 {
		return nil
	}

	d := run.Store.Dialect
	now := time.Now().UTC()
	rows := make([][]any, 0, len(data))
	for _, rec := range data {
		year, okY := rec.Int("Année")
		month, okM := rec.Int("Mois")
		if !okY || !okM {
			continue
		}
		rows = append(rows, []any{year, month, rec.FloatOr("Heures", 0), d.TimeParam(now), d.TimeParam(now)})
	}

	if err := bulkInsertChunked(ctx, run, "monthly_hours", monthlyHourColumns, rows, insertChunkSize); err != nil {
		return err
	}
	run.Log.Infof("imported %d monthly hours records", len(rows))
	return nil
}
