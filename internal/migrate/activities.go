package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"beg-migrate/internal/legacy"
)

var activityColumns = []string{
	"userId", "date", "duration", "kilometers", "expenses", "rate",
	"projectId", "activityTypeId", "description", "billed", "disbursement",
	"rateClass", "createdAt", "updatedAt",
}

// rateFor resolves the hourly rate for one time entry: the user's assigned
// rate class for that activity type, priced by the tariff year of the entry
// date. When that yields nothing the rate carried on the legacy record wins.
func (run *Run) rateFor(userID, activityTypeID int64, year int, rec legacy.Record) (rate float64, class string) {
	for _, r := range run.UserRates[userID] {
		if r.ActivityID == activityTypeID {
			class = r.Class
			break
		}
	}
	if class != "" {
		rate = run.RateByClassYear[fmt.Sprintf("%s-%d", class, year)]
	}
	if rate <= 0 {
		rate = rec.FloatOr("Tarif", 0)
	}
	return rate, class
}

func importActivities(ctx context.Context, run *Run) error {
	activityData := run.Snapshots.Read("Heures")
	if len(activityData) == 0 {
		return nil
	}

	d := run.Store.Dialect
	imported := 0
	skipped := 0

	process := func(chunk []legacy.Record) error {
		rows := make([][]any, 0, len(chunk))

		for _, rec := range chunk {
			userID, okU := rec.Int("IDcollaborateur")
			projectID, okP := rec.Int("IDmandat")
			activityTypeID, okA := rec.Int("IDactivité")
			if !okU || !okP || !okA || userID == 0 || projectID == 0 || activityTypeID == 0 {
				skipped++
				continue
			}

			// A row pointing at an entity the catalog stages never produced
			// cannot satisfy its constraints; drop it rather than fail the chunk.
			if _, ok := run.UserIDs[userID]; !ok {
				skipped++
				continue
			}
			if _, ok := run.ProjectIDs[projectID]; !ok {
				skipped++
				continue
			}
			if _, ok := run.ActivityTypeIDs[activityTypeID]; !ok {
				skipped++
				continue
			}

			date := legacy.ParseAccessDate(rec.Str("Date"))
			rate, class := run.rateFor(userID, activityTypeID, date.Year(), rec)

			var rateClass any
			if class != "" {
				rateClass = class
			}
			var description any
			if rec.Has("Remarque") {
				description = rec.Str("Remarque")
			}

			billed, _ := rec.Int("Facturé")
			disbursement, _ := rec.Int("Débours")

			rows = append(rows, []any{
				userID,
				d.TimeParam(date),
				math.Round(rec.FloatOr("Heures", 0)*100) / 100,
				rec.FloatOr("Km", 0),
				rec.FloatOr("Frais", 0),
				rate,
				projectID,
				activityTypeID,
				description,
				d.BoolParam(billed == 1),
				d.BoolParam(disbursement == 1),
				rateClass,
				d.TimeParam(date),
				d.TimeParam(date),
			})
			imported++
		}

		return run.Store.WithTx(ctx, func(tx *sql.Tx) error {
			return run.Store.BulkInsert(ctx, tx, "activities", activityColumns, rows)
		})
	}

	for start := 0; start < len(activityData); start += insertChunkSize {
		end := start + insertChunkSize
		if end > len(activityData) {
			end = len(activityData)
		}
		if err := process(activityData[start:end]); err != nil {
			return err
		}
	}

	run.Log.Infof("imported %d activities (%d skipped)", imported, skipped)

	// The per-project aggregates are only valid once every activity is in.
	run.Log.Info("recomputing project activity stats")
	for projectID := range run.ProjectIDs {
		if err := RecomputeProjectStats(ctx, run.Store, projectID); err != nil {
			return err
		}
	}

	return nil
}
