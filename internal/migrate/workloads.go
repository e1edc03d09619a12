package migrate

import (
	"context"
	"fmt"
	"time"
)

var workloadColumns = []string{"userId", "year", "month", "workload", "createdAt", "updatedAt"}

// importWorkloads loads per-user monthly employment percentages. Invalid
// rows are collected rather than aborting; a short preview of the failures
// is logged at the end.
func importWorkloads(ctx context.Context, run *Run) error {
	workloadData := run.Snapshots.Read("Taux")
	if len(workloadData) == 0 {
		run.Log.Info("no workload data found")
		return nil
	}

	d := run.Store.Dialect
	now := time.Now().UTC()
	rows := make([][]any, 0, len(workloadData))
	var errored []string

	for _, rec := range workloadData {
		userID, okU := rec.Int("IDcollaborateur")
		year, okY := rec.Int("Année")
		month, okM := rec.Int("Mois")
		if !okU || userID == 0 || !okY || year == 0 || !okM || month == 0 {
			errored = append(errored, fmt.Sprintf("user %d: missing required fields", userID))
			continue
		}
		if _, ok := run.UserIDs[userID]; !ok {
			errored = append(errored, fmt.Sprintf("user %d: not found", userID))
			continue
		}

		workload, ok := rec.Int("Taux")
		if !ok || workload == 0 {
			workload = 100
		}

		rows = append(rows, []any{userID, year, month, workload, d.TimeParam(now), d.TimeParam(now)})
	}

	if err := bulkInsertChunked(ctx, run, "workloads", workloadColumns, rows, insertChunkSize); err != nil {
		return err
	}

	if len(errored) > 0 {
		run.Log.Warnf("failed to import %d workload entries:", len(errored))
		preview := errored
		if len(preview) > 5 {
			preview = preview[:5]
		}
		for _, reason := range preview {
			run.Log.Warnf("  - %s", reason)
		}
		if len(errored) > 5 {
			run.Log.Warnf("  ... and %d more", len(errored)-5)
		}
	}

	run.Log.Infof("imported %d workloads, %d errors", len(rows), len(errored))
	return nil
}
