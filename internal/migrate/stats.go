package migrate

import (
	"context"
	"fmt"
	"time"

	"beg-migrate/internal/store"
)

// RecomputeProjectStats refreshes the denormalized activity aggregates on
// one project row: first/last activity date, total logged hours, hours not
// yet billed, and hours flagged as disbursements.
func RecomputeProjectStats(ctx context.Context, st *store.Store, projectID int64) error {
	d := st.Dialect

	pb := d.NewParamBuilder()
	row, err := store.QueryRow(ctx, st.DB, fmt.Sprintf(
		`SELECT MIN("date") AS first, MAX("date") AS last, COALESCE(SUM("duration"), 0) AS total
		 FROM activities WHERE "projectId" = %s`, pb.Add(projectID)), pb.Params()...)
	if err != nil {
		return fmt.Errorf("aggregate activities for project %d: %w", projectID, err)
	}

	pb = d.NewParamBuilder()
	unbilled, err := store.QueryRow(ctx, st.DB, fmt.Sprintf(
		`SELECT COALESCE(SUM("duration"), 0) AS total
		 FROM activities WHERE "projectId" = %s AND "billed" = %s`,
		pb.Add(projectID), pb.Add(d.BoolParam(false))), pb.Params()...)
	if err != nil {
		return fmt.Errorf("aggregate unbilled for project %d: %w", projectID, err)
	}

	pb = d.NewParamBuilder()
	disbursed, err := store.QueryRow(ctx, st.DB, fmt.Sprintf(
		`SELECT COALESCE(SUM("duration"), 0) AS total
		 FROM activities WHERE "projectId" = %s AND "disbursement" = %s`,
		pb.Add(projectID), pb.Add(d.BoolParam(true))), pb.Params()...)
	if err != nil {
		return fmt.Errorf("aggregate disbursements for project %d: %w", projectID, err)
	}

	now := time.Now().UTC()
	pb = d.NewParamBuilder()
	stmt := fmt.Sprintf(
		`UPDATE projects SET "firstActivityDate" = %s, "lastActivityDate" = %s,
		 "totalDuration" = %s, "unBilledDuration" = %s, "unBilledDisbursementDuration" = %s,
		 "updatedAt" = %s WHERE id = %s`,
		pb.Add(d.NullTimeParam(asTimePtr(row["first"]))),
		pb.Add(d.NullTimeParam(asTimePtr(row["last"]))),
		pb.Add(asFloat(row["total"])),
		pb.Add(asFloat(unbilled["total"])),
		pb.Add(asFloat(disbursed["total"])),
		pb.Add(d.TimeParam(now)),
		pb.Add(projectID))
	if _, err := store.Exec(ctx, st.DB, stmt, pb.Params()...); err != nil {
		return fmt.Errorf("update stats for project %d: %w", projectID, err)
	}
	return nil
}

func asTimePtr(v any) *time.Time {
	if t, ok := v.(time.Time); ok {
		return &t
	}
	return nil
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	default:
		return 0
	}
}
