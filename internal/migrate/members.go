package migrate

import (
	"context"
	"time"

	"beg-migrate/internal/store"
)

// importProjectMembers grants member access to every user who logged hours
// on a project, derived from the activities just loaded. Managers were
// already linked during the projects stage.
func importProjectMembers(ctx context.Context, run *Run) error {
	pairs, err := store.QueryRows(ctx, run.Store.DB,
		`SELECT "userId", "projectId" FROM activities GROUP BY "userId", "projectId"`)
	if err != nil {
		return err
	}
	run.Log.Infof("found %d user/project pairs with activities", len(pairs))

	d := run.Store.Dialect
	now := time.Now().UTC()
	rows := make([][]any, 0, len(pairs))
	for _, pair := range pairs {
		rows = append(rows, []any{
			pair["projectId"], pair["userId"], "member", d.TimeParam(now), d.TimeParam(now),
		})
	}

	if err := bulkInsertChunked(ctx, run, "project_users", projectUserColumns, rows, memberChunkSize); err != nil {
		return err
	}
	run.Log.Infof("created %d project member entries", len(rows))
	return nil
}
