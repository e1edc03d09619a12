package migrate

import (
	"context"
	"time"
)

// importNamedSet loads one of the flat id+name reference tables. The legacy
// id becomes the target id so projects can keep their references.
func importNamedSet(ctx context.Context, run *Run, snapshot, table, idField, nameField string, ids map[int64]struct{}) error {
	data := run.Snapshots.Read(snapshot)
	if len(data) == 0 {
		return nil
	}

	d := run.Store.Dialect
	now := time.Now().UTC()
	columns := []string{"id", "name", "createdAt", "updatedAt"}
	rows := make([][]any, 0, len(data))

	for _, rec := range data {
		id, ok := rec.Int(idField)
		if !ok {
			continue
		}
		rows = append(rows, []any{id, rec.TrimStr(nameField), d.TimeParam(now), d.TimeParam(now)})
		ids[id] = struct{}{}
	}

	if err := bulkInsertChunked(ctx, run, table, columns, rows, insertChunkSize); err != nil {
		return err
	}
	run.Log.Infof("imported %d %s", len(rows), table)
	return nil
}

func importCompanies(ctx context.Context, run *Run) error {
	return importNamedSet(ctx, run, "Entreprises", "companies", "IDentreprise", "Entreprise", run.CompanyIDs)
}

func importClients(ctx context.Context, run *Run) error {
	return importNamedSet(ctx, run, "Mandants", "clients", "IDmandant", "Mandant", run.ClientIDs)
}

func importEngineers(ctx context.Context, run *Run) error {
	return importNamedSet(ctx, run, "Ingénieurs", "engineers", "IDingénieur", "Ingénieur", run.EngineerIDs)
}
