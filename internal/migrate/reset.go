package migrate

import (
	"context"
	"database/sql"
	"fmt"
)

// resetOrder empties the target, most-dependent tables first so foreign key
// constraints never block a delete.
var resetOrder = []string{
	"invoice_rates",
	"invoice_offers",
	"invoice_adjudications",
	"invoice_situations",
	"invoice_documents",
	"invoices",
	"activities",
	"project_users",
	"project_project_types",
	"projects",
	"activity_types",
	"rate_classes",
	"engineers",
	"project_types",
	"clients",
	"companies",
	"locations",
	"workloads",
	"users",
	"vat_rates",
	"monthly_hours",
}

func resetTarget(ctx context.Context, run *Run) error {
	return run.Store.WithTx(ctx, func(tx *sql.Tx) error {
		for _, table := range resetOrder {
			if _, err := run.Store.DeleteAll(ctx, tx, table); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return nil
	})
}

// chunked calls fn for each slice of at most size rows.
func chunked(rows [][]any, size int, fn func(chunk [][]any) error) error {
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		if err := fn(rows[start:end]); err != nil {
			return err
		}
	}
	return nil
}

// bulkInsertChunked inserts rows in chunks, each chunk in its own
// transaction.
func bulkInsertChunked(ctx context.Context, run *Run, table string, columns []string, rows [][]any, size int) error {
	return chunked(rows, size, func(chunk [][]any) error {
		return run.Store.WithTx(ctx, func(tx *sql.Tx) error {
			return run.Store.BulkInsert(ctx, tx, table, columns, chunk)
		})
	})
}
