package store

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresDialect implements Dialect for PostgreSQL via pgx/stdlib.
type PostgresDialect struct{}

func (d *PostgresDialect) Name() string       { return "postgres" }
func (d *PostgresDialect) DriverName() string { return "pgx" }

func (d *PostgresDialect) NewParamBuilder() ParamBuilder {
	return &pgParamBuilder{}
}

func (d *PostgresDialect) AutoIncrementPK() string {
	return "INTEGER GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY"
}

func (d *PostgresDialect) ColumnType(colType string) string {
	switch colType {
	case "text":
		return "TEXT"
	case "int":
		return "INTEGER"
	case "float":
		return "DOUBLE PRECISION"
	case "bool":
		return "BOOLEAN"
	case "timestamp":
		return "TIMESTAMPTZ"
	case "json":
		return "JSONB"
	default:
		return "TEXT"
	}
}

func (d *PostgresDialect) TimeParam(t time.Time) any { return t }

func (d *PostgresDialect) NullTimeParam(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func (d *PostgresDialect) BoolParam(b bool) any { return b }

func (d *PostgresDialect) MapError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 23505 = unique_violation
		if pgErr.Code == "23505" {
			return ErrUniqueViolation
		}
	}
	return err
}
