package store

import (
	"strings"
	"time"
)

// SQLiteDialect implements Dialect for SQLite via modernc.org/sqlite.
type SQLiteDialect struct{}

func (d *SQLiteDialect) Name() string       { return "sqlite" }
func (d *SQLiteDialect) DriverName() string { return "sqlite" }

func (d *SQLiteDialect) NewParamBuilder() ParamBuilder {
	return &sqliteParamBuilder{}
}

func (d *SQLiteDialect) AutoIncrementPK() string {
	return "INTEGER PRIMARY KEY AUTOINCREMENT"
}

func (d *SQLiteDialect) ColumnType(colType string) string {
	switch colType {
	case "text":
		return "TEXT"
	case "int":
		return "INTEGER"
	case "float":
		return "REAL"
	case "bool":
		return "INTEGER"
	case "timestamp":
		return "TEXT"
	case "json":
		return "TEXT"
	default:
		return "TEXT"
	}
}

func (d *SQLiteDialect) TimeParam(t time.Time) any {
	return t.UTC().Format("2006-01-02 15:04:05")
}

func (d *SQLiteDialect) NullTimeParam(t *time.Time) any {
	if t == nil {
		return nil
	}
	return d.TimeParam(*t)
}

func (d *SQLiteDialect) BoolParam(b bool) any {
	if b {
		return 1
	}
	return 0
}

func (d *SQLiteDialect) MapError(err error) error {
	if err == nil {
		return nil
	}
	// modernc.org/sqlite surfaces constraint failures in the error text
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrUniqueViolation
	}
	return err
}
