package store

import (
	"context"
	"fmt"
	"strings"
)

// column is one DDL column: logical type plus extra constraint text.
type column struct {
	name string
	typ  string
	cons string
}

// table is one target table. Every table gets an auto-increment integer id
// that still accepts explicit values, so legacy identifiers survive the load.
type table struct {
	name string
	cols []column
}

// targetTables mirrors the application's relational model. Order matters:
// referenced tables come first.
var targetTables = []table{
	{"users", []column{
		{"email", "text", "NOT NULL UNIQUE"},
		{"lastName", "text", "NOT NULL"},
		{"firstName", "text", "NOT NULL"},
		{"initials", "text", "NOT NULL"},
		{"archived", "bool", "NOT NULL"},
		{"password", "text", "NOT NULL"},
		{"role", "text", "NOT NULL"},
		{"activityRates", "json", ""},
		{"createdAt", "timestamp", ""},
		{"updatedAt", "timestamp", ""},
	}},
	{"locations", []column{
		{"name", "text", "NOT NULL"},
		{"country", "text", ""},
		{"canton", "text", ""},
		{"region", "text", ""},
		{"address", "text", ""},
		{"createdAt", "timestamp", ""},
		{"updatedAt", "timestamp", ""},
	}},
	{"companies", []column{
		{"name", "text", "NOT NULL"},
		{"createdAt", "timestamp", ""},
		{"updatedAt", "timestamp", ""},
	}},
	{"clients", []column{
		{"name", "text", "NOT NULL"},
		{"createdAt", "timestamp", ""},
		{"updatedAt", "timestamp", ""},
	}},
	{"project_types", []column{
		{"name", "text", "NOT NULL"},
		{"createdAt", "timestamp", ""},
		{"updatedAt", "timestamp", ""},
	}},
	{"engineers", []column{
		{"name", "text", "NOT NULL"},
		{"createdAt", "timestamp", ""},
		{"updatedAt", "timestamp", ""},
	}},
	{"monthly_hours", []column{
		{"year", "int", "NOT NULL"},
		{"month", "int", "NOT NULL"},
		{"amountOfHours", "float", "NOT NULL"},
		{"createdAt", "timestamp", ""},
		{"updatedAt", "timestamp", ""},
	}},
	{"rate_classes", []column{
		{"class", "text", "NOT NULL"},
		{"year", "int", "NOT NULL"},
		{"amount", "float", "NOT NULL"},
	}},
	{"projects", []column{
		{"projectNumber", "text", ""},
		{"subProjectName", "text", ""},
		{"name", "text", "NOT NULL"},
		{"startDate", "timestamp", "NOT NULL"},
		{"locationId", "int", "REFERENCES locations(id) ON DELETE SET NULL"},
		{"clientId", "int", "REFERENCES clients(id) ON DELETE SET NULL"},
		{"engineerId", "int", "REFERENCES engineers(id) ON DELETE SET NULL"},
		{"companyId", "int", "REFERENCES companies(id) ON DELETE SET NULL"},
		{"remark", "text", ""},
		{"invoicingAddress", "text", ""},
		{"latitude", "float", ""},
		{"longitude", "float", ""},
		{"firstActivityDate", "timestamp", ""},
		{"lastActivityDate", "timestamp", ""},
		{"totalDuration", "float", ""},
		{"unBilledDuration", "float", ""},
		{"unBilledDisbursementDuration", "float", ""},
		{"offerAmount", "float", ""},
		{"status", "text", "NOT NULL"},
		{"ended", "bool", ""},
		{"archived", "bool", ""},
		{"createdAt", "timestamp", ""},
		{"updatedAt", "timestamp", ""},
	}},
	{"project_users", []column{
		{"projectId", "int", "NOT NULL REFERENCES projects(id) ON DELETE CASCADE"},
		{"userId", "int", "NOT NULL REFERENCES users(id) ON DELETE CASCADE"},
		{"role", "text", "NOT NULL"},
		{"createdAt", "timestamp", ""},
		{"updatedAt", "timestamp", ""},
	}},
	{"project_project_types", []column{
		{"projectId", "int", "NOT NULL REFERENCES projects(id) ON DELETE CASCADE"},
		{"projectTypeId", "int", "NOT NULL REFERENCES project_types(id) ON DELETE CASCADE"},
		{"createdAt", "timestamp", ""},
		{"updatedAt", "timestamp", ""},
	}},
	{"activity_types", []column{
		{"name", "text", "NOT NULL"},
		{"code", "text", "NOT NULL"},
		{"billable", "bool", "NOT NULL"},
		{"adminOnly", "bool", ""},
		{"createdAt", "timestamp", ""},
		{"updatedAt", "timestamp", ""},
	}},
	{"invoices", []column{
		{"projectId", "int", "NOT NULL REFERENCES projects(id)"},
		{"invoiceNumber", "text", ""},
		{"reference", "text", ""},
		{"type", "text", "NOT NULL"},
		{"billingMode", "text", "NOT NULL"},
		{"status", "text", "NOT NULL"},
		{"issueDate", "timestamp", "NOT NULL"},
		{"dueDate", "timestamp", ""},
		{"periodStart", "timestamp", "NOT NULL"},
		{"periodEnd", "timestamp", "NOT NULL"},
		{"period", "text", ""},
		{"clientAddress", "text", ""},
		{"recipientAddress", "text", ""},
		{"description", "text", ""},
		{"note", "text", ""},
		{"invoiceDocument", "text", ""},
		{"visaByUserId", "int", "REFERENCES users(id) ON DELETE SET NULL"},
		{"visaBy", "text", ""},
		{"visaDate", "timestamp", ""},
		{"inChargeUserId", "int", "REFERENCES users(id) ON DELETE SET NULL"},
		{"legacyInvoicePath", "text", ""},
		{"feesBase", "float", ""},
		{"feesAdjusted", "float", ""},
		{"feesTotal", "float", ""},
		{"feesOthers", "float", ""},
		{"feesFinalTotal", "float", ""},
		{"feesMultiplicationFactor", "float", ""},
		{"feesDiscountPercentage", "float", ""},
		{"feesDiscountAmount", "float", ""},
		{"expensesTravelBase", "float", ""},
		{"expensesTravelAdjusted", "float", ""},
		{"expensesTravelRate", "float", ""},
		{"expensesTravelAmount", "float", ""},
		{"expensesOtherBase", "float", ""},
		{"expensesOtherAmount", "float", ""},
		{"expensesThirdPartyAmount", "float", ""},
		{"expensesPackagePercentage", "float", ""},
		{"expensesPackageAmount", "float", ""},
		{"expensesTotalExpenses", "float", ""},
		{"totalHT", "float", ""},
		{"vatRate", "float", ""},
		{"vatAmount", "float", ""},
		{"totalTTC", "float", ""},
		{"otherServices", "text", ""},
		{"createdAt", "timestamp", ""},
		{"updatedAt", "timestamp", ""},
	}},
	{"activities", []column{
		{"userId", "int", "NOT NULL REFERENCES users(id)"},
		{"date", "timestamp", "NOT NULL"},
		{"duration", "float", "NOT NULL"},
		{"kilometers", "float", "NOT NULL"},
		{"expenses", "float", "NOT NULL"},
		{"rate", "float", "NOT NULL"},
		{"projectId", "int", "NOT NULL REFERENCES projects(id)"},
		{"activityTypeId", "int", "NOT NULL REFERENCES activity_types(id)"},
		{"description", "text", ""},
		{"billed", "bool", "NOT NULL"},
		{"invoiceId", "int", "REFERENCES invoices(id) ON DELETE SET NULL"},
		{"disbursement", "bool", "NOT NULL"},
		{"rateClass", "text", ""},
		{"createdAt", "timestamp", ""},
		{"updatedAt", "timestamp", ""},
	}},
	{"invoice_rates", []column{
		{"invoiceId", "int", "NOT NULL REFERENCES invoices(id) ON DELETE CASCADE"},
		{"rateClass", "text", "NOT NULL"},
		{"baseMinutes", "int", ""},
		{"adjustedMinutes", "int", ""},
		{"hourlyRate", "int", ""},
		{"amount", "int", ""},
		{"createdAt", "timestamp", ""},
		{"updatedAt", "timestamp", ""},
	}},
	{"invoice_offers", []column{
		{"invoiceId", "int", "NOT NULL REFERENCES invoices(id) ON DELETE CASCADE"},
		{"file", "text", ""},
		{"date", "timestamp", "NOT NULL"},
		{"amount", "int", ""},
		{"remark", "text", ""},
		{"createdAt", "timestamp", ""},
		{"updatedAt", "timestamp", ""},
	}},
	{"invoice_adjudications", []column{
		{"invoiceId", "int", "NOT NULL REFERENCES invoices(id) ON DELETE CASCADE"},
		{"file", "text", ""},
		{"date", "timestamp", "NOT NULL"},
		{"amount", "int", ""},
		{"remark", "text", ""},
		{"createdAt", "timestamp", ""},
		{"updatedAt", "timestamp", ""},
	}},
	{"invoice_situations", []column{
		{"invoiceId", "int", "NOT NULL REFERENCES invoices(id) ON DELETE CASCADE"},
		{"file", "text", ""},
		{"date", "timestamp", "NOT NULL"},
		{"amount", "int", ""},
		{"remark", "text", ""},
		{"createdAt", "timestamp", ""},
		{"updatedAt", "timestamp", ""},
	}},
	{"invoice_documents", []column{
		{"invoiceId", "int", "NOT NULL REFERENCES invoices(id) ON DELETE CASCADE"},
		{"file", "text", ""},
		{"date", "timestamp", "NOT NULL"},
		{"remark", "text", ""},
		{"createdAt", "timestamp", ""},
		{"updatedAt", "timestamp", ""},
	}},
	{"vat_rates", []column{
		{"year", "int", "NOT NULL"},
		{"rate", "float", "NOT NULL"},
		{"createdAt", "timestamp", ""},
		{"updatedAt", "timestamp", ""},
	}},
	{"workloads", []column{
		{"userId", "int", "NOT NULL REFERENCES users(id) ON DELETE CASCADE"},
		{"year", "int", "NOT NULL"},
		{"month", "int", "NOT NULL"},
		{"workload", "int", "NOT NULL"},
		{"createdAt", "timestamp", ""},
		{"updatedAt", "timestamp", ""},
	}},
}

// EnsureSchema creates every target table if it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, t := range targetTables {
		if _, err := s.DB.ExecContext(ctx, s.createTableSQL(t)); err != nil {
			return fmt.Errorf("create table %s: %w", t.name, err)
		}
	}
	return nil
}

func (s *Store) createTableSQL(t table) string {
	cols := make([]string, 0, len(t.cols)+1)
	cols = append(cols, "id "+s.Dialect.AutoIncrementPK())
	for _, c := range t.cols {
		def := fmt.Sprintf("%q %s", c.name, s.Dialect.ColumnType(c.typ))
		if c.cons != "" {
			def += " " + c.cons
		}
		cols = append(cols, def)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n)", t.name, strings.Join(cols, ",\n  "))
}

// TableNames returns every target table, dependency order (referenced first).
func TableNames() []string {
	names := make([]string, len(targetTables))
	for i, t := range targetTables {
		names[i] = t.name
	}
	return names
}
