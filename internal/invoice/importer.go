package invoice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"beg-migrate/internal/fab"
	"beg-migrate/internal/legacy"
	"beg-migrate/internal/store"
)

// Importer loads legacy .fab invoice documents into the relational model.
// Re-importing a document replaces its previous rows, so the importer can be
// re-run over the share at any time.
type Importer struct {
	Store  *store.Store
	Files  *FileMigrator
	Layout fab.GridLayout
	log    *logrus.Entry
}

func NewImporter(st *store.Store, files *FileMigrator) *Importer {
	return &Importer{
		Store:  st,
		Files:  files,
		Layout: fab.DefaultGridLayout,
		log:    logrus.WithField("component", "invoice-import"),
	}
}

// ImportAll walks the share for .fab files and imports each one. A failed
// document is logged and counted; it never stops the walk.
func (imp *Importer) ImportAll(ctx context.Context, root string) (imported, failed int, err error) {
	imp.log.Infof("searching for .fab files in %s", root)

	var fabFiles []string
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			imp.log.WithError(err).Warnf("cannot read %s", path)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(d.Name()), ".fab") {
			imp.log.Infof("found .fab file: %s", path)
			fabFiles = append(fabFiles, path)
		}
		return nil
	})
	if walkErr != nil {
		return 0, 0, fmt.Errorf("walk %s: %w", root, walkErr)
	}
	imp.log.Infof("found %d .fab files", len(fabFiles))

	for _, path := range fabFiles {
		if err := imp.ImportDocument(ctx, path); err != nil {
			imp.log.WithError(err).Errorf("error importing %s", path)
			failed++
		} else {
			imported++
		}
	}

	imp.log.Infof("invoice import complete: %d imported, %d failed", imported, failed)
	return imported, failed, nil
}

// parseProjectCode splits a billing code like "7011 INF" into the project
// number and an optional sub-project name.
func parseProjectCode(code string) (projectNumber, subProjectName string) {
	trimmed := strings.TrimSpace(code)
	number, sub, found := strings.Cut(trimmed, " ")
	if !found {
		return trimmed, ""
	}
	return number, strings.TrimSpace(sub)
}

// resolveProject finds the project a document belongs to. Without a
// sub-project name, a bare project number prefers the row that has no
// sub-project over arbitrary sub-project rows.
func (imp *Importer) resolveProject(ctx context.Context, projectNumber, subProjectName string) (int64, error) {
	d := imp.Store.Dialect

	if subProjectName != "" {
		pb := d.NewParamBuilder()
		row, err := store.QueryRow(ctx, imp.Store.DB, fmt.Sprintf(
			`SELECT id FROM projects WHERE "projectNumber" = %s AND "subProjectName" = %s LIMIT 1`,
			pb.Add(projectNumber), pb.Add(subProjectName)), pb.Params()...)
		if errors.Is(err, store.ErrNotFound) {
			return 0, fmt.Errorf("project %s/%s not found", projectNumber, subProjectName)
		}
		if err != nil {
			return 0, err
		}
		return asID(row["id"]), nil
	}

	pb := d.NewParamBuilder()
	rows, err := store.QueryRows(ctx, imp.Store.DB, fmt.Sprintf(
		`SELECT id, "subProjectName" FROM projects WHERE "projectNumber" = %s`,
		pb.Add(projectNumber)), pb.Params()...)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("project %s not found", projectNumber)
	}

	for _, row := range rows {
		if sub, _ := row["subProjectName"].(string); sub == "" {
			return asID(row["id"]), nil
		}
	}
	return asID(rows[0]["id"]), nil
}

// userIDByInitials returns the user id for a set of initials, or nil when
// nobody matches.
func (imp *Importer) userIDByInitials(ctx context.Context, initials string) (any, error) {
	if strings.TrimSpace(initials) == "" {
		return nil, nil
	}

	pb := imp.Store.Dialect.NewParamBuilder()
	row, err := store.QueryRow(ctx, imp.Store.DB, fmt.Sprintf(
		`SELECT id FROM users WHERE "initials" = %s LIMIT 1`, pb.Add(initials)), pb.Params()...)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row["id"], nil
}

var invoiceColumns = []string{
	"projectId", "invoiceNumber", "reference", "type", "billingMode", "status",
	"issueDate", "dueDate", "periodStart", "periodEnd", "period",
	"clientAddress", "recipientAddress", "description", "note", "otherServices",
	"visaByUserId", "visaDate", "inChargeUserId", "legacyInvoicePath",
	"feesBase", "feesAdjusted", "feesTotal", "feesOthers", "feesFinalTotal",
	"feesMultiplicationFactor", "feesDiscountPercentage", "feesDiscountAmount",
	"expensesTravelBase", "expensesTravelAdjusted", "expensesTravelRate", "expensesTravelAmount",
	"expensesOtherBase", "expensesOtherAmount", "expensesThirdPartyAmount",
	"expensesPackagePercentage", "expensesPackageAmount", "expensesTotalExpenses",
	"totalHT", "vatRate", "vatAmount", "totalTTC",
	"createdAt", "updatedAt",
}

// ImportDocument imports one .fab file. Any failure, including a panic from
// unexpectedly malformed content, is contained to this one document.
func (imp *Importer) ImportDocument(ctx context.Context, fabPath string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("document processing panicked: %v", r)
		}
	}()

	raw, err := os.ReadFile(fabPath)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}
	doc, err := fab.Decode(raw)
	if err != nil {
		return err
	}

	rawCode := doc.Datas["pnlCode"]
	if rawCode == "" {
		rawCode = doc.Internal["Code"]
	}
	if rawCode == "" {
		return errors.New("no billing code in document")
	}

	projectNumber, subProjectName := parseProjectCode(rawCode)
	projectID, err := imp.resolveProject(ctx, projectNumber, subProjectName)
	if err != nil {
		return err
	}

	invoiceNumber := filepath.Base(fabPath)
	if ext := filepath.Ext(invoiceNumber); strings.EqualFold(ext, ".fab") {
		invoiceNumber = strings.TrimSuffix(invoiceNumber, ext)
	}

	d := imp.Store.Dialect
	now := time.Now().UTC()

	periodStart := orNow(legacy.ParseDocDate(doc.Internal["De"]))
	periodEnd := orNow(legacy.ParseDocDate(doc.Internal["A"]))
	visaDate := legacy.ParseDocDate(doc.Datas["edtVisaDate"])
	issueDate := legacy.ParseDocDate(doc.Datas["edtLast"])
	if issueDate == nil {
		issueDate = visaDate
	}

	period := doc.Datas["edtPériode"]
	if period == "" {
		period = doc.Datas["edtPeriode"]
	}

	totals := doc.ExtractTotals(imp.Layout)

	visaByUserID, err := imp.userIDByInitials(ctx, fab.VisaUserInitials[doc.Datas["edtVisa"]])
	if err != nil {
		return err
	}
	inChargeUserID, err := imp.userIDByInitials(ctx,
		strings.ToLower(strings.TrimSpace(doc.Datas["edtResponsable"])))
	if err != nil {
		return err
	}

	return imp.Store.WithTx(ctx, func(tx *sql.Tx) error {
		// Replace mode: a previous import of the same document goes away,
		// child rows with it.
		pb := d.NewParamBuilder()
		existing, err := store.QueryRow(ctx, tx, fmt.Sprintf(
			`SELECT id FROM invoices WHERE "projectId" = %s AND "invoiceNumber" = %s LIMIT 1`,
			pb.Add(projectID), pb.Add(invoiceNumber)), pb.Params()...)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if err == nil {
			imp.log.Infof("replacing existing invoice %s for project %d", invoiceNumber, projectID)
			pb = d.NewParamBuilder()
			if _, err := store.Exec(ctx, tx,
				"DELETE FROM invoices WHERE id = "+pb.Add(existing["id"]), pb.Params()...); err != nil {
				return err
			}
		}

		invoiceID, err := imp.Store.InsertReturningID(ctx, tx, "invoices", invoiceColumns, []any{
			projectID,
			invoiceNumber,
			doc.Datas["edtObjet"],
			fab.DocumentType(doc.Datas["edtType"]),
			fab.BillingMode(doc.Datas["edtMode"]),
			fab.InvoiceStatus(doc.Datas["edtVisa"], doc.Datas["edtBon"]),
			d.TimeParam(orNow(issueDate)),
			nil,
			d.TimeParam(periodStart),
			d.TimeParam(periodEnd),
			period,
			doc.Multiline("edtAdresse"),
			doc.Multiline("edtEnvoi"),
			doc.Multiline("edtPrestations"),
			doc.Multiline("edtComment"),
			"",
			visaByUserID,
			d.NullTimeParam(visaDate),
			inChargeUserID,
			imp.Files.RelativePath(fabPath),
			totals.FeesBase,
			totals.FeesAdjusted,
			totals.FeesTotal,
			totals.FeesOthers,
			totals.FeesFinalTotal,
			1.0,
			nullableFloat(totals.FeesDiscountPercentage),
			nullableFloat(totals.FeesDiscountAmount),
			totals.ExpensesTravelBase,
			totals.ExpensesTravelAdjusted,
			totals.ExpensesTravelRate,
			totals.ExpensesTravelAmount,
			totals.ExpensesOtherBase,
			totals.ExpensesOtherAmount,
			totals.ExpensesThirdPartyAmount,
			totals.ExpensesPackagePercentage,
			totals.ExpensesPackageAmount,
			totals.ExpensesTotalExpenses,
			totals.TotalHT,
			totals.VATRate,
			totals.VATAmount,
			totals.TotalTTC,
			d.TimeParam(now),
			d.TimeParam(now),
		})
		if err != nil {
			return err
		}

		if err := imp.insertRateLines(ctx, tx, invoiceID, doc.RateLines()); err != nil {
			return err
		}

		// All attachments of one invoice share a storage folder.
		folderID := uuid.NewString()
		for _, grid := range []struct {
			prefix    string
			table     string
			hasAmount bool
		}{
			{"grdOffres", "invoice_offers", true},
			{"grdAdjudications", "invoice_adjudications", true},
			{"grdSituations", "invoice_situations", true},
			{"grdDocuments", "invoice_documents", false},
		} {
			files := doc.AttachedFiles(grid.prefix, grid.hasAmount)
			if err := imp.insertAttachments(ctx, tx, invoiceID, folderID, grid.table, grid.hasAmount, files); err != nil {
				return err
			}
		}

		imp.log.Infof("imported invoice %s for project %d", invoiceNumber, projectID)
		return nil
	})
}

var rateLineColumns = []string{
	"invoiceId", "rateClass", "baseMinutes", "adjustedMinutes", "hourlyRate", "amount",
	"createdAt", "updatedAt",
}

func (imp *Importer) insertRateLines(ctx context.Context, tx *sql.Tx, invoiceID int64, lines []fab.RateLine) error {
	if len(lines) == 0 {
		return nil
	}

	d := imp.Store.Dialect
	now := time.Now().UTC()
	rows := make([][]any, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, []any{
			invoiceID,
			line.Class,
			int64(math.Round(line.BaseHours * 60)),
			int64(math.Round(line.AdjustedHours * 60)),
			int64(math.Round(line.HourlyRate)),
			int64(math.Round(line.Amount)),
			d.TimeParam(now),
			d.TimeParam(now),
		})
	}
	return imp.Store.BulkInsert(ctx, tx, "invoice_rates", rateLineColumns, rows)
}

// insertAttachments migrates each attachment's file into managed storage and
// links it to the invoice. Attachments whose source file cannot be found on
// the share are dropped; the invoice itself still imports.
func (imp *Importer) insertAttachments(ctx context.Context, tx *sql.Tx, invoiceID int64, folderID, table string, hasAmount bool, files []fab.AttachedFile) error {
	d := imp.Store.Dialect
	now := time.Now().UTC()

	var rows [][]any
	for _, file := range files {
		logicalPath, err := imp.Files.Migrate(ctx, file.LegacyPath, folderID)
		if err != nil {
			return fmt.Errorf("migrate attachment %s: %w", file.Filename, err)
		}
		if logicalPath == "" {
			continue
		}

		row := []any{invoiceID, logicalPath, d.TimeParam(orNow(file.Date))}
		if hasAmount {
			row = append(row, int64(math.Round(file.Amount)))
		}
		row = append(row, file.Remark, d.TimeParam(now), d.TimeParam(now))
		rows = append(rows, row)
	}

	columns := []string{"invoiceId", "file", "date"}
	if hasAmount {
		columns = append(columns, "amount")
	}
	columns = append(columns, "remark", "createdAt", "updatedAt")

	return imp.Store.BulkInsert(ctx, tx, table, columns, rows)
}

func orNow(t *time.Time) time.Time {
	if t != nil {
		return *t
	}
	return time.Now().UTC()
}

func nullableFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func asID(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case float64:
		return int64(n)
	default:
		return 0
	}
}
