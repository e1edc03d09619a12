package invoice_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"beg-migrate/internal/config"
	"beg-migrate/internal/invoice"
	"beg-migrate/internal/storage"
	"beg-migrate/internal/store"
)

func testStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(context.Background(), config.DatabaseConfig{
		Driver: "sqlite",
		Path:   t.TempDir(),
		Name:   "test",
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(s.Close)

	if err := s.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return s
}

// seedProjects creates the users and projects the documents reference:
// project 100 is the bare "7011", project 101 its "INF" sub-project.
func seedProjects(t *testing.T, s *store.Store) {
	t.Helper()
	ctx := context.Background()
	d := s.Dialect
	now := d.TimeParam(time.Now().UTC())

	for _, u := range []struct {
		id       int64
		initials string
	}{{1, "fp"}, {2, "js"}, {3, "mo"}} {
		_, err := s.InsertReturningID(ctx, s.DB, "users",
			[]string{"id", "email", "lastName", "firstName", "initials", "archived", "password", "role", "createdAt", "updatedAt"},
			[]any{u.id, u.initials + "@beg-geol.ch", "X", "Y", u.initials, d.BoolParam(false), "$2a$10$x", "user", now, now})
		if err != nil {
			t.Fatalf("seed user %s: %v", u.initials, err)
		}
	}

	for _, p := range []struct {
		id  int64
		sub any
	}{{100, nil}, {101, "INF"}} {
		_, err := s.InsertReturningID(ctx, s.DB, "projects",
			[]string{"id", "projectNumber", "subProjectName", "name", "startDate", "status", "createdAt", "updatedAt"},
			[]any{p.id, "7011", p.sub, "Glissement", now, "active", now, now})
		if err != nil {
			t.Fatalf("seed project %d: %v", p.id, err)
		}
	}
}

const docTemplate = `[INTERNAL]
Code=CODE
De=01.01.24
A=31.03.24
[DATAS]
pnlCode=CODE
edtObjet=Etude de terrain
edtType=1
edtMode=0
edtVisa=0
edtBon=1
edtVisaDate=15.04.24
edtLast=20.04.24
edtResponsable=JS
edtAdressecount=1
edtAdresse0=Commune de Sion
grdFacture2.0=A
grdFacture2.1=10.00
grdFacture2.2=9.50
grdFacture2.3=185.00
grdFacture2.4=1'757.50
grdFacture3.0=Total h.
grdFacture8.1=1'757.50
grdFacture8.4=1'757.50
grdFacture24.4=1'893.00
grdFacture25.3=8.10
grdFacture25.4=153.30
grdFacture26.4=2'046.30
grdOffresRowCount=3
grdOffres1.0=offre.pdf
grdOffres1.1=05.01.24
grdOffres1.2=4'590.00
grdOffres1.3=Offre initiale
grdOffres1.4=N:\Mandats\7011\offre.pdf
grdOffres2.0=missing.pdf
grdOffres2.1=06.01.24
grdOffres2.2=100.00
grdOffres2.3=
grdOffres2.4=N:\Mandats\7011\does-not-exist.pdf
[CHECK]
Sum=1
`

// writeShare lays out a fake mounted project share with one document per
// given code, plus the offer PDF the documents reference.
func writeShare(t *testing.T, codes map[string]string) string {
	t.Helper()
	share := t.TempDir()
	dir := filepath.Join(share, "7011")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "offre.pdf"), []byte("%PDF-1.4"), 0644); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	for name, code := range codes {
		content := strings.ReplaceAll(docTemplate, "CODE", code)
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return share
}

func newImporter(t *testing.T, s *store.Store, share string) *invoice.Importer {
	t.Helper()
	files := invoice.NewFileMigrator(storage.NewLocalStorage(t.TempDir()), share, `N:\Mandats\`)
	return invoice.NewImporter(s, files)
}

func queryOne(t *testing.T, s *store.Store, sqlStr string, args ...any) map[string]any {
	t.Helper()
	row, err := store.QueryRow(context.Background(), s.DB, sqlStr, args...)
	if err != nil {
		t.Fatalf("query %q: %v", sqlStr, err)
	}
	return row
}

func count(t *testing.T, s *store.Store, table string) int64 {
	t.Helper()
	row := queryOne(t, s, "SELECT COUNT(*) AS n FROM "+table)
	n, _ := row["n"].(int64)
	return n
}

func TestImportDocument(t *testing.T) {
	s := testStore(t)
	seedProjects(t, s)
	share := writeShare(t, map[string]string{"facture 2024-01.fab": "7011 INF"})
	imp := newImporter(t, s, share)

	fabPath := filepath.Join(share, "7011", "facture 2024-01.fab")
	if err := imp.ImportDocument(context.Background(), fabPath); err != nil {
		t.Fatalf("import: %v", err)
	}

	inv := queryOne(t, s, "SELECT * FROM invoices")
	if id, _ := inv["projectId"].(int64); id != 101 {
		t.Fatalf("projectId = %v, want the INF sub-project", inv["projectId"])
	}
	if inv["invoiceNumber"] != "facture 2024-01" {
		t.Fatalf("invoiceNumber = %v", inv["invoiceNumber"])
	}
	if inv["type"] != "final_invoice" || inv["billingMode"] != "accordingToData" {
		t.Fatalf("type/mode: %v / %v", inv["type"], inv["billingMode"])
	}
	// Approved with a known visa index: sent, visa'd by fp, in charge js.
	if inv["status"] != "sent" {
		t.Fatalf("status = %v", inv["status"])
	}
	if id, _ := inv["visaByUserId"].(int64); id != 1 {
		t.Fatalf("visaByUserId = %v", inv["visaByUserId"])
	}
	if id, _ := inv["inChargeUserId"].(int64); id != 2 {
		t.Fatalf("inChargeUserId = %v", inv["inChargeUserId"])
	}
	if issue, ok := inv["issueDate"].(time.Time); !ok ||
		!issue.Equal(time.Date(2024, 4, 20, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("issueDate = %v", inv["issueDate"])
	}
	if got, _ := inv["totalTTC"].(float64); got != 2046.30 {
		t.Fatalf("totalTTC = %v", inv["totalTTC"])
	}
	if got, _ := inv["vatRate"].(float64); got != 8.1 {
		t.Fatalf("vatRate = %v", inv["vatRate"])
	}
	if inv["legacyInvoicePath"] != "7011/facture 2024-01.fab" {
		t.Fatalf("legacyInvoicePath = %v", inv["legacyInvoicePath"])
	}

	// Hours arrive in minutes, money rounded to whole francs.
	rate := queryOne(t, s, "SELECT * FROM invoice_rates")
	if rate["rateClass"] != "A" {
		t.Fatalf("rateClass = %v", rate["rateClass"])
	}
	if m, _ := rate["baseMinutes"].(int64); m != 600 {
		t.Fatalf("baseMinutes = %v", rate["baseMinutes"])
	}
	if m, _ := rate["adjustedMinutes"].(int64); m != 570 {
		t.Fatalf("adjustedMinutes = %v", rate["adjustedMinutes"])
	}
	if a, _ := rate["amount"].(int64); a != 1758 {
		t.Fatalf("amount = %v", rate["amount"])
	}

	// One offer resolved and migrated; the one with a missing source file
	// is dropped without failing the invoice.
	if n := count(t, s, "invoice_offers"); n != 1 {
		t.Fatalf("invoice_offers = %d, want 1", n)
	}
	offer := queryOne(t, s, "SELECT * FROM invoice_offers")
	if file, _ := offer["file"].(string); !strings.HasPrefix(file, "files/invoice/") ||
		!strings.HasSuffix(file, "/offre.pdf") {
		t.Fatalf("offer file = %v", offer["file"])
	}
	if a, _ := offer["amount"].(int64); a != 4590 {
		t.Fatalf("offer amount = %v", offer["amount"])
	}
}

func TestImportDocument_ReplacesExisting(t *testing.T) {
	s := testStore(t)
	seedProjects(t, s)
	share := writeShare(t, map[string]string{"facture 2024-01.fab": "7011 INF"})
	imp := newImporter(t, s, share)
	fabPath := filepath.Join(share, "7011", "facture 2024-01.fab")

	for i := 0; i < 2; i++ {
		if err := imp.ImportDocument(context.Background(), fabPath); err != nil {
			t.Fatalf("import %d: %v", i+1, err)
		}
	}

	if n := count(t, s, "invoices"); n != 1 {
		t.Fatalf("invoices = %d, want 1", n)
	}
	// Children of the replaced invoice must not pile up.
	if n := count(t, s, "invoice_rates"); n != 1 {
		t.Fatalf("invoice_rates = %d, want 1", n)
	}
	if n := count(t, s, "invoice_offers"); n != 1 {
		t.Fatalf("invoice_offers = %d, want 1", n)
	}
}

func TestImportDocument_BareNumberPrefersMainProject(t *testing.T) {
	s := testStore(t)
	seedProjects(t, s)
	share := writeShare(t, map[string]string{"facture 2024-02.fab": "7011"})
	imp := newImporter(t, s, share)

	fabPath := filepath.Join(share, "7011", "facture 2024-02.fab")
	if err := imp.ImportDocument(context.Background(), fabPath); err != nil {
		t.Fatalf("import: %v", err)
	}

	inv := queryOne(t, s, "SELECT \"projectId\" FROM invoices")
	if id, _ := inv["projectId"].(int64); id != 100 {
		t.Fatalf("projectId = %v, want the main project", inv["projectId"])
	}
}

func TestImportAll_ContainsFailures(t *testing.T) {
	s := testStore(t)
	seedProjects(t, s)
	share := writeShare(t, map[string]string{
		"good.fab":    "7011 INF",
		"unknown.fab": "9999",
	})
	imp := newImporter(t, s, share)

	imported, failed, err := imp.ImportAll(context.Background(), share)
	if err != nil {
		t.Fatalf("import all: %v", err)
	}
	if imported != 1 || failed != 1 {
		t.Fatalf("imported=%d failed=%d, want 1/1", imported, failed)
	}
	if n := count(t, s, "invoices"); n != 1 {
		t.Fatalf("invoices = %d, want 1", n)
	}
}
