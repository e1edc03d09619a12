package fab

import (
	"testing"
	"time"
)

const sampleDoc = `[INTERNAL]
Code=7011 INF
De=01.01.24
A=31.03.24
[DATAS]
pnlCode=7011 INF
edtObjet=Glissement de terrain
edtType=1
edtMode=0
edtVisa=0
edtBon=1
edtVisaDate=15.04.24
edtAdressecount=2
edtAdresse0=Commune de Sion
edtAdresse1=1950 Sion
grdFacture2.0=A
grdFacture2.1=10.00
grdFacture2.2=9.50
grdFacture2.3=185.00
grdFacture2.4=1'757.50
grdFacture3.0=B
grdFacture3.1=0.00
grdFacture3.2=0.00
grdFacture3.3=150.00
grdFacture3.4=0.00
grdFacture4.0=Total h.
grdFacture5.0=C
grdFacture5.4=999.00
grdFacture8.1=1'757.50
grdFacture8.4=1'757.50
grdFacture12.4=1'757.50
grdFacture16.3=0.00
grdFacture24.4=1'893.00
grdFacture25.3=8.10
grdFacture25.4=153.30
grdFacture26.4=2'046.30
grdOffresRowCount=3
grdOffres1.0=offre_7011.pdf
grdOffres1.1=05.01.24
grdOffres1.2=4'590.00
grdOffres1.3=Offre initiale
grdOffres1.4=N:\Mandats\7011\offre_7011.pdf
grdOffres2.0=2
[CHECK]
Sum=123456
`

func TestParse_Sections(t *testing.T) {
	doc := Parse(sampleDoc)

	if got := doc.Internal["Code"]; got != "7011 INF" {
		t.Fatalf("Internal Code = %q", got)
	}
	if got := doc.Datas["edtObjet"]; got != "Glissement de terrain" {
		t.Fatalf("edtObjet = %q", got)
	}
	// The checksum trailer is not data.
	if _, ok := doc.Datas["Sum"]; ok {
		t.Fatal("[CHECK] content leaked into Datas")
	}
	if _, ok := doc.Internal["Sum"]; ok {
		t.Fatal("[CHECK] content leaked into Internal")
	}
}

func TestParse_SplitsOnFirstEquals(t *testing.T) {
	doc := Parse("[DATAS]\nedtComment0=a=b=c\n")
	if got := doc.Datas["edtComment0"]; got != "a=b=c" {
		t.Fatalf("value = %q, want %q", got, "a=b=c")
	}
}

func TestDecode_Windows1252(t *testing.T) {
	// "Genève" with an 0xE8 byte for è, as the legacy tool writes it.
	raw := []byte("[DATAS]\r\nedtObjet=Gen\xe8ve\r\n")
	doc, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := doc.Datas["edtObjet"]; got != "Genève" {
		t.Fatalf("edtObjet = %q, want %q", got, "Genève")
	}
}

func TestMultiline(t *testing.T) {
	doc := Parse(sampleDoc)
	want := "Commune de Sion\n1950 Sion"
	if got := doc.Multiline("edtAdresse"); got != want {
		t.Fatalf("Multiline = %q, want %q", got, want)
	}
	if got := doc.Multiline("edtEnvoi"); got != "" {
		t.Fatalf("absent multiline = %q, want empty", got)
	}
}

func TestRateLines_StopsAtSentinel(t *testing.T) {
	doc := Parse(sampleDoc)
	lines := doc.RateLines()

	// Row 3 is all-zero and filtered; row 5 sits past "Total h." and must
	// never be read.
	if len(lines) != 1 {
		t.Fatalf("got %d rate lines, want 1: %+v", len(lines), lines)
	}
	l := lines[0]
	if l.Class != "A" || l.BaseHours != 10 || l.AdjustedHours != 9.5 || l.HourlyRate != 185 || l.Amount != 1757.50 {
		t.Fatalf("unexpected rate line: %+v", l)
	}
}

func TestAttachedFiles(t *testing.T) {
	doc := Parse(sampleDoc)
	files := doc.AttachedFiles("grdOffres", true)

	// The purely numeric row is a counter artifact, not a file.
	if len(files) != 1 {
		t.Fatalf("got %d files, want 1: %+v", len(files), files)
	}
	f := files[0]
	if f.Filename != "offre_7011.pdf" || f.Amount != 4590 || f.Remark != "Offre initiale" {
		t.Fatalf("unexpected file: %+v", f)
	}
	if f.LegacyPath != `N:\Mandats\7011\offre_7011.pdf` {
		t.Fatalf("legacy path = %q", f.LegacyPath)
	}
	if f.Date == nil || !f.Date.Equal(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("date = %v", f.Date)
	}
}

func TestExtractTotals(t *testing.T) {
	doc := Parse(sampleDoc)
	totals := doc.ExtractTotals(DefaultGridLayout)

	if totals.FeesBase != 1757.50 || totals.FeesTotal != 1757.50 || totals.FeesFinalTotal != 1757.50 {
		t.Fatalf("fees: %+v", totals)
	}
	if totals.TotalHT != 1893 || totals.VATAmount != 153.30 || totals.TotalTTC != 2046.30 {
		t.Fatalf("totals: %+v", totals)
	}
	if totals.VATRate != 8.1 {
		t.Fatalf("vat rate = %v", totals.VATRate)
	}
	// Zero cells take the historical defaults.
	if totals.ExpensesTravelRate != DefaultTravelRate {
		t.Fatalf("travel rate = %v, want default %v", totals.ExpensesTravelRate, DefaultTravelRate)
	}
	if totals.FeesDiscountPercentage != nil || totals.FeesDiscountAmount != nil {
		t.Fatalf("absent discount should be nil, got %v / %v",
			totals.FeesDiscountPercentage, totals.FeesDiscountAmount)
	}
}

func TestCodeTables(t *testing.T) {
	if got := DocumentType("1"); got != "final_invoice" {
		t.Fatalf("DocumentType(1) = %q", got)
	}
	if got := DocumentType("junk"); got != "invoice" {
		t.Fatalf("DocumentType fallback = %q", got)
	}
	if got := BillingMode("3"); got != "fixedPrice" {
		t.Fatalf("BillingMode(3) = %q", got)
	}
	if got := InvoiceStatus("0", "1"); got != "sent" {
		t.Fatalf("approved with visa user = %q", got)
	}
	if got := InvoiceStatus("9", "1"); got != "controle" {
		t.Fatalf("approved without visa user = %q", got)
	}
	if got := InvoiceStatus("0", "0"); got != "controle" {
		t.Fatalf("unapproved = %q", got)
	}
}
