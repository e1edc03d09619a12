package fab

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"beg-migrate/internal/legacy"
)

// rateTotalSentinel marks the subtotal row of the rate grid; scanning stops
// there and never reads past it.
const rateTotalSentinel = "Total h."

// RateLine is one row of the invoice's per-class rate table.
type RateLine struct {
	Class         string
	BaseHours     float64
	AdjustedHours float64
	HourlyRate    float64
	Amount        float64
}

// AttachedFile is one row of an attachment grid (offers, adjudications,
// situations, documents). LegacyPath is the raw Windows path as written by
// the legacy tool; resolving and migrating it is the importer's job.
type AttachedFile struct {
	Filename   string
	Date       *time.Time
	Amount     float64
	Remark     string
	LegacyPath string
}

// Multiline reassembles a field the legacy tool stored line-by-line:
// "{prefix}count" holds the line count, "{prefix}0".."{prefix}N-1" the lines.
func (c *Container) Multiline(prefix string) string {
	count, _ := strconv.Atoi(c.Datas[prefix+"count"])

	var lines []string
	for i := 0; i < count; i++ {
		if line, ok := c.Datas[fmt.Sprintf("%s%d", prefix, i)]; ok {
			lines = append(lines, strings.TrimSpace(line))
		}
	}
	return strings.Join(lines, "\n")
}

// RateLines scans the rate grid from row 2 until the subtotal sentinel.
// A row counts only if its class label is a single character and at least
// one of base/adjusted/amount is non-zero.
func (c *Container) RateLines() []RateLine {
	var lines []RateLine

	for row := 2; row < 50; row++ {
		class := strings.TrimSpace(c.Datas[fmt.Sprintf("grdFacture%d.0", row)])
		if class == rateTotalSentinel {
			break
		}
		if len(class) != 1 {
			continue
		}

		line := RateLine{
			Class:         class,
			BaseHours:     legacy.ParseSwissNumber(c.Datas[fmt.Sprintf("grdFacture%d.1", row)]),
			AdjustedHours: legacy.ParseSwissNumber(c.Datas[fmt.Sprintf("grdFacture%d.2", row)]),
			HourlyRate:    legacy.ParseSwissNumber(c.Datas[fmt.Sprintf("grdFacture%d.3", row)]),
			Amount:        legacy.ParseSwissNumber(c.Datas[fmt.Sprintf("grdFacture%d.4", row)]),
		}
		if line.BaseHours > 0 || line.AdjustedHours > 0 || line.Amount > 0 {
			lines = append(lines, line)
		}
	}

	return lines
}

var numericOnly = regexp.MustCompile(`^\d+$`)

// AttachedFiles reads an attachment grid. Row 0 is the header; the row count
// comes from "{prefix}RowCount". Rows with an empty or purely numeric
// filename are stray counter artifacts and are skipped. Grids without an
// amount column (documents) pass hasAmount=false.
func (c *Container) AttachedFiles(prefix string, hasAmount bool) []AttachedFile {
	rowCount, _ := strconv.Atoi(c.Datas[prefix+"RowCount"])

	var files []AttachedFile
	for row := 1; row < rowCount; row++ {
		filename := c.Datas[fmt.Sprintf("%s%d.0", prefix, row)]
		if filename == "" || numericOnly.MatchString(filename) {
			continue
		}

		var amount float64
		if hasAmount {
			amount = legacy.ParseSwissNumber(c.Datas[fmt.Sprintf("%s%d.2", prefix, row)])
		}

		files = append(files, AttachedFile{
			Filename:   filename,
			Date:       legacy.ParseDocDate(c.Datas[fmt.Sprintf("%s%d.1", prefix, row)]),
			Amount:     amount,
			Remark:     c.Datas[fmt.Sprintf("%s%d.3", prefix, row)],
			LegacyPath: c.Datas[fmt.Sprintf("%s%d.4", prefix, row)],
		})
	}

	return files
}

// Totals holds the invoice totals extracted from fixed grid coordinates.
type Totals struct {
	FeesBase               float64
	FeesAdjusted           float64
	FeesTotal              float64
	FeesOthers             float64
	FeesFinalTotal         float64
	FeesDiscountPercentage *float64
	FeesDiscountAmount     *float64

	ExpensesTravelBase        float64
	ExpensesTravelAdjusted    float64
	ExpensesTravelRate        float64
	ExpensesTravelAmount      float64
	ExpensesOtherBase         float64
	ExpensesOtherAmount       float64
	ExpensesPackagePercentage float64
	ExpensesPackageAmount     float64
	ExpensesThirdPartyAmount  float64
	ExpensesTotalExpenses     float64

	TotalHT   float64
	VATRate   float64
	VATAmount float64
	TotalTTC  float64
}

// ExtractTotals maps grid cells to semantic totals via the given layout.
// Travel rate and VAT rate fall back to their historical defaults when the
// cell is zero or absent.
func (c *Container) ExtractTotals(layout GridLayout) Totals {
	cell := func(addr gridCell) float64 {
		return legacy.ParseSwissNumber(c.Datas[fmt.Sprintf("grdFacture%d.%d", addr.Row, addr.Col)])
	}
	optional := func(addr gridCell) *float64 {
		v := cell(addr)
		if v == 0 {
			return nil
		}
		return &v
	}

	t := Totals{
		FeesBase:               cell(layout.FeesBase),
		FeesAdjusted:           cell(layout.FeesAdjusted),
		FeesTotal:              cell(layout.FeesTotal),
		FeesOthers:             cell(layout.FeesOthers),
		FeesFinalTotal:         cell(layout.FeesFinalTotal),
		FeesDiscountPercentage: optional(layout.FeesDiscountPercentage),
		FeesDiscountAmount:     optional(layout.FeesDiscountAmount),

		ExpensesTravelBase:        cell(layout.ExpensesTravelBase),
		ExpensesTravelAdjusted:    cell(layout.ExpensesTravelAdjusted),
		ExpensesTravelRate:        cell(layout.ExpensesTravelRate),
		ExpensesTravelAmount:      cell(layout.ExpensesTravelAmount),
		ExpensesOtherBase:         cell(layout.ExpensesOtherBase),
		ExpensesOtherAmount:       cell(layout.ExpensesOtherAmount),
		ExpensesPackagePercentage: cell(layout.ExpensesPackagePercentage),
		ExpensesPackageAmount:     cell(layout.ExpensesPackageAmount),
		ExpensesThirdPartyAmount:  cell(layout.ExpensesThirdPartyAmount),
		ExpensesTotalExpenses:     cell(layout.ExpensesTotalExpenses),

		TotalHT:   cell(layout.TotalHT),
		VATRate:   cell(layout.VATRate),
		VATAmount: cell(layout.VATAmount),
		TotalTTC:  cell(layout.TotalTTC),
	}

	if t.ExpensesTravelRate <= 0 {
		t.ExpensesTravelRate = DefaultTravelRate
	}
	if t.VATRate <= 0 {
		t.VATRate = DefaultVATRate
	}

	return t
}
