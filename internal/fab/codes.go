package fab

// Fixed lookup tables for the enumerated legacy codes. These are data, not
// behavior: they mirror the item lists compiled into the legacy tool.

// DocumentType maps the edtType code to the invoice type.
func DocumentType(code string) string {
	switch code {
	case "1":
		return "final_invoice"
	case "2":
		return "situation"
	case "3":
		return "deposit"
	default:
		return "invoice"
	}
}

// BillingMode maps the edtMode code to the billing mode.
func BillingMode(code string) string {
	switch code {
	case "1":
		return "accordingToOffer"
	case "2":
		return "accordingToInvoice"
	case "3":
		return "fixedPrice"
	default:
		return "accordingToData"
	}
}

// VisaUserInitials maps the edtVisa index to the initials of the approving
// user. Only three people ever held visa authority in the legacy tool.
var VisaUserInitials = map[string]string{
	"0": "fp",
	"1": "js",
	"2": "mo",
}

// InvoiceStatus derives the status from the approval flag and visa index:
// approved documents with a known visa user were sent, everything else is
// still under review.
func InvoiceStatus(visa, bon string) string {
	if bon == "1" {
		if _, ok := VisaUserInitials[visa]; ok {
			return "sent"
		}
	}
	return "controle"
}

// Default rates applied when the corresponding grid cell is zero.
const (
	DefaultTravelRate = 0.65
	DefaultVATRate    = 8
)

// gridCell addresses one cell of the flattened grdFacture grid.
type gridCell struct {
	Row int
	Col int
}

// GridLayout fixes which grid cells hold which totals. The coordinates were
// established empirically against the legacy tool's output and are a
// contract with it, not self-describing; they are kept as swappable
// configuration in case a document revision ever moves them.
type GridLayout struct {
	FeesBase               gridCell
	FeesTotal              gridCell
	FeesOthers             gridCell
	FeesAdjusted           gridCell
	FeesDiscountPercentage gridCell
	FeesDiscountAmount     gridCell
	FeesFinalTotal         gridCell

	ExpensesTravelBase        gridCell
	ExpensesTravelAdjusted    gridCell
	ExpensesTravelRate        gridCell
	ExpensesTravelAmount      gridCell
	ExpensesOtherBase         gridCell
	ExpensesOtherAmount       gridCell
	ExpensesPackagePercentage gridCell
	ExpensesPackageAmount     gridCell
	ExpensesThirdPartyAmount  gridCell
	ExpensesTotalExpenses     gridCell

	TotalHT   gridCell
	VATRate   gridCell
	VATAmount gridCell
	TotalTTC  gridCell
}

// DefaultGridLayout matches every known document revision to date.
var DefaultGridLayout = GridLayout{
	FeesBase:               gridCell{8, 1},
	FeesTotal:              gridCell{8, 4},
	FeesOthers:             gridCell{9, 4},
	FeesAdjusted:           gridCell{10, 4},
	FeesDiscountPercentage: gridCell{11, 3},
	FeesDiscountAmount:     gridCell{11, 4},
	FeesFinalTotal:         gridCell{12, 4},

	ExpensesTravelBase:        gridCell{16, 1},
	ExpensesTravelAdjusted:    gridCell{16, 2},
	ExpensesTravelRate:        gridCell{16, 3},
	ExpensesTravelAmount:      gridCell{16, 4},
	ExpensesOtherBase:         gridCell{17, 1},
	ExpensesOtherAmount:       gridCell{17, 4},
	ExpensesPackagePercentage: gridCell{20, 3},
	ExpensesPackageAmount:     gridCell{20, 4},
	ExpensesThirdPartyAmount:  gridCell{21, 4},
	ExpensesTotalExpenses:     gridCell{22, 4},

	TotalHT:   gridCell{24, 4},
	VATRate:   gridCell{25, 3},
	VATAmount: gridCell{25, 4},
	TotalTTC:  gridCell{26, 4},
}
