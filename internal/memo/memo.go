package memo

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"BlanketWatch/internal/model"
)

// RunDateFormat is the MM-DD-YY stamp used in memo file names.
const RunDateFormat = "01-02-06"

// DefaultDivisor requests a tenth of the current limit.
const DefaultDivisor = 10

var ErrInvalidDivisor = errors.New("memo divisor must be positive")

// RequestAmount is the additional funding a memo asks for: limit / divisor.
func RequestAmount(limit decimal.Decimal, divisor int) (decimal.Decimal, error) {
	if divisor <= 0 {
		return decimal.Zero, ErrInvalidDivisor
	}
	return limit.Div(decimal.NewFromInt(int64(divisor))), nil
}

var idReplacer = strings.NewReplacer("/", "_", "\\", "_")

// FileName is {contract_id}-changeorder-{MM-DD-YY}.pdf. Path separators and whitespace
// in the id become underscores so the memo always lands directly in the output dir.
func FileName(contractID string, runDate time.Time) string {
	id := idReplacer.Replace(strings.Join(strings.Fields(contractID), "_"))
	return fmt.Sprintf("%s-changeorder-%s.pdf", id, runDate.Format(RunDateFormat))
}

// Select returns the contracts that need a change-order memo: those burning high.
func Select(evaluated []model.EvaluatedContract) []model.EvaluatedContract {
	var out []model.EvaluatedContract
	for _, ec := range evaluated {
		if ec.Indicators.BurnStatus == model.BurnHigh {
			out = append(out, ec)
		}
	}
	return out
}

// USD formats an amount as $1,234.56.
func USD(d decimal.Decimal) string {
	return "$" + humanize.FormatFloat("#,###.##", d.Round(2).InexactFloat64())
}

// Letterhead carries the fixed parts of every memo.
type Letterhead struct {
	Recipient      string
	Address        []string
	ChiefFiscal    string
	BudgetAccount  string
	SignatureTitle string
	HeaderImage    string
	SignatureImage string
}

// Request is the content of one change-order memo.
type Request struct {
	ContractID      string
	Division        string
	Description     string
	MonthsLeft      int
	PctSpent        float64
	Expiration      time.Time
	CurrentLimit    decimal.Decimal
	RequestedAmount decimal.Decimal
}

// NewLimit is the limit after the change order is granted.
func (r Request) NewLimit() decimal.Decimal {
	return r.CurrentLimit.Add(r.RequestedAmount)
}

// NewRequest builds the memo content for ec.
func NewRequest(ec model.EvaluatedContract, divisor int) (Request, error) {
	amount, err := RequestAmount(ec.SpendingLimit, divisor)
	if err != nil {
		return Request{}, err
	}
	return Request{
		ContractID:      ec.ID,
		Division:        ec.Division,
		Description:     ec.Description,
		MonthsLeft:      ec.Indicators.MonthsLeft,
		PctSpent:        ec.Indicators.PctSpent,
		Expiration:      ec.EndDate,
		CurrentLimit:    ec.SpendingLimit,
		RequestedAmount: amount,
	}, nil
}

// Body renders the memo text.
func Body(r Request, lh Letterhead) string {
	var b strings.Builder
	fmt.Fprintf(&b, "We are writing to request that a change order be issued in the amount of %s to increase "+
		"funding for Master Blanket Purchase Order %s. This contract has %d months remaining, has spent "+
		"%.1f%% of its limit, and is due to expire on %s. The total amount of %s is needed to continue to "+
		"provide services throughout the remainder of the contract life cycle and guard against gaps in service.\n\n",
		USD(r.RequestedAmount), r.ContractID, r.MonthsLeft, r.PctSpent,
		r.Expiration.Format("January 2, 2006"), USD(r.RequestedAmount))
	b.WriteString("The description of the contract and the relevant budget account number are below:\n")
	fmt.Fprintf(&b, "Description: %q\n", r.Description)
	fmt.Fprintf(&b, "Budget Account Number: %s\n\n", lh.BudgetAccount)
	fmt.Fprintf(&b, "This is an increase to the above referenced contract from %s to %s. "+
		"If you have any questions regarding the above, please contact the Accounts Payable office. "+
		"Thank you in advance for your prompt response to this request.\n\n\n",
		USD(r.CurrentLimit), USD(r.NewLimit()))
	for _, cc := range CarbonCopies(r.Division, lh) {
		fmt.Fprintf(&b, "cc: %s\n", cc)
	}
	return b.String()
}

// CarbonCopies lists the memo's cc lines.
func CarbonCopies(division string, lh Letterhead) []string {
	var out []string
	if lh.ChiefFiscal != "" {
		out = append(out, lh.ChiefFiscal)
	}
	if division != "" {
		out = append(out, division+" Division Chief", division+" Deputy Chief")
	}
	return out
}

// TitleCase capitalizes each word of a name.
func TitleCase(name string) string {
	return cases.Title(language.English).String(strings.Join(strings.Fields(name), " "))
}
