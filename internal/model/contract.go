package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Contract is one row of the blanket purchase order register.
type Contract struct {
	ID            string
	StartDate     time.Time
	EndDate       time.Time
	SpendingLimit decimal.Decimal
	AmountSpent   decimal.Decimal
	Division      string
	Description   string
	Vendor        string
	Buyer         string
}

// IsActive reports whether the contract is still running at now.
func (c Contract) IsActive(now time.Time) bool {
	return c.EndDate.After(now)
}

// EvaluatedContract pairs a contract with the indicators computed for it in one run.
type EvaluatedContract struct {
	Contract
	Indicators Indicators
}
