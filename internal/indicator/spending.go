package indicator

import (
	"github.com/shopspring/decimal"

	"BlanketWatch/internal/calculator"
	"BlanketWatch/internal/model"
)

var (
	hundred        = decimal.NewFromInt(100)
	three          = decimal.NewFromInt(3)
	watchThreshold = decimal.NewFromInt(75)
)

// ComputeSpending derives the spend and burn indicators from c and its duration indicators.
func ComputeSpending(c model.Contract, d model.DurationIndicators) (model.SpendingIndicators, error) {
	if !c.SpendingLimit.IsPositive() {
		return model.SpendingIndicators{}, domainError(c.ID, ErrNonPositiveLimit)
	}
	if c.AmountSpent.IsNegative() {
		return model.SpendingIndicators{}, domainError(c.ID, ErrNegativeSpend)
	}
	if d.DurationMonths <= 0 {
		return model.SpendingIndicators{}, domainError(c.ID, ErrZeroDuration)
	}

	duration := decimal.NewFromInt(int64(d.DurationMonths))
	passed := decimal.NewFromInt(int64(d.MonthsPassed))

	pctSpent := c.AmountSpent.Mul(hundred).Div(c.SpendingLimit)
	desired := hundred.Div(duration)
	burn := c.AmountSpent.Mul(hundred).Div(passed.Mul(c.SpendingLimit))
	lowCeiling := hundred.Div(duration.Mul(three))

	months := monthsBeforeLimit(c.SpendingLimit, c.AmountSpent, passed)

	return model.SpendingIndicators{
		PctSpent:                 pctSpent.InexactFloat64(),
		DesiredBurnRate:          desired.InexactFloat64(),
		BurnRate:                 burn.InexactFloat64(),
		BurnStatus:               classifyBurn(burn, desired, lowCeiling),
		MonthsBeforeLimitReached: months,
		ProjectedLimitDate:       calculator.AddMonths(c.StartDate, months),
		WatchFlag:                classifyWatch(pctSpent),
	}, nil
}

// classifyBurn checks high first, then low, else medium.
func classifyBurn(burn, desired, lowCeiling decimal.Decimal) model.BurnStatus {
	switch {
	case burn.GreaterThanOrEqual(desired):
		return model.BurnHigh
	case burn.LessThanOrEqual(lowCeiling):
		return model.BurnLow
	default:
		return model.BurnMedium
	}
}

func classifyWatch(pctSpent decimal.Decimal) model.WatchFlag {
	if pctSpent.GreaterThanOrEqual(watchThreshold) {
		return model.WatchListed
	}
	return model.WatchSafe
}

// monthsBeforeLimit is floor(limit / (spent / passed)). Nothing spent means no projection: 0.
func monthsBeforeLimit(limit, spent, passed decimal.Decimal) int {
	if spent.IsZero() {
		return 0
	}
	q, _ := limit.Mul(passed).QuoRem(spent, 0)
	return int(q.IntPart())
}
