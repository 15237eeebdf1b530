package model

import "time"

// DurationIndicators holds the month counts derived from the contract dates.
type DurationIndicators struct {
	DurationMonths int
	MonthsLeft     int
	MonthsPassed   int // always >= 1
}

// SpendingIndicators holds the spend and burn figures derived from the limit and spend.
type SpendingIndicators struct {
	PctSpent                 float64
	DesiredBurnRate          float64
	BurnRate                 float64
	BurnStatus               BurnStatus
	MonthsBeforeLimitReached int
	ProjectedLimitDate       time.Time
	WatchFlag                WatchFlag
}

// Indicators is the full derived set for one contract.
type Indicators struct {
	DurationIndicators
	SpendingIndicators
	FiscalYear int
}
