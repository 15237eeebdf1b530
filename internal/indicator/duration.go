package indicator

import (
	"math"
	"time"

	"BlanketWatch/internal/calculator"
	"BlanketWatch/internal/model"
)

// ComputeDuration derives the month counts for c at the evaluation instant now.
// Each count uses its own rounding: duration rounds to nearest, months left rounds up,
// months passed rounds down but never below 1. Dates and now are compared by their
// wall-clock readings, so the host zone never shifts a count.
func ComputeDuration(c model.Contract, now time.Time, basis calculator.MonthBasis) (model.DurationIndicators, error) {
	if !c.EndDate.After(c.StartDate) {
		return model.DurationIndicators{}, domainError(c.ID, ErrEndBeforeStart)
	}

	loc := c.StartDate.Location()
	end := calculator.WallClock(c.EndDate, loc)
	now = calculator.WallClock(now, loc)

	duration := calculator.MonthsBetween(c.StartDate, end, basis)
	left := calculator.MonthsBetween(now, end, basis)
	passed := calculator.MonthsBetween(c.StartDate, now, basis)

	return model.DurationIndicators{
		DurationMonths: int(math.Round(duration)),
		MonthsLeft:     int(math.Ceil(left)),
		MonthsPassed:   monthsPassed(passed),
	}, nil
}

// monthsPassed floors the elapsed months. Anything under one whole month, including a
// start date still in the future, counts as one month so early heavy spending surfaces.
func monthsPassed(raw float64) int {
	if whole := int(math.Floor(raw)); whole >= 1 {
		return whole
	}
	return 1
}
