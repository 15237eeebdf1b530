package indicator

import (
	"fmt"
	"time"

	"BlanketWatch/internal/calculator"
	"BlanketWatch/internal/model"
)

// RejectPolicy decides what Evaluate does with a malformed contract.
type RejectPolicy string

const (
	// RejectSkip excludes the contract, records its DomainError and carries on.
	RejectSkip RejectPolicy = "skip"
	// RejectAbort stops at the first DomainError.
	RejectAbort RejectPolicy = "abort"
)

// ParseRejectPolicy validates a configured policy name. Empty means skip.
func ParseRejectPolicy(s string) (RejectPolicy, error) {
	switch RejectPolicy(s) {
	case "", RejectSkip:
		return RejectSkip, nil
	case RejectAbort:
		return RejectAbort, nil
	default:
		return "", fmt.Errorf("unknown reject policy %q", s)
	}
}

// Options tunes an evaluation.
type Options struct {
	Basis    calculator.MonthBasis
	OnReject RejectPolicy
}

// Result is the outcome of one evaluation. Evaluated keeps input order.
type Result struct {
	Evaluated []model.EvaluatedContract
	Rejected  []*DomainError
}

// Evaluate computes indicators for every contract against the single instant now.
// It never mutates contracts.
func Evaluate(contracts []model.Contract, now time.Time, opts Options) (*Result, error) {
	res := &Result{Evaluated: make([]model.EvaluatedContract, 0, len(contracts))}
	for _, c := range contracts {
		ind, err := evaluateOne(c, now, opts.Basis)
		if err != nil {
			de, ok := AsDomainError(err)
			if !ok {
				return nil, fmt.Errorf("evaluate contract %s: %w", c.ID, err)
			}
			if opts.OnReject == RejectAbort {
				return nil, de
			}
			res.Rejected = append(res.Rejected, de)
			continue
		}
		res.Evaluated = append(res.Evaluated, model.EvaluatedContract{Contract: c, Indicators: ind})
	}
	return res, nil
}

func evaluateOne(c model.Contract, now time.Time, basis calculator.MonthBasis) (model.Indicators, error) {
	d, err := ComputeDuration(c, now, basis)
	if err != nil {
		return model.Indicators{}, err
	}
	s, err := ComputeSpending(c, d)
	if err != nil {
		return model.Indicators{}, err
	}
	return model.Indicators{
		DurationIndicators: d,
		SpendingIndicators: s,
		FiscalYear:         calculator.FiscalYear(c.StartDate),
	}, nil
}
