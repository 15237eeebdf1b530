package indicator

import (
	"errors"
	"fmt"
)

var (
	ErrNonPositiveLimit = errors.New("spending limit must be positive")
	ErrZeroDuration     = errors.New("contract duration rounds to zero months")
	ErrNegativeSpend    = errors.New("amount spent must not be negative")
	ErrEndBeforeStart   = errors.New("end date must be after start date")
)

// DomainError reports a malformed contract. Err is one of the sentinel errors above.
type DomainError struct {
	ContractID string
	Err        error
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("contract %s: %v", e.ContractID, e.Err)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func domainError(id string, err error) *DomainError {
	return &DomainError{ContractID: id, Err: err}
}

// AsDomainError extracts the DomainError from err, if any.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
