package apriori

import "errors"

var (
	// ErrInvalidParameter indicates a threshold or option outside its domain.
	// No mining work is done when it is returned.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrBudgetExceeded indicates a level's candidates did not fit in the
	// memory budget.
	ErrBudgetExceeded = errors.New("candidate memory budget exceeded")
)
