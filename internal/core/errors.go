package core

import (
	"errors"
	"fmt"
)

// Error kinds. The HTTP layer maps these to status codes via errors.Is;
// everything not matching one of them is treated as a store failure.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
)

// Specific failures wrap ErrValidation so callers can match either the
// exact cause or the kind.
var (
	ErrInvalidAmount    = fmt.Errorf("%w: amount must be a positive number", ErrValidation)
	ErrEmptyDescription = fmt.Errorf("%w: description cannot be empty", ErrValidation)
	ErrEmptyCategory    = fmt.Errorf("%w: category cannot be empty", ErrValidation)
	ErrNegativeLimit    = fmt.Errorf("%w: budget limit must be a non-negative number", ErrValidation)
	ErrEmptyGoalName    = fmt.Errorf("%w: goal name cannot be empty", ErrValidation)
	ErrInvalidTarget    = fmt.Errorf("%w: target amount must be a positive number", ErrValidation)
	ErrNegativeSavings  = fmt.Errorf("%w: current savings cannot be negative", ErrValidation)
	ErrDuplicateGoal    = fmt.Errorf("%w: a savings goal with that name already exists", ErrValidation)
)
