package service

import (
	"fmt"

	"github.com/pkg/errors"
)

// RiskRejectedError marks a signal refused by a risk limit. Not fatal;
// no order was attempted.
type RiskRejectedError struct {
	Reason string
}

func (e RiskRejectedError) Error() string {
	return fmt.Sprintf("risk rejected: %s", e.Reason)
}

func IsRiskRejected(err error) bool {
	var target RiskRejectedError
	return errors.As(err, &target)
}

// ErrExecutionFailed wraps order-submission failures. State is left
// exactly as before the attempt.
var ErrExecutionFailed = errors.New("order execution failed")
