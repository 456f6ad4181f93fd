package analysis

import (
	"fmt"

	"github.com/pkg/errors"
)

// InsufficientDataError is returned when an input series is shorter than
// the window an indicator or pattern scan needs.
type InsufficientDataError struct {
	Need int
	Got  int
}

func (e InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: need %d points, got %d", e.Need, e.Got)
}

func IsInsufficientData(err error) bool {
	var target InsufficientDataError
	return errors.As(err, &target)
}
