package timer

import "github.com/kirokuapp/kiroku/internal/apperr"

var (
	errStartTimeInFuture = &apperr.Error{
		Message: "start time cannot be in the future",
	}

	errNoActiveMeasurement = &apperr.Error{
		Message: "no measurement is in progress",
	}
)
