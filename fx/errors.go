package fx

import (
	"errors"
)

var (
	ErrAuth             = errors.New("authentication/authorization error")
	ErrDestinationRead  = errors.New("error reading worksheet")
	ErrDestinationWrite = errors.New("error writing worksheet")
	ErrFetch            = errors.New("error fetching exchange rates")
	ErrInvalidDate      = errors.New("invalid date")
)
