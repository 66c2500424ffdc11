package services

import "errors"

// Board service errors
var (
	ErrUnknownKind          = errors.New("unknown record kind")
	ErrSourceUnavailable    = errors.New("report source unavailable")
	ErrParseFailed          = errors.New("report could not be parsed")
	ErrStoreUnavailable     = errors.New("confirmation store unavailable")
	ErrConfirmationNotSaved = errors.New("confirmation not saved")
	ErrNoSnapshot           = errors.New("no snapshot published yet")
	ErrRefreshPanicked      = errors.New("refresh panicked")

	ErrInvalidInput = errors.New("invalid input")
)
