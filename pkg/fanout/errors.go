package fanout

import "errors"

var (
	// ErrNilRegistry is returned when no notifier registry is provided.
	ErrNilRegistry = errors.New("notifier registry cannot be nil")

	// ErrNilResolver is returned when no preference resolver is provided.
	ErrNilResolver = errors.New("preference resolver cannot be nil")

	// ErrNilLedger is returned when no notified ledger is provided.
	ErrNilLedger = errors.New("notified ledger cannot be nil")

	// ErrNilRepository is returned when a required repository is missing.
	ErrNilRepository = errors.New("fanout repositories cannot be nil")
)
