package notifier

import "errors"

var (
	// ErrNilNotifier is returned when registering a nil notifier.
	ErrNilNotifier = errors.New("notifier cannot be nil")

	// ErrEmptyNotifierKey is returned when a notifier declares no key.
	ErrEmptyNotifierKey = errors.New("notifier key cannot be empty")

	// ErrDuplicateNotifierKey is returned when two notifiers share a key.
	ErrDuplicateNotifierKey = errors.New("notifier key already registered")

	// ErrNilMailer is returned when the email notifier is constructed
	// without a mailer.
	ErrNilMailer = errors.New("email notifier requires a post mailer")
)
