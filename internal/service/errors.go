package service

import "errors"

var (
	// ErrTaskNotFound is returned when the referenced task id does not exist.
	ErrTaskNotFound = errors.New("task not found")

	// ErrEmptyRecipients is returned when a task is created or updated with
	// no recipients.
	ErrEmptyRecipients = errors.New("recipients list is empty")

	// ErrUnknownRecipient is returned at creation/update time when a
	// recipient id does not resolve to an existing user.
	ErrUnknownRecipient = errors.New("unknown recipient")

	// ErrInvalidSchedule is returned when sendDate/executionTime cannot be
	// combined into a fire instant.
	ErrInvalidSchedule = errors.New("invalid schedule")

	// ErrNoRecipientsResolved aborts a fire when no recipient id resolves
	// to a contact anymore.
	ErrNoRecipientsResolved = errors.New("no recipients resolved")
)
