package services

import "errors"

// Sentinel errors shared across services and the HTTP error mapping.
var (
	// Not found
	ErrNotFound           = errors.New("requested resource not found")
	ErrEventNotFound      = errors.New("event not found")
	ErrEntryNotFound      = errors.New("participant entry not found")
	ErrMemberNotFound     = errors.New("member not found")
	ErrMembershipNotFound = errors.New("membership not found")
	ErrSemesterNotFound   = errors.New("semester not found")

	// Validation and bad input
	ErrValidationFailed         = errors.New("validation failed")
	ErrEventNameRequired        = errors.New("event name is required")
	ErrSemesterNameRequired     = errors.New("semester name is required")
	ErrSemesterInvalidDateRange = errors.New("semester end date must be after start date")
	ErrMemberNameRequired       = errors.New("member first and last name are required")

	// Lifecycle violations: valid requests the event state forbids
	ErrEventEnded        = errors.New("event has ended and can no longer be modified")
	ErrEventAlreadyEnded = errors.New("event has already been ended")
	ErrEventNotEnded     = errors.New("event has not been ended")
	ErrEntriesUnresolved = errors.New("all participants must be signed out before the event can be ended")

	// Conflicts
	ErrAlreadyRegistered    = errors.New("already registered")
	ErrMemberConflict       = errors.New("member already exists")
	ErrMemberEmailConflict  = errors.New("email address is already in use")
	ErrMembershipConflict   = errors.New("member already has a membership for this semester")
	ErrSemesterNameConflict = errors.New("semester name already exists")

	// Authentication
	ErrAuthInvalidCredentials = errors.New("invalid username or password")
)
