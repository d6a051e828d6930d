// Package services defines the business logic for the weekly challenge and
// the persona chatbot. This file centralizes common service-level error
// values so that they can be consistently returned by service methods and
// checked by callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler/router layer.
package services

import "errors"

// Challenge-related errors.
var (
	// ErrPermissionDenied is returned when a caller without the admin
	// capability invokes an admin-only operation.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNoDishSet indicates that no dish of the week has ever been set.
	ErrNoDishSet = errors.New("no dish set")

	// ErrNoActiveDish is returned when a participation is attempted while
	// no current dish exists.
	ErrNoActiveDish = errors.New("no active dish")

	// ErrMissingAttachment is returned when a participation carries no
	// image URL.
	ErrMissingAttachment = errors.New("image attachment required")

	// ErrDuplicateParticipation is returned when a user already submitted
	// for the current dish.
	ErrDuplicateParticipation = errors.New("already participated this week")

	// ErrNoParticipations indicates an empty leaderboard.
	ErrNoParticipations = errors.New("no participations found")
)

// Persona-related errors.
var (
	// ErrEmptyMessage is returned when, after stripping mention syntax,
	// nothing is left to reply to.
	ErrEmptyMessage = errors.New("message is empty")
)
