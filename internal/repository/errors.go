// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as services
// and handlers to distinguish between different failure scenarios without
// inspecting SQL error strings themselves. Each sentinel maps to exactly
// one user-visible rejection at the handler boundary.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own, or with a role that may not perform it (for
// example a trainer trying to book a class). Handlers translate this into
// an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrNotFound is returned when a referenced class, booking, user or
// conversation does not exist. Handlers translate this into HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrClassFull is returned by the booking ledger when the capacity check
// performed at write time finds no remaining slot for the requested class
// and date. Handlers translate this into HTTP 409.
var ErrClassFull = errors.New("class full")

// ErrDuplicateBooking is returned when a non-cancelled booking for the
// same (class, date, student) triple already exists. Handlers translate
// this into HTTP 409.
var ErrDuplicateBooking = errors.New("already booked")

// ErrInvalidTransition is returned when a booking status change is not
// permitted from the current state, including cancelling an already
// cancelled or attended booking. Handlers translate this into HTTP 409.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrConflict is returned when a delete or update cannot be performed
// because of conflicting dependent state, such as deleting a class that
// still has non-terminal bookings. Handlers translate this into HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrEmailExists is returned by user creation when the email is taken.
var ErrEmailExists = errors.New("email already exists")
