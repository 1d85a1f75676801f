package record

import "errors"

// ErrNotFound indicates that a record, user, or settings row was not found.
var ErrNotFound = errors.New("record not found")

// ErrInvalidDraft indicates a Create call with required fields missing.
var ErrInvalidDraft = errors.New("draft is missing required fields")

// ErrEmailTaken indicates a CreateUser call with an already registered email.
var ErrEmailTaken = errors.New("email already registered")
