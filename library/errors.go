package library

import "fmt"

// ValidationError reports a missing or malformed text field. It is raised
// before any storage write happens.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// InvalidFileError reports a rejected upload part, raised before any blob write.
type InvalidFileError struct {
	Field   string
	Message string
}

func (e *InvalidFileError) Error() string {
	return fmt.Sprintf("invalid %s file: %s", e.Field, e.Message)
}

// NotFoundError reports an operation against an unknown record id.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("record %q not found", e.ID)
}

// StorageError wraps a blob or record store failure. Compensating deletes
// have already run by the time the caller sees one.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
