package catalog

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"asset-catalog/schema"
)

// Static errors for gateway invariant violations.
var (
	ErrEmptyPatch           = errors.New("update must touch at least one field")
	ErrPreviewNotFound      = errors.New("preview_id does not reference a known asset")
	ErrPreviewSelfReference = errors.New("preview_id must not reference the asset itself")
	ErrNotOwner             = errors.New("asset is not owned by the requester")
)

// NotFoundError reports an unknown asset id.
type NotFoundError struct {
	ID uuid.UUID
}

func (e *NotFoundError) Error() string {
	return "asset not found: " + e.ID.String()
}

// ConflictError reports an index/record desync or duplicate insert. This is
// a programmer-error class; requests that hit it are aborted, not retried.
type ConflictError struct {
	Conflict string
}

func (e *ConflictError) Error() string {
	return "conflict: " + e.Conflict
}

// FetchError reports a network or transport failure during URL ingestion.
type FetchError struct {
	URL   string
	Inner error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s failed: %v", e.URL, e.Inner)
}

func (e *FetchError) Unwrap() error {
	return e.Inner
}

// ServiceError is the public-facing error of the catalog service, carrying
// the HTTP status the transport should answer with.
type ServiceError struct {
	Status  int
	Message string
	Inner   error
}

func (e *ServiceError) Error() string {
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Inner
}

// wrapServiceError converts internal errors to user-facing service errors.
func wrapServiceError(err error, operation string) error {
	if err == nil {
		return nil
	}

	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return err
	}

	var validationErr *schema.ValidationError
	if errors.As(err, &validationErr) {
		return &ServiceError{
			Status:  http.StatusBadRequest,
			Message: validationErr.Error(),
			Inner:   err,
		}
	}

	if errors.Is(err, ErrEmptyPatch) || errors.Is(err, ErrPreviewNotFound) ||
		errors.Is(err, ErrPreviewSelfReference) {
		return &ServiceError{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
			Inner:   err,
		}
	}

	if errors.Is(err, ErrNotOwner) {
		return &ServiceError{
			Status:  http.StatusForbidden,
			Message: err.Error(),
			Inner:   err,
		}
	}

	var notFoundErr *NotFoundError
	if errors.As(err, &notFoundErr) {
		return &ServiceError{
			Status:  http.StatusNotFound,
			Message: "Asset not found for " + operation,
			Inner:   err,
		}
	}

	var conflictErr *ConflictError
	if errors.As(err, &conflictErr) {
		return &ServiceError{
			Status:  http.StatusConflict,
			Message: "Conflict during " + operation,
			Inner:   err,
		}
	}

	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return &ServiceError{
			Status:  http.StatusBadGateway,
			Message: fetchErr.Error(),
			Inner:   err,
		}
	}

	return &ServiceError{
		Status:  http.StatusInternalServerError,
		Message: "Internal server error during " + operation,
		Inner:   err,
	}
}
