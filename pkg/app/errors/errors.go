// Package errors contains the error taxonomy shared by the store, the
// repositories and the offline orchestrator.
package errors

import (
	"errors"
	"net/http"
)

// Category defines error category
type Category int

const (
	// CategoryNoError marks a ServiceError that carries no failure.
	CategoryNoError Category = iota
	// CategoryDataError The caller sent malformed input, for example an
	// invalid address or an empty required field.
	CategoryDataError
	// CategoryResourceNotFound The caller addressed a record that does not exist.
	// Repositories report absence as a value; this category is only used by
	// outer surfaces such as the inspector.
	CategoryResourceNotFound
	// CategoryDataConflict The caller sent data that conflicts with stored
	// data (duplicate address, request already resolved).
	CategoryDataConflict
	// CategoryDependencyFailure A remote data source failed.
	CategoryDependencyFailure
	// CategoryStorageFailure The embedded store failed to open, migrate or write.
	CategoryStorageFailure
	// CategoryGeneralError The service failed in an unexpected way
	CategoryGeneralError
)

func (c Category) String() string {
	switch c {
	case CategoryNoError:
		return "CategoryNoError"
	case CategoryDataError:
		return "CategoryDataError"
	case CategoryResourceNotFound:
		return "CategoryResourceNotFound"
	case CategoryDataConflict:
		return "CategoryDataConflict"
	case CategoryDependencyFailure:
		return "CategoryDependencyFailure"
	case CategoryStorageFailure:
		return "CategoryStorageFailure"
	default:
		return "CategoryGeneralError"
	}
}

// ServiceError represents service specific type that
// is used all over the services.
type ServiceError struct {
	Category Category
	Message  string
	Err      error
}

// Error method to comply with error interface
func (err ServiceError) Error() string {
	if err.Err != nil {
		return err.Err.Error()
	}
	return err.Message
}

// Unwrap returns the underlying error
func (err ServiceError) Unwrap() error {
	return err.Err
}

// Is implements the custom condition to check an error is equal to a service error
func (err ServiceError) Is(target error) bool {
	return err.Message == target.Error()
}

// Is checks that provided error is a ServiceError with desired Category
func Is(err error, cat Category) bool {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) && svcErr.Category == cat {
		return true
	}
	return false
}

// IsServiceError reports whether err already carries a category.
func IsServiceError(err error) bool {
	var svcErr *ServiceError
	return errors.As(err, &svcErr)
}

// IsStorageError reports whether err is a store failure.
func IsStorageError(err error) bool {
	return Is(err, CategoryStorageFailure)
}

// GeneralError returns a general service error
func GeneralError(err error) error {
	if err == nil {
		err = errors.New("internal error")
	}
	return &ServiceError{
		Category: CategoryGeneralError,
		Message:  "Internal Error",
		Err:      err,
	}
}

// ResourceNotFoundError returns an error with category ResourceNotFound
func ResourceNotFoundError(err error, message string) error {
	if err == nil {
		err = errors.New("resource not found: " + message)
	}
	return &ServiceError{
		Category: CategoryResourceNotFound,
		Message:  message,
		Err:      err,
	}
}

// BadRequestError returns an error with category DataError.
// It signals malformed input from the caller.
func BadRequestError(err error, message string) error {
	if err == nil {
		err = errors.New("bad request: " + message)
	}
	return &ServiceError{
		Category: CategoryDataError,
		Message:  message,
		Err:      err,
	}
}

// ConflictError returns an error with category CategoryDataConflict
func ConflictError(err error, message string) error {
	if err == nil {
		err = errors.New("conflict")
	}
	return &ServiceError{
		Category: CategoryDataConflict,
		Message:  message,
		Err:      err,
	}
}

// DependencyFailureError returns an error with category CategoryDependencyFailure.
// Only the offline orchestrator produces it, for a failed remote fetch.
func DependencyFailureError(err error, message string) error {
	if err == nil {
		err = errors.New("dependency failure")
	}
	return &ServiceError{
		Category: CategoryDependencyFailure,
		Message:  message,
		Err:      err,
	}
}

// StorageError returns an error with category CategoryStorageFailure.
// Store failures are fatal for the operation and must never be swallowed.
func StorageError(err error, message string) error {
	if err == nil {
		err = errors.New("storage failure")
	}
	return &ServiceError{
		Category: CategoryStorageFailure,
		Message:  message,
		Err:      err,
	}
}

// StatusCode returns the HTTP status code for the error category
func (err ServiceError) StatusCode() int {
	switch err.Category {
	case CategoryDataError:
		return http.StatusBadRequest
	case CategoryResourceNotFound:
		return http.StatusNotFound
	case CategoryDataConflict:
		return http.StatusConflict
	case CategoryDependencyFailure:
		return http.StatusBadGateway
	case CategoryStorageFailure:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
