package errors

import "errors"

// IsNotFound checks if an error indicates a resource was not found.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}

	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr) || errors.Is(err, ErrNotFound)
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	if err == nil {
		return false
	}

	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// IsStorage checks if an error originated in the ledger store.
func IsStorage(err error) bool {
	if err == nil {
		return false
	}

	var storageErr *StorageError
	return errors.As(err, &storageErr)
}

// IsShutdown checks if an error indicates the component has been shut down.
func IsShutdown(err error) bool {
	return err != nil && errors.Is(err, ErrShutdown)
}
