/*
Package errors provides semantic error types for the dashboard library.

The package defines common error scenarios with specific types that can be
checked using the standard errors.Is() function or the provided helper functions.

Common Errors:

	var (
	    ErrNotFound      = errors.New("not found")
	    ErrAlreadyExists = errors.New("already exists")
	    ErrInvalidInput  = errors.New("invalid input")
	    ErrUnsupported   = errors.New("unsupported operation")
	)

Usage:

	pg, err := pages.Get("orders")
	if err != nil {
	    if errors.IsNotFound(err) {
	        // answer 404
	    }
	    return err
	}

	// Create typed errors
	err := errors.NewNotFoundError("page", "orders")
	err := errors.NewValidationError("page", "must be a positive integer")
	err := errors.NewUnsupportedError("products.csv", "pagination")

An UnsupportedError signals a configuration or usage mistake (asking a CSV
stream for page 3, for instance). Callers are expected to surface it, not retry.
*/
package errors
