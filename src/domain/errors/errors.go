package errors

import "errors"

// AppError kinds used across the application. The REST error-handler
// middleware maps these to HTTP status codes.
const (
	NotFound           = "NotFound"
	notFoundMessage    = "record not found"
	ValidationError    = "ValidationError"
	validationMessage  = "validation error"
	RepositoryError    = "RepositoryError"
	repositoryMessage  = "error in repository operation"
	NotAuthenticated   = "NotAuthenticated"
	notAuthMessage     = "not authenticated"
	NotAuthorized      = "NotAuthorized"
	notAuthorizedMsg   = "not authorized"
	UnprocessableError = "UnprocessableError"
	unprocessableMsg   = "unprocessable request"
	ConflictError      = "ConflictError"
	conflictMessage    = "operation already in progress"
	UnknownError       = "UnknownError"
	unknownMessage     = "internal error"
)

type AppError struct {
	Err  error
	Type string
}

func NewAppError(err error, errType string) *AppError {
	return &AppError{
		Err:  err,
		Type: errType,
	}
}

func NewAppErrorWithType(errType string) *AppError {
	var err error

	switch errType {
	case NotFound:
		err = errors.New(notFoundMessage)
	case ValidationError:
		err = errors.New(validationMessage)
	case RepositoryError:
		err = errors.New(repositoryMessage)
	case NotAuthenticated:
		err = errors.New(notAuthMessage)
	case NotAuthorized:
		err = errors.New(notAuthorizedMsg)
	case UnprocessableError:
		err = errors.New(unprocessableMsg)
	case ConflictError:
		err = errors.New(conflictMessage)
	default:
		err = errors.New(unknownMessage)
	}

	return &AppError{
		Err:  err,
		Type: errType,
	}
}

func (e *AppError) Error() string {
	return e.Err.Error()
}
