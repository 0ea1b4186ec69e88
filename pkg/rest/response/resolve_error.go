package response

import (
	"errors"

	"github.com/markgregr/todoAgent_REST_server/internal/domain"
)

// ResolveError is the one table mapping service errors onto HTTP statuses.
// Anything it does not recognize becomes a 500 with a generic body.
func ResolveError(err error) Error {
	var verr *domain.ValidationError

	switch {
	case errors.As(err, &verr):
		ve := NewValidationError()
		for field, message := range verr.Fields {
			ve.SetError(field, InvalidValue, message)
		}
		return ve
	case errors.Is(err, domain.ErrEmailTaken):
		return NewUserExistError()
	case errors.Is(err, domain.ErrInvalidCredentials):
		return NewInvalidCredentialsError()
	case errors.Is(err, domain.ErrInvalidToken):
		return NewUnauthorizedError()
	case errors.Is(err, domain.ErrForbidden):
		return NewForbiddenError()
	case errors.Is(err, domain.ErrNotFound):
		return NewNotFoundError("")
	default:
		return NewInternalError()
	}
}
