package handler

import (
	"context"
	"errors"
	"net/http"

	"gasmap/internal/codec"
	"gasmap/internal/domain"
	"gasmap/internal/editor"
	"gasmap/internal/persistence"
	"gasmap/internal/repository"
)

// statusFor maps an error from the service to an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNodeNotFound),
		errors.Is(err, domain.ErrPipeNotFound),
		errors.Is(err, repository.ErrNetworkNotFound):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrJobInFlight),
		errors.Is(err, domain.ErrDuplicateConnection):
		return http.StatusConflict

	case errors.Is(err, domain.ErrIO):
		return http.StatusInternalServerError

	case errors.Is(err, domain.ErrFileFormat),
		errors.Is(err, domain.ErrSelfLoop),
		errors.Is(err, domain.ErrInvalidPortReference),
		errors.Is(err, domain.ErrSpatialResolution),
		errors.Is(err, domain.ErrInvalidAttribute),
		errors.Is(err, editor.ErrNoLocation),
		errors.Is(err, editor.ErrNothingToExport),
		errors.Is(err, editor.ErrUnknownCommand),
		errors.Is(err, codec.ErrUnsupportedFormat),
		errors.Is(err, persistence.ErrOutsideStore):
		return http.StatusBadRequest

	case errors.Is(err, editor.ErrLoopStopped):
		return http.StatusServiceUnavailable

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout

	default:
		return http.StatusInternalServerError
	}
}
