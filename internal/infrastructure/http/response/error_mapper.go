package response

import (
	"errors"
	"net/http"

	domainErrors "github.com/expricer/exclusivity-service/internal/domain/errors"
)

type ErrorMapping struct {
	HTTPStatus int
	Status     Status
	Message    string
}

var errorMappings = map[error]ErrorMapping{
	domainErrors.ErrInvalidWorkType: {
		HTTPStatus: http.StatusBadRequest,
		Status:     StatusValidationError,
		Message:    "Work type must be physical or digital",
	},
	domainErrors.ErrInvalidMaxCopies: {
		HTTPStatus: http.StatusBadRequest,
		Status:     StatusValidationError,
		Message:    "Maximum copies must be greater than zero",
	},
	domainErrors.ErrInvalidMinPrice: {
		HTTPStatus: http.StatusBadRequest,
		Status:     StatusValidationError,
		Message:    "Minimum price must be greater than zero",
	},
	domainErrors.ErrNegativeCopiesSold: {
		HTTPStatus: http.StatusBadRequest,
		Status:     StatusValidationError,
		Message:    "Copies sold cannot be negative",
	},
	domainErrors.ErrCopiesSoldExceedsMax: {
		HTTPStatus: http.StatusBadRequest,
		Status:     StatusValidationError,
		Message:    "Copies sold cannot exceed maximum copies",
	},
	domainErrors.ErrInvalidUnitsEliminated: {
		HTTPStatus: http.StatusBadRequest,
		Status:     StatusValidationError,
		Message:    "Units eliminated must be greater than zero",
	},
	domainErrors.ErrMissingBuyerContact: {
		HTTPStatus: http.StatusBadRequest,
		Status:     StatusValidationError,
		Message:    "Buyer contact is required",
	},
	domainErrors.ErrInvalidAmount: {
		HTTPStatus: http.StatusBadRequest,
		Status:     StatusValidationError,
		Message:    "Sale amount cannot be negative",
	},
	domainErrors.ErrEditionSoldOut: {
		HTTPStatus: http.StatusConflict,
		Status:     StatusConflict,
		Message:    "Edition is sold out",
	},
	domainErrors.ErrLedgerBusy: {
		HTTPStatus: http.StatusServiceUnavailable,
		Status:     StatusServiceUnavailable,
		Message:    "Ledger is busy, try again",
	},
	domainErrors.ErrLedgerUnavailable: {
		HTTPStatus: http.StatusServiceUnavailable,
		Status:     StatusServiceUnavailable,
		Message:    "Ledger storage unavailable",
	},
	domainErrors.ErrLedgerCorrupted: {
		HTTPStatus: http.StatusInternalServerError,
		Status:     StatusInternalError,
		Message:    "Ledger state is corrupted",
	},
}

func MapDomainError(err error) (int, *ErrorResponse) {
	for domainErr, mapping := range errorMappings {
		if errors.Is(err, domainErr) {
			return mapping.HTTPStatus, Error(mapping.Status, mapping.Message, err.Error())
		}
	}

	return http.StatusInternalServerError, Error(StatusInternalError, "Internal server error", err.Error())
}

func WriteDomainError(w http.ResponseWriter, err error) {
	statusCode, errorResponse := MapDomainError(err)
	WriteJSON(w, statusCode, errorResponse)
}
