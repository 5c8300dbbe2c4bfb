package dto

import "net/http"

// Error code constants, format ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation and input error codes
const (
	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	ErrCodeInvalidState        = "ERR_INVALID_STATE"
	ErrCodeInsufficientBalance = "ERR_INSUFFICIENT_BALANCE"
	ErrCodeBelowMinimumPayout  = "ERR_BELOW_MINIMUM_PAYOUT"
	ErrCodePriceAtMinimum      = "ERR_PRICE_AT_MINIMUM"
	ErrCodePriceUnchanged      = "ERR_PRICE_UNCHANGED"
	ErrCodeInvalidChannel      = "ERR_INVALID_CHANNEL"
	ErrCodeDuplicateChannel    = "ERR_DUPLICATE_CHANNEL"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes.
// Conflicts are 409, missing resources 404, every other domain
// rejection is a 400.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	ErrCodeInvalidState:        http.StatusBadRequest,
	ErrCodeInsufficientBalance: http.StatusBadRequest,
	ErrCodeBelowMinimumPayout:  http.StatusBadRequest,
	ErrCodePriceAtMinimum:      http.StatusBadRequest,
	ErrCodePriceUnchanged:      http.StatusBadRequest,
	ErrCodeInvalidChannel:      http.StatusBadRequest,
	ErrCodeDuplicateChannel:    http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes fall back to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainErrorCodeMapping maps domain-layer error codes to the
// standardized API format
var domainErrorCodeMapping = map[string]string{
	"NOT_FOUND":             ErrCodeNotFound,
	"ALREADY_EXISTS":        ErrCodeAlreadyExists,
	"CONCURRENCY_CONFLICT":  ErrCodeConcurrencyConflict,
	"INVALID_INPUT":         ErrCodeInvalidInput,
	"INVALID_STATE":         ErrCodeInvalidState,
	"INSUFFICIENT_BALANCE":  ErrCodeInsufficientBalance,
	"BELOW_MINIMUM_PAYOUT":  ErrCodeBelowMinimumPayout,
	"PRICE_AT_MINIMUM":      ErrCodePriceAtMinimum,
	"PRICE_UNCHANGED":       ErrCodePriceUnchanged,
	"INVALID_CHANNEL":       ErrCodeInvalidChannel,
	"DUPLICATE_CHANNEL":     ErrCodeDuplicateChannel,
	"INVALID_TITLE":         ErrCodeInvalidInput,
	"INVALID_PRICE":         ErrCodeInvalidInput,
	"INVALID_MINIMUM_PRICE": ErrCodeInvalidInput,
	"INVALID_AMOUNT":        ErrCodeInvalidInput,
	"INVALID_FEES":          ErrCodeInvalidInput,
	"INVALID_SHIPPING":      ErrCodeInvalidInput,
	"INVALID_SELLER":        ErrCodeInvalidInput,
	"INVALID_LISTING":       ErrCodeInvalidInput,
	"INVALID_EXTERNAL_ID":   ErrCodeInvalidInput,
	"INVALID_REASON":        ErrCodeInvalidInput,
	"INVALID_DECAY_FACTOR":  ErrCodeInvalidInput,
	"INTERNAL_ERROR":        ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the standardized
// format. Codes already in the new format or unknown are returned as-is.
func NormalizeErrorCode(code string) string {
	if newCode, ok := domainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
