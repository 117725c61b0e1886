package errors

import (
	"fmt"
	"net/http"
)

// Error codes are stable identifiers; clients key their messages off them.

// Request validation codes.
const (
	CodeValidationFailed    = "VALIDATION_FAILED"
	CodeInvalidRequestField = "INVALID_REQUEST_FIELD"
	CodeLandIDRequired      = "LAND_ID_REQUIRED"
	CodeOpenAPIInvalid      = "OPENAPI_REQUEST_INVALID"
	CodeOpenAPIRoute        = "OPENAPI_ROUTE_INVALID"

	// CodeOpenAPIResponse marks a handler response that broke the contract.
	CodeOpenAPIResponse = "OPENAPI_RESPONSE_INVALID"
)

// Farmer and land codes.
const (
	CodeFarmerNotFound          = "FARMER_NOT_FOUND"
	CodeFarmerAlreadyRegistered = "FARMER_ALREADY_REGISTERED"
	CodeLandNotFound            = "LAND_NOT_FOUND"
)

// Crop plan and allocation codes.
const (
	CodeCropPlanNotFound      = "CROP_PLAN_NOT_FOUND"
	CodeLandNotApproved       = "LAND_NOT_APPROVED"
	CodeAllocationExceedsLand = "ALLOCATION_EXCEEDS_LAND"
)

// Yield configuration codes.
const (
	CodeYieldConfigNotFound = "YIELD_CONFIG_NOT_FOUND"
	CodeYieldConfigConflict = "YIELD_CONFIG_CONFLICT"
	CodeSpreadsheetInvalid  = "SPREADSHEET_INVALID"
)

// Notification codes.
const (
	CodeNotificationNotFound = "NOTIFICATION_NOT_FOUND"
)

// Auth and generic codes.
const (
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeInternal     = "INTERNAL_ERROR"
)

// ErrInvalidRequestFieldf rejects a request that tries to set a field the
// caller does not own, such as a farmer proposing a different approval status.
func ErrInvalidRequestFieldf(fieldName string) *AppError {
	return &AppError{
		Code:       CodeInvalidRequestField,
		Message:    "request contains forbidden field: " + fieldName,
		HTTPStatus: http.StatusBadRequest,
		Params:     map[string]interface{}{"field": fieldName},
	}
}

// ErrLandNotApprovedf is returned when crops are planned against a land that
// an administrator has not approved.
func ErrLandNotApprovedf(landID int64) *AppError {
	return &AppError{
		Code:       CodeLandNotApproved,
		Message:    "Land not approved yet",
		HTTPStatus: http.StatusForbidden,
		Params:     map[string]interface{}{"land_id": landID},
	}
}

// ErrAllocationExceedsLandf reports a capacity violation together with the
// three quantities the client needs to explain it.
func ErrAllocationExceedsLandf(allowedRemaining, requested, alreadyPlanned float64) *AppError {
	return &AppError{
		Code:       CodeAllocationExceedsLand,
		Message:    "Total crop allocation exceeds limit",
		HTTPStatus: http.StatusBadRequest,
		Params: map[string]interface{}{
			"allowed_remaining": allowedRemaining,
			"requested":         requested,
			"already_planned":   alreadyPlanned,
		},
	}
}

// ErrLandNotFoundf reports a land id that does not exist for the caller.
func ErrLandNotFoundf(landID int64) *AppError {
	return &AppError{
		Code:       CodeLandNotFound,
		Message:    fmt.Sprintf("land %d not found", landID),
		HTTPStatus: http.StatusNotFound,
	}
}

// ErrCropPlanNotFoundf reports a crop plan id that does not exist for the caller.
func ErrCropPlanNotFoundf(planID int64) *AppError {
	return &AppError{
		Code:       CodeCropPlanNotFound,
		Message:    fmt.Sprintf("crop plan %d not found", planID),
		HTTPStatus: http.StatusNotFound,
	}
}

// ErrFarmerNotFound is returned when the calling account has no farmer profile.
func ErrFarmerNotFound() *AppError {
	return &AppError{
		Code:       CodeFarmerNotFound,
		Message:    "farmer profile not registered",
		HTTPStatus: http.StatusNotFound,
	}
}
