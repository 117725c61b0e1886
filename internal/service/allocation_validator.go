package service

import (
	"fmt"
	"math"
	"strings"

	"agroplan.io/agroplan/internal/domain"
	apperrors "agroplan.io/agroplan/internal/pkg/errors"
)

// AllocationResult is the outcome of a successful ValidateAllocation.
type AllocationResult struct {
	// Lines are the accepted allocation lines, in request order, with acres
	// rounded to hundredths.
	Lines            []domain.AllocationLine
	RequestedSum     float64
	AlreadyPlanned   float64
	RemainingAllowed float64
}

// ValidateAllocation checks requested crop lines against the land's
// remaining capacity.
//
// The land must be approved; otherwise the error is LAND_NOT_APPROVED and no
// quantity is computed. Lines with unreadable or non-positive acres are
// dropped, as are lines that round to zero at the stored precision of
// hundredths of an acre. The request fails with ALLOCATION_EXCEEDS_LAND when
// either the requested acres or their stored rounding exceed the land area
// minus alreadyPlanned.
func ValidateAllocation(land domain.Land, alreadyPlanned float64, lines []domain.AllocationLine) (AllocationResult, error) {
	if land.ApprovalStatus != domain.ApprovalApproved {
		return AllocationResult{}, apperrors.ErrLandNotApprovedf(land.ID)
	}

	accepted := make([]domain.AllocationLine, 0, len(lines))
	var fieldErrs []apperrors.FieldError
	var requested, stored float64
	for i, line := range lines {
		if line.Acres == nil || math.IsNaN(*line.Acres) || math.IsInf(*line.Acres, 0) {
			continue
		}
		raw := *line.Acres
		acres := roundTo(raw, 2)
		if acres <= 0 {
			continue
		}
		name := strings.TrimSpace(line.CropName)
		if name == "" {
			fieldErrs = append(fieldErrs, apperrors.FieldError{
				Field:   fmt.Sprintf("crops[%d].crop_name", i),
				Code:    "REQUIRED",
				Message: "crop_name is required",
			})
			continue
		}
		line.CropName = name
		line.Acres = &acres
		accepted = append(accepted, line)
		requested += raw
		stored += acres
	}
	if len(fieldErrs) > 0 {
		return AllocationResult{}, apperrors.BadRequest(apperrors.CodeValidationFailed, "invalid crop allocation").
			WithFieldErrors(fieldErrs)
	}

	remaining := land.LandArea - alreadyPlanned
	res := AllocationResult{
		Lines:            accepted,
		RequestedSum:     roundTo(stored, 2),
		AlreadyPlanned:   roundTo(alreadyPlanned, 2),
		RemainingAllowed: roundTo(remaining, 2),
	}
	switch {
	case requested > remaining+sumTolerance:
		return AllocationResult{}, apperrors.ErrAllocationExceedsLandf(res.RemainingAllowed, roundTo(requested, 6), res.AlreadyPlanned)
	case res.RequestedSum > res.RemainingAllowed:
		return AllocationResult{}, apperrors.ErrAllocationExceedsLandf(res.RemainingAllowed, res.RequestedSum, res.AlreadyPlanned)
	}
	return res, nil
}

// sumTolerance absorbs binary noise in sums such as 3.3+3.3+3.4.
const sumTolerance = 1e-9

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
