package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"agroplan.io/agroplan/internal/domain"
	apperrors "agroplan.io/agroplan/internal/pkg/errors"
)

func acres(v float64) *float64 { return &v }

func line(name string, v *float64) domain.AllocationLine {
	return domain.AllocationLine{CropName: name, Acres: v}
}

func land(area float64, status domain.ApprovalStatus) domain.Land {
	return domain.Land{ID: 3, LandArea: area, ApprovalStatus: status}
}

func TestValidateAllocation_Boundary(t *testing.T) {
	res, err := ValidateAllocation(land(10, domain.ApprovalApproved), 0,
		[]domain.AllocationLine{line("Ragi", acres(10))})
	require.NoError(t, err)
	require.Equal(t, 10.0, res.RequestedSum)
	require.Equal(t, 10.0, res.RemainingAllowed)

	_, err = ValidateAllocation(land(10, domain.ApprovalApproved), 0,
		[]domain.AllocationLine{line("Ragi", acres(10.01))})
	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	require.Equal(t, apperrors.CodeAllocationExceedsLand, appErr.Code)
	require.Equal(t, 10.0, appErr.Params["allowed_remaining"])
	require.Equal(t, 10.01, appErr.Params["requested"])
	require.Equal(t, 0.0, appErr.Params["already_planned"])
}

func TestValidateAllocation_ComparesUnroundedAcres(t *testing.T) {
	tests := []struct {
		name      string
		lines     []domain.AllocationLine
		requested float64
	}{
		{"single line over by a fraction", []domain.AllocationLine{line("Ragi", acres(10.004))}, 10.004},
		{"lines over only before rounding", []domain.AllocationLine{
			line("Ragi", acres(5.002)), line("Tur", acres(5.002)),
		}, 10.004},
		{"lines over only after rounding", []domain.AllocationLine{
			line("Ragi", acres(2.006)), line("Tur", acres(2.006)), line("Maize", acres(5.988)),
		}, 10.01},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateAllocation(land(10, domain.ApprovalApproved), 0, tc.lines)
			appErr, ok := apperrors.IsAppError(err)
			require.True(t, ok)
			require.Equal(t, apperrors.CodeAllocationExceedsLand, appErr.Code)
			require.InDelta(t, tc.requested, appErr.Params["requested"], 1e-9)
		})
	}

	res, err := ValidateAllocation(land(10, domain.ApprovalApproved), 0,
		[]domain.AllocationLine{line("Ragi", acres(9.996))})
	require.NoError(t, err)
	require.Equal(t, 10.0, res.RequestedSum)
}

func TestValidateAllocation_AccountsForPriorPlans(t *testing.T) {
	_, err := ValidateAllocation(land(10, domain.ApprovalApproved), 6.5,
		[]domain.AllocationLine{line("Paddy", acres(2)), line("Tur", acres(2))})

	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	require.Equal(t, 3.5, appErr.Params["allowed_remaining"])
	require.Equal(t, 4.0, appErr.Params["requested"])
	require.Equal(t, 6.5, appErr.Params["already_planned"])
}

func TestValidateAllocation_UnapprovedLandRejectedFirst(t *testing.T) {
	for _, status := range []domain.ApprovalStatus{domain.ApprovalPending, domain.ApprovalRejected} {
		t.Run(string(status), func(t *testing.T) {
			// Would also exceed capacity; the approval check must win.
			_, err := ValidateAllocation(land(1, status), 50,
				[]domain.AllocationLine{line("Ragi", acres(100))})
			require.True(t, apperrors.HasCode(err, apperrors.CodeLandNotApproved))
		})
	}
}

func TestValidateAllocation_DropsUnusableLines(t *testing.T) {
	lines := []domain.AllocationLine{
		line("Ragi", acres(1.5)),
		line("Maize", nil),
		line("Paddy", acres(0)),
		line("Tur", acres(-2)),
		line("Onion", acres(math.NaN())),
		line("Beans", acres(0.001)),
		line("  Cowpea ", acres(0.5)),
	}

	res, err := ValidateAllocation(land(3, domain.ApprovalApproved), 0, lines)
	require.NoError(t, err)
	require.Len(t, res.Lines, 2)
	require.Equal(t, "Ragi", res.Lines[0].CropName)
	require.Equal(t, "Cowpea", res.Lines[1].CropName)
	require.Equal(t, 2.0, res.RequestedSum)
}

func TestValidateAllocation_FloatNoiseDoesNotReject(t *testing.T) {
	lines := []domain.AllocationLine{
		line("Ragi", acres(3.3)),
		line("Ragi", acres(3.3)),
		line("Ragi", acres(3.4)),
	}
	res, err := ValidateAllocation(land(10, domain.ApprovalApproved), 0, lines)
	require.NoError(t, err)
	require.Equal(t, 10.0, res.RequestedSum)
}

func TestValidateAllocation_BlankCropNameIsValidationError(t *testing.T) {
	_, err := ValidateAllocation(land(10, domain.ApprovalApproved), 0,
		[]domain.AllocationLine{line("Ragi", acres(1)), line(" ", acres(2))})

	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	require.Equal(t, apperrors.CodeValidationFailed, appErr.Code)
	require.Len(t, appErr.FieldErrors, 1)
	require.Equal(t, "crops[1].crop_name", appErr.FieldErrors[0].Field)
}

func TestValidateAllocation_EmptyRequestIsAccepted(t *testing.T) {
	res, err := ValidateAllocation(land(10, domain.ApprovalApproved), 10, nil)
	require.NoError(t, err)
	require.Zero(t, res.RequestedSum)
	require.Empty(t, res.Lines)
}
