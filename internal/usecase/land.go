package usecase

import (
	"context"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"agroplan.io/agroplan/internal/domain"
	apperrors "agroplan.io/agroplan/internal/pkg/errors"
	"agroplan.io/agroplan/internal/pkg/logger"
	"agroplan.io/agroplan/internal/repository"
	"agroplan.io/agroplan/internal/service"
)

// ListLands returns the caller's lands, optionally only approved ones.
func (u *FarmerUseCase) ListLands(ctx context.Context, actor domain.Actor, onlyApproved bool) ([]domain.Land, error) {
	f, err := farmerForActor(ctx, u.queries, actor)
	if err != nil {
		return nil, err
	}
	lands, err := u.queries.ListLandsByFarmer(ctx, f.ID, onlyApproved)
	if err != nil {
		return nil, fmt.Errorf("list lands: %w", err)
	}
	return lands, nil
}

// GetLand returns one of the caller's lands.
func (u *FarmerUseCase) GetLand(ctx context.Context, actor domain.Actor, landID int64) (domain.Land, error) {
	f, err := farmerForActor(ctx, u.queries, actor)
	if err != nil {
		return domain.Land{}, err
	}
	l, err := u.queries.GetLandForFarmer(ctx, landID, f.ID)
	if repository.IsNotFound(err) {
		return domain.Land{}, apperrors.ErrLandNotFoundf(landID)
	}
	if err != nil {
		return domain.Land{}, fmt.Errorf("get land %d: %w", landID, err)
	}
	return l, nil
}

// CreateLand registers a pending land and recomputes the farmer's status.
// A status or remark in the input is ignored.
func (u *FarmerUseCase) CreateLand(ctx context.Context, actor domain.Actor, in domain.LandPatch) (domain.Land, error) {
	in.ApprovalStatus = nil
	in.AdminRemark = nil
	l := in.Apply(domain.Land{})
	if err := validateLand(l); err != nil {
		return domain.Land{}, err
	}

	var created domain.Land
	res, err := farmerScope(ctx, u.db, lockByAccount(actor.AccountID), func(q *repository.Queries, _ pgx.Tx, farmer domain.Farmer) error {
		l.FarmerID = farmer.ID
		var err error
		created, err = q.CreateLand(ctx, l)
		if err != nil {
			return fmt.Errorf("create land: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Land{}, err
	}

	u.audit.record(ctx, domain.EventLandCreated, created.ID, actorID(actor), created)
	u.audit.farmerStatusChanged(ctx, created.FarmerID, actorID(actor), res)
	return created, nil
}

// UpdateLand applies a farmer's partial edit. An approved land whose watched
// fields change goes back to pending. The patch may repeat the stored status
// but not change it; the remark is not watched and is taken as sent.
func (u *FarmerUseCase) UpdateLand(ctx context.Context, actor domain.Actor, landID int64, patch domain.LandPatch) (domain.Land, error) {
	var (
		previous domain.Land
		updated  domain.Land
		decision service.RevertDecision
	)
	res, err := farmerScope(ctx, u.db, lockByAccount(actor.AccountID), func(q *repository.Queries, _ pgx.Tx, farmer domain.Farmer) error {
		var err error
		previous, err = q.LockLandForFarmer(ctx, landID, farmer.ID)
		if repository.IsNotFound(err) {
			return apperrors.ErrLandNotFoundf(landID)
		}
		if err != nil {
			return fmt.Errorf("lock land %d: %w", landID, err)
		}
		if patch.ApprovalStatus != nil && *patch.ApprovalStatus != previous.ApprovalStatus {
			return apperrors.ErrInvalidRequestFieldf("approval_status")
		}

		next := patch.Apply(previous)
		if err := validateLand(next); err != nil {
			return err
		}
		decision = service.LandEditGuard.Evaluate(previous.WatchedFields(), next.WatchedFields(),
			previous.ApprovalStatus, patch.ApprovalStatus)
		decision.Apply(&next.ApprovalStatus, &next.AdminRemark)

		updated, err = q.UpdateLand(ctx, next)
		if err != nil {
			return fmt.Errorf("update land %d: %w", landID, err)
		}
		return nil
	})
	if err != nil {
		return domain.Land{}, err
	}

	if decision.Revert {
		logger.WithContext(ctx).Info("Approved land edited, reverted to pending",
			zap.Int64("land_id", landID),
			zap.Strings("changed", decision.Changed),
		)
		u.audit.record(ctx, domain.EventLandReverted, landID, actorID(actor), domain.ReviewPayload{
			FromStatus:    previous.ApprovalStatus,
			ToStatus:      updated.ApprovalStatus,
			ChangedFields: decision.Changed,
		})
	} else if len(decision.Changed) > 0 {
		u.audit.record(ctx, domain.EventLandUpdated, landID, actorID(actor), map[string]any{
			"changed_fields": decision.Changed,
		})
	}
	u.audit.farmerStatusChanged(ctx, updated.FarmerID, actorID(actor), res)
	return updated, nil
}

// DeleteLand removes one of the caller's lands and its crop plans.
func (u *FarmerUseCase) DeleteLand(ctx context.Context, actor domain.Actor, landID int64) error {
	var farmerID int64
	res, err := farmerScope(ctx, u.db, lockByAccount(actor.AccountID), func(q *repository.Queries, _ pgx.Tx, farmer domain.Farmer) error {
		farmerID = farmer.ID
		n, err := q.DeleteLand(ctx, landID, farmer.ID)
		if err != nil {
			return fmt.Errorf("delete land %d: %w", landID, err)
		}
		if n == 0 {
			return apperrors.ErrLandNotFoundf(landID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	u.audit.record(ctx, domain.EventLandDeleted, landID, actorID(actor), nil)
	u.audit.farmerStatusChanged(ctx, farmerID, actorID(actor), res)
	return nil
}

func validateLand(l domain.Land) error {
	var fieldErrs []apperrors.FieldError
	if math.IsNaN(l.LandArea) || math.IsInf(l.LandArea, 0) || l.LandArea < 0 {
		fieldErrs = append(fieldErrs, apperrors.FieldError{
			Field: "land_area", Code: "OUT_OF_RANGE", Message: "land_area must be zero or more",
		})
	}
	if l.Latitude != nil && (*l.Latitude < -90 || *l.Latitude > 90) {
		fieldErrs = append(fieldErrs, apperrors.FieldError{Field: "latitude", Code: "OUT_OF_RANGE"})
	}
	if l.Longitude != nil && (*l.Longitude < -180 || *l.Longitude > 180) {
		fieldErrs = append(fieldErrs, apperrors.FieldError{Field: "longitude", Code: "OUT_OF_RANGE"})
	}
	if len(fieldErrs) > 0 {
		return apperrors.BadRequest(apperrors.CodeValidationFailed, "invalid land").WithFieldErrors(fieldErrs)
	}
	return nil
}
