package usecase

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"agroplan.io/agroplan/internal/domain"
	"agroplan.io/agroplan/internal/governance/audit"
	"agroplan.io/agroplan/internal/jobs"
	"agroplan.io/agroplan/internal/notification"
	apperrors "agroplan.io/agroplan/internal/pkg/errors"
	"agroplan.io/agroplan/internal/pkg/logger"
	"agroplan.io/agroplan/internal/pkg/worker"
	"agroplan.io/agroplan/internal/repository"
	"agroplan.io/agroplan/internal/service"
)

// ReviewUseCase serves the administrator endpoints. A decision, the farmer
// recompute and the notification job commit together in one pgx.Tx.
type ReviewUseCase struct {
	db      TxBeginner
	jobs    JobInserter
	queries *repository.Queries
	audit   auditTrail
}

// NewReviewUseCase wires the review use cases.
func NewReviewUseCase(db TxBeginner, jobInserter JobInserter, auditLogger *audit.Logger, pools *worker.Pools) *ReviewUseCase {
	return &ReviewUseCase{
		db:      db,
		jobs:    jobInserter,
		queries: repository.New(db),
		audit:   auditTrail{logger: auditLogger, pools: pools},
	}
}

// ReviewOutcome is the state of the entity after a decision.
type ReviewOutcome struct {
	ApprovalStatus domain.ApprovalStatus `json:"approval_status"`
	AdminRemark    string                `json:"admin_remark"`
}

// ListLands returns lands in the given status with their owners.
func (u *ReviewUseCase) ListLands(ctx context.Context, filter domain.StatusFilter) ([]domain.LandReview, error) {
	out, err := u.queries.ListLandReviews(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list land reviews: %w", err)
	}
	return out, nil
}

// ListCropPlans returns plans in the given status with their owners.
func (u *ReviewUseCase) ListCropPlans(ctx context.Context, filter domain.StatusFilter) ([]domain.CropPlanReview, error) {
	out, err := u.queries.ListCropPlanReviews(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list crop plan reviews: %w", err)
	}
	return out, nil
}

// ListFarmers returns farmers in the given derived status.
func (u *ReviewUseCase) ListFarmers(ctx context.Context, filter domain.StatusFilter) ([]domain.Farmer, error) {
	out, err := u.queries.ListFarmers(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list farmers: %w", err)
	}
	return out, nil
}

// ListOverruns returns lands whose planned acres exceed their area.
func (u *ReviewUseCase) ListOverruns(ctx context.Context) ([]domain.AllocationOverrun, error) {
	out, err := u.queries.ListAllocationOverruns(ctx)
	if err != nil {
		return nil, fmt.Errorf("list allocation overruns: %w", err)
	}
	return out, nil
}

// DecideLand records an administrator's decision on a land, recomputes the
// owner's status and enqueues the owner's notification.
func (u *ReviewUseCase) DecideLand(ctx context.Context, actor domain.Actor, landID int64, d domain.Decision) (ReviewOutcome, error) {
	if err := u.validateDecision(actor, d); err != nil {
		return ReviewOutcome{}, err
	}
	land, err := u.queries.GetLand(ctx, landID)
	if repository.IsNotFound(err) {
		return ReviewOutcome{}, apperrors.ErrLandNotFoundf(landID)
	}
	if err != nil {
		return ReviewOutcome{}, fmt.Errorf("get land %d: %w", landID, err)
	}

	var previous, updated domain.Land
	res, err := farmerScope(ctx, u.db, lockByID(land.FarmerID), func(q *repository.Queries, tx pgx.Tx, _ domain.Farmer) error {
		var err error
		previous, err = q.LockLand(ctx, landID)
		if repository.IsNotFound(err) {
			return apperrors.ErrLandNotFoundf(landID)
		}
		if err != nil {
			return fmt.Errorf("lock land %d: %w", landID, err)
		}

		next := previous
		if s := d.Requested(); s != nil {
			next.ApprovalStatus = *s
		}
		if d.Remark != nil {
			next.AdminRemark = *d.Remark
		}
		service.LandEditGuard.Evaluate(previous.WatchedFields(), next.WatchedFields(),
			previous.ApprovalStatus, d.Requested()).Apply(&next.ApprovalStatus, &next.AdminRemark)

		if updated, err = q.UpdateLand(ctx, next); err != nil {
			return fmt.Errorf("update land %d: %w", landID, err)
		}
		if _, err := u.jobs.InsertTx(ctx, tx, jobs.ApprovalNotificationArgs{
			FarmerID:   updated.FarmerID,
			EntityType: notification.EntityLand,
			EntityID:   updated.ID,
			Status:     updated.ApprovalStatus,
			Remark:     updated.AdminRemark,
		}, nil); err != nil {
			return fmt.Errorf("enqueue approval_notification for land %d: %w", landID, err)
		}
		return nil
	})
	if err != nil {
		return ReviewOutcome{}, err
	}

	logger.WithContext(ctx).Info("Land reviewed",
		zap.Int64("land_id", landID),
		zap.String("from", string(previous.ApprovalStatus)),
		zap.String("to", string(updated.ApprovalStatus)),
		zap.Int64("admin_account_id", actor.AccountID),
	)
	u.audit.record(ctx, domain.EventLandReviewed, landID, actorID(actor), domain.ReviewPayload{
		FromStatus: previous.ApprovalStatus,
		ToStatus:   updated.ApprovalStatus,
		Remark:     updated.AdminRemark,
	})
	u.audit.farmerStatusChanged(ctx, updated.FarmerID, actorID(actor), res)
	return ReviewOutcome{ApprovalStatus: updated.ApprovalStatus, AdminRemark: updated.AdminRemark}, nil
}

// DecideCropPlan records an administrator's decision on a crop plan and
// enqueues the owner's notification. Plan decisions do not affect the
// farmer's status.
func (u *ReviewUseCase) DecideCropPlan(ctx context.Context, actor domain.Actor, planID int64, d domain.Decision) (ReviewOutcome, error) {
	if err := u.validateDecision(actor, d); err != nil {
		return ReviewOutcome{}, err
	}

	var previous, updated domain.CropPlan
	err := inTx(ctx, u.db, func(q *repository.Queries, tx pgx.Tx) error {
		var err error
		previous, err = q.LockCropPlan(ctx, planID)
		if repository.IsNotFound(err) {
			return apperrors.ErrCropPlanNotFoundf(planID)
		}
		if err != nil {
			return fmt.Errorf("lock crop plan %d: %w", planID, err)
		}

		next := previous
		if s := d.Requested(); s != nil {
			next.ApprovalStatus = *s
		}
		if d.Remark != nil {
			next.AdminRemark = *d.Remark
		}
		service.CropPlanEditGuard.Evaluate(previous.WatchedFields(), next.WatchedFields(),
			previous.ApprovalStatus, d.Requested()).Apply(&next.ApprovalStatus, &next.AdminRemark)

		if updated, err = q.UpdateCropPlan(ctx, next); err != nil {
			return fmt.Errorf("update crop plan %d: %w", planID, err)
		}
		if _, err := u.jobs.InsertTx(ctx, tx, jobs.ApprovalNotificationArgs{
			FarmerID:   updated.FarmerID,
			EntityType: notification.EntityCropPlan,
			EntityID:   updated.ID,
			Status:     updated.ApprovalStatus,
			Remark:     updated.AdminRemark,
		}, nil); err != nil {
			return fmt.Errorf("enqueue approval_notification for crop plan %d: %w", planID, err)
		}
		return nil
	})
	if err != nil {
		return ReviewOutcome{}, err
	}

	logger.WithContext(ctx).Info("Crop plan reviewed",
		zap.Int64("crop_plan_id", planID),
		zap.String("from", string(previous.ApprovalStatus)),
		zap.String("to", string(updated.ApprovalStatus)),
		zap.Int64("admin_account_id", actor.AccountID),
	)
	u.audit.record(ctx, domain.EventCropPlanReviewed, planID, actorID(actor), domain.ReviewPayload{
		FromStatus: previous.ApprovalStatus,
		ToStatus:   updated.ApprovalStatus,
		Remark:     updated.AdminRemark,
	})
	return ReviewOutcome{ApprovalStatus: updated.ApprovalStatus, AdminRemark: updated.AdminRemark}, nil
}

func (u *ReviewUseCase) validateDecision(actor domain.Actor, d domain.Decision) error {
	if u.db == nil || u.jobs == nil || u.queries == nil {
		return fmt.Errorf("review use case is not initialized")
	}
	if !actor.IsAdmin() {
		return apperrors.Forbidden(apperrors.CodeForbidden, "admin role required")
	}
	if d.Status != "" && !d.Status.Valid() {
		return apperrors.BadRequest(apperrors.CodeValidationFailed, "approval_status must be pending, approved or rejected").
			WithFieldErrors([]apperrors.FieldError{{Field: "approval_status", Code: "INVALID_VALUE"}})
	}
	return nil
}
