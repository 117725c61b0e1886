package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"agroplan.io/agroplan/internal/domain"
	apperrors "agroplan.io/agroplan/internal/pkg/errors"
	"agroplan.io/agroplan/internal/pkg/logger"
	"agroplan.io/agroplan/internal/repository"
	"agroplan.io/agroplan/internal/service"
	"agroplan.io/agroplan/internal/yield"
)

// ListCropPlans returns the caller's plans with their allocations.
func (u *FarmerUseCase) ListCropPlans(ctx context.Context, actor domain.Actor) ([]domain.CropPlan, error) {
	f, err := farmerForActor(ctx, u.queries, actor)
	if err != nil {
		return nil, err
	}
	plans, err := u.queries.ListCropPlansByFarmer(ctx, f.ID)
	if err != nil {
		return nil, fmt.Errorf("list crop plans: %w", err)
	}
	return plans, nil
}

// GetCropPlan returns one of the caller's plans with its allocations.
func (u *FarmerUseCase) GetCropPlan(ctx context.Context, actor domain.Actor, planID int64) (domain.CropPlan, error) {
	f, err := farmerForActor(ctx, u.queries, actor)
	if err != nil {
		return domain.CropPlan{}, err
	}
	p, err := u.queries.GetCropPlanForFarmer(ctx, planID, f.ID)
	if repository.IsNotFound(err) {
		return domain.CropPlan{}, apperrors.ErrCropPlanNotFoundf(planID)
	}
	if err != nil {
		return domain.CropPlan{}, fmt.Errorf("get crop plan %d: %w", planID, err)
	}
	if p.Crops, err = u.queries.ListAllocations(ctx, []int64{p.ID}); err != nil {
		return domain.CropPlan{}, fmt.Errorf("list allocations of plan %d: %w", p.ID, err)
	}
	return p, nil
}

// CreateCropPlan validates the requested crops against the land's remaining
// area and stores a pending plan. Missing per-acre yields are estimated
// before the transaction starts.
func (u *FarmerUseCase) CreateCropPlan(ctx context.Context, actor domain.Actor, in domain.CropPlanInput) (domain.CropPlan, error) {
	if in.LandID <= 0 {
		return domain.CropPlan{}, apperrors.BadRequest(apperrors.CodeLandIDRequired, "land_id is required")
	}
	f, err := farmerForActor(ctx, u.queries, actor)
	if err != nil {
		return domain.CropPlan{}, err
	}
	land, err := u.queries.GetLandForFarmer(ctx, in.LandID, f.ID)
	if repository.IsNotFound(err) {
		return domain.CropPlan{}, apperrors.ErrLandNotFoundf(in.LandID)
	}
	if err != nil {
		return domain.CropPlan{}, fmt.Errorf("get land %d: %w", in.LandID, err)
	}
	if land.ApprovalStatus != domain.ApprovalApproved {
		return domain.CropPlan{}, apperrors.ErrLandNotApprovedf(land.ID)
	}

	plan := domain.CropPlan{
		LandID:         land.ID,
		FarmerID:       f.ID,
		SoilType:       in.SoilType,
		Season:         in.Season,
		IrrigationType: in.IrrigationType,
		Notes:          in.Notes,
	}
	lines := append([]domain.AllocationLine(nil), in.Crops...)
	if err := u.fillEstimates(ctx, land, plan, lines); err != nil {
		return domain.CropPlan{}, err
	}

	var alloc service.AllocationResult
	err = inTx(ctx, u.db, func(q *repository.Queries, _ pgx.Tx) error {
		locked, err := q.LockLandForFarmer(ctx, land.ID, f.ID)
		if repository.IsNotFound(err) {
			return apperrors.ErrLandNotFoundf(land.ID)
		}
		if err != nil {
			return fmt.Errorf("lock land %d: %w", land.ID, err)
		}
		planned, err := q.SumPlannedAcres(ctx, f.ID, land.ID, 0)
		if err != nil {
			return fmt.Errorf("sum planned acres: %w", err)
		}
		alloc, err = service.ValidateAllocation(locked, planned, lines)
		if err != nil {
			return err
		}

		plan.TotalAcresAllocated = alloc.RequestedSum
		if plan, err = q.CreateCropPlan(ctx, plan); err != nil {
			return fmt.Errorf("create crop plan: %w", err)
		}
		if plan.Crops, err = q.InsertAllocations(ctx, plan.ID, alloc.Lines); err != nil {
			return fmt.Errorf("insert allocations: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.CropPlan{}, err
	}

	logger.WithContext(ctx).Info("Crop plan created",
		zap.Int64("crop_plan_id", plan.ID),
		zap.Int64("land_id", plan.LandID),
		zap.Float64("acres", alloc.RequestedSum),
		zap.Float64("remaining", alloc.RemainingAllowed-alloc.RequestedSum),
	)
	u.audit.record(ctx, domain.EventCropPlanCreated, plan.ID, actorID(actor), plan)
	return plan, nil
}

// UpdateCropPlan applies a farmer's partial edit. A non-nil Crops replaces the
// allocations and is checked against the land's area minus the farmer's
// other plans.
func (u *FarmerUseCase) UpdateCropPlan(ctx context.Context, actor domain.Actor, planID int64, patch domain.CropPlanPatch) (domain.CropPlan, error) {
	f, err := farmerForActor(ctx, u.queries, actor)
	if err != nil {
		return domain.CropPlan{}, err
	}

	var lines []domain.AllocationLine
	if patch.Crops != nil {
		current, err := u.queries.GetCropPlanForFarmer(ctx, planID, f.ID)
		if repository.IsNotFound(err) {
			return domain.CropPlan{}, apperrors.ErrCropPlanNotFoundf(planID)
		}
		if err != nil {
			return domain.CropPlan{}, fmt.Errorf("get crop plan %d: %w", planID, err)
		}
		land, err := u.queries.GetLandForFarmer(ctx, current.LandID, f.ID)
		if err != nil {
			return domain.CropPlan{}, fmt.Errorf("get land %d: %w", current.LandID, err)
		}
		lines = append(lines, (*patch.Crops)...)
		if err := u.fillEstimates(ctx, land, patch.Apply(current), lines); err != nil {
			return domain.CropPlan{}, err
		}
	}

	var (
		previous domain.CropPlan
		updated  domain.CropPlan
		decision service.RevertDecision
	)
	err = inTx(ctx, u.db, func(q *repository.Queries, _ pgx.Tx) error {
		// Land before plan: DeleteLand takes the same order through its cascade.
		current, err := q.GetCropPlanForFarmer(ctx, planID, f.ID)
		if repository.IsNotFound(err) {
			return apperrors.ErrCropPlanNotFoundf(planID)
		}
		if err != nil {
			return fmt.Errorf("get crop plan %d: %w", planID, err)
		}
		land, err := q.LockLandForFarmer(ctx, current.LandID, f.ID)
		if repository.IsNotFound(err) {
			return apperrors.ErrCropPlanNotFoundf(planID)
		}
		if err != nil {
			return fmt.Errorf("lock land %d: %w", current.LandID, err)
		}
		previous, err = q.LockCropPlanForFarmer(ctx, planID, f.ID)
		if repository.IsNotFound(err) {
			return apperrors.ErrCropPlanNotFoundf(planID)
		}
		if err != nil {
			return fmt.Errorf("lock crop plan %d: %w", planID, err)
		}
		if patch.ApprovalStatus != nil && *patch.ApprovalStatus != previous.ApprovalStatus {
			return apperrors.ErrInvalidRequestFieldf("approval_status")
		}

		next := patch.Apply(previous)
		var alloc service.AllocationResult
		if patch.Crops != nil {
			others, err := q.SumPlannedAcres(ctx, f.ID, land.ID, planID)
			if err != nil {
				return fmt.Errorf("sum planned acres: %w", err)
			}
			if alloc, err = service.ValidateAllocation(land, others, lines); err != nil {
				return err
			}
			next.TotalAcresAllocated = alloc.RequestedSum
		}

		decision = service.CropPlanEditGuard.Evaluate(previous.WatchedFields(), next.WatchedFields(),
			previous.ApprovalStatus, patch.ApprovalStatus)
		decision.Apply(&next.ApprovalStatus, &next.AdminRemark)

		if updated, err = q.UpdateCropPlan(ctx, next); err != nil {
			return fmt.Errorf("update crop plan %d: %w", planID, err)
		}
		if patch.Crops == nil {
			updated.Crops, err = q.ListAllocations(ctx, []int64{planID})
			return err
		}
		if err := q.DeleteAllocations(ctx, planID); err != nil {
			return fmt.Errorf("delete allocations of plan %d: %w", planID, err)
		}
		if updated.Crops, err = q.InsertAllocations(ctx, planID, alloc.Lines); err != nil {
			return fmt.Errorf("insert allocations of plan %d: %w", planID, err)
		}
		return nil
	})
	if err != nil {
		return domain.CropPlan{}, err
	}

	if decision.Revert {
		logger.WithContext(ctx).Info("Approved crop plan edited, reverted to pending",
			zap.Int64("crop_plan_id", planID),
			zap.Strings("changed", decision.Changed),
		)
		u.audit.record(ctx, domain.EventCropPlanReverted, planID, actorID(actor), domain.ReviewPayload{
			FromStatus:    previous.ApprovalStatus,
			ToStatus:      updated.ApprovalStatus,
			ChangedFields: decision.Changed,
		})
	} else if len(decision.Changed) > 0 || patch.Crops != nil {
		u.audit.record(ctx, domain.EventCropPlanUpdated, planID, actorID(actor), map[string]any{
			"changed_fields": decision.Changed,
			"crops_replaced": patch.Crops != nil,
		})
	}
	return updated, nil
}

// DeleteCropPlan removes one of the caller's plans.
func (u *FarmerUseCase) DeleteCropPlan(ctx context.Context, actor domain.Actor, planID int64) error {
	f, err := farmerForActor(ctx, u.queries, actor)
	if err != nil {
		return err
	}
	n, err := u.queries.DeleteCropPlan(ctx, planID, f.ID)
	if err != nil {
		return fmt.Errorf("delete crop plan %d: %w", planID, err)
	}
	if n == 0 {
		return apperrors.ErrCropPlanNotFoundf(planID)
	}
	u.audit.record(ctx, domain.EventCropPlanDeleted, planID, actorID(actor), nil)
	return nil
}

// fillEstimates sets ExpectedYieldPerAcre on lines that lack one. Lines that
// validation will drop are skipped. Estimates run concurrently on the estimate
// pool; the estimator never fails, so neither does a line.
func (u *FarmerUseCase) fillEstimates(ctx context.Context, land domain.Land, plan domain.CropPlan, lines []domain.AllocationLine) error {
	var pending []int
	for i, line := range lines {
		if line.ExpectedYieldPerAcre != nil || line.Acres == nil || *line.Acres <= 0 {
			continue
		}
		if strings.TrimSpace(line.CropName) == "" {
			continue
		}
		pending = append(pending, i)
	}
	if len(pending) == 0 {
		return nil
	}

	soil := firstNonBlank(plan.SoilType, land.SoilType)
	irrigation := firstNonBlank(plan.IrrigationType, land.IrrigationType)
	estimate := func(ctx context.Context, n int) {
		idx := pending[n]
		perAcre, _ := u.estimator.YieldPerAcre(ctx, yield.Request{
			Crop:           strings.TrimSpace(lines[idx].CropName),
			Acres:          *lines[idx].Acres,
			SoilType:       soil,
			Season:         plan.Season,
			IrrigationType: irrigation,
			District:       land.District,
			State:          land.State,
		})
		lines[idx].ExpectedYieldPerAcre = &perAcre
	}

	if u.pools == nil {
		for n := range pending {
			estimate(ctx, n)
		}
		return nil
	}
	if err := u.pools.Estimate.RunEach(ctx, len(pending), estimate); err != nil {
		return fmt.Errorf("estimate yields: %w", err)
	}
	return ctx.Err()
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
