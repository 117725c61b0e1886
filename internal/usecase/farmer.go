package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"agroplan.io/agroplan/internal/domain"
	"agroplan.io/agroplan/internal/governance/audit"
	apperrors "agroplan.io/agroplan/internal/pkg/errors"
	"agroplan.io/agroplan/internal/pkg/logger"
	"agroplan.io/agroplan/internal/pkg/worker"
	"agroplan.io/agroplan/internal/repository"
	"agroplan.io/agroplan/internal/yield"
)

// FarmerUseCase serves the farmer-facing endpoints: profile, lands, crop plans
// and the inbox. Every method acts on the farmer owned by the actor.
type FarmerUseCase struct {
	db        TxBeginner
	queries   *repository.Queries
	estimator *yield.Estimator
	pools     *worker.Pools
	audit     auditTrail
}

// NewFarmerUseCase wires the farmer use cases. pools may be nil, in which
// case estimates and audit writes run on the calling goroutine.
func NewFarmerUseCase(db TxBeginner, estimator *yield.Estimator, auditLogger *audit.Logger, pools *worker.Pools) *FarmerUseCase {
	if estimator == nil {
		estimator = yield.NewEstimator(nil, nil, nil)
	}
	return &FarmerUseCase{
		db:        db,
		queries:   repository.New(db),
		estimator: estimator,
		pools:     pools,
		audit:     auditTrail{logger: auditLogger, pools: pools},
	}
}

// RegisterProfile creates the farmer profile of the calling account.
func (u *FarmerUseCase) RegisterProfile(ctx context.Context, actor domain.Actor, in domain.FarmerProfile) (domain.Farmer, error) {
	f := in.Apply(domain.Farmer{AccountID: actor.AccountID})
	f.Name = strings.TrimSpace(f.Name)
	if f.Name == "" {
		return domain.Farmer{}, apperrors.BadRequest(apperrors.CodeValidationFailed, "name is required").
			WithFieldErrors([]apperrors.FieldError{{Field: "name", Code: "REQUIRED"}})
	}

	created, err := u.queries.CreateFarmer(ctx, f)
	if repository.IsUniqueViolation(err) {
		return domain.Farmer{}, apperrors.Conflict(apperrors.CodeFarmerAlreadyRegistered, "farmer profile already registered")
	}
	if err != nil {
		return domain.Farmer{}, fmt.Errorf("create farmer: %w", err)
	}
	logger.WithContext(ctx).Info("Farmer registered",
		zap.Int64("farmer_id", created.ID),
		zap.Int64("account_id", actor.AccountID),
	)
	return created, nil
}

// GetProfile returns the caller's profile with its derived approval status.
func (u *FarmerUseCase) GetProfile(ctx context.Context, actor domain.Actor) (domain.Farmer, error) {
	return farmerForActor(ctx, u.queries, actor)
}

// UpdateProfile edits the profile fields. The approval status is derived and
// cannot be written here.
func (u *FarmerUseCase) UpdateProfile(ctx context.Context, actor domain.Actor, patch domain.FarmerProfile) (domain.Farmer, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return domain.Farmer{}, apperrors.BadRequest(apperrors.CodeValidationFailed, "name must not be empty").
			WithFieldErrors([]apperrors.FieldError{{Field: "name", Code: "REQUIRED"}})
	}
	f, err := farmerForActor(ctx, u.queries, actor)
	if err != nil {
		return domain.Farmer{}, err
	}
	updated, err := u.queries.UpdateFarmerProfile(ctx, patch.Apply(f))
	if err != nil {
		return domain.Farmer{}, fmt.Errorf("update farmer %d: %w", f.ID, err)
	}
	return updated, nil
}

// ListNotifications returns the caller's newest notifications.
func (u *FarmerUseCase) ListNotifications(ctx context.Context, actor domain.Actor, unreadOnly bool, limit int) ([]domain.Notification, error) {
	f, err := farmerForActor(ctx, u.queries, actor)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > maxNotificationPage {
		limit = maxNotificationPage
	}
	out, err := u.queries.ListNotifications(ctx, f.ID, unreadOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return out, nil
}

const maxNotificationPage = 100

// MarkNotificationRead marks one of the caller's notifications read.
func (u *FarmerUseCase) MarkNotificationRead(ctx context.Context, actor domain.Actor, id int64) error {
	f, err := farmerForActor(ctx, u.queries, actor)
	if err != nil {
		return err
	}
	n, err := u.queries.MarkNotificationRead(ctx, id, f.ID)
	if err != nil {
		return fmt.Errorf("mark notification %d read: %w", id, err)
	}
	if n == 0 {
		return apperrors.NotFound(apperrors.CodeNotificationNotFound, fmt.Sprintf("notification %d not found", id))
	}
	return nil
}
