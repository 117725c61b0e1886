package service

import (
	"context"
	"fmt"

	"agroplan.io/agroplan/internal/domain"
)

// AggregateApproval derives a farmer's status from the statuses of the
// farmer's lands. Precedence is fixed: any pending land makes the farmer
// pending; only a unanimous approval approves; every other mix rejects. A
// farmer without lands keeps prior.
func AggregateApproval(prior domain.ApprovalStatus, statuses []domain.ApprovalStatus) domain.ApprovalStatus {
	if len(statuses) == 0 {
		return prior
	}
	allApproved := true
	for _, s := range statuses {
		switch s {
		case domain.ApprovalPending:
			return domain.ApprovalPending
		case domain.ApprovalApproved:
		default:
			allApproved = false
		}
	}
	if allApproved {
		return domain.ApprovalApproved
	}
	return domain.ApprovalRejected
}

// FarmerStatusStore is the slice of the repository the aggregator needs. It
// must be bound to the transaction that wrote the land change.
type FarmerStatusStore interface {
	GetFarmerApprovalStatus(ctx context.Context, farmerID int64) (domain.ApprovalStatus, error)
	ListLandStatusesByFarmer(ctx context.Context, farmerID int64) ([]domain.ApprovalStatus, error)
	SetFarmerApprovalStatus(ctx context.Context, farmerID int64, status domain.ApprovalStatus) error
}

// AggregateResult reports a recomputation.
type AggregateResult struct {
	Previous domain.ApprovalStatus
	Current  domain.ApprovalStatus
}

// Changed reports whether the farmer's status moved.
func (r AggregateResult) Changed() bool {
	return r.Previous != r.Current
}

// ApprovalAggregator keeps Farmer.approval_status equal to the aggregate of
// the farmer's lands.
type ApprovalAggregator struct{}

// Recompute reloads the farmer's land statuses through store and persists the
// aggregate when it differs from the stored value.
func (ApprovalAggregator) Recompute(ctx context.Context, store FarmerStatusStore, farmerID int64) (AggregateResult, error) {
	prior, err := store.GetFarmerApprovalStatus(ctx, farmerID)
	if err != nil {
		return AggregateResult{}, fmt.Errorf("load farmer %d status: %w", farmerID, err)
	}
	statuses, err := store.ListLandStatusesByFarmer(ctx, farmerID)
	if err != nil {
		return AggregateResult{}, fmt.Errorf("load land statuses for farmer %d: %w", farmerID, err)
	}

	res := AggregateResult{Previous: prior, Current: AggregateApproval(prior, statuses)}
	if !res.Changed() {
		return res, nil
	}
	if err := store.SetFarmerApprovalStatus(ctx, farmerID, res.Current); err != nil {
		return AggregateResult{}, fmt.Errorf("set farmer %d status: %w", farmerID, err)
	}
	return res, nil
}
