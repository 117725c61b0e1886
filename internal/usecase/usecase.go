// Package usecase provides the application use cases of AgroPlan.
//
// Use cases own transactions. Every land write runs in farmerScope, which
// locks the farmer, performs the write and recomputes the farmer's derived
// approval status on the same pgx.Tx. Audit entries are written after commit
// on the general worker pool.
package usecase

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"go.uber.org/zap"

	"agroplan.io/agroplan/internal/domain"
	"agroplan.io/agroplan/internal/governance/audit"
	apperrors "agroplan.io/agroplan/internal/pkg/errors"
	"agroplan.io/agroplan/internal/pkg/logger"
	"agroplan.io/agroplan/internal/pkg/worker"
	"agroplan.io/agroplan/internal/repository"
	"agroplan.io/agroplan/internal/service"
)

// TxBeginner starts transactions. *pgxpool.Pool satisfies it.
type TxBeginner interface {
	repository.DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// JobInserter enqueues River jobs inside a transaction.
// *river.Client[pgx.Tx] satisfies it.
type JobInserter interface {
	InsertTx(ctx context.Context, tx pgx.Tx, args river.JobArgs, opts *river.InsertOpts) (*rivertype.JobInsertResult, error)
}

// inTx runs fn on a transaction and commits when it returns nil.
func inTx(ctx context.Context, db TxBeginner, fn func(q *repository.Queries, tx pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(repository.New(db).WithTx(tx), tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// farmerScope locks farmer, runs fn and then recomputes the farmer's status,
// all in one transaction. Any error rolls the whole scope back.
func farmerScope(
	ctx context.Context,
	db TxBeginner,
	lock func(ctx context.Context, q *repository.Queries) (domain.Farmer, error),
	fn func(q *repository.Queries, tx pgx.Tx, farmer domain.Farmer) error,
) (service.AggregateResult, error) {
	var res service.AggregateResult
	err := inTx(ctx, db, func(q *repository.Queries, tx pgx.Tx) error {
		farmer, err := lock(ctx, q)
		if err != nil {
			if repository.IsNotFound(err) {
				return apperrors.ErrFarmerNotFound()
			}
			return fmt.Errorf("lock farmer: %w", err)
		}
		if err := fn(q, tx, farmer); err != nil {
			return err
		}
		res, err = service.ApprovalAggregator{}.Recompute(ctx, q, farmer.ID)
		return err
	})
	return res, err
}

func lockByAccount(accountID int64) func(context.Context, *repository.Queries) (domain.Farmer, error) {
	return func(ctx context.Context, q *repository.Queries) (domain.Farmer, error) {
		return q.LockFarmerByAccount(ctx, accountID)
	}
}

func lockByID(farmerID int64) func(context.Context, *repository.Queries) (domain.Farmer, error) {
	return func(ctx context.Context, q *repository.Queries) (domain.Farmer, error) {
		return q.LockFarmer(ctx, farmerID)
	}
}

// farmerForActor resolves the calling account's farmer profile.
func farmerForActor(ctx context.Context, q *repository.Queries, actor domain.Actor) (domain.Farmer, error) {
	f, err := q.GetFarmerByAccount(ctx, actor.AccountID)
	if repository.IsNotFound(err) {
		return domain.Farmer{}, apperrors.ErrFarmerNotFound()
	}
	if err != nil {
		return domain.Farmer{}, fmt.Errorf("load farmer for account %d: %w", actor.AccountID, err)
	}
	return f, nil
}

// auditTrail writes audit entries after commit. Entries are submitted to the
// general pool so the response does not wait on them; without pools they are
// written inline.
type auditTrail struct {
	logger *audit.Logger
	pools  *worker.Pools
}

func (a auditTrail) record(ctx context.Context, action domain.EventType, resourceID int64, actor *int64, details any) {
	if a.logger == nil {
		return
	}
	write := func(ctx context.Context) {
		if err := a.logger.LogAction(ctx, action, resourceID, actor, details); err != nil {
			logger.Warn("audit write failed",
				zap.String("action", string(action)),
				zap.Int64("resource_id", resourceID),
				zap.Error(err),
			)
		}
	}
	if a.pools == nil {
		write(ctx)
		return
	}
	if err := a.pools.SubmitDetached(worker.PoolGeneral, write); err != nil {
		logger.WithContext(ctx).Warn("audit submit failed, writing inline",
			zap.String("action", string(action)),
			zap.Error(err),
		)
		write(ctx)
	}
}

// farmerStatusChanged audits a derived status move.
func (a auditTrail) farmerStatusChanged(ctx context.Context, farmerID int64, actor *int64, res service.AggregateResult) {
	if !res.Changed() {
		return
	}
	logger.WithContext(ctx).Info("Farmer approval status recomputed",
		zap.Int64("farmer_id", farmerID),
		zap.String("from", string(res.Previous)),
		zap.String("to", string(res.Current)),
	)
	a.record(ctx, domain.EventFarmerStatusChanged, farmerID, actor, domain.ReviewPayload{
		FromStatus: res.Previous,
		ToStatus:   res.Current,
	})
}

func actorID(actor domain.Actor) *int64 {
	id := actor.AccountID
	return &id
}
