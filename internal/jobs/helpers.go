// Package jobs defines the River job types of AgroPlan.
//
// Jobs carry identifiers and small value fields only; workers reload what
// they need from the database.
package jobs

import (
	"context"

	"go.uber.org/zap"

	"agroplan.io/agroplan/internal/domain"
	"agroplan.io/agroplan/internal/governance/audit"
	"agroplan.io/agroplan/internal/pkg/logger"
)

// logAudit writes an audit entry for a system action. Failures are logged at
// warn level and never fail the job.
func logAudit(ctx context.Context, auditLogger *audit.Logger, action domain.EventType, resourceID int64, details any) {
	if auditLogger == nil {
		return
	}
	if err := auditLogger.LogAction(ctx, action, resourceID, nil, details); err != nil {
		logger.Warn("failed to write audit log",
			zap.String("action", string(action)),
			zap.Int64("resource_id", resourceID),
			zap.Error(err),
		)
	}
}
