// Package audit implements the audit logging service.
//
// Audit logs are append-only records of approval decisions, automatic
// reverts and reference-data changes. Nothing in the service deletes them.
package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"agroplan.io/agroplan/internal/domain"
	"agroplan.io/agroplan/internal/pkg/logger"
)

// Store persists audit events. *repository.Queries satisfies it.
type Store interface {
	InsertAuditLog(ctx context.Context, e domain.AuditEvent) error
}

// Logger writes audit records to the database.
type Logger struct {
	store Store
}

// NewLogger creates a new audit Logger.
func NewLogger(store Store) *Logger {
	return &Logger{store: store}
}

// LogAction records an auditable action. actor is nil for system actions.
func (l *Logger) LogAction(ctx context.Context, action domain.EventType, resourceID int64, actor *int64, details any) error {
	var raw json.RawMessage
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("encode audit details: %w", err)
		}
		raw = b
	}

	err := l.store.InsertAuditLog(ctx, domain.AuditEvent{
		ID:             generateAuditID(),
		Type:           action,
		ResourceID:     fmt.Sprintf("%d", resourceID),
		ActorAccountID: actor,
		Details:        raw,
	})
	if err != nil {
		logger.Error("Failed to write audit log",
			zap.String("action", string(action)),
			zap.String("resource_type", action.ResourceType()),
			zap.Int64("resource_id", resourceID),
			zap.Error(err),
		)
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

// LogReview records an approval transition, whether decided by an
// administrator or forced by an edit.
func (l *Logger) LogReview(ctx context.Context, action domain.EventType, resourceID int64, actor *int64, payload domain.ReviewPayload) error {
	return l.LogAction(ctx, action, resourceID, actor, payload)
}

func generateAuditID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return fmt.Sprintf("audit-%s", id.String())
}
