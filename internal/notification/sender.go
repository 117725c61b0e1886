// Package notification implements the farmer inbox.
//
// Notifications are rows in the notifications table. Review decisions reach
// the inbox through the approval_notification River job, which is enqueued
// in the same transaction as the decision.
package notification

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"agroplan.io/agroplan/internal/domain"
	"agroplan.io/agroplan/internal/pkg/logger"
)

// Params holds the required fields for creating a notification.
type Params struct {
	FarmerID   int64
	Type       domain.NotificationType
	Title      string
	Message    string
	EntityType string // "land" or "crop_plan"
	EntityID   int64
}

// Sender delivers a notification to one farmer.
type Sender interface {
	Send(ctx context.Context, params Params) error
}

// Store persists inbox rows. *repository.Queries satisfies it.
type Store interface {
	InsertNotification(ctx context.Context, n domain.Notification) (domain.Notification, error)
}

// InboxSender writes notifications to the database.
type InboxSender struct {
	store Store
}

// NewInboxSender creates a new inbox sender.
func NewInboxSender(store Store) *InboxSender {
	return &InboxSender{store: store}
}

// Send stores a single notification.
func (s *InboxSender) Send(ctx context.Context, params Params) error {
	if err := validateParams(params); err != nil {
		return fmt.Errorf("notification params invalid: %w", err)
	}

	n, err := s.store.InsertNotification(ctx, domain.Notification{
		FarmerID:   params.FarmerID,
		Type:       params.Type,
		Title:      params.Title,
		Message:    params.Message,
		EntityType: params.EntityType,
		EntityID:   params.EntityID,
	})
	if err != nil {
		return fmt.Errorf("create notification for farmer %d: %w", params.FarmerID, err)
	}

	logger.Debug("notification sent",
		zap.Int64("notification_id", n.ID),
		zap.Int64("farmer_id", params.FarmerID),
		zap.String("type", string(params.Type)),
	)
	return nil
}

var _ Sender = (*InboxSender)(nil)

func validateParams(p Params) error {
	switch {
	case p.FarmerID <= 0:
		return fmt.Errorf("farmer_id is required")
	case p.Type == "":
		return fmt.Errorf("type is required")
	case p.Title == "":
		return fmt.Errorf("title is required")
	}
	return nil
}
