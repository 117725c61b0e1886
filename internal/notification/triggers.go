package notification

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"agroplan.io/agroplan/internal/domain"
	"agroplan.io/agroplan/internal/pkg/logger"
)

// Entity types a review can be about.
const (
	EntityLand     = "land"
	EntityCropPlan = "crop_plan"
)

// Review describes an administrator decision the farmer should hear about.
type Review struct {
	FarmerID   int64
	EntityType string
	EntityID   int64
	Status     domain.ApprovalStatus
	Remark     string
}

// Triggers turns review decisions into inbox messages.
type Triggers struct {
	sender Sender
}

// NewTriggers creates a new notification trigger service.
func NewTriggers(sender Sender) *Triggers {
	return &Triggers{sender: sender}
}

// OnReviewed notifies the owning farmer of a decision. Errors are returned so
// the River job can retry.
func (t *Triggers) OnReviewed(ctx context.Context, r Review) error {
	params, err := reviewParams(r)
	if err != nil {
		return err
	}
	if err := t.sender.Send(ctx, params); err != nil {
		logger.Error("failed to send review notification",
			zap.Int64("farmer_id", r.FarmerID),
			zap.String("entity_type", r.EntityType),
			zap.Int64("entity_id", r.EntityID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func reviewParams(r Review) (Params, error) {
	var (
		typ  domain.NotificationType
		noun string
	)
	switch r.EntityType {
	case EntityLand:
		typ, noun = domain.NotificationLandReviewed, "Land"
	case EntityCropPlan:
		typ, noun = domain.NotificationCropPlanReviewed, "Crop plan"
	default:
		return Params{}, fmt.Errorf("unknown review entity type %q", r.EntityType)
	}

	title := fmt.Sprintf("%s #%d %s", noun, r.EntityID, r.Status)
	msg := fmt.Sprintf("Your %s #%d is now %s.", strings.ToLower(noun), r.EntityID, r.Status)
	if remark := strings.TrimSpace(r.Remark); remark != "" {
		msg += " Remark: " + remark
	}
	return Params{
		FarmerID:   r.FarmerID,
		Type:       typ,
		Title:      title,
		Message:    msg,
		EntityType: r.EntityType,
		EntityID:   r.EntityID,
	}, nil
}
