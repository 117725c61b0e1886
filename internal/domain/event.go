package domain

import (
	"encoding/json"
	"time"
)

// EventType names an auditable change. Values are stored in audit_logs.action.
type EventType string

const (
	EventLandCreated  EventType = "land.created"
	EventLandUpdated  EventType = "land.updated"
	EventLandReverted EventType = "land.reverted_to_pending"
	EventLandDeleted  EventType = "land.deleted"
	EventLandReviewed EventType = "land.reviewed"

	EventCropPlanCreated  EventType = "crop_plan.created"
	EventCropPlanUpdated  EventType = "crop_plan.updated"
	EventCropPlanReverted EventType = "crop_plan.reverted_to_pending"
	EventCropPlanDeleted  EventType = "crop_plan.deleted"
	EventCropPlanReviewed EventType = "crop_plan.reviewed"

	EventFarmerStatusChanged EventType = "farmer.status_changed"

	EventYieldConfigChanged  EventType = "yield_config.changed"
	EventYieldConfigImported EventType = "yield_config.imported"

	EventAllocationOverrun EventType = "allocation.overrun_detected"
)

// ResourceType returns the audit resource type encoded in the event name.
func (e EventType) ResourceType() string {
	for i := 0; i < len(e); i++ {
		if e[i] == '.' {
			return string(e[:i])
		}
	}
	return string(e)
}

// AuditEvent is one append-only audit record.
type AuditEvent struct {
	ID             string          `json:"id"`
	Type           EventType       `json:"action"`
	ResourceID     string          `json:"resource_id"`
	ActorAccountID *int64          `json:"actor_account_id,omitempty"`
	Details        json.RawMessage `json:"details,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ReviewPayload is the audit detail of an approval decision or an automatic
// revert.
type ReviewPayload struct {
	FromStatus    ApprovalStatus `json:"from_status"`
	ToStatus      ApprovalStatus `json:"to_status"`
	Remark        string         `json:"remark,omitempty"`
	ChangedFields []string       `json:"changed_fields,omitempty"`
}

// ToJSON converts payload to JSON bytes.
func (p ReviewPayload) ToJSON() ([]byte, error) {
	return json.Marshal(p)
}
