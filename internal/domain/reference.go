package domain

import "time"

// CropYieldConfig is an administrator-curated expected yield. An empty
// SoilType, Season or IrrigationType matches any value.
type CropYieldConfig struct {
	ID                   int64     `json:"id"`
	CropName             string    `json:"crop_name"`
	SoilType             string    `json:"soil_type"`
	Season               string    `json:"season"`
	IrrigationType       string    `json:"irrigation_type"`
	YieldQuintalsPerAcre float64   `json:"yield_quintals_per_acre"`
	IsActive             bool      `json:"is_active"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// YieldConfigPatch edits an existing yield config.
type YieldConfigPatch struct {
	YieldQuintalsPerAcre *float64 `json:"yield_quintals_per_acre"`
	IsActive             *bool    `json:"is_active"`
}

// NotificationType classifies inbox entries.
type NotificationType string

const (
	NotificationLandReviewed     NotificationType = "LAND_REVIEWED"
	NotificationCropPlanReviewed NotificationType = "CROP_PLAN_REVIEWED"
)

// Notification is a farmer inbox entry.
type Notification struct {
	ID         int64            `json:"id"`
	FarmerID   int64            `json:"farmer_id"`
	Type       NotificationType `json:"type"`
	Title      string           `json:"title"`
	Message    string           `json:"message"`
	EntityType string           `json:"entity_type"`
	EntityID   int64            `json:"entity_id"`
	Read       bool             `json:"read"`
	CreatedAt  time.Time        `json:"created_at"`
}

// YieldConfigMatch is a yield config found by the specificity lookup. Tier is
// 1 for an exact match and 4 for the crop-wide wildcard row.
type YieldConfigMatch struct {
	Config CropYieldConfig
	Tier   int
}
