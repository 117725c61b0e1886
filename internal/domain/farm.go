package domain

import "time"

// Farmer is the farming profile attached one-to-one to a farmer account.
// ApprovalStatus is derived from the farmer's lands and is never written from
// user input.
type Farmer struct {
	ID             int64          `json:"id"`
	AccountID      int64          `json:"account_id"`
	Name           string         `json:"name"`
	Phone          string         `json:"phone"`
	Village        string         `json:"village"`
	District       string         `json:"district"`
	State          string         `json:"state"`
	Pincode        string         `json:"pincode"`
	ApprovalStatus ApprovalStatus `json:"approval_status"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// FarmerProfile holds the farmer-editable profile fields. Nil fields are left
// unchanged on update.
type FarmerProfile struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Village  *string `json:"village"`
	District *string `json:"district"`
	State    *string `json:"state"`
	Pincode  *string `json:"pincode"`
}

// Apply returns f with the non-nil profile fields copied over.
func (p FarmerProfile) Apply(f Farmer) Farmer {
	setString(&f.Name, p.Name)
	setString(&f.Phone, p.Phone)
	setString(&f.Village, p.Village)
	setString(&f.District, p.District)
	setString(&f.State, p.State)
	setString(&f.Pincode, p.Pincode)
	return f
}

// DefaultCountry is stored on lands created without a country.
const DefaultCountry = "India"

// Land is a parcel registered by a farmer.
type Land struct {
	ID             int64          `json:"id"`
	FarmerID       int64          `json:"farmer_id"`
	Country        string         `json:"country"`
	Village        string         `json:"village"`
	District       string         `json:"district"`
	State          string         `json:"state"`
	LandArea       float64        `json:"land_area"`
	Latitude       *float64       `json:"latitude"`
	Longitude      *float64       `json:"longitude"`
	SoilType       string         `json:"soil_type"`
	IrrigationType string         `json:"irrigation_type"`
	ApprovalStatus ApprovalStatus `json:"approval_status"`
	AdminRemark    string         `json:"admin_remark"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// LandWatchedFields are the farmer-editable land fields. Changing any of them
// on an approved land sends it back for review.
var LandWatchedFields = []string{
	"country", "village", "district", "state", "land_area",
	"latitude", "longitude", "soil_type", "irrigation_type",
}

// WatchedFields snapshots the values of LandWatchedFields.
func (l Land) WatchedFields() FieldValues {
	return FieldValues{
		"country":         l.Country,
		"village":         l.Village,
		"district":        l.District,
		"state":           l.State,
		"land_area":       l.LandArea,
		"latitude":        optionalFloat(l.Latitude),
		"longitude":       optionalFloat(l.Longitude),
		"soil_type":       l.SoilType,
		"irrigation_type": l.IrrigationType,
	}
}

// LandPatch is a partial land update. A farmer may only echo the stored
// ApprovalStatus; AdminRemark is applied as sent.
type LandPatch struct {
	Country        *string         `json:"country"`
	Village        *string         `json:"village"`
	District       *string         `json:"district"`
	State          *string         `json:"state"`
	LandArea       *float64        `json:"land_area"`
	Latitude       *float64        `json:"latitude"`
	Longitude      *float64        `json:"longitude"`
	SoilType       *string         `json:"soil_type"`
	IrrigationType *string         `json:"irrigation_type"`
	ApprovalStatus *ApprovalStatus `json:"approval_status"`
	AdminRemark    *string         `json:"admin_remark"`
}

// Apply returns l with the non-nil patch fields copied over.
func (p LandPatch) Apply(l Land) Land {
	setString(&l.Country, p.Country)
	setString(&l.Village, p.Village)
	setString(&l.District, p.District)
	setString(&l.State, p.State)
	if p.LandArea != nil {
		l.LandArea = *p.LandArea
	}
	if p.Latitude != nil {
		v := *p.Latitude
		l.Latitude = &v
	}
	if p.Longitude != nil {
		v := *p.Longitude
		l.Longitude = &v
	}
	setString(&l.SoilType, p.SoilType)
	setString(&l.IrrigationType, p.IrrigationType)
	if p.ApprovalStatus != nil {
		l.ApprovalStatus = *p.ApprovalStatus
	}
	setString(&l.AdminRemark, p.AdminRemark)
	return l
}

// CropPlan is a season plan for one land. FarmerID always equals the land's
// owner.
type CropPlan struct {
	ID                  int64            `json:"id"`
	LandID              int64            `json:"land_id"`
	FarmerID            int64            `json:"farmer_id"`
	SoilType            string           `json:"soil_type"`
	Season              string           `json:"season"`
	IrrigationType      string           `json:"irrigation_type"`
	Notes               string           `json:"notes"`
	TotalAcresAllocated float64          `json:"total_acres_allocated"`
	ApprovalStatus      ApprovalStatus   `json:"approval_status"`
	AdminRemark         string           `json:"admin_remark"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
	Crops               []CropAllocation `json:"crops"`
}

// CropPlanWatchedFields are the farmer-editable plan fields.
var CropPlanWatchedFields = []string{
	"soil_type", "season", "irrigation_type", "notes", "total_acres_allocated",
}

// WatchedFields snapshots the values of CropPlanWatchedFields.
func (p CropPlan) WatchedFields() FieldValues {
	return FieldValues{
		"soil_type":             p.SoilType,
		"season":                p.Season,
		"irrigation_type":       p.IrrigationType,
		"notes":                 p.Notes,
		"total_acres_allocated": p.TotalAcresAllocated,
	}
}

// CropAllocation is one crop line of a plan.
type CropAllocation struct {
	ID                   int64      `json:"id"`
	CropPlanID           int64      `json:"crop_plan_id"`
	CropName             string     `json:"crop_name"`
	Acres                float64    `json:"acres"`
	SeedVariety          *string    `json:"seed_variety,omitempty"`
	SowingDate           *time.Time `json:"sowing_date,omitempty"`
	ExpectedHarvestDate  *time.Time `json:"expected_harvest_date,omitempty"`
	ExpectedYieldPerAcre *float64   `json:"expected_yield_per_acre,omitempty"`
	Position             int        `json:"position"`
}

// AllocationLine is a requested crop line before validation. A nil Acres
// means the client sent a value that could not be read as a number.
type AllocationLine struct {
	CropName             string
	Acres                *float64
	SeedVariety          *string
	SowingDate           *time.Time
	ExpectedHarvestDate  *time.Time
	ExpectedYieldPerAcre *float64
}

// CropPlanInput describes a plan to create. Any status the client sends is
// ignored; new plans always start pending.
type CropPlanInput struct {
	LandID         int64
	SoilType       string
	Season         string
	IrrigationType string
	Notes          string
	Crops          []AllocationLine
}

// CropPlanPatch is a partial plan update. A non-nil Crops replaces every
// allocation of the plan.
type CropPlanPatch struct {
	SoilType       *string
	Season         *string
	IrrigationType *string
	Notes          *string
	ApprovalStatus *ApprovalStatus
	AdminRemark    *string
	Crops          *[]AllocationLine
}

// Apply returns p with the non-nil scalar fields copied over. Crops are
// handled by the caller since they need validation.
func (pp CropPlanPatch) Apply(p CropPlan) CropPlan {
	setString(&p.SoilType, pp.SoilType)
	setString(&p.Season, pp.Season)
	setString(&p.IrrigationType, pp.IrrigationType)
	setString(&p.Notes, pp.Notes)
	if pp.ApprovalStatus != nil {
		p.ApprovalStatus = *pp.ApprovalStatus
	}
	setString(&p.AdminRemark, pp.AdminRemark)
	return p
}

// Decision is an administrator's review of a land or crop plan. An empty
// Status keeps the stored one, so a decision may carry only a remark.
type Decision struct {
	Status ApprovalStatus
	Remark *string
}

// Requested returns the decided status, or nil when the status is kept.
func (d Decision) Requested() *ApprovalStatus {
	if d.Status == "" {
		return nil
	}
	s := d.Status
	return &s
}

// AllocationOverrun is a land whose planned acres exceed its area.
type AllocationOverrun struct {
	LandID       int64   `json:"land_id"`
	FarmerID     int64   `json:"farmer_id"`
	FarmerName   string  `json:"farmer_name"`
	LandArea     float64 `json:"land_area"`
	PlannedAcres float64 `json:"planned_acres"`
	Excess       float64 `json:"excess"`
}

// LandReview is a land together with its owner, as listed to administrators.
type LandReview struct {
	Land
	FarmerName  string `json:"farmer_name"`
	FarmerPhone string `json:"farmer_phone"`
}

// CropPlanReview is a plan together with its owner, as listed to administrators.
type CropPlanReview struct {
	CropPlan
	FarmerName string `json:"farmer_name"`
	Village    string `json:"village"`
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// CropAcreage is the area planned for one crop across every farmer's plans.
type CropAcreage struct {
	CropName     string  `json:"crop_name"`
	PlannedAcres float64 `json:"planned_acres"`
}

// CropRecommendation splits planned crops by how much area is already
// committed to them.
type CropRecommendation struct {
	GoodCrops      []string `json:"good_crops"`
	RiskyCrops     []string `json:"risky_crops"`
	BenchmarkAcres float64  `json:"benchmark_acres"`
}
