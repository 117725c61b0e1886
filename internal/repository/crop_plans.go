package repository

import (
	"context"

	"agroplan.io/agroplan/internal/domain"
)

const cropPlanColumns = `id, land_id, farmer_id, soil_type, season, irrigation_type, notes, total_acres_allocated, approval_status, admin_remark, created_at, updated_at`

func scanCropPlan(row interface{ Scan(...any) error }, extra ...any) (domain.CropPlan, error) {
	var (
		p      domain.CropPlan
		status string
	)
	dest := []any{&p.ID, &p.LandID, &p.FarmerID, &p.SoilType, &p.Season, &p.IrrigationType,
		&p.Notes, &p.TotalAcresAllocated, &status, &p.AdminRemark, &p.CreatedAt, &p.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return domain.CropPlan{}, err
	}
	p.ApprovalStatus = domain.ApprovalStatus(status)
	return p, nil
}

const createCropPlan = `
INSERT INTO crop_plans (land_id, farmer_id, soil_type, season, irrigation_type, notes, total_acres_allocated, approval_status)
VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending')
RETURNING ` + cropPlanColumns

// CreateCropPlan inserts a plan. The status is always pending.
func (q *Queries) CreateCropPlan(ctx context.Context, p domain.CropPlan) (domain.CropPlan, error) {
	return scanCropPlan(q.db.QueryRow(ctx, createCropPlan, p.LandID, p.FarmerID, p.SoilType,
		p.Season, p.IrrigationType, p.Notes, p.TotalAcresAllocated))
}

const getCropPlanForFarmer = `SELECT ` + cropPlanColumns + ` FROM crop_plans WHERE id = $1 AND farmer_id = $2`

func (q *Queries) GetCropPlanForFarmer(ctx context.Context, planID, farmerID int64) (domain.CropPlan, error) {
	return scanCropPlan(q.db.QueryRow(ctx, getCropPlanForFarmer, planID, farmerID))
}

const lockCropPlanForFarmer = getCropPlanForFarmer + ` FOR UPDATE`

func (q *Queries) LockCropPlanForFarmer(ctx context.Context, planID, farmerID int64) (domain.CropPlan, error) {
	return scanCropPlan(q.db.QueryRow(ctx, lockCropPlanForFarmer, planID, farmerID))
}

const lockCropPlan = `SELECT ` + cropPlanColumns + ` FROM crop_plans WHERE id = $1 FOR UPDATE`

func (q *Queries) LockCropPlan(ctx context.Context, planID int64) (domain.CropPlan, error) {
	return scanCropPlan(q.db.QueryRow(ctx, lockCropPlan, planID))
}

const updateCropPlan = `
UPDATE crop_plans
   SET soil_type = $2, season = $3, irrigation_type = $4, notes = $5, total_acres_allocated = $6,
       approval_status = $7, admin_remark = $8, updated_at = now()
 WHERE id = $1
RETURNING ` + cropPlanColumns

// UpdateCropPlan writes every mutable column of p. Allocations are not
// touched.
func (q *Queries) UpdateCropPlan(ctx context.Context, p domain.CropPlan) (domain.CropPlan, error) {
	return scanCropPlan(q.db.QueryRow(ctx, updateCropPlan, p.ID, p.SoilType, p.Season,
		p.IrrigationType, p.Notes, p.TotalAcresAllocated, string(p.ApprovalStatus), p.AdminRemark))
}

const deleteCropPlan = `DELETE FROM crop_plans WHERE id = $1 AND farmer_id = $2`

func (q *Queries) DeleteCropPlan(ctx context.Context, planID, farmerID int64) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteCropPlan, planID, farmerID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const sumPlannedAcres = `
SELECT COALESCE(SUM(total_acres_allocated), 0)::float8
  FROM crop_plans
 WHERE farmer_id = $1 AND land_id = $2 AND id <> $3`

// SumPlannedAcres totals the acres of the farmer's plans on a land, leaving
// out excludePlanID. Pass 0 to include every plan.
func (q *Queries) SumPlannedAcres(ctx context.Context, farmerID, landID, excludePlanID int64) (float64, error) {
	var sum float64
	err := q.db.QueryRow(ctx, sumPlannedAcres, farmerID, landID, excludePlanID).Scan(&sum)
	return sum, err
}

const listCropPlansByFarmer = `SELECT ` + cropPlanColumns + ` FROM crop_plans WHERE farmer_id = $1 ORDER BY created_at DESC, id DESC`

// ListCropPlansByFarmer returns the farmer's plans with their allocations.
func (q *Queries) ListCropPlansByFarmer(ctx context.Context, farmerID int64) ([]domain.CropPlan, error) {
	rows, err := q.db.Query(ctx, listCropPlansByFarmer, farmerID)
	if err != nil {
		return nil, err
	}
	var plans []domain.CropPlan
	for rows.Next() {
		p, err := scanCropPlan(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		plans = append(plans, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return q.attachAllocations(ctx, plans)
}

const listCropPlanReviews = `
SELECT p.id, p.land_id, p.farmer_id, p.soil_type, p.season, p.irrigation_type, p.notes,
       p.total_acres_allocated, p.approval_status, p.admin_remark, p.created_at, p.updated_at,
       f.name, l.village
  FROM crop_plans p
  JOIN farmers f ON f.id = p.farmer_id
  JOIN lands l ON l.id = p.land_id
 WHERE ($1::text = '' OR p.approval_status = $1::text)
 ORDER BY p.created_at DESC, p.id DESC`

// ListCropPlanReviews lists plans with owner details for administrators.
func (q *Queries) ListCropPlanReviews(ctx context.Context, filter domain.StatusFilter) ([]domain.CropPlanReview, error) {
	rows, err := q.db.Query(ctx, listCropPlanReviews, string(filter.Status))
	if err != nil {
		return nil, err
	}
	var out []domain.CropPlanReview
	for rows.Next() {
		var r domain.CropPlanReview
		p, err := scanCropPlan(rows, &r.FarmerName, &r.Village)
		if err != nil {
			rows.Close()
			return nil, err
		}
		r.CropPlan = p
		out = append(out, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	plans := make([]domain.CropPlan, len(out))
	for i := range out {
		plans[i] = out[i].CropPlan
	}
	plans, err = q.attachAllocations(ctx, plans)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].CropPlan = plans[i]
	}
	return out, nil
}

func (q *Queries) attachAllocations(ctx context.Context, plans []domain.CropPlan) ([]domain.CropPlan, error) {
	if len(plans) == 0 {
		return plans, nil
	}
	ids := make([]int64, len(plans))
	for i, p := range plans {
		ids[i] = p.ID
	}
	allocs, err := q.ListAllocations(ctx, ids)
	if err != nil {
		return nil, err
	}
	byPlan := make(map[int64][]domain.CropAllocation, len(plans))
	for _, a := range allocs {
		byPlan[a.CropPlanID] = append(byPlan[a.CropPlanID], a)
	}
	for i := range plans {
		plans[i].Crops = byPlan[plans[i].ID]
		if plans[i].Crops == nil {
			plans[i].Crops = []domain.CropAllocation{}
		}
	}
	return plans, nil
}

const allocationColumns = `id, crop_plan_id, crop_name, acres, seed_variety, sowing_date, expected_harvest_date, expected_yield_per_acre, position`

func scanAllocation(row interface{ Scan(...any) error }) (domain.CropAllocation, error) {
	var a domain.CropAllocation
	err := row.Scan(&a.ID, &a.CropPlanID, &a.CropName, &a.Acres, &a.SeedVariety,
		&a.SowingDate, &a.ExpectedHarvestDate, &a.ExpectedYieldPerAcre, &a.Position)
	return a, err
}

const listAllocations = `
SELECT ` + allocationColumns + `
  FROM crop_allocations
 WHERE crop_plan_id = ANY($1)
 ORDER BY crop_plan_id, position, id`

// ListAllocations returns the allocations of the given plans in request
// order.
func (q *Queries) ListAllocations(ctx context.Context, planIDs []int64) ([]domain.CropAllocation, error) {
	rows, err := q.db.Query(ctx, listAllocations, planIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CropAllocation
	for rows.Next() {
		a, err := scanAllocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

const insertAllocation = `
INSERT INTO crop_allocations (crop_plan_id, crop_name, acres, seed_variety, sowing_date, expected_harvest_date, expected_yield_per_acre, position)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + allocationColumns

// InsertAllocations stores lines for planID, keeping their order. Every line
// must carry positive acres.
func (q *Queries) InsertAllocations(ctx context.Context, planID int64, lines []domain.AllocationLine) ([]domain.CropAllocation, error) {
	out := make([]domain.CropAllocation, 0, len(lines))
	for i, l := range lines {
		a, err := scanAllocation(q.db.QueryRow(ctx, insertAllocation, planID, l.CropName, *l.Acres,
			l.SeedVariety, l.SowingDate, l.ExpectedHarvestDate, l.ExpectedYieldPerAcre, i))
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

const deleteAllocations = `DELETE FROM crop_allocations WHERE crop_plan_id = $1`

func (q *Queries) DeleteAllocations(ctx context.Context, planID int64) error {
	_, err := q.db.Exec(ctx, deleteAllocations, planID)
	return err
}

const sumAcresByCrop = `
SELECT crop_name, SUM(acres)::float8
  FROM crop_allocations
 GROUP BY crop_name
 ORDER BY crop_name`

// SumAcresByCrop totals allocated acres per crop over every plan, ordered by
// crop name.
func (q *Queries) SumAcresByCrop(ctx context.Context) ([]domain.CropAcreage, error) {
	rows, err := q.db.Query(ctx, sumAcresByCrop)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CropAcreage
	for rows.Next() {
		var c domain.CropAcreage
		if err := rows.Scan(&c.CropName, &c.PlannedAcres); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
