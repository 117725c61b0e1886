package repository

import (
	"context"
	"strings"

	entsql "entgo.io/ent/dialect/sql"

	"agroplan.io/agroplan/internal/domain"
)

const landColumns = `id, farmer_id, country, village, district, state, land_area, latitude, longitude, soil_type, irrigation_type, approval_status, admin_remark, created_at, updated_at`

func scanLand(row interface{ Scan(...any) error }, extra ...any) (domain.Land, error) {
	var (
		l      domain.Land
		status string
	)
	dest := []any{&l.ID, &l.FarmerID, &l.Country, &l.Village, &l.District, &l.State,
		&l.LandArea, &l.Latitude, &l.Longitude, &l.SoilType, &l.IrrigationType,
		&status, &l.AdminRemark, &l.CreatedAt, &l.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return domain.Land{}, err
	}
	l.ApprovalStatus = domain.ApprovalStatus(status)
	return l, nil
}

const createLand = `
INSERT INTO lands (farmer_id, country, village, district, state, land_area, latitude, longitude, soil_type, irrigation_type, approval_status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 'pending')
RETURNING ` + landColumns

// CreateLand inserts a pending land.
func (q *Queries) CreateLand(ctx context.Context, l domain.Land) (domain.Land, error) {
	if strings.TrimSpace(l.Country) == "" {
		l.Country = domain.DefaultCountry
	}
	return scanLand(q.db.QueryRow(ctx, createLand, l.FarmerID, l.Country, l.Village, l.District,
		l.State, l.LandArea, l.Latitude, l.Longitude, l.SoilType, l.IrrigationType))
}

const getLandForFarmer = `SELECT ` + landColumns + ` FROM lands WHERE id = $1 AND farmer_id = $2`

func (q *Queries) GetLandForFarmer(ctx context.Context, landID, farmerID int64) (domain.Land, error) {
	return scanLand(q.db.QueryRow(ctx, getLandForFarmer, landID, farmerID))
}

const lockLandForFarmer = getLandForFarmer + ` FOR UPDATE`

// LockLandForFarmer loads and row-locks a land owned by farmerID.
func (q *Queries) LockLandForFarmer(ctx context.Context, landID, farmerID int64) (domain.Land, error) {
	return scanLand(q.db.QueryRow(ctx, lockLandForFarmer, landID, farmerID))
}

const getLand = `SELECT ` + landColumns + ` FROM lands WHERE id = $1`

func (q *Queries) GetLand(ctx context.Context, landID int64) (domain.Land, error) {
	return scanLand(q.db.QueryRow(ctx, getLand, landID))
}

const lockLand = getLand + ` FOR UPDATE`

// LockLand loads and row-locks a land regardless of owner.
func (q *Queries) LockLand(ctx context.Context, landID int64) (domain.Land, error) {
	return scanLand(q.db.QueryRow(ctx, lockLand, landID))
}

const updateLand = `
UPDATE lands
   SET country = $2, village = $3, district = $4, state = $5, land_area = $6,
       latitude = $7, longitude = $8, soil_type = $9, irrigation_type = $10,
       approval_status = $11, admin_remark = $12, updated_at = now()
 WHERE id = $1
RETURNING ` + landColumns

// UpdateLand writes every mutable column of l.
func (q *Queries) UpdateLand(ctx context.Context, l domain.Land) (domain.Land, error) {
	return scanLand(q.db.QueryRow(ctx, updateLand, l.ID, l.Country, l.Village, l.District, l.State,
		l.LandArea, l.Latitude, l.Longitude, l.SoilType, l.IrrigationType,
		string(l.ApprovalStatus), l.AdminRemark))
}

const deleteLand = `DELETE FROM lands WHERE id = $1 AND farmer_id = $2`

// DeleteLand removes a land and, by cascade, its crop plans.
func (q *Queries) DeleteLand(ctx context.Context, landID, farmerID int64) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteLand, landID, farmerID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ListLandsByFarmer returns the farmer's lands, newest first.
func (q *Queries) ListLandsByFarmer(ctx context.Context, farmerID int64, onlyApproved bool) ([]domain.Land, error) {
	preds := []*entsql.Predicate{entsql.EQ("farmer_id", farmerID)}
	if onlyApproved {
		preds = append(preds, entsql.EQ("approval_status", string(domain.ApprovalApproved)))
	}
	query, args := builder().Select(splitColumns(landColumns)...).
		From(entsql.Table("lands")).
		Where(entsql.And(preds...)).
		OrderBy(entsql.Desc("id")).
		Query()

	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Land
	for rows.Next() {
		l, err := scanLand(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

const listLandReviews = `
SELECT l.id, l.farmer_id, l.country, l.village, l.district, l.state, l.land_area, l.latitude, l.longitude,
       l.soil_type, l.irrigation_type, l.approval_status, l.admin_remark, l.created_at, l.updated_at,
       f.name, f.phone
  FROM lands l
  JOIN farmers f ON f.id = l.farmer_id
 WHERE ($1::text = '' OR l.approval_status = $1::text)
 ORDER BY l.created_at DESC, l.id DESC`

// ListLandReviews lists lands with their owner for administrators.
func (q *Queries) ListLandReviews(ctx context.Context, filter domain.StatusFilter) ([]domain.LandReview, error) {
	rows, err := q.db.Query(ctx, listLandReviews, string(filter.Status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.LandReview
	for rows.Next() {
		var r domain.LandReview
		land, err := scanLand(rows, &r.FarmerName, &r.FarmerPhone)
		if err != nil {
			return nil, err
		}
		r.Land = land
		out = append(out, r)
	}
	return out, rows.Err()
}
