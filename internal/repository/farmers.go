package repository

import (
	"context"

	entsql "entgo.io/ent/dialect/sql"

	"agroplan.io/agroplan/internal/domain"
)

const farmerColumns = `id, account_id, name, phone, village, district, state, pincode, approval_status, created_at, updated_at`

func scanFarmer(row interface{ Scan(...any) error }) (domain.Farmer, error) {
	var (
		f      domain.Farmer
		status string
	)
	err := row.Scan(&f.ID, &f.AccountID, &f.Name, &f.Phone, &f.Village, &f.District,
		&f.State, &f.Pincode, &status, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return domain.Farmer{}, err
	}
	f.ApprovalStatus = domain.ApprovalStatus(status)
	return f, nil
}

const createFarmer = `
INSERT INTO farmers (account_id, name, phone, village, district, state, pincode)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + farmerColumns

// CreateFarmer inserts a farmer profile. New farmers are pending.
func (q *Queries) CreateFarmer(ctx context.Context, f domain.Farmer) (domain.Farmer, error) {
	return scanFarmer(q.db.QueryRow(ctx, createFarmer,
		f.AccountID, f.Name, f.Phone, f.Village, f.District, f.State, f.Pincode))
}

const getFarmerByAccount = `SELECT ` + farmerColumns + ` FROM farmers WHERE account_id = $1`

func (q *Queries) GetFarmerByAccount(ctx context.Context, accountID int64) (domain.Farmer, error) {
	return scanFarmer(q.db.QueryRow(ctx, getFarmerByAccount, accountID))
}

const getFarmer = `SELECT ` + farmerColumns + ` FROM farmers WHERE id = $1`

func (q *Queries) GetFarmer(ctx context.Context, id int64) (domain.Farmer, error) {
	return scanFarmer(q.db.QueryRow(ctx, getFarmer, id))
}

const lockFarmerByAccount = `SELECT ` + farmerColumns + ` FROM farmers WHERE account_id = $1 FOR UPDATE`

// LockFarmerByAccount loads and row-locks the caller's farmer. It must run in
// a transaction.
func (q *Queries) LockFarmerByAccount(ctx context.Context, accountID int64) (domain.Farmer, error) {
	return scanFarmer(q.db.QueryRow(ctx, lockFarmerByAccount, accountID))
}

const lockFarmer = `SELECT ` + farmerColumns + ` FROM farmers WHERE id = $1 FOR UPDATE`

// LockFarmer loads and row-locks a farmer by id. It must run in a transaction.
func (q *Queries) LockFarmer(ctx context.Context, id int64) (domain.Farmer, error) {
	return scanFarmer(q.db.QueryRow(ctx, lockFarmer, id))
}

const updateFarmerProfile = `
UPDATE farmers
   SET name = $2, phone = $3, village = $4, district = $5, state = $6, pincode = $7, updated_at = now()
 WHERE id = $1
RETURNING ` + farmerColumns

// UpdateFarmerProfile writes the profile fields. The approval status is not
// touched.
func (q *Queries) UpdateFarmerProfile(ctx context.Context, f domain.Farmer) (domain.Farmer, error) {
	return scanFarmer(q.db.QueryRow(ctx, updateFarmerProfile,
		f.ID, f.Name, f.Phone, f.Village, f.District, f.State, f.Pincode))
}

const getFarmerApprovalStatus = `SELECT approval_status FROM farmers WHERE id = $1`

func (q *Queries) GetFarmerApprovalStatus(ctx context.Context, farmerID int64) (domain.ApprovalStatus, error) {
	var s string
	if err := q.db.QueryRow(ctx, getFarmerApprovalStatus, farmerID).Scan(&s); err != nil {
		return "", err
	}
	return domain.ApprovalStatus(s), nil
}

const setFarmerApprovalStatus = `UPDATE farmers SET approval_status = $2, updated_at = now() WHERE id = $1`

func (q *Queries) SetFarmerApprovalStatus(ctx context.Context, farmerID int64, status domain.ApprovalStatus) error {
	_, err := q.db.Exec(ctx, setFarmerApprovalStatus, farmerID, string(status))
	return err
}

const listLandStatusesByFarmer = `SELECT approval_status FROM lands WHERE farmer_id = $1 ORDER BY id`

func (q *Queries) ListLandStatusesByFarmer(ctx context.Context, farmerID int64) ([]domain.ApprovalStatus, error) {
	rows, err := q.db.Query(ctx, listLandStatusesByFarmer, farmerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ApprovalStatus
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, domain.ApprovalStatus(s))
	}
	return out, rows.Err()
}

// ListFarmers returns farmers matching filter, newest first.
func (q *Queries) ListFarmers(ctx context.Context, filter domain.StatusFilter) ([]domain.Farmer, error) {
	sel := builder().Select(splitColumns(farmerColumns)...).
		From(entsql.Table("farmers")).
		OrderBy(entsql.Desc("id"))
	if !filter.All() {
		sel.Where(entsql.EQ("approval_status", string(filter.Status)))
	}
	query, args := sel.Query()

	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Farmer
	for rows.Next() {
		f, err := scanFarmer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
