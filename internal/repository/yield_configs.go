package repository

import (
	"context"
	"fmt"
	"strings"

	entsql "entgo.io/ent/dialect/sql"

	"agroplan.io/agroplan/internal/domain"
)

const yieldConfigTable = "crop_yield_configs"

const yieldConfigColumns = `id, crop_name, soil_type, season, irrigation_type, yield_quintals_per_acre, is_active, created_at, updated_at`

func scanYieldConfig(row interface{ Scan(...any) error }) (domain.CropYieldConfig, error) {
	var c domain.CropYieldConfig
	err := row.Scan(&c.ID, &c.CropName, &c.SoilType, &c.Season, &c.IrrigationType,
		&c.YieldQuintalsPerAcre, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// YieldConfigRepository resolves administrator yield rows by decreasing
// specificity.
type YieldConfigRepository struct {
	q *Queries
}

// NewYieldConfigRepository returns a repository running on db.
func NewYieldConfigRepository(db DBTX) *YieldConfigRepository {
	return &YieldConfigRepository{q: New(db)}
}

// lookupTiers lists, most specific first, which of (soil, season,
// irrigation) must match exactly. Unmatched columns must be blank.
var lookupTiers = [4][3]bool{
	{true, true, true},
	{true, true, false},
	{true, false, false},
	{false, false, false},
}

// Lookup returns the first active row for crop, trying the exact
// (soil, season, irrigation) tuple and then progressively wildcarded ones.
// Within a tier the most recently updated row wins.
func (r *YieldConfigRepository) Lookup(ctx context.Context, crop, soil, season, irrigation string) (domain.YieldConfigMatch, bool, error) {
	values := [3]string{soil, season, irrigation}
	for i, tier := range lookupTiers {
		query, args := tierQuery(crop, values, tier)
		c, err := scanYieldConfig(r.q.db.QueryRow(ctx, query, args...))
		if IsNotFound(err) {
			continue
		}
		if err != nil {
			return domain.YieldConfigMatch{}, false, fmt.Errorf("yield config tier %d: %w", i+1, err)
		}
		return domain.YieldConfigMatch{Config: c, Tier: i + 1}, true, nil
	}
	return domain.YieldConfigMatch{}, false, nil
}

func tierQuery(crop string, values [3]string, tier [3]bool) (string, []any) {
	columns := [3]string{"soil_type", "season", "irrigation_type"}
	preds := []*entsql.Predicate{
		entsql.EQ("crop_name", crop),
		entsql.EQ("is_active", true),
	}
	for i, exact := range tier {
		v := ""
		if exact {
			v = values[i]
		}
		preds = append(preds, entsql.EQ(columns[i], v))
	}
	return builder().Select(splitColumns(yieldConfigColumns)...).
		From(entsql.Table(yieldConfigTable)).
		Where(entsql.And(preds...)).
		OrderBy(entsql.Desc("updated_at"), entsql.Desc("id")).
		Limit(1).
		Query()
}

// YieldConfigFilter narrows ListYieldConfigs. Zero values match everything.
type YieldConfigFilter struct {
	Crop   string
	Active *bool
}

// ListYieldConfigs returns configs ordered by crop then specificity key.
func (q *Queries) ListYieldConfigs(ctx context.Context, filter YieldConfigFilter) ([]domain.CropYieldConfig, error) {
	sel := builder().Select(splitColumns(yieldConfigColumns)...).
		From(entsql.Table(yieldConfigTable)).
		OrderBy("crop_name", "soil_type", "season", "irrigation_type", entsql.Desc("is_active"), "id")

	var preds []*entsql.Predicate
	if crop := strings.TrimSpace(filter.Crop); crop != "" {
		preds = append(preds, entsql.EQ("crop_name", crop))
	}
	if filter.Active != nil {
		preds = append(preds, entsql.EQ("is_active", *filter.Active))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	query, args := sel.Query()

	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CropYieldConfig
	for rows.Next() {
		c, err := scanYieldConfig(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

const getYieldConfig = `SELECT ` + yieldConfigColumns + ` FROM crop_yield_configs WHERE id = $1`

func (q *Queries) GetYieldConfig(ctx context.Context, id int64) (domain.CropYieldConfig, error) {
	return scanYieldConfig(q.db.QueryRow(ctx, getYieldConfig, id))
}

const createYieldConfig = `
INSERT INTO crop_yield_configs (crop_name, soil_type, season, irrigation_type, yield_quintals_per_acre, is_active)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + yieldConfigColumns

// CreateYieldConfig inserts a config. A second active row with the same key
// fails with a unique violation.
func (q *Queries) CreateYieldConfig(ctx context.Context, c domain.CropYieldConfig) (domain.CropYieldConfig, error) {
	return scanYieldConfig(q.db.QueryRow(ctx, createYieldConfig, c.CropName, c.SoilType, c.Season,
		c.IrrigationType, c.YieldQuintalsPerAcre, c.IsActive))
}

const updateYieldConfig = `
UPDATE crop_yield_configs
   SET yield_quintals_per_acre = $2, is_active = $3, updated_at = now()
 WHERE id = $1
RETURNING ` + yieldConfigColumns

func (q *Queries) UpdateYieldConfig(ctx context.Context, c domain.CropYieldConfig) (domain.CropYieldConfig, error) {
	return scanYieldConfig(q.db.QueryRow(ctx, updateYieldConfig, c.ID, c.YieldQuintalsPerAcre, c.IsActive))
}

const upsertActiveYieldConfig = `
INSERT INTO crop_yield_configs (crop_name, soil_type, season, irrigation_type, yield_quintals_per_acre, is_active)
VALUES ($1, $2, $3, $4, $5, TRUE)
ON CONFLICT (crop_name, soil_type, season, irrigation_type) WHERE is_active
DO UPDATE SET yield_quintals_per_acre = EXCLUDED.yield_quintals_per_acre, updated_at = now()
RETURNING ` + yieldConfigColumns + `, (xmax = 0) AS inserted`

// UpsertActiveYieldConfig creates the active row for c's key or updates its
// yield. inserted reports which happened.
func (q *Queries) UpsertActiveYieldConfig(ctx context.Context, c domain.CropYieldConfig) (out domain.CropYieldConfig, inserted bool, err error) {
	row := q.db.QueryRow(ctx, upsertActiveYieldConfig, c.CropName, c.SoilType, c.Season,
		c.IrrigationType, c.YieldQuintalsPerAcre)
	err = row.Scan(&out.ID, &out.CropName, &out.SoilType, &out.Season, &out.IrrigationType,
		&out.YieldQuintalsPerAcre, &out.IsActive, &out.CreatedAt, &out.UpdatedAt, &inserted)
	return out, inserted, err
}
