package repository

import (
	"context"
	"math"

	"agroplan.io/agroplan/internal/domain"
)

const listAllocationOverruns = `
SELECT l.id, l.farmer_id, f.name, l.land_area, SUM(p.total_acres_allocated)::float8 AS planned
  FROM lands l
  JOIN farmers f ON f.id = l.farmer_id
  JOIN crop_plans p ON p.land_id = l.id AND p.farmer_id = l.farmer_id
 GROUP BY l.id, l.farmer_id, f.name, l.land_area
HAVING SUM(p.total_acres_allocated)::float8 > l.land_area + 0.005
 ORDER BY l.id`

// ListAllocationOverruns returns lands whose crop plans together claim more
// acres than the land has. This happens when a land shrinks after plans were
// made against it.
func (q *Queries) ListAllocationOverruns(ctx context.Context) ([]domain.AllocationOverrun, error) {
	rows, err := q.db.Query(ctx, listAllocationOverruns)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AllocationOverrun
	for rows.Next() {
		var o domain.AllocationOverrun
		if err := rows.Scan(&o.LandID, &o.FarmerID, &o.FarmerName, &o.LandArea, &o.PlannedAcres); err != nil {
			return nil, err
		}
		o.Excess = roundHundredths(o.PlannedAcres - o.LandArea)
		out = append(out, o)
	}
	return out, rows.Err()
}

func roundHundredths(v float64) float64 {
	return math.Round(v*100) / 100
}
