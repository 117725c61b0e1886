package service

import "agroplan.io/agroplan/internal/domain"

// DefaultBenchmarkAcres is the planned area from which a crop counts as
// oversupplied.
const DefaultBenchmarkAcres = 100.0

// RecommendCrops marks a crop good while its planned area is below benchmark
// and risky from the benchmark up. Crops keep the order of totals. A
// non-positive benchmark means DefaultBenchmarkAcres.
func RecommendCrops(totals []domain.CropAcreage, benchmark float64) domain.CropRecommendation {
	if benchmark <= 0 {
		benchmark = DefaultBenchmarkAcres
	}
	rec := domain.CropRecommendation{
		GoodCrops:      []string{},
		RiskyCrops:     []string{},
		BenchmarkAcres: benchmark,
	}
	for _, t := range totals {
		if t.PlannedAcres < benchmark {
			rec.GoodCrops = append(rec.GoodCrops, t.CropName)
		} else {
			rec.RiskyCrops = append(rec.RiskyCrops, t.CropName)
		}
	}
	return rec
}
