package usecase

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"agroplan.io/agroplan/internal/domain"
	"agroplan.io/agroplan/internal/governance/audit"
	apperrors "agroplan.io/agroplan/internal/pkg/errors"
	"agroplan.io/agroplan/internal/pkg/logger"
	"agroplan.io/agroplan/internal/pkg/worker"
	"agroplan.io/agroplan/internal/repository"
	"agroplan.io/agroplan/internal/yield"
)

// YieldConfigUseCase maintains the crop_yield_configs reference table.
type YieldConfigUseCase struct {
	db      TxBeginner
	queries *repository.Queries
	audit   auditTrail
}

// NewYieldConfigUseCase wires the yield config use cases.
func NewYieldConfigUseCase(db TxBeginner, auditLogger *audit.Logger, pools *worker.Pools) *YieldConfigUseCase {
	return &YieldConfigUseCase{
		db:      db,
		queries: repository.New(db),
		audit:   auditTrail{logger: auditLogger, pools: pools},
	}
}

// List returns configs matching filter.
func (u *YieldConfigUseCase) List(ctx context.Context, filter repository.YieldConfigFilter) ([]domain.CropYieldConfig, error) {
	out, err := u.queries.ListYieldConfigs(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list yield configs: %w", err)
	}
	return out, nil
}

// Create adds a config. Only one active row may exist per key.
func (u *YieldConfigUseCase) Create(ctx context.Context, actor domain.Actor, c domain.CropYieldConfig) (domain.CropYieldConfig, error) {
	c.CropName = strings.TrimSpace(c.CropName)
	c.SoilType = strings.TrimSpace(c.SoilType)
	c.Season = strings.TrimSpace(c.Season)
	c.IrrigationType = strings.TrimSpace(c.IrrigationType)
	if err := validateYieldConfig(c); err != nil {
		return domain.CropYieldConfig{}, err
	}

	created, err := u.queries.CreateYieldConfig(ctx, c)
	if repository.IsUniqueViolation(err) {
		return domain.CropYieldConfig{}, yieldConfigConflict(c)
	}
	if err != nil {
		return domain.CropYieldConfig{}, fmt.Errorf("create yield config: %w", err)
	}
	u.audit.record(ctx, domain.EventYieldConfigChanged, created.ID, actorID(actor), created)
	return created, nil
}

// Update changes the yield or the active flag of a config.
func (u *YieldConfigUseCase) Update(ctx context.Context, actor domain.Actor, id int64, patch domain.YieldConfigPatch) (domain.CropYieldConfig, error) {
	var updated domain.CropYieldConfig
	err := inTx(ctx, u.db, func(q *repository.Queries, _ pgx.Tx) error {
		current, err := q.GetYieldConfig(ctx, id)
		if repository.IsNotFound(err) {
			return apperrors.NotFound(apperrors.CodeYieldConfigNotFound, fmt.Sprintf("yield config %d not found", id))
		}
		if err != nil {
			return fmt.Errorf("get yield config %d: %w", id, err)
		}
		if patch.YieldQuintalsPerAcre != nil {
			current.YieldQuintalsPerAcre = *patch.YieldQuintalsPerAcre
		}
		if patch.IsActive != nil {
			current.IsActive = *patch.IsActive
		}
		if err := validateYieldConfig(current); err != nil {
			return err
		}
		updated, err = q.UpdateYieldConfig(ctx, current)
		if repository.IsUniqueViolation(err) {
			return yieldConfigConflict(current)
		}
		if err != nil {
			return fmt.Errorf("update yield config %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return domain.CropYieldConfig{}, err
	}
	u.audit.record(ctx, domain.EventYieldConfigChanged, id, actorID(actor), updated)
	return updated, nil
}

// ImportRowResult reports what happened to one spreadsheet row.
type ImportRowResult struct {
	Row      int    `json:"row"`
	CropName string `json:"crop_name"`
	Status   string `json:"status"` // created, updated or error
	ConfigID int64  `json:"config_id,omitempty"`
	Error    string `json:"error,omitempty"`
}

// ImportSummary is the result of Import.
type ImportSummary struct {
	Created int               `json:"created"`
	Updated int               `json:"updated"`
	Failed  int               `json:"failed"`
	Rows    []ImportRowResult `json:"rows"`
}

// Import upserts the active configs listed in an .xlsx workbook. Valid rows
// are written in one transaction; invalid rows are reported and skipped.
func (u *YieldConfigUseCase) Import(ctx context.Context, actor domain.Actor, r io.Reader) (ImportSummary, error) {
	rows, err := yield.ReadConfigSheet(r)
	if err != nil {
		return ImportSummary{}, apperrors.Wrap(err, apperrors.CodeSpreadsheetInvalid, err.Error(), http.StatusBadRequest)
	}

	var summary ImportSummary
	err = inTx(ctx, u.db, func(q *repository.Queries, _ pgx.Tx) error {
		summary = ImportSummary{Rows: make([]ImportRowResult, 0, len(rows))}
		for _, row := range rows {
			res := ImportRowResult{Row: row.Row, CropName: row.Config.CropName}
			if row.Err != "" {
				res.Status, res.Error = "error", row.Err
				summary.Failed++
				summary.Rows = append(summary.Rows, res)
				continue
			}
			saved, inserted, err := q.UpsertActiveYieldConfig(ctx, row.Config)
			if err != nil {
				return fmt.Errorf("upsert row %d: %w", row.Row, err)
			}
			res.ConfigID = saved.ID
			if inserted {
				res.Status = "created"
				summary.Created++
			} else {
				res.Status = "updated"
				summary.Updated++
			}
			summary.Rows = append(summary.Rows, res)
		}
		return nil
	})
	if err != nil {
		return ImportSummary{}, err
	}

	logger.WithContext(ctx).Info("Yield configs imported",
		zap.Int("created", summary.Created),
		zap.Int("updated", summary.Updated),
		zap.Int("failed", summary.Failed),
	)
	u.audit.record(ctx, domain.EventYieldConfigImported, 0, actorID(actor), map[string]int{
		"created": summary.Created,
		"updated": summary.Updated,
		"failed":  summary.Failed,
	})
	return summary, nil
}

// Export renders every config as an .xlsx workbook.
func (u *YieldConfigUseCase) Export(ctx context.Context) ([]byte, error) {
	configs, err := u.queries.ListYieldConfigs(ctx, repository.YieldConfigFilter{})
	if err != nil {
		return nil, fmt.Errorf("list yield configs: %w", err)
	}
	return yield.WriteConfigSheet(configs)
}

func validateYieldConfig(c domain.CropYieldConfig) error {
	var fieldErrs []apperrors.FieldError
	if c.CropName == "" {
		fieldErrs = append(fieldErrs, apperrors.FieldError{Field: "crop_name", Code: "REQUIRED"})
	}
	v := c.YieldQuintalsPerAcre
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		fieldErrs = append(fieldErrs, apperrors.FieldError{Field: "yield_quintals_per_acre", Code: "OUT_OF_RANGE"})
	}
	if len(fieldErrs) > 0 {
		return apperrors.BadRequest(apperrors.CodeValidationFailed, "invalid yield config").WithFieldErrors(fieldErrs)
	}
	return nil
}

func yieldConfigConflict(c domain.CropYieldConfig) error {
	return apperrors.Conflict(apperrors.CodeYieldConfigConflict, "an active yield config already exists for this key").
		WithParams(map[string]interface{}{
			"crop_name":       c.CropName,
			"soil_type":       c.SoilType,
			"season":          c.Season,
			"irrigation_type": c.IrrigationType,
		})
}

// EstimateUseCase answers public yield estimate queries.
type EstimateUseCase struct {
	estimator       *yield.Estimator
	defaultDistrict string
	defaultState    string
}

// NewEstimateUseCase wires the estimate endpoint. Blank district and state in
// a query are replaced by the given defaults.
func NewEstimateUseCase(estimator *yield.Estimator, defaultDistrict, defaultState string) *EstimateUseCase {
	return &EstimateUseCase{
		estimator:       estimator,
		defaultDistrict: defaultDistrict,
		defaultState:    defaultState,
	}
}

// Estimate validates req and resolves it. It fails only on invalid input.
func (u *EstimateUseCase) Estimate(ctx context.Context, req yield.Request) (yield.Estimate, error) {
	req.Crop = strings.TrimSpace(req.Crop)
	var fieldErrs []apperrors.FieldError
	if req.Crop == "" {
		fieldErrs = append(fieldErrs, apperrors.FieldError{Field: "crop", Code: "REQUIRED"})
	}
	if math.IsNaN(req.Acres) || math.IsInf(req.Acres, 0) || req.Acres <= 0 {
		fieldErrs = append(fieldErrs, apperrors.FieldError{Field: "acres", Code: "OUT_OF_RANGE", Message: "acres must be greater than zero"})
	}
	if len(fieldErrs) > 0 {
		return yield.Estimate{}, apperrors.BadRequest(apperrors.CodeValidationFailed, "crop and acres > 0 are required").
			WithFieldErrors(fieldErrs)
	}
	if strings.TrimSpace(req.District) == "" {
		req.District = u.defaultDistrict
	}
	if strings.TrimSpace(req.State) == "" {
		req.State = u.defaultState
	}
	return u.estimator.Estimate(ctx, req), nil
}
