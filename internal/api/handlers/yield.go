package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"agroplan.io/agroplan/internal/domain"
	apperrors "agroplan.io/agroplan/internal/pkg/errors"
	"agroplan.io/agroplan/internal/repository"
	"agroplan.io/agroplan/internal/yield"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// GetYieldEstimate handles GET /yield-estimate. It is public.
func (s *Server) GetYieldEstimate(c *gin.Context) {
	req := yield.Request{
		Crop:           c.Query("crop"),
		SoilType:       c.Query("soil_type"),
		Season:         c.Query("season"),
		IrrigationType: c.Query("irrigation_type"),
		District:       c.Query("district"),
		State:          c.Query("state"),
	}
	if raw := strings.TrimSpace(c.Query("acres")); raw != "" {
		acres, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			_ = c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed, "acres must be a number").
				WithFieldErrors([]apperrors.FieldError{{Field: "acres", Code: "INVALID_VALUE"}}))
			return
		}
		req.Acres = acres
	}
	est, err := s.estimates.Estimate(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, est)
}

type yieldConfigCreateRequest struct {
	CropName             string   `json:"crop_name"`
	SoilType             string   `json:"soil_type"`
	Season               string   `json:"season"`
	IrrigationType       string   `json:"irrigation_type"`
	YieldQuintalsPerAcre *float64 `json:"yield_quintals_per_acre"`
	IsActive             *bool    `json:"is_active"`
}

// AdminListYieldConfigs handles GET /admin/yield-configs.
func (s *Server) AdminListYieldConfigs(c *gin.Context) {
	filter := repository.YieldConfigFilter{Crop: strings.TrimSpace(c.Query("crop"))}
	if raw := c.Query("active"); raw != "" {
		active, ok := queryBool(c, "active")
		if !ok {
			return
		}
		filter.Active = &active
	}
	configs, err := s.yieldConfigs.List(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, itemList(configs))
}

// AdminCreateYieldConfig handles POST /admin/yield-configs.
func (s *Server) AdminCreateYieldConfig(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req yieldConfigCreateRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.YieldQuintalsPerAcre == nil {
		_ = c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed, "yield_quintals_per_acre is required").
			WithFieldErrors([]apperrors.FieldError{{Field: "yield_quintals_per_acre", Code: "REQUIRED"}}))
		return
	}
	cfg := domain.CropYieldConfig{
		CropName:             req.CropName,
		SoilType:             req.SoilType,
		Season:               req.Season,
		IrrigationType:       req.IrrigationType,
		YieldQuintalsPerAcre: *req.YieldQuintalsPerAcre,
		IsActive:             req.IsActive == nil || *req.IsActive,
	}
	created, err := s.yieldConfigs.Create(c.Request.Context(), actor, cfg)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// AdminUpdateYieldConfig handles PATCH /admin/yield-configs/{config_id}.
func (s *Server) AdminUpdateYieldConfig(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "config_id")
	if !ok {
		return
	}
	var req domain.YieldConfigPatch
	if !bindJSON(c, &req) {
		return
	}
	updated, err := s.yieldConfigs.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// AdminImportYieldConfigs handles POST /admin/yield-configs/import.
func (s *Server) AdminImportYieldConfigs(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUploadBytes)
	fh, err := c.FormFile("file")
	if err != nil {
		_ = c.Error(apperrors.Wrap(err, apperrors.CodeSpreadsheetInvalid, "a multipart file field named \"file\" is required", http.StatusBadRequest))
		return
	}
	f, err := fh.Open()
	if err != nil {
		_ = c.Error(apperrors.Wrap(err, apperrors.CodeSpreadsheetInvalid, "uploaded file cannot be read", http.StatusBadRequest))
		return
	}
	defer f.Close()

	summary, err := s.yieldConfigs.Import(c.Request.Context(), actor, f)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// AdminExportYieldConfigs handles GET /admin/yield-configs/export.
func (s *Server) AdminExportYieldConfigs(c *gin.Context) {
	data, err := s.yieldConfigs.Export(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	name := fmt.Sprintf("yield-configs-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, xlsxContentType, data)
}
