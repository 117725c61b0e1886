package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"agroplan.io/agroplan/internal/domain"
	apperrors "agroplan.io/agroplan/internal/pkg/errors"
)

type cropLineRequest struct {
	CropName             string          `json:"crop_name"`
	Acres                json.RawMessage `json:"acres"`
	SeedVariety          *string         `json:"seed_variety"`
	SowingDate           *string         `json:"sowing_date"`
	ExpectedHarvestDate  *string         `json:"expected_harvest_date"`
	ExpectedYieldPerAcre *float64        `json:"expected_yield_per_acre"`
}

type cropPlanCreateRequest struct {
	LandID         int64             `json:"land_id"`
	SoilType       string            `json:"soil_type"`
	Season         string            `json:"season"`
	IrrigationType string            `json:"irrigation_type"`
	Notes          string            `json:"notes"`
	Crops          []cropLineRequest `json:"crops"`
	// ApprovalStatus is accepted and ignored; new plans start pending.
	ApprovalStatus *string `json:"approval_status"`
}

type cropPlanPatchRequest struct {
	SoilType       *string                `json:"soil_type"`
	Season         *string                `json:"season"`
	IrrigationType *string                `json:"irrigation_type"`
	Notes          *string                `json:"notes"`
	ApprovalStatus *domain.ApprovalStatus `json:"approval_status"`
	AdminRemark    *string                `json:"admin_remark"`
	Crops          *[]cropLineRequest     `json:"crops"`
}

// toAllocationLines converts request lines. Unreadable acres become nil and
// are dropped by allocation validation; malformed dates are rejected.
func toAllocationLines(in []cropLineRequest) ([]domain.AllocationLine, error) {
	out := make([]domain.AllocationLine, 0, len(in))
	var fieldErrs []apperrors.FieldError
	for i, r := range in {
		line := domain.AllocationLine{
			CropName:             strings.TrimSpace(r.CropName),
			Acres:                flexibleAcres(r.Acres),
			SeedVariety:          r.SeedVariety,
			ExpectedYieldPerAcre: r.ExpectedYieldPerAcre,
		}
		var fe *apperrors.FieldError
		if line.SowingDate, fe = parseOptionalDate(fmt.Sprintf("crops[%d].sowing_date", i), r.SowingDate); fe != nil {
			fieldErrs = append(fieldErrs, *fe)
		}
		if line.ExpectedHarvestDate, fe = parseOptionalDate(fmt.Sprintf("crops[%d].expected_harvest_date", i), r.ExpectedHarvestDate); fe != nil {
			fieldErrs = append(fieldErrs, *fe)
		}
		out = append(out, line)
	}
	if len(fieldErrs) > 0 {
		return nil, apperrors.BadRequest(apperrors.CodeValidationFailed, "invalid crop lines").WithFieldErrors(fieldErrs)
	}
	return out, nil
}

// ListCropPlans handles GET /crop-plans.
func (s *Server) ListCropPlans(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	plans, err := s.farmers.ListCropPlans(c.Request.Context(), actor)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, itemList(plans))
}

// CreateCropPlan handles POST /crop-plans.
func (s *Server) CreateCropPlan(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req cropPlanCreateRequest
	if !bindJSON(c, &req) {
		return
	}
	lines, err := toAllocationLines(req.Crops)
	if err != nil {
		_ = c.Error(err)
		return
	}
	plan, err := s.farmers.CreateCropPlan(c.Request.Context(), actor, domain.CropPlanInput{
		LandID:         req.LandID,
		SoilType:       req.SoilType,
		Season:         req.Season,
		IrrigationType: req.IrrigationType,
		Notes:          req.Notes,
		Crops:          lines,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

// GetCropPlan handles GET /crop-plans/{plan_id}.
func (s *Server) GetCropPlan(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	planID, ok := pathID(c, "plan_id")
	if !ok {
		return
	}
	plan, err := s.farmers.GetCropPlan(c.Request.Context(), actor, planID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// UpdateCropPlan handles PATCH /crop-plans/{plan_id}.
func (s *Server) UpdateCropPlan(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	planID, ok := pathID(c, "plan_id")
	if !ok {
		return
	}
	var req cropPlanPatchRequest
	if !bindJSON(c, &req) {
		return
	}
	patch := domain.CropPlanPatch{
		SoilType:       req.SoilType,
		Season:         req.Season,
		IrrigationType: req.IrrigationType,
		Notes:          req.Notes,
		ApprovalStatus: req.ApprovalStatus,
		AdminRemark:    req.AdminRemark,
	}
	if req.Crops != nil {
		lines, err := toAllocationLines(*req.Crops)
		if err != nil {
			_ = c.Error(err)
			return
		}
		patch.Crops = &lines
	}
	plan, err := s.farmers.UpdateCropPlan(c.Request.Context(), actor, planID, patch)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// DeleteCropPlan handles DELETE /crop-plans/{plan_id}.
func (s *Server) DeleteCropPlan(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	planID, ok := pathID(c, "plan_id")
	if !ok {
		return
	}
	if err := s.farmers.DeleteCropPlan(c.Request.Context(), actor, planID); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
