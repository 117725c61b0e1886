package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agroplan.io/agroplan/internal/domain"
)

type decisionRequest struct {
	ApprovalStatus domain.ApprovalStatus `json:"approval_status"`
	AdminRemark    *string               `json:"admin_remark"`
}

// AdminListFarmers handles GET /admin/farmers.
func (s *Server) AdminListFarmers(c *gin.Context) {
	filter, ok := statusFilter(c)
	if !ok {
		return
	}
	farmers, err := s.reviews.ListFarmers(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, itemList(farmers))
}

// AdminListLands handles GET /admin/lands.
func (s *Server) AdminListLands(c *gin.Context) {
	filter, ok := statusFilter(c)
	if !ok {
		return
	}
	lands, err := s.reviews.ListLands(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, itemList(lands))
}

// AdminDecideLand handles PATCH /admin/lands/{land_id}.
func (s *Server) AdminDecideLand(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	landID, ok := pathID(c, "land_id")
	if !ok {
		return
	}
	var req decisionRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := s.reviews.DecideLand(c.Request.Context(), actor, landID, domain.Decision{
		Status: req.ApprovalStatus,
		Remark: req.AdminRemark,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":         "Land approval updated",
		"approval_status": out.ApprovalStatus,
		"admin_remark":    out.AdminRemark,
	})
}

// AdminListCropPlans handles GET /admin/crop-plans.
func (s *Server) AdminListCropPlans(c *gin.Context) {
	filter, ok := statusFilter(c)
	if !ok {
		return
	}
	plans, err := s.reviews.ListCropPlans(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, itemList(plans))
}

// AdminDecideCropPlan handles PATCH /admin/crop-plans/{plan_id}.
func (s *Server) AdminDecideCropPlan(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	planID, ok := pathID(c, "plan_id")
	if !ok {
		return
	}
	var req decisionRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := s.reviews.DecideCropPlan(c.Request.Context(), actor, planID, domain.Decision{
		Status: req.ApprovalStatus,
		Remark: req.AdminRemark,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":         "Crop plan approval updated",
		"approval_status": out.ApprovalStatus,
		"admin_remark":    out.AdminRemark,
	})
}

// AdminListAllocationOverruns handles GET /admin/allocation-overruns.
func (s *Server) AdminListAllocationOverruns(c *gin.Context) {
	overruns, err := s.reviews.ListOverruns(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, itemList(overruns))
}
