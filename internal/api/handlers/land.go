package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agroplan.io/agroplan/internal/domain"
)

// ListLands handles GET /lands.
func (s *Server) ListLands(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	onlyApproved, ok := queryBool(c, "only_approved")
	if !ok {
		return
	}
	lands, err := s.farmers.ListLands(c.Request.Context(), actor, onlyApproved)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, itemList(lands))
}

// CreateLand handles POST /lands.
func (s *Server) CreateLand(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req domain.LandPatch
	if !bindJSON(c, &req) {
		return
	}
	land, err := s.farmers.CreateLand(c.Request.Context(), actor, req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, land)
}

// GetLand handles GET /lands/{land_id}.
func (s *Server) GetLand(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	landID, ok := pathID(c, "land_id")
	if !ok {
		return
	}
	land, err := s.farmers.GetLand(c.Request.Context(), actor, landID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, land)
}

// UpdateLand handles PATCH /lands/{land_id}.
func (s *Server) UpdateLand(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	landID, ok := pathID(c, "land_id")
	if !ok {
		return
	}
	var req domain.LandPatch
	if !bindJSON(c, &req) {
		return
	}
	land, err := s.farmers.UpdateLand(c.Request.Context(), actor, landID, req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, land)
}

// DeleteLand handles DELETE /lands/{land_id}.
func (s *Server) DeleteLand(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	landID, ok := pathID(c, "land_id")
	if !ok {
		return
	}
	if err := s.farmers.DeleteLand(c.Request.Context(), actor, landID); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
