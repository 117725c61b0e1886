package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"agroplan.io/agroplan/internal/domain"
	apperrors "agroplan.io/agroplan/internal/pkg/errors"
)

type profileRequest struct {
	domain.FarmerProfile
	// ApprovalStatus is derived from the farmer's lands and cannot be written.
	ApprovalStatus *string `json:"approval_status"`
}

// RegisterProfile handles POST /farmer/profile.
func (s *Server) RegisterProfile(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req profileRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.ApprovalStatus != nil {
		_ = c.Error(apperrors.ErrInvalidRequestFieldf("approval_status"))
		return
	}
	f, err := s.farmers.RegisterProfile(c.Request.Context(), actor, req.FarmerProfile)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

// GetProfile handles GET /farmer/profile.
func (s *Server) GetProfile(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	f, err := s.farmers.GetProfile(c.Request.Context(), actor)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, f)
}

// UpdateProfile handles PATCH /farmer/profile.
func (s *Server) UpdateProfile(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req profileRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.ApprovalStatus != nil {
		_ = c.Error(apperrors.ErrInvalidRequestFieldf("approval_status"))
		return
	}
	f, err := s.farmers.UpdateProfile(c.Request.Context(), actor, req.FarmerProfile)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, f)
}

// ListNotifications handles GET /notifications.
func (s *Server) ListNotifications(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	unreadOnly, ok := queryBool(c, "unread_only")
	if !ok {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			_ = c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed, "limit must be a positive integer"))
			return
		}
		limit = n
	}
	items, err := s.farmers.ListNotifications(c.Request.Context(), actor, unreadOnly, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, itemList(items))
}

// MarkNotificationRead handles PATCH /notifications/{notification_id}/read.
func (s *Server) MarkNotificationRead(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "notification_id")
	if !ok {
		return
	}
	if err := s.farmers.MarkNotificationRead(c.Request.Context(), actor, id); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
