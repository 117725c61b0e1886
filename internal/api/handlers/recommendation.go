package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetCropRecommendations handles GET /crop-recommendations.
func (s *Server) GetCropRecommendations(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	rec, err := s.recommendations.Recommend(c.Request.Context(), actor)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, rec)
}
