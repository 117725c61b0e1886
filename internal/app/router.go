package app

import (
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"agroplan.io/agroplan/internal/api/handlers"
	"agroplan.io/agroplan/internal/api/middleware"
	"agroplan.io/agroplan/internal/config"
	"agroplan.io/agroplan/internal/domain"
)

const apiBasePath = "/api/v1"

// defaultDevOrigins are allowed when no origin is configured.
var defaultDevOrigins = []string{"http://localhost:3000", "http://localhost:5173"}

func newRouter(cfg *config.Config, server *handlers.Server, jwtCfg middleware.JWTConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), cors.New(buildCORSConfig(cfg)), middleware.ErrorHandler())

	router.GET("/health/live", server.GetLiveness)
	router.GET("/health/ready", server.GetReadiness)

	api := router.Group(apiBasePath)
	api.Use(middleware.MustOpenAPIValidator(middleware.ValidatorOptions{
		BasePath:          apiBasePath,
		ValidateResponses: gin.Mode() != gin.ReleaseMode,
	}))
	api.GET("/yield-estimate", server.GetYieldEstimate)

	authed := api.Group("")
	authed.Use(middleware.JWTAuth(jwtCfg))

	farmer := authed.Group("")
	farmer.Use(middleware.RequireRole(domain.RoleFarmer))
	{
		farmer.GET("/farmer/profile", server.GetProfile)
		farmer.POST("/farmer/profile", server.RegisterProfile)
		farmer.PATCH("/farmer/profile", server.UpdateProfile)

		farmer.GET("/lands", server.ListLands)
		farmer.POST("/lands", server.CreateLand)
		farmer.GET("/lands/:land_id", server.GetLand)
		farmer.PATCH("/lands/:land_id", server.UpdateLand)
		farmer.DELETE("/lands/:land_id", server.DeleteLand)

		farmer.GET("/crop-plans", server.ListCropPlans)
		farmer.POST("/crop-plans", server.CreateCropPlan)
		farmer.GET("/crop-plans/:plan_id", server.GetCropPlan)
		farmer.PATCH("/crop-plans/:plan_id", server.UpdateCropPlan)
		farmer.DELETE("/crop-plans/:plan_id", server.DeleteCropPlan)

		farmer.GET("/crop-recommendations", server.GetCropRecommendations)

		farmer.GET("/notifications", server.ListNotifications)
		farmer.PATCH("/notifications/:notification_id/read", server.MarkNotificationRead)
	}

	admin := authed.Group("/admin")
	admin.Use(middleware.RequireRole(domain.RoleAdmin))
	{
		admin.GET("/farmers", server.AdminListFarmers)
		admin.GET("/lands", server.AdminListLands)
		admin.PATCH("/lands/:land_id", server.AdminDecideLand)
		admin.GET("/crop-plans", server.AdminListCropPlans)
		admin.PATCH("/crop-plans/:plan_id", server.AdminDecideCropPlan)
		admin.GET("/allocation-overruns", server.AdminListAllocationOverruns)

		admin.GET("/yield-configs", server.AdminListYieldConfigs)
		admin.POST("/yield-configs", server.AdminCreateYieldConfig)
		admin.PATCH("/yield-configs/:config_id", server.AdminUpdateYieldConfig)
		admin.POST("/yield-configs/import", server.AdminImportYieldConfigs)
		admin.GET("/yield-configs/export", server.AdminExportYieldConfigs)
	}
	return router
}

// buildCORSConfig turns the server settings into a cors.Config. A "*" origin
// only takes effect with UnsafeAllowAllOrigins, which also drops credentials.
func buildCORSConfig(cfg *config.Config) cors.Config {
	out := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader, "Content-Disposition"},
		AllowCredentials: cfg.Server.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}

	if cfg.Server.UnsafeAllowAllOrigins && slices.Contains(cfg.Server.AllowedOrigins, "*") {
		out.AllowAllOrigins = true
		out.AllowCredentials = false
		return out
	}

	origins := make([]string, 0, len(cfg.Server.AllowedOrigins))
	for _, o := range cfg.Server.AllowedOrigins {
		o = strings.TrimSpace(o)
		if o == "" || o == "*" {
			continue
		}
		origins = append(origins, o)
	}
	if len(origins) == 0 {
		origins = append(origins, defaultDevOrigins...)
	}
	out.AllowOrigins = origins
	return out
}
