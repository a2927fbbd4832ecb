package app

import (
	"study_tracker_backend/docs"
	"study_tracker_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")
	{
		api.GET("/health", c.health.HealthCheck)

		// 进度：全量摄取后的规范记录序列
		api.GET("/progress", c.progress.GetProgress)

		// 分析：聚合快照与周下钻
		analytics := api.Group("/analytics")
		{
			analytics.GET("/snapshot", c.analytics.GetSnapshot)
			analytics.GET("/weeks/:weekStart", c.analytics.GetWeekDetail)
		}
	}
}
