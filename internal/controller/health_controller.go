package controller

import (
	"study_tracker_backend/internal/config"
	"study_tracker_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type HealthController struct {
	Config *config.Store
}

func NewHealthController(cfg *config.Store) *HealthController {
	return &HealthController{Config: cfg}
}

// @Summary 健康检查
// @Description 检查服务状态及数据源配置情况
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Router /health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	source := "configured"
	if c.Config.Load().Notion.DatabaseID == "" {
		source = "missing"
	}

	util.Success(ctx, gin.H{
		"status": "ok",
		"components": gin.H{
			"source": source,
		},
	})
}
