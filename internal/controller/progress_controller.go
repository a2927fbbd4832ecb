package controller

import (
	"strings"
	"study_tracker_backend/internal/service"
	"study_tracker_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// databaseOverride 读取可选的数据源覆盖参数。
// 参数出现但为空白视为非法（BAD_QUERY），不出现则用默认数据库
func databaseOverride(ctx *gin.Context) (string, bool) {
	values, exists := ctx.GetQueryArray("database")
	if !exists {
		return "", true
	}
	v := strings.TrimSpace(values[0])
	if v == "" {
		return "", false
	}
	return v, true
}

// @Summary 获取全量学习进度记录
// @Description 从数据源全量摄取并返回规范化后的每日学习进度记录
// @Tags 进度
// @Produce json
// @Param database query string false "覆盖默认数据库ID"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 500 {object} util.Response
// @Router /progress [get]
func (c *ProgressController) GetProgress(ctx *gin.Context) {
	databaseID, ok := databaseOverride(ctx)
	if !ok {
		util.BadQuery(ctx, "database must be a non-empty string")
		return
	}

	records, err := c.ProgressService.Ingest(ctx.Request.Context(), databaseID)
	if err != nil {
		util.LogServerError(ctx, err)
		return
	}

	util.Success(ctx, records)
}
