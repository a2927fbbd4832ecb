package controller

import (
	"study_tracker_backend/internal/model"
	"study_tracker_backend/internal/service"
	"study_tracker_backend/internal/util"
	"time"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	ProgressService  *service.ProgressService
	AnalyticsService *service.AnalyticsService
}

func NewAnalyticsController(progressService *service.ProgressService, analyticsService *service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{
		ProgressService:  progressService,
		AnalyticsService: analyticsService,
	}
}

// @Summary 获取聚合分析快照
// @Description 摄取全量记录后派生 KPI、连续天数、周速率、burn-up 和主题均值
// @Tags 分析
// @Produce json
// @Param range query string false "日期范围 (all/4w/12w/ytd)" default(all)
// @Param database query string false "覆盖默认数据库ID"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 500 {object} util.Response
// @Router /analytics/snapshot [get]
func (c *AnalyticsController) GetSnapshot(ctx *gin.Context) {
	databaseID, ok := databaseOverride(ctx)
	if !ok {
		util.BadQuery(ctx, "database must be a non-empty string")
		return
	}

	rng, ok := model.ParseRangeFilter(ctx.Query("range"))
	if !ok {
		util.BadQuery(ctx, "range must be one of all, 4w, 12w, ytd")
		return
	}

	records, err := c.ProgressService.Ingest(ctx.Request.Context(), databaseID)
	if err != nil {
		util.LogServerError(ctx, err)
		return
	}

	snapshot := c.AnalyticsService.Snapshot(records, rng, time.Now())
	util.Success(ctx, snapshot)
}

// @Summary 周下钻明细
// @Description 返回派生日期落在指定周（周一起点，UTC）内的记录，按日期升序
// @Tags 分析
// @Produce json
// @Param weekStart path string true "周起点日期 (YYYY-MM-DD)"
// @Param range query string false "日期范围 (all/4w/12w/ytd)" default(all)
// @Param database query string false "覆盖默认数据库ID"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 500 {object} util.Response
// @Router /analytics/weeks/{weekStart} [get]
func (c *AnalyticsController) GetWeekDetail(ctx *gin.Context) {
	databaseID, ok := databaseOverride(ctx)
	if !ok {
		util.BadQuery(ctx, "database must be a non-empty string")
		return
	}

	rng, ok := model.ParseRangeFilter(ctx.Query("range"))
	if !ok {
		util.BadQuery(ctx, "range must be one of all, 4w, 12w, ytd")
		return
	}

	weekStart, err := time.Parse(util.DateFormat, ctx.Param("weekStart"))
	if err != nil {
		util.BadQuery(ctx, "weekStart must be a date like 2026-01-05")
		return
	}

	records, err := c.ProgressService.Ingest(ctx.Request.Context(), databaseID)
	if err != nil {
		util.LogServerError(ctx, err)
		return
	}

	detail := c.AnalyticsService.WeekRecords(records, weekStart, rng, time.Now())
	util.Success(ctx, detail)
}
