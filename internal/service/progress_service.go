package service

import (
	"context"
	"fmt"
	"study_tracker_backend/internal/config"
	"study_tracker_backend/internal/model"
	"study_tracker_backend/internal/repository"
	"study_tracker_backend/internal/util"
	"study_tracker_backend/pkg/logger"
	"study_tracker_backend/pkg/monitoring"
	"study_tracker_backend/pkg/tracing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ProgressService 摄取管道：逐页拉取原始记录并映射为规范序列
type ProgressService struct {
	NotionRepo *repository.NotionRepository
	cfg        *config.Store
}

func NewProgressService(notionRepo *repository.NotionRepository, cfg *config.Store) *ProgressService {
	return &ProgressService{
		NotionRepo: notionRepo,
		cfg:        cfg,
	}
}

// Ingest 全量摄取。databaseID 为空时使用当前配置快照中的默认数据库。
// 任何一页拉取失败则整次摄取失败，已取的页全部丢弃：累计/连续类
// 统计必须基于完整快照，不提供部分结果。
func (s *ProgressService) Ingest(ctx context.Context, databaseID string) ([]model.ProgressRecord, error) {
	if databaseID == "" {
		databaseID = s.cfg.Load().Notion.DatabaseID
	}

	ctx, span := tracing.Tracer.Start(ctx, "ingest.run")
	defer span.End()
	span.SetAttributes(attribute.String("source.database_id", databaseID))

	start := time.Now()
	now := start.UTC()

	var records []model.ProgressRecord
	cursor := ""
	pages := 0

	for {
		page, err := s.NotionRepo.QueryDatabase(ctx, databaseID, cursor)
		if err != nil {
			monitoring.IngestionFailures.Inc()
			logger.Log.Error("ingestion aborted",
				zap.Int("pages_fetched", pages),
				zap.Error(err))
			return nil, fmt.Errorf("%w: %v", util.ErrSourceUnavailable, err)
		}

		pages++
		monitoring.SourcePagesFetched.Inc()

		for _, raw := range page.Results {
			records = append(records, MapRecord(raw, now))
		}

		if !page.HasMore || page.NextCursor == nil || *page.NextCursor == "" {
			break
		}
		cursor = *page.NextCursor
	}

	span.SetAttributes(
		attribute.Int("source.pages", pages),
		attribute.Int("records.mapped", len(records)),
	)
	monitoring.RecordsMapped.Add(float64(len(records)))
	monitoring.IngestionDuration.Observe(time.Since(start).Seconds())
	logger.Log.Info("ingestion completed",
		zap.Int("pages", pages),
		zap.Int("records", len(records)))

	return records, nil
}
