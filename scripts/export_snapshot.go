// 手动导出一次聚合分析快照
//
// 不经过 HTTP 层：直接全量摄取数据源并把快照以 JSON 打到标准输出
// （或 -o 指定的文件），便于离线归档或接入其他工具。
//
// 用法: go run scripts/export_snapshot.go [-range all|4w|12w|ytd] [-o snapshot.json]

package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"study_tracker_backend/internal/config"
	"study_tracker_backend/internal/model"
	"study_tracker_backend/internal/repository"
	"study_tracker_backend/internal/service"
	"study_tracker_backend/pkg/logger"
	"time"
)

func main() {
	rangeArg := flag.String("range", "all", "日期范围 (all/4w/12w/ytd)")
	outPath := flag.String("o", "", "输出文件，缺省为标准输出")
	flag.Parse()

	rng, ok := model.ParseRangeFilter(*rangeArg)
	if !ok {
		log.Fatalf("非法的 range 参数: %s", *rangeArg)
	}

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	logger.InitLogger(cfg)

	progressService := service.NewProgressService(repository.NewNotionRepository(cfg.Notion), config.NewStore(cfg))
	analyticsService := service.NewAnalyticsService()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	records, err := progressService.Ingest(ctx, "")
	if err != nil {
		log.Fatalf("摄取失败: %v", err)
	}

	snapshot := analyticsService.Snapshot(records, rng, time.Now())

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		log.Fatalf("序列化快照失败: %v", err)
	}
	data = append(data, '\n')

	if *outPath == "" {
		os.Stdout.Write(data)
		return
	}
	if err := os.WriteFile(*outPath, data, 0644); err != nil {
		log.Fatalf("写出文件失败: %v", err)
	}
	log.Printf("快照已写入 %s（%d 条记录）", *outPath, len(records))
}
