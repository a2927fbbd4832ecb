package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"study_tracker_backend/internal/config"
	"study_tracker_backend/internal/controller"
	"study_tracker_backend/internal/repository"
	"study_tracker_backend/internal/service"
	"study_tracker_backend/pkg/configwatcher"
	"study_tracker_backend/pkg/logger"
	"study_tracker_backend/pkg/monitoring"
	"study_tracker_backend/pkg/security"
	"study_tracker_backend/pkg/tracing"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

type App struct {
	Router          *gin.Engine
	store           *config.Store
	tracerProvider  *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	notion *repository.NotionRepository
}

type services struct {
	progress  *service.ProgressService
	analytics *service.AnalyticsService
}

type controllers struct {
	progress  *controller.ProgressController
	analytics *controller.AnalyticsController
	health    *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(cfg *config.Config) *repositories {
	return &repositories{
		notion: repository.NewNotionRepository(cfg.Notion),
	}
}

func (a *App) initServices(repos *repositories) *services {
	return &services{
		progress:  service.NewProgressService(repos.notion, a.store),
		analytics: service.NewAnalyticsService(),
	}
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		progress:  controller.NewProgressController(s.progress),
		analytics: controller.NewAnalyticsController(s.progress, s.analytics),
		health:    controller.NewHealthController(a.store),
	}
}

func rateLimitSettings(cfg *config.Config) (int, time.Duration) {
	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 600
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	return maxRequests, window
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	cors := security.NewCORSPolicy(cfg.CORS.AllowedOrigins)
	router.Use(cors.Middleware())
	router.Use(security.Secure())

	limiter := security.NewIPRateLimiter(rateLimitSettings(cfg))
	router.Use(limiter.Middleware())

	// 白名单和限额跟随配置热更新
	a.RegisterConfigCallback(func(cfg *config.Config) {
		cors.Update(cfg.CORS.AllowedOrigins)
		limiter.Update(rateLimitSettings(cfg))
	})

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startConfigWatch 监听配置文件变化。新配置整体换入 store，
// 在途请求继续用旧快照跑完，不做原地修改
func (a *App) startConfigWatch() {
	go configwatcher.WatchConfig("configs/config.yaml", func(cfg *config.Config) {
		a.store.Swap(cfg)
		logger.SetMode(cfg.Server.Mode)
		logger.Log.Info("config reloaded")
		for _, cb := range a.configCallbacks {
			cb(cfg)
		}
	})
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	app := &App{
		store: config.NewStore(cfg),
	}

	repos := app.initRepositories(cfg)
	services := app.initServices(repos)
	controllers := app.initControllers(services)

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("study-tracker", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracerProvider = tp
	}

	app.registerRoutes(router, controllers)
	app.startConfigWatch()

	return app
}

func (a *App) Run() {
	port := a.store.Load().Server.Port
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	log.Println("Server exiting")
}
