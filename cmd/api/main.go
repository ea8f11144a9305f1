package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/bipin523396/cinema-booking/internal/api"
	"github.com/bipin523396/cinema-booking/internal/api/handler"
	custommw "github.com/bipin523396/cinema-booking/internal/api/middleware"
	"github.com/bipin523396/cinema-booking/internal/application"
	"github.com/bipin523396/cinema-booking/internal/config"
	"github.com/bipin523396/cinema-booking/internal/infrastructure/postgres"
	"github.com/bipin523396/cinema-booking/internal/infrastructure/queue"
	redisinfra "github.com/bipin523396/cinema-booking/internal/infrastructure/redis"
	"github.com/bipin523396/cinema-booking/internal/pkg/logger"
	"github.com/bipin523396/cinema-booking/internal/pkg/metrics"
	"github.com/bipin523396/cinema-booking/internal/worker"
)

const (
	shutdownTimeout      = 10 * time.Second
	cacheRefreshInterval = 1 * time.Minute
)

func main() {
	// .env ファイル読み込み（存在しない場合は無視）
	_ = godotenv.Load()

	cfg := config.Load()

	// ロガー初期化
	log := logger.NewLogger(os.Getenv("APP_ENV"))
	logger.Set(log)
	defer func() { _ = logger.Sync() }()

	// メトリクス初期化
	m := metrics.Init()

	// PostgreSQL 接続
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		log.Fatal("データベース接続失敗", zap.Error(err))
	}
	defer db.Close()

	// マイグレーション実行
	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "migrations"
	}
	if err := postgres.RunMigrations(db.DB, migrationsPath); err != nil {
		log.Fatal("マイグレーション失敗", zap.Error(err))
	}

	// リポジトリ
	seatRepo := postgres.NewSeatRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	txManager := postgres.NewTxManager(db)

	// Redis 接続（利用不可の場合は分散ロック・キャッシュなしで継続）
	var (
		lockManager redisinfra.LockManagerInterface
		seatCache   redisinfra.SeatCacheInterface
	)
	redisClient, err := redisinfra.NewClient(&redisinfra.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("Redis接続失敗（分散ロック・キャッシュなしで継続）", zap.Error(err))
	} else {
		defer redisClient.Close()
		lockManager = redisinfra.NewLockManager(redisClient)
		seatCache = redisinfra.NewSeatCache(redisClient)
	}

	// メッセージブローカー接続（AMQP_URL 未設定の場合は無効）
	var publisher queue.Publisher
	if cfg.Queue.URL != "" {
		pub, err := queue.NewAMQPPublisher(cfg.Queue.URL)
		if err != nil {
			log.Warn("メッセージブローカー接続失敗（イベント発行なしで継続）", zap.Error(err))
		} else {
			defer pub.Close()
			publisher = pub
		}
	}

	// サービス
	catalogService := application.NewCatalogService(seatRepo, seatCache)
	bookingService := application.NewBookingService(
		txManager, bookingRepo, seatRepo, lockManager, seatCache, publisher,
	)

	// 初期座席データ投入（座席テーブルが空の場合のみ）
	seedCtx, seedCancel := context.WithTimeout(context.Background(), 30*time.Second)
	seeded, err := catalogService.SeedIfEmpty(seedCtx)
	seedCancel()
	if err != nil {
		log.Fatal("初期座席データ投入失敗", zap.Error(err))
	}
	if seeded > 0 {
		log.Info("初期座席データを投入", zap.Int("seats", seeded))
	}

	// キャッシュリフレッシャーワーカー（Redis利用時のみ）
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	var refresher *worker.SeatCacheRefresher
	if seatCache != nil {
		refresher = worker.NewSeatCacheRefresher(catalogService, cacheRefreshInterval)
		go refresher.Start(workerCtx)
	}

	// Echo セットアップ
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	custommw.SetupMiddleware(e)
	e.Use(custommw.PrometheusMiddleware(m))

	registerRoutes(e, catalogService, bookingService)

	// サーバー起動
	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("サーバーをシャットダウンしています...")

	if refresher != nil {
		workerCancel()
		refresher.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal("サーバーシャットダウンエラー", zap.Error(err))
	}

	log.Info("サーバーが正常にシャットダウンしました")
}

// registerRoutes はAPIルートを登録する
func registerRoutes(
	e *echo.Echo,
	catalogService handler.CatalogServiceInterface,
	bookingService handler.BookingServiceInterface,
) {
	healthHandler := handler.NewHealthHandler()
	catalogHandler := handler.NewCatalogHandler(catalogService)
	bookingHandler := handler.NewBookingHandler(bookingService)

	e.GET("/health", healthHandler.Check)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), custommw.MetricsBasicAuth())

	apiGroup := e.Group("/api")

	// カタログ
	apiGroup.GET("/movies", catalogHandler.ListMovies)
	apiGroup.GET("/showtimes/:movie", catalogHandler.ListShowTimes)
	apiGroup.GET("/seats/:movie/:showtime", catalogHandler.ListSeats)
	apiGroup.GET("/seats/:movie/:showtime/available", catalogHandler.CountAvailableSeats)

	// 予約
	apiGroup.POST("/bookings", bookingHandler.Create)
	apiGroup.GET("/bookings", bookingHandler.List)
	apiGroup.GET("/bookings/:id", bookingHandler.GetByID)
	apiGroup.PUT("/bookings/:id", bookingHandler.UpdateContact)
	apiGroup.PUT("/bookings/:id/cancel", bookingHandler.Cancel)
	apiGroup.DELETE("/bookings/:id", bookingHandler.Delete)
}
