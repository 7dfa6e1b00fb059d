package main

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"abyss-player/config"
	"abyss-player/handlers"
	"abyss-player/logger"
	"abyss-player/middleware"
	"abyss-player/player"
	"abyss-player/services"
)

// newStore 根据配置选择存储后端。
func newStore(cfg *config.Config) (services.Store, error) {
	switch cfg.Storage.Backend {
	case config.StorageBackendSQLite:
		return services.NewSQLiteStore(cfg.Storage.Path)
	default:
		return services.NewMemoryStore(), nil
	}
}

// setupRouter 组装全部路由。
func setupRouter(cfg *config.Config, store services.Store, flags player.FlagsStore) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID(), gin.Recovery())

	// 健康检查端点
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Abyss Player Server is running",
		})
	})

	// 创建处理器
	scanner := services.NewMediaScanner()
	playlistHandler := handlers.NewPlaylistHandler(store)
	groupHandler := handlers.NewGroupHandler(store)
	entryHandler := handlers.NewEntryHandler(store)
	scannerHandler := handlers.NewScannerHandler(scanner)
	groupingHandler := handlers.NewGroupingHandler(scanner, store)
	playerHandler := handlers.NewPlayerHandler(store, flags)
	appConfigHandler := handlers.NewAppConfigHandler(services.NewAppConfigService(cfg.State.AppConfigPath))
	sessionHandler := handlers.NewSessionHandler(services.NewSessionService(store))
	streamHandler := handlers.NewStreamHandler(store, cfg.Server.MaxRangeSize)

	// API 路由组
	api := router.Group("/api")
	{
		// 播放列表相关路由
		api.GET("/playlists", playlistHandler.Index)
		api.POST("/playlists", playlistHandler.Create)
		api.GET("/playlists/:id", playlistHandler.Show)
		api.DELETE("/playlists/:id", playlistHandler.Destroy)

		// 分组相关路由
		api.GET("/groups", groupHandler.Index)
		api.POST("/groups", groupHandler.Create)
		api.POST("/groups/sort", groupHandler.Sort)
		api.GET("/groups/:id", groupHandler.Show)
		api.DELETE("/groups/:id", groupHandler.Destroy)
		api.POST("/groups/:id/shift", groupHandler.Shift)

		// 条目相关路由
		api.GET("/entries", entryHandler.Index)
		api.POST("/entries", entryHandler.Create)
		api.POST("/entries/sort", entryHandler.Sort)
		api.GET("/entries/:id", entryHandler.Show)
		api.DELETE("/entries/:id", entryHandler.Destroy)
		api.POST("/entries/:id/shift", entryHandler.Shift)

		// 扫描相关路由
		api.GET("/scanner", scannerHandler.Index)

		// 分组工作流路由
		api.GET("/grouping", groupingHandler.Show)
		api.POST("/grouping/scan", groupingHandler.Scan)
		api.POST("/grouping/apply", groupingHandler.Apply)
		api.POST("/grouping/commit", groupingHandler.Commit)
		api.POST("/grouping/reset", groupingHandler.Reset)

		// 播放控制路由
		api.GET("/player/flags", playerHandler.ShowFlags)
		api.PUT("/player/flags", playerHandler.UpdateFlags)
		api.POST("/player/advance", playerHandler.Advance)
		api.POST("/player/completed", playerHandler.Completed)
		api.GET("/player/pending", playerHandler.Pending)

		// 应用配置路由
		api.GET("/app_config", appConfigHandler.Show)
		api.PUT("/app_config", appConfigHandler.Update)

		// 会话快照路由
		api.POST("/session/write", sessionHandler.Write)
		api.POST("/session/read", sessionHandler.Read)

		// 媒体流路由
		api.GET("/stream/:id", streamHandler.Stream)
	}

	return router
}

func main() {
	// 加载配置
	cfg, err := config.Load("config.json")
	if err != nil {
		logger.Warnf("加载配置文件失败,使用默认配置: %v", err)
		cfg = config.GetDefaultConfig()
	}

	// 初始化日志系统
	if _, err := logger.Init("abyss-player.log"); err != nil {
		logger.Warnf("日志文件初始化失败: %v", err)
	}

	// 初始化存储后端
	store, err := newStore(cfg)
	if err != nil {
		logger.Fatalf("初始化存储后端失败: %v", err)
	}

	flags := player.NewFileFlagsStore(cfg.State.FlagsPath)
	router := setupRouter(cfg, store, flags)

	// 启动服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("Abyss Player Server 启动中, 服务地址: http://localhost:%d, 存储后端: %s", cfg.Server.Port, cfg.Storage.Backend)

	if err := router.Run(addr); err != nil {
		logger.Fatalf("服务器启动失败: %v", err)
	}
}
