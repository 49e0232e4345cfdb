package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	assistantHandler "recipe-assistant/internal/api/handlers/assistant"
	"recipe-assistant/internal/api/handlers/health"
	webhookHandler "recipe-assistant/internal/api/handlers/webhook"
	"recipe-assistant/internal/api/middleware"
	coreAssistant "recipe-assistant/internal/core/assistant"
	"recipe-assistant/internal/core/line"
	"recipe-assistant/internal/core/ner"
	"recipe-assistant/internal/core/recipe"
	"recipe-assistant/internal/core/session"
	"recipe-assistant/internal/infrastructure/config"
	"recipe-assistant/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// 超時設置
	timeoutDuration = 30 * time.Second
	// 請求體大小限制 (1MB)
	maxBodySize = 1 << 20
)

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, engine *recipe.Engine, sessionStore session.Store) (*gin.Engine, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 創建路由引擎
	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New()) // 自動生成請求 ID

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID", "X-Line-Signature"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(maxBodySize))

	// 限流設置
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	common.LogInfo("Initializing services",
		zap.String("session_store", cfg.Session.Store),
		zap.String("ner_base_url", cfg.NER.BaseURL),
		zap.Bool("line_enabled", cfg.Line.Enabled),
		zap.Duration("timeout", timeoutDuration),
	)

	// 初始化食材辨識客戶端
	extractor := ner.NewClient(&cfg.NER)

	// 初始化對話協調器
	asst := coreAssistant.New(engine, extractor, sessionStore, &cfg.Recommend)
	if asst == nil {
		common.LogError("Failed to initialize assistant")
		return nil, fmt.Errorf("failed to initialize assistant")
	}

	// 全局中間件：設置超時和服務
	router.Use(func(c *gin.Context) {
		// 設置請求超時
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()

		// 創建新的請求上下文
		req := c.Request.WithContext(ctx)
		c.Request = req

		// 設置配置與服務
		c.Set("config", cfg)
		c.Set("recipe_index", engine.Index())
		c.Set("session_store", sessionStore)

		// 處理請求
		c.Next()

		// 檢查是否超時
		if ctx.Err() == context.DeadlineExceeded {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", c.GetHeader("X-Request-ID")),
				zap.Duration("timeout", timeoutDuration),
			)
			c.JSON(http.StatusGatewayTimeout, gin.H{
				"error": "Request timeout",
				"code":  "REQUEST_TIMEOUT",
				"details": gin.H{
					"timeout": timeoutDuration.String(),
				},
			})
			c.Abort()
			return
		}
	})

	// 健康檢查路由
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	// LINE webhook 路由
	if cfg.Line.Enabled {
		lineClient := line.NewClient(&cfg.Line)
		webhook := webhookHandler.NewHandler(lineClient, asst)
		router.POST("/callback", webhook.HandleCallback)
	}

	// API 路由組
	api := router.Group("/api/v1")
	{
		handler := assistantHandler.NewHandler(asst, sessionStore)

		assistantGroup := api.Group("/assistant")
		if cfg.DedupWindow > 0 {
			assistantGroup.Use(middleware.Deduplication(cfg))
		}
		{
			// 依句子推薦食譜
			assistantGroup.POST("/recommend", handler.HandleRecommend)

			// 依推薦編號查詢做法
			assistantGroup.POST("/recipe", handler.HandleRecipeByRank)
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
		zap.Int("recipes", engine.Index().RecipeCount()),
		zap.Int("tokens", engine.Index().TokenCount()),
		zap.Bool("line_enabled", cfg.Line.Enabled),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router, nil
}
