package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recipe-assistant/internal/api"
	"recipe-assistant/internal/core/recipe"
	"recipe-assistant/internal/core/session"
	"recipe-assistant/internal/infrastructure/config"
	"recipe-assistant/internal/pkg/common"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 載入 .env
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found")
	}

	// 載入設定
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	// 使用 logger 記錄啟動信息
	common.LogInfo("載入設定",
		zap.String("corpus_path", cfg.Corpus.Path),
		zap.String("session_store", cfg.Session.Store),
		zap.String("ner_base_url", cfg.NER.BaseURL),
	)

	// 載入食譜資料並建立索引（一次性啟動工作，失敗直接中止）
	normalizer := recipe.NewNormalizer(cfg.Normalizer.StripTokens)
	recipes, err := recipe.LoadCorpus(cfg.Corpus.Path, normalizer)
	if err != nil {
		common.LogFatal("食譜資料載入失敗",
			zap.String("path", cfg.Corpus.Path),
			zap.Error(err),
		)
	}
	index := recipe.BuildIndex(recipes)

	common.LogInfo("食譜索引已建立",
		zap.Int("食譜數", index.RecipeCount()),
		zap.Int("token數", index.TokenCount()),
	)

	// 建立推薦引擎
	engine := recipe.NewEngine(index, normalizer, recipe.ScoringWeights{
		OverlapWeight:  cfg.Recommend.OverlapWeight,
		MissingPenalty: cfg.Recommend.MissingPenalty,
		RatioWeight:    cfg.Recommend.RatioWeight,
	})

	// 初始化推薦紀錄存放區
	sessionStore, err := session.NewStore(&cfg.Session)
	if err != nil {
		common.LogFatal("推薦紀錄存放區初始化失敗", zap.Error(err))
	}
	defer sessionStore.Close()

	// 設置路由
	router, err := api.SetupRouter(cfg, engine, sessionStore)
	if err != nil {
		common.LogError("Failed to setup router", zap.Error(err))
		os.Exit(1)
	}

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			common.LogError("Failed to start server",
				zap.Error(err),
			)
			os.Exit(1)
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	// 設置關閉超時
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown",
			zap.Error(err),
		)
		os.Exit(1)
	}

	common.LogInfo("Server exited")
}
