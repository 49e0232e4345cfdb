package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig        `mapstructure:"app"`
	Server      ServerConfig     `mapstructure:"server"`
	Corpus      CorpusConfig     `mapstructure:"corpus"`
	Normalizer  NormalizerConfig `mapstructure:"normalizer"`
	Recommend   RecommendConfig  `mapstructure:"recommend"`
	Session     SessionConfig    `mapstructure:"session"`
	NER         NERConfig        `mapstructure:"ner"`
	Line        LineConfig       `mapstructure:"line"`
	RateLimit   RateLimitConfig  `mapstructure:"rate_limit"`
	DedupWindow time.Duration    `mapstructure:"dedup_window"`
	LogLevel    string           `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env      string `mapstructure:"env"`
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
	Version  string `mapstructure:"version"`
	Name     string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// CorpusConfig 食譜資料設定
type CorpusConfig struct {
	Path string `mapstructure:"path"`
}

// NormalizerConfig 食材正規化設定
// StripTokens 為會從食材名稱移除的量詞／單位詞彙，依序套用
type NormalizerConfig struct {
	StripTokens []string `mapstructure:"strip_tokens"`
}

// RecommendConfig 推薦引擎設定
type RecommendConfig struct {
	TopK           int     `mapstructure:"top_k"`
	AllowMissing   bool    `mapstructure:"allow_missing"`
	MaxMissing     int     `mapstructure:"max_missing"`
	MinOverlap     int     `mapstructure:"min_overlap"`
	OverlapWeight  float64 `mapstructure:"overlap_weight"`
	MissingPenalty float64 `mapstructure:"missing_penalty"`
	RatioWeight    float64 `mapstructure:"ratio_weight"`
}

// SessionConfig 推薦紀錄快取設定
type SessionConfig struct {
	Store           string        `mapstructure:"store"` // memory 或 redis
	MaxUsers        int           `mapstructure:"max_users"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
}

// NERConfig 食材辨識服務設定
type NERConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
	MinScore float64       `mapstructure:"min_score"`
}

// LineConfig LINE Messaging API 設定
type LineConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	ChannelSecret string `mapstructure:"channel_secret"`
	AccessToken   string `mapstructure:"access_token"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// 加載 .env 文件，沒有 .env 時改用環境變數與預設值
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using environment variables")
	}

	// 設定預設值
	setDefaults()

	// 設定環境變數前綴
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 綁定環境變量
	viper.BindEnv("corpus.path", "CORPUS_PATH")
	viper.BindEnv("ner.base_url", "NER_BASE_URL")
	viper.BindEnv("line.enabled", "LINE_ENABLED")
	viper.BindEnv("line.channel_secret", "CHANNEL_SECRET")
	viper.BindEnv("line.access_token", "CHANNEL_ACCESS_TOKEN")
	viper.BindEnv("session.store", "SESSION_STORE")
	viper.BindEnv("session.redis_addr", "SESSION_REDIS_ADDR")
	viper.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	viper.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	viper.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	viper.BindEnv("dedup_window", "DEDUP_WINDOW")
	viper.BindEnv("log_level", "LOG_LEVEL")

	// 設定設定檔名稱和路徑
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	// 讀取設定檔
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 添加調試日誌（logger 尚未初始化，改用 fmt.Println）
	fmt.Println("Loading configuration", "corpus_path:", viper.GetString("corpus.path"), "session_store:", viper.GetString("session.store"), "channel_secret:", maskSecret(viper.GetString("line.channel_secret")))

	// 解析設定
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// maskSecret 遮罩憑證，只顯示前後各 4 個字符
func maskSecret(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// setDefaults 設定預設值
func setDefaults() {
	// 應用程式設定
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.debug", true)
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.name", "recipe-assistant")

	// 伺服器設定
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	// 食譜資料設定
	viper.SetDefault("corpus.path", "data/icook_data.json")

	// 正規化設定：預設量詞／單位詞彙
	viper.SetDefault("normalizer.strip_tokens", []string{
		"顆", "條", "片", "絲", "克", "g", "kg",
		"匙", "茶匙", "大匙", "杯", "罐", "包", "塊",
		"少許", "適量", "些許",
	})

	// 推薦引擎設定
	viper.SetDefault("recommend.top_k", 5)
	viper.SetDefault("recommend.allow_missing", true)
	viper.SetDefault("recommend.max_missing", 10)
	viper.SetDefault("recommend.min_overlap", 1)
	viper.SetDefault("recommend.overlap_weight", 10.0)
	viper.SetDefault("recommend.missing_penalty", 1.0)
	viper.SetDefault("recommend.ratio_weight", 200.0)

	// 推薦紀錄快取設定
	viper.SetDefault("session.store", "memory")
	viper.SetDefault("session.max_users", 1000)
	viper.SetDefault("session.ttl", "24h")
	viper.SetDefault("session.cleanup_interval", "10m")
	viper.SetDefault("session.redis_addr", "localhost:6379")
	viper.SetDefault("session.redis_password", "")
	viper.SetDefault("session.redis_db", 0)

	// 食材辨識服務設定
	viper.SetDefault("ner.base_url", "http://localhost:8000")
	viper.SetDefault("ner.timeout", "10s")
	viper.SetDefault("ner.min_score", 0.0)

	// LINE 設定
	viper.SetDefault("line.enabled", false)

	// 限流設定
	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.requests", 100)
	viper.SetDefault("rate_limit.window", "1m")

	// 新增 dedup window 預設
	viper.SetDefault("dedup_window", "1s")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	// 驗證伺服器設定
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	// 驗證食譜資料設定
	if config.Corpus.Path == "" {
		return fmt.Errorf("corpus path is required")
	}

	// 驗證推薦引擎設定
	if config.Recommend.TopK <= 0 {
		return fmt.Errorf("invalid recommend top_k")
	}
	if config.Recommend.MaxMissing < 0 {
		return fmt.Errorf("invalid recommend max_missing")
	}
	if config.Recommend.MinOverlap < 0 {
		return fmt.Errorf("invalid recommend min_overlap")
	}

	// 驗證推薦紀錄快取設定
	switch config.Session.Store {
	case "memory":
		if config.Session.MaxUsers <= 0 {
			return fmt.Errorf("invalid session max users")
		}
		if config.Session.TTL <= 0 {
			return fmt.Errorf("invalid session ttl")
		}
		if config.Session.CleanupInterval <= 0 {
			return fmt.Errorf("invalid session cleanup interval")
		}
	case "redis":
		if config.Session.RedisAddr == "" {
			return fmt.Errorf("session redis addr is required")
		}
	default:
		return fmt.Errorf("unknown session store: %s", config.Session.Store)
	}

	// 驗證 LINE 設定
	if config.Line.Enabled {
		if config.Line.ChannelSecret == "" || config.Line.AccessToken == "" {
			return fmt.Errorf("line channel secret and access token are required")
		}
	}

	return nil
}
