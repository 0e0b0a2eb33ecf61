package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/sokomart/internal/logger"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Log         LogConfig         `mapstructure:"log"`
	Database    DatabaseConfig    `mapstructure:"database"`
	AuthJWT     JWTConfig         `mapstructure:"auth_jwt"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Queue       QueueConfig       `mapstructure:"queue"`
	CORS        CORSConfig        `mapstructure:"cors"`
	Security    SecurityConfig    `mapstructure:"security"`
	Auction     AuctionConfig     `mapstructure:"auction"`
	Fulfillment FulfillmentConfig `mapstructure:"fulfillment"`
	Order       OrderConfig       `mapstructure:"order"`
	Payment     PaymentConfig     `mapstructure:"payment"`
	Notify      NotifyConfig      `mapstructure:"notify"`
	Feed        FeedConfig        `mapstructure:"feed"`
	Bootstrap   BootstrapConfig   `mapstructure:"bootstrap"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host          string `mapstructure:"host"`
	Port          string `mapstructure:"port"`
	Mode          string `mapstructure:"mode"` // debug / release
	PublicBaseURL string `mapstructure:"public_base_url"`
	DefaultLocale string `mapstructure:"default_locale"`
}

// LogConfig 日志配置
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"` // 数据库驱动（sqlite/postgres）
	DSN    string             `mapstructure:"dsn"`    // 数据库连接串
	Pool   DatabasePoolConfig `mapstructure:"pool"`
}

// JWTConfig 身份令牌校验配置（令牌由外部认证服务签发）
type JWTConfig struct {
	SecretKey   string `mapstructure:"secret"`
	Issuer      string `mapstructure:"issuer"`
	ExpireHours int    `mapstructure:"expire_hours"` // 仅 seed 签发开发令牌时使用
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig 异步队列配置
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	BidRateLimit  RateLimitConfig `mapstructure:"bid_rate_limit"`
	ScanRateLimit RateLimitConfig `mapstructure:"scan_rate_limit"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxAttempts   int `mapstructure:"max_attempts"`
	BlockSeconds  int `mapstructure:"block_seconds"`
}

// AuctionConfig 拍卖配置
type AuctionConfig struct {
	MinIncrement      int64 `mapstructure:"min_increment"`
	BidTimeoutMS      int   `mapstructure:"bid_timeout_ms"`
	CloseSweepSeconds int   `mapstructure:"close_sweep_seconds"`
}

// BidTimeout 出价事务超时
func (c AuctionConfig) BidTimeout() time.Duration {
	return millisOrDefault(c.BidTimeoutMS, 5000)
}

// FulfillmentConfig 履约配置
type FulfillmentConfig struct {
	LegacyLookup    bool `mapstructure:"legacy_lookup"`
	ScanTimeoutMS   int  `mapstructure:"scan_timeout_ms"`
	BackfillOnStart bool `mapstructure:"backfill_on_start"`
}

// ScanTimeout 扫码超时
func (c FulfillmentConfig) ScanTimeout() time.Duration {
	return millisOrDefault(c.ScanTimeoutMS, 5000)
}

// OrderConfig 订单配置
type OrderConfig struct {
	Currency       string `mapstructure:"currency"`
	DeliveryFee    string `mapstructure:"delivery_fee"`
	CommissionRate string `mapstructure:"commission_rate"`
	OrderNoPrefix  string `mapstructure:"order_no_prefix"`
}

// PaymentConfig 支付配置
type PaymentConfig struct {
	Mpesa MpesaConfig `mapstructure:"mpesa"`
}

// MpesaConfig M-Pesa 配置
type MpesaConfig struct {
	ShortCode         string `mapstructure:"short_code"`
	CallbackBaseURL   string `mapstructure:"callback_base_url"`
	CallbackTokenHash string `mapstructure:"callback_token_hash"` // bcrypt 哈希，为空则不校验
}

// NotifyConfig 通知配置
type NotifyConfig struct {
	Driver  string `mapstructure:"driver"`
	BaseURL string `mapstructure:"base_url"`
}

// FeedConfig 变更推送配置
type FeedConfig struct {
	Driver         string   `mapstructure:"driver"` // redis / nats / none
	NATSURL        string   `mapstructure:"nats_url"`
	SubjectPrefix  string   `mapstructure:"subject_prefix"`
	ClientBuffer   int      `mapstructure:"client_buffer"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// BootstrapConfig 初始化配置
type BootstrapConfig struct {
	CEOPhone string `mapstructure:"ceo_phone"`
	CEOName  string `mapstructure:"ceo_name"`
}

func millisOrDefault(ms int, fallback int) time.Duration {
	if ms <= 0 {
		ms = fallback
	}
	return time.Duration(ms) * time.Millisecond
}

// Load 从 config.yml 加载配置
func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")     // 从当前目录查找
	viper.AddConfigPath("../")   // 如果从 cmd/server 运行
	viper.AddConfigPath("./etc") // etc 文件夹

	setDefaults(viper.GetViper())

	// 环境变量支持，server.port -> SERVER_PORT
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Infow("config_file_loaded", "file", viper.ConfigFileUsed())
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("配置解析失败: %w", err))
	}

	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.public_base_url", "http://localhost:3000")
	v.SetDefault("server.default_locale", "en-US")
	v.SetDefault("log.dir", "")
	v.SetDefault("log.filename", "sokomart.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./db/sokomart.db")
	v.SetDefault("database.pool.max_open_conns", 1)
	v.SetDefault("database.pool.max_idle_conns", 1)
	v.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	v.SetDefault("database.pool.conn_max_idle_time_seconds", 0)
	v.SetDefault("auth_jwt.secret", "change-me-in-production")
	v.SetDefault("auth_jwt.issuer", "")
	v.SetDefault("auth_jwt.expire_hours", 24)
	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "sk")
	v.SetDefault("queue.enabled", true)
	v.SetDefault("queue.host", "127.0.0.1")
	v.SetDefault("queue.port", 6379)
	v.SetDefault("queue.password", "")
	v.SetDefault("queue.db", 1)
	v.SetDefault("queue.concurrency", 10)
	v.SetDefault("queue.queues", map[string]int{
		"default":  10,
		"critical": 5,
	})
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{
		"Content-Type",
		"Content-Length",
		"Accept-Encoding",
		"Accept-Language",
		"Authorization",
		"Cache-Control",
		"X-Requested-With",
	})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 600)
	v.SetDefault("security.bid_rate_limit.window_seconds", 10)
	v.SetDefault("security.bid_rate_limit.max_attempts", 5)
	v.SetDefault("security.bid_rate_limit.block_seconds", 30)
	v.SetDefault("security.scan_rate_limit.window_seconds", 60)
	v.SetDefault("security.scan_rate_limit.max_attempts", 60)
	v.SetDefault("security.scan_rate_limit.block_seconds", 60)
	v.SetDefault("auction.min_increment", 100)
	v.SetDefault("auction.bid_timeout_ms", 5000)
	v.SetDefault("auction.close_sweep_seconds", 60)
	v.SetDefault("fulfillment.legacy_lookup", true)
	v.SetDefault("fulfillment.scan_timeout_ms", 5000)
	v.SetDefault("fulfillment.backfill_on_start", true)
	v.SetDefault("order.currency", "KES")
	v.SetDefault("order.delivery_fee", "200")
	v.SetDefault("order.commission_rate", "0.05")
	v.SetDefault("order.order_no_prefix", "SK")
	v.SetDefault("payment.mpesa.short_code", "174379")
	v.SetDefault("payment.mpesa.callback_base_url", "")
	v.SetDefault("payment.mpesa.callback_token_hash", "")
	v.SetDefault("notify.driver", "log")
	v.SetDefault("notify.base_url", "http://localhost:3000")
	v.SetDefault("feed.driver", "redis")
	v.SetDefault("feed.nats_url", "nats://127.0.0.1:4222")
	v.SetDefault("feed.subject_prefix", "feed")
	v.SetDefault("feed.client_buffer", 256)
	v.SetDefault("feed.allowed_origins", []string{})
	v.SetDefault("bootstrap.ceo_phone", "")
	v.SetDefault("bootstrap.ceo_name", "CEO")
}
