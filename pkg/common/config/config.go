package config

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/joho/godotenv"
)

type ServerConfig struct {
	Address string `json:"address"`
}

type SecurityConfig struct {
	MaxBodySize    int64    `json:"maxBodySize"` // 单位：字节
	AllowedHosts   []string `json:"allowedHosts"`
	AllowedMethods []string `json:"allowedMethods"`
}

type CORSConfig struct {
	AllowOrigins     []string      `json:"allowOrigins"`
	AllowMethods     []string      `json:"allowMethods"`
	AllowHeaders     []string      `json:"allowHeaders"`
	ExposeHeaders    []string      `json:"exposeHeaders"`
	AllowCredentials bool          `json:"allowCredentials"`
	MaxAge           time.Duration `json:"maxAge"`
	TrustedDomains   []string      `json:"trustedDomains"`
}

type JWTAuthConfig struct {
	Secret         string        `json:"secret"`
	ExpireDuration time.Duration `json:"expireDuration"`
	Issuer         string        `json:"issuer"`
	SigningMethod  string        `json:"signingMethod"`
}

// RateLimitConfig allows Rate requests per Interval. Rate <= 0 disables limiting.
type RateLimitConfig struct {
	Rate     int           `json:"rate"`
	Interval time.Duration `json:"interval"`
}

type TimeoutConfig struct {
	RequestTimeout time.Duration `json:"requestTimeout"` // 0 表示不设截止时间
}

type MiddlewareConfig struct {
	Security  SecurityConfig  `json:"security"`
	Timeout   TimeoutConfig   `json:"timeout"`
	JWT       JWTAuthConfig   `json:"jwt"`
	CORS      CORSConfig      `json:"cors"`
	RateLimit RateLimitConfig `json:"rateLimit"`
}

type DatabaseConfig struct {
	Driver      string `json:"driver"`      // mysql | sqlite
	Path        string `json:"path"`        // sqlite 数据库文件
	Host        string `json:"host"`        // 数据库主机地址
	Port        int    `json:"port"`        // 数据库端口
	Username    string `json:"username"`    // 数据库用户名
	Password    string `json:"password"`    // 数据库密码
	DBName      string `json:"dbname"`      // 数据库名称
	UseUnixSock bool   `json:"useUnixSock"` // 是否使用Unix套接字连接
	MinPoolSize int    `json:"minPoolSize"` // 连接池最小连接数
	MaxPoolSize int    `json:"maxPoolSize"` // 连接池最大连接数
	LogLevel    string `json:"logLevel"`    // GORM日志级别
}

// StorageConfig selects where uploaded photo bytes live.
type StorageConfig struct {
	Provider      string `json:"provider"` // local | s3
	UploadDir     string `json:"uploadDir"`
	MaxUploadSize int64  `json:"maxUploadSize"`
	S3Bucket      string `json:"s3Bucket"`
	S3Region      string `json:"s3Region"`
	S3Endpoint    string `json:"s3Endpoint"`
	S3AccessKey   string `json:"s3AccessKey"`
	S3SecretKey   string `json:"s3SecretKey"`
}

// AuditConfig sizes the asynchronous change-log pipeline.
type AuditConfig struct {
	QueueSize      int    `json:"queueSize"`
	Workers        int    `json:"workers"`
	OverflowPolicy string `json:"overflowPolicy"` // drop_newest | drop_oldest
}

type PaginationConfig struct {
	DefaultPageSize int `json:"defaultPageSize"`
	MaxPageSize     int `json:"maxPageSize"`
}

type MetricsConfig struct {
	Address string `json:"address"` // empty disables the listener
}

// AdminConfig bootstraps a superuser at start-up when Email is set.
type AdminConfig struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type Config struct {
	Server     ServerConfig     `json:"server"`
	Database   DatabaseConfig   `json:"database"`
	Middleware MiddlewareConfig `json:"middleware"`
	Storage    StorageConfig    `json:"storage"`
	Audit      AuditConfig      `json:"audit"`
	Pagination PaginationConfig `json:"pagination"`
	Metrics    MetricsConfig    `json:"metrics"`
	Admin      AdminConfig      `json:"admin"`
	Env        string           `json:"env"`      // 环境标识
	LogLevel   string           `json:"logLevel"` // hlog 级别
}

var defaultConfig = Config{
	Server: ServerConfig{
		Address: ":8080",
	},
	Database: DatabaseConfig{
		Driver:      "mysql",
		Path:        "focus.db",
		Host:        "localhost",
		Port:        3306,
		Username:    "root",
		Password:    "root",
		DBName:      "focus",
		UseUnixSock: false,
		MinPoolSize: 5,
		MaxPoolSize: 50,
		LogLevel:    "warn",
	},
	Middleware: MiddlewareConfig{
		Security: SecurityConfig{
			MaxBodySize:    10 << 20, // 10MB
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		},
		JWT: JWTAuthConfig{
			Secret:         "dev-secret-change-me-in-production",
			ExpireDuration: 6000 * time.Second,
			Issuer:         "focus",
			SigningMethod:  "HS256",
		},
		CORS: CORSConfig{
			AllowOrigins:     []string{"http://localhost:3000"},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Content-Type", "Authorization", "X-Requested-With"},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
			TrustedDomains:   []string{"localhost"},
		},
		Timeout: TimeoutConfig{
			RequestTimeout: 30 * time.Second,
		},
		RateLimit: RateLimitConfig{
			Rate:     100,
			Interval: time.Second,
		},
	},
	Storage: StorageConfig{
		Provider:      "local",
		UploadDir:     "uploads/",
		MaxUploadSize: 8 << 20,
		S3Region:      "us-east-1",
	},
	Audit: AuditConfig{
		QueueSize:      256,
		Workers:        2,
		OverflowPolicy: "drop_newest",
	},
	Pagination: PaginationConfig{
		DefaultPageSize: 20,
		MaxPageSize:     100,
	},
	Metrics: MetricsConfig{
		Address: ":9091",
	},
	Env:      "development",
	LogLevel: "info",
}

// Default returns a copy of the built-in configuration.
func Default() *Config {
	cfg := defaultConfig
	return &cfg
}

// IsProd 判断当前是否生产环境
func (c *Config) IsProd() bool {
	return c.Env == "production"
}

// Load 加载配置（优先级：环境变量 > .env > 配置文件 > 默认值）
func Load() *Config {
	config := defaultConfig

	// 1. 尝试从配置文件加载
	configPath := getConfigPath()
	if configPath != "" {
		if err := loadFromFile(&config, configPath); err != nil {
			hlog.Warnf("Failed to load config file: %v", err)
		}
	}

	// 2. .env 只补充尚未设置的环境变量
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		hlog.Warnf("Failed to load .env file: %v", err)
	}

	// 3. 从环境变量覆盖
	loadFromEnv(&config)

	return &config
}

// getConfigPath 获取配置文件路径
func getConfigPath() string {
	if path := os.Getenv("APP_CONFIG"); path != "" {
		return path
	}

	searchPaths := []string{
		"./config.json",
		"../config.json",
		"/etc/focus/config.json",
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadFromFile 从文件加载配置
func loadFromFile(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, config)
}

// loadFromEnv 从环境变量加载配置
func loadFromEnv(config *Config) {
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		config.Server.Address = v
	}

	if v := os.Getenv("APP_ENV"); v != "" {
		config.Env = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		config.LogLevel = strings.ToLower(v)
	}

	// 中间件配置
	if v := os.Getenv("MAX_BODY_SIZE"); v != "" {
		if size, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Middleware.Security.MaxBodySize = size
		}
	}

	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.Middleware.Timeout.RequestTimeout = d
		} else {
			hlog.Warnf("Invalid REQUEST_TIMEOUT format: %v", err)
		}
	}

	if v := os.Getenv("RATE_LIMIT"); v != "" {
		if rate, err := strconv.Atoi(v); err == nil {
			config.Middleware.RateLimit.Rate = rate
		}
	}

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		config.Middleware.CORS.AllowOrigins = splitEnvList(v)
	}

	/****** JWT 配置 ******/
	if v := os.Getenv("JWT_SECRET"); v != "" {
		config.Middleware.JWT.Secret = v
	}

	if v := os.Getenv("JWT_EXPIRATION"); v != "" {
		if duration, err := time.ParseDuration(v); err == nil {
			config.Middleware.JWT.ExpireDuration = duration
		} else {
			hlog.Warnf("Invalid JWT_EXPIRATION format: %v", err)
		}
	}

	if v := os.Getenv("JWT_ISSUER"); v != "" {
		config.Middleware.JWT.Issuer = v
	}

	if v := os.Getenv("JWT_ALGORITHM"); v != "" {
		algorithm := strings.ToLower(strings.ReplaceAll(v, " ", ""))

		validAlgorithms := map[string]bool{
			"hs256": true,
			"hs384": true,
			"hs512": true,
		}

		if validAlgorithms[algorithm] {
			config.Middleware.JWT.SigningMethod = strings.ToUpper(algorithm)
		} else {
			hlog.Warnf("Unsupported JWT algorithm: %s", v)
		}
	}

	// 数据库配置
	if v := os.Getenv("DB_DRIVER"); v != "" {
		config.Database.Driver = strings.ToLower(v)
	}

	if v := os.Getenv("DB_PATH"); v != "" {
		config.Database.Path = v
	}

	if v := os.Getenv("DB_HOST"); v != "" {
		config.Database.Host = v
	}

	if v := os.Getenv("DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Database.Port = port
		}
	}

	if v := os.Getenv("DB_USER"); v != "" {
		config.Database.Username = v
	}

	if v := os.Getenv("DB_PASSWORD"); v != "" {
		config.Database.Password = v
	}

	if v := os.Getenv("DB_NAME"); v != "" {
		config.Database.DBName = v
	}

	if v := os.Getenv("DB_SOCKET"); v != "" {
		config.Database.UseUnixSock = parseBool(v)
	}

	if v := os.Getenv("DB_MIN_POOL"); v != "" {
		if size, err := strconv.Atoi(v); err == nil {
			config.Database.MinPoolSize = size
		}
	}

	if v := os.Getenv("DB_MAX_POOL"); v != "" {
		if size, err := strconv.Atoi(v); err == nil {
			config.Database.MaxPoolSize = size
		}
	}

	if v := os.Getenv("DB_LOG_LEVEL"); v != "" {
		config.Database.LogLevel = strings.ToLower(v)
	}

	// 存储配置
	if v := os.Getenv("STORAGE_PROVIDER"); v != "" {
		config.Storage.Provider = strings.ToLower(v)
	}

	if v := os.Getenv("UPLOADS_DIR"); v != "" {
		config.Storage.UploadDir = v
	}

	if v := os.Getenv("MAX_UPLOAD_SIZE"); v != "" {
		if size, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Storage.MaxUploadSize = size
		}
	}

	if v := os.Getenv("S3_BUCKET"); v != "" {
		config.Storage.S3Bucket = v
	}

	if v := os.Getenv("S3_REGION"); v != "" {
		config.Storage.S3Region = v
	}

	if v := os.Getenv("S3_ENDPOINT"); v != "" {
		config.Storage.S3Endpoint = v
	}

	if v := os.Getenv("S3_ACCESS_KEY"); v != "" {
		config.Storage.S3AccessKey = v
	}

	if v := os.Getenv("S3_SECRET_KEY"); v != "" {
		config.Storage.S3SecretKey = v
	}

	// 审计队列
	if v := os.Getenv("AUDIT_QUEUE_SIZE"); v != "" {
		if size, err := strconv.Atoi(v); err == nil {
			config.Audit.QueueSize = size
		}
	}

	if v := os.Getenv("AUDIT_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Audit.Workers = n
		}
	}

	if v := os.Getenv("AUDIT_OVERFLOW_POLICY"); v != "" {
		config.Audit.OverflowPolicy = strings.ToLower(v)
	}

	if v := os.Getenv("METRICS_ADDR"); v != "" {
		config.Metrics.Address = v
	}

	// 管理员初始化
	if v := os.Getenv("ADMIN_EMAIL"); v != "" {
		config.Admin.Email = v
	}

	if v := os.Getenv("ADMIN_USERNAME"); v != "" {
		config.Admin.Username = v
	}

	if v := os.Getenv("ADMIN_NAME"); v != "" {
		config.Admin.Name = v
	}

	if v := os.Getenv("ADMIN_PASSWORD"); v != "" {
		config.Admin.Password = v
	}
}

// 分割环境变量列表（支持逗号分隔的字符串）
func splitEnvList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// 转换字符串为布尔值
func parseBool(value string) bool {
	value = strings.ToLower(value)
	return value == "true" || value == "1" || value == "yes"
}

// HlogLevel maps LogLevel onto hlog, unknown values mean info.
func (c *Config) HlogLevel() hlog.Level {
	switch c.LogLevel {
	case "trace":
		return hlog.LevelTrace
	case "debug":
		return hlog.LevelDebug
	case "warn":
		return hlog.LevelWarn
	case "error":
		return hlog.LevelError
	default:
		return hlog.LevelInfo
	}
}
