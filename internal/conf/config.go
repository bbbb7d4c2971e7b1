package conf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lk2023060901/model-catalog/internal/pkg/logger"
	"github.com/lk2023060901/model-catalog/internal/pkg/redis"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，例如 MODELCATALOG_SUPABASE_URL
const EnvPrefix = "MODELCATALOG"

// placeholderMarker 示例配置中的占位符
const placeholderMarker = "YOUR_"

// ErrNotConfigured 外部认证/数据服务未配置
var ErrNotConfigured = errors.New("supabase is not configured: set supabase.url and supabase.anon_key")

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Supabase  SupabaseConfig  `mapstructure:"supabase"`
	Session   SessionConfig   `mapstructure:"session"`
	Redis     redis.Config    `mapstructure:"redis"`
	Log       logger.Config   `mapstructure:"log"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	CLI       CLIConfig       `mapstructure:"cli"`
}

type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	CookieSecure bool   `mapstructure:"cookie_secure"`
}

type SupabaseConfig struct {
	URL     string        `mapstructure:"url"`
	AnonKey string        `mapstructure:"anon_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type SessionConfig struct {
	Store      string        `mapstructure:"store"` // memory, redis
	TTL        time.Duration `mapstructure:"ttl"`
	CookieName string        `mapstructure:"cookie_name"`
}

type RateLimitConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	LoginMax       int  `mapstructure:"login_max"`
	LoginWindow    int  `mapstructure:"login_window"` // seconds
	RegisterMax    int  `mapstructure:"register_max"`
	RegisterWindow int  `mapstructure:"register_window"` // seconds
}

type CLIConfig struct {
	SessionDir string `mapstructure:"session_dir"`
}

// Validate 检查 URL 与匿名 key 均已填写且不是占位符
func (c *SupabaseConfig) Validate() error {
	if c.URL == "" || strings.Contains(c.URL, placeholderMarker) {
		return ErrNotConfigured
	}
	if c.AnonKey == "" || strings.Contains(c.AnonKey, placeholderMarker) {
		return ErrNotConfigured
	}
	return nil
}

func (c *SupabaseConfig) AuthURL() string {
	return strings.TrimRight(c.URL, "/") + "/auth/v1"
}

func (c *SupabaseConfig) RestURL() string {
	return strings.TrimRight(c.URL, "/") + "/rest/v1"
}

func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *Config) Validate() error {
	switch c.Session.Store {
	case "memory", "redis":
	default:
		return fmt.Errorf("invalid session.store %q, must be 'memory' or 'redis'", c.Session.Store)
	}
	if c.RateLimit.Enabled && c.Session.Store != "redis" {
		return errors.New("rate_limit requires session.store=redis")
	}
	if c.Session.TTL <= 0 {
		return errors.New("session.ttl must be > 0")
	}
	return c.Log.Validate()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cookie_secure", false)

	v.SetDefault("supabase.url", "")
	v.SetDefault("supabase.anon_key", "")
	v.SetDefault("supabase.timeout", 15*time.Second)

	v.SetDefault("session.store", "memory")
	v.SetDefault("session.ttl", 7*24*time.Hour)
	v.SetDefault("session.cookie_name", "mc_session")

	rd := redis.DefaultConfig()
	v.SetDefault("redis.addrs", rd.Addrs)
	v.SetDefault("redis.master_name", "")
	v.SetDefault("redis.username", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", rd.DB)
	v.SetDefault("redis.pool_size", rd.PoolSize)
	v.SetDefault("redis.min_idle_conns", rd.MinIdleConns)
	v.SetDefault("redis.dial_timeout", rd.DialTimeout)
	v.SetDefault("redis.read_timeout", rd.ReadTimeout)
	v.SetDefault("redis.write_timeout", rd.WriteTimeout)
	v.SetDefault("redis.max_retries", rd.MaxRetries)

	lg := logger.DefaultConfig()
	v.SetDefault("log.level", lg.Level)
	v.SetDefault("log.format", lg.Format)
	v.SetDefault("log.output", lg.Output)
	v.SetDefault("log.enablecaller", lg.EnableCaller)
	v.SetDefault("log.enablestacktrace", lg.EnableStacktrace)
	v.SetDefault("log.file.filename", lg.File.Filename)
	v.SetDefault("log.file.maxsize", lg.File.MaxSize)
	v.SetDefault("log.file.maxage", lg.File.MaxAge)
	v.SetDefault("log.file.maxbackups", lg.File.MaxBackups)
	v.SetDefault("log.file.compress", lg.File.Compress)

	v.SetDefault("rate_limit.enabled", false)
	v.SetDefault("rate_limit.login_max", 5)
	v.SetDefault("rate_limit.login_window", 300)
	v.SetDefault("rate_limit.register_max", 3)
	v.SetDefault("rate_limit.register_window", 3600)

	v.SetDefault("cli.session_dir", defaultSessionDir())
}

func defaultSessionDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".modelctl"
	}
	return filepath.Join(home, ".modelctl", "sessions")
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig 读取配置文件，环境变量覆盖同名配置项
func LoadConfig(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return unmarshal(v)
}

// LoadOptional 与 LoadConfig 相同，但配置文件不存在时仅使用默认值与环境变量（CLI 使用）
func LoadOptional(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return LoadConfig(path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config: %w", err)
		}
	}
	return unmarshal(newViper())
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &config, nil
}
