// Initializing common application configuration
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const envPrefix = "TAGGER"

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Tagger     TaggerConfig     `mapstructure:"tagger"`
	Normalizer NormalizerConfig `mapstructure:"normalizer"`
	Upload     UploadConfig     `mapstructure:"upload"`
	Session    SessionConfig    `mapstructure:"session"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Assets     AssetsConfig     `mapstructure:"assets"`
}

type ServerConfig struct {
	AppVersion     string        `mapstructure:"appVersion"`
	Host           string        `mapstructure:"host"`
	Port           string        `mapstructure:"port" validate:"required,numeric"`
	Timeout        time.Duration `mapstructure:"timeout"`
	Idle_timeout   time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	Env            string        `mapstructure:"environment"`
	Mode           string        `mapstructure:"mode" validate:"omitempty,oneof=debug release test"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=trace debug info warn warning error fatal panic"`
}

// TaggerConfig describes the remote tagging endpoint.
type TaggerConfig struct {
	BaseURL    string        `mapstructure:"base_url" validate:"required,url"`
	Path       string        `mapstructure:"path" validate:"required,startswith=/"`
	Timeout    time.Duration `mapstructure:"timeout" validate:"gt=0"`
	MaxRetries int           `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
	RateLimit  float64       `mapstructure:"rate_limit" validate:"gte=0"`
	Burst      int           `mapstructure:"burst" validate:"gte=0"`
}

type NormalizerConfig struct {
	Width     int `mapstructure:"width" validate:"gt=0,lte=4096"`
	Quality   int `mapstructure:"quality" validate:"gte=1,lte=100"`
	MaxPixels int `mapstructure:"max_pixels" validate:"gt=0"`
}

type UploadConfig struct {
	MaxBytes int64 `mapstructure:"max_bytes" validate:"gt=0"`
}

type SessionConfig struct {
	CookieName      string        `mapstructure:"cookie_name" validate:"required"`
	TTL             time.Duration `mapstructure:"ttl" validate:"gt=0"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" validate:"gt=0"`
	Secure          bool          `mapstructure:"secure"`
}

type CacheConfig struct {
	Backend string        `mapstructure:"backend" validate:"oneof=memory redis"`
	TTL     time.Duration `mapstructure:"ttl"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host" validate:"required_if=Enabled true"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Enabled  bool   `mapstructure:"-"`

	// Настройки пула соединений
	MaxRetries   int           `mapstructure:"max_retries"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	PoolTimeout  time.Duration `mapstructure:"pool_timeout"`
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers" validate:"required_if=Enabled true"`
	Topic   string   `mapstructure:"topic" validate:"required_if=Enabled true"`
	GroupID string   `mapstructure:"group_id"`
}

type AssetsConfig struct {
	Dir  string `mapstructure:"dir" validate:"required"`
	Logo string `mapstructure:"logo" validate:"required"`
	Icon string `mapstructure:"icon" validate:"required"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.appVersion", "1.0.0")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.timeout", 60*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.request_timeout", 45*time.Second)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.mode", "debug")

	v.SetDefault("log.level", "info")

	v.SetDefault("tagger.base_url", "http://s24caeqautotagging.twentytoo.ai")
	v.SetDefault("tagger.path", "/predict_tags")
	v.SetDefault("tagger.timeout", 30*time.Second)
	v.SetDefault("tagger.max_retries", 2)
	v.SetDefault("tagger.retry_delay", 500*time.Millisecond)

	v.SetDefault("normalizer.width", 600)
	v.SetDefault("normalizer.quality", 90)
	v.SetDefault("normalizer.max_pixels", 50_000_000)

	v.SetDefault("upload.max_bytes", 10<<20)

	v.SetDefault("session.cookie_name", "tagger_session")
	v.SetDefault("session.ttl", 24*time.Hour)
	v.SetDefault("session.cleanup_interval", 10*time.Minute)

	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.ttl", 24*time.Hour)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.topic", "tagging-events")
	v.SetDefault("kafka.group_id", "tagging-event-watcher")

	v.SetDefault("assets.dir", "./assets")
	v.SetDefault("assets.logo", "logo.png")
	v.SetDefault("assets.icon", "logo_icon.ico")
}

// LoadConfig reads config.yaml from the given directories, ./config when
// none are given. Environment variables such as TAGGER_TAGGER_BASE_URL
// override file values.
func LoadConfig(paths ...string) (*viper.Viper, error) {

	viperInstance := viper.New()

	if len(paths) == 0 {
		paths = []string{"./config"}
	}
	for _, p := range paths {
		viperInstance.AddConfigPath(p)
	}
	viperInstance.SetConfigName("config")
	viperInstance.SetConfigType("yaml")

	setDefaults(viperInstance)
	viperInstance.SetEnvPrefix(envPrefix)
	viperInstance.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viperInstance.AutomaticEnv()

	err := viperInstance.ReadInConfig()

	if err != nil {
		return nil, err
	}
	return viperInstance, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {

	var c Config

	err := v.Unmarshal(&c)
	if err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	c.Redis.Enabled = c.Cache.Backend == "redis"

	if err := validator.New().Struct(&c); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return nil, errors.New("invalid config: kafka is enabled but has no brokers")
	}
	return &c, nil
}

func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
