package config

import (
	"errors"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type AppConf struct {
	Env            string `mapstructure:"env"`
	Port           int    `mapstructure:"port"`
	ReadTimeout    int    `mapstructure:"read_timeout_seconds"`
	WriteTimeout   int    `mapstructure:"write_timeout_seconds"`
	ShutdownSecond int    `mapstructure:"shutdown_seconds"`
}

type MongoConf struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type RedisConf struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConf struct {
	Secret  string `mapstructure:"secret"`
	TTLDays int    `mapstructure:"ttl_days"`
}

type EmailConf struct {
	APIKey      string `mapstructure:"api_key"`
	SenderEmail string `mapstructure:"sender_email"`
	SenderName  string `mapstructure:"sender_name"`
}

type UploadsConf struct {
	Dir       string `mapstructure:"dir"`
	MaxSizeMB int    `mapstructure:"max_size_mb"`
}

type SecurityConf struct {
	CodeTTLMinutes     int `mapstructure:"code_ttl_minutes"`
	ResendLimitPerHour int `mapstructure:"resend_limit_per_hour"`
	PasswordHashCost   int `mapstructure:"password_hash_cost"`
}

type Config struct {
	App      AppConf      `mapstructure:"app"`
	Mongo    MongoConf    `mapstructure:"mongo"`
	Redis    RedisConf    `mapstructure:"redis"`
	JWT      JWTConf      `mapstructure:"jwt"`
	Email    EmailConf    `mapstructure:"email"`
	Uploads  UploadsConf  `mapstructure:"uploads"`
	Security SecurityConf `mapstructure:"security"`

	// derived
	ShutdownTimeout time.Duration
}

// Load reads config.yaml and applies environment overrides. A .env file is
// honored when present so local development does not need exported variables.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(path)
	v.AutomaticEnv()

	v.BindEnv("app.env", "APP_ENV")
	v.BindEnv("app.port", "APP_PORT")
	v.BindEnv("mongo.uri", "MONGO_URI")
	v.BindEnv("mongo.database", "MONGO_DB")
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("jwt.secret", "JWT_SECRET")
	v.BindEnv("email.api_key", "EMAIL_API_KEY")
	v.BindEnv("email.sender_email", "EMAIL_SENDER")
	v.BindEnv("email.sender_name", "EMAIL_SENDER_NAME")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == 0 {
		cfg.App.Port = 5000
	}
	if cfg.App.ShutdownSecond == 0 {
		cfg.App.ShutdownSecond = 10
	}
	cfg.ShutdownTimeout = time.Duration(cfg.App.ShutdownSecond) * time.Second
	if cfg.JWT.TTLDays == 0 {
		cfg.JWT.TTLDays = 7
	}
	if cfg.Security.CodeTTLMinutes == 0 {
		cfg.Security.CodeTTLMinutes = 10
	}
	if cfg.Security.ResendLimitPerHour == 0 {
		cfg.Security.ResendLimitPerHour = 5
	}
	if cfg.Uploads.Dir == "" {
		cfg.Uploads.Dir = "uploads/profiles"
	}
	if cfg.Uploads.MaxSizeMB == 0 {
		cfg.Uploads.MaxSizeMB = 5
	}

	if cfg.JWT.Secret == "" {
		return nil, errors.New("jwt.secret is required (set JWT_SECRET)")
	}
	if cfg.Mongo.URI == "" {
		return nil, errors.New("mongo.uri is required (set MONGO_URI)")
	}
	if cfg.Mongo.Database == "" {
		cfg.Mongo.Database = "budget_tracker"
	}

	return cfg, nil
}

// IsDevelopment gates development-only behavior, such as returning a
// verification code in the signup response when email delivery is unavailable.
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}
