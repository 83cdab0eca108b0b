package main

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port           string   `mapstructure:"PORT"`
	Environment    string   `mapstructure:"ENVIRONMENT"`
	Version        string   `mapstructure:"VERSION"`
	TrustedOrigins []string `mapstructure:"TRUSTED_ORIGINS"`
	TLSCertFile    string   `mapstructure:"TLS_CERT_FILE"`
	TLSKeyFile     string   `mapstructure:"TLS_KEY_FILE"`

	DBHost         string        `mapstructure:"POSTGRES_HOST"`
	DBPort         string        `mapstructure:"POSTGRES_PORT"`
	DBUser         string        `mapstructure:"POSTGRES_USER"`
	DBPassword     string        `mapstructure:"POSTGRES_PASSWORD"`
	DBName         string        `mapstructure:"POSTGRES_DB"`
	DBMaxOpenConns int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBMaxIdleTime  time.Duration `mapstructure:"DB_MAX_IDLE_TIME"`

	JWTSecret string        `mapstructure:"JWT_SECRET"`
	TokenTTL  time.Duration `mapstructure:"TOKEN_TTL"`

	MQHost     string `mapstructure:"RABBITMQ_HOST"`
	MQPort     string `mapstructure:"RABBITMQ_PORT"`
	MQUser     string `mapstructure:"RABBITMQ_USER"`
	MQPassword string `mapstructure:"RABBITMQ_PASSWORD"`

	MailHost     string `mapstructure:"MAIL_HOST"`
	MailPort     int    `mapstructure:"MAIL_PORT"`
	MailUser     string `mapstructure:"MAIL_USER"`
	MailPassword string `mapstructure:"MAIL_PASSWORD"`
	MailSender   string `mapstructure:"MAIL_SENDER"`
}

var errMissingJWTSecret = errors.New("JWT_SECRET must be set")

// configDefaults lists every key so that it can also be set from the environment.
var configDefaults = map[string]any{
	"PORT":              "8080",
	"ENVIRONMENT":       "development",
	"VERSION":           "",
	"TRUSTED_ORIGINS":   "",
	"TLS_CERT_FILE":     "",
	"TLS_KEY_FILE":      "",
	"POSTGRES_HOST":     "localhost",
	"POSTGRES_PORT":     "5432",
	"POSTGRES_USER":     "",
	"POSTGRES_PASSWORD": "",
	"POSTGRES_DB":       "",
	"DB_MAX_OPEN_CONNS": 25,
	"DB_MAX_IDLE_CONNS": 25,
	"DB_MAX_IDLE_TIME":  15 * time.Minute,
	"JWT_SECRET":        "",
	"TOKEN_TTL":         time.Hour,
	"RABBITMQ_HOST":     "",
	"RABBITMQ_PORT":     "5672",
	"RABBITMQ_USER":     "guest",
	"RABBITMQ_PASSWORD": "guest",
	"MAIL_HOST":         "",
	"MAIL_PORT":         587,
	"MAIL_USER":         "",
	"MAIL_PASSWORD":     "",
	"MAIL_SENDER":       "",
}

// loadConfig reads the env file at path, if it exists, and overlays the
// process environment on top of it.
func loadConfig(path string) (*Config, error) {
	v := viper.New()
	for key, value := range configDefaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config.JWTSecret == "" {
		return nil, errMissingJWTSecret
	}

	return &config, nil
}

// addr returns the listen address for Port, accepting both "8080" and ":8080".
func (c *Config) addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func (c *Config) messagingEnabled() bool {
	return c.MQHost != ""
}
