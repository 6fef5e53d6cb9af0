package utils

import (
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
	"log"
	"os"
	"strconv"
	"sync"
	"time"
)

type Config struct {
	// Server
	HTTPAddr           string `yaml:"HTTP_ADDR"`
	LogLevel           string `yaml:"LOG_LEVEL"`
	CORSAllowedOrigins string `yaml:"CORS_ALLOWED_ORIGINS"`

	// Database configuration
	DBUser     string `yaml:"DB_USER"`
	DBName     string `yaml:"DB_NAME"`
	DBPassword string `yaml:"DB_PASSWORD"`
	DBPort     string `yaml:"DB_PORT"`
	DBHost     string `yaml:"DB_HOST"`
	DBSSLMode  string `yaml:"DB_SSLMODE"`

	DBMaxOpenConns string `yaml:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns string `yaml:"DB_MAX_IDLE_CONNS"`

	// Redis, optional
	RedisAddr     string `yaml:"REDIS_ADDR"`
	RedisPassword string `yaml:"REDIS_PASSWORD"`

	// Auth
	JWTSecret     string `yaml:"JWT_SECRET"`
	AdminUsername string `yaml:"ADMIN_USERNAME"`
	AdminPassword string `yaml:"ADMIN_PASSWORD"`

	// Receipt verification
	FNSToken   string `yaml:"FNS_TOKEN"`
	FNSBaseURL string `yaml:"FNS_BASE_URL"`
	FNSPromoID string `yaml:"FNS_PROMO_ID"`

	// Telegram
	TelegramAPIURL    string `yaml:"TELEGRAM_API_URL"`
	WebAppURL         string `yaml:"WEBAPP_URL"`
	TelegramSendRate  string `yaml:"TELEGRAM_SEND_RATE"`
	TelegramSendBurst string `yaml:"TELEGRAM_SEND_BURST"`

	// Mailing configuration
	SMTPHost         string `yaml:"SMTP_HOST"`
	SMTPPort         string `yaml:"SMTP_PORT"`
	SMTPSenderName   string `yaml:"SMTP_SENDER_NAME"`
	SMTPAuthEmail    string `yaml:"SMTP_AUTH_EMAIL"`
	SMTPAuthPassword string `yaml:"SMTP_AUTH_PASSWORD"`
	NotifyEmail      string `yaml:"NOTIFY_EMAIL"`

	// AWS S3 configuration
	AWSS3Bucket   string `yaml:"AWS_S3_BUCKET"`
	AWSS3Region   string `yaml:"AWS_S3_REGION"`
	AWSS3Endpoint string `yaml:"AWS_S3_ENDPOINT"`
	AWSAccessKey  string `yaml:"AWS_ACCESS_KEY"`
	AWSSecretKey  string `yaml:"AWS_SECRET_KEY"`
}

var (
	configMu sync.RWMutex
	config   = defaultConfig()
)

func defaultConfig() Config {
	return Config{
		HTTPAddr:           ":8080",
		LogLevel:           "info",
		CORSAllowedOrigins: "*",
		DBHost:             "localhost",
		DBPort:             "5432",
		DBUser:             "postgres",
		DBName:             "pricecrowd",
		DBSSLMode:          "disable",
		FNSBaseURL:         "https://proverkacheka.com/api/v1/check/get",
		TelegramAPIURL:     "https://api.telegram.org",
		WebAppURL:          "https://pricecrowd.ru/scan",
		TelegramSendRate:   "20",
		TelegramSendBurst:  "20",
		SMTPPort:           "587",
		AWSS3Region:        "us-east-1",
	}
}

func (c *Config) fields() map[string]*string {
	return map[string]*string{
		"HTTP_ADDR":            &c.HTTPAddr,
		"LOG_LEVEL":            &c.LogLevel,
		"CORS_ALLOWED_ORIGINS": &c.CORSAllowedOrigins,
		"DB_USER":              &c.DBUser,
		"DB_NAME":              &c.DBName,
		"DB_PASSWORD":          &c.DBPassword,
		"DB_PORT":              &c.DBPort,
		"DB_HOST":              &c.DBHost,
		"DB_SSLMODE":           &c.DBSSLMode,
		"DB_MAX_OPEN_CONNS":    &c.DBMaxOpenConns,
		"DB_MAX_IDLE_CONNS":    &c.DBMaxIdleConns,
		"REDIS_ADDR":           &c.RedisAddr,
		"REDIS_PASSWORD":       &c.RedisPassword,
		"JWT_SECRET":           &c.JWTSecret,
		"ADMIN_USERNAME":       &c.AdminUsername,
		"ADMIN_PASSWORD":       &c.AdminPassword,
		"FNS_TOKEN":            &c.FNSToken,
		"FNS_BASE_URL":         &c.FNSBaseURL,
		"FNS_PROMO_ID":         &c.FNSPromoID,
		"TELEGRAM_API_URL":     &c.TelegramAPIURL,
		"WEBAPP_URL":           &c.WebAppURL,
		"TELEGRAM_SEND_RATE":   &c.TelegramSendRate,
		"TELEGRAM_SEND_BURST":  &c.TelegramSendBurst,
		"SMTP_HOST":            &c.SMTPHost,
		"SMTP_PORT":            &c.SMTPPort,
		"SMTP_SENDER_NAME":     &c.SMTPSenderName,
		"SMTP_AUTH_EMAIL":      &c.SMTPAuthEmail,
		"SMTP_AUTH_PASSWORD":   &c.SMTPAuthPassword,
		"NOTIFY_EMAIL":         &c.NotifyEmail,
		"AWS_S3_BUCKET":        &c.AWSS3Bucket,
		"AWS_S3_REGION":        &c.AWSS3Region,
		"AWS_S3_ENDPOINT":      &c.AWSS3Endpoint,
		"AWS_ACCESS_KEY":       &c.AWSAccessKey,
		"AWS_SECRET_KEY":       &c.AWSSecretKey,
	}
}

// LoadConfig reads config.yaml from the working directory and lets the
// environment override any key. A missing file is not an error.
func LoadConfig() {
	LoadConfigFile("config.yaml")
}

func LoadConfigFile(path string) {
	cfg := defaultConfig()

	file, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(file, &cfg); err != nil {
			log.Printf("Error parsing YAML file: %s\n", err)
		}
	case !os.IsNotExist(err):
		log.Printf("Error reading YAML file: %s\n", err)
	}

	applyEnvOverrides(&cfg)

	configMu.Lock()
	config = cfg
	configMu.Unlock()
}

func applyEnvOverrides(cfg *Config) {
	v := viper.New()
	v.AutomaticEnv()
	for key, field := range cfg.fields() {
		_ = v.BindEnv(key)
		if val := v.GetString(key); val != "" {
			*field = val
		}
	}
}

func AppConfig() Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return config
}

func GetConfig(key string) string {
	cfg := AppConfig()
	if field, ok := cfg.fields()[key]; ok {
		return *field
	}
	return ""
}

func GetConfigInt(key string, fallback int) int {
	if n, err := strconv.Atoi(GetConfig(key)); err == nil {
		return n
	}
	return fallback
}

func GetConfigFloat(key string, fallback float64) float64 {
	if f, err := strconv.ParseFloat(GetConfig(key), 64); err == nil {
		return f
	}
	return fallback
}

func GetConfigDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(GetConfig(key)); err == nil {
		return d
	}
	return fallback
}
