package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	ServerAddr    string
	PublicBaseURL string

	DBDriver   string
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	SQLitePath string

	RedisAddr     string
	RedisPort     string
	RedisPassword string
	JWTSecret     string

	PayWay PayWayConfig

	// Log configuration
	LogLevel      string
	LogFilename   string
	LogMaxSize    int
	LogMaxBackups int
	LogMaxAge     int
	LogCompress   bool
}

// PayWayConfig holds gateway endpoints, call bounds and the optional
// bootstrap provider seeded at startup.
type PayWayConfig struct {
	ProductionURL string
	SandboxURL    string
	Timeout       time.Duration
	PollInterval  time.Duration
	PollAge       time.Duration
	LockTTL       time.Duration

	MerchantID string
	PublicKey  string
	Currency   string
	State      string
}

// HasBootstrapProvider reports whether enough settings are present to seed a provider.
func (p PayWayConfig) HasBootstrapProvider() bool {
	return p.MerchantID != "" && p.PublicKey != ""
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

func (c *Config) RedisFullAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisAddr, c.RedisPort)
}

// RedisEnabled is false when no redis host is configured; reconciliation then
// relies on the store's conditional update alone.
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		// Ignore error if .env file is not found
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if file := os.Getenv("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	return &Config{
		ServerAddr:    v.GetString("SERVER_ADDR"),
		PublicBaseURL: strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/"),

		DBDriver:   strings.ToLower(v.GetString("DB_DRIVER")),
		DBHost:     v.GetString("DB_HOST"),
		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBName:     v.GetString("DB_NAME"),
		DBPort:     v.GetString("DB_PORT"),
		SQLitePath: v.GetString("SQLITE_PATH"),

		RedisAddr:     v.GetString("REDIS_HOST"),
		RedisPort:     v.GetString("REDIS_PORT"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		JWTSecret:     v.GetString("JWT_SECRET"),

		PayWay: PayWayConfig{
			ProductionURL: v.GetString("PAYWAY_PRODUCTION_URL"),
			SandboxURL:    v.GetString("PAYWAY_SANDBOX_URL"),
			Timeout:       v.GetDuration("PAYWAY_TIMEOUT"),
			PollInterval:  v.GetDuration("PAYWAY_POLL_INTERVAL"),
			PollAge:       v.GetDuration("PAYWAY_POLL_AGE"),
			LockTTL:       v.GetDuration("PAYWAY_LOCK_TTL"),
			MerchantID:    v.GetString("PAYWAY_MERCHANT_ID"),
			PublicKey:     v.GetString("PAYWAY_PUBLIC_KEY"),
			Currency:      strings.ToUpper(v.GetString("PAYWAY_CURRENCY")),
			State:         v.GetString("PAYWAY_STATE"),
		},

		LogLevel:      v.GetString("LOG_LEVEL"),
		LogFilename:   v.GetString("LOG_FILENAME"),
		LogMaxSize:    v.GetInt("LOG_MAX_SIZE"),
		LogMaxBackups: v.GetInt("LOG_MAX_BACKUPS"),
		LogMaxAge:     v.GetInt("LOG_MAX_AGE"),
		LogCompress:   v.GetBool("LOG_COMPRESS"),
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_ADDR", ":8080")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("SQLITE_PATH", "payway.db")
	v.SetDefault("REDIS_PORT", "6379")

	v.SetDefault("PAYWAY_PRODUCTION_URL", "https://checkout.payway.com.kh")
	v.SetDefault("PAYWAY_SANDBOX_URL", "https://checkout-sandbox.payway.com.kh")
	v.SetDefault("PAYWAY_TIMEOUT", 30*time.Second)
	v.SetDefault("PAYWAY_POLL_INTERVAL", time.Duration(0))
	v.SetDefault("PAYWAY_POLL_AGE", 5*time.Minute)
	v.SetDefault("PAYWAY_LOCK_TTL", time.Minute)
	v.SetDefault("PAYWAY_STATE", "test")

	v.SetDefault("LOG_LEVEL", "INFO")
	v.SetDefault("LOG_FILENAME", "logs/app.log")
	v.SetDefault("LOG_MAX_SIZE", 100)
	v.SetDefault("LOG_MAX_BACKUPS", 3)
	v.SetDefault("LOG_MAX_AGE", 28)
	v.SetDefault("LOG_COMPRESS", true)
}
