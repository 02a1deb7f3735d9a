package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port               int      `mapstructure:"port"`
		MonitoringPort     int      `mapstructure:"monitoring_port"`
		CorsAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
		CorsAllowedMethods []string `mapstructure:"cors_allowed_methods"`
		CorsAllowedHeaders []string `mapstructure:"cors_allowed_headers"`
	} `mapstructure:"server"`

	Database struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
	} `mapstructure:"database"`

	JWT struct {
		Secret          string `mapstructure:"secret"`
		ExpirationHours int    `mapstructure:"expiration_hours"`
		Issuer          string `mapstructure:"issuer"`
	} `mapstructure:"jwt"`

	Snapshots struct {
		MirrorEnabled bool   `mapstructure:"mirror_enabled"`
		Endpoint      string `mapstructure:"endpoint"`
		AccessKey     string `mapstructure:"access_key"`
		SecretKey     string `mapstructure:"secret_key"`
		Bucket        string `mapstructure:"bucket"`
		Region        string `mapstructure:"region"`
	} `mapstructure:"snapshots"`

	Reports struct {
		GameReportsBaseURL string `mapstructure:"game_reports_base_url"`
		RevenueBaseURL     string `mapstructure:"revenue_base_url"`
		APIKey             string `mapstructure:"api_key"`
	} `mapstructure:"reports"`
}

func Load() *Config {
	// Load .env file if exists (ignore error in production)
	godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile("configs/config.yaml")

	// Auto bind environment variables
	v.AutomaticEnv()

	// Set sensible defaults (binary works without config file)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.monitoring_port", 9090)
	v.SetDefault("jwt.expiration_hours", 24)
	v.SetDefault("jwt.issuer", "arcade-backend")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "arcade_db")
	v.SetDefault("snapshots.region", "auto")

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		log.Printf("[Config] No config file found, using defaults")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("config unmarshal error: %v", err)
	}

	// Override database settings from DB_* environment variables
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Database.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil && n > 0 {
			cfg.Database.Port = n
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.Database.User = user
	}
	if pass := os.Getenv("DB_PASSWORD"); pass != "" {
		cfg.Database.Password = pass
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Database.Name = name
	}

	// Override JWT secret from environment if not set
	if cfg.JWT.Secret == "" || cfg.JWT.Secret == "${JWT_SECRET}" {
		cfg.JWT.Secret = os.Getenv("JWT_SECRET")
		if cfg.JWT.Secret == "" {
			log.Fatal("JWT_SECRET not found in environment or config file")
		}
	}

	// Snapshot mirror credentials come from the environment, never the file
	if endpoint := os.Getenv("SNAPSHOT_S3_ENDPOINT"); endpoint != "" {
		cfg.Snapshots.Endpoint = endpoint
	}
	if key := os.Getenv("SNAPSHOT_S3_ACCESS_KEY"); key != "" {
		cfg.Snapshots.AccessKey = key
	}
	if secret := os.Getenv("SNAPSHOT_S3_SECRET_KEY"); secret != "" {
		cfg.Snapshots.SecretKey = secret
	}
	if bucket := os.Getenv("SNAPSHOT_S3_BUCKET"); bucket != "" {
		cfg.Snapshots.Bucket = bucket
	}
	cfg.Snapshots.MirrorEnabled = cfg.Snapshots.Bucket != "" && cfg.Snapshots.AccessKey != ""

	// External report API credentials
	if base := os.Getenv("GAME_REPORTS_BASE_URL"); base != "" {
		cfg.Reports.GameReportsBaseURL = base
	}
	if base := os.Getenv("REVENUE_BASE_URL"); base != "" {
		cfg.Reports.RevenueBaseURL = base
	}
	if key := os.Getenv("REPORTS_API_KEY"); key != "" {
		cfg.Reports.APIKey = key
	}

	return &cfg
}
