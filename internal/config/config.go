package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
//
// Every external provider section (OCR, Clova, Recipe, Storage) is
// optional: a missing credential selects the corresponding degraded
// path at runtime instead of failing startup.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	OCR      OCRConfig      `mapstructure:"ocr"`
	Clova    ClovaConfig    `mapstructure:"clova"`
	Recipe   RecipeConfig   `mapstructure:"recipe"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// OCRConfig holds CLOVA OCR API configuration
type OCRConfig struct {
	APIURL    string        `mapstructure:"api_url"`
	SecretKey string        `mapstructure:"secret_key"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// ClovaConfig holds CLOVA Studio chat-completions configuration used by
// the food classifier.
type ClovaConfig struct {
	APIKey          string        `mapstructure:"api_key"`
	BaseURL         string        `mapstructure:"base_url"`
	RequestIDPrefix string        `mapstructure:"request_id_prefix"`
	ItemsPerChunk   int           `mapstructure:"items_per_chunk"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// RecipeConfig holds the OpenAI-compatible chat gateway used by the
// recipe recommender.
type RecipeConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// StorageConfig holds object storage (NCP, S3-compatible) configuration
type StorageConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Bucket          string `mapstructure:"bucket"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 5001)
	viper.SetDefault("server.read_timeout", 60*time.Second)
	viper.SetDefault("server.write_timeout", 60*time.Second)

	// Database defaults
	viper.SetDefault("database.path", "data/fridge.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	viper.SetDefault("database.migrations_dir", "migrations")

	// OCR defaults
	viper.SetDefault("ocr.timeout", 30*time.Second)

	// Clova Studio defaults
	viper.SetDefault("clova.base_url", "https://clovastudio.stream.ntruss.com/v3/chat-completions/HCX-005")
	viper.SetDefault("clova.request_id_prefix", "food-classifier")
	viper.SetDefault("clova.items_per_chunk", 30)
	viper.SetDefault("clova.timeout", 30*time.Second)

	// Recipe gateway defaults (CLOVA Studio's OpenAI-compatible endpoint)
	viper.SetDefault("recipe.base_url", "https://clovastudio.stream.ntruss.com/v1/openai")
	viper.SetDefault("recipe.model", "HCX-003")

	// Storage defaults
	viper.SetDefault("storage.endpoint", "https://kr.object.ncloudstorage.com")
	viper.SetDefault("storage.region", "kr-standard")

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars() {
	// Sensitive credentials from environment; all optional
	viper.BindEnv("ocr.api_url", "NAVER_OCR_API_URL")
	viper.BindEnv("ocr.secret_key", "NAVER_OCR_SECRET_KEY")
	viper.BindEnv("clova.api_key", "CLOVA_STUDIO_API_KEY")
	viper.BindEnv("clova.request_id_prefix", "CLOVA_STUDIO_REQUEST_ID")
	viper.BindEnv("clova.items_per_chunk", "FOOD_CLASSIFY_ITEMS_PER_CHUNK")
	viper.BindEnv("recipe.api_key", "RECIPE_API_KEY")
	viper.BindEnv("storage.endpoint", "NCP_ENDPOINT")
	viper.BindEnv("storage.region", "NCP_REGION")
	viper.BindEnv("storage.access_key_id", "NCP_ACCESS_KEY_ID")
	viper.BindEnv("storage.secret_access_key", "NCP_SECRET_ACCESS_KEY")
	viper.BindEnv("storage.bucket", "NCP_BUCKET_NAME")
	viper.BindEnv("server.port", "PORT")
}

// Validate validates the configuration. Provider credentials are
// deliberately not required here.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Clova.ItemsPerChunk < 0 {
		return fmt.Errorf("clova.items_per_chunk must not be negative")
	}
	return nil
}
