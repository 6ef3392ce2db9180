package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// LLM backends
const (
	BackendMock      = "mock"
	BackendOpenAI    = "openai"
	BackendCortex    = "snowflake_cortex"
	TranscribeNone   = "none"
	TranscribeOpenAI = "openai"
	TranscribeAAI    = "assemblyai"
)

// Run store drivers
const (
	StoreFile     = "file"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// Config holds application configuration
type Config struct {
	Server        ServerConfig
	LLM           LLMConfig
	OpenAI        OpenAIConfig
	Snowflake     SnowflakeConfig
	Transcription TranscriptionConfig
	Assembly      AssemblyAIConfig
	Salesforce    SalesforceConfig
	Paths         PathsConfig
	RunStore      RunStoreConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	Archive       ArchiveConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string   `envconfig:"PORT" default:"8080"`
	Host            string   `envconfig:"HOST" default:"127.0.0.1"`
	Environment     string   `envconfig:"ENVIRONMENT" default:"development"`
	AllowedOrigins  []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
	ShutdownTimeout int      `envconfig:"SHUTDOWN_TIMEOUT" default:"10"`
	// APIToken, when set, is required as a bearer token on /v1 routes
	APIToken        string   `envconfig:"API_TOKEN"`
}

// LLMConfig selects the note generation backend
type LLMConfig struct {
	Backend  string `envconfig:"LLM_BACKEND" default:"mock"`
	Initials string `envconfig:"SFDC_INITIALS" default:"SE"`
	// Timeout bounds one generation call; zero means no bound.
	Timeout time.Duration `envconfig:"LLM_TIMEOUT" default:"2m"`
}

// OpenAIConfig holds credentials for the direct API backend
type OpenAIConfig struct {
	APIKey     string `envconfig:"OPENAI_API_KEY"`
	Model      string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	BaseURL    string `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com"`
	AudioModel string `envconfig:"OPENAI_AUDIO_MODEL" default:"whisper-1"`
}

// SnowflakeConfig holds key-pair credentials for the warehouse-hosted model
type SnowflakeConfig struct {
	Account        string `envconfig:"SNOWFLAKE_ACCOUNT"`
	User           string `envconfig:"SNOWFLAKE_USER"`
	PrivateKeyPath string `envconfig:"SNOWFLAKE_PRIVATE_KEY_PATH"`
	Role           string `envconfig:"SNOWFLAKE_ROLE"`
	Warehouse      string `envconfig:"SNOWFLAKE_WAREHOUSE"`
	Database       string `envconfig:"SNOWFLAKE_DATABASE"`
	Schema         string `envconfig:"SNOWFLAKE_SCHEMA"`
	CortexModel    string `envconfig:"SNOWFLAKE_CORTEX_MODEL" default:"llama3.1-70b"`
	// BaseURL overrides https://<account>.snowflakecomputing.com
	BaseURL string `envconfig:"SNOWFLAKE_BASE_URL"`
}

// TranscriptionConfig selects the optional audio transcription backend
type TranscriptionConfig struct {
	Backend  string `envconfig:"TRANSCRIPTION_BACKEND" default:"none"`
	Language string `envconfig:"TRANSCRIPTION_LANGUAGE"`
}

// AssemblyAIConfig holds AssemblyAI credentials
type AssemblyAIConfig struct {
	APIKey string `envconfig:"ASSEMBLYAI_API_KEY"`
}

// SalesforceConfig names the CRM org, credentials and the comments object mapping
type SalesforceConfig struct {
	LoginURL       string `envconfig:"SALESFORCE_LOGIN_URL" default:"https://login.salesforce.com"`
	APIVersion     string `envconfig:"SALESFORCE_API_VERSION" default:"v60.0"`
	ClientID       string `envconfig:"SALESFORCE_CLIENT_ID"`
	ClientSecret   string `envconfig:"SALESFORCE_CLIENT_SECRET"`
	Username       string `envconfig:"SALESFORCE_USERNAME"`
	Password       string `envconfig:"SALESFORCE_PASSWORD"`
	SecurityToken  string `envconfig:"SALESFORCE_SECURITY_TOKEN"`
	PrivateKeyPath string `envconfig:"SALESFORCE_PRIVATE_KEY_PATH"`

	ObjectAPIName string `envconfig:"SALESFORCE_SOLUTION_ASSESSMENT_OBJECT_API_NAME"`
	LookupField   string `envconfig:"SALESFORCE_SOLUTION_ASSESSMENT_OPPORTUNITY_LOOKUP_FIELD_API_NAME"`
	CommentsField string `envconfig:"SALESFORCE_SOLUTION_ASSESSMENT_OPPORTUNITY_COMMENTS_FIELD_API_NAME"`
	AppendMode    bool   `envconfig:"SALESFORCE_APPEND_MODE" default:"true"`
}

// PathsConfig holds local directories
type PathsConfig struct {
	DataDir    string `envconfig:"DATA_DIR" default:"data"`
	OutputsDir string `envconfig:"OUTPUTS_DIR" default:"outputs"`
}

// RunStoreConfig selects where saved runs live
type RunStoreConfig struct {
	Driver     string `envconfig:"RUN_STORE" default:"file"`
	SQLitePath string `envconfig:"RUN_STORE_SQLITE_PATH" default:"data/runs.sqlite"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host        string `envconfig:"DB_HOST" default:"localhost"`
	Port        string `envconfig:"DB_PORT" default:"5432"`
	User        string `envconfig:"DB_USER" default:"postgres"`
	Password    string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name        string `envconfig:"DB_NAME" default:"opportunity_notes"`
	SSLMode     string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns    int    `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns    int    `envconfig:"DB_MIN_CONNS" default:"2"`
	AutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"true"`
}

// RedisConfig holds Redis configuration for the generation guard
type RedisConfig struct {
	Enabled  bool          `envconfig:"REDIS_ENABLED" default:"false"`
	Host     string        `envconfig:"REDIS_HOST" default:"localhost"`
	Port     string        `envconfig:"REDIS_PORT" default:"6379"`
	Password string        `envconfig:"REDIS_PASSWORD"`
	DB       int           `envconfig:"REDIS_DB" default:"0"`
	GuardTTL time.Duration `envconfig:"GENERATION_GUARD_TTL" default:"24h"`
}

// ArchiveConfig holds object storage configuration for archiving uploads and exports
type ArchiveConfig struct {
	Enabled         bool   `envconfig:"ARCHIVE_ENABLED" default:"false"`
	Endpoint        string `envconfig:"ARCHIVE_ENDPOINT" default:"localhost:9000"`
	AccessKeyID     string `envconfig:"ARCHIVE_ACCESS_KEY" default:"minioadmin"`
	SecretAccessKey string `envconfig:"ARCHIVE_SECRET_KEY" default:"minioadmin"`
	BucketName      string `envconfig:"ARCHIVE_BUCKET" default:"opportunity-notes"`
	UseSSL          bool   `envconfig:"ARCHIVE_USE_SSL" default:"false"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FromEnv populates a Config from the process environment without loading .env or validating.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	cfg.LLM.Backend = NormalizeBackend(cfg.LLM.Backend)
	cfg.Transcription.Backend = strings.ToLower(strings.TrimSpace(cfg.Transcription.Backend))
	cfg.RunStore.Driver = strings.ToLower(strings.TrimSpace(cfg.RunStore.Driver))
	cfg.OpenAI.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.OpenAI.BaseURL), "/")
	return &cfg, nil
}

// NormalizeBackend maps accepted aliases onto the canonical backend names.
func NormalizeBackend(backend string) string {
	b := strings.ToLower(strings.TrimSpace(backend))
	switch b {
	case "":
		return BackendMock
	case "cortex", "snowflake":
		return BackendCortex
	}
	return b
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.LLM.Backend {
	case BackendMock:
	case BackendOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for LLM_BACKEND=openai")
		}
	case BackendCortex:
		if c.Snowflake.Account == "" || c.Snowflake.User == "" {
			return fmt.Errorf("SNOWFLAKE_ACCOUNT and SNOWFLAKE_USER are required for LLM_BACKEND=%s", BackendCortex)
		}
		if c.Snowflake.PrivateKeyPath == "" {
			return fmt.Errorf("SNOWFLAKE_PRIVATE_KEY_PATH is required for LLM_BACKEND=%s", BackendCortex)
		}
	default:
		return fmt.Errorf("unknown LLM_BACKEND: %s", c.LLM.Backend)
	}

	switch c.Transcription.Backend {
	case TranscribeNone, TranscribeOpenAI, TranscribeAAI:
	default:
		return fmt.Errorf("unknown TRANSCRIPTION_BACKEND: %s", c.Transcription.Backend)
	}

	switch c.RunStore.Driver {
	case StoreFile, StorePostgres, StoreSQLite:
	default:
		return fmt.Errorf("unknown RUN_STORE: %s", c.RunStore.Driver)
	}

	return nil
}

// Validate checks the mapping and credentials needed before pushing to Salesforce
func (s *SalesforceConfig) Validate() error {
	if s.ObjectAPIName == "" || s.LookupField == "" || s.CommentsField == "" {
		return fmt.Errorf("solution assessment object, lookup field and comments field API names are required")
	}
	if s.Username == "" || s.ClientID == "" {
		return fmt.Errorf("SALESFORCE_USERNAME and SALESFORCE_CLIENT_ID are required")
	}
	if s.PrivateKeyPath == "" && s.Password == "" {
		return fmt.Errorf("SALESFORCE_PASSWORD or SALESFORCE_PRIVATE_KEY_PATH is required")
	}
	return nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
