package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Site under management
	Site SiteConfig `mapstructure:"site"`

	// Submission client configuration
	Submitter SubmitterConfig `mapstructure:"submitter"`

	// Health monitor configuration
	Monitor MonitorConfig `mapstructure:"monitor"`

	// Orchestrator configuration
	Orchestrator OrchestratorConfig `mapstructure:"orchestrator"`

	// Site-level E-A-T signal declarations
	Trust TrustConfig `mapstructure:"trust"`

	// Logging configuration
	Logging LoggingConfig `mapstructure:"logging"`
}

// SiteConfig identifies the site and its index-submission credentials
type SiteConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	Host        string `mapstructure:"host"`
	IndexKey    string `mapstructure:"index_key"`
	Name        string `mapstructure:"name"`
	KeywordFile string `mapstructure:"keyword_file"`
	PagesFile   string `mapstructure:"pages_file"`
}

// Engine is one configured index-submission endpoint
type Engine struct {
	Name     string `mapstructure:"name"`
	Endpoint string `mapstructure:"endpoint"`
}

// SubmitterConfig holds submission-client configuration
type SubmitterConfig struct {
	Engines    []Engine      `mapstructure:"engines"`
	MaxRetries int           `mapstructure:"max_retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
	Timeout    time.Duration `mapstructure:"timeout"`
	BatchSize  int           `mapstructure:"batch_size"`
	RateLimit  int           `mapstructure:"rate_limit"` // requests per minute per engine
	UserAgent  string        `mapstructure:"user_agent"`
}

// MonitorConfig holds health-monitor configuration
type MonitorConfig struct {
	CheckInterval  time.Duration `mapstructure:"check_interval"`
	AutoFix        bool          `mapstructure:"auto_fix"`
	AlertThreshold int           `mapstructure:"alert_threshold"`
	EnableML       bool          `mapstructure:"enable_ml"` // reserved for a pluggable recommendation strategy
	ProbeTimeout   time.Duration `mapstructure:"probe_timeout"`
	AlertWebhook   string        `mapstructure:"alert_webhook"`
}

// OrchestratorConfig holds orchestrator configuration
type OrchestratorConfig struct {
	Workers   int           `mapstructure:"workers"`
	PageDelay time.Duration `mapstructure:"page_delay"`
}

// TrustConfig declares the site-level E-A-T signals. Booleans default
// to false: a signal the operator does not claim is a signal the site
// does not have.
type TrustConfig struct {
	AuthorBylines      bool    `mapstructure:"author_bylines"`
	AuthorCredentials  bool    `mapstructure:"author_credentials"`
	ExpertReview       bool    `mapstructure:"expert_review"`
	OriginalResearch   bool    `mapstructure:"original_research"`
	YearsInBusiness    int     `mapstructure:"years_in_business"`
	ReferringDomains   int     `mapstructure:"referring_domains"`
	BrandMentions      bool    `mapstructure:"brand_mentions"`
	IndustryAwards     bool    `mapstructure:"industry_awards"`
	MediaCitations     bool    `mapstructure:"media_citations"`
	SocialFollowing    bool    `mapstructure:"social_following"`
	HTTPS              bool    `mapstructure:"https"`
	ReviewRating       float64 `mapstructure:"review_rating"`
	PrivacyPolicy      bool    `mapstructure:"privacy_policy"`
	ContactInfo        bool    `mapstructure:"contact_info"`
	SecurePayment      bool    `mapstructure:"secure_payment"`
	TransparentPricing bool    `mapstructure:"transparent_pricing"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// Load loads configuration from file and environment
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.rankpilot")
	}

	setDefaults(v)

	v.SetEnvPrefix("RANKPILOT")
	v.AutomaticEnv()
	v.BindEnv("site.index_key", "RANKPILOT_INDEX_KEY")

	if err := v.ReadInConfig(); err != nil {
		// Missing config file is fine, defaults and env cover everything
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Submitter defaults
	v.SetDefault("submitter.max_retries", 3)
	v.SetDefault("submitter.retry_delay", "2s")
	v.SetDefault("submitter.timeout", "10s")
	v.SetDefault("submitter.batch_size", 100)
	v.SetDefault("submitter.rate_limit", 10)
	v.SetDefault("submitter.user_agent", "RankPilot/1.0")

	// Monitor defaults
	v.SetDefault("monitor.check_interval", "60m")
	v.SetDefault("monitor.auto_fix", true)
	v.SetDefault("monitor.alert_threshold", 70)
	v.SetDefault("monitor.enable_ml", false)
	v.SetDefault("monitor.probe_timeout", "10s")

	// Orchestrator defaults
	v.SetDefault("orchestrator.workers", 4)
	v.SetDefault("orchestrator.page_delay", "0s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Submitter.MaxRetries < 0 {
		return fmt.Errorf("submitter.max_retries must not be negative")
	}
	if c.Submitter.BatchSize <= 0 {
		return fmt.Errorf("submitter.batch_size must be positive")
	}
	if c.Submitter.RateLimit <= 0 {
		return fmt.Errorf("submitter.rate_limit must be positive")
	}
	if c.Monitor.AlertThreshold < 0 || c.Monitor.AlertThreshold > 100 {
		return fmt.Errorf("monitor.alert_threshold must be within [0,100]")
	}
	if c.Orchestrator.Workers <= 0 {
		return fmt.Errorf("orchestrator.workers must be positive")
	}
	return nil
}
