package config

import "time"

// Config is the main application configuration struct. It is constructed once
// at startup and passed into each component constructor.
type Config struct {
	Airtable AirtableConfig `mapstructure:"airtable"`
	Tables   TablesConfig   `mapstructure:"tables"`
	Fields   FieldsConfig   `mapstructure:"fields"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Backfill BackfillConfig `mapstructure:"backfill"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// AirtableConfig holds credentials and HTTP behavior for the table service.
type AirtableConfig struct {
	BaseID     string `mapstructure:"base_id"`
	Token      string `mapstructure:"token"`
	BaseURL    string `mapstructure:"base_url"`
	Timeout    int    `mapstructure:"timeout"`     // milliseconds
	MaxRetries int    `mapstructure:"max_retries"` // transient 429/5xx only; -1 disables
	RetryDelay int    `mapstructure:"retry_delay"` // initial backoff, milliseconds
}

// TablesConfig holds the table names, all overridable.
type TablesConfig struct {
	Applicants        string `mapstructure:"applicants"`
	PersonalDetails   string `mapstructure:"personal_details"`
	WorkExperience    string `mapstructure:"work_experience"`
	SalaryPreferences string `mapstructure:"salary_preferences"`
	ShortlistedLeads  string `mapstructure:"shortlisted_leads"`
}

// FieldsConfig holds the field names used on the remote tables.
type FieldsConfig struct {
	ApplicantID     string `mapstructure:"applicant_id"`
	ApplicantLink   string `mapstructure:"applicant_link"`
	CompressedJSON  string `mapstructure:"compressed_json"`
	ShortlistStatus string `mapstructure:"shortlist_status"`
	ScoreReason     string `mapstructure:"score_reason"`
	Summary         string `mapstructure:"summary"`
	Score           string `mapstructure:"score"`
	Issues          string `mapstructure:"issues"`
	FollowUps       string `mapstructure:"follow_ups"`
}

// LLMConfig holds settings for the generative-text API.
type LLMConfig struct {
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	Mock       bool   `mapstructure:"mock"`
	RunAlways  bool   `mapstructure:"run_always"`
	Timeout    int    `mapstructure:"timeout"` // milliseconds
	MaxRetries int    `mapstructure:"max_retries"`
}

// CacheConfig holds settings for the optional Redis evaluation cache.
// The cache is disabled when Address is empty.
type CacheConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TTL      int    `mapstructure:"ttl"` // seconds
}

// BackfillConfig holds settings for the backfill-all run.
type BackfillConfig struct {
	Delay      int  `mapstructure:"delay"` // pause between applicants, milliseconds; -1 disables
	Decompress bool `mapstructure:"decompress"`
}

// MetricsConfig holds the optional Prometheus listen address.
type MetricsConfig struct {
	Address string `mapstructure:"address"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// GetDuration converts milliseconds from config to time.Duration.
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
