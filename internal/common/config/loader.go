package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "applicant-pipeline/internal/common/errors"
)

// Load reads configuration from an optional yaml file, the environment, and
// documented defaults, in that order of increasing precedence for the legacy
// env names.
func Load() (*Config, error) {
	loadEnvFile()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	overrideFromEnv(&cfg)
	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// loadEnvFile loads .env from the working directory or the project root.
func loadEnvFile() {
	possiblePaths := []string{".env", "../.env", "../../.env"}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// overrideFromEnv applies the documented environment names. These are the
// names the Airtable automation scripts always used, so they win over the
// yaml file.
func overrideFromEnv(cfg *Config) {
	setString := func(dst *string, key string) {
		if val := os.Getenv(key); val != "" {
			*dst = val
		}
	}
	setFlag := func(dst *bool, key string) {
		if val := os.Getenv(key); val != "" {
			*dst = val == "1" || strings.EqualFold(val, "true")
		}
	}

	setString(&cfg.Airtable.BaseID, "AIRTABLE_BASE_ID")
	setString(&cfg.Airtable.Token, "AIRTABLE_TOKEN")

	setString(&cfg.Tables.Applicants, "TBL_APPLICANTS")
	setString(&cfg.Tables.PersonalDetails, "TBL_PERSONAL_DETAILS")
	setString(&cfg.Tables.WorkExperience, "TBL_WORK_EXPERIENCE")
	setString(&cfg.Tables.SalaryPreferences, "TBL_SALARY_PREFERENCES")
	setString(&cfg.Tables.ShortlistedLeads, "TBL_SHORTLISTED_LEADS")

	setString(&cfg.Fields.ApplicantLink, "APPLICANT_LINK_FIELD")
	setString(&cfg.Fields.Summary, "LLM_SUMMARY_FIELD")
	setString(&cfg.Fields.Score, "LLM_SCORE_FIELD")
	setString(&cfg.Fields.Issues, "LLM_ISSUES_FIELD")
	setString(&cfg.Fields.FollowUps, "LLM_FOLLOWUPS_FIELD")

	setString(&cfg.LLM.APIKey, "GEMINI_API_KEY")
	setString(&cfg.LLM.Model, "GEMINI_MODEL")
	setFlag(&cfg.LLM.RunAlways, "RUN_LLM_ALWAYS")
	setFlag(&cfg.LLM.Mock, "MOCK_LLM")

	setString(&cfg.Cache.Address, "REDIS_ADDRESS")
	setString(&cfg.Cache.Password, "REDIS_PASSWORD")
	if val := os.Getenv("REDIS_DB"); val != "" {
		if db, err := strconv.Atoi(val); err == nil {
			cfg.Cache.DB = db
		}
	}

	setString(&cfg.Metrics.Address, "METRICS_ADDRESS")
}

// applyDefaults sets default values for optional configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Airtable.BaseURL == "" {
		cfg.Airtable.BaseURL = "https://api.airtable.com/v0"
	}
	if cfg.Airtable.Timeout == 0 {
		cfg.Airtable.Timeout = 30000
	}
	// -1 disables retries and pacing explicitly; 0 means unset
	if cfg.Airtable.MaxRetries == 0 {
		cfg.Airtable.MaxRetries = 3
	} else if cfg.Airtable.MaxRetries < 0 {
		cfg.Airtable.MaxRetries = 0
	}
	if cfg.Airtable.RetryDelay == 0 {
		cfg.Airtable.RetryDelay = 500
	}

	if cfg.Tables.Applicants == "" {
		cfg.Tables.Applicants = "Applicants"
	}
	if cfg.Tables.PersonalDetails == "" {
		cfg.Tables.PersonalDetails = "Personal Details"
	}
	if cfg.Tables.WorkExperience == "" {
		cfg.Tables.WorkExperience = "Work Experience"
	}
	if cfg.Tables.SalaryPreferences == "" {
		cfg.Tables.SalaryPreferences = "Salary Preferences"
	}
	if cfg.Tables.ShortlistedLeads == "" {
		cfg.Tables.ShortlistedLeads = "Shortlisted Leads"
	}

	if cfg.Fields.ApplicantID == "" {
		cfg.Fields.ApplicantID = "Applicant ID"
	}
	if cfg.Fields.ApplicantLink == "" {
		cfg.Fields.ApplicantLink = "Applicant"
	}
	if cfg.Fields.CompressedJSON == "" {
		cfg.Fields.CompressedJSON = "Compressed JSON"
	}
	if cfg.Fields.ShortlistStatus == "" {
		cfg.Fields.ShortlistStatus = "Shortlist Status"
	}
	if cfg.Fields.ScoreReason == "" {
		cfg.Fields.ScoreReason = "Score Reason"
	}
	if cfg.Fields.Summary == "" {
		cfg.Fields.Summary = "LLM Summary"
	}
	if cfg.Fields.Score == "" {
		cfg.Fields.Score = "LLM Score"
	}
	if cfg.Fields.Issues == "" {
		cfg.Fields.Issues = "LLM Issues"
	}
	if cfg.Fields.FollowUps == "" {
		cfg.Fields.FollowUps = "LLM Follow-Ups"
	}

	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gemini-2.5-flash"
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 60000
	}
	if cfg.LLM.MaxRetries == 0 {
		cfg.LLM.MaxRetries = 3
	} else if cfg.LLM.MaxRetries < 0 {
		cfg.LLM.MaxRetries = 0
	}

	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 86400
	}

	if cfg.Backfill.Delay == 0 {
		cfg.Backfill.Delay = 1000
	} else if cfg.Backfill.Delay < 0 {
		cfg.Backfill.Delay = 0
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// validateConfig validates critical configuration fields.
func validateConfig(cfg *Config) error {
	if cfg.Airtable.BaseID == "" {
		return apperrors.NewConfigMissingError("airtable.base_id (AIRTABLE_BASE_ID)")
	}
	if cfg.Airtable.Token == "" {
		return apperrors.NewConfigMissingError("airtable.token (AIRTABLE_TOKEN)")
	}
	if !cfg.LLM.Mock && cfg.LLM.APIKey == "" {
		return apperrors.NewConfigMissingError("llm.api_key (GEMINI_API_KEY)")
	}
	return nil
}
