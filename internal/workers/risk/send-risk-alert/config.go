package sendriskalert

import (
	"fmt"
	"time"

	"risk-workers/internal/common/config"
	"risk-workers/internal/risk"
)

type Config struct {
	Enabled       bool          `mapstructure:"enabled"`
	MaxJobsActive int           `mapstructure:"max_jobs_active"`
	Timeout       time.Duration `mapstructure:"timeout"`
	Threshold     risk.Level    `mapstructure:"threshold"`
	EmailEnabled  bool          `mapstructure:"email_enabled"`
	SMSEnabled    bool          `mapstructure:"sms_enabled"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30 * time.Second,
		Threshold:     risk.LevelHigh,
		EmailEnabled:  true,
		SMSEnabled:    false,
	}
}

// ConfigFromApp combines the worker section keyed by TaskType with the alerts section.
func ConfigFromApp(cfg *config.Config) *Config {
	wc := config.GetWorkerConfig(cfg, TaskType)
	return &Config{
		Enabled:       wc.Enabled,
		MaxJobsActive: wc.MaxJobsActive,
		Timeout:       config.GetDuration(wc.Timeout),
		Threshold:     risk.Level(cfg.Alerts.Threshold),
		EmailEnabled:  cfg.Alerts.Email.Enabled,
		SMSEnabled:    cfg.Alerts.SMS.Enabled,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	if _, err := risk.ParseLevel(string(c.Threshold)); err != nil {
		return fmt.Errorf("threshold: %w", err)
	}
	return nil
}
