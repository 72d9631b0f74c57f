package models

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type EnvConfig struct {
	DatabaseURL      string
	Port             string
	JWTSecret        []byte
	Debug            bool
	RequestTimeout   time.Duration
	ReportsPerMinute int
	ChecksPerMinute  int
	RateLimitSweep   time.Duration
	NotifyOnReports  bool
}

// ReadEnvConfig reads UNIMARKET_* variables, after loading a .env file from the
// working directory when one exists.
func ReadEnvConfig() EnvConfig {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("unimarket")
	v.AutomaticEnv()

	v.SetDefault("port", "23495")
	v.SetDefault("debug", false)
	v.SetDefault("request_timeout", 5*time.Second)
	v.SetDefault("reports_per_minute", 5)
	v.SetDefault("checks_per_minute", 30)
	v.SetDefault("rate_limit_sweep", time.Minute)
	v.SetDefault("notify_on_reports", true)

	return EnvConfig{
		DatabaseURL:      v.GetString("database_url"),
		Port:             v.GetString("port"),
		JWTSecret:        []byte(v.GetString("jwt_secret")),
		Debug:            v.GetBool("debug"),
		RequestTimeout:   v.GetDuration("request_timeout"),
		ReportsPerMinute: v.GetInt("reports_per_minute"),
		ChecksPerMinute:  v.GetInt("checks_per_minute"),
		RateLimitSweep:   v.GetDuration("rate_limit_sweep"),
		NotifyOnReports:  v.GetBool("notify_on_reports"),
	}
}
