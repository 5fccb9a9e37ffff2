// Package config loads service configuration with Viper.
//
// Values come from (highest priority first) environment variables with the
// APPROVALFLOW_ prefix, an optional approvalflow.yaml in the working
// directory, and built-in defaults.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	// ListenAddr is the HTTP bind address, e.g. ":8080".
	ListenAddr string `mapstructure:"listen_addr"`

	// DatabaseDSN is the Postgres connection string.
	DatabaseDSN string `mapstructure:"database_dsn"`

	// RedisAddr is the host:port of the Redis instance backing the
	// notification queue and event bus.
	RedisAddr string `mapstructure:"redis_addr"`

	// NotifierConcurrency is the number of goroutines draining the
	// notification queue.
	NotifierConcurrency int `mapstructure:"notifier_concurrency"`

	// OverdueScanCron is the cron expression for the overdue-step scan.
	OverdueScanCron string `mapstructure:"overdue_scan_cron"`
}

func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("database_dsn", "host=localhost user=postgres password=postgres dbname=approvalflow port=5432 sslmode=disable")
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("notifier_concurrency", 4)
	v.SetDefault("overdue_scan_cron", "0 8 * * *")

	v.SetEnvPrefix("APPROVALFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("approvalflow")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; env vars and defaults apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
