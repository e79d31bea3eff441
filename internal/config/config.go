// Package config provides configuration structures and validation for the
// fraud console. It covers the HTTP server, the upstream transaction API,
// the risk gate, batch generation, the audit publisher, and metrics.
package config

import (
	"errors"
	"strings"
	"time"
)

// Config holds the complete application configuration. Each field represents
// a major subsystem's configuration and is validated during startup.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	TxAPI       TxAPIConfig
	RiskGate    RiskGateConfig
	Batch       BatchConfig
	WorkerPool  WorkerPoolConfig
	Kafka       KafkaConfig
	Metrics     MetricsConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port            int           // Port to listen on
	ShutdownTimeout time.Duration // Grace period for server shutdown
	ReadTimeout     time.Duration // Maximum duration for reading entire request
	WriteTimeout    time.Duration // Maximum duration for writing response
	IdleTimeout     time.Duration // Maximum duration to wait for next request
}

// TxAPIConfig contains settings for the upstream transaction API
type TxAPIConfig struct {
	BaseURL string        // Base URL of the external transaction API
	Timeout time.Duration // HTTP client timeout for all upstream calls
}

// RiskGateConfig contains risk gate and status lookup settings
type RiskGateConfig struct {
	Debounce           time.Duration // Quiet period after the last sender-account edit
	BreakerMaxFailures uint32        // Consecutive lookup failures before the breaker opens
	BreakerCooldown    time.Duration // How long the breaker stays open before probing
}

// BatchConfig contains batch generation settings
type BatchConfig struct {
	Throttle time.Duration // Fixed pause between consecutive submissions
}

// WorkerPoolConfig contains worker pool configuration
type WorkerPoolConfig struct {
	Size int // Maximum number of batch runs executing at once
}

// KafkaConfig contains the batch-run audit publisher configuration
type KafkaConfig struct {
	Enabled           bool
	Brokers           string
	AuditTopic        string
	NumPartitions     int // Number of partitions for topic creation
	ReplicationFactor int // Replication factor for topic creation
	WriteTimeout      time.Duration
}

// MetricsConfig contains metrics configuration
type MetricsConfig struct {
	Namespace string
}

// validate performs comprehensive validation of all configuration values,
// ensuring they meet minimum requirements and logical constraints
func (c *Config) validate() error {
	var validationErrors []string

	// Validate Server config
	if c.Server.Port <= 0 {
		validationErrors = append(validationErrors, "SERVER_PORT must be greater than 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
	}
	if c.Server.ReadTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_READ_TIMEOUT must be greater than 0")
	}
	if c.Server.WriteTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_WRITE_TIMEOUT must be greater than 0")
	}
	if c.Server.IdleTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_IDLE_TIMEOUT must be greater than 0")
	}

	// Validate transaction API config
	if c.TxAPI.BaseURL == "" {
		validationErrors = append(validationErrors, "TX_API_BASE_URL is required")
	}
	if c.TxAPI.Timeout <= 0 {
		validationErrors = append(validationErrors, "TX_API_TIMEOUT must be greater than 0")
	}

	// Validate risk gate config
	if c.RiskGate.Debounce <= 0 {
		validationErrors = append(validationErrors, "RISK_GATE_DEBOUNCE must be greater than 0")
	}
	if c.RiskGate.BreakerMaxFailures == 0 {
		validationErrors = append(validationErrors, "RISK_GATE_BREAKER_MAX_FAILURES must be greater than 0")
	}
	if c.RiskGate.BreakerCooldown <= 0 {
		validationErrors = append(validationErrors, "RISK_GATE_BREAKER_COOLDOWN must be greater than 0")
	}

	// Validate batch config
	if c.Batch.Throttle <= 0 {
		validationErrors = append(validationErrors, "BATCH_THROTTLE must be greater than 0")
	}

	// Validate WorkerPool config
	if c.WorkerPool.Size <= 0 {
		validationErrors = append(validationErrors, "WORKER_POOL_SIZE must be greater than 0")
	}

	// Validate Kafka config (only when the audit publisher is enabled)
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			validationErrors = append(validationErrors, "KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if c.Kafka.AuditTopic == "" {
			validationErrors = append(validationErrors, "KAFKA_AUDIT_TOPIC is required when KAFKA_ENABLED is true")
		}
		if c.Kafka.WriteTimeout <= 0 {
			validationErrors = append(validationErrors, "KAFKA_WRITE_TIMEOUT must be greater than 0")
		}
	}

	// Validate metrics config
	if c.Metrics.Namespace == "" {
		validationErrors = append(validationErrors, "METRICS_NAMESPACE is required")
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}
