package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// LoadConfigWithName loads configuration using the specified name, auto-detecting the file type
// This is useful when the configuration file extension is unknown or variable
func LoadConfigWithName(configName string) (*Config, error) {
	return loadConfig(configName, "")
}

// LoadConfigWithNameAndType loads configuration with explicit name and type specification
// Use this when you need to force a specific configuration format (e.g., "yaml", "json")
func LoadConfigWithNameAndType(configName, configType string) (*Config, error) {
	return loadConfig(configName, configType)
}

// LoadConfig loads configuration from a .env file using the provided base name
// This is the preferred method for loading environment-specific configurations
func LoadConfig(configName string) (*Config, error) {
	configFileName := fmt.Sprintf("%s.env", configName)
	return loadConfig(configFileName, "env")
}

// loadConfig handles configuration loading from files and environment variables.
// It implements a layered approach to configuration:
// 1. Load defaults
// 2. Override with config file values (if found)
// 3. Override with environment variables
// 4. Validate the final configuration
func loadConfig(configName, configType string) (*Config, error) {
	// Initialize viper with default values
	v := viper.New()
	setDefaults(v)

	v.SetConfigName(configName)
	if configType != "" {
		v.SetConfigType(configType)
	}

	// Add config paths in order of priority
	v.AddConfigPath("./configs") // First check in configs directory
	v.AddConfigPath(".")         // Then check in root directory

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			fmt.Printf("INFO: No config file '%s' found, relying on environment variables and defaults.\n", configName)
		} else {
			fmt.Printf("WARNING: Error reading config file (%s): %v\n", v.ConfigFileUsed(), err)
		}
	} else {
		fmt.Printf("INFO: Config loaded from file: %s\n", v.ConfigFileUsed())
	}

	v.AutomaticEnv() // Automatically read matching environment variables

	// Build the config struct
	config := &Config{
		Application: ApplicationConfig{
			Env:  v.GetString("APP_ENV"),
			Name: v.GetString("APP_NAME"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Server: ServerConfig{
			Port:            v.GetInt("SERVER_PORT"),
			ShutdownTimeout: v.GetDuration("SERVER_SHUTDOWN_TIMEOUT"),
			ReadTimeout:     v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout:    v.GetDuration("SERVER_WRITE_TIMEOUT"),
			IdleTimeout:     v.GetDuration("SERVER_IDLE_TIMEOUT"),
		},
		TxAPI: TxAPIConfig{
			BaseURL: v.GetString("TX_API_BASE_URL"),
			Timeout: v.GetDuration("TX_API_TIMEOUT"),
		},
		RiskGate: RiskGateConfig{
			Debounce:           v.GetDuration("RISK_GATE_DEBOUNCE"),
			BreakerMaxFailures: uint32(v.GetInt("RISK_GATE_BREAKER_MAX_FAILURES")),
			BreakerCooldown:    v.GetDuration("RISK_GATE_BREAKER_COOLDOWN"),
		},
		Batch: BatchConfig{
			Throttle: v.GetDuration("BATCH_THROTTLE"),
		},
		WorkerPool: WorkerPoolConfig{
			Size: v.GetInt("WORKER_POOL_SIZE"),
		},
		Kafka: KafkaConfig{
			Enabled:           v.GetBool("KAFKA_ENABLED"),
			Brokers:           v.GetString("KAFKA_BROKERS"),
			AuditTopic:        v.GetString("KAFKA_AUDIT_TOPIC"),
			NumPartitions:     v.GetInt("KAFKA_NUM_PARTITIONS"),
			ReplicationFactor: v.GetInt("KAFKA_REPLICATION_FACTOR"),
			WriteTimeout:      v.GetDuration("KAFKA_WRITE_TIMEOUT"),
		},
		Metrics: MetricsConfig{
			Namespace: v.GetString("METRICS_NAMESPACE"),
		},
	}

	// Validate the configuration
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults initializes configuration with sensible default values.
// These values are used when no configuration file or environment variables are present.
func setDefaults(v *viper.Viper) {
	// HTTP Server defaults - tuned for typical web application workloads
	v.SetDefault("SERVER_PORT", 8090)
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second)
	v.SetDefault("SERVER_READ_TIMEOUT", 30*time.Second)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 60*time.Second)
	v.SetDefault("SERVER_IDLE_TIMEOUT", 120*time.Second)

	// Transaction API defaults - local development instance of the scoring backend
	v.SetDefault("TX_API_BASE_URL", "http://localhost:8080")
	v.SetDefault("TX_API_TIMEOUT", 15*time.Second)

	// Risk gate defaults - debounce matches the console's typing cadence,
	// breaker settings keep a flapping status endpoint from stalling the form
	v.SetDefault("RISK_GATE_DEBOUNCE", 500*time.Millisecond)
	v.SetDefault("RISK_GATE_BREAKER_MAX_FAILURES", 5)
	v.SetDefault("RISK_GATE_BREAKER_COOLDOWN", 30*time.Second)

	// Batch defaults - fixed pause between submissions so the backend's own
	// fraud triggers are not tripped by the generator itself
	v.SetDefault("BATCH_THROTTLE", 100*time.Millisecond)

	// Worker Pool defaults - bounds how many batch runs execute at once
	v.SetDefault("WORKER_POOL_SIZE", 4)

	// Kafka defaults - audit publishing is opt-in
	v.SetDefault("KAFKA_ENABLED", false)
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_AUDIT_TOPIC", "batch_run_audit")
	v.SetDefault("KAFKA_NUM_PARTITIONS", 1)
	v.SetDefault("KAFKA_REPLICATION_FACTOR", 1)
	v.SetDefault("KAFKA_WRITE_TIMEOUT", time.Second)

	// Metrics defaults
	v.SetDefault("METRICS_NAMESPACE", "fraud_console")

	// Logging defaults - 'info' provides good balance of information vs noise
	v.SetDefault("LOG_LEVEL", "info")

	// Application defaults - development-friendly baseline configuration
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_NAME", "fraud-console")
}
