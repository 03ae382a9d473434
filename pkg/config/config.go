package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Engine struct {
		MinConfidence            float64 `yaml:"min_confidence"`
		MinFiltersRequired       int     `yaml:"min_filters_required"`
		MaxContradictions        int     `yaml:"max_contradictions"`
		VolatileRegimeConfidence float64 `yaml:"volatile_regime_confidence"`
		PublishSignals           bool    `yaml:"publish_signals"`
	} `yaml:"engine"`
	Regime struct {
		ADXStrong          float64            `yaml:"adx_strong"`
		ADXWeak            float64            `yaml:"adx_weak"`
		ATRExpansion       float64            `yaml:"atr_expansion"`
		VolumeQuiet        float64            `yaml:"volume_quiet"`
		SmoothingThreshold float64            `yaml:"smoothing_threshold"`
		TimeframeWeights   map[string]float64 `yaml:"timeframe_weights"`
		OffHoursUTC        []int              `yaml:"off_hours_utc"`
	} `yaml:"regime"`
	Weights struct {
		MinSample      int     `yaml:"min_sample"`
		LearningRate   float64 `yaml:"learning_rate"`
		SuccessBonus   float64 `yaml:"success_bonus"`
		FailurePenalty float64 `yaml:"failure_penalty"`
		Decay          float64 `yaml:"decay"`
		FlushEvery     int     `yaml:"flush_every"`
	} `yaml:"weights"`
	Outcomes struct {
		Retention int `yaml:"retention"`
	} `yaml:"outcomes"`
	Persistence struct {
		Backend string `yaml:"backend"`
		File    struct {
			Path string `yaml:"path"`
		} `yaml:"file"`
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Key      string `yaml:"key"`
		} `yaml:"redis"`
	} `yaml:"persistence"`
	ClickHouse struct {
		Enabled     bool          `yaml:"enabled"`
		Host        string        `yaml:"host"`
		Port        int           `yaml:"port"`
		Database    string        `yaml:"database"`
		User        string        `yaml:"user"`
		Password    string        `yaml:"password"`
		DialTimeout time.Duration `yaml:"dial_timeout"`
		ReadTimeout time.Duration `yaml:"read_timeout"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled       bool     `yaml:"enabled"`
		Brokers       []string `yaml:"brokers"`
		SignalsTopic  string   `yaml:"signals_topic"`
		OutcomesTopic string   `yaml:"outcomes_topic"`
		Producer      struct {
			RequiredAcks int           `yaml:"required_acks"`
			MaxAttempts  int           `yaml:"max_attempts"`
			BatchTimeout time.Duration `yaml:"batch_timeout"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	Feed struct {
		Enabled        bool          `yaml:"enabled"`
		WebSocketURL   string        `yaml:"websocket_url"`
		Symbols        []string      `yaml:"symbols"`
		Timeframes     []string      `yaml:"timeframes"`
		WindowSize     int           `yaml:"window_size"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
	} `yaml:"feed"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	if v := os.Getenv("PERSISTENCE_BACKEND"); v != "" {
		c.Persistence.Backend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Persistence.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Feed.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("FEED_WEBSOCKET_URL"); v != "" {
		c.Feed.WebSocketURL = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, perr := strconv.Atoi(v); perr == nil {
			c.Server.Port = port
		}
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Engine.MinConfidence == 0 {
		c.Engine.MinConfidence = 0.65
	}
	if c.Engine.MinFiltersRequired == 0 {
		c.Engine.MinFiltersRequired = 4
	}
	if c.Engine.MaxContradictions == 0 {
		c.Engine.MaxContradictions = 1
	}
	if c.Engine.VolatileRegimeConfidence == 0 {
		c.Engine.VolatileRegimeConfidence = 0.75
	}
	if c.Weights.MinSample == 0 {
		c.Weights.MinSample = 5
	}
	if c.Weights.LearningRate == 0 {
		c.Weights.LearningRate = 0.5
	}
	if c.Weights.SuccessBonus == 0 {
		c.Weights.SuccessBonus = 0.1
	}
	if c.Weights.FailurePenalty == 0 {
		c.Weights.FailurePenalty = 0.1
	}
	if c.Weights.FlushEvery == 0 {
		c.Weights.FlushEvery = 10
	}
	if c.Outcomes.Retention == 0 {
		c.Outcomes.Retention = 1000
	}
	if c.Persistence.Backend == "" {
		c.Persistence.Backend = "file"
	}
	if c.Persistence.File.Path == "" {
		c.Persistence.File.Path = "data/weights.json"
	}
	if c.Persistence.Redis.Key == "" {
		c.Persistence.Redis.Key = "conflux:weights"
	}
	if c.Feed.WindowSize == 0 {
		c.Feed.WindowSize = 200
	}
	if c.Feed.ReconnectDelay == 0 {
		c.Feed.ReconnectDelay = 5 * time.Second
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Persistence.Backend != "file" && c.Persistence.Backend != "redis" {
		return fmt.Errorf("persistence.backend must be 'file' or 'redis', got '%s'", c.Persistence.Backend)
	}
	if c.Persistence.Backend == "redis" && c.Persistence.Redis.Addr == "" {
		return fmt.Errorf("persistence.redis.addr is required for redis backend")
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when clickhouse is enabled")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Feed.Enabled {
		if c.Feed.WebSocketURL == "" {
			return fmt.Errorf("feed.websocket_url is required when feed is enabled")
		}
		if len(c.Feed.Symbols) == 0 {
			return fmt.Errorf("feed.symbols cannot be empty when feed is enabled")
		}
	}
	if c.Engine.MinConfidence < 0 || c.Engine.MinConfidence > 1 {
		return fmt.Errorf("engine.min_confidence must be in [0,1], got %v", c.Engine.MinConfidence)
	}
	return nil
}
