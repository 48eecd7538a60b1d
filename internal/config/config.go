// Package config loads session settings from an optional YAML file and the
// environment. Environment variables win over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"dgu-live/internal/logger"
	"dgu-live/internal/mqtt"
	"dgu-live/internal/transport"
	"dgu-live/internal/view"
)

// Push sources.
const (
	SourceWebsocket = "ws"
	SourceMQTT      = "mqtt"
)

type Config struct {
	Source  string        `yaml:"source"`
	WS      WSConfig      `yaml:"ws"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
	API     APIConfig     `yaml:"api"`
	View    ViewConfig    `yaml:"view"`
	Influx  InfluxConfig  `yaml:"influx"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     logger.Config `yaml:"log"`
}

type WSConfig struct {
	URL              string        `yaml:"url"`
	Token            string        `yaml:"token"`
	Subscribe        string        `yaml:"subscribe"`
	BackoffFloor     time.Duration `yaml:"backoff_floor"`
	BackoffCeiling   time.Duration `yaml:"backoff_ceiling"`
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
}

type MQTTConfig struct {
	Broker               string        `yaml:"broker"`
	ClientID             string        `yaml:"client_id"`
	User                 string        `yaml:"user"`
	Pass                 string        `yaml:"pass"`
	TopicPrefix          string        `yaml:"topic_prefix"`
	MaxReconnectInterval time.Duration `yaml:"max_reconnect_interval"`
}

// APIConfig points at the pull-based snapshot API. Site is the router serial
// whose baseline rows are polled.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Token   string        `yaml:"token"`
	Site    string        `yaml:"site"`
	Refresh time.Duration `yaml:"refresh"`
}

type ViewConfig struct {
	StaleAfter time.Duration  `yaml:"stale_after"`
	Tick       time.Duration  `yaml:"tick"`
	Registers  view.Registers `yaml:"registers"`
}

type InfluxConfig struct {
	Enabled  bool          `yaml:"enabled"`
	URL      string        `yaml:"url"`
	Token    string        `yaml:"token"`
	Org      string        `yaml:"org"`
	Bucket   string        `yaml:"bucket"`
	Interval time.Duration `yaml:"interval"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Source: SourceWebsocket,
		WS: WSConfig{
			URL:              "ws://localhost:5555/ws",
			BackoffFloor:     transport.DefaultBackoffFloor,
			BackoffCeiling:   transport.DefaultBackoffCeiling,
			HandshakeTimeout: 10 * time.Second,
		},
		MQTT: MQTTConfig{
			Broker:               "tcp://localhost:1883",
			ClientID:             "dgu-live",
			TopicPrefix:          mqtt.DefaultTopicPrefix,
			MaxReconnectInterval: time.Minute,
		},
		API: APIConfig{
			BaseURL: "http://localhost:5555",
			Refresh: time.Minute,
		},
		View: ViewConfig{
			StaleAfter: view.DefaultStaleAfter,
			Tick:       view.DefaultTick,
			Registers:  view.DefaultRegisters(),
		},
		Influx: InfluxConfig{
			URL:      "http://localhost:8086",
			Org:      "my-org",
			Bucket:   "dgu_live",
			Interval: 30 * time.Second,
		},
		Log: logger.Config{Level: "info", Output: "stdout"},
	}
}

// Load reads defaults, then the YAML file at path (if path is non-empty),
// then environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Source = getEnv("SOURCE", c.Source)

	c.WS.URL = getEnv("WS_URL", c.WS.URL)
	c.WS.Token = getEnv("WS_TOKEN", c.WS.Token)
	c.WS.Subscribe = getEnv("WS_SUBSCRIBE", c.WS.Subscribe)

	c.MQTT.Broker = getEnv("MQTT_BROKER", c.MQTT.Broker)
	c.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", c.MQTT.ClientID)
	c.MQTT.User = getEnv("MQTT_USER", c.MQTT.User)
	c.MQTT.Pass = getEnv("MQTT_PASS", c.MQTT.Pass)
	c.MQTT.TopicPrefix = getEnv("MQTT_TOPIC_PREFIX", c.MQTT.TopicPrefix)

	c.API.BaseURL = getEnv("API_BASE_URL", c.API.BaseURL)
	c.API.Token = getEnv("API_TOKEN", c.API.Token)
	c.API.Site = getEnv("API_SITE", c.API.Site)

	c.Influx.URL = getEnv("INFLUX_URL", c.Influx.URL)
	c.Influx.Token = getEnv("INFLUX_TOKEN", c.Influx.Token)
	c.Influx.Org = getEnv("INFLUX_ORG", c.Influx.Org)
	c.Influx.Bucket = getEnv("INFLUX_BUCKET", c.Influx.Bucket)

	c.Metrics.Addr = getEnv("METRICS_ADDR", c.Metrics.Addr)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Output = getEnv("LOG_OUTPUT", c.Log.Output)
	c.Log.TimeFormat = getEnv("LOG_TIME_FORMAT", c.Log.TimeFormat)

	var err error
	if c.Influx.Enabled, err = getEnvBool("INFLUX_ENABLED", c.Influx.Enabled); err != nil {
		return err
	}
	if c.Log.Debug, err = getEnvBool("DEBUG", c.Log.Debug); err != nil {
		return err
	}
	if c.View.StaleAfter, err = getEnvDuration("STALE_AFTER", c.View.StaleAfter); err != nil {
		return err
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Source {
	case SourceWebsocket:
		if c.WS.URL == "" {
			return errors.New("ws.url is required for the ws source")
		}
	case SourceMQTT:
		if c.MQTT.Broker == "" {
			return errors.New("mqtt.broker is required for the mqtt source")
		}
	default:
		return fmt.Errorf("unknown source %q", c.Source)
	}

	durations := map[string]time.Duration{
		"ws.backoff_floor":   c.WS.BackoffFloor,
		"ws.backoff_ceiling": c.WS.BackoffCeiling,
		"view.stale_after":   c.View.StaleAfter,
		"view.tick":          c.View.Tick,
		"api.refresh":        c.API.Refresh,
		"influx.interval":    c.Influx.Interval,
	}
	for name, d := range durations {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}
	if c.WS.BackoffFloor > c.WS.BackoffCeiling {
		return fmt.Errorf("ws.backoff_floor %s exceeds ws.backoff_ceiling %s", c.WS.BackoffFloor, c.WS.BackoffCeiling)
	}
	return nil
}

// BaselineSite returns the site whose baseline is polled: api.site, or the
// websocket subscription filter when that is unset.
func (c *Config) BaselineSite() string {
	if c.API.Site != "" {
		return c.API.Site
	}
	return c.WS.Subscribe
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
