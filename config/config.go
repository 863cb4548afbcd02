package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"doctts/tts"
)

// ErrInvalidOption is returned for configuration that is invalid for
// the whole invocation, detected before any document is processed.
var ErrInvalidOption = errors.New("config: invalid option")

// Operating range for the speed multiplier. Values outside it produce
// audio nobody can follow or that players refuse to render.
const (
	MinSpeed = 0.5
	MaxSpeed = 3.0
)

const (
	BackendNeural = "neural"
	BackendLocal  = "local"
)

type Config struct {
	Backend     string            `yaml:"backend"`
	Voice       string            `yaml:"voice"`
	Speed       float64           `yaml:"speed"`
	Concurrency int               `yaml:"concurrency"`
	Neural      NeuralSettings    `yaml:"neural"`
	Local       LocalSettings     `yaml:"local"`
	Voices      map[string]string `yaml:"voices"`
}

type NeuralSettings struct {
	URL            string `yaml:"url"`
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxRetries     int    `yaml:"max_retries"`
	ProxyURL       string `yaml:"proxy_url"`
}

type LocalSettings struct {
	Engine  string `yaml:"engine"`
	BaseWPM int    `yaml:"base_wpm"`
}

// Default returns the built-in configuration, including the voice
// shortcut table for the neural backend.
func Default() *Config {
	return &Config{
		Backend:     BackendNeural,
		Speed:       1.0,
		Concurrency: 4,
		Neural: NeuralSettings{
			Model:          "neural-multilingual-v1",
			TimeoutSeconds: 60,
			MaxRetries:     3,
		},
		Local: LocalSettings{BaseWPM: 175},
		Voices: map[string]string{
			"aria":  "en-US-AriaNeural",
			"guy":   "en-US-GuyNeural",
			"jenny": "en-US-JennyNeural",
			"davis": "en-US-DavisNeural",
			"nova":  "en-US-NovaNeural",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file when a
// path is given, then environment overrides for the service endpoint
// and credentials.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: read config %s: %w", ErrInvalidOption, path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: parse config %s: %w", ErrInvalidOption, path, err)
		}
	}

	if v := os.Getenv("DOCTTS_SERVICE_URL"); v != "" {
		cfg.Neural.URL = v
	}
	if v := os.Getenv("DOCTTS_API_KEY"); v != "" {
		cfg.Neural.APIKey = v
	}
	if v := os.Getenv("DOCTTS_PROXY_URL"); v != "" {
		cfg.Neural.ProxyURL = v
	}

	return cfg, nil
}

// Validate rejects configuration that would fail every document.
func (c *Config) Validate() error {
	if c.Backend != BackendNeural && c.Backend != BackendLocal {
		return fmt.Errorf("%w: unknown backend %q", ErrInvalidOption, c.Backend)
	}
	if c.Speed <= 0 {
		return fmt.Errorf("%w: speed must be positive, got %g", ErrInvalidOption, c.Speed)
	}
	if c.Speed < MinSpeed || c.Speed > MaxSpeed {
		return fmt.Errorf("%w: speed %g outside operating range [%g, %g]",
			ErrInvalidOption, c.Speed, MinSpeed, MaxSpeed)
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("%w: concurrency must be positive, got %d", ErrInvalidOption, c.Concurrency)
	}
	return nil
}

// ResolveVoice maps a mnemonic shortcut to the backend voice name.
// Anything not in the table passes through verbatim; empty selects the
// backend default.
func (c *Config) ResolveVoice(voice string) string {
	if voice == "" {
		if c.Backend == BackendNeural {
			return c.Voices["aria"]
		}
		return ""
	}
	if full, ok := c.Voices[strings.ToLower(voice)]; ok && c.Backend == BackendNeural {
		return full
	}
	return voice
}

// NeuralConfig adapts the settings for the neural backend client.
func (c *Config) NeuralConfig() tts.NeuralConfig {
	nc := tts.DefaultNeuralConfig()
	nc.BaseURL = c.Neural.URL
	nc.APIKey = c.Neural.APIKey
	nc.ProxyURL = c.Neural.ProxyURL
	if c.Neural.Model != "" {
		nc.Model = c.Neural.Model
	}
	if c.Neural.TimeoutSeconds > 0 {
		nc.RequestTimeout = time.Duration(c.Neural.TimeoutSeconds) * time.Second
	}
	if c.Neural.MaxRetries > 0 {
		nc.MaxRetries = c.Neural.MaxRetries
	}
	return nc
}

// LocalConfig adapts the settings for the local engine.
func (c *Config) LocalConfig() tts.LocalConfig {
	lc := tts.DefaultLocalConfig()
	lc.Engine = c.Local.Engine
	if c.Local.BaseWPM > 0 {
		lc.BaseWPM = c.Local.BaseWPM
	}
	return lc
}
