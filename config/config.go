package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	DefaultModelID  = "joeddav/distilbert-base-uncased-go-emotions-student"
	DefaultEndpoint = "https://api-inference.huggingface.co"
	EnvPrefix       = "EMO_TIMELINE"
)

type Service struct {
	URL     string `yaml:"url" mapstructure:"url"`
	Timeout int    `yaml:"timeout" mapstructure:"timeout"` // sec
}
type Services struct {
	Emotion       Service `yaml:"emotion" mapstructure:"emotion"`
	Visualization Service `yaml:"visualization" mapstructure:"visualization"`
}

// Model selects the classifier backend. Backend is one of auto, huggingface,
// service or lexicon.
type Model struct {
	Backend  string `yaml:"backend" mapstructure:"backend"`
	ID       string `yaml:"id" mapstructure:"id"`
	Revision string `yaml:"revision" mapstructure:"revision"`
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	Token    string `yaml:"token,omitempty" mapstructure:"token"`
	Timeout  int    `yaml:"timeout" mapstructure:"timeout"` // sec
	Workers  int    `yaml:"workers" mapstructure:"workers"`
	Batch    int    `yaml:"batch" mapstructure:"batch"`
}
type Segmentation struct {
	Method            string `yaml:"method" mapstructure:"method"`
	SentencesPerChunk int    `yaml:"sentences_per_chunk" mapstructure:"sentences_per_chunk"`
	WordsPerChunk     int    `yaml:"words_per_chunk" mapstructure:"words_per_chunk"`
	WordBudget        int    `yaml:"word_budget" mapstructure:"word_budget"`
}
type Timeline struct {
	SmoothWindow int    `yaml:"smooth_window" mapstructure:"smooth_window"`
	Smoothing    string `yaml:"smoothing" mapstructure:"smoothing"`
	TopK         int    `yaml:"top_k" mapstructure:"top_k"`
}
type Server struct {
	Addr          string `yaml:"addr" mapstructure:"addr"`
	UploadLimitMB int    `yaml:"upload_limit_mb" mapstructure:"upload_limit_mb"`
	MaxSessions   int    `yaml:"max_sessions" mapstructure:"max_sessions"`
	Persist       bool   `yaml:"persist" mapstructure:"persist"`
	Metrics       bool   `yaml:"metrics" mapstructure:"metrics"`
}
type Paths struct {
	Outputs string `yaml:"outputs" mapstructure:"outputs"`
}
type Pipeline struct {
	Name    string `yaml:"name" mapstructure:"name"`
	Version string `yaml:"version" mapstructure:"version"`
	LogLvl  string `yaml:"log_level" mapstructure:"log_level"`
}
type Root struct {
	Pipeline     Pipeline     `yaml:"pipeline" mapstructure:"pipeline"`
	Model        Model        `yaml:"model" mapstructure:"model"`
	Services     Services     `yaml:"services" mapstructure:"services"`
	Segmentation Segmentation `yaml:"segmentation" mapstructure:"segmentation"`
	Timeline     Timeline     `yaml:"timeline" mapstructure:"timeline"`
	Server       Server       `yaml:"server" mapstructure:"server"`
	Paths        Paths        `yaml:"paths" mapstructure:"paths"`
}

var defaults = map[string]any{
	"pipeline.name":                    "emotion-timeline",
	"pipeline.version":                 "0.1.0",
	"pipeline.log_level":               "info",
	"model.backend":                    "auto",
	"model.id":                         DefaultModelID,
	"model.revision":                   "main",
	"model.endpoint":                   DefaultEndpoint,
	"model.token":                      "",
	"model.timeout":                    60,
	"model.workers":                    4,
	"model.batch":                      16,
	"services.emotion.url":             "",
	"services.emotion.timeout":         60,
	"services.visualization.url":       "",
	"services.visualization.timeout":   30,
	"segmentation.method":              "sentences",
	"segmentation.sentences_per_chunk": 3,
	"segmentation.words_per_chunk":     350,
	"segmentation.word_budget":         60,
	"timeline.smooth_window":           1,
	"timeline.smoothing":               "trailing",
	"timeline.top_k":                   5,
	"server.addr":                      ":8080",
	"server.upload_limit_mb":           5,
	"server.max_sessions":              64,
	"server.persist":                   false,
	"server.metrics":                   true,
	"paths.outputs":                    "outputs",
}

func newViper() *viper.Viper {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// names used by the hosted model tooling
	_ = v.BindEnv("model.token", EnvPrefix+"_MODEL_TOKEN", "HF_TOKEN")
	_ = v.BindEnv("model.revision", EnvPrefix+"_MODEL_REVISION", EnvPrefix+"_REV")
	return v
}

// Default returns the built-in configuration with env overrides applied.
func Default() (*Root, error) {
	v := newViper()
	var cfg Root
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config decode: %w", err)
	}
	return &cfg, nil
}

// Load reads path, or when path is empty the first config found under
// config/<CONFIG_ENV>/config.yaml or src/shared/config.yaml. A missing file
// is not an error: defaults and environment still apply.
func Load(path string) (*Root, error) {
	// .env is optional
	_ = godotenv.Load()

	v := newViper()
	v.SetConfigType("yaml")

	if path == "" {
		env := os.Getenv("CONFIG_ENV")
		if env == "" {
			env = "dev"
		}
		guess := []string{
			filepath.Join("config", env, "config.yaml"),
			filepath.Join("src", "shared", "config.yaml"),
		}
		for _, p := range guess {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}

	var cfg Root
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var ErrInvalid = errors.New("invalid config")

func (c *Root) Validate() error {
	switch c.Model.Backend {
	case "auto", "huggingface", "service", "lexicon":
	default:
		return fmt.Errorf("%w: model.backend %q", ErrInvalid, c.Model.Backend)
	}
	switch c.Timeline.Smoothing {
	case "trailing", "centered":
	default:
		return fmt.Errorf("%w: timeline.smoothing %q", ErrInvalid, c.Timeline.Smoothing)
	}
	if c.Model.Workers < 1 {
		return fmt.Errorf("%w: model.workers must be positive", ErrInvalid)
	}
	if c.Server.MaxSessions < 1 {
		return fmt.Errorf("%w: server.max_sessions must be positive", ErrInvalid)
	}
	return nil
}

// YAML renders the effective configuration with the token redacted.
func (c *Root) YAML() ([]byte, error) {
	cp := *c
	if cp.Model.Token != "" {
		cp.Model.Token = "***"
	}
	return yaml.Marshal(&cp)
}

func DurSeconds(n int) time.Duration { return time.Duration(n) * time.Second }
