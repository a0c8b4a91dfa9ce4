package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Mode string

const (
	ModeDev  Mode = "dev"
	ModeProd Mode = "prod"
)

type Config struct {
	Mode     Mode   `mapstructure:"mode"`
	HTTPAddr string `mapstructure:"http_addr"`

	// Quiz API (remote backend)
	APIBaseURL     string        `mapstructure:"api_base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`

	// Attempt flow
	FeedbackDelay time.Duration `mapstructure:"feedback_delay"` // "answer recorded" pause before advancing
	Identity      string        `mapstructure:"identity"`       // clock|uuid

	// Web sessions
	SessionSecret string        `mapstructure:"session_secret"`
	SessionTTL    time.Duration `mapstructure:"session_ttl"`
	CORSOrigins   []string      `mapstructure:"cors_origins"`

	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`

	// Reference backend
	DevAPIAddr string `mapstructure:"devapi_addr"`
	DevAPISeed string `mapstructure:"devapi_seed"`
}

const devSessionSecret = "quiz-dev-session-secret"

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", string(ModeDev))
	v.SetDefault("http_addr", ":3000")
	v.SetDefault("api_base_url", "http://localhost:8080")
	v.SetDefault("request_timeout", 10*time.Second)
	v.SetDefault("feedback_delay", 800*time.Millisecond)
	v.SetDefault("identity", "clock")
	v.SetDefault("session_secret", "")
	v.SetDefault("session_ttl", 2*time.Hour)
	v.SetDefault("cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("log_level", "")
	v.SetDefault("log_file", "")
	v.SetDefault("devapi_addr", ":8080")
	v.SetDefault("devapi_seed", "")
}

// Load reads defaults, then the optional YAML file at path, then QUIZ_* env vars.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("QUIZ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.CORSOrigins = trimAll(cfg.CORSOrigins)
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = devSessionSecret
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Mode {
	case ModeDev, ModeProd:
	default:
		return fmt.Errorf("mode must be %q or %q, got %q", ModeDev, ModeProd, c.Mode)
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api_base_url must be an absolute http(s) URL, got %q", c.APIBaseURL)
	}
	switch c.Identity {
	case "clock", "uuid":
	default:
		return fmt.Errorf("identity must be clock or uuid, got %q", c.Identity)
	}
	if c.FeedbackDelay < 0 {
		return errors.New("feedback_delay must not be negative")
	}
	if c.Mode == ModeProd && len(c.SessionSecret) < 32 {
		return fmt.Errorf("session_secret is too short (%d chars), must be at least 32 characters in prod mode", len(c.SessionSecret))
	}
	return nil
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		for _, s := range strings.Split(p, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
