package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

var (
	ErrConfigNotLoaded = errors.New("config not loaded")
)

type Environment string

const (
	Production  Environment = "prod"
	Development Environment = "dev"
)

func (e *Environment) SetValue(s string) error {
	*e = Environment(s)
	if *e != Production && *e != Development {
		return configNotLoadedErr(`only "prod" and "dev" environments are allowed`)
	}
	return nil
}

type Config struct {
	App struct {
		Env Environment `yaml:"env" env:"ENV" env-required:""`
	} `yaml:"app" env-prefix:"APP_" env-required:""`

	Server struct {
		Host            string        `yaml:"host" env:"HOST" env-default:"localhost"`
		Port            int           `yaml:"port" env:"PORT" env-default:"8080"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"5s"`
	} `yaml:"server" env-prefix:"SERVER_"`

	// An empty DSN runs the service without assessment history.
	DB struct {
		DSN string `yaml:"dsn" env:"DSN"`
	} `yaml:"db" env-prefix:"DB_"`

	JWT struct {
		Secret string `yaml:"secret" env:"SECRET"`
	} `yaml:"jwt" env-prefix:"JWT_"`

	LLM struct {
		BaseURL string        `yaml:"base_url" env:"BASE_URL"`
		APIKey  string        `yaml:"api_key" env:"API_KEY"`
		Model   string        `yaml:"model" env:"MODEL" env-default:"gpt-4o-mini"`
		Timeout time.Duration `yaml:"timeout" env:"TIMEOUT" env-default:"30s"`
	} `yaml:"llm" env-prefix:"LLM_"`

	Extractor struct {
		URL     string        `yaml:"url" env:"URL"`
		Timeout time.Duration `yaml:"timeout" env:"TIMEOUT" env-default:"20s"`
	} `yaml:"extractor" env-prefix:"EXTRACTOR_"`
}

func (c *Config) HistoryEnabled() bool {
	return c.DB.DSN != ""
}

func (c *Config) Validate() error {
	if c.HistoryEnabled() && c.JWT.Secret == "" {
		return configNotLoadedErr("jwt.secret is required when db.dsn is set")
	}
	return nil
}

func Load(filePath string) (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadConfig(filePath, cfg); err != nil {
		return nil, configNotLoadedErr("config not loaded: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadEnv reads the configuration from environment variables only.
func LoadEnv() (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, configNotLoadedErr("config not loaded: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func MustLoad(filePath string) *Config {
	cfg, err := Load(filePath)
	if err != nil {
		panic(err)
	}
	return cfg
}

func configNotLoadedErr(format string, args ...any) error {
	return errors.Join(fmt.Errorf(format, args...), ErrConfigNotLoaded)
}
