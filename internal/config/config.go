package config

import (
	"errors"
	"log/slog"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var hexColor = regexp.MustCompile(`^[0-9a-f]{6}$`)

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "err", err)
	}
	return parse(env.Options{})
}

// LoadFromMap builds a Config from an explicit environment, ignoring the process env.
func LoadFromMap(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		var agg env.AggregateError
		if errors.As(err, &agg) {
			for _, e := range agg.Errors {
				var req env.EnvVarIsNotSetError
				if errors.As(e, &req) {
					return nil, ErrConfig(req.Key + " required")
				}
			}
		}
		return nil, err
	}

	cfg.Embed.HexColor = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(cfg.Embed.HexColor), "#"))
	if !hexColor.MatchString(cfg.Embed.HexColor) {
		return nil, ErrConfig("EMBED_COLOR must be a 6 digit hex color")
	}

	owners := cfg.Owners[:0]
	for _, o := range cfg.Owners {
		if o = strings.TrimSpace(o); o != "" {
			owners = append(owners, o)
		}
	}
	slices.Sort(owners)
	cfg.Owners = slices.Compact(owners)

	return &cfg, nil
}

// EnsureDirs creates the data directory.
func (c *Config) EnsureDirs() error {
	return os.MkdirAll(c.DataDir, 0o755)
}

type ErrConfig string

func (e ErrConfig) Error() string { return string(e) }
