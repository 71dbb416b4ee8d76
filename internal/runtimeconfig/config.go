package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	ErrContentDirRequired     = errors.New("biotite config: content directory is required")
	ErrOutputDirRequired      = errors.New("biotite config: output directory is required")
	ErrOutputDirOverlaps      = errors.New("biotite config: output directory must differ from the content directory")
	ErrImagesDirInvalid       = errors.New("biotite config: images directory must be relative to the output directory")
	ErrWorkersInvalid         = errors.New("biotite config: workers must be zero or positive")
	ErrServerAddrRequired     = errors.New("biotite config: server address is required")
	ErrServerTimeoutInvalid   = errors.New("biotite config: server timeouts must be zero or positive")
	ErrLoggingProviderUnknown = errors.New("biotite config: logging provider is invalid")
	ErrLoggingLevelInvalid    = errors.New("biotite config: logging level is invalid")
	ErrLoggingFormatInvalid   = errors.New("biotite config: logging format is invalid")
)

// Config aggregates the settings of every biotite component.
type Config struct {
	Site      SiteConfig      `mapstructure:"site"`
	Generator GeneratorConfig `mapstructure:"generator"`
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// SiteConfig describes where sources live and how the site is addressed.
type SiteConfig struct {
	ContentDir string   `mapstructure:"content_dir"`
	Extensions []string `mapstructure:"extensions"`
	Recursive  bool     `mapstructure:"recursive"`
	BaseURL    string   `mapstructure:"base_url"`
	Language   string   `mapstructure:"language"`
}

// GeneratorConfig controls site builds.
type GeneratorConfig struct {
	OutputDir       string `mapstructure:"output_dir"`
	ImagesDir       string `mapstructure:"images_dir"`
	TemplatesDir    string `mapstructure:"templates_dir"`
	Workers         int    `mapstructure:"workers"`
	CleanBuild      bool   `mapstructure:"clean_build"`
	GenerateSitemap bool   `mapstructure:"generate_sitemap"`
}

// ServerConfig controls the static file server.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig selects the logger provider. Format applies to gologger
// only.
type LoggingConfig struct {
	Provider  string   `mapstructure:"provider"`
	Level     string   `mapstructure:"level"`
	Format    string   `mapstructure:"format"`
	AddSource bool     `mapstructure:"add_source"`
	Focus     []string `mapstructure:"focus"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Site: SiteConfig{
			ContentDir: ".",
			Extensions: []string{".md", ".markdown"},
			Recursive:  true,
			Language:   "en",
		},
		Generator: GeneratorConfig{
			OutputDir:  "dist",
			ImagesDir:  "images",
			CleanBuild: true,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
			Format:   "console",
		},
	}
}

// Validate reports the first inconsistency in cfg.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Site.ContentDir) == "" {
		return ErrContentDirRequired
	}
	output := strings.TrimSpace(cfg.Generator.OutputDir)
	if output == "" {
		return ErrOutputDirRequired
	}
	if cleanDir(output) == cleanDir(cfg.Site.ContentDir) {
		return fmt.Errorf("%w: %s", ErrOutputDirOverlaps, output)
	}
	if images := strings.TrimSpace(cfg.Generator.ImagesDir); strings.HasPrefix(images, "/") || strings.Contains(images, "..") {
		return fmt.Errorf("%w: %s", ErrImagesDirInvalid, images)
	}
	if err := validation.Validate(cfg.Generator.Workers, validation.Min(0)); err != nil {
		return fmt.Errorf("%w: %v", ErrWorkersInvalid, err)
	}
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return ErrServerAddrRequired
	}
	for _, timeout := range []time.Duration{cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout} {
		if timeout < 0 {
			return fmt.Errorf("%w: %s", ErrServerTimeoutInvalid, timeout)
		}
	}
	return cfg.Logging.validate()
}

func (l LoggingConfig) validate() error {
	provider := NormalizeProvider(l.Provider)
	if err := validation.Validate(provider, validation.In("console", "gologger")); err != nil {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, l.Provider)
	}
	if level := strings.ToLower(strings.TrimSpace(l.Level)); level != "" {
		if err := validation.Validate(level, validation.In("trace", "debug", "info", "warn", "warning", "error", "fatal")); err != nil {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, l.Level)
		}
	}
	if provider == "gologger" {
		if format := strings.ToLower(strings.TrimSpace(l.Format)); format != "" {
			if err := validation.Validate(format, validation.In("json", "console", "pretty")); err != nil {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, l.Format)
			}
		}
	}
	return nil
}

// NormalizeProvider lowercases provider and maps blank to "console".
func NormalizeProvider(provider string) string {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		return "console"
	}
	return provider
}

func cleanDir(dir string) string {
	dir = strings.TrimSpace(dir)
	dir = strings.TrimSuffix(strings.TrimPrefix(dir, "./"), "/")
	if dir == "" {
		return "."
	}
	return dir
}
