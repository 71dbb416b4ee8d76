package runtimeconfig

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g.
// BIOTITE_GENERATOR_OUTPUT_DIR.
const EnvPrefix = "BIOTITE"

// Load builds a Config from defaults, the optional file at path (any
// format viper understands, picked by extension) and BIOTITE_*
// environment variables, in increasing order of precedence. The result is
// validated.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path = strings.TrimSpace(path); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("biotite config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("biotite config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// setDefaults registers every key so environment variables can override
// keys that are absent from the file.
func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("site.content_dir", cfg.Site.ContentDir)
	v.SetDefault("site.extensions", cfg.Site.Extensions)
	v.SetDefault("site.recursive", cfg.Site.Recursive)
	v.SetDefault("site.base_url", cfg.Site.BaseURL)
	v.SetDefault("site.language", cfg.Site.Language)

	v.SetDefault("generator.output_dir", cfg.Generator.OutputDir)
	v.SetDefault("generator.images_dir", cfg.Generator.ImagesDir)
	v.SetDefault("generator.templates_dir", cfg.Generator.TemplatesDir)
	v.SetDefault("generator.workers", cfg.Generator.Workers)
	v.SetDefault("generator.clean_build", cfg.Generator.CleanBuild)
	v.SetDefault("generator.generate_sitemap", cfg.Generator.GenerateSitemap)

	v.SetDefault("server.addr", cfg.Server.Addr)
	v.SetDefault("server.read_timeout", cfg.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", cfg.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", cfg.Server.ShutdownTimeout)

	v.SetDefault("logging.provider", cfg.Logging.Provider)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.add_source", cfg.Logging.AddSource)
	v.SetDefault("logging.focus", cfg.Logging.Focus)
}
