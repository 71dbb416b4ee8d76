package runtimeconfig_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-biotite/internal/runtimeconfig"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := runtimeconfig.DefaultConfig().Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*runtimeconfig.Config)
		want   error
	}{
		{
			name:   "content dir required",
			mutate: func(cfg *runtimeconfig.Config) { cfg.Site.ContentDir = " " },
			want:   runtimeconfig.ErrContentDirRequired,
		},
		{
			name:   "output dir required",
			mutate: func(cfg *runtimeconfig.Config) { cfg.Generator.OutputDir = "" },
			want:   runtimeconfig.ErrOutputDirRequired,
		},
		{
			name: "output overlaps content",
			mutate: func(cfg *runtimeconfig.Config) {
				cfg.Site.ContentDir = "./notes/"
				cfg.Generator.OutputDir = "notes"
			},
			want: runtimeconfig.ErrOutputDirOverlaps,
		},
		{
			name:   "images dir escapes output",
			mutate: func(cfg *runtimeconfig.Config) { cfg.Generator.ImagesDir = "../img" },
			want:   runtimeconfig.ErrImagesDirInvalid,
		},
		{
			name:   "negative workers",
			mutate: func(cfg *runtimeconfig.Config) { cfg.Generator.Workers = -1 },
			want:   runtimeconfig.ErrWorkersInvalid,
		},
		{
			name:   "server addr required",
			mutate: func(cfg *runtimeconfig.Config) { cfg.Server.Addr = "" },
			want:   runtimeconfig.ErrServerAddrRequired,
		},
		{
			name:   "negative timeout",
			mutate: func(cfg *runtimeconfig.Config) { cfg.Server.ReadTimeout = -time.Second },
			want:   runtimeconfig.ErrServerTimeoutInvalid,
		},
		{
			name:   "unknown provider",
			mutate: func(cfg *runtimeconfig.Config) { cfg.Logging.Provider = "syslog" },
			want:   runtimeconfig.ErrLoggingProviderUnknown,
		},
		{
			name:   "invalid level",
			mutate: func(cfg *runtimeconfig.Config) { cfg.Logging.Level = "loud" },
			want:   runtimeconfig.ErrLoggingLevelInvalid,
		},
		{
			name: "invalid gologger format",
			mutate: func(cfg *runtimeconfig.Config) {
				cfg.Logging.Provider = "gologger"
				cfg.Logging.Format = "xml"
			},
			want: runtimeconfig.ErrLoggingFormatInvalid,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := runtimeconfig.DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestConfigValidate_FormatIgnoredForConsoleProvider(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := runtimeconfig.Load("")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	want := runtimeconfig.DefaultConfig()
	if cfg.Generator.OutputDir != want.Generator.OutputDir || cfg.Server.Addr != want.Server.Addr {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	if cfg.Server.ReadTimeout != 15*time.Second || !cfg.Site.Recursive || !cfg.Generator.CleanBuild {
		t.Fatalf("expected default timeouts and flags, got %+v", cfg)
	}
	if len(cfg.Site.Extensions) != 2 {
		t.Fatalf("expected default extensions, got %v", cfg.Site.Extensions)
	}
}

func TestLoadFileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "biotite.yaml")
	content := `site:
  content_dir: notes
  base_url: https://example.com
generator:
  output_dir: public
  workers: 4
  generate_sitemap: true
server:
  read_timeout: 30s
logging:
  provider: gologger
  format: json
  focus:
    - biotite.generator
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("BIOTITE_SERVER_ADDR", "127.0.0.1:9000")
	t.Setenv("BIOTITE_GENERATOR_OUTPUT_DIR", "site")

	cfg, err := runtimeconfig.Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Site.ContentDir != "notes" || cfg.Site.BaseURL != "https://example.com" {
		t.Fatalf("unexpected site config %+v", cfg.Site)
	}
	if cfg.Generator.OutputDir != "site" {
		t.Fatalf("expected environment to override file, got %q", cfg.Generator.OutputDir)
	}
	if cfg.Generator.Workers != 4 || !cfg.Generator.GenerateSitemap || cfg.Generator.ImagesDir != "images" {
		t.Fatalf("unexpected generator config %+v", cfg.Generator)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" || cfg.Server.ReadTimeout != 30*time.Second {
		t.Fatalf("unexpected server config %+v", cfg.Server)
	}
	if cfg.Logging.Provider != "gologger" || len(cfg.Logging.Focus) != 1 || cfg.Logging.Focus[0] != "biotite.generator" {
		t.Fatalf("unexpected logging config %+v", cfg.Logging)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	t.Setenv("BIOTITE_LOGGING_PROVIDER", "syslog")
	if _, err := runtimeconfig.Load(""); !errors.Is(err, runtimeconfig.ErrLoggingProviderUnknown) {
		t.Fatalf("expected ErrLoggingProviderUnknown, got %v", err)
	}
	if _, err := runtimeconfig.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
