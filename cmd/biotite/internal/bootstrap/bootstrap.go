// Package bootstrap wires configuration, logging, the generator and the
// static server into the site command handlers used by the biotite CLI.
package bootstrap

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/goliatone/go-biotite/internal/commands"
	sitecmd "github.com/goliatone/go-biotite/internal/commands/site"
	"github.com/goliatone/go-biotite/internal/generator"
	"github.com/goliatone/go-biotite/internal/logging"
	"github.com/goliatone/go-biotite/internal/logging/console"
	"github.com/goliatone/go-biotite/internal/logging/gologger"
	"github.com/goliatone/go-biotite/internal/render"
	"github.com/goliatone/go-biotite/internal/runtimeconfig"
	"github.com/goliatone/go-biotite/internal/server"
	"github.com/goliatone/go-biotite/pkg/interfaces"
)

// Options captures configuration for CLI bootstraps.
type Options struct {
	// ConfigPath names an optional config file read by runtimeconfig.Load.
	ConfigPath string
	// Config skips loading when set.
	Config *runtimeconfig.Config
	// LoggerProvider overrides the provider selected by the logging config.
	LoggerProvider interfaces.LoggerProvider
	// LogWriter receives console provider output; defaults to stderr.
	LogWriter io.Writer
}

// Module holds the wired handlers and the collaborators they share.
type Module struct {
	Config   runtimeconfig.Config
	Provider interfaces.LoggerProvider
	Logger   interfaces.Logger
	Renderer interfaces.TemplateRenderer
	Build    *sitecmd.BuildSiteHandler
	Serve    *sitecmd.ServeSiteHandler
}

// BuildModule loads configuration and constructs the site handlers.
func BuildModule(opts Options) (*Module, error) {
	var cfg runtimeconfig.Config
	if opts.Config != nil {
		cfg = *opts.Config
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	} else {
		loaded, err := runtimeconfig.Load(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	provider := opts.LoggerProvider
	if provider == nil {
		built, err := NewLoggerProvider(cfg.Logging, opts.LogWriter)
		if err != nil {
			return nil, err
		}
		provider = built
	}

	renderer, err := newRenderer(cfg.Generator.TemplatesDir)
	if err != nil {
		return nil, err
	}

	module := &Module{
		Config:   cfg,
		Provider: provider,
		Logger:   logging.ModuleLogger(provider, "biotite.cli"),
		Renderer: renderer,
	}

	commandLogger := commands.CommandLogger(provider, "site")
	module.Serve = sitecmd.NewServeSiteHandler(module.serverFactory(), commandLogger)
	module.Build = sitecmd.NewBuildSiteHandler(module.generatorFactory(), module.Serve, commandLogger)
	return module, nil
}

// NewLoggerProvider builds the provider named by cfg.Provider.
func NewLoggerProvider(cfg runtimeconfig.LoggingConfig, w io.Writer) (interfaces.LoggerProvider, error) {
	switch provider := runtimeconfig.NormalizeProvider(cfg.Provider); provider {
	case "gologger":
		built, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
		if err != nil {
			return nil, fmt.Errorf("bootstrap: logger provider: %w", err)
		}
		return built, nil
	case "console":
		if w == nil {
			w = os.Stderr
		}
		options := console.Options{Writer: w}
		if level, ok := console.ParseLevel(cfg.Level); ok {
			options.MinLevel = &level
		}
		return console.NewProvider(options), nil
	default:
		return nil, fmt.Errorf("%w: %s", runtimeconfig.ErrLoggingProviderUnknown, cfg.Provider)
	}
}

// GeneratorConfig maps the runtime config onto a generator config for a
// content and output directory pair. Blank directories keep the configured
// values.
func GeneratorConfig(cfg runtimeconfig.Config, contentDir, outputDir string) generator.Config {
	if strings.TrimSpace(contentDir) == "" {
		contentDir = cfg.Site.ContentDir
	}
	if strings.TrimSpace(outputDir) == "" {
		outputDir = cfg.Generator.OutputDir
	}
	return generator.Config{
		ContentDir:      contentDir,
		OutputDir:       outputDir,
		ImagesDir:       cfg.Generator.ImagesDir,
		BaseURL:         cfg.Site.BaseURL,
		Language:        cfg.Site.Language,
		CleanBuild:      cfg.Generator.CleanBuild,
		Recursive:       cfg.Site.Recursive,
		GenerateSitemap: cfg.Generator.GenerateSitemap,
		Workers:         cfg.Generator.Workers,
		Extensions:      cfg.Site.Extensions,
	}
}

func (m *Module) generatorFactory() sitecmd.ServiceFactory {
	return func(contentDir, outputDir string) (generator.Service, error) {
		return generator.NewService(GeneratorConfig(m.Config, contentDir, outputDir), generator.Dependencies{
			Renderer:     m.Renderer,
			Logger:       logging.GeneratorLogger(m.Provider),
			LoaderLogger: logging.MarkdownLogger(m.Provider),
		}), nil
	}
}

func (m *Module) serverFactory() sitecmd.ServerFactory {
	return func(outputDir, addr string) (sitecmd.Runner, error) {
		if strings.TrimSpace(outputDir) == "" {
			outputDir = m.Config.Generator.OutputDir
		}
		if strings.TrimSpace(addr) == "" {
			addr = m.Config.Server.Addr
		}
		srv, err := server.New(server.Config{
			OutputDir:       outputDir,
			Addr:            addr,
			ReadTimeout:     m.Config.Server.ReadTimeout,
			WriteTimeout:    m.Config.Server.WriteTimeout,
			ShutdownTimeout: m.Config.Server.ShutdownTimeout,
			Logger:          logging.ServerLogger(m.Provider),
		})
		if err != nil {
			return nil, err
		}
		return srv, nil
	}
}

func newRenderer(templatesDir string) (*render.Templates, error) {
	var overrides fs.FS
	if dir := strings.TrimSpace(templatesDir); dir != "" {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: templates directory: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("bootstrap: templates directory %s is not a directory", dir)
		}
		overrides = os.DirFS(dir)
	}
	return render.NewTemplates(overrides)
}
