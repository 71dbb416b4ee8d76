// Package generator builds a static site from a directory of markdown
// documents.
package generator

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-biotite/internal/logging"
	"github.com/goliatone/go-biotite/internal/markdown"
	"github.com/goliatone/go-biotite/pkg/interfaces"
)

const (
	defaultImagesDir = "images"
	defaultLanguage  = "en"
	sitemapFile      = "sitemap.xml"
)

var (
	// ErrImageNotFound marks a document whose local image does not exist.
	// Such documents are skipped, not failed.
	ErrImageNotFound = errors.New("generator: image not found")
	// ErrServiceDisabled is returned by the disabled service.
	ErrServiceDisabled = errors.New("generator: service disabled")

	errRendererRequired   = errors.New("generator: template renderer is required")
	errContentDirRequired = errors.New("generator: content directory is required")
	errSlugRequired       = errors.New("generator: slug is required")
)

// Service describes the static site generator contract.
type Service interface {
	Build(ctx context.Context, opts BuildOptions) (*BuildResult, error)
	Clean(ctx context.Context) error
}

// Config captures where sources are read from and where the site goes.
type Config struct {
	ContentDir string
	OutputDir  string
	// ImagesDir is relative to OutputDir.
	ImagesDir       string
	BaseURL         string
	Language        string
	CleanBuild      bool
	Recursive       bool
	GenerateSitemap bool
	Workers         int
	// Extensions selects source files; empty means markdown.DefaultExtensions.
	Extensions []string
}

// BuildOptions narrows the scope of a generator run.
type BuildOptions struct {
	// DryRun parses, filters and renders but writes nothing.
	DryRun bool
}

// BuildResult reports aggregated build metadata.
type BuildResult struct {
	RunID        uuid.UUID
	OutputDir    string
	SourcesFound int
	PagesBuilt   int
	PagesSkipped int
	// PagesUnchanged counts built pages left in place because the previous
	// build wrote identical content.
	PagesUnchanged int
	ImagesCopied   int
	Duration       time.Duration
	Rendered       []RenderedPage
	Diagnostics    []RenderDiagnostic
	Errors         []error
	DryRun         bool
}

// Hooks observe a build. Errors returned by hooks fail the build.
type Hooks struct {
	BeforeBuild func(context.Context, BuildOptions) error
	AfterPage   func(context.Context, RenderedPage) error
	AfterBuild  func(context.Context, BuildOptions, *BuildResult) error
}

// Dependencies lists the collaborators of the generator.
type Dependencies struct {
	Renderer interfaces.TemplateRenderer
	Logger   interfaces.Logger
	// Source overrides the filesystem documents are discovered in. It
	// defaults to os.DirFS(Config.ContentDir); image paths are always
	// resolved against ContentDir.
	Source  fs.FS
	HomeDir func() (string, error)
	Hooks   Hooks
	// LoaderLogger receives discovery and parse events; it defaults to
	// Logger.
	LoaderLogger interfaces.Logger
}

// NewService wires a generator with cfg and deps.
func NewService(cfg Config, deps Dependencies) Service {
	cfg.ContentDir = strings.TrimSpace(cfg.ContentDir)
	cfg.OutputDir = strings.TrimSpace(cfg.OutputDir)
	if cfg.ImagesDir = strings.Trim(strings.TrimSpace(cfg.ImagesDir), "/"); cfg.ImagesDir == "" {
		cfg.ImagesDir = defaultImagesDir
	}
	if cfg.Language = strings.TrimSpace(cfg.Language); cfg.Language == "" {
		cfg.Language = defaultLanguage
	}
	if deps.HomeDir == nil {
		deps.HomeDir = os.UserHomeDir
	}

	logger := deps.Logger
	if logger == nil {
		logger = logging.NoOp()
	}

	return &service{
		cfg:    cfg,
		deps:   deps,
		logger: logger,
		now:    time.Now,
	}
}

func (s *service) loaderLogger(fallback interfaces.Logger) interfaces.Logger {
	if s.deps.LoaderLogger != nil {
		return s.deps.LoaderLogger
	}
	return fallback
}

// NewDisabledService returns a Service that fails every operation with
// ErrServiceDisabled.
func NewDisabledService() Service {
	return disabledService{}
}

type service struct {
	cfg    Config
	deps   Dependencies
	logger interfaces.Logger
	now    func() time.Time
}

func (s *service) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.deps.Renderer == nil {
		return nil, errRendererRequired
	}
	if s.cfg.ContentDir == "" && s.deps.Source == nil {
		return nil, errContentDirRequired
	}

	writer, err := newArtifactWriter(s.cfg.OutputDir, opts.DryRun)
	if err != nil {
		return nil, err
	}

	start := s.now()
	result := &BuildResult{
		RunID:     uuid.New(),
		OutputDir: s.cfg.OutputDir,
		DryRun:    opts.DryRun,
	}
	runFields := map[string]any{"run_id": result.RunID.String()}
	ctx = logging.ContextWithFields(ctx, runFields)
	logger := logging.WithFields(s.logger, runFields)
	logger.Info("generator.build.started", "content_dir", s.cfg.ContentDir, "output_dir", s.cfg.OutputDir, "dry_run", opts.DryRun)

	if hook := s.deps.Hooks.BeforeBuild; hook != nil {
		if err := hook(ctx, opts); err != nil {
			return nil, fmt.Errorf("generator: before build hook: %w", err)
		}
	}

	manifest := newBuildManifest()
	if s.cfg.CleanBuild {
		if err := s.clean(ctx, writer); err != nil {
			return nil, err
		}
	} else {
		if err := writer.EnsureDir(ctx, s.cfg.ImagesDir); err != nil {
			return nil, err
		}
		manifest = s.loadManifest(ctx, writer, logger)
	}

	loader := markdown.NewLoader(s.source(), markdown.LoaderConfig{
		Extensions: s.cfg.Extensions,
		Recursive:  s.cfg.Recursive,
		Logger:     s.loaderLogger(logger),
	})
	docs, err := loader.LoadDirectory(ctx, ".")
	if err != nil {
		return nil, fmt.Errorf("generator: discover sources: %w", err)
	}
	result.SourcesFound = len(docs)
	result.Diagnostics = make([]RenderDiagnostic, 0, len(docs))

	var (
		mu          sync.Mutex
		rendered    = make([]RenderedPage, 0, len(docs))
		errorsSlice []error
	)

	collect := func(outcome renderOutcome) {
		mu.Lock()
		defer mu.Unlock()
		result.Diagnostics = append(result.Diagnostics, outcome.diagnostic)
		if outcome.err != nil {
			errorsSlice = append(errorsSlice, outcome.err)
			return
		}
		if outcome.skipped {
			result.PagesSkipped++
			return
		}
		result.PagesBuilt++
		rendered = append(rendered, outcome.page)
	}

	publishable := make([]*markdown.SourceDocument, 0, len(docs))
	for _, doc := range docs {
		switch reason := skipReason(doc); reason {
		case "":
			publishable = append(publishable, doc)
		case SkipParseFailed:
			logging.WithDocumentContext(logger, doc.Path, "filter").Warn("generator.build.page_skipped", "reason", reason)
			collect(skippedOutcome(doc, reason))
		default:
			logging.WithDocumentContext(logger, doc.Path, "filter").Debug("generator.build.page_skipped", "reason", reason)
			collect(skippedOutcome(doc, reason))
		}
	}

	images := newImageCopier(s.cfg.ContentDir, s.cfg.ImagesDir, s.deps.HomeDir, writer, logger)
	if err := s.renderAll(ctx, publishable, images, collect); err != nil {
		errorsSlice = append(errorsSlice, err)
		return s.finish(result, rendered, errorsSlice, start)
	}

	sort.Slice(rendered, func(i, j int) bool {
		return rendered[i].Source < rendered[j].Source
	})
	result.ImagesCopied = images.count()

	unchanged, err := s.persistPages(ctx, writer, manifest, rendered, logger)
	result.PagesUnchanged = unchanged
	if err != nil {
		errorsSlice = append(errorsSlice, err)
	} else if err := s.writeManifest(ctx, writer, manifest, rendered, result.RunID, start); err != nil {
		errorsSlice = append(errorsSlice, err)
	}

	if s.cfg.GenerateSitemap && len(errorsSlice) == 0 {
		sitemap := buildSitemap(s.cfg.BaseURL, rendered, start)
		req := writeFileRequest{Path: sitemapFile, Content: strings.NewReader(sitemap), Category: categorySitemap}
		if err := writer.WriteFile(ctx, req); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}

	if hook := s.deps.Hooks.AfterPage; hook != nil {
		for _, page := range rendered {
			if err := hook(ctx, page); err != nil {
				errorsSlice = append(errorsSlice, fmt.Errorf("generator: after page hook: %w", err))
				break
			}
		}
	}

	result, err = s.finish(result, rendered, errorsSlice, start)
	logger.Info("generator.build.completed",
		"pages_built", result.PagesBuilt,
		"pages_skipped", result.PagesSkipped,
		"pages_unchanged", result.PagesUnchanged,
		"images_copied", result.ImagesCopied,
		"errors", len(result.Errors),
		"duration", result.Duration,
	)

	if hook := s.deps.Hooks.AfterBuild; hook != nil {
		if hookErr := hook(ctx, opts, result); hookErr != nil {
			hookErr = fmt.Errorf("generator: after build hook: %w", hookErr)
			result.Errors = append(result.Errors, hookErr)
			return result, errors.Join(err, hookErr)
		}
	}
	return result, err
}

func (s *service) finish(result *BuildResult, rendered []RenderedPage, errs []error, start time.Time) (*BuildResult, error) {
	result.Rendered = rendered
	result.Duration = s.now().Sub(start)
	if len(errs) > 0 {
		result.Errors = append(result.Errors, errs...)
		return result, errors.Join(errs...)
	}
	return result, nil
}

// renderAll renders docs with a bounded worker pool. Cancellation stops
// the hand-out of further documents.
func (s *service) renderAll(
	ctx context.Context,
	docs []*markdown.SourceDocument,
	images *imageCopier,
	collect func(renderOutcome),
) error {
	workers := s.effectiveWorkerCount(len(docs))
	if workers <= 1 {
		for _, doc := range docs {
			if err := ctx.Err(); err != nil {
				return err
			}
			collect(s.renderDocument(ctx, doc, images))
		}
		return nil
	}

	jobs := make(chan *markdown.SourceDocument)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for doc := range jobs {
				collect(s.renderDocument(ctx, doc, images))
			}
		}()
	}

	for _, doc := range docs {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		case jobs <- doc:
		}
	}
	close(jobs)
	wg.Wait()
	return ctx.Err()
}

// persistPages writes every page not already on disk with identical
// content and returns how many were left in place.
func (s *service) persistPages(
	ctx context.Context,
	writer artifactWriter,
	manifest *buildManifest,
	pages []RenderedPage,
	logger interfaces.Logger,
) (int, error) {
	unchanged := 0
	written := make(map[string]string, len(pages))
	for _, page := range pages {
		if previous, ok := written[page.Output]; ok {
			logger.Warn("generator.build.duplicate_output", "output", page.Output, "previous", previous, "source", page.Source)
		}
		written[page.Output] = page.Source

		if manifest.unchanged(page) && writer.Exists(ctx, page.Output) {
			unchanged++
			continue
		}

		req := writeFileRequest{
			Path:     page.Output,
			Content:  strings.NewReader(page.HTML),
			Category: categoryPage,
		}
		if err := writer.WriteFile(ctx, req); err != nil {
			return unchanged, err
		}
		logging.WithDocumentContext(logger, page.Source, "write").Debug("generator.build.page_written", "output", page.Output)
	}
	return unchanged, nil
}

// loadManifest reads the manifest of the previous build. A missing or
// unreadable manifest yields an empty one so every page is rewritten.
func (s *service) loadManifest(ctx context.Context, writer artifactWriter, logger interfaces.Logger) *buildManifest {
	data, err := writer.ReadFile(ctx, manifestFileName)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("generator.manifest.read_failed", "error", err)
		}
		return newBuildManifest()
	}
	manifest, err := parseManifest(data)
	if err != nil {
		logger.Warn("generator.manifest.invalid", "error", err)
		return newBuildManifest()
	}
	return manifest
}

func (s *service) writeManifest(
	ctx context.Context,
	writer artifactWriter,
	manifest *buildManifest,
	pages []RenderedPage,
	runID uuid.UUID,
	generatedAt time.Time,
) error {
	keep := make(map[string]struct{}, len(pages))
	for _, page := range pages {
		manifest.setPage(manifestPage{
			Source:     page.Source,
			Route:      page.Route,
			Output:     page.Output,
			Checksum:   page.Checksum,
			RenderedAt: generatedAt,
		})
		keep[manifestKey(page.Output)] = struct{}{}
	}
	manifest.prunePages(keep)
	manifest.RunID = runID.String()
	manifest.GeneratedAt = generatedAt

	data, err := manifest.marshal()
	if err != nil {
		return fmt.Errorf("generator: encode manifest: %w", err)
	}
	return writer.WriteFile(ctx, writeFileRequest{
		Path:     manifestFileName,
		Content:  bytes.NewReader(data),
		Category: categoryManifest,
	})
}

// Clean removes the output directory and recreates it with an empty
// images directory.
func (s *service) Clean(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	writer, err := newArtifactWriter(s.cfg.OutputDir, false)
	if err != nil {
		return err
	}
	return s.clean(ctx, writer)
}

func (s *service) clean(ctx context.Context, writer artifactWriter) error {
	if err := writer.RemoveAll(ctx, ""); err != nil {
		return err
	}
	if err := writer.EnsureDir(ctx, ""); err != nil {
		return err
	}
	return writer.EnsureDir(ctx, s.cfg.ImagesDir)
}

func (s *service) source() fs.FS {
	if s.deps.Source != nil {
		return s.deps.Source
	}
	return os.DirFS(s.cfg.ContentDir)
}

func (s *service) effectiveWorkerCount(jobs int) int {
	workers := s.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		workers = 1
	}
	if jobs > 0 && workers > jobs {
		return jobs
	}
	return workers
}

func computeHashFromString(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

type disabledService struct{}

func (disabledService) Build(context.Context, BuildOptions) (*BuildResult, error) {
	return nil, ErrServiceDisabled
}

func (disabledService) Clean(context.Context) error {
	return ErrServiceDisabled
}
