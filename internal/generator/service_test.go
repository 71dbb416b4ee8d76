package generator

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-biotite/internal/logging"
	"github.com/goliatone/go-biotite/internal/logging/console"
	"github.com/goliatone/go-biotite/internal/render"
)

const publishedPage = `---
publish: true
slug: hello
title: Hello World
tags:
- go
- web
---
# Hi

Some *text* here.
`

func writeSource(t *testing.T, dir, name, content string) {
	t.Helper()
	full := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", name, err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func readOutput(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return string(data)
}

func newTestService(t *testing.T, cfg Config, deps Dependencies) Service {
	t.Helper()
	if deps.Renderer == nil {
		templates, err := render.NewTemplates(nil)
		if err != nil {
			t.Fatalf("templates: %v", err)
		}
		deps.Renderer = templates
	}
	if cfg.ContentDir == "" {
		cfg.ContentDir = t.TempDir()
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = filepath.Join(t.TempDir(), "public")
	}
	return NewService(cfg, deps)
}

func findDiagnostic(result *BuildResult, source string) (RenderDiagnostic, bool) {
	for _, diag := range result.Diagnostics {
		if diag.Source == source {
			return diag, true
		}
	}
	return RenderDiagnostic{}, false
}

func TestBuildWritesPublishedPages(t *testing.T) {
	content := t.TempDir()
	output := filepath.Join(t.TempDir(), "public")
	writeSource(t, content, "hello.md", publishedPage)
	writeSource(t, content, "draft.md", "---\npublish: false\n---\n# Draft\n")
	writeSource(t, content, "nested/about.markdown", "---\npublish: true\n---\nAbout us\n")
	writeSource(t, content, "notes.txt", "not markdown")

	svc := newTestService(t, Config{ContentDir: content, OutputDir: output, Recursive: true}, Dependencies{})
	result, err := svc.Build(context.Background(), BuildOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if result.SourcesFound != 3 {
		t.Fatalf("expected 3 sources, got %d", result.SourcesFound)
	}
	if result.PagesBuilt != 2 || result.PagesSkipped != 1 {
		t.Fatalf("expected 2 built and 1 skipped, got %d and %d", result.PagesBuilt, result.PagesSkipped)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}

	page := readOutput(t, output, "hello.html")
	for _, want := range []string{
		"<title>Hello World</title>",
		`<html lang="en">`,
		"<h1>Hi</h1>",
		"<p>Some <em>text</em> here.</p>",
		"<li>go</li>",
		"<li>web</li>",
	} {
		if !strings.Contains(page, want) {
			t.Fatalf("expected page to contain %q:\n%s", want, page)
		}
	}

	about := readOutput(t, output, "about.html")
	if !strings.Contains(about, "<title>about</title>") {
		t.Fatalf("expected title to fall back to the file stem:\n%s", about)
	}
	if _, err := os.Stat(filepath.Join(output, "draft.html")); !os.IsNotExist(err) {
		t.Fatalf("expected unpublished page to be absent, stat err=%v", err)
	}
	if info, err := os.Stat(filepath.Join(output, "images")); err != nil || !info.IsDir() {
		t.Fatalf("expected images directory, err=%v", err)
	}

	diag, ok := findDiagnostic(result, "draft.md")
	if !ok || !diag.Skipped || diag.Reason != SkipUnpublished {
		t.Fatalf("expected unpublished diagnostic, got %+v", diag)
	}

	if len(result.Rendered) != 2 || result.Rendered[0].Source != "hello.md" || result.Rendered[1].Source != "nested/about.markdown" {
		t.Fatalf("expected rendered pages sorted by source, got %+v", result.Rendered)
	}
	if result.Rendered[0].Route != "/hello" || result.Rendered[0].Checksum == "" {
		t.Fatalf("unexpected rendered page %+v", result.Rendered[0])
	}
}

func TestBuildNonRecursiveIgnoresSubdirectories(t *testing.T) {
	content := t.TempDir()
	writeSource(t, content, "top.md", "---\npublish: true\n---\nTop\n")
	writeSource(t, content, "sub/deep.md", "---\npublish: true\n---\nDeep\n")

	svc := newTestService(t, Config{ContentDir: content}, Dependencies{})
	result, err := svc.Build(context.Background(), BuildOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if result.SourcesFound != 1 || result.PagesBuilt != 1 {
		t.Fatalf("expected only the top-level document, got %+v", result)
	}
}

func TestBuildCopiesImagesAndRewritesURLs(t *testing.T) {
	content := t.TempDir()
	output := filepath.Join(t.TempDir(), "public")
	writeSource(t, content, "img/cat.png", "png-bytes")
	writeSource(t, content, "posts/dog.png", "dog-bytes")
	writeSource(t, content, "gallery.md", "---\npublish: true\n---\n![cat](img/cat.png) and ![remote](https://example.com/r.png)\n")
	writeSource(t, content, "posts/pets.md", "---\npublish: true\n---\n> - **![dog](dog.png)**\n")

	svc := newTestService(t, Config{ContentDir: content, OutputDir: output, Recursive: true, Workers: 2}, Dependencies{})
	result, err := svc.Build(context.Background(), BuildOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if result.ImagesCopied != 2 {
		t.Fatalf("expected 2 copied images, got %d", result.ImagesCopied)
	}

	if got := readOutput(t, output, "images/cat.png"); got != "png-bytes" {
		t.Fatalf("unexpected copied image content %q", got)
	}
	if got := readOutput(t, output, "images/dog.png"); got != "dog-bytes" {
		t.Fatalf("unexpected copied image content %q", got)
	}

	gallery := readOutput(t, output, "gallery.html")
	if !strings.Contains(gallery, `<img src="/images/cat.png" alt="cat" />`) {
		t.Fatalf("expected local image to be rewritten:\n%s", gallery)
	}
	if !strings.Contains(gallery, `<img src="https://example.com/r.png" alt="remote" />`) {
		t.Fatalf("expected remote image to be untouched:\n%s", gallery)
	}
	if pets := readOutput(t, output, "pets.html"); !strings.Contains(pets, `src="/images/dog.png"`) {
		t.Fatalf("expected nested image to be rewritten:\n%s", pets)
	}
}

func TestBuildKeepsSameNamedImagesApart(t *testing.T) {
	content := t.TempDir()
	output := filepath.Join(t.TempDir(), "public")
	writeSource(t, content, "a/pic.png", "first")
	writeSource(t, content, "b/pic.png", "second")
	writeSource(t, content, "a/one.md", "---\npublish: true\n---\n![one](pic.png)\n")
	writeSource(t, content, "b/two.md", "---\npublish: true\n---\n![two](pic.png) ![again](pic.png)\n")

	svc := newTestService(t, Config{ContentDir: content, OutputDir: output, Recursive: true, Workers: 2}, Dependencies{})
	result, err := svc.Build(context.Background(), BuildOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if result.ImagesCopied != 2 {
		t.Fatalf("expected 2 copied images, got %d", result.ImagesCopied)
	}

	srcPattern := regexp.MustCompile(`<img src="(/images/[^"]+)"`)
	imageFor := func(page string) []string {
		html := readOutput(t, output, page)
		var urls []string
		for _, match := range srcPattern.FindAllStringSubmatch(html, -1) {
			urls = append(urls, match[1])
		}
		if len(urls) == 0 {
			t.Fatalf("expected a local image in %s:\n%s", page, html)
		}
		return urls
	}
	one := imageFor("one.html")
	two := imageFor("two.html")
	if len(two) != 2 || two[0] != two[1] {
		t.Fatalf("expected repeated reference to reuse one name, got %v", two)
	}
	if one[0] == two[0] {
		t.Fatalf("expected distinct image URLs, both were %s", one[0])
	}

	if got := readOutput(t, output, strings.TrimPrefix(one[0], "/")); got != "first" {
		t.Fatalf("one.html image %s holds %q, want first", one[0], got)
	}
	if got := readOutput(t, output, strings.TrimPrefix(two[0], "/")); got != "second" {
		t.Fatalf("two.html image %s holds %q, want second", two[0], got)
	}
}

func TestBuildResolvesHomeRelativeImages(t *testing.T) {
	content := t.TempDir()
	home := t.TempDir()
	output := filepath.Join(t.TempDir(), "public")
	writeSource(t, home, "pics/home.png", "home-bytes")
	writeSource(t, content, "page.md", "---\npublish: true\n---\n![h](~/pics/home.png)\n")

	svc := newTestService(t, Config{ContentDir: content, OutputDir: output}, Dependencies{
		HomeDir: func() (string, error) { return home, nil },
	})
	if _, err := svc.Build(context.Background(), BuildOptions{}); err != nil {
		t.Fatalf("build: %v", err)
	}
	if got := readOutput(t, output, "images/home.png"); got != "home-bytes" {
		t.Fatalf("unexpected copied image content %q", got)
	}
}

func TestBuildSkipsDocumentWithMissingImage(t *testing.T) {
	content := t.TempDir()
	output := filepath.Join(t.TempDir(), "public")
	writeSource(t, content, "broken.md", "---\npublish: true\n---\n![gone](missing.png)\n")
	writeSource(t, content, "fine.md", "---\npublish: true\n---\nFine\n")

	svc := newTestService(t, Config{ContentDir: content, OutputDir: output}, Dependencies{})
	result, err := svc.Build(context.Background(), BuildOptions{})
	if err != nil {
		t.Fatalf("missing images must not fail the build: %v", err)
	}
	if result.PagesBuilt != 1 || result.PagesSkipped != 1 {
		t.Fatalf("expected 1 built and 1 skipped, got %d and %d", result.PagesBuilt, result.PagesSkipped)
	}

	diag, ok := findDiagnostic(result, "broken.md")
	if !ok || diag.Reason != SkipMissingImage || !errors.Is(diag.Err, ErrImageNotFound) {
		t.Fatalf("expected missing image diagnostic, got %+v", diag)
	}
	if _, err := os.Stat(filepath.Join(output, "broken.html")); !os.IsNotExist(err) {
		t.Fatalf("expected skipped page to be absent, stat err=%v", err)
	}
}

func TestBuildDryRunWritesNothing(t *testing.T) {
	content := t.TempDir()
	output := filepath.Join(t.TempDir(), "public")
	writeSource(t, content, "hello.md", publishedPage)

	svc := newTestService(t, Config{ContentDir: content, OutputDir: output, CleanBuild: true}, Dependencies{})
	result, err := svc.Build(context.Background(), BuildOptions{DryRun: true})
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if !result.DryRun || result.PagesBuilt != 1 {
		t.Fatalf("unexpected dry run result %+v", result)
	}
	if !strings.Contains(result.Rendered[0].HTML, "<h1>Hi</h1>") {
		t.Fatalf("expected rendered html in dry run result")
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Fatalf("expected output directory to be untouched, stat err=%v", err)
	}
}

func TestBuildCleanRemovesStaleFiles(t *testing.T) {
	content := t.TempDir()
	output := filepath.Join(t.TempDir(), "public")
	writeSource(t, content, "hello.md", publishedPage)
	writeSource(t, output, "stale.html", "old")
	writeSource(t, output, "images/old.png", "old")

	svc := newTestService(t, Config{ContentDir: content, OutputDir: output, CleanBuild: true}, Dependencies{})
	if _, err := svc.Build(context.Background(), BuildOptions{}); err != nil {
		t.Fatalf("build: %v", err)
	}
	for _, name := range []string{"stale.html", "images/old.png"} {
		if _, err := os.Stat(filepath.Join(output, filepath.FromSlash(name))); !os.IsNotExist(err) {
			t.Fatalf("expected %s to be removed, stat err=%v", name, err)
		}
	}
	readOutput(t, output, "hello.html")
}

func TestBuildSkipsUnchangedPages(t *testing.T) {
	content := t.TempDir()
	output := filepath.Join(t.TempDir(), "public")
	writeSource(t, content, "hello.md", publishedPage)
	writeSource(t, content, "other.md", "---\npublish: true\n---\nOther\n")

	svc := newTestService(t, Config{ContentDir: content, OutputDir: output}, Dependencies{})
	first, err := svc.Build(context.Background(), BuildOptions{})
	if err != nil {
		t.Fatalf("first build: %v", err)
	}
	if first.PagesUnchanged != 0 {
		t.Fatalf("expected every page written on first build, got %d unchanged", first.PagesUnchanged)
	}
	if manifest := readOutput(t, output, manifestFileName); !strings.Contains(manifest, `"output": "hello.html"`) {
		t.Fatalf("expected manifest entry for hello.html:\n%s", manifest)
	}

	writeSource(t, content, "other.md", "---\npublish: true\n---\nChanged\n")
	second, err := svc.Build(context.Background(), BuildOptions{})
	if err != nil {
		t.Fatalf("second build: %v", err)
	}
	if second.PagesBuilt != 2 || second.PagesUnchanged != 1 {
		t.Fatalf("expected 1 unchanged page, got built=%d unchanged=%d", second.PagesBuilt, second.PagesUnchanged)
	}
	if other := readOutput(t, output, "other.html"); !strings.Contains(other, "<p>Changed</p>") {
		t.Fatalf("expected changed page to be rewritten:\n%s", other)
	}

	if err := os.Remove(filepath.Join(output, "hello.html")); err != nil {
		t.Fatalf("remove: %v", err)
	}
	third, err := svc.Build(context.Background(), BuildOptions{})
	if err != nil {
		t.Fatalf("third build: %v", err)
	}
	if third.PagesUnchanged != 1 {
		t.Fatalf("expected only other.html unchanged, got %d", third.PagesUnchanged)
	}
	readOutput(t, output, "hello.html")
}

func TestBuildWritesSitemap(t *testing.T) {
	content := t.TempDir()
	output := filepath.Join(t.TempDir(), "public")
	writeSource(t, content, "hello.md", publishedPage)

	svc := newTestService(t, Config{
		ContentDir:      content,
		OutputDir:       output,
		BaseURL:         "https://example.com/",
		GenerateSitemap: true,
	}, Dependencies{})
	if _, err := svc.Build(context.Background(), BuildOptions{}); err != nil {
		t.Fatalf("build: %v", err)
	}
	sitemap := readOutput(t, output, "sitemap.xml")
	if !strings.Contains(sitemap, "<loc>https://example.com/hello</loc>") {
		t.Fatalf("unexpected sitemap:\n%s", sitemap)
	}
}

func TestBuildRunsHooks(t *testing.T) {
	content := t.TempDir()
	writeSource(t, content, "a.md", "---\npublish: true\n---\nA\n")
	writeSource(t, content, "b.md", "---\npublish: true\n---\nB\n")

	var (
		mu     sync.Mutex
		before int
		runID  any
		pages  []string
		after  *BuildResult
	)
	svc := newTestService(t, Config{ContentDir: content}, Dependencies{
		Hooks: Hooks{
			BeforeBuild: func(ctx context.Context, _ BuildOptions) error {
				before++
				runID = logging.ContextFields(ctx)["run_id"]
				return nil
			},
			AfterPage: func(_ context.Context, page RenderedPage) error {
				mu.Lock()
				defer mu.Unlock()
				pages = append(pages, page.Slug)
				return nil
			},
			AfterBuild: func(_ context.Context, _ BuildOptions, result *BuildResult) error {
				after = result
				return nil
			},
		},
	})
	result, err := svc.Build(context.Background(), BuildOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if before != 1 || after != result {
		t.Fatalf("expected build hooks to run once, before=%d after=%v", before, after)
	}
	if runID != result.RunID.String() {
		t.Fatalf("expected run id in hook context, got %v", runID)
	}
	if strings.Join(pages, ",") != "a,b" {
		t.Fatalf("expected page hooks in source order, got %v", pages)
	}

	failing := newTestService(t, Config{ContentDir: content}, Dependencies{
		Hooks: Hooks{BeforeBuild: func(context.Context, BuildOptions) error { return errors.New("nope") }},
	})
	if _, err := failing.Build(context.Background(), BuildOptions{}); err == nil || !strings.Contains(err.Error(), "nope") {
		t.Fatalf("expected before build hook error, got %v", err)
	}
}

func TestBuildRejectsInvalidSetup(t *testing.T) {
	content := t.TempDir()

	svc := NewService(Config{ContentDir: content, OutputDir: "out"}, Dependencies{})
	if _, err := svc.Build(context.Background(), BuildOptions{}); !errors.Is(err, errRendererRequired) {
		t.Fatalf("expected renderer error, got %v", err)
	}

	for _, output := range []string{"", ".", "/"} {
		svc := newTestService(t, Config{ContentDir: content}, Dependencies{})
		svc.(*service).cfg.OutputDir = output
		if _, err := svc.Build(context.Background(), BuildOptions{}); !errors.Is(err, errUnsafeOutputDir) {
			t.Fatalf("expected unsafe output error for %q, got %v", output, err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc = newTestService(t, Config{ContentDir: content}, Dependencies{})
	if _, err := svc.Build(ctx, BuildOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}

func TestBuildRejectsPathEscapingSlug(t *testing.T) {
	content := t.TempDir()
	root := t.TempDir()
	output := filepath.Join(root, "public")
	writeSource(t, content, "evil.md", "---\npublish: true\nslug: ../../escape\n---\nEvil\n")

	svc := newTestService(t, Config{ContentDir: content, OutputDir: output}, Dependencies{})
	if _, err := svc.Build(context.Background(), BuildOptions{}); err != nil {
		t.Fatalf("build: %v", err)
	}
	readOutput(t, output, "escape.html")
	if _, err := os.Stat(filepath.Join(root, "escape.html")); !os.IsNotExist(err) {
		t.Fatalf("expected slug to stay inside the output directory, stat err=%v", err)
	}
}

func TestBuildWarnsWithSuggestedSlug(t *testing.T) {
	content := t.TempDir()
	output := filepath.Join(t.TempDir(), "public")
	writeSource(t, content, "page.md", "---\npublish: true\nslug: My_Page\n---\nBody\n")

	var logs bytes.Buffer
	logger := console.NewProvider(console.Options{Writer: &logs}).GetLogger("generator")
	svc := newTestService(t, Config{ContentDir: content, OutputDir: output}, Dependencies{Logger: logger})
	if _, err := svc.Build(context.Background(), BuildOptions{}); err != nil {
		t.Fatalf("build: %v", err)
	}
	readOutput(t, output, "My_Page.html")

	var warning string
	for _, line := range strings.Split(logs.String(), "\n") {
		if strings.Contains(line, "generator.build.slug_nonconforming") {
			warning = line
		}
	}
	if warning == "" {
		t.Fatalf("expected slug warning, logs:\n%s", logs.String())
	}
	if !strings.Contains(warning, "suggested_slug=my-page") {
		t.Fatalf("expected suggested slug in warning, got %q", warning)
	}
}

func TestCleanRecreatesOutput(t *testing.T) {
	output := filepath.Join(t.TempDir(), "public")
	writeSource(t, output, "old.html", "old")

	svc := newTestService(t, Config{OutputDir: output, ImagesDir: "assets/img"}, Dependencies{})
	if err := svc.Clean(context.Background()); err != nil {
		t.Fatalf("clean: %v", err)
	}
	if _, err := os.Stat(filepath.Join(output, "old.html")); !os.IsNotExist(err) {
		t.Fatalf("expected old file removed, stat err=%v", err)
	}
	if info, err := os.Stat(filepath.Join(output, "assets", "img")); err != nil || !info.IsDir() {
		t.Fatalf("expected images directory, err=%v", err)
	}
}

func TestDisabledService(t *testing.T) {
	svc := NewDisabledService()
	if _, err := svc.Build(context.Background(), BuildOptions{}); !errors.Is(err, ErrServiceDisabled) {
		t.Fatalf("expected disabled error, got %v", err)
	}
	if err := svc.Clean(context.Background()); !errors.Is(err, ErrServiceDisabled) {
		t.Fatalf("expected disabled error, got %v", err)
	}
}

func TestEffectiveWorkerCount(t *testing.T) {
	cases := []struct {
		workers int
		jobs    int
		want    int
	}{
		{workers: 4, jobs: 10, want: 4},
		{workers: 8, jobs: 3, want: 3},
		{workers: 1, jobs: 0, want: 1},
	}
	for _, tc := range cases {
		svc := &service{cfg: Config{Workers: tc.workers}}
		if got := svc.effectiveWorkerCount(tc.jobs); got != tc.want {
			t.Fatalf("workers=%d jobs=%d: expected %d, got %d", tc.workers, tc.jobs, tc.want, got)
		}
	}
	if got := (&service{}).effectiveWorkerCount(1); got != 1 {
		t.Fatalf("expected default workers capped by jobs, got %d", got)
	}
}

func TestBuildDurationUsesClock(t *testing.T) {
	content := t.TempDir()
	writeSource(t, content, "a.md", "---\npublish: true\n---\nA\n")

	svc := newTestService(t, Config{ContentDir: content, Workers: 1}, Dependencies{}).(*service)
	base := time.Date(2024, 3, 14, 15, 9, 26, 0, time.UTC)
	var mu sync.Mutex
	ticks := 0
	svc.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		ticks++
		return base.Add(time.Duration(ticks) * time.Second)
	}

	result, err := svc.Build(context.Background(), BuildOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if result.Duration <= 0 || result.Rendered[0].Duration != time.Second {
		t.Fatalf("unexpected durations: build=%s page=%s", result.Duration, result.Rendered[0].Duration)
	}
}
