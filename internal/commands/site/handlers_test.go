package sitecmd

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-biotite/internal/generator"
)

type fakeGeneratorService struct {
	buildFunc func(ctx context.Context, opts generator.BuildOptions) (*generator.BuildResult, error)
}

func (f *fakeGeneratorService) Build(ctx context.Context, opts generator.BuildOptions) (*generator.BuildResult, error) {
	if f.buildFunc == nil {
		return &generator.BuildResult{}, nil
	}
	return f.buildFunc(ctx, opts)
}

func (f *fakeGeneratorService) Clean(context.Context) error { return nil }

type fakeRunner struct {
	served bool
	err    error
}

func (r *fakeRunner) ListenAndServe(context.Context) error {
	r.served = true
	return r.err
}

func TestBuildSiteHandler_Execute_Build(t *testing.T) {
	var (
		capturedOpts    generator.BuildOptions
		capturedContent string
		capturedOutput  string
		callbackResult  *generator.BuildResult
	)
	factory := func(contentDir, outputDir string) (generator.Service, error) {
		capturedContent, capturedOutput = contentDir, outputDir
		return &fakeGeneratorService{
			buildFunc: func(ctx context.Context, opts generator.BuildOptions) (*generator.BuildResult, error) {
				capturedOpts = opts
				return &generator.BuildResult{PagesBuilt: 3}, nil
			},
		}, nil
	}

	handler := NewBuildSiteHandler(factory, nil, nil)
	cmd := BuildSiteCommand{
		ContentDir: " notes ",
		OutputDir:  "dist",
		DryRun:     true,
		ResultCallback: func(result *generator.BuildResult) {
			callbackResult = result
		},
	}
	if err := handler.Execute(context.Background(), cmd); err != nil {
		t.Fatalf("execute build: %v", err)
	}

	if capturedContent != "notes" || capturedOutput != "dist" {
		t.Fatalf("unexpected directories %q %q", capturedContent, capturedOutput)
	}
	if !capturedOpts.DryRun {
		t.Fatalf("expected DryRun true")
	}
	if callbackResult == nil || callbackResult.PagesBuilt != 3 {
		t.Fatalf("expected callback with PagesBuilt 3, got %+v", callbackResult)
	}
}

func TestBuildSiteHandler_Execute_BuildFailure(t *testing.T) {
	buildErr := errors.New("disk full")
	callbackInvoked := false
	factory := func(string, string) (generator.Service, error) {
		return &fakeGeneratorService{
			buildFunc: func(context.Context, generator.BuildOptions) (*generator.BuildResult, error) {
				return &generator.BuildResult{PagesBuilt: 1}, buildErr
			},
		}, nil
	}
	runner := &fakeRunner{}
	serve := NewServeSiteHandler(func(string, string) (Runner, error) { return runner, nil }, nil)

	handler := NewBuildSiteHandler(factory, serve, nil)
	err := handler.Execute(context.Background(), BuildSiteCommand{
		ContentDir:     "notes",
		OutputDir:      "dist",
		Serve:          true,
		ResultCallback: func(*generator.BuildResult) { callbackInvoked = true },
	})
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if !callbackInvoked {
		t.Fatal("expected callback with the partial result")
	}
	if runner.served {
		t.Fatal("expected no serving after a failed build")
	}
}

func TestBuildSiteHandler_Execute_ServesAfterBuild(t *testing.T) {
	var gotOutput, gotAddr string
	runner := &fakeRunner{}
	serve := NewServeSiteHandler(func(outputDir, addr string) (Runner, error) {
		gotOutput, gotAddr = outputDir, addr
		return runner, nil
	}, nil)
	factory := func(string, string) (generator.Service, error) {
		return &fakeGeneratorService{}, nil
	}

	handler := NewBuildSiteHandler(factory, serve, nil)
	err := handler.Execute(context.Background(), BuildSiteCommand{
		ContentDir: "notes",
		OutputDir:  "dist",
		Serve:      true,
		Addr:       "127.0.0.1:9000",
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !runner.served || gotOutput != "dist" || gotAddr != "127.0.0.1:9000" {
		t.Fatalf("expected serve of dist on 127.0.0.1:9000, got served=%v %q %q", runner.served, gotOutput, gotAddr)
	}
}

func TestBuildSiteHandler_Execute_ValidationFailure(t *testing.T) {
	called := false
	factory := func(string, string) (generator.Service, error) {
		called = true
		return &fakeGeneratorService{}, nil
	}
	handler := NewBuildSiteHandler(factory, nil, nil)

	err := handler.Execute(context.Background(), BuildSiteCommand{ContentDir: "site", OutputDir: "./site/"})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if called {
		t.Fatal("expected factory not to run when validation fails")
	}
}

func TestBuildSiteHandler_Execute_NoFactory(t *testing.T) {
	handler := NewBuildSiteHandler(nil, nil, nil)
	err := handler.Execute(context.Background(), BuildSiteCommand{ContentDir: "notes", OutputDir: "dist"})
	if !errors.Is(err, generator.ErrServiceDisabled) {
		t.Fatalf("expected ErrServiceDisabled, got %v", err)
	}
}

func TestServeSiteHandler_Execute(t *testing.T) {
	runner := &fakeRunner{}
	handler := NewServeSiteHandler(func(string, string) (Runner, error) { return runner, nil }, nil)
	if err := handler.Execute(context.Background(), ServeSiteCommand{OutputDir: "dist"}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !runner.served {
		t.Fatal("expected runner to serve")
	}

	failing := NewServeSiteHandler(func(string, string) (Runner, error) {
		return &fakeRunner{err: errors.New("address in use")}, nil
	}, nil)
	if err := failing.Execute(context.Background(), ServeSiteCommand{OutputDir: "dist"}); !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}

	if err := NewServeSiteHandler(nil, nil).Execute(context.Background(), ServeSiteCommand{OutputDir: "dist"}); !errors.Is(err, errServerUnavailable) {
		t.Fatalf("expected errServerUnavailable, got %v", err)
	}
}
