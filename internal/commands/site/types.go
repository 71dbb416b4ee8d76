package sitecmd

import (
	"net"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-biotite/internal/generator"
)

const (
	buildSiteMessageType = "biotite.site.build"
	serveSiteMessageType = "biotite.site.serve"
)

// ResultCallback receives the result of a build. It is invoked
// synchronously, also when the build fails with a partial result.
type ResultCallback func(*generator.BuildResult)

// BuildSiteCommand builds the site found in ContentDir into OutputDir and
// optionally serves it afterwards.
type BuildSiteCommand struct {
	ContentDir     string         `json:"content_dir"`
	OutputDir      string         `json:"output_dir"`
	DryRun         bool           `json:"dry_run,omitempty"`
	Serve          bool           `json:"serve,omitempty"`
	Addr           string         `json:"addr,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (BuildSiteCommand) Type() string { return buildSiteMessageType }

// Validate requires both directories, keeps them apart and checks the
// serve address when serving.
func (m BuildSiteCommand) Validate() error {
	errs := validation.Errors{}
	if err := validation.Validate(strings.TrimSpace(m.ContentDir), validation.Required); err != nil {
		errs["content_dir"] = validation.NewError("biotite.site.build.content_dir_required", "content_dir is required")
	}
	if err := validation.Validate(strings.TrimSpace(m.OutputDir), validation.Required); err != nil {
		errs["output_dir"] = validation.NewError("biotite.site.build.output_dir_required", "output_dir is required")
	} else if sameDir(m.ContentDir, m.OutputDir) {
		errs["output_dir"] = validation.NewError("biotite.site.build.output_dir_overlaps", "output_dir must differ from content_dir")
	}
	if m.Serve && strings.TrimSpace(m.Addr) != "" {
		if err := validation.Validate(m.Addr, validation.By(validAddr)); err != nil {
			errs["addr"] = validation.NewError("biotite.site.build.addr_invalid", "addr must be host:port")
		}
	}
	if m.DryRun && m.Serve {
		errs["serve"] = validation.NewError("biotite.site.build.serve_dry_run", "serve cannot be combined with dry_run")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ServeSiteCommand serves a previously built OutputDir.
type ServeSiteCommand struct {
	OutputDir string `json:"output_dir"`
	Addr      string `json:"addr,omitempty"`
}

// Type implements command.Message.
func (ServeSiteCommand) Type() string { return serveSiteMessageType }

// Validate requires the output directory; a blank address selects the
// server default.
func (m ServeSiteCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.OutputDir, validation.Required.ErrorObject(
			validation.NewError("biotite.site.serve.output_dir_required", "output_dir is required"),
		)),
		validation.Field(&m.Addr, validation.By(validAddr)),
	)
}

func validAddr(value any) error {
	addr, _ := value.(string)
	if strings.TrimSpace(addr) == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return validation.NewError("biotite.site.addr_invalid", "addr must be host:port")
	}
	return nil
}

func sameDir(a, b string) bool {
	return filepath.Clean(strings.TrimSpace(a)) == filepath.Clean(strings.TrimSpace(b))
}
