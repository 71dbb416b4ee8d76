package generator

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	manifestFileName    = ".biotite-manifest.json"
	manifestFileVersion = 1
)

// buildManifest records the pages written by the last build so unchanged
// pages are not rewritten by incremental runs.
type buildManifest struct {
	Version     int                     `json:"version"`
	RunID       string                  `json:"run_id,omitempty"`
	GeneratedAt time.Time               `json:"generated_at"`
	Pages       map[string]manifestPage `json:"pages"`
}

type manifestPage struct {
	Source     string    `json:"source"`
	Route      string    `json:"route"`
	Output     string    `json:"output"`
	Checksum   string    `json:"checksum"`
	RenderedAt time.Time `json:"rendered_at"`
}

func newBuildManifest() *buildManifest {
	return &buildManifest{
		Version: manifestFileVersion,
		Pages:   map[string]manifestPage{},
	}
}

func parseManifest(data []byte) (*buildManifest, error) {
	if len(data) == 0 {
		return newBuildManifest(), nil
	}
	var ordered orderedManifest
	if err := json.Unmarshal(data, &ordered); err != nil {
		return nil, fmt.Errorf("generator: parse manifest: %w", err)
	}
	manifest := newBuildManifest()
	manifest.RunID = ordered.RunID
	manifest.GeneratedAt = ordered.GeneratedAt
	if ordered.Version != 0 {
		manifest.Version = ordered.Version
	}
	for _, entry := range ordered.Pages {
		manifest.setPage(entry)
	}
	return manifest, nil
}

// orderedManifest is the on-disk form, with pages sorted by output path.
type orderedManifest struct {
	Version     int            `json:"version"`
	RunID       string         `json:"run_id,omitempty"`
	GeneratedAt time.Time      `json:"generated_at"`
	Pages       []manifestPage `json:"pages"`
}

func (m *buildManifest) marshal() ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	ordered := orderedManifest{
		Version:     m.Version,
		RunID:       m.RunID,
		GeneratedAt: m.GeneratedAt,
		Pages:       make([]manifestPage, 0, len(m.Pages)),
	}
	if ordered.Version == 0 {
		ordered.Version = manifestFileVersion
	}
	for _, entry := range m.Pages {
		ordered.Pages = append(ordered.Pages, entry)
	}
	sort.Slice(ordered.Pages, func(i, j int) bool {
		return ordered.Pages[i].Output < ordered.Pages[j].Output
	})
	return json.MarshalIndent(ordered, "", "  ")
}

func manifestKey(output string) string {
	return strings.TrimPrefix(strings.TrimSpace(output), "/")
}

func (m *buildManifest) setPage(entry manifestPage) {
	if m == nil {
		return
	}
	if m.Pages == nil {
		m.Pages = map[string]manifestPage{}
	}
	m.Pages[manifestKey(entry.Output)] = entry
}

// unchanged reports whether page was written by the previous build with
// the same source and content.
func (m *buildManifest) unchanged(page RenderedPage) bool {
	if m == nil || len(m.Pages) == 0 {
		return false
	}
	entry, ok := m.Pages[manifestKey(page.Output)]
	if !ok {
		return false
	}
	return entry.Checksum == page.Checksum && entry.Source == page.Source
}

// prunePages drops entries whose output is not in keep.
func (m *buildManifest) prunePages(keep map[string]struct{}) {
	for key := range m.Pages {
		if _, ok := keep[key]; !ok {
			delete(m.Pages, key)
		}
	}
}
