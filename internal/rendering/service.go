package rendering

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/errgroup"

	"github.com/WeBuildYourAi/compliance-agent/internal/logging"
	"github.com/WeBuildYourAi/compliance-agent/internal/state"
	"github.com/WeBuildYourAi/compliance-agent/internal/types"
)

// Options configures a Service
type Options struct {
	OutputDir      string
	MaxConcurrency int
	PDFTimeout     time.Duration
	// Registry overrides the built-in renderers.
	Registry *Registry
	Logger   *logging.Logger
}

// Service renders work items to files and records the artifacts on the Run State
type Service struct {
	registry *Registry
	opts     Options
	log      *logging.Logger
}

// NewService creates a Service. PDF is supported when Chrome is installed.
func NewService(opts Options) *Service {
	if opts.OutputDir == "" {
		opts.OutputDir = "output"
	}
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = 4
	}
	reg := opts.Registry
	if reg == nil {
		var pdf Renderer
		if ChromeAvailable() {
			pdf = NewPDFRenderer(nil, opts.PDFTimeout)
		}
		reg = DefaultRegistry(pdf)
	}
	return &Service{registry: reg, opts: opts, log: logging.OrNop(opts.Logger)}
}

// Report summarizes one render pass
type Report struct {
	Artifacts int      `json:"artifacts"`
	Fallbacks []string `json:"fallbacks,omitempty"`
	Failed    []string `json:"failed,omitempty"`
}

type renderOutcome struct {
	artifacts []types.Artifact
	err       error
}

// RenderAll renders every item with content into <output_dir>/<run_id>, offloading the
// synchronous renderers to a bounded pool. Per-item failures are reported, never returned;
// the error is only for an unusable output directory.
func (s *Service) RenderAll(ctx context.Context, st *state.RunState) (*Report, error) {
	st.Init()
	dir := filepath.Join(s.opts.OutputDir, st.RunID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &RenderError{Message: "failed to create output directory " + dir, Cause: err}
	}

	items := st.WithContent()
	var mu sync.Mutex
	outcomes := make(map[string]renderOutcome, len(items))

	var g errgroup.Group
	g.SetLimit(s.opts.MaxConcurrency)
	for _, item := range items {
		doc, format := DocumentFor(item), item.Format
		g.Go(func() error {
			arts, err := s.RenderItem(ctx, dir, doc, format)
			mu.Lock()
			outcomes[doc.ItemID] = renderOutcome{artifacts: arts, err: err}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	report := &Report{}
	for _, item := range items {
		out := outcomes[item.ID]
		if out.err != nil {
			s.log.WithItem(item.ID).Warn("rendering failed", "format", item.Format, "error", out.err)
		}
		if len(out.artifacts) == 0 {
			report.Failed = append(report.Failed, item.ID)
			continue
		}
		for _, a := range out.artifacts {
			st.AddArtifact(a)
			report.Artifacts++
			if a.Fallback {
				report.Fallbacks = append(report.Fallbacks, item.ID)
			}
		}
	}
	return report, nil
}

// RenderItem renders doc in the requested format, trying the substitute format next and
// finally writing the raw content as JSON. The returned error describes every failed attempt,
// even when a fallback artifact was produced.
func (s *Service) RenderItem(ctx context.Context, dir string, doc Document, requested types.Format) ([]types.Artifact, error) {
	if requested == "" {
		requested = types.FormatHTML
	}
	attempts := []types.Format{requested}
	if sub, ok := substitutes[requested]; ok {
		attempts = append(attempts, sub)
	}

	var errs []error
	for _, format := range attempts {
		r, ok := s.registry.Lookup(format)
		if !ok {
			errs = append(errs, &RenderError{ItemID: doc.ItemID, Format: format, Message: "no renderer for format"})
			continue
		}
		data, err := r.Render(ctx, doc)
		if err != nil {
			errs = append(errs, &RenderError{ItemID: doc.ItemID, Format: format, Message: "render failed", Cause: err})
			continue
		}
		name := fmt.Sprintf("%s_%s.%s", doc.ItemID, Slug(doc.DisplayTitle()), format.Extension())
		a, err := writeArtifact(dir, name, doc.ItemID, format, data)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		a.Fallback = format != requested
		return []types.Artifact{a}, errors.Join(errs...)
	}

	a, err := writeRaw(dir, doc)
	if err != nil {
		errs = append(errs, err)
		return nil, errors.Join(errs...)
	}
	return []types.Artifact{a}, errors.Join(errs...)
}

// writeRaw writes the minimal raw-data artifact.
func writeRaw(dir string, doc Document) (types.Artifact, error) {
	var data []byte
	if doc.Content != nil {
		encoded, err := json.MarshalIndent(doc.Content, "", "  ")
		if err != nil {
			return types.Artifact{}, &RenderError{ItemID: doc.ItemID, Format: types.FormatJSON, Message: "failed to encode raw content", Cause: err}
		}
		data = encoded
	} else {
		data = []byte("{}")
	}
	a, err := writeArtifact(dir, doc.ItemID+"_raw.json", doc.ItemID, types.FormatJSON, data)
	if err != nil {
		return types.Artifact{}, err
	}
	a.Fallback = true
	return a, nil
}

func writeArtifact(dir, name, itemID string, format types.Format, data []byte) (types.Artifact, error) {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return types.Artifact{}, &RenderError{ItemID: itemID, Format: format, Message: "failed to write " + path, Cause: err}
	}
	return types.Artifact{
		ItemID:   itemID,
		Format:   format,
		Path:     path,
		Size:     int64(len(data)),
		Checksum: Checksum(data),
	}, nil
}

// Checksum returns the BLAKE2b-256 digest of data, prefixed with the algorithm.
func Checksum(data []byte) string {
	sum := blake2b.Sum256(data)
	return "blake2b-256:" + hex.EncodeToString(sum[:])
}
