// Package pipeline turns annotated module declarations into embedded artifacts.
package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/wasmbed/internal/core/domain"
	"go.trai.ch/wasmbed/internal/core/ports"
	"go.trai.ch/wasmbed/internal/engine/embed"
	"go.trai.ch/wasmbed/internal/engine/extract"
	"go.trai.ch/wasmbed/internal/engine/manifest"
	"go.trai.ch/wasmbed/internal/engine/payload"
	"go.trai.ch/wasmbed/internal/engine/project"
	"go.trai.ch/zerr"
)

const stderrTailLines = 20

// Pipeline runs the extract, payload, materialize, manifest, build, read and
// embed stages for each annotated module. Stages run strictly in sequence.
type Pipeline struct {
	toolchain    ports.Toolchain
	materializer *project.Materializer
	renderer     *embed.Renderer
	logger       ports.Logger
	tracer       ports.Tracer
	store        ports.BuildInfoStore
	layout       domain.Layout
	opts         domain.Options
	dependency   string
	now          func() time.Time
}

// New creates a Pipeline for the given configuration.
// store may be nil, in which case no build info is recorded.
func New(
	toolchain ports.Toolchain,
	logger ports.Logger,
	tracer ports.Tracer,
	store ports.BuildInfoStore,
	cfg *domain.Config,
) (*Pipeline, error) {
	if err := cfg.Options.Validate(); err != nil {
		return nil, err
	}
	return &Pipeline{
		toolchain:    toolchain,
		materializer: project.NewMaterializer(toolchain, logger),
		renderer:     embed.NewRenderer(cfg.Options.Convention, cfg.Options.Loader),
		logger:       logger,
		tracer:       tracer,
		store:        store,
		layout:       cfg.Layout(),
		opts:         cfg.Options,
		dependency:   cfg.Toolchain.Dependency,
		now:          time.Now,
	}, nil
}

// Expand replaces every annotated declaration in src with its expansion.
// Text outside the annotated declarations is returned unchanged.
func (p *Pipeline) Expand(ctx context.Context, src string) (string, error) {
	found, err := stage(ctx, p.tracer, "extract", func(context.Context) ([]extract.Annotation, error) {
		return extract.Find(src)
	})
	if err != nil {
		return "", err
	}

	replacements := make([]embed.Replacement, 0, len(found))
	for _, ann := range found {
		text, err := p.Run(ctx, src, ann)
		if err != nil {
			return "", err
		}
		replacements = append(replacements, embed.Replacement{Span: ann.Declaration.Span, Text: text})
	}
	return embed.Splice(src, replacements), nil
}

// Run builds one annotated module and returns its declaration with the
// artifact constants inserted.
func (p *Pipeline) Run(ctx context.Context, src string, ann extract.Annotation) (_ string, err error) {
	decl := ann.Declaration
	ctx, span := p.tracer.Start(ctx, "module "+decl.Name)
	span.SetAttribute("module", decl.Name)
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	p.logger.Info(fmt.Sprintf("building module %s", decl.Name))

	deps, err := stage(ctx, p.tracer, "payload", func(context.Context) (domain.DependencySpec, error) {
		return payload.Parse(ann.Payload, p.opts.PayloadMode, p.layout)
	})
	if err != nil {
		return "", moduleError(err, decl.Name)
	}

	proj, err := stage(ctx, p.tracer, "materialize", func(ctx context.Context) (domain.WorkingProject, error) {
		return p.materializer.Materialize(ctx, p.layout, decl)
	})
	if err != nil {
		return "", moduleError(err, decl.Name)
	}

	_, err = stage(ctx, p.tracer, "manifest", func(context.Context) (*manifest.Document, error) {
		return manifest.Synthesize(proj.ManifestPath, p.dependency, p.opts.Dependencies, deps)
	})
	if err != nil {
		return "", moduleError(err, decl.Name)
	}

	res, err := stage(ctx, p.tracer, "build", func(ctx context.Context) (*domain.BuildResult, error) {
		return p.build(ctx, proj)
	})
	if err != nil {
		return "", moduleError(err, decl.Name)
	}

	artifact, err := stage(ctx, p.tracer, "read", func(context.Context) (*domain.Artifact, error) {
		return project.ReadArtifact(proj, p.opts.Loader)
	})
	if err != nil {
		return "", moduleError(err, decl.Name)
	}

	text, err := stage(ctx, p.tracer, "embed", func(context.Context) (string, error) {
		return p.renderer.Declaration(src, decl, artifact)
	})
	if err != nil {
		return "", moduleError(err, decl.Name)
	}

	p.record(decl, artifact, res)
	return text, nil
}

func (p *Pipeline) build(ctx context.Context, proj domain.WorkingProject) (*domain.BuildResult, error) {
	res, err := p.toolchain.Build(ctx, proj)
	if err != nil {
		return nil, err
	}
	if !res.Succeeded() {
		return res, zerr.With(
			zerr.With(zerr.Wrap(domain.ErrToolchainFailed, "build failed"), "exit_code", res.ExitCode),
			"stderr", tail(res.Stderr, stderrTailLines),
		)
	}
	return res, nil
}

func (p *Pipeline) record(decl domain.ModuleDeclaration, artifact *domain.Artifact, res *domain.BuildResult) {
	if p.store == nil {
		return
	}
	info := domain.BuildInfo{
		Module:     decl.Name,
		SourceHash: digest([]byte(decl.Body)),
		WasmHash:   digest(artifact.Binary),
		LoaderHash: digest(artifact.Loader),
		WasmSize:   len(artifact.Binary),
		LoaderSize: len(artifact.Loader),
		ExitCode:   res.ExitCode,
		Timestamp:  p.now(),
	}
	if err := p.store.Put(p.layout.StorePath(), info); err != nil {
		p.logger.Warn(fmt.Sprintf("failed to record build of %s: %v", decl.Name, err))
	}
}

// stage runs fn inside a child span named name.
func stage[T any](ctx context.Context, tracer ports.Tracer, name string, fn func(context.Context) (T, error)) (T, error) {
	ctx, span := tracer.Start(ctx, name)
	defer span.End()

	out, err := fn(ctx)
	if err != nil {
		span.RecordError(err)
	}
	return out, err
}

func moduleError(err error, module string) error {
	return zerr.With(zerr.Wrap(err, "failed to build module"), "module", module)
}

func digest(data []byte) string {
	return strconv.FormatUint(xxhash.Sum64(data), 16)
}
