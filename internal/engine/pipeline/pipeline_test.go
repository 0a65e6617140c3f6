package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/wasmbed/internal/core/domain"
	"go.trai.ch/wasmbed/internal/core/ports"
	"go.trai.ch/wasmbed/internal/core/ports/mocks"
	"go.trai.ch/wasmbed/internal/engine/manifest"
	"go.trai.ch/wasmbed/internal/engine/pipeline"
	"go.uber.org/mock/gomock"
)

// fakeBuild describes what the fake build tool produces. The binary is the
// module body, so embedded bytes show which body was built.
type fakeBuild struct {
	skipLoader bool
	exitCode   int
}

type harness struct {
	root      string
	toolchain *mocks.MockToolchain
	store     *mocks.MockBuildInfoStore
	spans     *[]string
	pipeline  *pipeline.Pipeline
}

func newHarness(t *testing.T, fb fakeBuild, mutate func(*domain.Config)) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)

	root := t.TempDir()
	cfg := domain.DefaultConfig(root)
	if mutate != nil {
		mutate(cfg)
	}

	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Debug(gomock.Any()).AnyTimes()
	logger.EXPECT().Info(gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()

	spans := &[]string{}
	span := mocks.NewMockSpan(ctrl)
	span.EXPECT().End().AnyTimes()
	span.EXPECT().RecordError(gomock.Any()).AnyTimes()
	span.EXPECT().SetAttribute(gomock.Any(), gomock.Any()).AnyTimes()
	tracer := mocks.NewMockTracer(ctrl)
	tracer.EXPECT().Start(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, name string) (context.Context, ports.Span) {
			*spans = append(*spans, name)
			return ctx, span
		}).AnyTimes()

	toolchain := mocks.NewMockToolchain(ctrl)
	store := mocks.NewMockBuildInfoStore(ctrl)

	p, err := pipeline.New(toolchain, logger, tracer, store, cfg)
	require.NoError(t, err)

	h := &harness{root: root, toolchain: toolchain, store: store, spans: spans, pipeline: p}
	h.expectToolchain(t, fb)
	return h
}

func (h *harness) expectToolchain(t *testing.T, fb fakeBuild) {
	t.Helper()
	h.toolchain.EXPECT().Scaffold(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, staging, module string) (*domain.BuildResult, error) {
			dir := filepath.Join(staging, module)
			if _, err := os.Stat(dir); err == nil {
				return &domain.BuildResult{ExitCode: 101, Stderr: []byte("destination already exists")}, nil
			}
			require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o750))
			cargo := "[package]\nname = \"" + module + "\"\nversion = \"0.1.0\"\nedition = \"2021\"\n\n[dependencies]\n"
			require.NoError(t, os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte(cargo), 0o600))
			require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "lib.rs"), []byte("// placeholder"), 0o600))
			return &domain.BuildResult{}, nil
		}).AnyTimes()

	h.toolchain.EXPECT().Build(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, proj domain.WorkingProject) (*domain.BuildResult, error) {
			if fb.exitCode != 0 {
				return &domain.BuildResult{ExitCode: fb.exitCode, Stderr: []byte("error[E0425]: cannot find value `X`\n")}, nil
			}
			body, err := os.ReadFile(proj.SourceEntryPath)
			require.NoError(t, err)
			require.NoError(t, os.MkdirAll(proj.OutputDir, 0o750))
			require.NoError(t, os.WriteFile(proj.BinaryPath, body, 0o600))
			if !fb.skipLoader {
				require.NoError(t, os.WriteFile(proj.LoaderPath, []byte("export default init;"), 0o600))
			}
			return &domain.BuildResult{}, nil
		}).AnyTimes()
}

func TestExpand_DemoModule(t *testing.T) {
	h := newHarness(t, fakeBuild{}, nil)
	h.store.EXPECT().Put(filepath.Join(h.root, ".wasmbed", ".store"), gomock.Any()).
		DoAndReturn(func(_ string, info domain.BuildInfo) error {
			assert.Equal(t, "demo", info.Module)
			assert.Equal(t, 1, info.WasmSize)
			assert.NotEmpty(t, info.SourceHash)
			return nil
		})

	out, err := h.pipeline.Expand(context.Background(), "#[wasmbed]\nmod demo { X }\n")
	require.NoError(t, err)

	assert.Equal(t, "mod demo { X\n"+
		"    pub const wasm: [u8; 1] = [\n"+
		"        88,\n"+
		"    ];\n"+
		"    pub const loader: &str = \"export default init;\";\n"+
		"}\n", out)

	proj := domain.NewLayout(h.root).Project("demo")
	body, err := os.ReadFile(proj.SourceEntryPath)
	require.NoError(t, err)
	assert.Equal(t, "X", string(body))

	doc, err := manifest.Load(proj.ManifestPath)
	require.NoError(t, err)
	assert.Equal(t, []any{"cdylib"}, doc.CrateTypes())

	assert.Equal(t, []string{
		"extract", "module demo", "payload", "materialize", "manifest", "build", "read", "embed",
	}, *h.spans)
}

func TestExpand_EmptySpecManifest(t *testing.T) {
	h := newHarness(t, fakeBuild{}, nil)
	h.store.EXPECT().Put(gomock.Any(), gomock.Any()).Return(nil)

	_, err := h.pipeline.Expand(context.Background(), "#[wasmbed]\npub mod greeter {\n}\n")
	require.NoError(t, err)

	doc, err := manifest.Load(domain.NewLayout(h.root).Project("greeter").ManifestPath)
	require.NoError(t, err)
	assert.Equal(t, []any{"cdylib"}, doc.CrateTypes())
	assert.Equal(t, map[string]any{"wasm-bindgen": "*"}, doc.Dependencies())
}

func TestExpand_MergesGlobalThenPayloadDependencies(t *testing.T) {
	h := newHarness(t, fakeBuild{}, func(cfg *domain.Config) {
		cfg.Options.Dependencies = domain.NewDependencySpec().
			Version("console_error_panic_hook", "0.1").
			Version("gloo", "0.10")
	})
	h.store.EXPECT().Put(gomock.Any(), gomock.Any()).Return(nil)

	src := "#[wasmbed([dependencies] gloo = \"0.11\")]\nmod app {}\n"
	_, err := h.pipeline.Expand(context.Background(), src)
	require.NoError(t, err)

	doc, err := manifest.Load(domain.NewLayout(h.root).Project("app").ManifestPath)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"wasm-bindgen":             "*",
		"console_error_panic_hook": "0.1",
		"gloo":                     "0.11",
	}, doc.Dependencies())
}

func TestExpand_SecondRunReflectsNewBody(t *testing.T) {
	h := newHarness(t, fakeBuild{}, nil)
	h.store.EXPECT().Put(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	first, err := h.pipeline.Expand(context.Background(), "#[wasmbed]\nmod demo { A }\n")
	require.NoError(t, err)
	assert.Contains(t, first, "        65,\n")

	second, err := h.pipeline.Expand(context.Background(), "#[wasmbed]\nmod demo { B }\n")
	require.NoError(t, err)
	assert.Contains(t, second, "        66,\n")

	body, err := os.ReadFile(domain.NewLayout(h.root).Project("demo").SourceEntryPath)
	require.NoError(t, err)
	assert.Equal(t, "B", string(body))
}

func TestExpand_MissingLoader(t *testing.T) {
	h := newHarness(t, fakeBuild{skipLoader: true}, nil)

	_, err := h.pipeline.Expand(context.Background(), "#[wasmbed]\nmod demo { X }\n")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrArtifactMissing))
}

func TestExpand_BuildFailure(t *testing.T) {
	h := newHarness(t, fakeBuild{exitCode: 1}, nil)

	_, err := h.pipeline.Expand(context.Background(), "#[wasmbed]\nmod demo { X }\n")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrToolchainFailed))
	assert.False(t, errors.Is(err, domain.ErrArtifactMissing))
	assert.NotContains(t, *h.spans, "read")
}

func TestExpand_MissingFragmentStartsNoProcess(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info(gomock.Any()).AnyTimes()
	span := mocks.NewMockSpan(ctrl)
	span.EXPECT().End().AnyTimes()
	span.EXPECT().RecordError(gomock.Any()).AnyTimes()
	span.EXPECT().SetAttribute(gomock.Any(), gomock.Any()).AnyTimes()
	tracer := mocks.NewMockTracer(ctrl)
	tracer.EXPECT().Start(gomock.Any(), gomock.Any()).Return(context.Background(), span).AnyTimes()

	// No toolchain expectations: any call fails the test.
	toolchain := mocks.NewMockToolchain(ctrl)
	root := t.TempDir()

	p, err := pipeline.New(toolchain, logger, tracer, nil, domain.DefaultConfig(root))
	require.NoError(t, err)

	_, err = p.Expand(context.Background(), "#[wasmbed(\"missing.toml\")]\nmod demo { X }\n")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrIO))

	_, statErr := os.Stat(filepath.Join(root, ".wasmbed"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestExpand_NoAnnotations(t *testing.T) {
	h := newHarness(t, fakeBuild{}, nil)

	src := "fn main() {\n    println!(\"hi\");\n}\n"
	out, err := h.pipeline.Expand(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, src, out)
}

func TestExpand_InternalBytesConvention(t *testing.T) {
	h := newHarness(t, fakeBuild{}, func(cfg *domain.Config) {
		cfg.Options.Convention = domain.ConventionInternal
		cfg.Options.Loader = domain.LoaderBytes
	})
	h.store.EXPECT().Put(gomock.Any(), gomock.Any()).Return(nil)

	out, err := h.pipeline.Expand(context.Background(), "#[wasmbed]\nmod demo { X }\n")
	require.NoError(t, err)
	assert.Contains(t, out, "    const wasm: [u8; 1] = [")
	assert.Contains(t, out, "    const js_loader: [u8; 20] = [")
	assert.False(t, strings.Contains(out, "pub const"))
}

func TestNew_RejectsInvalidOptions(t *testing.T) {
	cfg := domain.DefaultConfig(t.TempDir())
	cfg.Options.Convention = "public"

	_, err := pipeline.New(nil, nil, nil, nil, cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidConfig))
}
