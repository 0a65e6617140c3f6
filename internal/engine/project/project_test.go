package project_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/wasmbed/internal/core/domain"
	"go.trai.ch/wasmbed/internal/core/ports/mocks"
	"go.trai.ch/wasmbed/internal/engine/project"
	"go.uber.org/mock/gomock"
)

func TestMaterialize_FreshProject(t *testing.T) {
	ctrl := gomock.NewController(t)
	toolchain := mocks.NewMockToolchain(ctrl)
	logger := mocks.NewMockLogger(ctrl)

	layout := domain.NewLayout(t.TempDir())
	decl := domain.ModuleDeclaration{Name: "greeter", Body: "pub fn hi() {}"}

	toolchain.EXPECT().
		Scaffold(gomock.Any(), layout.StagingRoot(), "greeter").
		DoAndReturn(func(_ context.Context, staging, module string) (*domain.BuildResult, error) {
			dir := filepath.Join(staging, module, "src")
			require.NoError(t, os.MkdirAll(dir, 0o750))
			require.NoError(t, os.WriteFile(filepath.Join(staging, module, "Cargo.toml"), nil, 0o600))
			require.NoError(t, os.WriteFile(filepath.Join(dir, "lib.rs"), []byte("// placeholder"), 0o600))
			return &domain.BuildResult{}, nil
		})

	proj, err := project.NewMaterializer(toolchain, logger).Materialize(context.Background(), layout, decl)
	require.NoError(t, err)
	assert.Equal(t, layout.Project("greeter"), proj)

	body, err := os.ReadFile(proj.SourceEntryPath)
	require.NoError(t, err)
	assert.Equal(t, "pub fn hi() {}", string(body))
}

func TestMaterialize_ScaffoldFailureReusesProject(t *testing.T) {
	ctrl := gomock.NewController(t)
	toolchain := mocks.NewMockToolchain(ctrl)
	logger := mocks.NewMockLogger(ctrl)

	layout := domain.NewLayout(t.TempDir())
	proj := layout.Project("demo")
	require.NoError(t, os.MkdirAll(filepath.Dir(proj.SourceEntryPath), 0o750))
	require.NoError(t, os.WriteFile(proj.ManifestPath, nil, 0o600))
	require.NoError(t, os.WriteFile(proj.SourceEntryPath, []byte("old body"), 0o600))

	toolchain.EXPECT().Scaffold(gomock.Any(), gomock.Any(), "demo").
		Return(&domain.BuildResult{ExitCode: 101, Stderr: []byte("destination already exists")}, nil)
	logger.EXPECT().Debug(gomock.Any())

	m := project.NewMaterializer(toolchain, logger)
	_, err := m.Materialize(context.Background(), layout, domain.ModuleDeclaration{Name: "demo", Body: "new body"})
	require.NoError(t, err)

	body, err := os.ReadFile(proj.SourceEntryPath)
	require.NoError(t, err)
	assert.Equal(t, "new body", string(body))
}

func TestMaterialize_ScaffoldLaunchFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	toolchain := mocks.NewMockToolchain(ctrl)
	logger := mocks.NewMockLogger(ctrl)

	launchErr := errors.Join(domain.ErrToolchainInvocation, errors.New("executable file not found"))
	toolchain.EXPECT().Scaffold(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, launchErr)

	layout := domain.NewLayout(t.TempDir())
	_, err := project.NewMaterializer(toolchain, logger).
		Materialize(context.Background(), layout, domain.ModuleDeclaration{Name: "demo"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrToolchainInvocation))
}

func writeOutputs(t *testing.T, proj domain.WorkingProject, binary, loader []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(proj.OutputDir, 0o750))
	if binary != nil {
		require.NoError(t, os.WriteFile(proj.BinaryPath, binary, 0o600))
	}
	if loader != nil {
		require.NoError(t, os.WriteFile(proj.LoaderPath, loader, 0o600))
	}
}

func TestReadArtifact(t *testing.T) {
	proj := domain.NewLayout(t.TempDir()).Project("greeter")
	writeOutputs(t, proj, []byte{0x00, 0x61, 0x73, 0x6d}, []byte("export default init;"))

	artifact, err := project.ReadArtifact(proj, domain.LoaderText)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x61, 0x73, 0x6d}, artifact.Binary)
	assert.Equal(t, "export default init;", string(artifact.Loader))
}

func TestReadArtifact_Errors(t *testing.T) {
	t.Run("missing loader", func(t *testing.T) {
		proj := domain.NewLayout(t.TempDir()).Project("greeter")
		writeOutputs(t, proj, []byte{0}, nil)

		_, err := project.ReadArtifact(proj, domain.LoaderText)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrArtifactMissing))
	})

	t.Run("missing binary", func(t *testing.T) {
		proj := domain.NewLayout(t.TempDir()).Project("greeter")
		writeOutputs(t, proj, nil, []byte("x"))

		_, err := project.ReadArtifact(proj, domain.LoaderBytes)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrArtifactMissing))
	})

	t.Run("loader not utf-8", func(t *testing.T) {
		proj := domain.NewLayout(t.TempDir()).Project("greeter")
		writeOutputs(t, proj, []byte{0}, []byte{0xff, 0xfe})

		_, err := project.ReadArtifact(proj, domain.LoaderText)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrLoaderEncoding))

		artifact, err := project.ReadArtifact(proj, domain.LoaderBytes)
		require.NoError(t, err)
		assert.Equal(t, []byte{0xff, 0xfe}, artifact.Loader)
	})
}
