package manifest_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/wasmbed/internal/core/domain"
	"go.trai.ch/wasmbed/internal/engine/manifest"
)

const scaffolded = `[package]
name = "greeter"
version = "0.1.0"
edition = "2021"

[dependencies]
`

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Cargo.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestSynthesize_ConfiguresWebBuild(t *testing.T) {
	path := writeManifest(t, scaffolded)
	payload := domain.NewDependencySpec().WithFeatures("web-sys", "*", "Document", "Node")

	doc, err := manifest.Synthesize(path, "wasm-bindgen", payload)
	require.NoError(t, err)

	assert.Equal(t, []any{"cdylib"}, doc.CrateTypes())
	assert.Equal(t, "*", doc.Dependencies()["wasm-bindgen"])

	reloaded, err := manifest.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []any{"cdylib"}, reloaded.CrateTypes())
	assert.Equal(t, "*", reloaded.Dependencies()["wasm-bindgen"])
	assert.Equal(t, map[string]any{
		"version":  "*",
		"features": []any{"Document", "Node"},
	}, reloaded.Dependencies()["web-sys"])

	pkg, ok := reloaded.Get("package").(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "greeter", pkg["name"])
}

func TestSynthesize_LaterSpecsWin(t *testing.T) {
	path := writeManifest(t, scaffolded)
	global := domain.NewDependencySpec().Version("js-sys", "0.3").Version("gloo", "0.10")
	local := domain.NewDependencySpec().Version("gloo", "0.11").Version("wasm-bindgen", "0.2")

	doc, err := manifest.Synthesize(path, "wasm-bindgen", global, local)
	require.NoError(t, err)

	deps := doc.Dependencies()
	assert.Equal(t, "0.3", deps["js-sys"])
	assert.Equal(t, "0.11", deps["gloo"])
	assert.Equal(t, "0.2", deps["wasm-bindgen"])
}

func TestSynthesize_Idempotent(t *testing.T) {
	path := writeManifest(t, scaffolded)
	payload := domain.NewDependencySpec().WithFeatures("web-sys", "*", "Document")

	_, err := manifest.Synthesize(path, "wasm-bindgen", payload)
	require.NoError(t, err)
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = manifest.Synthesize(path, "wasm-bindgen", payload)
	require.NoError(t, err)
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestSynthesize_ReplacesMalformedTables(t *testing.T) {
	doc, err := manifest.Parse("Cargo.toml", []byte("lib = \"oops\"\ndependencies = 3\n"))
	require.NoError(t, err)

	doc.Synthesize("wasm-bindgen")

	assert.Equal(t, []any{"cdylib"}, doc.CrateTypes())
	assert.Equal(t, map[string]any{"wasm-bindgen": "*"}, doc.Dependencies())
}

func TestLoad_Errors(t *testing.T) {
	_, err := manifest.Load(filepath.Join(t.TempDir(), "Cargo.toml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrIO))

	_, err = manifest.Load(writeManifest(t, "[package\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrManifestParse))
}
