package commands_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/wasmbed/cmd/wasmbed/commands"
	"go.trai.ch/wasmbed/internal/app"
	"go.trai.ch/wasmbed/internal/build"
	"go.trai.ch/wasmbed/internal/core/domain"
)

type mockApp struct {
	verbose, logJSON bool

	expandFunc func(ctx context.Context, opts app.ExpandOptions) error
	watchFunc  func(ctx context.Context, opts app.WatchOptions) error
	statusFunc func(ctx context.Context, root string) ([]app.ModuleStatus, error)
	cleanFunc  func(ctx context.Context, opts app.CleanOptions) error
}

func (m *mockApp) ConfigureLogging(verbose, jsonOutput bool) {
	m.verbose = verbose
	m.logJSON = jsonOutput
}

func (m *mockApp) Expand(ctx context.Context, opts app.ExpandOptions) error {
	if m.expandFunc != nil {
		return m.expandFunc(ctx, opts)
	}
	return nil
}

func (m *mockApp) Watch(ctx context.Context, opts app.WatchOptions) error {
	if m.watchFunc != nil {
		return m.watchFunc(ctx, opts)
	}
	return nil
}

func (m *mockApp) Status(ctx context.Context, root string) ([]app.ModuleStatus, error) {
	if m.statusFunc != nil {
		return m.statusFunc(ctx, root)
	}
	return nil, nil
}

func (m *mockApp) Clean(ctx context.Context, opts app.CleanOptions) error {
	if m.cleanFunc != nil {
		return m.cleanFunc(ctx, opts)
	}
	return nil
}

func TestCommands_Expand(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		var captured app.ExpandOptions
		mock := &mockApp{
			expandFunc: func(_ context.Context, opts app.ExpandOptions) error {
				captured = opts
				return nil
			},
		}

		cli := commands.New(mock)
		out := new(bytes.Buffer)
		cli.SetOutput(out, out)
		cli.SetArgs([]string{
			"--root", "/work/app", "--verbose", "--log-json",
			"expand", "src/lib.wb.rs", "-o", "src/lib.rs",
			"--convention", "internal", "--loader", "bytes", "--payload", "inline",
		})

		require.NoError(t, cli.Execute(context.Background()))
		assert.True(t, mock.verbose)
		assert.True(t, mock.logJSON)
		assert.Equal(t, "/work/app", captured.Root)
		assert.Equal(t, "src/lib.wb.rs", captured.Input)
		assert.Equal(t, "src/lib.rs", captured.Output)
		assert.Equal(t, app.Overrides{Convention: "internal", Loader: "bytes", Payload: "inline"}, captured.Overrides)
		assert.Equal(t, out, captured.Stdout)
	})

	t.Run("without input expands configured sources", func(t *testing.T) {
		var captured app.ExpandOptions
		mock := &mockApp{
			expandFunc: func(_ context.Context, opts app.ExpandOptions) error {
				captured = opts
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"expand"})

		require.NoError(t, cli.Execute(context.Background()))
		assert.Empty(t, captured.Input)
		assert.False(t, mock.verbose)
	})

	t.Run("returns error on failure", func(t *testing.T) {
		mock := &mockApp{
			expandFunc: func(context.Context, app.ExpandOptions) error {
				return domain.ErrNoSources
			},
		}

		cli := commands.New(mock)
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))
		cli.SetArgs([]string{"expand"})

		err := cli.Execute(context.Background())
		require.ErrorIs(t, err, domain.ErrNoSources)
	})

	t.Run("rejects extra arguments", func(t *testing.T) {
		cli := commands.New(&mockApp{})
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))
		cli.SetArgs([]string{"expand", "a.rs", "b.rs"})

		require.Error(t, cli.Execute(context.Background()))
	})
}

func TestCommands_Watch(t *testing.T) {
	var captured app.WatchOptions
	mock := &mockApp{
		watchFunc: func(_ context.Context, opts app.WatchOptions) error {
			captured = opts
			return nil
		},
	}

	cli := commands.New(mock)
	cli.SetArgs([]string{"watch", "--root", "/work/app", "--loader", "bytes"})

	require.NoError(t, cli.Execute(context.Background()))
	assert.Equal(t, "/work/app", captured.Root)
	assert.Equal(t, "bytes", captured.Loader)
}

func TestCommands_Status(t *testing.T) {
	t.Run("lists modules", func(t *testing.T) {
		mock := &mockApp{
			statusFunc: func(_ context.Context, root string) ([]app.ModuleStatus, error) {
				assert.Equal(t, "/work/app", root)
				return []app.ModuleStatus{
					{
						Module: "greeter",
						Built:  true,
						Info: &domain.BuildInfo{
							Module:     "greeter",
							WasmHash:   "d1a8f0c2",
							WasmSize:   1024,
							LoaderSize: 512,
							Timestamp:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.Local),
						},
					},
					{Module: "hi"},
				}, nil
			},
		}

		cli := commands.New(mock)
		out := new(bytes.Buffer)
		cli.SetOutput(out, out)
		cli.SetArgs([]string{"status", "--root", "/work/app"})

		require.NoError(t, cli.Execute(context.Background()))
		assert.Equal(t,
			"✓ greeter  wasm 1024 B  loader 512 B  d1a8f0c2  2026-01-02 03:04:05\n"+
				"✗ hi       no build recorded\n",
			out.String())
	})

	t.Run("empty", func(t *testing.T) {
		cli := commands.New(&mockApp{})
		out := new(bytes.Buffer)
		cli.SetOutput(out, out)
		cli.SetArgs([]string{"status"})

		require.NoError(t, cli.Execute(context.Background()))
		assert.Equal(t, "no modules materialized\n", out.String())
	})

	t.Run("error", func(t *testing.T) {
		mock := &mockApp{
			statusFunc: func(context.Context, string) ([]app.ModuleStatus, error) {
				return nil, errors.New("boom")
			},
		}
		cli := commands.New(mock)
		cli.SetArgs([]string{"status"})
		require.EqualError(t, cli.Execute(context.Background()), "boom")
	})
}

func TestCommands_Clean(t *testing.T) {
	var captured app.CleanOptions
	mock := &mockApp{
		cleanFunc: func(_ context.Context, opts app.CleanOptions) error {
			captured = opts
			return nil
		},
	}

	cli := commands.New(mock)
	cli.SetArgs([]string{"clean", "greeter", "hi"})

	require.NoError(t, cli.Execute(context.Background()))
	assert.Equal(t, []string{"greeter", "hi"}, captured.Modules)
}

func TestCommands_Version(t *testing.T) {
	cli := commands.New(&mockApp{})

	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs([]string{"version"})

	require.NoError(t, cli.Execute(context.Background()))
	assert.Contains(t, buf.String(), "wasmbed version "+build.Version)
}
