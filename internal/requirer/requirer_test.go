package requirer_test

import (
	"testing"

	"github.com/Barocena/luau-lsp/internal/navigation"
	"github.com/Barocena/luau-lsp/internal/requirer"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, f := range []string{
		"/proj/src/main.luau",
		"/proj/src/util.lua",
		"/proj/src/shared/init.luau",
		"/proj/src/shared/strings.luau",
		"/proj/src/dup.lua",
		"/proj/src/dup.luau",
		"/proj/lib/log.luau",
		"/proj/packages/net/init.lua",
	} {
		require.NoError(t, afero.WriteFile(fs, f, []byte("return nil"), 0o644))
	}
	return fs
}

func aliases(m map[string]string) requirer.AliasLookup {
	return func(name string) (string, bool) {
		v, ok := m[name]
		return v, ok
	}
}

func TestResolve(t *testing.T) {
	lookup := aliases(map[string]string{
		"lib":      "/proj/lib",
		"packages": "/proj/packages",
	})

	tests := []struct {
		name     string
		requirer string
		path     string
		want     requirer.Result
		err      error
	}{
		{name: "sibling", requirer: "/proj/src/main.luau", path: "./util", want: requirer.Result{Path: "/proj/src/util.lua", Present: true}},
		{name: "directory module", requirer: "/proj/src/main.luau", path: "./shared", want: requirer.Result{Path: "/proj/src/shared/init.luau", Present: true}},
		{name: "nested", requirer: "/proj/src/main.luau", path: "./shared/strings", want: requirer.Result{Path: "/proj/src/shared/strings.luau", Present: true}},
		{name: "parent", requirer: "/proj/src/main.luau", path: "../lib/log", want: requirer.Result{Path: "/proj/lib/log.luau", Present: true}},
		{name: "self from init", requirer: "/proj/src/shared/init.luau", path: "@self/strings", want: requirer.Result{Path: "/proj/src/shared/strings.luau", Present: true}},
		{name: "dot components", requirer: "/proj/src/main.luau", path: "./shared/./../util", want: requirer.Result{Path: "/proj/src/util.lua", Present: true}},
		{name: "alias", requirer: "/proj/src/main.luau", path: "@lib/log", want: requirer.Result{Path: "/proj/lib/log.luau", Present: true}},
		{name: "alias is case insensitive", requirer: "/proj/src/main.luau", path: "@Packages/net", want: requirer.Result{Path: "/proj/packages/net/init.lua", Present: true}},
		{name: "missing falls back", requirer: "/proj/src/main.luau", path: "./missing/deeper", want: requirer.Result{Path: "/proj/src/missing/deeper.luau"}},
		{name: "directory without init", requirer: "/proj/src/main.luau", path: "..", want: requirer.Result{Path: "/proj.luau"}},
		{name: "ambiguous", requirer: "/proj/src/main.luau", path: "./dup", err: requirer.ErrAmbiguous},
		{name: "reserved", requirer: "/proj/src/main.luau", path: "./.config", err: requirer.ErrNotFound},
		{name: "bad prefix", requirer: "/proj/src/main.luau", path: "util", err: requirer.ErrInvalidPrefix},
		{name: "unknown alias", requirer: "/proj/src/main.luau", path: "@nope/x", err: requirer.ErrUnknownAlias},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nav := navigation.NewContext(fixture(t), tt.requirer)
			got, err := requirer.Resolve(nav, tt.path, lookup)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveWithoutAliases(t *testing.T) {
	nav := navigation.NewContext(fixture(t), "/proj/src/main.luau")
	_, err := requirer.Resolve(nav, "@lib/log", nil)
	assert.ErrorIs(t, err, requirer.ErrUnknownAlias)
}

func TestResolveRelativeAliasTarget(t *testing.T) {
	nav := navigation.NewContext(fixture(t), "/proj/src/main.luau")
	_, err := requirer.Resolve(nav, "@lib/log", aliases(map[string]string{"lib": "lib"}))
	assert.ErrorIs(t, err, requirer.ErrNotFound)
}

func TestResolveBackslashes(t *testing.T) {
	nav := navigation.NewContext(fixture(t), "/proj/src/main.luau")
	got, err := requirer.Resolve(nav, `.\shared\strings`, nil)
	require.NoError(t, err)
	assert.Equal(t, "/proj/src/shared/strings.luau", got.Path)
}
