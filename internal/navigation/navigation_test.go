package navigation_test

import (
	"testing"

	"github.com/Barocena/luau-lsp/internal/navigation"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFs(t *testing.T, files ...string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, f := range files {
		require.NoError(t, afero.WriteFile(fs, f, []byte("return {}"), 0o644))
	}
	return fs
}

func TestToChildResolution(t *testing.T) {
	tests := []struct {
		name     string
		files    []string
		dirs     []string
		want     navigation.Result
		resolved string
		present  bool
	}{
		{
			name:     "legacy suffix only",
			files:    []string{"/proj/a/c.lua"},
			want:     navigation.Success,
			resolved: "/proj/a/c.lua",
			present:  true,
		},
		{
			name:     "primary suffix only",
			files:    []string{"/proj/a/c.luau"},
			want:     navigation.Success,
			resolved: "/proj/a/c.luau",
			present:  true,
		},
		{
			name:  "both suffixes",
			files: []string{"/proj/a/c.lua", "/proj/a/c.luau"},
			want:  navigation.Ambiguous,
		},
		{
			name:     "directory with init",
			files:    []string{"/proj/a/c/init.luau"},
			want:     navigation.Success,
			resolved: "/proj/a/c/init.luau",
			present:  true,
		},
		{
			name:  "directory with both inits",
			files: []string{"/proj/a/c/init.luau", "/proj/a/c/init.lua"},
			want:  navigation.Ambiguous,
		},
		{
			name:  "file and directory",
			files: []string{"/proj/a/c.luau", "/proj/a/c/init.luau"},
			want:  navigation.Ambiguous,
		},
		{
			name:     "bare directory",
			dirs:     []string{"/proj/a/c"},
			want:     navigation.Success,
			resolved: "/proj/a/c",
			present:  false,
		},
		{
			name: "nothing",
			want: navigation.NotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := newFs(t, append([]string{"/proj/a/b.luau"}, tt.files...)...)
			for _, d := range tt.dirs {
				require.NoError(t, fs.MkdirAll(d, 0o755))
			}

			nav := navigation.NewContext(fs, "/proj/a/b.luau")
			require.Equal(t, navigation.Success, nav.ResetToRequirer())
			require.Equal(t, navigation.Success, nav.ToParent())
			assert.Equal(t, "/proj/a", nav.ModulePath())

			got := nav.ToChild("c")
			assert.Equal(t, tt.want, got)
			assert.Equal(t, "/proj/a/c", nav.ModulePath())
			if tt.want == navigation.Success {
				assert.Equal(t, tt.resolved, nav.ResolvedPath())
				assert.Equal(t, tt.present, nav.IsModulePresent())
			}
		})
	}
}

func TestInitComponentSkipsSuffixFiles(t *testing.T) {
	fs := newFs(t, "/proj/main.luau", "/proj/init.luau")

	nav := navigation.NewContext(fs, "/proj/main.luau")
	require.Equal(t, navigation.Success, nav.ResetToRequirer())
	require.Equal(t, navigation.Success, nav.ToParent())
	assert.Equal(t, navigation.NotFound, nav.ToChild("init"))
}

func TestResetToRequirerStripsInit(t *testing.T) {
	fs := newFs(t, "/proj/lib/init.luau")

	nav := navigation.NewContext(fs, `/proj/lib/init.luau`)
	assert.Equal(t, navigation.Success, nav.ResetToRequirer())
	assert.Equal(t, "/proj/lib", nav.ModulePath())
	assert.Equal(t, "/proj/lib/init.luau", nav.ResolvedPath())
}

func TestResetToRequirerRequiresAbsolutePath(t *testing.T) {
	nav := navigation.NewContext(afero.NewMemMapFs(), "relative/main.luau")
	assert.Panics(t, func() { nav.ResetToRequirer() })
}

func TestReservedChild(t *testing.T) {
	fs := newFs(t, "/proj/main.luau", "/proj/.config.luau", "/proj/.config/init.luau")

	nav := navigation.NewContext(fs, "/proj/main.luau")
	require.Equal(t, navigation.Success, nav.ResetToRequirer())
	require.Equal(t, navigation.Success, nav.ToParent())
	assert.Equal(t, navigation.NotFound, nav.ToChild(".config"))
	assert.Equal(t, "/proj", nav.ModulePath())
}

func TestToParentTerminates(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/a/b/c/d", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/a/b/c/d/e.luau", nil, 0o644))

	nav := navigation.NewContext(fs, "/a/b/c/d/e.luau")
	require.Equal(t, navigation.Success, nav.ResetToRequirer())

	steps := 0
	for nav.ToParent() == navigation.Success {
		steps++
		require.Less(t, steps, 10)
	}
	// "/a/b/c/d/e" has five components; the last one has no parent.
	assert.Equal(t, 4, steps)
	assert.Equal(t, "/a", nav.ModulePath())
}

func TestToParentMissingDirectory(t *testing.T) {
	nav := navigation.NewContext(afero.NewMemMapFs(), "/gone/dir/main.luau")
	assert.Equal(t, navigation.NotFound, nav.ResetToRequirer())
	assert.Equal(t, navigation.NotFound, nav.ToParent())
	assert.Equal(t, "/gone/dir", nav.ModulePath())
	assert.Equal(t, "/gone/dir.luau", nav.FallbackPath())
}

func TestJumpToAlias(t *testing.T) {
	fs := newFs(t, "/proj/main.luau", "/libs/util.luau")

	nav := navigation.NewContext(fs, "/proj/main.luau")
	assert.Equal(t, navigation.NotFound, nav.JumpToAlias("libs/util"))
	assert.Equal(t, navigation.Success, nav.JumpToAlias("/libs/util"))
	assert.Equal(t, "/libs/util.luau", nav.ResolvedPath())
	assert.True(t, nav.IsModulePresent())

	_, ok := nav.Alias("anything")
	assert.False(t, ok)
}

func TestConfigStatus(t *testing.T) {
	tests := []struct {
		name   string
		files  []string
		status navigation.ConfigStatus
		config string
	}{
		{name: "absent", status: navigation.ConfigAbsent},
		{name: "primary", files: []string{"/proj/lib/.luaurc"}, status: navigation.ConfigPresentPrimary, config: "return {}"},
		{name: "legacy", files: []string{"/proj/lib/.robloxrc"}, status: navigation.ConfigPresentLegacy, config: "return {}"},
		{name: "both", files: []string{"/proj/lib/.luaurc", "/proj/lib/.robloxrc"}, status: navigation.ConfigAmbiguous},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := newFs(t, append([]string{"/proj/main.luau", "/proj/lib/init.luau"}, tt.files...)...)

			nav := navigation.NewContext(fs, "/proj/main.luau")
			require.Equal(t, navigation.Success, nav.ResetToRequirer())
			require.Equal(t, navigation.Success, nav.ToParent())
			require.Equal(t, navigation.Success, nav.ToChild("lib"))

			assert.Equal(t, tt.status, nav.ConfigStatus())
			switch tt.status {
			case navigation.ConfigPresentPrimary, navigation.ConfigPresentLegacy:
				assert.Equal(t, tt.config, nav.Config())
			default:
				assert.Panics(t, func() { nav.Config() })
			}
		})
	}
}

func TestModulePath(t *testing.T) {
	tests := map[string]string{
		"/a/b.luau":      "/a/b",
		"/a/b.lua":       "/a/b",
		"/a/b/init.luau": "/a/b",
		"/a/b/init.lua":  "/a/b",
		`C:\a\b.luau`:    "C:/a/b",
		"/a/b.json":      "/a/b.json",
	}
	for in, want := range tests {
		assert.Equal(t, want, navigation.ModulePath(in), in)
	}
	assert.True(t, navigation.IsAbsolutePath("C:/x"))
	assert.True(t, navigation.IsAbsolutePath("/x"))
	assert.False(t, navigation.IsAbsolutePath("x/y"))
}
