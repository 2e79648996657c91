package scanner_test

import (
	"context"
	"sort"
	"testing"

	"github.com/Barocena/luau-lsp/internal/scanner"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanFindsConfigFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, p := range []string{
		"/proj/.luaurc",
		"/proj/src/.robloxrc",
		"/proj/src/init.luau",
		"/proj/node_modules/pkg/.luaurc",
		"/proj/.git/.luaurc",
	} {
		require.NoError(t, afero.WriteFile(fs, p, []byte("{}"), 0o644))
	}

	ignore := func(name string) bool { return name == ".git" || name == "node_modules" }
	match := func(name string) bool { return name == ".luaurc" || name == ".robloxrc" }

	var found []string
	err := scanner.Scan(context.Background(), fs, "/proj", ignore, match, func(p string) {
		found = append(found, p)
	})
	require.NoError(t, err)

	sort.Strings(found)
	assert.Equal(t, []string{"/proj/.luaurc", "/proj/src/.robloxrc"}, found)
}

func TestScanCanceled(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/proj/.luaurc", []byte("{}"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := scanner.Scan(ctx, fs, "/proj", nil, func(string) bool { return true }, func(string) { called = true })
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
