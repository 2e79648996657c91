package luauconfig_test

import (
	"testing"

	"github.com/Barocena/luau-lsp/internal/luauconfig"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, contents string, opts luauconfig.Options) (luauconfig.Config, error) {
	t.Helper()
	cfg := luauconfig.Default()
	err := luauconfig.Parse([]byte(contents), &cfg, opts)
	return cfg, err
}

func TestParseAllKeys(t *testing.T) {
	cfg, err := parse(t, `{
		// comments and trailing commas are accepted
		"languageMode": "strict",
		"lint": {"*": false, "LocalUnused": true},
		"lintErrors": true,
		"typeErrors": false,
		"globals": ["warn", "task", "warn"],
		"aliases": {"Lib": "./lib", "abs": "/opt/luau"},
	}`, luauconfig.Options{Filename: "/proj/.luaurc", ConfigLocation: "/proj"})
	require.NoError(t, err)

	assert.Equal(t, luauconfig.ModeStrict, cfg.LanguageMode)
	assert.True(t, cfg.LintErrors)
	assert.False(t, cfg.TypeErrors)
	assert.Equal(t, []string{"warn", "task"}, cfg.Globals)
	assert.True(t, cfg.Lint["LocalUnused"])
	assert.False(t, cfg.Lint["UnknownGlobal"])

	want := map[string]luauconfig.Alias{
		"lib": {Value: "./lib", ConfigLocation: "/proj", OriginalCase: "Lib"},
		"abs": {Value: "/opt/luau", ConfigLocation: "/proj", OriginalCase: "abs"},
	}
	if diff := cmp.Diff(want, cfg.Aliases); diff != "" {
		t.Errorf("aliases (-want +got):\n%s", diff)
	}

	target, ok := cfg.ResolveAlias("LIB")
	require.True(t, ok)
	assert.Equal(t, "/proj/lib", target)
	target, ok = cfg.ResolveAlias("abs")
	require.True(t, ok)
	assert.Equal(t, "/opt/luau", target)
	_, ok = cfg.ResolveAlias("missing")
	assert.False(t, ok)
}

func TestParseKeepsPartialResult(t *testing.T) {
	cfg, err := parse(t, `{
		"languageMode": "strict",
		"typeErrors": "yes",
		"lintErrors": true
	}`, luauconfig.Options{Filename: "/proj/.luaurc"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "/proj/.luaurc")
	assert.Contains(t, err.Error(), `"typeErrors"`)
	assert.Equal(t, luauconfig.ModeStrict, cfg.LanguageMode)
	assert.False(t, cfg.LintErrors)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		want     string
	}{
		{name: "syntax", contents: `{"languageMode": }`, want: ".luaurc"},
		{name: "not an object", contents: `["strict"]`, want: "expected a JSON object"},
		{name: "unknown key", contents: `{"mode": "strict"}`, want: `unknown key "mode"`},
		{name: "bad mode", contents: `{"languageMode": "loose"}`, want: `bad setting "languageMode"`},
		{name: "unknown lint", contents: `{"lint": {"NoSuchLint": true}}`, want: `unknown lint "NoSuchLint"`},
		{name: "reserved alias", contents: `{"aliases": {"self": "./x"}}`, want: `alias "self" is reserved`},
		{name: "bad alias character", contents: `{"aliases": {"a/b": "./x"}}`, want: `character '/' is not allowed`},
		{name: "dot alias", contents: `{"aliases": {"..": "./x"}}`, want: `invalid alias ".."`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(t, tt.contents, luauconfig.Options{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseCompatIgnoresUnknownKeys(t *testing.T) {
	cfg, err := parse(t, `{"placeId": 12, "languageMode": "nocheck"}`, luauconfig.Options{Compat: true})
	require.NoError(t, err)
	assert.Equal(t, luauconfig.ModeNoCheck, cfg.LanguageMode)
}

func TestParseAliasOverwrite(t *testing.T) {
	base := luauconfig.Default()
	require.NoError(t, luauconfig.Parse([]byte(`{"aliases": {"lib": "./a"}}`), &base, luauconfig.Options{ConfigLocation: "/p"}))

	kept := base.Clone()
	require.NoError(t, luauconfig.Parse([]byte(`{"aliases": {"lib": "./b"}}`), &kept, luauconfig.Options{ConfigLocation: "/p/q"}))
	target, _ := kept.ResolveAlias("lib")
	assert.Equal(t, "/p/a", target)

	replaced := base.Clone()
	require.NoError(t, luauconfig.Parse([]byte(`{"aliases": {"lib": "./b"}}`), &replaced, luauconfig.Options{ConfigLocation: "/p/q", OverwriteAliases: true}))
	target, _ = replaced.ResolveAlias("lib")
	assert.Equal(t, "/p/q/b", target)

	target, _ = base.ResolveAlias("lib")
	assert.Equal(t, "/p/a", target, "clone must not share aliases")
}

func TestDefault(t *testing.T) {
	cfg := luauconfig.Default()
	assert.Equal(t, luauconfig.ModeNonStrict, cfg.LanguageMode)
	assert.True(t, cfg.TypeErrors)
	assert.False(t, cfg.LintErrors)
	assert.Len(t, cfg.Lint, len(luauconfig.Lints))
	assert.Empty(t, cfg.Aliases)
}
