// Package luauconfig models Luau project configuration (.luaurc) and parses
// it, one key at a time, onto an inherited configuration.
package luauconfig

import (
	"path"
	"slices"
	"strings"
)

const (
	// ConfigName is the primary configuration file.
	ConfigName = ".luaurc"
	// LegacyConfigName is the older, compatibility-parsed configuration file.
	LegacyConfigName = ".robloxrc"
)

// Mode is the type-checking strictness.
type Mode string

const (
	ModeNoCheck   Mode = "nocheck"
	ModeNonStrict Mode = "nonstrict"
	ModeStrict    Mode = "strict"
)

// Lints lists every lint name a config may toggle.
var Lints = []string{
	"UnknownGlobal",
	"DeprecatedGlobal",
	"GlobalUsedAsLocal",
	"LocalShadow",
	"SameLineStatement",
	"MultiLineStatement",
	"LocalUnused",
	"FunctionUnused",
	"ImportUnused",
	"BuiltinGlobalWrite",
	"PlaceholderRead",
	"UnreachableCode",
	"UnknownType",
	"ForRange",
	"UnbalancedAssignment",
	"ImplicitReturn",
	"DuplicateLocal",
	"FormatString",
	"TableLiteral",
	"UninitializedLocal",
	"DuplicateFunction",
	"DeprecatedApi",
	"TableOperations",
	"DuplicateCondition",
	"MisleadingAndOr",
	"CommentDirective",
	"IntegerParsing",
	"ComparisonPrecedence",
	"RedundantNativeAttribute",
}

// Alias is a named require root declared in a config file.
type Alias struct {
	Value          string `json:"value"`
	ConfigLocation string `json:"configLocation"`
	OriginalCase   string `json:"originalCase"`
}

// Config is the effective configuration of a directory.
type Config struct {
	LanguageMode Mode             `json:"languageMode"`
	Lint         map[string]bool  `json:"lint"`
	LintErrors   bool             `json:"lintErrors"`
	TypeErrors   bool             `json:"typeErrors"`
	Globals      []string         `json:"globals"`
	Aliases      map[string]Alias `json:"aliases"`
}

// Default returns the configuration used when no file applies.
func Default() Config {
	lint := make(map[string]bool, len(Lints))
	for _, name := range Lints {
		lint[name] = true
	}
	return Config{
		LanguageMode: ModeNonStrict,
		Lint:         lint,
		TypeErrors:   true,
		Aliases:      map[string]Alias{},
	}
}

// Clone returns a deep copy, safe to modify without affecting c.
func (c Config) Clone() Config {
	out := c
	out.Lint = make(map[string]bool, len(c.Lint))
	for k, v := range c.Lint {
		out.Lint[k] = v
	}
	out.Globals = slices.Clone(c.Globals)
	out.Aliases = make(map[string]Alias, len(c.Aliases))
	for k, v := range c.Aliases {
		out.Aliases[k] = v
	}
	return out
}

// ResolveAlias returns the absolute target of alias name (without the
// leading `@`), relative targets being joined to the declaring directory.
func (c Config) ResolveAlias(name string) (string, bool) {
	alias, ok := c.Aliases[strings.ToLower(name)]
	if !ok {
		return "", false
	}
	value := strings.ReplaceAll(alias.Value, `\`, "/")
	if path.IsAbs(value) || (len(value) >= 3 && value[1] == ':' && value[2] == '/') {
		return path.Clean(value), true
	}
	return path.Join(alias.ConfigLocation, value), true
}
