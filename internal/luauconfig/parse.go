package luauconfig

import (
	_ "embed"
	"fmt"
	"slices"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaSource string

var (
	parseMu     sync.Mutex
	schemaOnce  sync.Once
	cueCtx      *cue.Context
	schemaValue cue.Value
)

// Options control how a single config file is applied.
type Options struct {
	// Filename is used in error messages.
	Filename string
	// ConfigLocation is the directory containing the file; relative alias
	// targets are resolved against it.
	ConfigLocation string
	// OverwriteAliases lets this file replace aliases inherited from a parent.
	OverwriteAliases bool
	// Compat ignores unknown keys, as legacy files carry unrelated settings.
	Compat bool
}

var definitions = map[string]string{
	"languageMode": "#LanguageMode",
	"lint":         "#Lint",
	"lintErrors":   "#LintErrors",
	"typeErrors":   "#TypeErrors",
	"globals":      "#Globals",
	"aliases":      "#Aliases",
}

func schema() (*cue.Context, cue.Value) {
	schemaOnce.Do(func() {
		cueCtx = cuecontext.New()
		schemaValue = cueCtx.CompileString(schemaSource, cue.Filename("schema.cue"))
		if err := schemaValue.Err(); err != nil {
			panic(fmt.Sprintf("luauconfig: embedded schema does not compile: %v", err))
		}
	})
	return cueCtx, schemaValue
}

// Parse applies contents onto result in source order. It stops at the first
// invalid key and returns its error; keys applied before that stay applied.
func Parse(contents []byte, result *Config, opts Options) error {
	parseMu.Lock()
	defer parseMu.Unlock()

	ctx, defs := schema()

	filename := opts.Filename
	if filename == "" {
		filename = ConfigName
	}

	value := ctx.CompileBytes(contents, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return fmt.Errorf("%s: %s", filename, describe(err))
	}
	if value.IncompleteKind() != cue.StructKind {
		return fmt.Errorf("%s: expected a JSON object at the top level", filename)
	}

	fields, err := value.Fields()
	if err != nil {
		return fmt.Errorf("%s: %s", filename, describe(err))
	}
	for fields.Next() {
		key := fields.Selector().Unquoted()
		def, known := definitions[key]
		if !known {
			if opts.Compat {
				continue
			}
			return fmt.Errorf("%s: unknown key %q", filename, key)
		}

		field := defs.LookupPath(cue.ParsePath(def)).Unify(fields.Value())
		if err := field.Validate(cue.Concrete(true)); err != nil {
			return fmt.Errorf("%s: bad setting %q: %s", filename, key, describe(err))
		}
		if err := apply(result, key, field, opts); err != nil {
			return fmt.Errorf("%s: bad setting %q: %w", filename, key, err)
		}
	}
	return nil
}

func apply(result *Config, key string, field cue.Value, opts Options) error {
	switch key {
	case "languageMode":
		var mode string
		if err := field.Decode(&mode); err != nil {
			return err
		}
		result.LanguageMode = Mode(mode)

	case "lintErrors":
		return field.Decode(&result.LintErrors)

	case "typeErrors":
		return field.Decode(&result.TypeErrors)

	case "globals":
		var globals []string
		if err := field.Decode(&globals); err != nil {
			return err
		}
		for _, g := range globals {
			if !slices.Contains(result.Globals, g) {
				result.Globals = append(result.Globals, g)
			}
		}

	case "lint":
		return eachField(field, func(name string, v cue.Value) error {
			var enabled bool
			if err := v.Decode(&enabled); err != nil {
				return err
			}
			return setLint(result, name, enabled)
		})

	case "aliases":
		return eachField(field, func(name string, v cue.Value) error {
			var target string
			if err := v.Decode(&target); err != nil {
				return err
			}
			return setAlias(result, name, target, opts)
		})
	}
	return nil
}

func eachField(v cue.Value, fn func(name string, v cue.Value) error) error {
	fields, err := v.Fields()
	if err != nil {
		return err
	}
	for fields.Next() {
		if err := fn(fields.Selector().Unquoted(), fields.Value()); err != nil {
			return err
		}
	}
	return nil
}

func setLint(result *Config, name string, enabled bool) error {
	if result.Lint == nil {
		result.Lint = make(map[string]bool, len(Lints))
	}
	if name == "*" {
		for _, lint := range Lints {
			result.Lint[lint] = enabled
		}
		return nil
	}
	if !slices.Contains(Lints, name) {
		return fmt.Errorf("unknown lint %q", name)
	}
	result.Lint[name] = enabled
	return nil
}

func setAlias(result *Config, name, target string, opts Options) error {
	if err := validateAlias(name); err != nil {
		return err
	}
	if result.Aliases == nil {
		result.Aliases = make(map[string]Alias)
	}
	key := strings.ToLower(name)
	if _, exists := result.Aliases[key]; exists && !opts.OverwriteAliases {
		return nil
	}
	result.Aliases[key] = Alias{
		Value:          target,
		ConfigLocation: opts.ConfigLocation,
		OriginalCase:   name,
	}
	return nil
}

func validateAlias(name string) error {
	switch strings.ToLower(name) {
	case "", ".", "..":
		return fmt.Errorf("invalid alias %q", name)
	case "self":
		return fmt.Errorf("alias %q is reserved", name)
	}
	for _, r := range name {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !isAlnum && r != '-' && r != '_' && r != '.' {
			return fmt.Errorf("invalid alias %q: character %q is not allowed", name, r)
		}
	}
	return nil
}

// describe flattens CUE errors into one message, each problem prefixed with
// line and column where CUE knows them.
func describe(err error) string {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err.Error()
	}

	lines := make([]string, 0, len(errs))
	for _, e := range errs {
		msg := e.Error()
		if pos := e.Position(); pos.IsValid() {
			msg = fmt.Sprintf("%d:%d: %s", pos.Line(), pos.Column(), msg)
		}
		lines = append(lines, msg)
	}
	return strings.Join(lines, "; ")
}
