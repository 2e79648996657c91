// Package requirer drives a navigation.Context through a require-by-string
// path such as "./sibling", "../up/module", "@self/child" or "@alias/mod".
package requirer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Barocena/luau-lsp/internal/navigation"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("luau-lsp.requirer")

var (
	ErrNotFound      = errors.New("requirer: module not found")
	ErrAmbiguous     = errors.New("requirer: ambiguous module")
	ErrInvalidPrefix = errors.New("requirer: require path must start with ./, ../ or @")
	ErrUnknownAlias  = errors.New("requirer: unknown alias")
)

// AliasLookup expands an alias name (without `@`) to an absolute path.
type AliasLookup func(name string) (string, bool)

// Result is where a require path led.
type Result struct {
	// Path is the concrete file when Present, otherwise a best guess.
	Path string
	// Present reports whether Path is an existing file.
	Present bool
}

// Resolve walks nav along requirePath.
func Resolve(nav *navigation.Context, requirePath string, aliases AliasLookup) (Result, error) {
	requirePath = strings.ReplaceAll(requirePath, `\`, "/")
	head, rest, _ := strings.Cut(requirePath, "/")

	switch {
	case head == "." || head == "..":
		if err := move(nav, nav.ResetToRequirer); err != nil {
			return Result{}, err
		}
		if err := move(nav, nav.ToParent); err != nil {
			return Result{}, err
		}
		rest = requirePath

	case head == "@self":
		if err := move(nav, nav.ResetToRequirer); err != nil {
			return Result{}, err
		}

	case strings.HasPrefix(head, "@") && len(head) > 1:
		name := strings.ToLower(head[1:])
		if aliases == nil {
			return Result{}, fmt.Errorf("%w: @%s", ErrUnknownAlias, name)
		}
		target, ok := aliases(name)
		if !ok {
			return Result{}, fmt.Errorf("%w: @%s", ErrUnknownAlias, name)
		}
		if err := move(nav, func() navigation.Result { return nav.JumpToAlias(target) }); err != nil {
			return Result{}, fmt.Errorf("alias @%s -> %s: %w", name, target, err)
		}

	default:
		return Result{}, fmt.Errorf("%w: %q", ErrInvalidPrefix, requirePath)
	}

	for _, component := range strings.Split(rest, "/") {
		var err error
		switch component {
		case "", ".":
			continue
		case "..":
			err = move(nav, nav.ToParent)
		default:
			err = move(nav, func() navigation.Result { return nav.ToChild(component) })
		}
		if err != nil {
			return Result{}, fmt.Errorf("%q at %q: %w", requirePath, component, err)
		}
	}

	if nav.IsModulePresent() {
		return Result{Path: nav.ResolvedPath(), Present: true}, nil
	}
	log.Debugf("%q did not resolve to a file, falling back to %s", requirePath, nav.FallbackPath())
	return Result{Path: nav.FallbackPath(), Present: false}, nil
}

// move performs one navigation call. A NotFound that still moved the module
// path is tolerated so the walk can continue lexically toward a fallback.
func move(nav *navigation.Context, navigate func() navigation.Result) error {
	before := nav.ModulePath()
	status := navigate()
	if status == navigation.NotFound && nav.ModulePath() != before {
		return nil
	}
	return step(nav, status)
}

func step(nav *navigation.Context, status navigation.Result) error {
	switch status {
	case navigation.Ambiguous:
		return fmt.Errorf("%w: %s", ErrAmbiguous, nav.ModulePath())
	case navigation.NotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, nav.ModulePath())
	}
	return nil
}
