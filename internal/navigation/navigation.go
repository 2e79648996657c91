// Package navigation resolves require-by-string paths one component at a
// time against the real filesystem.
//
// A Context is bound to the file issuing the require. Every navigation call
// moves the logical module path and then re-resolves it to a concrete file
// or directory, refusing to choose between equally valid candidates.
package navigation

import (
	"fmt"
	"path"
	"strings"

	"github.com/Barocena/luau-lsp/internal/luauconfig"

	"github.com/spf13/afero"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("luau-lsp.navigation")

// Result is the outcome of a single navigation step.
type Result int

const (
	Success Result = iota
	Ambiguous
	NotFound
)

func (r Result) String() string {
	switch r {
	case Success:
		return "Success"
	case Ambiguous:
		return "Ambiguous"
	case NotFound:
		return "NotFound"
	}
	return fmt.Sprintf("Result(%d)", int(r))
}

// Context is the mutable state of one require resolution. It is created per
// require expression and discarded afterwards.
type Context struct {
	fs           afero.Fs
	requirerPath string
	modulePath   string
	realPath     string
}

// NewContext binds a context to the absolute path of the requiring file.
func NewContext(fs afero.Fs, requirerPath string) *Context {
	return &Context{fs: fs, requirerPath: requirerPath}
}

// ModulePath returns the current extension-less logical path.
func (c *Context) ModulePath() string {
	return c.modulePath
}

// ResetToRequirer moves to the module that issued the require.
func (c *Context) ResetToRequirer() Result {
	normalized := NormalizePath(c.requirerPath)
	if !IsAbsolutePath(normalized) {
		panic(fmt.Sprintf("navigation: requirer path %q is not absolute", c.requirerPath))
	}
	c.modulePath = ModulePath(normalized)
	return c.updateRealPath()
}

// JumpToAlias moves to an alias target. Alias targets are expanded to
// absolute paths before they get here, so relative input is rejected.
func (c *Context) JumpToAlias(target string) Result {
	if !IsAbsolutePath(target) {
		return NotFound
	}
	c.modulePath = ModulePath(NormalizePath(target))
	return c.updateRealPath()
}

// ToParent moves one component up. A single-component path has no parent.
func (c *Context) ToParent() Result {
	if c.modulePath == "/" {
		return NotFound
	}
	if strings.Count(c.modulePath, "/") <= 1 {
		return NotFound
	}

	c.modulePath = NormalizePath(c.modulePath + "/..")

	// Walking up a tree is never ambiguous.
	if status := c.updateRealPath(); status != Ambiguous {
		return status
	}
	return Success
}

// ToChild appends one component to the module path.
func (c *Context) ToChild(component string) Result {
	if component == ReservedDirectory {
		return NotFound
	}
	c.modulePath = NormalizePath(c.modulePath + "/" + component)
	return c.updateRealPath()
}

func (c *Context) updateRealPath() Result {
	realPath, status := c.resolveRealPath(c.modulePath)
	log.Debugf("resolved %s -> %s (%s)", c.modulePath, realPath, status)
	switch status {
	case Ambiguous:
		return Ambiguous
	case NotFound:
		c.realPath = ""
		return NotFound
	}
	c.realPath = realPath
	return Success
}

// resolveRealPath applies the suffix and init-file rules to modulePath.
func (c *Context) resolveRealPath(modulePath string) (string, Result) {
	found := false
	suffix := ""

	if path.Base(modulePath) != "init" {
		for _, candidate := range Suffixes {
			if !isFile(c.fs, modulePath+candidate) {
				continue
			}
			if found {
				return "", Ambiguous
			}
			suffix, found = candidate, true
		}
	}

	if isDirectory(c.fs, modulePath) {
		if found {
			return "", Ambiguous
		}
		for _, candidate := range InitSuffixes {
			if !isFile(c.fs, modulePath+candidate) {
				continue
			}
			if found {
				return "", Ambiguous
			}
			suffix, found = candidate, true
		}
		// A bare directory still resolves so navigation can continue into it.
		found = true
	}

	if !found {
		return "", NotFound
	}
	return modulePath + suffix, Success
}

// IsModulePresent reports whether the resolved path is a loadable file
// rather than a bare directory.
func (c *Context) IsModulePresent() bool {
	return c.realPath != "" && isFile(c.fs, c.realPath)
}

// ResolvedPath returns the concrete path of the last successful navigation.
func (c *Context) ResolvedPath() string {
	return c.realPath
}

// FallbackPath is a best guess for diagnostics when nothing exists on disk.
func (c *Context) FallbackPath() string {
	if c.modulePath == "" {
		return ""
	}
	return c.modulePath + Suffixes[0]
}

// configDirectory is the directory in which configuration for the current
// real path is looked up.
func (c *Context) configDirectory() string {
	return ModulePath(c.realPath)
}

// ConfigStatus reports which configuration files sit next to the current
// resolved module.
func (c *Context) ConfigStatus() ConfigStatus {
	return StatusOf(c.fs, c.configDirectory())
}

// Config returns the contents of the single configuration file present.
// Calling it when ConfigStatus is Absent or Ambiguous is a caller bug.
func (c *Context) Config() string {
	var name string
	switch status := c.ConfigStatus(); status {
	case ConfigPresentPrimary:
		name = luauconfig.ConfigName
	case ConfigPresentLegacy:
		name = luauconfig.LegacyConfigName
	default:
		panic(fmt.Sprintf("navigation: Config called with status %s", status))
	}

	contents, err := afero.ReadFile(c.fs, path.Join(c.configDirectory(), name))
	if err != nil {
		log.Warningf("reading %s: %v", name, err)
		return ""
	}
	return string(contents)
}

// Alias always reports nothing: aliases are expanded by the caller before
// JumpToAlias is invoked.
func (c *Context) Alias(string) (string, bool) {
	return "", false
}
