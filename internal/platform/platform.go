// Package platform defines how a project maps module names onto files.
//
// A Platform owns every namespace-translation decision: whether a module
// name is virtual, which real file backs it, how source is read and how a
// require expression names its target. The workspace resolver stays
// filesystem-agnostic by going through this interface only.
package platform

import (
	"fmt"

	"github.com/Barocena/luau-lsp/internal/luauconfig"
	"github.com/Barocena/luau-lsp/internal/parser"
)

// SourceKind classifies a source file for the type checker.
type SourceKind int

const (
	SourceNone SourceKind = iota
	SourceModule
	SourceScript
	SourceLocalScript
)

func (k SourceKind) String() string {
	switch k {
	case SourceNone:
		return "None"
	case SourceModule:
		return "Module"
	case SourceScript:
		return "Script"
	case SourceLocalScript:
		return "LocalScript"
	}
	return fmt.Sprintf("SourceKind(%d)", int(k))
}

// ModuleInfo names a module a require expression points at.
type ModuleInfo struct {
	Name     string
	Optional bool
}

// Expr is a require argument together with the source it was parsed from.
type Expr struct {
	Nodes  parser.Argument
	Source []byte
}

// Content returns the source text of the expression.
func (e Expr) Content() string {
	return e.Nodes.Content(e.Source)
}

// Platform translates between module names and real files.
type Platform interface {
	ResolveToVirtualPath(realPath string) (string, bool)
	IsVirtualPath(name string) bool
	ResolveToRealPath(name string) (string, bool)
	SourceCodeTypeFromPath(path string) SourceKind
	ReadSourceCode(name, realPath string) (string, bool)
	ResolveModule(context *ModuleInfo, expr Expr) (ModuleInfo, bool)
}

// ConfigProvider supplies the effective Luau configuration of a module. The
// workspace resolver implements it; platforms use it to expand aliases.
type ConfigProvider interface {
	Config(moduleName string) luauconfig.Config
}
