package platform

import (
	"strings"

	"github.com/Barocena/luau-lsp/internal/navigation"
	"github.com/Barocena/luau-lsp/internal/requirer"

	"github.com/spf13/afero"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("luau-lsp.platform")

// Standard is the platform for projects whose filesystem is the truth:
// every module name is a real path.
type Standard struct {
	fs      afero.Afero
	configs ConfigProvider
}

// NewStandard returns a filesystem platform reading through fs.
func NewStandard(fs afero.Fs) *Standard {
	return &Standard{fs: afero.Afero{Fs: fs}}
}

// SetConfigProvider wires the config cascade used to expand aliases.
func (p *Standard) SetConfigProvider(configs ConfigProvider) {
	p.configs = configs
}

// Fs returns the filesystem the platform reads from.
func (p *Standard) Fs() afero.Fs {
	return p.fs.Fs
}

func (p *Standard) ResolveToVirtualPath(string) (string, bool) {
	return "", false
}

func (p *Standard) IsVirtualPath(string) bool {
	return false
}

func (p *Standard) ResolveToRealPath(name string) (string, bool) {
	if !navigation.IsAbsolutePath(name) {
		return "", false
	}
	return navigation.NormalizePath(name), true
}

func (p *Standard) SourceCodeTypeFromPath(path string) SourceKind {
	if navigation.HasSourceSuffix(path) {
		return SourceModule
	}
	return SourceNone
}

func (p *Standard) ReadSourceCode(_, realPath string) (string, bool) {
	contents, err := p.fs.ReadFile(realPath)
	if err != nil {
		log.Debugf("reading %s: %v", realPath, err)
		return "", false
	}
	return string(contents), true
}

// ResolveModule handles string-literal requires only.
func (p *Standard) ResolveModule(context *ModuleInfo, expr Expr) (ModuleInfo, bool) {
	if context == nil {
		return ModuleInfo{}, false
	}
	literal, ok := StringLiteral(expr)
	if !ok {
		return ModuleInfo{}, false
	}
	requirerPath, ok := p.ResolveToRealPath(context.Name)
	if !ok {
		return ModuleInfo{}, false
	}
	return p.ResolveRequire(context.Name, requirerPath, literal)
}

// ResolveRequire runs require-by-string resolution for requirePath issued
// by the file at requirerPath. Aliases come from the configuration of
// contextName.
func (p *Standard) ResolveRequire(contextName, requirerPath, requirePath string) (ModuleInfo, bool) {
	nav := navigation.NewContext(p.fs.Fs, requirerPath)
	aliases := func(name string) (string, bool) {
		if p.configs == nil {
			return "", false
		}
		return p.configs.Config(contextName).ResolveAlias(name)
	}

	result, err := requirer.Resolve(nav, requirePath, aliases)
	if err != nil {
		log.Debugf("require %q from %s: %v", requirePath, requirerPath, err)
		return ModuleInfo{}, false
	}
	return ModuleInfo{Name: result.Path}, true
}

// StringLiteral extracts the value of a Lua string literal expression,
// including the argument of a parenthesis-less call such as `require "x"`.
func StringLiteral(expr Expr) (string, bool) {
	if len(expr.Nodes) != 1 {
		return "", false
	}
	switch expr.Nodes[0].Type() {
	case "string", "string_argument":
		return unquote(expr.Content())
	}
	return "", false
}

func unquote(s string) (string, bool) {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1], true
	}
	if strings.HasPrefix(s, "[") {
		level := strings.IndexByte(s[1:], '[')
		if level < 0 || strings.Trim(s[1:level+1], "=") != "" {
			return "", false
		}
		closing := "]" + strings.Repeat("=", level) + "]"
		body := s[level+2:]
		if !strings.HasSuffix(body, closing) {
			return "", false
		}
		return strings.TrimSuffix(body, closing), true
	}
	return "", false
}
