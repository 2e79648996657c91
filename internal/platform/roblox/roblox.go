// Package roblox implements a platform whose module names are paths in a
// Roblox instance tree (for example `game/ReplicatedStorage/Shared/Util`)
// backed by files through a Rojo sourcemap.
package roblox

import (
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/Barocena/luau-lsp/internal/navigation"
	"github.com/Barocena/luau-lsp/internal/parser"
	"github.com/Barocena/luau-lsp/internal/platform"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/spf13/afero"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("luau-lsp.platform.roblox")

// Platform resolves instance paths through a sourcemap and falls back to
// the filesystem for everything else.
type Platform struct {
	*platform.Standard

	root          string
	sourcemapPath string

	mu        sync.RWMutex
	sourcemap *sourcemap
}

// New returns a platform for the workspace at root. The sourcemap is read
// from sourcemapPath, relative paths being taken from root. Call Reload to
// load it.
func New(fs afero.Fs, root, sourcemapPath string) *Platform {
	root = navigation.NormalizePath(root)
	return &Platform{
		Standard:      platform.NewStandard(fs),
		root:          root,
		sourcemapPath: absolutize(root, sourcemapPath),
	}
}

// SourcemapPath is the absolute path of the sourcemap file.
func (p *Platform) SourcemapPath() string {
	return p.sourcemapPath
}

// Reload re-reads the sourcemap. On failure the previous mapping is dropped
// so stale virtual paths do not linger.
func (p *Platform) Reload() error {
	data, err := afero.ReadFile(p.Fs(), p.sourcemapPath)
	if err != nil {
		p.setSourcemap(nil)
		return fmt.Errorf("failed to read sourcemap %s: %w", p.sourcemapPath, err)
	}
	sm, err := parseSourcemap(data, p.root)
	if err != nil {
		p.setSourcemap(nil)
		return err
	}
	p.setSourcemap(sm)
	log.Infof("loaded sourcemap %s (%d instances)", p.sourcemapPath, len(sm.byVirtual))
	return nil
}

func (p *Platform) setSourcemap(sm *sourcemap) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sourcemap = sm
}

// Node returns the sourcemap node for a virtual path.
func (p *Platform) Node(virtualPath string) (*SourceNode, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.sourcemap == nil {
		return nil, false
	}
	node, ok := p.sourcemap.byVirtual[virtualPath]
	return node, ok
}

func (p *Platform) IsVirtualPath(name string) bool {
	for _, root := range []string{"game", "ProjectRoot"} {
		if name == root || strings.HasPrefix(name, root+"/") {
			return true
		}
	}
	return false
}

func (p *Platform) ResolveToVirtualPath(realPath string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.sourcemap == nil {
		return "", false
	}
	node, ok := p.sourcemap.byReal[navigation.NormalizePath(realPath)]
	if !ok {
		return "", false
	}
	return node.virtualPath, true
}

func (p *Platform) ResolveToRealPath(name string) (string, bool) {
	if !p.IsVirtualPath(name) {
		return p.Standard.ResolveToRealPath(name)
	}
	node, ok := p.Node(name)
	if !ok {
		return "", false
	}
	return node.ScriptFilePath()
}

func (p *Platform) SourceCodeTypeFromPath(filePath string) platform.SourceKind {
	stem := strings.TrimSuffix(strings.TrimSuffix(filePath, ".luau"), ".lua")
	switch {
	case stem != filePath && strings.HasSuffix(stem, ".server"):
		return platform.SourceScript
	case stem != filePath && strings.HasSuffix(stem, ".client"):
		return platform.SourceLocalScript
	case stem != filePath, strings.HasSuffix(filePath, ".json"):
		return platform.SourceModule
	}
	return platform.SourceNone
}

func (p *Platform) ReadSourceCode(name, realPath string) (string, bool) {
	if !strings.HasSuffix(realPath, ".json") {
		return p.Standard.ReadSourceCode(name, realPath)
	}
	data, err := afero.ReadFile(p.Fs(), realPath)
	if err != nil {
		return "", false
	}
	source, err := jsonToLuau(data)
	if err != nil {
		log.Warningf("%s: %v", realPath, err)
		return "", false
	}
	return source, true
}

// ResolveModule understands string requires and instance expressions such
// as `script.Parent.Util` or `game:GetService("ReplicatedStorage").Shared`.
func (p *Platform) ResolveModule(context *platform.ModuleInfo, expr platform.Expr) (platform.ModuleInfo, bool) {
	if context == nil || len(expr.Nodes) == 0 {
		return platform.ModuleInfo{}, false
	}

	if literal, ok := platform.StringLiteral(expr); ok {
		requirerPath, ok := p.ResolveToRealPath(context.Name)
		if !ok {
			return platform.ModuleInfo{}, false
		}
		info, ok := p.ResolveRequire(context.Name, requirerPath, literal)
		if !ok {
			return platform.ModuleInfo{}, false
		}
		if virtual, ok := p.ResolveToVirtualPath(info.Name); ok {
			info.Name = virtual
		}
		return info, true
	}

	e := instanceEvaluator{platform: p, context: context.Name, source: expr.Source}
	name, ok := e.eval(expr.Nodes)
	if !ok {
		return platform.ModuleInfo{}, false
	}
	return platform.ModuleInfo{Name: name, Optional: e.optional}, true
}

// instanceEvaluator folds an instance expression into a virtual path. The
// grammar lays a suffixed expression out as a flat run of siblings
// (`script` `.` `Parent` `[` "Util" `]`), parentheses as `left_paren` and
// `right_paren` tokens within the run, and method calls as nested
// function_call nodes.
type instanceEvaluator struct {
	platform *Platform
	context  string
	source   []byte
	optional bool
}

func (e *instanceEvaluator) eval(nodes []*sitter.Node) (string, bool) {
	base, rest, ok := e.primary(nodes)
	if !ok {
		return "", false
	}

	for len(rest) > 0 {
		var field string
		switch rest[0].Type() {
		case ".":
			if len(rest) < 2 || rest[1].Type() != "identifier" {
				return "", false
			}
			field = rest[1].Content(e.source)
			rest = rest[2:]
		case "[":
			if len(rest) < 3 || rest[2].Type() != "]" {
				return "", false
			}
			key, ok := platform.StringLiteral(platform.Expr{Nodes: rest[1:2], Source: e.source})
			if !ok {
				return "", false
			}
			field = key
			rest = rest[3:]
		default:
			return "", false
		}

		if base, ok = e.index(base, field); !ok {
			return "", false
		}
	}
	return base, true
}

// primary evaluates the head of a run and returns what follows it.
func (e *instanceEvaluator) primary(nodes []*sitter.Node) (string, []*sitter.Node, bool) {
	if len(nodes) == 0 {
		return "", nil, false
	}

	head := nodes[0]
	switch head.Type() {
	case "identifier":
		switch head.Content(e.source) {
		case "script":
			if e.platform.IsVirtualPath(e.context) {
				return e.context, nodes[1:], true
			}
			name, ok := e.platform.ResolveToVirtualPath(e.context)
			return name, nodes[1:], ok
		case "game":
			return "game", nodes[1:], true
		}

	case "left_paren":
		depth := 0
		for i, n := range nodes {
			switch n.Type() {
			case "left_paren":
				depth++
			case "right_paren":
				depth--
				if depth == 0 {
					name, ok := e.eval(nodes[1:i])
					return name, nodes[i+1:], ok
				}
			}
		}

	case "function_call":
		name, ok := e.call(head)
		return name, nodes[1:], ok
	}
	return "", nil, false
}

// index applies `.field`. Parent walks up; Name is a string property,
// never a child instance.
func (e *instanceEvaluator) index(base, field string) (string, bool) {
	switch field {
	case "Parent":
		if !strings.Contains(base, "/") {
			return "", false
		}
		return path.Dir(base), true
	case "Name":
		return "", false
	}
	return base + "/" + field, true
}

// call handles `x:FindFirstChild("y")`, `x:WaitForChild("y")` and
// `game:GetService("y")`.
func (e *instanceEvaluator) call(node *sitter.Node) (string, bool) {
	var receiver []*sitter.Node
	var method string
	colon := false
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch {
		case node.FieldNameForChild(i) == "prefix":
			receiver = append(receiver, child)
		case child.Type() == "self_call_colon":
			colon = true
		case colon && method == "" && child.Type() == "identifier":
			method = child.Content(e.source)
		}
	}
	if !colon || method == "" {
		return "", false
	}

	base, ok := e.eval(receiver)
	if !ok {
		return "", false
	}
	arg := parser.FirstArgument(node.ChildByFieldName("args"))
	name, ok := platform.StringLiteral(platform.Expr{Nodes: arg, Source: e.source})
	if !ok {
		return "", false
	}

	switch method {
	case "FindFirstChild":
		e.optional = true
		return base + "/" + name, true
	case "WaitForChild":
		return base + "/" + name, true
	case "GetService":
		if base != "game" {
			return "", false
		}
		return base + "/" + name, true
	}
	return "", false
}
