package roblox

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/Barocena/luau-lsp/internal/navigation"
)

// SourceNode is one instance in a Rojo sourcemap.
type SourceNode struct {
	Name      string        `json:"name"`
	ClassName string        `json:"className"`
	FilePaths []string      `json:"filePaths,omitempty"`
	Children  []*SourceNode `json:"children,omitempty"`

	virtualPath string
}

// VirtualPath returns the slash-separated instance path of the node.
func (n *SourceNode) VirtualPath() string {
	return n.virtualPath
}

// ScriptFilePath returns the file backing the node's source, preferring Luau
// source over data files.
func (n *SourceNode) ScriptFilePath() (string, bool) {
	for _, p := range n.FilePaths {
		if navigation.HasSourceSuffix(p) {
			return p, true
		}
	}
	for _, p := range n.FilePaths {
		if strings.HasSuffix(p, ".json") && !strings.HasSuffix(p, ".meta.json") {
			return p, true
		}
	}
	return "", false
}

// sourcemap indexes a parsed sourcemap by virtual and real path.
type sourcemap struct {
	root      *SourceNode
	byVirtual map[string]*SourceNode
	byReal    map[string]*SourceNode
}

func parseSourcemap(data []byte, workspaceRoot string) (*sourcemap, error) {
	var root SourceNode
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse sourcemap: %w", err)
	}

	sm := &sourcemap{
		root:      &root,
		byVirtual: make(map[string]*SourceNode),
		byReal:    make(map[string]*SourceNode),
	}

	rootName := "ProjectRoot"
	if root.ClassName == "DataModel" {
		rootName = "game"
	}
	sm.index(&root, rootName, workspaceRoot)
	return sm, nil
}

func (sm *sourcemap) index(node *SourceNode, virtualPath, workspaceRoot string) {
	node.virtualPath = virtualPath
	sm.byVirtual[virtualPath] = node

	for i, p := range node.FilePaths {
		real := absolutize(workspaceRoot, p)
		node.FilePaths[i] = real
		if _, taken := sm.byReal[real]; !taken {
			sm.byReal[real] = node
		}
	}
	for _, child := range node.Children {
		sm.index(child, virtualPath+"/"+child.Name, workspaceRoot)
	}
}

func absolutize(root, p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	if navigation.IsAbsolutePath(p) {
		return navigation.NormalizePath(p)
	}
	return path.Join(root, p)
}
