// Package parser parses Luau source with tree-sitter and finds the require
// calls in it.
package parser

import (
	"context"
	"errors"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/lua"
)

var lang = lua.GetLanguage()

// requireQuery captures the arguments of every call whose callee starts
// with an identifier named require. Calls such as `x.require()` or
// `require:m()` also match and are filtered out by globalCall.
var requireQuery = sync.OnceValues(func() (*sitter.Query, error) {
	q, err := sitter.NewQuery([]byte(`
((function_call
   prefix: (identifier) @callee
   args: (_) @args)
 (#eq? @callee "require"))
`), lang)
	if err != nil {
		return nil, fmt.Errorf("failed to compile require query: %w", err)
	}
	return q, nil
})

var ErrNoTree = errors.New("parser: no parsed tree available")

// Argument is one call argument. The Lua grammar keeps a suffixed
// expression such as `script.Parent.Util` or `game["X"]` as a run of
// sibling nodes, punctuation included, so an argument is that run.
type Argument []*sitter.Node

func (a Argument) StartByte() uint32 {
	if len(a) == 0 {
		return 0
	}
	return a[0].StartByte()
}

func (a Argument) EndByte() uint32 {
	if len(a) == 0 {
		return 0
	}
	return a[len(a)-1].EndByte()
}

func (a Argument) StartPoint() sitter.Point {
	if len(a) == 0 {
		return sitter.Point{}
	}
	return a[0].StartPoint()
}

func (a Argument) EndPoint() sitter.Point {
	if len(a) == 0 {
		return sitter.Point{}
	}
	return a[len(a)-1].EndPoint()
}

// Content returns the source text spanned by the argument.
func (a Argument) Content(source []byte) string {
	if len(a) == 0 {
		return ""
	}
	return string(source[a.StartByte():a.EndByte()])
}

// FirstArgument returns the first argument of a call's `args` node. A
// string or table call (`require "x"`) is its own argument.
func FirstArgument(args *sitter.Node) Argument {
	if args == nil {
		return nil
	}
	if args.Type() != "function_arguments" {
		return Argument{args}
	}

	var arg Argument
	for i := 0; i < int(args.ChildCount()); i++ {
		child := args.Child(i)
		switch child.Type() {
		case ",":
			return arg
		case "comment":
			continue
		}
		arg = append(arg, child)
	}
	return arg
}

// RequireCall is one `require(...)` found in a source file.
type RequireCall struct {
	// Call is the whole call expression.
	Call *sitter.Node
	// Argument is the first argument, the expression naming the module.
	Argument Argument
}

// Tree is a parsed source file. Nodes obtained from it are valid until
// Close.
type Tree struct {
	tree   *sitter.Tree
	source []byte
}

func (t *Tree) Root() *sitter.Node {
	return t.tree.RootNode()
}

func (t *Tree) Source() []byte {
	return t.source
}

// Requires returns the require calls in source order.
func (t *Tree) Requires() ([]RequireCall, error) {
	return FindRequires(t.Root(), t.source)
}

func (t *Tree) Close() {
	if t.tree != nil {
		t.tree.Close()
		t.tree = nil
	}
}

// FindRequires runs the require query below root.
func FindRequires(root *sitter.Node, source []byte) ([]RequireCall, error) {
	q, err := requireQuery()
	if err != nil {
		return nil, err
	}

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(q, root)

	var calls []RequireCall
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		m = qc.FilterPredicates(m, source)

		var callee, args *sitter.Node
		for _, c := range m.Captures {
			switch q.CaptureNameForId(c.Index) {
			case "callee":
				callee = c.Node
			case "args":
				args = c.Node
			}
		}
		if callee == nil || args == nil {
			continue
		}
		call := args.Parent()
		if !globalCall(call, callee) {
			continue
		}
		arg := FirstArgument(args)
		if len(arg) == 0 {
			continue
		}
		calls = append(calls, RequireCall{Call: call, Argument: arg})
	}
	return calls, nil
}

// globalCall reports whether callee is the whole callee of call: the first
// child, followed only by the call's parentheses and arguments.
func globalCall(call, callee *sitter.Node) bool {
	if call == nil || call.ChildCount() == 0 || !call.Child(0).Equal(callee) {
		return false
	}
	for i := 1; i < int(call.ChildCount()); i++ {
		switch call.Child(i).Type() {
		case "function_call_paren", "function_arguments", "string_argument", "table_argument":
		default:
			return false
		}
	}
	return true
}

// Parser keeps the syntax tree of one document current across edits.
type Parser struct {
	mu     sync.Mutex
	parser *sitter.Parser
	tree   *Tree
}

// NewParser creates a Parser and parses initialText.
func NewParser(initialText []byte) (*Parser, error) {
	p := sitter.NewParser()
	p.SetLanguage(lang)
	parser := &Parser{parser: p}

	tree, err := p.ParseCtx(context.Background(), nil, initialText)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to parse initial text: %w", err)
	}
	parser.tree = &Tree{tree: tree, source: initialText}
	return parser, nil
}

// Update applies edits to the current tree and reparses text incrementally.
// An empty edit list reparses from scratch.
func (p *Parser) Update(ctx context.Context, text []byte, edits []sitter.EditInput) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.parser == nil {
		return ErrNoTree
	}

	var old *sitter.Tree
	if p.tree != nil && len(edits) > 0 {
		old = p.tree.tree
		for _, edit := range edits {
			old.Edit(edit)
		}
	}

	tree, err := p.parser.ParseCtx(ctx, old, text)
	if err != nil {
		return fmt.Errorf("failed to reparse: %w", err)
	}
	if p.tree != nil {
		p.tree.Close()
	}
	p.tree = &Tree{tree: tree, source: text}
	return nil
}

// Inspect calls fn with the current tree. The tree and its nodes must not
// be retained after fn returns.
func (p *Parser) Inspect(fn func(tree *Tree) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.tree == nil {
		return ErrNoTree
	}
	return fn(p.tree)
}

// Close frees the tree and the parser.
func (p *Parser) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tree != nil {
		p.tree.Close()
		p.tree = nil
	}
	if p.parser != nil {
		p.parser.Close()
		p.parser = nil
	}
	return nil
}

// ParserPool lends tree-sitter parsers for one-shot parses of files that
// are not open in the editor.
type ParserPool struct {
	pool chan *sitter.Parser
}

// NewParserPool creates a pool of n parsers.
func NewParserPool(n int) *ParserPool {
	if n < 1 {
		n = 1
	}
	pp := &ParserPool{pool: make(chan *sitter.Parser, n)}
	for i := 0; i < n; i++ {
		p := sitter.NewParser()
		p.SetLanguage(lang)
		pp.pool <- p
	}
	return pp
}

// Parse parses source with a pooled parser. The caller closes the tree.
func (pp *ParserPool) Parse(ctx context.Context, source []byte) (*Tree, error) {
	var p *sitter.Parser
	select {
	case p = <-pp.pool:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { pp.pool <- p }()

	tree, err := p.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, err
	}
	return &Tree{tree: tree, source: source}, nil
}

// Close releases every parser. The pool must not be used afterwards.
func (pp *ParserPool) Close() error {
	close(pp.pool)
	for p := range pp.pool {
		p.Close()
	}
	return nil
}
