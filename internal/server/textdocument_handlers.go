package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/Barocena/luau-lsp/internal/document"
	"github.com/Barocena/luau-lsp/internal/manager"
	"github.com/Barocena/luau-lsp/internal/parser"
	"github.com/Barocena/luau-lsp/internal/platform"
	"github.com/Barocena/luau-lsp/internal/sitteradapter"

	"github.com/spf13/afero"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func (s *Server) textDocumentDidOpen(
	context *glsp.Context,
	params *protocol.DidOpenTextDocumentParams,
) error {
	return s.manager.Open(params.TextDocument)
}

func (s *Server) textDocumentDidChange(
	ctx *glsp.Context,
	params *protocol.DidChangeTextDocumentParams,
) error {
	err := s.manager.Change(
		context.Background(),
		params.TextDocument.URI,
		params.TextDocument.Version,
		params.ContentChanges,
	)
	return notManaged(err)
}

func (s *Server) textDocumentDidClose(
	context *glsp.Context,
	params *protocol.DidCloseTextDocumentParams,
) error {
	s.manager.Close(params.TextDocument.URI)
	return nil
}

// textDocumentDocumentLink links every require whose target exists.
func (s *Server) textDocumentDocumentLink(
	context *glsp.Context,
	params *protocol.DocumentLinkParams,
) ([]protocol.DocumentLink, error) {
	targets, err := s.requireTargets(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}

	links := make([]protocol.DocumentLink, 0, len(targets))
	for _, t := range targets {
		target := t.uri
		tooltip := t.name
		links = append(links, protocol.DocumentLink{
			Range:   t.rng,
			Target:  &target,
			Tooltip: &tooltip,
		})
	}
	return links, nil
}

// textDocumentDefinition jumps from a require argument to the module file.
func (s *Server) textDocumentDefinition(
	context *glsp.Context,
	params *protocol.DefinitionParams,
) (any, error) {
	targets, err := s.requireTargets(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}

	pos := params.Position
	for _, t := range targets {
		if contains(t.rng, pos) {
			return protocol.Location{URI: t.uri}, nil
		}
	}
	return nil, nil
}

type requireTarget struct {
	rng  protocol.Range
	name string
	uri  protocol.DocumentUri
}

// requireTargets resolves the require calls of a managed document, keeping
// those that lead to an existing file.
func (s *Server) requireTargets(uri protocol.DocumentUri) ([]requireTarget, error) {
	ws, err := s.Workspace()
	if err != nil {
		return nil, err
	}
	requirer := &platform.ModuleInfo{Name: ws.ModuleName(uri)}

	var targets []requireTarget
	err = s.manager.Inspect(uri, func(doc *document.TextDocument, tree *parser.Tree) error {
		calls, err := tree.Requires()
		if err != nil {
			return err
		}
		text := string(tree.Source())
		for _, call := range calls {
			info, ok := ws.ResolveModule(requirer, platform.Expr{Nodes: call.Argument, Source: tree.Source()})
			if !ok {
				continue
			}
			realPath, ok := ws.RealPath(info.Name)
			if !ok {
				continue
			}
			if exists, _ := afero.Exists(s.fs, realPath); !exists {
				log.Debugf("%s: require target %s does not exist", uri, realPath)
				continue
			}
			targets = append(targets, requireTarget{
				rng:  sitteradapter.Span(text, call.Argument.StartPoint(), call.Argument.EndPoint()),
				name: ws.HumanReadableModuleName(info.Name),
				uri:  ws.URI(info.Name),
			})
		}
		return nil
	})
	return targets, notManaged(err)
}

func notManaged(err error) error {
	if errors.Is(err, manager.ErrNotManaged) {
		return fmt.Errorf("%w: %v", ErrDocumentNotManaged, err)
	}
	return err
}

func contains(rng protocol.Range, pos protocol.Position) bool {
	before := func(a, b protocol.Position) bool {
		return a.Line < b.Line || (a.Line == b.Line && a.Character <= b.Character)
	}
	return before(rng.Start, pos) && before(pos, rng.End)
}
