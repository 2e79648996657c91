// Package manager owns the documents the editor has open and keeps a syntax
// tree for each of them.
package manager

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Barocena/luau-lsp/internal/document"
	"github.com/Barocena/luau-lsp/internal/parser"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

var log = commonlog.GetLogger("luau-lsp.manager")

var ErrNotManaged = errors.New("manager: document is not open")

// DocumentManager encapsulates parser and document state for each open URI.
type DocumentManager struct {
	mu      sync.Mutex
	docs    map[protocol.DocumentUri]*document.TextDocument
	parsers map[protocol.DocumentUri]*parser.Parser
}

// NewDocumentManager creates an initialized DocumentManager.
func NewDocumentManager() *DocumentManager {
	return &DocumentManager{
		docs:    make(map[protocol.DocumentUri]*document.TextDocument),
		parsers: make(map[protocol.DocumentUri]*parser.Parser),
	}
}

// Open starts managing a document. Reopening a URI replaces its state.
func (dm *DocumentManager) Open(item protocol.TextDocumentItem) error {
	p, err := parser.NewParser([]byte(item.Text))
	if err != nil {
		return fmt.Errorf("failed to create parser for %s: %w", item.URI, err)
	}

	dm.mu.Lock()
	defer dm.mu.Unlock()
	if old, ok := dm.parsers[item.URI]; ok {
		old.Close()
	}
	dm.docs[item.URI] = document.New(item.URI, item.LanguageID, item.Version, item.Text)
	dm.parsers[item.URI] = p
	log.Debugf("opened %s (version %d)", item.URI, item.Version)
	return nil
}

// Change applies content changes in order and reparses the document.
func (dm *DocumentManager) Change(
	ctx context.Context,
	uri protocol.DocumentUri,
	version protocol.Integer,
	changes []any,
) error {
	doc, p, err := dm.lookup(uri)
	if err != nil {
		return err
	}

	var edits []sitter.EditInput
	full := false
	for _, change := range changes {
		edit, err := doc.ApplyChange(change, version)
		if err != nil {
			return fmt.Errorf("%s: %w", uri, err)
		}
		if edit == nil {
			full = true
		} else if !full {
			edits = append(edits, *edit)
		}
	}
	if full {
		edits = nil
	}
	return p.Update(ctx, []byte(doc.Text()), edits)
}

// Get returns the managed document for uri.
func (dm *DocumentManager) Get(uri protocol.DocumentUri) (*document.TextDocument, bool) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	doc, ok := dm.docs[uri]
	return doc, ok
}

// Inspect runs fn against the current syntax tree of uri.
func (dm *DocumentManager) Inspect(uri protocol.DocumentUri, fn func(doc *document.TextDocument, tree *parser.Tree) error) error {
	doc, p, err := dm.lookup(uri)
	if err != nil {
		return err
	}
	return p.Inspect(func(tree *parser.Tree) error {
		return fn(doc, tree)
	})
}

// URIs lists the managed documents.
func (dm *DocumentManager) URIs() []protocol.DocumentUri {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	uris := make([]protocol.DocumentUri, 0, len(dm.docs))
	for uri := range dm.docs {
		uris = append(uris, uri)
	}
	return uris
}

// Close stops managing uri and frees its parser.
func (dm *DocumentManager) Close(uri protocol.DocumentUri) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	if p, ok := dm.parsers[uri]; ok {
		p.Close()
	}
	delete(dm.parsers, uri)
	delete(dm.docs, uri)
}

// CloseAll cleans up all parsers.
func (dm *DocumentManager) CloseAll() error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	for uri, p := range dm.parsers {
		if err := p.Close(); err != nil {
			return fmt.Errorf("error closing parser for %s: %w", uri, err)
		}
	}
	dm.parsers = make(map[protocol.DocumentUri]*parser.Parser)
	dm.docs = make(map[protocol.DocumentUri]*document.TextDocument)
	return nil
}

func (dm *DocumentManager) lookup(uri protocol.DocumentUri) (*document.TextDocument, *parser.Parser, error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	doc, ok := dm.docs[uri]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotManaged, uri)
	}
	return doc, dm.parsers[uri], nil
}
