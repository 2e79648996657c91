// Package document gives a uniform view of source text, whether it lives in
// an editor buffer or was read from disk.
package document

import (
	"fmt"
	"sync"

	"github.com/Barocena/luau-lsp/internal/sitteradapter"

	sitter "github.com/smacker/go-tree-sitter"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// LanguageID is the language kind every Luau document is tagged with.
const LanguageID = "luau"

// TextDocument is source text addressed by URI.
type TextDocument struct {
	mu         sync.RWMutex
	uri        protocol.DocumentUri
	languageID string
	version    protocol.Integer
	text       string
}

// New creates a document.
func New(uri protocol.DocumentUri, languageID string, version protocol.Integer, text string) *TextDocument {
	return &TextDocument{
		uri:        uri,
		languageID: languageID,
		version:    version,
		text:       text,
	}
}

func (d *TextDocument) URI() protocol.DocumentUri {
	return d.uri
}

func (d *TextDocument) LanguageID() string {
	return d.languageID
}

func (d *TextDocument) Version() protocol.Integer {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

func (d *TextDocument) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.text
}

// Update replaces the text. Only the owner of the document may call it.
func (d *TextDocument) Update(text string, version protocol.Integer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.text = text
	d.version = version
}

// ApplyChange applies one content change from a didChange notification.
// For a ranged change it returns the matching tree-sitter edit; a whole
// document replacement returns nil.
func (d *TextDocument) ApplyChange(change any, version protocol.Integer) (*sitter.EditInput, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch c := change.(type) {
	case protocol.TextDocumentContentChangeEvent:
		if c.Range == nil {
			d.text = c.Text
			d.version = version
			return nil, nil
		}
		edit := sitteradapter.Edit(d.text, *c.Range, c.Text)
		d.text = sitteradapter.Apply(d.text, *c.Range, c.Text)
		d.version = version
		return &edit, nil
	case protocol.TextDocumentContentChangeEventWhole:
		d.text = c.Text
		d.version = version
		return nil, nil
	}
	return nil, fmt.Errorf("unsupported content change %T", change)
}

// OffsetAt returns the byte offset of pos.
func (d *TextDocument) OffsetAt(pos protocol.Position) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	offset, _ := sitteradapter.Locate(d.text, pos)
	return offset
}

// PositionAt returns the position of a tree-sitter point.
func (d *TextDocument) PositionAt(pt sitter.Point) protocol.Position {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return sitteradapter.Position(d.text, pt)
}

// Handle refers to a document either borrowed from its owner or owned by
// the holder. Callers read through Document regardless of which.
type Handle struct {
	doc   *TextDocument
	owned bool
}

// Borrow wraps a document owned elsewhere, typically the editor session.
func Borrow(doc *TextDocument) Handle {
	return Handle{doc: doc}
}

// Own wraps a freshly built snapshot whose lifetime belongs to the caller.
func Own(doc *TextDocument) Handle {
	return Handle{doc: doc, owned: doc != nil}
}

// Document returns the referenced document, or nil for an empty handle.
func (h Handle) Document() *TextDocument {
	return h.doc
}

// Valid reports whether the handle refers to a document.
func (h Handle) Valid() bool {
	return h.doc != nil
}

// IsOwned reports whether the handle holds its own snapshot.
func (h Handle) IsOwned() bool {
	return h.owned
}
