package document

import (
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func TestApplyChange(t *testing.T) {
	doc := New("file:///proj/a.luau", LanguageID, 1, "local a = require('./b')\n")

	edit, err := doc.ApplyChange(protocol.TextDocumentContentChangeEvent{
		Range: &protocol.Range{
			Start: protocol.Position{Line: 0, Character: 21},
			End:   protocol.Position{Line: 0, Character: 22},
		},
		Text: "c",
	}, 2)
	require.NoError(t, err)
	require.NotNil(t, edit)
	assert.Equal(t, uint32(21), edit.StartIndex)
	assert.Equal(t, "local a = require('./c')\n", doc.Text())
	assert.Equal(t, protocol.Integer(2), doc.Version())

	edit, err = doc.ApplyChange(protocol.TextDocumentContentChangeEvent{Text: "return 1"}, 3)
	require.NoError(t, err)
	assert.Nil(t, edit)
	assert.Equal(t, "return 1", doc.Text())

	edit, err = doc.ApplyChange(protocol.TextDocumentContentChangeEventWhole{Text: "return 2"}, 4)
	require.NoError(t, err)
	assert.Nil(t, edit)
	assert.Equal(t, "return 2", doc.Text())
	assert.Equal(t, protocol.Integer(4), doc.Version())

	_, err = doc.ApplyChange("return 3", 5)
	assert.Error(t, err)
	assert.Equal(t, "return 2", doc.Text())
	assert.Equal(t, protocol.Integer(4), doc.Version())
}

func TestOffsets(t *testing.T) {
	doc := New("file:///proj/a.luau", LanguageID, 0, "-- é\nreturn 1")
	assert.Equal(t, 6, doc.OffsetAt(protocol.Position{Line: 1, Character: 0}))
	assert.Equal(t, 5, doc.OffsetAt(protocol.Position{Line: 0, Character: 4}))
	assert.Equal(t, protocol.Position{Line: 0, Character: 4}, doc.PositionAt(sitter.Point{Row: 0, Column: 5}))
}

func TestHandle(t *testing.T) {
	doc := New("file:///proj/a.luau", LanguageID, 0, "")

	borrowed := Borrow(doc)
	assert.True(t, borrowed.Valid())
	assert.False(t, borrowed.IsOwned())
	assert.Same(t, doc, borrowed.Document())

	owned := Own(doc)
	assert.True(t, owned.IsOwned())

	var empty Handle
	assert.False(t, empty.Valid())
	assert.False(t, Own(nil).IsOwned())
}
