package sitteradapter

import (
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func TestLocate(t *testing.T) {
	text := "a😀b\nxy"

	tests := []struct {
		name   string
		pos    protocol.Position
		offset int
		point  sitter.Point
	}{
		{"start", protocol.Position{Line: 0, Character: 0}, 0, sitter.Point{Row: 0, Column: 0}},
		{"after surrogate pair", protocol.Position{Line: 0, Character: 3}, 5, sitter.Point{Row: 0, Column: 5}},
		{"inside surrogate pair", protocol.Position{Line: 0, Character: 2}, 1, sitter.Point{Row: 0, Column: 1}},
		{"end of line", protocol.Position{Line: 0, Character: 4}, 6, sitter.Point{Row: 0, Column: 6}},
		{"past end of line", protocol.Position{Line: 0, Character: 40}, 6, sitter.Point{Row: 0, Column: 6}},
		{"second line", protocol.Position{Line: 1, Character: 1}, 8, sitter.Point{Row: 1, Column: 1}},
		{"past end of text", protocol.Position{Line: 1, Character: 10}, 9, sitter.Point{Row: 1, Column: 2}},
		{"past last line", protocol.Position{Line: 5, Character: 0}, 7, sitter.Point{Row: 1, Column: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offset, point := Locate(text, tt.pos)
			assert.Equal(t, tt.offset, offset)
			assert.Equal(t, tt.point, point)
		})
	}
}

func TestPosition(t *testing.T) {
	text := "a😀b\nxy"
	assert.Equal(t, protocol.Position{Line: 0, Character: 3}, Position(text, sitter.Point{Row: 0, Column: 5}))
	assert.Equal(t, protocol.Position{Line: 0, Character: 4}, Position(text, sitter.Point{Row: 0, Column: 6}))
	assert.Equal(t, protocol.Position{Line: 1, Character: 2}, Position(text, sitter.Point{Row: 1, Column: 2}))
}

func TestSpan(t *testing.T) {
	text := "a😀b\nxy"
	assert.Equal(t, protocol.Range{
		Start: protocol.Position{Line: 0, Character: 3},
		End:   protocol.Position{Line: 1, Character: 1},
	}, Span(text, sitter.Point{Row: 0, Column: 5}, sitter.Point{Row: 1, Column: 1}))
}

func TestEdit(t *testing.T) {
	text := "local x = 1\nlocal y = 2\n"
	rng := protocol.Range{
		Start: protocol.Position{Line: 1, Character: 6},
		End:   protocol.Position{Line: 1, Character: 7},
	}

	edit := Edit(text, rng, "zz\nw")
	assert.Equal(t, sitter.EditInput{
		StartIndex:  18,
		OldEndIndex: 19,
		NewEndIndex: 22,
		StartPoint:  sitter.Point{Row: 1, Column: 6},
		OldEndPoint: sitter.Point{Row: 1, Column: 7},
		NewEndPoint: sitter.Point{Row: 2, Column: 1},
	}, edit)
	assert.Equal(t, "local x = 1\nlocal zz\nw = 2\n", Apply(text, rng, "zz\nw"))
}

func TestApplyInsertAndDelete(t *testing.T) {
	at := func(line, char uint32) protocol.Position {
		return protocol.Position{Line: line, Character: char}
	}
	assert.Equal(t, "ab😀c", Apply("a😀c", protocol.Range{Start: at(0, 1), End: at(0, 1)}, "b"))
	assert.Equal(t, "ac", Apply("a😀c", protocol.Range{Start: at(0, 1), End: at(0, 3)}, ""))
	// A reversed range inserts at its start.
	assert.Equal(t, "aXbc", Apply("abc", protocol.Range{Start: at(0, 1), End: at(0, 0)}, "X"))
}
