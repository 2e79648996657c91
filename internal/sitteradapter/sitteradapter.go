// Package sitteradapter converts between LSP positions, which count UTF-16
// code units, and the byte offsets and points tree-sitter works with.
package sitteradapter

import (
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Edit builds the tree-sitter edit describing the replacement of rng in
// text by newText.
func Edit(text string, rng protocol.Range, newText string) sitter.EditInput {
	startByte, startPoint := Locate(text, rng.Start)
	endByte, endPoint := Locate(text, rng.End)

	return sitter.EditInput{
		StartIndex:  uint32(startByte),
		OldEndIndex: uint32(endByte),
		NewEndIndex: uint32(startByte + len(newText)),
		StartPoint:  startPoint,
		OldEndPoint: endPoint,
		NewEndPoint: endPointAfter(startPoint, newText),
	}
}

// Apply replaces rng in text by newText using the same offsets as Edit.
func Apply(text string, rng protocol.Range, newText string) string {
	start, _ := Locate(text, rng.Start)
	end, _ := Locate(text, rng.End)
	if end < start {
		end = start
	}
	return text[:start] + newText + text[end:]
}

// Locate returns the byte offset and tree-sitter point of pos. Positions
// past the end of a line or of the text are clamped.
func Locate(text string, pos protocol.Position) (offset int, point sitter.Point) {
	line := uint32(0)
	for line < pos.Line {
		nl := strings.IndexByte(text[offset:], '\n')
		if nl < 0 {
			break
		}
		offset += nl + 1
		line++
	}

	rest := text[offset:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[:nl]
	}

	var units uint32
	column := 0
	for _, r := range rest {
		width := uint32(1)
		if r > 0xFFFF {
			width = 2
		}
		if units+width > pos.Character {
			break
		}
		units += width
		column += utf8.RuneLen(r)
	}
	return offset + column, sitter.Point{Row: line, Column: uint32(column)}
}

// Position converts a tree-sitter point in text back to an LSP position.
func Position(text string, pt sitter.Point) protocol.Position {
	offset := 0
	row := uint32(0)
	for row < pt.Row {
		nl := strings.IndexByte(text[offset:], '\n')
		if nl < 0 {
			break
		}
		offset += nl + 1
		row++
	}

	line := text[offset:]
	if nl := strings.IndexByte(line, '\n'); nl >= 0 {
		line = line[:nl]
	}
	if int(pt.Column) < len(line) {
		line = line[:pt.Column]
	}

	var units uint32
	for _, r := range line {
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
	}
	return protocol.Position{Line: row, Character: units}
}

// Span returns the LSP range between two tree-sitter points.
func Span(text string, start, end sitter.Point) protocol.Range {
	return protocol.Range{
		Start: Position(text, start),
		End:   Position(text, end),
	}
}

func endPointAfter(start sitter.Point, newText string) sitter.Point {
	lines := strings.Count(newText, "\n")
	if lines == 0 {
		return sitter.Point{Row: start.Row, Column: start.Column + uint32(len(newText))}
	}
	last := newText[strings.LastIndexByte(newText, '\n')+1:]
	return sitter.Point{Row: start.Row + uint32(lines), Column: uint32(len(last))}
}
