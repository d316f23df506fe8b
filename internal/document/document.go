// Package document keeps the text of open editor documents in sync with
// incremental edits and converts between byte offsets and LSP positions.
package document

import (
	"sort"
	"unicode/utf8"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Position is a zero-based line and UTF-16 character offset.
type Position = protocol.Position

// Range is a pair of positions, end exclusive.
type Range = protocol.Range

// Change is a single content change. A nil Range replaces the whole text.
type Change struct {
	Range *Range
	Text  string
}

// Document is one open text document. It is not safe for concurrent use;
// the Store serialises access.
type Document struct {
	URI        string
	LanguageID string
	Version    int32

	text string
	// byte offset of every line start, nil until first needed
	lineOffsets []int
}

// New creates a document holding text.
func New(uri string, languageID string, version int32, text string) *Document {
	return &Document{
		URI:        uri,
		LanguageID: languageID,
		Version:    version,
		text:       text,
	}
}

// Text returns the current content.
func (d *Document) Text() string {
	return d.text
}

// LineCount returns the number of lines, which is at least one.
func (d *Document) LineCount() int {
	return len(d.offsets())
}

// Update applies changes in order and sets the version.
func (d *Document) Update(changes []Change, version int32) {
	for _, change := range changes {
		if change.Range == nil {
			d.replace(change.Text)
			continue
		}
		d.splice(wellFormed(*change.Range), change.Text)
	}
	d.Version = version
}

func (d *Document) replace(text string) {
	d.text = text
	d.lineOffsets = nil
}

func (d *Document) splice(r Range, text string) {
	start := d.OffsetAt(r.Start)
	end := d.OffsetAt(r.End)
	old := d.text

	d.text = old[:start] + text + old[end:]

	// A carriage return next to either edge may join with or split from a
	// line feed, so the table cannot be patched locally.
	if (start > 0 && old[start-1] == '\r') ||
		(end < len(old) && old[end] == '\n') ||
		(len(text) > 0 && (text[0] == '\n' || text[len(text)-1] == '\r')) {
		d.lineOffsets = nil
		return
	}

	offsets := d.lineOffsets
	startLine := lineOf(offsets, start)
	endLine := lineOf(offsets, end)
	added := computeLineOffsets(text, false, start)
	delta := len(text) - (end - start)

	if endLine-startLine == len(added) {
		copy(offsets[startLine+1:], added)
	} else {
		updated := make([]int, 0, startLine+1+len(added)+len(offsets)-endLine-1)
		updated = append(updated, offsets[:startLine+1]...)
		updated = append(updated, added...)
		updated = append(updated, offsets[endLine+1:]...)
		offsets = updated
	}
	if delta != 0 {
		for i := startLine + 1 + len(added); i < len(offsets); i++ {
			offsets[i] += delta
		}
	}
	d.lineOffsets = offsets
}

// OffsetAt converts a position to a byte offset. The line is clamped to the
// document and the character to the line, counting the line break.
func (d *Document) OffsetAt(pos Position) int {
	offsets := d.offsets()
	if int(pos.Line) >= len(offsets) {
		return len(d.text)
	}
	lineStart := offsets[pos.Line]
	lineEnd := len(d.text)
	if int(pos.Line)+1 < len(offsets) {
		lineEnd = offsets[pos.Line+1]
	}

	offset := lineStart
	var units uint32
	for offset < lineEnd && units < pos.Character {
		r, size := utf8.DecodeRuneInString(d.text[offset:])
		n := utf16Len(r)
		if units+n > pos.Character {
			break
		}
		units += n
		offset += size
	}
	return offset
}

// PositionAt converts a byte offset to a position. The offset is clamped to
// the text and moved back to the start of the rune it falls in.
func (d *Document) PositionAt(offset int) Position {
	offset = max(0, min(offset, len(d.text)))
	for offset > 0 && offset < len(d.text) && !utf8.RuneStart(d.text[offset]) {
		offset--
	}
	offsets := d.offsets()
	line := lineOf(offsets, offset)

	var character uint32
	for _, r := range d.text[offsets[line]:offset] {
		character += utf16Len(r)
	}
	return Position{Line: uint32(line), Character: character}
}

func (d *Document) offsets() []int {
	if d.lineOffsets == nil {
		d.lineOffsets = computeLineOffsets(d.text, true, 0)
	}
	return d.lineOffsets
}

// lineOf returns the index of the last line starting at or before offset.
func lineOf(offsets []int, offset int) int {
	return sort.Search(len(offsets), func(i int) bool {
		return offsets[i] > offset
	}) - 1
}

// computeLineOffsets returns the offset just after every line break in text,
// shifted by base. "\r\n" counts as one break.
func computeLineOffsets(text string, atLineStart bool, base int) []int {
	var result []int
	if atLineStart {
		result = append(result, base)
	}
	for i := 0; i < len(text); i++ {
		ch := text[i]
		if ch != '\r' && ch != '\n' {
			continue
		}
		if ch == '\r' && i+1 < len(text) && text[i+1] == '\n' {
			i++
		}
		result = append(result, base+i+1)
	}
	return result
}

func utf16Len(r rune) uint32 {
	if r >= 0x10000 && r <= utf8.MaxRune {
		return 2
	}
	return 1
}

// wellFormed swaps start and end when end comes first.
func wellFormed(r Range) Range {
	if r.Start.Line > r.End.Line ||
		(r.Start.Line == r.End.Line && r.Start.Character > r.End.Character) {
		return Range{Start: r.End, End: r.Start}
	}
	return r
}
