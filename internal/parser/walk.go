package parser

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

type segment struct {
	key   string
	index int
}

// pathFor rebuilds the key of the value node by walking up to the root.
// Entries contribute "key" segments, items of a sequence contribute "[i]".
func (g *Grammar) pathFor(value *sitter.Node, source []byte) string {
	var segments []segment // leaf first

	for n := value; n != nil; n = n.Parent() {
		parent := n.Parent()
		if g.isEntry(n) {
			if key := g.entryKey(n); key != nil {
				segments = append(segments, segment{key: g.keyText(key, source), index: -1})
				continue
			}
		}
		if parent != nil && g.isSequence(parent) {
			segments = append(segments, segment{index: g.ordinal(parent, n)})
		}
	}

	var b strings.Builder
	for i := len(segments) - 1; i >= 0; i-- {
		s := segments[i]
		if s.index >= 0 {
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(s.index))
			b.WriteByte(']')
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s.key)
	}
	return b.String()
}

func (g *Grammar) entryKey(entry *sitter.Node) *sitter.Node {
	if g.KeyField != "" {
		return entry.ChildByFieldName(g.KeyField)
	}
	if entry.NamedChildCount() < 2 {
		return nil
	}
	return entry.NamedChild(0)
}

// ordinal returns the position of child among the children of parent.
func (g *Grammar) ordinal(parent *sitter.Node, child *sitter.Node) int {
	idx := 0
	for i := 0; i < int(parent.ChildCount()); i++ {
		c := parent.Child(i)
		if c == nil {
			continue
		}
		if sameNode(c, child) {
			return idx
		}
		if g.Ordinal == CountAllChildren || (c.IsNamed() && !c.IsExtra()) {
			idx++
		}
	}
	return idx
}

func sameNode(a *sitter.Node, b *sitter.Node) bool {
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

// keyText returns the text of the first string node inside key, or of key
// itself when there is none.
func (g *Grammar) keyText(key *sitter.Node, source []byte) string {
	if n := g.findString(key); n != nil {
		return g.unquote(n.Content(source))
	}
	return g.unquote(key.Content(source))
}

func (g *Grammar) findString(n *sitter.Node) *sitter.Node {
	if g.isString(n) {
		return n
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c != nil {
			if found := g.findString(c); found != nil {
				return found
			}
		}
	}
	return nil
}
