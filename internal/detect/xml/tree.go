package xml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"parsegate/internal/domain"
)

// node is one element of the decoded document tree. Only structure and text
// are kept; attributes and namespaces are irrelevant to case detection.
type node struct {
	name     string
	text     string
	children []*node
}

// parseTree decodes XML content into a node tree, returning
// ErrDocumentUnreadable on malformed input.
func parseTree(content []byte) (*node, error) {
	dec := xml.NewDecoder(bytes.NewReader(content))
	var stack []*node
	var root *node

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrDocumentUnreadable, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{name: t.Name.Local}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("%w: multiple root elements", domain.ErrDocumentUnreadable)
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("%w: unbalanced end element", domain.ErrDocumentUnreadable)
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text += string(t)
			}
		}
	}
	if root == nil {
		return nil, fmt.Errorf("%w: no root element", domain.ErrDocumentUnreadable)
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("%w: truncated document", domain.ErrDocumentUnreadable)
	}
	return root, nil
}

func (n *node) value() string {
	return strings.TrimSpace(n.text)
}

// walk visits every node in document order.
func (n *node) walk(fn func(*node)) {
	fn(n)
	for _, c := range n.children {
		c.walk(fn)
	}
}

func (n *node) countElements() int {
	count := 0
	n.walk(func(*node) { count++ })
	return count
}

func (n *node) depth() int {
	max := 0
	for _, c := range n.children {
		if d := c.depth(); d > max {
			max = d
		}
	}
	return max + 1
}

// descendants returns every node in the subtree (self included) with the
// given element name, in document order.
func (n *node) descendants(name string) []*node {
	var out []*node
	n.walk(func(m *node) {
		if m.name == name {
			out = append(out, m)
		}
	})
	return out
}

func (n *node) childrenNamed(name string) []*node {
	var out []*node
	for _, c := range n.children {
		if c.name == name {
			out = append(out, c)
		}
	}
	return out
}
