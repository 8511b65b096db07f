package xml

import (
	"regexp"
	"strconv"
	"strings"
)

// Locator expressions are a small subset of XPath, matching the forms used
// by the catalog seeds:
//
//	/a/b/c          absolute child path (leading element may be the root)
//	//x             any descendant named x
//	//x/y           child path under any descendant x
//	count(EXPR)     number of nodes matched by EXPR
//	(EXPR)[n]       the n-th (1-based) node matched by EXPR
var indexedExpr = regexp.MustCompile(`^\((.+)\)\[(\d+)\]$`)

// evalLocator resolves a locator against the tree. It returns the matched
// nodes and, for count() locators, the literal count value.
func evalLocator(root *node, locator string) (matches []*node, countValue string) {
	locator = strings.TrimSpace(locator)
	if strings.HasPrefix(locator, "count(") && strings.HasSuffix(locator, ")") {
		inner := locator[len("count(") : len(locator)-1]
		nodes, _ := evalLocator(root, inner)
		return nodes, strconv.Itoa(len(nodes))
	}
	if m := indexedExpr.FindStringSubmatch(locator); m != nil {
		nodes, _ := evalLocator(root, m[1])
		idx, _ := strconv.Atoi(m[2])
		if idx >= 1 && idx <= len(nodes) {
			return nodes[idx-1 : idx], ""
		}
		return nil, ""
	}
	if strings.HasPrefix(locator, "//") {
		parts := strings.Split(strings.TrimPrefix(locator, "//"), "/")
		anchors := root.descendants(parts[0])
		return resolveChildPath(anchors, parts[1:]), ""
	}
	if strings.HasPrefix(locator, "/") {
		parts := strings.Split(strings.TrimPrefix(locator, "/"), "/")
		if len(parts) == 0 || parts[0] == "" {
			return nil, ""
		}
		// Seeds write paths from a logical root that may be either the
		// document root itself or a direct child of it.
		var anchors []*node
		if root.name == parts[0] {
			anchors = []*node{root}
		} else {
			anchors = root.childrenNamed(parts[0])
		}
		return resolveChildPath(anchors, parts[1:]), ""
	}
	return root.descendants(locator), ""
}

func resolveChildPath(anchors []*node, parts []string) []*node {
	current := anchors
	for _, part := range parts {
		if part == "" {
			continue
		}
		var next []*node
		for _, n := range current {
			next = append(next, n.childrenNamed(part)...)
		}
		current = next
	}
	return current
}

// leafName extracts the final element name of a locator, used for fuzzy
// near-miss reporting.
func leafName(locator string) string {
	locator = strings.TrimSpace(locator)
	if strings.HasPrefix(locator, "count(") && strings.HasSuffix(locator, ")") {
		return leafName(locator[len("count(") : len(locator)-1])
	}
	if m := indexedExpr.FindStringSubmatch(locator); m != nil {
		return leafName(m[1])
	}
	parts := strings.Split(strings.Trim(locator, "/"), "/")
	return parts[len(parts)-1]
}
