package engine

import (
	"sort"
	"strings"
)

type treeNode struct {
	name     string
	dir      bool
	children map[string]*treeNode
}

func (n *treeNode) child(name string, dir bool) *treeNode {
	if n.children == nil {
		n.children = make(map[string]*treeNode)
	}
	c, ok := n.children[name]
	if !ok {
		c = &treeNode{name: name, dir: dir}
		n.children[name] = c
	}
	return c
}

// sorted returns children with directories first, each group by name.
func (n *treeNode) sorted() []*treeNode {
	out := make([]*treeNode, 0, len(n.children))
	for _, c := range n.children {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].dir != out[j].dir {
			return out[i].dir
		}
		return out[i].name < out[j].name
	})
	return out
}

// renderTree draws the directory structure implied by paths (slash
// separated, relative to the root). Only maxDepth levels below the root
// are drawn; maxDepth 0 draws the root alone.
func renderTree(rootName string, paths []string, maxDepth int) string {
	root := &treeNode{name: rootName, dir: true}
	for _, p := range paths {
		parts := strings.Split(p, "/")
		node := root
		for i, part := range parts {
			node = node.child(part, i < len(parts)-1)
		}
	}

	var sb strings.Builder
	sb.WriteString(rootName + "/\n")
	writeTree(&sb, root, "", 1, maxDepth)
	return strings.TrimSuffix(sb.String(), "\n")
}

func writeTree(sb *strings.Builder, n *treeNode, prefix string, depth, maxDepth int) {
	if depth > maxDepth {
		return
	}
	children := n.sorted()
	for i, c := range children {
		last := i == len(children)-1
		connector, indent := "├── ", "│   "
		if last {
			connector, indent = "└── ", "    "
		}
		name := c.name
		if c.dir {
			name += "/"
		}
		sb.WriteString(prefix + connector + name + "\n")
		if c.dir {
			writeTree(sb, c, prefix+indent, depth+1, maxDepth)
		}
	}
}
