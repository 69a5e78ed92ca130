package workspace

import (
	"sort"
	"strings"
)

type NodeKind string

const KindFile NodeKind = "file"

// FileTreeNode is the sidebar view of one file. Content is a snapshot that
// EditFile keeps current.
type FileTreeNode struct {
	Name    string
	Path    string
	Kind    NodeKind
	Content string
}

func buildNodes(files []GeneratedFile) []FileTreeNode {
	nodes := make([]FileTreeNode, len(files))
	for i, f := range files {
		nodes[i] = FileTreeNode{
			Name:    f.Name(),
			Path:    f.Path,
			Kind:    KindFile,
			Content: f.Content,
		}
	}
	return nodes
}

// RenderTree draws the file paths as a nested directory listing.
func (s *Store) RenderTree() string {
	s.mu.RLock()
	paths := make([]string, len(s.files))
	for i, f := range s.files {
		paths[i] = f.Path
	}
	s.mu.RUnlock()
	return renderPaths(paths)
}

type dirNode struct {
	name     string
	file     bool
	children map[string]*dirNode
}

func renderPaths(paths []string) string {
	root := &dirNode{children: map[string]*dirNode{}}
	for _, p := range paths {
		cur := root
		parts := strings.Split(strings.Trim(p, "/"), "/")
		for i, part := range parts {
			next, ok := cur.children[part]
			if !ok {
				next = &dirNode{name: part, children: map[string]*dirNode{}}
				cur.children[part] = next
			}
			if i == len(parts)-1 {
				next.file = true
			}
			cur = next
		}
	}

	var lines []string
	var walk func(prefix string, n *dirNode)
	walk = func(prefix string, n *dirNode) {
		keys := make([]string, 0, len(n.children))
		for k := range n.children {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for i, k := range keys {
			child := n.children[k]
			marker, indent := "├─ ", "│  "
			if i == len(keys)-1 {
				marker, indent = "└─ ", "   "
			}
			line := prefix + marker + child.name
			if !child.file {
				line += "/"
			}
			lines = append(lines, line)
			walk(prefix+indent, child)
		}
	}
	walk("", root)
	return strings.Join(lines, "\n")
}
