package domain

import (
	"path"
	"time"
)

// ContextNode is one entry of the install-root tree snapshot. Children keep directory order.
type ContextNode struct {
	Name     string        `json:"name"`
	Type     string        `json:"type"`
	Children []ContextNode `json:"children,omitempty"`
}

const (
	NodeDirectory = "directory"
	NodeFile      = "file"
)

// SystemContext is the snapshot of the deployment a request is evaluated against.
type SystemContext struct {
	Installed   bool          `json:"installed"`
	InstallRoot string        `json:"installRoot"`
	Structure   []ContextNode `json:"structure"`
	Services    []string      `json:"services"`
	Timestamp   time.Time     `json:"timestamp"`
}

// ContextMatch is a tree entry whose path contains a token mentioned in the request.
type ContextMatch struct {
	Path  string `json:"path"`
	Type  string `json:"type"`
	Token string `json:"token"`
}

// ContextAnalysis is the output of searching the snapshot for request mentions.
type ContextAnalysis struct {
	Mentions []string       `json:"mentions"`
	Matches  []ContextMatch `json:"matches"`
}

// Walk visits every node depth-first in stored order, passing its slash-joined path.
// Returning false from fn stops descent into that node's children.
func (s SystemContext) Walk(fn func(nodePath string, node ContextNode) bool) {
	var visit func(prefix string, nodes []ContextNode)
	visit = func(prefix string, nodes []ContextNode) {
		for _, node := range nodes {
			p := node.Name
			if prefix != "" {
				p = path.Join(prefix, node.Name)
			}
			if fn(p, node) && len(node.Children) > 0 {
				visit(p, node.Children)
			}
		}
	}
	visit("", s.Structure)
}

// CountNodes returns the number of files and directories in the snapshot.
func (s SystemContext) CountNodes() (files, dirs int) {
	s.Walk(func(_ string, node ContextNode) bool {
		if node.Type == NodeDirectory {
			dirs++
		} else {
			files++
		}
		return true
	})
	return files, dirs
}
