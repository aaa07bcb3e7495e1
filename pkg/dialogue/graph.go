// Package dialogue implements the dialogue graph data model and the
// traversal state machine that walks it.
package dialogue

import (
	"errors"
	"fmt"
)

// NodeIndex addresses a node within a single graph.
type NodeIndex int

// Option is a labeled branch out of a node. A nil Target ends the dialogue.
type Option struct {
	Label  string     `json:"label" yaml:"label"`
	Target *NodeIndex `json:"target,omitempty" yaml:"target,omitempty"`
}

// Node is a single line of dialogue. When Options is non-empty the player
// picks a branch; otherwise Next is followed. A nil Next ends the dialogue.
type Node struct {
	Speaker string     `json:"speaker" yaml:"speaker"`
	Text    string     `json:"text" yaml:"text"`
	Options []Option   `json:"options,omitempty" yaml:"options,omitempty"`
	Next    *NodeIndex `json:"next,omitempty" yaml:"next,omitempty"`
}

// Graph is an immutable, validated collection of dialogue nodes. It is
// constructed once from authored content and never mutated at runtime, so
// any number of concurrent sessions may share it.
type Graph struct {
	ID    string `json:"id" yaml:"id"`
	Nodes []Node `json:"nodes" yaml:"nodes"`
}

var (
	// ErrInvalidArgument indicates a bad index or id at the call site.
	ErrInvalidArgument = errors.New("dialogue: invalid argument")
	// ErrInvalidState indicates an operation that is not valid in the
	// session's current state.
	ErrInvalidState = errors.New("dialogue: invalid state")
)

// Validate checks that every option target and fallthrough reference lands
// inside the graph. Authored content is validated once at load time;
// traversal assumes a valid graph.
func (g *Graph) Validate() error {
	if len(g.Nodes) == 0 {
		return fmt.Errorf("graph %q has no nodes", g.ID)
	}
	for i, node := range g.Nodes {
		for j, opt := range node.Options {
			if opt.Target != nil && !g.contains(*opt.Target) {
				return fmt.Errorf("graph %q node %d option %d: target %d out of range", g.ID, i, j, *opt.Target)
			}
		}
		if len(node.Options) == 0 && node.Next != nil && !g.contains(*node.Next) {
			return fmt.Errorf("graph %q node %d: next %d out of range", g.ID, i, *node.Next)
		}
	}
	return nil
}

// Node returns the node at the given index.
func (g *Graph) Node(i NodeIndex) (*Node, error) {
	if !g.contains(i) {
		return nil, fmt.Errorf("node index %d out of range [0,%d): %w", i, len(g.Nodes), ErrInvalidArgument)
	}
	return &g.Nodes[i], nil
}

func (g *Graph) contains(i NodeIndex) bool {
	return i >= 0 && int(i) < len(g.Nodes)
}
