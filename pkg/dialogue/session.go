package dialogue

import "fmt"

// State is the traversal state of a session.
type State string

const (
	// StateAwaitingAdvance means the current node has no options; a single
	// continue action moves to the fallthrough node (or ends).
	StateAwaitingAdvance State = "awaiting_advance"
	// StateAwaitingChoice means the current node's options are shown and
	// the session is waiting for a choice index.
	StateAwaitingChoice State = "awaiting_choice"
	// StateEnded is terminal.
	StateEnded State = "ended"
)

// NodeEntered is emitted to observers each time traversal enters a node.
type NodeEntered struct {
	Index        NodeIndex
	Speaker      string
	Text         string
	OptionLabels []string
}

// Observer receives traversal notifications. The presentation collaborator
// renders NodeEntered; the NPC binding reacts to Ended.
type Observer interface {
	NodeEntered(e NodeEntered)
	DialogueEnded()
}

// Session is the mutable state of one dialogue traversal. A session is owned
// by a single interaction flow; it is not safe for concurrent use.
type Session struct {
	graph     *Graph
	current   NodeIndex
	state     State
	observers []Observer
}

// Start begins a traversal of graph at startIndex and enters the start
// node's presentation state. Observers registered here receive the initial
// NodeEntered notification.
func Start(graph *Graph, startIndex NodeIndex, observers ...Observer) (*Session, error) {
	if !graph.contains(startIndex) {
		return nil, fmt.Errorf("start index %d out of range [0,%d): %w", startIndex, len(graph.Nodes), ErrInvalidArgument)
	}
	s := &Session{
		graph:     graph,
		observers: observers,
	}
	s.enter(startIndex)
	return s, nil
}

// Resume rebuilds a session positioned at node, recomputing the
// presentation state from the node itself. Used when rehydrating a session
// from storage; no NodeEntered notification is emitted.
func Resume(graph *Graph, node NodeIndex, observers ...Observer) (*Session, error) {
	if !graph.contains(node) {
		return nil, fmt.Errorf("resume index %d out of range [0,%d): %w", node, len(graph.Nodes), ErrInvalidArgument)
	}
	s := &Session{
		graph:     graph,
		current:   node,
		observers: observers,
	}
	s.state = presentationState(&graph.Nodes[node])
	return s, nil
}

// Subscribe registers an additional observer.
func (s *Session) Subscribe(o Observer) {
	s.observers = append(s.observers, o)
}

// Graph returns the graph this session traverses.
func (s *Session) Graph() *Graph { return s.graph }

// Current returns the index of the current node.
func (s *Session) Current() NodeIndex { return s.current }

// State returns the traversal state.
func (s *Session) State() State { return s.state }

// Ended reports whether the session has reached its terminal state.
func (s *Session) Ended() bool { return s.state == StateEnded }

// CurrentNode returns the node the session is positioned at.
func (s *Session) CurrentNode() *Node {
	return &s.graph.Nodes[s.current]
}

// Advance follows the current node's fallthrough. It is valid only in the
// awaiting-advance state. The returned index is the new current node, or -1
// when the dialogue ended.
func (s *Session) Advance() (NodeIndex, error) {
	if s.state != StateAwaitingAdvance {
		return -1, fmt.Errorf("advance in state %s: %w", s.state, ErrInvalidState)
	}
	next := s.CurrentNode().Next
	if next == nil {
		s.end()
		return -1, nil
	}
	s.enter(*next)
	return s.current, nil
}

// Choose follows the option at optionIndex. It is valid only in the
// awaiting-choice state, and fails without changing session state when the
// index is outside the current node's option range.
func (s *Session) Choose(optionIndex int) (NodeIndex, error) {
	if s.state != StateAwaitingChoice {
		return -1, fmt.Errorf("choose in state %s: %w", s.state, ErrInvalidState)
	}
	opts := s.CurrentNode().Options
	if optionIndex < 0 || optionIndex >= len(opts) {
		return -1, fmt.Errorf("option index %d out of range [0,%d): %w", optionIndex, len(opts), ErrInvalidArgument)
	}
	target := opts[optionIndex].Target
	if target == nil {
		s.end()
		return -1, nil
	}
	s.enter(*target)
	return s.current, nil
}

// Cancel force-ends the session from any state. Used for external
// interruption. Idempotent.
func (s *Session) Cancel() {
	if s.state == StateEnded {
		return
	}
	s.end()
}

func (s *Session) enter(i NodeIndex) {
	s.current = i
	node := &s.graph.Nodes[i]
	s.state = presentationState(node)

	e := NodeEntered{
		Index:   i,
		Speaker: node.Speaker,
		Text:    node.Text,
	}
	for _, opt := range node.Options {
		e.OptionLabels = append(e.OptionLabels, opt.Label)
	}
	for _, o := range s.observers {
		o.NodeEntered(e)
	}
}

func (s *Session) end() {
	s.state = StateEnded
	for _, o := range s.observers {
		o.DialogueEnded()
	}
}

// A node with options waits for a choice. Everything else waits for a
// single advance, including end-terminated nodes, so the final line can be
// read before the dialogue closes.
func presentationState(n *Node) State {
	if len(n.Options) > 0 {
		return StateAwaitingChoice
	}
	return StateAwaitingAdvance
}
