package synth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pipelined/synth/graph"
)

var (
	// ErrMissingSink is returned when graph has no sink node.
	ErrMissingSink = errors.New("missing sink node")
	// ErrAmbiguousSink is returned when graph has more than one sink node.
	ErrAmbiguousSink = errors.New("ambiguous sink node")
	// ErrCyclicGraph is returned when signal path contains a loop.
	ErrCyclicGraph = errors.New("cyclic graph")
	// ErrNodeEvaluation is returned when node function failed.
	ErrNodeEvaluation = errors.New("node evaluation failed")
	// ErrInvalidContext is returned when sink literals can't form render context.
	ErrInvalidContext = errors.New("invalid render context")
)

// SinkError is returned if graph doesn't have exactly one sink node.
type SinkError struct {
	Nodes []graph.NodeID
}

func (e *SinkError) Error() string {
	if len(e.Nodes) == 0 {
		return ErrMissingSink.Error()
	}
	s := make([]string, 0, len(e.Nodes))
	for _, id := range e.Nodes {
		s = append(s, string(id))
	}
	return fmt.Sprintf("%v: %s", ErrAmbiguousSink, strings.Join(s, ","))
}

// Is checks if error matches missing or ambiguous sink.
func (e *SinkError) Is(err error) bool {
	switch err {
	case ErrMissingSink:
		return len(e.Nodes) == 0
	case ErrAmbiguousSink:
		return len(e.Nodes) > 1
	}
	return false
}

// CycleError is returned when connection closes a loop on the signal path.
// Node is the node which input is fed by Source node, which is already
// being evaluated on the same path.
type CycleError struct {
	Node       graph.NodeID
	Param      string
	Source     graph.NodeID
	Connection graph.ConnectionID
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%v: %s(%s) is fed by %s via %s", ErrCyclicGraph, e.Node, e.Param, e.Source, e.Connection)
}

// Is checks if error is ErrCyclicGraph.
func (e *CycleError) Is(err error) bool {
	return err == ErrCyclicGraph
}

// NodeError wraps an error returned by node function. Err is the original
// error.
type NodeError struct {
	Node     graph.NodeID
	Function string
	Err      error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("%v: %s %s: %v", ErrNodeEvaluation, e.Function, e.Node, e.Err)
}

// Is checks if error is ErrNodeEvaluation.
func (e *NodeError) Is(err error) bool {
	return err == ErrNodeEvaluation
}

// Unwrap returns the original error.
func (e *NodeError) Unwrap() error {
	return e.Err
}
