// Package graph is a structural model of synthesizer graph: nodes, their
// ports and connections between ports.
//
// Graph validates structural invariants on every mutation:
//
//	an input port is a target of at most one connection;
//	a connection always joins an input port with an output port;
//	the sink node cannot be removed;
//	only editable parameters have literals.
//
// Graph is safe for concurrent use. Renders should work with Snapshot to
// avoid observing mutations made by editor.
package graph

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pipelined/synth/catalog"
	"github.com/rs/xid"
)

var (
	// ErrInvalidConnection is returned when ports can't be connected.
	ErrInvalidConnection = errors.New("invalid connection")
	// ErrPortOccupied is returned when input port is already connected.
	ErrPortOccupied = errors.New("port occupied")
	// ErrProtectedNode is returned on attempt to remove the sink node.
	ErrProtectedNode = errors.New("protected node")
	// ErrNotEditable is returned when parameter has no literal value.
	ErrNotEditable = errors.New("parameter not editable")
	// ErrTypeMismatch is returned when literal can't be converted to parameter type.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrUnknownNode is returned when node is not found.
	ErrUnknownNode = errors.New("unknown node")
	// ErrUnknownPort is returned when port is not found.
	ErrUnknownPort = errors.New("unknown port")
	// ErrUnknownConnection is returned when connection is not found.
	ErrUnknownConnection = errors.New("unknown connection")
	// ErrUnknownParam is returned when function has no such parameter.
	ErrUnknownParam = errors.New("unknown parameter")
	// ErrForeignFunction is returned when descriptor doesn't belong to graph catalog.
	ErrForeignFunction = errors.New("function is not in graph catalog")
)

type (
	// NodeID identifies node.
	NodeID string
	// PortID identifies port.
	PortID string
	// ConnectionID identifies connection.
	ConnectionID string
)

// Direction is a port direction.
type Direction int

// Port directions.
const (
	Input Direction = iota + 1
	Output
)

func (d Direction) String() string {
	switch d {
	case Input:
		return "input"
	case Output:
		return "output"
	}
	return "unknown"
}

// Position is a node placement in editor coordinates.
type Position struct {
	X, Y float64
}

// Port is an attachment point of node. Input ports are bound to
// signal-capable parameters.
type Port struct {
	ID        PortID
	Node      NodeID
	Direction Direction
	Param     string
}

// Connection joins an input port with an output port.
type Connection struct {
	ID     ConnectionID
	Input  PortID
	Output PortID
}

// Node is a function instance placed in graph.
type Node struct {
	ID         NodeID
	Descriptor *catalog.Descriptor
	Position   Position
	Literals   map[string]interface{}
	Ports      []Port
}

// IsSink returns true if node terminates the graph.
func (n Node) IsSink() bool {
	return n.Descriptor.IsSink()
}

// Graph is a set of nodes and connections.
type Graph struct {
	m           sync.RWMutex
	catalog     *catalog.Catalog
	nodes       map[NodeID]*Node
	order       []NodeID
	ports       map[PortID]Port
	connections map[ConnectionID]Connection
	connOrder   []ConnectionID
	byInput     map[PortID]ConnectionID
}

// New creates an empty graph with functions from provided catalog.
func New(c *catalog.Catalog) *Graph {
	return &Graph{
		catalog:     c,
		nodes:       make(map[NodeID]*Node),
		ports:       make(map[PortID]Port),
		connections: make(map[ConnectionID]Connection),
		byInput:     make(map[PortID]ConnectionID),
	}
}

// newUID returns new unique id value.
func newUID() string {
	return xid.New().String()
}

// Catalog returns functions available for placement.
func (g *Graph) Catalog() *catalog.Catalog {
	return g.catalog
}

// AddNode places a new node. Node gets an output port unless it's a sink and
// an input port for every signal-capable parameter. Literals are seeded with
// declared defaults.
func (g *Graph) AddNode(d *catalog.Descriptor, pos Position) (NodeID, error) {
	if d == nil {
		return "", fmt.Errorf("%w: nil function", ErrForeignFunction)
	}
	if d.Catalog() != g.catalog {
		return "", fmt.Errorf("%w: %s", ErrForeignFunction, d.Name())
	}
	n := &Node{
		ID:         NodeID(newUID()),
		Descriptor: d,
		Position:   pos,
		Literals:   make(map[string]interface{}),
	}
	if !d.IsSink() {
		n.Ports = append(n.Ports, Port{
			ID:        PortID(newUID()),
			Node:      n.ID,
			Direction: Output,
		})
	}
	for _, p := range d.Params() {
		if p.SignalCapable() {
			n.Ports = append(n.Ports, Port{
				ID:        PortID(newUID()),
				Node:      n.ID,
				Direction: Input,
				Param:     p.Name,
			})
		}
		if p.Editable() {
			n.Literals[p.Name] = p.Default
		}
	}

	g.m.Lock()
	defer g.m.Unlock()
	g.nodes[n.ID] = n
	g.order = append(g.order, n.ID)
	for _, port := range n.Ports {
		g.ports[port.ID] = port
	}
	return n.ID, nil
}

// RemoveNode removes node and all connections of its ports.
func (g *Graph) RemoveNode(id NodeID) error {
	g.m.Lock()
	defer g.m.Unlock()
	n, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	if n.IsSink() {
		return fmt.Errorf("%w: %s is a sink node", ErrProtectedNode, id)
	}
	owned := make(map[PortID]struct{}, len(n.Ports))
	for _, port := range n.Ports {
		owned[port.ID] = struct{}{}
		delete(g.ports, port.ID)
	}
	kept := g.connOrder[:0]
	for _, cid := range g.connOrder {
		c := g.connections[cid]
		_, in := owned[c.Input]
		_, out := owned[c.Output]
		if in || out {
			delete(g.connections, cid)
			delete(g.byInput, c.Input)
			continue
		}
		kept = append(kept, cid)
	}
	g.connOrder = kept
	delete(g.nodes, id)
	for i, nid := range g.order {
		if nid == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	return nil
}

// Connect joins two ports. Roles are determined by port directions, so
// arguments can be passed in any order.
func (g *Graph) Connect(a, b PortID) (ConnectionID, error) {
	g.m.Lock()
	defer g.m.Unlock()
	pa, ok := g.ports[a]
	if !ok {
		return "", fmt.Errorf("%w: %w: %s", ErrInvalidConnection, ErrUnknownPort, a)
	}
	pb, ok := g.ports[b]
	if !ok {
		return "", fmt.Errorf("%w: %w: %s", ErrInvalidConnection, ErrUnknownPort, b)
	}
	var c Connection
	switch {
	case pa.Direction == Input && pb.Direction == Output:
		c = Connection{Input: pa.ID, Output: pb.ID}
	case pa.Direction == Output && pb.Direction == Input:
		c = Connection{Input: pb.ID, Output: pa.ID}
	default:
		return "", fmt.Errorf("%w: both ports are %v", ErrInvalidConnection, pa.Direction)
	}
	if existing, ok := g.byInput[c.Input]; ok {
		return "", fmt.Errorf("%w: %s connected with %s", ErrPortOccupied, c.Input, existing)
	}
	c.ID = ConnectionID(newUID())
	g.connections[c.ID] = c
	g.connOrder = append(g.connOrder, c.ID)
	g.byInput[c.Input] = c.ID
	return c.ID, nil
}

// Disconnect removes connection.
func (g *Graph) Disconnect(id ConnectionID) error {
	g.m.Lock()
	defer g.m.Unlock()
	c, ok := g.connections[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownConnection, id)
	}
	delete(g.connections, id)
	delete(g.byInput, c.Input)
	for i, cid := range g.connOrder {
		if cid == id {
			g.connOrder = append(g.connOrder[:i], g.connOrder[i+1:]...)
			break
		}
	}
	return nil
}

// ConnectionsOf returns all connections where port is either input or output.
func (g *Graph) ConnectionsOf(port PortID) []Connection {
	g.m.RLock()
	defer g.m.RUnlock()
	var result []Connection
	for _, cid := range g.connOrder {
		c := g.connections[cid]
		if c.Input == port || c.Output == port {
			result = append(result, c)
		}
	}
	return result
}

// InputConnection returns connection which targets input port.
func (g *Graph) InputConnection(port PortID) (Connection, bool) {
	g.m.RLock()
	defer g.m.RUnlock()
	cid, ok := g.byInput[port]
	if !ok {
		return Connection{}, false
	}
	return g.connections[cid], true
}

// IsConnected returns true if port has at least one connection. Property
// editors use it to skip signal-driven parameters.
func (g *Graph) IsConnected(port PortID) bool {
	return len(g.ConnectionsOf(port)) > 0
}

// SetLiteral assigns literal value to editable parameter.
func (g *Graph) SetLiteral(id NodeID, param string, value interface{}) error {
	g.m.Lock()
	defer g.m.Unlock()
	n, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	p, ok := n.Descriptor.Param(param)
	if !ok {
		return fmt.Errorf("%w: %s(%s)", ErrUnknownParam, n.Descriptor.Name(), param)
	}
	if !p.Editable() {
		return fmt.Errorf("%w: %s(%s) is %v", ErrNotEditable, n.Descriptor.Name(), param, p.Class())
	}
	v, err := catalog.Convert(p.Type, value)
	if err != nil {
		return fmt.Errorf("%w: %s(%s): %v", ErrTypeMismatch, n.Descriptor.Name(), param, err)
	}
	n.Literals[param] = v
	return nil
}

// Literal returns current literal of editable parameter.
func (g *Graph) Literal(id NodeID, param string) (interface{}, error) {
	g.m.RLock()
	defer g.m.RUnlock()
	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	v, ok := n.Literals[param]
	if !ok {
		if _, declared := n.Descriptor.Param(param); declared {
			return nil, fmt.Errorf("%w: %s(%s)", ErrNotEditable, n.Descriptor.Name(), param)
		}
		return nil, fmt.Errorf("%w: %s(%s)", ErrUnknownParam, n.Descriptor.Name(), param)
	}
	return v, nil
}

// Move changes node position.
func (g *Graph) Move(id NodeID, pos Position) error {
	g.m.Lock()
	defer g.m.Unlock()
	n, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	n.Position = pos
	return nil
}

// Node returns a copy of node.
func (g *Graph) Node(id NodeID) (Node, bool) {
	g.m.RLock()
	defer g.m.RUnlock()
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return n.copy(), true
}

// Nodes returns copies of all nodes in placement order.
func (g *Graph) Nodes() []Node {
	g.m.RLock()
	defer g.m.RUnlock()
	result := make([]Node, 0, len(g.order))
	for _, id := range g.order {
		result = append(result, g.nodes[id].copy())
	}
	return result
}

// Port returns port by id.
func (g *Graph) Port(id PortID) (Port, bool) {
	g.m.RLock()
	defer g.m.RUnlock()
	p, ok := g.ports[id]
	return p, ok
}

// InputPort returns input port bound to node parameter.
func (g *Graph) InputPort(id NodeID, param string) (Port, bool) {
	g.m.RLock()
	defer g.m.RUnlock()
	n, ok := g.nodes[id]
	if !ok {
		return Port{}, false
	}
	for _, p := range n.Ports {
		if p.Direction == Input && p.Param == param {
			return p, true
		}
	}
	return Port{}, false
}

// OutputPort returns output port of node. Sink nodes have no output port.
func (g *Graph) OutputPort(id NodeID) (Port, bool) {
	g.m.RLock()
	defer g.m.RUnlock()
	n, ok := g.nodes[id]
	if !ok {
		return Port{}, false
	}
	for _, p := range n.Ports {
		if p.Direction == Output {
			return p, true
		}
	}
	return Port{}, false
}

// Connections returns all connections in creation order.
func (g *Graph) Connections() []Connection {
	g.m.RLock()
	defer g.m.RUnlock()
	result := make([]Connection, 0, len(g.connOrder))
	for _, cid := range g.connOrder {
		result = append(result, g.connections[cid])
	}
	return result
}

// Snapshot returns a deep copy of graph. Ids are preserved.
func (g *Graph) Snapshot() *Graph {
	g.m.RLock()
	defer g.m.RUnlock()
	s := New(g.catalog)
	for _, id := range g.order {
		n := g.nodes[id].copy()
		s.nodes[id] = &n
	}
	s.order = append(s.order, g.order...)
	for id, p := range g.ports {
		s.ports[id] = p
	}
	for id, c := range g.connections {
		s.connections[id] = c
	}
	s.connOrder = append(s.connOrder, g.connOrder...)
	for in, cid := range g.byInput {
		s.byInput[in] = cid
	}
	return s
}

func (n *Node) copy() Node {
	c := *n
	c.Literals = make(map[string]interface{}, len(n.Literals))
	for k, v := range n.Literals {
		c.Literals[k] = v
	}
	c.Ports = append([]Port(nil), n.Ports...)
	return c
}
