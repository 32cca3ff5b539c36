// Package patch persists graphs in yaml format:
//
//	version: 1
//	nodes:
//	  - id: osc
//	    function: sin
//	    position: {x: 0, y: 0}
//	    literals:
//	      frequency: 220
//	  - id: out
//	    function: Output
//	    position: {x: 200, y: 0}
//	connections:
//	  - from: osc
//	    to: out
//	    param: input
//
// Node ids are local to the file, loaded graphs get new ids.
package patch

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/pipelined/synth/catalog"
	"github.com/pipelined/synth/graph"
)

// Version of the format.
const Version = 1

var (
	// ErrUnknownFunction is returned when patch refers to function missing in catalog.
	ErrUnknownFunction = errors.New("unknown function")
	// ErrUnsupportedVersion is returned when patch has different format version.
	ErrUnsupportedVersion = errors.New("unsupported patch version")
	// ErrInvalidPatch is returned when patch structure is invalid.
	ErrInvalidPatch = errors.New("invalid patch")
)

var validate = validator.New()

type (
	// Patch is a persisted graph.
	Patch struct {
		Version     int          `yaml:"version" validate:"required"`
		Nodes       []Node       `yaml:"nodes" validate:"dive"`
		Connections []Connection `yaml:"connections,omitempty" validate:"dive"`
	}

	// Node is a persisted node.
	Node struct {
		ID       string                 `yaml:"id" validate:"required,max=64"`
		Function string                 `yaml:"function" validate:"required"`
		Position Position               `yaml:"position"`
		Literals map[string]interface{} `yaml:"literals,omitempty"`
	}

	// Position is a node placement.
	Position struct {
		X float64 `yaml:"x"`
		Y float64 `yaml:"y"`
	}

	// Connection feeds parameter of node To with output of node From.
	Connection struct {
		From  string `yaml:"from" validate:"required"`
		To    string `yaml:"to" validate:"required"`
		Param string `yaml:"param" validate:"required"`
	}
)

// Load reads graph from file.
func Load(path string, c *catalog.Catalog) (*graph.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	g, err := Unmarshal(data, c)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// Save writes graph into file.
func Save(path string, g *graph.Graph) error {
	data, err := Marshal(g)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Marshal encodes graph. Nodes and connections are kept in graph order.
func Marshal(g *graph.Graph) ([]byte, error) {
	return yaml.Marshal(FromGraph(g))
}

// FromGraph converts graph into patch.
func FromGraph(g *graph.Graph) *Patch {
	p := &Patch{Version: Version}
	for _, n := range g.Nodes() {
		var literals map[string]interface{}
		if len(n.Literals) > 0 {
			literals = make(map[string]interface{}, len(n.Literals))
			for k, v := range n.Literals {
				literals[k] = v
			}
		}
		p.Nodes = append(p.Nodes, Node{
			ID:       string(n.ID),
			Function: n.Descriptor.Name(),
			Position: Position{X: n.Position.X, Y: n.Position.Y},
			Literals: literals,
		})
	}
	for _, c := range g.Connections() {
		in, _ := g.Port(c.Input)
		out, _ := g.Port(c.Output)
		p.Connections = append(p.Connections, Connection{
			From:  string(out.Node),
			To:    string(in.Node),
			Param: in.Param,
		})
	}
	return p
}

// Unmarshal decodes graph with functions from catalog.
func Unmarshal(data []byte, c *catalog.Catalog) (*graph.Graph, error) {
	var p Patch
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	return p.Graph(c)
}

// Graph validates patch and builds a new graph.
func (p *Patch) Graph(c *catalog.Catalog) (*graph.Graph, error) {
	if p.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, p.Version)
	}
	if err := validate.Struct(p); err != nil {
		return nil, formatValidationError(err)
	}

	g := graph.New(c)
	ids := make(map[string]graph.NodeID, len(p.Nodes))
	for _, n := range p.Nodes {
		if _, ok := ids[n.ID]; ok {
			return nil, fmt.Errorf("%w: duplicate node id %s", ErrInvalidPatch, n.ID)
		}
		d, ok := c.Lookup(n.Function)
		if !ok {
			return nil, fmt.Errorf("%w: %s in node %s", ErrUnknownFunction, n.Function, n.ID)
		}
		id, err := g.AddNode(d, graph.Position{X: n.Position.X, Y: n.Position.Y})
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID, err)
		}
		for param, value := range n.Literals {
			if err := g.SetLiteral(id, param, value); err != nil {
				return nil, fmt.Errorf("node %s: %w", n.ID, err)
			}
		}
		ids[n.ID] = id
	}

	for _, conn := range p.Connections {
		from, ok := ids[conn.From]
		if !ok {
			return nil, fmt.Errorf("%w: connection from unknown node %s", ErrInvalidPatch, conn.From)
		}
		to, ok := ids[conn.To]
		if !ok {
			return nil, fmt.Errorf("%w: connection to unknown node %s", ErrInvalidPatch, conn.To)
		}
		out, ok := g.OutputPort(from)
		if !ok {
			return nil, fmt.Errorf("%w: node %s has no output", ErrInvalidPatch, conn.From)
		}
		in, ok := g.InputPort(to, conn.Param)
		if !ok {
			return nil, fmt.Errorf("%w: node %s has no input %s", ErrInvalidPatch, conn.To, conn.Param)
		}
		if _, err := g.Connect(out.ID, in.ID); err != nil {
			return nil, fmt.Errorf("connection %s -> %s(%s): %w", conn.From, conn.To, conn.Param, err)
		}
	}
	return g, nil
}

// formatValidationError reports the first failed field.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	e := validationErrs[0]
	switch e.Tag() {
	case "required":
		return fmt.Errorf("%w: %s is required", ErrInvalidPatch, e.Namespace())
	case "max":
		return fmt.Errorf("%w: %s must not exceed %s", ErrInvalidPatch, e.Namespace(), e.Param())
	}
	return fmt.Errorf("%w: %s validation failed (%s)", ErrInvalidPatch, e.Namespace(), e.Tag())
}
