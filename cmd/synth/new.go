package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pipelined/synth/catalog"
	"github.com/pipelined/synth/graph"
	"github.com/pipelined/synth/nodes"
	"github.com/pipelined/synth/patch"
)

type newCommand struct {
	out   io.Writer
	path  string
	force bool
}

func (cmd *newCommand) Name() string {
	return "new"
}

func (cmd *newCommand) Help() string {
	return "Create a patch with sine oscillator connected to output"
}

func (cmd *newCommand) Register(fs *flag.FlagSet) {
	fs.StringVar(&cmd.path, "out", "", "path of the new patch (required)")
	fs.BoolVar(&cmd.force, "force", false, "overwrite existing file")
}

func (cmd *newCommand) Run() error {
	if cmd.path == "" {
		return errors.New("missing -out required flag")
	}
	if _, err := os.Stat(cmd.path); err == nil && !cmd.force {
		return fmt.Errorf("%s already exists, use -force to overwrite", cmd.path)
	}
	c, err := newCatalog()
	if err != nil {
		return err
	}
	g, err := starter(c)
	if err != nil {
		return err
	}
	if err := patch.Save(cmd.path, g); err != nil {
		return err
	}
	fmt.Fprintf(cmd.out, "Patch created: %s\n", cmd.path)
	return nil
}

// starter returns graph with sine oscillator connected to output.
func starter(c *catalog.Catalog) (*graph.Graph, error) {
	sin, ok := c.Lookup(nodes.Sin)
	if !ok {
		return nil, fmt.Errorf("%w: %s", patch.ErrUnknownFunction, nodes.Sin)
	}
	g := graph.New(c)
	osc, err := g.AddNode(sin, graph.Position{})
	if err != nil {
		return nil, err
	}
	out, err := g.AddNode(c.Sink(), graph.Position{X: 200})
	if err != nil {
		return nil, err
	}
	oscOut, _ := g.OutputPort(osc)
	sinkIn, _ := g.InputPort(out, catalog.SinkInput)
	if _, err := g.Connect(oscOut.ID, sinkIn.ID); err != nil {
		return nil, err
	}
	return g, nil
}
