package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/pipelined/synth/catalog"
)

type listCommand struct {
	out io.Writer
}

func (cmd *listCommand) Name() string {
	return "list"
}

func (cmd *listCommand) Help() string {
	return "Show the list of available functions"
}

func (cmd *listCommand) Register(*flag.FlagSet) {}

func (cmd *listCommand) Run() error {
	c, err := newCatalog()
	if err != nil {
		return err
	}
	for _, d := range c.List() {
		if d.IsSink() {
			fmt.Fprintf(cmd.out, "%s (sink)\n", d.Name())
		} else {
			fmt.Fprintf(cmd.out, "%s\n", d.Name())
		}
		for _, p := range d.Params() {
			if p.Class() == catalog.ClassContext {
				continue
			}
			fmt.Fprintf(cmd.out, "\t%-20s %-14v %-20v %v\n", p.Name, p.Type, p.Class(), p.Default)
		}
	}
	return nil
}
