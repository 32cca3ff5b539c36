package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"

	"github.com/pipelined/synth"
	"github.com/pipelined/synth/patch"
)

type inspectCommand struct {
	out   io.Writer
	patch string
}

func (cmd *inspectCommand) Name() string {
	return "inspect"
}

func (cmd *inspectCommand) Help() string {
	return "Dump patch nodes and render context"
}

func (cmd *inspectCommand) Register(fs *flag.FlagSet) {
	fs.StringVar(&cmd.patch, "patch", "", "patch to inspect (required)")
}

var dump = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

func (cmd *inspectCommand) Run() error {
	g, err := loadPatch(cmd.patch)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.out, "Nodes:")
	dump.Fdump(cmd.out, patch.FromGraph(g).Nodes)

	b, ctx, err := synth.New().Render(g)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.out, "Render context:")
	dump.Fdump(cmd.out, ctx)
	fmt.Fprintf(cmd.out, "Rendered samples: %d\n", len(b))
	return nil
}
