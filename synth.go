package synth

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/pipelined/synth/catalog"
	"github.com/pipelined/synth/graph"
	"github.com/pipelined/synth/log"
	"github.com/pipelined/synth/metric"
	"github.com/pipelined/synth/signal"
)

// Engine renders graphs into sample buffers.
type Engine struct {
	log        log.Logger
	metric     *metric.Metric
	concurrent bool
}

// New creates a new engine and applies provided options.
func New(options ...Option) *Engine {
	e := &Engine{
		log: log.GetLogger(),
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// Render evaluates the graph starting from its sink node and returns the
// buffer fed to sink input. Render works with a snapshot of the graph, so
// mutations made during the render are not observed.
//
// Nodes reachable through several paths are evaluated once per path. It
// allows stateful functions, like noise generators, to produce independent
// signals at every use site.
func (e *Engine) Render(g *graph.Graph) (signal.Float64, signal.RenderContext, error) {
	meter := e.metric.Meter()
	b, ctx, err := e.render(g.Snapshot(), meter)
	meter.Done(len(b), err)
	if err != nil {
		e.log.WithFields(logrus.Fields{
			"error": err,
		}).Debug("render failed")
		return nil, signal.RenderContext{}, err
	}
	return b, ctx, nil
}

func (e *Engine) render(g *graph.Graph, meter *metric.Meter) (signal.Float64, signal.RenderContext, error) {
	sink, err := findSink(g)
	if err != nil {
		return nil, signal.RenderContext{}, err
	}
	ctx, err := renderContext(sink)
	if err != nil {
		return nil, signal.RenderContext{}, err
	}
	started := time.Now()
	e.log.WithFields(logrus.Fields{
		"sink":       sink.ID,
		"sampleRate": ctx.SampleRate,
		"samples":    ctx.Samples,
		"concurrent": e.concurrent,
	}).Debug("render started")

	r := &run{
		graph:      g,
		ctx:        ctx,
		meter:      meter,
		concurrent: e.concurrent,
		log:        e.log,
	}
	args, err := r.bind(context.Background(), sink, nil)
	if err != nil {
		return nil, signal.RenderContext{}, err
	}
	if _, err := r.call(sink, args); err != nil {
		return nil, signal.RenderContext{}, err
	}
	b := args.Signal(catalog.SinkInput).Fit(ctx.Samples)

	e.log.WithFields(logrus.Fields{
		"sink":    sink.ID,
		"samples": len(b),
		"elapsed": time.Since(started),
	}).Info("render finished")
	return b, ctx, nil
}

// findSink returns the only sink node of graph.
func findSink(g *graph.Graph) (graph.Node, error) {
	var sinks []graph.Node
	for _, n := range g.Nodes() {
		if n.IsSink() {
			sinks = append(sinks, n)
		}
	}
	if len(sinks) != 1 {
		ids := make([]graph.NodeID, 0, len(sinks))
		for _, n := range sinks {
			ids = append(ids, n.ID)
		}
		return graph.Node{}, &SinkError{Nodes: ids}
	}
	return sinks[0], nil
}

// renderContext builds context from sink literals.
func renderContext(sink graph.Node) (signal.RenderContext, error) {
	sampleRate, _ := sink.Literals[catalog.SinkSampleRate].(int)
	length, _ := sink.Literals[catalog.SinkLength].(float64)
	speed, _ := sink.Literals[catalog.SinkSpeed].(float64)
	ctx := signal.NewRenderContext(sampleRate, length, speed)
	if err := ctx.Validate(); err != nil {
		return signal.RenderContext{}, &NodeError{
			Node:     sink.ID,
			Function: sink.Descriptor.Name(),
			Err:      fmt.Errorf("%w: %v", ErrInvalidContext, err),
		}
	}
	return ctx, nil
}

// run is a state of a single render.
type run struct {
	graph      *graph.Graph
	ctx        signal.RenderContext
	meter      *metric.Meter
	concurrent bool
	log        log.Logger
}

// upstream is a connected input of node.
type upstream struct {
	param  string
	source graph.Node
}

// evaluate binds node parameters and invokes its function. Path holds nodes
// which are being evaluated on the current signal path. It's never modified,
// every call allocates its own copy.
func (r *run) evaluate(ctx context.Context, n graph.Node, path []graph.NodeID) (signal.Float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	args, err := r.bind(ctx, n, path)
	if err != nil {
		return nil, err
	}
	return r.call(n, args)
}

func (r *run) call(n graph.Node, args catalog.Args) (signal.Float64, error) {
	r.meter.Node(n.Descriptor.Name())
	r.log.WithFields(logrus.Fields{
		"node":     n.ID,
		"function": n.Descriptor.Name(),
	}).Debug("evaluate node")
	b, err := n.Descriptor.Call(args)
	if err != nil {
		return nil, &NodeError{
			Node:     n.ID,
			Function: n.Descriptor.Name(),
			Err:      err,
		}
	}
	return b, nil
}

// bind resolves all node parameters.
func (r *run) bind(ctx context.Context, n graph.Node, path []graph.NodeID) (catalog.Args, error) {
	visiting := make([]graph.NodeID, len(path), len(path)+1)
	copy(visiting, path)
	visiting = append(visiting, n.ID)

	values := make(map[string]interface{})
	var inputs []upstream
	for _, p := range n.Descriptor.Params() {
		switch p.Class() {
		case catalog.ClassContext:
			continue
		case catalog.ClassConstant:
			values[p.Name] = n.Literals[p.Name]
			continue
		}

		source, c, connected := r.source(n.ID, p.Name)
		if !connected {
			if p.Class() == catalog.ClassSignal {
				values[p.Name] = signal.Broadcast(p.DefaultFloat(), r.ctx.Samples)
			} else {
				values[p.Name] = n.Literals[p.Name]
			}
			continue
		}
		if contains(visiting, source.ID) {
			return catalog.Args{}, &CycleError{
				Node:       n.ID,
				Param:      p.Name,
				Source:     source.ID,
				Connection: c.ID,
			}
		}
		inputs = append(inputs, upstream{param: p.Name, source: source})
	}

	buffers, err := r.evaluateInputs(ctx, inputs, visiting)
	if err != nil {
		return catalog.Args{}, err
	}
	for i, in := range inputs {
		b := buffers[i]
		if b == nil {
			b = signal.Float64{}
		}
		values[in.param] = b
	}
	return catalog.NewArgs(r.ctx, values), nil
}

// evaluateInputs evaluates upstream nodes sequentially or concurrently.
func (r *run) evaluateInputs(ctx context.Context, inputs []upstream, path []graph.NodeID) ([]signal.Float64, error) {
	buffers := make([]signal.Float64, len(inputs))
	if !r.concurrent || len(inputs) < 2 {
		for i, in := range inputs {
			b, err := r.evaluate(ctx, in.source, path)
			if err != nil {
				return nil, err
			}
			buffers[i] = b
		}
		return buffers, nil
	}

	eg, ctx := errgroup.WithContext(ctx)
	for i := range inputs {
		eg.Go(func() error {
			b, err := r.evaluate(ctx, inputs[i].source, path)
			if err != nil {
				return err
			}
			buffers[i] = b
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return buffers, nil
}

// source returns node connected to the input port of parameter.
func (r *run) source(id graph.NodeID, param string) (graph.Node, graph.Connection, bool) {
	in, ok := r.graph.InputPort(id, param)
	if !ok {
		return graph.Node{}, graph.Connection{}, false
	}
	c, ok := r.graph.InputConnection(in.ID)
	if !ok {
		return graph.Node{}, graph.Connection{}, false
	}
	out, ok := r.graph.Port(c.Output)
	if !ok {
		return graph.Node{}, graph.Connection{}, false
	}
	n, ok := r.graph.Node(out.Node)
	return n, c, ok
}

func contains(path []graph.NodeID, id graph.NodeID) bool {
	for _, v := range path {
		if v == id {
			return true
		}
	}
	return false
}
