/*
Package synth renders node graphs into mono sample buffers.

Concept

A graph is composed of nodes. Every node is an instance of a function from
the catalog: signal generators, effects and exactly one sink. The sink
terminates the graph, its literals define the render: sample rate, length
and playback speed factor.

    c := catalog.New()
    nodes.Register(c)
    g := graph.New(c)

    sin, _ := c.Lookup("sin")
    out, _ := c.Lookup(nodes.Output)
    sinID, _ := g.AddNode(sin, graph.Position{})
    outID, _ := g.AddNode(out, graph.Position{X: 200})

    sinOut, _ := g.OutputPort(sinID)
    outIn, _ := g.InputPort(outID, catalog.SinkInput)
    g.Connect(sinOut.ID, outIn.ID)

Evaluation

Render walks the graph depth-first, starting at the sink. Every parameter of
a node is bound to:

    upstream buffer   - if its input port is connected;
    default broadcast - if it's an unconnected signal-only parameter;
    literal           - if it's a signal-or-constant or constant parameter;
    render context    - if it's a context parameter.

    b, ctx, err := synth.New().Render(g)

A connection which feeds a node already being evaluated on the same path
fails the render with CycleError. Errors returned by node functions are
wrapped into NodeError. No partial buffer is returned on error.

A node connected to several inputs is evaluated once per path, results are
not cached. Stateful functions, like noise, produce independent signals for
every use site.

Concurrency

Render is synchronous. WithConcurrency option evaluates connected inputs of
every node in separate goroutines, the node function is called once all of
them are done. This doesn't change results of deterministic graphs.

Logging

Engine logs through logrus. Debug output of every render start and result
is enabled by SYNTH_DEBUG environment variable:

    SYNTH_DEBUG=true synth render -patch patch.yaml -out tone.wav
*/
package synth
