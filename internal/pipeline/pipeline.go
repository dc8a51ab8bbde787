package pipeline

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"leqo/internal/annotate"
	"leqo/internal/config"
	"leqo/internal/diag"
	"leqo/internal/enrich"
	"leqo/internal/graph"
	"leqo/internal/merge"
	"leqo/internal/model"
	"leqo/internal/observ"
	"leqo/internal/qasm"
	"leqo/internal/sched"
)

// Report is what one compile produced besides the program itself.
type Report struct {
	RegisterSize int               `json:"register_size"`
	Order        []string          `json:"order"`
	Uncompute    map[string]bool   `json:"uncompute,omitempty"`
	Warnings     []diag.Diagnostic `json:"warnings,omitempty"`
	Timings      observ.Report     `json:"timings"`
	Layout       []NodeLayout      `json:"layout,omitempty"`
}

// NodeLayout summarizes one node's footprint for inspection tooling.
type NodeLayout struct {
	Node     string `json:"node"`
	Qubits   int    `json:"qubits"`
	Inputs   int    `json:"inputs"`
	Outputs  int    `json:"outputs"`
	Width    int    `json:"width"`
	Depth    int    `json:"depth"`
	Schedule string `json:"schedule,omitempty"`
}

// Compile runs the full pass sequence over one request: build the dataflow
// graph, enrich and annotate every node, schedule ancilla reuse, then merge
// into one program. Enrichment and annotation parsing fan out across nodes;
// everything after runs single-threaded on the request's own graph. ctx is
// only consulted at the enrichment boundary, the core passes are fast and
// not interruptible.
func Compile(ctx context.Context, req *model.Request, cfg *config.Config, enricher enrich.Enricher) (*qasm.Program, *Report, *diag.Diagnostic) {
	if enricher == nil {
		enricher = enrich.Inline{}
	}
	timer := observ.NewTimer()
	report := &Report{Uncompute: make(map[string]bool)}

	if max := cfg.Compile.MaxNodes; max > 0 && len(req.Nodes) > max {
		return nil, nil, diag.Errorf(diag.GraphTooLarge, "",
			"request has %d nodes, limit is %d", len(req.Nodes), max)
	}

	// Graph construction from the frontend model.
	phase := timer.Begin("graph")
	g := graph.New()
	ids := make([]graph.NodeID, len(req.Nodes))
	for i, node := range req.Nodes {
		id, d := g.AddNode(node.ID)
		if d != nil {
			return nil, nil, d
		}
		ids[i] = id
	}
	for _, edge := range req.Edges {
		src, _ := g.NodeByName(edge.Source.Node)
		dst, _ := g.NodeByName(edge.Target.Node)
		d := g.Connect(graph.IOConnection{
			Source:   graph.Endpoint{Node: src, Index: edge.Source.Index},
			Target:   graph.Endpoint{Node: dst, Index: edge.Target.Index},
			SizeHint: edge.Size,
		})
		if d != nil {
			return nil, nil, d
		}
	}
	timer.End(phase, "")

	// Enrichment and annotation parsing, fanned out per node. The graph is
	// not touched until every worker is done; payloads are committed
	// sequentially afterwards.
	phase = timer.Begin("annotate")
	type payload struct {
		frag  *qasm.Fragment
		model *annotate.Model
		meta  enrich.Meta
	}
	payloads := make([]payload, len(req.Nodes))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(runtime.NumCPU())
	for i := range req.Nodes {
		group.Go(func() error {
			node := req.Nodes[i]
			frag, meta, err := enricher.Enrich(groupCtx, node)
			if err != nil {
				return diag.Errorf(diag.ModelBadReference, node.ID,
					"cannot resolve implementation: %v", err)
			}
			m, d := annotate.Parse(node.ID, frag)
			if d != nil {
				return d
			}
			payloads[i] = payload{frag: frag, model: m, meta: meta}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		if d, ok := err.(*diag.Diagnostic); ok {
			return nil, nil, d
		}
		return nil, nil, diag.Errorf(diag.ModelBadRequest, "", "enrichment failed: %v", err)
	}
	totalQubits := 0
	for i := range req.Nodes {
		g.SetPayload(ids[i], payloads[i].frag, payloads[i].model)
		totalQubits += payloads[i].model.QubitCount
	}
	timer.End(phase, "")

	if max := cfg.Compile.MaxQubits; max > 0 && totalQubits > max {
		return nil, nil, diag.Errorf(diag.GraphTooLarge, "",
			"request declares %d qubits, limit is %d", totalQubits, max)
	}
	report.Warnings = append(report.Warnings, sizeHintWarnings(g)...)

	// Ancilla scheduling.
	uncompute := map[graph.NodeID]bool{}
	if cfg.Compile.Schedule {
		phase = timer.Begin("schedule")
		strategy, err := sched.StrategyByName(cfg.Compile.Strategy)
		if err != nil {
			return nil, nil, diag.Errorf(diag.ModelBadRequest, "", "%v", err)
		}
		result, d := sched.New(g, strategy).Run()
		if d != nil {
			return nil, nil, d
		}
		uncompute = result.Uncompute
		timer.End(phase, "")
	}

	// Allocation and merging.
	phase = timer.Begin("merge")
	result, d := merge.Program(g, merge.Options{
		RegisterName: cfg.Compile.Register,
		Uncompute:    uncompute,
		Includes:     cfg.Compile.Includes,
	})
	if d != nil {
		return nil, nil, d
	}
	timer.End(phase, "")

	report.RegisterSize = result.RegisterSize
	for _, id := range result.Order {
		report.Order = append(report.Order, g.Name(id))
	}
	for id, flag := range uncompute {
		if flag {
			report.Uncompute[g.Name(id)] = true
		}
	}
	for i, id := range ids {
		m := payloads[i].model
		report.Layout = append(report.Layout, NodeLayout{
			Node:    g.Name(id),
			Qubits:  m.QubitCount,
			Inputs:  len(m.Inputs),
			Outputs: len(m.Outputs),
			Width:   payloads[i].meta.Width,
			Depth:   payloads[i].meta.Depth,
		})
	}
	report.Timings = timer.Report()
	return result.Program, report, nil
}

// sizeHintWarnings flags frontend size hints that disagree with the models.
// Hints are advisory; the allocator's binding check is authoritative.
func sizeHintWarnings(g *graph.Graph) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, conn := range g.IOConnections() {
		if conn.SizeHint == 0 {
			continue
		}
		srcModel := g.Model(conn.Source.Node)
		if b, ok := srcModel.OutputBinding(conn.Source.Index); ok && b.Size() != conn.SizeHint {
			out = append(out, *diag.Warningf(diag.GraphSizeHintBad, g.Name(conn.Source.Node),
				"size hint %d on output %d disagrees with actual width %d",
				conn.SizeHint, conn.Source.Index, b.Size()))
		}
	}
	return out
}
