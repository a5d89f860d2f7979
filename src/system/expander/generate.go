package expander

import (
	"context"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/voodooEntity/neurosplit/src/system/archivist"
	"github.com/voodooEntity/neurosplit/src/system/connector"
	"github.com/voodooEntity/neurosplit/src/system/failure"
	"github.com/voodooEntity/neurosplit/src/system/graph"
	"github.com/voodooEntity/neurosplit/src/system/slicing"
)

// Generated is the connection data of one machine edge. Either Table and
// Data are set, or OnMachine is and ParamBlock holds what the on-machine
// expander needs to build the table itself.
type Generated struct {
	Edge       int
	Projection int
	Pre        slicing.Slice
	Post       slicing.Slice
	// MaxConnections is the estimate the table was checked against
	MaxConnections int

	Table connector.Table
	Data  []byte

	OnMachine   bool
	ConnectorID uint32
	ParamBlock  []uint32
}

// GenerateTables builds the data of every projection edge of mg on up to
// workers goroutines. The connectors are only read, every slice pair draws
// from its own random stream, so the result does not depend on scheduling.
// Results are ordered by edge ID. The first error cancels the remaining
// work and is returned.
func (e *Expander) GenerateTables(ctx context.Context, app *graph.ApplicationGraph, mg *graph.MachineGraph, workers int) ([]Generated, error) {
	var edges []*graph.MachineEdge
	for _, edge := range mg.Edges() {
		if graph.EDGE_PROJECTION != edge.Kind {
			continue
		}
		if proj := app.Projection(edge.Projection); nil == proj || nil == proj.Connector {
			return nil, failure.Configuration("edge "+edge.Label, "projection edge without a connector")
		}
		edges = append(edges, edge)
	}
	slices.SortFunc(edges, func(a, b *graph.MachineEdge) int {
		return a.ID - b.ID
	})

	results := make([]Generated, len(edges))
	progress := e.log.NewProgress("Generating tables", len(edges))
	g, gctx := errgroup.WithContext(ctx)
	if 0 < workers {
		g.SetLimit(workers)
	}
	for i, edge := range edges {
		proj := app.Projection(edge.Projection)
		pre, post := mg.Vertex(edge.Pre), mg.Vertex(edge.Post)
		g.Go(func() error {
			if err := gctx.Err(); nil != err {
				return err
			}
			res, err := generate(edge, proj, pre.Slice, post.Slice)
			if nil != err {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); nil != err {
		e.log.ErrorF("table generation failed: %s", err.Error())
		return nil, err
	}

	onMachine, bytes := 0, 0
	for _, res := range results {
		progress.Step()
		if res.OnMachine {
			onMachine++
			continue
		}
		bytes += len(res.Data)
		e.log.DebugF(archivist.DEBUG_LEVEL_DETAIL, "edge %d: %d of at most %d connections", res.Edge, len(res.Table), res.MaxConnections)
	}
	e.log.InfoF("generated %d tables (%d bytes), %d edges left to the on-machine expander", len(results)-onMachine, bytes, onMachine)
	progress.End()
	return results, nil
}

func generate(edge *graph.MachineEdge, proj *graph.Projection, pre, post slicing.Slice) (Generated, error) {
	conn := proj.Connector
	res := Generated{Edge: edge.ID, Projection: proj.ID, Pre: pre, Post: post}

	bound, err := conn.MaxConnectionsFromPre(pre, post, nil)
	if nil != err {
		return Generated{}, err
	}
	res.MaxConnections = bound

	if om, ok := conn.(connector.OnMachine); ok && proj.GenerateOnMachine && om.GeneratesOnMachine() {
		block, err := om.ParamBlock(pre, post)
		if nil != err {
			return Generated{}, err
		}
		res.OnMachine = true
		res.ConnectorID = om.ConnectorID()
		res.ParamBlock = block
		return res, nil
	}

	table, err := conn.Generate(pre, post, proj.SynapseType)
	if nil != err {
		return Generated{}, err
	}
	if len(table) > bound {
		return Generated{}, failure.Precondition("edge "+edge.Label, "%s generated %d connections, estimated at most %d", conn.Name(), len(table), bound)
	}
	data, err := table.MarshalBinary()
	if nil != err {
		return Generated{}, err
	}
	res.Table = table
	res.Data = data
	return res, nil
}
