// Package filter removes machine edges that provably carry no connections.
package filter

import (
	"github.com/voodooEntity/neurosplit/src/system/archivist"
	"github.com/voodooEntity/neurosplit/src/system/failure"
	"github.com/voodooEntity/neurosplit/src/system/graph"
)

// Result is the filtered graph plus the counts the filter logged.
type Result struct {
	Graph    *graph.MachineGraph
	Pruned   int
	Retained int
}

// Filter builds a new machine graph holding every vertex of mg and only the
// edges that may carry connections. Partition constraints survive on every
// partition that keeps at least one edge. The application graph's
// projection -> machine edge relations are rebuilt for the new graph.
func Filter(app *graph.ApplicationGraph, mg *graph.MachineGraph, logger *archivist.Archivist) (Result, error) {
	if nil == logger {
		logger = archivist.Discard()
	}
	partitions := mg.Partitions()
	progress := logger.NewProgress("Filtering edges", mg.NVertices()+len(partitions))
	filtered := graph.NewMachineGraph()

	// vertices are never pruned
	for _, v := range mg.Vertices() {
		if _, err := filtered.AddVertex(v); nil != err {
			return Result{}, err
		}
		progress.Step()
	}

	for _, p := range app.Projections() {
		app.ForgetMachineEdges(p.ID)
	}

	res := Result{Graph: filtered}
	for _, partition := range partitions {
		kept := false
		for _, edgeID := range partition.Edges {
			edge := mg.Edge(edgeID)
			empty, err := isEmpty(app, mg, edge)
			if nil != err {
				return Result{}, err
			}
			if empty {
				logger.DebugF(archivist.DEBUG_LEVEL_INFO, "this edge was pruned: %s", edge.Label)
				res.Pruned++
				continue
			}
			logger.DebugF(archivist.DEBUG_LEVEL_INFO, "this edge was not pruned: %s", edge.Label)
			res.Retained++
			if _, err := filtered.AddEdge(edge, partition.Identifier); nil != err {
				return Result{}, err
			}
			if 0 != edge.Projection {
				app.RememberMachineEdge(edge.Projection, edge.ID)
			}
			kept = true
		}
		if kept {
			key := graph.PartitionKey{Pre: partition.Pre, Identifier: partition.Identifier}
			for _, c := range partition.Constraints {
				if err := filtered.AddPartitionConstraint(key, c); nil != err {
					return Result{}, err
				}
			}
		}
		progress.Step()
	}

	logger.DebugF(archivist.DEBUG_LEVEL_TRACE, "prune_count:%d no_prune_count:%d", res.Pruned, res.Retained)
	logger.InfoF("removed %d of %d edges", res.Pruned, res.Pruned+res.Retained)
	progress.End()
	return res, nil
}

// isEmpty asks the projection's connector about the unit slices. Edges that
// neither belong to a connector nor are marked plain cannot be judged.
func isEmpty(app *graph.ApplicationGraph, mg *graph.MachineGraph, edge *graph.MachineEdge) (bool, error) {
	switch edge.Kind {
	case graph.EDGE_PLAIN:
		return false, nil
	case graph.EDGE_PROJECTION:
		proj := app.Projection(edge.Projection)
		if nil == proj || nil == proj.Connector {
			return false, failure.Configuration("edge "+edge.Label, "projection edge without a connector, cannot tell whether it is empty")
		}
		pre, post := mg.Vertex(edge.Pre), mg.Vertex(edge.Post)
		return !proj.Connector.HasConnections(pre.Slice, post.Slice), nil
	}
	return false, failure.Configuration("edge "+edge.Label, "cannot figure out if the edge is prunable, kind %s", edge.Kind)
}
