// Package expander turns projections into machine edges and generates the
// connection data of every machine edge.
package expander

import (
	"github.com/voodooEntity/neurosplit/src/system/archivist"
	"github.com/voodooEntity/neurosplit/src/system/failure"
	"github.com/voodooEntity/neurosplit/src/system/graph"
	"github.com/voodooEntity/neurosplit/src/system/splitter"
)

type Expander struct {
	log *archivist.Archivist
}

func New(logger *archivist.Archivist) *Expander {
	if nil == logger {
		logger = archivist.Discard()
	}
	return &Expander{log: logger.Scoped("expander")}
}

// ExpandEdges adds one machine edge for every combination of an outgoing
// unit of the pre population and an incoming unit of the post population,
// in the projection's partition. splitters is keyed by population ID and
// every splitter must be partitioned. Returns the number of edges added.
func (e *Expander) ExpandEdges(app *graph.ApplicationGraph, mg *graph.MachineGraph, splitters map[int]*splitter.Splitter) (int, error) {
	added := 0
	for _, proj := range app.Projections() {
		pre, post := splitters[proj.Pre], splitters[proj.Post]
		if nil == pre || nil == post {
			return added, failure.Precondition("projection "+proj.Label, "no splitter for population %d or %d", proj.Pre, proj.Post)
		}
		if splitter.STATE_PARTITIONED != pre.State() || splitter.STATE_PARTITIONED != post.State() {
			return added, failure.Precondition("projection "+proj.Label, "populations must be partitioned before expansion")
		}

		sources, targets := pre.OutGoingVertices(), post.InComingVertices()
		for _, source := range sources {
			for _, target := range targets {
				src, dst := source.Vertex, target.Vertex
				edge := &graph.MachineEdge{
					Pre:        src.ID,
					Post:       dst.ID,
					Projection: proj.ID,
					Kind:       proj.Kind,
					Label:      proj.Label + ":" + src.Slice.String() + "->" + dst.Slice.String(),
				}
				if _, err := mg.AddEdge(edge, proj.Partition); nil != err {
					return added, err
				}
				app.RememberMachineEdge(proj.ID, edge.ID)
				added++
			}
		}
		e.log.DebugF(archivist.DEBUG_LEVEL_INFO, "%s expanded into %d x %d edges", proj.Label, len(sources), len(targets))
	}
	e.log.InfoF("expanded %d projections into %d machine edges", len(app.Projections()), added)
	return added, nil
}
