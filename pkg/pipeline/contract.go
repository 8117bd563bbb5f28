package pipeline

import (
	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"

	"github.com/askiada/go-clusterphot/internal/graphstore"
	"github.com/askiada/go-clusterphot/pkg/pipeline/model"
	"github.com/askiada/go-clusterphot/pkg/units"
)

// buildLinks resolves, for every key a step reads, the last earlier step writing it.
// Required keys nobody writes are expected from the pipeline input.
func buildLinks(infos []*model.StepInfo) [][]model.Link {
	lastWriter := make(map[string]string)
	all := make([][]model.Link, len(infos))

	for i, info := range infos {
		for _, key := range info.Keys.Reads {
			from, ok := lastWriter[key]
			if !ok {
				from = model.StartStep.Name
			}

			all[i] = append(all[i], model.Link{From: from, To: info.Name, Key: key})
		}

		for _, key := range info.Keys.Optional {
			if from, ok := lastWriter[key]; ok {
				all[i] = append(all[i], model.Link{From: from, To: info.Name, Key: key})
			}
		}

		for _, key := range info.Keys.Writes {
			lastWriter[key] = info.Name
		}
	}

	return all
}

// newKeyGraph creates the directed graph of steps linked by the keys flowing between them.
//
// Links only run from earlier steps to later ones, so a cycle is an error unless
// it goes through a name shared by several steps.
func newKeyGraph(infos []*model.StepInfo, links [][]model.Link) (graph.Graph[string, string], error) {
	gra := graph.NewWithStore(graph.StringHash, graphstore.NewMemory[string, string](),
		graph.Directed(), graph.PreventCycles())
	shared := make(map[string]bool, len(infos))

	err := gra.AddVertex(model.StartStep.Name)
	if err != nil {
		return nil, errors.Wrap(err, "unable to add start vertex")
	}

	for _, info := range infos {
		err := gra.AddVertex(info.Name)
		if errors.Is(err, graph.ErrVertexAlreadyExists) {
			shared[info.Name] = true

			continue
		}

		if err != nil {
			return nil, errors.Wrapf(err, "unable to add vertex %s", info.Name)
		}
	}

	for _, stepLinks := range links {
		for _, link := range stepLinks {
			if link.From == link.To {
				continue
			}

			err := gra.AddEdge(link.From, link.To, graph.EdgeAttribute("label", link.Key))
			if errors.Is(err, graph.ErrEdgeAlreadyExists) {
				edge, edgeErr := gra.Edge(link.From, link.To)
				if edgeErr != nil {
					return nil, errors.Wrap(edgeErr, "unable to get edge")
				}

				err = gra.UpdateEdge(link.From, link.To,
					graph.EdgeAttribute("label", edge.Properties.Attributes["label"]+", "+link.Key))
			}

			if errors.Is(err, graph.ErrEdgeCreatesCycle) && (shared[link.From] || shared[link.To]) {
				continue
			}

			if err != nil {
				return nil, errors.Wrapf(err, "unable to add edge from %s to %s", link.From, link.To)
			}
		}
	}

	return gra, nil
}

// checkInput verifies that every required read is satisfied by the input or an earlier write.
func checkInput(infos []*model.StepInfo, input Data) error {
	available := make(map[string]struct{}, input.Len())
	for _, key := range input.Keys() {
		available[key] = struct{}{}
	}

	for _, info := range infos {
		for _, key := range info.Keys.Reads {
			if _, ok := available[key]; !ok {
				return errors.Wrapf(ErrMissingKey, "%s: %q is neither in the input nor written by an earlier step", info.Name, key)
			}
		}

		for _, key := range info.Keys.Writes {
			available[key] = struct{}{}
		}
	}

	return nil
}

// checkOutput verifies the declared writes exist, that no input key was dropped
// and that quantities kept their unit.
func checkOutput(info *model.StepInfo, in, out Data) error {
	for _, key := range info.Keys.Writes {
		if !out.Has(key) {
			return errors.Wrapf(ErrMissingOutput, "%q", key)
		}
	}

	for _, key := range in.Keys() {
		if !out.Has(key) {
			return errors.Wrapf(ErrMissingOutput, "%q was dropped", key)
		}

		before, ok := quantity(in, key)
		if !ok {
			continue
		}

		after, ok := quantity(out, key)
		if !ok {
			return errors.Wrapf(units.ErrUnitMismatch, "%q is no longer a quantity", key)
		}

		if !before.Unit().Equal(after.Unit()) {
			return errors.Wrapf(units.ErrUnitMismatch, "%q changed unit from (%s) to (%s)", key, before.Unit(), after.Unit())
		}
	}

	return nil
}

func quantity(d Data, key string) (units.Quantity, bool) {
	raw, ok := d.Value(key)
	if !ok {
		return units.Quantity{}, false
	}

	q, ok := raw.(units.Quantity)

	return q, ok
}
