package pipeline

import (
	"testing"

	"github.com/dominikbraun/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-clusterphot/pkg/pipeline/model"
)

func TestNewKeyGraph(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		names   []string
		links   []model.Link
		wantErr error
		wantTo  map[string][]string
	}{
		"forward links": {
			names: []string{"a", "b"},
			links: []model.Link{
				{From: model.StartStep.Name, To: "a", Key: "x"},
				{From: "a", To: "b", Key: "y"},
				{From: "a", To: "b", Key: "z"},
			},
			wantTo: map[string][]string{"a": {model.StartStep.Name}, "b": {"a"}},
		},
		"self link": {
			names:  []string{"a"},
			links:  []model.Link{{From: "a", To: "a", Key: "x"}},
			wantTo: map[string][]string{"a": nil},
		},
		"backward link": {
			names: []string{"a", "b"},
			links: []model.Link{
				{From: "a", To: "b", Key: "y"},
				{From: "b", To: "a", Key: "z"},
			},
			wantErr: graph.ErrEdgeCreatesCycle,
		},
		"backward link through a shared name": {
			names: []string{"a", "b", "a"},
			links: []model.Link{
				{From: "a", To: "b", Key: "y"},
				{From: "b", To: "a", Key: "z"},
			},
			wantTo: map[string][]string{"b": {"a"}},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			infos := make([]*model.StepInfo, len(tc.names))
			for i, name := range tc.names {
				infos[i] = &model.StepInfo{Name: name, Index: i}
			}

			gra, err := newKeyGraph(infos, [][]model.Link{tc.links})
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)

				return
			}

			require.NoError(t, err)

			predecessors, err := gra.PredecessorMap()
			require.NoError(t, err)

			for to, want := range tc.wantTo {
				var got []string
				for from := range predecessors[to] {
					got = append(got, from)
				}

				assert.ElementsMatch(t, want, got, to)
			}
		})
	}
}

func TestNewKeyGraphMergesLabels(t *testing.T) {
	t.Parallel()

	gra, err := newKeyGraph([]*model.StepInfo{{Name: "a"}, {Name: "b"}}, [][]model.Link{{
		{From: "a", To: "b", Key: "y"},
		{From: "a", To: "b", Key: "z"},
	}})
	require.NoError(t, err)

	edge, err := gra.Edge("a", "b")
	require.NoError(t, err)
	assert.Equal(t, "y, z", edge.Properties.Attributes["label"])
}
