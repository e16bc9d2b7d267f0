package transfer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-transfer/internal/align"
	"github.com/inodb/vibe-transfer/internal/resource"
)

func TestPopulateConservation(t *testing.T) {
	ref := align.Row{ID: "REF_HUMAN", Start: 10, End: 14, Sequence: "AcDEF"}
	target := align.TargetRow{ID: "T1", Start: 100, End: 104, Sequence: "ACDXF"}
	cons := &resource.Conservations{
		Label: "REF_HUMAN/10-14",
		Scores: map[int]resource.Score{
			10: {Conservation: 0.9, Residue: "A"},
			11: {Conservation: 0.5, Residue: "C"},
			13: {Conservation: 0.7, Residue: "E"},
			14: {Conservation: 0.2},
		},
	}

	s := NewSession("PF00001", nil)
	s.PopulateConservation(target, ref, cons)

	iv := s.Result().Interval("T1", "100-104")
	require.NotNil(t, iv)
	assert.Equal(t, &ConservationScore{Conservation: 0.9, Residue: "A", Hit: true}, iv.Conservations[100])
	assert.Equal(t, &ConservationScore{Conservation: 0.7, Residue: "E", Hit: false}, iv.Conservations[103])
	assert.Equal(t, &ConservationScore{Conservation: 0.2, Residue: "F", Hit: true}, iv.Conservations[104], "residue falls back to the aligned reference")
	assert.NotContains(t, iv.Conservations, 101, "insert columns are not transferred")

	assert.Equal(t, map[int]struct{}{100: {}, 104: {}}, iv.ConservationMatches)
	assert.Equal(t, map[int]struct{}{103: {}}, iv.ConservationMisses)
	assert.Equal(t, []Range{{100, 100}, {104, 104}}, iv.Conserved.Ranges)
	assert.Equal(t, []Range{{103, 103}}, iv.NonConserved.Ranges)
}

func TestPopulateConservation_Empty(t *testing.T) {
	s := NewSession("PF00001", nil)
	s.PopulateConservation(mdn1Row(451), mcrbRow(), &resource.Conservations{})
	assert.Nil(t, s.Result().Target(targetID))
}

func TestGOOverlap(t *testing.T) {
	tests := []struct {
		name    string
		target  map[string]struct{}
		ref     map[string]string
		terms   map[string]string
		jaccard float64
	}{
		{
			name:    "partial overlap",
			target:  map[string]struct{}{"GO:1": {}, "GO:2": {}},
			ref:     map[string]string{"GO:2": "b", "GO:3": "c"},
			terms:   map[string]string{"GO:2": "b"},
			jaccard: 1.0 / 3.0,
		},
		{
			name:    "identical",
			target:  map[string]struct{}{"GO:1": {}},
			ref:     map[string]string{"GO:1": "a"},
			terms:   map[string]string{"GO:1": "a"},
			jaccard: 1,
		},
		{
			name:    "disjoint",
			target:  map[string]struct{}{"GO:1": {}},
			ref:     map[string]string{"GO:2": "b"},
			terms:   map[string]string{},
			jaccard: 0,
		},
		{
			name:    "both empty",
			terms:   map[string]string{},
			jaccard: 0,
		},
		{
			name:    "empty target",
			ref:     map[string]string{"GO:2": "b"},
			terms:   map[string]string{},
			jaccard: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := goOverlap(tt.target, tt.ref)
			assert.Equal(t, tt.terms, m.Terms)
			assert.InDelta(t, tt.jaccard, m.Jaccard, 1e-9)
			assert.GreaterOrEqual(t, m.Jaccard, 0.0)
			assert.LessOrEqual(t, m.Jaccard, 1.0)
		})
	}
}

func TestPopulateGO(t *testing.T) {
	annotations, err := resource.ParseAnnotations([]byte(`{"MCRB_ECOLI": {
	  "0": {"Molecular Function": {"GO:0005525": "GTP binding"}, "Biological Process": {"GO:0009307": "DNA restriction-modification system"}},
	  "201": [{"type": "BINDING", "description": "Interacts with GTP", "evidence": "ECO:0000269", "entry": "P15005", "aminoacid": "G"}],
	  "202": [{"type": "BINDING", "description": "Interacts with GTP", "evidence": "ECO:0000269", "entry": "P15005", "aminoacid": "P"}]
	}}`))
	require.NoError(t, err)

	s := NewSession("PF07728", nil)
	require.NoError(t, s.Validate(mdn1Row(451), mcrbRow(), annotations.Entry("MCRB_ECOLI")))
	s.PopulateGO(targetID, map[string]struct{}{"GO:0005525": {}, "GO:0016887": {}}, annotations)

	iv := s.Result().Interval(targetID, fullHit)
	first := iv.Entry(329, bindingGTP).GO["MCRB_ECOLI"]
	require.NotNil(t, first)
	assert.Equal(t, map[string]string{"GO:0005525": "GTP binding"}, first.Terms)
	assert.InDelta(t, 1.0/3.0, first.Jaccard, 1e-9)
	assert.Same(t, first, iv.Entry(330, bindingGTP).GO["MCRB_ECOLI"], "overlap is computed once per reference entry")

	// Unknown targets are ignored.
	s.PopulateGO("nope", nil, annotations)
}
