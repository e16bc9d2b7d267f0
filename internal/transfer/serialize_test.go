package transfer

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func disulfidResult(t *testing.T) *Result {
	t.Helper()
	s := NewSession("PF07728", nil)
	require.NoError(t, s.Validate(mdn1Row(451), mcrbRow(), loadEntry(t, disulfidPair("246", "246"))))
	return s.Result()
}

func path(t *testing.T, node any, keys ...string) any {
	t.Helper()
	for _, k := range keys {
		m, ok := node.(map[string]any)
		require.True(t, ok, "expected object at %q", k)
		node, ok = m[k]
		require.True(t, ok, "missing key %q", k)
	}
	return node
}

func TestTree(t *testing.T) {
	tree := disulfidResult(t).Tree()
	block := path(t, tree, "PF07728", "sequence_id", targetID, "hit_intervals", fullHit)

	assert.Equal(t, 325, path(t, block, "hit_start"))
	assert.Equal(t, 451, path(t, block, "hit_end"))
	seq := path(t, block, "sequence").(string)
	assert.True(t, len(seq) > 20)
	assert.Equal(t, "VLLEGPIGCGKTSLVE", seq[:16])
	assert.Equal(t, len(seq), path(t, block, "length"))

	entry := path(t, block, "annotations", "positions", "333", disulfid205)
	assert.Equal(t, true, path(t, entry, "hit"))
	assert.Equal(t, "DISULFID", path(t, entry, "essentials", "type"))
	assert.Equal(t, "C", path(t, entry, "essentials", "target_amino_acid"))
	assert.Equal(t, map[string]any{
		"rep_primary_accession": "P15005",
		"rep_mnemo_name":        "MCRB_ECOLI",
		"count":                 1,
	}, path(t, entry, "paired_position", "373"))
	assert.NotNil(t, path(t, entry, "additional_keys", "annot_position", "246"))
	assert.NotContains(t, entry, "paired_hit")

	assert.Equal(t, []any{"333", "373"}, path(t, block, "annotations", "indices", "matches"))
	assert.Equal(t, []any{}, path(t, block, "annotations", "indices", "misses"))
	assert.Equal(t, map[string]any{
		"positions": []any{333},
		"ranges":    []any{[]any{333, 333}},
	}, path(t, block, "annotation_ranges", disulfid205))

	assert.Equal(t, "10", path(t, block, "position_conversion", "target_to_aln", "325"))
	assert.Equal(t, "325", path(t, block, "position_conversion", "aln_to_target", "10"))
}

func TestTree_JSONRoundTripRestoresRangeSets(t *testing.T) {
	data, err := json.Marshal(disulfidResult(t).Tree())
	require.NoError(t, err)

	var decoded any
	require.NoError(t, json.Unmarshal(data, &decoded))
	restored := RestoreRangeSets(decoded)

	block := path(t, restored, "PF07728", "sequence_id", targetID, "hit_intervals", fullHit)
	rs, ok := path(t, block, "annotation_ranges", disulfid246).(*RangeSet)
	require.True(t, ok)
	assert.Equal(t, []Range{{373, 373}}, rs.Ranges)
	assert.True(t, rs.Contains(373))

	conserved, ok := path(t, block, "conservation_ranges", "conserved_positions").(*RangeSet)
	require.True(t, ok)
	assert.Empty(t, conserved.Ranges)

	// Lookalikes that are not range sets stay untouched.
	assert.IsType(t, map[string]any{}, path(t, block, "annotations", "indices"))
}

func TestRestoreRangeSets_Rejects(t *testing.T) {
	tests := []any{
		map[string]any{"positions": []any{1.5}, "ranges": []any{}},
		map[string]any{"positions": []any{1.0}, "ranges": []any{[]any{1.0}}},
		map[string]any{"positions": []any{1.0}, "ranges": []any{}, "extra": true},
		map[string]any{"positions": "x", "ranges": []any{}},
	}
	for _, in := range tests {
		_, isRange := RestoreRangeSets(in).(*RangeSet)
		assert.False(t, isRange, "%v", in)
	}
}

func TestTargetHasAnnotations(t *testing.T) {
	r := disulfidResult(t)
	assert.True(t, r.Target(targetID).HasAnnotations())

	empty := NewResult("PF07728")
	empty.ensureInterval(mdn1Row(451))
	assert.False(t, empty.Target(targetID).HasAnnotations())
	assert.Nil(t, empty.TargetTree("unknown"))
}
