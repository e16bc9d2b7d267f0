package resource

import (
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const annotationsJSON = `{
  "MCRB_ECOLI": {
    "0": {
      "Biological Process": {"GO:0009307": "DNA restriction-modification system"},
      "Molecular Function": {"GO:0005525": "GTP binding"}
    },
    "205": [
      {
        "type": "DISULFID",
        "description": "Intrachain (with C-246); in linked form",
        "evidence": "ECO:0000269|PubMed:12345678",
        "entry": "P15005",
        "aminoacid": "C",
        "paired_position": "246"
      }
    ],
    "201": [
      {
        "type": "BINDING",
        "description": "Interacts with GTP",
        "ligand_id": "ChEBI:CHEBI:37565",
        "evidence": ["ECO:0000269|PubMed:1", "ECO:0000255"],
        "entry": "P15005",
        "aminoacid": "G"
      }
    ]
  },
  "A0A0K2VLF8_9GAMM": {
    "12": [
      {"type": "SITE", "description": "Cleavage", "evidence": "ECO:0000255", "entry": "A0A0K2VLF8", "aminoacid": "R"}
    ],
    "notes": []
  }
}`

func writeFile(t *testing.T, fs billy.Filesystem, name, content string) {
	t.Helper()
	require.NoError(t, util.WriteFile(fs, name, []byte(content), 0o644))
}

func TestParseAnnotations(t *testing.T) {
	a, err := ParseAnnotations([]byte(annotationsJSON))
	require.NoError(t, err)

	assert.Equal(t, []string{"MCRB_ECOLI", "A0A0K2VLF8_9GAMM"}, a.Order)
	assert.Equal(t, 2, a.Len())
	assert.Equal(t, []string{"A0A0K2VLF8_9GAMM/notes"}, a.Skipped)

	mcrb := a.Entry("MCRB_ECOLI")
	require.NotNil(t, mcrb)
	assert.Equal(t, []int{201, 205}, mcrb.SortedPositions())

	disulfid := mcrb.Positions[205][0]
	assert.Equal(t, "DISULFID", disulfid.Type)
	assert.Equal(t, "246", disulfid.PairedPosition)
	assert.Equal(t, "P15005", disulfid.Entry)
	assert.Equal(t, "C", disulfid.AminoAcid)
	assert.Equal(t, "DISULFID | Intrachain (with C-246); in linked form", disulfid.Identity())
	assert.Nil(t, disulfid.Extra)

	binding := mcrb.Positions[201][0]
	assert.Equal(t, "ECO:0000269|PubMed:1", binding.Evidence, "only the first list element is used")
	assert.Equal(t, map[string]string{"ligand_id": "ChEBI:CHEBI:37565"}, binding.Extra)

	assert.Equal(t, map[string]string{
		"GO:0009307": "DNA restriction-modification system",
		"GO:0005525": "GTP binding",
	}, mcrb.GOTerms())
	assert.Empty(t, a.Entry("A0A0K2VLF8_9GAMM").GOTerms())
	assert.Nil(t, a.Entry("missing"))
}

func TestParseAnnotationsEmpty(t *testing.T) {
	a, err := ParseAnnotations(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, a.Len())

	_, err = ParseAnnotations([]byte(`[1, 2]`))
	assert.Error(t, err)

	_, err = ParseAnnotations([]byte(`{"X": {"5": {"type": "SITE"}}}`))
	assert.Error(t, err, "records must be a list")
}

func TestRecordScalarValues(t *testing.T) {
	a, err := ParseAnnotations([]byte(`{"E": {"7": [
		{"type": "BINDING", "description": null, "evidence": [], "ligand_note": 3, "target_position": "9"}
	]}}`))
	require.NoError(t, err)

	rec := a.Entry("E").Positions[7][0]
	assert.Equal(t, "", rec.Description)
	assert.Equal(t, "", rec.Evidence)
	assert.Equal(t, map[string]string{"ligand_note": "3"}, rec.Extra)
}

func TestParseConservations(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		label   string
		scores  map[int]Score
		wantErr bool
	}{
		{
			name:  "object scores",
			input: `{"Q7US48_RHOBA/138-284": {"138": {"conservation": 0.9, "residue": "G"}, "140": {"conservation": 0.5, "residue": "K"}}}`,
			label: "Q7US48_RHOBA/138-284",
			scores: map[int]Score{
				138: {Conservation: 0.9, Residue: "G"},
				140: {Conservation: 0.5, Residue: "K"},
			},
		},
		{
			name:   "bare number scores",
			input:  `{"MCRB_ECOLI/196-350": {"201": 0.97}}`,
			label:  "MCRB_ECOLI/196-350",
			scores: map[int]Score{201: {Conservation: 0.97}},
		},
		{
			name:   "empty document",
			input:  `{}`,
			scores: map[int]Score{},
		},
		{
			name:    "two references",
			input:   `{"A/1-2": {}, "B/1-2": {}}`,
			wantErr: true,
		},
		{
			name:    "non-numeric position",
			input:   `{"A/1-2": {"x": 0.1}}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseConservations([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.label, c.Label)
			assert.Equal(t, tt.scores, c.Scores)
		})
	}
}

func TestConservationsHelpers(t *testing.T) {
	c := &Conservations{Label: "MCRB_ECOLI/196-350", Scores: map[int]Score{210: {}, 201: {}}}
	assert.Equal(t, []int{201, 210}, c.SortedPositions())
	assert.False(t, c.Empty())

	var missing *Conservations
	assert.True(t, missing.Empty())
}

func TestParseInterProScanGO(t *testing.T) {
	row := func(goCol string) string {
		cols := make([]string, 15)
		for i := range cols {
			cols[i] = "-"
		}
		cols[0] = "sp|Q9NU22|MDN1_HUMAN"
		cols[13] = goCol
		return strings.Join(cols, "\t")
	}
	input := strings.Join([]string{
		row("GO:0005524(InterPro)|GO:0016887(PANTHER)"),
		row("-"),
		row("GO:0005524(InterPro)"),
		"short\tline",
		"",
	}, "\n")

	terms, err := ParseInterProScanGO(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{
		"GO:0005524": {},
		"GO:0016887": {},
	}, terms)
}

func TestLoader(t *testing.T) {
	resources := memfs.New()
	outputs := memfs.New()
	writeFile(t, resources, "PF07728/annotations.json", annotationsJSON)
	writeFile(t, resources, "PF07728/conservations.json", `{"MCRB_ECOLI/196-350": {"201": {"conservation": 0.8, "residue": "G"}}}`)
	writeFile(t, outputs, "sp-Q9NU22-MDN1_HUMAN/iprscan.tsv",
		"sp|Q9NU22|MDN1_HUMAN\tx\t1\tPfam\tPF07728\tAAA\t1\t2\t1e-5\tT\t01-01-2024\tIPR011704\tAAA_5\tGO:0005524(InterPro)\n")

	l := NewLoader(resources, outputs)

	d, err := l.LoadDomain("PF07728")
	require.NoError(t, err)
	assert.Equal(t, 2, d.Annotations.Len())
	assert.Equal(t, "MCRB_ECOLI/196-350", d.Conservations.Label)

	terms, err := l.TargetGO("sp|Q9NU22|MDN1_HUMAN")
	require.NoError(t, err)
	assert.Contains(t, terms, "GO:0005524")

	_, err = l.TargetGO("sp|P00000|NONE_HUMAN")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoaderMissingFiles(t *testing.T) {
	l := NewLoader(memfs.New(), nil)

	_, err := l.Annotations("PF00001")
	assert.ErrorIs(t, err, ErrNotFound)

	d, err := l.LoadDomain("PF00001")
	require.NoError(t, err)
	assert.Equal(t, 0, d.Annotations.Len())
	assert.True(t, d.Conservations.Empty())

	_, err = l.TargetGO("anything")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoaderMalformed(t *testing.T) {
	resources := memfs.New()
	writeFile(t, resources, "PF00002/annotations.json", `{"E": "oops"}`)
	l := NewLoader(resources, nil)

	_, err := l.LoadDomain("PF00002")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestSafeName(t *testing.T) {
	assert.Equal(t, "sp-Q9NU22-MDN1_HUMAN", SafeName("sp|Q9NU22|MDN1_HUMAN"))
	assert.Equal(t, "plain", SafeName("plain"))
}
