package transfer

import (
	"strings"

	"github.com/inodb/vibe-transfer/internal/align"
	"github.com/inodb/vibe-transfer/internal/resource"
)

// DefaultGoodECO lists the evidence codes accepted when none are configured.
var DefaultGoodECO = []string{
	"ECO:0000269",
	"ECO:0000303",
	"ECO:0000305",
	"ECO:0000312",
	"ECO:0007744",
}

// pairTypes are annotation types whose records may name a partner position.
var pairTypes = map[string]bool{
	"DISULFID": true,
	"CROSSLNK": true,
	"SITE":     true,
	"BINDING":  true,
}

// extraCopyTypes carry ligand or site metadata into the built record.
var extraCopyTypes = map[string]bool{
	"BINDING":  true,
	"ACT_SITE": true,
}

// paireable reports whether rec takes part in a pair.
func paireable(rec resource.Record) bool {
	return pairTypes[rec.Type] && rec.PairedPosition != ""
}

// Built is an annotation record normalized for one target position.
type Built struct {
	Type          string
	Description   string
	Evidence      string
	Accession     string
	EntryName     string
	RefPos        int
	TargetPos     int
	RefResidue    string
	TargetResidue string
	Extra         map[string]string

	// Pairing metadata, set only for pair members.
	PairedTargetPos string
	PairStatus      string
	PartnerMissing  bool // declared partner has no records
}

// Identity returns the "type | description" key.
func (b *Built) Identity() string {
	return b.Type + " | " + b.Description
}

// filterEvidence keeps the comma-separated items whose leading code is in good.
func filterEvidence(evidence string, good map[string]bool) string {
	if evidence == "" {
		return ""
	}
	var kept []string
	for _, item := range strings.Split(evidence, ",") {
		item = strings.TrimSpace(item)
		code, _, _ := strings.Cut(item, "|")
		if good[strings.TrimSpace(code)] {
			kept = append(kept, item)
		}
	}
	return strings.Join(kept, ", ")
}

// buildRecord normalizes rec for a target position. It returns nil when no
// evidence survives filtering.
func buildRecord(rec resource.Record, entryName string, col align.Column, good map[string]bool) *Built {
	evidence := filterEvidence(rec.Evidence, good)
	if evidence == "" {
		return nil
	}

	refResidue := rec.AminoAcid
	if refResidue == "" {
		refResidue = string(align.Upper(col.SourceChar))
	}

	b := &Built{
		Type:          rec.Type,
		Description:   rec.Description,
		Evidence:      evidence,
		Accession:     rec.Entry,
		EntryName:     entryName,
		RefPos:        col.Source.N,
		TargetPos:     col.Target.N,
		RefResidue:    refResidue,
		TargetResidue: string(align.Upper(col.TargetChar)),
	}
	if extraCopyTypes[rec.Type] && len(rec.Extra) > 0 {
		b.Extra = make(map[string]string, len(rec.Extra))
		for k, v := range rec.Extra {
			b.Extra[k] = v
		}
	}
	return b
}

func goodSet(codes []string) map[string]bool {
	if len(codes) == 0 {
		codes = DefaultGoodECO
	}
	good := make(map[string]bool, len(codes))
	for _, c := range codes {
		good[strings.TrimSpace(c)] = true
	}
	return good
}
