// Package annotate classifies variant sites by gene context and codon
// degeneracy using a coordinate-sorted streaming merge against the gene
// model.
package annotate

import "fmt"

// Alleles lists the four nucleotides in the fixed order used for effect
// indexing and output columns.
var Alleles = [4]byte{'A', 'T', 'C', 'G'}

// Effect is the coding consequence of substituting one allele at a site.
type Effect uint8

const (
	// EffectNA marks an allele with no defined effect: the site is
	// non-coding or its reference codon is ambiguous.
	EffectNA Effect = iota
	// EffectSynonymous leaves the encoded amino acid unchanged.
	EffectSynonymous
	// EffectNonsynonymous changes the encoded amino acid.
	EffectNonsynonymous
)

// String returns the output token for the effect.
func (e Effect) String() string {
	switch e {
	case EffectSynonymous:
		return "SYN"
	case EffectNonsynonymous:
		return "NS"
	default:
		return "NA"
	}
}

// Effects holds the per-allele effect for each of the four nucleotides, in
// Alleles order. The key set is closed, so a fixed array with EffectNA as
// the zero value replaces an open-ended map.
type Effects [4]Effect

// alleleIndex returns the Effects index for a nucleotide, or -1 for any
// other byte.
func alleleIndex(base byte) int {
	for i, a := range Alleles {
		if a == base {
			return i
		}
	}
	return -1
}

// SiteType classifies a site: NC (non-coding), N (ambiguous reference), or
// a degeneracy class 1D through 4D for coding sites.
type SiteType string

const (
	SiteNonCoding SiteType = "NC"
	SiteUnknown   SiteType = "N"
)

// degeneracyType formats a degeneracy class from the count of synonymous
// substitutions among the four alleles.
func degeneracyType(synCount int) SiteType {
	return SiteType(fmt.Sprintf("%dD", synCount))
}

// Annotation is the gene-context result for one site. GeneID is empty for
// non-coding and unknown sites; writers render the NA sentinel.
type Annotation struct {
	GeneID  string
	Type    SiteType
	Effects Effects
}
