// Package genome provides the reference assembly and gene model consumed by
// site annotation: contig sequences, sorted coding-gene records, and
// strand-aware gene sequence extraction.
package genome

import (
	"fmt"
	"strings"

	"github.com/strainpop/snpannot/internal/seq"
)

// Assembly maps contig identifiers to their nucleotide sequences.
// Sequences use 1-based addressing in gene coordinates and are read-only
// once loaded.
type Assembly map[string]string

// Gene is a protein-coding gene interval on a contig. Start and End are
// 1-based and inclusive, Start <= End, and the length (End-Start+1) is a
// multiple of 3 (enforced by CheckGenes, not per call).
type Gene struct {
	GeneID    string
	Accession string
	Start     int64
	End       int64
	Strand    byte // '+' or '-'
}

// Length returns the gene length in bases.
func (g Gene) Length() int64 {
	return g.End - g.Start + 1
}

// Contains reports whether pos (1-based) lies within the gene interval.
func (g Gene) Contains(pos int64) bool {
	return pos >= g.Start && pos <= g.End
}

// GeneSequence extracts the gene's coding sequence from its contig,
// uppercased and oriented 5'->3' from the coding start: reverse-strand genes
// are reverse complemented. Fails if the interval exceeds the contig or a
// base outside {A,C,G,T,N} is encountered on the reverse strand.
func GeneSequence(contigSeq string, g Gene) (string, error) {
	if g.Start < 1 || g.End > int64(len(contigSeq)) {
		return "", fmt.Errorf("gene %s: interval %d-%d outside contig of length %d",
			g.GeneID, g.Start, g.End, len(contigSeq))
	}
	s := strings.ToUpper(contigSeq[g.Start-1 : g.End])
	if g.Strand == '-' {
		rc, err := seq.ReverseComplement(s)
		if err != nil {
			return "", fmt.Errorf("gene %s: %w", g.GeneID, err)
		}
		return rc, nil
	}
	return s, nil
}
