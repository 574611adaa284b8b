package annotate

import (
	"fmt"

	"github.com/strainpop/snpannot/internal/genome"
	"github.com/strainpop/snpannot/internal/seq"
	"github.com/strainpop/snpannot/internal/sites"
)

// refCodon locates a site within its gene: the codon spanning the site in
// the gene's oriented coding sequence and the site's offset within that
// codon (0, 1, or 2).
//
// The 0-based gene position is refPos-start on the forward strand and
// end-refPos on the reverse strand, matching the reverse complement
// performed by genome.GeneSequence. A position outside [0, gene length)
// means the merge driver routed the site to the wrong gene and is an
// internal error.
func refCodon(s *sites.Site, g genome.Gene, contigSeq string) (string, int, error) {
	var genePos int64
	if g.Strand == '-' {
		genePos = g.End - s.RefPos
	} else {
		genePos = s.RefPos - g.Start
	}
	if genePos < 0 || genePos >= g.Length() {
		return "", 0, fmt.Errorf("site %s:%d misrouted to gene %s (%d-%d)",
			s.RefID, s.RefPos, g.GeneID, g.Start, g.End)
	}

	geneSeq, err := genome.GeneSequence(contigSeq, g)
	if err != nil {
		return "", 0, err
	}

	offset := int(genePos % 3)
	codonStart := genePos - int64(offset)
	return geneSeq[codonStart : codonStart+3], offset, nil
}

// classifySite derives a site's degeneracy class and per-allele effects from
// its reference codon and codon offset.
//
// An ambiguous reference codon makes the whole site unclassifiable (type N,
// all effects NA). Otherwise each of the four alleles is substituted at the
// offset and translated; matching amino acids (stop matching stop) classify
// as synonymous. The allele equal to the existing base is a no-op and counts
// as synonymous: it represents the reference allele itself and is retained
// in the output. The synonymous count, reference included, is the
// degeneracy class 1D-4D.
func classifySite(codon string, offset int) (SiteType, Effects, error) {
	var effects Effects
	if seq.HasAmbiguous(codon) {
		return SiteUnknown, effects, nil
	}

	refAA, err := seq.Translate(codon)
	if err != nil {
		return "", effects, err
	}

	synCount := 0
	for i, allele := range Alleles {
		altAA, err := seq.Translate(seq.MutateCodon(codon, offset, allele))
		if err != nil {
			return "", effects, err
		}
		if altAA == refAA {
			effects[i] = EffectSynonymous
			synCount++
		} else {
			effects[i] = EffectNonsynonymous
		}
	}

	return degeneracyType(synCount), effects, nil
}
