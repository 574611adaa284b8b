package annotate

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strainpop/snpannot/internal/genome"
	"github.com/strainpop/snpannot/internal/sites"
)

// sliceSource yields sites from memory.
type sliceSource struct {
	sites []*sites.Site
	i     int
}

func (s *sliceSource) Next() (*sites.Site, error) {
	if s.i >= len(s.sites) {
		return nil, nil
	}
	site := s.sites[s.i]
	s.i++
	return site, nil
}

// memWriter captures annotated sites for assertions.
type memWriter struct {
	header  bool
	flushed bool
	sites   []*sites.Site
	anns    []Annotation
}

func (w *memWriter) WriteHeader() error { w.header = true; return nil }
func (w *memWriter) Flush() error       { w.flushed = true; return nil }

func (w *memWriter) Write(s *sites.Site, ann Annotation) error {
	w.sites = append(w.sites, s)
	w.anns = append(w.anns, ann)
	return nil
}

func testAssembly() genome.Assembly {
	return genome.Assembly{
		"chr1": "ATGAAATAA" + "CCCCC" + "ATGGGTTGA" + "CC", // genes at 1-9 and 15-23
		"chr2": "GG" + "TTATTTCAT" + "GGGG",                // '-' strand gene at 3-11 codes ATGAAATAA
	}
}

func testGenes() []genome.Gene {
	return []genome.Gene{
		{GeneID: "g1", Accession: "chr1", Start: 1, End: 9, Strand: '+'},
		{GeneID: "g2", Accession: "chr1", Start: 15, End: 23, Strand: '+'},
		{GeneID: "g3", Accession: "chr2", Start: 3, End: 11, Strand: '-'},
	}
}

func TestAnnotateCodingSite(t *testing.T) {
	// Site at chr1:4 sits at offset 0 of codon AAA (Lys): only the identity
	// substitution is synonymous.
	a := New(testAssembly(), testGenes())
	ann, err := a.Annotate(&sites.Site{RefID: "chr1", RefPos: 4, RefAllele: 'A'})
	require.NoError(t, err)

	assert.Equal(t, "g1", ann.GeneID)
	assert.Equal(t, SiteType("1D"), ann.Type)
	assert.Equal(t, EffectSynonymous, ann.Effects[alleleIndex('A')])
	assert.Equal(t, EffectNonsynonymous, ann.Effects[alleleIndex('T')])
	assert.Equal(t, EffectNonsynonymous, ann.Effects[alleleIndex('C')])
	assert.Equal(t, EffectNonsynonymous, ann.Effects[alleleIndex('G')])
	assert.Equal(t, 0, a.Cursor(), "cursor stays on the matched gene")
}

func TestAnnotateAmbiguousRefAllele(t *testing.T) {
	// An N reference allele short-circuits before the merge loop, even when
	// a gene overlaps the position.
	a := New(testAssembly(), testGenes())
	ann, err := a.Annotate(&sites.Site{RefID: "chr1", RefPos: 4, RefAllele: 'N'})
	require.NoError(t, err)

	assert.Equal(t, SiteUnknown, ann.Type)
	assert.Empty(t, ann.GeneID)
	assert.Equal(t, Effects{}, ann.Effects)
	assert.Equal(t, 0, a.Cursor())
}

func TestAnnotateNonCodingBeforeFirstGene(t *testing.T) {
	genes := []genome.Gene{{GeneID: "g1", Accession: "chr1", Start: 15, End: 23, Strand: '+'}}
	a := New(testAssembly(), genes)

	ann, err := a.Annotate(&sites.Site{RefID: "chr1", RefPos: 3, RefAllele: 'G'})
	require.NoError(t, err)

	assert.Equal(t, SiteNonCoding, ann.Type)
	assert.Empty(t, ann.GeneID)
	assert.Equal(t, 0, a.Cursor(), "cursor unchanged for upstream sites")
}

func TestAnnotateNonCodingAfterLastGene(t *testing.T) {
	a := New(testAssembly(), testGenes())
	ann, err := a.Annotate(&sites.Site{RefID: "chr2", RefPos: 13, RefAllele: 'G'})
	require.NoError(t, err)

	assert.Equal(t, SiteNonCoding, ann.Type)
	assert.Equal(t, len(testGenes()), a.Cursor(), "all genes retired")
}

func TestAnnotateReverseStrandGene(t *testing.T) {
	// chr2:9 is the third-from-last base of the oriented sequence ATGAAATAA:
	// gene_pos = 11-9 = 2, offset 2 of the start codon ATG, which is 1D.
	a := New(testAssembly(), testGenes())
	ann, err := a.Annotate(&sites.Site{RefID: "chr2", RefPos: 9, RefAllele: 'C'})
	require.NoError(t, err)

	assert.Equal(t, "g3", ann.GeneID)
	assert.Equal(t, SiteType("1D"), ann.Type)
	assert.Equal(t, EffectSynonymous, ann.Effects[alleleIndex('G')], "identity base in gene orientation")
}

// Every site's assigned gene matches brute-force interval containment, for
// an interleaving of sites across genes and contigs.
func TestMergeCorrectness(t *testing.T) {
	assembly := testAssembly()
	genes := testGenes()

	var input []*sites.Site
	for _, contig := range []string{"chr1", "chr2"} {
		for pos := int64(1); pos <= int64(len(assembly[contig])); pos++ {
			input = append(input, &sites.Site{RefID: contig, RefPos: pos, RefAllele: 'A'})
		}
	}

	a := New(assembly, genes)
	lastCursor := 0
	for _, s := range input {
		ann, err := a.Annotate(s)
		require.NoError(t, err)

		require.GreaterOrEqual(t, a.Cursor(), lastCursor, "cursor never moves backward")
		lastCursor = a.Cursor()

		var want string
		for _, g := range genes {
			if g.Accession == s.RefID && g.Contains(s.RefPos) {
				want = g.GeneID
			}
		}
		assert.Equal(t, want, ann.GeneID, "site %s:%d", s.RefID, s.RefPos)
		if want == "" {
			assert.Equal(t, SiteNonCoding, ann.Type)
		} else {
			assert.Contains(t, []SiteType{"1D", "2D", "3D", "4D"}, ann.Type)
		}
	}

	assert.LessOrEqual(t, a.Advances(), len(genes)+len(input),
		"total cursor advances are bounded by genes + sites")
}

func TestAnnotateAll(t *testing.T) {
	input := []*sites.Site{
		{RefID: "chr1", RefPos: 4, RefAllele: 'A'},
		{RefID: "chr1", RefPos: 11, RefAllele: 'C'},
		{RefID: "chr2", RefPos: 9, RefAllele: 'C'},
	}

	a := New(testAssembly(), testGenes())
	w := &memWriter{}
	require.NoError(t, a.AnnotateAll(&sliceSource{sites: input}, w))

	assert.True(t, w.header)
	assert.True(t, w.flushed)
	require.Len(t, w.anns, 3)
	assert.Equal(t, "g1", w.anns[0].GeneID)
	assert.Equal(t, SiteNonCoding, w.anns[1].Type)
	assert.Equal(t, "g3", w.anns[2].GeneID)
}

func TestAnnotateAllMaxSites(t *testing.T) {
	var input []*sites.Site
	for pos := int64(1); pos <= 9; pos++ {
		input = append(input, &sites.Site{RefID: "chr1", RefPos: pos, RefAllele: 'A'})
	}

	a := New(testAssembly(), testGenes())
	a.SetMaxSites(5)
	w := &memWriter{}
	require.NoError(t, a.AnnotateAll(&sliceSource{sites: input}, w))

	assert.Len(t, w.anns, 5)
	assert.True(t, w.flushed)
}

func TestAnnotateMissingAssemblyContig(t *testing.T) {
	genes := []genome.Gene{{GeneID: "g1", Accession: "chrX", Start: 1, End: 9, Strand: '+'}}
	a := New(testAssembly(), genes)

	_, err := a.Annotate(&sites.Site{RefID: "chrX", RefPos: 4, RefAllele: 'A'})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found in assembly")
}

func TestForContigStartsAtFirstGene(t *testing.T) {
	a := New(testAssembly(), testGenes())
	assert.Equal(t, 0, a.forContig("chr1").Cursor())
	assert.Equal(t, 2, a.forContig("chr2").Cursor())
	assert.Equal(t, 3, a.forContig("chr9").Cursor())
}

// A full pass over many consecutive sites advances the cursor at most once
// per gene, keeping the merge linear.
func TestCursorAmortizedAdvances(t *testing.T) {
	contig := ""
	var genes []genome.Gene
	for i := 0; i < 50; i++ {
		genes = append(genes, genome.Gene{
			GeneID:    fmt.Sprintf("g%d", i),
			Accession: "chr1",
			Start:     int64(len(contig)) + 1,
			End:       int64(len(contig)) + 9,
			Strand:    '+',
		})
		contig += "ATGAAATAA" + "CC"
	}
	assembly := genome.Assembly{"chr1": contig}

	a := New(assembly, genes)
	n := 0
	for pos := int64(1); pos <= int64(len(contig)); pos += 3 {
		_, err := a.Annotate(&sites.Site{RefID: "chr1", RefPos: pos, RefAllele: 'A'})
		require.NoError(t, err)
		n++
	}

	assert.LessOrEqual(t, a.Advances(), len(genes)+n)
	assert.LessOrEqual(t, a.Advances(), len(genes), "each gene is retired at most once")
}
