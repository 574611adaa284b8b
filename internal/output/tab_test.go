package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strainpop/snpannot/internal/annotate"
	"github.com/strainpop/snpannot/internal/genome"
	"github.com/strainpop/snpannot/internal/sites"
)

func TestTabWriter(t *testing.T) {
	var buf bytes.Buffer
	tw := NewTabWriter(&buf)

	require.NoError(t, tw.WriteHeader())

	coding := annotate.Annotation{GeneID: "g1", Type: "1D"}
	for i, e := range []annotate.Effect{
		annotate.EffectSynonymous,
		annotate.EffectNonsynonymous,
		annotate.EffectNonsynonymous,
		annotate.EffectNonsynonymous,
	} {
		coding.Effects[i] = e
	}

	require.NoError(t, tw.Write(&sites.Site{RefID: "chr1", RefPos: 4, RefAllele: 'A'}, coding))
	require.NoError(t, tw.Write(&sites.Site{RefID: "chr1", RefPos: 12, RefAllele: 'C'},
		annotate.Annotation{Type: annotate.SiteNonCoding}))
	require.NoError(t, tw.Write(&sites.Site{RefID: "chr2", RefPos: 1, RefAllele: 'N'},
		annotate.Annotation{Type: annotate.SiteUnknown}))
	require.NoError(t, tw.Flush())

	want := strings.Join([]string{
		"ref_id\tref_pos\tref_allele\tgene_id\tsite_type\tsnp_A\tsnp_T\tsnp_C\tsnp_G",
		"chr1\t4\tA\tg1\t1D\tSYN\tNS\tNS\tNS",
		"chr1\t12\tC\tNA\tNC\tNA\tNA\tNA\tNA",
		"chr2\t1\tN\tNA\tN\tNA\tNA\tNA\tNA",
	}, "\n") + "\n"
	assert.Equal(t, want, buf.String())
}

// Re-running a full pass over identical inputs yields byte-identical output.
func TestPipelineIdempotent(t *testing.T) {
	assembly := genome.Assembly{"chr1": "CCATGAAATAACC"}
	genes := []genome.Gene{{GeneID: "g1", Accession: "chr1", Start: 3, End: 11, Strand: '+'}}

	run := func() string {
		input := strings.Join([]string{
			"ref_id\tref_pos\tref_allele",
			"chr1\t1\tC",
			"chr1\t6\tA",
			"chr1\t8\tN",
			"chr1\t13\tC",
		}, "\n")

		src, err := sites.NewParserFromReader(strings.NewReader(input))
		require.NoError(t, err)

		var buf bytes.Buffer
		a := annotate.New(assembly, genes)
		require.NoError(t, a.AnnotateAll(src, NewTabWriter(&buf)))
		return buf.String()
	}

	first := run()
	assert.Equal(t, first, run())
	assert.Contains(t, first, "chr1\t6\tA\tg1\t")
	assert.Contains(t, first, "chr1\t8\tN\tNA\tN\tNA\tNA\tNA\tNA")
	assert.Contains(t, first, "chr1\t13\tC\tNA\tNC\t")
}
