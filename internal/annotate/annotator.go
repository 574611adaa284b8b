package annotate

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/strainpop/snpannot/internal/genome"
	"github.com/strainpop/snpannot/internal/sites"
)

// Annotator merges a coordinate-sorted site stream against the sorted gene
// list with a single monotonically advancing gene cursor. The cursor is
// instance state owned by the annotator, never global, so independent
// annotators can process separate contigs concurrently.
//
// One annotator handles one ordered pass: the cursor never moves backward,
// which makes the merge linear across a full pass instead of a per-site
// scan. Annotate must not be called concurrently on the same instance.
type Annotator struct {
	assembly genome.Assembly
	genes    []genome.Gene
	cursor   int
	advances int

	maxSites int
	logger   *zap.Logger
}

// New creates an annotator over a validated assembly and sorted gene list
// (see genome.CheckGenes).
func New(assembly genome.Assembly, genes []genome.Gene) *Annotator {
	return &Annotator{
		assembly: assembly,
		genes:    genes,
		logger:   zap.NewNop(),
	}
}

// SetLogger sets the logger for progress and warning messages.
func (a *Annotator) SetLogger(l *zap.Logger) {
	a.logger = l
}

// SetMaxSites caps the number of sites processed by AnnotateAll. Zero means
// no cap. This is an operational limit, not part of merge correctness.
func (a *Annotator) SetMaxSites(n int) {
	a.maxSites = n
}

// Cursor returns the current gene-cursor index.
func (a *Annotator) Cursor() int {
	return a.cursor
}

// Advances returns the total number of cursor advances in this pass.
func (a *Annotator) Advances() int {
	return a.advances
}

// Annotate classifies a single site against the gene list. Sites must
// arrive in (ref_id, ref_pos) order; the cursor only moves forward.
func (a *Annotator) Annotate(s *sites.Site) (Annotation, error) {
	ann := Annotation{Type: SiteNonCoding}

	// A missing reference base is a defined outcome, not an error.
	if s.RefAllele == 'N' {
		ann.Type = SiteUnknown
		return ann, nil
	}

	for {
		// No genes remain: every later site is non-coding.
		if a.cursor >= len(a.genes) {
			return ann, nil
		}
		g := a.genes[a.cursor]

		switch {
		// Site precedes the gene: non-coding, cursor stays for the next site.
		case s.RefID < g.Accession || (s.RefID == g.Accession && s.RefPos < g.Start):
			return ann, nil

		// Site follows the gene: the gene can never match a later site
		// either, retire it.
		case s.RefID > g.Accession || (s.RefID == g.Accession && s.RefPos > g.End):
			a.cursor++
			a.advances++

		// Site lies inside the gene. The cursor stays: a later site may
		// fall in this gene too.
		default:
			contigSeq, ok := a.assembly[g.Accession]
			if !ok {
				return ann, fmt.Errorf("gene %s: accession %s not found in assembly", g.GeneID, g.Accession)
			}
			codon, offset, err := refCodon(s, g, contigSeq)
			if err != nil {
				return ann, err
			}
			typ, effects, err := classifySite(codon, offset)
			if err != nil {
				return ann, fmt.Errorf("site %s:%d: %w", s.RefID, s.RefPos, err)
			}
			ann.GeneID = g.GeneID
			ann.Type = typ
			ann.Effects = effects
			return ann, nil
		}
	}
}

// Writer receives annotated sites in input order.
type Writer interface {
	WriteHeader() error
	Write(s *sites.Site, ann Annotation) error
	Flush() error
}

// AnnotateAll streams every site from src through annotation to w, in input
// order, honoring the max-sites cap.
func (a *Annotator) AnnotateAll(src sites.Source, w Writer) error {
	if err := w.WriteHeader(); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	count := 0
	for {
		s, err := src.Next()
		if err != nil {
			return fmt.Errorf("read site: %w", err)
		}
		if s == nil {
			break
		}

		ann, err := a.Annotate(s)
		if err != nil {
			return err
		}
		if err := w.Write(s, ann); err != nil {
			return fmt.Errorf("write site: %w", err)
		}

		count++
		if a.maxSites > 0 && count >= a.maxSites {
			a.logger.Info("site cap reached", zap.Int("max_sites", a.maxSites))
			break
		}
	}

	a.logger.Info("annotation pass complete",
		zap.Int("sites", count),
		zap.Int("cursor_advances", a.advances))

	return w.Flush()
}

// forContig returns a fresh annotator whose cursor starts at the first gene
// on the given contig, for independent per-contig passes.
func (a *Annotator) forContig(refID string) *Annotator {
	start := sort.Search(len(a.genes), func(i int) bool {
		return a.genes[i].Accession >= refID
	})
	return &Annotator{
		assembly: a.assembly,
		genes:    a.genes,
		cursor:   start,
		logger:   a.logger,
	}
}
