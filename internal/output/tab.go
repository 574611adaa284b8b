// Package output provides writers for annotated site records.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/strainpop/snpannot/internal/annotate"
	"github.com/strainpop/snpannot/internal/sites"
)

// Columns is the site-info header, one row per input site in input order.
var Columns = []string{
	"ref_id", "ref_pos", "ref_allele", "gene_id", "site_type",
	"snp_A", "snp_T", "snp_C", "snp_G",
}

// sentinel marks fields with no applicable value.
const sentinel = "NA"

// TabWriter writes annotated sites in tab-delimited format.
type TabWriter struct {
	w *bufio.Writer
}

// NewTabWriter creates a tab-delimited site-info writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{w: bufio.NewWriter(w)}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(Columns, "\t") + "\n")
	return err
}

// Write writes a single annotated site.
func (tw *TabWriter) Write(s *sites.Site, ann annotate.Annotation) error {
	geneID := ann.GeneID
	if geneID == "" {
		geneID = sentinel
	}

	values := []string{
		s.RefID,
		strconv.FormatInt(s.RefPos, 10),
		string(s.RefAllele),
		geneID,
		string(ann.Type),
	}
	for i := range annotate.Alleles {
		values = append(values, ann.Effects[i].String())
	}

	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}
