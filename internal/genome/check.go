package genome

import "fmt"

// CheckGenes validates the preconditions the annotation merge relies on:
// every gene's accession exists in the assembly, every gene length is a
// multiple of 3, and the gene list is sorted by (accession, start). Any
// violation indicates corrupt upstream data and fails the whole run.
func CheckGenes(genes []Gene, assembly Assembly) error {
	for i, g := range genes {
		if _, ok := assembly[g.Accession]; !ok {
			return fmt.Errorf("gene %s: accession %s not found in assembly", g.GeneID, g.Accession)
		}
		if g.Start > g.End {
			return fmt.Errorf("gene %s: start %d exceeds end %d", g.GeneID, g.Start, g.End)
		}
		if g.Length()%3 != 0 {
			return fmt.Errorf("gene %s: length %d is not a multiple of 3", g.GeneID, g.Length())
		}
		if i > 0 {
			prev := genes[i-1]
			if g.Accession < prev.Accession ||
				(g.Accession == prev.Accession && g.Start < prev.Start) {
				return fmt.Errorf("gene %s: records not sorted by (accession, start)", g.GeneID)
			}
		}
	}
	return nil
}
