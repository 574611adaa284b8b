package annotate

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/strainpop/snpannot/internal/sites"
)

// contigBatch holds all sites of one contig, in input order. Within a
// contig the cursor invariant forbids parallelism, so the contig is the
// unit of work.
type contigBatch struct {
	Seq   int
	RefID string
	Sites []*sites.Site
}

// batchResult holds the annotations for one contig batch.
type batchResult struct {
	Seq   int
	Sites []*sites.Site
	Anns  []Annotation
	Err   error
}

// AnnotateAllParallel annotates contigs concurrently: consecutive sites
// sharing a ref_id form a batch, each batch is merged by an independent
// annotator whose cursor starts at the contig's first gene, and results are
// written in input order. If workers is 0, runtime.NumCPU() is used.
//
// Output is byte-identical to AnnotateAll on the same input.
func (a *Annotator) AnnotateAllParallel(src sites.Source, w Writer, workers int) error {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	if err := w.WriteHeader(); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	batches := make(chan contigBatch, workers)
	var readErr error

	go func() {
		defer close(batches)
		var current contigBatch
		count := 0
		for {
			s, err := src.Next()
			if err != nil {
				readErr = fmt.Errorf("read site: %w", err)
				return
			}
			if s == nil {
				break
			}
			if len(current.Sites) > 0 && s.RefID != current.RefID {
				batches <- current
				current = contigBatch{Seq: current.Seq + 1, RefID: s.RefID}
			} else if len(current.Sites) == 0 {
				current.RefID = s.RefID
			}
			current.Sites = append(current.Sites, s)

			count++
			if a.maxSites > 0 && count >= a.maxSites {
				break
			}
		}
		if len(current.Sites) > 0 {
			batches <- current
		}
	}()

	results := make(chan batchResult, workers)
	var wg sync.WaitGroup
	wg.Add(workers)

	for range workers {
		go func() {
			defer wg.Done()
			for batch := range batches {
				ca := a.forContig(batch.RefID)
				anns := make([]Annotation, 0, len(batch.Sites))
				var batchErr error
				for _, s := range batch.Sites {
					ann, err := ca.Annotate(s)
					if err != nil {
						batchErr = err
						break
					}
					anns = append(anns, ann)
				}
				results <- batchResult{Seq: batch.Seq, Sites: batch.Sites, Anns: anns, Err: batchErr}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	if err := orderedCollect(results, func(r batchResult) error {
		if r.Err != nil {
			return r.Err
		}
		for i, s := range r.Sites {
			if err := w.Write(s, r.Anns[i]); err != nil {
				return fmt.Errorf("write site: %w", err)
			}
		}
		return nil
	}); err != nil {
		return err
	}

	if readErr != nil {
		return readErr
	}

	return w.Flush()
}

// orderedCollect calls fn for each result in sequence order, buffering
// out-of-order arrivals until the next expected sequence number is ready.
func orderedCollect(results <-chan batchResult, fn func(batchResult) error) error {
	pending := make(map[int]batchResult)
	next := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}
