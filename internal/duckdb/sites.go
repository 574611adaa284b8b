package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/strainpop/snpannot/internal/annotate"
	"github.com/strainpop/snpannot/internal/sites"
)

// SiteRow is one annotated site staged for insertion.
type SiteRow struct {
	Site sites.Site
	Ann  annotate.Annotation
}

// WriteSites batch-inserts annotated sites using the Appender API. Input
// sites are unique by (ref_id, ref_pos), so no deduplication is needed.
func (s *Store) WriteSites(rows []SiteRow) error {
	if len(rows) == 0 {
		return nil
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "site_info")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, r := range rows {
		geneID := r.Ann.GeneID
		if geneID == "" {
			geneID = "NA"
		}
		if err := appender.AppendRow(
			r.Site.RefID, r.Site.RefPos, string(r.Site.RefAllele),
			geneID, string(r.Ann.Type),
			r.Ann.Effects[0].String(), r.Ann.Effects[1].String(),
			r.Ann.Effects[2].String(), r.Ann.Effects[3].String(),
		); err != nil {
			return fmt.Errorf("append site: %w", err)
		}
	}

	return appender.Flush()
}

// SiteWriter adapts a Store to the annotate.Writer interface, buffering
// rows and appending them in batches.
type SiteWriter struct {
	store *Store
	buf   []SiteRow
	count int64
}

// batchSize bounds buffered rows between appender flushes.
const batchSize = 4096

// NewSiteWriter creates an annotate.Writer backed by the store.
func NewSiteWriter(store *Store) *SiteWriter {
	return &SiteWriter{store: store}
}

// WriteHeader is a no-op: the schema is the header.
func (w *SiteWriter) WriteHeader() error {
	return nil
}

// Write stages one annotated site.
func (w *SiteWriter) Write(s *sites.Site, ann annotate.Annotation) error {
	w.buf = append(w.buf, SiteRow{Site: *s, Ann: ann})
	w.count++
	if len(w.buf) >= batchSize {
		return w.flushBatch()
	}
	return nil
}

// Flush writes any buffered rows.
func (w *SiteWriter) Flush() error {
	return w.flushBatch()
}

// Count returns the number of sites written.
func (w *SiteWriter) Count() int64 {
	return w.count
}

func (w *SiteWriter) flushBatch() error {
	if len(w.buf) == 0 {
		return nil
	}
	if err := w.store.WriteSites(w.buf); err != nil {
		return err
	}
	w.buf = w.buf[:0]
	return nil
}
