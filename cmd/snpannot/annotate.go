package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/strainpop/snpannot/internal/annotate"
	"github.com/strainpop/snpannot/internal/duckdb"
	"github.com/strainpop/snpannot/internal/genome"
	"github.com/strainpop/snpannot/internal/output"
	"github.com/strainpop/snpannot/internal/sites"
)

func newAnnotateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "annotate <site-list>",
		Short: "Annotate a coordinate-sorted site list",
		Long: `Annotate streams a site list (sorted by ref_id, ref_pos) against the
reference genome and gene features, writing one tab-delimited row per site.
Plain and gzipped inputs are supported; use '-' to read sites from stdin.`,
		Example: `  snpannot annotate --genome rep.fna.gz --features rep.features.gz sites.list
  snpannot annotate --duckdb sites.duckdb -o out.snps.info sites.list.gz
  cat sites.list | snpannot annotate --genome rep.fna --features rep.features -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnnotate(cmd, args[0])
		},
	}

	cmd.Flags().String("genome", "", "Reference genome FASTA (plain or gzipped)")
	cmd.Flags().String("features", "", "Gene features table (plain or gzipped)")
	cmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")
	cmd.Flags().Int("max-sites", 0, "Stop after this many sites (0 = no cap)")
	cmd.Flags().Int("workers", 1, "Annotate contigs concurrently with this many workers")
	cmd.Flags().String("duckdb", "", "Also store annotated sites in a DuckDB database at this path")

	viper.BindPFlag("genome", cmd.Flags().Lookup("genome"))
	viper.BindPFlag("features", cmd.Flags().Lookup("features"))
	viper.BindPFlag("max_sites", cmd.Flags().Lookup("max-sites"))
	viper.BindPFlag("workers", cmd.Flags().Lookup("workers"))
	viper.BindPFlag("duckdb", cmd.Flags().Lookup("duckdb"))

	return cmd
}

func runAnnotate(cmd *cobra.Command, sitePath string) error {
	verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose")
	logger, err := newLogger(verbose)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	genomePath := viper.GetString("genome")
	featuresPath := viper.GetString("features")
	if genomePath == "" || featuresPath == "" {
		return fmt.Errorf("--genome and --features are required (flags or ~/.snpannot.yaml)")
	}

	started := time.Now()

	assembly, err := genome.LoadFASTA(genomePath)
	if err != nil {
		return fmt.Errorf("load genome: %w", err)
	}
	logger.Info("genome loaded", zap.String("path", genomePath), zap.Int("contigs", len(assembly)))

	genes, err := genome.LoadFeatures(featuresPath)
	if err != nil {
		return fmt.Errorf("load features: %w", err)
	}
	if err := genome.CheckGenes(genes, assembly); err != nil {
		return fmt.Errorf("validate features: %w", err)
	}
	logger.Info("features loaded", zap.String("path", featuresPath), zap.Int("genes", len(genes)))

	parser, err := sites.NewParser(sitePath)
	if err != nil {
		return err
	}
	defer parser.Close()

	out := os.Stdout
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		out, err = os.Create(path)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer out.Close()
	}

	writers := []annotate.Writer{output.NewTabWriter(out)}

	var siteStore *duckdb.Store
	var storeWriter *duckdb.SiteWriter
	if dbPath := viper.GetString("duckdb"); dbPath != "" {
		siteStore, err = duckdb.Open(dbPath)
		if err != nil {
			return err
		}
		defer siteStore.Close()
		storeWriter = duckdb.NewSiteWriter(siteStore)
		writers = append(writers, storeWriter)
	}

	annotator := annotate.New(assembly, genes)
	annotator.SetLogger(logger)
	annotator.SetMaxSites(viper.GetInt("max_sites"))

	w := multiWriter(writers)
	if workers := viper.GetInt("workers"); workers > 1 {
		err = annotator.AnnotateAllParallel(parser, w, workers)
	} else {
		err = annotator.AnnotateAll(parser, w)
	}
	if err != nil {
		return err
	}

	if siteStore != nil {
		if err := siteStore.RecordRun(started, genomePath, featuresPath, storeWriter.Count()); err != nil {
			return err
		}
	}

	logger.Info("done", zap.Duration("elapsed", time.Since(started)))
	return nil
}

// multiWriter fans annotated sites out to several writers.
type multiWriter []annotate.Writer

func (m multiWriter) WriteHeader() error {
	for _, w := range m {
		if err := w.WriteHeader(); err != nil {
			return err
		}
	}
	return nil
}

func (m multiWriter) Write(s *sites.Site, ann annotate.Annotation) error {
	for _, w := range m {
		if err := w.Write(s, ann); err != nil {
			return err
		}
	}
	return nil
}

func (m multiWriter) Flush() error {
	for _, w := range m {
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return nil
}
