package genome

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// LoadFeatures reads a (possibly gzipped) gene-features table and returns
// the coding genes in file order. The first line is a header naming the
// columns; gene_id, accession, start, end, and strand are required. Rows
// whose gene_type column is "rna" are skipped, as are rows with a column
// count different from the header.
func LoadFeatures(path string) ([]Gene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open features file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	return ParseFeatures(reader)
}

// ParseFeatures parses a gene-features table from a reader.
func ParseFeatures(reader io.Reader) ([]Gene, error) {
	scanner := bufio.NewScanner(reader)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("scan features: %w", err)
		}
		return nil, fmt.Errorf("features file is empty")
	}

	fields := strings.Fields(scanner.Text())
	col := make(map[string]int, len(fields))
	for i, name := range fields {
		col[name] = i
	}
	for _, required := range []string{"gene_id", "accession", "start", "end", "strand"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("features header missing column %q", required)
		}
	}
	typeCol, hasType := col["gene_type"]

	var genes []Gene
	lineNum := 1
	for scanner.Scan() {
		lineNum++
		values := strings.Fields(scanner.Text())
		if len(values) != len(fields) {
			continue
		}
		if hasType && values[typeCol] == "rna" {
			continue
		}

		start, err := strconv.ParseInt(values[col["start"]], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("features line %d: parse start: %w", lineNum, err)
		}
		end, err := strconv.ParseInt(values[col["end"]], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("features line %d: parse end: %w", lineNum, err)
		}
		strand := values[col["strand"]]
		if strand != "+" && strand != "-" {
			return nil, fmt.Errorf("features line %d: invalid strand %q", lineNum, strand)
		}

		genes = append(genes, Gene{
			GeneID:    values[col["gene_id"]],
			Accession: values[col["accession"]],
			Start:     start,
			End:       end,
			Strand:    strand[0],
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan features: %w", err)
	}

	return genes, nil
}
