package genome

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadFASTA reads a (possibly gzipped) multi-record FASTA file into an
// Assembly. Record identifiers are the first whitespace-delimited token of
// each header line; sequences are uppercased on load.
func LoadFASTA(path string) (Assembly, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open FASTA file: %w", err)
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

	return ParseFASTA(reader)
}

// ParseFASTA parses FASTA content from a reader.
func ParseFASTA(reader io.Reader) (Assembly, error) {
	scanner := bufio.NewScanner(reader)
	// Long sequence lines are common in assembled genomes.
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	assembly := make(Assembly)
	var currentID string
	var currentSeq strings.Builder

	flush := func() {
		if currentID != "" {
			assembly[currentID] = strings.ToUpper(currentSeq.String())
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, ">") {
			flush()
			currentID = parseHeader(line)
			currentSeq.Reset()
		} else {
			currentSeq.WriteString(strings.TrimSpace(line))
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan FASTA: %w", err)
	}
	if len(assembly) == 0 {
		return nil, fmt.Errorf("no FASTA records found")
	}

	return assembly, nil
}

// parseHeader extracts the record identifier from a FASTA header line.
func parseHeader(header string) string {
	header = strings.TrimPrefix(header, ">")
	if idx := strings.IndexAny(header, " \t"); idx != -1 {
		return header[:idx]
	}
	return header
}
