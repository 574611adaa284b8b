// Package sites provides streaming access to coordinate-sorted variant site
// lists.
package sites

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Site is one candidate variant position on a reference contig.
type Site struct {
	RefID     string
	RefPos    int64 // 1-based
	RefAllele byte  // one of A/C/G/T/N
}

// Source yields sites in (RefID lexicographic, RefPos ascending) order.
// Next returns nil at end of input.
type Source interface {
	Next() (*Site, error)
}

// Parser reads a tab-delimited site list with a header line naming at least
// the ref_id, ref_pos, and ref_allele columns. It verifies the
// (ref_id, ref_pos) sort order as it streams so the annotation merge can
// assume it; an order regression is fatal.
type Parser struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
	lineNumber int

	idCol, posCol, alleleCol int
	numCols                  int

	lastID  string
	lastPos int64
}

// NewParser opens a site list file. Plain and gzipped files are supported;
// use "-" for stdin.
func NewParser(path string) (*Parser, error) {
	if path == "-" {
		return NewParserFromReader(os.Stdin)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open site list: %w", err)
	}

	p := &Parser{file: file}

	// Check for gzip magic bytes, then rewind.
	buf := make([]byte, 2)
	if _, err := file.Read(buf); err != nil {
		file.Close()
		return nil, fmt.Errorf("read site list: %w", err)
	}
	if _, err := file.Seek(0, 0); err != nil {
		file.Close()
		return nil, fmt.Errorf("seek site list: %w", err)
	}

	if buf[0] == 0x1f && buf[1] == 0x8b {
		p.gzipReader, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		p.reader = bufio.NewReader(p.gzipReader)
	} else {
		p.reader = bufio.NewReader(file)
	}

	if err := p.parseHeader(); err != nil {
		p.Close()
		return nil, err
	}

	return p, nil
}

// NewParserFromReader creates a parser from an io.Reader (e.g., stdin).
func NewParserFromReader(r io.Reader) (*Parser, error) {
	p := &Parser{reader: bufio.NewReader(r)}
	if err := p.parseHeader(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Parser) parseHeader() error {
	line, err := p.reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return fmt.Errorf("read site list header: %w", err)
	}
	p.lineNumber++

	fields := strings.Fields(line)
	p.idCol, p.posCol, p.alleleCol = -1, -1, -1
	p.numCols = len(fields)
	for i, name := range fields {
		switch name {
		case "ref_id":
			p.idCol = i
		case "ref_pos":
			p.posCol = i
		case "ref_allele":
			p.alleleCol = i
		}
	}
	if p.idCol == -1 || p.posCol == -1 || p.alleleCol == -1 {
		return fmt.Errorf("site list header must name ref_id, ref_pos, and ref_allele columns")
	}
	return nil
}

// Next returns the next site, or nil once the input is exhausted.
func (p *Parser) Next() (*Site, error) {
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("read site list: %w", err)
		}
		atEOF := err == io.EOF

		line = strings.TrimRight(line, "\r\n")
		if line != "" {
			p.lineNumber++
			s, err := p.parseLine(line)
			if err != nil {
				return nil, err
			}
			return s, nil
		}
		if atEOF {
			return nil, nil
		}
	}
}

func (p *Parser) parseLine(line string) (*Site, error) {
	values := strings.Fields(line)
	if len(values) != p.numCols {
		return nil, fmt.Errorf("site list line %d: expected %d columns, got %d",
			p.lineNumber, p.numCols, len(values))
	}

	pos, err := strconv.ParseInt(values[p.posCol], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("site list line %d: parse ref_pos: %w", p.lineNumber, err)
	}

	allele := values[p.alleleCol]
	if len(allele) != 1 || !strings.ContainsRune("ACGTN", rune(allele[0])) {
		return nil, fmt.Errorf("site list line %d: invalid ref_allele %q", p.lineNumber, allele)
	}

	s := &Site{
		RefID:     values[p.idCol],
		RefPos:    pos,
		RefAllele: allele[0],
	}

	if s.RefID < p.lastID || (s.RefID == p.lastID && s.RefPos < p.lastPos) {
		return nil, fmt.Errorf("site list line %d: sites not sorted by (ref_id, ref_pos)", p.lineNumber)
	}
	p.lastID, p.lastPos = s.RefID, s.RefPos

	return s, nil
}

// Close releases the underlying file handles.
func (p *Parser) Close() error {
	if p.gzipReader != nil {
		p.gzipReader.Close()
	}
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}
