// Package seq provides nucleotide and codon primitives for coding-sequence
// analysis.
package seq

import "fmt"

// Standard genetic code: DNA codon to amino acid (single letter, '*' = stop).
var codonTable = map[string]byte{
	"TTT": 'F', "TTC": 'F', "TTA": 'L', "TTG": 'L',
	"TCT": 'S', "TCC": 'S', "TCA": 'S', "TCG": 'S',
	"TAT": 'Y', "TAC": 'Y', "TAA": '*', "TAG": '*',
	"TGT": 'C', "TGC": 'C', "TGA": '*', "TGG": 'W',

	"CTT": 'L', "CTC": 'L', "CTA": 'L', "CTG": 'L',
	"CCT": 'P', "CCC": 'P', "CCA": 'P', "CCG": 'P',
	"CAT": 'H', "CAC": 'H', "CAA": 'Q', "CAG": 'Q',
	"CGT": 'R', "CGC": 'R', "CGA": 'R', "CGG": 'R',

	"ATT": 'I', "ATC": 'I', "ATA": 'I', "ATG": 'M',
	"ACT": 'T', "ACC": 'T', "ACA": 'T', "ACG": 'T',
	"AAT": 'N', "AAC": 'N', "AAA": 'K', "AAG": 'K',
	"AGT": 'S', "AGC": 'S', "AGA": 'R', "AGG": 'R',

	"GTT": 'V', "GTC": 'V', "GTA": 'V', "GTG": 'V',
	"GCT": 'A', "GCC": 'A', "GCA": 'A', "GCG": 'A',
	"GAT": 'D', "GAC": 'D', "GAA": 'E', "GAG": 'E',
	"GGT": 'G', "GGC": 'G', "GGA": 'G', "GGG": 'G',
}

// Translate translates an uppercase DNA codon to its amino acid, '*' for
// stop codons. A codon not found in the standard table (wrong length,
// ambiguous base, non-nucleotide character) is an error: lookup failures
// signal corrupt reference data and are never coerced. Callers that may see
// 'N' must guard with HasAmbiguous before calling.
func Translate(codon string) (byte, error) {
	aa, ok := codonTable[codon]
	if !ok {
		return 0, fmt.Errorf("translate: invalid codon %q", codon)
	}
	return aa, nil
}

// IsStopCodon reports whether the codon is one of TAA, TAG, TGA.
func IsStopCodon(codon string) bool {
	aa, err := Translate(codon)
	return err == nil && aa == '*'
}

// HasAmbiguous reports whether the sequence contains an 'N' base.
func HasAmbiguous(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == 'N' {
			return true
		}
	}
	return false
}

// Complement returns the complement of a single uppercase base.
// 'N' complements to itself; any other character is an error.
func Complement(base byte) (byte, error) {
	switch base {
	case 'A':
		return 'T', nil
	case 'T':
		return 'A', nil
	case 'G':
		return 'C', nil
	case 'C':
		return 'G', nil
	case 'N':
		return 'N', nil
	default:
		return 0, fmt.Errorf("complement: invalid base %q", string(base))
	}
}

// ReverseComplement returns the reverse complement of an uppercase DNA
// sequence. Fails on any base outside {A,C,G,T,N}.
func ReverseComplement(s string) (string, error) {
	n := len(s)
	result := make([]byte, n)
	for i := 0; i < n; i++ {
		c, err := Complement(s[n-1-i])
		if err != nil {
			return "", err
		}
		result[i] = c
	}
	return string(result), nil
}

// MutateCodon returns codon with the base at offset (0, 1, or 2) replaced.
func MutateCodon(codon string, offset int, base byte) string {
	if len(codon) != 3 || offset < 0 || offset > 2 {
		return codon
	}
	var buf [3]byte
	copy(buf[:], codon)
	buf[offset] = base
	return string(buf[:])
}
