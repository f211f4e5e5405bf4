// Package textenc maps short strings onto network input vectors and back.
package textenc

import (
	"math"
	"unicode"
)

// Alphabet is the set of encodable characters; anything else encodes as zero.
const Alphabet = "_abcdefghijklmnopqrstuvwxyz"

const scale = float64(len(Alphabet) * 10)

// slack absorbs the rounding of index/scale*scale.
const slack = 1e-9

var folded = map[rune]rune{
	'Ç': 'c', 'ç': 'c',
	'Ğ': 'g', 'ğ': 'g',
	'İ': 'i', 'ı': 'i',
	'Ö': 'o', 'ö': 'o',
	'Ş': 's', 'ş': 's',
	'Ü': 'u', 'ü': 'u',
}

// Normalize folds Turkish letters to their ASCII base and lower-cases the rest.
func Normalize(r rune) rune {
	if base, ok := folded[r]; ok {
		return base
	}
	return unicode.ToLower(r)
}

// Encode converts s to one value per character, then pads with zeros up to
// minLength and truncates to maxLength. maxLength <= 0 means no limit.
func Encode(s string, minLength, maxLength int) []float64 {
	out := make([]float64, 0, max(len(s), minLength))
	for _, r := range s {
		out = append(out, encodeRune(r))
	}
	for len(out) < minLength {
		out = append(out, 0)
	}
	if maxLength > 0 && len(out) > maxLength {
		out = out[:maxLength]
	}
	return out
}

// Decode is the inverse of Encode for values it produced. Values outside the
// alphabet decode as a space.
func Decode(values []float64) string {
	out := make([]rune, len(values))
	for i, v := range values {
		idx := int(math.Floor(v*scale + slack))
		if idx < 0 || idx >= len(Alphabet) {
			out[i] = ' '
			continue
		}
		out[i] = rune(Alphabet[idx])
	}
	return string(out)
}

func encodeRune(r rune) float64 {
	idx := indexOf(Normalize(r))
	if idx < 0 {
		return 0
	}
	return float64(idx) / scale
}

func indexOf(r rune) int {
	for i, c := range Alphabet {
		if c == r {
			return i
		}
	}
	return -1
}
