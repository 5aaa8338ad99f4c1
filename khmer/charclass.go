// Package khmer segments Khmer text, which is written without spaces
// between words, into a sequence of word-like tokens. A Dictionary is
// loaded once and shared read-only; each Segmenter carries its own
// scratch buffers and is cheap to create per goroutine.
package khmer

// Character classification for the Khmer script.
// Khmer Unicode block: U+1780 - U+17FF (main), U+19E0 - U+19FF (symbols).

const (
	classConsonant uint16 = 1 << iota
	classIndependentVowel
	classDependentVowel
	classSign
	classCoeng
	classDigit
	classCurrency
	classKhmer
	classSeparator
	classValidSingle
)

// classTable covers [0, 0x1800); the handful of relevant code points above
// that range (Khmer symbols, curly quotes) are special-cased in the
// predicates.
const classTableSize = 0x1800

var classTable [classTableSize]uint16

// validSingleWords are the code points allowed to stand alone as a
// one-character word: a subset of the consonants and independent vowels.
var validSingleWords = []rune{
	0x1780, 0x1781, 0x1782, 0x1784, 0x1785, 0x1786, 0x1789, 0x178A,
	0x178F, 0x1791, 0x1796, 0x179A, 0x179B, 0x179F, 0x17A1,
	0x17A3, 0x17A4, 0x17A6, 0x17A7, 0x17A9, 0x17AA, 0x17AC, 0x17AD,
}

// asciiSeparators are the non-Khmer punctuation characters treated as
// separators, alongside whitespace and the guillemet/quote marks below.
const asciiSeparators = `!?.,;:"'()[]{}-/$%`

func init() {
	mark := func(lo, hi rune, class uint16) {
		for r := lo; r <= hi; r++ {
			classTable[r] |= class
		}
	}

	mark(0x1780, 0x17A2, classConsonant)
	mark(0x17A3, 0x17B3, classIndependentVowel)
	mark(0x17B6, 0x17C5, classDependentVowel)
	mark(0x17C6, 0x17D1, classSign)
	classTable[0x17D3] |= classSign
	classTable[0x17DD] |= classSign
	classTable[0x17D2] |= classCoeng

	mark('0', '9', classDigit)
	mark(0x17E0, 0x17E9, classDigit)

	classTable['$'] |= classCurrency
	classTable[0x17DB] |= classCurrency // riel; deliberately also a separator

	mark(0x1780, 0x17FF, classKhmer)

	mark(0x17D4, 0x17DB, classSeparator)
	for _, r := range asciiSeparators {
		classTable[r] |= classSeparator
	}
	for _, r := range []rune{' ', '\t', '\r', '\n', 0x00AB, 0x00BB, 0x02DD} {
		classTable[r] |= classSeparator
	}

	for _, r := range validSingleWords {
		classTable[r] |= classValidSingle
	}
}

func hasClass(r rune, class uint16) bool {
	return r >= 0 && r < classTableSize && classTable[r]&class != 0
}

// IsConsonant reports whether r is a Khmer consonant (U+1780 - U+17A2).
func IsConsonant(r rune) bool { return hasClass(r, classConsonant) }

// IsIndependentVowel reports whether r is an independent vowel (U+17A3 - U+17B3).
func IsIndependentVowel(r rune) bool { return hasClass(r, classIndependentVowel) }

// IsDependentVowel reports whether r is a dependent vowel (U+17B6 - U+17C5).
func IsDependentVowel(r rune) bool { return hasClass(r, classDependentVowel) }

// IsSign reports whether r is a Khmer sign or diacritic.
func IsSign(r rune) bool { return hasClass(r, classSign) }

// IsCoeng reports whether r is the subscript marker U+17D2.
func IsCoeng(r rune) bool { return r == 0x17D2 }

// IsDigit reports whether r is an ASCII or Khmer digit.
func IsDigit(r rune) bool { return hasClass(r, classDigit) }

// IsCurrencySymbol reports whether r is a currency symbol ($ or riel).
func IsCurrencySymbol(r rune) bool { return hasClass(r, classCurrency) }

// IsKhmerChar reports whether r is in the Khmer Unicode ranges.
func IsKhmerChar(r rune) bool {
	return hasClass(r, classKhmer) || (r >= 0x19E0 && r <= 0x19FF)
}

// IsSeparator reports whether r is punctuation or whitespace that splits
// tokens. The riel sign U+17DB is both a separator and a currency symbol.
func IsSeparator(r rune) bool {
	return hasClass(r, classSeparator) || r == 0x201C || r == 0x201D
}

// IsValidSingleWord reports whether r may stand alone as a one-character word.
func IsValidSingleWord(r rune) bool { return hasClass(r, classValidSingle) }
