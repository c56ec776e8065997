package nlp

import (
	"errors"
	"strconv"
)

var koreanDigits = map[rune]int{
	'영': 0, '공': 0, '일': 1, '이': 2, '삼': 3,
	'사': 4, '오': 5, '육': 6, '륙': 6, '칠': 7,
	'팔': 8, '구': 9,
}

var koreanUnits = map[rune]int{
	'십': 10, '백': 100, '천': 1000, '만': 10000,
}

var errNotNumeral = errors.New("not a numeral")

// ParseNumeral converts an Arabic or spelled-out Korean numeral ("15",
// "십오", "육십") to its integer value. Any rune that is neither a digit
// nor a Korean numeral makes the whole string unparseable.
func ParseNumeral(s string) (int, error) {
	if s == "" {
		return 0, errNotNumeral
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}

	total := 0
	current := 0
	seen := false
	for _, r := range s {
		if v, ok := koreanDigits[r]; ok {
			current += v
			seen = true
			continue
		}
		if unit, ok := koreanUnits[r]; ok {
			// A bare unit means one of it: 십주 = 10주.
			if current == 0 {
				current = 1
			}
			current *= unit
			total += current
			current = 0
			seen = true
			continue
		}
		return 0, errNotNumeral
	}
	if !seen {
		return 0, errNotNumeral
	}
	return total + current, nil
}

// IsNumeral reports whether the string parses as a numeral.
func IsNumeral(s string) bool {
	_, err := ParseNumeral(s)
	return err == nil
}
