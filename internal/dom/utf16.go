// internal/dom/utf16.go
package dom

import (
	"unicode/utf16"
	"unicode/utf8"
)

// Character data is stored as UTF-8 but addressed by the DOM in UTF-16 code
// units. These helpers convert between the two.

// utf16Len returns the length of s in UTF-16 code units. Each invalid UTF-8
// byte counts as one unit, as it decodes to U+FFFD.
func utf16Len(s string) int {
	n := 0
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		n += utf16.RuneLen(r)
		i += size
	}
	return n
}

// utf16ToByte converts a UTF-16 offset into a byte offset in s. An offset
// past the end is an IndexSize error; one that falls between the two halves
// of a surrogate pair is rounded down to the start of the pair.
func utf16ToByte(s string, offset int) (int, error) {
	if offset < 0 {
		return 0, newError(IndexSize, "", "offset %d is negative", offset)
	}
	units := 0
	for i := 0; i < len(s); {
		if units == offset {
			return i, nil
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		w := utf16.RuneLen(r)
		if units+w > offset {
			return i, nil
		}
		units += w
		i += size
	}
	if units == offset {
		return len(s), nil
	}
	return 0, newError(IndexSize, "", "offset %d exceeds length %d", offset, units)
}

// utf16Range converts (offset, count) into byte bounds, clamping count to the
// end of the string.
func utf16Range(s string, offset, count int) (start, end int, err error) {
	start, err = utf16ToByte(s, offset)
	if err != nil {
		return 0, 0, err
	}
	if count < 0 {
		count = 0
	}
	total := utf16Len(s)
	if offset+count > total || offset+count < offset {
		return start, len(s), nil
	}
	end, err = utf16ToByte(s, offset+count)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}
