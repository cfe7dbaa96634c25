package coords

import "unicode/utf8"

// TextSummary holds aggregated metrics for a text span.
// This is the summary monoid for the excerpt sum-tree: combining the
// summaries of two adjacent spans with Add yields the summary of their
// concatenation.
type TextSummary struct {
	// Bytes is the UTF-8 byte count.
	Bytes int64

	// Chars is the rune count.
	Chars int64

	// Lines is the number of newline characters.
	Lines uint32

	// LastLineLen is the byte length of the text after the final
	// newline (the whole span when Lines is zero).
	LastLineLen uint32

	// EndsWithNewline reports whether the final byte is '\n'.
	// False for the empty span.
	EndsWithNewline bool
}

// Add combines two adjacent summaries (monoid operation).
func (s TextSummary) Add(other TextSummary) TextSummary {
	if s.Bytes == 0 {
		return other
	}
	if other.Bytes == 0 {
		return s
	}

	result := TextSummary{
		Bytes:           s.Bytes + other.Bytes,
		Chars:           s.Chars + other.Chars,
		Lines:           s.Lines + other.Lines,
		EndsWithNewline: other.EndsWithNewline,
	}
	if other.Lines > 0 {
		result.LastLineLen = other.LastLineLen
	} else {
		result.LastLineLen = s.LastLineLen + other.LastLineLen
	}
	return result
}

// Zero returns the identity element for the summary monoid.
func (TextSummary) Zero() TextSummary {
	return TextSummary{}
}

// IsZero returns true if this is the zero/identity summary.
func (s TextSummary) IsZero() bool {
	return s.Bytes == 0
}

// Extent returns the end point of a span with this summary,
// relative to the span's own start.
func (s TextSummary) Extent() Point {
	return Point{Line: s.Lines, Column: s.LastLineLen}
}

// Summarize calculates metrics for a string.
func Summarize(text string) TextSummary {
	if len(text) == 0 {
		return TextSummary{}
	}

	var sum TextSummary
	sum.Bytes = int64(len(text))

	var lineLen uint32
	for _, r := range text {
		sum.Chars++
		if r == '\n' {
			sum.Lines++
			lineLen = 0
		} else {
			lineLen += uint32(utf8.RuneLen(r))
		}
	}
	sum.LastLineLen = lineLen
	sum.EndsWithNewline = text[len(text)-1] == '\n'
	return sum
}

// CountLines returns the number of newlines in a string.
func CountLines(text string) uint32 {
	var count uint32
	for _, c := range text {
		if c == '\n' {
			count++
		}
	}
	return count
}
