package normalize

import (
	"strings"
	"unicode"
)

// StripPagePrefixes removes literal "Page |" and "Page " markers left in the
// text by page-oriented extractors. Unconditional substitution; run it before
// or after StripPageNumbers, order does not matter.
func StripPagePrefixes(text string) string {
	text = strings.ReplaceAll(text, "Page |", "")
	return strings.ReplaceAll(text, "Page ", "")
}

// StripPageNumbers scans text once, left to right, and removes digit runs that
// look like injected page numbers. Classification only happens for
// page-oriented (PDF-extracted) content; for everything else the digit runs
// pass through untouched and only the punctuation/newline normalizations
// below apply.
//
// Two normalizations ride along on the same scan regardless of pageOriented:
//
//   - a comma directly after '.' or '"' is dropped (extraction artifact);
//   - every newline is joined into the surrounding text with a single space,
//     unless one of the two characters before it is '.' or '"', in which case
//     the break is promoted to a triple newline so the reflow split downstream
//     treats it as a hard paragraph boundary. The promoted form keeps a
//     trailing space ("...text.\n\n\n "); the reflow engine cleans that up,
//     do not "fix" it here.
//
// Each page-number value is removed at most once per call: a later occurrence
// of the same value is assumed to be narrative content and kept.
func StripPageNumbers(text string, pageOriented bool) string {
	if text == "" {
		return ""
	}

	src := []rune(text)
	out := make([]rune, 0, len(src))
	seen := make(map[int]struct{})

	for i := 0; i < len(src); i++ {
		ch := src[i]

		if pageOriented && isASCIIDigit(ch) {
			i = classifyRun(src, i, &out, seen)
			continue
		}

		out = append(out, ch)

		if ch == ',' && i > 0 && isBreakTerminator(src[i-1]) {
			out = out[:len(out)-1]
			continue
		}

		if ch == '\n' {
			out = out[:len(out)-1]
			if n := len(out); n > 0 && out[n-1] == ' ' {
				out = out[:n-1]
			}
			if (i >= 1 && isBreakTerminator(src[i-1])) || (i >= 2 && isBreakTerminator(src[i-2])) {
				out = append(out, '\n', '\n', '\n')
			}
			out = append(out, ' ')
		}
	}

	return string(out)
}

// classifyRun consumes the maximal digit run starting at start (digits plus
// embedded ',' and '.') and either strips it from the output or copies it
// through. Returns the index of the last consumed rune.
func classifyRun(src []rune, start int, out *[]rune, seen map[int]struct{}) int {
	value := 0
	hasComma := false
	isDecimal := false

	j := start
	for j < len(src) && (isASCIIDigit(src[j]) || src[j] == ',' || src[j] == '.') {
		switch c := src[j]; {
		case isASCIIDigit(c):
			// Cap the accumulator; anything past four digits is already out
			// of page-number range.
			if value <= 99999 {
				value = value*10 + int(c-'0')
			}
		case c == ',':
			hasComma = true
		default: // '.'
			// A period directly followed by a digit marks a decimal number.
			if j+1 < len(src) && isASCIIDigit(src[j+1]) {
				isDecimal = true
			}
		}
		j++
	}

	var before, after rune
	if start > 0 {
		before = src[start-1]
	}
	if j < len(src) {
		after = src[j]
	}

	inBrackets := before != 0 && strings.ContainsRune(`([{<"'`, before)
	closedBracket := after != 0 && strings.ContainsRune(`)]}>"'`, after)

	preserve := hasComma ||
		isDecimal ||
		hasOrdinalSuffix(src, j) ||
		inTextualContext(src, start) ||
		(inBrackets && closedBracket) ||
		isOperator(before) || isOperator(after)

	reasonable := value >= 1 && value <= 999
	cleanBefore := before == 0 || !isAlphanumeric(before)
	cleanAfter := after == 0 || !isAlphanumeric(after)

	if _, dup := seen[value]; reasonable && cleanBefore && cleanAfter && !preserve && !dup {
		seen[value] = struct{}{}
		return j - 1
	}

	*out = append(*out, src[start:j]...)
	return j - 1
}

// hasOrdinalSuffix reports whether the two runes at j spell an ordinal ending.
func hasOrdinalSuffix(src []rune, j int) bool {
	if j+1 >= len(src) {
		return false
	}
	switch string(src[j : j+2]) {
	case "th", "st", "nd", "rd":
		return true
	}
	return false
}

// textualCues are lead-in words that mark a number as narrative content
// ("the 9", "level 7", "floor 3").
var textualCues = []string{"the ", "at ", "to ", "level ", "floor "}

func inTextualContext(src []rune, start int) bool {
	lo := start - 10
	if lo < 0 {
		lo = 0
	}
	window := strings.ToLower(string(src[lo:start]))
	for _, cue := range textualCues {
		if strings.HasSuffix(window, cue) {
			return true
		}
	}
	return false
}

func isOperator(r rune) bool {
	switch r {
	case '+', '-', '×', 'x', '*', '/', '=', '÷':
		return true
	}
	return false
}

// isBreakTerminator matches the narrow terminator set used by the newline
// promotion and comma fixes; the reflow engine uses a wider set.
func isBreakTerminator(r rune) bool {
	return r == '.' || r == '"'
}

func isASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isAlphanumeric(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
