package normalize

import (
	"regexp"
	"strings"
	"unicode"
)

// sentenceEnders is the closing-punctuation set that marks a paragraph as
// finished for boundary decisions.
const sentenceEnders = ".!?…\"'‘’“”»:;"

// continuationWords flag a trailing word whose sentence almost certainly
// continues in the next fragment.
var continuationWords = map[string]bool{
	"of": true, "to": true, "for": true, "and": true, "but": true,
	"or": true, "the": true, "a": true, "an": true, "my": true,
	"his": true, "her": true, "their": true, "its": true, "in": true,
	"on": true, "at": true, "from": true, "with": true,
}

// continuationWordsStrict is the reduced set used by the later, laxer merge
// passes.
var continuationWordsStrict = map[string]bool{
	"of": true, "to": true, "for": true, "and": true, "but": true,
	"or": true, "the": true, "a": true, "an": true,
}

var (
	reBlankSplit    = regexp.MustCompile(`\n{2,}`)
	reMultiNewline  = regexp.MustCompile(`\n{3,}`)
	reMultiSpace    = regexp.MustCompile(` {2,}`)
	reContinuation  = regexp.MustCompile("\n([a-z0-9])")
	reSingleNewline = regexp.MustCompile("([^\n])\n([^\n])")
	reListNumber    = regexp.MustCompile(`^[0-9]+\.`)
	reListRoman     = regexp.MustCompile(`^[IVXLCDMivxlcdm]+\.`)
)

// Paragraphs reconstructs the author's paragraph boundaries from raw
// extracted text whose line breaks cannot be trusted (HTML line wrapping,
// PDF line and page breaks). The result joins true paragraphs with exactly
// one blank line, carries no other newline runs, no leading or trailing
// whitespace, and no doubled spaces.
//
// The work is an ordered pipeline; each pass consumes the previous pass's
// output and the order is load-bearing:
//
//	0  trim, normalize \r\n and \r to \n
//	1  split candidates on blank lines
//	2  conservative adjacent merge with greedy absorb
//	3  laxer adjacent merge, repeated to fixpoint
//	4  resolve single newlines inside each candidate
//	5  re-join, collapse, re-split, merge once more
//	6  merge on lowercase/digit continuation regardless of length
//	7  final whitespace cleanup
func Paragraphs(text string) string {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	if text == "" {
		return ""
	}

	paras := reBlankSplit.Split(text, -1)
	paras = mergeFragments(paras, 8, continuationWords)
	paras = mergeAdjacent(paras, 10, continuationWordsStrict)
	paras = resolveInnerNewlines(paras)

	joined := strings.Join(paras, "\n\n")
	joined = reMultiNewline.ReplaceAllString(joined, "\n\n")
	paras = strings.Split(joined, "\n\n")
	paras = mergeFragments(paras, 10, continuationWordsStrict)

	paras = mergeByCase(paras)

	out := strings.Join(paras, "\n\n")
	out = collapseSingleNewlines(out)
	out = reMultiSpace.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

// looksUnfinished reports whether a candidate paragraph reads like a fragment
// that should flow into its successor: it must not end in closing
// punctuation, and must be short, end in a continuation word, or end in a
// very short word.
func looksUnfinished(p string, shortWords int, cont map[string]bool) bool {
	if endsWithSentenceEnder(p) {
		return false
	}
	words := strings.Fields(p)
	if len(words) == 0 {
		return false
	}
	if len(words) <= shortWords {
		return true
	}
	last := words[len(words)-1]
	if cont[strings.ToLower(last)] {
		return true
	}
	return len([]rune(last)) <= 4
}

// mergeFragments is the pass 2/5 merge: a single left-to-right walk that,
// once a fragment qualifies, keeps absorbing successors until the next one
// starts uppercase and the accumulated text already ends a sentence.
func mergeFragments(paras []string, shortWords int, cont map[string]bool) []string {
	var out []string
	i := 0
	for i < len(paras) {
		cur := strings.TrimSpace(paras[i])
		if cur == "" {
			i++
			continue
		}

		j := i + 1
		for j < len(paras) && strings.TrimSpace(paras[j]) == "" {
			j++
		}
		if j >= len(paras) || !looksUnfinished(cur, shortWords, cont) {
			out = append(out, cur)
			i++
			continue
		}

		acc := cur + " " + strings.TrimSpace(paras[j])
		j++
		for j < len(paras) {
			next := strings.TrimSpace(paras[j])
			if next == "" {
				j++
				continue
			}
			if startsUpper(next) && endsWithSentenceEnder(acc) {
				break
			}
			acc += " " + next
			j++
		}
		out = append(out, acc)
		i = j
	}
	return out
}

// mergeAdjacent is the pass 3 merge: single pairwise joins, re-scanned until
// no adjacent pair qualifies.
func mergeAdjacent(paras []string, shortWords int, cont map[string]bool) []string {
	for {
		merged := false
		var out []string
		i := 0
		for i < len(paras) {
			cur := strings.TrimSpace(paras[i])
			if cur == "" {
				i++
				continue
			}
			if i+1 < len(paras) {
				next := strings.TrimSpace(paras[i+1])
				if next != "" && looksUnfinished(cur, shortWords, cont) {
					out = append(out, cur+" "+next)
					i += 2
					merged = true
					continue
				}
			}
			out = append(out, cur)
			i++
		}
		paras = out
		if !merged {
			return paras
		}
	}
}

// resolveInnerNewlines is pass 4: each candidate may still hold single
// newlines from the original line wrapping. Every one of them is either
// deleted (hyphen wrap), turned into a space (soft wrap), or promoted to a
// real paragraph boundary, in which case the candidate splits into several
// paragraphs so the boundary survives the later re-join.
func resolveInnerNewlines(paras []string) []string {
	var out []string
	for _, p := range paras {
		p = reMultiSpace.ReplaceAllString(p, " ")
		p = resolveNewlines(p)
		// Safety net: a surviving newline followed by a lowercase letter or
		// digit is still a continuation line.
		p = reContinuation.ReplaceAllString(p, " $1")
		for _, piece := range strings.Split(p, "\n") {
			piece = strings.TrimSpace(piece)
			if piece != "" {
				out = append(out, piece)
			}
		}
	}
	return out
}

func resolveNewlines(p string) string {
	src := []rune(p)
	out := make([]rune, 0, len(src))

	for i := 0; i < len(src); i++ {
		ch := src[i]
		if ch != '\n' {
			out = append(out, ch)
			continue
		}

		// Nearest non-whitespace character already emitted.
		k := len(out) - 1
		for k >= 0 && unicode.IsSpace(out[k]) {
			k--
		}

		switch {
		case k < 0:
			// Leading newline, nothing to join.

		case out[k] == '-':
			// Hyphenated word wrap: rejoin the word with no space.
			out = out[:k]
			for i+1 < len(src) && src[i+1] != '\n' && unicode.IsSpace(src[i+1]) {
				i++
			}

		case isSentenceEnder(out[k]) || nextLineStartsBreak(src, i):
			// Real boundary: exactly one newline, no surrounding whitespace.
			out = append(out[:k+1], '\n')
			for i+1 < len(src) && src[i+1] != '\n' && unicode.IsSpace(src[i+1]) {
				i++
			}

		default:
			// Soft wrap. Join with one space unless a space would double up
			// or butt against trailing punctuation.
			prev := out[len(out)-1]
			var next rune
			if i+1 < len(src) {
				next = src[i+1]
			}
			if !unicode.IsSpace(prev) && prev != '-' &&
				next != 0 && !unicode.IsSpace(next) && next != ',' && next != '.' {
				out = append(out, ' ')
			}
		}
	}

	return string(out)
}

// nextLineStartsBreak inspects up to 60 characters of the line after the
// newline at i and reports whether it opens something that deserves its own
// paragraph: a list item, dialogue, or a heading.
func nextLineStartsBreak(src []rune, i int) bool {
	j := i + 1
	end := j
	for end < len(src) && src[end] != '\n' && end-j < 60 {
		end++
	}
	line := strings.TrimSpace(string(src[j:end]))
	if line == "" {
		return false
	}

	if reListNumber.MatchString(line) || reListRoman.MatchString(line) {
		return true
	}
	switch line[0] {
	case '-', '*':
		return true
	}
	switch firstRune(line) {
	case '•', '"', '“', '”', '\'', '‘', '’', '—', '–':
		return true
	}
	return looksLikeHeading(line)
}

// looksLikeHeading matches short title lines: one to four words, starting
// uppercase, either shouted or ending with a colon.
func looksLikeHeading(line string) bool {
	words := strings.Fields(line)
	if len(words) == 0 || len(words) > 4 {
		return false
	}
	if !startsUpper(line) {
		return false
	}
	return isAllUpper(line) || strings.HasSuffix(line, ":")
}

// mergeByCase is pass 6, the most aggressive merge: case beats length. A
// paragraph starting lowercase or with a digit is glued to a predecessor
// that did not finish its sentence, no matter how long either side is.
func mergeByCase(paras []string) []string {
	var out []string
	for _, p := range paras {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if n := len(out); n > 0 {
			first := firstRune(p)
			if (unicode.IsLower(first) || unicode.IsDigit(first)) && !endsWithSentenceEnder(out[n-1]) {
				out[n-1] += " " + p
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

func collapseSingleNewlines(s string) string {
	for {
		replaced := reSingleNewline.ReplaceAllString(s, "$1 $2")
		if replaced == s {
			return replaced
		}
		s = replaced
	}
}

func isSentenceEnder(r rune) bool {
	return strings.ContainsRune(sentenceEnders, r)
}

func endsWithSentenceEnder(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	runes := []rune(s)
	return isSentenceEnder(runes[len(runes)-1])
}

func startsUpper(s string) bool {
	return unicode.IsUpper(firstRune(s))
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

func isAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasLetter = true
		}
	}
	return hasLetter
}
