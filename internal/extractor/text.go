package extractor

import (
	"bufio"
	"io"
	"strings"
	"unicode"

	"github.com/davidriles/folio/internal/content"
)

// TextExtractor handles plain text files. Blank lines end a raw element;
// chapter-heading-looking lines start a new chapter.
type TextExtractor struct{}

var chapterPrefixes = []string{
	"chapter ",
	"part ",
	"book ",
	"prologue",
	"epilogue",
	"interlude",
}

func (e *TextExtractor) Extract(r io.Reader, name string) ([]*content.Chapter, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	current := &content.Chapter{Title: baseTitle(name)}
	chapters := []*content.Chapter{current}

	var para strings.Builder
	flush := func() {
		if para.Len() > 0 {
			current.Elements = append(current.Elements, content.TextElement(para.String()))
			para.Reset()
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		if trimmed == "" {
			flush()
			continue
		}

		if isChapterHeading(trimmed) {
			flush()
			if len(current.Elements) == 0 {
				// Heading before any content names the current chapter.
				current.Title = trimmed
			} else {
				current = &content.Chapter{Title: trimmed}
				chapters = append(chapters, current)
			}
			continue
		}

		// Keep the raw line break: the reflow engine decides whether it was
		// a wrap or a boundary.
		if para.Len() > 0 {
			para.WriteString("\n")
		}
		para.WriteString(line)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return reindex(chapters), nil
}

// isChapterHeading matches the usual front-matter markers plus short
// shouted title lines.
func isChapterHeading(line string) bool {
	lower := strings.ToLower(line)
	for _, prefix := range chapterPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return len(line) < 60 && len(strings.Fields(line)) <= 6 && isShouted(line)
}

func isShouted(s string) bool {
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
