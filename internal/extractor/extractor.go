package extractor

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/davidriles/folio/internal/content"
)

// Extractor converts raw document bytes into chapters of raw elements.
// The text elements it emits are unnormalized: line breaks appear as found
// in the source (with literal <br> already turned into \n), and PDF chapters
// are flagged PageOriented. Cleaning them up is the normalize package's job.
type Extractor interface {
	Extract(r io.Reader, name string) ([]*content.Chapter, error)
}

// SupportedExtensions lists file extensions this service can ingest.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".xhtml":    true,
	".pdf":      true,
	".epub":     true,
	".docx":     true,
}

// ForFile returns the extractor for a filename, selected by extension only
// (no content sniffing).
func ForFile(filename string) (Extractor, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextExtractor{}, nil
	case ".md", ".markdown":
		return &MarkdownExtractor{}, nil
	case ".html", ".htm", ".xhtml":
		return &HTMLExtractor{}, nil
	case ".pdf":
		return &PDFExtractor{}, nil
	case ".epub":
		return &EPUBExtractor{}, nil
	case ".docx":
		return &DOCXExtractor{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// reindex assigns chapter indices and drops empty chapters.
func reindex(chapters []*content.Chapter) []*content.Chapter {
	out := chapters[:0]
	for _, ch := range chapters {
		if len(ch.Elements) == 0 {
			continue
		}
		ch.Index = len(out)
		out = append(out, ch)
	}
	return out
}

func baseTitle(filename string) string {
	name := filepath.Base(filename)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
