package paginate

import (
	"unicode/utf8"

	"github.com/davidriles/folio/internal/content"
)

// Config controls segmentation behavior.
type Config struct {
	SegmentRunes int // Target segment size in runes of text.
	ImageRunes   int // Rune cost charged for an image element.
}

// DefaultConfig returns sensible defaults for a phone-sized reading pane.
func DefaultConfig() Config {
	return Config{
		SegmentRunes: 1600,
		ImageRunes:   400,
	}
}

// Split groups a chapter's elements into display segments. Each segment is a
// half-open element range [Start, End). Elements are never reordered or
// broken apart: an over-budget paragraph gets a segment to itself, so every
// element lands in exactly one segment.
func Split(elements []content.Element, cfg Config) []content.Segment {
	if cfg.SegmentRunes <= 0 {
		cfg.SegmentRunes = DefaultConfig().SegmentRunes
	}
	if cfg.ImageRunes <= 0 {
		cfg.ImageRunes = DefaultConfig().ImageRunes
	}

	var segments []content.Segment
	start := 0
	runes := 0

	flush := func(end int) {
		if end > start {
			segments = append(segments, content.Segment{
				Start: start,
				End:   end,
				Runes: runes,
			})
		}
		start = end
		runes = 0
	}

	for i, el := range elements {
		cost := elementCost(el, cfg)

		// An oversized text element fills a segment by itself.
		if cost > cfg.SegmentRunes && el.Kind == content.KindText {
			flush(i)
			runes = cost
			flush(i + 1)
			continue
		}

		if runes+cost > cfg.SegmentRunes && runes > 0 {
			// Keep an image attached to the text that precedes it rather
			// than letting it open a segment on its own.
			if el.Kind == content.KindImage {
				runes += cost
				continue
			}
			flush(i)
		}
		runes += cost
	}
	flush(len(elements))

	return segments
}

// SplitChapter segments a chapter in place.
func SplitChapter(ch *content.Chapter, cfg Config) {
	ch.Segments = Split(ch.Elements, cfg)
}

func elementCost(el content.Element, cfg Config) int {
	if el.Kind == content.KindImage {
		return cfg.ImageRunes
	}
	return utf8.RuneCountInString(el.Text)
}
