package normalize

import (
	"strings"
	"testing"
)

func TestParagraphs_EmptyInput(t *testing.T) {
	if got := Paragraphs(""); got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
	if got := Paragraphs("   \n\t\n  "); got != "" {
		t.Errorf("expected empty output for whitespace input, got %q", got)
	}
}

func TestParagraphs_HyphenWrapRejoined(t *testing.T) {
	got := Paragraphs("This is inter-\nesting prose.")
	want := "This is interesting prose."
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestParagraphs_SentenceEndBreakPreserved(t *testing.T) {
	got := Paragraphs("End of one.\nNext starts here.")
	want := "End of one.\n\nNext starts here."
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestParagraphs_ShortFragmentsMerged(t *testing.T) {
	got := Paragraphs("No sense\n\nof honor.")
	want := "No sense of honor."
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestParagraphs_SoftWrapJoinedWithSpace(t *testing.T) {
	got := Paragraphs("the caravan moved\nslowly through the dunes.")
	want := "the caravan moved slowly through the dunes."
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestParagraphs_LowercaseContinuationMergedRegardlessOfLength(t *testing.T) {
	// Both sides are too long for the length-based merges; the case heuristic
	// still joins them because the right side starts lowercase.
	left := "The expedition continued deeper into the ancient labyrinth beneath the shattered mountain"
	right := "carrying the last of their supplies."
	got := Paragraphs(left + "\n\n" + right)
	want := left + " " + right
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestParagraphs_HeadingLineKeptOnOwnBoundary(t *testing.T) {
	in := "The caravan crossed the dunes for nine days without rest or water\nCHAPTER TWO\nThe oasis appeared at dawn."
	got := Paragraphs(in)
	if !strings.Contains(got, "water\n\nCHAPTER TWO") {
		t.Errorf("expected paragraph break before heading, got %q", got)
	}
}

func TestParagraphs_CRLFNormalized(t *testing.T) {
	got := Paragraphs("First line ends.\r\n\r\nSecond paragraph here.")
	want := "First line ends.\n\nSecond paragraph here."
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestParagraphs_NoDoubleSpaces(t *testing.T) {
	inputs := []string{
		"A  lot   of  spaces.\nAnd a   wrapped line",
		"word \n word \n word.",
		"Tail.   \n\n   Head of the next one.",
	}
	for _, in := range inputs {
		got := Paragraphs(in)
		if strings.Contains(got, "  ") {
			t.Errorf("output contains double space: %q -> %q", in, got)
		}
	}
}

func TestParagraphs_Trimmed(t *testing.T) {
	got := Paragraphs("\n\n  Some text in the middle.  \n\n")
	if got != strings.TrimSpace(got) {
		t.Errorf("output not trimmed: %q", got)
	}
	if got != "Some text in the middle." {
		t.Errorf("unexpected output %q", got)
	}
}

func TestParagraphs_Idempotent(t *testing.T) {
	inputs := []string{
		"End of one.\nNext starts here.",
		"No sense\n\nof honor.",
		"This is inter-\nesting prose.",
		"First paragraph stands alone.\n\nSecond paragraph is also complete.\n\nA third one closes it out.",
		"the caravan moved\nslowly through the dunes.\n\nNight fell quickly.",
	}
	for _, in := range inputs {
		once := Paragraphs(in)
		twice := Paragraphs(once)
		if once != twice {
			t.Errorf("not idempotent for %q:\n first: %q\nsecond: %q", in, once, twice)
		}
	}
}

func TestParagraphs_SeparatorIsExactlyOneBlankLine(t *testing.T) {
	got := Paragraphs("One is done.\n\n\n\n\nTwo is done.\n\n\nThree is done.")
	want := "One is done.\n\nTwo is done.\n\nThree is done."
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if strings.Contains(got, "\n\n\n") {
		t.Errorf("output contains a run of 3+ newlines: %q", got)
	}
}

func TestParagraphs_CompleteSentencesNotMerged(t *testing.T) {
	in := "The rain had stopped by morning.\n\nShe opened the window and looked out."
	got := Paragraphs(in)
	if len(strings.Split(got, "\n\n")) != 2 {
		t.Errorf("expected 2 paragraphs, got %q", got)
	}
}

func TestLooksUnfinished(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"It was over.", false},
		{"He shouted:", false},
		{"No sense", true},                       // short
		{"one two three four five six seven eight nine of", true}, // continuation word
		{"one two three four five six seven eight nine ten eleven mountain", false},
	}
	for _, c := range cases {
		if got := looksUnfinished(c.in, 8, continuationWords); got != c.want {
			t.Errorf("looksUnfinished(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestLooksLikeHeading(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"CHAPTER TWO", true},
		{"The Long Road:", true},
		{"a quiet morning", false},
		{"Far too many words to be a heading", false},
		{"Plain Title Line", false}, // mixed case without colon
	}
	for _, c := range cases {
		if got := looksLikeHeading(c.in); got != c.want {
			t.Errorf("looksLikeHeading(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}
