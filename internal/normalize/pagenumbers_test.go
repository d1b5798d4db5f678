package normalize

import (
	"testing"
)

func TestStripPageNumbers_EmptyInput(t *testing.T) {
	if got := StripPageNumbers("", true); got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
}

func TestStripPageNumbers_BareNumberStripped(t *testing.T) {
	got := StripPageNumbers("... was on page 42 when", true)
	want := "... was on page  when"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestStripPageNumbers_TextualContextPreserved(t *testing.T) {
	in := "reached level 7 of the tower"
	if got := StripPageNumbers(in, true); got != in {
		t.Errorf("expected %q preserved, got %q", in, got)
	}
}

func TestStripPageNumbers_CueWords(t *testing.T) {
	for _, in := range []string{
		"on the 9 of swords",
		"arrived at 3 in the morning",
		"counted to 10 and waited",
		"stopped on floor 12 again",
	} {
		if got := StripPageNumbers(in, true); got != in {
			t.Errorf("expected %q preserved, got %q", in, got)
		}
	}
}

func TestStripPageNumbers_OrdinalPreserved(t *testing.T) {
	in := "they lived on 3rd street"
	if got := StripPageNumbers(in, true); got != in {
		t.Errorf("expected %q preserved, got %q", in, got)
	}
}

func TestStripPageNumbers_CommaGroupedNumberPreserved(t *testing.T) {
	in := "an army of 1,000 marched"
	if got := StripPageNumbers(in, true); got != in {
		t.Errorf("expected %q preserved, got %q", in, got)
	}
}

func TestStripPageNumbers_DecimalPreserved(t *testing.T) {
	in := "a ratio of 3.14 exactly"
	if got := StripPageNumbers(in, true); got != in {
		t.Errorf("expected %q preserved, got %q", in, got)
	}
}

func TestStripPageNumbers_OperatorPreserved(t *testing.T) {
	// Operator adjacency is immediate: "2+2" preserves, "2 + 2" would not.
	for _, in := range []string{
		"rolled 2+2 on the dice",
		"a score of 10/10 overall",
		"damage 3x total",
	} {
		if got := StripPageNumbers(in, true); got != in {
			t.Errorf("expected %q preserved, got %q", in, got)
		}
	}
}

func TestStripPageNumbers_FullyBracketedPreserved(t *testing.T) {
	in := "end of chapter (17) next begins"
	if got := StripPageNumbers(in, true); got != in {
		t.Errorf("expected %q preserved, got %q", in, got)
	}
}

func TestStripPageNumbers_HalfBracketedStripped(t *testing.T) {
	// A closing bracket alone is not a preserve signal; the run boundary is
	// still clean, so the number goes and the bracket stays.
	got := StripPageNumbers("see note 17) below", true)
	want := "see note ) below"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestStripPageNumbers_OrdinalInsideBracketsPreserved(t *testing.T) {
	in := "(42nd attempt) failed"
	if got := StripPageNumbers(in, true); got != in {
		t.Errorf("expected %q preserved, got %q", in, got)
	}
}

func TestStripPageNumbers_OutOfRangeKept(t *testing.T) {
	for _, in := range []string{
		"the year 1847 was harsh",
		"0 survivors remained",
	} {
		if got := StripPageNumbers(in, true); got != in {
			t.Errorf("expected %q preserved, got %q", in, got)
		}
	}
}

func TestStripPageNumbers_RepeatOnlyFirstStripped(t *testing.T) {
	got := StripPageNumbers("12 and later again 12", true)
	want := " and later again 12"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestStripPageNumbers_AdjacentLetterBlocksStrip(t *testing.T) {
	for _, in := range []string{
		"model A42 arrived",
		"42b was her cabin",
	} {
		if got := StripPageNumbers(in, true); got != in {
			t.Errorf("expected %q preserved, got %q", in, got)
		}
	}
}

func TestStripPageNumbers_NonPDFPassThrough(t *testing.T) {
	in := "page 42 and level 7 and 1000"
	if got := StripPageNumbers(in, false); got != in {
		t.Errorf("expected digit runs untouched for non-PDF source, got %q", got)
	}
}

func TestStripPageNumbers_NewlinePromotedAfterTerminator(t *testing.T) {
	got := StripPageNumbers("He left.\nShe stayed.", false)
	want := "He left.\n\n\n She stayed."
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestStripPageNumbers_NewlineJoinedAsSpace(t *testing.T) {
	got := StripPageNumbers("the road\nwound on", false)
	want := "the road wound on"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestStripPageNumbers_SpaceBeforeNewlineDropped(t *testing.T) {
	got := StripPageNumbers("the road \nwound on", false)
	want := "the road wound on"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestStripPageNumbers_StrayCommaAfterTerminatorDropped(t *testing.T) {
	got := StripPageNumbers(`"Go home.", he said`, false)
	want := `"Go home." he said`
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestStripPageNumbers_FeedsReflowSplit(t *testing.T) {
	// The triple-newline promotion exists so the reflow pass 1 split sees a
	// paragraph boundary; verify the two stages compose.
	cleaned := StripPageNumbers("The gate closed.\n314\nNobody spoke.", true)
	got := Paragraphs(cleaned)
	want := "The gate closed.\n\nNobody spoke."
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestStripPagePrefixes(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Page | 3 of the manuscript", " 3 of the manuscript"},
		{"Page 3 began badly", "3 began badly"},
		{"no marker here", "no marker here"},
		{"", ""},
	}
	for _, c := range cases {
		if got := StripPagePrefixes(c.in); got != c.want {
			t.Errorf("StripPagePrefixes(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
