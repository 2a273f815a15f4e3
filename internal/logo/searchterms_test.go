package logo

import (
	"reflect"
	"testing"
)

func indexOf(terms []string, s string) int {
	for i, t := range terms {
		if t == s {
			return i
		}
	}
	return -1
}

func TestSearchTerms(t *testing.T) {
	t.Run("base terms come first in priority order", func(t *testing.T) {
		got := SearchTerms("Some Local Channel")
		want := []string{
			"Some Local Channel",
			"Some Local Channel logo",
			"Some Local Channel television logo",
			"Some Local Channel TV logo",
			"Some Local Channel network logo",
			"Some Local Channel channel logo",
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("normalizes whitespace", func(t *testing.T) {
		got := SearchTerms("  Some \t Local   Channel ")
		if got[0] != "Some Local Channel" {
			t.Errorf("expected normalized name first, got %q", got[0])
		}
	})

	t.Run("ESPN exact and logo terms precede synonyms and are not duplicated", func(t *testing.T) {
		got := SearchTerms("ESPN")

		if got[0] != "ESPN" || got[1] != "ESPN logo" {
			t.Fatalf("expected ESPN, ESPN logo first, got %v", got[:2])
		}
		wordmark := indexOf(got, "ESPN wordmark")
		if wordmark == -1 {
			t.Fatal("expected table synonym 'ESPN wordmark'")
		}
		if wordmark < indexOf(got, "ESPN channel logo") {
			t.Error("expected synonyms after base terms")
		}

		count := 0
		for _, term := range got {
			if term == "ESPN logo" {
				count++
			}
		}
		if count != 1 {
			t.Errorf("expected 'ESPN logo' once, found %d times", count)
		}
	})

	t.Run("every matching table entry contributes in table order", func(t *testing.T) {
		got := SearchTerms("NBC Sports HBO")
		nbc := indexOf(got, "National Broadcasting Company logo")
		hbo := indexOf(got, "Home Box Office logo")
		if nbc == -1 || hbo == -1 {
			t.Fatalf("expected both synonyms, got %v", got)
		}
		if nbc > hbo {
			t.Error("expected nbc phrases before hbo phrases")
		}
	})

	t.Run("keyword match is case-insensitive substring", func(t *testing.T) {
		got := SearchTerms("discovery science")
		if indexOf(got, "Discovery Channel logo") == -1 {
			t.Errorf("expected discovery synonyms, got %v", got)
		}
	})

	t.Run("blank name yields nothing", func(t *testing.T) {
		if got := SearchTerms("   "); len(got) != 0 {
			t.Errorf("expected no terms, got %v", got)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		if !reflect.DeepEqual(SearchTerms("CNN International"), SearchTerms("CNN International")) {
			t.Error("expected identical output for identical input")
		}
	})
}
