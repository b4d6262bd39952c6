package ngram

import (
	"reflect"
	"testing"
)

var corpus = []Entry{
	{ID: "b1", Text: "Harry Potter"},
	{ID: "b2", Text: "Percy Jackson"},
	{ID: "b3", Text: "The Hobbit"},
}

func TestBuildIndex_rejectsNonPositiveN(t *testing.T) {
	if _, err := BuildIndex(corpus, KindChar, 0); err == nil {
		t.Error("expected error for n=0")
	}
	if _, err := BuildIndex(corpus, KindChar, -3); err == nil {
		t.Error("expected error for negative n")
	}
}

func TestQuery_rejectsOutOfRangeThreshold(t *testing.T) {
	ix, err := BuildIndex(corpus, KindChar, 3)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ix.Query("harry", -0.1); err == nil {
		t.Error("expected error for threshold < 0")
	}
	if _, err := ix.Query("harry", 1.1); err == nil {
		t.Error("expected error for threshold > 1")
	}
}

func TestQuery_exactMatchTops(t *testing.T) {
	ix, err := BuildIndex(corpus, KindChar, 3)
	if err != nil {
		t.Fatal(err)
	}
	matches, err := ix.Query("Harry Potter", 0.6)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) == 0 {
		t.Fatal("expected at least one match")
	}
	if matches[0].ID != "b1" || matches[0].Score != 1.0 {
		t.Errorf("top match = %+v, want b1 with score 1.0", matches[0])
	}
}

func TestQuery_typoWithinThreshold(t *testing.T) {
	ix, err := BuildIndex(corpus, KindChar, 3)
	if err != nil {
		t.Fatal(err)
	}
	matches, err := ix.Query("harey potter", 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 || matches[0].ID != "b1" {
		t.Fatalf("matches = %+v, want only b1", matches)
	}
	want := 7.0 / 13.0
	if matches[0].Score != want {
		t.Errorf("score = %g, want %g", matches[0].Score, want)
	}
}

func TestQuery_thresholdOneExactOnly(t *testing.T) {
	entries := append(append([]Entry(nil), corpus...), Entry{ID: "b4", Text: "harry  potter!"})
	ix, err := BuildIndex(entries, KindChar, 3)
	if err != nil {
		t.Fatal(err)
	}
	matches, err := ix.Query("Harry Potter", 1.0)
	if err != nil {
		t.Fatal(err)
	}
	// b4 normalizes to the same string, so both exact-normalized items match.
	if len(matches) != 2 || matches[0].ID != "b1" || matches[1].ID != "b4" {
		t.Errorf("matches = %+v, want b1 then b4", matches)
	}
}

func TestQuery_bruteForceEquivalence(t *testing.T) {
	entries := []Entry{
		{ID: "a", Text: "the lion the witch and the wardrobe"},
		{ID: "b", Text: "the little prince"},
		{ID: "c", Text: "war and peace"},
		{ID: "d", Text: "the littlest prince"},
		{ID: "e", Text: ""},
		{ID: "f", Text: "li"},
	}
	queries := []string{"the little prince", "prince", "li", "zzz"}
	thresholds := []float64{0, 0.2, 0.5, 0.8, 1.0}
	for _, kind := range []Kind{KindChar, KindWord} {
		ix, err := BuildIndex(entries, kind, 3)
		if err != nil {
			t.Fatal(err)
		}
		for _, q := range queries {
			for _, th := range thresholds {
				indexed, err := ix.Query(q, th)
				if err != nil {
					t.Fatal(err)
				}
				brute, err := FindSimilar(q, entries, th, kind, 3)
				if err != nil {
					t.Fatal(err)
				}
				if !reflect.DeepEqual(indexed, brute) {
					t.Errorf("kind=%v query=%q threshold=%g: indexed %+v != brute %+v",
						kind, q, th, indexed, brute)
				}
			}
		}
	}
}

func TestQuery_thresholdMonotonicity(t *testing.T) {
	ix, err := BuildIndex(corpus, KindChar, 3)
	if err != nil {
		t.Fatal(err)
	}
	prev := map[string]bool{}
	// Result sets are nested as the threshold decreases: every id present
	// at a higher threshold stays present at any lower one.
	for _, th := range []float64{0.9, 0.6, 0.3, 0.0} {
		matches, err := ix.Query("harry pott", th)
		if err != nil {
			t.Fatal(err)
		}
		current := map[string]bool{}
		for _, m := range matches {
			current[m.ID] = true
		}
		for id := range prev {
			if !current[id] {
				t.Errorf("id %s present at higher threshold but missing at %g", id, th)
			}
		}
		prev = current
	}
}

func TestQuery_stableTieBreakBySnapshotPosition(t *testing.T) {
	entries := []Entry{
		{ID: "x", Text: "abc"},
		{ID: "y", Text: "abc"},
		{ID: "z", Text: "abc"},
	}
	ix, err := BuildIndex(entries, KindChar, 3)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		matches, err := ix.Query("abc", 0.5)
		if err != nil {
			t.Fatal(err)
		}
		if len(matches) != 3 || matches[0].ID != "x" || matches[1].ID != "y" || matches[2].ID != "z" {
			t.Fatalf("run %d: order %+v not stable by snapshot position", i, matches)
		}
	}
}

func TestQuery_zeroOverlapExcludedAtPositiveThreshold(t *testing.T) {
	ix, err := BuildIndex(corpus, KindChar, 3)
	if err != nil {
		t.Fatal(err)
	}
	matches, err := ix.Query("xyzw", 0.1)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 0 {
		t.Errorf("expected no matches, got %+v", matches)
	}
	// At threshold 0 the same query returns every entry with score 0.
	matches, err = ix.Query("xyzw", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != len(corpus) {
		t.Errorf("threshold 0 should score all entries, got %d", len(matches))
	}
}

func TestIndexLen(t *testing.T) {
	ix, err := BuildIndex(corpus, KindChar, 3)
	if err != nil {
		t.Fatal(err)
	}
	if ix.Len() != 3 {
		t.Errorf("Len = %d, want 3", ix.Len())
	}
}
