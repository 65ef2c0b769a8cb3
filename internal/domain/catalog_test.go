package domain_test

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/vladislavdragonenkov/lessonshop/internal/domain"
)

func prices(lessons []domain.Lesson) []float64 {
	out := make([]float64, 0, len(lessons))
	for _, l := range lessons {
		out = append(out, l.Price)
	}
	return out
}

func TestSortLessons_Price(t *testing.T) {
	lessons := []domain.Lesson{{Price: 30}, {Price: 10}, {Price: 20}}

	asc := domain.SortLessons(lessons, domain.SortKeyPrice, domain.SortAsc)
	if got := prices(asc); !reflect.DeepEqual(got, []float64{10, 20, 30}) {
		t.Fatalf("ascending: got %v", got)
	}

	desc := domain.SortLessons(lessons, domain.SortKeyPrice, domain.SortDesc)
	if got := prices(desc); !reflect.DeepEqual(got, []float64{30, 20, 10}) {
		t.Fatalf("descending: got %v", got)
	}

	// Исходный срез не должен меняться.
	if got := prices(lessons); !reflect.DeepEqual(got, []float64{30, 10, 20}) {
		t.Fatalf("input mutated: %v", got)
	}
}

func TestSortLessons_None(t *testing.T) {
	lessons := []domain.Lesson{{Price: 30}, {Price: 10}}

	if got := prices(domain.SortLessons(lessons, domain.SortKeyPrice, domain.SortNone)); !reflect.DeepEqual(got, []float64{30, 10}) {
		t.Fatalf("direction none must keep order, got %v", got)
	}
	if got := prices(domain.SortLessons(lessons, domain.SortKeyNone, domain.SortAsc)); !reflect.DeepEqual(got, []float64{30, 10}) {
		t.Fatalf("empty key must keep order, got %v", got)
	}
}

func TestSortLessons_TextAndSpaces(t *testing.T) {
	lessons := []domain.Lesson{
		{Title: "Music", Location: "Hendon", Spaces: 3},
		{Title: "Art", Location: "Colindale", Spaces: 5},
		{Title: "English", Location: "Brent Cross", Spaces: 1},
	}

	byTitle := domain.SortLessons(lessons, domain.SortKeyTitle, domain.SortAsc)
	if byTitle[0].Title != "Art" || byTitle[2].Title != "Music" {
		t.Fatalf("unexpected title order: %+v", byTitle)
	}

	byLocation := domain.SortLessons(lessons, domain.SortKeyLocation, domain.SortDesc)
	if byLocation[0].Location != "Hendon" || byLocation[2].Location != "Brent Cross" {
		t.Fatalf("unexpected location order: %+v", byLocation)
	}

	bySpaces := domain.SortLessons(lessons, domain.SortKeySpaces, domain.SortAsc)
	if bySpaces[0].Spaces != 1 || bySpaces[2].Spaces != 5 {
		t.Fatalf("unexpected spaces order: %+v", bySpaces)
	}
}

func TestSortKeyAndDirectionValid(t *testing.T) {
	if domain.SortKey("colour").Valid() {
		t.Error("unknown key must be invalid")
	}
	if domain.SortDirection("sideways").Valid() {
		t.Error("unknown direction must be invalid")
	}
	if !domain.SortKeyRating.Valid() || !domain.SortDesc.Valid() {
		t.Error("known values must be valid")
	}
}

func TestMatchesQuery(t *testing.T) {
	lesson := domain.Lesson{Title: "Music", Location: "Hendon", Price: 95.5, Spaces: 12}

	cases := map[string]bool{
		"":        true,
		"   ":     true,
		"mus":     true,
		"HENDON":  true,
		"95.5":    true,
		"12":      true,
		" music ": true,
		"art":     false,
		"13":      false,
	}
	for query, want := range cases {
		if got := domain.MatchesQuery(lesson, query); got != want {
			t.Errorf("MatchesQuery(%q) = %v, want %v", query, got, want)
		}
	}
}

func TestFilterLessons(t *testing.T) {
	lessons := []domain.Lesson{
		{Title: "Music", Location: "Hendon"},
		{Title: "Art", Location: "Colindale"},
	}
	got := domain.FilterLessons(lessons, "col")
	if len(got) != 1 || got[0].Title != "Art" {
		t.Fatalf("unexpected filter result: %+v", got)
	}
}

func TestStars(t *testing.T) {
	cases := []struct {
		rating float64
		want   []domain.Star
	}{
		{0, []domain.Star{domain.StarEmpty, domain.StarEmpty, domain.StarEmpty, domain.StarEmpty, domain.StarEmpty}},
		{3.5, []domain.Star{domain.StarFull, domain.StarFull, domain.StarFull, domain.StarHalf, domain.StarEmpty}},
		{4.2, []domain.Star{domain.StarFull, domain.StarFull, domain.StarFull, domain.StarFull, domain.StarEmpty}},
		{5, []domain.Star{domain.StarFull, domain.StarFull, domain.StarFull, domain.StarFull, domain.StarFull}},
		{7, []domain.Star{domain.StarFull, domain.StarFull, domain.StarFull, domain.StarFull, domain.StarFull}},
		{-1, []domain.Star{domain.StarEmpty, domain.StarEmpty, domain.StarEmpty, domain.StarEmpty, domain.StarEmpty}},
	}
	for _, tc := range cases {
		if got := domain.Stars(tc.rating); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("Stars(%v) = %v, want %v", tc.rating, got, tc.want)
		}
	}
}

func TestLessonID_JSONRoundTripKeepsKind(t *testing.T) {
	var lessons []domain.Lesson
	raw := `[{"id":1,"title":"Math"},{"id":"65a1f0","title":"Art"}]`
	if err := json.Unmarshal([]byte(raw), &lessons); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if lessons[0].ID.String() != "1" || lessons[1].ID.String() != "65a1f0" {
		t.Fatalf("unexpected ids: %v %v", lessons[0].ID, lessons[1].ID)
	}

	first, _ := json.Marshal(lessons[0].ID)
	second, _ := json.Marshal(lessons[1].ID)
	if string(first) != "1" || string(second) != `"65a1f0"` {
		t.Fatalf("kind not preserved: %s %s", first, second)
	}
}

func TestParseLessonID(t *testing.T) {
	if !domain.ParseLessonID("42").Equal(domain.NumericLessonID(42)) {
		t.Error("numeric path id must equal numeric id")
	}
	if domain.ParseLessonID("abc") != domain.NewLessonID("abc") {
		t.Error("string path id must stay a string")
	}
	if !domain.ParseLessonID("42").Equal(domain.NewLessonID("42")) {
		t.Error("Equal must ignore JSON kind")
	}
}
