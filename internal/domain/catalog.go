package domain

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// SortKey — поле, по которому сортируется каталог.
type SortKey string

const (
	SortKeyNone     SortKey = ""
	SortKeyTitle    SortKey = "title"
	SortKeyLocation SortKey = "location"
	SortKeyPrice    SortKey = "price"
	SortKeySpaces   SortKey = "spaces"
	SortKeyRating   SortKey = "rating"
)

// Valid проверяет, что ключ сортировки поддерживается.
func (k SortKey) Valid() bool {
	switch k {
	case SortKeyNone, SortKeyTitle, SortKeyLocation, SortKeyPrice, SortKeySpaces, SortKeyRating:
		return true
	default:
		return false
	}
}

// SortDirection — направление сортировки; пустое значение означает «без сортировки».
type SortDirection string

const (
	SortNone SortDirection = ""
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Valid проверяет, что направление поддерживается.
func (d SortDirection) Valid() bool {
	switch d {
	case SortNone, SortAsc, SortDesc:
		return true
	default:
		return false
	}
}

// SortLessons возвращает отсортированную копию. Без ключа или направления порядок не меняется.
func SortLessons(lessons []Lesson, key SortKey, dir SortDirection) []Lesson {
	out := slices.Clone(lessons)
	if key == SortKeyNone || dir == SortNone {
		return out
	}

	compare := compareBy(key)
	if compare == nil {
		return out
	}
	slices.SortStableFunc(out, func(a, b Lesson) int {
		if dir == SortDesc {
			return compare(b, a)
		}
		return compare(a, b)
	})
	return out
}

func compareBy(key SortKey) func(a, b Lesson) int {
	switch key {
	case SortKeyTitle:
		return func(a, b Lesson) int { return strings.Compare(a.Title, b.Title) }
	case SortKeyLocation:
		return func(a, b Lesson) int { return strings.Compare(a.Location, b.Location) }
	case SortKeyPrice:
		return func(a, b Lesson) int { return cmp.Compare(a.Price, b.Price) }
	case SortKeySpaces:
		return func(a, b Lesson) int { return cmp.Compare(a.Spaces, b.Spaces) }
	case SortKeyRating:
		return func(a, b Lesson) int { return cmp.Compare(a.Rating, b.Rating) }
	default:
		return nil
	}
}

// SearchMode определяет, где выполняется поиск по каталогу.
type SearchMode string

const (
	// SearchModeBackend — поиск выполняет бэкенд, ответ используется как есть.
	SearchModeBackend SearchMode = "backend"
	// SearchModeLocal — загружается весь каталог и фильтруется на стороне витрины.
	SearchModeLocal SearchMode = "local"
)

// Valid проверяет, что режим поиска поддерживается.
func (m SearchMode) Valid() bool {
	return m == SearchModeBackend || m == SearchModeLocal
}

// MatchesQuery проверяет регистронезависимое вхождение запроса в название, место,
// цену или количество мест. Пустой запрос совпадает со всем.
func MatchesQuery(lesson Lesson, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	fields := []string{
		lesson.Title,
		lesson.Location,
		strconv.FormatFloat(lesson.Price, 'f', -1, 64),
		strconv.Itoa(lesson.Spaces),
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// FilterLessons оставляет занятия, подходящие под запрос.
func FilterLessons(lessons []Lesson, query string) []Lesson {
	out := make([]Lesson, 0, len(lessons))
	for _, lesson := range lessons {
		if MatchesQuery(lesson, query) {
			out = append(out, lesson)
		}
	}
	return out
}
