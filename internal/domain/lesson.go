package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// LessonID — идентификатор занятия. Бэкенд отдаёт его то числом, то строкой,
// поэтому сохраняем исходный вид и кодируем обратно так же.
type LessonID struct {
	value   string
	numeric bool
}

// NewLessonID создаёт строковый идентификатор.
func NewLessonID(value string) LessonID {
	return LessonID{value: value}
}

// NumericLessonID создаёт числовой идентификатор.
func NumericLessonID(value int64) LessonID {
	return LessonID{value: strconv.FormatInt(value, 10), numeric: true}
}

// ParseLessonID разбирает идентификатор из URL или формы: число остаётся числом.
func ParseLessonID(raw string) LessonID {
	if _, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return LessonID{value: raw, numeric: true}
	}
	return LessonID{value: raw}
}

// String возвращает текстовое представление идентификатора.
func (id LessonID) String() string {
	return id.value
}

// IsZero сообщает, что идентификатор не задан.
func (id LessonID) IsZero() bool {
	return id.value == ""
}

// Equal сравнивает идентификаторы по значению, игнорируя исходный тип JSON.
func (id LessonID) Equal(other LessonID) bool {
	return id.value == other.value
}

// Key возвращает ключ для map-агрегаций, не зависящий от вида идентификатора.
func (id LessonID) Key() string {
	return id.value
}

// MarshalJSON кодирует идентификатор в исходном виде.
func (id LessonID) MarshalJSON() ([]byte, error) {
	if id.numeric {
		return []byte(id.value), nil
	}
	return json.Marshal(id.value)
}

// UnmarshalJSON принимает как число, так и строку.
func (id *LessonID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = LessonID{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode lesson id: %w", err)
		}
		*id = LessonID{value: s}
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode lesson id: %w", err)
	}
	*id = LessonID{value: n.String(), numeric: true}
	return nil
}

// Lesson — предложение каталога (внешкольное занятие) в том виде, как его отдаёт бэкенд.
type Lesson struct {
	ID       LessonID `json:"id"`
	Title    string   `json:"title"`
	Location string   `json:"location"`
	Price    float64  `json:"price"`
	// Spaces — оставшиеся места. Локальная копия меняет только это поле.
	Spaces int     `json:"spaces"`
	Rating float64 `json:"rating,omitempty"`
	Image  string  `json:"image,omitempty"`
	Icon   string  `json:"icon,omitempty"`
}

// Available сообщает, можно ли взять ещё одно место.
func (l Lesson) Available() bool {
	return l.Spaces > 0
}

// Star — одна позиция пятизвёздочного рейтинга.
type Star string

const (
	StarFull  Star = "full"
	StarHalf  Star = "half"
	StarEmpty Star = "empty"
)

// MaxRating ограничивает рейтинг сверху.
const MaxRating = 5

// Stars раскладывает рейтинг на пять звёзд: целая часть полными,
// дробная часть >= 0.5 даёт половинку, остаток пустыми.
func Stars(rating float64) []Star {
	if math.IsNaN(rating) || rating < 0 {
		rating = 0
	}
	if rating > MaxRating {
		rating = MaxRating
	}

	full := int(math.Floor(rating))
	stars := make([]Star, 0, MaxRating)
	for i := 0; i < full; i++ {
		stars = append(stars, StarFull)
	}
	if rating-float64(full) >= 0.5 {
		stars = append(stars, StarHalf)
	}
	for len(stars) < MaxRating {
		stars = append(stars, StarEmpty)
	}
	return stars
}
